package cases

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lexpro/backoffice/internal/auth"
	"github.com/lexpro/backoffice/pkg/format"
	"github.com/lexpro/backoffice/pkg/models"
	"github.com/lexpro/backoffice/pkg/validation"
)

// Lister serves the full, preloaded case collection (usually from cache).
type Lister interface {
	Cases(ctx context.Context) ([]models.Case, error)
}

// ===== DTOs =====

type CaseListItem struct {
	ID            uuid.UUID            `json:"id"`
	CaseNumber    string               `json:"case_number"`
	ClientName    string               `json:"client_name"`
	ServiceName   string               `json:"service_name"`
	Status        models.CaseStatus    `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Priority      models.Priority      `json:"priority"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	StartDate     string               `json:"start_date"`
	Lawyers       LawyerView           `json:"lawyers"`
	NotesPreview  string               `json:"notes_preview"`
	CreatedAt     time.Time            `json:"created_at"`
}

type PageCases struct {
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Total    int64          `json:"total"`
	Pages    int            `json:"pages"`
	Items    []CaseListItem `json:"items"`
}

type CaseDetail struct {
	models.Case
	Allocations []Allocation `json:"allocations"`
	Lawyers     LawyerView   `json:"lawyers"`
}

type Handler struct {
	svc  *Service
	list Lister
}

func NewHandler(svc *Service, list Lister) *Handler {
	return &Handler{svc: svc, list: list}
}

func parsePage(c *fiber.Ctx) (page, size int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	size, _ = strconv.Atoi(c.Query("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return
}

func actor(c *fiber.Ctx) uuid.UUID {
	id, _ := uuid.Parse(auth.MustUserID(c))
	return id
}

func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// List cases
// GET /api/cases?search=&status=&page=&pageSize=
// search matches case number, client name and assigned lawyer names.
func (h *Handler) List(c *fiber.Ctx) error {
	page, size := parsePage(c)
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	status := strings.TrimSpace(c.Query("status"))

	all, err := h.list.Cases(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]CaseListItem, 0, len(all))
	for _, cs := range all {
		if status != "" && status != "all" && string(cs.Status) != status {
			continue
		}
		item := toListItem(cs)
		if search != "" && !matches(item, search) {
			continue
		}
		items = append(items, item)
	}

	total := int64(len(items))
	// Compared before multiplying so a huge page cannot overflow.
	from := len(items)
	if page-1 <= len(items)/size {
		from = min((page-1)*size, len(items))
	}
	to := from + size
	if to > len(items) {
		to = len(items)
	}

	return c.JSON(PageCases{
		Page:     page,
		PageSize: size,
		Total:    total,
		Pages:    int(math.Ceil(float64(total) / float64(size))),
		Items:    items[from:to],
	})
}

func toListItem(cs models.Case) CaseListItem {
	item := CaseListItem{
		ID:            cs.ID,
		CaseNumber:    cs.CaseNumber,
		Status:        cs.Status,
		PaymentStatus: cs.PaymentStatus,
		Priority:      cs.Priority,
		TotalAmount:   cs.TotalAmount,
		StartDate:     cs.StartDate.Format("2006-01-02"),
		Lawyers:       ResolveLawyerView(cs),
		NotesPreview:  format.Summary(cs.Notes, 120),
		CreatedAt:     cs.CreatedAt,
	}
	if cs.Client != nil {
		item.ClientName = cs.Client.Name
	}
	if cs.Service != nil {
		item.ServiceName = cs.Service.Name
	}
	return item
}

func matches(item CaseListItem, q string) bool {
	if strings.Contains(strings.ToLower(item.CaseNumber), q) ||
		strings.Contains(strings.ToLower(item.ClientName), q) {
		return true
	}
	for _, n := range item.Lawyers.Names {
		if strings.Contains(strings.ToLower(n), q) {
			return true
		}
	}
	return false
}

// Get case detail
// GET /api/cases/:id
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	cs, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	allocs := Normalize(cs)
	if allocs == nil {
		allocs = []Allocation{}
	}
	if cs.CaseLawyers == nil {
		cs.CaseLawyers = []models.CaseLawyer{}
	}
	return c.JSON(CaseDetail{Case: cs, Allocations: allocs, Lawyers: ResolveLawyerView(cs)})
}

// Create case (intake)
// POST /api/cases
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	cs, rep, err := h.svc.Create(c.UserContext(), actor(c), in)
	if err != nil {
		if len(rep.Steps) > 0 {
			c.Locals("saga_report", rep)
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"case": cs, "report": rep})
}

// Update case
// PUT /api/cases/:id
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	cs, rep, err := h.svc.Update(c.UserContext(), actor(c), id, in)
	if err != nil {
		if len(rep.Steps) > 0 {
			c.Locals("saga_report", rep)
		}
		return err
	}
	return c.JSON(fiber.Map{"case": cs, "report": rep})
}

// Delete case
// DELETE /api/cases/:id
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Next case number preview
// GET /api/cases/next-number
func (h *Handler) NextNumber(c *fiber.Ctx) error {
	n, err := h.svc.PreviewNumber(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"case_number": n})
}

// Assign a lawyer
// POST /api/cases/:id/lawyers
func (h *Handler) AddLawyer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in LawyerInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	row, err := h.svc.AddLawyer(c.UserContext(), actor(c), id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

// Edit an allocation's rule
// PUT /api/allocations/:id
func (h *Handler) UpdateAllocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in RuleInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	row, err := h.svc.UpdateRule(c.UserContext(), actor(c), id, in)
	if err != nil {
		return err
	}
	return c.JSON(row)
}

// Unassign a lawyer
// DELETE /api/allocations/:id
func (h *Handler) RemoveAllocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveAllocation(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
