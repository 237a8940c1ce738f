package reporting

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lexpro/backoffice/internal/auth"
	"github.com/lexpro/backoffice/pkg/apperrors"
)

type Handler struct {
	loader *Loader
	pub    *Publisher
}

func NewHandler(loader *Loader, pub *Publisher) *Handler {
	return &Handler{loader: loader, pub: pub}
}

// Dashboard
// GET /api/dashboard
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	d, err := h.loader.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// Commission ledger
// GET /api/commissions?status=all|paid|pending&search=
func (h *Handler) Commissions(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status", "all"))
	switch status {
	case "all", "paid", "pending":
	default:
		return apperrors.NewValidation("status", "Value is not allowed")
	}

	all, err := h.loader.Cases(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(BuildLedger(all, LedgerFilter{Status: status, Search: c.Query("search")}))
}

type FinancesView struct {
	Summary Summary      `json:"summary"`
	Ledger  Ledger       `json:"ledger"`
	Pending []LedgerLine `json:"pending"`
	Paid    []LedgerLine `json:"paid"`
}

func (h *Handler) finances(c *fiber.Ctx) (FinancesView, error) {
	all, err := h.loader.Cases(c.UserContext())
	if err != nil {
		return FinancesView{}, err
	}
	l := BuildLedger(all, LedgerFilter{})
	v := FinancesView{Summary: Summarize(all), Ledger: l}
	v.Pending, v.Paid = l.Split()
	v.Ledger.Lines = nil
	return v, nil
}

// Financial control
// GET /api/finances
func (h *Handler) Finances(c *fiber.Ctx) error {
	v, err := h.finances(c)
	if err != nil {
		return err
	}
	return c.JSON(v)
}

func parsePeriod(c *fiber.Ctx) (from, to time.Time, err error) {
	verr := &apperrors.ValidationError{}
	parse := func(field string) time.Time {
		v := strings.TrimSpace(c.Query(field))
		if v == "" {
			return time.Time{}
		}
		t, perr := time.Parse("2006-01-02", v)
		if perr != nil {
			verr.Add(field, "Must be a valid date (YYYY-MM-DD)")
		}
		return t
	}
	from, to = parse("from"), parse("to")
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		verr.Add("to", "Must be on or after from")
	}
	return from, to, verr.OrNil()
}

type RankingView struct {
	From   string       `json:"from,omitempty"`
	To     string       `json:"to,omitempty"`
	Rows   []RankingRow `json:"rows"`
	Totals RankingRow   `json:"totals"`
}

// Lawyer ranking
// GET /api/reports/ranking?from=&to=
func (h *Handler) Ranking(c *fiber.Ctx) error {
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	all, err := h.loader.Cases(c.UserContext())
	if err != nil {
		return err
	}
	rows := RankLawyers(FilterByPeriod(all, from, to))
	return c.JSON(RankingView{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Rows:   rows,
		Totals: RankingTotals(rows),
	})
}

// Ranking export, general or for one lawyer
// GET /api/reports/ranking/export?format=pdf|xlsx&lawyer_id=&from=&to=
func (h *Handler) ExportRanking(c *fiber.Ctx) error {
	if err := checkFormat(c); err != nil {
		return err
	}
	from, to, err := parsePeriod(c)
	if err != nil {
		return err
	}
	all, err := h.loader.Cases(c.UserContext())
	if err != nil {
		return err
	}
	period := FilterByPeriod(all, from, to)

	if raw := strings.TrimSpace(c.Query("lawyer_id")); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			return apperrors.NewValidation("lawyer_id", "Must be a valid UUID")
		}
		row, lines, ok := LawyerCases(period, id)
		if !ok {
			return &apperrors.NotFoundError{Entity: "lawyer", ID: raw}
		}
		return h.deliver(c, LawyerDocument(row, lines, from, to))
	}
	return h.deliver(c, RankingDocument(RankLawyers(period), from, to))
}

// Financial control export
// GET /api/finances/export?format=pdf|xlsx
func (h *Handler) ExportFinances(c *fiber.Ctx) error {
	if err := checkFormat(c); err != nil {
		return err
	}
	all, err := h.loader.Cases(c.UserContext())
	if err != nil {
		return err
	}
	return h.deliver(c, FinancesDocument(Summarize(all), BuildLedger(all, LedgerFilter{})))
}

func checkFormat(c *fiber.Ctx) error {
	switch c.Query("format", FormatPDF) {
	case FormatPDF, FormatXLSX:
		return nil
	}
	return apperrors.NewValidation("format", "Value is not allowed")
}

// deliver uploads the document when storage is configured and returns a
// signed link; otherwise it streams the file.
func (h *Handler) deliver(c *fiber.Ctx, doc Document) error {
	exp, err := Render(doc, c.Query("format", FormatPDF))
	if err != nil {
		return err
	}
	if h.pub.Enabled() {
		actor, _ := uuid.Parse(auth.MustUserID(c))
		pub, err := h.pub.Publish(c.UserContext(), actor, exp)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(pub)
	}
	c.Set(fiber.HeaderContentType, exp.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+exp.Filename+`"`)
	return c.Send(exp.Body)
}
