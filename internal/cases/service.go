package cases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/internal/commissions"
	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
	"github.com/lexpro/backoffice/pkg/utils"
)

const maxNumberAttempts = 5

// Store is the persistence the case commands need.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=service.go Store
type Store interface {
	GetClient(ctx context.Context, id uuid.UUID) (models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	GetService(ctx context.Context, id uuid.UUID) (models.LegalService, error)
	LawyerStatuses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.LawyerStatus, error)

	CaseNumbersForYear(ctx context.Context, year int) ([]string, error)
	GetCase(ctx context.Context, id uuid.UUID) (models.Case, error)
	CreateCase(ctx context.Context, cs *models.Case) error
	UpdateCase(ctx context.Context, id uuid.UUID, fields map[string]any) error
	DeleteCase(ctx context.Context, id uuid.UUID) error

	GetAllocation(ctx context.Context, id uuid.UUID) (models.CaseLawyer, error)
	CreateAllocation(ctx context.Context, cl *models.CaseLawyer) error
	UpdateAllocation(ctx context.Context, id uuid.UUID, fields map[string]any) error
	DeleteAllocation(ctx context.Context, id uuid.UUID) error

	RecordHistory(ctx context.Context, caseID, actorID uuid.UUID, action, detail string)
}

// Invalidator drops cached collections after a mutation.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

/* ============================== Inputs ================================== */

// ClientInput creates a client on intake when no client_id is given.
type ClientInput struct {
	Name    string `json:"name" validate:"required,max=160"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=40"`
	Company string `json:"company" validate:"max=160"`
	Address string `json:"address" validate:"max=300"`
}

// LawyerInput is one requested assignment. Empty commission fields keep the
// lawyer's current rule on the case, or the service's defaults for a newcomer.
type LawyerInput struct {
	LawyerID             uuid.UUID             `json:"lawyer_id" validate:"required"`
	CommissionType       models.CommissionType `json:"commission_type" validate:"omitempty,oneof=percentage fixed"`
	CommissionPercentage *decimal.Decimal      `json:"commission_percentage" validate:"omitempty,gte=0,lte=100"`
	CommissionAmount     *decimal.Decimal      `json:"commission_amount" validate:"omitempty,gte=0"`
}

// CreateInput is a case intake.
type CreateInput struct {
	ClientID      *uuid.UUID           `json:"client_id"`
	Client        *ClientInput         `json:"client" validate:"omitempty"`
	ServiceID     uuid.UUID            `json:"service_id" validate:"required"`
	TotalAmount   *decimal.Decimal     `json:"total_amount" validate:"omitempty,gte=0"`
	Status        models.CaseStatus    `json:"status" validate:"omitempty,oneof=active in_progress completed cancelled"`
	PaymentStatus models.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending partial paid"`
	Priority      models.Priority      `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	StartDate     string               `json:"start_date" validate:"omitempty,isodate"`
	Notes         string               `json:"notes" validate:"max=5000"`
	Lawyers       []LawyerInput        `json:"lawyers" validate:"required,min=1,dive"`
}

// UpdateInput edits a case. Nil fields are left as they are; a non-nil
// Lawyers replaces the whole assignment set.
type UpdateInput struct {
	ClientID      *uuid.UUID            `json:"client_id"`
	ServiceID     *uuid.UUID            `json:"service_id"`
	TotalAmount   *decimal.Decimal      `json:"total_amount" validate:"omitempty,gte=0"`
	Status        *models.CaseStatus    `json:"status" validate:"omitempty,oneof=active in_progress completed cancelled"`
	PaymentStatus *models.PaymentStatus `json:"payment_status" validate:"omitempty,oneof=pending partial paid"`
	Priority      *models.Priority      `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	StartDate     *string               `json:"start_date" validate:"omitempty,isodate"`
	Notes         *string               `json:"notes" validate:"omitempty,max=5000"`
	Lawyers       []LawyerInput         `json:"lawyers" validate:"omitempty,min=1,dive"`
}

/* ============================ Step report =============================== */

// Step is one persisted (or failed) write of a multi-step command.
type Step struct {
	Name  string `json:"name"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// Report lists the steps a command performed, in order. Compensated is true
// when the steps before a failure were undone.
type Report struct {
	Steps       []Step `json:"steps"`
	Compensated bool   `json:"compensated"`
}

func (r *Report) ok(name string, id uuid.UUID) {
	r.Steps = append(r.Steps, Step{Name: name, ID: id.String()})
}

func (r *Report) fail(name string, err error) {
	r.Steps = append(r.Steps, Step{Name: name, Error: err.Error()})
}

/* ============================== Service ================================= */

// Service runs the case commands. Writes are not atomic across steps; see Create.
type Service struct {
	store Store
	cache Invalidator
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, cache Invalidator, log *zap.Logger) *Service {
	return &Service{store: store, cache: cache, log: log, now: time.Now}
}

// Get loads one case with its relations.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.Case, error) {
	return s.store.GetCase(ctx, id)
}

// PreviewNumber returns the number the next case of this year would get.
func (s *Service) PreviewNumber(ctx context.Context) (string, error) {
	year := s.now().Year()
	nums, err := s.store.CaseNumbersForYear(ctx, year)
	if err != nil {
		return "", err
	}
	return NextCaseNumber(year, nums), nil
}

// Create runs the intake saga: client (when new), case row, allocation rows.
//
// If an allocation insert fails, the allocations already written and the case
// row are deleted again and the original error is returned. A client created
// by this call is kept so the intake can be retried against it.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, in CreateInput) (models.Case, Report, error) {
	var rep Report

	svc, err := s.store.GetService(ctx, in.ServiceID)
	if err != nil {
		return models.Case{}, rep, err
	}

	total := svc.BasePrice
	if in.TotalAmount != nil {
		total = *in.TotalAmount
	}

	assignments, err := toAssignments(in.Lawyers, svc, nil)
	if err != nil {
		return models.Case{}, rep, err
	}
	active, err := s.activeLawyers(ctx, lawyerIDs(assignments))
	if err != nil {
		return models.Case{}, rep, err
	}
	if err := commissions.ValidateAssignmentSet(assignments, active, nil); err != nil {
		return models.Case{}, rep, err
	}
	assignments = commissions.Recompute(total, assignments)

	clientID, err := s.resolveClient(ctx, in, &rep)
	if err != nil {
		return models.Case{}, rep, err
	}

	start := s.now()
	if in.StartDate != "" {
		start, _ = time.Parse("2006-01-02", in.StartDate)
	}

	cs := models.Case{
		ClientID:         &clientID,
		ServiceID:        &svc.ID,
		Status:           orDefault(in.Status, models.CaseActive),
		PaymentStatus:    orDefault(in.PaymentStatus, models.PaymentPending),
		Priority:         orDefault(in.Priority, models.PriorityMedium),
		TotalAmount:      total,
		CommissionAmount: commissions.TotalCommission(assignments),
		StartDate:        start,
		Notes:            in.Notes,
	}
	if err := s.insertNumbered(ctx, &cs); err != nil {
		rep.fail("case", err)
		s.cache.InvalidateAll(ctx)
		return models.Case{}, rep, err
	}
	rep.ok("case", cs.ID)

	written := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		row := a.ToModel(cs.ID)
		if err := s.store.CreateAllocation(ctx, &row); err != nil {
			rep.fail("allocation", err)
			s.compensateCreate(ctx, cs.ID, written, &rep)
			s.cache.InvalidateAll(ctx)
			return models.Case{}, rep, err
		}
		written = append(written, row.ID)
		rep.ok("allocation", row.ID)
	}

	s.store.RecordHistory(ctx, cs.ID, actorID, utils.ActionCreated, cs.CaseNumber)
	s.cache.InvalidateAll(ctx)

	out, err := s.store.GetCase(ctx, cs.ID)
	if err != nil {
		// Saved; only the read-back failed.
		s.log.Warn("read back created case", zap.String("case_id", cs.ID.String()), zap.Error(err))
		return cs, rep, nil
	}
	return out, rep, nil
}

func (s *Service) resolveClient(ctx context.Context, in CreateInput, rep *Report) (uuid.UUID, error) {
	if in.ClientID != nil && *in.ClientID != uuid.Nil {
		c, err := s.store.GetClient(ctx, *in.ClientID)
		if err != nil {
			return uuid.Nil, err
		}
		return c.ID, nil
	}
	if in.Client == nil || in.Client.Name == "" {
		return uuid.Nil, apperrors.NewValidation("client_id", "Select a client or provide a new one")
	}
	c := models.Client{
		Name:    in.Client.Name,
		Email:   in.Client.Email,
		Phone:   in.Client.Phone,
		Company: in.Client.Company,
		Address: in.Client.Address,
	}
	if err := s.store.CreateClient(ctx, &c); err != nil {
		rep.fail("client", err)
		return uuid.Nil, err
	}
	rep.ok("client", c.ID)
	return c.ID, nil
}

// insertNumbered assigns the next case number and inserts, retrying when a
// concurrent intake took the same number.
func (s *Service) insertNumbered(ctx context.Context, cs *models.Case) error {
	year := s.now().Year()
	var lastErr error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		nums, err := s.store.CaseNumbersForYear(ctx, year)
		if err != nil {
			return err
		}
		cs.CaseNumber = NextCaseNumber(year, nums)
		err = s.store.CreateCase(ctx, cs)
		if err == nil {
			return nil
		}
		if !apperrors.IsConflict(err) {
			return err
		}
		s.log.Info("case number taken, retrying",
			zap.String("case_number", cs.CaseNumber), zap.Int("attempt", attempt))
		lastErr = err
	}
	return fmt.Errorf("assign case number after %d attempts: %w", maxNumberAttempts, lastErr)
}

func (s *Service) compensateCreate(ctx context.Context, caseID uuid.UUID, allocs []uuid.UUID, rep *Report) {
	// Undo in reverse order. The request context may already be done.
	cctx := context.WithoutCancel(ctx)
	ok := true
	for i := len(allocs) - 1; i >= 0; i-- {
		if err := s.store.DeleteAllocation(cctx, allocs[i]); err != nil {
			ok = false
			s.log.Error("compensation: delete allocation", zap.String("allocation_id", allocs[i].String()), zap.Error(err))
		}
	}
	if err := s.store.DeleteCase(cctx, caseID); err != nil {
		ok = false
		s.log.Error("compensation: delete case", zap.String("case_id", caseID.String()), zap.Error(err))
	}
	rep.Compensated = ok
}

// Update edits case fields and, when in.Lawyers is set, syncs the assignment
// set: removed lawyers are deleted, new ones inserted, kept ones updated.
// Unpaid percentage assignments are recomputed whenever the total or their
// rule changes. Steps are not undone on failure; the report says how far it got.
func (s *Service) Update(ctx context.Context, actorID, caseID uuid.UUID, in UpdateInput) (models.Case, Report, error) {
	var rep Report

	cs, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return models.Case{}, rep, err
	}

	fields, err := s.caseFields(ctx, in)
	if err != nil {
		return models.Case{}, rep, err
	}
	total := cs.TotalAmount
	if in.TotalAmount != nil {
		total = *in.TotalAmount
	}
	totalChanged := !total.Equal(cs.TotalAmount)

	var final []commissions.Assignment
	switch {
	case in.Lawyers != nil:
		final, err = s.syncAssignments(ctx, actorID, cs, total, in.Lawyers, &rep)
		if err != nil {
			return models.Case{}, rep, err
		}
		if len(cs.CaseLawyers) == 0 && cs.LawyerID != nil {
			// Legacy columns are superseded by the rows just written.
			fields["lawyer_id"] = nil
			fields["commission_paid"] = false
		}
	case totalChanged:
		final, err = s.recomputeExisting(ctx, cs, total, &rep)
		if err != nil {
			return models.Case{}, rep, err
		}
	}
	if final != nil {
		fields["commission_amount"] = commissions.TotalCommission(final)
	}

	if len(fields) > 0 {
		if err := s.store.UpdateCase(ctx, caseID, fields); err != nil {
			rep.fail("case", err)
			s.cache.InvalidateAll(ctx)
			return models.Case{}, rep, err
		}
		rep.ok("case", caseID)
	}

	s.store.RecordHistory(ctx, caseID, actorID, utils.ActionUpdated, fmt.Sprintf("%d step(s)", len(rep.Steps)))
	s.cache.InvalidateAll(ctx)

	out, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return models.Case{}, rep, err
	}
	return out, rep, nil
}

func (s *Service) caseFields(ctx context.Context, in UpdateInput) (map[string]any, error) {
	fields := map[string]any{}
	if in.ClientID != nil {
		if _, err := s.store.GetClient(ctx, *in.ClientID); err != nil {
			return nil, err
		}
		fields["client_id"] = *in.ClientID
	}
	if in.ServiceID != nil {
		if _, err := s.store.GetService(ctx, *in.ServiceID); err != nil {
			return nil, err
		}
		fields["service_id"] = *in.ServiceID
	}
	if in.TotalAmount != nil {
		fields["total_amount"] = *in.TotalAmount
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.PaymentStatus != nil {
		fields["payment_status"] = *in.PaymentStatus
	}
	if in.Priority != nil {
		fields["priority"] = *in.Priority
	}
	if in.StartDate != nil {
		d, err := time.Parse("2006-01-02", *in.StartDate)
		if err != nil {
			return nil, apperrors.NewValidation("start_date", "Invalid date (use YYYY-MM-DD)")
		}
		fields["start_date"] = d
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	return fields, nil
}

func (s *Service) syncAssignments(ctx context.Context, actorID uuid.UUID, cs models.Case, total decimal.Decimal, lawyers []LawyerInput, rep *Report) ([]commissions.Assignment, error) {
	current := map[uuid.UUID]commissions.Assignment{}
	existing := map[uuid.UUID]bool{}
	for _, cl := range cs.CaseLawyers {
		current[cl.LawyerID] = commissions.FromModel(cl)
		existing[cl.LawyerID] = true
	}
	if len(cs.CaseLawyers) == 0 && cs.LawyerID != nil {
		// The legacy pair becomes a fixed-amount row when its lawyer is kept.
		legacy := commissions.Assignment{
			LawyerID: *cs.LawyerID,
			Rule:     commissions.Rule{Type: models.CommissionFixed, Amount: cs.CommissionAmount},
			Amount:   cs.CommissionAmount,
			Paid:     cs.CommissionPaid,
		}
		if cs.CommissionPaid {
			paidAt := cs.UpdatedAt
			legacy.PaidAt = &paidAt
		}
		current[*cs.LawyerID] = legacy
		existing[*cs.LawyerID] = true
	}

	var svc models.LegalService
	if cs.Service != nil {
		svc = *cs.Service
	}
	wanted, err := toAssignments(lawyers, svc, current)
	if err != nil {
		return nil, err
	}

	active, err := s.activeLawyers(ctx, lawyerIDs(wanted))
	if err != nil {
		return nil, err
	}
	if err := commissions.ValidateAssignmentSet(wanted, active, existing); err != nil {
		return nil, err
	}
	wanted = commissions.Recompute(total, wanted)

	keep := map[uuid.UUID]bool{}
	for _, a := range wanted {
		keep[a.LawyerID] = true
	}
	for _, cl := range cs.CaseLawyers {
		if keep[cl.LawyerID] {
			continue
		}
		if err := s.store.DeleteAllocation(ctx, cl.ID); err != nil {
			rep.fail("remove_allocation", err)
			return nil, err
		}
		rep.ok("remove_allocation", cl.ID)
		s.store.RecordHistory(ctx, cs.ID, actorID, utils.ActionAllocationRemoved, cl.LawyerID.String())
	}

	for i, a := range wanted {
		if a.ID == uuid.Nil {
			row := a.ToModel(cs.ID)
			if err := s.store.CreateAllocation(ctx, &row); err != nil {
				rep.fail("add_allocation", err)
				return nil, err
			}
			wanted[i].ID = row.ID
			rep.ok("add_allocation", row.ID)
			continue
		}
		if a.Paid {
			continue
		}
		row := a.ToModel(cs.ID)
		if err := s.store.UpdateAllocation(ctx, a.ID, map[string]any{
			"commission_type":       row.CommissionType,
			"commission_percentage": row.CommissionPercentage,
			"commission_amount":     row.CommissionAmount,
		}); err != nil {
			rep.fail("update_allocation", err)
			return nil, err
		}
		rep.ok("update_allocation", a.ID)
	}
	return wanted, nil
}

func (s *Service) recomputeExisting(ctx context.Context, cs models.Case, total decimal.Decimal, rep *Report) ([]commissions.Assignment, error) {
	if len(cs.CaseLawyers) == 0 {
		// Legacy amounts are fixed; nothing to recompute.
		return nil, nil
	}
	before := make([]commissions.Assignment, 0, len(cs.CaseLawyers))
	for _, cl := range cs.CaseLawyers {
		before = append(before, commissions.FromModel(cl))
	}
	after := commissions.Recompute(total, before)
	for i, a := range after {
		if a.Amount.Equal(before[i].Amount) {
			continue
		}
		if err := s.store.UpdateAllocation(ctx, a.ID, map[string]any{"commission_amount": a.Amount}); err != nil {
			rep.fail("update_allocation", err)
			return nil, err
		}
		rep.ok("update_allocation", a.ID)
	}
	return after, nil
}

// AddLawyer assigns one more lawyer to a case.
func (s *Service) AddLawyer(ctx context.Context, actorID, caseID uuid.UUID, in LawyerInput) (models.CaseLawyer, error) {
	cs, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return models.CaseLawyer{}, err
	}
	var svc models.LegalService
	if cs.Service != nil {
		svc = *cs.Service
	}

	set := make([]commissions.Assignment, 0, len(cs.CaseLawyers)+1)
	existing := map[uuid.UUID]bool{}
	for _, cl := range cs.CaseLawyers {
		set = append(set, commissions.FromModel(cl))
		existing[cl.LawyerID] = true
	}
	added, ok := resolveAssignment(in, svc, nil)
	if !ok {
		return models.CaseLawyer{}, apperrors.NewValidation("commission_amount", msgFixedAmount)
	}
	added.Amount = commissions.ComputeAmount(cs.TotalAmount, added.Rule)
	set = append(set, added)

	active, err := s.activeLawyers(ctx, []uuid.UUID{in.LawyerID})
	if err != nil {
		return models.CaseLawyer{}, err
	}
	if err := commissions.ValidateAssignmentSet(set, active, existing); err != nil {
		return models.CaseLawyer{}, err
	}

	row := added.ToModel(caseID)
	if err := s.store.CreateAllocation(ctx, &row); err != nil {
		return models.CaseLawyer{}, err
	}
	s.store.RecordHistory(ctx, caseID, actorID, utils.ActionAllocationAdded, in.LawyerID.String())
	if err := s.syncTotal(ctx, caseID); err != nil {
		return row, err
	}
	return row, nil
}

// RuleInput edits one allocation's rule.
type RuleInput struct {
	CommissionType       models.CommissionType `json:"commission_type" validate:"required,oneof=percentage fixed"`
	CommissionPercentage decimal.Decimal       `json:"commission_percentage" validate:"gte=0,lte=100"`
	CommissionAmount     decimal.Decimal       `json:"commission_amount" validate:"gte=0"`
}

// UpdateRule changes an unpaid allocation's rule and recomputes its amount.
func (s *Service) UpdateRule(ctx context.Context, actorID, allocationID uuid.UUID, in RuleInput) (models.CaseLawyer, error) {
	cl, err := s.store.GetAllocation(ctx, allocationID)
	if err != nil {
		return models.CaseLawyer{}, err
	}
	if cl.CommissionPaid {
		return models.CaseLawyer{}, &apperrors.ConflictError{Message: "commission already liquidated"}
	}
	rule := commissions.Rule{Type: in.CommissionType, Percentage: in.CommissionPercentage, Amount: in.CommissionAmount}
	if err := commissions.ValidateRule(rule); err != nil {
		return models.CaseLawyer{}, err
	}
	cs, err := s.store.GetCase(ctx, cl.CaseID)
	if err != nil {
		return models.CaseLawyer{}, err
	}

	a := commissions.Assignment{ID: cl.ID, LawyerID: cl.LawyerID, Rule: rule}
	a.Amount = commissions.ComputeAmount(cs.TotalAmount, rule)
	row := a.ToModel(cl.CaseID)
	if err := s.store.UpdateAllocation(ctx, cl.ID, map[string]any{
		"commission_type":       row.CommissionType,
		"commission_percentage": row.CommissionPercentage,
		"commission_amount":     row.CommissionAmount,
	}); err != nil {
		return models.CaseLawyer{}, err
	}
	s.store.RecordHistory(ctx, cl.CaseID, actorID, utils.ActionAllocationChanged, cl.ID.String())
	if err := s.syncTotal(ctx, cl.CaseID); err != nil {
		return models.CaseLawyer{}, err
	}
	row.CreatedAt = cl.CreatedAt
	return row, nil
}

// RemoveAllocation unassigns a lawyer. The last lawyer of a case cannot be removed.
func (s *Service) RemoveAllocation(ctx context.Context, actorID, allocationID uuid.UUID) error {
	cl, err := s.store.GetAllocation(ctx, allocationID)
	if err != nil {
		return err
	}
	cs, err := s.store.GetCase(ctx, cl.CaseID)
	if err != nil {
		return err
	}
	if len(cs.CaseLawyers) <= 1 {
		return apperrors.NewValidation("lawyers", "At least one lawyer is required")
	}
	if err := s.store.DeleteAllocation(ctx, allocationID); err != nil {
		return err
	}
	s.store.RecordHistory(ctx, cl.CaseID, actorID, utils.ActionAllocationRemoved, cl.LawyerID.String())
	return s.syncTotal(ctx, cl.CaseID)
}

// Delete removes a case together with its allocations.
func (s *Service) Delete(ctx context.Context, actorID, caseID uuid.UUID) error {
	cs, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCase(ctx, caseID); err != nil {
		return err
	}
	s.store.RecordHistory(ctx, caseID, actorID, utils.ActionDeleted, cs.CaseNumber)
	s.log.Info("case deleted", zap.String("case_id", caseID.String()), zap.String("actor_id", actorID.String()))
	s.cache.InvalidateAll(ctx)
	return nil
}

// syncTotal rewrites the denormalized commission_amount of a case.
func (s *Service) syncTotal(ctx context.Context, caseID uuid.UUID) error {
	defer s.cache.InvalidateAll(ctx)
	cs, err := s.store.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if len(cs.CaseLawyers) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, cl := range cs.CaseLawyers {
		sum = sum.Add(cl.CommissionAmount)
	}
	return s.store.UpdateCase(ctx, caseID, map[string]any{"commission_amount": sum})
}

/* ============================== Helpers ================================= */

const msgFixedAmount = "Required for a fixed commission"

// toAssignments resolves every requested lawyer. current holds the lawyers
// already on the case, keyed by lawyer id.
func toAssignments(in []LawyerInput, svc models.LegalService, current map[uuid.UUID]commissions.Assignment) ([]commissions.Assignment, error) {
	v := &apperrors.ValidationError{}
	out := make([]commissions.Assignment, 0, len(in))
	for i, l := range in {
		var base *commissions.Assignment
		if a, ok := current[l.LawyerID]; ok {
			base = &a
		}
		a, ok := resolveAssignment(l, svc, base)
		if !ok {
			v.Add(fmt.Sprintf("lawyers[%d].commission_amount", i), msgFixedAmount)
		}
		out = append(out, a)
	}
	return out, v.OrNil()
}

// resolveAssignment starts from base (the lawyer's current assignment) or the
// service defaults, then applies the fields the input sets. A paid base is
// returned unchanged. ok is false for a fixed rule with no amount to use.
func resolveAssignment(l LawyerInput, svc models.LegalService, base *commissions.Assignment) (a commissions.Assignment, ok bool) {
	if base != nil && base.Paid {
		return *base, true
	}
	if base != nil {
		a = *base
	} else {
		a = commissions.Assignment{
			LawyerID: l.LawyerID,
			Rule:     commissions.Rule{Type: svc.CommissionType, Percentage: svc.CommissionPercentage},
		}
		if a.Rule.Type == "" {
			a.Rule.Type = models.CommissionPercentage
		}
	}

	hasAmount := base != nil && base.Rule.Type == models.CommissionFixed
	if l.CommissionType != "" && l.CommissionType != a.Rule.Type {
		a.Rule.Type = l.CommissionType
		if a.Rule.Type == models.CommissionPercentage {
			a.Rule.Percentage = svc.CommissionPercentage
		}
	}
	if l.CommissionPercentage != nil {
		a.Rule.Percentage = *l.CommissionPercentage
	}
	if l.CommissionAmount != nil {
		a.Rule.Amount = *l.CommissionAmount
		hasAmount = true
	}
	return a, a.Rule.Type != models.CommissionFixed || hasAmount
}

func lawyerIDs(as []commissions.Assignment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(as))
	for _, a := range as {
		if a.LawyerID != uuid.Nil {
			ids = append(ids, a.LawyerID)
		}
	}
	return ids
}

// activeLawyers reports which of ids may be newly assigned. An id with no
// lawyer behind it is a NotFoundError.
func (s *Service) activeLawyers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	statuses, err := s.store.LawyerStatuses(ctx, ids)
	if err != nil {
		return nil, err
	}
	active := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		st, ok := statuses[id]
		if !ok {
			return nil, &apperrors.NotFoundError{Entity: "lawyer", ID: id.String()}
		}
		active[id] = st == models.LawyerActive
	}
	return active, nil
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}
