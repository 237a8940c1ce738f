// Package commissions computes, validates and liquidates lawyer commissions.
//
// An assignment's amount is a snapshot taken when the assignment is written.
// It is only re-derived by an explicit recompute (rule edit or case total edit).
package commissions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
)

var hundred = decimal.NewFromInt(100)

// Rule is how one assignment's commission is derived.
type Rule struct {
	Type       models.CommissionType
	Percentage decimal.Decimal // used when Type is percentage
	Amount     decimal.Decimal // used when Type is fixed
}

// Assignment is one lawyer on one case together with its stored amount.
type Assignment struct {
	ID       uuid.UUID // zero until persisted
	LawyerID uuid.UUID
	Rule     Rule
	Amount   decimal.Decimal
	Paid     bool
	PaidAt   *time.Time
}

// ComputeAmount derives the commission for a case total.
// Percentage amounts are rounded half-to-even at 2 decimals. Negative inputs count as zero.
func ComputeAmount(total decimal.Decimal, r Rule) decimal.Decimal {
	switch r.Type {
	case models.CommissionFixed:
		return nonNegative(r.Amount)
	default:
		pct := nonNegative(r.Percentage)
		return nonNegative(total).Mul(pct).Div(hundred).RoundBank(2)
	}
}

// Recompute refreshes the amount of every unpaid assignment from its rule.
// Paid assignments keep their snapshot. The input slice is not modified.
func Recompute(total decimal.Decimal, as []Assignment) []Assignment {
	out := make([]Assignment, len(as))
	for i, a := range as {
		if !a.Paid {
			a.Amount = ComputeAmount(total, a.Rule)
		}
		out[i] = a
	}
	return out
}

// TotalCommission sums the stored amounts.
func TotalCommission(as []Assignment) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range as {
		sum = sum.Add(a.Amount)
	}
	return sum
}

// ValidateAssignmentSet checks a full set of assignments for a case.
//
// active holds the lawyers that may be newly assigned. existing holds the lawyers
// already on the case; they stay valid even after being deactivated.
func ValidateAssignmentSet(as []Assignment, active, existing map[uuid.UUID]bool) error {
	v := &apperrors.ValidationError{}
	if len(as) == 0 {
		v.Add("lawyers", "At least one lawyer is required")
		return v
	}

	seen := make(map[uuid.UUID]bool, len(as))
	for i, a := range as {
		field := fmt.Sprintf("lawyers[%d]", i)
		if a.LawyerID == uuid.Nil {
			v.Add(field+".lawyer_id", "This field is required")
			continue
		}
		if seen[a.LawyerID] {
			v.Add(field+".lawyer_id", "Lawyer is already assigned to this case")
		}
		seen[a.LawyerID] = true
		if !existing[a.LawyerID] && !active[a.LawyerID] {
			v.Add(field+".lawyer_id", "Lawyer is not active")
		}
		validateRule(v, field, a.Rule)
	}
	return v.OrNil()
}

// ValidateRule checks a single rule, e.g. when one allocation is edited.
func ValidateRule(r Rule) error {
	v := &apperrors.ValidationError{}
	validateRule(v, "", r)
	return v.OrNil()
}

func validateRule(v *apperrors.ValidationError, prefix string, r Rule) {
	if prefix != "" {
		prefix += "."
	}
	switch r.Type {
	case models.CommissionPercentage:
		if r.Percentage.IsNegative() || r.Percentage.GreaterThan(hundred) {
			v.Add(prefix+"commission_percentage", "Must be between 0 and 100")
		}
	case models.CommissionFixed:
		if r.Amount.IsNegative() {
			v.Add(prefix+"commission_amount", "Must be greater than or equal to 0")
		}
	default:
		v.Add(prefix+"commission_type", "Value is not allowed")
	}
}

// FromModel turns a stored allocation row into an Assignment.
func FromModel(cl models.CaseLawyer) Assignment {
	r := Rule{Type: cl.CommissionType, Percentage: cl.CommissionPercentage}
	if cl.CommissionType == models.CommissionFixed {
		r.Amount = cl.CommissionAmount
	}
	return Assignment{
		ID:       cl.ID,
		LawyerID: cl.LawyerID,
		Rule:     r,
		Amount:   cl.CommissionAmount,
		Paid:     cl.CommissionPaid,
		PaidAt:   cl.PaidAt,
	}
}

// ToModel builds the row to persist for caseID.
func (a Assignment) ToModel(caseID uuid.UUID) models.CaseLawyer {
	pct := decimal.Zero
	if a.Rule.Type == models.CommissionPercentage {
		pct = a.Rule.Percentage
	}
	return models.CaseLawyer{
		ID:                   a.ID,
		CaseID:               caseID,
		LawyerID:             a.LawyerID,
		CommissionType:       a.Rule.Type,
		CommissionPercentage: pct,
		CommissionAmount:     a.Amount,
		CommissionPaid:       a.Paid,
		PaidAt:               a.PaidAt,
	}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
