package cases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lexpro/backoffice/pkg/models"
)

// Allocation is the uniform view of one lawyer's commission on a case,
// whether it comes from a case_lawyers row or the legacy columns on the case.
type Allocation struct {
	ID                   uuid.UUID             `json:"id"` // zero for legacy allocations
	CaseID               uuid.UUID             `json:"case_id"`
	LawyerID             uuid.UUID             `json:"lawyer_id"`
	LawyerName           string                `json:"lawyer_name"`
	CommissionType       models.CommissionType `json:"commission_type"`
	CommissionPercentage decimal.Decimal       `json:"commission_percentage"`
	CommissionAmount     decimal.Decimal       `json:"commission_amount"`
	CommissionPaid       bool                  `json:"commission_paid"`
	PaidAt               *time.Time            `json:"paid_at"`
	Legacy               bool                  `json:"legacy"`
}

// Normalize resolves a case's assignments once: allocation rows win,
// else the legacy lawyer_id/commission_amount pair, else nothing.
// Expects CaseLawyers (and their Lawyer) and Lawyer to be preloaded for names.
func Normalize(cs models.Case) []Allocation {
	if len(cs.CaseLawyers) > 0 {
		out := make([]Allocation, 0, len(cs.CaseLawyers))
		for _, cl := range cs.CaseLawyers {
			a := Allocation{
				ID:                   cl.ID,
				CaseID:               cs.ID,
				LawyerID:             cl.LawyerID,
				CommissionType:       cl.CommissionType,
				CommissionPercentage: cl.CommissionPercentage,
				CommissionAmount:     cl.CommissionAmount,
				CommissionPaid:       cl.CommissionPaid,
				PaidAt:               cl.PaidAt,
			}
			if cl.Lawyer != nil {
				a.LawyerName = cl.Lawyer.Name
			}
			out = append(out, a)
		}
		return out
	}

	if cs.LawyerID != nil && *cs.LawyerID != uuid.Nil {
		a := Allocation{
			CaseID:           cs.ID,
			LawyerID:         *cs.LawyerID,
			CommissionType:   models.CommissionFixed,
			CommissionAmount: cs.CommissionAmount,
			CommissionPaid:   cs.CommissionPaid,
			Legacy:           true,
		}
		if cs.Lawyer != nil {
			a.LawyerName = cs.Lawyer.Name
		}
		return []Allocation{a}
	}
	return nil
}

// LawyerView is what lists and reports show in the "lawyer" column.
type LawyerView struct {
	Names           []string        `json:"names"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	Unassigned      bool            `json:"unassigned"`
}

// ResolveLawyerView summarises Normalize for display.
func ResolveLawyerView(cs models.Case) LawyerView {
	allocs := Normalize(cs)
	if len(allocs) == 0 {
		return LawyerView{Names: []string{}, TotalCommission: decimal.Zero, Unassigned: true}
	}
	v := LawyerView{Names: make([]string, 0, len(allocs)), TotalCommission: decimal.Zero}
	for _, a := range allocs {
		v.Names = append(v.Names, a.LawyerName)
		v.TotalCommission = v.TotalCommission.Add(a.CommissionAmount)
	}
	return v
}
