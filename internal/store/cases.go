package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
)

// withCaseRelations preloads everything the lawyer view and reports need.
func withCaseRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Service").
		Preload("Lawyer").
		Preload("CaseLawyers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("CaseLawyers.Lawyer")
}

// ListCases returns every case, newest first, with relations.
func (p *Postgres) ListCases(ctx context.Context) ([]models.Case, error) {
	var out []models.Case
	err := p.do(ctx, "list cases", func(db *gorm.DB) error {
		return withCaseRelations(db).Order("created_at DESC").Find(&out).Error
	})
	if out == nil {
		out = []models.Case{}
	}
	return out, err
}

func (p *Postgres) GetCase(ctx context.Context, id uuid.UUID) (models.Case, error) {
	var cs models.Case
	err := p.do(ctx, "get case", func(db *gorm.DB) error {
		return first(withCaseRelations(db), &cs, "case", id)
	})
	return cs, err
}

// CaseNumbersForYear returns every case number starting with "YYYY-".
func (p *Postgres) CaseNumbersForYear(ctx context.Context, year int) ([]string, error) {
	var nums []string
	err := p.do(ctx, "case numbers", func(db *gorm.DB) error {
		return db.Model(&models.Case{}).
			Where("case_number LIKE ?", fmt.Sprintf("%04d-%%", year)).
			Pluck("case_number", &nums).Error
	})
	return nums, err
}

// CreateCase inserts the case row only; allocations are written separately.
// A taken case number comes back as *apperrors.ConflictError.
func (p *Postgres) CreateCase(ctx context.Context, cs *models.Case) error {
	return p.doInsert(ctx, "create case", func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(cs).Error
	})
}

func (p *Postgres) UpdateCase(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return p.do(ctx, "update case", func(db *gorm.DB) error {
		return updateByID(db, &models.Case{}, "case", id, fields)
	})
}

// DeleteCase removes the case; allocation rows go with it (ON DELETE CASCADE).
// History rows are kept.
func (p *Postgres) DeleteCase(ctx context.Context, id uuid.UUID) error {
	return p.do(ctx, "delete case", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("case_id = ?", id).Delete(&models.CaseLawyer{}).Error; err != nil {
				return err
			}
			return deleteByID(tx, &models.Case{}, "case", id)
		})
	})
}

// PendingLegacyCases lists unpaid single-lawyer commissions on cases without allocation rows.
func (p *Postgres) PendingLegacyCases(ctx context.Context) ([]models.Case, error) {
	var out []models.Case
	err := p.do(ctx, "pending legacy cases", func(db *gorm.DB) error {
		return db.
			Where("lawyer_id IS NOT NULL AND commission_paid = ? AND commission_amount > 0", false).
			Where("NOT EXISTS (SELECT 1 FROM case_lawyers cl WHERE cl.case_id = cases.id)").
			Order("created_at ASC").
			Find(&out).Error
	})
	return out, err
}

// MarkLegacyCasePaid flips the legacy commission_paid flag. Already paid is a no-op.
func (p *Postgres) MarkLegacyCasePaid(ctx context.Context, caseID uuid.UUID) error {
	return p.do(ctx, "liquidate legacy commission", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var cs models.Case
			if err := first(tx.Clauses(clause.Locking{Strength: "UPDATE"}), &cs, "case", caseID); err != nil {
				return err
			}
			if cs.LawyerID == nil {
				return apperrors.NewValidation("case_id", "Case has no legacy commission")
			}
			if cs.CommissionPaid {
				return nil
			}
			return tx.Model(&models.Case{}).Where("id = ?", caseID).Update("commission_paid", true).Error
		})
	})
}
