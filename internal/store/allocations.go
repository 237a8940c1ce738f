package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexpro/backoffice/pkg/models"
)

func (p *Postgres) GetAllocation(ctx context.Context, id uuid.UUID) (models.CaseLawyer, error) {
	var cl models.CaseLawyer
	err := p.do(ctx, "get allocation", func(db *gorm.DB) error {
		return first(db.Preload("Lawyer"), &cl, "allocation", id)
	})
	return cl, err
}

// CreateAllocation inserts one case_lawyers row. Assigning the same lawyer twice
// to a case violates ux_case_lawyer and returns *apperrors.ConflictError.
func (p *Postgres) CreateAllocation(ctx context.Context, cl *models.CaseLawyer) error {
	return p.doInsert(ctx, "create allocation", func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(cl).Error
	})
}

func (p *Postgres) UpdateAllocation(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return p.do(ctx, "update allocation", func(db *gorm.DB) error {
		return updateByID(db, &models.CaseLawyer{}, "allocation", id, fields)
	})
}

func (p *Postgres) DeleteAllocation(ctx context.Context, id uuid.UUID) error {
	return p.do(ctx, "delete allocation", func(db *gorm.DB) error {
		return deleteByID(db, &models.CaseLawyer{}, "allocation", id)
	})
}

// PendingAllocations lists unpaid allocations with a positive amount, oldest first.
func (p *Postgres) PendingAllocations(ctx context.Context) ([]models.CaseLawyer, error) {
	var out []models.CaseLawyer
	err := p.do(ctx, "pending allocations", func(db *gorm.DB) error {
		return db.Where("commission_paid = ? AND commission_amount > 0", false).
			Order("created_at ASC").
			Find(&out).Error
	})
	return out, err
}

// MarkAllocationPaid sets commission_paid and paid_at. Already paid rows are
// returned unchanged, so a retried call is harmless.
func (p *Postgres) MarkAllocationPaid(ctx context.Context, id uuid.UUID, at time.Time) (models.CaseLawyer, error) {
	var cl models.CaseLawyer
	err := p.do(ctx, "liquidate allocation", func(db *gorm.DB) error {
		if err := db.Model(&models.CaseLawyer{}).
			Where("id = ? AND commission_paid = ?", id, false).
			Updates(map[string]any{"commission_paid": true, "paid_at": at}).Error; err != nil {
			return err
		}
		return first(db, &cl, "allocation", id)
	})
	return cl, err
}
