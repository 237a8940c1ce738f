package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexpro/backoffice/pkg/models"
)

/* =============================== Clients ================================ */

func (p *Postgres) ListClients(ctx context.Context) ([]models.Client, error) {
	out := []models.Client{}
	err := p.do(ctx, "list clients", func(db *gorm.DB) error {
		return db.Order("created_at DESC").Find(&out).Error
	})
	return out, err
}

func (p *Postgres) GetClient(ctx context.Context, id uuid.UUID) (models.Client, error) {
	var c models.Client
	err := p.do(ctx, "get client", func(db *gorm.DB) error {
		return first(db, &c, "client", id)
	})
	return c, err
}

func (p *Postgres) CreateClient(ctx context.Context, c *models.Client) error {
	return p.doInsert(ctx, "create client", func(db *gorm.DB) error {
		return db.Create(c).Error
	})
}

/* =============================== Services =============================== */

func (p *Postgres) ListServices(ctx context.Context) ([]models.LegalService, error) {
	out := []models.LegalService{}
	err := p.do(ctx, "list services", func(db *gorm.DB) error {
		return db.Order("created_at DESC").Find(&out).Error
	})
	return out, err
}

func (p *Postgres) GetService(ctx context.Context, id uuid.UUID) (models.LegalService, error) {
	var s models.LegalService
	err := p.do(ctx, "get service", func(db *gorm.DB) error {
		return first(db, &s, "service", id)
	})
	return s, err
}

func (p *Postgres) CreateService(ctx context.Context, s *models.LegalService) error {
	return p.doInsert(ctx, "create service", func(db *gorm.DB) error {
		return db.Create(s).Error
	})
}

// UpdateService applies fields and returns the stored row.
func (p *Postgres) UpdateService(ctx context.Context, id uuid.UUID, fields map[string]any) (models.LegalService, error) {
	var s models.LegalService
	err := p.do(ctx, "update service", func(db *gorm.DB) error {
		if err := updateByID(db, &models.LegalService{}, "service", id, fields); err != nil {
			return err
		}
		return first(db, &s, "service", id)
	})
	return s, err
}

// DeleteService clears service_id on cases that referenced it.
func (p *Postgres) DeleteService(ctx context.Context, id uuid.UUID) error {
	return p.do(ctx, "delete service", func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Case{}).Where("service_id = ?", id).Update("service_id", nil).Error; err != nil {
				return err
			}
			return deleteByID(tx, &models.LegalService{}, "service", id)
		})
	})
}

/* =============================== Lawyers ================================ */

func (p *Postgres) ListLawyers(ctx context.Context) ([]models.Lawyer, error) {
	out := []models.Lawyer{}
	err := p.do(ctx, "list lawyers", func(db *gorm.DB) error {
		return db.Order("created_at DESC").Find(&out).Error
	})
	return out, err
}

func (p *Postgres) GetLawyer(ctx context.Context, id uuid.UUID) (models.Lawyer, error) {
	var l models.Lawyer
	err := p.do(ctx, "get lawyer", func(db *gorm.DB) error {
		return first(db, &l, "lawyer", id)
	})
	return l, err
}

func (p *Postgres) CreateLawyer(ctx context.Context, l *models.Lawyer) error {
	return p.doInsert(ctx, "create lawyer", func(db *gorm.DB) error {
		return db.Create(l).Error
	})
}

func (p *Postgres) UpdateLawyer(ctx context.Context, id uuid.UUID, fields map[string]any) (models.Lawyer, error) {
	var l models.Lawyer
	err := p.do(ctx, "update lawyer", func(db *gorm.DB) error {
		if err := updateByID(db, &models.Lawyer{}, "lawyer", id, fields); err != nil {
			return err
		}
		return first(db, &l, "lawyer", id)
	})
	return l, err
}

// DeleteLawyer fails with a ConflictError while any case or allocation
// references the lawyer; deactivate instead.
func (p *Postgres) DeleteLawyer(ctx context.Context, id uuid.UUID) error {
	return p.do(ctx, "delete lawyer", func(db *gorm.DB) error {
		return deleteByID(db, &models.Lawyer{}, "lawyer", id)
	})
}

// LawyerStatuses returns the status of each of ids that exists. Unknown ids
// are absent from the map.
func (p *Postgres) LawyerStatuses(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.LawyerStatus, error) {
	out := make(map[uuid.UUID]models.LawyerStatus, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Lawyer
	err := p.do(ctx, "lawyer statuses", func(db *gorm.DB) error {
		rows = rows[:0]
		return db.Select("id", "status").Where("id IN ?", ids).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	for _, l := range rows {
		out[l.ID] = l.Status
	}
	return out, nil
}
