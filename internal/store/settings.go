package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexpro/backoffice/pkg/models"
)

// Setting returns the stored value and whether the key exists.
func (p *Postgres) Setting(ctx context.Context, key string) (string, bool, error) {
	var s models.AppSetting
	found := true
	err := p.do(ctx, "get setting", func(db *gorm.DB) error {
		err := db.First(&s, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
			return nil
		}
		found = true
		return err
	})
	return s.Value, found && err == nil, err
}

// PutSetting upserts key/value.
func (p *Postgres) PutSetting(ctx context.Context, key, value string) error {
	return p.do(ctx, "put setting", func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&models.AppSetting{Key: key, Value: value, UpdatedAt: time.Now()}).Error
	})
}

// RecordExport stores metadata of an uploaded report document.
func (p *Postgres) RecordExport(ctx context.Context, e *models.ReportExport) error {
	return p.doInsert(ctx, "record export", func(db *gorm.DB) error {
		return db.Create(e).Error
	})
}
