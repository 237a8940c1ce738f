package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lexpro/backoffice/pkg/models"
)

// Case history actions.
const (
	ActionCreated              = "created"
	ActionUpdated              = "updated"
	ActionDeleted              = "deleted"
	ActionAllocationAdded      = "allocation_added"
	ActionAllocationChanged    = "allocation_changed"
	ActionAllocationRemoved    = "allocation_removed"
	ActionCommissionLiquidated = "commission_liquidated"
)

// LogCaseHistory inserts an audit record into case_histories.
// Errors are ignored on purpose (best-effort logging).
func LogCaseHistory(
	ctx context.Context,
	db *gorm.DB,
	caseID, actorID uuid.UUID,
	action, detail string,
) {
	_ = db.WithContext(ctx).Create(&models.CaseHistory{
		CaseID:    caseID,
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	}).Error
}
