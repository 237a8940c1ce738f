package commissions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
	"github.com/lexpro/backoffice/pkg/utils"
)

// Store is the persistence the liquidator needs.
//
// Mark* calls are idempotent: marking an already paid row succeeds without change.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=liquidation.go Store
type Store interface {
	PendingAllocations(ctx context.Context) ([]models.CaseLawyer, error)
	PendingLegacyCases(ctx context.Context) ([]models.Case, error)
	MarkAllocationPaid(ctx context.Context, id uuid.UUID, at time.Time) (models.CaseLawyer, error)
	MarkLegacyCasePaid(ctx context.Context, caseID uuid.UUID) error
	RecordHistory(ctx context.Context, caseID, actorID uuid.UUID, action, detail string)
}

// Report summarises a bulk liquidation.
type Report struct {
	Succeeded int                 `json:"succeeded"`
	Failed    []apperrors.Failure `json:"failed"`
}

// Liquidator moves commissions from pending to paid. There is no way back.
type Liquidator struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewLiquidator(store Store, log *zap.Logger) *Liquidator {
	return &Liquidator{store: store, log: log, now: time.Now}
}

// Liquidate marks a single allocation as paid.
func (l *Liquidator) Liquidate(ctx context.Context, allocationID, actorID uuid.UUID) (models.CaseLawyer, error) {
	cl, err := l.store.MarkAllocationPaid(ctx, allocationID, l.now())
	if err != nil {
		return models.CaseLawyer{}, err
	}
	l.store.RecordHistory(ctx, cl.CaseID, actorID, utils.ActionCommissionLiquidated, "allocation "+cl.ID.String())
	return cl, nil
}

// LiquidateLegacy marks the single-lawyer commission stored on the case row as paid.
func (l *Liquidator) LiquidateLegacy(ctx context.Context, caseID, actorID uuid.UUID) error {
	if err := l.store.MarkLegacyCasePaid(ctx, caseID); err != nil {
		return err
	}
	l.store.RecordHistory(ctx, caseID, actorID, utils.ActionCommissionLiquidated, "legacy commission")
	return nil
}

// LiquidateAll pays every pending commission, one independent update per row.
// Rows that fail are reported; rows that succeeded stay paid. When any row
// fails the returned error is a *apperrors.PartialBatchFailure.
func (l *Liquidator) LiquidateAll(ctx context.Context, actorID uuid.UUID) (Report, error) {
	pending, err := l.store.PendingAllocations(ctx)
	if err != nil {
		return Report{}, err
	}
	legacy, err := l.store.PendingLegacyCases(ctx)
	if err != nil {
		return Report{}, err
	}

	rep := Report{Failed: []apperrors.Failure{}}
	at := l.now()

	for _, cl := range pending {
		if err := ctx.Err(); err != nil {
			rep.Failed = append(rep.Failed, apperrors.Failure{ID: cl.ID.String(), CaseID: cl.CaseID.String(), Reason: err.Error()})
			continue
		}
		if _, err := l.store.MarkAllocationPaid(ctx, cl.ID, at); err != nil {
			l.log.Warn("liquidation failed", zap.String("allocation_id", cl.ID.String()), zap.Error(err))
			rep.Failed = append(rep.Failed, apperrors.Failure{ID: cl.ID.String(), CaseID: cl.CaseID.String(), Reason: err.Error()})
			continue
		}
		l.store.RecordHistory(ctx, cl.CaseID, actorID, utils.ActionCommissionLiquidated, "allocation "+cl.ID.String())
		rep.Succeeded++
	}

	for _, cs := range legacy {
		if err := ctx.Err(); err != nil {
			rep.Failed = append(rep.Failed, apperrors.Failure{ID: cs.ID.String(), CaseID: cs.ID.String(), Legacy: true, Reason: err.Error()})
			continue
		}
		if err := l.store.MarkLegacyCasePaid(ctx, cs.ID); err != nil {
			l.log.Warn("legacy liquidation failed", zap.String("case_id", cs.ID.String()), zap.Error(err))
			rep.Failed = append(rep.Failed, apperrors.Failure{ID: cs.ID.String(), CaseID: cs.ID.String(), Legacy: true, Reason: err.Error()})
			continue
		}
		l.store.RecordHistory(ctx, cs.ID, actorID, utils.ActionCommissionLiquidated, "legacy commission")
		rep.Succeeded++
	}

	l.log.Info("bulk liquidation finished",
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("failed", len(rep.Failed)))

	if len(rep.Failed) > 0 {
		return rep, &apperrors.PartialBatchFailure{Succeeded: rep.Succeeded, Failed: rep.Failed}
	}
	return rep, nil
}
