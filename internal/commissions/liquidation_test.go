package commissions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/internal/commissions"
	mock_commissions "github.com/lexpro/backoffice/internal/commissions/mocks"
	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
)

func TestLiquidator_LiquidateAll(t *testing.T) {
	actor := uuid.New()
	caseID := uuid.New()

	rows := make([]models.CaseLawyer, 5)
	for i := range rows {
		rows[i] = models.CaseLawyer{ID: uuid.New(), CaseID: caseID, LawyerID: uuid.New()}
	}
	legacyCase := models.Case{ID: uuid.New()}

	tests := []struct {
		name          string
		legacy        []models.Case
		failAt        map[int]bool
		failLegacy    bool
		wantSucceeded int
		wantFailedIDs []string
	}{
		{
			name:          "all succeed",
			legacy:        []models.Case{legacyCase},
			wantSucceeded: 6,
		},
		{
			name:          "one allocation fails",
			failAt:        map[int]bool{2: true},
			wantSucceeded: 4,
			wantFailedIDs: []string{rows[2].ID.String()},
		},
		{
			name:          "legacy row fails",
			legacy:        []models.Case{legacyCase},
			failLegacy:    true,
			wantSucceeded: 5,
			wantFailedIDs: []string{legacyCase.ID.String()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mock_commissions.NewMockStore(ctrl)
			store.EXPECT().PendingAllocations(gomock.Any()).Return(rows, nil)
			store.EXPECT().PendingLegacyCases(gomock.Any()).Return(tt.legacy, nil)

			for i, r := range rows {
				if tt.failAt[i] {
					store.EXPECT().MarkAllocationPaid(gomock.Any(), r.ID, gomock.Any()).
						Return(models.CaseLawyer{}, errors.New("write timeout"))
					continue
				}
				store.EXPECT().MarkAllocationPaid(gomock.Any(), r.ID, gomock.Any()).Return(r, nil)
				store.EXPECT().RecordHistory(gomock.Any(), caseID, actor, "commission_liquidated", gomock.Any())
			}
			for _, cs := range tt.legacy {
				if tt.failLegacy {
					store.EXPECT().MarkLegacyCasePaid(gomock.Any(), cs.ID).Return(errors.New("boom"))
					continue
				}
				store.EXPECT().MarkLegacyCasePaid(gomock.Any(), cs.ID).Return(nil)
				store.EXPECT().RecordHistory(gomock.Any(), cs.ID, actor, "commission_liquidated", "legacy commission")
			}

			l := commissions.NewLiquidator(store, zap.NewNop())
			rep, err := l.LiquidateAll(context.Background(), actor)

			assert.Equal(t, tt.wantSucceeded, rep.Succeeded)
			if len(tt.wantFailedIDs) == 0 {
				assert.NoError(t, err)
				assert.Empty(t, rep.Failed)
				return
			}

			var pbf *apperrors.PartialBatchFailure
			require.ErrorAs(t, err, &pbf)
			assert.Equal(t, tt.wantSucceeded, pbf.Succeeded)
			ids := make([]string, 0, len(pbf.Failed))
			for _, f := range pbf.Failed {
				ids = append(ids, f.ID)
			}
			assert.Equal(t, tt.wantFailedIDs, ids)
		})
	}
}

func TestLiquidator_LiquidateAll_LoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_commissions.NewMockStore(ctrl)
	loadErr := &apperrors.TransientIOError{Op: "pending allocations", Err: errors.New("conn refused")}
	store.EXPECT().PendingAllocations(gomock.Any()).Return(nil, loadErr)

	_, err := commissions.NewLiquidator(store, zap.NewNop()).LiquidateAll(context.Background(), uuid.Nil)
	assert.True(t, apperrors.IsTransient(err))
}

func TestLiquidator_LiquidateAll_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	row := models.CaseLawyer{ID: uuid.New(), CaseID: uuid.New()}
	store := mock_commissions.NewMockStore(ctrl)
	store.EXPECT().PendingAllocations(gomock.Any()).Return([]models.CaseLawyer{row}, nil)
	store.EXPECT().PendingLegacyCases(gomock.Any()).Return(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := commissions.NewLiquidator(store, zap.NewNop()).LiquidateAll(ctx, uuid.Nil)
	var pbf *apperrors.PartialBatchFailure
	require.ErrorAs(t, err, &pbf)
	assert.Equal(t, 0, rep.Succeeded)
	assert.Equal(t, row.ID.String(), pbf.Failed[0].ID)
}

func TestLiquidator_Liquidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	row := models.CaseLawyer{ID: uuid.New(), CaseID: uuid.New(), CommissionPaid: true}
	store := mock_commissions.NewMockStore(ctrl)
	store.EXPECT().MarkAllocationPaid(gomock.Any(), row.ID, gomock.Any()).Return(row, nil)
	store.EXPECT().RecordHistory(gomock.Any(), row.CaseID, gomock.Any(), "commission_liquidated", gomock.Any())

	got, err := commissions.NewLiquidator(store, zap.NewNop()).Liquidate(context.Background(), row.ID, uuid.New())
	require.NoError(t, err)
	assert.True(t, got.CommissionPaid)
}

func TestLiquidator_Liquidate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	store := mock_commissions.NewMockStore(ctrl)
	store.EXPECT().MarkAllocationPaid(gomock.Any(), id, gomock.Any()).
		Return(models.CaseLawyer{}, &apperrors.NotFoundError{Entity: "allocation", ID: id.String()})

	_, err := commissions.NewLiquidator(store, zap.NewNop()).Liquidate(context.Background(), id, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}
