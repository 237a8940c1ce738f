package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/database"
	"github.com/lexpro/backoffice/pkg/models"
)

func TestClassify(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_cases_case_number"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_case_lawyers_lawyer"}
	conn := &pgconn.PgError{Code: "08006"}

	var ce *apperrors.ConflictError
	require.ErrorAs(t, classify("create case", dup), &ce)
	assert.Equal(t, "idx_cases_case_number", ce.Constraint)

	require.ErrorAs(t, classify("delete lawyer", fk), &ce)
	assert.Equal(t, "fk_case_lawyers_lawyer", ce.Constraint)

	var te *apperrors.TransientIOError
	require.ErrorAs(t, classify("list cases", conn), &te)
	assert.Equal(t, "list cases", te.Op)

	require.ErrorAs(t, classify("list cases", context.DeadlineExceeded), &te)

	nf := &apperrors.NotFoundError{Entity: "case", ID: "x"}
	assert.Same(t, nf, classify("get case", nf))

	plain := errors.New("syntax error")
	got := classify("get case", plain)
	assert.ErrorIs(t, got, plain)
	assert.False(t, apperrors.IsTransient(got))

	assert.NoError(t, classify("noop", nil))
}

func TestRunRetriesTransientOnce(t *testing.T) {
	p := &Postgres{timeout: time.Second, log: zap.NewNop(), db: &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{}}}

	calls := 0
	err := p.do(context.Background(), "flaky", func(*gorm.DB) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = p.do(context.Background(), "down", func(*gorm.DB) error {
		calls++
		return &pgconn.PgError{Code: "08006"}
	})
	assert.True(t, apperrors.IsTransient(err))
	assert.Equal(t, 2, calls)

	calls = 0
	err = p.doInsert(context.Background(), "insert", func(*gorm.DB) error {
		calls++
		return context.DeadlineExceeded
	})
	assert.True(t, apperrors.IsTransient(err))
	assert.Equal(t, 1, calls, "inserts are not replayed unless nothing was sent")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls = 0
	_ = p.do(ctx, "cancelled", func(*gorm.DB) error {
		calls++
		return context.DeadlineExceeded
	})
	assert.Equal(t, 1, calls)
}

/* ============================ Postgres-backed ============================ */

func openTestDB(t *testing.T) *Postgres {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Open(dsn, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	truncate := func() {
		db.Exec(`TRUNCATE case_histories, report_exports, app_settings, case_lawyers, cases, lawyers, legal_services, clients RESTART IDENTITY CASCADE`)
	}
	truncate()
	t.Cleanup(truncate)
	return New(db, 5*time.Second, zap.NewNop())
}

func TestPostgresCaseLifecycle(t *testing.T) {
	p := openTestDB(t)
	ctx := context.Background()

	cl := models.Client{Name: "Acme"}
	require.NoError(t, p.CreateClient(ctx, &cl))
	ana := models.Lawyer{Name: "Ana", Status: models.LawyerActive}
	beto := models.Lawyer{Name: "Beto", Status: models.LawyerInactive}
	require.NoError(t, p.CreateLawyer(ctx, &ana))
	require.NoError(t, p.CreateLawyer(ctx, &beto))

	ghost := uuid.New()
	statuses, err := p.LawyerStatuses(ctx, []uuid.UUID{ana.ID, beto.ID, ghost})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]models.LawyerStatus{
		ana.ID:  models.LawyerActive,
		beto.ID: models.LawyerInactive,
	}, statuses)

	cs := models.Case{
		CaseNumber:  "2026-0001",
		ClientID:    &cl.ID,
		TotalAmount: decimal.NewFromInt(10000),
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.CreateCase(ctx, &cs))

	dup := models.Case{CaseNumber: "2026-0001", StartDate: cs.StartDate}
	assert.True(t, apperrors.IsConflict(p.CreateCase(ctx, &dup)))

	row := models.CaseLawyer{
		CaseID: cs.ID, LawyerID: ana.ID,
		CommissionType:       models.CommissionPercentage,
		CommissionPercentage: decimal.NewFromInt(20),
		CommissionAmount:     decimal.NewFromInt(2000),
	}
	require.NoError(t, p.CreateAllocation(ctx, &row))
	again := row
	again.ID = uuid.Nil
	assert.True(t, apperrors.IsConflict(p.CreateAllocation(ctx, &again)))

	got, err := p.GetCase(ctx, cs.ID)
	require.NoError(t, err)
	require.Len(t, got.CaseLawyers, 1)
	require.NotNil(t, got.CaseLawyers[0].Lawyer)
	assert.Equal(t, "Ana", got.CaseLawyers[0].Lawyer.Name)
	require.NotNil(t, got.Client)

	nums, err := p.CaseNumbersForYear(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-0001"}, nums)

	pending, err := p.PendingAllocations(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	at := time.Now().UTC().Truncate(time.Second)
	paid, err := p.MarkAllocationPaid(ctx, row.ID, at)
	require.NoError(t, err)
	assert.True(t, paid.CommissionPaid)

	// second call leaves paid_at untouched
	paid2, err := p.MarkAllocationPaid(ctx, row.ID, at.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, paid.PaidAt.Equal(*paid2.PaidAt))

	require.NoError(t, p.DeleteCase(ctx, cs.ID))
	_, err = p.GetAllocation(ctx, row.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(p.DeleteCase(ctx, cs.ID)))
}

func TestPostgresLegacyAndSettings(t *testing.T) {
	p := openTestDB(t)
	ctx := context.Background()

	l := models.Lawyer{Name: "Carla", Status: models.LawyerActive}
	require.NoError(t, p.CreateLawyer(ctx, &l))
	cs := models.Case{
		CaseNumber:       "2025-0007",
		LawyerID:         &l.ID,
		TotalAmount:      decimal.NewFromInt(5000),
		CommissionAmount: decimal.NewFromInt(750),
		StartDate:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.CreateCase(ctx, &cs))

	legacy, err := p.PendingLegacyCases(ctx)
	require.NoError(t, err)
	require.Len(t, legacy, 1)

	require.NoError(t, p.MarkLegacyCasePaid(ctx, cs.ID))
	require.NoError(t, p.MarkLegacyCasePaid(ctx, cs.ID))
	legacy, err = p.PendingLegacyCases(ctx)
	require.NoError(t, err)
	assert.Empty(t, legacy)

	_, ok, err := p.Setting(ctx, "weekly_report_email")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, p.PutSetting(ctx, "weekly_report_email", "a@firm.test"))
	require.NoError(t, p.PutSetting(ctx, "weekly_report_email", "b@firm.test"))
	v, ok, err := p.Setting(ctx, "weekly_report_email")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b@firm.test", v)
}
