// Package store is the Postgres gateway. Every call runs under a per-call
// timeout and transient failures are retried once before surfacing as
// *apperrors.TransientIOError.
package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/utils"
)

type Postgres struct {
	db      *gorm.DB
	timeout time.Duration
	log     *zap.Logger
}

func New(db *gorm.DB, timeout time.Duration, log *zap.Logger) *Postgres {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Postgres{db: db, timeout: timeout, log: log}
}

// do runs an idempotent call, retrying once on a transient error.
func (p *Postgres) do(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	return p.run(ctx, op, isTransient, fn)
}

// doInsert retries only when the driver guarantees nothing reached the server.
func (p *Postgres) doInsert(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	return p.run(ctx, op, pgconn.SafeToRetry, fn)
}

func (p *Postgres) run(ctx context.Context, op string, retryable func(error) bool, fn func(db *gorm.DB) error) error {
	err := p.attempt(ctx, fn)
	if err != nil && retryable(err) && ctx.Err() == nil {
		p.log.Warn("retrying database call", zap.String("op", op), zap.Error(err))
		err = p.attempt(ctx, fn)
	}
	return classify(op, err)
}

func (p *Postgres) attempt(ctx context.Context, fn func(db *gorm.DB) error) error {
	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return fn(p.db.WithContext(cctx))
}

// classify maps driver errors onto apperrors kinds. Errors that already are
// one of those kinds pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *apperrors.ValidationError
		nf *apperrors.NotFoundError
		ce *apperrors.ConflictError
	)
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &apperrors.ConflictError{Constraint: pgErr.ConstraintName, Message: "duplicate value for " + pgErr.ConstraintName}
		case "23503":
			return &apperrors.ConflictError{Constraint: pgErr.ConstraintName, Message: "record is referenced by, or references, a missing record"}
		}
	}
	if isTransient(err) {
		return &apperrors.TransientIOError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// connection exceptions, serialization failures, deadlocks, admin shutdown
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "57P01"
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// first loads one row by id, turning "record not found" into NotFoundError.
func first(db *gorm.DB, dst any, entity string, id uuid.UUID) error {
	err := db.First(dst, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &apperrors.NotFoundError{Entity: entity, ID: id.String()}
	}
	return err
}

// updateByID applies a partial update and reports NotFound when no row matched.
func updateByID(db *gorm.DB, model any, entity string, id uuid.UUID, fields map[string]any) error {
	res := db.Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Entity: entity, ID: id.String()}
	}
	return nil
}

func deleteByID(db *gorm.DB, model any, entity string, id uuid.UUID) error {
	res := db.Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Entity: entity, ID: id.String()}
	}
	return nil
}

// RecordHistory writes a case audit entry. Failures are ignored.
func (p *Postgres) RecordHistory(ctx context.Context, caseID, actorID uuid.UUID, action, detail string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	utils.LogCaseHistory(cctx, p.db, caseID, actorID, action, detail)
}

// Ping checks the connection, used by /health.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.do(ctx, "ping", func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(db.Statement.Context)
	})
}
