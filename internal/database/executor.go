package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Querier runs statements against the store. *pgxpool.Pool satisfies it:
// every call acquires a pooled connection and hands it back once the
// statement (and, for reads, its rows) is done.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Executor runs parameterized statements. Arguments are always sent as bound
// parameters ($1, $2, ...), never interpolated into the statement text.
type Executor struct {
	q                  Querier
	log                *zerolog.Logger
	slowQueryThreshold time.Duration
}

// NewExecutor wraps q. Statements slower than slowQueryThreshold are logged at
// warn level; a zero threshold disables slow query logging.
func NewExecutor(q Querier, logger *zerolog.Logger, slowQueryThreshold time.Duration) *Executor {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Executor{
		q:                  q,
		log:                logger,
		slowQueryThreshold: slowQueryThreshold,
	}
}

// Select runs a read statement and collects every row into a T, matching
// columns to struct fields by name (`db` tags). Rows are closed on all paths,
// which releases the connection.
func Select[T any](ctx context.Context, e *Executor, sql string, args ...any) ([]T, error) {
	start := time.Now()

	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		e.observe(ctx, sql, start, err)
		return nil, fmt.Errorf("query: %w", err)
	}

	// CollectRows closes rows before returning.
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	e.observe(ctx, sql, start, err)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	return items, nil
}

// Exec runs a write statement and returns the number of affected rows.
func (e *Executor) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	start := time.Now()

	tag, err := e.q.Exec(ctx, sql, args...)
	e.observe(ctx, sql, start, err)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

// logger prefers the request-scoped logger carried by ctx so statement logs
// share the request's fields.
func (e *Executor) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return e.log
}

func (e *Executor) observe(ctx context.Context, sql string, start time.Time, err error) {
	elapsed := time.Since(start)
	log := e.logger(ctx)

	if err != nil {
		log.Error().
			Err(err).
			Str("sql", sql).
			Dur("duration", elapsed).
			Msg("statement failed")
		return
	}

	if e.slowQueryThreshold > 0 && elapsed >= e.slowQueryThreshold {
		log.Warn().
			Str("sql", sql).
			Dur("duration", elapsed).
			Dur("threshold", e.slowQueryThreshold).
			Msg("slow statement")
	}
}
