// Package postgres provides PostgreSQL persistence using pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/config"
)

// slowQuery is the duration above which a query is logged at warn.
const slowQuery = 250 * time.Millisecond

// Pool wraps a pgx connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool creates a connection pool from cfg. Every query is traced to
// logger: at debug normally, at warn when slow or failed.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a Pool that answered a ping, or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.Tracer = &queryTracer{logger: logger}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}

type traceKey struct{}

type traceStart struct {
	sql   string
	start time.Time
}

// queryTracer implements pgx.QueryTracer.
type queryTracer struct {
	logger *zap.Logger
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{sql: data.SQL, start: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	ts, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := time.Since(ts.start)
	fields := []zap.Field{
		zap.String("sql", ts.sql),
		zap.Duration("elapsed", elapsed),
		zap.String("tag", data.CommandTag.String()),
	}
	switch {
	case data.Err != nil:
		t.logger.Warn("query failed", append(fields, zap.Error(data.Err))...)
	case elapsed > slowQuery:
		t.logger.Warn("slow query", fields...)
	default:
		t.logger.Debug("query", fields...)
	}
}
