// Package db provides the process-wide pgxpool connection pool. The pool is
// built lazily on first use, sized as a small core plus burst overflow, and
// recycles connections periodically so a severed connection is never reused.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voleibolstats/voleibol-web/internal/config"
)

var (
	// ErrUnconfigured is returned when no connection target is configured.
	// Callers treat it as "no data", not as a failure.
	ErrUnconfigured = errors.New("database not configured")

	// ErrPoolExhausted is returned when no connection could be checked out
	// before the acquisition timeout.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrClosed is returned by Lazy.Pool after Close.
	ErrClosed = errors.New("database pool closed")
)

// Querier is the subset of a pgx connection used by the data access layer.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
	acquireTimeout time.Duration
}

// Lazy constructs the Pool on first use. A Lazy with an empty URL never
// connects and reports ErrUnconfigured.
type Lazy struct {
	cfg  *config.Config
	once func() (*Pool, error)

	mu     sync.Mutex
	closed bool
	pool   *Pool
}

// NewLazy returns a lazily initialized pool for cfg.
func NewLazy(cfg *config.Config) *Lazy {
	l := &Lazy{cfg: cfg}
	l.once = sync.OnceValues(func() (*Pool, error) {
		if !cfg.HasDatabase() {
			return nil, ErrUnconfigured
		}
		p, err := New(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		// Close may have run while the pool was being built.
		if l.closed {
			p.Close()
			return nil, ErrClosed
		}
		l.pool = p
		return p, nil
	})
	return l
}

// Pool returns the shared pool, constructing it on the first call.
// Concurrent first calls construct it exactly once.
func (l *Lazy) Pool() (*Pool, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	return l.once()
}

// Configured reports whether a connection target is set.
func (l *Lazy) Configured() bool {
	return l.cfg.HasDatabase()
}

// Close closes the pool if it was ever built.
func (l *Lazy) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.pool != nil {
		l.pool.Close()
	}
}

// New creates a new connection pool. It does not wait for connections to be
// established; the first query does.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(NormalizeURL(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns())
	poolCfg.MaxConnLifetime = cfg.DBPoolRecycle
	poolCfg.MaxConnLifetimeJitter = cfg.DBPoolRecycle / 10
	poolCfg.MaxConnIdleTime = cfg.DBPoolRecycle
	poolCfg.HealthCheckPeriod = 30 * time.Second

	// Liveness check before handing out a pooled connection.
	poolCfg.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		return conn.Ping(ctx) == nil
	}

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return &Pool{Pool: pool, acquireTimeout: cfg.DBAcquireTimeout}, nil
}

// Do checks out a connection, waiting at most the acquisition timeout, and
// runs fn with it. The connection is returned to the pool afterwards.
func (p *Pool) Do(ctx context.Context, fn func(q Querier) error) error {
	acquireCtx := ctx
	if p.acquireTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.acquireTimeout)
		defer cancel()
	}

	conn, err := p.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w after %s: %w", ErrPoolExhausted, p.acquireTimeout, err)
		}
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	return p.Do(ctx, func(q Querier) error {
		var n int
		return q.QueryRow(ctx, "health_check").Scan(&n)
	})
}

// NormalizeURL rewrites the legacy postgres:// scheme to postgresql://.
func NormalizeURL(raw string) string {
	url := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(url, "postgres://"); ok {
		return "postgresql://" + rest
	}
	return url
}

// registerPreparedStatements registers the statements shared by every
// schema variant. Variant-specific queries rely on pgx's statement cache.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		"health_check": "SELECT 1",

		"schema_columns": `SELECT table_name::text, column_name::text
			FROM information_schema.columns
			WHERE table_schema = current_schema()
			ORDER BY table_name, ordinal_position`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
