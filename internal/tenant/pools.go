package tenant

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/observability"
	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/platform/db"
)

// DialFunc opens a connection pool for one company. Replaced in tests.
type DialFunc func(ctx context.Context, t Tenant) (*pgxpool.Pool, error)

// PoolsConfig collects construction parameters for the pool manager.
type PoolsConfig struct {
	Registry       *Registry
	Logger         *slog.Logger
	Metrics        *observability.Metrics
	Dial           DialFunc
	AcquireTimeout time.Duration
	DBOptions      db.Options
}

// Pools owns the lazily-populated company id to connection pool mapping.
// At most one pool exists per company at any time.
type Pools struct {
	registry       *Registry
	logger         *slog.Logger
	metrics        *observability.Metrics
	dial           DialFunc
	acquireTimeout time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	pools map[int64]*pgxpool.Pool
}

// NewPools constructs the pool manager. No connections are opened until
// the first Get for a company.
func NewPools(cfg PoolsConfig) *Pools {
	dial := cfg.Dial
	if dial == nil {
		opts := cfg.DBOptions
		dial = func(ctx context.Context, t Tenant) (*pgxpool.Pool, error) {
			return db.New(ctx, t.DSN, opts)
		}
	}
	acquire := cfg.AcquireTimeout
	if acquire <= 0 {
		acquire = 5 * time.Second
	}
	return &Pools{
		registry:       cfg.Registry,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		dial:           dial,
		acquireTimeout: acquire,
		pools:          make(map[int64]*pgxpool.Pool),
	}
}

// Get returns the cached pool for tenantID, creating and caching one on
// first call. Concurrent callers for the same company share a single
// construction; a failed construction is not cached, so a later call can
// succeed once connectivity is restored.
func (p *Pools) Get(ctx context.Context, tenantID int64) (*pgxpool.Pool, error) {
	p.mu.RLock()
	pool, ok := p.pools[tenantID]
	p.mu.RUnlock()
	if ok {
		return pool, nil
	}

	v, err, _ := p.group.Do(strconv.FormatInt(tenantID, 10), func() (interface{}, error) {
		p.mu.RLock()
		existing, ok := p.pools[tenantID]
		p.mu.RUnlock()
		if ok {
			return existing, nil
		}
		ten, ok := p.registry.Get(tenantID)
		if !ok {
			return nil, ErrUnknownTenant
		}
		// The pool outlives the request that triggered its creation,
		// and other requests wait on this flight. Cancelling the
		// initiating request must not fail them all.
		created, err := p.dial(context.WithoutCancel(ctx), ten)
		if err != nil {
			p.logger.Error("open tenant pool",
				slog.Int64("tenant", tenantID), slog.Any("error", err))
			return nil, &ConnectionError{TenantID: tenantID, Err: err}
		}
		p.mu.Lock()
		p.pools[tenantID] = created
		p.mu.Unlock()
		p.metrics.PoolCreated(ten.ShortName)
		p.logger.Info("tenant pool created", slog.Int64("tenant", tenantID),
			slog.String("company", ten.ShortName))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pgxpool.Pool), nil
}

// connRows releases the checked-out connection when the row set closes.
type connRows struct {
	pgx.Rows
	conn *pgxpool.Conn
}

func (r *connRows) Close() {
	r.Rows.Close()
	r.conn.Release()
}

// Query acquires a connection within the acquire budget, executes sql and
// returns the rows. The connection is released when the rows are closed.
func (p *Pools) Query(ctx context.Context, tenantID int64, sql string, args ...any) (pgx.Rows, error) {
	pool, err := p.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	conn, err := p.acquire(ctx, pool)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &connRows{Rows: rows, conn: conn}, nil
}

// QueryRow acquires a connection, runs sql and scans the single result
// through scan. The connection is always released.
func (p *Pools) QueryRow(ctx context.Context, tenantID int64, sql string, args []any, scan func(pgx.Row) error) error {
	pool, err := p.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	conn, err := p.acquire(ctx, pool)
	if err != nil {
		return err
	}
	defer conn.Release()
	return scan(conn.QueryRow(ctx, sql, args...))
}

// WithTx acquires a dedicated connection, runs fn inside a repeatable-read
// transaction, commits on nil and rolls back otherwise. The connection is
// released regardless of outcome.
func (p *Pools) WithTx(ctx context.Context, tenantID int64, fn func(pgx.Tx) error) error {
	pool, err := p.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	conn, err := p.acquire(ctx, pool)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CloseAll disposes every cached pool. Only used at process shutdown.
func (p *Pools) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, pool := range p.pools {
		pool.Close()
		p.logger.Info("tenant pool closed", slog.Int64("tenant", id))
	}
	p.pools = make(map[int64]*pgxpool.Pool)
}

func (p *Pools) acquire(ctx context.Context, pool *pgxpool.Pool) (*pgxpool.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()
	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrPoolTimeout
		}
		return nil, err
	}
	return conn, nil
}
