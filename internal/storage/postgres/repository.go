package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// uniqueViolation is the SQLSTATE of a unique constraint violation.
const uniqueViolation = "23505"

// NewFactory returns a storage.Factory whose sessions each hold one
// connection acquired from pool.
func NewFactory(pool *pgxpool.Pool) storage.Factory {
	return func(ctx context.Context) (storage.Repository, error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, storage.Failed("acquire connection", err)
		}
		return &Repository{conn: conn}, nil
	}
}

// Repository is a session on one pooled connection.
type Repository struct {
	storage.Lifecycle

	mu     sync.Mutex
	conn   *pgxpool.Conn
	cursor pgx.Tx // open read transaction of the last paged query
}

// ImportAll implements storage.Repository. DuplicateUpdate is not supported
// and fails with storage.ErrUnsupported before any record is read.
func (r *Repository) ImportAll(ctx context.Context, records pagination.Source[weather.Record], opts storage.ImportOptions) (int, error) {
	if err := r.Check(); err != nil {
		return 0, err
	}
	opts, err := opts.Normalize()
	if err != nil {
		return 0, err
	}
	if opts.OnDuplicate == storage.DuplicateUpdate {
		return 0, fmt.Errorf("%w: on-duplicate %q", storage.ErrUnsupported, opts.OnDuplicate)
	}
	if err := r.closeCursor(ctx); err != nil {
		return 0, err
	}

	query := insertSQL
	if opts.OnDuplicate == storage.DuplicateIgnore {
		query = insertIgnore
	}

	return storage.ImportBlocks(ctx, records, opts, func(ctx context.Context, block []weather.Record) (int, error) {
		return r.importBlock(ctx, query, block)
	})
}

// importBlock inserts block in one transaction.
func (r *Repository) importBlock(ctx context.Context, query string, block []weather.Record) (int, error) {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return 0, storage.Failed("begin block", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	batch := &pgx.Batch{}
	for _, rec := range block {
		batch.Queue(query, recordArgs(rec)...)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range block {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, classify("insert block", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, classify("insert block", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classify("commit block", err)
	}
	return inserted, nil
}

// classify maps a unique violation to storage.ErrDuplicate and any other
// fault to storage.ErrOperationFailed.
func classify(what string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", storage.ErrDuplicate, pgErr.ConstraintName)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return storage.Failed(what, err)
}

// ExportAll implements storage.Repository.
func (r *Repository) ExportAll(ctx context.Context, w storage.Window) (pagination.Page[weather.Record], error) {
	return r.SearchAll(ctx, storage.SearchParams{}, w)
}

// SearchAll implements storage.Repository. With a page size the results
// are read through a cursor that stays open until the next query on the
// session or Release.
func (r *Repository) SearchAll(ctx context.Context, params storage.SearchParams, w storage.Window) (pagination.Page[weather.Record], error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := r.closeCursor(ctx); err != nil {
		return nil, err
	}

	query, args := selectQuery(params, w)
	if w.PageSize == 0 {
		return r.queryAll(ctx, query, args)
	}
	return r.queryPaged(ctx, query, args, w.PageSize)
}

func (r *Repository) queryAll(ctx context.Context, query string, args []any) (pagination.Page[weather.Record], error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("query records", err)
	}
	records, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, classify("read records", err)
	}
	return pagination.Single(records), nil
}

func (r *Repository) queryPaged(ctx context.Context, query string, args []any, pageSize int) (pagination.Page[weather.Record], error) {
	tx, err := r.conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, storage.Failed("begin query", err)
	}
	if _, err := tx.Exec(ctx, "DECLARE "+cursorName+" NO SCROLL CURSOR FOR "+query, args...); err != nil {
		_ = tx.Rollback(context.WithoutCancel(ctx))
		return nil, classify("declare cursor", err)
	}

	r.mu.Lock()
	r.cursor = tx
	r.mu.Unlock()

	first, err := pagination.NewIterPage[weather.Record](newCursorSource(ctx, tx, pageSize), pageSize)
	if err != nil {
		return nil, err
	}
	return first, nil
}

// closeCursor ends the read transaction of a previous paged query. Reading
// further pages of that chain fails with ErrCursorClosed.
func (r *Repository) closeCursor(ctx context.Context) error {
	r.mu.Lock()
	tx := r.cursor
	r.cursor = nil
	r.mu.Unlock()

	if tx == nil {
		return nil
	}
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return storage.Failed("close cursor", err)
	}
	return nil
}

// Release implements storage.Repository. It closes an open cursor and
// hands the connection back to the pool.
func (r *Repository) Release(ctx context.Context) error {
	if !r.MarkReleased() {
		return nil
	}
	err := r.closeCursor(ctx)
	if err != nil {
		slog.Warn("release session", "error", err)
	}
	r.conn.Release()
	return err
}
