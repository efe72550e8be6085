// Package storage defines the repository contract every weather records
// backend implements, plus the option and parameter types shared by them.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// Repository is one session with a records backend.
//
// A session is created by a Factory, used by one operation at a time and
// released exactly once. Every call after Release fails with ErrReleased.
type Repository interface {
	// ImportAll stores records block by block and returns how many were
	// stored. Blocks commit independently: a failing block does not undo the
	// blocks before it.
	ImportAll(ctx context.Context, records pagination.Source[weather.Record], opts ImportOptions) (int, error)

	// ExportAll returns every stored record in a stable order.
	ExportAll(ctx context.Context, w Window) (pagination.Page[weather.Record], error)

	// SearchAll returns the records matching params in a stable order.
	SearchAll(ctx context.Context, params SearchParams, w Window) (pagination.Page[weather.Record], error)

	// Release frees the session. It is safe to call more than once.
	Release(ctx context.Context) error
}

// Factory opens a new repository session.
type Factory func(ctx context.Context) (Repository, error)

// WithRepository opens a session, runs fn with it and releases it on every
// exit path, panics included.
func WithRepository(ctx context.Context, factory Factory, fn func(Repository) error) (err error) {
	repo, err := factory(ctx)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer func() {
		if rerr := repo.Release(context.WithoutCancel(ctx)); rerr != nil && err == nil {
			err = fmt.Errorf("release repository: %w", rerr)
		}
	}()
	return fn(repo)
}

// SearchOne returns the first record matching params after skipping offset
// matches, or nil when there is none.
func SearchOne(ctx context.Context, repo Repository, params SearchParams, offset int) (*weather.Record, error) {
	page, err := repo.SearchAll(ctx, params, Window{Limit: 1, Offset: offset})
	if err != nil {
		return nil, err
	}
	results := page.Results()
	if len(results) == 0 {
		return nil, nil
	}
	r := results[0]
	return &r, nil
}

// OnDuplicate selects what an import does with a record that is already
// stored.
type OnDuplicate string

const (
	// DuplicateRaise fails the block that holds the duplicate.
	DuplicateRaise OnDuplicate = "raise"
	// DuplicateUpdate overwrites the stored record. Backends may not support it.
	DuplicateUpdate OnDuplicate = "update"
	// DuplicateIgnore skips the duplicate and keeps going.
	DuplicateIgnore OnDuplicate = "ignore"
)

// ParseOnDuplicate parses "raise", "update" or "ignore". Empty means raise.
func ParseOnDuplicate(s string) (OnDuplicate, error) {
	switch d := OnDuplicate(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DuplicateRaise, nil
	case DuplicateRaise, DuplicateUpdate, DuplicateIgnore:
		return d, nil
	default:
		return "", fmt.Errorf("%w: on-duplicate must be one of raise, update, ignore (got %q)", ErrValidation, s)
	}
}

// ImportOptions controls ImportAll.
type ImportOptions struct {
	// BlockSize is the number of records committed together. Zero imports
	// everything as one block.
	BlockSize int

	// OnDuplicate defaults to DuplicateRaise.
	OnDuplicate OnDuplicate
}

// Normalize validates the options and fills in defaults.
func (o ImportOptions) Normalize() (ImportOptions, error) {
	if o.BlockSize < 0 {
		return o, fmt.Errorf("%w: block size must be non-negative (got %d)", ErrValidation, o.BlockSize)
	}
	d, err := ParseOnDuplicate(string(o.OnDuplicate))
	if err != nil {
		return o, err
	}
	o.OnDuplicate = d
	return o, nil
}

// Window selects part of a result set and how it is paged.
type Window struct {
	// Limit caps the total number of results. Zero means no limit.
	Limit int
	// Offset skips that many results before Limit applies.
	Offset int
	// PageSize splits the results into pages of that size. Zero returns
	// all results at once as a single page.
	PageSize int
}

// Validate rejects negative values.
func (w Window) Validate() error {
	switch {
	case w.Limit < 0:
		return fmt.Errorf("%w: limit must be non-negative (got %d)", ErrValidation, w.Limit)
	case w.Offset < 0:
		return fmt.Errorf("%w: offset must be non-negative (got %d)", ErrValidation, w.Offset)
	case w.PageSize < 0:
		return fmt.Errorf("%w: page size must be non-negative (got %d)", ErrValidation, w.PageSize)
	}
	return nil
}

// Apply windows an ordered source and pages the result.
func (w Window) Apply(src pagination.Source[weather.Record]) (pagination.Page[weather.Record], error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return pagination.Paginate(pagination.Slice(src, w.Offset, w.Limit), w.PageSize)
}

// Lifecycle tracks whether a session has been released.
// Backends embed it.
type Lifecycle struct {
	released atomic.Bool
}

// Check returns ErrReleased once the session has been released.
func (l *Lifecycle) Check() error {
	if l.released.Load() {
		return ErrReleased
	}
	return nil
}

// MarkReleased flips the session to released. It reports true only for the
// first call.
func (l *Lifecycle) MarkReleased() bool {
	return l.released.CompareAndSwap(false, true)
}
