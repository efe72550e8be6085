// Package memory is an in-process records backend. It keeps records in a
// slice and honours the same contract as the database backend, which makes
// it suitable for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/weather"
	"github.com/google/uuid"
)

// Store holds records shared by every session opened on it.
type Store struct {
	mu sync.Mutex
	index
}

// index keeps records addressable by ID and by duplicate key. Both maps
// always point at the same single record for a given ID or key.
type index struct {
	records []weather.Record
	byID    map[uuid.UUID]int
	byKey   map[weather.Key]int
}

func newIndex(capacity int) index {
	return index{
		records: make([]weather.Record, 0, capacity),
		byID:    make(map[uuid.UUID]int, capacity),
		byKey:   make(map[weather.Key]int, capacity),
	}
}

func (x index) clone() index {
	c := index{
		records: slices.Clone(x.records),
		byID:    make(map[uuid.UUID]int, len(x.byID)),
		byKey:   make(map[weather.Key]int, len(x.byKey)),
	}
	for k, v := range x.byID {
		c.byID[k] = v
	}
	for k, v := range x.byKey {
		c.byKey[k] = v
	}
	return c
}

// NewStore returns a store holding records. Duplicates in records are dropped.
func NewStore(records ...weather.Record) *Store {
	s := &Store{index: newIndex(len(records))}
	for _, r := range records {
		if at, _ := s.find(r); at < 0 {
			s.put(-1, r)
		}
	}
	return s
}

// Factory returns a storage.Factory opening sessions on s.
func (s *Store) Factory() storage.Factory {
	return func(ctx context.Context) (storage.Repository, error) {
		return &Repository{store: s}, nil
	}
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// find returns the index of the record r duplicates, or -1. ambiguous is
// set when r shares its ID with one record and its key with another.
func (x index) find(r weather.Record) (at int, ambiguous bool) {
	byID, okID := x.byID[r.ID]
	byKey, okKey := x.byKey[r.Key()]
	switch {
	case okID && okKey:
		return byID, byID != byKey
	case okID:
		return byID, false
	case okKey:
		return byKey, false
	}
	return -1, false
}

// put stores r at index i, or appends it when i is negative. It returns
// the index r landed at.
func (x *index) put(i int, r weather.Record) int {
	if i < 0 {
		i = len(x.records)
		x.records = append(x.records, r)
	} else {
		old := x.records[i]
		delete(x.byID, old.ID)
		delete(x.byKey, old.Key())
		x.records[i] = r
	}
	x.byID[r.ID] = i
	x.byKey[r.Key()] = i
	return i
}

func (s *Store) snapshot(keep func(weather.Record) bool) []weather.Record {
	s.mu.Lock()
	out := make([]weather.Record, 0, len(s.records))
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(out, storage.CompareRecords)
	return out
}

// Repository is a session on a Store.
type Repository struct {
	storage.Lifecycle
	store *Store
}

// ImportAll implements storage.Repository. Every duplicate policy is
// supported; an update replaces the stored record it collides with.
func (r *Repository) ImportAll(ctx context.Context, records pagination.Source[weather.Record], opts storage.ImportOptions) (int, error) {
	if err := r.Check(); err != nil {
		return 0, err
	}
	opts, err := opts.Normalize()
	if err != nil {
		return 0, err
	}

	return storage.ImportBlocks(ctx, records, opts, func(ctx context.Context, block []weather.Record) (int, error) {
		return r.store.importBlock(block, opts.OnDuplicate)
	})
}

// importBlock applies block atomically: either every change lands or none.
// The block is applied to a copy of the index, so records earlier in the
// block count as stored for the ones after them.
func (s *Store) importBlock(block []weather.Record, onDup storage.OnDuplicate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.index.clone()
	written := make(map[int]struct{}, len(block))

	for _, rec := range block {
		at, ambiguous := work.find(rec)
		if at >= 0 {
			switch onDup {
			case storage.DuplicateIgnore:
				continue
			case storage.DuplicateUpdate:
				if ambiguous {
					return 0, fmt.Errorf("%w: record %s matches one record by id and another by key", storage.ErrDuplicate, rec.ID)
				}
			default:
				return 0, storage.ErrDuplicate
			}
		}
		written[work.put(at, rec)] = struct{}{}
	}

	s.index = work
	return len(written), nil
}

// ExportAll implements storage.Repository.
func (r *Repository) ExportAll(ctx context.Context, w storage.Window) (pagination.Page[weather.Record], error) {
	return r.SearchAll(ctx, storage.SearchParams{}, w)
}

// SearchAll implements storage.Repository. Matches are captured when the
// call is made; later imports do not show up in the returned chain.
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
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keep := params.Matches
	if params.IsEmpty() {
		keep = func(weather.Record) bool { return true }
	}
	matches := r.store.snapshot(keep)
	return w.Apply(pagination.FromSlice(matches))
}

// Release implements storage.Repository.
func (r *Repository) Release(ctx context.Context) error {
	r.MarkReleased()
	return nil
}
