package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/storage/storagetest"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

func session(t *testing.T, s *Store) storage.Repository {
	t.Helper()
	repo, err := s.Factory()(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Release(context.Background()) })
	return repo
}

func importAll(t *testing.T, repo storage.Repository, records []weather.Record, opts storage.ImportOptions) (int, error) {
	t.Helper()
	return repo.ImportAll(context.Background(), pagination.FromSlice(records), opts)
}

func TestImportAll_Counts(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 50} {
		s := NewStore()
		repo := session(t, s)

		got, err := importAll(t, repo, storagetest.Records(n), storage.ImportOptions{BlockSize: 4})
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, n, s.Len())
	}
}

func TestImportAll_DuplicateIgnore(t *testing.T) {
	records := storagetest.Records(10)
	records = append(records, records[3])

	s := NewStore()
	got, err := importAll(t, session(t, s), records, storage.ImportOptions{BlockSize: 4, OnDuplicate: storage.DuplicateIgnore})

	require.NoError(t, err)
	assert.Equal(t, 10, got)
	assert.Equal(t, 10, s.Len())
}

func TestImportAll_DuplicateIgnoreAgainstStored(t *testing.T) {
	records := storagetest.Records(6)
	s := NewStore(records[:2]...)

	got, err := importAll(t, session(t, s), records, storage.ImportOptions{BlockSize: 3, OnDuplicate: storage.DuplicateIgnore})

	require.NoError(t, err)
	assert.Equal(t, 4, got)
	assert.Equal(t, 6, s.Len())
}

func TestImportAll_DuplicateRaise(t *testing.T) {
	records := storagetest.Records(10)
	dup := records[1]
	dup.ID = weather.NewRecord("x", "y", weather.GeoPosition{}, storagetest.Day, "UTC").ID
	records = append(records, dup)

	s := NewStore()
	got, err := importAll(t, session(t, s), records, storage.ImportOptions{BlockSize: 4, OnDuplicate: storage.DuplicateRaise})

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrDuplicate)
	var blockErr *storage.BlockError
	require.ErrorAs(t, err, &blockErr)
	assert.Equal(t, 2, blockErr.Block)

	// Blocks 0 and 1 committed; block 2 rolled back entirely.
	assert.Equal(t, 8, got)
	assert.Equal(t, 8, s.Len())
	assert.Less(t, got, len(records))
}

func TestImportAll_DuplicateRaiseBlockSizeOne(t *testing.T) {
	records := storagetest.Records(5)
	records = append(records, records[0])

	s := NewStore()
	got, err := importAll(t, session(t, s), records, storage.ImportOptions{BlockSize: 1})

	assert.ErrorIs(t, err, storage.ErrDuplicate)
	assert.Equal(t, 5, got)
	assert.Equal(t, 5, s.Len())
}

func TestImportAll_DuplicateUpdate(t *testing.T) {
	records := storagetest.Records(3)
	s := NewStore(records...)

	changed := records[1]
	changed.Conditions = weather.Ptr("Heavy rain")
	got, err := importAll(t, session(t, s), []weather.Record{changed}, storage.ImportOptions{OnDuplicate: storage.DuplicateUpdate})

	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 3, s.Len())

	one, err := storage.SearchOne(context.Background(), session(t, s), storage.SearchParams{Location: changed.Location}, 0)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "Heavy rain", *one.Conditions)
}

func TestImportAll_DuplicateUpdateKeepsKeysUnique(t *testing.T) {
	records := storagetest.Records(3)

	tests := []struct {
		name   string
		stored []weather.Record
		block  []weather.Record
	}{
		{
			name:   "id of one stored record, key of another",
			stored: records[:2],
			block:  []weather.Record{withID(records[1], records[0].ID)},
		},
		{
			name:   "in-block replacement takes a stored key",
			stored: records[:1],
			block:  []weather.Record{records[2], withID(records[0], records[2].ID)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.stored...)
			_, err := importAll(t, session(t, s), tt.block, storage.ImportOptions{OnDuplicate: storage.DuplicateUpdate})

			assert.ErrorIs(t, err, storage.ErrDuplicate)
			assert.Equal(t, len(tt.stored), s.Len())

			keys := make(map[weather.Key]bool)
			for _, r := range s.records {
				assert.False(t, keys[r.Key()], "key stored twice: %v", r.Key())
				keys[r.Key()] = true
			}
		})
	}
}

func TestImportAll_DuplicateUpdateWithinBlock(t *testing.T) {
	records := storagetest.Records(2)
	changed := records[0]
	changed.Conditions = weather.Ptr("Fog")

	s := NewStore()
	got, err := importAll(t, session(t, s), []weather.Record{records[0], records[1], changed}, storage.ImportOptions{OnDuplicate: storage.DuplicateUpdate})

	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "Fog", *s.records[s.byID[changed.ID]].Conditions)
}

func withID(r weather.Record, id uuid.UUID) weather.Record {
	r.ID = id
	return r
}

func TestImportAll_ValidationFailsBlock(t *testing.T) {
	records := storagetest.Records(6)
	records[4].Country = ""

	s := NewStore()
	got, err := importAll(t, session(t, s), records, storage.ImportOptions{BlockSize: 3})

	assert.ErrorIs(t, err, storage.ErrValidation)
	var recErr *storage.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, 1, recErr.Index)
	assert.Equal(t, 3, got)
}

func TestImportAll_BadOptions(t *testing.T) {
	repo := session(t, NewStore())

	_, err := importAll(t, repo, nil, storage.ImportOptions{BlockSize: -1})
	assert.ErrorIs(t, err, storage.ErrValidation)

	_, err = importAll(t, repo, nil, storage.ImportOptions{OnDuplicate: "merge"})
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestImportAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore()
	got, err := session(t, s).ImportAll(ctx, pagination.FromSlice(storagetest.Records(3)), storage.ImportOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, got)
	assert.Zero(t, s.Len())
}

func TestExportAll_PagesEverything(t *testing.T) {
	s := NewStore(storagetest.Records(11)...)

	first, err := session(t, s).ExportAll(context.Background(), storage.Window{PageSize: 5})
	require.NoError(t, err)

	var sizes []int
	err = pagination.ForEach(first, func(p pagination.Page[weather.Record]) error {
		sizes = append(sizes, len(p.Results()))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5, 1}, sizes)
}

func TestExportAll_Eager(t *testing.T) {
	s := NewStore(storagetest.Records(7)...)

	first, err := session(t, s).ExportAll(context.Background(), storage.Window{})
	require.NoError(t, err)
	assert.Len(t, first.Results(), 7)
	assert.False(t, first.HasNext())
}

func TestExportAll_StableOrder(t *testing.T) {
	records := storagetest.Records(9)
	reversed := make([]weather.Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	first, err := session(t, NewStore(reversed...)).ExportAll(context.Background(), storage.Window{})
	require.NoError(t, err)
	assert.Equal(t, records, first.Results())
}

func TestSearchAll_Dates(t *testing.T) {
	d := func(s string) weather.Date {
		date, err := weather.ParseDate(s)
		require.NoError(t, err)
		return date
	}
	days := []weather.Date{d("2024-01-01"), d("2024-01-02"), d("2024-01-03"), d("2024-01-04")}
	s := NewStore(storagetest.OnDays(days...)...)

	tests := []struct {
		name   string
		params storage.SearchParams
		want   int
	}{
		{"empty criteria match all", storage.SearchParams{}, 4},
		{"single day", storage.SearchParams{Date: &days[1]}, 1},
		{"inclusive range", storage.SearchParams{StartDate: &days[1], EndDate: &days[2]}, 2},
		{"open end", storage.SearchParams{StartDate: &days[2]}, 2},
		{"open start", storage.SearchParams{EndDate: &days[0]}, 1},
		{"date wins over range", storage.SearchParams{Date: &days[3], StartDate: &days[0], EndDate: &days[1]}, 1},
		{"no match", storage.SearchParams{Country: "Chile"}, 0},
		{"location", storage.SearchParams{Location: "Krakow", Date: &days[0]}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := session(t, s).SearchAll(context.Background(), tt.params, storage.Window{})
			require.NoError(t, err)
			assert.Len(t, first.Results(), tt.want)
			for _, r := range first.Results() {
				assert.True(t, tt.params.Matches(r))
			}
		})
	}
}

func TestSearchAll_StartAfterEnd(t *testing.T) {
	start, _ := weather.ParseDate("2024-02-02")
	end, _ := weather.ParseDate("2024-02-01")

	_, err := session(t, NewStore()).SearchAll(context.Background(),
		storage.SearchParams{StartDate: &start, EndDate: &end}, storage.Window{})
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestSearchAll_OffsetLimit(t *testing.T) {
	records := storagetest.Records(5)
	repo := session(t, NewStore(records...))

	first, err := repo.SearchAll(context.Background(), storage.SearchParams{}, storage.Window{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []weather.Record{records[1]}, first.Results())

	first, err = repo.SearchAll(context.Background(), storage.SearchParams{}, storage.Window{Offset: 2, Limit: 10, PageSize: 2})
	require.NoError(t, err)
	all, err := pagination.Collect(first)
	require.NoError(t, err)
	assert.Equal(t, records[2:], all)
}

func TestSearchAll_BadWindow(t *testing.T) {
	_, err := session(t, NewStore()).SearchAll(context.Background(), storage.SearchParams{}, storage.Window{Offset: -1})
	assert.ErrorIs(t, err, storage.ErrValidation)
}

func TestSearchOne(t *testing.T) {
	records := storagetest.Records(3)
	repo := session(t, NewStore(records...))

	one, err := storage.SearchOne(context.Background(), repo, storage.SearchParams{}, 2)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, records[2], *one)

	one, err = storage.SearchOne(context.Background(), repo, storage.SearchParams{Country: "Peru"}, 0)
	require.NoError(t, err)
	assert.Nil(t, one)
}

func TestRelease(t *testing.T) {
	repo := session(t, NewStore(storagetest.Records(3)...))
	ctx := context.Background()

	require.NoError(t, repo.Release(ctx))
	require.NoError(t, repo.Release(ctx))

	_, err := repo.ExportAll(ctx, storage.Window{})
	assert.ErrorIs(t, err, storage.ErrReleased)
	_, err = repo.ImportAll(ctx, pagination.FromSlice[weather.Record](nil), storage.ImportOptions{})
	assert.ErrorIs(t, err, storage.ErrReleased)
}

func TestRelease_AfterAbandonedStream(t *testing.T) {
	repo := session(t, NewStore(storagetest.Records(20)...))
	ctx := context.Background()

	first, err := repo.ExportAll(ctx, storage.Window{PageSize: 3})
	require.NoError(t, err)

	stream := pagination.NewStream(first)
	require.True(t, stream.Next())
	require.True(t, stream.Next())

	assert.NoError(t, repo.Release(ctx))
}

func TestWithRepository_ReleasesOnError(t *testing.T) {
	s := NewStore()
	var opened storage.Repository
	boom := errors.New("boom")

	err := storage.WithRepository(context.Background(), s.Factory(), func(repo storage.Repository) error {
		opened = repo
		return boom
	})

	assert.ErrorIs(t, err, boom)
	_, err = opened.ExportAll(context.Background(), storage.Window{})
	assert.ErrorIs(t, err, storage.ErrReleased)
}
