package core

import (
	"context"
	"slices"
	"time"

	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/logging"
	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// DefaultDisplayGroup is the number of records shown side by side.
const DefaultDisplayGroup = 3

// SearchRequest describes one search. Display and Dumper are both optional;
// with neither set the search only counts matches.
type SearchRequest struct {
	storage.Window

	// DisplayGroup splits every page into groups of that many records for
	// Display. Zero means DefaultDisplayGroup.
	DisplayGroup int
	Display      func(group []weather.Record) error

	Dumper *csvio.Dumper
}

// SearchSummary reports the outcome of a search.
type SearchSummary struct {
	Found    int           `json:"found"`
	Pages    int           `json:"pages"`
	Duration time.Duration `json:"-"`
}

// Search streams the records matching params to the display callback and
// the dumper of req.
func Search(ctx context.Context, factory storage.Factory, params storage.SearchParams, req SearchRequest) (SearchSummary, error) {
	start := time.Now()
	var sum SearchSummary

	group := req.DisplayGroup
	if group <= 0 {
		group = DefaultDisplayGroup
	}

	ctx, _ = logging.WithOperation(ctx)
	log := logging.WithFields(ctx, "operation", "search", "page_size", req.PageSize)
	log.Info("search started", "country", params.Country, "location", params.Location,
		"timezone", params.Timezone, "limit", req.Limit, "offset", req.Offset)

	err := storage.WithRepository(ctx, factory, func(repo storage.Repository) error {
		first, err := repo.SearchAll(ctx, params, req.Window)
		if err != nil {
			return err
		}
		return pagination.ForEach(first, func(page pagination.Page[weather.Record]) error {
			results := page.Results()
			sum.Found += len(results)
			sum.Pages++

			if req.Display != nil {
				for chunk := range slices.Chunk(results, group) {
					if err := req.Display(chunk); err != nil {
						return err
					}
				}
			}
			if req.Dumper != nil {
				if _, err := req.Dumper.Dump(pagination.FromSlice(results)); err != nil {
					return err
				}
			}
			return nil
		})
	})

	sum.Duration = time.Since(start)
	if err != nil {
		log.Error("search failed", "error", err, "found", sum.Found)
		return sum, err
	}
	log.Info("search complete", "found", sum.Found, "pages", sum.Pages, "duration", sum.Duration)
	return sum, nil
}

// FindOne returns the first record matching params after skipping offset
// matches, or nil when there is none.
func FindOne(ctx context.Context, factory storage.Factory, params storage.SearchParams, offset int) (*weather.Record, error) {
	var found *weather.Record
	err := storage.WithRepository(ctx, factory, func(repo storage.Repository) error {
		r, err := storage.SearchOne(ctx, repo, params, offset)
		found = r
		return err
	})
	return found, err
}
