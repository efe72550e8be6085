package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/logging"
	"github.com/JonMunkholm/wwweather/internal/storage"
)

// ExportRequest describes one export. A zero PageSize reads every record in
// one go.
type ExportRequest struct {
	storage.Window
}

// ExportSummary reports the outcome of an export.
type ExportSummary struct {
	Exported int           `json:"exported"`
	Duration time.Duration `json:"-"`
}

// Export writes every stored record to dumper, fetching one page at a time.
// Closing the dumper is left to the caller.
func Export(ctx context.Context, factory storage.Factory, dumper *csvio.Dumper, req ExportRequest) (ExportSummary, error) {
	start := time.Now()
	var sum ExportSummary

	ctx, _ = logging.WithOperation(ctx)
	log := logging.WithFields(ctx, "operation", "export", "page_size", req.PageSize)
	log.Info("export started", "limit", req.Limit, "offset", req.Offset)

	err := storage.WithRepository(ctx, factory, func(repo storage.Repository) error {
		first, err := repo.ExportAll(ctx, req.Window)
		if err != nil {
			return err
		}
		sum.Exported, err = dumper.DumpPages(first)
		return err
	})

	sum.Duration = time.Since(start)
	if err != nil {
		log.Error("export failed", "error", err, "exported", sum.Exported)
		return sum, err
	}
	log.Info("export complete", "exported", sum.Exported, "duration", sum.Duration)
	return sum, nil
}
