package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/logging"
	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/storage"
)

// DefaultBlockSize is the block size of the import command.
const DefaultBlockSize = 1000

// ImportRequest describes one CSV import.
type ImportRequest struct {
	BlockSize   int // records committed together, 0 for the whole file at once
	OnDuplicate storage.OnDuplicate
	Limit       int // records to import after Offset, 0 for all
	Offset      int // rows to skip before importing
}

// ImportSummary reports the outcome of an import. It is filled in as far as
// the import got, also when it fails.
type ImportSummary struct {
	Attempted int           `json:"attempted"` // records read from the file
	Imported  int           `json:"imported"`
	Skipped   int           `json:"skipped"` // duplicates ignored or not stored
	Blocks    int           `json:"blocks"`
	BytesRead int64         `json:"bytes_read"`
	Duration  time.Duration `json:"-"`
}

// Import reads records from loader in blocks of req.BlockSize and stores
// every block through one repository session.
//
// Blocks commit independently. When a block fails, the blocks before it stay
// stored and the error names the failing block.
func Import(ctx context.Context, factory storage.Factory, loader *csvio.Loader, req ImportRequest) (ImportSummary, error) {
	start := time.Now()
	var sum ImportSummary

	opts, err := storage.ImportOptions{BlockSize: req.BlockSize, OnDuplicate: req.OnDuplicate}.Normalize()
	if err != nil {
		return sum, err
	}

	ctx, _ = logging.WithOperation(ctx)
	log := logging.WithFields(ctx, "operation", "import", "block_size", opts.BlockSize, "on_duplicate", opts.OnDuplicate)
	log.Info("import started", "limit", req.Limit, "offset", req.Offset)

	err = storage.WithRepository(ctx, factory, func(repo storage.Repository) error {
		first, err := loader.Load(req.Limit, req.Offset, opts.BlockSize)
		if err != nil {
			return err
		}

		stream := pagination.NewStream(first)
		for stream.Next() {
			page := stream.Page()
			block := page.Results()
			if len(block) == 0 {
				continue
			}
			sum.Attempted += len(block)
			sum.Blocks++

			n, err := repo.ImportAll(ctx, pagination.FromSlice(block), opts)
			sum.Imported += n
			if err != nil {
				return blockFailed(page.Number(), err)
			}
			log.Debug("block imported", "block", page.Number(), "records", len(block), "imported", n, "progress", loader.Progress())
		}
		return stream.Err()
	})

	sum.Skipped = sum.Attempted - sum.Imported
	sum.BytesRead = loader.BytesRead()
	sum.Duration = time.Since(start)

	if err != nil {
		log.Error("import failed", "error", err, "attempted", sum.Attempted, "imported", sum.Imported)
		return sum, err
	}
	log.Info("import complete", "attempted", sum.Attempted, "imported", sum.Imported,
		"skipped", sum.Skipped, "blocks", sum.Blocks, "duration", sum.Duration)
	return sum, nil
}

// blockFailed renumbers a block error from a single-block ImportAll call to
// the position of that block in the whole file.
func blockFailed(block int, err error) error {
	var be *storage.BlockError
	if errors.As(err, &be) {
		return &storage.BlockError{Block: block, Err: be.Err}
	}
	return err
}
