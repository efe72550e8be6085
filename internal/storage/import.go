package storage

import (
	"context"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// BlockImporter stores one validated block and returns how many records of
// it were stored. It must leave storage untouched when it fails.
type BlockImporter func(ctx context.Context, block []weather.Record) (int, error)

// ImportBlocks drives an import for a backend. It pages records into blocks
// of opts.BlockSize, validates every record of a block and hands the block
// to importBlock. Blocks are processed strictly one after another; apart
// from a single record of lookahead the next block is not read before the
// current one is stored.
//
// The returned count covers every block stored before a failure. Block
// failures are wrapped in a *BlockError.
func ImportBlocks(ctx context.Context, records pagination.Source[weather.Record], opts ImportOptions, importBlock BlockImporter) (int, error) {
	first, err := pagination.Paginate(records, opts.BlockSize)
	if err != nil {
		return 0, err
	}

	total := 0
	err = pagination.ForEach(first, func(p pagination.Page[weather.Record]) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		block := p.Results()
		if len(block) == 0 {
			return nil
		}

		for i, r := range block {
			if err := r.Validate(); err != nil {
				return &BlockError{Block: p.Number(), Err: &RecordError{Index: i, Err: err}}
			}
		}

		n, err := importBlock(ctx, block)
		total += n
		if err != nil {
			return &BlockError{Block: p.Number(), Err: err}
		}
		return nil
	})

	return total, err
}
