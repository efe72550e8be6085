package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

const cursorName = "weather_records_cursor"

// ErrCursorClosed is returned when a page chain is read after its session
// ran another query or was released.
var ErrCursorClosed = errors.New("cursor closed")

// cursorSource reads a declared cursor in batches of size rows.
type cursorSource struct {
	ctx   context.Context
	tx    pgx.Tx
	size  int
	batch []weather.Record
	done  bool
}

func newCursorSource(ctx context.Context, tx pgx.Tx, size int) *cursorSource {
	return &cursorSource{ctx: ctx, tx: tx, size: size}
}

// Next implements pagination.Source.
func (c *cursorSource) Next() (weather.Record, bool, error) {
	if len(c.batch) == 0 && !c.done {
		if err := c.fetch(); err != nil {
			return weather.Record{}, false, err
		}
	}
	if len(c.batch) == 0 {
		return weather.Record{}, false, nil
	}
	rec := c.batch[0]
	c.batch = c.batch[1:]
	return rec, true, nil
}

func (c *cursorSource) fetch() error {
	rows, err := c.tx.Query(c.ctx, fmt.Sprintf("FETCH FORWARD %d FROM %s", c.size, cursorName))
	if err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return ErrCursorClosed
		}
		return classify("fetch records", err)
	}
	batch, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return classify("fetch records", err)
	}
	c.batch = batch
	c.done = len(batch) < c.size
	return nil
}
