package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// DefaultDateTimeLayout is the layout of the last_updated column.
const DefaultDateTimeLayout = "2006-01-02 15:04"

// Options describe the CSV dialect of a feed.
type Options struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
	// DateTimeLayout is the Go time layout of last_updated.
	DateTimeLayout string
	// Header makes the Dumper write a header row. The Loader always
	// expects one.
	Header bool
	// Encoding is the charset label of the file, "utf-8" when empty.
	Encoding string
	// Size is the raw file size in bytes, 0 when unknown. It only feeds
	// Loader.Progress.
	Size int64
}

// DefaultOptions returns comma separated UTF-8 with a header row.
func DefaultOptions() Options {
	return Options{
		Delimiter:      ',',
		DateTimeLayout: DefaultDateTimeLayout,
		Header:         true,
		Encoding:       DefaultEncoding,
	}
}

func (o Options) normalize() Options {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.DateTimeLayout == "" {
		o.DateTimeLayout = DefaultDateTimeLayout
	}
	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	return o
}

// Loader reads weather records from a CSV feed.
//
// The feed is read once, front to back. Records, Load and Next all draw
// from the same underlying reader.
type Loader struct {
	opts    Options
	reader  *csv.Reader
	counter *CountingReader
	index   HeaderIndex
	line    int // line of the last row read
	read    int // data rows read so far
}

// NewLoader decodes r and reads its header row. Required columns missing
// from the header fail with a *HeaderError.
func NewLoader(r io.Reader, opts Options) (*Loader, error) {
	opts = opts.normalize()

	counter := NewCountingReader(r, opts.Size)
	decoded, err := Decode(counter, opts.Encoding)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, &RowError{Line: 1, Err: err}
	}

	idx := MakeHeaderIndex(header)
	if missing := idx.missing(); len(missing) > 0 {
		return nil, &HeaderError{Missing: missing}
	}

	return &Loader{
		opts:    opts,
		reader:  cr,
		counter: counter,
		index:   idx,
		line:    1,
	}, nil
}

// Next implements pagination.Source. Rows that cannot be read fail with a
// *RowError.
func (l *Loader) Next() (weather.Record, bool, error) {
	row, ok, err := l.nextRow()
	if err != nil || !ok {
		return weather.Record{}, false, err
	}

	p := rowParser{idx: l.index, row: row, layout: l.opts.DateTimeLayout}
	rec, err := p.record()
	if err != nil {
		return weather.Record{}, false, &RowError{Line: l.line, Column: p.col, Err: err}
	}
	return rec, true, nil
}

func (l *Loader) nextRow() ([]string, bool, error) {
	for {
		row, err := l.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			line := l.line + 1
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			return nil, false, &RowError{Line: line, Err: err}
		}
		l.line, _ = l.reader.FieldPos(0)
		if blank(row) {
			continue
		}
		l.read++
		return row, true, nil
	}
}

func blank(row []string) bool {
	for _, c := range row {
		if CleanCell(c) != "" {
			return false
		}
	}
	return true
}

// skip discards n data rows without parsing them.
func (l *Loader) skip(n int) error {
	for ; n > 0; n-- {
		_, ok, err := l.nextRow()
		if err != nil || !ok {
			return err
		}
	}
	return nil
}

// Records returns the remaining records as a Source, after skipping offset
// rows. Skipped rows are not parsed, so they cannot fail.
func (l *Loader) Records(offset int) pagination.Source[weather.Record] {
	skipped := false
	return pagination.SourceFunc[weather.Record](func() (weather.Record, bool, error) {
		if !skipped {
			skipped = true
			if err := l.skip(offset); err != nil {
				return weather.Record{}, false, err
			}
		}
		return l.Next()
	})
}

// Load reads records as a page chain. Offset rows are skipped first, then
// at most limit records (0 for all) are split into pages of pageSize. A
// pageSize of 0 reads everything into a single page.
func (l *Loader) Load(limit, offset, pageSize int) (pagination.Page[weather.Record], error) {
	if limit < 0 || offset < 0 || pageSize < 0 {
		return nil, fmt.Errorf("%w: limit, offset and page size must be non-negative", weather.ErrInvalid)
	}
	return pagination.Paginate(pagination.Slice(l.Records(offset), 0, limit), pageSize)
}

// RowsRead returns the number of data rows consumed so far, skipped rows
// included.
func (l *Loader) RowsRead() int {
	return l.read
}

// Progress returns the share of the file read so far as a percentage, or 0
// when Options.Size was not set.
func (l *Loader) Progress() int {
	return l.counter.Progress()
}

// BytesRead returns the number of raw file bytes consumed so far.
func (l *Loader) BytesRead() int64 {
	return l.counter.BytesRead
}
