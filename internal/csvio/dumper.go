package csvio

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// Dumper writes weather records as CSV.
type Dumper struct {
	opts    Options
	out     io.WriteCloser
	writer  *csv.Writer
	row     []string
	header  bool // header row already written
}

// NewDumper creates a Dumper writing to w in the charset of opts.Encoding.
// The caller must Close the Dumper to flush buffered output; Close does not
// close w.
func NewDumper(w io.Writer, opts Options) (*Dumper, error) {
	opts = opts.normalize()

	out, err := Encode(w, opts.Encoding)
	if err != nil {
		return nil, err
	}
	cw := csv.NewWriter(out)
	cw.Comma = opts.Delimiter

	return &Dumper{
		opts:   opts,
		out:    out,
		writer: cw,
		row:    make([]string, 0, len(Columns)),
	}, nil
}

func (d *Dumper) writeHeader() error {
	if d.header || !d.opts.Header {
		return nil
	}
	d.header = true
	if err := d.writer.Write(Columns); err != nil {
		return fmt.Errorf("records writing failed: %w", err)
	}
	return nil
}

// Write writes one record, preceded by the header row on first use.
func (d *Dumper) Write(r weather.Record) error {
	if err := d.writeHeader(); err != nil {
		return err
	}
	d.row = formatRow(r, d.opts.DateTimeLayout, d.row)
	if err := d.writer.Write(d.row); err != nil {
		return fmt.Errorf("records writing failed: %w", err)
	}
	return nil
}

// Dump writes every record of src and returns how many were written. The
// header row is written even when src is empty.
func (d *Dumper) Dump(src pagination.Source[weather.Record]) (int, error) {
	if err := d.writeHeader(); err != nil {
		return 0, err
	}
	n := 0
	for {
		r, ok, err := src.Next()
		if err != nil {
			return n, err
		}
		if !ok {
			return n, d.Flush()
		}
		if err := d.Write(r); err != nil {
			return n, err
		}
		n++
	}
}

// DumpPages writes every page of the chain starting at first.
func (d *Dumper) DumpPages(first pagination.Page[weather.Record]) (int, error) {
	return d.Dump(pagination.Flatten(first))
}

// Flush writes buffered rows to the underlying writer.
func (d *Dumper) Flush() error {
	d.writer.Flush()
	if err := d.writer.Error(); err != nil {
		return fmt.Errorf("records writing failed: %w", err)
	}
	return nil
}

// Close flushes the Dumper and the charset encoder.
func (d *Dumper) Close() error {
	if err := d.writeHeader(); err != nil {
		return err
	}
	if err := d.Flush(); err != nil {
		return err
	}
	return d.out.Close()
}
