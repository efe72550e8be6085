package csvio

// encoding.go provides the streaming readers and writers that sit between a
// CSV file and the csv package:
//
//   - Decode: charset decoding, BOM removal and replacement of invalid bytes
//   - Encode: charset encoding of dumped records
//   - CountingReader: tracks bytes read for progress logging
//
// Nothing here buffers more than the transform window, so files of any size
// stream through in constant memory.

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when Options.Encoding is empty.
const DefaultEncoding = "utf-8"

// LookupEncoding resolves a charset label such as "utf-8", "windows-1251"
// or "latin1".
func LookupEncoding(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Decode returns a reader yielding r as UTF-8.
//
// A leading byte order mark is stripped and, for UTF-16 input, selects the
// byte order. Byte sequences that are invalid in the source charset come
// out as U+FFFD.
func Decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// Encode returns a writer converting UTF-8 text into the named charset.
// Characters the charset cannot represent are replaced. The caller must
// Close the writer to flush the last bytes.
func Encode(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := LookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Total     int64 // If known (0 if unknown)
}

// NewCountingReader creates a counting reader with optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{
		reader: r,
		Total:  total,
	}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	return int(r.BytesRead * 100 / r.Total)
}
