package csvio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/JonMunkholm/wwweather/internal/pagination"
	"github.com/JonMunkholm/wwweather/internal/storage/storagetest"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

const header = "country,location_name,latitude,longitude,last_updated,timezone,temperature_celsius,wind_direction\n"

func dump(t *testing.T, records []weather.Record, opts Options) []byte {
	t.Helper()
	var buf bytes.Buffer
	d, err := NewDumper(&buf, opts)
	require.NoError(t, err)
	n, err := d.Dump(pagination.FromSlice(records))
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.Equal(t, len(records), n)
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	const k = 4
	for _, n := range []int{0, 1, k, k + 1, 10 * k} {
		records := storagetest.Records(n)
		data := dump(t, records, DefaultOptions())

		l, err := NewLoader(bytes.NewReader(data), DefaultOptions())
		require.NoError(t, err)
		first, err := l.Load(0, 0, k)
		require.NoError(t, err)

		var sizes []int
		var got []weather.Record
		require.NoError(t, pagination.ForEach(first, func(p pagination.Page[weather.Record]) error {
			sizes = append(sizes, len(p.Results()))
			got = append(got, p.Results()...)
			return nil
		}))
		if n == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, records, got, "n=%d", n)
		for _, s := range sizes[:len(sizes)-1] {
			assert.Equal(t, k, s, "n=%d", n)
		}
		assert.Equal(t, int64(len(data)), l.BytesRead())
	}
}

func TestDumpPages(t *testing.T) {
	records := storagetest.Records(9)
	first, err := pagination.Paginate(pagination.FromSlice(records), 4)
	require.NoError(t, err)

	var buf bytes.Buffer
	d, err := NewDumper(&buf, DefaultOptions())
	require.NoError(t, err)
	n, err := d.DumpPages(first)
	require.NoError(t, err)
	require.NoError(t, d.Close())
	assert.Equal(t, 9, n)

	l, err := NewLoader(&buf, DefaultOptions())
	require.NoError(t, err)
	got, err := pagination.Drain(l.Records(0))
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestRoundTripOptions(t *testing.T) {
	records := storagetest.Records(7)
	records[2].Country = "Україна"

	opts := Options{Delimiter: ';', DateTimeLayout: "02.01.2006 15:04", Header: true, Encoding: "windows-1251"}
	data := dump(t, records, opts)
	assert.True(t, bytes.Contains(data, []byte("16.05.2024 00:00")))
	assert.False(t, bytes.Contains(data, []byte("Україна")), "output must not be UTF-8")

	l, err := NewLoader(bytes.NewReader(data), opts)
	require.NoError(t, err)
	got, err := pagination.Drain(l.Records(0))
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestDumperHeader(t *testing.T) {
	data := dump(t, nil, DefaultOptions())
	assert.Equal(t, strings.Join(Columns, ",")+"\n", string(data))

	data = dump(t, storagetest.Records(1), Options{Header: false})
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.False(t, strings.HasPrefix(string(data), ColUUID))
}

func TestDumperAbsentValues(t *testing.T) {
	r := weather.NewRecord("Chile", "Santiago", weather.GeoPosition{Latitude: -33.45, Longitude: -70.6667},
		storagetest.Day, "America/Santiago")
	data := dump(t, []weather.Record{r}, DefaultOptions())

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, r.ID.String()+",Chile,Santiago,-33.45,-70.6667,2024-05-16 00:00,America/Santiago"+strings.Repeat(",", 16), lines[1])
}

func TestLoaderDefaults(t *testing.T) {
	in := header + "Peru,Lima,-12.05,-77.05,2024-05-16 13:45,America/Lima,,\n"
	l, err := NewLoader(strings.NewReader(in), Options{})
	require.NoError(t, err)

	rec, ok, err := l.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, rec.ID, "missing uuid column gets a fresh ID")
	assert.Equal(t, "Lima", rec.Location)
	assert.Nil(t, rec.AirTemp)
	assert.Nil(t, rec.WindDirection)
	assert.Nil(t, rec.AirToxics)
	assert.Equal(t, 13, rec.LocalDateTime.Hour())

	_, ok, err = l.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoaderCleansCells(t *testing.T) {
	in := "\ufeff Country ,LOCATION_NAME,latitude,longitude,last_updated,timezone,wind_direction\n" +
		`="Peru", Lima ,-12.05,-77.05,2024-05-16 13:45,America/Lima,nne` + "\n" +
		",,,,,,\n" +
		"Peru,Cusco,-13.52,-71.97,2024-05-16 13:45,America/Lima,\n"
	l, err := NewLoader(strings.NewReader(in), Options{})
	require.NoError(t, err)

	got, err := pagination.Drain(l.Records(0))
	require.NoError(t, err)
	require.Len(t, got, 2, "blank rows are skipped")
	assert.Equal(t, "Peru", got[0].Country)
	assert.Equal(t, "Lima", got[0].Location)
	require.NotNil(t, got[0].WindDirection)
	assert.Equal(t, "NNE", got[0].WindDirection.String())
	assert.Equal(t, "Cusco", got[1].Location)
}

func TestLoaderOffsetAndLimit(t *testing.T) {
	records := storagetest.Records(10)
	data := dump(t, records, DefaultOptions())

	l, err := NewLoader(bytes.NewReader(data), DefaultOptions())
	require.NoError(t, err)
	first, err := l.Load(3, 4, 2)
	require.NoError(t, err)
	got, err := pagination.Collect(first)
	require.NoError(t, err)
	assert.Equal(t, records[4:7], got)
	assert.Equal(t, 7, l.RowsRead())

	_, err = l.Load(-1, 0, 0)
	assert.ErrorIs(t, err, weather.ErrInvalid)
}

func TestLoaderOffsetSkipsBadRows(t *testing.T) {
	in := header +
		"Peru,Lima,not-a-number,-77.05,2024-05-16 13:45,America/Lima,,\n" +
		"Peru,Cusco,-13.52,-71.97,2024-05-16 13:45,America/Lima,,\n"
	l, err := NewLoader(strings.NewReader(in), Options{})
	require.NoError(t, err)

	got, err := pagination.Drain(l.Records(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cusco", got[0].Location)
}

func TestLoaderHeaderErrors(t *testing.T) {
	_, err := NewLoader(strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = NewLoader(strings.NewReader("country,location_name,latitude\n"), Options{})
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, []string{ColLongitude, ColLastUpdated, ColTimezone}, headerErr.Missing)
	assert.Contains(t, err.Error(), "longitude, last_updated, timezone")

	_, err = NewLoader(strings.NewReader(header), Options{Encoding: "klingon"})
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestLoaderRowErrors(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		line   int
		column string
		err    error
	}{
		{"missing country", ",Lima,-12.05,-77.05,2024-05-16 13:45,America/Lima,,", 3, ColCountry, ErrMissingValue},
		{"bad latitude", "Peru,Lima,south,-77.05,2024-05-16 13:45,America/Lima,,", 3, ColLatitude, ErrInvalidValue},
		{"bad datetime", "Peru,Lima,-12.05,-77.05,16/05/2024,America/Lima,,", 3, ColLastUpdated, ErrInvalidValue},
		{"bad temperature", "Peru,Lima,-12.05,-77.05,2024-05-16 13:45,America/Lima,warm,", 3, ColTemperature, ErrInvalidValue},
		{"bad direction", "Peru,Lima,-12.05,-77.05,2024-05-16 13:45,America/Lima,,up", 3, ColWindDir, ErrInvalidValue},
	}

	good := "Peru,Cusco,-13.52,-71.97,2024-05-16 13:45,America/Lima,,\n"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLoader(strings.NewReader(header+good+tt.row+"\n"), Options{})
			require.NoError(t, err)

			got, err := pagination.Drain(l.Records(0))
			assert.Len(t, got, 1)
			var rowErr *RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, tt.line, rowErr.Line)
			assert.Equal(t, tt.column, rowErr.Column)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoaderReadFailure(t *testing.T) {
	in := io.MultiReader(strings.NewReader(header), iotest.ErrReader(errors.New("disk gone")))
	l, err := NewLoader(in, Options{})
	require.NoError(t, err)

	_, _, err = l.Next()
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Line)
	assert.Empty(t, rowErr.Column)
	assert.Equal(t, "records reading failed: line 2: disk gone", err.Error())
}

func TestLoaderErrorStopsPaging(t *testing.T) {
	in := header +
		"Peru,Lima,-12.05,-77.05,2024-05-16 13:45,America/Lima,,\n" +
		"Peru,Lima,-12.05,-77.05,2024-05-16 14:45,America/Lima,,\n" +
		"Peru,Lima,-12.05,-77.05,2024-05-16 15:45,America/Lima,,\n" +
		"Peru,Lima,x,-77.05,2024-05-16 16:45,America/Lima,,\n"
	l, err := NewLoader(strings.NewReader(in), Options{})
	require.NoError(t, err)

	// The first page and its lookahead are read; the bad row is still ahead.
	first, err := l.Load(0, 0, 2)
	require.NoError(t, err)
	assert.Len(t, first.Results(), 2)
	assert.True(t, first.HasNext())

	_, err = first.GetNext()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		in       []byte
		encoding string
		want     string
	}{
		{"plain", []byte("abc"), "", "abc"},
		{"utf-8 bom", []byte("\xef\xbb\xbfabc"), "utf-8", "abc"},
		{"invalid bytes", []byte("a\xffc"), "utf-8", "a�c"},
		{"utf-16 bom", []byte{0xff, 0xfe, 'a', 0, 'b', 0}, "utf-8", "ab"},
		{"windows-1251", []byte{0xcf, 0xf0, 0xe8}, "windows-1251", "При"},
		{"latin1 label", []byte{'c', 0xe9}, "latin1", "cé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode(bytes.NewReader(tt.in), tt.encoding)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeReplacesUnsupported(t *testing.T) {
	var buf bytes.Buffer
	w, err := Encode(&buf, "windows-1252")
	require.NoError(t, err)
	_, err = io.WriteString(w, "café Київ")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	want, err := charmap.Windows1252.NewEncoder().String("café ")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), want))
	assert.NotContains(t, buf.String(), "Київ")
}

func TestCountingReader(t *testing.T) {
	r := NewCountingReader(strings.NewReader("0123456789"), 10)
	buf := make([]byte, 4)
	_, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.BytesRead)
	assert.Equal(t, 40, r.Progress())

	_, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, 100, r.Progress())

	assert.Zero(t, NewCountingReader(strings.NewReader("x"), 0).Progress())
}

func TestLoaderProgress(t *testing.T) {
	data := dump(t, storagetest.Records(12), DefaultOptions())
	opts := DefaultOptions()
	opts.Size = int64(len(data))

	l, err := NewLoader(bytes.NewReader(data), opts)
	require.NoError(t, err)
	first, err := l.Load(0, 0, 0)
	require.NoError(t, err)
	assert.Len(t, first.Results(), 12)
	assert.Equal(t, 100, l.Progress())
}

func TestRowErrorMessage(t *testing.T) {
	err := &RowError{Line: 7, Column: ColHumidity, Err: ErrInvalidValue}
	assert.Equal(t, `records reading failed: line 7: column "humidity" value parsing failed`, err.Error())
	assert.True(t, errors.Is(err, ErrInvalidValue))
}
