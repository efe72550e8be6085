package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

func TestParseOnDuplicate(t *testing.T) {
	tests := []struct {
		in      string
		want    OnDuplicate
		wantErr bool
	}{
		{"", DuplicateRaise, false},
		{"raise", DuplicateRaise, false},
		{" Update ", DuplicateUpdate, false},
		{"IGNORE", DuplicateIgnore, false},
		{"merge", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOnDuplicate(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSearchParamsIsEmpty(t *testing.T) {
	day := weather.Date{Year: 2024, Month: time.May, Day: 16}
	tests := []struct {
		name   string
		params SearchParams
		want   bool
	}{
		{"zero", SearchParams{}, true},
		{"country", SearchParams{Country: "Peru"}, false},
		{"position", SearchParams{Position: &weather.GeoPosition{}}, false},
		{"date", SearchParams{Date: &day}, false},
		{"open range end", SearchParams{EndDate: &day}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.IsEmpty())
		})
	}
}

func TestDateRange(t *testing.T) {
	d1 := weather.Date{Year: 2024, Month: time.March, Day: 30}
	d2 := weather.Date{Year: 2024, Month: time.April, Day: 2}

	from, to := SearchParams{StartDate: &d1, EndDate: &d2}.DateRange()
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), *to)

	from, to = SearchParams{Date: &d2, StartDate: &d1}.DateRange()
	assert.Equal(t, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), *to)

	from, to = SearchParams{}.DateRange()
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestMatches_DayBoundaries(t *testing.T) {
	day := weather.Date{Year: 2024, Month: time.June, Day: 1}
	at := func(h, m int) weather.Record {
		return weather.NewRecord("Spain", "Madrid", weather.GeoPosition{}, time.Date(2024, 6, 1, h, m, 0, 0, time.UTC), "Europe/Madrid")
	}
	p := SearchParams{Date: &day}

	assert.True(t, p.Matches(at(0, 0)))
	assert.True(t, p.Matches(at(23, 59)))
	assert.False(t, p.Matches(at(24, 0)))
	assert.False(t, p.Matches(at(-1, 59)))
}

func TestWindowValidate(t *testing.T) {
	assert.NoError(t, Window{}.Validate())
	assert.ErrorIs(t, Window{Limit: -1}.Validate(), ErrValidation)
	assert.ErrorIs(t, Window{Offset: -1}.Validate(), ErrValidation)
	assert.ErrorIs(t, Window{PageSize: -1}.Validate(), ErrValidation)
}

func TestLifecycle(t *testing.T) {
	var l Lifecycle
	assert.NoError(t, l.Check())
	assert.True(t, l.MarkReleased())
	assert.False(t, l.MarkReleased())
	assert.ErrorIs(t, l.Check(), ErrReleased)
}

func TestFailedKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Failed("export", cause)

	assert.ErrorIs(t, err, ErrOperationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "export")
}

func TestBlockErrorMessage(t *testing.T) {
	err := &BlockError{Block: 3, Err: ErrDuplicate}
	assert.Equal(t, "block 3: records duplication detected", err.Error())
	assert.ErrorIs(t, err, ErrDuplicate)
}
