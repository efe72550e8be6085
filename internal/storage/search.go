package storage

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

// SearchParams narrows a search. Every set field must match; an empty value
// matches every record.
type SearchParams struct {
	Location string
	Country  string
	Position *weather.GeoPosition
	Timezone string

	// Date selects one whole local day. When set, StartDate and EndDate are
	// ignored.
	Date *weather.Date

	// StartDate and EndDate select a range of whole local days, both
	// inclusive. Either may be left open.
	StartDate *weather.Date
	EndDate   *weather.Date
}

// IsEmpty reports whether params match every record.
func (p SearchParams) IsEmpty() bool {
	return p.Location == "" && p.Country == "" && p.Position == nil && p.Timezone == "" &&
		p.Date == nil && p.StartDate == nil && p.EndDate == nil
}

// Validate rejects a range whose start comes after its end.
func (p SearchParams) Validate() error {
	if p.Date == nil && p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrValidation, p.StartDate, p.EndDate)
	}
	return nil
}

// DateRange resolves the date criteria into a half-open range of local
// times [from, to). A nil bound is open.
func (p SearchParams) DateRange() (from, to *time.Time) {
	start, end := p.StartDate, p.EndDate
	if p.Date != nil {
		start, end = p.Date, p.Date
	}
	if start != nil {
		t := start.Start()
		from = &t
	}
	if end != nil {
		t := end.End()
		to = &t
	}
	return from, to
}

// Matches reports whether r satisfies every criterion.
func (p SearchParams) Matches(r weather.Record) bool {
	if p.Country != "" && r.Country != p.Country {
		return false
	}
	if p.Location != "" && r.Location != p.Location {
		return false
	}
	if p.Position != nil && r.Position != *p.Position {
		return false
	}
	if p.Timezone != "" && r.Timezone != p.Timezone {
		return false
	}

	from, to := p.DateRange()
	local := weather.WallClock(r.LocalDateTime)
	if from != nil && local.Before(*from) {
		return false
	}
	if to != nil && !local.Before(*to) {
		return false
	}
	return true
}
