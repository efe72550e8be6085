package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/wwweather/internal/storage"
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// Criteria is the raw text form of a search, as given on the command line
// or in a query string. Empty fields are not constrained.
type Criteria struct {
	Country   string
	Location  string
	Latitude  string
	Longitude string
	Timezone  string
	Date      string // YYYY-MM-DD, wins over From/To
	From      string
	To        string
}

// Params parses c into search parameters. Latitude and longitude must be
// given together.
func (c Criteria) Params() (storage.SearchParams, error) {
	p := storage.SearchParams{
		Country:  strings.TrimSpace(c.Country),
		Location: strings.TrimSpace(c.Location),
		Timezone: strings.TrimSpace(c.Timezone),
	}

	lat, lng := strings.TrimSpace(c.Latitude), strings.TrimSpace(c.Longitude)
	switch {
	case lat == "" && lng == "":
	case lat == "" || lng == "":
		return p, fmt.Errorf("%w: latitude and longitude must be given together", storage.ErrValidation)
	default:
		pos, err := parsePosition(lat, lng)
		if err != nil {
			return p, err
		}
		p.Position = &pos
	}

	var err error
	if p.Date, err = parseDate("date", c.Date); err != nil {
		return p, err
	}
	if p.StartDate, err = parseDate("from", c.From); err != nil {
		return p, err
	}
	if p.EndDate, err = parseDate("to", c.To); err != nil {
		return p, err
	}

	return p, p.Validate()
}

func parsePosition(lat, lng string) (weather.GeoPosition, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return weather.GeoPosition{}, fmt.Errorf("%w: latitude %q is not a number", storage.ErrValidation, lat)
	}
	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return weather.GeoPosition{}, fmt.Errorf("%w: longitude %q is not a number", storage.ErrValidation, lng)
	}
	return weather.GeoPosition{Latitude: la, Longitude: lo}, nil
}

func parseDate(name, s string) (*weather.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := weather.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrValidation, name, err)
	}
	return &d, nil
}
