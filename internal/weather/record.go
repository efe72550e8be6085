// Package weather defines the weather observation record and its value types.
package weather

import (
	"sync"
	"time"
	_ "time/tzdata" // zone names must resolve on hosts without a zoneinfo database

	"github.com/google/uuid"
)

// GeoPosition is a point on the globe in decimal degrees.
type GeoPosition struct {
	Latitude  float64
	Longitude float64
}

// Record is one weather observation for a location at a local date and time.
//
// The key attributes (Country, Location, Position, LocalDateTime, Timezone)
// identify an observation. Two records with equal keys, or with equal IDs,
// are duplicates. Every measurement is optional.
type Record struct {
	ID uuid.UUID

	Country  string
	Location string
	Position GeoPosition

	// LocalDateTime is the wall clock time at the location. It carries no
	// zone of its own; see Timezone.
	LocalDateTime time.Time
	// Timezone is an IANA time zone name, e.g. "Europe/Kyiv".
	Timezone string

	AirTemp      *Temperature
	Humidity     *int // percent
	ApparentTemp *Temperature

	Pressure *Pressure

	WindSpeed     *Speed
	WindGust      *Speed
	WindDirection *RoseDirection

	AirToxics *AirToxics
	AQIEPA    *int // US EPA scale, 1-6
	AQIDEFRA  *int // UK DEFRA scale, 1-10

	Conditions *string
}

// Key is the set of attributes that identifies an observation.
type Key struct {
	Country       string
	Location      string
	Latitude      float64
	Longitude     float64
	LocalDateTime time.Time
	Timezone      string
}

// NewRecord returns a record with a fresh ID and a zone-less local time.
func NewRecord(country, location string, pos GeoPosition, local time.Time, tz string) Record {
	return Record{
		ID:            uuid.New(),
		Country:       country,
		Location:      location,
		Position:      pos,
		LocalDateTime: WallClock(local),
		Timezone:      tz,
	}
}

// Key returns the identifying attributes of r.
func (r Record) Key() Key {
	return Key{
		Country:       r.Country,
		Location:      r.Location,
		Latitude:      r.Position.Latitude,
		Longitude:     r.Position.Longitude,
		LocalDateTime: WallClock(r.LocalDateTime),
		Timezone:      r.Timezone,
	}
}

// Zone loads the record's time zone.
func (r Record) Zone() (*time.Location, error) {
	return loadLocation(r.Timezone)
}

// ZonedTime returns the local date and time placed in the record's zone.
func (r Record) ZonedTime() (time.Time, error) {
	loc, err := r.Zone()
	if err != nil {
		return time.Time{}, err
	}
	t := r.LocalDateTime
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
}

// AirQualityAcceptable reports whether the known air quality indexes are
// within acceptable bounds. It returns nil when neither index is known.
func (r Record) AirQualityAcceptable() *bool {
	if r.AQIEPA == nil && r.AQIDEFRA == nil {
		return nil
	}
	bad := (r.AQIEPA != nil && *r.AQIEPA > 3) || (r.AQIDEFRA != nil && *r.AQIDEFRA >= 7)
	ok := !bad
	return &ok
}

// WallClock drops the zone from t and keeps its wall clock reading.
func WallClock(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

var locations sync.Map // zone name -> *time.Location

func loadLocation(name string) (*time.Location, error) {
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	locations.Store(name, loc)
	return loc, nil
}
