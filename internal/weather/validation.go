package weather

// validation.go checks a record before it reaches storage.
//
// Every problem is reported, not only the first, so a CSV row with three bad
// cells produces one error naming all three fields.

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalid matches every validation failure with errors.Is.
var ErrInvalid = errors.New("validation failed")

// ValidationError is a single problem with one field.
type ValidationError struct {
	Field   string // Record field name
	Value   string // The offending value, if any
	Message string // Human-readable description
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Is makes every ValidationError match ErrInvalid.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// ValidationErrors is the list of problems found in one record.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid record: " + strings.Join(msgs, "; ")
}

// Is makes ValidationErrors match ErrInvalid.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalid
}

// Validate checks required fields and value ranges.
// It returns nil or a ValidationErrors value.
func (r Record) Validate() error {
	var errs ValidationErrors
	add := func(field, value, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if r.ID == uuid.Nil {
		add("ID", "", "required field is empty")
	}
	if strings.TrimSpace(r.Country) == "" {
		add("Country", r.Country, "required field is empty")
	}
	if strings.TrimSpace(r.Location) == "" {
		add("Location", r.Location, "required field is empty")
	}

	lat, lng := r.Position.Latitude, r.Position.Longitude
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		add("Latitude", fmt.Sprint(lat), "must be between -90 and 90")
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		add("Longitude", fmt.Sprint(lng), "must be between -180 and 180")
	}

	if r.LocalDateTime.IsZero() {
		add("LocalDateTime", "", "required field is empty")
	}
	if strings.TrimSpace(r.Timezone) == "" {
		add("Timezone", "", "required field is empty")
	} else if _, err := loadLocation(r.Timezone); err != nil {
		add("Timezone", r.Timezone, "unknown IANA time zone")
	}

	if r.Humidity != nil && (*r.Humidity < 0 || *r.Humidity > 100) {
		add("Humidity", fmt.Sprint(*r.Humidity), "must be between 0 and 100")
	}
	if r.WindDirection != nil && !r.WindDirection.Valid() {
		add("WindDirection", r.WindDirection.String(), "not a compass rose point")
	}
	if r.AQIEPA != nil && (*r.AQIEPA < 1 || *r.AQIEPA > 6) {
		add("AQIEPA", fmt.Sprint(*r.AQIEPA), "must be between 1 and 6")
	}
	if r.AQIDEFRA != nil && (*r.AQIDEFRA < 1 || *r.AQIDEFRA > 10) {
		add("AQIDEFRA", fmt.Sprint(*r.AQIDEFRA), "must be between 1 and 10")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
