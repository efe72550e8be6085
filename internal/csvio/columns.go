package csvio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

// Header names of the weather feed.
const (
	ColUUID        = "uuid"
	ColCountry     = "country"
	ColLocation    = "location_name"
	ColLatitude    = "latitude"
	ColLongitude   = "longitude"
	ColLastUpdated = "last_updated"
	ColTimezone    = "timezone"
	ColTemperature = "temperature_celsius"
	ColHumidity    = "humidity"
	ColFeelsLike   = "feels_like_celsius"
	ColPressure    = "pressure_mb"
	ColWind        = "wind_kph"
	ColGust        = "gust_kph"
	ColWindDir     = "wind_direction"
	ColCO          = "air_quality_Carbon_Monoxide"
	ColO3          = "air_quality_Ozone"
	ColNO2         = "air_quality_Nitrogen_dioxide"
	ColSO2         = "air_quality_Sulphur_dioxide"
	ColPM25        = "air_quality_PM2.5"
	ColPM10        = "air_quality_PM10"
	ColEPA         = "air_quality_us-epa-index"
	ColDEFRA       = "air_quality_gb-defra-index"
	ColConditions  = "condition_text"
)

// Columns is the header the Dumper writes, in order.
var Columns = []string{
	ColUUID, ColCountry, ColLocation, ColLatitude, ColLongitude, ColLastUpdated, ColTimezone,
	ColTemperature, ColHumidity, ColFeelsLike, ColPressure, ColWind, ColGust, ColWindDir,
	ColCO, ColO3, ColNO2, ColSO2, ColPM25, ColPM10, ColEPA, ColDEFRA, ColConditions,
}

// requiredColumns must be present in the header and non-empty in every row.
var requiredColumns = []string{
	ColCountry, ColLocation, ColLatitude, ColLongitude, ColLastUpdated, ColTimezone,
}

// HeaderIndex maps lowercased column names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// missing returns the required columns absent from idx.
func (idx HeaderIndex) missing() []string {
	var out []string
	for _, c := range requiredColumns {
		if _, ok := idx[strings.ToLower(c)]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// CleanCell trims whitespace and unwraps Excel's ="..." text guard.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// rowParser turns one CSV row into a record, remembering the first failure.
type rowParser struct {
	idx    HeaderIndex
	row    []string
	layout string
	col    string
	err    error
}

func (p *rowParser) cell(col string) string {
	i, ok := p.idx[strings.ToLower(col)]
	if !ok || i >= len(p.row) {
		return ""
	}
	return CleanCell(p.row[i])
}

func (p *rowParser) fail(col string, err error) {
	if p.err == nil {
		p.col, p.err = col, err
	}
}

func (p *rowParser) required(col string) string {
	v := p.cell(col)
	if v == "" {
		p.fail(col, ErrMissingValue)
	}
	return v
}

func (p *rowParser) float(col string, required bool) *float64 {
	s := p.cell(col)
	if s == "" {
		if required {
			p.fail(col, ErrMissingValue)
		}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(col, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s))
		return nil
	}
	return &f
}

func (p *rowParser) integer(col string) *int {
	s := p.cell(col)
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		p.fail(col, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, s))
		return nil
	}
	return &i
}

func (p *rowParser) record() (weather.Record, error) {
	var r weather.Record

	if s := p.cell(ColUUID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			p.fail(ColUUID, fmt.Errorf("%w: %q is not a UUID", ErrInvalidValue, s))
		}
		r.ID = id
	} else {
		r.ID = uuid.New()
	}

	r.Country = p.required(ColCountry)
	r.Location = p.required(ColLocation)
	if lat := p.float(ColLatitude, true); lat != nil {
		r.Position.Latitude = *lat
	}
	if lng := p.float(ColLongitude, true); lng != nil {
		r.Position.Longitude = *lng
	}
	if s := p.required(ColLastUpdated); s != "" {
		t, err := time.Parse(p.layout, s)
		if err != nil {
			p.fail(ColLastUpdated, fmt.Errorf("%w: %q does not match %q", ErrInvalidValue, s, p.layout))
		}
		r.LocalDateTime = weather.WallClock(t)
	}
	r.Timezone = p.required(ColTimezone)

	if v := p.float(ColTemperature, false); v != nil {
		r.AirTemp = &weather.Temperature{Celsius: *v}
	}
	r.Humidity = p.integer(ColHumidity)
	if v := p.float(ColFeelsLike, false); v != nil {
		r.ApparentTemp = &weather.Temperature{Celsius: *v}
	}
	if v := p.float(ColPressure, false); v != nil {
		r.Pressure = &weather.Pressure{MBar: *v}
	}
	if v := p.float(ColWind, false); v != nil {
		r.WindSpeed = &weather.Speed{KMH: *v}
	}
	if v := p.float(ColGust, false); v != nil {
		r.WindGust = &weather.Speed{KMH: *v}
	}
	if s := p.cell(ColWindDir); s != "" {
		d, err := weather.ParseRoseDirection(s)
		if err != nil {
			p.fail(ColWindDir, fmt.Errorf("%w: %v", ErrInvalidValue, err))
		} else {
			r.WindDirection = &d
		}
	}

	toxics := weather.AirToxics{
		CO:   p.float(ColCO, false),
		O3:   p.float(ColO3, false),
		NO2:  p.float(ColNO2, false),
		SO2:  p.float(ColSO2, false),
		PM25: p.float(ColPM25, false),
		PM10: p.float(ColPM10, false),
	}
	if !toxics.IsEmpty() {
		r.AirToxics = &toxics
	}
	r.AQIEPA = p.integer(ColEPA)
	r.AQIDEFRA = p.integer(ColDEFRA)

	if s := p.cell(ColConditions); s != "" {
		r.Conditions = &s
	}

	if p.err != nil {
		return weather.Record{}, p.err
	}
	return r, nil
}

// formatRow renders r in Columns order. Absent values are empty cells.
func formatRow(r weather.Record, layout string, row []string) []string {
	row = row[:0]

	var toxics weather.AirToxics
	if r.AirToxics != nil {
		toxics = *r.AirToxics
	}
	var direction string
	if r.WindDirection != nil {
		direction = r.WindDirection.String()
	}
	var conditions string
	if r.Conditions != nil {
		conditions = *r.Conditions
	}

	return append(row,
		r.ID.String(),
		r.Country,
		r.Location,
		formatFloat(r.Position.Latitude),
		formatFloat(r.Position.Longitude),
		r.LocalDateTime.Format(layout),
		r.Timezone,
		optFloat(r.AirTemp, func(t weather.Temperature) float64 { return t.Celsius }),
		optInt(r.Humidity),
		optFloat(r.ApparentTemp, func(t weather.Temperature) float64 { return t.Celsius }),
		optFloat(r.Pressure, func(p weather.Pressure) float64 { return p.MBar }),
		optFloat(r.WindSpeed, func(s weather.Speed) float64 { return s.KMH }),
		optFloat(r.WindGust, func(s weather.Speed) float64 { return s.KMH }),
		direction,
		optFloat(toxics.CO, deref),
		optFloat(toxics.O3, deref),
		optFloat(toxics.NO2, deref),
		optFloat(toxics.SO2, deref),
		optFloat(toxics.PM25, deref),
		optFloat(toxics.PM10, deref),
		optInt(r.AQIEPA),
		optInt(r.AQIDEFRA),
		conditions,
	)
}

// formatFloat writes the shortest text that parses back to exactly f.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func deref(f float64) float64 { return f }

func optFloat[T any](v *T, get func(T) float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(get(*v))
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
