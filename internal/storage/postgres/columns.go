package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

const table = "weather_records"

// columns lists the table columns in the order recordArgs and scanRecord use.
var columns = []string{
	"uuid",
	"location_country",
	"location_name",
	"location_latitude",
	"location_longitude",
	"local_datetime",
	"local_timezone",
	"air_temp_celsius",
	"humidity",
	"apparent_temp_celsius",
	"atm_pressure_mbar",
	"wind_speed_kmh",
	"wind_gust_kmh",
	"wind_direction",
	"air_toxic_co",
	"air_toxic_o3",
	"air_toxic_no2",
	"air_toxic_so2",
	"air_toxic_pm25",
	"air_toxic_pm10",
	"aqi_epa",
	"aqi_defra",
	"conditions_report",
}

// orderBy matches storage.CompareRecords.
const orderBy = " ORDER BY local_datetime, location_country, location_name, uuid"

var (
	selectColumns = strings.Join(columns, ", ")
	insertSQL     = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, selectColumns, placeholders(len(columns)))
	insertIgnore  = insertSQL + " ON CONFLICT DO NOTHING"
)

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// recordArgs returns the insert arguments for r, absent values as NULL.
func recordArgs(r weather.Record) []any {
	var toxics weather.AirToxics
	if r.AirToxics != nil {
		toxics = *r.AirToxics
	}

	var direction pgtype.Text
	if r.WindDirection != nil {
		direction = pgtype.Text{String: r.WindDirection.String(), Valid: true}
	}

	var apparent, air *float64
	if r.AirTemp != nil {
		air = &r.AirTemp.Celsius
	}
	if r.ApparentTemp != nil {
		apparent = &r.ApparentTemp.Celsius
	}
	var pressure, speed, gust *float64
	if r.Pressure != nil {
		pressure = &r.Pressure.MBar
	}
	if r.WindSpeed != nil {
		speed = &r.WindSpeed.KMH
	}
	if r.WindGust != nil {
		gust = &r.WindGust.KMH
	}

	return []any{
		pgtype.UUID{Bytes: r.ID, Valid: true},
		r.Country,
		r.Location,
		r.Position.Latitude,
		r.Position.Longitude,
		pgtype.Timestamp{Time: weather.WallClock(r.LocalDateTime), Valid: true},
		r.Timezone,
		toFloat8(air),
		toInt2(r.Humidity),
		toFloat8(apparent),
		toFloat8(pressure),
		toFloat8(speed),
		toFloat8(gust),
		direction,
		toFloat8(toxics.CO),
		toFloat8(toxics.O3),
		toFloat8(toxics.NO2),
		toFloat8(toxics.SO2),
		toFloat8(toxics.PM25),
		toFloat8(toxics.PM10),
		toInt2(r.AQIEPA),
		toInt2(r.AQIDEFRA),
		toText(r.Conditions),
	}
}

func toFloat8(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}

func toInt2(v *int) pgtype.Int2 {
	if v == nil {
		return pgtype.Int2{}
	}
	return pgtype.Int2{Int16: int16(*v), Valid: true}
}

func toText(v *string) pgtype.Text {
	if v == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *v, Valid: true}
}

// row is the scan target for one table row.
type row struct {
	id        pgtype.UUID
	country   string
	location  string
	latitude  float64
	longitude float64
	local     pgtype.Timestamp
	timezone  string

	airTemp, apparent, pressure pgtype.Float8
	humidity                    pgtype.Int2
	speed, gust                 pgtype.Float8
	direction                   pgtype.Text

	co, o3, no2, so2, pm25, pm10 pgtype.Float8
	epa, defra                   pgtype.Int2
	conditions                   pgtype.Text
}

func (r *row) targets() []any {
	return []any{
		&r.id, &r.country, &r.location, &r.latitude, &r.longitude, &r.local, &r.timezone,
		&r.airTemp, &r.humidity, &r.apparent, &r.pressure,
		&r.speed, &r.gust, &r.direction,
		&r.co, &r.o3, &r.no2, &r.so2, &r.pm25, &r.pm10,
		&r.epa, &r.defra, &r.conditions,
	}
}

// scanRecord is a pgx.RowToFunc for the columns list.
func scanRecord(rows pgx.CollectableRow) (weather.Record, error) {
	var r row
	if err := rows.Scan(r.targets()...); err != nil {
		return weather.Record{}, err
	}
	return r.record()
}

func (r *row) record() (weather.Record, error) {
	rec := weather.Record{
		ID:            uuid.UUID(r.id.Bytes),
		Country:       r.country,
		Location:      r.location,
		Position:      weather.GeoPosition{Latitude: r.latitude, Longitude: r.longitude},
		LocalDateTime: weather.WallClock(r.local.Time),
		Timezone:      r.timezone,
		Humidity:      fromInt2(r.humidity),
		AQIEPA:        fromInt2(r.epa),
		AQIDEFRA:      fromInt2(r.defra),
		Conditions:    fromText(r.conditions),
	}

	if v := fromFloat8(r.airTemp); v != nil {
		rec.AirTemp = &weather.Temperature{Celsius: *v}
	}
	if v := fromFloat8(r.apparent); v != nil {
		rec.ApparentTemp = &weather.Temperature{Celsius: *v}
	}
	if v := fromFloat8(r.pressure); v != nil {
		rec.Pressure = &weather.Pressure{MBar: *v}
	}
	if v := fromFloat8(r.speed); v != nil {
		rec.WindSpeed = &weather.Speed{KMH: *v}
	}
	if v := fromFloat8(r.gust); v != nil {
		rec.WindGust = &weather.Speed{KMH: *v}
	}
	if r.direction.Valid {
		d, err := weather.ParseRoseDirection(r.direction.String)
		if err != nil {
			return weather.Record{}, err
		}
		rec.WindDirection = &d
	}

	toxics := weather.AirToxics{
		CO:   fromFloat8(r.co),
		O3:   fromFloat8(r.o3),
		NO2:  fromFloat8(r.no2),
		SO2:  fromFloat8(r.so2),
		PM25: fromFloat8(r.pm25),
		PM10: fromFloat8(r.pm10),
	}
	if !toxics.IsEmpty() {
		rec.AirToxics = &toxics
	}

	return rec, nil
}

func fromFloat8(v pgtype.Float8) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func fromInt2(v pgtype.Int2) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int16)
	return &i
}

func fromText(v pgtype.Text) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
