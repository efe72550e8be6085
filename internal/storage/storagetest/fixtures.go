// Package storagetest provides record fixtures shared by backend and
// operation tests.
package storagetest

import (
	"fmt"
	"time"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

// Day is the first local day of generated fixtures.
var Day = time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)

// Record returns the i-th fixture. Fixtures are distinct by key and ID and
// spaced one hour apart.
func Record(i int) weather.Record {
	r := weather.NewRecord(
		"Ukraine",
		fmt.Sprintf("Station %03d", i%7),
		weather.GeoPosition{Latitude: 50.45, Longitude: 30.52},
		Day.Add(time.Duration(i)*time.Hour),
		"Europe/Kyiv",
	)
	r.AirTemp = &weather.Temperature{Celsius: 12.5 + float64(i%10)}
	r.Humidity = weather.Ptr(40 + i%50)
	r.Pressure = &weather.Pressure{MBar: 1012.3}
	r.WindSpeed = &weather.Speed{KMH: 9.4}
	r.WindDirection = weather.Ptr(weather.RoseDirection(i % 16))
	if i%3 == 0 {
		r.AirToxics = &weather.AirToxics{CO: weather.Ptr(230.3), PM25: weather.Ptr(4.1)}
		r.AQIEPA = weather.Ptr(1)
		r.AQIDEFRA = weather.Ptr(2)
	}
	if i%2 == 0 {
		r.Conditions = weather.Ptr("Partly cloudy")
	}
	return r
}

// Records returns fixtures 0..n-1.
func Records(n int) []weather.Record {
	out := make([]weather.Record, n)
	for i := range out {
		out[i] = Record(i)
	}
	return out
}

// OnDays returns one record at noon on each given day.
func OnDays(days ...weather.Date) []weather.Record {
	out := make([]weather.Record, len(days))
	for i, d := range days {
		out[i] = weather.NewRecord("Poland", "Krakow", weather.GeoPosition{Latitude: 50.06, Longitude: 19.94},
			d.Start().Add(12*time.Hour), "Europe/Warsaw")
	}
	return out
}
