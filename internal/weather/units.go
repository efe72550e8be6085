package weather

import (
	"fmt"
	"strings"
)

const (
	mbarPerInch = 33.8639
	mphPerKMH   = 0.621371
	kmhPerMPH   = 1.609344
)

// Temperature is an air temperature, stored in degrees Celsius.
type Temperature struct {
	Celsius float64
}

// TemperatureFromFahrenheit converts degrees Fahrenheit.
func TemperatureFromFahrenheit(f float64) Temperature {
	return Temperature{Celsius: (f - 32) * 5 / 9}
}

// Fahrenheit returns the temperature in degrees Fahrenheit.
func (t Temperature) Fahrenheit() float64 {
	return t.Celsius*9/5 + 32
}

// Pressure is an atmospheric pressure, stored in millibars.
type Pressure struct {
	MBar float64
}

// PressureFromInch converts inches of mercury.
func PressureFromInch(in float64) Pressure {
	return Pressure{MBar: in * mbarPerInch}
}

// Inch returns the pressure in inches of mercury.
func (p Pressure) Inch() float64 {
	return p.MBar / mbarPerInch
}

// Speed is a wind speed, stored in kilometres per hour.
type Speed struct {
	KMH float64
}

// SpeedFromMPH converts miles per hour.
func SpeedFromMPH(mph float64) Speed {
	return Speed{KMH: mph * kmhPerMPH}
}

// MPH returns the speed in miles per hour.
func (s Speed) MPH() float64 {
	return s.KMH * mphPerKMH
}

// AirToxics holds average concentrations in μg/m³. Any of them may be unknown.
type AirToxics struct {
	CO   *float64
	O3   *float64
	NO2  *float64
	SO2  *float64
	PM25 *float64
	PM10 *float64
}

// IsEmpty reports whether no concentration is known.
func (a AirToxics) IsEmpty() bool {
	return a.CO == nil && a.O3 == nil && a.NO2 == nil && a.SO2 == nil && a.PM25 == nil && a.PM10 == nil
}

// RoseDirection is one of the 16 points of the compass rose, N first,
// going clockwise.
type RoseDirection int

const (
	N RoseDirection = iota
	NNE
	NE
	ENE
	E
	ESE
	SE
	SSE
	S
	SSW
	SW
	WSW
	W
	WNW
	NW
	NNW
)

var roseNames = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// ParseRoseDirection parses a point name such as "NNE". Case is ignored.
func ParseRoseDirection(name string) (RoseDirection, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range roseNames {
		if n == name {
			return RoseDirection(i), nil
		}
	}
	return 0, fmt.Errorf("unknown wind direction %q", name)
}

// Valid reports whether d is one of the 16 points.
func (d RoseDirection) Valid() bool {
	return d >= N && d <= NNW
}

// Degrees returns the azimuth of d.
func (d RoseDirection) Degrees() float64 {
	return float64(d) * 22.5
}

func (d RoseDirection) String() string {
	if !d.Valid() {
		return fmt.Sprintf("RoseDirection(%d)", int(d))
	}
	return roseNames[d]
}
