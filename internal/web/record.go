package web

import (
	"github.com/JonMunkholm/wwweather/internal/weather"
)

// recordJSON is the JSON form of a record. Field names follow the CSV
// header.
type recordJSON struct {
	UUID        string   `json:"uuid"`
	Country     string   `json:"country"`
	Location    string   `json:"location_name"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	LastUpdated string   `json:"last_updated"`
	Timezone    string   `json:"timezone"`
	Temperature *float64 `json:"temperature_celsius,omitempty"`
	Humidity    *int     `json:"humidity,omitempty"`
	FeelsLike   *float64 `json:"feels_like_celsius,omitempty"`
	Pressure    *float64 `json:"pressure_mb,omitempty"`
	Wind        *float64 `json:"wind_kph,omitempty"`
	Gust        *float64 `json:"gust_kph,omitempty"`
	WindDir     string   `json:"wind_direction,omitempty"`

	AirQuality *airQualityJSON `json:"air_quality,omitempty"`
	Conditions *string         `json:"condition_text,omitempty"`
}

type airQualityJSON struct {
	CO    *float64 `json:"carbon_monoxide,omitempty"`
	O3    *float64 `json:"ozone,omitempty"`
	NO2   *float64 `json:"nitrogen_dioxide,omitempty"`
	SO2   *float64 `json:"sulphur_dioxide,omitempty"`
	PM25  *float64 `json:"pm2_5,omitempty"`
	PM10  *float64 `json:"pm10,omitempty"`
	EPA   *int     `json:"us_epa_index,omitempty"`
	DEFRA *int     `json:"gb_defra_index,omitempty"`

	Acceptable *bool `json:"acceptable,omitempty"`
}

func toRecordJSON(r weather.Record, layout string) recordJSON {
	out := recordJSON{
		UUID:        r.ID.String(),
		Country:     r.Country,
		Location:    r.Location,
		Latitude:    r.Position.Latitude,
		Longitude:   r.Position.Longitude,
		LastUpdated: r.LocalDateTime.Format(layout),
		Timezone:    r.Timezone,
		Humidity:    r.Humidity,
		Conditions:  r.Conditions,
	}
	if r.AirTemp != nil {
		out.Temperature = &r.AirTemp.Celsius
	}
	if r.ApparentTemp != nil {
		out.FeelsLike = &r.ApparentTemp.Celsius
	}
	if r.Pressure != nil {
		out.Pressure = &r.Pressure.MBar
	}
	if r.WindSpeed != nil {
		out.Wind = &r.WindSpeed.KMH
	}
	if r.WindGust != nil {
		out.Gust = &r.WindGust.KMH
	}
	if r.WindDirection != nil {
		out.WindDir = r.WindDirection.String()
	}

	if r.AirToxics != nil || r.AQIEPA != nil || r.AQIDEFRA != nil {
		aq := &airQualityJSON{EPA: r.AQIEPA, DEFRA: r.AQIDEFRA, Acceptable: r.AirQualityAcceptable()}
		if t := r.AirToxics; t != nil {
			aq.CO, aq.O3, aq.NO2, aq.SO2, aq.PM25, aq.PM10 = t.CO, t.O3, t.NO2, t.SO2, t.PM25, t.PM10
		}
		out.AirQuality = aq
	}
	return out
}
