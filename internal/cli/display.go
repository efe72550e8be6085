package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

// field is one row of the vertical record table.
type field struct {
	name  string
	value func(weather.Record, string) string
}

var displayFields = []field{
	{"Location", func(r weather.Record, _ string) string { return r.Location + ", " + r.Country }},
	{"Position", func(r weather.Record, _ string) string {
		return fmt.Sprintf("%s, %s", num(r.Position.Latitude), num(r.Position.Longitude))
	}},
	{"Local time", func(r weather.Record, layout string) string {
		return r.LocalDateTime.Format(layout) + " " + r.Timezone
	}},
	{"Temperature", func(r weather.Record, _ string) string {
		if r.AirTemp == nil {
			return "-"
		}
		s := fmt.Sprintf("%s °C / %s °F", num(r.AirTemp.Celsius), num(r.AirTemp.Fahrenheit()))
		if r.ApparentTemp != nil {
			s += fmt.Sprintf(" (feels %s °C)", num(r.ApparentTemp.Celsius))
		}
		return s
	}},
	{"Humidity", func(r weather.Record, _ string) string {
		if r.Humidity == nil {
			return "-"
		}
		return strconv.Itoa(*r.Humidity) + " %"
	}},
	{"Pressure", func(r weather.Record, _ string) string {
		if r.Pressure == nil {
			return "-"
		}
		return fmt.Sprintf("%s mb / %s in", num(r.Pressure.MBar), num(r.Pressure.Inch()))
	}},
	{"Wind", func(r weather.Record, _ string) string {
		if r.WindSpeed == nil {
			return "-"
		}
		s := fmt.Sprintf("%s km/h", num(r.WindSpeed.KMH))
		if r.WindDirection != nil {
			s += " " + r.WindDirection.String()
		}
		if r.WindGust != nil {
			s += fmt.Sprintf(", gusts %s km/h", num(r.WindGust.KMH))
		}
		return s
	}},
	{"Air quality", func(r weather.Record, _ string) string {
		ok := r.AirQualityAcceptable()
		switch {
		case ok == nil:
			return "-"
		case *ok:
			return "acceptable"
		default:
			return "poor"
		}
	}},
	{"Conditions", func(r weather.Record, _ string) string {
		if r.Conditions == nil {
			return "-"
		}
		return *r.Conditions
	}},
}

// writeGroup prints records side by side, one column per record.
func writeGroup(w io.Writer, records []weather.Record, layout string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, f := range displayFields {
		cells := make([]string, 0, len(records)+1)
		cells = append(cells, f.name)
		for _, r := range records {
			cells = append(cells, f.value(r, layout))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	fmt.Fprintln(tw)
	return tw.Flush()
}

// num prints f with at most two decimals.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
