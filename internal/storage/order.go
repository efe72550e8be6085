package storage

import (
	"bytes"
	"cmp"
	"strings"

	"github.com/JonMunkholm/wwweather/internal/weather"
)

// CompareRecords is the stable order every backend returns records in:
// local date and time, then country, location and ID.
func CompareRecords(a, b weather.Record) int {
	if c := a.LocalDateTime.Compare(b.LocalDateTime); c != 0 {
		return c
	}
	if c := strings.Compare(a.Country, b.Country); c != 0 {
		return c
	}
	if c := strings.Compare(a.Location, b.Location); c != 0 {
		return c
	}
	return cmp.Compare(bytes.Compare(a.ID[:], b.ID[:]), 0)
}
