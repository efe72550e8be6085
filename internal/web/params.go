package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/wwweather/internal/core"
	"github.com/JonMunkholm/wwweather/internal/storage"
)

// intParam parses a non-negative integer query or form value.
func intParam(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.FormValue(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer (got %q)", storage.ErrValidation, name, val)
	}
	return i, nil
}

// windowParams reads limit, offset and page_size.
func windowParams(r *http.Request, pageSize int) (storage.Window, error) {
	var w storage.Window
	var err error
	if w.Limit, err = intParam(r, "limit", 0); err != nil {
		return w, err
	}
	if w.Offset, err = intParam(r, "offset", 0); err != nil {
		return w, err
	}
	if w.PageSize, err = intParam(r, "page_size", pageSize); err != nil {
		return w, err
	}
	return w, nil
}

// searchParams reads the search criteria from the query string.
func searchParams(r *http.Request) (storage.SearchParams, error) {
	q := r.URL.Query()
	return core.Criteria{
		Country:   q.Get("country"),
		Location:  q.Get("location"),
		Latitude:  q.Get("lat"),
		Longitude: q.Get("lng"),
		Timezone:  q.Get("timezone"),
		Date:      q.Get("date"),
		From:      q.Get("from"),
		To:        q.Get("to"),
	}.Params()
}
