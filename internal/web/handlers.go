package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/wwweather/internal/core"
	"github.com/JonMunkholm/wwweather/internal/csvio"
	"github.com/JonMunkholm/wwweather/internal/logging"
	"github.com/JonMunkholm/wwweather/internal/storage"
)

// handleHealth reports liveness and the import slots in use.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.limiter.Status(),
	})
}

// handleExport streams every stored record as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	window, err := windowParams(r, s.cfg.Export.BlockSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.streamCSV(w, r, "weather_records", func(d *csvio.Dumper) (int, error) {
		sum, err := core.Export(r.Context(), s.factory, d, core.ExportRequest{Window: window})
		return sum.Exported, err
	})
}

// handleSearch streams the records matching the query as CSV.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	window, err := windowParams(r, s.cfg.Search.PageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.streamCSV(w, r, "weather_search", func(d *csvio.Dumper) (int, error) {
		sum, err := core.Search(r.Context(), s.factory, params, core.SearchRequest{Window: window, Dumper: d})
		return sum.Found, err
	})
}

// handleSearchOne returns the first matching record as JSON.
func (s *Server) handleSearchOne(w http.ResponseWriter, r *http.Request) {
	params, err := searchParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rec, err := core.FindOne(r.Context(), s.factory, params, offset)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if rec == nil {
		writeJSON(w, r, http.StatusNotFound, ErrorResponse{
			Error:   "no record matches the search",
			Message: "No record found",
			Code:    "NOTFOUND",
		})
		return
	}
	writeJSON(w, r, http.StatusOK, toRecordJSON(*rec, s.csvOptions().DateTimeLayout))
}

// importResponse is the JSON body of a finished import.
type importResponse struct {
	core.ImportSummary
	DurationMS int64 `json:"duration_ms"`
}

// handleImport stores the records of an uploaded CSV file.
//
// Form fields: file (required), block_size, on_duplicate, encoding, limit
// and offset.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Server.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(w, r, err)
			return
		}
		respondErrorStatus(w, r, fmt.Errorf("%w: invalid multipart form: %v", storage.ErrValidation, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondErrorStatus(w, r, fmt.Errorf("%w: no file provided", storage.ErrValidation), http.StatusBadRequest)
		return
	}
	defer file.Close()

	req := core.ImportRequest{OnDuplicate: storage.OnDuplicate(s.cfg.Import.OnDuplicate)}
	if v := r.FormValue("on_duplicate"); v != "" {
		req.OnDuplicate = storage.OnDuplicate(v)
	}
	if req.BlockSize, err = intParam(r, "block_size", s.cfg.Import.BlockSize); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Limit, err = intParam(r, "limit", 0); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Offset, err = intParam(r, "offset", 0); err != nil {
		respondError(w, r, err)
		return
	}

	opts := s.csvOptions()
	opts.Encoding = s.cfg.Import.Encoding
	opts.Size = header.Size
	if v := r.FormValue("encoding"); v != "" {
		opts.Encoding = v
	}

	// Hold an import slot for the whole import; the limiter bounds how many
	// files are being parsed and stored at once.
	if err := s.limiter.Acquire(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	defer s.limiter.Release()

	logging.FromContext(r.Context()).Info("import upload received", "file", header.Filename, "size", header.Size)

	loader, err := csvio.NewLoader(file, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sum, err := core.Import(r.Context(), s.factory, loader, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, importResponse{ImportSummary: sum, DurationMS: sum.Duration.Milliseconds()})
}

// csvOptions returns the configured CSV dialect.
func (s *Server) csvOptions() csvio.Options {
	opts := csvio.DefaultOptions()
	opts.DateTimeLayout = s.cfg.CSV.DateTimeLayout
	opts.Delimiter = s.cfg.CSV.DelimiterRune()
	return opts
}

// streamCSV runs write against a Dumper on the response. Errors raised
// before the first byte reaches the client become JSON error responses;
// later ones can only be logged.
func (s *Server) streamCSV(w http.ResponseWriter, r *http.Request, name string, write func(*csvio.Dumper) (int, error)) {
	out := &flushWriter{ResponseWriter: w}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s_%s.csv"`, name, time.Now().Format("20060102_150405")))

	d, err := csvio.NewDumper(out, s.csvOptions())
	if err != nil {
		respondError(w, r, err)
		return
	}

	n, err := write(d)
	if err == nil {
		err = d.Close()
	}
	if err != nil {
		if !out.started {
			w.Header().Del("Content-Disposition")
			respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Error("csv stream aborted", "error", err, "records", n)
	}
}

// flushWriter pushes every write to the client and records whether the
// response has started.
type flushWriter struct {
	http.ResponseWriter
	started bool
}

func (f *flushWriter) Write(p []byte) (int, error) {
	f.started = true
	n, err := f.ResponseWriter.Write(p)
	if err == nil {
		_ = http.NewResponseController(f.ResponseWriter).Flush()
	}
	return n, err
}
