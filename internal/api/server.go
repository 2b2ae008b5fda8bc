// Package api serves the local kick viewer: stored runs and sources as
// JSON, ad-hoc analysis of uploaded landmark tables, and interactive
// charts recomputed from stored landmarks.
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/kick.report/internal/config"
	"github.com/banshee-data/kick.report/internal/db"
)

// ANSI escape codes for the request log.
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// MaxUploadBytes caps the landmark table accepted by POST /api/analyze.
const MaxUploadBytes = 32 << 20

type Server struct {
	db  *db.DB
	cfg *config.AnalysisConfig
	// AssetsHost is passed through to the chart renderer.
	AssetsHost string
}

// NewServer returns a server using cfg for every analysis. database may be
// nil, in which case uploads are analysed but not stored and the run and
// chart routes report 503.
func NewServer(database *db.DB, cfg *config.AnalysisConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyAnalysisConfig()
	}
	return &Server{db: database, cfg: cfg}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/analyze", s.analyze)
	mux.HandleFunc("/api/sources", s.listSources)
	mux.HandleFunc("/api/runs", s.listRuns)
	mux.HandleFunc("/api/runs/{id}", s.getRun)
	mux.HandleFunc("/api/runs/{id}/plot.png", s.downloadPlot)
	mux.HandleFunc("/api/runs/{id}/diagnostics.csv", s.downloadDiagnostics)
	mux.HandleFunc("/charts/{id}", s.showCharts)
	if s.db != nil {
		s.db.AttachAdminRoutes(mux)
	}
	return mux
}
