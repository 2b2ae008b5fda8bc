package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/kick.report/internal/config"
	"github.com/banshee-data/kick.report/internal/db"
	"github.com/banshee-data/kick.report/internal/httputil"
	"github.com/banshee-data/kick.report/internal/kick"
	"github.com/banshee-data/kick.report/internal/landmarks"
	"github.com/banshee-data/kick.report/internal/monitoring"
	"github.com/banshee-data/kick.report/internal/report"
	"github.com/banshee-data/kick.report/internal/security"
)

// DefaultSource names uploads that arrive without a source parameter.
const DefaultSource = "upload"

// AnalysisResponse is the JSON body returned by POST /api/analyze. The
// derivative series are left out; they are served as charts.
type AnalysisResponse struct {
	RunID               string              `json:"run_id,omitempty"`
	Source              string              `json:"source"`
	FrameCount          int                 `json:"frame_count"`
	KickCount           int                 `json:"kick_count"`
	RisingEdges         int                 `json:"rising_edges"`
	RejectedRefinements int                 `json:"rejected_refinements"`
	DegenerateFrames    int                 `json:"degenerate_frames"`
	Kicks               []kick.Record       `json:"kicks"`
	Dangling            []int               `json:"dangling"`
	PositivePeaks       []int               `json:"positive_peaks"`
	NegativePeaks       []int               `json:"negative_peaks"`
	History             []kick.HistoryEntry `json:"history"`
}

// NewAnalysisResponse summarises r. History is the streaming counter's
// panel over the same frames, limited to historySize entries.
func NewAnalysisResponse(source string, r *kick.Result, historySize int) AnalysisResponse {
	nonNil := func(v []int) []int {
		if v == nil {
			return []int{}
		}
		return v
	}
	kicks := r.Kicks
	if kicks == nil {
		kicks = []kick.Record{}
	}
	history := kick.Replay(r.States).History(historySize)
	if history == nil {
		history = []kick.HistoryEntry{}
	}
	return AnalysisResponse{
		Source:              source,
		FrameCount:          len(r.States),
		KickCount:           len(r.Kicks),
		RisingEdges:         len(r.Coarse) + len(r.Dangling),
		RejectedRefinements: r.RejectedRefinements,
		DegenerateFrames:    r.DegenerateFrames,
		Kicks:               kicks,
		Dangling:            nonNil(r.Dangling),
		PositivePeaks:       nonNil(r.PositivePeaks),
		NegativePeaks:       nonNil(r.NegativePeaks),
		History:             history,
	}
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.cfg)
}

// analyze accepts a landmark CSV body, runs the batch analysis and, when a
// database is attached, stores the landmarks under ?source= and records
// the run.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	source := strings.TrimSpace(r.URL.Query().Get("source"))
	if source == "" {
		source = DefaultSource
	}

	body := http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	table, err := landmarks.ReadCSV(body, s.cfg.Columns(), s.cfg.Joints())
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSONError(w, http.StatusRequestEntityTooLarge, "landmark table too large")
			return
		}
		httputil.BadRequest(w, fmt.Sprintf("invalid landmark table: %v", err))
		return
	}

	result := kick.AnalyzeTable(table, s.cfg.Joints(), s.cfg.Options())
	resp := NewAnalysisResponse(source, result, s.cfg.GetHistorySize())

	if s.db != nil {
		run := db.NewRun(source, result, s.cfg.JSON())
		if _, err := s.db.RecordAnalysis(r.Context(), run, table); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to record run: %v", err))
			return
		}
		resp.RunID = run.ID
		monitoring.Logf("recorded run %s for %s: %d kicks over %d frames", run.ID, source, run.KickCount, run.FrameCount)
	}

	httputil.WriteJSONOK(w, resp)
}

func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no database attached")
		return false
	}
	return true
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if !s.requireDB(w) {
		return
	}
	sources, err := s.db.ListSources(r.Context())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list sources: %v", err))
		return
	}
	if sources == nil {
		sources = []db.SourceSummary{}
	}
	httputil.WriteJSONOK(w, sources)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if !s.requireDB(w) {
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	httputil.WriteJSONOK(w, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if !s.requireDB(w) {
		return
	}
	run, err := s.db.GetRun(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, "run not found")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load run: %v", err))
		return
	}
	httputil.WriteJSONOK(w, run)
}

// analyzeRun reanalyses the landmarks stored for the run named in the path
// with the config the run was recorded with. It writes the error response
// itself and returns ok=false on failure.
func (s *Server) analyzeRun(w http.ResponseWriter, r *http.Request) (run *db.Run, result *kick.Result, ok bool) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return nil, nil, false
	}
	if !s.requireDB(w) {
		return nil, nil, false
	}

	ctx := r.Context()
	run, err := s.db.GetRun(ctx, r.PathValue("id"))
	if errors.Is(err, db.ErrRunNotFound) {
		httputil.NotFound(w, "run not found")
		return nil, nil, false
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load run: %v", err))
		return nil, nil, false
	}

	cfg, err := config.ParseAnalysisConfig([]byte(run.ConfigJSON))
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("stored run config: %v", err))
		return nil, nil, false
	}
	// Runs recorded before landmark imports existed fall back to the
	// source's current table.
	var table *landmarks.Table
	if run.ImportID != "" {
		table, err = s.db.LoadImport(ctx, run.ImportID)
	} else {
		table, err = s.db.LoadTable(ctx, run.Source)
	}
	if errors.Is(err, db.ErrSourceNotFound) {
		httputil.NotFound(w, "landmarks for run no longer stored")
		return nil, nil, false
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load landmarks: %v", err))
		return nil, nil, false
	}

	result = kick.AnalyzeTable(table, cfg.Joints(), cfg.Options())
	if len(result.States) == 0 {
		httputil.NotFound(w, "no classified frames for run")
		return nil, nil, false
	}
	return run, result, true
}

func (s *Server) showCharts(w http.ResponseWriter, r *http.Request) {
	run, result, ok := s.analyzeRun(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	err := report.RenderHTML(&buf, result, report.ChartOptions{
		Title:      fmt.Sprintf("%s (run %s)", run.Source, run.ID),
		AssetsHost: s.AssetsHost,
	})
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteHTML(w, buf.Bytes())
}

func (s *Server) downloadPlot(w http.ResponseWriter, r *http.Request) {
	run, result, ok := s.analyzeRun(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WritePNG(&buf, result, run.Source); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	writeAttachment(w, "image/png", downloadName(run, ".png"), buf.Bytes())
}

func (s *Server) downloadDiagnostics(w http.ResponseWriter, r *http.Request) {
	run, result, ok := s.analyzeRun(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteDiagnosticsCSV(&buf, result); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	writeAttachment(w, "text/csv", downloadName(run, "-diagnostics.csv"), buf.Bytes())
}

// downloadName builds an attachment file name from the run's source label,
// which is arbitrary user input.
func downloadName(run *db.Run, suffix string) string {
	id := run.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return security.SanitizeFilename(run.Source) + "-" + security.SanitizeFilename(id) + suffix
}

func writeAttachment(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		monitoring.Logf("failed to write %s: %v", name, err)
	}
}
