package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/kick.report/internal/api"
	"github.com/banshee-data/kick.report/internal/config"
	"github.com/banshee-data/kick.report/internal/db"
	"github.com/banshee-data/kick.report/internal/httputil"
	"github.com/banshee-data/kick.report/internal/kick"
	"github.com/banshee-data/kick.report/internal/landmarks"
	"github.com/banshee-data/kick.report/internal/report"
)

const defaultDBPath = "kick.db"

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse parses args and returns the single positional argument if want is
// set.
func parse(fs *flag.FlagSet, args []string, want bool) (string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return "", err
		}
		return "", errUsage
	}
	if !want {
		if fs.NArg() != 0 {
			fmt.Fprintf(fs.Output(), "unexpected arguments: %v\n", fs.Args())
			return "", errUsage
		}
		return "", nil
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(fs.Output(), "usage: kick %s [options] <landmarks.csv>\n", fs.Name())
		fs.PrintDefaults()
		return "", errUsage
	}
	return fs.Arg(0), nil
}

// loadConfig reads path, or returns the built-in defaults when path is empty.
func loadConfig(path string) (*config.AnalysisConfig, error) {
	if path == "" {
		return config.DefaultAnalysisConfig(), nil
	}
	return config.LoadAnalysisConfig(path)
}

// readTable loads a landmark CSV; "-" reads standard input.
func readTable(path string, cfg *config.AnalysisConfig) (*landmarks.Table, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	t, err := landmarks.ReadCSV(r, cfg.Columns(), cfg.Joints())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// sourceName defaults a source label to the input file name without its
// extension.
func sourceName(source, path string) string {
	if source != "" {
		return source
	}
	if path == "-" {
		return api.DefaultSource
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("analyze", stderr)
	configPath := fs.String("config", "", "Analysis config JSON (defaults built in)")
	pngPath := fs.String("png", "", "Write the four-panel diagnostic plot to this PNG")
	htmlPath := fs.String("html", "", "Write interactive charts to this HTML file")
	diagPath := fs.String("diag", "", "Write per-frame diagnostics to this CSV")
	dbPath := fs.String("db", "", "Store landmarks and record the run in this database")
	source := fs.String("source", "", "Source label (defaults to the input file name)")
	path, err := parse(fs, args, true)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	table, err := readTable(path, cfg)
	if err != nil {
		return err
	}
	name := sourceName(*source, path)

	result := kick.AnalyzeTable(table, cfg.Joints(), cfg.Options())
	if err := report.WriteSummary(stdout, result); err != nil {
		return err
	}

	if *diagPath != "" {
		if err := writeFile(*diagPath, func(w io.Writer) error { return report.WriteDiagnosticsCSV(w, result) }); err != nil {
			return err
		}
		log.Printf("wrote diagnostics to %s", *diagPath)
	}
	if *pngPath != "" {
		if err := report.SavePNG(*pngPath, result, name); err != nil {
			return err
		}
		log.Printf("wrote plot to %s", *pngPath)
	}
	if *htmlPath != "" {
		err := writeFile(*htmlPath, func(w io.Writer) error {
			return report.RenderHTML(w, result, report.ChartOptions{Title: name})
		})
		if err != nil {
			return err
		}
		log.Printf("wrote charts to %s", *htmlPath)
	}

	if *dbPath != "" {
		database, err := db.NewDB(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		run := db.NewRun(name, result, cfg.JSON())
		if _, err := database.RecordAnalysis(context.Background(), run, table); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nRecorded run %s for source %q\n", run.ID, name)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runStream feeds frames to the live counter one at a time, printing each
// counted kick and the history panel at the end.
func runStream(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("stream", stderr)
	configPath := fs.String("config", "", "Analysis config JSON (defaults built in)")
	verbose := fs.Bool("v", false, "Print every frame, not only kicks")
	path, err := parse(fs, args, true)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	table, err := readTable(path, cfg)
	if err != nil {
		return err
	}

	joints := cfg.Joints()
	state := kick.NewCounterState()
	for _, sample := range table.Samples {
		frame, ok := kick.ClassifySample(sample, joints)
		if !ok {
			continue
		}
		var kicked bool
		state, kicked = state.Advance(frame)
		if kicked || *verbose {
			fmt.Fprintf(stdout, "frame %5d  count=%-3d stage=%-8s angle=%6.1f°\n",
				frame.Frame, state.Count, state.Stage, state.HipAngle)
		}
	}

	fmt.Fprintf(stdout, "\nKicks: %d\n", state.Count)
	history := state.History(cfg.GetHistorySize())
	if len(history) == 0 {
		return nil
	}
	fmt.Fprintln(stdout, "Last kicks:")
	for _, h := range history {
		fmt.Fprintf(stdout, "  %d: %.1f°\n", h.Number, h.Angle)
	}
	return nil
}

func runImport(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("import", stderr)
	configPath := fs.String("config", "", "Analysis config JSON (defaults built in)")
	dbPath := fs.String("db", defaultDBPath, "SQLite database path")
	source := fs.String("source", "", "Source label (defaults to the input file name)")
	path, err := parse(fs, args, true)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	table, err := readTable(path, cfg)
	if err != nil {
		return err
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	name := sourceName(*source, path)
	imp, err := database.ImportTable(context.Background(), name, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Imported %d points over %d frames as %q\n", imp.Points, imp.Frames, name)
	return nil
}

func runRuns(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("runs", stderr)
	dbPath := fs.String("db", defaultDBPath, "SQLite database path")
	limit := fs.Int("limit", 20, "Number of runs to list")
	id := fs.String("id", "", "Show the kicks of this run")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	ctx := context.Background()

	if *id != "" {
		run, err := database.GetRun(ctx, *id)
		if err != nil {
			return err
		}
		if *asJSON {
			return printJSON(stdout, run)
		}
		fmt.Fprintf(stdout, "Run %s (%s, %s)\n", run.ID, run.Source, run.CreatedAt.Local().Format(time.DateTime))
		fmt.Fprintf(stdout, "Frames: %d  Degenerate: %d  Rejected refinements: %d\n\n",
			run.FrameCount, run.DegenerateFrames, run.RejectedRefinements)
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tinterval\tcoarse\trefined\thip angle")
		for i, k := range run.Kicks {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%.1f°\n", i+1, k.Interval, k.Coarse, k.Refined, k.Angle)
		}
		return tw.Flush()
	}

	runs, err := database.ListRuns(ctx, *limit)
	if err != nil {
		return err
	}
	if *asJSON {
		if runs == nil {
			runs = []db.Run{}
		}
		return printJSON(stdout, runs)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "run\tsource\tframes\tkicks\tcreated")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.ID, r.Source, r.FrameCount, r.KickCount,
			r.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runServe(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("serve", stderr)
	listen := fs.String("listen", ":8090", "Listen address")
	dbPath := fs.String("db", defaultDBPath, "SQLite database path (empty serves without storage)")
	configPath := fs.String("config", "", "Analysis config JSON (defaults built in)")
	assetsHost := fs.String("assets-host", "", "Override where chart scripts are loaded from")
	if _, err := parse(fs, args, false); err != nil {
		return err
	}
	if *listen == "" {
		return fmt.Errorf("listen address is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	var database *db.DB
	if *dbPath != "" {
		database, err = db.NewDB(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := api.NewServer(database, cfg)
	s.AssetsHost = *assetsHost
	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(s.ServeMux()),
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	log.Print("HTTP server routine stopped")
	return nil
}

func runSubmit(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("submit", stderr)
	serverURL := fs.String("server", "http://localhost:8090", "Base URL of a running kick server")
	source := fs.String("source", "", "Source label (defaults to the input file name)")
	timeout := fs.Duration("timeout", 30*time.Second, "Request timeout")
	path, err := parse(fs, args, true)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	client := api.NewClient(*serverURL, httputil.NewStandardClient(nil))
	resp, err := client.Analyze(ctx, sourceName(*source, path), r)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Kicks detected: %d over %d frames\n", resp.KickCount, resp.FrameCount)
	for i, k := range resp.Kicks {
		fmt.Fprintf(stdout, "  #%d %s %.1f°\n", i+1, k.Interval, k.Angle)
	}
	if resp.RunID != "" {
		fmt.Fprintf(stdout, "Recorded run %s\n", resp.RunID)
	}
	return nil
}

func runMigrate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("migrate", stderr)
	dbPath := fs.String("db", defaultDBPath, "SQLite database path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			db.PrintMigrateHelp(stdout)
			return err
		}
		return errUsage
	}
	return db.RunMigrateCommand(fs.Args(), *dbPath, stdout)
}
