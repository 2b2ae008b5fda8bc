package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/kick.report/internal/kick"
)

// Run is a persisted analysis of one landmark source.
type Run struct {
	ID                  string        `json:"run_id"`
	Source              string        `json:"source"`
	ImportID            string        `json:"import_id,omitempty"`
	FrameCount          int           `json:"frame_count"`
	KickCount           int           `json:"kick_count"`
	RejectedRefinements int           `json:"rejected_refinements"`
	DegenerateFrames    int           `json:"degenerate_frames"`
	ConfigJSON          string        `json:"config_json"`
	CreatedAt           time.Time     `json:"created_at"`
	Kicks               []kick.Record `json:"kicks,omitempty"`
}

// NewRun builds a run record for an analysis result with a fresh id. The
// creation time is left for RecordRun to stamp.
func NewRun(source string, r *kick.Result, configJSON string) *Run {
	if configJSON == "" {
		configJSON = "{}"
	}
	return &Run{
		ID:                  uuid.NewString(),
		Source:              source,
		FrameCount:          len(r.States),
		KickCount:           len(r.Kicks),
		RejectedRefinements: r.RejectedRefinements,
		DegenerateFrames:    r.DegenerateFrames,
		ConfigJSON:          configJSON,
		Kicks:               r.Kicks,
	}
}

// RecordRun stores run and its kicks in one transaction.
func (db *DB) RecordRun(ctx context.Context, run *Run) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin run insert: %w", err)
	}
	defer tx.Rollback()

	if err := db.insertRun(ctx, tx, run); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) insertRun(ctx context.Context, tx *sql.Tx, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = db.clock.Now().UTC()
	}
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}
	importID := sql.NullString{String: run.ImportID, Valid: run.ImportID != ""}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO analysis_runs (
			run_id, source, import_id, frame_count, kick_count, rejected_refinements,
			degenerate_frames, config_json, created_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, importID, run.FrameCount, run.KickCount, run.RejectedRefinements,
		run.DegenerateFrames, run.ConfigJSON, run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	for i, k := range run.Kicks {
		refined := 0
		if k.Refined {
			refined = 1
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kicks (
				run_id, kick_index, start_frame, end_frame,
				coarse_start, coarse_end, refined, angle
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, k.Interval.Start, k.Interval.End,
			k.Coarse.Start, k.Coarse.End, refined, k.Angle,
		)
		if err != nil {
			return fmt.Errorf("failed to insert kick %d of run %s: %w", i, run.ID, err)
		}
	}
	return nil
}

// GetRun returns the run with id, including its kicks in order.
func (db *DB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := db.QueryRowContext(ctx, `
		SELECT run_id, source, import_id, frame_count, kick_count, rejected_refinements,
			degenerate_frames, config_json, created_unix_nanos
		FROM analysis_runs WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT start_frame, end_frame, coarse_start, coarse_end, refined, angle
		FROM kicks WHERE run_id = ? ORDER BY kick_index`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Kicks = []kick.Record{}
	for rows.Next() {
		var k kick.Record
		if err := rows.Scan(&k.Interval.Start, &k.Interval.End,
			&k.Coarse.Start, &k.Coarse.End, &k.Refined, &k.Angle); err != nil {
			return nil, err
		}
		run.Kicks = append(run.Kicks, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, without their kicks. A
// non-positive limit defaults to 100.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, source, import_id, frame_count, kick_count, rejected_refinements,
			degenerate_frames, config_json, created_unix_nanos
		FROM analysis_runs
		ORDER BY created_unix_nanos DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run      Run
		importID sql.NullString
		nanos    int64
	)
	if err := row.Scan(&run.ID, &run.Source, &importID, &run.FrameCount, &run.KickCount,
		&run.RejectedRefinements, &run.DegenerateFrames, &run.ConfigJSON, &nanos); err != nil {
		return nil, err
	}
	run.ImportID = importID.String
	run.CreatedAt = time.Unix(0, nanos).UTC()
	return &run, nil
}
