package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/kick.report/internal/geometry"
	"github.com/banshee-data/kick.report/internal/landmarks"
)

// Import is one stored snapshot of a landmark table. A source may have
// several imports; the newest is the source's current table and older ones
// are kept while an analysis run still refers to them.
type Import struct {
	ID        string    `json:"import_id"`
	Source    string    `json:"source"`
	Points    int       `json:"points"`
	Frames    int       `json:"frames"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceSummary describes the current table of one source.
type SourceSummary struct {
	Source     string `json:"source"`
	ImportID   string `json:"import_id"`
	Frames     int    `json:"frames"`
	FirstFrame int    `json:"first_frame"`
	LastFrame  int    `json:"last_frame"`
}

// ImportTable stores t as the newest import of source. Joints with a NaN
// coordinate are not stored; they load back as missing. Earlier imports of
// source that no run refers to are removed.
func (db *DB) ImportTable(ctx context.Context, source string, t *landmarks.Table) (*Import, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	imp, err := db.insertImport(ctx, tx, source, t)
	if err != nil {
		return nil, err
	}
	if err := pruneImports(ctx, tx, imp); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return imp, nil
}

// RecordAnalysis imports t as the newest table of run.Source and records
// run against that import in one transaction, so the run's charts can be
// rebuilt from the exact landmarks it was computed from.
func (db *DB) RecordAnalysis(ctx context.Context, run *Run, t *landmarks.Table) (*Import, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin analysis insert: %w", err)
	}
	defer tx.Rollback()

	imp, err := db.insertImport(ctx, tx, run.Source, t)
	if err != nil {
		return nil, err
	}
	run.ImportID = imp.ID
	if err := db.insertRun(ctx, tx, run); err != nil {
		return nil, err
	}
	if err := pruneImports(ctx, tx, imp); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit analysis: %w", err)
	}
	return imp, nil
}

func (db *DB) insertImport(ctx context.Context, tx *sql.Tx, source string, t *landmarks.Table) (*Import, error) {
	imp := &Import{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: db.clock.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO landmark_imports (import_id, source, created_unix_nanos) VALUES (?, ?, ?)`,
		imp.ID, imp.Source, imp.CreatedAt.UnixNano()); err != nil {
		return nil, fmt.Errorf("failed to create import for %q: %w", source, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO landmarks (import_id, frame, joint, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, s := range t.Samples {
		stored := false
		for id, p := range s.Points {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) {
				continue
			}
			if _, err := stmt.ExecContext(ctx, imp.ID, s.Frame, id, p.X, p.Y); err != nil {
				return nil, fmt.Errorf("failed to insert frame %d joint %d: %w", s.Frame, id, err)
			}
			imp.Points++
			stored = true
		}
		if stored {
			imp.Frames++
		}
	}
	return imp, nil
}

// pruneImports removes the imports of imp's source, other than imp, that no
// analysis run refers to.
func pruneImports(ctx context.Context, tx *sql.Tx, imp *Import) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM landmark_imports
		WHERE source = ? AND import_id <> ?
			AND import_id NOT IN (SELECT import_id FROM analysis_runs WHERE import_id IS NOT NULL)`,
		imp.Source, imp.ID)
	if err != nil {
		return fmt.Errorf("failed to prune imports of %q: %w", imp.Source, err)
	}
	return nil
}

// LoadTable reads the newest import stored under source.
func (db *DB) LoadTable(ctx context.Context, source string) (*landmarks.Table, error) {
	var id string
	err := db.QueryRowContext(ctx, `
		SELECT import_id FROM landmark_imports
		WHERE source = ?
		ORDER BY created_unix_nanos DESC, rowid DESC
		LIMIT 1`, source).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if err != nil {
		return nil, err
	}
	return db.LoadImport(ctx, id)
}

// LoadImport reads the landmark table stored by one import.
func (db *DB) LoadImport(ctx context.Context, importID string) (*landmarks.Table, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM landmark_imports WHERE import_id = ?`, importID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: import %s", ErrSourceNotFound, importID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT frame, joint, x, y FROM landmarks WHERE import_id = ? ORDER BY frame, joint`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &landmarks.Table{}
	var cur *landmarks.Sample
	for rows.Next() {
		var (
			frame, joint int
			x, y         float64
		)
		if err := rows.Scan(&frame, &joint, &x, &y); err != nil {
			return nil, err
		}
		if cur == nil || cur.Frame != frame {
			if cur != nil {
				if err := t.Append(*cur); err != nil {
					return nil, err
				}
			}
			cur = &landmarks.Sample{Frame: frame, Points: make(map[int]geometry.Point)}
		}
		cur.Points[joint] = geometry.Point{X: x, Y: y}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cur != nil {
		if err := t.Append(*cur); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ListSources summarises the current table of every source, by name.
func (db *DB) ListSources(ctx context.Context) ([]SourceSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT i.source, i.import_id,
			COUNT(DISTINCT l.frame), COALESCE(MIN(l.frame), 0), COALESCE(MAX(l.frame), 0)
		FROM landmark_imports i
		LEFT JOIN landmarks l ON l.import_id = i.import_id
		WHERE i.import_id = (
			SELECT latest.import_id FROM landmark_imports latest
			WHERE latest.source = i.source
			ORDER BY latest.created_unix_nanos DESC, latest.rowid DESC
			LIMIT 1
		)
		GROUP BY i.import_id
		ORDER BY i.source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SourceSummary
	for rows.Next() {
		var s SourceSummary
		if err := rows.Scan(&s.Source, &s.ImportID, &s.Frames, &s.FirstFrame, &s.LastFrame); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
