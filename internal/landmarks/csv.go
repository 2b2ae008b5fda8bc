package landmarks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/kick.report/internal/geometry"
)

var (
	// ErrNoFrameColumn is returned when the header lacks the frame index column.
	ErrNoFrameColumn = errors.New("frame column not found")
	// ErrMissingColumn is returned when a coordinate column for a required
	// joint is absent from the header.
	ErrMissingColumn = errors.New("required column not found")
)

// Columns describes how a flat landmark table names its columns: a frame
// index column plus one x and one y column per joint, e.g. "x_28", "y_28".
type Columns struct {
	Frame   string
	XPrefix string
	YPrefix string
}

// DefaultColumns matches the layout written by the landmark extractor.
func DefaultColumns() Columns {
	return Columns{Frame: "frame", XPrefix: "x_", YPrefix: "y_"}
}

// X returns the x column name for joint id.
func (c Columns) X(id int) string { return c.XPrefix + strconv.Itoa(id) }

// Y returns the y column name for joint id.
func (c Columns) Y(id int) string { return c.YPrefix + strconv.Itoa(id) }

// ReadCSV parses a landmark table. The header must contain the frame column
// and the x/y columns of every joint in required; a missing column is a
// configuration error reported before any row is read. Every other x/y
// column pair found in the header is loaded as well. Empty cells are read
// as NaN, i.e. the joint was not detected on that frame.
func ReadCSV(r io.Reader, cols Columns, required JointMap) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty landmark table: %w", ErrNoFrameColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	frameCol, ok := index[cols.Frame]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoFrameColumn, cols.Frame)
	}
	for _, id := range required.IDs() {
		for _, name := range []string{cols.X(id), cols.Y(id)} {
			if _, ok := index[name]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
			}
		}
	}

	type pair struct{ id, x, y int }
	var pairs []pair
	for name, xi := range index {
		if !strings.HasPrefix(name, cols.XPrefix) {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(name, cols.XPrefix))
		if err != nil {
			continue
		}
		yi, ok := index[cols.Y(id)]
		if !ok {
			continue
		}
		pairs = append(pairs, pair{id: id, x: xi, y: yi})
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].id < pairs[b].id })

	var samples []Sample
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		frame, err := parseFrame(rec[frameCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid frame %q: %w", line, rec[frameCol], err)
		}

		s := Sample{Frame: frame, Points: make(map[int]geometry.Point, len(pairs))}
		for _, p := range pairs {
			x, err := parseCoord(rec[p.x])
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line, cols.X(p.id), err)
			}
			y, err := parseCoord(rec[p.y])
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line, cols.Y(p.id), err)
			}
			s.Points[p.id] = geometry.Point{X: x, Y: y}
		}
		samples = append(samples, s)
	}

	sort.SliceStable(samples, func(a, b int) bool { return samples[a].Frame < samples[b].Frame })
	t := &Table{Samples: make([]Sample, 0, len(samples))}
	for _, s := range samples {
		if err := t.Append(s); err != nil {
			return nil, fmt.Errorf("duplicate frame: %w", err)
		}
	}
	return t, nil
}

// WriteCSV writes t in the layout ReadCSV accepts. Joints missing on a
// frame are written as empty cells.
func WriteCSV(w io.Writer, t *Table, cols Columns) error {
	ids := t.JointIDs()
	cw := csv.NewWriter(w)

	header := make([]string, 0, 1+2*len(ids))
	header = append(header, cols.Frame)
	for _, id := range ids {
		header = append(header, cols.X(id), cols.Y(id))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, s := range t.Samples {
		row[0] = strconv.Itoa(s.Frame)
		for i, id := range ids {
			p, ok := s.Point(id)
			if !ok {
				row[1+2*i], row[2+2*i] = "", ""
				continue
			}
			row[1+2*i] = strconv.FormatFloat(p.X, 'g', -1, 64)
			row[2+2*i] = strconv.FormatFloat(p.Y, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseFrame(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative frame index")
		}
		return n, nil
	}
	// Some exporters write integral floats ("12.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 {
		return 0, fmt.Errorf("not a non-negative integer")
	}
	return int(f), nil
}

func parseCoord(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
