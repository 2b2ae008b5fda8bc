// Package landmarks holds the frame-indexed pose landmark table consumed by
// the kick analysis and the readers that build it.
package landmarks

import (
	"fmt"
	"math"
	"sort"

	"github.com/banshee-data/kick.report/internal/geometry"
)

// Joint identifiers in the MediaPipe Pose numbering used by the default
// configuration.
const (
	LeftHip    = 23
	RightHip   = 24
	LeftKnee   = 25
	RightKnee  = 26
	LeftAnkle  = 27
	RightAnkle = 28
)

// JointMap names the landmark ids the analysis reads. The ids are assigned
// by the upstream pose detector and are configuration, not semantics.
type JointMap struct {
	Ankle     int `json:"ankle"`
	Hip       int `json:"hip"`
	RightKnee int `json:"right_knee"`
	LeftKnee  int `json:"left_knee"`
}

// DefaultJointMap tracks the right leg with the MediaPipe ids.
func DefaultJointMap() JointMap {
	return JointMap{
		Ankle:     RightAnkle,
		Hip:       RightHip,
		RightKnee: RightKnee,
		LeftKnee:  LeftKnee,
	}
}

// IDs returns the joint ids in a stable order: ankle, hip, right knee, left knee.
func (j JointMap) IDs() []int {
	return []int{j.Ankle, j.Hip, j.RightKnee, j.LeftKnee}
}

// Validate rejects negative or repeated ids.
func (j JointMap) Validate() error {
	seen := make(map[int]bool, 4)
	for _, id := range j.IDs() {
		if id < 0 {
			return fmt.Errorf("joint id must be non-negative, got %d", id)
		}
		if seen[id] {
			return fmt.Errorf("joint id %d is assigned to more than one joint", id)
		}
		seen[id] = true
	}
	return nil
}

// Sample is one frame of detected landmarks.
type Sample struct {
	Frame  int
	Points map[int]geometry.Point
}

// Point returns the landmark for joint id. ok is false when the joint is
// absent or carries a NaN coordinate.
func (s Sample) Point(id int) (p geometry.Point, ok bool) {
	p, ok = s.Points[id]
	if !ok || math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return geometry.Point{}, false
	}
	return p, true
}

// Table is an ordered set of samples with strictly increasing frame indices.
// Frames with no detected pose are simply absent.
type Table struct {
	Samples []Sample
}

// Len returns the number of samples.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Samples)
}

// LastFrame returns the frame index of the final sample, or -1 for an
// empty table.
func (t *Table) LastFrame() int {
	if t.Len() == 0 {
		return -1
	}
	return t.Samples[len(t.Samples)-1].Frame
}

// Append adds a sample. Frames must be appended in increasing order.
func (t *Table) Append(s Sample) error {
	if n := len(t.Samples); n > 0 && s.Frame <= t.Samples[n-1].Frame {
		return fmt.Errorf("frame %d is not after frame %d", s.Frame, t.Samples[n-1].Frame)
	}
	t.Samples = append(t.Samples, s)
	return nil
}

// JointIDs returns every joint id present in at least one sample, sorted.
func (t *Table) JointIDs() []int {
	seen := make(map[int]bool)
	for _, s := range t.Samples {
		for id := range s.Points {
			seen[id] = true
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
