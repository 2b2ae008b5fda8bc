// Package geometry provides planar joint-angle computations on 2D pose
// landmarks.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2D landmark position. Units are whatever the pose producer
// emits (normalised image coordinates or pixels); only ratios matter here.
type Point = r2.Vec

// DegenerateAngle is returned by AngleAtVertex when the angle is undefined.
// It matches the hip angle the live counter reports before any pose has
// been measured.
const DegenerateAngle = 180.0

// IsDegenerate reports whether the angle at vertex b cannot be measured:
// an input is NaN, an arm has zero length, or the two outer points
// coincide (the detector has collapsed both joints onto one position).
func IsDegenerate(a, b, c Point) bool {
	if hasNaN(a) || hasNaN(b) || hasNaN(c) {
		return true
	}
	if a == c {
		return true
	}
	return r2.Norm(r2.Sub(a, b)) == 0 || r2.Norm(r2.Sub(c, b)) == 0
}

// AngleAtVertex returns the angle in degrees, in [0, 180], between the rays
// b->a and b->c. Swapping a and c yields the same value. Degenerate inputs
// return DegenerateAngle.
func AngleAtVertex(a, b, c Point) float64 {
	if IsDegenerate(a, b, c) {
		return DegenerateAngle
	}
	ba := r2.Sub(a, b)
	bc := r2.Sub(c, b)

	cosine := r2.Dot(ba, bc) / (r2.Norm(ba) * r2.Norm(bc))
	// Rounding can push |cosine| just past 1 for collinear points.
	cosine = math.Max(-1, math.Min(1, cosine))
	return math.Acos(cosine) * 180 / math.Pi
}

func hasNaN(p Point) bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}
