// Package geom holds the integer geometry used for board editing.
//
// KiCad stores coordinates in millimetres in its files but works in
// nanometres internally; editing happens in nanometres so that repeated
// transforms never accumulate floating point drift.
package geom

import (
	"math"
	"strconv"
)

// Coordinate conversion constants
const (
	NanometersToMM = 1e-6 // Convert nm to mm (multiply by this)
	MMToNanometers = 1e6  // Convert mm to nm (multiply by this)
)

// Point is a board coordinate in nanometres. Y grows downwards.
type Point struct {
	X int64
	Y int64
}

// Add returns p + q
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Neg returns -p
func (p Point) Neg() Point { return Point{X: -p.X, Y: -p.Y} }

// FromMM converts a millimetre value to nanometres, rounding to the nearest nm.
func FromMM(mm float64) int64 {
	return int64(math.Round(mm * MMToNanometers))
}

// ToMM converts nanometres to millimetres.
func ToMM(nm int64) float64 {
	return float64(nm) * NanometersToMM
}

// PointMM builds a point from millimetre coordinates.
func PointMM(x, y float64) Point {
	return Point{X: FromMM(x), Y: FromMM(y)}
}

// FormatMM renders a nanometre value the way KiCad writes millimetres:
// no exponent, no trailing zeros.
func FormatMM(nm int64) string {
	return strconv.FormatFloat(ToMM(nm), 'f', -1, 64)
}

// Angle is an orientation in degrees. Positive angles turn counter-clockwise
// on screen (KiCad convention with Y pointing down).
type Angle float64

// Normalize wraps the angle into [0, 360).
func (a Angle) Normalize() Angle {
	v := math.Mod(float64(a), 360)
	if v < 0 {
		v += 360
	}
	// Snap values that only differ from a whole number by float noise.
	if r := math.Round(v); math.Abs(v-r) < 1e-9 {
		v = r
	}
	if v >= 360 {
		v -= 360
	}
	return Angle(v)
}

// IsZero reports whether the angle is a whole number of turns.
func (a Angle) IsZero() bool {
	return a.Normalize() == 0
}

// Format renders the angle for file output.
func (a Angle) Format() string {
	v := math.Round(float64(a)*1e6) / 1e6
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// sinCos returns exact values for quarter turns so that right-angle
// rotations stay on the integer grid.
func sinCos(a Angle) (float64, float64) {
	switch a.Normalize() {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	rad := float64(a) * math.Pi / 180.0
	return math.Sin(rad), math.Cos(rad)
}

// Rotate turns p about the origin by angle a. With Y pointing down, a
// positive angle turns counter-clockwise on screen: rotating (10, 0) by 90
// gives (0, -10).
func Rotate(p Point, a Angle) Point {
	sin, cos := sinCos(a)
	x := float64(p.X)
	y := float64(p.Y)
	return Point{
		X: int64(math.Round(x*cos + y*sin)),
		Y: int64(math.Round(y*cos - x*sin)),
	}
}

// RotateAbout turns p about center by angle a.
func RotateAbout(p, center Point, a Angle) Point {
	return Rotate(p.Sub(center), a).Add(center)
}

// BoundingBox is an axis aligned rectangle in nanometres.
type BoundingBox struct {
	Min   Point
	Max   Point
	valid bool
}

// Expand grows the box to include p.
func (bb *BoundingBox) Expand(p Point) {
	if !bb.valid {
		bb.Min, bb.Max, bb.valid = p, p, true
		return
	}
	bb.Min.X = min(bb.Min.X, p.X)
	bb.Min.Y = min(bb.Min.Y, p.Y)
	bb.Max.X = max(bb.Max.X, p.X)
	bb.Max.Y = max(bb.Max.Y, p.Y)
}

// IsEmpty reports whether nothing was added to the box.
func (bb BoundingBox) IsEmpty() bool { return !bb.valid }

// Width returns the box width in nanometres.
func (bb BoundingBox) Width() int64 { return bb.Max.X - bb.Min.X }

// Height returns the box height in nanometres.
func (bb BoundingBox) Height() int64 { return bb.Max.Y - bb.Min.Y }

// Area returns width * height in square nanometres.
func (bb BoundingBox) Area() int64 {
	if !bb.valid {
		return 0
	}
	return bb.Width() * bb.Height()
}
