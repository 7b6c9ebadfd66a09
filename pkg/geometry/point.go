// Package geometry holds the small set of 2-D primitives used by the
// footprint and symbol checks.
package geometry

import (
	"fmt"
	"math"

	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Point is a position in millimetres.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Abs is the distance from the origin.
func (p Point) Abs() float64 {
	return math.Hypot(p.X, p.Y)
}

// Phase is the angle of p in radians.
func (p Point) Phase() float64 {
	return math.Atan2(p.Y, p.X)
}

// Rotate turns p about the origin by rad radians.
func (p Point) Rotate(rad float64) Point {
	s, c := math.Sincos(rad)
	return Point{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// RotateDeg turns p about the origin by deg degrees.
func (p Point) RotateDeg(deg float64) Point {
	return p.Rotate(deg * math.Pi / 180)
}

// RotateAround turns p about center by deg degrees.
func (p Point) RotateAround(center Point, deg float64) Point {
	return p.Sub(center).RotateDeg(deg).Add(center)
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Equal compares both coordinates within tol.
func (p Point) Equal(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

func (p Point) String() string {
	return fmt.Sprintf("(%s,%s)", sexpr.FormatFloat(p.X), sexpr.FormatFloat(p.Y))
}

// IsBetween reports whether c lies on the segment a-b, excluding the
// endpoints themselves.
func IsBetween(a, b, c Point) bool {
	if c.Equal(a, 1e-9) || c.Equal(b, 1e-9) {
		return false
	}
	return math.Abs(a.Distance(c)+c.Distance(b)-a.Distance(b)) < 1e-4
}

// Direction buckets a segment by orientation: "v", "h" or its slope rounded to
// three decimals.
func Direction(a, b Point) string {
	dx := b.X - a.X
	dy := b.Y - a.Y
	switch {
	case dx == 0:
		return "v"
	case dy == 0:
		return "h"
	default:
		return fmt.Sprintf("%.3f", dy/dx)
	}
}

// ArcCenter finds the center of the circle through three points. ok is false
// when the points are colinear.
func ArcCenter(start, mid, end Point) (Point, bool) {
	ax, ay := start.X, start.Y
	bx, by := mid.X, mid.Y
	cx, cy := end.X, end.Y
	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-12 {
		return Point{}, false
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	return Point{
		X: (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d,
		Y: (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d,
	}, true
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	f := math.Pow(10, float64(decimals))
	return math.Round(v*f) / f
}
