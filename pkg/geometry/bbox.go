package geometry

import "math"

// BoundingBox is an axis aligned box. It stays invalid until the first point
// is merged in.
type BoundingBox struct {
	XMin  float64
	YMin  float64
	XMax  float64
	YMax  float64
	Valid bool
}

// NewBoundingBox returns a box covering the given points.
func NewBoundingBox(points ...Point) BoundingBox {
	var b BoundingBox
	for _, p := range points {
		b.AddPoint(p)
	}
	return b
}

func (b *BoundingBox) AddPoint(p Point) {
	if !b.Valid {
		*b = BoundingBox{XMin: p.X, YMin: p.Y, XMax: p.X, YMax: p.Y, Valid: true}
		return
	}
	b.XMin = math.Min(b.XMin, p.X)
	b.YMin = math.Min(b.YMin, p.Y)
	b.XMax = math.Max(b.XMax, p.X)
	b.YMax = math.Max(b.YMax, p.Y)
}

// AddBox merges other into b. Invalid boxes contribute nothing.
func (b *BoundingBox) AddBox(other BoundingBox) {
	if !other.Valid {
		return
	}
	b.AddPoint(Point{X: other.XMin, Y: other.YMin})
	b.AddPoint(Point{X: other.XMax, Y: other.YMax})
}

func (b BoundingBox) Width() float64 {
	return b.XMax - b.XMin
}

func (b BoundingBox) Height() float64 {
	return b.YMax - b.YMin
}

func (b BoundingBox) Center() Point {
	return Point{X: (b.XMin + b.XMax) / 2, Y: (b.YMin + b.YMax) / 2}
}

// Contains reports whether p lies inside b, edges included.
func (b BoundingBox) Contains(p Point) bool {
	return b.Valid && p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Intersects reports whether the two boxes share any area or edge.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	if !b.Valid || !o.Valid {
		return false
	}
	return b.XMin <= o.XMax && o.XMin <= b.XMax && b.YMin <= o.YMax && o.YMin <= b.YMax
}

// Expand grows the box by offset on every side.
func (b BoundingBox) Expand(offset float64) BoundingBox {
	if !b.Valid {
		return b
	}
	return BoundingBox{
		XMin:  b.XMin - offset,
		YMin:  b.YMin - offset,
		XMax:  b.XMax + offset,
		YMax:  b.YMax + offset,
		Valid: true,
	}
}

// SnapOutward moves every edge away from the center onto grid.
func (b BoundingBox) SnapOutward(grid float64) BoundingBox {
	if !b.Valid {
		return b
	}
	return BoundingBox{
		XMin:  Round(math.Floor(b.XMin/grid+1e-9)*grid, 6),
		YMin:  Round(math.Floor(b.YMin/grid+1e-9)*grid, 6),
		XMax:  Round(math.Ceil(b.XMax/grid-1e-9)*grid, 6),
		YMax:  Round(math.Ceil(b.YMax/grid-1e-9)*grid, 6),
		Valid: true,
	}
}
