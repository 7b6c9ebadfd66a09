package footprint

import (
	"math"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
)

// SetAnchor moves every item so that p becomes the footprint origin.
func (f *Footprint) SetAnchor(p geometry.Point) {
	f.transform(func(q geometry.Point) geometry.Point { return q.Sub(p) }, 0)
}

// Rotate turns the whole footprint clockwise (as seen on screen) by deg
// degrees about the origin.
func (f *Footprint) Rotate(deg float64) {
	f.transform(func(q geometry.Point) geometry.Point { return q.RotateDeg(deg) }, deg)
}

func (f *Footprint) transform(fn func(geometry.Point) geometry.Point, deg float64) {
	for _, t := range f.texts() {
		t.Pos = fn(t.Pos)
		if deg != 0 {
			t.Rotation = normalizeRotation(t.Rotation - deg)
		}
	}
	for _, p := range f.Pads {
		p.Pos = fn(p.Pos)
		if deg != 0 {
			p.Rotation = normalizeRotation(p.Rotation - deg)
		}
	}
	for _, g := range f.Graphics {
		g.Transform(fn)
	}
}

// normalizeRotation maps deg into [0, 360) and rounds away float noise.
func normalizeRotation(deg float64) float64 {
	deg = math.Mod(geometry.Round(deg, 6), 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// InsertGraphic adds g right after the item at, or at the end when at is not
// part of the footprint.
func (f *Footprint) InsertGraphic(g, at *Graphic) {
	for i, existing := range f.Graphics {
		if existing == at {
			f.Graphics = append(f.Graphics[:i+1], append([]*Graphic{g}, f.Graphics[i+1:]...)...)
			return
		}
	}
	f.Graphics = append(f.Graphics, g)
}

// RemoveGraphic drops g. It reports whether g was present.
func (f *Footprint) RemoveGraphic(g *Graphic) bool {
	for i, existing := range f.Graphics {
		if existing == g {
			f.Graphics = append(f.Graphics[:i], f.Graphics[i+1:]...)
			return true
		}
	}
	return false
}

// HasGraphic reports whether g is still part of the footprint.
func (f *Footprint) HasGraphic(g *Graphic) bool {
	for _, existing := range f.Graphics {
		if existing == g {
			return true
		}
	}
	return false
}

// AddRectangle draws an axis aligned rectangle from four lines.
func (f *Footprint) AddRectangle(a, b geometry.Point, layer string, width float64) {
	corners := []geometry.Point{a, geometry.Pt(b.X, a.Y), b, geometry.Pt(a.X, b.Y)}
	for i := range corners {
		f.Graphics = append(f.Graphics, Line(corners[i], corners[(i+1)%4], layer, width))
	}
}

// Clone copies a graphic item. The copy gets its own document node without
// the identifiers of the original.
func (g *Graphic) Clone() *Graphic {
	c := *g
	c.Points = append([]geometry.Point(nil), g.Points...)
	if g.node != nil {
		c.node = g.node.Clone()
		c.node.Remove("uuid")
		c.node.Remove("tstamp")
	}
	return &c
}

// SetLayers replaces the pad layer list.
func (p *Pad) SetLayers(layers ...string) {
	p.Layers = append([]string(nil), layers...)
}
