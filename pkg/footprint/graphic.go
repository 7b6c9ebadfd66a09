package footprint

import (
	"fmt"
	"math"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// GraphicKind identifies the shape of a graphic item.
type GraphicKind int

const (
	GraphicLine GraphicKind = iota
	GraphicArc
	GraphicCircle
	GraphicRect
	GraphicPoly
)

var graphicNodeNames = map[string]GraphicKind{
	"fp_line":   GraphicLine,
	"fp_arc":    GraphicArc,
	"fp_circle": GraphicCircle,
	"fp_rect":   GraphicRect,
	"fp_poly":   GraphicPoly,
}

// Graphic is a drawing on a non-copper layer. Lines and rectangles use Start
// and End, arcs additionally Mid, Center and the signed sweep Angle in
// degrees, circles use Center with End on the circumference and polygons use
// Points.
type Graphic struct {
	Kind   GraphicKind
	Start  geometry.Point
	End    geometry.Point
	Mid    geometry.Point
	Center geometry.Point
	Angle  float64
	Points []geometry.Point
	Layer  string
	Width  float64

	legacyArc bool
	node      *sexpr.Node
}

// Segment is a straight piece of a graphic item.
type Segment struct {
	Start geometry.Point
	End   geometry.Point
}

// Line builds a line item.
func Line(start, end geometry.Point, layer string, width float64) *Graphic {
	return &Graphic{Kind: GraphicLine, Start: start, End: end, Layer: layer, Width: width}
}

// Circle builds a circle item.
func Circle(center, end geometry.Point, layer string, width float64) *Graphic {
	return &Graphic{Kind: GraphicCircle, Center: center, End: end, Layer: layer, Width: width}
}

// Arc builds an arc from its three defining points.
func Arc(start, mid, end geometry.Point, layer string, width float64) *Graphic {
	g := &Graphic{Kind: GraphicArc, Start: start, Mid: mid, End: end, Layer: layer, Width: width}
	g.updateArc()
	return g
}

// Radius is the circle or arc radius.
func (g *Graphic) Radius() float64 {
	switch g.Kind {
	case GraphicCircle:
		return g.Center.Distance(g.End)
	case GraphicArc:
		return g.Center.Distance(g.Start)
	}
	return 0
}

// Closed reports whether the item forms a loop on its own.
func (g *Graphic) Closed() bool {
	return g.Kind == GraphicCircle || g.Kind == GraphicRect || g.Kind == GraphicPoly
}

// Endpoints returns the two connection points of the item. Closed items
// return the same point twice.
func (g *Graphic) Endpoints() (geometry.Point, geometry.Point) {
	switch g.Kind {
	case GraphicCircle:
		return g.End, g.End
	case GraphicRect:
		return g.Start, g.Start
	case GraphicPoly:
		if len(g.Points) == 0 {
			return geometry.Point{}, geometry.Point{}
		}
		return g.Points[0], g.Points[0]
	}
	return g.Start, g.End
}

// Segments decomposes lines, rectangles and polygons into straight pieces.
func (g *Graphic) Segments() []Segment {
	switch g.Kind {
	case GraphicLine:
		return []Segment{{Start: g.Start, End: g.End}}
	case GraphicRect:
		a, c := g.Start, g.End
		b := geometry.Pt(c.X, a.Y)
		d := geometry.Pt(a.X, c.Y)
		return []Segment{{a, b}, {b, c}, {c, d}, {d, a}}
	case GraphicPoly:
		var out []Segment
		for i := range g.Points {
			out = append(out, Segment{Start: g.Points[i], End: g.Points[(i+1)%len(g.Points)]})
		}
		return out
	}
	return nil
}

// Length is the straight distance between start and end.
func (g *Graphic) Length() float64 {
	return g.Start.Distance(g.End)
}

// BoundingBox covers the item outline.
func (g *Graphic) BoundingBox() geometry.BoundingBox {
	switch g.Kind {
	case GraphicCircle:
		r := g.Radius()
		return geometry.NewBoundingBox(g.Center.Sub(geometry.Pt(r, r)), g.Center.Add(geometry.Pt(r, r)))
	case GraphicArc:
		return geometry.NewBoundingBox(g.Start, g.Mid, g.End)
	case GraphicPoly:
		return geometry.NewBoundingBox(g.Points...)
	}
	return geometry.NewBoundingBox(g.Start, g.End)
}

// Describe renders the item for report lines, optionally with its layer and
// width.
func (g *Graphic) Describe(layer, width bool) string {
	var s string
	switch g.Kind {
	case GraphicLine:
		s = fmt.Sprintf("Line %s -> %s", g.Start, g.End)
	case GraphicArc:
		s = fmt.Sprintf("Arc %s -> %s", g.Start, g.End)
	case GraphicCircle:
		s = fmt.Sprintf("Circle @ %s", g.Center)
	case GraphicRect:
		s = fmt.Sprintf("Rect %s -> %s", g.Start, g.End)
	default:
		s = "Graphical item"
	}
	if layer {
		s += fmt.Sprintf(" on layer '%s'", g.Layer)
	}
	if width {
		s += fmt.Sprintf(" has width '%s'", sexpr.FormatFloat(g.Width))
	}
	return s
}

func (g *Graphic) String() string {
	return g.Describe(false, false)
}

// Transform applies fn to every defining point.
func (g *Graphic) Transform(fn func(geometry.Point) geometry.Point) {
	g.Start = fn(g.Start)
	g.End = fn(g.End)
	g.Mid = fn(g.Mid)
	g.Center = fn(g.Center)
	for i := range g.Points {
		g.Points[i] = fn(g.Points[i])
	}
}

// updateArc derives center and sweep from start, mid and end.
func (g *Graphic) updateArc() {
	c, ok := geometry.ArcCenter(g.Start, g.Mid, g.End)
	if !ok {
		g.Center = g.Mid
		g.Angle = 0
		return
	}
	g.Center = c
	a0 := g.Start.Sub(c).Phase()
	mid := normDeg((g.Mid.Sub(c).Phase() - a0) * 180 / math.Pi)
	end := normDeg((g.End.Sub(c).Phase() - a0) * 180 / math.Pi)
	if mid <= end {
		g.Angle = end
	} else {
		g.Angle = end - 360
	}
}

// normDeg maps deg into [0, 360).
func normDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
