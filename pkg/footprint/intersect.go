package footprint

import (
	"math"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
)

const (
	// silkClearance is how close a silkscreen stroke may come to a pad edge.
	silkClearance = 0.075
	// trimClearance is the gap left between pad and silkscreen when lines are
	// trimmed.
	trimClearance = 0.226
	interceptTol  = 1e-9
)

// padExempt reports pads that never collide with silkscreen.
func padExempt(p *Pad) bool {
	return p.Type == PadNPThroughHole || p.Type == PadConnect || p.IsStencil()
}

// PadIntersectsLine reports whether the silkscreen segment start-end crosses
// the pad or runs within the silkscreen clearance of its edge.
//
// The pad is moved into a frame where the segment starts at the origin and
// runs along the positive x axis. There the pad covers an x interval (from its
// circle profile or the y=0 intercepts of its rectangle edges) which must
// overlap [0, length], and its y extent must straddle the axis or come within
// the clearance.
func PadIntersectsLine(p *Pad, start, end geometry.Point) bool {
	if padExempt(p) {
		return false
	}

	origin, vec := end, start.Sub(end)
	if end.Y > start.Y {
		origin, vec = start, end.Sub(start)
	}
	length := vec.Abs()
	rot := -vec.Phase()

	center := p.Pos.Sub(origin).Rotate(rot)
	corners := p.Corners()
	for i := range corners {
		corners[i] = corners[i].Sub(origin).Rotate(rot)
	}

	var minX, maxX, minY, maxY float64
	if p.IsCircle() {
		r := p.Size.X / 2
		d := math.Sqrt(math.Max(0, r*r-center.Y*center.Y))
		minX, maxX = center.X-d, center.X+d
		minY, maxY = center.Y-r, center.Y+r
	} else {
		var ok bool
		minX, maxX, ok = rectIntercepts(corners)
		if !ok {
			return false
		}
		minY, maxY = corners[0].Y, corners[0].Y
		for _, c := range corners[1:] {
			minY = math.Min(minY, c.Y)
			maxY = math.Max(maxY, c.Y)
		}
	}

	overlaps := (minX > 0 && minX < length) ||
		(maxX > 0 && maxX < length) ||
		(maxX > length && minX < 0)
	if !overlaps {
		return false
	}
	return minY*maxY < 0 || math.Abs(minY) < silkClearance || math.Abs(maxY) < silkClearance
}

// rectIntercepts returns the x range where the rectangle outline crosses y=0.
func rectIntercepts(c [4]geometry.Point) (float64, float64, bool) {
	edges := [4][2]int{{0, 3}, {0, 2}, {2, 1}, {1, 3}}
	found := false
	var lo, hi float64
	for _, e := range edges {
		a, b := c[e[0]], c[e[1]]
		if math.Abs(b.Y-a.Y) < interceptTol {
			continue
		}
		if 0 < math.Min(a.Y, b.Y)-interceptTol || 0 > math.Max(a.Y, b.Y)+interceptTol {
			continue
		}
		x := -a.Y/(b.Y-a.Y)*(b.X-a.X) + a.X
		if !found {
			lo, hi, found = x, x, true
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, found
}

// PadIntersectsCircle reports whether a silkscreen circle crosses the pad.
func PadIntersectsCircle(p *Pad, center, onCircle geometry.Point) bool {
	if padExempt(p) {
		return false
	}
	radius := center.Distance(onCircle)
	if p.IsCircle() {
		dist := center.Distance(p.Pos)
		half := p.Size.X / 2
		return dist < radius+half+silkClearance && dist > math.Abs(-radius+half+silkClearance)
	}
	inside, outside := 0, 0
	for _, c := range p.Corners() {
		if center.Distance(c) < radius {
			inside++
		} else {
			outside++
		}
	}
	return inside > 0 && outside > 0
}

// PadIntersects dispatches on the graphic kind. Arcs, rectangles and
// polygons are not tested.
func PadIntersects(p *Pad, g *Graphic) bool {
	switch g.Kind {
	case GraphicLine:
		return PadIntersectsLine(p, g.Start, g.End)
	case GraphicCircle:
		return PadIntersectsCircle(p, g.Center, g.End)
	}
	return false
}

// TrimLineAroundPad shortens, splits or removes line g so that it clears pad
// p. It reports whether the footprint changed.
func (f *Footprint) TrimLineAroundPad(g *Graphic, p *Pad) bool {
	if g.Kind != GraphicLine || !f.HasGraphic(g) {
		return false
	}
	if g.End.Y < g.Start.Y {
		g.Start, g.End = g.End, g.Start
	}
	start := g.Start
	vec := g.End.Sub(start)
	length := vec.Abs()
	phase := vec.Phase()
	center := p.Pos.Sub(start).Rotate(-phase)

	r := p.Size.X/2 + trimClearance
	if !p.IsCircle() {
		r = math.Max(p.Size.X, p.Size.Y)/2 + trimClearance
	}
	if r*r <= center.Y*center.Y {
		return false
	}
	d := math.Sqrt(r*r - center.Y*center.Y)
	lo, hi := center.X-d, center.X+d

	at := func(x float64) geometry.Point {
		q := geometry.Pt(x, 0).Rotate(phase).Add(start)
		return geometry.Pt(geometry.Round(q.X, 3), geometry.Round(q.Y, 3))
	}

	switch {
	case lo > 0 && lo < length && hi > length:
		g.End = at(lo)
	case lo > 0 && lo < length:
		tail := g.Clone()
		g.End = at(lo)
		tail.Start = at(hi)
		f.InsertGraphic(tail, g)
	case lo < 0 && hi > 0 && hi < length:
		g.Start = at(hi)
	case lo <= 0 && hi >= length:
		f.RemoveGraphic(g)
	default:
		return false
	}
	return true
}
