package footprint

import (
	"log/slog"
	"regexp"

	"github.com/nsxbet/klc-reviewer/pkg/advisor"
	"github.com/nsxbet/klc-reviewer/pkg/footprint"
	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/types"
)

func init() {
	advisor.Register(types.KindFootprint, "F5.3", "Courtyard layer requirements", func(ctx *advisor.Context) advisor.Rule {
		return &CourtyardRule{fp: ctx.Footprint}
	})
}

var (
	bgaName       = regexp.MustCompile(`^BGA-`)
	bgaLibrary    = regexp.MustCompile(`Housing.*BGA`)
	connectorLike = regexp.MustCompile(`Connector|Socket|Button|Switch`)
)

// CourtyardRule checks that a courtyard exists, is drawn with the right width
// on the courtyard grid and forms closed outlines.
type CourtyardRule struct {
	advisor.Base
	fp *footprint.Footprint

	front, back []*footprint.Graphic
	badGrid     []*footprint.Graphic
	badWidth    []*footprint.Graphic
	unconnected []*footprint.Graphic
}

// gridPoints are the coordinates of g that must sit on the courtyard grid.
func gridPoints(g *footprint.Graphic) []geometry.Point {
	switch g.Kind {
	case footprint.GraphicCircle:
		return []geometry.Point{g.Center, g.End}
	case footprint.GraphicPoly:
		return g.Points
	}
	return []geometry.Point{g.Start, g.End}
}

func onCourtyardGrid(g *footprint.Graphic) bool {
	for _, p := range gridPoints(g) {
		if !geometry.OnGrid(p.X, CourtyardGrid) || !geometry.OnGrid(p.Y, CourtyardGrid) {
			return false
		}
	}
	return true
}

// Check implements advisor.Rule.
func (r *CourtyardRule) Check() bool {
	r.Begin()
	r.badGrid = nil
	r.badWidth = nil
	r.unconnected = nil
	r.SetNeedsFixMore(false)

	r.front = r.fp.GraphicsOnLayer("F.CrtYd")
	r.back = r.fp.GraphicsOnLayer("B.CrtYd")

	if len(r.front) == 0 && len(r.back) == 0 {
		r.Error("No courtyard found!")
		r.ErrorExtra("Add courtyard around footprint")
		r.SetNeedsFixMore(true)
		return true
	}

	r.unconnected = append(r.unconnected, footprint.UnconnectedItems(r.front)...)
	r.unconnected = append(r.unconnected, footprint.UnconnectedItems(r.back)...)

	for _, g := range append(append([]*footprint.Graphic(nil), r.front...), r.back...) {
		if !sameValue(g.Width, CourtyardWidth) {
			r.badWidth = append(r.badWidth, g)
		}
		if !onCourtyardGrid(g) {
			r.badGrid = append(r.badGrid, g)
		}
	}

	if len(r.badWidth) > 0 {
		r.Errorf("Courtyard width error (expected width = %smm)", num(CourtyardWidth))
		for _, g := range r.badWidth {
			r.ErrorExtra(describe(g, true))
		}
	}

	if len(r.badGrid) > 0 {
		r.Errorf("Courtyard lines are not on %smm grid", num(CourtyardGrid))
		for _, g := range r.badGrid {
			r.ErrorExtra(describe(g, false))
		}
	}

	if len(r.unconnected) > 0 {
		r.Error("Courtyard must be closed.")
		r.ErrorExtra("The following lines have unconnected endpoints")
		for _, g := range r.unconnected {
			r.ErrorExtra(describe(g, false))
		}
	}

	return r.HasErrors()
}

// Fix corrects stroke width and snaps courtyard items to the grid.
func (r *CourtyardRule) Fix() {
	if len(r.badWidth) > 0 {
		r.Info("Fixing line width of courtyard items")
	}
	for _, g := range r.badWidth {
		g.Width = CourtyardWidth
	}

	if len(r.badGrid) > 0 {
		r.Info("Fixing grid alignment of courtyard items")
	}
	for _, g := range r.badGrid {
		g.Transform(func(p geometry.Point) geometry.Point {
			return geometry.Pt(geometry.MapToGrid(p.X, CourtyardGrid), geometry.MapToGrid(p.Y, CourtyardGrid))
		})
	}
}

// FixMore draws a default rectangular courtyard when there is none.
func (r *CourtyardRule) FixMore() {
	if !r.NeedsFixMore() {
		return
	}
	r.Info("No courtyard detected - adding default courtyard")
	bb, ok := r.defaultCourtyard()
	if !ok {
		r.Info("Could not add courtyard - no footprint items found")
		return
	}
	r.fp.AddRectangle(
		geometry.Pt(bb.XMin, bb.YMin),
		geometry.Pt(bb.XMax, bb.YMax),
		"F.CrtYd", CourtyardWidth)
}

// footprintBounds merges the pads with the first drawing layer that has
// anything on it.
func (r *CourtyardRule) footprintBounds() geometry.BoundingBox {
	bounds := r.fp.PadsBoundingBox()
	for _, layer := range []string{"F.Fab", "B.Fab", "F.SilkS", "B.SilkS"} {
		geo := r.fp.GraphicsBoundingBox(layer)
		if geo.Valid {
			slog.Debug("courtyard bounds from drawing", "footprint", r.fp.Name, "layer", layer)
			bounds.AddBox(geo)
			break
		}
	}
	return bounds
}

// defaultOffset is the clearance between the part and its courtyard.
func (r *CourtyardRule) defaultOffset(bounds geometry.BoundingBox) float64 {
	offset := 0.25
	if bounds.Width() < 2 && bounds.Height() < 2 {
		offset = 0.15
	}

	dir := r.fp.Dir()
	switch {
	case bgaName.MatchString(r.fp.Name) || bgaLibrary.MatchString(dir):
		offset = 1
	case connectorLike.MatchString(r.fp.Name) || connectorLike.MatchString(dir):
		offset = 0.5
	}
	return offset
}

func (r *CourtyardRule) defaultCourtyard() (geometry.BoundingBox, bool) {
	bounds := r.footprintBounds()
	if !bounds.Valid {
		return bounds, false
	}
	offset := r.defaultOffset(bounds)
	slog.Debug("default courtyard", "footprint", r.fp.Name, "offset", offset)
	bb := bounds.Expand(offset)

	x := geometry.MapToGrid(bb.XMin, CourtyardGrid)
	y := geometry.MapToGrid(bb.YMin, CourtyardGrid)
	w := geometry.MapToGrid(bb.Width(), CourtyardGrid)
	h := geometry.MapToGrid(bb.Height(), CourtyardGrid)
	return geometry.BoundingBox{
		XMin:  x,
		YMin:  y,
		XMax:  geometry.Round(x+w, 6),
		YMax:  geometry.Round(y+h, 6),
		Valid: true,
	}, true
}
