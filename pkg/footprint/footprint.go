// Package footprint models a KiCad footprint (.kicad_mod) together with the
// geometric queries and algorithms the footprint rules rely on.
package footprint

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Footprint attribute values.
const (
	AttributeSMD         = "smd"
	AttributeThroughHole = "through_hole"
	AttributeVirtual     = "virtual"
)

// Pad types.
const (
	PadThroughHole   = "thru_hole"
	PadSMD           = "smd"
	PadNPThroughHole = "np_thru_hole"
	PadConnect       = "connect"
)

// Footprint is one parsed .kicad_mod file.
type Footprint struct {
	Name        string
	Path        string
	Version     string
	Layer       string
	Description string
	Tags        string
	Attribute   string

	Reference *Text
	Value     *Text
	UserTexts []*Text
	Pads      []*Pad
	Graphics  []*Graphic
	Models    []string

	// HasCR is set when the source text used carriage returns.
	HasCR bool

	root          *sexpr.Node
	graphicNodes  map[*sexpr.Node]bool
	legacyVersion bool
}

// Text is a reference, value or user text field.
type Text struct {
	Kind     string
	Value    string
	Pos      geometry.Point
	Rotation float64
	Layer    string
	Hidden   bool
	Locked   bool
	Font     Font

	node     *sexpr.Node
	property bool
}

// Font holds text dimensions in millimetres.
type Font struct {
	Height    float64
	Width     float64
	Thickness float64
}

// Pad is a copper, mask or paste pad.
type Pad struct {
	Number   string
	Type     string
	Shape    string
	Pos      geometry.Point
	Rotation float64
	Size     geometry.Point
	HasSize  bool
	Drill    *Drill
	Layers   []string

	node *sexpr.Node
}

// Drill describes the hole of a through hole pad.
type Drill struct {
	Oval    bool
	Size    geometry.Point
	HasSize bool
	Offset  geometry.Point
}

// Library returns the library name derived from the enclosing .pretty folder.
func (f *Footprint) Library() string {
	return strings.TrimSuffix(f.Dir(), ".pretty")
}

// Dir returns the name of the directory holding the footprint file.
func (f *Footprint) Dir() string {
	if f.Path == "" {
		return ""
	}
	abs, err := filepath.Abs(f.Path)
	if err != nil {
		abs = f.Path
	}
	return filepath.Base(filepath.Dir(abs))
}

// FileBase returns the file name without directory and extension.
func (f *Footprint) FileBase() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PadsByType returns the pads of the given type.
func (f *Footprint) PadsByType(padType string) []*Pad {
	var out []*Pad
	for _, p := range f.Pads {
		if p.Type == padType {
			out = append(out, p)
		}
	}
	return out
}

// FilterPads returns the pads carrying number.
func (f *Footprint) FilterPads(number string) []*Pad {
	var out []*Pad
	for _, p := range f.Pads {
		if p.Number == number {
			out = append(out, p)
		}
	}
	return out
}

// GraphicsOnLayer returns every graphic item on any of the given layers.
func (f *Footprint) GraphicsOnLayer(layers ...string) []*Graphic {
	var out []*Graphic
	for _, g := range f.Graphics {
		for _, l := range layers {
			if g.Layer == l {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// LinesOnLayer returns the plain line items on layer.
func (f *Footprint) LinesOnLayer(layer string) []*Graphic {
	return f.kindOnLayer(layer, GraphicLine)
}

// CirclesOnLayer returns the circle items on layer.
func (f *Footprint) CirclesOnLayer(layer string) []*Graphic {
	return f.kindOnLayer(layer, GraphicCircle)
}

func (f *Footprint) kindOnLayer(layer string, kind GraphicKind) []*Graphic {
	var out []*Graphic
	for _, g := range f.Graphics {
		if g.Layer == layer && g.Kind == kind {
			out = append(out, g)
		}
	}
	return out
}

// PadsBoundingBox covers the full extent of every pad.
func (f *Footprint) PadsBoundingBox() geometry.BoundingBox {
	var b geometry.BoundingBox
	for _, p := range f.Pads {
		b.AddBox(p.BoundingBox())
	}
	return b
}

// GraphicsBoundingBox covers the graphic items on layer.
func (f *Footprint) GraphicsBoundingBox(layer string) geometry.BoundingBox {
	var b geometry.BoundingBox
	for _, g := range f.GraphicsOnLayer(layer) {
		b.AddBox(g.BoundingBox())
	}
	return b
}

// CourtyardBoundingBox covers both courtyard layers.
func (f *Footprint) CourtyardBoundingBox() geometry.BoundingBox {
	b := f.GraphicsBoundingBox("F.CrtYd")
	b.AddBox(f.GraphicsBoundingBox("B.CrtYd"))
	return b
}

// HasLayer reports whether the pad is on layer.
func (p *Pad) HasLayer(layer string) bool {
	for _, l := range p.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// IsStencil reports whether the pad is a paste-only opening.
func (p *Pad) IsStencil() bool {
	if len(p.Layers) == 0 {
		return false
	}
	for _, l := range p.Layers {
		if !strings.HasSuffix(l, ".Paste") {
			return false
		}
	}
	return true
}

// NumberInt parses the pad number as an integer.
func (p *Pad) NumberInt() (int, bool) {
	n, err := strconv.Atoi(p.Number)
	return n, err == nil
}

// DrillOffset returns the drill offset, zero when there is none.
func (p *Pad) DrillOffset() geometry.Point {
	if p.Drill == nil {
		return geometry.Point{}
	}
	return p.Drill.Offset
}

// Corners returns the four pad corners in footprint coordinates. The order is
// (+,+), (-,-), (+,-), (-,+) relative to the pad center.
func (p *Pad) Corners() [4]geometry.Point {
	hx, hy := p.Size.X/2, p.Size.Y/2
	local := [4]geometry.Point{
		{X: hx, Y: hy},
		{X: -hx, Y: -hy},
		{X: hx, Y: -hy},
		{X: -hx, Y: hy},
	}
	off := p.DrillOffset()
	var out [4]geometry.Point
	for i, c := range local {
		out[i] = c.Add(off).RotateDeg(p.Rotation).Add(p.Pos)
	}
	return out
}

// BoundingBox covers the rotated pad outline.
func (p *Pad) BoundingBox() geometry.BoundingBox {
	c := p.Corners()
	return geometry.NewBoundingBox(c[:]...)
}

// IsCircle reports whether the pad outline is treated as a circle.
func (p *Pad) IsCircle() bool {
	return strings.Contains(p.Shape, "circle")
}

// IsRectangular reports whether the pad is rect or roundrect.
func (p *Pad) IsRectangular() bool {
	return p.Shape == "rect" || p.Shape == "roundrect"
}
