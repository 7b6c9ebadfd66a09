// Package symbol models KiCad symbol libraries (.kicad_sym) and the queries
// the symbol rules need: pin stacks, pin directions and outline detection.
package symbol

import (
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Pin electrical types.
const (
	PinInput         = "input"
	PinOutput        = "output"
	PinBidirectional = "bidirectional"
	PinTriState      = "tri_state"
	PinPassive       = "passive"
	PinPowerIn       = "power_in"
	PinPowerOut      = "power_out"
	PinNoConnect     = "no_connect"
)

// Library is one .kicad_sym file.
type Library struct {
	Path      string
	Version   string
	Generator string
	Symbols   []*Symbol

	// HasCR is set when the source text used carriage returns.
	HasCR bool

	root *sexpr.Node
}

// Symbol is a schematic symbol. Derived symbols carry the name of their base
// in Extends and no graphics of their own.
type Symbol struct {
	Name    string
	Extends string

	Power            bool
	InBOM            bool
	OnBoard          bool
	PinNamesOffset   float64
	PinNamesHidden   bool
	PinNumbersHidden bool

	Properties []*Property
	Pins       []*Pin
	Rectangles []*Rectangle
	Polylines  []*Polyline
	Circles    []*Shape
	Arcs       []*Shape
	Texts      []*Shape

	UnitCount int
	DeMorgan  bool

	library *Library
	node    *sexpr.Node
}

// Property is a symbol field such as Reference or Footprint.
type Property struct {
	Name     string
	Value    string
	Pos      geometry.Point
	Rotation float64
	Hidden   bool
	FontSize geometry.Point
	HJustify string

	node *sexpr.Node
}

// Pin is one symbol pin. Unit 0 pins are shared by all units.
type Pin struct {
	Number     string
	Name       string
	Etype      string
	Shape      string
	Pos        geometry.Point
	Rotation   float64
	Length     float64
	Hidden     bool
	NameSize   float64
	NumberSize float64
	Unit       int
	DeMorgan   int

	node   *sexpr.Node
	parent *sexpr.Node
}

// Rectangle is a rectangle drawing.
type Rectangle struct {
	Start       geometry.Point
	End         geometry.Point
	StrokeWidth float64
	Fill        string
	Unit        int
	DeMorgan    int
}

// Polyline is an open or closed polyline drawing.
type Polyline struct {
	Points      []geometry.Point
	StrokeWidth float64
	Fill        string
	Unit        int
	DeMorgan    int
}

// Shape is a drawing that rules only count or locate.
type Shape struct {
	Kind     string
	Pos      geometry.Point
	Unit     int
	DeMorgan int
}

// Outline is a rectangular body outline, drawn either as a rectangle or as a
// closed polyline.
type Outline struct {
	Box         geometry.BoundingBox
	StrokeWidth float64
	Fill        string
}

// Name returns the library name derived from the file name.
func (l *Library) Name() string {
	base := filepath.Base(l.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Symbol looks a symbol up by name.
func (l *Library) Symbol(name string) *Symbol {
	for _, s := range l.Symbols {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// LibName is the name of the library holding the symbol.
func (s *Symbol) LibName() string {
	if s.library == nil {
		return ""
	}
	return s.library.Name()
}

// Library returns the owning library.
func (s *Symbol) Library() *Library {
	return s.library
}

// IsDerived reports whether the symbol extends another one.
func (s *Symbol) IsDerived() bool {
	return s.Extends != ""
}

// IsPower reports whether the symbol is a power flag.
func (s *Symbol) IsPower() bool {
	return s.Power
}

// IsGraphic reports whether the symbol is purely graphical.
func (s *Symbol) IsGraphic() bool {
	if s.IsDerived() {
		return false
	}
	if len(s.Pins) == 0 {
		return true
	}
	ref := s.Property("Reference")
	return ref != nil && ref.Value == "#SYM"
}

// IsSmallHeuristic guesses whether the symbol is a small discrete part such
// as a resistor or transistor.
func (s *Symbol) IsSmallHeuristic() bool {
	if len(s.Pins) <= 2 {
		return true
	}
	if len(s.Pins) <= 4 && s.CenterRectangle(unitRange(s.UnitCount)...) == nil {
		return true
	}
	return false
}

func unitRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Property returns the named field, or nil.
func (s *Symbol) Property(name string) *Property {
	for _, p := range s.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PropertyValue returns the value of the named field, or "".
func (s *Symbol) PropertyValue(name string) string {
	if p := s.Property(name); p != nil {
		return p.Value
	}
	return ""
}

// Description returns the description field in either naming convention.
func (s *Symbol) Description() *Property {
	if p := s.Property("Description"); p != nil {
		return p
	}
	return s.Property("ki_description")
}

// Keywords returns the keywords field.
func (s *Symbol) Keywords() *Property {
	return s.Property("ki_keywords")
}

// FootprintFilters splits the ki_fp_filters field.
func (s *Symbol) FootprintFilters() []string {
	return strings.Fields(s.PropertyValue("ki_fp_filters"))
}

// SetProperty sets the value of the named field, adding a hidden one when
// missing.
func (s *Symbol) SetProperty(name, value string) *Property {
	if p := s.Property(name); p != nil {
		p.Value = value
		return p
	}
	p := &Property{
		Name:     name,
		Value:    value,
		Hidden:   true,
		FontSize: geometry.Pt(1.27, 1.27),
		HJustify: "center",
	}
	s.Properties = append(s.Properties, p)
	return p
}

// RemovePins drops every pin of the symbol.
func (s *Symbol) RemovePins() {
	s.Pins = nil
}

// FilterPins returns the pins accepted by keep.
func (s *Symbol) FilterPins(keep func(*Pin) bool) []*Pin {
	var out []*Pin
	for _, p := range s.Pins {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// PinsWithDirection returns the pins pointing in direction (R, U, L or D).
func (s *Symbol) PinsWithDirection(direction string) []*Pin {
	return s.FilterPins(func(p *Pin) bool { return p.Direction() == direction })
}

// PinStack groups pins drawn at the same spot of the same unit and body
// style.
type PinStack struct {
	Pos      geometry.Point
	Unit     int
	DeMorgan int
	Pins     []*Pin
}

// PinStacks groups the pins by position, unit and body style, in order of
// first appearance.
func (s *Symbol) PinStacks() []*PinStack {
	type key struct {
		x, y     int64
		unit, dm int
	}
	index := make(map[key]*PinStack)
	var out []*PinStack
	for _, p := range s.Pins {
		k := key{geometry.MMToNanometer(p.Pos.X), geometry.MMToNanometer(p.Pos.Y), p.Unit, p.DeMorgan}
		st, ok := index[k]
		if !ok {
			st = &PinStack{Pos: p.Pos, Unit: p.Unit, DeMorgan: p.DeMorgan}
			index[k] = st
			out = append(out, st)
		}
		st.Pins = append(st.Pins, p)
	}
	return out
}

// CenterRectangle returns the body outline in the given units whose center is
// closest to the origin, or nil when there is none.
func (s *Symbol) CenterRectangle(units ...int) *Outline {
	inUnits := func(u int) bool {
		for _, x := range units {
			if x == u {
				return true
			}
		}
		return false
	}

	var candidates []*Outline
	for _, r := range s.Rectangles {
		if inUnits(r.Unit) && r.DeMorgan <= 1 {
			candidates = append(candidates, &Outline{
				Box:         geometry.NewBoundingBox(r.Start, r.End),
				StrokeWidth: r.StrokeWidth,
				Fill:        r.Fill,
			})
		}
	}
	for _, pl := range s.Polylines {
		if inUnits(pl.Unit) && pl.DeMorgan <= 1 && pl.IsRectangle() {
			candidates = append(candidates, &Outline{
				Box:         geometry.NewBoundingBox(pl.Points...),
				StrokeWidth: pl.StrokeWidth,
				Fill:        pl.Fill,
			})
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Box.Center().Abs() < candidates[j].Box.Center().Abs()
	})
	return candidates[0]
}

// IsRectangle reports whether the polyline closes into an axis aligned
// rectangle.
func (pl *Polyline) IsRectangle() bool {
	pts := pl.Points
	if len(pts) == 5 && pts[0] == pts[4] {
		pts = pts[:4]
	}
	if len(pts) != 4 {
		return false
	}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%4]
		if a.X != b.X && a.Y != b.Y {
			return false
		}
		if a == b {
			return false
		}
	}
	return true
}

// Direction maps the pin rotation to the way the pin points: R, U, L or D.
func (p *Pin) Direction() string {
	switch int(math.Round(p.Rotation)) % 360 {
	case 90, -270:
		return "U"
	case 180, -180:
		return "L"
	case 270, -90:
		return "D"
	}
	return "R"
}

// NumberInt parses the pin number as an integer.
func (p *Pin) NumberInt() (int, bool) {
	n, err := strconv.Atoi(p.Number)
	return n, err == nil
}

// String renders the pin for report lines.
func (p *Pin) String() string {
	return PinString(p, true)
}

// PinString renders a pin by name and number, optionally with its position
// in mils.
func PinString(p *Pin, loc bool) string {
	s := "Pin " + p.Name + " (" + p.Number + ")"
	if loc {
		s += " @ (" + strconv.Itoa(geometry.MMToMil(p.Pos.X)) + "," + strconv.Itoa(geometry.MMToMil(p.Pos.Y)) + ")"
	}
	return s
}

// PositionString renders a position in mils as "@ (x, y)".
func PositionString(p geometry.Point) string {
	return "@ (" + strconv.Itoa(geometry.MMToMil(p.X)) + ", " + strconv.Itoa(geometry.MMToMil(p.Y)) + ")"
}
