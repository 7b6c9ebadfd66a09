package symbol

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Extension is the file extension of symbol libraries.
const Extension = ".kicad_sym"

// DefaultPinNamesOffset applies when a symbol does not set pin_names.
const DefaultPinNamesOffset = 0.508

// Load reads and parses the library at path.
func Load(path string) (*Library, error) {
	if filepath.Ext(path) != Extension {
		return nil, errors.Errorf("file is not a %s: %s", Extension, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read symbol library %s", path)
	}
	return Parse(path, string(data))
}

// Parse builds a library from source text. path is only recorded.
func Parse(path, src string) (*Library, error) {
	root, err := sexpr.ParseString(path, src)
	if err != nil {
		return nil, err
	}
	if root.Name() != "kicad_symbol_lib" {
		return nil, errors.Errorf("%s: expected kicad_symbol_lib, found %q", path, root.Name())
	}

	lib := &Library{
		Path:      path,
		Version:   root.Child("version").Text(0),
		Generator: root.Child("generator").Text(0),
		HasCR:     strings.Contains(src, "\r"),
		root:      root,
	}
	for _, n := range root.Children("symbol") {
		s, err := parseSymbol(n)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		s.library = lib
		lib.Symbols = append(lib.Symbols, s)
	}
	return lib, nil
}

func point(n *sexpr.Node) geometry.Point {
	if n == nil {
		return geometry.Point{}
	}
	return geometry.Pt(n.Float(0), n.Float(1))
}

func yesNo(n *sexpr.Node, name string, def bool) bool {
	c := n.Child(name)
	if c == nil {
		return def
	}
	return c.Text(0) != "no"
}

func parseSymbol(n *sexpr.Node) (*Symbol, error) {
	name := n.Text(0)
	if name == "" {
		return nil, errors.New("symbol without a name")
	}
	s := &Symbol{
		Name:             name,
		Extends:          n.Child("extends").Text(0),
		Power:            n.Flag("power"),
		InBOM:            yesNo(n, "in_bom", true),
		OnBoard:          yesNo(n, "on_board", true),
		PinNamesOffset:   DefaultPinNamesOffset,
		PinNumbersHidden: n.Path("pin_numbers").Flag("hide"),
		UnitCount:        1,
		node:             n,
	}
	if pn := n.Child("pin_names"); pn != nil {
		if off, ok := pn.Child("offset").FloatOK(0); ok {
			s.PinNamesOffset = off
		}
		s.PinNamesHidden = pn.Flag("hide")
	}
	for _, p := range n.Children("property") {
		s.Properties = append(s.Properties, parseProperty(p))
	}

	// drawings of the top level belong to every unit
	s.parseUnit(n, 0, 0)
	for _, sub := range n.Children("symbol") {
		unit, dm, ok := unitOf(sub.Text(0))
		if !ok {
			return nil, errors.Errorf("symbol %s: malformed unit name %q", name, sub.Text(0))
		}
		if unit > s.UnitCount {
			s.UnitCount = unit
		}
		if dm > 1 {
			s.DeMorgan = true
		}
		s.parseUnit(sub, unit, dm)
	}
	return s, nil
}

// unitOf decodes a "Name_U_D" unit symbol name.
func unitOf(name string) (int, int, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return 0, 0, false
	}
	unit, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, 0, false
	}
	dm, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, 0, false
	}
	return unit, dm, true
}

func (s *Symbol) parseUnit(n *sexpr.Node, unit, dm int) {
	for _, item := range n.Args() {
		if !item.IsList() {
			continue
		}
		switch item.Name() {
		case "pin":
			p := parsePin(item)
			p.Unit, p.DeMorgan, p.parent = unit, dm, n
			s.Pins = append(s.Pins, p)
		case "rectangle":
			s.Rectangles = append(s.Rectangles, &Rectangle{
				Start:       point(item.Child("start")),
				End:         point(item.Child("end")),
				StrokeWidth: item.Path("stroke", "width").Float(0),
				Fill:        item.Path("fill", "type").Text(0),
				Unit:        unit,
				DeMorgan:    dm,
			})
		case "polyline":
			pl := &Polyline{
				StrokeWidth: item.Path("stroke", "width").Float(0),
				Fill:        item.Path("fill", "type").Text(0),
				Unit:        unit,
				DeMorgan:    dm,
			}
			for _, xy := range item.Path("pts").Children("xy") {
				pl.Points = append(pl.Points, point(xy))
			}
			s.Polylines = append(s.Polylines, pl)
		case "circle":
			s.Circles = append(s.Circles, &Shape{Kind: "circle", Pos: point(item.Child("center")), Unit: unit, DeMorgan: dm})
		case "arc":
			s.Arcs = append(s.Arcs, &Shape{Kind: "arc", Pos: point(item.Child("mid")), Unit: unit, DeMorgan: dm})
		case "text":
			s.Texts = append(s.Texts, &Shape{Kind: "text", Pos: point(item.Child("at")), Unit: unit, DeMorgan: dm})
		}
	}
}

func parseProperty(n *sexpr.Node) *Property {
	at := n.Child("at")
	p := &Property{
		Name:     n.Text(0),
		Value:    n.Text(1),
		Pos:      point(at),
		Rotation: at.Float(2),
		Hidden:   n.Flag("hide") || n.Path("effects").Flag("hide"),
		FontSize: point(n.Path("effects", "font", "size")),
		HJustify: "center",
		node:     n,
	}
	for _, j := range n.Path("effects", "justify").Args() {
		if j.Value == "left" || j.Value == "right" {
			p.HJustify = j.Value
		}
	}
	return p
}

func parsePin(n *sexpr.Node) *Pin {
	at := n.Child("at")
	return &Pin{
		Etype:      n.Text(0),
		Shape:      n.Text(1),
		Pos:        point(at),
		Rotation:   at.Float(2),
		Length:     n.Child("length").Float(0),
		Hidden:     n.Flag("hide"),
		Name:       n.Child("name").Text(0),
		NameSize:   n.Path("name", "effects", "font", "size").Float(0),
		Number:     n.Child("number").Text(0),
		NumberSize: n.Path("number", "effects", "font", "size").Float(0),
		node:       n,
	}
}
