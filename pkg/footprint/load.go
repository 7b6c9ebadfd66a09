package footprint

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Extension is the file extension of footprint files.
const Extension = ".kicad_mod"

// Load reads and parses the footprint at path.
func Load(path string) (*Footprint, error) {
	if filepath.Ext(path) != Extension {
		return nil, errors.Errorf("file is not a %s: %s", Extension, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read footprint %s", path)
	}
	return Parse(path, string(data))
}

// Parse builds a footprint from source text. path is only recorded, it is
// not read.
func Parse(path, src string) (*Footprint, error) {
	root, err := sexpr.ParseString(path, src)
	if err != nil {
		return nil, err
	}
	switch root.Name() {
	case "footprint", "module":
	default:
		return nil, errors.Errorf("%s: expected footprint, found %q", path, root.Name())
	}

	f := &Footprint{
		Name:          root.Text(0),
		Path:          path,
		HasCR:         strings.Contains(src, "\r"),
		root:          root,
		graphicNodes:  make(map[*sexpr.Node]bool),
		legacyVersion: root.Name() == "module",
	}

	for _, item := range root.Args() {
		if !item.IsList() {
			continue
		}
		switch name := item.Name(); name {
		case "version":
			f.Version = item.Text(0)
		case "layer":
			f.Layer = item.Text(0)
		case "descr":
			f.Description = item.Text(0)
		case "tags":
			f.Tags = item.Text(0)
		case "attr":
			f.Attribute = parseAttribute(item)
		case "fp_text":
			f.addText(parseText(item, false))
		case "property":
			t := parseText(item, true)
			if t.Kind == "reference" || t.Kind == "value" {
				f.addText(t)
			}
		case "pad":
			f.Pads = append(f.Pads, parsePad(item))
		case "model":
			f.Models = append(f.Models, item.Text(0))
		default:
			if kind, ok := graphicNodeNames[name]; ok {
				g, err := parseGraphic(kind, item)
				if err != nil {
					return nil, errors.Wrapf(err, "%s", path)
				}
				f.Graphics = append(f.Graphics, g)
				f.graphicNodes[item] = true
			}
		}
	}

	if f.Reference == nil {
		slog.Debug("Footprint has no reference field", "footprint", f.Name)
		f.Reference = &Text{Kind: "reference"}
	}
	if f.Value == nil {
		slog.Debug("Footprint has no value field", "footprint", f.Name)
		f.Value = &Text{Kind: "value"}
	}
	return f, nil
}

func (f *Footprint) addText(t *Text) {
	switch t.Kind {
	case "reference":
		f.Reference = t
	case "value":
		f.Value = t
	default:
		f.UserTexts = append(f.UserTexts, t)
	}
}

func parseAttribute(n *sexpr.Node) string {
	for _, a := range n.Args() {
		switch a.Value {
		case AttributeSMD, AttributeThroughHole, AttributeVirtual:
			return a.Value
		}
	}
	return ""
}

func point(n *sexpr.Node) geometry.Point {
	if n == nil {
		return geometry.Point{}
	}
	return geometry.Pt(n.Float(0), n.Float(1))
}

func parseText(n *sexpr.Node, property bool) *Text {
	t := &Text{node: n, property: property}
	if property {
		t.Kind = strings.ToLower(n.Text(0))
		t.Value = n.Text(1)
	} else {
		t.Kind = n.Text(0)
		t.Value = n.Text(1)
	}
	at := n.Child("at")
	t.Pos = point(at)
	t.Rotation = at.Float(2)
	t.Layer = n.Child("layer").Text(0)
	t.Hidden = n.Flag("hide") || n.Path("effects").Flag("hide")
	t.Locked = !(at.Flag("unlocked") || n.Flag("unlocked"))
	if font := n.Path("effects", "font"); font != nil {
		size := font.Child("size")
		t.Font = Font{
			Height:    size.Float(0),
			Width:     size.Float(1),
			Thickness: font.Child("thickness").Float(0),
		}
	}
	return t
}

func parsePad(n *sexpr.Node) *Pad {
	p := &Pad{
		Number: n.Text(0),
		Type:   n.Text(1),
		Shape:  n.Text(2),
		node:   n,
	}
	at := n.Child("at")
	p.Pos = point(at)
	p.Rotation = at.Float(2)
	if size := n.Child("size"); size != nil {
		p.Size = point(size)
		p.HasSize = true
	}
	if layers := n.Child("layers"); layers != nil {
		for _, l := range layers.Args() {
			p.Layers = append(p.Layers, l.Value)
		}
	}
	if drill := n.Child("drill"); drill != nil {
		p.Drill = parseDrill(drill)
	}
	return p
}

func parseDrill(n *sexpr.Node) *Drill {
	d := &Drill{}
	var values []float64
	for _, a := range n.Args() {
		if a.IsList() {
			if a.Name() == "offset" {
				d.Offset = point(a)
			}
			continue
		}
		if a.Value == "oval" {
			d.Oval = true
			continue
		}
		if v, err := strconv.ParseFloat(a.Value, 64); err == nil {
			values = append(values, v)
		}
	}
	switch len(values) {
	case 0:
	case 1:
		d.Size = geometry.Pt(values[0], values[0])
		d.HasSize = true
	default:
		d.Size = geometry.Pt(values[0], values[1])
		d.HasSize = true
	}
	return d
}

func parseGraphic(kind GraphicKind, n *sexpr.Node) (*Graphic, error) {
	g := &Graphic{Kind: kind, node: n, Layer: n.Child("layer").Text(0)}
	if w := n.Child("width"); w != nil {
		g.Width = w.Float(0)
	} else {
		g.Width = n.Path("stroke", "width").Float(0)
	}

	switch kind {
	case GraphicLine, GraphicRect:
		g.Start = point(n.Child("start"))
		g.End = point(n.Child("end"))
	case GraphicCircle:
		g.Center = point(n.Child("center"))
		g.End = point(n.Child("end"))
	case GraphicArc:
		if mid := n.Child("mid"); mid != nil {
			g.Start = point(n.Child("start"))
			g.Mid = point(mid)
			g.End = point(n.Child("end"))
			g.updateArc()
			break
		}
		// legacy arcs store the center as start and the arc start as end
		angle := n.Child("angle")
		if angle == nil {
			return nil, errors.New("arc without mid point or angle")
		}
		g.legacyArc = true
		g.Center = point(n.Child("start"))
		g.Start = point(n.Child("end"))
		g.Angle = angle.Float(0)
		g.End = g.Start.RotateAround(g.Center, g.Angle)
		g.Mid = g.Start.RotateAround(g.Center, g.Angle/2)
	case GraphicPoly:
		for _, xy := range n.Path("pts").Children("xy") {
			g.Points = append(g.Points, point(xy))
		}
	}
	return g, nil
}
