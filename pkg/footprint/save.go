package footprint

import (
	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/geometry"
	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Save writes the footprint back to its file using Unix line endings.
func (f *Footprint) Save() error {
	if f.Path == "" {
		return errors.New("footprint has no file path")
	}
	if err := sexpr.WriteFile(f.Path, f.Node()); err != nil {
		return errors.Wrapf(err, "failed to save footprint %s", f.Name)
	}
	f.HasCR = false
	return nil
}

// Format renders the footprint as KiCad text.
func (f *Footprint) Format() string {
	return sexpr.Format(f.Node())
}

// Node synchronizes the model into its document tree and returns it. Nodes
// the model does not understand are kept where they were.
func (f *Footprint) Node() *sexpr.Node {
	if f.root == nil {
		header := "footprint"
		if f.legacyVersion {
			header = "module"
		}
		f.root = sexpr.List(header, sexpr.Str(f.Name))
		f.graphicNodes = make(map[*sexpr.Node]bool)
	}
	root := f.root
	root.SetArg(0, sexpr.Str(f.Name))
	setOptional(root, "layer", f.Layer)
	setOptional(root, "descr", f.Description)
	setOptional(root, "tags", f.Tags)
	f.syncAttribute()

	for _, t := range f.texts() {
		if t.node == nil {
			if t.Value == "" {
				continue
			}
			t.node = sexpr.List("fp_text", sexpr.Sym(t.Kind), sexpr.Str(t.Value))
			root.Items = append(root.Items, t.node)
		}
		t.sync()
	}
	for _, p := range f.Pads {
		p.sync()
	}

	// graphics are spliced in at the position of the first original one so
	// added and removed items keep the file ordering stable
	out := make([]*sexpr.Node, 0, len(root.Items)+len(f.Graphics))
	placed := false
	placeGraphics := func() {
		for _, g := range f.Graphics {
			out = append(out, g.sync(f.legacyVersion))
		}
		placed = true
	}
	for i, item := range root.Items {
		if i > 0 && f.graphicNodes[item] {
			if !placed {
				placeGraphics()
			}
			continue
		}
		if i > 1 && !placed && (item.Name() == "pad" || item.Name() == "model") {
			placeGraphics()
		}
		out = append(out, item)
	}
	if !placed {
		placeGraphics()
	}
	root.Items = out

	f.graphicNodes = make(map[*sexpr.Node]bool, len(f.Graphics))
	for _, g := range f.Graphics {
		f.graphicNodes[g.node] = true
	}
	return root
}

func (f *Footprint) texts() []*Text {
	out := []*Text{f.Reference, f.Value}
	return append(out, f.UserTexts...)
}

func setOptional(n *sexpr.Node, name, value string) {
	if value == "" && n.Child(name) == nil {
		return
	}
	if c := n.Child(name); c != nil {
		c.SetArg(0, keepKind(c.Arg(0), value))
		return
	}
	n.Set(name, sexpr.Str(value))
}

// keepKind builds an atom for value reusing the quoting of old.
func keepKind(old *sexpr.Node, value string) *sexpr.Node {
	if old != nil && old.Kind == sexpr.KindSymbol && value != "" {
		return sexpr.Sym(value)
	}
	return sexpr.Str(value)
}

func (f *Footprint) syncAttribute() {
	attr := f.root.Child("attr")
	if attr == nil {
		if f.Attribute != "" {
			f.root.Set("attr", sexpr.Sym(f.Attribute))
		}
		return
	}
	kept := []*sexpr.Node{attr.Items[0]}
	if f.Attribute != "" {
		kept = append(kept, sexpr.Sym(f.Attribute))
	}
	for _, a := range attr.Args() {
		switch a.Value {
		case AttributeSMD, AttributeThroughHole, AttributeVirtual:
			continue
		}
		kept = append(kept, a)
	}
	attr.Items = kept
	if len(attr.Items) == 1 {
		f.root.Remove("attr")
	}
}

func setPoint(n *sexpr.Node, name string, p geometry.Point) {
	if c := n.Child(name); c != nil {
		c.SetArg(0, sexpr.Num(p.X))
		c.SetArg(1, sexpr.Num(p.Y))
		return
	}
	n.Set(name, sexpr.Num(p.X), sexpr.Num(p.Y))
}

func setLayer(n *sexpr.Node, layer string) {
	if c := n.Child("layer"); c != nil {
		c.SetArg(0, keepKind(c.Arg(0), layer))
		return
	}
	n.Set("layer", sexpr.Str(layer))
}

func (t *Text) sync() {
	n := t.node
	if t.property {
		n.SetArg(1, sexpr.Str(t.Value))
	} else {
		n.SetArg(0, sexpr.Sym(t.Kind))
		n.SetArg(1, sexpr.Str(t.Value))
	}

	at := n.Child("at")
	if at == nil {
		at = n.Set("at")
	}
	at.Items = []*sexpr.Node{at.Items[0], sexpr.Num(t.Pos.X), sexpr.Num(t.Pos.Y)}
	if t.Rotation != 0 || t.property {
		at.Items = append(at.Items, sexpr.Num(t.Rotation))
	}
	if t.Locked {
		n.Remove("unlocked")
	} else if t.property {
		n.Set("unlocked", sexpr.Sym("yes"))
	} else {
		at.Items = append(at.Items, sexpr.Sym("unlocked"))
	}

	setLayer(n, t.Layer)
	if n.Path("effects").Flag("hide") {
		n.Child("effects").SetFlag("hide", t.Hidden)
	} else {
		n.SetFlag("hide", t.Hidden)
	}

	effects := n.Child("effects")
	if effects == nil {
		effects = n.Set("effects")
	}
	font := effects.Child("font")
	if font == nil {
		font = effects.Set("font")
	}
	font.Set("size", sexpr.Num(t.Font.Height), sexpr.Num(t.Font.Width))
	font.Set("thickness", sexpr.Num(t.Font.Thickness))
}

func (p *Pad) sync() {
	n := p.node
	if n == nil {
		return
	}
	n.SetArg(0, sexpr.Str(p.Number))
	at := n.Child("at")
	if at == nil {
		at = n.Set("at")
	}
	at.Items = []*sexpr.Node{at.Items[0], sexpr.Num(p.Pos.X), sexpr.Num(p.Pos.Y)}
	if p.Rotation != 0 {
		at.Items = append(at.Items, sexpr.Num(p.Rotation))
	}
	if p.HasSize {
		setPoint(n, "size", p.Size)
	}
	layers := make([]*sexpr.Node, 0, len(p.Layers))
	for _, l := range p.Layers {
		layers = append(layers, sexpr.Str(l))
	}
	n.Set("layers", layers...)
}

func (g *Graphic) sync(legacy bool) *sexpr.Node {
	if g.node == nil {
		g.node = newGraphicNode(g.Kind)
	}
	n := g.node
	switch g.Kind {
	case GraphicLine, GraphicRect:
		setPoint(n, "start", g.Start)
		setPoint(n, "end", g.End)
	case GraphicCircle:
		setPoint(n, "center", g.Center)
		setPoint(n, "end", g.End)
	case GraphicArc:
		if g.legacyArc {
			setPoint(n, "start", g.Center)
			setPoint(n, "end", g.Start)
			n.Set("angle", sexpr.Num(g.Angle))
			break
		}
		setPoint(n, "start", g.Start)
		setPoint(n, "mid", g.Mid)
		setPoint(n, "end", g.End)
	case GraphicPoly:
		pts := make([]*sexpr.Node, 0, len(g.Points))
		for _, p := range g.Points {
			pts = append(pts, sexpr.List("xy", sexpr.Num(p.X), sexpr.Num(p.Y)))
		}
		n.Set("pts", pts...)
	}

	switch {
	case n.Child("width") != nil:
		n.Set("width", sexpr.Num(g.Width))
	case n.Child("stroke") != nil:
		n.Child("stroke").Set("width", sexpr.Num(g.Width))
	case legacy:
		n.Set("width", sexpr.Num(g.Width))
	default:
		n.Set("stroke", sexpr.List("width", sexpr.Num(g.Width)), sexpr.List("type", sexpr.Sym("solid")))
	}
	setLayer(n, g.Layer)
	return n
}

func newGraphicNode(kind GraphicKind) *sexpr.Node {
	for name, k := range graphicNodeNames {
		if k == kind {
			return sexpr.List(name)
		}
	}
	return sexpr.List("fp_line")
}
