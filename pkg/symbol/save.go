package symbol

import (
	"github.com/pkg/errors"

	"github.com/nsxbet/klc-reviewer/pkg/sexpr"
)

// Save writes the library back to its file using Unix line endings.
func (l *Library) Save() error {
	if l.Path == "" {
		return errors.New("symbol library has no file path")
	}
	if err := sexpr.WriteFile(l.Path, l.Node()); err != nil {
		return errors.Wrapf(err, "failed to save symbol library %s", l.Name())
	}
	l.HasCR = false
	return nil
}

// Format renders the whole library as KiCad text.
func (l *Library) Format() string {
	return sexpr.Format(l.Node())
}

// Node synchronizes every symbol into the document tree and returns it.
func (l *Library) Node() *sexpr.Node {
	if l.root == nil {
		l.root = sexpr.List("kicad_symbol_lib")
		if l.Version != "" {
			l.root.Set("version", sexpr.Sym(l.Version))
		}
		if l.Generator != "" {
			l.root.Set("generator", sexpr.Sym(l.Generator))
		}
	}
	for _, s := range l.Symbols {
		s.Node()
	}
	return l.root
}

// Format renders the symbol alone. Two symbols with the same text are equal.
func (s *Symbol) Format() string {
	return sexpr.Format(s.Node())
}

// Node synchronizes the symbol model into its document tree.
func (s *Symbol) Node() *sexpr.Node {
	n := s.node
	if n == nil {
		return nil
	}
	n.SetArg(0, sexpr.Str(s.Name))
	s.syncFlags()

	for _, p := range s.Properties {
		if p.node == nil {
			p.node = sexpr.List("property", sexpr.Str(p.Name), sexpr.Str(p.Value))
			insertProperty(n, p.node)
		}
		p.sync()
	}

	live := make(map[*sexpr.Node]bool, len(s.Pins))
	for _, p := range s.Pins {
		p.sync()
		live[p.node] = true
	}
	s.dropPins(n, live)
	for _, sub := range n.Children("symbol") {
		s.dropPins(sub, live)
	}
	return n
}

func (s *Symbol) dropPins(n *sexpr.Node, live map[*sexpr.Node]bool) {
	kept := n.Items[:0]
	for i, item := range n.Items {
		if i > 0 && item.Name() == "pin" && !live[item] {
			continue
		}
		kept = append(kept, item)
	}
	n.Items = kept
}

func yesNoAtom(v bool) *sexpr.Node {
	if v {
		return sexpr.Sym("yes")
	}
	return sexpr.Sym("no")
}

func (s *Symbol) syncFlags() {
	n := s.node
	if s.Power != n.Flag("power") {
		if s.Power {
			n.Items = append(n.Items[:1], append([]*sexpr.Node{sexpr.List("power")}, n.Items[1:]...)...)
		} else {
			n.Remove("power")
		}
	}
	if n.Child("in_bom") != nil || !s.InBOM {
		n.Set("in_bom", yesNoAtom(s.InBOM))
	}
	if n.Child("on_board") != nil || !s.OnBoard {
		n.Set("on_board", yesNoAtom(s.OnBoard))
	}

	pn := n.Child("pin_names")
	if pn == nil && (s.PinNamesOffset != DefaultPinNamesOffset || s.PinNamesHidden) {
		pn = n.Set("pin_names")
	}
	if pn != nil {
		if pn.Child("offset") != nil || s.PinNamesOffset != DefaultPinNamesOffset {
			pn.Set("offset", sexpr.Num(s.PinNamesOffset))
		}
		pn.SetFlag("hide", s.PinNamesHidden)
	}
	if num := n.Child("pin_numbers"); num != nil || s.PinNumbersHidden {
		if num == nil {
			num = n.Set("pin_numbers")
		}
		num.SetFlag("hide", s.PinNumbersHidden)
	}
}

// insertProperty places a new property after the last existing one.
func insertProperty(n, prop *sexpr.Node) {
	at := len(n.Items)
	for i, item := range n.Items {
		if i == 0 {
			continue
		}
		if item.Name() == "property" {
			at = i + 1
		} else if item.Name() == "symbol" && at == len(n.Items) {
			at = i
		}
	}
	n.Items = append(n.Items[:at], append([]*sexpr.Node{prop}, n.Items[at:]...)...)
}

func (p *Property) sync() {
	n := p.node
	n.SetArg(0, sexpr.Str(p.Name))
	n.SetArg(1, sexpr.Str(p.Value))
	n.Set("at", sexpr.Num(p.Pos.X), sexpr.Num(p.Pos.Y), sexpr.Num(p.Rotation))

	effects := n.Child("effects")
	if effects == nil {
		effects = n.Set("effects")
	}
	font := effects.Child("font")
	if font == nil {
		font = effects.Set("font")
	}
	font.Set("size", sexpr.Num(p.FontSize.X), sexpr.Num(p.FontSize.Y))

	var justify []*sexpr.Node
	if p.HJustify == "left" || p.HJustify == "right" {
		justify = append(justify, sexpr.Sym(p.HJustify))
	}
	for _, j := range effects.Path("justify").Args() {
		if j.Value != "left" && j.Value != "right" {
			justify = append(justify, j)
		}
	}
	if len(justify) == 0 {
		effects.Remove("justify")
	} else {
		effects.Set("justify", justify...)
	}

	if n.Flag("hide") || n.Child("hide") != nil {
		n.SetFlag("hide", p.Hidden)
	} else {
		effects.SetFlag("hide", p.Hidden)
	}
}

func (p *Pin) sync() {
	n := p.node
	if n == nil {
		return
	}
	n.SetArg(0, sexpr.Sym(p.Etype))
	n.SetArg(1, sexpr.Sym(p.Shape))
	n.Set("at", sexpr.Num(p.Pos.X), sexpr.Num(p.Pos.Y), sexpr.Num(p.Rotation))
	n.Set("length", sexpr.Num(p.Length))
	n.SetFlag("hide", p.Hidden)
	syncPinText(n, "name", p.Name, p.NameSize)
	syncPinText(n, "number", p.Number, p.NumberSize)
}

func syncPinText(pin *sexpr.Node, name, value string, size float64) {
	c := pin.Child(name)
	if c == nil {
		c = pin.Set(name)
	}
	c.SetArg(0, sexpr.Str(value))
	effects := c.Child("effects")
	if effects == nil {
		effects = c.Set("effects")
	}
	font := effects.Child("font")
	if font == nil {
		font = effects.Set("font")
	}
	font.Set("size", sexpr.Num(size), sexpr.Num(size))
}
