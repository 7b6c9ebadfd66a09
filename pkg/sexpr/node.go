package sexpr

import (
	"math"
	"strconv"
)

// Kind distinguishes lists from the two atom flavours.
type Kind int

const (
	KindList Kind = iota
	KindSymbol
	KindString
)

// Node is one element of a parsed document. Lists carry Items, atoms carry
// Value. The first item of a list is conventionally its name.
type Node struct {
	Kind  Kind
	Value string
	Items []*Node
}

// List builds a named list.
func List(name string, items ...*Node) *Node {
	all := make([]*Node, 0, len(items)+1)
	all = append(all, Sym(name))
	for _, item := range items {
		if item != nil {
			all = append(all, item)
		}
	}
	return &Node{Kind: KindList, Items: all}
}

// Sym builds a bare atom.
func Sym(v string) *Node {
	return &Node{Kind: KindSymbol, Value: v}
}

// Str builds a quoted string atom.
func Str(v string) *Node {
	return &Node{Kind: KindString, Value: v}
}

// Num builds a numeric atom using the shortest exact representation.
func Num(v float64) *Node {
	return Sym(FormatFloat(v))
}

// Int builds an integer atom.
func Int(v int) *Node {
	return Sym(strconv.Itoa(v))
}

// FormatFloat renders v rounded to six decimals without trailing zeros.
func FormatFloat(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// IsList reports whether n is a list.
func (n *Node) IsList() bool {
	return n != nil && n.Kind == KindList
}

// Name returns the leading symbol of a list, or "" for atoms and empty lists.
func (n *Node) Name() string {
	if !n.IsList() || len(n.Items) == 0 || n.Items[0].Kind == KindList {
		return ""
	}
	return n.Items[0].Value
}

// Args returns every item after the name.
func (n *Node) Args() []*Node {
	if !n.IsList() || len(n.Items) == 0 {
		return nil
	}
	return n.Items[1:]
}

// Arg returns the i-th item after the name, or nil.
func (n *Node) Arg(i int) *Node {
	args := n.Args()
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

// Text returns the value of the i-th argument when it is an atom.
func (n *Node) Text(i int) string {
	a := n.Arg(i)
	if a == nil || a.Kind == KindList {
		return ""
	}
	return a.Value
}

// Float parses the i-th argument as a number, returning 0 when absent.
func (n *Node) Float(i int) float64 {
	v, _ := n.FloatOK(i)
	return v
}

// FloatOK parses the i-th argument as a number.
func (n *Node) FloatOK(i int) (float64, bool) {
	a := n.Arg(i)
	if a == nil || a.Kind == KindList {
		return 0, false
	}
	v, err := strconv.ParseFloat(a.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Child returns the first nested list called name.
func (n *Node) Child(name string) *Node {
	for _, item := range n.Args() {
		if item.IsList() && item.Name() == name {
			return item
		}
	}
	return nil
}

// Path descends through nested lists by name.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		if cur == nil {
			return nil
		}
		cur = cur.Child(name)
	}
	return cur
}

// Children returns every nested list called name.
func (n *Node) Children(name string) []*Node {
	var out []*Node
	for _, item := range n.Args() {
		if item.IsList() && item.Name() == name {
			out = append(out, item)
		}
	}
	return out
}

// Flag reports whether a boolean attribute is set. KiCad writes these either
// as a bare symbol ("hide"), an empty list ("(power)") or "(hide yes)".
func (n *Node) Flag(name string) bool {
	for _, item := range n.Args() {
		if item.Kind == KindSymbol && item.Value == name {
			return true
		}
		if item.IsList() && item.Name() == name {
			v := item.Text(0)
			return v == "" || v == "yes"
		}
	}
	return false
}

// Set replaces the first nested list called name with a fresh one holding
// values, appending it when missing. It returns the new child.
func (n *Node) Set(name string, values ...*Node) *Node {
	child := List(name, values...)
	for i, item := range n.Items {
		if i > 0 && item.IsList() && item.Name() == name {
			n.Items[i] = child
			return child
		}
	}
	n.Items = append(n.Items, child)
	return child
}

// Remove drops every nested list called name.
func (n *Node) Remove(name string) {
	kept := n.Items[:0]
	for i, item := range n.Items {
		if i > 0 && item.IsList() && item.Name() == name {
			continue
		}
		kept = append(kept, item)
	}
	n.Items = kept
}

// SetFlag turns a boolean attribute on or off. An existing "(name yes|no)"
// form is kept, otherwise the bare symbol form is used.
func (n *Node) SetFlag(name string, on bool) {
	for i, item := range n.Items {
		if i == 0 {
			continue
		}
		if item.IsList() && item.Name() == name {
			if on {
				n.Items[i] = List(name, Sym("yes"))
			} else {
				n.Items[i] = List(name, Sym("no"))
			}
			return
		}
	}
	kept := n.Items[:0]
	found := false
	for i, item := range n.Items {
		if i > 0 && item.Kind == KindSymbol && item.Value == name {
			found = true
			if !on {
				continue
			}
		}
		kept = append(kept, item)
	}
	n.Items = kept
	if on && !found {
		n.Items = append(n.Items, Sym(name))
	}
}

// SetArg overwrites the i-th argument, extending the list if needed.
func (n *Node) SetArg(i int, v *Node) {
	for len(n.Items) <= i+1 {
		n.Items = append(n.Items, Sym(""))
	}
	n.Items[i+1] = v
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Value: n.Value}
	if n.Items != nil {
		c.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			c.Items[i] = item.Clone()
		}
	}
	return c
}

// Depth is the maximum list nesting below and including n.
func (n *Node) Depth() int {
	if !n.IsList() {
		return 0
	}
	max := 0
	for _, item := range n.Items {
		if d := item.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}
