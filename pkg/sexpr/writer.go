package sexpr

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// inlineDepth is the deepest list that is still written on a single line.
const inlineDepth = 3

// Format renders n the way KiCad lays out its files: shallow lists on one
// line, deeper lists with one child per line and two-space indentation.
func Format(n *Node) string {
	var b strings.Builder
	format(&b, n, 0, true)
	b.WriteByte('\n')
	return b.String()
}

// Write renders n to w.
func Write(w io.Writer, n *Node) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Format(n)); err != nil {
		return errors.Wrap(err, "failed to write s-expression")
	}
	return errors.Wrap(bw.Flush(), "failed to flush s-expression")
}

// WriteFile renders n into path, replacing the file.
func WriteFile(path string, n *Node) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := Write(f, n); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}

func format(b *strings.Builder, n *Node, indent int, root bool) {
	if !n.IsList() {
		b.WriteString(atom(n))
		return
	}
	if !root && n.Depth() <= inlineDepth {
		inline(b, n)
		return
	}
	b.WriteByte('(')
	i := 0
	// leading atoms stay on the opening line
	for ; i < len(n.Items) && !n.Items[i].IsList(); i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(atom(n.Items[i]))
	}
	for ; i < len(n.Items); i++ {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", indent+1))
		format(b, n.Items[i], indent+1, false)
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteByte(')')
}

func inline(b *strings.Builder, n *Node) {
	b.WriteByte('(')
	for i, item := range n.Items {
		if i > 0 {
			b.WriteByte(' ')
		}
		if item.IsList() {
			inline(b, item)
		} else {
			b.WriteString(atom(item))
		}
	}
	b.WriteByte(')')
}

func atom(n *Node) string {
	if n.Kind == KindString {
		return quote(n.Value)
	}
	return n.Value
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
