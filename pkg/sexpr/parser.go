// Package sexpr reads and writes the nested list documents used by KiCad
// footprint (.kicad_mod) and symbol library (.kicad_sym) files.
package sexpr

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Lexer tokenizes KiCad s-expressions. Quoted strings keep their quotes and
// escapes; unquoting happens when the grammar tree is converted to nodes.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Open", Pattern: `\(`},
	{Name: "Close", Pattern: `\)`},
	{Name: "Atom", Pattern: `[^\s()"]+`},
})

type grammarList struct {
	Items []*grammarValue `parser:"'(' @@* ')'"`
}

type grammarValue struct {
	List   *grammarList `parser:"  @@"`
	String *string      `parser:"| @String"`
	Atom   *string      `parser:"| @Atom"`
}

// Parser wraps the participle parser for a single top-level list.
type Parser struct {
	parser *participle.Parser[grammarList]
}

// NewParser builds the s-expression parser.
func NewParser() (*Parser, error) {
	p, err := participle.Build[grammarList](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build s-expression parser")
	}
	return &Parser{parser: p}, nil
}

var defaultParser = func() *Parser {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	return p
}()

// Parse reads one document from r.
func (p *Parser) Parse(filename string, r io.Reader) (*Node, error) {
	tree, err := p.parser.Parse(filename, r)
	if err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", filename)
	}
	return tree.node(), nil
}

// ParseString parses a document held in memory.
func (p *Parser) ParseString(filename, src string) (*Node, error) {
	tree, err := p.parser.ParseString(filename, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", filename)
	}
	return tree.node(), nil
}

// Parse reads one document from r using the shared parser.
func Parse(filename string, r io.Reader) (*Node, error) {
	return defaultParser.Parse(filename, r)
}

// ParseString parses src using the shared parser.
func ParseString(filename, src string) (*Node, error) {
	return defaultParser.ParseString(filename, src)
}

// ParseFile opens and parses the file at path.
func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return defaultParser.Parse(path, f)
}

func (g *grammarList) node() *Node {
	n := &Node{Kind: KindList, Items: make([]*Node, 0, len(g.Items))}
	for _, item := range g.Items {
		switch {
		case item.List != nil:
			n.Items = append(n.Items, item.List.node())
		case item.String != nil:
			n.Items = append(n.Items, Str(unquote(*item.String)))
		case item.Atom != nil:
			n.Items = append(n.Items, Sym(*item.Atom))
		}
	}
	return n
}

func unquote(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			b.WriteByte(c)
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}
