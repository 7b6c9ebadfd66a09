// Package report renders review results for the console and writes the
// error log and metrics artifacts of a checker run.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Color is an ANSI escape sequence.
type Color string

const (
	Reset       Color = "\033[0m"
	Red         Color = "\033[0;31m"
	Green       Color = "\033[0;32m"
	Yellow      Color = "\033[0;33m"
	Blue        Color = "\033[0;34m"
	Purple      Color = "\033[0;35m"
	LightRed    Color = "\033[1;31m"
	LightGreen  Color = "\033[1;32m"
	LightBlue   Color = "\033[1;34m"
	LightPurple Color = "\033[1;35m"
	White       Color = "\033[1;37m"
	Regular     Color = ""
)

// Printer writes indented, optionally colored lines. A buffered printer keeps
// its output until Flush so that concurrent workers do not interleave.
type Printer struct {
	out      io.Writer
	buf      bytes.Buffer
	color    bool
	buffered bool
}

// NewPrinter returns a printer writing straight to out.
func NewPrinter(out io.Writer, color bool) *Printer {
	return &Printer{out: out, color: color}
}

// NewBufferedPrinter returns a printer that collects output until Flush.
func NewBufferedPrinter(color bool) *Printer {
	return &Printer{color: color, buffered: true}
}

// Line prints one line in color c, indented by indent spaces.
func (p *Printer) Line(c Color, indent int, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", indent))
	if p.color && c != Regular {
		b.WriteString(string(c))
		b.WriteString(text)
		b.WriteString(string(Reset))
	} else {
		b.WriteString(text)
	}
	b.WriteByte('\n')

	if p.buffered || p.out == nil {
		p.buf.WriteString(b.String())
		return
	}
	_, _ = io.WriteString(p.out, b.String())
}

func (p *Printer) Regular(indent int, format string, args ...any) {
	p.Line(Regular, indent, format, args...)
}

func (p *Printer) Red(indent int, format string, args ...any) {
	p.Line(Red, indent, format, args...)
}

func (p *Printer) Green(indent int, format string, args ...any) {
	p.Line(Green, indent, format, args...)
}

func (p *Printer) Yellow(indent int, format string, args ...any) {
	p.Line(Yellow, indent, format, args...)
}

// Buffered returns the output held back so far.
func (p *Printer) Buffered() string {
	return p.buf.String()
}

// Flush writes the buffered output to w while holding mu, then clears the
// buffer. mu may be nil when the caller is the only writer.
func (p *Printer) Flush(w io.Writer, mu sync.Locker) error {
	if p.buf.Len() == 0 {
		return nil
	}
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	_, err := w.Write(p.buf.Bytes())
	p.buf.Reset()
	return err
}
