package engine

import (
	"fmt"
	"strings"
)

// Writer builds indented source text.
type Writer struct {
	b     strings.Builder
	unit  string
	depth int
}

func NewWriter(indentUnit string) *Writer {
	return &Writer{unit: indentUnit}
}

// Line writes one indented line. With no args format is written verbatim.
func (w *Writer) Line(format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	if text == "" {
		w.b.WriteByte('\n')
		return
	}
	for i := 0; i < w.depth; i++ {
		w.b.WriteString(w.unit)
	}
	w.b.WriteString(text)
	w.b.WriteByte('\n')
}

// Blank writes an empty line.
func (w *Writer) Blank() { w.b.WriteByte('\n') }

// Raw writes s unindented.
func (w *Writer) Raw(s string) { w.b.WriteString(s) }

func (w *Writer) Indent() { w.depth++ }

func (w *Writer) Dedent() {
	if w.depth > 0 {
		w.depth--
	}
}

// Block writes open, runs body one level deeper, then writes close.
func (w *Writer) Block(open string, body func(), close string) {
	w.Line(open)
	w.Indent()
	body()
	w.Dedent()
	if close != "" {
		w.Line(close)
	}
}

func (w *Writer) String() string { return w.b.String() }
