package cpp

import (
	"fmt"
	"strings"
)

const indentUnit = "  "

// writer accumulates indented source lines.
type writer struct {
	lines  []string
	indent int
}

func (w *writer) line(format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	w.lines = append(w.lines, strings.Repeat(indentUnit, w.indent)+text)
}

func (w *writer) blank() {
	w.lines = append(w.lines, "")
}

// open writes a line ending a block opener and indents what follows.
func (w *writer) open(format string, args ...any) {
	w.line(format, args...)
	w.indent++
}

func (w *writer) close(text string) {
	w.indent--
	w.line("%s", text)
}

// returnFalseIf writes an if statement that returns false when cond holds.
func (w *writer) returnFalseIf(cond string) {
	w.open("if (%s) {", cond)
	w.line("return false;")
	w.close("}")
}

func (w *writer) returnEmptyIf(cond string) {
	w.open("if (%s) {", cond)
	w.line("return {};")
	w.close("}")
}

func (w *writer) String() string {
	return strings.Join(w.lines, "\n") + "\n"
}
