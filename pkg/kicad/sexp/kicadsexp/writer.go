package kicadsexp

import (
	"bufio"
	"io"
	"strings"
)

// maxInline is the widest list written on a single line when it has no
// nested lists.
const maxInline = 100

// Write formats the expression the way KiCad does: a list holding sub-lists
// opens a new indented line per sub-list, flat lists stay on one line.
func Write(w io.Writer, s Sexp) error {
	bw := bufio.NewWriter(w)
	writeExpr(bw, s, 0)
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// Format returns the written form of s as a string.
func Format(s Sexp) string {
	var b strings.Builder
	_ = Write(&b, s)
	return b.String()
}

func writeExpr(w *bufio.Writer, s Sexp, depth int) {
	list, ok := s.(*List)
	if !ok {
		w.WriteString(s.String())
		return
	}
	if isFlat(list) {
		w.WriteString(list.String())
		return
	}

	w.WriteByte('(')
	for i, elem := range list.elements {
		sub, isList := elem.(*List)
		switch {
		case isList:
			w.WriteByte('\n')
			w.WriteString(strings.Repeat("\t", depth+1))
			writeExpr(w, sub, depth+1)
		case i > 0:
			w.WriteByte(' ')
			w.WriteString(elem.String())
		default:
			w.WriteString(elem.String())
		}
	}
	w.WriteByte('\n')
	w.WriteString(strings.Repeat("\t", depth))
	w.WriteByte(')')
}

// isFlat reports whether a list is short enough and shallow enough to sit
// on one line. Points such as (xy 1 2) and (at 1 2 90) always are.
func isFlat(l *List) bool {
	width := 2
	for _, elem := range l.elements {
		sub, ok := elem.(*List)
		if ok {
			if !isPoint(sub) {
				return false
			}
		}
		width += len(elem.String()) + 1
		if width > maxInline {
			return false
		}
	}
	return true
}

func isPoint(l *List) bool {
	switch l.Name() {
	case "xy", "at", "start", "mid", "end", "center", "size", "width", "layer", "net", "uuid", "tstamp", "id":
		for _, elem := range l.elements {
			if !elem.IsLeaf() {
				return false
			}
		}
		return true
	}
	return false
}

// quote escapes a string value for output.
func quote(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 2)
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
