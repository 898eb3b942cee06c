package kicadsexp

import (
	"strings"
	"testing"
)

func TestParseAtoms(t *testing.T) {
	sexps, err := ParseString(`(net 3 "/Power/+5V") (title "A \"quoted\" name")`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	if len(sexps) != 2 {
		t.Fatalf("expected 2 expressions, got %d", len(sexps))
	}

	net := sexps[0].(*List)
	if net.Name() != "net" {
		t.Errorf("Name() = %q, want net", net.Name())
	}
	if _, ok := net.Get(1).(Symbol); !ok {
		t.Errorf("net number should be a Symbol, got %T", net.Get(1))
	}
	if v, ok := net.Get(2).(QString); !ok || string(v) != "/Power/+5V" {
		t.Errorf("net name = %#v, want QString /Power/+5V", net.Get(2))
	}

	title := sexps[1].(*List)
	if v, _ := Atom(title.Get(1)); v != `A "quoted" name` {
		t.Errorf("escaped string = %q", v)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed list", "(kicad_pcb (version 1)"},
		{"stray close", ")"},
		{"unterminated string", `(title "abc`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseString(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestHashIsSymbolCharacter(t *testing.T) {
	sexps, err := ParseString(`(property Reference #PWR01)`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	list := sexps[0].(*List)
	if list.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", list.Len())
	}
	if v, _ := Atom(list.Get(2)); v != "#PWR01" {
		t.Errorf("got %q, want #PWR01", v)
	}
}

func TestListEditing(t *testing.T) {
	l := NewList(Symbol("members"), QString("a"), QString("c"))
	l.Insert(2, QString("b"))
	if got := l.String(); got != `(members "a" "b" "c")` {
		t.Errorf("after Insert: %s", got)
	}
	l.Remove(1)
	if got := l.String(); got != `(members "b" "c")` {
		t.Errorf("after Remove: %s", got)
	}
	l.Truncate(1)
	if got := l.String(); got != `(members)` {
		t.Errorf("after Truncate: %s", got)
	}

	child := NewList(Symbol("at"), Symbol("1"), Symbol("2"))
	parent := NewList(Symbol("via"), child)
	clone := parent.Clone()
	child.Set(1, Symbol("9"))
	if got := clone.String(); got != "(via (at 1 2))" {
		t.Errorf("clone shares children: %s", got)
	}
	if !parent.RemoveNode(child) || parent.Len() != 1 {
		t.Errorf("RemoveNode did not remove child: %s", parent)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	input := `(kicad_pcb (version 20221018) (generator pcbnew)
		(net 0 "")
		(segment (start 1 2) (end 3 4) (width 0.25) (layer "F.Cu") (net 0) (tstamp 5d3a))
		(gr_text "multi\nline" (at 10 20 90) (layer "F.SilkS")))`

	sexps, err := ParseString(input)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	out := Format(sexps[0])
	again, err := ParseString(out)
	if err != nil {
		t.Fatalf("re-parse of written output failed: %v\n%s", err, out)
	}
	if sexps[0].String() != again[0].String() {
		t.Errorf("round trip changed the tree:\n%s\n%s", sexps[0], again[0])
	}
	if !strings.Contains(out, "\n\t(segment (start 1 2) (end 3 4)") {
		t.Errorf("expected segment on its own indented line:\n%s", out)
	}
}

func TestUnknownEscapeSurvivesRoundTrip(t *testing.T) {
	sexps, err := ParseString(`(gr_text "C:\pcb\lib \"x\"")`)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	want := `C:\pcb\lib "x"`
	if v, _ := Atom(sexps[0].(*List).Get(1)); v != want {
		t.Fatalf("string = %q, want %q", v, want)
	}

	again, err := ParseString(Format(sexps[0]))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if v, _ := Atom(again[0].(*List).Get(1)); v != want {
		t.Errorf("after round trip string = %q, want %q", v, want)
	}
}
