package schematic

// File is the grammar root: a schematic is a single list.
type File struct {
	Root *List `parser:"@@"`
}

// List is a parenthesized expression. KiCad lists always open with a
// keyword, e.g. (sheet (at 10 20) ...).
type List struct {
	Head  string  `parser:"LParen @Atom?"`
	Items []*Expr `parser:"@@* RParen"`
}

// Expr is one element of a list
type Expr struct {
	List *List   `parser:"  @@"`
	Str  *string `parser:"| @String"`
	Atom *string `parser:"| @Atom"`
}

// Value returns the text of an atom or string, or "" for a list.
func (e *Expr) Value() string {
	switch {
	case e == nil:
		return ""
	case e.Str != nil:
		return *e.Str
	case e.Atom != nil:
		return *e.Atom
	}
	return ""
}

// Find returns the first child list named head.
func (l *List) Find(head string) (*List, bool) {
	for _, item := range l.Items {
		if item.List != nil && item.List.Head == head {
			return item.List, true
		}
	}
	return nil, false
}

// FindAll returns every child list named head.
func (l *List) FindAll(head string) []*List {
	var out []*List
	for _, item := range l.Items {
		if item.List != nil && item.List.Head == head {
			out = append(out, item.List)
		}
	}
	return out
}

// Arg returns the i-th value after the head, or "" when absent.
func (l *List) Arg(i int) string {
	if i < 0 || i >= len(l.Items) {
		return ""
	}
	return l.Items[i].Value()
}
