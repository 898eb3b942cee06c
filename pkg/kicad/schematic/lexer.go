package schematic

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SchematicLexer splits a .kicad_sch file into parentheses, quoted strings
// and bare atoms. Everything that is not a parenthesis, quote or whitespace
// belongs to an atom, so numbers, keywords and symbols such as #PWR01 all
// come out as a single Atom token.
var SchematicLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Whitespace
	{Name: "Whitespace", Pattern: `[\s]+`},

	// String literals with escape sequences
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},

	// Parentheses
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},

	// Bare atoms: keywords, numbers, identifiers
	{Name: "Atom", Pattern: `[^\s()"]+`},
})
