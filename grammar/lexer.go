package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TracerLexer tokenizes the demo tracer language: arithmetic, comparisons,
// let/if/while/return and calls. A single "Root" state suffices — there is
// no string interpolation or doc-comment nesting to carry extra lexer
// states for, unlike the grammar this one is adapted from.
var TracerLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Float", `[0-9]+\.[0-9]+`, nil},
		{"Int", `[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Operator", `(\|\||&&|==|!=|<=|>=|[-+*/%<>=!])`, nil},
		{"Punctuation", `[{}()\[\],;]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
