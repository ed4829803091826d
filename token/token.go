// Package token holds source positions and the reserved-word table for the
// demo tracer language. Lexing itself is participle's job (see grammar/); this
// package exists for the pieces participle's lexer.Position doesn't carry on
// its own — a renderable position type for diagnostics, and the keyword set
// grammar.ParseSource checks declared function and parameter names against
// (the lexer's identifier rule itself accepts keywords).
package token

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Pos is a source position attached to an AST node for error reporting. It
// wraps participle's lexer.Position rather than re-deriving line/column
// tracking by hand.
type Pos struct {
	lexer.Position
}

// String renders a position the way compiler diagnostics conventionally do:
// "line:column".
func (p Pos) String() string {
	if p.Line == 0 {
		return "?:?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Keyword identifies a reserved word of the demo language.
type Keyword string

const (
	KeywordFn     Keyword = "fn"
	KeywordLet    Keyword = "let"
	KeywordIf     Keyword = "if"
	KeywordElse   Keyword = "else"
	KeywordWhile  Keyword = "while"
	KeywordReturn Keyword = "return"
	KeywordTrue   Keyword = "true"
	KeywordFalse  Keyword = "false"
)

var keywords = map[string]Keyword{
	"fn":     KeywordFn,
	"let":    KeywordLet,
	"if":     KeywordIf,
	"else":   KeywordElse,
	"while":  KeywordWhile,
	"return": KeywordReturn,
	"true":   KeywordTrue,
	"false":  KeywordFalse,
}

// IsKeyword reports whether ident names a reserved word, and returns which
// one.
func IsKeyword(ident string) (Keyword, bool) {
	kw, ok := keywords[ident]
	return kw, ok
}
