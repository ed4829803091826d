package grammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"tapeir/token"
)

var tracerParser = buildParser()

func buildParser() *participle.Parser[AST] {
	p, err := participle.Build[AST](
		participle.Lexer(TracerLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(4),
	)
	if err != nil {
		panic(fmt.Errorf("grammar: failed to build parser: %w", err))
	}
	return p
}

// ParseFile parses a whole source file into an AST.
func ParseFile(path string) (*AST, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grammar: failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses source under sourceName (used in error positions).
func ParseSource(sourceName, source string) (*AST, error) {
	ast, err := tracerParser.ParseString(sourceName, source)
	if err != nil {
		ReportParseError(source, err)
		return nil, err
	}
	if err := rejectReservedNames(ast); err != nil {
		color.Red("%s", err)
		return nil, err
	}
	return ast, nil
}

// rejectReservedNames rejects a function or parameter declared using one of
// the language's reserved words as its name — the lexer's Ident rule is
// happy to tokenize "fn" or "while" as a plain identifier, so nothing earlier
// in parsing catches this.
func rejectReservedNames(ast *AST) error {
	for _, fn := range ast.Functions {
		pos := token.Pos{Position: fn.Pos}
		if kw, ok := token.IsKeyword(fn.Name); ok {
			return fmt.Errorf("%s: function name %q is a reserved word (%s)", pos, fn.Name, kw)
		}
		for _, p := range fn.Params {
			if kw, ok := token.IsKeyword(p); ok {
				return fmt.Errorf("%s: parameter name %q is a reserved word (%s)", pos, p, kw)
			}
		}
	}
	return nil
}

// ReportParseError prints a friendly caret-style parse error message.
func ReportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
