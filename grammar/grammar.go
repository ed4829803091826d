// Package grammar defines the AST and participle grammar for the demo
// tracer language: a tiny dynamically-typed expression language with
// let-bindings, if/else, while loops, and function calls, traced into a
// tape by internal/reftracer.
package grammar

import "github.com/alecthomas/participle/v2/lexer"

// AST is the parse result of a whole source file: zero or more function
// declarations.
type AST struct {
	Functions []*Function `@@*`
}

// Function is "fn name(params) { body }". Pos is populated by participle
// automatically (field name and type are the convention it looks for) and
// anchors this function's declaration-site diagnostics.
type Function struct {
	Pos    lexer.Position
	Name   string   `"fn" @Ident "("`
	Params []string `[ @Ident { "," @Ident } ] ")"`
	Body   *Block   `@@`
}

// Block is a brace-delimited statement sequence.
type Block struct {
	Statements []*Statement `"{" @@* "}"`
}

// Statement is one of the six statement forms. Field order is the
// disjunction order participle tries them in; Assign must be tried before
// ExprStmt's bare-identifier-call case to avoid prefix ambiguity.
type Statement struct {
	Let    *LetStmt    `  @@`
	If     *IfStmt     `| @@`
	While  *WhileStmt  `| @@`
	Return *ReturnStmt `| @@`
	Assign *AssignStmt `| @@`
	Expr   *ExprStmt   `| @@`
}

// LetStmt is "let name = expr ;".
type LetStmt struct {
	Name string `"let" @Ident "="`
	Expr *Expr  `@@ ";"`
}

// AssignStmt is "name = expr ;".
type AssignStmt struct {
	Name string `@Ident "="`
	Expr *Expr  `@@ ";"`
}

// IfStmt is "if ( cond ) block [else block]".
type IfStmt struct {
	Cond *Expr  `"if" "(" @@ ")"`
	Then *Block `@@`
	Else *Block `[ "else" @@ ]`
}

// WhileStmt is "while ( cond ) block".
type WhileStmt struct {
	Cond *Expr `"while" "(" @@ ")"`
	Body *Block `@@`
}

// ReturnStmt is "return [expr] ;".
type ReturnStmt struct {
	Expr *Expr `"return" [ @@ ] ";"`
}

// ExprStmt is a bare expression statement, used for calls evaluated for
// side effect.
type ExprStmt struct {
	Expr *Expr `@@ ";"`
}

// Expr is a flat operator sequence. reftracer (both the tracer and its
// concrete interpreter) applies the operators strictly left to right with no
// precedence between them, so "a + b * c" means "(a + b) * c"; parentheses
// are the only way to group.
type Expr struct {
	Left *Unary   `@@`
	Ops  []*BinOp `{ @@ }`
}

// BinOp is one infix operator application.
type BinOp struct {
	Operator string `@("||" | "&&" | "==" | "!=" | "<=" | ">=" | "<" | ">" | "+" | "-" | "*" | "/" | "%")`
	Right    *Unary `@@`
}

// Unary is an optional prefix operator over a primary expression.
type Unary struct {
	Operator *string  `[ @("-" | "!") ]`
	Value    *Primary `@@`
}

// Primary is a call, a bare identifier, a literal, or a parenthesized
// sub-expression.
type Primary struct {
	Call   *CallExpr `  @@`
	Ident  *string   `| @Ident`
	Float  *float64  `| @Float`
	Int    *int64    `| @Int`
	True   bool      `| @"true"`
	False  bool      `| @"false"`
	Parens *Expr     `| "(" @@ ")"`
}

// CallExpr is "name(args,...)".
type CallExpr struct {
	Name string  `@Ident "("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}
