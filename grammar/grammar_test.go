package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"tapeir/grammar"
)

func TestParseFunctionWithArithmeticAndCall(t *testing.T) {
	src := `
fn f(x) {
	let y = x * 2.0 - 1.0;
	return y;
}

fn g(x) {
	return f(x) + 5.0;
}
`
	ast, err := grammar.ParseSource("test.tr", src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	assert.Len(t, ast.Functions, 2)

	f := ast.Functions[0]
	assert.Equal(t, "f", f.Name)
	assert.Equal(t, []string{"x"}, f.Params)
	assert.Len(t, f.Body.Statements, 2)

	let := f.Body.Statements[0].Let
	assert.NotNil(t, let)
	assert.Equal(t, "y", let.Name)
	assert.Len(t, let.Expr.Ops, 2)
	assert.Equal(t, "*", let.Expr.Ops[0].Operator)
	assert.Equal(t, "-", let.Expr.Ops[1].Operator)

	ret := f.Body.Statements[1].Return
	assert.NotNil(t, ret)
	assert.Equal(t, "y", *ret.Expr.Left.Value.Ident)

	g := ast.Functions[1]
	gret := g.Body.Statements[0].Return
	assert.NotNil(t, gret)
	call := gret.Expr.Left.Value.Call
	assert.NotNil(t, call)
	assert.Equal(t, "f", call.Name)
	assert.Len(t, call.Args, 1)
	assert.Len(t, gret.Expr.Ops, 1)
	assert.Equal(t, "+", gret.Expr.Ops[0].Operator)
}

func TestParseIfWhileAndAssign(t *testing.T) {
	src := `
fn loop(n) {
	let a = 1.0;
	while (n > 0.0) {
		a = a * 2.0;
		n = n - 1.0;
	}
	if (a > 10.0) {
		return a;
	} else {
		return 0.0;
	}
}
`
	ast, err := grammar.ParseSource("test.tr", src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	assert.Len(t, ast.Functions, 1)
	body := ast.Functions[0].Body.Statements
	assert.Len(t, body, 3)

	while := body[1].While
	assert.NotNil(t, while)
	assert.Len(t, while.Body.Statements, 2)
	assert.NotNil(t, while.Body.Statements[0].Assign)
	assert.Equal(t, "a", while.Body.Statements[0].Assign.Name)

	ifStmt := body[2].If
	assert.NotNil(t, ifStmt)
	assert.NotNil(t, ifStmt.Else)
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := grammar.ParseSource("bad.tr", "fn f(x) { let y = ; }")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bad.tr:1:")
}

func TestParseRejectsReservedParamName(t *testing.T) {
	_, err := grammar.ParseSource("bad.tr", "fn f(while) { return while; }")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reserved word")
}
