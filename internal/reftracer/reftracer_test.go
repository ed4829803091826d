package reftracer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tapeir/grammar"
	"tapeir/internal/tape"
)

func parse(t *testing.T, src string) *grammar.AST {
	t.Helper()
	ast, err := grammar.ParseSource("<test>", src)
	assert.NoError(t, err)
	return ast
}

func TestTraceAndPlayArithmetic(t *testing.T) {
	ast := parse(t, `
fn add(a, b) {
    return a + b;
}
`)
	prog := NewProgram(ast)

	tp, err := prog.TraceCall("add", []any{3.0, 4.0})
	assert.NoError(t, err)

	got, err := tape.Play(tp, 3.0, 4.0)
	assert.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestTraceIfBranchIsBakedIn(t *testing.T) {
	ast := parse(t, `
fn abs(x) {
    if (x < 0) {
        return 0 - x;
    } else {
        return x;
    }
}
`)
	prog := NewProgram(ast)

	tp, err := prog.TraceCall("abs", []any{-5.0})
	assert.NoError(t, err)

	got, err := tape.Play(tp, -5.0)
	assert.NoError(t, err)
	assert.Equal(t, 5.0, got)

	// Replaying with a value that would have taken the other branch is
	// still executed against the traced (negative) branch...
	got2, err := tape.Play(tp, 3.0)
	assert.NoError(t, err)
	assert.Equal(t, -3.0, got2)

	// ...and AssertBranches catches that the branch condition's value
	// changed from what was traced.
	opts := tape.DefaultOptions()
	opts.AssertBranches = true
	_, err = tape.PlayWith(tp, opts, 3.0)
	assert.Error(t, err)
}

func TestTraceWhileLoopDoubling(t *testing.T) {
	ast := parse(t, `
fn doubleNTimes(a, n) {
    while (n > 0) {
        a = a * 2;
        n = n - 1;
    }
    return a;
}
`)
	prog := NewProgram(ast)

	tp, err := prog.TraceCall("doubleNTimes", []any{2.0, 4.0})
	assert.NoError(t, err)

	got, err := tape.Play(tp, 2.0, 4.0)
	assert.NoError(t, err)
	assert.Equal(t, 32.0, got)

	got2, err := tape.Play(tp, 2.0, 5.0)
	assert.NoError(t, err)
	assert.Equal(t, 64.0, got2)
}

func TestPrimitivizeInlinesUserFunction(t *testing.T) {
	ast := parse(t, `
fn square(x) {
    return x * x;
}

fn sumSquares(a, b) {
    return square(a) + square(b);
}
`)
	prog := NewProgram(ast)

	tp, err := prog.TraceCall("sumSquares", []any{3.0, 4.0})
	assert.NoError(t, err)

	err = tape.Primitivize(tp, prog.IsPrimitive, prog.Trace, tape.DefaultOptions())
	assert.NoError(t, err)

	squareNative, err := prog.Native("square")
	assert.NoError(t, err)
	for _, op := range tp.Ops() {
		if call, ok := op.(*tape.Call); ok {
			assert.NotEqual(t, funcPtr(squareNative), funcPtr(call.Fn))
		}
	}

	got, err := tape.Play(tp, 3.0, 4.0)
	assert.NoError(t, err)
	assert.Equal(t, 25.0, got)
}

func TestIsPrimitiveDistinguishesBuiltinsFromUserFunctions(t *testing.T) {
	ast := parse(t, `
fn identity(x) {
    return x;
}
`)
	prog := NewProgram(ast)
	assert.True(t, prog.IsPrimitive(add, []any{1.0, 2.0}))
	assert.True(t, prog.IsPrimitive(mul, []any{1.0, 2.0}))

	native, err := prog.Native("identity")
	assert.NoError(t, err)
	assert.False(t, prog.IsPrimitive(native, []any{1.0}))
}
