package tape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func gt(a, b float64) bool { return a > b }

// buildDoublingLoop builds, by hand (no tracer involved), the equivalent of
//
//	while n > 0: a = 2*a; n = n - 1
//
// as a Loop operation on a fresh outer tape with inputs (a, n).
func buildDoublingLoop(t *testing.T) *Tape {
	t.Helper()
	outer := New(nil)
	outer.SetInputs(0.0, 0.0)
	outerInputs := outer.Inputs()
	a0, n0 := outerInputs[0], outerInputs[1]

	sub := New(nil)
	sub.SetInputs(0.0, 0.0)
	subInputs := sub.Inputs()
	aIn, nIn := subInputs[0], subInputs[1]

	condVar := sub.Push(MkCallWithValue(gt, Unknown, nIn, 0.0))
	newAVar := sub.Push(MkCallWithValue(mul, Unknown, 2.0, aIn))
	newNVar := sub.Push(MkCallWithValue(decr, Unknown, nIn, 1.0))

	loop := &Loop{
		header:       newHeader(),
		ParentInputs: []Variable{a0, n0},
		Condition:    condVar,
		ContVars:     []Variable{newAVar, newNVar},
		ExitVars:     []Variable{aIn, nIn},
		Subtape:      sub,
	}
	loopVar := outer.Push(loop)
	resultVar := outer.Push(MkCallWithValue(firstOf, Unknown, loopVar))
	outer.Result = resultVar
	return outer
}

// firstOf projects the first element out of a Loop's exit-value tuple —
// standing in for whatever destructuring a real tracer would record after a
// loop expression.
func firstOf(tuple []any) float64 { return tuple[0].(float64) }

func decr(a, b float64) float64 { return a - b }

func TestLoopConditionDoublingAsContVarRejected(t *testing.T) {
	outer := New(nil)
	outer.SetInputs(0.0, 0.0)
	outerInputs := outer.Inputs()
	a0, n0 := outerInputs[0], outerInputs[1]

	sub := New(nil)
	sub.SetInputs(0.0, 0.0)
	subInputs := sub.Inputs()
	aIn, nIn := subInputs[0], subInputs[1]

	condVar := sub.Push(MkCallWithValue(gt, Unknown, nIn, 0.0))
	newAVar := sub.Push(MkCallWithValue(mul, Unknown, 2.0, aIn))

	loop := &Loop{
		header:       newHeader(),
		ParentInputs: []Variable{a0, n0},
		Condition:    condVar,
		// condVar doubling as its own cont_var: the straddling case
		// checkConditionDistinct rejects.
		ContVars: []Variable{newAVar, condVar},
		ExitVars: []Variable{aIn, nIn},
		Subtape:  sub,
	}
	outer.Push(loop)

	err := execLoop(outer, loop, DefaultOptions(), false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "evaluated a second time")
}

func TestLoopReexecution(t *testing.T) {
	outer := buildDoublingLoop(t)

	got, err := Play(outer, 2.0, 4.0)
	assert.NoError(t, err)
	assert.Equal(t, 32.0, got)

	got2, err := Play(outer, 2.0, 5.0)
	assert.NoError(t, err)
	assert.Equal(t, 64.0, got2)
}
