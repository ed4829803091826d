package tape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariableEqualBoundToSameOp(t *testing.T) {
	tp := buildInputTape(t, 1.0, 2.0)
	v1 := tp.Inputs()[0]
	v1Again := tp.Bound(UnboundVariable(v1.ID()))

	assert.True(t, v1.Equal(v1Again))
	assert.Equal(t, v1.Hash(), v1Again.Hash())
}

func TestVariableEqualBoundToDifferentOps(t *testing.T) {
	tp := buildInputTape(t, 1.0, 2.0)
	inputs := tp.Inputs()

	assert.False(t, inputs[0].Equal(inputs[1]))
	assert.NotEqual(t, inputs[0].Hash(), inputs[1].Hash())
}

func TestVariableEqualUnboundSameID(t *testing.T) {
	a := UnboundVariable(3)
	b := UnboundVariable(3)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestVariableEqualBoundVsUnboundSamePositionAreNotEqual(t *testing.T) {
	tp := buildInputTape(t, 1.0)
	bound := tp.Inputs()[0]
	unbound := UnboundVariable(bound.ID())

	// A bound variable names a specific operation, not a position; even
	// though both currently address position 1, they are not the same
	// reference.
	assert.False(t, bound.Equal(unbound))
}

func TestVariableHashSurvivesRenumbering(t *testing.T) {
	tp := buildInputTape(t, 1.0)
	v1 := tp.Inputs()[0]
	before := v1.Hash()

	tp.Insert(1, NewConstant(0.0))
	assert.Equal(t, 2, v1.ID())
	assert.Equal(t, before, v1.Hash(), "bound variable's hash must not change when its position does")
}

func TestVariableHashTracksRebindTarget(t *testing.T) {
	tp := buildInputTape(t, nil, 3.0, 5.0)
	inputs := tp.Inputs()
	v1, v2 := inputs[1], inputs[2]

	v3 := tp.Push(MkCall(mul, v1, 2.0))
	v3Op := tp.Get(v3)
	holder := tp.Push(MkCall(add, boundVariable(v3Op), 1.0))

	tp.Rebind(map[int]int{v3.ID(): v2.ID()}, 1, tp.Len())

	rebound := tp.Get(holder).(*Call).Args[0].(Variable)
	assert.True(t, rebound.Equal(v2))
	assert.Equal(t, rebound.Hash(), v2.Hash())
}
