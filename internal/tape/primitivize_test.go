package tape

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fOfX(x float64) float64 { return 2*x - 1 }

func funcIdentity(fn any) uintptr { return reflect.ValueOf(fn).Pointer() }

// TestPrimitivizeInlinesNonPrimitiveCall reproduces f(x) = 2x-1, g(x) =
// f(x)+5: *, -, + are primitive, f is not. After Primitivize the call to f
// is replaced by its traced body, and the surrounding +5 call is rebound to
// read the inlined subtraction's result.
func TestPrimitivizeInlinesNonPrimitiveCall(t *testing.T) {
	primitives := map[uintptr]bool{
		funcIdentity(mul): true,
		funcIdentity(sub): true,
		funcIdentity(add): true,
	}
	isPrimitive := func(fn any, args []any) bool { return primitives[funcIdentity(fn)] }

	trace := func(fn any, args []any) (*Tape, error) {
		if funcIdentity(fn) != funcIdentity(fOfX) {
			return nil, nil
		}
		subtape := New(nil)
		subtape.SetInputs(args[0])
		xIn := subtape.Inputs()[0]
		mulVar := subtape.Push(MkCall(mul, 2.0, xIn))
		subVar := subtape.Push(MkCall(sub, mulVar, 1.0))
		subtape.Result = subVar
		return subtape, nil
	}

	tp := New(nil)
	tp.SetInputs(nil, 3.0)
	xVar := tp.Inputs()[1]

	y := tp.Push(MkCall(fOfX, xVar))
	z := tp.Push(MkCall(add, y, 5.0))
	tp.Result = z

	err := Primitivize(tp, isPrimitive, trace, Options{})
	assert.NoError(t, err)
	assert.Equal(t, 5, tp.Len())

	mulOp := tp.At(3).(*Call)
	assert.Equal(t, funcIdentity(mul), funcIdentity(mulOp.Fn))
	assert.Equal(t, 2.0, mulOp.Args[0])
	assert.Equal(t, 2, mulOp.Args[1].(Variable).ID())

	subOp := tp.At(4).(*Call)
	assert.Equal(t, funcIdentity(sub), funcIdentity(subOp.Fn))
	assert.Equal(t, 3, subOp.Args[0].(Variable).ID())
	assert.Equal(t, 1.0, subOp.Args[1])

	addOp := tp.At(5).(*Call)
	assert.Equal(t, funcIdentity(add), funcIdentity(addOp.Fn))
	assert.Equal(t, 4, addOp.Args[0].(Variable).ID())
	assert.Equal(t, 5.0, addOp.Args[1])

	for i := 1; i <= tp.Len(); i++ {
		assert.Equal(t, i, tp.At(i).ID())
	}
}
