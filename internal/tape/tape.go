package tape

import (
	"fmt"
	"reflect"
	"strings"
)

// Tape is an ordered container of operations, the foundation of the IR:
// every op's id equals its 1-indexed position, and every variable held
// anywhere inside the tape either addresses a position on it or is bound to
// one of its operations. Tape exclusively owns its operations; operations
// hold a back-pointer to their tape for convenience only.
type Tape struct {
	ops    []Operation
	Result Variable
	Parent *Tape
	Meta   map[string]any
	C      any
}

// New constructs an empty tape. ctx becomes the tape's application-defined
// context (Tape.C); a nil ctx defaults to an empty string-keyed map.
func New(ctx any) *Tape {
	if ctx == nil {
		ctx = make(map[string]any)
	}
	return &Tape{Meta: make(map[string]any), C: ctx}
}

// Len returns the number of operations on the tape.
func (t *Tape) Len() int {
	return len(t.ops)
}

// At returns the operation at the given 1-indexed position, panicking with a
// descriptive "missing key" error otherwise.
func (t *Tape) At(id int) Operation {
	if id < 1 || id > len(t.ops) {
		panic(fmt.Sprintf("tape: position %d out of range [1, %d]", id, len(t.ops)))
	}
	return t.ops[id-1]
}

// Get resolves v against this tape (equivalent to At(v.ID())).
func (t *Tape) Get(v Variable) Operation {
	return t.At(v.ID())
}

// Bound returns a bound variable equivalent to v.
func (t *Tape) Bound(v Variable) Variable {
	return boundVariable(t.At(v.ID()))
}

// Ops returns the tape's operations in order. The returned slice aliases the
// tape's internal storage; callers must not retain it across a mutation.
func (t *Tape) Ops() []Operation {
	return t.ops
}

// Inputs returns bound variables for every Input operation, in order.
func (t *Tape) Inputs() []Variable {
	var out []Variable
	for _, op := range t.ops {
		if inp, ok := op.(*Input); ok {
			out = append(out, boundVariable(inp))
		}
	}
	return out
}

// SetInputs implements inputs!: on an empty tape it pushes one Input per
// value; otherwise it overwrites the first N input values. When
// Meta["isva"] is true, the last declared input absorbs the tail of vals as
// a []any tuple.
func (t *Tape) SetInputs(vals ...any) error {
	if len(t.ops) == 0 {
		for _, v := range vals {
			inp := NewInput()
			inp.val = v
			t.Push(inp)
		}
		return nil
	}

	inputs := t.Inputs()
	isVararg, _ := t.Meta["isva"].(bool)
	if !isVararg {
		if len(vals) != len(inputs) {
			return fmt.Errorf("tape: inputs!: expected %d arguments, got %d", len(inputs), len(vals))
		}
		for i, in := range inputs {
			t.At(in.ID()).SetValue(vals[i])
		}
		return nil
	}

	n := len(inputs)
	if n == 0 {
		return fmt.Errorf("tape: inputs!: vararg tape declares no inputs")
	}
	if len(vals) < n-1 {
		return fmt.Errorf("tape: inputs!: expected at least %d arguments, got %d", n-1, len(vals))
	}
	for i := 0; i < n-1; i++ {
		t.At(inputs[i].ID()).SetValue(vals[i])
	}
	tail := append([]any(nil), vals[n-1:]...)
	t.At(inputs[n-1].ID()).SetValue(tail)
	return nil
}

// resolveAny reads the current value behind an operand: a bound Variable's
// operation value, an unbound Variable's position on this tape, or a
// literal passed through unchanged.
func (t *Tape) resolveAny(a any) any {
	if v, ok := a.(Variable); ok {
		if v.IsBound() {
			return v.op.Value()
		}
		return t.At(v.ID()).Value()
	}
	return a
}

// String renders the tape's textual form: a header naming the context type
// followed by one line per operation.
func (t *Tape) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tape{%s}\n", contextTypeName(t.C))
	for _, op := range t.ops {
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func contextTypeName(c any) string {
	if c == nil {
		return "nil"
	}
	return reflect.TypeOf(c).String()
}
