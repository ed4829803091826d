package tape

import "fmt"

// This file implements the tape's mutation algebra. Every operator here
// preserves: (i) op.ID() == position, (ii) variable
// back-references to affected operations remain valid, (iii) Tape.Result
// still addresses a real operation, (iv) identity of bound variables to
// un-moved operations is preserved.

// Push appends op to the tape, assigning it the next id, and returns a
// bound variable to it.
func (t *Tape) Push(op Operation) Variable {
	op.setID(len(t.ops) + 1)
	op.setTape(t)
	t.ops = append(t.ops, op)
	return boundVariable(op)
}

// Insert places ops at position idx (1-indexed), shifting every operation
// already at position >= idx to the right. Bound variables to any
// operation — moved or not — remain correct, since their id reads through to
// the operation's own, freshly-updated id field.
func (t *Tape) Insert(idx int, ops ...Operation) []Variable {
	if idx < 1 || idx > len(t.ops)+1 {
		panic(fmt.Sprintf("tape: insert: index out of range [1, %d]: %d", len(t.ops)+1, idx))
	}
	n := len(ops)
	if n == 0 {
		return nil
	}

	t.ops = append(t.ops, make([]Operation, n)...)
	copy(t.ops[idx-1+n:], t.ops[idx-1:len(t.ops)-n])
	for i, op := range ops {
		op.setTape(t)
		t.ops[idx-1+i] = op
	}
	for i := idx; i <= len(t.ops); i++ {
		t.ops[i-1].setID(i)
	}

	vars := make([]Variable, n)
	for i, op := range ops {
		vars[i] = boundVariable(op)
	}
	return vars
}

// Setitem overwrites the operation at v's current position with newOp,
// giving newOp that same id, and returns a bound variable to newOp. Any
// other holder of a bound variable to the *old* operation is now dangling by
// construction — setitem never rebinds the tape's other references; that is
// what replace! is for.
func (t *Tape) Setitem(v Variable, newOp Operation) Variable {
	id := v.ID()
	_ = t.At(id) // bounds-check
	newOp.setID(id)
	newOp.setTape(t)
	t.ops[id-1] = newOp
	return boundVariable(newOp)
}

// ReplaceOption configures Replace.
type ReplaceOption func(*replaceConfig)

type replaceConfig struct {
	rebindTo    *int
	oldNew      map[int]int
	skipContext bool
}

// withSkipContext suppresses the context-rebind hook for this Replace call.
// Primitivize uses this: the primitivizer deliberately does not mutate the
// tape context, even though it rewrites operations through the same
// replace!/rebind! machinery every other mutator uses.
func withSkipContext() ReplaceOption {
	return func(c *replaceConfig) { c.skipContext = true }
}

// WithRebindTo selects which of the replacement operations (0-indexed)
// callers of the replaced operation should be redirected to. Defaults to the
// last of the replacement operations.
func WithRebindTo(i int) ReplaceOption {
	return func(c *replaceConfig) { c.rebindTo = &i }
}

// WithOldNew supplies additional substitutions applied across the spliced-in
// replacement operations themselves (not the tape's tail) before the
// standard tail rebind runs. Primitivize uses this to thread an inlined
// sub-tape's inputs back to the caller's original arguments.
func WithOldNew(m map[int]int) ReplaceOption {
	return func(c *replaceConfig) { c.oldNew = m }
}

// Replace overwrites the operation at idx with newOps[0], inserts any
// further elements of newOps immediately after it, and rebinds references so
// that downstream users of the replaced operation, Tape.Result included, now
// see newOps[rebindTo].
// It returns a bound variable to newOps[rebindTo].
func (t *Tape) Replace(idx int, newOps []Operation, opts ...ReplaceOption) Variable {
	if len(newOps) == 0 {
		panic("tape: replace requires at least one operation")
	}
	cfg := &replaceConfig{}
	for _, o := range opts {
		o(cfg)
	}
	rebindTo := len(newOps) - 1
	if cfg.rebindTo != nil {
		rebindTo = *cfg.rebindTo
	}

	wasTail := idx == len(t.ops)
	t.Setitem(UnboundVariable(idx), newOps[0])

	if len(newOps) > 1 {
		if wasTail {
			for _, op := range newOps[1:] {
				t.Push(op)
			}
		} else {
			t.Insert(idx+1, newOps[1:]...)
		}
	}

	rebind := t.Rebind
	if cfg.skipContext {
		rebind = t.rebindOps
	}

	if len(cfg.oldNew) > 0 {
		// Scoped to the spliced-in range only: these keys are positions on
		// the detached sub-tape the replacement operations came from, which
		// would otherwise collide with unrelated low ids elsewhere on this
		// tape.
		rebind(cfg.oldNew, idx, idx+len(newOps)-1)
	}

	tailSub := map[int]int{idx: newOps[rebindTo].ID()}
	rebind(tailSub, idx+len(newOps), t.Len())
	t.Result = rebindVariable(t, t.Result, tailSub)

	return boundVariable(newOps[rebindTo])
}

// Deleteat removes the operation at idx. If rebindTo is given, references to
// the deleted operation are redirected to the operation now addressed by
// rebindTo; a deleted operation with live downstream users and no rebindTo
// is the caller's contract violation and yields a dangling unbound
// reference.
func (t *Tape) Deleteat(idx int, rebindTo ...int) {
	_ = t.At(idx)
	t.ops = append(t.ops[:idx-1], t.ops[idx:]...)

	if len(rebindTo) > 0 {
		sub := map[int]int{idx: rebindTo[0]}
		t.Rebind(sub, idx, t.Len())
		t.Result = rebindVariable(t, t.Result, sub)
	}

	for i := idx; i <= len(t.ops); i++ {
		t.ops[i-1].setID(i)
	}
}
