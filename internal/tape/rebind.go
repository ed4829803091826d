package tape

// Rebind implements rebind!: every reference to a position named in sub,
// within the id range [from, to] inclusive, is rewritten to
// address sub's replacement position instead. It walks operands (Call.Fn,
// Call.Args, Loop.ParentInputs/Condition/ContVars/ExitVars) plus, when the
// tape's context implements ContextRebinder, application-defined state
// attached to C.
func (t *Tape) Rebind(sub map[int]int, from, to int) {
	t.rebindOps(sub, from, to)
	if hook, ok := t.C.(ContextRebinder); ok {
		hook.RebindContext(sub)
	}
}

// rebindOps is Rebind without the trailing context-hook invocation, for
// callers — Primitivize, specifically — that must leave the tape context
// untouched even though they rewrite operations through the same
// substitution mechanism.
func (t *Tape) rebindOps(sub map[int]int, from, to int) {
	if len(sub) == 0 {
		return
	}
	if from < 1 {
		from = 1
	}
	if to > t.Len() {
		to = t.Len()
	}
	for i := from; i <= to; i++ {
		rebindOperation(t, t.ops[i-1], sub)
	}
}

// ContextRebinder lets an application-defined tape context (Tape.C)
// participate in rebind!, for a context that carries references to tape
// positions in side tables a plain walk over operations can't reach.
type ContextRebinder interface {
	RebindContext(sub map[int]int)
}

func rebindOperation(t *Tape, op Operation, sub map[int]int) {
	switch o := op.(type) {
	case *Call:
		o.Fn = rebindOperand(t, o.Fn, sub)
		for i, a := range o.Args {
			o.Args[i] = rebindOperand(t, a, sub)
		}
	case *Loop:
		for i, v := range o.ParentInputs {
			o.ParentInputs[i] = rebindVariable(t, v, sub)
		}
		o.Condition = rebindVariable(t, o.Condition, sub)
		for i, v := range o.ContVars {
			o.ContVars[i] = rebindVariable(t, v, sub)
		}
		for i, v := range o.ExitVars {
			o.ExitVars[i] = rebindVariable(t, v, sub)
		}
	}
}

func rebindOperand(t *Tape, a any, sub map[int]int) any {
	if v, ok := a.(Variable); ok {
		return rebindVariable(t, v, sub)
	}
	return a
}

// rebindVariable rewrites v's id when sub names it, preserving v's
// bound/unbound mode. An unbound v is rewritten to a new positional
// reference. A bound v is re-pointed at whatever operation now occupies the
// substitute position — it keeps tracking "the operation currently at this
// position" as a live binding rather than degrading to a stale positional
// id, so a later structural edit that shifts the substitute position again
// still resolves correctly through Tape.Get.
func rebindVariable(t *Tape, v Variable, sub map[int]int) Variable {
	newID, ok := sub[v.ID()]
	if !ok {
		return v
	}
	if !v.IsBound() {
		return UnboundVariable(newID)
	}
	return t.Bound(UnboundVariable(newID))
}
