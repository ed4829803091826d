package tape

import "github.com/pkg/errors"

// IsPrimitive reports whether fn applied to args (already-resolved values)
// should be left as an opaque Call rather than inlined — the registered
// "stop here" predicate primitivize! consults before descending into a
// callee. args is passed through so a resolver-backed implementation can key
// on the call's full signature, not just fn's identity.
type IsPrimitive func(fn any, args []any) bool

// Tracer traces fn applied to args (already-resolved values, not operands)
// into a fresh, self-contained tape: one Input per argument, in order, and
// Result set to the operation computing fn's return value. Primitivize
// treats a nil tape (with no error) as "nothing to inline" and leaves the
// call as-is, matching a primitive with no recorded body.
//
// fn itself is never a sub-tape input: it is resolved to a concrete callable
// before tracing, so a Call whose own Fn is a Variable (dynamic dispatch)
// loses that dependency once inlined — there is nothing left in the outer
// tape that still needs to read it.
type Tracer func(fn any, args []any) (*Tape, error)

// Primitivize implements primitivize!: every Call whose callee is not
// primitive is replaced in place by the traced body of that callee, with the
// traced body's inputs rebound to the call's actual operands. When
// opts.Primitivize is set, inlining recurses into the spliced-in operations
// as well, fully flattening the call tree down to primitives.
func Primitivize(t *Tape, isPrimitive IsPrimitive, trace Tracer, opts Options) error {
	i := 1
	for i <= t.Len() {
		call, ok := t.At(i).(*Call)
		if !ok {
			i++
			continue
		}
		fnVal := t.resolveAny(call.Fn)
		argVals := make([]any, len(call.Args))
		for j, a := range call.Args {
			argVals[j] = t.resolveAny(a)
		}
		if isPrimitive(fnVal, argVals) {
			i++
			continue
		}

		sub, err := trace(fnVal, argVals)
		if err != nil {
			return errors.Wrapf(err, "primitivize: tracing %s", fnName(call.Fn))
		}
		if sub == nil || sub.Len() == 0 {
			i++
			continue
		}

		nInputs := len(sub.Inputs())
		body := append([]Operation(nil), sub.Ops()[nInputs:]...)
		if len(body) == 0 {
			i++
			continue
		}

		operandIDs, shift := hoistLiterals(t, i, call.Args)
		i += shift

		oldNew := make(map[int]int, nInputs)
		for j, inp := range sub.Inputs() {
			if j < len(operandIDs) {
				oldNew[inp.ID()] = operandIDs[j]
			}
		}

		t.Replace(i, body, WithRebindTo(resultIndex(sub, nInputs, body)), WithOldNew(oldNew), withSkipContext())

		if !opts.Primitivize {
			i += len(body)
		}
		// opts.Primitivize: leave i where the splice begins, so the next
		// loop iteration walks into the freshly inlined operations and
		// recurses.
	}
	return nil
}

// hoistLiterals inserts a Constant immediately before position at for every
// element of args that is not already a Variable, so that every argument has
// a concrete tape position to rebind a traced sub-tape's inputs onto. It
// returns the resulting operand position for each element, in order, and
// how far the call itself shifted right.
func hoistLiterals(t *Tape, at int, args []any) ([]int, int) {
	ids := make([]int, len(args))
	var literals []Operation
	for j, a := range args {
		if v, ok := a.(Variable); ok {
			ids[j] = v.ID()
			continue
		}
		literals = append(literals, NewConstant(a))
	}
	if len(literals) == 0 {
		return ids, 0
	}
	t.Insert(at, literals...)
	k := 0
	for j, a := range args {
		if _, ok := a.(Variable); ok {
			continue
		}
		ids[j] = at + k
		k++
	}
	return ids, len(literals)
}

// resultIndex locates which operation of a traced sub-tape's body, once
// spliced in, callers of the inlined call should be rebound to: the
// operation sub.Result names, or the body's last operation if the tracer
// left Result unset or pointed it at one of the dropped input slots.
func resultIndex(sub *Tape, nInputs int, body []Operation) int {
	if !sub.Result.IsZero() {
		resultID := sub.Result.ID()
		for k, op := range body {
			if op.ID() == resultID {
				return k
			}
		}
	}
	return len(body) - 1
}
