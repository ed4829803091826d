package tape

import (
	"fmt"

	"github.com/pkg/errors"
)

// execLoop drives a Loop's sub-tape to fixpoint: seed it from the parent
// tape's current values for ParentInputs, play it, and — while Condition
// resolves true — reseed it from ContVars and play again. The loop's own
// value becomes the tuple of values exitValues computes once Condition goes
// false.
func execLoop(t *Tape, l *Loop, opts Options, debug bool) error {
	if err := checkConditionDistinct(l); err != nil {
		return err
	}

	sub := l.Subtape
	parentVals := make([]any, len(l.ParentInputs))
	for i, v := range l.ParentInputs {
		parentVals[i] = t.resolveAny(v)
	}
	if err := sub.SetInputs(parentVals...); err != nil {
		return errors.Wrap(err, "loop: seeding initial iteration")
	}

	for iter := 0; ; iter++ {
		if err := play(sub, opts, debug); err != nil {
			return errors.Wrapf(err, "loop: iteration %d", iter)
		}
		cont, ok := sub.resolveAny(l.Condition).(bool)
		if !ok {
			return fmt.Errorf("loop: condition did not resolve to a bool on iteration %d", iter)
		}
		if !cont {
			break
		}

		nextVals := make([]any, len(l.ContVars))
		for i, v := range l.ContVars {
			nextVals[i] = sub.resolveAny(v)
		}
		if err := sub.SetInputs(nextVals...); err != nil {
			return errors.Wrapf(err, "loop: seeding iteration %d", iter+1)
		}
	}

	l.SetValue(exitValues(sub, l, sub.Len()+1))
	return nil
}

// checkConditionDistinct guards the one-condition-per-iteration assumption
// exitValues relies on: if the condition operation also appears among the
// loop's own continuation variables, a single evaluation of that operation
// within a pass would have to serve both as this iteration's continue
// decision and as the value exitValues projects for the next iteration —
// the straddling case exitValues does not attempt to compute correctly.
func checkConditionDistinct(l *Loop) error {
	condOp := l.Condition.Op()
	if condOp == nil {
		return nil
	}
	for i, v := range l.ContVars {
		if v.Op() == condOp {
			return fmt.Errorf("loop: condition operation also serves as cont_var %d; it would be evaluated a second time within one pass", i)
		}
	}
	return nil
}

// exitValues decides what loop_exit_vars_at_point means in practice: for
// sub-tape position vi, exit variable i is taken from ExitVars[i] if vi is
// past the position of the continuation variable it pairs with
// (ContVars[i]), and otherwise from the sub-tape's i-th Input. execLoop calls
// it with vi one past the sub-tape's last position, after a full pass, so
// there every exit variable is read from ExitVars. ContVars and ExitVars are
// assumed parallel by index to ParentInputs.
func exitValues(sub *Tape, l *Loop, vi int) []any {
	inputs := sub.Inputs()
	out := make([]any, len(l.ExitVars))
	for i, ev := range l.ExitVars {
		if i < len(l.ContVars) && vi > l.ContVars[i].ID() {
			out[i] = sub.resolveAny(ev)
			continue
		}
		if i < len(inputs) {
			out[i] = sub.resolveAny(inputs[i])
			continue
		}
		out[i] = sub.resolveAny(ev)
	}
	return out
}
