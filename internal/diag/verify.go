package diag

import "tapeir/internal/tape"

// Verify checks the invariants that must hold after every public tape
// mutation: every operation's id equals its position, the result variable
// (if set) addresses a real operation, and every Loop's condition is
// distinct from its own continuation variables. It is meant for debug-mode
// use, not the hot path of play!/primitivize!.
func Verify(t *tape.Tape) []*Diagnostic {
	var diags []*Diagnostic
	for i := 1; i <= t.Len(); i++ {
		op := t.At(i)
		if op.ID() != i {
			diags = append(diags, New(CodeStaleReference, "operation at position %d reports id %d", i, op.ID()).At(i))
		}
		if loop, ok := op.(*tape.Loop); ok {
			if d := checkLoopCondition(loop, i); d != nil {
				diags = append(diags, d)
			}
		}
	}
	if !t.Result.IsZero() {
		id := t.Result.ID()
		if id < 1 || id > t.Len() {
			diags = append(diags, OutOfRange(id, t.Len()).WithNote("tape.Result addresses no operation"))
		}
	}
	return diags
}

// checkLoopCondition flags a Loop whose condition operation also appears
// among its own continuation variables — the one evaluation that operation
// gets per pass would have to serve both as the continue decision and as a
// carried value, the straddling case loopexec.exitValues does not cover.
func checkLoopCondition(l *tape.Loop, pos int) *Diagnostic {
	condOp := l.Condition.Op()
	if condOp == nil {
		return nil
	}
	for i, v := range l.ContVars {
		if v.Op() == condOp {
			return New(CodeLoopConditionBad, "loop condition at %%%d also serves as cont_var %d", pos, i).
				At(pos).
				WithNote("the condition would be evaluated a second time within one iteration, straddling the reset point").
				WithHelp("give the condition its own operation, separate from any loop-carried variable")
		}
	}
	return nil
}
