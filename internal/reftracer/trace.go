package reftracer

import (
	"fmt"

	"tapeir/grammar"
	"tapeir/internal/tape"
)

// tracer carries the state threaded through one TraceCall invocation: the function table (for resolving calls), the owning Program
// (for native-closure identity), and the options this trace runs under.
type tracer struct {
	prog  *Program
	funcs map[string]*grammar.Function
	opts  tape.Options
}

// traceBlock pushes operations for every statement of blk onto t, using and
// updating env, and reports whether a return statement was hit along with
// its operand (a tape.Variable, a literal, or nil for a bare "return;").
func (tr *tracer) traceBlock(t *tape.Tape, blk *grammar.Block, env map[string]tape.Variable) (any, bool, error) {
	for _, s := range blk.Statements {
		switch {
		case s.Let != nil:
			v, err := tr.traceExpr(t, env, s.Let.Expr)
			if err != nil {
				return nil, false, err
			}
			env[s.Let.Name] = bind(t, v)
		case s.Assign != nil:
			v, err := tr.traceExpr(t, env, s.Assign.Expr)
			if err != nil {
				return nil, false, err
			}
			env[s.Assign.Name] = bind(t, v)
		case s.Return != nil:
			if s.Return.Expr == nil {
				return nil, true, nil
			}
			v, err := tr.traceExpr(t, env, s.Return.Expr)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		case s.If != nil:
			result, returned, err := tr.traceIf(t, s.If, env)
			if err != nil {
				return nil, false, err
			}
			if returned {
				return result, true, nil
			}
		case s.While != nil:
			if err := tr.traceWhile(t, s.While, env); err != nil {
				return nil, false, err
			}
		case s.Expr != nil:
			if _, err := tr.traceExpr(t, env, s.Expr.Expr); err != nil {
				return nil, false, err
			}
		}
	}
	return nil, false, nil
}

// bind materializes operand as a tape.Variable: an existing Variable passes
// through, a literal gets pushed as a Constant. Let/Assign targets are
// always bound so later reads always resolve to a real tape position.
func bind(t *tape.Tape, operand any) tape.Variable {
	if v, ok := operand.(tape.Variable); ok {
		return v
	}
	return t.Push(tape.NewConstant(operand))
}

// concreteOf reads the current value behind a traced operand: a bound
// Variable's operation value, or a literal unchanged.
func concreteOf(operand any) any {
	if v, ok := operand.(tape.Variable); ok {
		return v.Op().Value()
	}
	return operand
}

func (tr *tracer) traceIf(t *tape.Tape, s *grammar.IfStmt, env map[string]tape.Variable) (any, bool, error) {
	cond, err := tr.traceExpr(t, env, s.Cond)
	if err != nil {
		return nil, false, err
	}
	markBranch(cond)

	concrete := concreteOf(cond)
	if concrete == tape.Unknown {
		return nil, false, fmt.Errorf("if condition could not be determined at trace time")
	}

	taken := s.Then
	if !toB(concrete) {
		taken = s.Else
	}
	if taken == nil {
		return nil, false, nil
	}
	return tr.traceBlock(t, taken, env)
}

func (tr *tracer) traceWhile(t *tape.Tape, s *grammar.WhileStmt, env map[string]tape.Variable) error {
	if !tr.opts.TraceLoops {
		return tr.unrollWhile(t, s, env)
	}

	carried := assignedNames(s.Body)
	carried = filterKnown(carried, env)

	sub := tape.New(nil)
	inputVals := make([]any, len(carried))
	for i, name := range carried {
		inputVals[i] = concreteOf(env[name])
	}
	if err := sub.SetInputs(inputVals...); err != nil {
		return err
	}
	loopInputs := append([]tape.Variable(nil), sub.Inputs()...)
	subEnv := make(map[string]tape.Variable, len(env))
	for i, name := range carried {
		subEnv[name] = loopInputs[i]
	}
	for name, v := range env {
		if contains(carried, name) {
			continue
		}
		subEnv[name] = sub.Push(tape.NewConstant(concreteOf(v)))
	}

	condVar, err := tr.traceExpr(sub, subEnv, s.Cond)
	if err != nil {
		return err
	}
	markBranch(condVar)

	if _, _, err := tr.traceBlock(sub, s.Body, subEnv); err != nil {
		return err
	}

	// ContVars reseed the sub-tape's inputs for the next iteration, so they
	// must be the post-body values. ExitVars name what the loop's value
	// becomes once Condition goes false — at that point the sub-tape's
	// inputs were never reseeded past the failing iteration, so the
	// pre-body binding (loopInputs) is the correct final value, not the one
	// more round of body execution ContVars would suggest.
	contVars := make([]tape.Variable, len(carried))
	exitVars := make([]tape.Variable, len(carried))
	for i, name := range carried {
		contVars[i] = subEnv[name]
		exitVars[i] = loopInputs[i]
	}
	parentVars := make([]tape.Variable, len(carried))
	for i, name := range carried {
		parentVars[i] = env[name]
	}

	condBound, ok := condVar.(tape.Variable)
	if !ok {
		return fmt.Errorf("while condition must reference a computed value")
	}
	loopOp := tape.NewLoop(parentVars, condBound, contVars, exitVars, sub)
	loopVar := t.Push(loopOp)

	final, err := simulateLoop(tr.funcs, s, env)
	if err != nil {
		return err
	}
	for i, name := range carried {
		env[name] = t.Push(tape.MkCallWithValue(elemAt, final[name], loopVar, i))
	}
	return nil
}

// unrollWhile implements Options.TraceLoops == false: rather than recording
// a structural Loop op, it traces the condition and body directly onto t,
// one real pass per iteration, the same trace-time-decidable-branch
// contract traceIf applies to an if condition. It stops recording once the
// condition resolves concretely to false; a condition that never becomes
// known at trace time is reported the same way an undecidable if is.
func (tr *tracer) unrollWhile(t *tape.Tape, s *grammar.WhileStmt, env map[string]tape.Variable) error {
	for {
		condVar, err := tr.traceExpr(t, env, s.Cond)
		if err != nil {
			return err
		}
		markBranch(condVar)

		concrete := concreteOf(condVar)
		if concrete == tape.Unknown {
			return fmt.Errorf("while condition could not be determined at trace time")
		}
		if !toB(concrete) {
			return nil
		}

		if _, _, err := tr.traceBlock(t, s.Body, env); err != nil {
			return err
		}
	}
}

// simulateLoop concretely runs s to its fixpoint using the plain tree-walk
// interpreter, entirely independent of the tape being built. Its purpose is
// narrow: give the tracer concrete values for the loop-carried variables so
// trace-time branch decisions after the loop (an if whose condition reads a
// loop result, say) keep working, even though the Loop operation's own
// recorded value stays tape.Unknown until a real Play executes it.
func simulateLoop(funcs map[string]*grammar.Function, s *grammar.WhileStmt, env map[string]tape.Variable) (map[string]any, error) {
	concrete := make(map[string]any, len(env))
	for name, v := range env {
		concrete[name] = concreteOf(v)
	}
	for {
		condVal, err := evalConcrete(funcs, s.Cond, concrete)
		if err != nil {
			return nil, err
		}
		if !toB(condVal) {
			break
		}
		if _, _, err := execBlockConcrete(funcs, s.Body, concrete); err != nil {
			return nil, err
		}
	}
	return concrete, nil
}

func (tr *tracer) traceExpr(t *tape.Tape, env map[string]tape.Variable, e *grammar.Expr) (any, error) {
	left, err := tr.traceUnary(t, env, e.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		right, err := tr.traceUnary(t, env, op.Right)
		if err != nil {
			return nil, err
		}
		fn, ok := binopFn(op.Operator)
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", op.Operator)
		}
		left = t.Push(tape.MkCall(any(fn), left, right))
	}
	return left, nil
}

func (tr *tracer) traceUnary(t *tape.Tape, env map[string]tape.Variable, u *grammar.Unary) (any, error) {
	v, err := tr.tracePrimary(t, env, u.Value)
	if err != nil {
		return nil, err
	}
	if u.Operator == nil {
		return v, nil
	}
	switch *u.Operator {
	case "-":
		return t.Push(tape.MkCall(any(neg), v)), nil
	case "!":
		return t.Push(tape.MkCall(any(not), v)), nil
	}
	return v, nil
}

func (tr *tracer) tracePrimary(t *tape.Tape, env map[string]tape.Variable, p *grammar.Primary) (any, error) {
	switch {
	case p.Call != nil:
		native, err := tr.prog.Native(p.Call.Name)
		if err != nil {
			return nil, err
		}
		args := make([]any, len(p.Call.Args))
		for i, a := range p.Call.Args {
			v, err := tr.traceExpr(t, env, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return t.Push(tape.MkCall(native, args...)), nil
	case p.Ident != nil:
		v, ok := env[*p.Ident]
		if !ok {
			return nil, fmt.Errorf("undefined variable %q", *p.Ident)
		}
		return v, nil
	case p.Float != nil:
		return *p.Float, nil
	case p.Int != nil:
		return *p.Int, nil
	case p.True:
		return true, nil
	case p.False:
		return false, nil
	case p.Parens != nil:
		return tr.traceExpr(t, env, p.Parens)
	}
	return nil, fmt.Errorf("empty primary expression")
}

func markBranch(operand any) {
	v, ok := operand.(tape.Variable)
	if !ok {
		return
	}
	if c, ok := v.Op().(*tape.Call); ok {
		c.BranchCond = true
	}
}

// assignedNames collects, in first-seen order, every name an AssignStmt
// targets anywhere within blk (including nested if/while bodies).
func assignedNames(blk *grammar.Block) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(b *grammar.Block)
	walk = func(b *grammar.Block) {
		for _, s := range b.Statements {
			switch {
			case s.Assign != nil:
				if !seen[s.Assign.Name] {
					seen[s.Assign.Name] = true
					names = append(names, s.Assign.Name)
				}
			case s.If != nil:
				walk(s.If.Then)
				if s.If.Else != nil {
					walk(s.If.Else)
				}
			case s.While != nil:
				walk(s.While.Body)
			}
		}
	}
	walk(blk)
	return names
}

func filterKnown(names []string, env map[string]tape.Variable) []string {
	out := names[:0:0]
	for _, n := range names {
		if _, ok := env[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
