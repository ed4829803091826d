package reftracer

import (
	"fmt"

	"tapeir/grammar"
)

// interpret concretely evaluates fn applied to args with no tape
// involvement at all: a plain recursive tree-walk over the AST. It backs
// every compiled native closure (see compile in tracer.go) and the loop
// fixpoint simulation traceWhile runs to keep trace-time branch decisions
// working across a loop it has already recorded structurally.
func interpret(funcs map[string]*grammar.Function, fn *grammar.Function, args []any) (any, error) {
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("reftracer: %s: expected %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	env := make(map[string]any, len(fn.Params))
	for i, p := range fn.Params {
		env[p] = args[i]
	}
	result, returned, err := execBlockConcrete(funcs, fn.Body, env)
	if err != nil {
		return nil, err
	}
	if !returned {
		return nil, nil
	}
	return result, nil
}

// execBlockConcrete runs stmts against env, mutating it in place, and
// reports whether a return was hit (and its value).
func execBlockConcrete(funcs map[string]*grammar.Function, blk *grammar.Block, env map[string]any) (any, bool, error) {
	for _, s := range blk.Statements {
		switch {
		case s.Let != nil:
			v, err := evalConcrete(funcs, s.Let.Expr, env)
			if err != nil {
				return nil, false, err
			}
			env[s.Let.Name] = v
		case s.Assign != nil:
			v, err := evalConcrete(funcs, s.Assign.Expr, env)
			if err != nil {
				return nil, false, err
			}
			env[s.Assign.Name] = v
		case s.Return != nil:
			if s.Return.Expr == nil {
				return nil, true, nil
			}
			v, err := evalConcrete(funcs, s.Return.Expr, env)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		case s.If != nil:
			cond, err := evalConcrete(funcs, s.If.Cond, env)
			if err != nil {
				return nil, false, err
			}
			var blkTaken *grammar.Block
			if toB(cond) {
				blkTaken = s.If.Then
			} else {
				blkTaken = s.If.Else
			}
			if blkTaken == nil {
				continue
			}
			v, returned, err := execBlockConcrete(funcs, blkTaken, env)
			if err != nil {
				return nil, false, err
			}
			if returned {
				return v, true, nil
			}
		case s.While != nil:
			for {
				cond, err := evalConcrete(funcs, s.While.Cond, env)
				if err != nil {
					return nil, false, err
				}
				if !toB(cond) {
					break
				}
				v, returned, err := execBlockConcrete(funcs, s.While.Body, env)
				if err != nil {
					return nil, false, err
				}
				if returned {
					return v, true, nil
				}
			}
		case s.Expr != nil:
			if _, err := evalConcrete(funcs, s.Expr.Expr, env); err != nil {
				return nil, false, err
			}
		}
	}
	return nil, false, nil
}

func evalConcrete(funcs map[string]*grammar.Function, e *grammar.Expr, env map[string]any) (any, error) {
	left, err := evalUnaryConcrete(funcs, e.Left, env)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		right, err := evalUnaryConcrete(funcs, op.Right, env)
		if err != nil {
			return nil, err
		}
		fn, ok := binopFn(op.Operator)
		if !ok {
			return nil, fmt.Errorf("reftracer: unknown operator %q", op.Operator)
		}
		left = fn(left, right)
	}
	return left, nil
}

func evalUnaryConcrete(funcs map[string]*grammar.Function, u *grammar.Unary, env map[string]any) (any, error) {
	v, err := evalPrimaryConcrete(funcs, u.Value, env)
	if err != nil {
		return nil, err
	}
	if u.Operator == nil {
		return v, nil
	}
	switch *u.Operator {
	case "-":
		return neg(v), nil
	case "!":
		return not(v), nil
	}
	return v, nil
}

func evalPrimaryConcrete(funcs map[string]*grammar.Function, p *grammar.Primary, env map[string]any) (any, error) {
	switch {
	case p.Call != nil:
		callee, ok := funcs[p.Call.Name]
		if !ok {
			return nil, fmt.Errorf("reftracer: call to undefined function %q", p.Call.Name)
		}
		args := make([]any, len(p.Call.Args))
		for i, a := range p.Call.Args {
			v, err := evalConcrete(funcs, a, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return interpret(funcs, callee, args)
	case p.Ident != nil:
		v, ok := env[*p.Ident]
		if !ok {
			return nil, fmt.Errorf("reftracer: undefined variable %q", *p.Ident)
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
		return evalConcrete(funcs, p.Parens, env)
	}
	return nil, fmt.Errorf("reftracer: empty primary expression")
}
