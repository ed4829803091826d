// Package reftracer is the reference tracer for the demo tracer language: it
// walks a parsed grammar.AST and pushes operations onto a tape.Tape using
// only the tape's public mutation API (Push, MkCall, SetInputs, ...), the
// same AST-to-IR builder role any compiler's lowering pass plays.
package reftracer

import (
	"fmt"
	"reflect"

	"tapeir/grammar"
	"tapeir/internal/resolver"
	"tapeir/internal/tape"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Program binds a parsed AST's function declarations by name and compiles
// each, on first use, into a stable native Go closure the tape core's
// reflect-based Call machinery can invoke like any other function value.
type Program struct {
	funcs      map[string]*grammar.Function
	natives    map[string]any
	names      map[uintptr]string
	primitives *resolver.Resolver[bool]

	// Opts.TraceLoops decides how TraceCall records a while loop: as a
	// structural Loop op (true, the default) or unrolled directly onto the
	// tape at trace time (false), one iteration per trace-time-decidable
	// pass through the condition.
	Opts tape.Options
}

// NewProgram indexes ast's top-level functions by name.
func NewProgram(ast *grammar.AST) *Program {
	p := &Program{
		funcs:      make(map[string]*grammar.Function, len(ast.Functions)),
		natives:    make(map[string]any),
		names:      make(map[uintptr]string),
		primitives: newPrimitiveResolver(),
		Opts:       tape.DefaultOptions(),
	}
	for _, fn := range ast.Functions {
		p.funcs[fn.Name] = fn
	}
	return p
}

// Native returns the stable callable standing in for the named function,
// compiling it on first request. Every reference to the same function
// across a trace, or across traces, gets back the identical Go value, so
// reflect.ValueOf(fn).Pointer() — the identity CallSignature and Primitivize
// key on — stays consistent.
func (p *Program) Native(name string) (any, error) {
	if native, ok := p.natives[name]; ok {
		return native, nil
	}
	fn, ok := p.funcs[name]
	if !ok {
		return nil, fmt.Errorf("reftracer: undefined function %q", name)
	}
	native := p.compile(fn)
	p.natives[name] = native
	p.names[funcPtr(native)] = name
	return native, nil
}

// compile turns fn into a genuinely distinct Go function value via
// reflect.MakeFunc, with one any-typed parameter per declared parameter and
// a single any-typed return. Every call simply tree-interprets fn's body
// concretely (see interpret.go) — the compiled closure exists purely to
// give this user-defined function a reflect-callable value the core's
// mkcall/callFn can invoke, not to run fast. Every MakeFunc value reports
// the same Pointer(), so resolver.FuncKey puts all compiled functions in one
// group; Trace tells them apart by their reflect.Value handles instead.
func (p *Program) compile(fn *grammar.Function) any {
	in := make([]reflect.Type, len(fn.Params))
	for i := range in {
		in[i] = anyType
	}
	ft := reflect.FuncOf(in, []reflect.Type{anyType}, false)
	impl := func(args []reflect.Value) []reflect.Value {
		vals := make([]any, len(args))
		for i, a := range args {
			vals[i] = a.Interface()
		}
		result, err := interpret(p.funcs, fn, vals)
		if err != nil {
			panic(err)
		}
		out := reflect.New(anyType).Elem()
		if result != nil {
			out.Set(reflect.ValueOf(result))
		}
		return []reflect.Value{out}
	}
	return reflect.MakeFunc(ft, impl).Interface()
}

// IsPrimitive implements tape.IsPrimitive: every arithmetic/comparison/
// boolean primitive is primitive, every compiled user function is not. The
// lookup goes through the same resolver.Resolver a real FunctionResolver
// user would register typed overloads on, keyed by the call's signature
// rather than by bare function identity.
func (p *Program) IsPrimitive(fn any, args []any) bool {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.Pointer() == 0 {
		return true
	}
	primitive, ok := p.primitives.Get(tape.CallSignature(fn, args))
	return ok && primitive
}

// Trace implements tape.Tracer: fn must be a native closure this Program
// compiled (or will compile) for one of its functions. It traces exactly
// the way TraceCall does, so Primitivize can recursively inline a call to a
// non-primitive callee using the same machinery a top-level trace uses.
func (p *Program) Trace(fn any, args []any) (*tape.Tape, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, nil
	}
	// Every reflect.MakeFunc value reports the same Pointer() (reflect's
	// shared call stub), so compiled functions are told apart by comparing
	// reflect.Value handles, which carry each MakeFunc result's own data
	// pointer.
	for name, native := range p.natives {
		if reflect.ValueOf(native) == rv {
			return p.TraceCall(name, args)
		}
	}
	return nil, nil
}

// TraceCall traces a top-level call to the named function against concrete
// args into a fresh, self-contained tape: one Input per parameter and
// Result bound to whatever the function's traced body computes.
func (p *Program) TraceCall(name string, args []any) (*tape.Tape, error) {
	fn, ok := p.funcs[name]
	if !ok {
		return nil, fmt.Errorf("reftracer: undefined function %q", name)
	}
	if len(args) != len(fn.Params) {
		return nil, fmt.Errorf("reftracer: %s: expected %d arguments, got %d", name, len(fn.Params), len(args))
	}

	t := tape.New(nil)
	if err := t.SetInputs(args...); err != nil {
		return nil, err
	}
	env := make(map[string]tape.Variable, len(fn.Params))
	for i, param := range fn.Params {
		env[param] = t.Inputs()[i]
	}

	tr := &tracer{prog: p, funcs: p.funcs, opts: p.Opts}
	result, returned, err := tr.traceBlock(t, fn.Body, env)
	if err != nil {
		return nil, fmt.Errorf("reftracer: tracing %s: %w", name, err)
	}
	if returned {
		if v, ok := result.(tape.Variable); ok {
			t.Result = v
		} else if result != nil {
			t.Result = t.Push(tape.NewConstant(result))
		}
	}
	return t, nil
}
