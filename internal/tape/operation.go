package tape

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Kind tags which Operation variant a value is, for switches that would
// otherwise need a type assertion chain.
type Kind int

const (
	KindInput Kind = iota
	KindConstant
	KindCall
	KindLoop
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "Input"
	case KindConstant:
		return "Constant"
	case KindCall:
		return "Call"
	case KindLoop:
		return "Loop"
	default:
		return "Unknown"
	}
}

// unknownMarker is the sentinel stored in Operation.Value() before a value is
// known: an Input before it is fed, a symbolic Call before it is played.
type unknownMarker struct{}

func (unknownMarker) String() string { return "<unknown>" }

// Unknown is the sentinel value representing a not-yet-known result.
var Unknown any = unknownMarker{}

var serialCounter uint64

func nextSerial() uint64 {
	return atomic.AddUint64(&serialCounter, 1)
}

// header is the shared state every Operation variant carries: id, current
// value and a back-pointer to the owning tape. The back-pointer is
// convenience only — the tape, not the operation, owns the operation.
type header struct {
	id    int
	ser   uint64
	val   any
	owner *Tape
}

func newHeader() header {
	return header{ser: nextSerial(), val: Unknown}
}

func (h *header) ID() int         { return h.id }
func (h *header) setID(id int)    { h.id = id }
func (h *header) serial() uint64  { return h.ser }
func (h *header) Value() any      { return h.val }
func (h *header) SetValue(v any)  { h.val = v }
func (h *header) Tape() *Tape     { return h.owner }
func (h *header) setTape(t *Tape) { h.owner = t }

// Operation is a recorded unit on a tape: Input, Constant, Call or Loop.
type Operation interface {
	ID() int
	setID(int)
	serial() uint64
	Value() any
	SetValue(any)
	Tape() *Tape
	setTape(*Tape)
	Kind() Kind
	String() string
}

// Input is a tape argument slot; its value is set externally before
// execution, by Tape.SetInputs.
type Input struct {
	header
}

// NewInput constructs an Input operation, not yet adopted by any tape.
func NewInput() *Input {
	return &Input{header: newHeader()}
}

func (i *Input) Kind() Kind { return KindInput }

func (i *Input) String() string {
	return fmt.Sprintf("inp %%%d::%s", i.id, typeName(i.val))
}

// Constant is a compile-time value fixed at construction.
type Constant struct {
	header
}

// NewConstant constructs a Constant operation holding v.
func NewConstant(v any) *Constant {
	c := &Constant{header: newHeader()}
	c.val = v
	return c
}

func (c *Constant) Kind() Kind { return KindConstant }

func (c *Constant) String() string {
	return fmt.Sprintf("const %%%d = %v::%s", c.id, c.val, typeName(c.val))
}

// Call is a function application. Fn is either a callable value or a
// Variable resolving to one; each element of Args is either a Variable or a
// literal value.
type Call struct {
	header
	Fn   any
	Args []any

	// BranchCond marks a Call whose result a tracer used to pick one of two
	// control-flow paths during tracing. Play checks it under
	// Options.AssertBranches; the core never sets it itself, only a tracer
	// building the tape does.
	BranchCond bool
}

func (c *Call) Kind() Kind { return KindCall }

func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = operandString(a)
	}
	return fmt.Sprintf("%%%d = %s(%s)::%s", c.id, fnName(c.Fn), strings.Join(parts, ", "), typeName(c.val))
}

// Loop is a structured loop: a parametric sub-tape iterated until its
// condition operation goes false. See loopexec.go for execution semantics.
type Loop struct {
	header
	ParentInputs []Variable
	Condition    Variable
	ContVars     []Variable
	ExitVars     []Variable
	Subtape      *Tape
}

// NewLoop builds a Loop operation, not yet adopted by any tape. A tracer
// assembles subtape by recording one representative pass through the loop
// body before calling this — a Loop always requires at least one full pass
// through the sub-tape during tracing.
func NewLoop(parentInputs []Variable, condition Variable, contVars, exitVars []Variable, subtape *Tape) *Loop {
	return &Loop{
		header:       newHeader(),
		ParentInputs: parentInputs,
		Condition:    condition,
		ContVars:     contVars,
		ExitVars:     exitVars,
		Subtape:      subtape,
	}
}

func (l *Loop) Kind() Kind { return KindLoop }

func (l *Loop) String() string {
	parts := make([]string, len(l.ParentInputs))
	for i, v := range l.ParentInputs {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%%%d = Loop(%s)", l.id, strings.Join(parts, ", "))
}

// MkCall builds a Call: if the call is calculable (every Variable among
// fn/args is bound to an operation with a known value), it evaluates fn
// eagerly and caches the result as val.
// Otherwise val is Unknown. The returned Call has id 0; a Tape assigns its
// real id on Push/Insert.
func MkCall(fn any, args ...any) *Call {
	return mkcall(fn, Unknown, args...)
}

// MkCallWithValue builds a Call with an explicit value — used to construct
// calls symbolically (unbound arguments, or a non-deterministic fn). Any val
// other than Unknown is stored as given, with no eager evaluation; passing
// Unknown behaves exactly like MkCall.
func MkCallWithValue(fn any, val any, args ...any) *Call {
	return mkcall(fn, val, args...)
}

func mkcall(fn any, val any, args ...any) *Call {
	c := &Call{header: newHeader(), Fn: fn, Args: append([]any(nil), args...)}
	if val == Unknown && calculable(fn, args) {
		resolvedFn := resolveOperand(fn)
		resolvedArgs := make([]any, len(args))
		for i, a := range args {
			resolvedArgs[i] = resolveOperand(a)
		}
		result, err := callFn(resolvedFn, resolvedArgs...)
		if err != nil {
			panic(errors.Wrapf(err, "mkcall: evaluating %s", fnName(fn)))
		}
		val = result
	}
	c.val = val
	return c
}

// calculable checks fn and args together: every operand must be either not a
// Variable, or a bound Variable whose operation already has a known
// (non-Unknown) value.
func calculable(fn any, args []any) bool {
	if !operandCalculable(fn) {
		return false
	}
	for _, a := range args {
		if !operandCalculable(a) {
			return false
		}
	}
	return true
}

func operandCalculable(a any) bool {
	v, ok := a.(Variable)
	if !ok {
		return true
	}
	return v.IsBound() && v.op.Value() != Unknown
}

func resolveOperand(a any) any {
	if v, ok := a.(Variable); ok {
		return v.op.Value()
	}
	return a
}

// callFn invokes fn with args via reflection, turning a panic inside fn into
// an error. Every Call, from mkcall and from Play alike, goes through it.
func callFn(fn any, args ...any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic calling %v: %v", fn, r)
		}
	}()
	rf := reflect.ValueOf(fn)
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.New(rf.Type().In(i)).Elem()
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	out := rf.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	if v == Unknown {
		return "?"
	}
	return reflect.TypeOf(v).String()
}

func fnName(fn any) string {
	if v, ok := fn.(Variable); ok {
		return v.String()
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() == reflect.Func {
		if name := runtimeFuncName(rv); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%v", fn)
}

// runtimeFuncName recovers a named function's short name for diagnostics and
// textual dumps (e.g. "math.Sin" instead of a hex pointer). Closures get
// their compiler-generated names; only a nil func, or a code pointer the
// runtime cannot name, falls back to fnName's %v formatting.
func runtimeFuncName(rv reflect.Value) string {
	if rv.Kind() != reflect.Func || rv.Pointer() == 0 {
		return ""
	}
	fn := runtime.FuncForPC(rv.Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func operandString(a any) string {
	if v, ok := a.(Variable); ok {
		return v.String()
	}
	return fmt.Sprintf("%v", a)
}
