package reftracer

import (
	"reflect"

	"tapeir/internal/resolver"
	"tapeir/internal/tape"
)

// The demo language's primitive operations. Each is a plain named Go
// function so tape.MkCall's eager evaluation and the core's reflect-based
// callFn work on them exactly as they do on any other primitive in this
// toolkit's tests — only user-defined functions get the reflect.MakeFunc
// treatment compile does.

func add(a, b any) any { return toF(a) + toF(b) }
func sub(a, b any) any { return toF(a) - toF(b) }
func mul(a, b any) any { return toF(a) * toF(b) }
func div(a, b any) any { return toF(a) / toF(b) }
func mod(a, b any) any { return float64(int64(toF(a)) % int64(toF(b))) }
func neg(a any) any     { return -toF(a) }

func lt(a, b any) any { return toF(a) < toF(b) }
func le(a, b any) any { return toF(a) <= toF(b) }
func gt(a, b any) any { return toF(a) > toF(b) }
func ge(a, b any) any { return toF(a) >= toF(b) }
func eq(a, b any) any { return toF(a) == toF(b) }
func ne(a, b any) any { return toF(a) != toF(b) }

func and(a, b any) any { return toB(a) && toB(b) }
func or(a, b any) any  { return toB(a) || toB(b) }
func not(a any) any    { return !toB(a) }

// elemAt projects element idx out of a Loop's exit-tuple value, giving a
// surviving loop-carried variable a plain scalar Variable to be read by
// statements after the loop, instead of the raw []any tuple.
func elemAt(tuple, idx any) any {
	return tuple.([]any)[idx.(int)]
}

func toF(a any) float64 {
	switch v := a.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toB(a any) bool {
	b, _ := a.(bool)
	return b
}

// newPrimitiveResolver registers every primitive under a resolver.Resolver
// keyed by tape.CallSignature, the same lookup a real FunctionResolver-backed
// caller would use. Each primitive is registered against a signature with
// nil placeholder arguments: CallSignature resolves a nil argument to the
// empty-interface type (see ArgSignature), and the empty interface is a
// supertype of every Go value, so the registered entry matches any concrete
// args of the right arity — primitives in this demo language are untyped,
// only arity and identity distinguish one from another.
func newPrimitiveResolver() *resolver.Resolver[bool] {
	r := resolver.New[bool]()
	binary := func(fn any) { r.Set(tape.CallSignature(fn, []any{nil, nil}), true) }
	unary := func(fn any) { r.Set(tape.CallSignature(fn, []any{nil}), true) }

	binary(add)
	binary(sub)
	binary(mul)
	binary(div)
	binary(mod)
	unary(neg)

	binary(lt)
	binary(le)
	binary(gt)
	binary(ge)
	binary(eq)
	binary(ne)

	binary(and)
	binary(or)
	unary(not)

	binary(elemAt)

	return r
}

func funcPtr(fn any) uintptr { return reflect.ValueOf(fn).Pointer() }

func binopFn(op string) (func(a, b any) any, bool) {
	switch op {
	case "+":
		return add, true
	case "-":
		return sub, true
	case "*":
		return mul, true
	case "/":
		return div, true
	case "%":
		return mod, true
	case "<":
		return lt, true
	case "<=":
		return le, true
	case ">":
		return gt, true
	case ">=":
		return ge, true
	case "==":
		return eq, true
	case "!=":
		return ne, true
	case "&&":
		return and, true
	case "||":
		return or, true
	}
	return nil, false
}
