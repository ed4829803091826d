package tape

import (
	"reflect"

	"tapeir/internal/resolver"
)

// CallSignature builds the resolver.Signature a Call's current fn/args
// resolve to, for querying a FunctionResolver against this call site.
// Operands must already be resolved to concrete values (see Tape.resolveAny)
// before this is meaningful.
func CallSignature(fn any, args []any) resolver.Signature {
	rf := reflect.ValueOf(fn)
	rt := rf.Type()
	variadic := rt.Kind() == reflect.Func && rt.IsVariadic()

	types := make([]reflect.Type, len(args))
	for i, a := range args {
		types[i] = ArgSignature(a)
	}
	return resolver.Signature{
		Fn:       resolver.FuncKey(fn),
		FnName:   fnName(fn),
		Args:     types,
		Variadic: variadic,
	}
}

// ArgSignature returns the dynamic type to key a resolver lookup on for a
// single resolved argument value. A nil argument has no dynamic type to key
// on and is represented by the empty interface type.
func ArgSignature(v any) reflect.Type {
	if v == nil {
		return reflect.TypeOf((*any)(nil)).Elem()
	}
	return reflect.TypeOf(v)
}
