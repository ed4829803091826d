package resolver

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type animal interface{ Sound() string }
type dog struct{}

func (dog) Sound() string { return "woof" }

func describe(args ...any) string { return fmt.Sprint(args...) }

func typesOf(vals ...any) []reflect.Type {
	out := make([]reflect.Type, len(vals))
	for i, v := range vals {
		out[i] = reflect.TypeOf(v)
	}
	return out
}

func animalType() reflect.Type {
	return reflect.TypeOf((*animal)(nil)).Elem()
}

func TestSetGetExactMatch(t *testing.T) {
	r := New[string]()
	key := FuncKey(describe)
	sig := Signature{Fn: key, FnName: "describe", Args: typesOf(0)}
	r.Set(sig, "int-case")

	got, ok := r.Get(sig)
	assert.True(t, ok)
	assert.Equal(t, "int-case", got)
}

func TestGetUnresolvedReturnsAbsent(t *testing.T) {
	r := New[string]()
	key := FuncKey(describe)
	_, ok := r.Get(Signature{Fn: key, Args: typesOf(0)})
	assert.False(t, ok)
}

func TestOverrideReplacesNotDuplicates(t *testing.T) {
	r := New[string]()
	key := FuncKey(describe)
	sig := Signature{Fn: key, Args: typesOf(0)}
	r.Set(sig, "first")
	r.Set(sig, "second")

	assert.Equal(t, 1, r.Len())
	got, _ := r.Get(sig)
	assert.Equal(t, "second", got)
}

func TestMostSpecificWins(t *testing.T) {
	r := New[string]()
	key := FuncKey(describe)

	ifaceSig := Signature{Fn: key, Args: []reflect.Type{animalType()}}
	r.Set(ifaceSig, "animal-case")

	concreteSig := Signature{Fn: key, Args: typesOf(dog{})}
	r.Set(concreteSig, "dog-case")

	got, ok := r.Get(Signature{Fn: key, Args: typesOf(dog{})})
	assert.True(t, ok)
	assert.Equal(t, "dog-case", got, "the concrete dog signature is more specific than the animal interface one")
}

func TestVariadicTailMatches(t *testing.T) {
	r := New[string]()
	key := FuncKey(describe)
	sig := Signature{Fn: key, Args: typesOf(0), Variadic: true}
	r.Set(sig, "variadic-ints")

	got, ok := r.Get(Signature{Fn: key, Args: typesOf(0, 0, 0)})
	assert.True(t, ok)
	assert.Equal(t, "variadic-ints", got)
}

func TestDifferentFunctionsDoNotCollide(t *testing.T) {
	r := New[string]()
	r.Set(Signature{Fn: FuncKey(describe), Args: typesOf(0)}, "describe-int")
	r.Set(Signature{Fn: FuncKey(fmt.Sprint), Args: typesOf(0)}, "sprint-int")
	assert.Equal(t, 2, r.Len())
}

func TestSignatureString(t *testing.T) {
	sig := Signature{FnName: "add", Args: typesOf(0, 0)}
	assert.Equal(t, "add(int, int)", sig.String())
}
