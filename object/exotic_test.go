package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringObjectVirtualProperties(t *testing.T) {
	store := NewStore()
	o := store.NewStringObject(nil, NewString("hi"))

	length := o.GetOwn("length")
	require.NotNil(t, length)
	require.True(t, StrictEquals(length.Value, NewNumber(2)))
	require.False(t, length.Writable)
	require.False(t, length.Enumerable)
	require.False(t, length.Configurable)

	p := o.GetOwn("0")
	require.NotNil(t, p)
	require.True(t, StrictEquals(p.Value, NewString("h")))
	require.False(t, p.Writable)
	require.True(t, p.Enumerable)
	require.False(t, p.Configurable)

	require.Nil(t, o.GetOwn("2"))
	require.True(t, o.HasOwn("1"))
	require.False(t, o.HasOwn("5"))
}

func TestStringObjectCodeUnitLength(t *testing.T) {
	store := NewStore()
	// One astral character is two UTF-16 code units.
	o := store.NewStringObject(nil, NewString("\U0001F600"))
	length := o.GetOwn("length")
	require.True(t, StrictEquals(length.Value, NewNumber(2)))
	require.NotNil(t, o.GetOwn("0"))
	require.NotNil(t, o.GetOwn("1"))
	require.Nil(t, o.GetOwn("2"))
}

func TestStringObjectDefineRejected(t *testing.T) {
	store := NewStore()
	o := store.NewStringObject(nil, NewString("ab"))

	// Virtual properties reject changes but accept no-op redefinitions.
	require.False(t, define(t, o, "0", ValueDescriptor(NewString("x"))))
	require.False(t, define(t, o, "0", &Descriptor{Writable: boolPtr(true)}))
	require.True(t, define(t, o, "0", ValueDescriptor(NewString("a"))))
	require.False(t, define(t, o, "length", ValueDescriptor(NewNumber(5))))

	// Keys beyond the virtual range behave ordinarily.
	require.True(t, define(t, o, "custom", DataDescriptor(NewNumber(1), true, true, true)))
	require.NotNil(t, o.GetOwn("custom"))

	require.False(t, o.Delete("0"))
	require.True(t, o.Delete("custom"))
}

func TestStringObjectOwnKeys(t *testing.T) {
	store := NewStore()
	o := store.NewStringObject(nil, NewString("ab"))
	require.True(t, define(t, o, "extra", DataDescriptor(NewNumber(1), true, true, true)))
	require.Equal(t, []string{"0", "1", "length", "extra"}, o.OwnKeys())
}

// fakeBindings is an in-memory BindingSource for arguments mapping tests.
type fakeBindings map[string]Value

func (f fakeBindings) GetBound(name string) (Value, bool) {
	v, ok := f[name]
	return v, ok
}

func (f fakeBindings) SetBound(name string, value Value) bool {
	if _, ok := f[name]; !ok {
		return false
	}
	f[name] = value
	return true
}

func mappedArguments(t *testing.T, store *Store, env fakeBindings) *Object {
	t.Helper()
	o := store.NewArguments(nil)
	i := 0
	for _, name := range []string{"a", "b"} {
		key := FormatNumber(float64(i))
		v, _ := env.GetBound(name)
		require.True(t, define(t, o, key, DataDescriptor(v, true, true, true)))
		o.MapParameter(key, name, env)
		i++
	}
	return o
}

func TestArgumentsMappedAliasing(t *testing.T) {
	store := NewStore()
	env := fakeBindings{"a": NewNumber(1), "b": NewNumber(2)}
	o := mappedArguments(t, store, env)

	// Reads go through the live binding.
	env["a"] = NewNumber(10)
	require.True(t, StrictEquals(o.GetOwn("0").Value, NewNumber(10)))

	// Defining a value writes through to the binding.
	require.True(t, define(t, o, "1", ValueDescriptor(NewNumber(20))))
	require.True(t, StrictEquals(env["b"], NewNumber(20)))
	require.True(t, o.IsMapped("1"))
}

func TestArgumentsUnmapOnAccessor(t *testing.T) {
	store := NewStore()
	env := fakeBindings{"a": NewNumber(1), "b": NewNumber(2)}
	o := mappedArguments(t, store, env)
	getter := store.NewNamed("Function", nil)

	require.True(t, define(t, o, "0", AccessorDescriptor(getter, Undefined, true, true)))
	require.False(t, o.IsMapped("0"))
	// The binding is untouched by the severing definition.
	require.True(t, StrictEquals(env["a"], NewNumber(1)))
}

func TestArgumentsUnmapOnNonWritable(t *testing.T) {
	store := NewStore()
	env := fakeBindings{"a": NewNumber(1), "b": NewNumber(2)}
	o := mappedArguments(t, store, env)

	// writable:false without a value snapshots the live binding first.
	env["a"] = NewNumber(7)
	require.True(t, define(t, o, "0", &Descriptor{Writable: boolPtr(false)}))
	require.False(t, o.IsMapped("0"))
	require.True(t, StrictEquals(o.GetOwn("0").Value, NewNumber(7)))

	// Later binding changes no longer show through.
	env["a"] = NewNumber(99)
	require.True(t, StrictEquals(o.GetOwn("0").Value, NewNumber(7)))
}

func TestArgumentsUnmapOnDelete(t *testing.T) {
	store := NewStore()
	env := fakeBindings{"a": NewNumber(1), "b": NewNumber(2)}
	o := mappedArguments(t, store, env)

	require.True(t, o.Delete("0"))
	require.False(t, o.IsMapped("0"))
	require.Nil(t, o.GetOwn("0"))
}

func TestArgumentsSetMappedValue(t *testing.T) {
	store := NewStore()
	env := fakeBindings{"a": NewNumber(1), "b": NewNumber(2)}
	o := mappedArguments(t, store, env)

	require.True(t, o.SetMappedValue("0", NewNumber(5)))
	require.True(t, StrictEquals(env["a"], NewNumber(5)))
	require.False(t, o.SetMappedValue("9", NewNumber(5)))
}

func TestBoundFunctionSlots(t *testing.T) {
	store := NewStore()
	target := store.NewNamed("Function", nil)
	bound := store.NewBoundFunction(nil, target, NewString("this"), []Value{NewNumber(1)})

	require.Equal(t, BoundFunctionKind, bound.Kind())
	require.Same(t, target, bound.BoundTarget())
	require.True(t, StrictEquals(bound.BoundThis(), NewString("this")))
	require.Len(t, bound.BoundArgs(), 1)
	require.True(t, bound.IsCallable())
}
