package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayBirthLength(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)
	p := a.GetOwn("length")
	require.NotNil(t, p)
	require.True(t, StrictEquals(p.Value, NewNumber(0)))
	require.True(t, p.Writable)
	require.False(t, p.Enumerable)
	require.False(t, p.Configurable)
}

func TestArrayIndexBumpsLength(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)

	require.True(t, define(t, a, "0", DataDescriptor(NewNumber(10), true, true, true)))
	require.Equal(t, uint32(1), a.ArrayLength())

	require.True(t, define(t, a, "5", DataDescriptor(NewNumber(50), true, true, true)))
	require.Equal(t, uint32(6), a.ArrayLength())

	// Defining below length leaves length alone.
	require.True(t, define(t, a, "2", DataDescriptor(NewNumber(20), true, true, true)))
	require.Equal(t, uint32(6), a.ArrayLength())
}

func TestArrayLengthShrinkDeletesIndices(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)
	for i := 0; i < 5; i++ {
		require.True(t, define(t, a, FormatNumber(float64(i)),
			DataDescriptor(NewNumber(float64(i)), true, true, true)))
	}
	require.True(t, define(t, a, "length", ValueDescriptor(NewNumber(2))))
	require.Equal(t, uint32(2), a.ArrayLength())
	require.Nil(t, a.GetOwn("2"))
	require.Nil(t, a.GetOwn("4"))
	require.NotNil(t, a.GetOwn("1"))
}

func TestArrayLengthShrinkBlockedByNonConfigurable(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)
	for i := 0; i < 5; i++ {
		require.True(t, define(t, a, FormatNumber(float64(i)),
			DataDescriptor(NewNumber(float64(i)), true, true, true)))
	}
	// Index 3 is non-configurable and blocks the shrink.
	require.True(t, define(t, a, "3", &Descriptor{Configurable: boolPtr(false)}))

	ok, err := a.DefineOwn("length", ValueDescriptor(NewNumber(1)))
	require.NoError(t, err)
	require.False(t, ok)
	// Length stops at blocking index + 1.
	require.Equal(t, uint32(4), a.ArrayLength())
	require.NotNil(t, a.GetOwn("3"))
	require.Nil(t, a.GetOwn("4"))
}

func TestArrayLengthShrinkBlockedKeepsRequestedWritable(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)
	require.True(t, define(t, a, "0", DataDescriptor(NewNumber(0), true, true, true)))
	require.True(t, define(t, a, "1", DataDescriptor(NewNumber(1), true, true, false)))

	ok, err := a.DefineOwn("length", &Descriptor{
		Value:    NewNumber(0),
		Writable: boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint32(2), a.ArrayLength())
	// The requested writable=false still lands after the blocked shrink.
	require.False(t, a.GetOwn("length").Writable)
}

func TestArrayLengthCoercion(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)

	_, err := a.DefineOwn("length", ValueDescriptor(NewNumber(1.5)))
	require.ErrorIs(t, err, ErrInvalidArrayLength)

	_, err = a.DefineOwn("length", ValueDescriptor(NewNumber(-1)))
	require.ErrorIs(t, err, ErrInvalidArrayLength)

	_, err = a.DefineOwn("length", ValueDescriptor(NewNumber(4294967296)))
	require.ErrorIs(t, err, ErrInvalidArrayLength)

	// A numeric string coerces like a number.
	require.True(t, define(t, a, "length", ValueDescriptor(NewString("3"))))
	require.Equal(t, uint32(3), a.ArrayLength())
}

func TestArrayNonWritableLengthBlocksGrowth(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)
	require.True(t, define(t, a, "0", DataDescriptor(NewNumber(0), true, true, true)))
	require.True(t, define(t, a, "length", &Descriptor{Writable: boolPtr(false)}))

	ok, err := a.DefineOwn("1", DataDescriptor(NewNumber(1), true, true, true))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, uint32(1), a.ArrayLength())

	// Redefining an existing index is still allowed.
	require.True(t, define(t, a, "0", ValueDescriptor(NewNumber(9))))
}

func TestArrayGrowLengthDirectly(t *testing.T) {
	store := NewStore()
	a := store.NewArray(nil)
	require.True(t, define(t, a, "length", ValueDescriptor(NewNumber(100))))
	require.Equal(t, uint32(100), a.ArrayLength())
	// Growing the length does not create index properties.
	require.Nil(t, a.GetOwn("0"))
}
