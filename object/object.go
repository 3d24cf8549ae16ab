// Package object provides the marmoset value types and the object store.
//
// Primitive values (undefined, null, booleans, numbers, strings) are
// immutable and may be shared freely. Objects live in a Store and are
// addressed by stable handles so that an external collector can trace
// them. The ordinary and exotic internal methods that do not require the
// call engine ([[GetOwnProperty]], [[DefineOwnProperty]], [[Delete]],
// [[OwnPropertyKeys]], [[HasProperty]]) are implemented here; the
// accessor-aware [[Get]] and [[Set]] live in the interp package because
// they invoke getters and setters.
package object

import (
	"fmt"
	"strconv"
)

// Type of a value as a string.
type Type string

// Type constants
const (
	UNDEFINED Type = "undefined"
	NULL      Type = "null"
	BOOL      Type = "boolean"
	NUMBER    Type = "number"
	STRING    Type = "string"
	OBJECT    Type = "object"
)

// Value is the interface implemented by every marmoset value.
type Value interface {
	// Type of the value.
	Type() Type

	// Inspect returns a string representation of the value.
	Inspect() string

	// Interface converts the value to a native Go value.
	Interface() interface{}
}

// UndefinedType is the undefined value. Use the Undefined singleton.
type UndefinedType struct{}

func (u *UndefinedType) Type() Type              { return UNDEFINED }
func (u *UndefinedType) Inspect() string         { return "undefined" }
func (u *UndefinedType) Interface() interface{}  { return nil }

// NullType is the null value. Use the Null singleton.
type NullType struct{}

func (n *NullType) Type() Type             { return NULL }
func (n *NullType) Inspect() string        { return "null" }
func (n *NullType) Interface() interface{} { return nil }

// Bool is a boolean value. Use the True and False singletons.
type Bool struct {
	value bool
}

func (b *Bool) Type() Type             { return BOOL }
func (b *Bool) Inspect() string        { return strconv.FormatBool(b.value) }
func (b *Bool) Interface() interface{} { return b.value }
func (b *Bool) Value() bool            { return b.value }

var (
	Undefined = &UndefinedType{}
	Null      = &NullType{}
	True      = &Bool{value: true}
	False     = &Bool{value: false}
)

// NewBool returns the singleton for the given boolean.
func NewBool(value bool) *Bool {
	if value {
		return True
	}
	return False
}

// Number is an IEEE-754 double precision number.
type Number struct {
	value float64
}

// NewNumber creates a Number with the given value.
func NewNumber(value float64) *Number {
	return &Number{value: value}
}

func (n *Number) Type() Type             { return NUMBER }
func (n *Number) Inspect() string        { return FormatNumber(n.value) }
func (n *Number) Interface() interface{} { return n.value }
func (n *Number) Value() float64         { return n.value }

// String is an immutable string value.
type String struct {
	value string
}

// NewString creates a String with the given value.
func NewString(value string) *String {
	return &String{value: value}
}

func (s *String) Type() Type             { return STRING }
func (s *String) Inspect() string        { return fmt.Sprintf("%q", s.value) }
func (s *String) Interface() interface{} { return s.value }
func (s *String) Value() string          { return s.value }

// Truthy reports whether a value converts to true.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case *UndefinedType, *NullType:
		return false
	case *Bool:
		return v.value
	case *Number:
		return v.value != 0 && v.value == v.value
	case *String:
		return v.value != ""
	default:
		return true
	}
}

// StrictEquals implements the === comparison for two values.
func StrictEquals(a, b Value) bool {
	switch a := a.(type) {
	case *UndefinedType:
		_, ok := b.(*UndefinedType)
		return ok
	case *NullType:
		_, ok := b.(*NullType)
		return ok
	case *Bool:
		other, ok := b.(*Bool)
		return ok && a.value == other.value
	case *Number:
		other, ok := b.(*Number)
		return ok && a.value == other.value
	case *String:
		other, ok := b.(*String)
		return ok && a.value == other.value
	case *Object:
		other, ok := b.(*Object)
		return ok && a == other
	}
	return false
}

// SameValue implements the SameValue comparison: like === except that
// NaN equals NaN and +0 is distinct from -0.
func SameValue(a, b Value) bool {
	an, aIsNum := a.(*Number)
	bn, bIsNum := b.(*Number)
	if aIsNum && bIsNum {
		x, y := an.value, bn.value
		if x != x && y != y {
			return true // both NaN
		}
		if x == 0 && y == 0 {
			return signbit(x) == signbit(y)
		}
		return x == y
	}
	return StrictEquals(a, b)
}
