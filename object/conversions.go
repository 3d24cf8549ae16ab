package object

import (
	"math"
	"strconv"
	"strings"
)

func signbit(f float64) bool { return math.Signbit(f) }

// FormatNumber converts a number to its string form: integral values
// below 1e21 print without a fraction or exponent, NaN and the
// infinities print by name, and everything else uses the shortest
// round-trip representation.
func FormatNumber(f float64) string {
	if f != f {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseNumber converts a string to a number the way the language does:
// leading and trailing whitespace is ignored, the empty string is zero,
// hex literals are recognized, and anything else unparseable is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToNumber converts a primitive value to a number. Objects convert to
// NaN here; callers that need full ToPrimitive behavior must convert the
// object first (the interpreter does this via valueOf/toString).
func ToNumber(v Value) float64 {
	switch v := v.(type) {
	case *UndefinedType:
		return math.NaN()
	case *NullType:
		return 0
	case *Bool:
		if v.value {
			return 1
		}
		return 0
	case *Number:
		return v.value
	case *String:
		return ParseNumber(v.value)
	default:
		return math.NaN()
	}
}

// AsString converts a primitive value to its string form. Objects are
// rendered with Inspect; the interpreter applies ToPrimitive first where
// the language requires it.
func AsString(v Value) string {
	switch v := v.(type) {
	case *UndefinedType:
		return "undefined"
	case *NullType:
		return "null"
	case *Bool:
		return strconv.FormatBool(v.value)
	case *Number:
		return FormatNumber(v.value)
	case *String:
		return v.value
	default:
		return v.Inspect()
	}
}

// ToUint32 implements the ToUint32 abstract operation.
func ToUint32(f float64) uint32 {
	if f != f || math.IsInf(f, 0) {
		return 0
	}
	i := math.Trunc(f)
	i = math.Mod(i, 4294967296)
	if i < 0 {
		i += 4294967296
	}
	return uint32(i)
}

// ToInt32 implements the ToInt32 abstract operation.
func ToInt32(f float64) int32 {
	u := ToUint32(f)
	if u >= 1<<31 {
		return int32(int64(u) - (1 << 32))
	}
	return int32(u)
}

// ToIntegerOrInfinity truncates toward zero, mapping NaN to zero.
func ToIntegerOrInfinity(f float64) float64 {
	if f != f {
		return 0
	}
	return math.Trunc(f)
}

// ArrayIndex parses a property key as an array index: a canonical
// base-10 integer in [0, 2^32-1). Returns false for any other key.
func ArrayIndex(key string) (uint32, bool) {
	if key == "" || len(key) > 10 {
		return 0, false
	}
	if key == "0" {
		return 0, true
	}
	if key[0] == '0' {
		return 0, false // non-canonical
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n >= 4294967295 {
		return 0, false
	}
	return uint32(n), true
}
