package errors

// ErrorCode identifies a class of script error.
// Codes are organized by category:
//   - E1xxx: Early (static) errors
//   - E2xxx: Binding and scope errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Early errors (E1xxx)
	E1001 ErrorCode = "E1001" // Invalid assignment target
	E1002 ErrorCode = "E1002" // Duplicate lexical declaration
	E1003 ErrorCode = "E1003" // Invalid break statement
	E1004 ErrorCode = "E1004" // Invalid continue statement
	E1005 ErrorCode = "E1005" // Invalid return statement
	E1006 ErrorCode = "E1006" // Duplicate parameter name
	E1007 ErrorCode = "E1007" // Invalid destructuring pattern

	// Binding errors (E2xxx)
	E2001 ErrorCode = "E2001" // Undefined variable
	E2002 ErrorCode = "E2002" // Access before initialization
	E2003 ErrorCode = "E2003" // Assignment to constant
	E2004 ErrorCode = "E2004" // Unresolvable reference

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Type error
	E3002 ErrorCode = "E3002" // Range error
	E3003 ErrorCode = "E3003" // Not a function
	E3004 ErrorCode = "E3004" // Not a constructor
	E3005 ErrorCode = "E3005" // Property access on null or undefined
	E3006 ErrorCode = "E3006" // Stack overflow
	E3007 ErrorCode = "E3007" // Generator already running
	E3008 ErrorCode = "E3008" // Object not extensible
	E3009 ErrorCode = "E3009" // Cannot redefine property
	E3010 ErrorCode = "E3010" // Invalid array length
)

var codeDescriptions = map[ErrorCode]string{
	E1001: "invalid assignment target",
	E1002: "duplicate lexical declaration",
	E1003: "invalid break statement",
	E1004: "invalid continue statement",
	E1005: "invalid return statement",
	E1006: "duplicate parameter name",
	E1007: "invalid destructuring pattern",

	E2001: "undefined variable",
	E2002: "access before initialization",
	E2003: "assignment to constant",
	E2004: "unresolvable reference",

	E3001: "type error",
	E3002: "range error",
	E3003: "not a function",
	E3004: "not a constructor",
	E3005: "property access on null or undefined",
	E3006: "stack overflow",
	E3007: "generator already running",
	E3008: "object not extensible",
	E3009: "cannot redefine property",
	E3010: "invalid array length",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "early"
	case '2':
		return "binding"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
