package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScriptError(t *testing.T) {
	err := TypeErrorf("%q is not a function", "x")
	require.Equal(t, `TypeError: "x" is not a function`, err.Error())
	require.Equal(t, E3001, err.Code)

	err = RangeErrorf("invalid array length")
	require.Equal(t, "RangeError: invalid array length", err.Error())

	err = ReferenceErrorf("y is not defined")
	require.Equal(t, "ReferenceError: y is not defined", err.Error())

	err = &ScriptError{Message: "boom"}
	require.Equal(t, "boom", err.Error())
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, "type error", E3001.Description())
	require.Equal(t, "runtime", E3001.Category())
	require.Equal(t, "binding", E2002.Category())
	require.Equal(t, "early", E1002.Category())
	require.Equal(t, "unknown error", ErrorCode("E9999").Description())
}

func TestStackFrameString(t *testing.T) {
	frame := StackFrame{
		Function: "inner",
		Location: SourceLocation{Filename: "main.js", Line: 3, Column: 7},
	}
	require.Equal(t, "at inner (main.js:3:7)", frame.String())

	frame = StackFrame{Function: "anonymous"}
	require.Equal(t, "at anonymous", frame.String())
}

func TestFormatPlain(t *testing.T) {
	f := NewFormatter(false)
	out := f.Format(&FormattedError{
		Code:     E3001,
		Kind:     "uncaught exception",
		Message:  "TypeError: x is not a function",
		Filename: "main.js",
		Line:     2,
		Column:   5,
		SourceLines: []SourceLineEntry{
			{Number: 2, Text: "x();", IsMain: true},
		},
		Stack: []StackFrame{
			{Function: "main", Location: SourceLocation{Filename: "main.js", Line: 2, Column: 5}},
		},
	})

	require.Contains(t, out, "uncaught exception[E3001]: TypeError: x is not a function")
	require.Contains(t, out, "--> main.js:2:5")
	require.Contains(t, out, " 2 | x();")
	require.Contains(t, out, "^")
	require.Contains(t, out, "stack trace:")
	require.Contains(t, out, "at main (main.js:2:5)")
	require.NotContains(t, out, "\x1b[")
}

func TestFormatMultiple(t *testing.T) {
	f := NewFormatter(false)
	out := f.FormatMultiple([]*FormattedError{
		{Message: "first"},
		{Message: "second"},
	})
	require.Contains(t, out, "[1/2]: first")
	require.Contains(t, out, "[2/2]: second")
	require.Contains(t, out, "found 2 errors")
}

func TestFormatStackTrace(t *testing.T) {
	out := FormatStackTrace([]StackFrame{
		{Function: "g"},
		{Function: "f"},
	})
	require.True(t, strings.HasPrefix(out, "Stack trace:\n"))
	require.Contains(t, out, "at g")
	require.Empty(t, FormatStackTrace(nil))
}
