// Package errors defines script error types with source locations and
// stack traces, plus the formatter that renders them for display.
package errors

import (
	"fmt"
	"strings"
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string
	Location SourceLocation
}

// String returns a formatted string representation of the stack frame.
func (f StackFrame) String() string {
	if f.Function == "" {
		return fmt.Sprintf("at %s", f.Location.String())
	}
	if f.Location.IsZero() && f.Location.Filename == "" {
		return fmt.Sprintf("at %s", f.Function)
	}
	return fmt.Sprintf("at %s (%s)", f.Function, f.Location.String())
}

// FormatStackTrace formats a slice of stack frames as a human-readable string.
func FormatStackTrace(frames []StackFrame) string {
	if len(frames) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Stack trace:\n")
	for _, frame := range frames {
		b.WriteString("  ")
		b.WriteString(frame.String())
		b.WriteString("\n")
	}
	return b.String()
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// ScriptError is an uncaught script exception surfaced as a Go error.
// Name carries the language-level error class ("TypeError", "RangeError",
// and so on) and Value its rendered message.
type ScriptError struct {
	Code    ErrorCode
	Name    string
	Message string
	Stack   []StackFrame
}

func (e *ScriptError) Error() string {
	if e.Name == "" {
		return e.Message
	}
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

// ToFormatted converts the error for display through a Formatter.
func (e *ScriptError) ToFormatted() *FormattedError {
	return &FormattedError{
		Code:    e.Code,
		Kind:    "uncaught exception",
		Message: e.Error(),
		Stack:   e.Stack,
	}
}

// NewScriptError builds a ScriptError for an uncaught exception.
func NewScriptError(code ErrorCode, name, message string, stack []StackFrame) *ScriptError {
	return &ScriptError{Code: code, Name: name, Message: message, Stack: stack}
}

// TypeErrorf builds a TypeError-classed ScriptError without a stack.
func TypeErrorf(format string, args ...any) *ScriptError {
	return &ScriptError{Code: E3001, Name: "TypeError", Message: fmt.Sprintf(format, args...)}
}

// RangeErrorf builds a RangeError-classed ScriptError without a stack.
func RangeErrorf(format string, args ...any) *ScriptError {
	return &ScriptError{Code: E3002, Name: "RangeError", Message: fmt.Sprintf(format, args...)}
}

// ReferenceErrorf builds a ReferenceError-classed ScriptError without a stack.
func ReferenceErrorf(format string, args ...any) *ScriptError {
	return &ScriptError{Code: E2004, Name: "ReferenceError", Message: fmt.Sprintf(format, args...)}
}

// SyntaxErrorf builds a SyntaxError-classed ScriptError without a stack.
func SyntaxErrorf(format string, args ...any) *ScriptError {
	return &ScriptError{Code: E1002, Name: "SyntaxError", Message: fmt.Sprintf(format, args...)}
}
