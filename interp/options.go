package interp

import (
	"github.com/rs/zerolog"
)

// Option is a configuration function for an Interpreter.
type Option func(*Interpreter)

// WithGlobals provides global variables with the given names. Values are
// converted from native Go values where possible; unconvertible values
// become undefined.
func WithGlobals(globals map[string]any) Option {
	return func(i *Interpreter) {
		for name, value := range globals {
			i.inputGlobals[name] = value
		}
	}
}

// WithObserver sets an observer for execution events.
// The observer receives callbacks for statement steps, function calls,
// and function returns. This enables profilers, debuggers, and execution
// tracers without modifying the engine core.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(i *Interpreter) {
		i.observer = observer
	}
}

// WithLogger sets a structured logger used to trace realm creation,
// program runs, and generator state transitions at debug level. The
// default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(i *Interpreter) {
		i.log = logger
	}
}

// WithMaxStackDepth bounds the execution context stack. Exceeding the
// bound throws a RangeError in the running script. The default is
// DefaultMaxStackDepth.
func WithMaxStackDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxStackDepth = depth
		}
	}
}

// WithContextCheckInterval sets how often the interpreter checks
// ctx.Done() during execution. The interval is specified in number of
// statements. A value of 0 disables checking. The default is
// DefaultContextCheckInterval (1000).
func WithContextCheckInterval(interval int) Option {
	return func(i *Interpreter) {
		i.contextCheckInterval = interval
	}
}
