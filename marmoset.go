package marmoset

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/interp"
	"github.com/cloudcmds/marmoset/object"
)

// Option configures script execution.
type Option func(*options)

type options struct {
	globals       map[string]any
	observer      interp.Observer
	logger        *zerolog.Logger
	maxStackDepth int
	checkInterval int
}

func collectOptions(opts ...Option) *options {
	o := &options{globals: map[string]any{}, checkInterval: -1}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) interpOpts() []interp.Option {
	var opts []interp.Option
	if len(o.globals) > 0 {
		opts = append(opts, interp.WithGlobals(o.globals))
	}
	if o.observer != nil {
		opts = append(opts, interp.WithObserver(o.observer))
	}
	if o.logger != nil {
		opts = append(opts, interp.WithLogger(*o.logger))
	}
	if o.maxStackDepth > 0 {
		opts = append(opts, interp.WithMaxStackDepth(o.maxStackDepth))
	}
	if o.checkInterval >= 0 {
		opts = append(opts, interp.WithContextCheckInterval(o.checkInterval))
	}
	return opts
}

// WithGlobals provides variables that are made available to scripts as
// properties of the global object. This option is additive, so multiple
// WithGlobals options may be supplied. If the same name is supplied
// multiple times, the last value wins.
//
// Values are converted from native Go values where possible: nil, bool,
// string, numeric types, []any, map[string]any, and native functions.
func WithGlobals(globals map[string]any) Option {
	return func(o *options) {
		for name, value := range globals {
			o.globals[name] = value
		}
	}
}

// WithObserver sets an observer for execution events.
// The observer receives callbacks for statement steps, function calls,
// and function returns. This enables profilers, debuggers, code coverage
// tools, and execution tracers.
func WithObserver(observer interp.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithLogger sets a structured logger that traces realm creation, program
// runs, and generator state transitions at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithMaxStackDepth bounds the call stack. Exceeding the bound throws a
// RangeError in the running script.
func WithMaxStackDepth(depth int) Option {
	return func(o *options) {
		o.maxStackDepth = depth
	}
}

// WithContextCheckInterval sets how often execution polls ctx.Done(),
// in statements. A value of 0 disables polling.
func WithContextCheckInterval(interval int) Option {
	return func(o *options) {
		o.checkInterval = interval
	}
}

// New creates an interpreter with its default realm ready to run programs.
// Reuse one interpreter to accumulate global state across runs; each call
// to Run on a fresh interpreter starts from a clean realm.
func New(opts ...Option) *interp.Interpreter {
	return interp.New(collectOptions(opts...).interpOpts()...)
}

// Run executes a program in a fresh interpreter and returns the value of
// the last evaluated statement. An uncaught script exception is returned
// as a *errors.ScriptError.
func Run(ctx context.Context, program *ast.Program, opts ...Option) (object.Value, error) {
	return New(opts...).Run(ctx, program)
}
