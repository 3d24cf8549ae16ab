// Package interp is a tree-walking ECMAScript engine: programs run as
// immutable syntax trees against an object store, with completion
// records carrying all control flow. Generators execute through lowered
// state machines and suspend without replaying any code.
package interp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cloudcmds/marmoset/ast"
	serrors "github.com/cloudcmds/marmoset/errors"
	"github.com/cloudcmds/marmoset/object"
)

const (
	// DefaultMaxStackDepth bounds the execution context stack.
	DefaultMaxStackDepth = 1000

	// DefaultContextCheckInterval is how many statements run between
	// ctx.Done() checks.
	DefaultContextCheckInterval = 1000
)

// ErrHalted is the host error reported when an observer callback stops
// execution.
var ErrHalted = errors.New("execution halted by observer")

// Interpreter executes programs. One interpreter owns one object store
// and any number of realms; it is not safe for concurrent use.
type Interpreter struct {
	store       *object.Store
	realms      map[RealmHandle]*Realm
	realm       *Realm
	stack       []*ExecutionContext
	observer    Observer
	observerCfg ObserverConfig
	stepCount   uint64
	log         zerolog.Logger
	generators  []*GeneratorInstance

	maxStackDepth        int
	contextCheckInterval int
	inputGlobals         map[string]any

	ctx       context.Context
	haltErr   error
	errFormat *serrors.Formatter
}

// New creates an interpreter with a default realm.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		realms:               map[RealmHandle]*Realm{},
		store:                object.NewStore(),
		log:                  zerolog.Nop(),
		maxStackDepth:        DefaultMaxStackDepth,
		contextCheckInterval: DefaultContextCheckInterval,
		inputGlobals:         map[string]any{},
		errFormat:            serrors.NewFormatter(false),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.observer != nil {
		i.observerCfg = NormalizeConfig(i.observer.Config())
	}

	i.realm = i.newRealm()
	i.realms[i.realm.Handle] = i.realm

	for name, value := range i.inputGlobals {
		i.realm.GlobalObject.InsertValue(name, i.convertGlobal(value))
	}

	i.store.RegisterRoots(i.roots)
	return i
}

// Store exposes the interpreter's object store.
func (i *Interpreter) Store() *object.Store { return i.store }

// convertGlobal maps a native Go value onto a script value.
// Unconvertible values become undefined.
func (i *Interpreter) convertGlobal(value any) object.Value {
	switch v := value.(type) {
	case nil:
		return object.Null
	case object.Value:
		return v
	case bool:
		return object.NewBool(v)
	case string:
		return object.NewString(v)
	case float64:
		return object.NewNumber(v)
	case float32:
		return object.NewNumber(float64(v))
	case int:
		return object.NewNumber(float64(v))
	case int32:
		return object.NewNumber(float64(v))
	case int64:
		return object.NewNumber(float64(v))
	case uint:
		return object.NewNumber(float64(v))
	case uint32:
		return object.NewNumber(float64(v))
	case uint64:
		return object.NewNumber(float64(v))
	case []any:
		elems := make([]object.Value, len(v))
		for idx, e := range v {
			elems[idx] = i.convertGlobal(e)
		}
		return i.newArrayOf(i.realm, elems)
	case map[string]any:
		o := i.store.NewObject(i.realm.ObjectProto)
		for key, e := range v {
			o.InsertValue(key, i.convertGlobal(e))
		}
		return o
	case NativeFn:
		return i.newNative(i.realm, "", v)
	case func(*Interpreter, object.Value, []object.Value) Completion:
		return i.newNative(i.realm, "", v)
	default:
		return object.Undefined
	}
}

// roots reports the live object graph entry points for the external
// collector: realm intrinsics, the context stack, and suspended
// generators.
func (i *Interpreter) roots(mark func(*object.Object)) {
	for _, r := range i.realms {
		mark(r.GlobalObject)
		mark(r.ObjectProto)
		mark(r.FunctionProto)
		mark(r.ArrayProto)
		mark(r.StringProto)
		mark(r.GeneratorProto)
		mark(r.ErrorProto)
		mark(r.TypeErrorProto)
		mark(r.RangeErrorProto)
		mark(r.ReferenceErrorProto)
		mark(r.SyntaxErrorProto)
	}
	seen := map[*Environment]bool{}
	for _, ctx := range i.stack {
		markEnvChain(ctx.LexicalEnv, seen, mark)
		markEnvChain(ctx.VariableEnv, seen, mark)
	}
	for _, g := range i.generators {
		if g.state == GenCompleted {
			continue
		}
		mark(g.object)
		markEnvChain(g.locals, seen, mark)
		if g.delegate != nil {
			mark(g.delegate.iter)
		}
		for _, region := range g.tryStack {
			if o, ok := region.exception.(*object.Object); ok {
				mark(o)
			}
			if region.pending != nil {
				if o, ok := region.pending.value.(*object.Object); ok {
					mark(o)
				}
			}
		}
	}
}

func markEnvChain(env *Environment, seen map[*Environment]bool, mark func(*object.Object)) {
	for ; env != nil && !seen[env]; env = env.outer {
		seen[env] = true
		for _, b := range env.bindings {
			if o, ok := b.value.(*object.Object); ok {
				mark(o)
			}
		}
		if o, ok := env.thisVal.(*object.Object); ok {
			mark(o)
		}
		if env.global != nil {
			mark(env.global)
		}
	}
}

// halt records a host-level stop. The returned throw is not catchable:
// try statements check haltErr before running handlers.
func (i *Interpreter) halt(err error) *Completion {
	i.haltErr = err
	c := Throw(object.NewString(err.Error()))
	return &c
}

// checkInterrupt runs the per-statement bookkeeping: context
// cancellation polling and observer step callbacks.
func (i *Interpreter) checkInterrupt(s ast.Stmt) *Completion {
	i.stepCount++
	if i.ctx != nil && i.contextCheckInterval > 0 && i.stepCount%uint64(i.contextCheckInterval) == 0 {
		select {
		case <-i.ctx.Done():
			return i.halt(i.ctx.Err())
		default:
		}
	}
	if i.observer == nil {
		return nil
	}
	switch i.observerCfg.StepMode {
	case StepNone:
		return nil
	case StepSampled:
		if i.stepCount%uint64(i.observerCfg.SampleInterval) != 0 {
			return nil
		}
	}
	if !i.observer.OnStep(StepEvent{Stmt: s, ContextDepth: i.ContextDepth()}) {
		return i.halt(ErrHalted)
	}
	return nil
}

func (i *Interpreter) observeCall(name string, argCount int, native bool) *Completion {
	if i.observer == nil || !i.observerCfg.ObserveCalls {
		return nil
	}
	event := CallEvent{
		FunctionName: name,
		Native:       native,
		ArgCount:     argCount,
		ContextDepth: i.ContextDepth(),
	}
	if !i.observer.OnCall(event) {
		return i.halt(ErrHalted)
	}
	return nil
}

func (i *Interpreter) observeReturn(name string, threw bool) *Completion {
	if i.observer == nil || !i.observerCfg.ObserveReturns {
		return nil
	}
	event := ReturnEvent{
		FunctionName: name,
		Threw:        threw,
		ContextDepth: i.ContextDepth(),
	}
	if !i.observer.OnReturn(event) {
		return i.halt(ErrHalted)
	}
	return nil
}

// RunProgram executes a program in the default realm.
func (i *Interpreter) RunProgram(p *ast.Program) Completion {
	return i.RunProgramContext(context.Background(), p)
}

// RunProgramContext executes a program in the default realm, polling
// ctx for cancellation.
func (i *Interpreter) RunProgramContext(ctx context.Context, p *ast.Program) Completion {
	return i.runProgram(ctx, p, i.realm)
}

// RunProgramInRealm executes a program in a specific realm.
func (i *Interpreter) RunProgramInRealm(ctx context.Context, h RealmHandle, p *ast.Program) (Completion, error) {
	r, ok := i.realms[h]
	if !ok {
		return Completion{}, fmt.Errorf("unknown realm: %s", h)
	}
	return i.runProgram(ctx, p, r), nil
}

func (i *Interpreter) runProgram(ctx context.Context, p *ast.Program, r *Realm) Completion {
	i.ctx = ctx
	i.haltErr = nil

	i.pushContext(&ExecutionContext{
		LexicalEnv:   r.GlobalEnv,
		VariableEnv:  r.GlobalEnv,
		Realm:        r,
		FunctionName: "<script>",
		Strict:       p.Strict,
	})
	defer i.popContext()

	i.log.Debug().Str("realm", string(r.Handle)).Bool("strict", p.Strict).Msg("program start")
	if c := i.hoistDeclarations(p.Body, r.GlobalEnv, r.GlobalEnv, r); c.IsAbrupt() {
		return c
	}
	result := i.execStmts(p.Body, r.GlobalEnv)
	i.log.Debug().Str("completion", result.Kind.String()).Msg("program end")
	return result
}

// Run executes a program and returns its completion value. Uncaught
// exceptions come back as *errors.ScriptError; observer halts and
// context cancellation come back as their host error.
func (i *Interpreter) Run(ctx context.Context, p *ast.Program) (object.Value, error) {
	c := i.RunProgramContext(ctx, p)
	if i.haltErr != nil {
		return nil, i.haltErr
	}
	if c.Kind == ThrowCompletion {
		err := i.scriptError(c.Value)
		i.log.Debug().Msg(i.errFormat.Format(err.ToFormatted()))
		return nil, err
	}
	return c.ValueOr(object.Undefined), nil
}

// FormatError renders an error for terminal display. Script errors get
// the uncaught-exception treatment with code and stack trace; any other
// error renders as its message.
func (i *Interpreter) FormatError(err error) string {
	var fe serrors.FormattableError
	if errors.As(err, &fe) {
		return i.errFormat.Format(fe.ToFormatted())
	}
	return err.Error()
}

// captureStack snapshots the execution context stack, innermost frame
// first, for attachment to engine-raised errors.
func (i *Interpreter) captureStack() []serrors.StackFrame {
	frames := make([]serrors.StackFrame, 0, len(i.stack))
	for idx := len(i.stack) - 1; idx >= 0; idx-- {
		name := i.stack[idx].FunctionName
		if name == "" {
			name = "<anonymous>"
		}
		frames = append(frames, serrors.StackFrame{Function: name})
	}
	return frames
}

// scriptError converts an uncaught thrown value into a host error.
func (i *Interpreter) scriptError(v object.Value) *serrors.ScriptError {
	o, ok := v.(*object.Object)
	if !ok {
		return serrors.NewScriptError(serrors.E3001, "", object.AsString(v), nil)
	}
	name := errorClassName(o)
	message := ""
	if mc := i.getProperty(o, "message", o); mc.Kind == NormalCompletion && !isUndefined(mc.Value) {
		message = object.AsString(mc.Value)
	}
	if name == "" {
		name = "Error"
		if message == "" {
			message = o.Inspect()
		}
	}
	var err *serrors.ScriptError
	switch name {
	case "TypeError":
		err = serrors.TypeErrorf("%s", message)
	case "RangeError":
		err = serrors.RangeErrorf("%s", message)
	case "ReferenceError":
		err = serrors.ReferenceErrorf("%s", message)
	case "SyntaxError":
		err = serrors.SyntaxErrorf("%s", message)
	default:
		err = serrors.NewScriptError(serrors.E3001, name, message, nil)
	}
	if slot, ok := o.Internal("stack"); ok {
		if frames, ok := slot.([]serrors.StackFrame); ok {
			err.Stack = frames
		}
	}
	return err
}
