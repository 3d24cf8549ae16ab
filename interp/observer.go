package interp

import "github.com/cloudcmds/marmoset/ast"

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every statement.
	// Use for: detailed tracing, statement-level debugging.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	// Use for: profilers that only need Call/Return events.
	StepNone

	// StepSampled calls OnStep every N statements.
	// Use for: statistical CPU profiling.
	StepSampled
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of statements between OnStep calls
	// when StepMode is StepSampled. Must be > 0; values <= 0 are treated
	// as 1. Ignored for other modes.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config with safe defaults.
// ObserveCalls and ObserveReturns default to true.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig validates and clamps config values.
// Note: Does NOT set defaults for ObserveCalls/ObserveReturns - callers
// should use NewObserverConfig() to get safe defaults.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing interpreter execution events.
// Implementations can be used for profiling, debugging, or detailed
// execution tracing without modifying the engine core.
//
// All methods are optional - implementations can embed NoOpObserver
// to provide default no-op implementations for methods they don't need.
//
// Observer methods are called synchronously during execution.
// Implementations should be fast to avoid impacting performance.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when the observer is attached to the interpreter.
	Config() ObserverConfig

	// OnStep is called before a statement executes, based on the
	// StepMode in the observer's config.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool

	// OnCall is called when a function is invoked (if ObserveCalls is
	// true). Returns false to halt execution immediately.
	OnCall(event CallEvent) bool

	// OnReturn is called when a function returns (if ObserveReturns is
	// true). Returns false to halt execution immediately.
	OnReturn(event ReturnEvent) bool
}

// StepEvent contains information about a single statement step.
type StepEvent struct {
	// Stmt is the statement about to execute.
	Stmt ast.Stmt

	// ContextDepth is the current depth of the execution context stack.
	ContextDepth int
}

// CallEvent contains information about a function call.
type CallEvent struct {
	// FunctionName is the name of the function being called.
	// Anonymous functions will have an empty name.
	FunctionName string

	// Native reports whether the callee is a built-in.
	Native bool

	// ArgCount is the number of arguments passed to the function.
	ArgCount int

	// ContextDepth is the context stack depth after the call.
	ContextDepth int
}

// ReturnEvent contains information about a function return.
type ReturnEvent struct {
	// FunctionName is the name of the function returning.
	FunctionName string

	// Threw reports whether the function completed with an exception.
	Threw bool

	// ContextDepth is the context stack depth after returning.
	ContextDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
//
// Important: NoOpObserver uses StepAll mode by default with ObserveCalls
// and ObserveReturns enabled. Override Config() in your observer to
// use a different mode.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool     { return true }
func (NoOpObserver) OnCall(CallEvent) bool     { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}
