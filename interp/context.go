package interp

// ExecutionContext is one entry of the execution context stack: the
// environments the running code closes over, its strictness, and the
// function (if any) it belongs to.
type ExecutionContext struct {
	// LexicalEnv resolves identifier references.
	LexicalEnv *Environment

	// VariableEnv receives var and hoisted function declarations.
	VariableEnv *Environment

	// Realm the running code belongs to.
	Realm *Realm

	// Function is the script function being executed, nil for top-level
	// script code and native calls.
	Function *scriptFunction

	// FunctionName is used for stack traces. "<script>" at top level.
	FunctionName string

	// Strict mode flag of the running code.
	Strict bool

	// Generator is non-nil while this context executes a generator body.
	Generator *GeneratorInstance
}

func (i *Interpreter) pushContext(ctx *ExecutionContext) {
	i.stack = append(i.stack, ctx)
}

func (i *Interpreter) popContext() {
	i.stack = i.stack[:len(i.stack)-1]
}

func (i *Interpreter) currentContext() *ExecutionContext {
	if len(i.stack) == 0 {
		return nil
	}
	return i.stack[len(i.stack)-1]
}

func (i *Interpreter) currentRealm() *Realm {
	if ctx := i.currentContext(); ctx != nil {
		return ctx.Realm
	}
	return i.realm
}

// ContextDepth returns the current depth of the execution context stack.
func (i *Interpreter) ContextDepth() int {
	return len(i.stack)
}
