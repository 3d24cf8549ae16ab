package interp

import "github.com/cloudcmds/marmoset/object"

// BindingKind distinguishes the three declaration forms at runtime.
type BindingKind uint8

const (
	BindVar BindingKind = iota
	BindLet
	BindConst
)

func (k BindingKind) String() string {
	switch k {
	case BindVar:
		return "var"
	case BindLet:
		return "let"
	case BindConst:
		return "const"
	}
	return "unknown"
}

// BindStatus reports the outcome of a binding read or write.
type BindStatus uint8

const (
	BindOK BindStatus = iota
	BindNotFound
	BindUninitialized
	BindImmutable
)

type binding struct {
	value       object.Value
	kind        BindingKind
	initialized bool
}

// Environment is a single environment record: a set of named bindings
// with a link to the enclosing record. Function-scope records additionally
// carry the this value; the global record links to the global object.
type Environment struct {
	outer    *Environment
	bindings map[string]*binding
	function bool
	hasThis  bool
	thisVal  object.Value
	global   *object.Object // non-nil only on the global environment
}

// NewEnvironment creates a declarative environment record.
func NewEnvironment(outer *Environment) *Environment {
	return &Environment{outer: outer, bindings: map[string]*binding{}}
}

// NewFunctionEnvironment creates a function-scope record binding this.
// Arrow functions use a plain NewEnvironment so this resolves outward.
func NewFunctionEnvironment(outer *Environment, thisVal object.Value) *Environment {
	return &Environment{
		outer:    outer,
		bindings: map[string]*binding{},
		function: true,
		hasThis:  true,
		thisVal:  thisVal,
	}
}

// NewGlobalEnvironment creates the global record linked to the global
// object. The global this is the global object itself.
func NewGlobalEnvironment(global *object.Object) *Environment {
	return &Environment{
		bindings: map[string]*binding{},
		function: true,
		hasThis:  true,
		thisVal:  global,
		global:   global,
	}
}

// Outer returns the enclosing environment, or nil.
func (e *Environment) Outer() *Environment { return e.outer }

// GlobalObject returns the linked global object of the global record.
func (e *Environment) GlobalObject() *object.Object { return e.global }

// Declare creates a binding. A var binding starts initialized to
// undefined; let and const start uninitialized (in their temporal dead
// zone). Declaring over an existing binding rebinds it.
func (e *Environment) Declare(name string, kind BindingKind) {
	b := &binding{kind: kind}
	if kind == BindVar {
		b.value = object.Undefined
		b.initialized = true
	}
	e.bindings[name] = b
}

// HasLocal reports whether this record itself holds a binding for name.
func (e *Environment) HasLocal(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// LocalKind returns the kind of a local binding.
func (e *Environment) LocalKind(name string) (BindingKind, bool) {
	b, ok := e.bindings[name]
	if !ok {
		return 0, false
	}
	return b.kind, true
}

// Initialize sets the initial value of a binding, ending its dead zone.
// The binding must have been declared.
func (e *Environment) Initialize(name string, v object.Value) {
	if b, ok := e.bindings[name]; ok {
		b.value = v
		b.initialized = true
		return
	}
	e.bindings[name] = &binding{value: v, kind: BindVar, initialized: true}
}

func (e *Environment) resolve(name string) (*Environment, *binding) {
	for env := e; env != nil; env = env.outer {
		if b, ok := env.bindings[name]; ok {
			return env, b
		}
	}
	return nil, nil
}

// Get reads a binding, walking outward.
func (e *Environment) Get(name string) (object.Value, BindStatus) {
	_, b := e.resolve(name)
	if b == nil {
		return nil, BindNotFound
	}
	if !b.initialized {
		return nil, BindUninitialized
	}
	return b.value, BindOK
}

// Set writes a binding, walking outward. Writing a const fails with
// BindImmutable; writing a binding still in its dead zone fails with
// BindUninitialized.
func (e *Environment) Set(name string, v object.Value) BindStatus {
	_, b := e.resolve(name)
	if b == nil {
		return BindNotFound
	}
	if !b.initialized {
		return BindUninitialized
	}
	if b.kind == BindConst {
		return BindImmutable
	}
	b.value = v
	return BindOK
}

// FunctionScope returns the nearest function or global record, used as
// the target for var hoisting.
func (e *Environment) FunctionScope() *Environment {
	for env := e; env != nil; env = env.outer {
		if env.function {
			return env
		}
	}
	return e
}

// This resolves the this value, walking past arrow-function records.
func (e *Environment) This() (object.Value, bool) {
	for env := e; env != nil; env = env.outer {
		if env.hasThis {
			return env.thisVal, true
		}
	}
	return nil, false
}

// Names returns the locally bound names. Order is unspecified.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	return names
}

// GetBound implements object.BindingSource for mapped arguments: a
// local-only initialized read.
func (e *Environment) GetBound(name string) (object.Value, bool) {
	b, ok := e.bindings[name]
	if !ok || !b.initialized {
		return nil, false
	}
	return b.value, true
}

// SetBound implements object.BindingSource for mapped arguments: a
// local-only write.
func (e *Environment) SetBound(name string, v object.Value) bool {
	b, ok := e.bindings[name]
	if !ok || !b.initialized || b.kind == BindConst {
		return false
	}
	b.value = v
	return true
}

var _ object.BindingSource = (*Environment)(nil)
