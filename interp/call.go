package interp

import (
	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/generator"
	"github.com/cloudcmds/marmoset/object"
)

// NativeFn is the signature of a built-in function.
type NativeFn func(i *Interpreter, this object.Value, args []object.Value) Completion

type nativeFunction struct {
	name string
	fn   NativeFn
}

func (n *nativeFunction) FunctionName() string { return n.name }

// scriptFunction is the callable slot of a user-defined function: the
// AST literal plus the environment it closed over. Generator functions
// additionally cache their lowered state machine, built once on first
// instantiation.
type scriptFunction struct {
	name    string
	fn      *ast.FuncLit
	closure *Environment
	realm   *Realm
	machine *generator.StateMachine
}

func (f *scriptFunction) FunctionName() string { return f.name }

// newNative allocates a built-in function object.
func (i *Interpreter) newNative(r *Realm, name string, fn NativeFn) *object.Object {
	o := i.store.NewNamed("Function", r.FunctionProto)
	o.SetCallable(&nativeFunction{name: name, fn: fn})
	o.InsertBuiltin("name", object.NewString(name))
	return o
}

// makeFunction allocates a function object for a function literal.
func (i *Interpreter) makeFunction(fl *ast.FuncLit, env *Environment, r *Realm) *object.Object {
	o := i.store.NewNamed("Function", r.FunctionProto)
	o.SetCallable(&scriptFunction{
		name:    fl.Name,
		fn:      fl,
		closure: env,
		realm:   r,
	})
	o.InsertBuiltin("name", object.NewString(fl.Name))
	o.InsertBuiltin("length", object.NewNumber(float64(len(fl.Params))))
	if !fl.IsArrow {
		protoParent := r.ObjectProto
		if fl.IsGenerator {
			protoParent = r.GeneratorProto
		}
		proto := i.store.NewObject(protoParent)
		if !fl.IsGenerator {
			proto.InsertBuiltin("constructor", o)
		}
		o.InsertBuiltin("prototype", proto)
	}
	return o
}

func describeCallee(v object.Value) string {
	if o, ok := v.(*object.Object); ok {
		return o.Inspect()
	}
	return object.AsString(v)
}

// callValue invokes a value as a function. This is the single entry for
// every call in the engine: script functions, built-ins, bound function
// chains, and accessor invocations all pass through here.
func (i *Interpreter) callValue(fn object.Value, this object.Value, args []object.Value) Completion {
	obj, ok := fn.(*object.Object)
	if !ok || !obj.IsCallable() {
		return i.typeError("%s is not a function", describeCallee(fn))
	}
	if len(i.stack) >= i.maxStackDepth {
		return i.rangeError("Maximum call stack size exceeded")
	}

	if obj.Kind() == object.BoundFunctionKind {
		combined := make([]object.Value, 0, len(obj.BoundArgs())+len(args))
		combined = append(combined, obj.BoundArgs()...)
		combined = append(combined, args...)
		return i.callValue(obj.BoundTarget(), obj.BoundThis(), combined)
	}

	switch callable := obj.Callable().(type) {
	case *nativeFunction:
		if halt := i.observeCall(callable.name, len(args), true); halt != nil {
			return *halt
		}
		result := callable.fn(i, this, args)
		if halt := i.observeReturn(callable.name, result.Kind == ThrowCompletion); halt != nil {
			return *halt
		}
		return result
	case *scriptFunction:
		if halt := i.observeCall(callable.name, len(args), false); halt != nil {
			return *halt
		}
		var result Completion
		if callable.fn.IsGenerator {
			result = i.instantiateGenerator(callable, obj, this, args)
		} else {
			result = i.callScript(callable, obj, this, args)
		}
		if halt := i.observeReturn(callable.name, result.Kind == ThrowCompletion); halt != nil {
			return *halt
		}
		return result
	default:
		return i.typeError("%s is not a function", describeCallee(fn))
	}
}

func (i *Interpreter) callScript(sf *scriptFunction, fnObj *object.Object, this object.Value, args []object.Value) Completion {
	funcEnv, c := i.prepareCallEnv(sf, fnObj, this, args, true)
	if c.IsAbrupt() {
		return c
	}

	i.pushContext(&ExecutionContext{
		LexicalEnv:   funcEnv,
		VariableEnv:  funcEnv,
		Realm:        sf.realm,
		Function:     sf,
		FunctionName: sf.name,
		Strict:       sf.fn.Strict,
	})
	result := i.execStmts(sf.fn.Body, funcEnv)
	i.popContext()

	switch result.Kind {
	case ReturnCompletion:
		return NormalOf(result.ValueOr(object.Undefined))
	case ThrowCompletion:
		return result
	default:
		return NormalOf(object.Undefined)
	}
}

// prepareCallEnv builds the function environment: this binding, bound
// parameters with defaults and destructuring, the arguments object, and
// hoisted declarations. Generators reuse it with hoist disabled since
// their machine predeclares everything the body needs.
func (i *Interpreter) prepareCallEnv(sf *scriptFunction, fnObj *object.Object, this object.Value, args []object.Value, hoist bool) (*Environment, Completion) {
	var funcEnv *Environment
	if sf.fn.IsArrow {
		funcEnv = NewEnvironment(sf.closure)
	} else {
		effectiveThis := this
		if !sf.fn.Strict {
			switch this.(type) {
			case *object.UndefinedType, *object.NullType, nil:
				effectiveThis = sf.realm.GlobalObject
			}
		}
		if effectiveThis == nil {
			effectiveThis = object.Undefined
		}
		funcEnv = NewFunctionEnvironment(sf.closure, effectiveThis)
	}

	if c := i.bindParameters(sf, funcEnv, args); c.IsAbrupt() {
		return nil, c
	}

	if !sf.fn.IsArrow && !shadowsArguments(sf.fn) {
		ao := i.createArguments(sf, fnObj, args, funcEnv)
		funcEnv.Declare("arguments", BindVar)
		funcEnv.Initialize("arguments", ao)
	}

	if hoist {
		if c := i.hoistDeclarations(sf.fn.Body, funcEnv, funcEnv, sf.realm); c.IsAbrupt() {
			return nil, c
		}
	}
	return funcEnv, Empty()
}

func (i *Interpreter) bindParameters(sf *scriptFunction, funcEnv *Environment, args []object.Value) Completion {
	for idx, p := range sf.fn.Params {
		var v object.Value = object.Undefined
		if idx < len(args) {
			v = args[idx]
		}
		if p.Default != nil {
			if _, isUndef := v.(*object.UndefinedType); isUndef {
				c := i.evalExpr(p.Default, funcEnv)
				if c.IsAbrupt() {
					return c
				}
				v = c.Value
			}
		}
		if c := i.bindPatternDeclare(funcEnv, p.Target, v, BindVar); c.IsAbrupt() {
			return c
		}
	}
	if sf.fn.RestParam != nil {
		var rest []object.Value
		if len(args) > len(sf.fn.Params) {
			rest = args[len(sf.fn.Params):]
		}
		arr := i.newArrayOf(sf.realm, rest)
		if c := i.bindPatternDeclare(funcEnv, sf.fn.RestParam, arr, BindVar); c.IsAbrupt() {
			return c
		}
	}
	return Empty()
}

// shadowsArguments reports whether the function declares its own
// "arguments" binding, suppressing the implicit object.
func shadowsArguments(fl *ast.FuncLit) bool {
	for _, p := range fl.Params {
		if id, ok := p.Target.(*ast.Ident); ok && id.Name == "arguments" {
			return true
		}
	}
	if id, ok := fl.RestParam.(*ast.Ident); ok && id.Name == "arguments" {
		return true
	}
	for _, s := range fl.Body {
		switch decl := s.(type) {
		case *ast.VarDecl:
			for _, d := range decl.Decls {
				if id, ok := d.Target.(*ast.Ident); ok && id.Name == "arguments" {
					return true
				}
			}
		case *ast.FuncDecl:
			if decl.Fn.Name == "arguments" {
				return true
			}
		}
	}
	return false
}

// createArguments builds the arguments exotic object. Sloppy functions
// with simple parameter lists get the mapped form whose index properties
// alias the parameter bindings; everything else gets a snapshot.
func (i *Interpreter) createArguments(sf *scriptFunction, fnObj *object.Object, args []object.Value, funcEnv *Environment) *object.Object {
	ao := i.store.NewArguments(sf.realm.ObjectProto)
	for idx, v := range args {
		ao.InsertValue(object.FormatNumber(float64(idx)), v)
	}
	ao.InsertBuiltin("length", object.NewNumber(float64(len(args))))
	if !sf.fn.Strict {
		ao.InsertBuiltin("callee", fnObj)
		if simpleParameters(sf.fn) {
			limit := len(sf.fn.Params)
			if len(args) < limit {
				limit = len(args)
			}
			for idx := 0; idx < limit; idx++ {
				name := sf.fn.Params[idx].Target.(*ast.Ident).Name
				ao.MapParameter(object.FormatNumber(float64(idx)), name, funcEnv)
			}
		}
	}
	return ao
}

func simpleParameters(fl *ast.FuncLit) bool {
	if fl.RestParam != nil {
		return false
	}
	for _, p := range fl.Params {
		if p.Default != nil {
			return false
		}
		if _, ok := p.Target.(*ast.Ident); !ok {
			return false
		}
	}
	return true
}

// construct implements new expressions: [[Construct]] for script
// functions, bound function chains, and constructible built-ins.
func (i *Interpreter) construct(fn object.Value, args []object.Value) Completion {
	obj, ok := fn.(*object.Object)
	if !ok || !obj.IsCallable() {
		return i.typeError("%s is not a constructor", describeCallee(fn))
	}

	if obj.Kind() == object.BoundFunctionKind {
		combined := make([]object.Value, 0, len(obj.BoundArgs())+len(args))
		combined = append(combined, obj.BoundArgs()...)
		combined = append(combined, args...)
		return i.construct(obj.BoundTarget(), combined)
	}

	if sf, ok := obj.Callable().(*scriptFunction); ok {
		if sf.fn.IsArrow || sf.fn.IsGenerator {
			return i.typeError("%s is not a constructor", describeCallee(fn))
		}
	}

	r := i.currentRealm()
	proto := r.ObjectProto
	if p := obj.GetOwn("prototype"); p != nil && p.IsData() {
		if po, ok := p.Value.(*object.Object); ok {
			proto = po
		}
	}
	this := i.store.NewObject(proto)

	result := i.callValue(obj, this, args)
	if result.Kind != NormalCompletion {
		return result
	}
	if _, isObj := result.Value.(*object.Object); isObj {
		return result
	}
	return NormalOf(this)
}
