package interp

import (
	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/object"
)

func (i *Interpreter) strict() bool {
	if ctx := i.currentContext(); ctx != nil {
		return ctx.Strict
	}
	return false
}

// evalExpr evaluates an expression to a completion. Abrupt completions
// are always throws; break, continue, and return never originate in
// expressions.
func (i *Interpreter) evalExpr(expr ast.Expr, env *Environment) Completion {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return NormalOf(object.NewNumber(e.Value))
	case *ast.StringLit:
		return NormalOf(object.NewString(e.Value))
	case *ast.BoolLit:
		return NormalOf(object.NewBool(e.Value))
	case *ast.NullLit:
		return NormalOf(object.Null)

	case *ast.Ident:
		return i.getValue(i.resolveBinding(e.Name, env, i.strict()))

	case *ast.This:
		if v, ok := env.This(); ok {
			return NormalOf(v)
		}
		return NormalOf(object.Undefined)

	case *ast.ArrayLit:
		return i.evalArrayLit(e, env)

	case *ast.ObjectLit:
		return i.evalObjectLit(e, env)

	case *ast.FuncLit:
		return NormalOf(i.makeFunction(e, env, i.currentRealm()))

	case *ast.Member:
		base := i.evalExpr(e.Object, env)
		if base.IsAbrupt() {
			return base
		}
		return i.getMember(base.Value, e.Property)

	case *ast.Index:
		base := i.evalExpr(e.Object, env)
		if base.IsAbrupt() {
			return base
		}
		kc := i.evalExpr(e.Key, env)
		if kc.IsAbrupt() {
			return kc
		}
		key, c := i.toPropertyKey(kc.Value)
		if c.IsAbrupt() {
			return c
		}
		return i.getMember(base.Value, key)

	case *ast.Call:
		return i.evalCall(e, env)

	case *ast.New:
		callee := i.evalExpr(e.Callee, env)
		if callee.IsAbrupt() {
			return callee
		}
		args, c := i.evalArgs(e.Args, env)
		if c.IsAbrupt() {
			return c
		}
		return i.construct(callee.Value, args)

	case *ast.Unary:
		return i.evalUnary(e, env)

	case *ast.Update:
		return i.evalUpdate(e, env)

	case *ast.Binary:
		lc := i.evalExpr(e.L, env)
		if lc.IsAbrupt() {
			return lc
		}
		rc := i.evalExpr(e.R, env)
		if rc.IsAbrupt() {
			return rc
		}
		return i.evalBinaryOp(e.Op, lc.Value, rc.Value)

	case *ast.Logical:
		lc := i.evalExpr(e.L, env)
		if lc.IsAbrupt() {
			return lc
		}
		switch e.Op {
		case ast.OpAnd:
			if !object.Truthy(lc.Value) {
				return lc
			}
		case ast.OpOr:
			if object.Truthy(lc.Value) {
				return lc
			}
		default: // ??
			if !isNullish(lc.Value) {
				return lc
			}
		}
		return i.evalExpr(e.R, env)

	case *ast.Conditional:
		tc := i.evalExpr(e.Test, env)
		if tc.IsAbrupt() {
			return tc
		}
		if object.Truthy(tc.Value) {
			return i.evalExpr(e.Cons, env)
		}
		return i.evalExpr(e.Alt, env)

	case *ast.Sequence:
		var last Completion = NormalOf(object.Undefined)
		for _, x := range e.Exprs {
			last = i.evalExpr(x, env)
			if last.IsAbrupt() {
				return last
			}
		}
		return last

	case *ast.Assign:
		return i.evalAssign(e, env)

	case *ast.Yield:
		// Yields are lowered away before a generator body executes; one
		// reaching the evaluator sits outside any generator.
		return i.syntaxError("yield is only valid inside a generator function")

	case *ast.Spread:
		return i.syntaxError("unexpected spread element")
	}
	return i.syntaxError("unsupported expression")
}

func (i *Interpreter) evalArrayLit(e *ast.ArrayLit, env *Environment) Completion {
	r := i.currentRealm()
	arr := i.store.NewArray(r.ArrayProto)
	next := 0
	for _, el := range e.Elems {
		if el == nil {
			next++ // elision leaves a hole
			continue
		}
		if sp, ok := el.(*ast.Spread); ok {
			vc := i.evalExpr(sp.X, env)
			if vc.IsAbrupt() {
				return vc
			}
			items, c := i.iterateToSlice(vc.Value)
			if c.IsAbrupt() {
				return c
			}
			for _, item := range items {
				arr.DefineOwn(object.FormatNumber(float64(next)), object.DataDescriptor(item, true, true, true))
				next++
			}
			continue
		}
		vc := i.evalExpr(el, env)
		if vc.IsAbrupt() {
			return vc
		}
		arr.DefineOwn(object.FormatNumber(float64(next)), object.DataDescriptor(vc.Value, true, true, true))
		next++
	}
	if arrayLength(arr) != next {
		arr.DefineOwn("length", object.ValueDescriptor(object.NewNumber(float64(next))))
	}
	return NormalOf(arr)
}

func (i *Interpreter) evalObjectLit(e *ast.ObjectLit, env *Environment) Completion {
	r := i.currentRealm()
	o := i.store.NewObject(r.ObjectProto)
	for _, p := range e.Props {
		key := p.Key
		if p.Computed {
			kc := i.evalExpr(p.KeyExpr, env)
			if kc.IsAbrupt() {
				return kc
			}
			k, c := i.toPropertyKey(kc.Value)
			if c.IsAbrupt() {
				return c
			}
			key = k
		}
		switch p.Kind {
		case ast.PropGetter, ast.PropSetter:
			vc := i.evalExpr(p.Value, env)
			if vc.IsAbrupt() {
				return vc
			}
			desc := &object.Descriptor{}
			if p.Kind == ast.PropGetter {
				desc.Get = vc.Value
			} else {
				desc.Set = vc.Value
			}
			t := true
			desc.Enumerable = &t
			desc.Configurable = &t
			ok, c := i.defineOrRange(o, key, desc)
			if c.IsAbrupt() {
				return c
			}
			if !ok {
				return i.typeError("Cannot redefine property: %s", key)
			}
		default:
			vc := i.evalExpr(p.Value, env)
			if vc.IsAbrupt() {
				return vc
			}
			o.InsertValue(key, vc.Value)
		}
	}
	return NormalOf(o)
}

// evalArgs evaluates call arguments left to right, expanding spread
// elements in place.
func (i *Interpreter) evalArgs(args []ast.Expr, env *Environment) ([]object.Value, Completion) {
	var out []object.Value
	for _, arg := range args {
		if sp, ok := arg.(*ast.Spread); ok {
			vc := i.evalExpr(sp.X, env)
			if vc.IsAbrupt() {
				return nil, vc
			}
			items, c := i.iterateToSlice(vc.Value)
			if c.IsAbrupt() {
				return nil, c
			}
			out = append(out, items...)
			continue
		}
		vc := i.evalExpr(arg, env)
		if vc.IsAbrupt() {
			return nil, vc
		}
		out = append(out, vc.Value)
	}
	return out, Empty()
}

// evalCall evaluates a call expression, computing the this value from
// the callee shape: property calls pass their base object.
func (i *Interpreter) evalCall(e *ast.Call, env *Environment) Completion {
	var thisVal object.Value = object.Undefined
	var fn object.Value

	switch callee := e.Callee.(type) {
	case *ast.Member:
		base := i.evalExpr(callee.Object, env)
		if base.IsAbrupt() {
			return base
		}
		fc := i.getMember(base.Value, callee.Property)
		if fc.IsAbrupt() {
			return fc
		}
		thisVal = base.Value
		fn = fc.Value
	case *ast.Index:
		base := i.evalExpr(callee.Object, env)
		if base.IsAbrupt() {
			return base
		}
		kc := i.evalExpr(callee.Key, env)
		if kc.IsAbrupt() {
			return kc
		}
		key, c := i.toPropertyKey(kc.Value)
		if c.IsAbrupt() {
			return c
		}
		fc := i.getMember(base.Value, key)
		if fc.IsAbrupt() {
			return fc
		}
		thisVal = base.Value
		fn = fc.Value
	default:
		fc := i.evalExpr(e.Callee, env)
		if fc.IsAbrupt() {
			return fc
		}
		fn = fc.Value
	}

	args, c := i.evalArgs(e.Args, env)
	if c.IsAbrupt() {
		return c
	}
	return i.callValue(fn, thisVal, args)
}

func (i *Interpreter) evalUnary(e *ast.Unary, env *Environment) Completion {
	switch e.Op {
	case ast.OpTypeof:
		// typeof tolerates unresolvable names but not dead-zone reads.
		if id, ok := e.Operand.(*ast.Ident); ok {
			ref := i.resolveBinding(id.Name, env, i.strict())
			if ref.isUnresolvable() {
				return NormalOf(object.NewString("undefined"))
			}
			vc := i.getValue(ref)
			if vc.IsAbrupt() {
				return vc
			}
			return NormalOf(object.NewString(typeofString(vc.Value)))
		}
		vc := i.evalExpr(e.Operand, env)
		if vc.IsAbrupt() {
			return vc
		}
		return NormalOf(object.NewString(typeofString(vc.Value)))

	case ast.OpDelete:
		return i.evalDelete(e.Operand, env)

	default:
		vc := i.evalExpr(e.Operand, env)
		if vc.IsAbrupt() {
			return vc
		}
		return i.evalUnaryOp(e.Op, vc.Value)
	}
}

// evalDelete implements the delete operator: boolean result, TypeError
// in strict mode when the property is non-configurable.
func (i *Interpreter) evalDelete(operand ast.Expr, env *Environment) Completion {
	var baseVal object.Value
	var key string
	switch t := operand.(type) {
	case *ast.Member:
		bc := i.evalExpr(t.Object, env)
		if bc.IsAbrupt() {
			return bc
		}
		baseVal = bc.Value
		key = t.Property
	case *ast.Index:
		bc := i.evalExpr(t.Object, env)
		if bc.IsAbrupt() {
			return bc
		}
		kc := i.evalExpr(t.Key, env)
		if kc.IsAbrupt() {
			return kc
		}
		k, c := i.toPropertyKey(kc.Value)
		if c.IsAbrupt() {
			return c
		}
		baseVal = bc.Value
		key = k
	case *ast.Ident:
		// Bindings are not deletable; global object properties are.
		ref := i.resolveBinding(t.Name, env, i.strict())
		if ref.isProperty() {
			if o, ok := ref.base.(*object.Object); ok {
				return NormalOf(object.NewBool(o.Delete(t.Name)))
			}
		}
		return NormalOf(object.NewBool(ref.isUnresolvable()))
	default:
		return NormalOf(object.True)
	}

	if isNullish(baseVal) {
		return i.typeError("Cannot convert %s to object", object.AsString(baseVal))
	}
	o, ok := baseVal.(*object.Object)
	if !ok {
		return NormalOf(object.True)
	}
	ok = o.Delete(key)
	if !ok && i.strict() {
		return i.typeError("Cannot delete property '%s' of %s", key, o.Inspect())
	}
	return NormalOf(object.NewBool(ok))
}

func (i *Interpreter) evalUpdate(e *ast.Update, env *Environment) Completion {
	ref, c := i.evalRef(e.Operand, env)
	if c.IsAbrupt() {
		return c
	}
	oc := i.getValue(ref)
	if oc.IsAbrupt() {
		return oc
	}
	old, nc := i.toNumberValue(oc.Value)
	if nc.IsAbrupt() {
		return nc
	}
	delta := 1.0
	if e.Op == ast.OpDecrement {
		delta = -1.0
	}
	updated := object.NewNumber(old + delta)
	if pc := i.putValue(ref, updated); pc.IsAbrupt() {
		return pc
	}
	if e.Prefix {
		return NormalOf(updated)
	}
	return NormalOf(object.NewNumber(old))
}

// evalRef resolves an expression to a reference record for read-write
// operations.
func (i *Interpreter) evalRef(expr ast.Expr, env *Environment) (*reference, Completion) {
	switch t := expr.(type) {
	case *ast.Ident:
		return i.resolveBinding(t.Name, env, i.strict()), Empty()
	case *ast.Member:
		bc := i.evalExpr(t.Object, env)
		if bc.IsAbrupt() {
			return nil, bc
		}
		return &reference{base: bc.Value, name: t.Property, strict: i.strict()}, Empty()
	case *ast.Index:
		bc := i.evalExpr(t.Object, env)
		if bc.IsAbrupt() {
			return nil, bc
		}
		kc := i.evalExpr(t.Key, env)
		if kc.IsAbrupt() {
			return nil, kc
		}
		key, c := i.toPropertyKey(kc.Value)
		if c.IsAbrupt() {
			return nil, c
		}
		return &reference{base: bc.Value, name: key, strict: i.strict()}, Empty()
	}
	return nil, i.syntaxError("Invalid assignment target")
}

var compoundOps = map[ast.AssignOp]ast.BinaryOp{
	ast.OpAddAssign: ast.OpAdd,
	ast.OpSubAssign: ast.OpSub,
	ast.OpMulAssign: ast.OpMul,
	ast.OpDivAssign: ast.OpDiv,
	ast.OpModAssign: ast.OpMod,
}

func (i *Interpreter) evalAssign(e *ast.Assign, env *Environment) Completion {
	// Destructuring assignment: pattern targets with plain assignment.
	if e.Op == ast.OpAssign {
		switch pat := e.Target.(type) {
		case *ast.ArrayPattern, *ast.ObjectPattern:
			vc := i.evalExpr(e.Value, env)
			if vc.IsAbrupt() {
				return vc
			}
			if c := i.assignPattern(pat.(ast.Pattern), vc.Value, env, i.strict()); c.IsAbrupt() {
				return c
			}
			return NormalOf(vc.Value)
		}
	}

	target, ok := e.Target.(ast.Expr)
	if !ok {
		return i.syntaxError("Invalid assignment target")
	}
	ref, c := i.evalRef(target, env)
	if c.IsAbrupt() {
		return c
	}

	var value object.Value
	if op, compound := compoundOps[e.Op]; compound {
		oc := i.getValue(ref)
		if oc.IsAbrupt() {
			return oc
		}
		vc := i.evalExpr(e.Value, env)
		if vc.IsAbrupt() {
			return vc
		}
		rc := i.evalBinaryOp(op, oc.Value, vc.Value)
		if rc.IsAbrupt() {
			return rc
		}
		value = rc.Value
	} else {
		vc := i.evalExpr(e.Value, env)
		if vc.IsAbrupt() {
			return vc
		}
		value = vc.Value
	}

	if pc := i.putValue(ref, value); pc.IsAbrupt() {
		return pc
	}
	return NormalOf(value)
}
