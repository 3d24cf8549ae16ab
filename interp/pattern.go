package interp

import (
	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/object"
)

// destructure walks a binding pattern over a value, delivering every
// leaf identifier and its value to bind. Defaults evaluate in env only
// when the incoming value is undefined.
func (i *Interpreter) destructure(pat ast.Pattern, value object.Value, env *Environment, bind func(name string, v object.Value) Completion) Completion {
	switch p := pat.(type) {
	case *ast.Ident:
		return bind(p.Name, value)

	case *ast.ArrayPattern:
		items, c := i.iterateToSlice(value)
		if c.IsAbrupt() {
			return c
		}
		for idx, el := range p.Elems {
			if el == nil {
				continue // elision
			}
			var v object.Value = object.Undefined
			if idx < len(items) {
				v = items[idx]
			}
			if el.Default != nil {
				if _, isUndef := v.(*object.UndefinedType); isUndef {
					dc := i.evalExpr(el.Default, env)
					if dc.IsAbrupt() {
						return dc
					}
					v = dc.Value
				}
			}
			if c := i.destructure(el.Target, v, env, bind); c.IsAbrupt() {
				return c
			}
		}
		if p.Rest != nil {
			var rest []object.Value
			if len(items) > len(p.Elems) {
				rest = items[len(p.Elems):]
			}
			arr := i.newArrayOf(i.currentRealm(), rest)
			return i.destructure(p.Rest, arr, env, bind)
		}
		return Empty()

	case *ast.ObjectPattern:
		if isNullish(value) {
			return i.typeError("Cannot destructure '%s' as it is %s",
				object.AsString(value), object.AsString(value))
		}
		consumed := map[string]bool{}
		for _, pp := range p.Props {
			consumed[pp.Key] = true
			vc := i.getMember(value, pp.Key)
			if vc.IsAbrupt() {
				return vc
			}
			v := vc.Value
			if pp.Default != nil {
				if _, isUndef := v.(*object.UndefinedType); isUndef {
					dc := i.evalExpr(pp.Default, env)
					if dc.IsAbrupt() {
						return dc
					}
					v = dc.Value
				}
			}
			if c := i.destructure(pp.Target, v, env, bind); c.IsAbrupt() {
				return c
			}
		}
		if p.Rest != nil {
			rest := i.store.NewObject(i.currentRealm().ObjectProto)
			if src, ok := value.(*object.Object); ok {
				for _, key := range src.OwnKeys() {
					if consumed[key] {
						continue
					}
					if prop := src.GetOwn(key); prop != nil && prop.Enumerable {
						vc := i.getProperty(src, key, src)
						if vc.IsAbrupt() {
							return vc
						}
						rest.InsertValue(key, vc.Value)
					}
				}
			}
			return i.destructure(p.Rest, rest, env, bind)
		}
		return Empty()
	}
	return i.syntaxError("invalid binding pattern")
}

// bindPatternDeclare declares and initializes every name a pattern
// introduces in env.
func (i *Interpreter) bindPatternDeclare(env *Environment, pat ast.Pattern, value object.Value, kind BindingKind) Completion {
	return i.destructure(pat, value, env, func(name string, v object.Value) Completion {
		env.Declare(name, kind)
		env.Initialize(name, v)
		return Empty()
	})
}

// bindPatternInitialize initializes pre-declared bindings, used for
// lexical declarations whose names were put in their dead zone at scope
// entry.
func (i *Interpreter) bindPatternInitialize(env *Environment, pat ast.Pattern, value object.Value) Completion {
	return i.destructure(pat, value, env, func(name string, v object.Value) Completion {
		env.Initialize(name, v)
		return Empty()
	})
}

// assignPattern performs destructuring assignment: leaves resolve as
// references and write through putValue.
func (i *Interpreter) assignPattern(pat ast.Pattern, value object.Value, env *Environment, strict bool) Completion {
	return i.destructure(pat, value, env, func(name string, v object.Value) Completion {
		ref := i.resolveBinding(name, env, strict)
		return i.putValue(ref, v)
	})
}

// assignVarPattern writes a hoisted var declaration's value through the
// environment chain, where hoisting already created the bindings.
func (i *Interpreter) assignVarPattern(pat ast.Pattern, value object.Value, env *Environment, strict bool) Completion {
	return i.assignPattern(pat, value, env, strict)
}
