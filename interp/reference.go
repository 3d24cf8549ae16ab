package interp

import "github.com/cloudcmds/marmoset/object"

// reference is a reference record: the resolved target of an identifier
// or property expression, read or written through the interpreter so
// that accessors and TDZ checks apply.
type reference struct {
	env    *Environment // environment reference when non-nil
	base   object.Value // property reference base when non-nil
	name   string
	strict bool
}

func (r *reference) isUnresolvable() bool {
	return r.env == nil && r.base == nil
}

func (r *reference) isProperty() bool {
	return r.base != nil
}

// resolveBinding produces a reference record for a name: the holding
// environment, a property reference on the global object, or an
// unresolvable reference.
func (i *Interpreter) resolveBinding(name string, env *Environment, strict bool) *reference {
	if holder, _ := env.resolve(name); holder != nil {
		return &reference{env: holder, name: name, strict: strict}
	}
	if global := i.currentRealm().GlobalObject; global != nil && global.HasProperty(name) {
		return &reference{base: global, name: name, strict: strict}
	}
	return &reference{name: name, strict: strict}
}

// getValue dereferences a reference record.
func (i *Interpreter) getValue(r *reference) Completion {
	switch {
	case r.isUnresolvable():
		return i.referenceError("%s is not defined", r.name)
	case r.isProperty():
		return i.getMember(r.base, r.name)
	default:
		v, status := r.env.Get(r.name)
		switch status {
		case BindUninitialized:
			return i.referenceError("Cannot access '%s' before initialization", r.name)
		case BindNotFound:
			return i.referenceError("%s is not defined", r.name)
		}
		return NormalOf(v)
	}
}

// putValue writes through a reference record. Unresolvable writes throw
// in strict mode and create a global object property otherwise.
func (i *Interpreter) putValue(r *reference, v object.Value) Completion {
	switch {
	case r.isUnresolvable():
		if r.strict {
			return i.referenceError("%s is not defined", r.name)
		}
		i.currentRealm().GlobalObject.InsertValue(r.name, v)
		return Empty()
	case r.isProperty():
		return i.setMember(r.base, r.name, v, r.strict)
	default:
		switch r.env.Set(r.name, v) {
		case BindUninitialized:
			return i.referenceError("Cannot access '%s' before initialization", r.name)
		case BindImmutable:
			return i.typeError("Assignment to constant variable.")
		case BindNotFound:
			return i.referenceError("%s is not defined", r.name)
		}
		return Empty()
	}
}
