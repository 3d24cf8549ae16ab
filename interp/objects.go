package interp

import (
	"fmt"
	"unicode/utf16"

	"github.com/cloudcmds/marmoset/object"
)

// throwError builds a language-level error object on the given
// prototype and wraps it in a throw completion.
func (i *Interpreter) throwError(proto *object.Object, format string, args ...any) Completion {
	err := i.newError(proto, fmt.Sprintf(format, args...))
	err.SetInternal("stack", i.captureStack())
	return Throw(err)
}

func (i *Interpreter) typeError(format string, args ...any) Completion {
	return i.throwError(i.currentRealm().TypeErrorProto, format, args...)
}

func (i *Interpreter) rangeError(format string, args ...any) Completion {
	return i.throwError(i.currentRealm().RangeErrorProto, format, args...)
}

func (i *Interpreter) referenceError(format string, args ...any) Completion {
	return i.throwError(i.currentRealm().ReferenceErrorProto, format, args...)
}

func (i *Interpreter) syntaxError(format string, args ...any) Completion {
	return i.throwError(i.currentRealm().SyntaxErrorProto, format, args...)
}

// getMember reads base[key] with base as the receiver, routing through
// getters. Primitive bases resolve against the realm's prototypes
// without being boxed.
func (i *Interpreter) getMember(base object.Value, key string) Completion {
	switch b := base.(type) {
	case nil, *object.UndefinedType, *object.NullType:
		return i.typeError("Cannot read properties of %s (reading '%s')", object.AsString(base), key)
	case *object.Object:
		return i.getProperty(b, key, b)
	case *object.String:
		if v, ok := stringOwnValue(b.Value(), key); ok {
			return NormalOf(v)
		}
		return i.getProperty(i.currentRealm().StringProto, key, base)
	default:
		return i.getProperty(i.currentRealm().ObjectProto, key, base)
	}
}

// stringOwnValue synthesizes the length and index values of a string
// primitive, measured in UTF-16 code units.
func stringOwnValue(s, key string) (object.Value, bool) {
	units := utf16.Encode([]rune(s))
	if key == "length" {
		return object.NewNumber(float64(len(units))), true
	}
	if idx, ok := object.ArrayIndex(key); ok && int(idx) < len(units) {
		return object.NewString(string(utf16.Decode(units[idx : idx+1]))), true
	}
	return nil, false
}

// getProperty is the accessor-aware [[Get]]: it walks the prototype
// chain and invokes getters with the original receiver.
func (i *Interpreter) getProperty(o *object.Object, key string, receiver object.Value) Completion {
	for cursor := o; cursor != nil; cursor = cursor.Prototype() {
		p := cursor.GetOwn(key)
		if p == nil {
			continue
		}
		if p.IsData() {
			return NormalOf(p.Value)
		}
		getter := p.Get
		if getter == nil || getter == object.Value(object.Undefined) {
			return NormalOf(object.Undefined)
		}
		return i.callValue(getter, receiver, nil)
	}
	return NormalOf(object.Undefined)
}

// setMember writes base[key] = v. The boolean failure of the underlying
// set is converted to a TypeError here, at the language call site, only
// in strict mode.
func (i *Interpreter) setMember(base object.Value, key string, v object.Value, strict bool) Completion {
	switch b := base.(type) {
	case nil, *object.UndefinedType, *object.NullType:
		return i.typeError("Cannot set properties of %s (setting '%s')", object.AsString(base), key)
	case *object.Object:
		ok, c := i.setProperty(b, key, v, b)
		if c.IsAbrupt() {
			return c
		}
		if !ok && strict {
			return i.typeError("Cannot assign to read only property '%s' of object", key)
		}
		return Empty()
	default:
		// Primitive receivers may still hit a setter on the prototype.
		proto := i.currentRealm().ObjectProto
		if _, isStr := base.(*object.String); isStr {
			proto = i.currentRealm().StringProto
		}
		for cursor := proto; cursor != nil; cursor = cursor.Prototype() {
			if p := cursor.GetOwn(key); p != nil && p.IsAccessor() {
				if p.Set == nil || p.Set == object.Value(object.Undefined) {
					break
				}
				c := i.callValue(p.Set, b, []object.Value{v})
				if c.Kind == ThrowCompletion {
					return c
				}
				return Empty()
			}
		}
		if strict {
			return i.typeError("Cannot create property '%s' on %s", key, base.Type())
		}
		return Empty()
	}
}

// setProperty is the accessor-aware [[Set]] with an explicit receiver:
// setters run against the receiver, and plain writes create or update a
// data property on the receiver, never on the prototype that supplied
// the existing property.
func (i *Interpreter) setProperty(o *object.Object, key string, v object.Value, receiver object.Value) (bool, Completion) {
	var holder *object.Property
	for cursor := o; cursor != nil; cursor = cursor.Prototype() {
		if p := cursor.GetOwn(key); p != nil {
			holder = p
			break
		}
	}
	if holder != nil {
		if holder.IsAccessor() {
			if holder.Set == nil || holder.Set == object.Value(object.Undefined) {
				return false, Empty()
			}
			c := i.callValue(holder.Set, receiver, []object.Value{v})
			if c.Kind == ThrowCompletion {
				return false, c
			}
			return true, Empty()
		}
		if !holder.Writable {
			return false, Empty()
		}
	}
	recv, ok := receiver.(*object.Object)
	if !ok {
		return false, Empty()
	}
	if existing := recv.GetOwn(key); existing != nil {
		if existing.IsAccessor() || !existing.Writable {
			return false, Empty()
		}
		return i.defineOrRange(recv, key, object.ValueDescriptor(v))
	}
	if !recv.Extensible() {
		return false, Empty()
	}
	return i.defineOrRange(recv, key, object.DataDescriptor(v, true, true, true))
}

// defineOrRange runs [[DefineOwnProperty]] and converts an array length
// coercion failure into a RangeError. The boolean channel stays boolean.
func (i *Interpreter) defineOrRange(o *object.Object, key string, desc *object.Descriptor) (bool, Completion) {
	ok, err := o.DefineOwn(key, desc)
	if err != nil {
		return false, i.rangeError("Invalid array length")
	}
	return ok, Empty()
}

// toObject boxes a primitive for property access, or rejects null and
// undefined.
func (i *Interpreter) toObject(v object.Value) (*object.Object, Completion) {
	r := i.currentRealm()
	switch v := v.(type) {
	case *object.Object:
		return v, Empty()
	case *object.String:
		return i.store.NewStringObject(r.StringProto, v), Empty()
	case *object.Number:
		return i.store.NewNamed("Number", r.ObjectProto), Empty()
	case *object.Bool:
		return i.store.NewNamed("Boolean", r.ObjectProto), Empty()
	default:
		return nil, i.typeError("Cannot convert %s to object", object.AsString(v))
	}
}

// toPrimitive converts an object by calling its valueOf and toString
// methods in hint order. Primitives pass through.
type primitiveHint uint8

const (
	hintDefault primitiveHint = iota
	hintNumber
	hintString
)

func (i *Interpreter) toPrimitive(v object.Value, hint primitiveHint) Completion {
	o, ok := v.(*object.Object)
	if !ok {
		return NormalOf(v)
	}
	methods := []string{"valueOf", "toString"}
	if hint == hintString {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		c := i.getProperty(o, name, o)
		if c.IsAbrupt() {
			return c
		}
		m, ok := c.Value.(*object.Object)
		if !ok || !m.IsCallable() {
			continue
		}
		res := i.callValue(m, o, nil)
		if res.IsAbrupt() {
			return res
		}
		if _, isObj := res.Value.(*object.Object); !isObj {
			return res
		}
	}
	return i.typeError("Cannot convert object to primitive value")
}

func (i *Interpreter) toStringValue(v object.Value) (string, Completion) {
	c := i.toPrimitive(v, hintString)
	if c.IsAbrupt() {
		return "", c
	}
	return object.AsString(c.Value), Empty()
}

func (i *Interpreter) toNumberValue(v object.Value) (float64, Completion) {
	c := i.toPrimitive(v, hintNumber)
	if c.IsAbrupt() {
		return 0, c
	}
	return object.ToNumber(c.Value), Empty()
}

func (i *Interpreter) toPropertyKey(v object.Value) (string, Completion) {
	return i.toStringValue(v)
}

// newArrayOf allocates an array holding the given elements.
func (i *Interpreter) newArrayOf(r *Realm, elems []object.Value) *object.Object {
	arr := i.store.NewArray(r.ArrayProto)
	for idx, v := range elems {
		arr.DefineOwn(object.FormatNumber(float64(idx)), object.DataDescriptor(v, true, true, true))
	}
	return arr
}

// arrayLength reads an array's length as an int.
func arrayLength(o *object.Object) int {
	p := o.GetOwn("length")
	if p == nil || !p.IsData() {
		return 0
	}
	n, ok := p.Value.(*object.Number)
	if !ok {
		return 0
	}
	return int(object.ToUint32(n.Value()))
}

// iterResultObject builds a {value, done} object.
func (i *Interpreter) iterResultObject(r *Realm, v object.Value, done bool) *object.Object {
	o := i.store.NewObject(r.ObjectProto)
	o.InsertValue("value", v)
	o.InsertValue("done", object.NewBool(done))
	return o
}

// parseIterResult validates and unpacks an iterator result object.
func (i *Interpreter) parseIterResult(v object.Value) (object.Value, bool, Completion) {
	o, ok := v.(*object.Object)
	if !ok {
		return nil, false, i.typeError("Iterator result %s is not an object", object.AsString(v))
	}
	dc := i.getProperty(o, "done", o)
	if dc.IsAbrupt() {
		return nil, false, dc
	}
	vc := i.getProperty(o, "value", o)
	if vc.IsAbrupt() {
		return nil, false, vc
	}
	return vc.Value, object.Truthy(dc.Value), Empty()
}

// getIteratorObject turns a value into an iterator object carrying a
// next method: generator objects and anything with a callable next pass
// through; arrays and strings get a fresh indexed iterator.
func (i *Interpreter) getIteratorObject(v object.Value) (*object.Object, Completion) {
	r := i.currentRealm()
	switch v := v.(type) {
	case *object.Object:
		c := i.getProperty(v, "next", v)
		if c.IsAbrupt() {
			return nil, c
		}
		if m, ok := c.Value.(*object.Object); ok && m.IsCallable() {
			return v, Empty()
		}
		if v.Kind() == object.ArrayKind || v.Kind() == object.ArgumentsKind {
			return i.makeIndexedIterator(r, v), Empty()
		}
		if v.Kind() == object.StringKind {
			if s, ok := v.PrimitiveValue().(*object.String); ok {
				return i.makeStringIterator(r, s.Value()), Empty()
			}
		}
		return nil, i.typeError("%s is not iterable", object.AsString(v))
	case *object.String:
		return i.makeStringIterator(r, v.Value()), Empty()
	default:
		return nil, i.typeError("%s is not iterable", object.AsString(v))
	}
}

// makeIndexedIterator iterates an array by live index reads.
func (i *Interpreter) makeIndexedIterator(r *Realm, arr *object.Object) *object.Object {
	idx := 0
	it := i.store.NewObject(r.ObjectProto)
	it.InsertBuiltin("next", i.newNative(r, "next", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		if idx >= arrayLength(arr) {
			return NormalOf(i.iterResultObject(r, object.Undefined, true))
		}
		c := i.getProperty(arr, object.FormatNumber(float64(idx)), arr)
		if c.IsAbrupt() {
			return c
		}
		idx++
		return NormalOf(i.iterResultObject(r, c.Value, false))
	}))
	return it
}

// makeStringIterator iterates a string by code points.
func (i *Interpreter) makeStringIterator(r *Realm, s string) *object.Object {
	runes := []rune(s)
	idx := 0
	it := i.store.NewObject(r.ObjectProto)
	it.InsertBuiltin("next", i.newNative(r, "next", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		if idx >= len(runes) {
			return NormalOf(i.iterResultObject(r, object.Undefined, true))
		}
		v := object.NewString(string(runes[idx]))
		idx++
		return NormalOf(i.iterResultObject(r, v, false))
	}))
	return it
}

// iteratorStep calls next on an iterator object and unpacks the result.
func (i *Interpreter) iteratorStep(it *object.Object, sent object.Value) (object.Value, bool, Completion) {
	c := i.getProperty(it, "next", it)
	if c.IsAbrupt() {
		return nil, false, c
	}
	var args []object.Value
	if sent != nil {
		args = []object.Value{sent}
	}
	res := i.callValue(c.Value, it, args)
	if res.IsAbrupt() {
		return nil, false, res
	}
	return i.parseIterResult(res.Value)
}

// iteratorClose calls the iterator's return method if present, ignoring
// secondary failures.
func (i *Interpreter) iteratorClose(it *object.Object) {
	c := i.getProperty(it, "return", it)
	if c.IsAbrupt() {
		return
	}
	if m, ok := c.Value.(*object.Object); ok && m.IsCallable() {
		i.callValue(m, it, nil)
	}
}

// iterateToSlice drains an iterable into a slice, used by spread
// arguments and array destructuring.
func (i *Interpreter) iterateToSlice(v object.Value) ([]object.Value, Completion) {
	it, c := i.getIteratorObject(v)
	if c.IsAbrupt() {
		return nil, c
	}
	var out []object.Value
	for {
		val, done, step := i.iteratorStep(it, nil)
		if step.IsAbrupt() {
			return nil, step
		}
		if done {
			return out, Empty()
		}
		out = append(out, val)
	}
}
