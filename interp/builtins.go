package interp

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/cloudcmds/marmoset/object"
)

// installIntrinsics populates a fresh realm with its built-in objects
// and global bindings.
func (i *Interpreter) installIntrinsics(r *Realm) {
	i.installObjectIntrinsics(r)
	i.installFunctionIntrinsics(r)
	i.installArrayIntrinsics(r)
	i.installStringIntrinsics(r)
	i.installGeneratorIntrinsics(r)
	i.installErrorIntrinsics(r)
	i.installGlobals(r)
}

func (i *Interpreter) method(r *Realm, o *object.Object, name string, fn NativeFn) {
	o.InsertBuiltin(name, i.newNative(r, name, fn))
}

func argAt(args []object.Value, idx int) object.Value {
	if idx < len(args) {
		return args[idx]
	}
	return object.Undefined
}

func isUndefined(v object.Value) bool {
	_, ok := v.(*object.UndefinedType)
	return ok
}

func (i *Interpreter) installObjectIntrinsics(r *Realm) {
	proto := r.ObjectProto

	i.method(r, proto, "hasOwnProperty", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		key, c := i.toPropertyKey(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewBool(o.HasOwn(key)))
	})
	i.method(r, proto, "isPrototypeOf", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		target, ok := argAt(args, 0).(*object.Object)
		if !ok {
			return NormalOf(object.False)
		}
		self, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		for cursor := target.Prototype(); cursor != nil; cursor = cursor.Prototype() {
			if cursor == self {
				return NormalOf(object.True)
			}
		}
		return NormalOf(object.False)
	})
	i.method(r, proto, "propertyIsEnumerable", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		key, c := i.toPropertyKey(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		p := o.GetOwn(key)
		return NormalOf(object.NewBool(p != nil && p.Enumerable))
	})
	i.method(r, proto, "toString", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		switch v := this.(type) {
		case *object.UndefinedType:
			return NormalOf(object.NewString("[object Undefined]"))
		case *object.NullType:
			return NormalOf(object.NewString("[object Null]"))
		case *object.Object:
			return NormalOf(object.NewString(v.Inspect()))
		default:
			o, c := i.toObject(this)
			if c.IsAbrupt() {
				return c
			}
			return NormalOf(object.NewString(o.Inspect()))
		}
	})
	i.method(r, proto, "valueOf", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(o)
	})

	ctor := i.newNative(r, "Object", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		v := argAt(args, 0)
		if isNullish(v) {
			return NormalOf(i.store.NewObject(r.ObjectProto))
		}
		o, c := i.toObject(v)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(o)
	})
	ctor.InsertBuiltin("prototype", proto)
	proto.InsertBuiltin("constructor", ctor)

	i.method(r, ctor, "keys", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		var keys []object.Value
		for _, k := range o.EnumerableKeys() {
			keys = append(keys, object.NewString(k))
		}
		return NormalOf(i.newArrayOf(r, keys))
	})
	i.method(r, ctor, "getOwnPropertyNames", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		var keys []object.Value
		for _, k := range o.OwnKeys() {
			keys = append(keys, object.NewString(k))
		}
		return NormalOf(i.newArrayOf(r, keys))
	})
	i.method(r, ctor, "getPrototypeOf", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		if p := o.Prototype(); p != nil {
			return NormalOf(p)
		}
		return NormalOf(object.Null)
	})
	i.method(r, ctor, "setPrototypeOf", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, ok := argAt(args, 0).(*object.Object)
		if !ok {
			return i.typeError("Object.setPrototypeOf called on non-object")
		}
		var p *object.Object
		switch proto := argAt(args, 1).(type) {
		case *object.NullType:
		case *object.Object:
			p = proto
		default:
			return i.typeError("Object prototype may only be an Object or null")
		}
		if !o.SetPrototype(p) {
			return i.typeError("Cannot set prototype of %s", o.Inspect())
		}
		return NormalOf(o)
	})
	i.method(r, ctor, "create", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		var p *object.Object
		switch proto := argAt(args, 0).(type) {
		case *object.NullType:
		case *object.Object:
			p = proto
		default:
			return i.typeError("Object prototype may only be an Object or null")
		}
		o := i.store.NewObject(p)
		if props, ok := argAt(args, 1).(*object.Object); ok {
			if c := i.definePropertiesFrom(o, props); c.IsAbrupt() {
				return c
			}
		}
		return NormalOf(o)
	})
	i.method(r, ctor, "defineProperty", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, ok := argAt(args, 0).(*object.Object)
		if !ok {
			return i.typeError("Object.defineProperty called on non-object")
		}
		key, c := i.toPropertyKey(argAt(args, 1))
		if c.IsAbrupt() {
			return c
		}
		desc, c := i.toPropertyDescriptor(argAt(args, 2))
		if c.IsAbrupt() {
			return c
		}
		ok, c = i.defineOrRange(o, key, desc)
		if c.IsAbrupt() {
			return c
		}
		if !ok {
			return i.typeError("Cannot redefine property: %s", key)
		}
		return NormalOf(o)
	})
	i.method(r, ctor, "getOwnPropertyDescriptor", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		key, c := i.toPropertyKey(argAt(args, 1))
		if c.IsAbrupt() {
			return c
		}
		p := o.GetOwn(key)
		if p == nil {
			return NormalOf(object.Undefined)
		}
		out := i.store.NewObject(r.ObjectProto)
		if p.IsAccessor() {
			out.InsertValue("get", orUndef(p.Get))
			out.InsertValue("set", orUndef(p.Set))
		} else {
			out.InsertValue("value", orUndef(p.Value))
			out.InsertValue("writable", object.NewBool(p.Writable))
		}
		out.InsertValue("enumerable", object.NewBool(p.Enumerable))
		out.InsertValue("configurable", object.NewBool(p.Configurable))
		return NormalOf(out)
	})
	i.method(r, ctor, "preventExtensions", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		if o, ok := argAt(args, 0).(*object.Object); ok {
			o.PreventExtensions()
		}
		return NormalOf(argAt(args, 0))
	})
	i.method(r, ctor, "isExtensible", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, ok := argAt(args, 0).(*object.Object)
		return NormalOf(object.NewBool(ok && o.Extensible()))
	})
	i.method(r, ctor, "assign", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		target, ok := argAt(args, 0).(*object.Object)
		if !ok {
			return i.typeError("Cannot convert %s to object", object.AsString(argAt(args, 0)))
		}
		for _, src := range args[1:] {
			if isNullish(src) {
				continue
			}
			so, c := i.toObject(src)
			if c.IsAbrupt() {
				return c
			}
			for _, key := range so.EnumerableKeys() {
				vc := i.getProperty(so, key, so)
				if vc.IsAbrupt() {
					return vc
				}
				if c := i.setMember(target, key, vc.Value, true); c.IsAbrupt() {
					return c
				}
			}
		}
		return NormalOf(target)
	})

	r.GlobalObject.InsertBuiltin("Object", ctor)
}

func orUndef(v object.Value) object.Value {
	if v == nil {
		return object.Undefined
	}
	return v
}

// toPropertyDescriptor converts a descriptor object into the internal
// descriptor form, validating accessor fields.
func (i *Interpreter) toPropertyDescriptor(v object.Value) (*object.Descriptor, Completion) {
	o, ok := v.(*object.Object)
	if !ok {
		return nil, i.typeError("Property description must be an object: %s", object.AsString(v))
	}
	desc := &object.Descriptor{}
	readBool := func(key string, dst **bool) Completion {
		if !o.HasProperty(key) {
			return Empty()
		}
		c := i.getProperty(o, key, o)
		if c.IsAbrupt() {
			return c
		}
		b := object.Truthy(c.Value)
		*dst = &b
		return Empty()
	}
	if c := readBool("enumerable", &desc.Enumerable); c.IsAbrupt() {
		return nil, c
	}
	if c := readBool("configurable", &desc.Configurable); c.IsAbrupt() {
		return nil, c
	}
	if c := readBool("writable", &desc.Writable); c.IsAbrupt() {
		return nil, c
	}
	if o.HasProperty("value") {
		c := i.getProperty(o, "value", o)
		if c.IsAbrupt() {
			return nil, c
		}
		desc.Value = c.Value
	}
	readAccessor := func(key string, dst *object.Value) Completion {
		if !o.HasProperty(key) {
			return Empty()
		}
		c := i.getProperty(o, key, o)
		if c.IsAbrupt() {
			return c
		}
		if !isUndefined(c.Value) {
			fn, ok := c.Value.(*object.Object)
			if !ok || !fn.IsCallable() {
				kind := "Getter"
				if key == "set" {
					kind = "Setter"
				}
				return i.typeError("%s must be a function: %s", kind, object.AsString(c.Value))
			}
		}
		*dst = c.Value
		return Empty()
	}
	if c := readAccessor("get", &desc.Get); c.IsAbrupt() {
		return nil, c
	}
	if c := readAccessor("set", &desc.Set); c.IsAbrupt() {
		return nil, c
	}
	if desc.IsAccessor() && (desc.Value != nil || desc.Writable != nil) {
		return nil, i.typeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
	}
	return desc, Empty()
}

// definePropertiesFrom applies a descriptor map to an object.
func (i *Interpreter) definePropertiesFrom(o *object.Object, props *object.Object) Completion {
	for _, key := range props.EnumerableKeys() {
		vc := i.getProperty(props, key, props)
		if vc.IsAbrupt() {
			return vc
		}
		desc, c := i.toPropertyDescriptor(vc.Value)
		if c.IsAbrupt() {
			return c
		}
		ok, c := i.defineOrRange(o, key, desc)
		if c.IsAbrupt() {
			return c
		}
		if !ok {
			return i.typeError("Cannot redefine property: %s", key)
		}
	}
	return Empty()
}

func (i *Interpreter) installFunctionIntrinsics(r *Realm) {
	proto := r.FunctionProto

	i.method(r, proto, "call", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		return i.callValue(this, argAt(args, 0), args[min(1, len(args)):])
	})
	i.method(r, proto, "apply", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		list, c := i.listFromArrayLike(argAt(args, 1))
		if c.IsAbrupt() {
			return c
		}
		return i.callValue(this, argAt(args, 0), list)
	})
	i.method(r, proto, "bind", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		target, ok := this.(*object.Object)
		if !ok || !target.IsCallable() {
			return i.typeError("Bind must be called on a function")
		}
		var bound []object.Value
		if len(args) > 1 {
			bound = append(bound, args[1:]...)
		}
		bf := i.store.NewBoundFunction(r.FunctionProto, target, argAt(args, 0), bound)
		name := ""
		if nc := i.getProperty(target, "name", target); nc.Kind == NormalCompletion {
			name = object.AsString(nc.Value)
		}
		bf.InsertBuiltin("name", object.NewString("bound "+name))
		length := 0.0
		if lc := i.getProperty(target, "length", target); lc.Kind == NormalCompletion {
			length = object.ToNumber(lc.Value) - float64(len(bound))
		}
		if length < 0 {
			length = 0
		}
		bf.InsertBuiltin("length", object.NewNumber(length))
		return NormalOf(bf)
	})
	i.method(r, proto, "toString", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, ok := this.(*object.Object)
		if !ok || !o.IsCallable() {
			return i.typeError("Function.prototype.toString requires that 'this' be a Function")
		}
		name := ""
		if o.Callable() != nil {
			name = o.Callable().FunctionName()
		}
		return NormalOf(object.NewString("function " + name + "() { [native code] }"))
	})
}

// listFromArrayLike reads an array-like value into a slice: length
// property plus index properties.
func (i *Interpreter) listFromArrayLike(v object.Value) ([]object.Value, Completion) {
	if isNullish(v) {
		return nil, Empty()
	}
	o, ok := v.(*object.Object)
	if !ok {
		return nil, i.typeError("CreateListFromArrayLike called on non-object")
	}
	lc := i.getProperty(o, "length", o)
	if lc.IsAbrupt() {
		return nil, lc
	}
	n := int(object.ToIntegerOrInfinity(object.ToNumber(lc.Value)))
	if n < 0 {
		n = 0
	}
	out := make([]object.Value, 0, n)
	for idx := 0; idx < n; idx++ {
		vc := i.getProperty(o, object.FormatNumber(float64(idx)), o)
		if vc.IsAbrupt() {
			return nil, vc
		}
		out = append(out, vc.Value)
	}
	return out, Empty()
}

func (i *Interpreter) installArrayIntrinsics(r *Realm) {
	proto := r.ArrayProto

	ctor := i.newNative(r, "Array", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		if len(args) == 1 {
			if n, ok := args[0].(*object.Number); ok {
				arr := i.store.NewArray(r.ArrayProto)
				if _, err := arr.DefineOwn("length", object.ValueDescriptor(n)); err != nil {
					return i.rangeError("Invalid array length")
				}
				return NormalOf(arr)
			}
		}
		return NormalOf(i.newArrayOf(r, args))
	})
	ctor.InsertBuiltin("prototype", proto)
	proto.InsertBuiltin("constructor", ctor)
	i.method(r, ctor, "isArray", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, ok := argAt(args, 0).(*object.Object)
		return NormalOf(object.NewBool(ok && o.Kind() == object.ArrayKind))
	})
	r.GlobalObject.InsertBuiltin("Array", ctor)

	i.method(r, proto, "push", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		n := arrayLength(o)
		for _, v := range args {
			if c := i.setMember(o, object.FormatNumber(float64(n)), v, true); c.IsAbrupt() {
				return c
			}
			n++
		}
		if c := i.setMember(o, "length", object.NewNumber(float64(n)), true); c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewNumber(float64(n)))
	})
	i.method(r, proto, "pop", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		n := arrayLength(o)
		if n == 0 {
			return NormalOf(object.Undefined)
		}
		key := object.FormatNumber(float64(n - 1))
		vc := i.getProperty(o, key, o)
		if vc.IsAbrupt() {
			return vc
		}
		o.Delete(key)
		if c := i.setMember(o, "length", object.NewNumber(float64(n-1)), true); c.IsAbrupt() {
			return c
		}
		return vc
	})
	i.method(r, proto, "indexOf", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		n := arrayLength(o)
		from := 0
		if len(args) > 1 {
			from = int(object.ToIntegerOrInfinity(object.ToNumber(args[1])))
			if from < 0 {
				from += n
			}
			if from < 0 {
				from = 0
			}
		}
		search := argAt(args, 0)
		for idx := from; idx < n; idx++ {
			key := object.FormatNumber(float64(idx))
			if !o.HasProperty(key) {
				continue
			}
			vc := i.getProperty(o, key, o)
			if vc.IsAbrupt() {
				return vc
			}
			if object.StrictEquals(vc.Value, search) {
				return NormalOf(object.NewNumber(float64(idx)))
			}
		}
		return NormalOf(object.NewNumber(-1))
	})
	join := func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		sep := ","
		if len(args) > 0 && !isUndefined(args[0]) {
			s, c := i.toStringValue(args[0])
			if c.IsAbrupt() {
				return c
			}
			sep = s
		}
		n := arrayLength(o)
		parts := make([]string, 0, n)
		for idx := 0; idx < n; idx++ {
			vc := i.getProperty(o, object.FormatNumber(float64(idx)), o)
			if vc.IsAbrupt() {
				return vc
			}
			if isNullish(vc.Value) {
				parts = append(parts, "")
				continue
			}
			s, c := i.toStringValue(vc.Value)
			if c.IsAbrupt() {
				return c
			}
			parts = append(parts, s)
		}
		return NormalOf(object.NewString(strings.Join(parts, sep)))
	}
	i.method(r, proto, "join", join)
	i.method(r, proto, "toString", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		return join(i, this, nil)
	})
	i.method(r, proto, "slice", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, c := i.toObject(this)
		if c.IsAbrupt() {
			return c
		}
		n := arrayLength(o)
		start, end := sliceRange(argAt(args, 0), argAt(args, 1), n)
		var out []object.Value
		for idx := start; idx < end; idx++ {
			vc := i.getProperty(o, object.FormatNumber(float64(idx)), o)
			if vc.IsAbrupt() {
				return vc
			}
			out = append(out, vc.Value)
		}
		return NormalOf(i.newArrayOf(r, out))
	})
	i.method(r, proto, "forEach", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		_, c := i.arrayIterate(this, argAt(args, 0), argAt(args, 1), nil)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.Undefined)
	})
	i.method(r, proto, "map", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		var out []object.Value
		_, c := i.arrayIterate(this, argAt(args, 0), argAt(args, 1), func(v object.Value) {
			out = append(out, v)
		})
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(i.newArrayOf(r, out))
	})
}

// arrayIterate drives forEach-style callbacks: cb(value, index, array)
// for every present index.
func (i *Interpreter) arrayIterate(this, cb, thisArg object.Value, collect func(object.Value)) (int, Completion) {
	o, c := i.toObject(this)
	if c.IsAbrupt() {
		return 0, c
	}
	fn, ok := cb.(*object.Object)
	if !ok || !fn.IsCallable() {
		return 0, i.typeError("%s is not a function", object.AsString(cb))
	}
	n := arrayLength(o)
	for idx := 0; idx < n; idx++ {
		key := object.FormatNumber(float64(idx))
		if !o.HasProperty(key) {
			if collect != nil {
				collect(object.Undefined)
			}
			continue
		}
		vc := i.getProperty(o, key, o)
		if vc.IsAbrupt() {
			return idx, vc
		}
		rc := i.callValue(fn, thisArg, []object.Value{vc.Value, object.NewNumber(float64(idx)), o})
		if rc.IsAbrupt() {
			return idx, rc
		}
		if collect != nil {
			collect(rc.Value)
		}
	}
	return n, Empty()
}

// sliceRange resolves start and end arguments against a length, with
// negative values counting from the end.
func sliceRange(startArg, endArg object.Value, n int) (int, int) {
	resolve := func(v object.Value, def int) int {
		if isUndefined(v) {
			return def
		}
		idx := int(object.ToIntegerOrInfinity(object.ToNumber(v)))
		if idx < 0 {
			idx += n
		}
		if idx < 0 {
			idx = 0
		}
		if idx > n {
			idx = n
		}
		return idx
	}
	return resolve(startArg, 0), resolve(endArg, n)
}

func (i *Interpreter) installStringIntrinsics(r *Realm) {
	proto := r.StringProto

	thisUnits := func(i *Interpreter, this object.Value) ([]uint16, Completion) {
		switch v := this.(type) {
		case *object.String:
			return utf16.Encode([]rune(v.Value())), Empty()
		case *object.Object:
			if s, ok := v.PrimitiveValue().(*object.String); ok && v.Kind() == object.StringKind {
				return utf16.Encode([]rune(s.Value())), Empty()
			}
		}
		s, c := i.toStringValue(this)
		if c.IsAbrupt() {
			return nil, c
		}
		return utf16.Encode([]rune(s)), Empty()
	}

	i.method(r, proto, "charAt", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		units, c := thisUnits(i, this)
		if c.IsAbrupt() {
			return c
		}
		idx := int(object.ToIntegerOrInfinity(object.ToNumber(argAt(args, 0))))
		if idx < 0 || idx >= len(units) {
			return NormalOf(object.NewString(""))
		}
		return NormalOf(object.NewString(string(utf16.Decode(units[idx : idx+1]))))
	})
	i.method(r, proto, "charCodeAt", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		units, c := thisUnits(i, this)
		if c.IsAbrupt() {
			return c
		}
		idx := int(object.ToIntegerOrInfinity(object.ToNumber(argAt(args, 0))))
		if idx < 0 || idx >= len(units) {
			return NormalOf(object.NewNumber(math.NaN()))
		}
		return NormalOf(object.NewNumber(float64(units[idx])))
	})
	i.method(r, proto, "indexOf", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		units, c := thisUnits(i, this)
		if c.IsAbrupt() {
			return c
		}
		search, c := i.toStringValue(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		needle := utf16.Encode([]rune(search))
		for idx := 0; idx+len(needle) <= len(units); idx++ {
			match := true
			for j := range needle {
				if units[idx+j] != needle[j] {
					match = false
					break
				}
			}
			if match {
				return NormalOf(object.NewNumber(float64(idx)))
			}
		}
		return NormalOf(object.NewNumber(-1))
	})
	i.method(r, proto, "slice", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		units, c := thisUnits(i, this)
		if c.IsAbrupt() {
			return c
		}
		start, end := sliceRange(argAt(args, 0), argAt(args, 1), len(units))
		if start >= end {
			return NormalOf(object.NewString(""))
		}
		return NormalOf(object.NewString(string(utf16.Decode(units[start:end]))))
	})
	stringSelf := func(i *Interpreter, this object.Value, args []object.Value) Completion {
		switch v := this.(type) {
		case *object.String:
			return NormalOf(v)
		case *object.Object:
			if s, ok := v.PrimitiveValue().(*object.String); ok && v.Kind() == object.StringKind {
				return NormalOf(s)
			}
		}
		return i.typeError("String.prototype.valueOf requires that 'this' be a String")
	}
	i.method(r, proto, "toString", stringSelf)
	i.method(r, proto, "valueOf", stringSelf)

	ctor := i.newNative(r, "String", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		if len(args) == 0 {
			return NormalOf(object.NewString(""))
		}
		s, c := i.toStringValue(args[0])
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewString(s))
	})
	ctor.InsertBuiltin("prototype", proto)
	proto.InsertBuiltin("constructor", ctor)
	r.GlobalObject.InsertBuiltin("String", ctor)
}

func (i *Interpreter) installGeneratorIntrinsics(r *Realm) {
	proto := r.GeneratorProto

	self := func(i *Interpreter, this object.Value) (*GeneratorInstance, Completion) {
		o, ok := this.(*object.Object)
		if !ok {
			return nil, i.typeError("%s is not a generator", object.AsString(this))
		}
		g, ok := o.Internal("generator")
		if !ok {
			return nil, i.typeError("%s is not a generator", o.Inspect())
		}
		return g.(*GeneratorInstance), Empty()
	}

	i.method(r, proto, "next", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		g, c := self(i, this)
		if c.IsAbrupt() {
			return c
		}
		return g.Next(i, argAt(args, 0))
	})
	i.method(r, proto, "return", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		g, c := self(i, this)
		if c.IsAbrupt() {
			return c
		}
		return g.Return(i, argAt(args, 0))
	})
	i.method(r, proto, "throw", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		g, c := self(i, this)
		if c.IsAbrupt() {
			return c
		}
		return g.Throw(i, argAt(args, 0))
	})
}

func (i *Interpreter) installErrorIntrinsics(r *Realm) {
	install := func(name string, proto *object.Object) {
		proto.InsertBuiltin("name", object.NewString(name))
		proto.InsertBuiltin("message", object.NewString(""))
		ctor := i.newNative(r, name, func(i *Interpreter, this object.Value, args []object.Value) Completion {
			target, ok := this.(*object.Object)
			if !ok {
				target = i.store.NewNamed("Error", proto)
			}
			if msg := argAt(args, 0); !isUndefined(msg) {
				s, c := i.toStringValue(msg)
				if c.IsAbrupt() {
					return c
				}
				target.InsertBuiltin("message", object.NewString(s))
			}
			return NormalOf(target)
		})
		ctor.InsertBuiltin("prototype", proto)
		proto.InsertBuiltin("constructor", ctor)
		r.GlobalObject.InsertBuiltin(name, ctor)
	}

	install("Error", r.ErrorProto)
	install("TypeError", r.TypeErrorProto)
	install("RangeError", r.RangeErrorProto)
	install("ReferenceError", r.ReferenceErrorProto)
	install("SyntaxError", r.SyntaxErrorProto)

	i.method(r, r.ErrorProto, "toString", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		o, ok := this.(*object.Object)
		if !ok {
			return i.typeError("Error.prototype.toString requires that 'this' be an Object")
		}
		name := "Error"
		if nc := i.getProperty(o, "name", o); nc.Kind == NormalCompletion && !isUndefined(nc.Value) {
			name = object.AsString(nc.Value)
		} else if nc.IsAbrupt() {
			return nc
		}
		message := ""
		if mc := i.getProperty(o, "message", o); mc.Kind == NormalCompletion && !isUndefined(mc.Value) {
			message = object.AsString(mc.Value)
		} else if mc.IsAbrupt() {
			return mc
		}
		switch {
		case name == "":
			return NormalOf(object.NewString(message))
		case message == "":
			return NormalOf(object.NewString(name))
		default:
			return NormalOf(object.NewString(name + ": " + message))
		}
	})
}

func (i *Interpreter) installGlobals(r *Realm) {
	g := r.GlobalObject

	g.DefineOwn("globalThis", object.DataDescriptor(g, true, false, true))
	g.DefineOwn("undefined", object.DataDescriptor(object.Undefined, false, false, false))
	g.DefineOwn("NaN", object.DataDescriptor(object.NewNumber(math.NaN()), false, false, false))
	g.DefineOwn("Infinity", object.DataDescriptor(object.NewNumber(math.Inf(1)), false, false, false))

	g.InsertBuiltin("isNaN", i.newNative(r, "isNaN", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		n, c := i.toNumberValue(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewBool(n != n))
	}))
	g.InsertBuiltin("isFinite", i.newNative(r, "isFinite", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		n, c := i.toNumberValue(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewBool(!math.IsNaN(n) && !math.IsInf(n, 0)))
	}))
	g.InsertBuiltin("parseFloat", i.newNative(r, "parseFloat", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		s, c := i.toStringValue(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewNumber(parseFloatPrefix(s)))
	}))
	g.InsertBuiltin("parseInt", i.newNative(r, "parseInt", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		s, c := i.toStringValue(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		radix := 0
		if len(args) > 1 && !isUndefined(args[1]) {
			rn, c := i.toNumberValue(args[1])
			if c.IsAbrupt() {
				return c
			}
			radix = int(object.ToInt32(rn))
		}
		return NormalOf(object.NewNumber(parseIntPrefix(s, radix)))
	}))
	g.InsertBuiltin("Number", i.newNative(r, "Number", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		if len(args) == 0 {
			return NormalOf(object.NewNumber(0))
		}
		n, c := i.toNumberValue(args[0])
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewNumber(n))
	}))
	g.InsertBuiltin("Boolean", i.newNative(r, "Boolean", func(i *Interpreter, this object.Value, args []object.Value) Completion {
		return NormalOf(object.NewBool(object.Truthy(argAt(args, 0))))
	}))
}

// parseFloatPrefix reads the longest numeric prefix, NaN when none.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	end := len(s)
	for end > 0 {
		if _, err := strconv.ParseFloat(s[:end], 64); err == nil {
			break
		}
		end--
	}
	if end == 0 {
		return math.NaN()
	}
	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}

// parseIntPrefix implements parseInt: optional sign, optional 0x prefix,
// longest valid digit run in the radix.
func parseIntPrefix(s string, radix int) float64 {
	s = strings.TrimSpace(s)
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1.0
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if radix == 0 {
		radix = 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			radix = 16
			s = s[2:]
		}
	} else if radix == 16 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
	}
	if radix < 2 || radix > 36 {
		return math.NaN()
	}
	end := 0
	for end < len(s) {
		d := digitValue(s[end])
		if d < 0 || d >= radix {
			break
		}
		end++
	}
	if end == 0 {
		return math.NaN()
	}
	var out float64
	for _, ch := range []byte(s[:end]) {
		out = out*float64(radix) + float64(digitValue(ch))
	}
	return sign * out
}

func digitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10
	}
	return -1
}
