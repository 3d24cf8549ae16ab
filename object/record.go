package object

import (
	"fmt"
	"sort"
)

// ExoticKind tags objects whose internal methods deviate from the
// ordinary algorithms. Dispatch happens once per internal-method call;
// each kind overrides only the steps that differ.
type ExoticKind uint8

const (
	OrdinaryKind ExoticKind = iota
	ArrayKind
	StringKind
	ArgumentsKind
	BoundFunctionKind
	ProxyKind
)

func (k ExoticKind) String() string {
	switch k {
	case OrdinaryKind:
		return "ordinary"
	case ArrayKind:
		return "array"
	case StringKind:
		return "string"
	case ArgumentsKind:
		return "arguments"
	case BoundFunctionKind:
		return "bound_function"
	case ProxyKind:
		return "proxy"
	}
	return "unknown"
}

// Callable marks the callable slot of a function object. The interp
// package provides the implementation; object code only needs to know
// whether the slot is occupied.
type Callable interface {
	FunctionName() string
}

// BindingSource lets a mapped arguments object read and write aliased
// function parameters without this package depending on environment
// records.
type BindingSource interface {
	GetBound(name string) (Value, bool)
	SetBound(name string, value Value) bool
}

// paramBinding aliases an integer-indexed arguments property to a named
// parameter binding.
type paramBinding struct {
	name string
	env  BindingSource
}

// Object is a single object record. Objects are created through a Store
// and carry a stable handle for external tracing. The prototype link is
// shared by reference: many objects may point at one prototype and none
// of them owns it.
type Object struct {
	handle     Handle
	class      string
	kind       ExoticKind
	props      map[string]*Property
	keys       []string
	proto      *Object
	extensible bool
	callable   Callable
	primitive  Value // backing value for String exotic objects
	paramMap   map[string]paramBinding
	boundTarget *Object
	boundThis   Value
	boundArgs   []Value
	internal    map[string]interface{}
}

func (o *Object) Type() Type      { return OBJECT }
func (o *Object) Inspect() string { return fmt.Sprintf("[object %s]", o.class) }

func (o *Object) Interface() interface{} { return o }

// Handle returns the object's stable identity in its Store.
func (o *Object) Handle() Handle { return o.handle }

// Class returns the object's class name, e.g. "Object" or "Array".
func (o *Object) Class() string { return o.class }

// Kind returns the object's exotic kind tag.
func (o *Object) Kind() ExoticKind { return o.kind }

// Prototype returns the object's prototype or nil.
func (o *Object) Prototype() *Object { return o.proto }

// SetPrototype sets the prototype link, refusing cycles and respecting
// the extensible flag.
func (o *Object) SetPrototype(p *Object) bool {
	if o.proto == p {
		return true
	}
	if !o.extensible {
		return false
	}
	for cursor := p; cursor != nil; cursor = cursor.proto {
		if cursor == o {
			return false
		}
	}
	o.proto = p
	return true
}

// Extensible reports whether new properties may be added.
func (o *Object) Extensible() bool { return o.extensible }

// PreventExtensions clears the extensible flag. Irreversible.
func (o *Object) PreventExtensions() { o.extensible = false }

// Callable returns the callable slot, or nil for non-function objects.
func (o *Object) Callable() Callable { return o.callable }

// SetCallable installs the callable slot.
func (o *Object) SetCallable(c Callable) { o.callable = c }

// IsCallable reports whether the object can be invoked.
func (o *Object) IsCallable() bool {
	return o.callable != nil || (o.kind == BoundFunctionKind && o.boundTarget != nil)
}

// PrimitiveValue returns the wrapped primitive of a String exotic
// object, or nil.
func (o *Object) PrimitiveValue() Value { return o.primitive }

// BoundTarget returns the target function of a bound function object.
func (o *Object) BoundTarget() *Object { return o.boundTarget }

// BoundThis returns the bound this value of a bound function object.
func (o *Object) BoundThis() Value { return o.boundThis }

// BoundArgs returns the prepended arguments of a bound function object.
func (o *Object) BoundArgs() []Value { return o.boundArgs }

// SetInternal stores a free-form internal slot keyed by name.
func (o *Object) SetInternal(name string, v interface{}) {
	if o.internal == nil {
		o.internal = map[string]interface{}{}
	}
	o.internal[name] = v
}

// Internal reads a free-form internal slot.
func (o *Object) Internal(name string) (interface{}, bool) {
	v, ok := o.internal[name]
	return v, ok
}

// MapParameter aliases the given property key to a parameter binding.
// Used when building a mapped arguments object.
func (o *Object) MapParameter(key, name string, env BindingSource) {
	if o.paramMap == nil {
		o.paramMap = map[string]paramBinding{}
	}
	o.paramMap[key] = paramBinding{name: name, env: env}
}

// GetOwn returns the own property for key, or nil. String exotic objects
// synthesize their index and length properties here without storing
// them; mapped arguments refresh the value from the aliased binding.
func (o *Object) GetOwn(key string) *Property {
	if p, ok := o.props[key]; ok {
		if o.kind == ArgumentsKind && p.IsData() {
			if pb, mapped := o.paramMap[key]; mapped {
				if v, found := pb.env.GetBound(pb.name); found {
					c := p.clone()
					c.Value = v
					return c
				}
			}
		}
		return p.clone()
	}
	if o.kind == StringKind {
		return o.stringGetOwn(key)
	}
	return nil
}

// HasOwn reports whether key names an own property.
func (o *Object) HasOwn(key string) bool {
	if _, ok := o.props[key]; ok {
		return true
	}
	if o.kind == StringKind {
		return o.stringGetOwn(key) != nil
	}
	return false
}

// HasProperty walks the prototype chain.
func (o *Object) HasProperty(key string) bool {
	for cursor := o; cursor != nil; cursor = cursor.proto {
		if cursor.HasOwn(key) {
			return true
		}
	}
	return false
}

// Delete removes an own property, returning false if it exists and is
// non-configurable. Deleting an absent property succeeds.
func (o *Object) Delete(key string) bool {
	p, ok := o.props[key]
	if !ok {
		if o.kind == StringKind && o.stringGetOwn(key) != nil {
			return false
		}
		return true
	}
	if !p.Configurable {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	if o.kind == ArgumentsKind {
		delete(o.paramMap, key)
	}
	return true
}

// OwnKeys returns every own property key: integer indices in ascending
// numeric order followed by string keys in insertion order. String
// exotic objects contribute their synthesized indices and length first.
func (o *Object) OwnKeys() []string {
	var indexKeys []uint32
	var stringKeys []string
	seen := map[string]bool{}
	if o.kind == StringKind {
		for _, k := range o.stringSynthesizedKeys() {
			if idx, ok := ArrayIndex(k); ok {
				indexKeys = append(indexKeys, idx)
			} else {
				stringKeys = append(stringKeys, k)
			}
			seen[k] = true
		}
	}
	for _, k := range o.keys {
		if seen[k] {
			continue
		}
		if idx, ok := ArrayIndex(k); ok {
			indexKeys = append(indexKeys, idx)
		} else {
			stringKeys = append(stringKeys, k)
		}
	}
	sort.Slice(indexKeys, func(i, j int) bool { return indexKeys[i] < indexKeys[j] })
	keys := make([]string, 0, len(indexKeys)+len(stringKeys))
	for _, idx := range indexKeys {
		keys = append(keys, FormatNumber(float64(idx)))
	}
	return append(keys, stringKeys...)
}

// EnumerableKeys returns the keys visited by for-in: own enumerable keys
// in OwnKeys order, then the prototype chain with shadowing (an own key,
// enumerable or not, hides same-named prototype keys).
func (o *Object) EnumerableKeys() []string {
	seen := map[string]bool{}
	var keys []string
	for cursor := o; cursor != nil; cursor = cursor.proto {
		for _, k := range cursor.OwnKeys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			if p := cursor.GetOwn(k); p != nil && p.Enumerable {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// DefineOwn implements [[DefineOwnProperty]]. The boolean result is the
// algorithmic success channel: callers that require success convert
// false into a TypeError at their own call site. The error result is
// non-nil only when an Array length coercion fails (ErrInvalidArrayLength)
// and takes precedence over the boolean.
func (o *Object) DefineOwn(key string, desc *Descriptor) (bool, error) {
	switch o.kind {
	case ArrayKind:
		return o.arrayDefineOwn(key, desc)
	case ArgumentsKind:
		return o.argumentsDefineOwn(key, desc), nil
	case StringKind:
		return o.stringDefineOwn(key, desc), nil
	default:
		return o.ordinaryDefineOwn(key, desc), nil
	}
}

// ordinaryDefineOwn is ValidateAndApplyPropertyDescriptor over the
// ordinary property table.
func (o *Object) ordinaryDefineOwn(key string, desc *Descriptor) bool {
	current, exists := o.props[key]
	if !exists {
		if !o.extensible {
			return false
		}
		o.storeNew(key, desc)
		return true
	}
	if desc.IsEmpty() {
		return true
	}
	if !current.Configurable {
		if desc.Configurable != nil && *desc.Configurable {
			return false
		}
		if desc.Enumerable != nil && *desc.Enumerable != current.Enumerable {
			return false
		}
		if desc.IsData() && current.IsAccessor() {
			return false
		}
		if desc.IsAccessor() && current.IsData() {
			return false
		}
		if current.IsData() && !current.Writable {
			if desc.Writable != nil && *desc.Writable {
				return false
			}
			if desc.Value != nil && !SameValue(desc.Value, current.Value) {
				return false
			}
		}
		if current.IsAccessor() {
			if desc.Get != nil && !SameValue(desc.Get, orUndefined(current.Get)) {
				return false
			}
			if desc.Set != nil && !SameValue(desc.Set, orUndefined(current.Set)) {
				return false
			}
		}
	}
	o.props[key] = mergeProperty(current, desc)
	return true
}

// storeNew installs a brand new property, filling absent fields with
// spec defaults.
func (o *Object) storeNew(key string, desc *Descriptor) {
	p := &Property{}
	if desc.IsAccessor() {
		p.Get = orUndefined(desc.Get)
		p.Set = orUndefined(desc.Set)
	} else {
		p.Value = orUndefined(desc.Value)
		if desc.Writable != nil {
			p.Writable = *desc.Writable
		}
	}
	if desc.Enumerable != nil {
		p.Enumerable = *desc.Enumerable
	}
	if desc.Configurable != nil {
		p.Configurable = *desc.Configurable
	}
	o.props[key] = p
	o.keys = append(o.keys, key)
}

// mergeProperty merges a partial descriptor over the current property,
// changing shape when the descriptor demands it.
func mergeProperty(current *Property, desc *Descriptor) *Property {
	p := current.clone()
	switch {
	case desc.IsData() && current.IsAccessor():
		p = &Property{
			Value:        orUndefined(desc.Value),
			Enumerable:   current.Enumerable,
			Configurable: current.Configurable,
		}
		if desc.Writable != nil {
			p.Writable = *desc.Writable
		}
	case desc.IsAccessor() && current.IsData():
		p = &Property{
			Get:          orUndefined(desc.Get),
			Set:          orUndefined(desc.Set),
			Enumerable:   current.Enumerable,
			Configurable: current.Configurable,
		}
	default:
		if desc.Value != nil {
			p.Value = desc.Value
		}
		if desc.Writable != nil {
			p.Writable = *desc.Writable
		}
		if desc.Get != nil {
			p.Get = desc.Get
		}
		if desc.Set != nil {
			p.Set = desc.Set
		}
	}
	if desc.Enumerable != nil {
		p.Enumerable = *desc.Enumerable
	}
	if desc.Configurable != nil {
		p.Configurable = *desc.Configurable
	}
	return p
}

// InsertValue installs a writable, enumerable, configurable data
// property, bypassing validation. Intended for literal construction and
// intrinsic setup on fresh objects.
func (o *Object) InsertValue(key string, value Value) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = &Property{
		Value:        value,
		Writable:     true,
		Enumerable:   true,
		Configurable: true,
	}
}

// InsertBuiltin installs a writable, non-enumerable, configurable data
// property, matching the attributes of standard intrinsic methods.
func (o *Object) InsertBuiltin(key string, value Value) {
	if _, ok := o.props[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.props[key] = &Property{
		Value:        value,
		Writable:     true,
		Enumerable:   false,
		Configurable: true,
	}
}
