package object

import "errors"

// ErrInvalidArrayLength reports an Array length coercion failure. The
// interpreter converts it into a RangeError at the language boundary.
var ErrInvalidArrayLength = errors.New("invalid array length")

// Handle is a stable object identity within a Store. Handles are never
// reused while the Store lives; the external collector traces objects by
// handle.
type Handle int64

// RootProvider reports a set of reachable objects to the collector.
// The interpreter registers providers covering environment bindings, the
// execution context stack, and suspended generator instances.
type RootProvider func(mark func(*Object))

// Store owns every object record by stable identity. A single Store may
// host multiple realms; object lifetime is managed externally via the
// root-enumeration hook.
type Store struct {
	objects   []*Object
	providers []RootProvider
}

// NewStore creates an empty object store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) alloc(kind ExoticKind, class string, proto *Object) *Object {
	o := &Object{
		handle:     Handle(len(s.objects)),
		class:      class,
		kind:       kind,
		props:      map[string]*Property{},
		proto:      proto,
		extensible: true,
	}
	s.objects = append(s.objects, o)
	return o
}

// NewObject allocates an ordinary object with the given prototype.
func (s *Store) NewObject(proto *Object) *Object {
	return s.alloc(OrdinaryKind, "Object", proto)
}

// NewNamed allocates an ordinary object with an explicit class name,
// used for functions, errors, and other intrinsics.
func (s *Store) NewNamed(class string, proto *Object) *Object {
	return s.alloc(OrdinaryKind, class, proto)
}

// NewArray allocates an Array exotic object. The length property exists
// from birth: writable, non-enumerable, non-configurable.
func (s *Store) NewArray(proto *Object) *Object {
	o := s.alloc(ArrayKind, "Array", proto)
	o.props["length"] = &Property{
		Value:        NewNumber(0),
		Writable:     true,
		Enumerable:   false,
		Configurable: false,
	}
	o.keys = append(o.keys, "length")
	return o
}

// NewStringObject allocates a String exotic object wrapping value. Index
// and length properties are synthesized, never stored.
func (s *Store) NewStringObject(proto *Object, value *String) *Object {
	o := s.alloc(StringKind, "String", proto)
	o.primitive = value
	return o
}

// NewArguments allocates an arguments exotic object. Callers populate
// the index properties and, for mapped arguments, the parameter map.
func (s *Store) NewArguments(proto *Object) *Object {
	return s.alloc(ArgumentsKind, "Arguments", proto)
}

// NewBoundFunction allocates a bound function exotic object chaining to
// target with the given bound this and prepended arguments.
func (s *Store) NewBoundFunction(proto, target *Object, thisValue Value, args []Value) *Object {
	o := s.alloc(BoundFunctionKind, "Function", proto)
	o.boundTarget = target
	o.boundThis = thisValue
	o.boundArgs = args
	return o
}

// Lookup resolves a handle to its object.
func (s *Store) Lookup(h Handle) (*Object, bool) {
	if h < 0 || int64(h) >= int64(len(s.objects)) {
		return nil, false
	}
	return s.objects[int(h)], true
}

// Size returns the number of allocated objects.
func (s *Store) Size() int {
	return len(s.objects)
}

// RegisterRoots adds a root provider consulted by EachRoot.
func (s *Store) RegisterRoots(p RootProvider) {
	s.providers = append(s.providers, p)
}

// EachRoot invokes fn once per distinct root object reported by the
// registered providers. This is the enumeration surface handed to the
// external collector.
func (s *Store) EachRoot(fn func(*Object)) {
	seen := map[Handle]bool{}
	mark := func(o *Object) {
		if o == nil || seen[o.handle] {
			return
		}
		seen[o.handle] = true
		fn(o)
	}
	for _, p := range s.providers {
		p(mark)
	}
}
