package interp

import (
	"github.com/gofrs/uuid"

	"github.com/cloudcmds/marmoset/object"
)

// RealmHandle identifies a realm within an interpreter.
type RealmHandle string

// Realm is a self-contained set of intrinsics with its own global object
// and global environment. Multiple realms share one object store; values
// may flow between realms but each realm's intrinsics are distinct.
type Realm struct {
	Handle RealmHandle

	GlobalObject *object.Object
	GlobalEnv    *Environment

	ObjectProto    *object.Object
	FunctionProto  *object.Object
	ArrayProto     *object.Object
	StringProto    *object.Object
	GeneratorProto *object.Object

	ErrorProto          *object.Object
	TypeErrorProto      *object.Object
	RangeErrorProto     *object.Object
	ReferenceErrorProto *object.Object
	SyntaxErrorProto    *object.Object
}

// CreateRealm builds a fresh realm in the interpreter's store and
// returns its handle. The realm's intrinsics are independent of every
// other realm's.
func (i *Interpreter) CreateRealm() RealmHandle {
	r := i.newRealm()
	i.realms[r.Handle] = r
	i.log.Debug().Str("realm", string(r.Handle)).Msg("realm created")
	return r.Handle
}

// LookupRealm resolves a realm handle.
func (i *Interpreter) LookupRealm(h RealmHandle) (*Realm, bool) {
	r, ok := i.realms[h]
	return r, ok
}

// DefaultRealm returns the handle of the realm created at construction.
func (i *Interpreter) DefaultRealm() RealmHandle {
	return i.realm.Handle
}

func (i *Interpreter) newRealm() *Realm {
	id, err := uuid.NewV4()
	if err != nil {
		// NewV4 only fails when the entropy source does; fall back to
		// a store-unique name.
		id = uuid.FromStringOrNil("00000000-0000-0000-0000-000000000000")
	}
	s := i.store

	r := &Realm{Handle: RealmHandle(id.String())}

	r.ObjectProto = s.NewObject(nil)
	r.FunctionProto = s.NewNamed("Function", r.ObjectProto)
	r.FunctionProto.SetCallable(&nativeFunction{name: "", fn: func(i *Interpreter, this object.Value, args []object.Value) Completion {
		return NormalOf(object.Undefined)
	}})
	r.ArrayProto = s.NewArray(r.ObjectProto)
	r.StringProto = s.NewStringObject(r.ObjectProto, object.NewString(""))
	r.GeneratorProto = s.NewObject(r.ObjectProto)

	r.ErrorProto = s.NewNamed("Error", r.ObjectProto)
	r.TypeErrorProto = s.NewNamed("Error", r.ErrorProto)
	r.RangeErrorProto = s.NewNamed("Error", r.ErrorProto)
	r.ReferenceErrorProto = s.NewNamed("Error", r.ErrorProto)
	r.SyntaxErrorProto = s.NewNamed("Error", r.ErrorProto)

	r.GlobalObject = s.NewObject(r.ObjectProto)
	r.GlobalEnv = NewGlobalEnvironment(r.GlobalObject)

	i.installIntrinsics(r)
	return r
}

// newError creates a language-level error object on the given prototype.
func (i *Interpreter) newError(proto *object.Object, message string) *object.Object {
	o := i.store.NewNamed("Error", proto)
	o.InsertBuiltin("message", object.NewString(message))
	return o
}

// errorClassName reads the name property an error object inherits from
// its prototype, used when surfacing uncaught exceptions to the host.
func errorClassName(o *object.Object) string {
	for cursor := o; cursor != nil; cursor = cursor.Prototype() {
		if p := cursor.GetOwn("name"); p != nil && p.IsData() {
			if s, ok := p.Value.(*object.String); ok {
				return s.Value()
			}
		}
	}
	return ""
}
