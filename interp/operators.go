package interp

import (
	"math"

	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/object"
)

func (i *Interpreter) evalBinaryOp(op ast.BinaryOp, left, right object.Value) Completion {
	switch op {
	case ast.OpAdd:
		lc := i.toPrimitive(left, hintDefault)
		if lc.IsAbrupt() {
			return lc
		}
		rc := i.toPrimitive(right, hintDefault)
		if rc.IsAbrupt() {
			return rc
		}
		_, lStr := lc.Value.(*object.String)
		_, rStr := rc.Value.(*object.String)
		if lStr || rStr {
			return NormalOf(object.NewString(object.AsString(lc.Value) + object.AsString(rc.Value)))
		}
		return NormalOf(object.NewNumber(object.ToNumber(lc.Value) + object.ToNumber(rc.Value)))

	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		ln, c := i.toNumberValue(left)
		if c.IsAbrupt() {
			return c
		}
		rn, c := i.toNumberValue(right)
		if c.IsAbrupt() {
			return c
		}
		switch op {
		case ast.OpSub:
			return NormalOf(object.NewNumber(ln - rn))
		case ast.OpMul:
			return NormalOf(object.NewNumber(ln * rn))
		case ast.OpDiv:
			return NormalOf(object.NewNumber(ln / rn))
		default:
			return NormalOf(object.NewNumber(math.Mod(ln, rn)))
		}

	case ast.OpLT, ast.OpGT, ast.OpLTE, ast.OpGTE:
		return i.compare(op, left, right)

	case ast.OpEq:
		eq, c := i.looseEquals(left, right)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewBool(eq))
	case ast.OpNotEq:
		eq, c := i.looseEquals(left, right)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewBool(!eq))
	case ast.OpStrictEq:
		return NormalOf(object.NewBool(object.StrictEquals(left, right)))
	case ast.OpStrictNeq:
		return NormalOf(object.NewBool(!object.StrictEquals(left, right)))

	case ast.OpIn:
		o, ok := right.(*object.Object)
		if !ok {
			return i.typeError("Cannot use 'in' operator to search for '%s' in %s",
				object.AsString(left), object.AsString(right))
		}
		key, c := i.toPropertyKey(left)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewBool(o.HasProperty(key)))

	case ast.OpInstanceof:
		return i.instanceOf(left, right)
	}
	return i.typeError("unsupported operator %s", string(op))
}

// compare implements the relational operators over the abstract
// comparison: strings compare lexically, everything else numerically
// with NaN making every comparison false.
func (i *Interpreter) compare(op ast.BinaryOp, left, right object.Value) Completion {
	lc := i.toPrimitive(left, hintNumber)
	if lc.IsAbrupt() {
		return lc
	}
	rc := i.toPrimitive(right, hintNumber)
	if rc.IsAbrupt() {
		return rc
	}
	ls, lStr := lc.Value.(*object.String)
	rs, rStr := rc.Value.(*object.String)
	if lStr && rStr {
		a, b := ls.Value(), rs.Value()
		switch op {
		case ast.OpLT:
			return NormalOf(object.NewBool(a < b))
		case ast.OpGT:
			return NormalOf(object.NewBool(a > b))
		case ast.OpLTE:
			return NormalOf(object.NewBool(a <= b))
		default:
			return NormalOf(object.NewBool(a >= b))
		}
	}
	a, b := object.ToNumber(lc.Value), object.ToNumber(rc.Value)
	if a != a || b != b {
		return NormalOf(object.False)
	}
	switch op {
	case ast.OpLT:
		return NormalOf(object.NewBool(a < b))
	case ast.OpGT:
		return NormalOf(object.NewBool(a > b))
	case ast.OpLTE:
		return NormalOf(object.NewBool(a <= b))
	default:
		return NormalOf(object.NewBool(a >= b))
	}
}

// looseEquals implements the == comparison, including the null and
// undefined pairing and object-to-primitive coercion.
func (i *Interpreter) looseEquals(a, b object.Value) (bool, Completion) {
	if a.Type() == b.Type() {
		return object.StrictEquals(a, b), Empty()
	}
	aNullish := isNullish(a)
	bNullish := isNullish(b)
	if aNullish || bNullish {
		return aNullish && bNullish, Empty()
	}
	switch av := a.(type) {
	case *object.Number:
		if bs, ok := b.(*object.String); ok {
			return av.Value() == object.ParseNumber(bs.Value()), Empty()
		}
	case *object.String:
		if bn, ok := b.(*object.Number); ok {
			return object.ParseNumber(av.Value()) == bn.Value(), Empty()
		}
	case *object.Bool:
		return i.looseEquals(object.NewNumber(object.ToNumber(av)), b)
	}
	if bb, ok := b.(*object.Bool); ok {
		return i.looseEquals(a, object.NewNumber(object.ToNumber(bb)))
	}
	if _, ok := a.(*object.Object); ok {
		c := i.toPrimitive(a, hintDefault)
		if c.IsAbrupt() {
			return false, c
		}
		return i.looseEquals(c.Value, b)
	}
	if _, ok := b.(*object.Object); ok {
		c := i.toPrimitive(b, hintDefault)
		if c.IsAbrupt() {
			return false, c
		}
		return i.looseEquals(a, c.Value)
	}
	return false, Empty()
}

func isNullish(v object.Value) bool {
	switch v.(type) {
	case *object.UndefinedType, *object.NullType:
		return true
	}
	return false
}

func (i *Interpreter) instanceOf(left, right object.Value) Completion {
	ctor, ok := right.(*object.Object)
	if !ok || !ctor.IsCallable() {
		return i.typeError("Right-hand side of 'instanceof' is not callable")
	}
	if ctor.Kind() == object.BoundFunctionKind {
		return i.instanceOf(left, ctor.BoundTarget())
	}
	obj, ok := left.(*object.Object)
	if !ok {
		return NormalOf(object.False)
	}
	pc := i.getProperty(ctor, "prototype", ctor)
	if pc.IsAbrupt() {
		return pc
	}
	proto, ok := pc.Value.(*object.Object)
	if !ok {
		return i.typeError("Function has non-object prototype in instanceof check")
	}
	for cursor := obj.Prototype(); cursor != nil; cursor = cursor.Prototype() {
		if cursor == proto {
			return NormalOf(object.True)
		}
	}
	return NormalOf(object.False)
}

func (i *Interpreter) evalUnaryOp(op ast.UnaryOp, v object.Value) Completion {
	switch op {
	case ast.OpNeg:
		n, c := i.toNumberValue(v)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewNumber(-n))
	case ast.OpPlus:
		n, c := i.toNumberValue(v)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewNumber(n))
	case ast.OpNot:
		return NormalOf(object.NewBool(!object.Truthy(v)))
	case ast.OpBitNot:
		n, c := i.toNumberValue(v)
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(object.NewNumber(float64(^object.ToInt32(n))))
	case ast.OpVoid:
		return NormalOf(object.Undefined)
	case ast.OpTypeof:
		return NormalOf(object.NewString(typeofString(v)))
	}
	return i.typeError("unsupported unary operator %s", string(op))
}

func typeofString(v object.Value) string {
	switch v := v.(type) {
	case *object.UndefinedType:
		return "undefined"
	case *object.NullType:
		return "object"
	case *object.Bool:
		return "boolean"
	case *object.Number:
		return "number"
	case *object.String:
		return "string"
	case *object.Object:
		if v.IsCallable() {
			return "function"
		}
		return "object"
	}
	return "undefined"
}
