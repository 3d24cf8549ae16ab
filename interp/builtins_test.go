package interp

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/marmoset/ast"
)

func TestObjectKeys(t *testing.T) {
	v := runScript(t,
		letDecl("o", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "a", Kind: ast.PropInit, Value: num(1)},
			{Key: "b", Kind: ast.PropInit, Value: num(2)},
		}}),
		expr(callEx(member(callEx(member(ident("Object"), "keys"), ident("o")), "join"), str("+"))),
	)
	require.Equal(t, "a+b", asString(t, v))
}

func TestObjectCreateAndGetPrototypeOf(t *testing.T) {
	v := runScript(t,
		letDecl("base", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "greet", Kind: ast.PropInit, Value: &ast.FuncLit{Body: []ast.Stmt{ret(str("hi"))}}},
		}}),
		letDecl("child", callEx(member(ident("Object"), "create"), ident("base"))),
		expr(&ast.Binary{Op: ast.OpStrictEq,
			L: callEx(member(ident("Object"), "getPrototypeOf"), ident("child")),
			R: ident("base")}),
	)
	require.True(t, asBool(t, v))

	v = runScript(t,
		letDecl("base", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "greet", Kind: ast.PropInit, Value: &ast.FuncLit{Body: []ast.Stmt{ret(str("hi"))}}},
		}}),
		letDecl("child", callEx(member(ident("Object"), "create"), ident("base"))),
		expr(callEx(member(ident("child"), "greet"))),
	)
	require.Equal(t, "hi", asString(t, v))
}

func TestDefinePropertyNonWritable(t *testing.T) {
	scriptErr := runError(t,
		letDecl("o", &ast.ObjectLit{}),
		expr(callEx(member(ident("Object"), "defineProperty"),
			ident("o"), str("x"),
			&ast.ObjectLit{Props: []*ast.ObjectProp{
				{Key: "value", Kind: ast.PropInit, Value: num(1)},
				{Key: "writable", Kind: ast.PropInit, Value: &ast.BoolLit{}},
			}})),
		// Redefining a non-configurable, non-writable property fails.
		expr(callEx(member(ident("Object"), "defineProperty"),
			ident("o"), str("x"),
			&ast.ObjectLit{Props: []*ast.ObjectProp{
				{Key: "value", Kind: ast.PropInit, Value: num(2)},
			}})),
	)
	require.Equal(t, "TypeError", scriptErr.Name)
}

func TestNonWritableSilentInSloppyThrowsInStrict(t *testing.T) {
	v := runScript(t,
		letDecl("o", &ast.ObjectLit{}),
		expr(callEx(member(ident("Object"), "defineProperty"),
			ident("o"), str("x"),
			&ast.ObjectLit{Props: []*ast.ObjectProp{
				{Key: "value", Kind: ast.PropInit, Value: num(1)},
			}})),
		expr(assign(member(ident("o"), "x"), num(2))),
		expr(member(ident("o"), "x")),
	)
	require.Equal(t, 1.0, asNumber(t, v))

	i := New()
	_, err := i.Run(context.Background(), &ast.Program{Strict: true, Body: []ast.Stmt{
		letDecl("o", &ast.ObjectLit{}),
		expr(callEx(member(ident("Object"), "defineProperty"),
			ident("o"), str("x"),
			&ast.ObjectLit{Props: []*ast.ObjectProp{
				{Key: "value", Kind: ast.PropInit, Value: num(1)},
			}})),
		expr(assign(member(ident("o"), "x"), num(2))),
	}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "TypeError")
}

func TestGetOwnPropertyDescriptor(t *testing.T) {
	v := runScript(t,
		letDecl("o", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "x", Kind: ast.PropInit, Value: num(5)},
		}}),
		letDecl("d", callEx(member(ident("Object"), "getOwnPropertyDescriptor"), ident("o"), str("x"))),
		expr(&ast.Logical{Op: ast.OpAnd,
			L: member(ident("d"), "writable"),
			R: member(ident("d"), "value")}),
	)
	require.Equal(t, 5.0, asNumber(t, v))
}

func TestAccessorsRunAgainstReceiver(t *testing.T) {
	v := runScript(t,
		letDecl("o", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "n", Kind: ast.PropInit, Value: num(10)},
			{Key: "double", Kind: ast.PropGetter, Value: &ast.FuncLit{Body: []ast.Stmt{
				ret(add(member(&ast.This{}, "n"), member(&ast.This{}, "n"))),
			}}},
			{Key: "half", Kind: ast.PropSetter, Value: &ast.FuncLit{
				Params: params("v"),
				Body: []ast.Stmt{
					expr(assign(member(&ast.This{}, "n"), &ast.Binary{Op: ast.OpDiv, L: ident("v"), R: num(2)})),
				}}},
		}}),
		expr(assign(member(ident("o"), "half"), num(8))),
		expr(member(ident("o"), "double")),
	)
	require.Equal(t, 8.0, asNumber(t, v))
}

func TestInheritedAccessorReceiver(t *testing.T) {
	// A getter defined on the prototype reads state off the instance.
	v := runScript(t,
		letDecl("proto", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "label", Kind: ast.PropGetter, Value: &ast.FuncLit{Body: []ast.Stmt{
				ret(member(&ast.This{}, "name")),
			}}},
		}}),
		letDecl("o", callEx(member(ident("Object"), "create"), ident("proto"))),
		expr(assign(member(ident("o"), "name"), str("instance"))),
		expr(member(ident("o"), "label")),
	)
	require.Equal(t, "instance", asString(t, v))
}

func TestObjectAssignCopiesEnumerables(t *testing.T) {
	v := runScript(t,
		letDecl("target", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "a", Kind: ast.PropInit, Value: num(1)},
		}}),
		expr(callEx(member(ident("Object"), "assign"), ident("target"),
			&ast.ObjectLit{Props: []*ast.ObjectProp{
				{Key: "b", Kind: ast.PropInit, Value: num(2)},
			}})),
		expr(add(member(ident("target"), "a"), member(ident("target"), "b"))),
	)
	require.Equal(t, 3.0, asNumber(t, v))
}

func TestPreventExtensions(t *testing.T) {
	v := runScript(t,
		letDecl("o", &ast.ObjectLit{}),
		expr(callEx(member(ident("Object"), "preventExtensions"), ident("o"))),
		expr(assign(member(ident("o"), "x"), num(1))),
		expr(&ast.Unary{Op: ast.OpTypeof, Operand: member(ident("o"), "x")}),
	)
	require.Equal(t, "undefined", asString(t, v))
}

func TestHasOwnProperty(t *testing.T) {
	v := runScript(t,
		letDecl("o", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "x", Kind: ast.PropInit, Value: num(1)},
		}}),
		expr(&ast.Logical{Op: ast.OpAnd,
			L: callEx(member(ident("o"), "hasOwnProperty"), str("x")),
			R: &ast.Unary{Op: ast.OpNot, Operand: callEx(member(ident("o"), "hasOwnProperty"), str("toString"))},
		}),
	)
	require.True(t, asBool(t, v))
}

func TestFunctionCallAndApply(t *testing.T) {
	v := runScript(t,
		fnDecl("describe", params("suffix"),
			ret(add(member(&ast.This{}, "name"), ident("suffix")))),
		letDecl("o", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "name", Kind: ast.PropInit, Value: str("obj")},
		}}),
		expr(add(
			callEx(member(ident("describe"), "call"), ident("o"), str("!")),
			callEx(member(ident("describe"), "apply"), ident("o"),
				&ast.ArrayLit{Elems: []ast.Expr{str("?")}}),
		)),
	)
	require.Equal(t, "obj!obj?", asString(t, v))
}

func TestFunctionBind(t *testing.T) {
	v := runScript(t,
		fnDecl("sum", params("a", "b"), ret(add(ident("a"), ident("b")))),
		letDecl("plus5", callEx(member(ident("sum"), "bind"), &ast.NullLit{}, num(5))),
		expr(callEx(ident("plus5"), num(3))),
	)
	require.Equal(t, 8.0, asNumber(t, v))
}

func TestBoundFunctionMetadata(t *testing.T) {
	v := runScript(t,
		fnDecl("sum", params("a", "b"), ret(add(ident("a"), ident("b")))),
		letDecl("plus5", callEx(member(ident("sum"), "bind"), &ast.NullLit{}, num(5))),
		expr(add(member(ident("plus5"), "name"), member(ident("plus5"), "length"))),
	)
	require.Equal(t, "bound sum1", asString(t, v))
}

func TestBoundThisSticks(t *testing.T) {
	v := runScript(t,
		fnDecl("who", nil, ret(member(&ast.This{}, "name"))),
		letDecl("o", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "name", Kind: ast.PropInit, Value: str("fixed")},
		}}),
		letDecl("bound", callEx(member(ident("who"), "bind"), ident("o"))),
		letDecl("other", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "name", Kind: ast.PropInit, Value: str("other")},
			{Key: "who", Kind: ast.PropInit, Value: ident("bound")},
		}}),
		expr(callEx(member(ident("other"), "who"))),
	)
	require.Equal(t, "fixed", asString(t, v))
}

func TestArrayPushPop(t *testing.T) {
	v := runScript(t,
		letDecl("xs", &ast.ArrayLit{Elems: []ast.Expr{num(1)}}),
		expr(callEx(member(ident("xs"), "push"), num(2), num(3))),
		letDecl("popped", callEx(member(ident("xs"), "pop"))),
		expr(add(member(ident("xs"), "length"), ident("popped"))),
	)
	require.Equal(t, 5.0, asNumber(t, v))
}

func TestArrayIndexOf(t *testing.T) {
	v := runScript(t,
		letDecl("xs", &ast.ArrayLit{Elems: []ast.Expr{str("a"), str("b"), str("a")}}),
		expr(add(
			callEx(member(ident("xs"), "indexOf"), str("a")),
			callEx(member(ident("xs"), "indexOf"), str("missing")),
		)),
	)
	require.Equal(t, -1.0, asNumber(t, v))
}

func TestArraySliceNegativeIndices(t *testing.T) {
	v := runScript(t,
		letDecl("xs", &ast.ArrayLit{Elems: []ast.Expr{num(1), num(2), num(3), num(4)}}),
		expr(callEx(member(callEx(member(ident("xs"), "slice"), num(-3), num(-1)), "join"), str(""))),
	)
	require.Equal(t, "23", asString(t, v))
}

func TestArrayMapAndForEach(t *testing.T) {
	v := runScript(t,
		letDecl("xs", &ast.ArrayLit{Elems: []ast.Expr{num(1), num(2), num(3)}}),
		letDecl("doubled", callEx(member(ident("xs"), "map"),
			&ast.FuncLit{IsArrow: true, Params: params("x"), Body: []ast.Stmt{
				ret(add(ident("x"), ident("x"))),
			}})),
		letDecl("total", num(0)),
		expr(callEx(member(ident("doubled"), "forEach"),
			&ast.FuncLit{IsArrow: true, Params: params("x"), Body: []ast.Stmt{
				expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("total"), Value: ident("x")}),
			}})),
		expr(ident("total")),
	)
	require.Equal(t, 12.0, asNumber(t, v))
}

func TestArrayIsArray(t *testing.T) {
	v := runScript(t,
		expr(&ast.Logical{Op: ast.OpAnd,
			L: callEx(member(ident("Array"), "isArray"), &ast.ArrayLit{}),
			R: &ast.Unary{Op: ast.OpNot, Operand: callEx(member(ident("Array"), "isArray"), &ast.ObjectLit{})},
		}),
	)
	require.True(t, asBool(t, v))
}

func TestArrayLengthTruncates(t *testing.T) {
	v := runScript(t,
		letDecl("xs", &ast.ArrayLit{Elems: []ast.Expr{num(1), num(2), num(3)}}),
		expr(assign(member(ident("xs"), "length"), num(1))),
		expr(add(member(ident("xs"), "length"),
			&ast.Unary{Op: ast.OpTypeof, Operand: index(ident("xs"), num(1))})),
	)
	require.Equal(t, "1undefined", asString(t, v))
}

func TestInvalidArrayLengthThrowsRangeError(t *testing.T) {
	scriptErr := runError(t,
		letDecl("xs", &ast.ArrayLit{}),
		expr(assign(member(ident("xs"), "length"), num(-1))),
	)
	require.Equal(t, "RangeError", scriptErr.Name)
}

func TestArrayConstructorWithLength(t *testing.T) {
	v := runScript(t,
		expr(member(&ast.New{Callee: ident("Array"), Args: []ast.Expr{num(5)}}, "length")),
	)
	require.Equal(t, 5.0, asNumber(t, v))
}

func TestArrayGrowsThroughIndexAssignment(t *testing.T) {
	v := runScript(t,
		letDecl("xs", &ast.ArrayLit{}),
		expr(assign(index(ident("xs"), num(4)), str("x"))),
		expr(member(ident("xs"), "length")),
	)
	require.Equal(t, 5.0, asNumber(t, v))
}

func TestStringMethods(t *testing.T) {
	v := runScript(t,
		letDecl("s", str("hello")),
		expr(add(
			callEx(member(ident("s"), "charAt"), num(1)),
			callEx(member(ident("s"), "slice"), num(-2)),
		)),
	)
	require.Equal(t, "elo", asString(t, v))
}

func TestStringCharCodeAt(t *testing.T) {
	v := runScript(t, expr(callEx(member(str("A"), "charCodeAt"), num(0))))
	require.Equal(t, 65.0, asNumber(t, v))

	v = runScript(t, expr(callEx(member(str("A"), "charCodeAt"), num(5))))
	require.True(t, math.IsNaN(asNumber(t, v)))
}

func TestStringIndexOf(t *testing.T) {
	v := runScript(t,
		expr(callEx(member(str("banana"), "indexOf"), str("nan"))),
	)
	require.Equal(t, 2.0, asNumber(t, v))
}

func TestStringLengthAndIndexing(t *testing.T) {
	v := runScript(t,
		letDecl("s", str("abc")),
		expr(add(member(ident("s"), "length"), index(ident("s"), num(0)))),
	)
	require.Equal(t, "3a", asString(t, v))
}

func TestParseIntAndFloat(t *testing.T) {
	v := runScript(t, expr(callEx(ident("parseInt"), str("0x1f"))))
	require.Equal(t, 31.0, asNumber(t, v))

	v = runScript(t, expr(callEx(ident("parseInt"), str("101"), num(2))))
	require.Equal(t, 5.0, asNumber(t, v))

	v = runScript(t, expr(callEx(ident("parseFloat"), str("3.5rest"))))
	require.Equal(t, 3.5, asNumber(t, v))

	v = runScript(t, expr(callEx(ident("parseInt"), str("junk"))))
	require.True(t, math.IsNaN(asNumber(t, v)))
}

func TestIsNaNAndIsFinite(t *testing.T) {
	v := runScript(t,
		expr(&ast.Logical{Op: ast.OpAnd,
			L: callEx(ident("isNaN"), &ast.Binary{Op: ast.OpDiv, L: num(0), R: num(0)}),
			R: &ast.Unary{Op: ast.OpNot, Operand: callEx(ident("isFinite"), &ast.Binary{Op: ast.OpDiv, L: num(1), R: num(0)})},
		}),
	)
	require.True(t, asBool(t, v))
}

func TestNumberAndBooleanConversions(t *testing.T) {
	v := runScript(t, expr(callEx(ident("Number"), str("42"))))
	require.Equal(t, 42.0, asNumber(t, v))

	v = runScript(t, expr(callEx(ident("Boolean"), str(""))))
	require.False(t, asBool(t, v))

	v = runScript(t, expr(callEx(ident("Boolean"), num(7))))
	require.True(t, asBool(t, v))
}

func TestErrorToString(t *testing.T) {
	v := runScript(t,
		letDecl("e", &ast.New{Callee: ident("TypeError"), Args: []ast.Expr{str("bad")}}),
		expr(callEx(member(ident("e"), "toString"))),
	)
	require.Equal(t, "TypeError: bad", asString(t, v))
}

func TestObjectPrototypeToString(t *testing.T) {
	v := runScript(t,
		expr(callEx(member(member(member(ident("Object"), "prototype"), "toString"), "call"), &ast.NullLit{})),
	)
	require.Equal(t, "[object Null]", asString(t, v))
}

func TestGlobalConstantsImmutable(t *testing.T) {
	v := runScript(t,
		expr(assign(ident("undefined"), num(1))),
		expr(&ast.Unary{Op: ast.OpTypeof, Operand: ident("undefined")}),
	)
	require.Equal(t, "undefined", asString(t, v))
}
