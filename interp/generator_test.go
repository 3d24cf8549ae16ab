package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/marmoset/ast"
)

func yieldOf(v ast.Expr) ast.Expr { return &ast.Yield{Value: v} }

func nextValue(it ast.Expr) ast.Expr {
	return member(callEx(member(it, "next")), "value")
}

func nextDone(it ast.Expr) ast.Expr {
	return member(callEx(member(it, "next")), "done")
}

func TestGeneratorYieldSequence(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil,
			expr(yieldOf(num(1))),
			expr(yieldOf(num(2))),
		),
		letDecl("it", callEx(ident("g"))),
		letDecl("a", nextValue(ident("it"))),
		letDecl("b", nextValue(ident("it"))),
		letDecl("done", nextDone(ident("it"))),
		expr(add(add(add(str(""), ident("a")), ident("b")), ident("done"))),
	)
	require.Equal(t, "12true", asString(t, v))
}

func TestGeneratorBodyDoesNotRunUntilNext(t *testing.T) {
	v := runScript(t,
		letDecl("ran", &ast.BoolLit{}),
		genDecl("g", nil,
			expr(assign(ident("ran"), &ast.BoolLit{Value: true})),
			expr(yieldOf(num(1))),
		),
		letDecl("it", callEx(ident("g"))),
		letDecl("before", ident("ran")),
		expr(callEx(member(ident("it"), "next"))),
		expr(add(add(str(""), ident("before")), ident("ran"))),
	)
	require.Equal(t, "falsetrue", asString(t, v))
}

func TestGeneratorStatementsRunExactlyOnce(t *testing.T) {
	// Resuming never replays code before the yield.
	v := runScript(t,
		letDecl("count", num(0)),
		genDecl("g", nil,
			expr(&ast.Update{Op: ast.OpIncrement, Operand: ident("count")}),
			expr(yieldOf(num(1))),
			expr(&ast.Update{Op: ast.OpIncrement, Operand: ident("count")}),
			expr(yieldOf(num(2))),
			expr(&ast.Update{Op: ast.OpIncrement, Operand: ident("count")}),
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("afterFirst", ident("count")),
		expr(callEx(member(ident("it"), "next"))),
		expr(callEx(member(ident("it"), "next"))),
		expr(add(add(str(""), ident("afterFirst")), ident("count"))),
	)
	require.Equal(t, "13", asString(t, v))
}

func TestGeneratorSentValues(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil,
			constDecl("x", yieldOf(num(1))),
			expr(yieldOf(&ast.Binary{Op: ast.OpMul, L: ident("x"), R: num(10)})),
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		expr(member(callEx(member(ident("it"), "next"), num(7)), "value")),
	)
	require.Equal(t, 70.0, asNumber(t, v))
}

func TestGeneratorParams(t *testing.T) {
	v := runScript(t,
		genDecl("g", params("a", "b"),
			expr(yieldOf(add(ident("a"), ident("b")))),
		),
		expr(nextValue(callEx(ident("g"), num(30), num(12)))),
	)
	require.Equal(t, 42.0, asNumber(t, v))
}

func TestGeneratorReturnStatement(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil,
			expr(yieldOf(num(1))),
			ret(num(99)),
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("r", callEx(member(ident("it"), "next"))),
		expr(add(add(str(""), member(ident("r"), "value")), member(ident("r"), "done"))),
	)
	require.Equal(t, "99true", asString(t, v))
}

func TestGeneratorWhileLoopWithYield(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil,
			letDecl("i", num(0)),
			&ast.While{
				Test: lt(ident("i"), num(3)),
				Body: block(
					expr(yieldOf(ident("i"))),
					expr(&ast.Update{Op: ast.OpIncrement, Operand: ident("i")}),
				),
			},
		),
		letDecl("it", callEx(ident("g"))),
		letDecl("sum", num(0)),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("sum"), Value: nextValue(ident("it"))}),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("sum"), Value: nextValue(ident("it"))}),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("sum"), Value: nextValue(ident("it"))}),
		letDecl("done", nextDone(ident("it"))),
		expr(add(add(str(""), ident("sum")), ident("done"))),
	)
	require.Equal(t, "3true", asString(t, v))
}

func TestGeneratorForOfWithYield(t *testing.T) {
	v := runScript(t,
		genDecl("g", params("xs"),
			&ast.ForOf{
				Decl:  ast.VarKindConst,
				Left:  ident("x"),
				Right: ident("xs"),
				Body:  expr(yieldOf(&ast.Binary{Op: ast.OpMul, L: ident("x"), R: num(10)})),
			},
		),
		letDecl("it", callEx(ident("g"), &ast.ArrayLit{Elems: []ast.Expr{num(1), num(2), num(3)}})),
		letDecl("out", str("")),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("out"), Value: nextValue(ident("it"))}),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("out"), Value: nextValue(ident("it"))}),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("out"), Value: nextValue(ident("it"))}),
		expr(add(ident("out"), nextDone(ident("it")))),
	)
	require.Equal(t, "102030true", asString(t, v))
}

func TestGeneratorForInWithYield(t *testing.T) {
	v := runScript(t,
		genDecl("g", params("o"),
			&ast.ForIn{
				Decl:  ast.VarKindConst,
				Left:  ident("k"),
				Right: ident("o"),
				Body:  expr(yieldOf(ident("k"))),
			},
		),
		letDecl("it", callEx(ident("g"), &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "a", Kind: ast.PropInit, Value: num(1)},
			{Key: "b", Kind: ast.PropInit, Value: num(2)},
		}})),
		expr(add(
			add(nextValue(ident("it")), nextValue(ident("it"))),
			nextDone(ident("it")),
		)),
	)
	require.Equal(t, "abtrue", asString(t, v))
}

func TestGeneratorFinallyRunsOnInjectedReturn(t *testing.T) {
	v := runScript(t,
		letDecl("log", str("")),
		genDecl("g", nil,
			&ast.Try{
				Block:   block(expr(yieldOf(num(1)))),
				Finally: block(expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("log"), Value: str("fin")})),
			},
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("r", callEx(member(ident("it"), "return"), num(5))),
		expr(add(
			add(ident("log"), member(ident("r"), "value")),
			member(ident("r"), "done"),
		)),
	)
	require.Equal(t, "fin5true", asString(t, v))
}

func TestGeneratorThrowCaughtInside(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil,
			&ast.Try{
				Block:      block(expr(yieldOf(num(1)))),
				CatchParam: ident("e"),
				Catch:      block(expr(yieldOf(add(str("caught:"), ident("e"))))),
			},
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		expr(member(callEx(member(ident("it"), "throw"), str("boom")), "value")),
	)
	require.Equal(t, "caught:boom", asString(t, v))
}

func TestGeneratorThrowUnprotectedCompletes(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil, expr(yieldOf(num(1)))),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("msg", str("")),
		&ast.Try{
			Block: block(expr(callEx(member(ident("it"), "throw"),
				&ast.New{Callee: ident("RangeError"), Args: []ast.Expr{str("bang")}}))),
			CatchParam: ident("e"),
			Catch:      block(expr(assign(ident("msg"), member(ident("e"), "message")))),
		},
		expr(add(ident("msg"), nextDone(ident("it")))),
	)
	require.Equal(t, "bangtrue", asString(t, v))
}

func TestGeneratorThrowBeforeStart(t *testing.T) {
	// The body never ran, so nothing can catch the injected throw.
	v := runScript(t,
		genDecl("g", nil,
			&ast.Try{
				Block:      block(expr(yieldOf(num(1)))),
				CatchParam: ident("e"),
				Catch:      block(expr(yieldOf(str("caught")))),
			},
		),
		letDecl("it", callEx(ident("g"))),
		letDecl("msg", str("")),
		&ast.Try{
			Block:      block(expr(callEx(member(ident("it"), "throw"), str("early")))),
			CatchParam: ident("e"),
			Catch:      block(expr(assign(ident("msg"), ident("e")))),
		},
		expr(add(ident("msg"), nextDone(ident("it")))),
	)
	require.Equal(t, "earlytrue", asString(t, v))
}

func TestGeneratorReturnBeforeStart(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil, expr(yieldOf(num(1)))),
		letDecl("it", callEx(ident("g"))),
		letDecl("r", callEx(member(ident("it"), "return"), num(7))),
		expr(add(
			add(str(""), member(ident("r"), "value")),
			member(ident("r"), "done"),
		)),
	)
	require.Equal(t, "7true", asString(t, v))
}

func TestGeneratorCompletedNextIsDone(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil, expr(yieldOf(num(1)))),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("r", callEx(member(ident("it"), "next"))),
		expr(add(
			&ast.Unary{Op: ast.OpTypeof, Operand: member(ident("r"), "value")},
			member(ident("r"), "done"),
		)),
	)
	require.Equal(t, "undefinedtrue", asString(t, v))
}

func TestGeneratorReentrancyThrows(t *testing.T) {
	scriptErr := runError(t,
		varDecl("it", nil),
		genDecl("g", nil,
			expr(callEx(member(ident("it"), "next"))),
		),
		expr(assign(ident("it"), callEx(ident("g")))),
		expr(callEx(member(ident("it"), "next"))),
	)
	require.Equal(t, "TypeError", scriptErr.Name)
	require.Contains(t, scriptErr.Message, "already running")
}

func TestGeneratorDelegation(t *testing.T) {
	v := runScript(t,
		genDecl("inner", nil,
			constDecl("x", yieldOf(str("a"))),
			expr(yieldOf(add(str("x"), ident("x")))),
			ret(str("r")),
		),
		genDecl("outer", nil,
			constDecl("r", &ast.Yield{Value: callEx(ident("inner")), Delegate: true}),
			expr(yieldOf(add(str("got:"), ident("r")))),
		),
		letDecl("it", callEx(ident("outer"))),
		letDecl("out", str("")),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("out"), Value: nextValue(ident("it"))}),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("out"),
			Value: member(callEx(member(ident("it"), "next"), str("S")), "value")}),
		expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("out"), Value: nextValue(ident("it"))}),
		expr(add(ident("out"), nextDone(ident("it")))),
	)
	// yield* forwards "a", then "xS" with the sent value, and the inner
	// return value lands in the outer binding.
	require.Equal(t, "axSgot:rtrue", asString(t, v))
}

func TestGeneratorDelegationToArray(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil,
			&ast.ExprStmt{X: &ast.Yield{
				Value:    &ast.ArrayLit{Elems: []ast.Expr{num(1), num(2)}},
				Delegate: true,
			}},
			expr(yieldOf(num(3))),
		),
		letDecl("it", callEx(ident("g"))),
		expr(add(
			add(nextValue(ident("it")), nextValue(ident("it"))),
			nextValue(ident("it")),
		)),
	)
	require.Equal(t, 6.0, asNumber(t, v))
}

func TestGeneratorDelegationMissingThrowMethod(t *testing.T) {
	v := runScript(t,
		letDecl("plain", &ast.ObjectLit{Props: []*ast.ObjectProp{
			{Key: "next", Kind: ast.PropInit, Value: &ast.FuncLit{Body: []ast.Stmt{
				ret(&ast.ObjectLit{Props: []*ast.ObjectProp{
					{Key: "value", Kind: ast.PropInit, Value: num(1)},
					{Key: "done", Kind: ast.PropInit, Value: &ast.BoolLit{}},
				}}),
			}}},
		}}),
		genDecl("g", nil,
			&ast.ExprStmt{X: &ast.Yield{Value: ident("plain"), Delegate: true}},
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("msg", str("")),
		&ast.Try{
			Block:      block(expr(callEx(member(ident("it"), "throw"), str("x")))),
			CatchParam: ident("e"),
			Catch:      block(expr(assign(ident("msg"), member(ident("e"), "message")))),
		},
		expr(ident("msg")),
	)
	require.Equal(t, "The iterator does not provide a 'throw' method", asString(t, v))
}

func TestGeneratorLabeledBreakAcrossFinally(t *testing.T) {
	// Breaking out of the loop from inside the try runs the finally
	// before the jump lands past the loop.
	v := runScript(t,
		letDecl("log", str("")),
		genDecl("g", nil,
			&ast.Labeled{Label: "outer", Stmt: &ast.While{
				Test: &ast.BoolLit{Value: true},
				Body: &ast.Try{
					Block: block(
						expr(yieldOf(num(1))),
						&ast.Break{Label: "outer"},
					),
					Finally: block(
						expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("log"), Value: str("fin,")}),
					),
				},
			}},
			expr(yieldOf(num(2))),
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("second", nextValue(ident("it"))),
		expr(add(ident("log"), ident("second"))),
	)
	require.Equal(t, "fin,2", asString(t, v))
}

func TestGeneratorContinueInsideTryStaysInLoop(t *testing.T) {
	v := runScript(t,
		genDecl("g", nil,
			letDecl("i", num(0)),
			&ast.While{
				Test: lt(ident("i"), num(3)),
				Body: &ast.Try{
					Block: block(
						expr(&ast.Update{Op: ast.OpIncrement, Operand: ident("i")}),
						expr(yieldOf(ident("i"))),
						&ast.Continue{},
					),
					Finally: block(&ast.Empty{}),
				},
			},
		),
		letDecl("it", callEx(ident("g"))),
		expr(add(
			add(nextValue(ident("it")), nextValue(ident("it"))),
			nextValue(ident("it")),
		)),
	)
	require.Equal(t, 6.0, asNumber(t, v))
}

func TestGeneratorWhileWithTryFinallyBody(t *testing.T) {
	// The loop test must re-run after each finally completes instead of
	// the back-edge clobbering it.
	v := runScript(t,
		letDecl("log", str("")),
		genDecl("g", nil,
			letDecl("n", num(0)),
			&ast.While{
				Test: lt(ident("n"), num(2)),
				Body: block(
					&ast.Try{
						Block:   block(expr(yieldOf(ident("n")))),
						Finally: block(expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("log"), Value: str("f")})),
					},
					expr(&ast.Update{Op: ast.OpIncrement, Operand: ident("n")}),
				),
			},
		),
		letDecl("it", callEx(ident("g"))),
		letDecl("a", nextValue(ident("it"))),
		letDecl("b", nextValue(ident("it"))),
		letDecl("done", nextDone(ident("it"))),
		expr(add(add(add(add(str(""), ident("a")), ident("b")), ident("done")), ident("log"))),
	)
	require.Equal(t, "01trueff", asString(t, v))
}

func TestGeneratorCompletedTryDoesNotCatchLaterThrow(t *testing.T) {
	// Once the try completes normally its handler is gone.
	scriptErr := runError(t,
		genDecl("g", nil,
			&ast.Try{
				Block:      block(expr(yieldOf(num(1)))),
				CatchParam: ident("e"),
				Catch:      block(expr(yieldOf(str("caught")))),
			},
			&ast.Throw{Value: str("boom")},
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		expr(callEx(member(ident("it"), "next"))),
	)
	require.Equal(t, "boom", scriptErr.Message)
}

func TestGeneratorFinallyThrowSkipsOwnCatch(t *testing.T) {
	// A throw raised inside the finally unwinds out of the statement
	// rather than landing in its own catch.
	scriptErr := runError(t,
		genDecl("g", nil,
			&ast.Try{
				Block:      block(expr(yieldOf(num(1)))),
				CatchParam: ident("e"),
				Catch:      block(expr(yieldOf(str("caught")))),
				Finally:    block(&ast.Throw{Value: str("fin")}),
			},
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		expr(callEx(member(ident("it"), "next"))),
	)
	require.Equal(t, "fin", scriptErr.Message)
}

func TestGeneratorTryEndingInBranchRunsFinally(t *testing.T) {
	// A try block that ends inside a nested branch still exits through
	// the finally on resume.
	v := runScript(t,
		letDecl("log", str("")),
		genDecl("g", nil,
			&ast.Try{
				Block: block(&ast.If{
					Test: &ast.BoolLit{Value: true},
					Cons: block(expr(yieldOf(num(1)))),
				}),
				Finally: block(expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("log"), Value: str("f")})),
			},
			expr(yieldOf(num(2))),
		),
		letDecl("it", callEx(ident("g"))),
		letDecl("a", nextValue(ident("it"))),
		letDecl("b", nextValue(ident("it"))),
		expr(add(add(add(str(""), ident("a")), ident("b")), ident("log"))),
	)
	require.Equal(t, "12f", asString(t, v))
}

func TestGeneratorBinaryLeftEvaluatesBeforeYield(t *testing.T) {
	// In f() + (yield 0) the call runs before the generator suspends.
	v := runScript(t,
		letDecl("log", str("")),
		fnDecl("f", nil,
			expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("log"), Value: str("L")}),
			ret(num(1)),
		),
		genDecl("g", nil,
			letDecl("x", add(callEx(ident("f")), yieldOf(num(0)))),
			expr(yieldOf(ident("x"))),
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("afterFirst", ident("log")),
		letDecl("sum", member(callEx(member(ident("it"), "next"), num(41)), "value")),
		expr(add(add(str(""), ident("afterFirst")), ident("sum"))),
	)
	require.Equal(t, "L42", asString(t, v))
}

func TestGeneratorCallArgsEvaluateBeforeYield(t *testing.T) {
	// Arguments before a yielding argument run pre-suspension, once.
	v := runScript(t,
		letDecl("log", str("")),
		fnDecl("mark", nil,
			expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("log"), Value: str("A")}),
			ret(num(2)),
		),
		fnDecl("pair", params("a", "b"), ret(add(add(str(""), ident("a")), ident("b")))),
		genDecl("g", nil,
			expr(yieldOf(callEx(ident("pair"), callEx(ident("mark")), yieldOf(num(0))))),
		),
		letDecl("it", callEx(ident("g"))),
		expr(callEx(member(ident("it"), "next"))),
		letDecl("afterFirst", ident("log")),
		letDecl("out", member(callEx(member(ident("it"), "next"), num(9)), "value")),
		expr(add(add(ident("afterFirst"), ident("out")), ident("log"))),
	)
	require.Equal(t, "A29A", asString(t, v))
}

func TestGeneratorObjectIsIterable(t *testing.T) {
	// A generator object feeds for-of directly.
	v := runScript(t,
		genDecl("g", nil,
			expr(yieldOf(num(1))),
			expr(yieldOf(num(2))),
		),
		letDecl("sum", num(0)),
		&ast.ForOf{
			Decl:  ast.VarKindConst,
			Left:  ident("x"),
			Right: callEx(ident("g")),
			Body:  expr(&ast.Assign{Op: ast.OpAddAssign, Target: ident("sum"), Value: ident("x")}),
		},
		expr(ident("sum")),
	)
	require.Equal(t, 3.0, asNumber(t, v))
}

func TestGeneratorIsNotAConstructor(t *testing.T) {
	scriptErr := runError(t,
		genDecl("g", nil, expr(yieldOf(num(1)))),
		expr(&ast.New{Callee: ident("g")}),
	)
	require.Equal(t, "TypeError", scriptErr.Name)
}

func TestGeneratorMethodsRejectNonGenerators(t *testing.T) {
	scriptErr := runError(t,
		genDecl("g", nil, expr(yieldOf(num(1)))),
		expr(callEx(
			member(member(callEx(ident("g")), "next"), "call"),
			&ast.ObjectLit{},
		)),
	)
	require.Equal(t, "TypeError", scriptErr.Name)
}
