package generator

import (
	"testing"

	"github.com/cloudcmds/marmoset/ast"
	"github.com/stretchr/testify/require"
)

func bareYield() ast.Expr {
	return &ast.Yield{}
}

func yieldOf(value ast.Expr) ast.Expr {
	return &ast.Yield{Value: value}
}

func num(v float64) ast.Expr {
	return &ast.NumberLit{Value: v}
}

func genFn(body ...ast.Stmt) *ast.FuncLit {
	return &ast.FuncLit{IsGenerator: true, Body: body}
}

func TestAnalyzeSimpleYields(t *testing.T) {
	fn := genFn(
		&ast.ExprStmt{X: bareYield()},
		&ast.ExprStmt{X: bareYield()},
	)
	a := Analyze(fn)

	require.Len(t, a.YieldPoints, 2)
	require.Equal(t, 0, a.YieldPoints[0].ID)
	require.Equal(t, 1, a.YieldPoints[1].ID)
	require.False(t, a.HasDelegate)
}

func TestAnalyzeDelegate(t *testing.T) {
	fn := genFn(&ast.ExprStmt{X: &ast.Yield{Delegate: true}})
	a := Analyze(fn)

	require.Len(t, a.YieldPoints, 1)
	require.True(t, a.YieldPoints[0].Delegate)
	require.True(t, a.HasDelegate)
}

func TestAnalyzeYieldInTry(t *testing.T) {
	fn := genFn(&ast.Try{
		Block:   &ast.Block{Body: []ast.Stmt{&ast.ExprStmt{X: bareYield()}}},
		Finally: &ast.Block{},
	})
	a := Analyze(fn)

	require.Len(t, a.YieldPoints, 1)
	require.Equal(t, 0, a.YieldPoints[0].InsideTry)
	require.Len(t, a.TryContexts, 1)
	require.True(t, a.TryContexts[0].HasFinally)
	require.False(t, a.TryContexts[0].HasCatch)
	require.Equal(t, []int{0}, a.TryContexts[0].Yields)
}

func TestAnalyzeYieldInLoop(t *testing.T) {
	fn := genFn(&ast.While{
		Test: &ast.BoolLit{Value: true},
		Body: &ast.ExprStmt{X: bareYield()},
	})
	a := Analyze(fn)

	require.Len(t, a.YieldPoints, 1)
	require.Equal(t, 0, a.YieldPoints[0].InsideLoop)
	require.Len(t, a.LoopContexts, 1)
	require.Equal(t, LoopWhile, a.LoopContexts[0].Kind)
	require.Equal(t, []int{0}, a.LoopContexts[0].Yields)
}

func TestAnalyzeLabeledLoop(t *testing.T) {
	fn := genFn(&ast.Labeled{
		Label: "outer",
		Stmt: &ast.While{
			Test: &ast.BoolLit{Value: true},
			Body: &ast.ExprStmt{X: bareYield()},
		},
	})
	a := Analyze(fn)

	require.Len(t, a.LoopContexts, 1)
	require.Equal(t, "outer", a.LoopContexts[0].Label)
}

func TestAnalyzeLocalVariables(t *testing.T) {
	fn := genFn(&ast.VarDecl{
		Kind: ast.VarKindLet,
		Decls: []*ast.Declarator{
			{Target: &ast.Ident{Name: "x"}, Init: num(1)},
			{Target: &ast.Ident{Name: "y"}},
		},
	})
	a := Analyze(fn)

	require.Len(t, a.LocalVars, 2)
	require.Equal(t, "x", a.LocalVars[0].Name)
	require.Equal(t, ast.VarKindLet, a.LocalVars[0].Kind)
	require.Equal(t, "y", a.LocalVars[1].Name)
}

func TestAnalyzeParamsAsLocals(t *testing.T) {
	fn := &ast.FuncLit{
		IsGenerator: true,
		Params: []*ast.Param{
			{Target: &ast.Ident{Name: "a"}},
			{Target: &ast.Ident{Name: "b"}},
		},
		RestParam: &ast.Ident{Name: "rest"},
	}
	a := Analyze(fn)

	require.Len(t, a.LocalVars, 3)
	require.Equal(t, "a", a.LocalVars[0].Name)
	require.Equal(t, ast.VarKindVar, a.LocalVars[0].Kind)
	require.Equal(t, "rest", a.LocalVars[2].Name)
}

func TestAnalyzeNestedTryLoop(t *testing.T) {
	fn := genFn(&ast.Try{
		Block: &ast.Block{Body: []ast.Stmt{
			&ast.While{
				Test: &ast.BoolLit{Value: true},
				Body: &ast.ExprStmt{X: bareYield()},
			},
		}},
		CatchParam: &ast.Ident{Name: "e"},
		Catch:      &ast.Block{},
	})
	a := Analyze(fn)

	require.Len(t, a.YieldPoints, 1)
	require.Equal(t, 0, a.YieldPoints[0].InsideTry)
	require.Equal(t, 0, a.YieldPoints[0].InsideLoop)
	require.Len(t, a.TryContexts, 1)
	require.True(t, a.TryContexts[0].HasCatch)
	require.False(t, a.TryContexts[0].HasFinally)
	require.Len(t, a.LocalVars, 1)
	require.Equal(t, "e", a.LocalVars[0].Name)
}

func TestAnalyzeDoesNotEnterNestedFunctions(t *testing.T) {
	inner := &ast.FuncLit{
		IsGenerator: true,
		Body:        []ast.Stmt{&ast.ExprStmt{X: bareYield()}},
	}
	fn := genFn(&ast.ExprStmt{X: inner})
	a := Analyze(fn)
	require.Empty(t, a.YieldPoints)
}

func TestAnalyzeDestructuredLocals(t *testing.T) {
	fn := genFn(&ast.VarDecl{
		Kind: ast.VarKindLet,
		Decls: []*ast.Declarator{{
			Target: &ast.ArrayPattern{
				Elems: []*ast.PatternElem{
					{Target: &ast.Ident{Name: "a"}},
					{Target: &ast.Ident{Name: "b"}},
				},
				Rest: &ast.Ident{Name: "rest"},
			},
			Init: &ast.ArrayLit{},
		}},
	})
	a := Analyze(fn)

	names := make([]string, len(a.LocalVars))
	for i, v := range a.LocalVars {
		names[i] = v.Name
	}
	require.Equal(t, []string{"a", "b", "rest"}, names)
}

func TestContainsYield(t *testing.T) {
	require.True(t, ContainsYield(&ast.ExprStmt{X: bareYield()}))
	require.False(t, ContainsYield(&ast.ExprStmt{X: num(1)}))
	require.True(t, ContainsYield(&ast.If{
		Test: &ast.BoolLit{Value: true},
		Cons: &ast.ExprStmt{X: yieldOf(num(1))},
	}))
	require.True(t, ContainsYield(&ast.Return{Value: bareYield()}))
	require.False(t, ContainsYield(&ast.FuncDecl{Fn: genFn(&ast.ExprStmt{X: bareYield()})}))
}

func TestExprContainsYield(t *testing.T) {
	require.True(t, ExprContainsYield(&ast.Binary{Op: ast.OpAdd, L: num(1), R: bareYield()}))
	require.True(t, ExprContainsYield(&ast.Call{
		Callee: &ast.Ident{Name: "f"},
		Args:   []ast.Expr{bareYield()},
	}))
	require.False(t, ExprContainsYield(&ast.FuncLit{
		Body: []ast.Stmt{&ast.ExprStmt{X: bareYield()}},
	}))
	require.True(t, ExprContainsYield(&ast.Conditional{
		Test: num(1), Cons: num(2), Alt: bareYield(),
	}))
}
