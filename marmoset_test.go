package marmoset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/errors"
	"github.com/cloudcmds/marmoset/interp"
	"github.com/cloudcmds/marmoset/object"
)

func program(body ...ast.Stmt) *ast.Program {
	return &ast.Program{Body: body}
}

func exprStmt(x ast.Expr) ast.Stmt {
	return &ast.ExprStmt{X: x}
}

func TestBasicUsage(t *testing.T) {
	result, err := Run(context.Background(), program(
		exprStmt(&ast.Binary{
			Op: ast.OpAdd,
			L:  &ast.NumberLit{Value: 1},
			R:  &ast.NumberLit{Value: 1},
		}),
	))
	require.NoError(t, err)
	n, ok := result.(*object.Number)
	require.True(t, ok)
	require.Equal(t, 2.0, n.Value())
}

func TestRunWithGlobals(t *testing.T) {
	result, err := Run(context.Background(), program(
		exprStmt(&ast.Binary{
			Op: ast.OpMul,
			L:  &ast.Ident{Name: "x"},
			R:  &ast.NumberLit{Value: 2},
		}),
	), WithGlobals(map[string]any{"x": 21}))
	require.NoError(t, err)
	n, ok := result.(*object.Number)
	require.True(t, ok)
	require.Equal(t, 42.0, n.Value())
}

func TestUncaughtExceptionIsScriptError(t *testing.T) {
	_, err := Run(context.Background(), program(
		exprStmt(&ast.Call{Callee: &ast.Ident{Name: "nope"}}),
	))
	var scriptErr *errors.ScriptError
	require.ErrorAs(t, err, &scriptErr)
	require.Equal(t, "ReferenceError", scriptErr.Name)
}

func TestInterpreterAccumulatesState(t *testing.T) {
	i := New()
	ctx := context.Background()

	_, err := i.Run(ctx, program(&ast.VarDecl{
		Kind:  ast.VarKindVar,
		Decls: []*ast.Declarator{{Target: &ast.Ident{Name: "n"}, Init: &ast.NumberLit{Value: 40}}},
	}))
	require.NoError(t, err)

	result, err := i.Run(ctx, program(
		exprStmt(&ast.Binary{
			Op: ast.OpAdd,
			L:  &ast.Ident{Name: "n"},
			R:  &ast.NumberLit{Value: 2},
		}),
	))
	require.NoError(t, err)
	n, ok := result.(*object.Number)
	require.True(t, ok)
	require.Equal(t, 42.0, n.Value())
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, program(
		&ast.While{Test: &ast.BoolLit{Value: true}, Body: &ast.Empty{}},
	), WithContextCheckInterval(1))
	require.ErrorIs(t, err, context.Canceled)
}

type haltingObserver struct {
	interp.NoOpObserver
	steps int
}

func (o *haltingObserver) OnStep(interp.StepEvent) bool {
	o.steps++
	return o.steps < 3
}

func TestObserverHaltsExecution(t *testing.T) {
	obs := &haltingObserver{}
	_, err := Run(context.Background(), program(
		&ast.While{Test: &ast.BoolLit{Value: true}, Body: &ast.Empty{}},
	), WithObserver(obs))
	require.ErrorIs(t, err, interp.ErrHalted)
}
