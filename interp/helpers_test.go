package interp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/errors"
	"github.com/cloudcmds/marmoset/object"
)

func num(v float64) ast.Expr { return &ast.NumberLit{Value: v} }

func str(v string) ast.Expr { return &ast.StringLit{Value: v} }

func ident(name string) *ast.Ident { return &ast.Ident{Name: name} }

func expr(x ast.Expr) ast.Stmt { return &ast.ExprStmt{X: x} }

func ret(x ast.Expr) ast.Stmt { return &ast.Return{Value: x} }

func block(body ...ast.Stmt) *ast.Block { return &ast.Block{Body: body} }

func decl(kind ast.VarKind, name string, init ast.Expr) ast.Stmt {
	return &ast.VarDecl{Kind: kind, Decls: []*ast.Declarator{{Target: ident(name), Init: init}}}
}

func letDecl(name string, init ast.Expr) ast.Stmt { return decl(ast.VarKindLet, name, init) }

func varDecl(name string, init ast.Expr) ast.Stmt { return decl(ast.VarKindVar, name, init) }

func constDecl(name string, init ast.Expr) ast.Stmt { return decl(ast.VarKindConst, name, init) }

func assign(target ast.Node, value ast.Expr) ast.Expr {
	return &ast.Assign{Op: ast.OpAssign, Target: target, Value: value}
}

func add(l, r ast.Expr) ast.Expr { return &ast.Binary{Op: ast.OpAdd, L: l, R: r} }

func lt(l, r ast.Expr) ast.Expr { return &ast.Binary{Op: ast.OpLT, L: l, R: r} }

func callEx(callee ast.Expr, args ...ast.Expr) ast.Expr {
	return &ast.Call{Callee: callee, Args: args}
}

func member(o ast.Expr, prop string) ast.Expr {
	return &ast.Member{Object: o, Property: prop}
}

func index(o, key ast.Expr) ast.Expr { return &ast.Index{Object: o, Key: key} }

func params(names ...string) []*ast.Param {
	var out []*ast.Param
	for _, n := range names {
		out = append(out, &ast.Param{Target: ident(n)})
	}
	return out
}

func fnLit(name string, ps []*ast.Param, body ...ast.Stmt) *ast.FuncLit {
	return &ast.FuncLit{Name: name, Params: ps, Body: body}
}

func fnDecl(name string, ps []*ast.Param, body ...ast.Stmt) ast.Stmt {
	return &ast.FuncDecl{Fn: fnLit(name, ps, body...)}
}

func genDecl(name string, ps []*ast.Param, body ...ast.Stmt) ast.Stmt {
	return &ast.FuncDecl{Fn: &ast.FuncLit{Name: name, Params: ps, Body: body, IsGenerator: true}}
}

func prog(body ...ast.Stmt) *ast.Program { return &ast.Program{Body: body} }

func runIn(t *testing.T, i *Interpreter, body ...ast.Stmt) object.Value {
	t.Helper()
	v, err := i.Run(context.Background(), prog(body...))
	require.NoError(t, err)
	return v
}

func runScript(t *testing.T, body ...ast.Stmt) object.Value {
	t.Helper()
	return runIn(t, New(), body...)
}

func runError(t *testing.T, body ...ast.Stmt) *errors.ScriptError {
	t.Helper()
	_, err := New().Run(context.Background(), prog(body...))
	require.Error(t, err)
	var scriptErr *errors.ScriptError
	require.ErrorAs(t, err, &scriptErr)
	return scriptErr
}

func asNumber(t *testing.T, v object.Value) float64 {
	t.Helper()
	n, ok := v.(*object.Number)
	require.True(t, ok, "expected number, got %T (%v)", v, v)
	return n.Value()
}

func asString(t *testing.T, v object.Value) string {
	t.Helper()
	s, ok := v.(*object.String)
	require.True(t, ok, "expected string, got %T (%v)", v, v)
	return s.Value()
}

func asBool(t *testing.T, v object.Value) bool {
	t.Helper()
	b, ok := v.(*object.Bool)
	require.True(t, ok, "expected bool, got %T (%v)", v, v)
	return b.Value()
}
