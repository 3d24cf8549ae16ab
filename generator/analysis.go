// Package generator lowers generator function bodies into resumable
// state machines. The analysis pass locates yield points and the
// variables that must survive suspension; the transform pass splits the
// body into states connected by explicit terminators.
package generator

import (
	"github.com/cloudcmds/marmoset/ast"
)

// Analysis summarizes a generator body: where it yields, which
// variables outlive a suspension, and which try and loop constructs
// enclose each yield.
type Analysis struct {
	YieldPoints  []YieldPoint
	LocalVars    []LocalVar
	TryContexts  []TryContext
	LoopContexts []LoopContext
	HasDelegate  bool
}

// YieldPoint is one yield expression, identified in source order.
type YieldPoint struct {
	ID           int
	Delegate     bool
	InsideTry    int // enclosing try context id, -1 if none
	InsideLoop   int // enclosing loop context id, -1 if none
	InExpression bool
}

// LocalVar is a variable that must be persisted across suspensions.
// Parameters are recorded with kind var at depth zero.
type LocalVar struct {
	Name  string
	Kind  ast.VarKind
	Depth int
}

// TryContext is one try statement that may enclose yields.
type TryContext struct {
	ID         int
	HasCatch   bool
	HasFinally bool
	Yields     []int
	Parent     int // -1 at top level
}

// LoopContext is one loop that may enclose yields.
type LoopContext struct {
	ID     int
	Kind   LoopKind
	Label  string
	Yields []int
	Parent int // -1 at top level
}

// LoopKind identifies the loop form of a LoopContext.
type LoopKind uint8

const (
	LoopWhile LoopKind = iota
	LoopDoWhile
	LoopFor
	LoopForIn
	LoopForOf
)

func (k LoopKind) String() string {
	switch k {
	case LoopWhile:
		return "while"
	case LoopDoWhile:
		return "do-while"
	case LoopFor:
		return "for"
	case LoopForIn:
		return "for-in"
	case LoopForOf:
		return "for-of"
	}
	return "unknown"
}

type analyzer struct {
	out          *Analysis
	yieldCount   int
	tryCount     int
	loopCount    int
	depth        int
	currentTry   int
	currentLoop  int
	pendingLabel string
	seenVars     map[string]bool
}

// Analyze walks a generator function and reports its yield points,
// persistent locals, and enclosing try/loop structure. Nested function
// bodies are opaque: their yields belong to their own generators.
func Analyze(fn *ast.FuncLit) *Analysis {
	a := &analyzer{
		out:         &Analysis{},
		currentTry:  -1,
		currentLoop: -1,
		seenVars:    map[string]bool{},
	}
	for _, p := range fn.Params {
		a.collectPattern(p.Target, ast.VarKindVar)
	}
	if fn.RestParam != nil {
		a.collectPattern(fn.RestParam, ast.VarKindVar)
	}
	a.stmts(fn.Body)
	return a.out
}

func (a *analyzer) stmts(body []ast.Stmt) {
	for _, s := range body {
		a.stmt(s)
	}
}

func (a *analyzer) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Empty, *ast.Break, *ast.Continue, *ast.FuncDecl:
	case *ast.ExprStmt:
		a.expr(s.X, false)
	case *ast.Block:
		a.depth++
		a.stmts(s.Body)
		a.depth--
	case *ast.VarDecl:
		for _, d := range s.Decls {
			a.collectPattern(d.Target, s.Kind)
			if d.Init != nil {
				a.expr(d.Init, true)
			}
		}
	case *ast.If:
		a.expr(s.Test, true)
		a.stmt(s.Cons)
		if s.Alt != nil {
			a.stmt(s.Alt)
		}
	case *ast.While:
		id := a.enterLoop(LoopWhile)
		a.expr(s.Test, true)
		a.stmt(s.Body)
		a.exitLoop(id)
	case *ast.DoWhile:
		id := a.enterLoop(LoopDoWhile)
		a.stmt(s.Body)
		a.expr(s.Test, true)
		a.exitLoop(id)
	case *ast.For:
		id := a.enterLoop(LoopFor)
		a.depth++
		if s.Init != nil {
			a.stmt(s.Init)
		}
		if s.Test != nil {
			a.expr(s.Test, true)
		}
		if s.Update != nil {
			a.expr(s.Update, true)
		}
		a.stmt(s.Body)
		a.depth--
		a.exitLoop(id)
	case *ast.ForIn:
		id := a.enterLoop(LoopForIn)
		a.depth++
		a.collectLeft(s.Decl, s.Left)
		a.expr(s.Right, true)
		a.stmt(s.Body)
		a.depth--
		a.exitLoop(id)
	case *ast.ForOf:
		id := a.enterLoop(LoopForOf)
		a.depth++
		a.collectLeft(s.Decl, s.Left)
		a.expr(s.Right, true)
		a.stmt(s.Body)
		a.depth--
		a.exitLoop(id)
	case *ast.Return:
		if s.Value != nil {
			a.expr(s.Value, true)
		}
	case *ast.Throw:
		a.expr(s.Value, true)
	case *ast.Try:
		id := a.tryCount
		a.tryCount++
		a.out.TryContexts = append(a.out.TryContexts, TryContext{
			ID:         id,
			HasCatch:   s.Catch != nil,
			HasFinally: s.Finally != nil,
			Parent:     a.currentTry,
		})
		parent := a.currentTry
		a.currentTry = id
		a.stmts(s.Block.Body)
		if s.Catch != nil {
			a.depth++
			if s.CatchParam != nil {
				a.collectPattern(s.CatchParam, ast.VarKindLet)
			}
			a.stmts(s.Catch.Body)
			a.depth--
		}
		a.currentTry = parent
		if s.Finally != nil {
			a.stmts(s.Finally.Body)
		}
	case *ast.Switch:
		a.expr(s.Disc, true)
		a.depth++
		for _, c := range s.Cases {
			if c.Test != nil {
				a.expr(c.Test, true)
			}
			a.stmts(c.Body)
		}
		a.depth--
	case *ast.Labeled:
		a.pendingLabel = s.Label
		a.stmt(s.Stmt)
		a.pendingLabel = ""
	}
}

func (a *analyzer) enterLoop(kind LoopKind) int {
	id := a.loopCount
	a.loopCount++
	label := a.pendingLabel
	a.pendingLabel = ""
	a.out.LoopContexts = append(a.out.LoopContexts, LoopContext{
		ID:     id,
		Kind:   kind,
		Label:  label,
		Parent: a.currentLoop,
	})
	a.currentLoop = id
	return id
}

func (a *analyzer) exitLoop(id int) {
	a.currentLoop = a.out.LoopContexts[id].Parent
}

func (a *analyzer) collectLeft(decl ast.VarKind, left ast.Pattern) {
	kind := decl
	if kind == "" {
		kind = ast.VarKindVar
	}
	a.collectPattern(left, kind)
}

func (a *analyzer) expr(expr ast.Expr, inExpression bool) {
	switch e := expr.(type) {
	case *ast.Yield:
		id := a.yieldCount
		a.yieldCount++
		if e.Delegate {
			a.out.HasDelegate = true
		}
		a.out.YieldPoints = append(a.out.YieldPoints, YieldPoint{
			ID:           id,
			Delegate:     e.Delegate,
			InsideTry:    a.currentTry,
			InsideLoop:   a.currentLoop,
			InExpression: inExpression,
		})
		if a.currentTry >= 0 {
			tc := &a.out.TryContexts[a.currentTry]
			tc.Yields = append(tc.Yields, id)
		}
		if a.currentLoop >= 0 {
			lc := &a.out.LoopContexts[a.currentLoop]
			lc.Yields = append(lc.Yields, id)
		}
		if e.Value != nil {
			a.expr(e.Value, true)
		}
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			if el != nil {
				a.expr(el, true)
			}
		}
	case *ast.ObjectLit:
		for _, p := range e.Props {
			if p.Computed && p.KeyExpr != nil {
				a.expr(p.KeyExpr, true)
			}
			a.expr(p.Value, true)
		}
	case *ast.Unary:
		a.expr(e.Operand, true)
	case *ast.Update:
		a.expr(e.Operand, true)
	case *ast.Binary:
		a.expr(e.L, true)
		a.expr(e.R, true)
	case *ast.Logical:
		a.expr(e.L, true)
		a.expr(e.R, true)
	case *ast.Assign:
		if target, ok := e.Target.(ast.Expr); ok {
			a.expr(target, true)
		}
		a.expr(e.Value, true)
	case *ast.Conditional:
		a.expr(e.Test, true)
		a.expr(e.Cons, true)
		a.expr(e.Alt, true)
	case *ast.Call:
		a.expr(e.Callee, true)
		for _, arg := range e.Args {
			a.expr(arg, true)
		}
	case *ast.New:
		a.expr(e.Callee, true)
		for _, arg := range e.Args {
			a.expr(arg, true)
		}
	case *ast.Member:
		a.expr(e.Object, true)
	case *ast.Index:
		a.expr(e.Object, true)
		a.expr(e.Key, true)
	case *ast.Sequence:
		for _, x := range e.Exprs {
			a.expr(x, true)
		}
	case *ast.Spread:
		a.expr(e.X, true)
	}
	// Function literals are not descended into.
}

func (a *analyzer) collectPattern(pat ast.Pattern, kind ast.VarKind) {
	switch p := pat.(type) {
	case *ast.Ident:
		if !a.seenVars[p.Name] {
			a.seenVars[p.Name] = true
			a.out.LocalVars = append(a.out.LocalVars, LocalVar{
				Name:  p.Name,
				Kind:  kind,
				Depth: a.depth,
			})
		}
	case *ast.ArrayPattern:
		for _, el := range p.Elems {
			if el != nil {
				a.collectPattern(el.Target, kind)
			}
		}
		if p.Rest != nil {
			a.collectPattern(p.Rest, kind)
		}
	case *ast.ObjectPattern:
		for _, pp := range p.Props {
			a.collectPattern(pp.Target, kind)
		}
		if p.Rest != nil {
			a.collectPattern(p.Rest, kind)
		}
	}
}

// ContainsYield reports whether a statement evaluates a yield expression
// directly, without entering nested function bodies.
func ContainsYield(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case nil, *ast.Empty, *ast.Break, *ast.Continue, *ast.FuncDecl:
		return false
	case *ast.ExprStmt:
		return ExprContainsYield(s.X)
	case *ast.Block:
		return anyContainsYield(s.Body)
	case *ast.VarDecl:
		for _, d := range s.Decls {
			if d.Init != nil && ExprContainsYield(d.Init) {
				return true
			}
		}
		return false
	case *ast.If:
		return ExprContainsYield(s.Test) || ContainsYield(s.Cons) ||
			(s.Alt != nil && ContainsYield(s.Alt))
	case *ast.While:
		return ExprContainsYield(s.Test) || ContainsYield(s.Body)
	case *ast.DoWhile:
		return ContainsYield(s.Body) || ExprContainsYield(s.Test)
	case *ast.For:
		return (s.Init != nil && ContainsYield(s.Init)) ||
			(s.Test != nil && ExprContainsYield(s.Test)) ||
			(s.Update != nil && ExprContainsYield(s.Update)) ||
			ContainsYield(s.Body)
	case *ast.ForIn:
		return ExprContainsYield(s.Right) || ContainsYield(s.Body)
	case *ast.ForOf:
		return ExprContainsYield(s.Right) || ContainsYield(s.Body)
	case *ast.Return:
		return s.Value != nil && ExprContainsYield(s.Value)
	case *ast.Throw:
		return ExprContainsYield(s.Value)
	case *ast.Try:
		if anyContainsYield(s.Block.Body) {
			return true
		}
		if s.Catch != nil && anyContainsYield(s.Catch.Body) {
			return true
		}
		return s.Finally != nil && anyContainsYield(s.Finally.Body)
	case *ast.Switch:
		if ExprContainsYield(s.Disc) {
			return true
		}
		for _, c := range s.Cases {
			if c.Test != nil && ExprContainsYield(c.Test) {
				return true
			}
			if anyContainsYield(c.Body) {
				return true
			}
		}
		return false
	case *ast.Labeled:
		return ContainsYield(s.Stmt)
	}
	return false
}

func anyContainsYield(body []ast.Stmt) bool {
	for _, s := range body {
		if ContainsYield(s) {
			return true
		}
	}
	return false
}

// ExprContainsYield reports whether an expression evaluates a yield,
// without entering nested function bodies.
func ExprContainsYield(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Yield:
		return true
	case *ast.ArrayLit:
		for _, el := range e.Elems {
			if el != nil && ExprContainsYield(el) {
				return true
			}
		}
		return false
	case *ast.ObjectLit:
		for _, p := range e.Props {
			if p.Computed && p.KeyExpr != nil && ExprContainsYield(p.KeyExpr) {
				return true
			}
			if ExprContainsYield(p.Value) {
				return true
			}
		}
		return false
	case *ast.Unary:
		return ExprContainsYield(e.Operand)
	case *ast.Update:
		return ExprContainsYield(e.Operand)
	case *ast.Binary:
		return ExprContainsYield(e.L) || ExprContainsYield(e.R)
	case *ast.Logical:
		return ExprContainsYield(e.L) || ExprContainsYield(e.R)
	case *ast.Assign:
		if target, ok := e.Target.(ast.Expr); ok && ExprContainsYield(target) {
			return true
		}
		return ExprContainsYield(e.Value)
	case *ast.Conditional:
		return ExprContainsYield(e.Test) || ExprContainsYield(e.Cons) ||
			ExprContainsYield(e.Alt)
	case *ast.Call:
		if ExprContainsYield(e.Callee) {
			return true
		}
		for _, arg := range e.Args {
			if ExprContainsYield(arg) {
				return true
			}
		}
		return false
	case *ast.New:
		if ExprContainsYield(e.Callee) {
			return true
		}
		for _, arg := range e.Args {
			if ExprContainsYield(arg) {
				return true
			}
		}
		return false
	case *ast.Member:
		return ExprContainsYield(e.Object)
	case *ast.Index:
		return ExprContainsYield(e.Object) || ExprContainsYield(e.Key)
	case *ast.Sequence:
		for _, x := range e.Exprs {
			if ExprContainsYield(x) {
				return true
			}
		}
		return false
	case *ast.Spread:
		return ExprContainsYield(e.X)
	}
	return false
}
