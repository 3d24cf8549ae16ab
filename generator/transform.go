package generator

import (
	"fmt"

	"github.com/cloudcmds/marmoset/ast"
)

// None marks an absent state reference in a terminator.
const None = -1

// Intrinsic names referenced by lowered for-of and for-in loops. The
// executor binds them in the machine's locals before the first resume.
const (
	IterIntrinsic = "$iter"
	KeysIntrinsic = "$keys"
)

// StateMachine is the lowered form of a generator body: a flat list of
// states, each ending in a terminator that names its successors. The
// executor holds the current state id and a persistent locals
// environment; nothing is ever replayed.
type StateMachine struct {
	States    []*State
	LocalVars []LocalVar
	Params    []*ast.Param
	RestParam ast.Pattern
	NumYields int
	TempVars  []string
}

// State is a straight-line statement run ending in a single terminator.
// BreakTargets and ContinueTargets map labels ("" for unlabeled) to the
// state a break or continue completion escaping the statements jumps to.
type State struct {
	ID              int
	Stmts           []ast.Stmt
	Term            Terminator
	BreakTargets    map[string]int
	ContinueTargets map[string]int
}

// Terminator is the control-flow edge leaving a state.
type Terminator interface {
	terminator()
}

// YieldTerm suspends the machine. Resume names the state execution
// continues in; Bind says where the value sent into next() lands.
type YieldTerm struct {
	Value    ast.Expr // nil for a bare yield
	Delegate bool
	Resume   int
	Bind     *SentBinding
}

// ReturnTerm completes the machine with a return value.
type ReturnTerm struct {
	Value ast.Expr // nil for a bare return
}

// ThrowTerm completes the machine with a thrown value, subject to
// unwinding through the active try regions.
type ThrowTerm struct {
	Value ast.Expr
}

// GotoTerm transfers to another state unconditionally.
type GotoTerm struct {
	Target int
}

// CondGotoTerm branches on a condition expression.
type CondGotoTerm struct {
	Cond  ast.Expr
	True  int
	False int
}

// TryEnterTerm pushes a try region and enters the protected body.
// Catch is nil and Finally is None when the respective clause is absent.
type TryEnterTerm struct {
	Try     int
	Catch   *CatchInfo
	Finally int
	After   int
}

// TryExitTerm pops the current try region after its finally body ran.
type TryExitTerm struct {
	After int
}

// EnterCatchTerm binds the pending exception to Param and enters the
// catch body.
type EnterCatchTerm struct {
	Body  int
	Param ast.Pattern // nil for a parameterless catch
}

// EnterFinallyTerm enters the finally body, preserving any pending
// completion for replay at TryExit.
type EnterFinallyTerm struct {
	Body int
}

// SwitchTerm dispatches on a discriminant over case targets.
type SwitchTerm struct {
	Disc    ast.Expr
	Cases   []SwitchTarget
	Default int // None when there is no default clause
	After   int
}

// CompletedTerm ends the machine with value undefined.
type CompletedTerm struct{}

func (*YieldTerm) terminator()        {}
func (*ReturnTerm) terminator()       {}
func (*ThrowTerm) terminator()        {}
func (*GotoTerm) terminator()         {}
func (*CondGotoTerm) terminator()     {}
func (*TryEnterTerm) terminator()     {}
func (*TryExitTerm) terminator()      {}
func (*EnterCatchTerm) terminator()   {}
func (*EnterFinallyTerm) terminator() {}
func (*SwitchTerm) terminator()       {}
func (*CompletedTerm) terminator()    {}

// CatchInfo names the catch entry state and its parameter pattern.
type CatchInfo struct {
	State int
	Param ast.Pattern
}

// SwitchTarget pairs one case test with its entry state.
type SwitchTarget struct {
	Test  ast.Expr
	State int
}

// SentBinding says where a resumed value lands. Exactly one of Name and
// Target is set; a nil *SentBinding discards the value.
type SentBinding struct {
	Name   string
	Target ast.Pattern
}

type transformer struct {
	states          []*State
	currentID       int
	cur             []ast.Stmt
	tempCount       int
	tempVars        []string
	breakTargets    map[string]int
	continueTargets map[string]int
}

// Transform lowers a generator function body into a state machine. A
// body with no yield points becomes a single state running to
// completion.
func Transform(fn *ast.FuncLit) *StateMachine {
	analysis := Analyze(fn)

	if len(analysis.YieldPoints) == 0 {
		return &StateMachine{
			States: []*State{{
				ID:    0,
				Stmts: fn.Body,
				Term:  &CompletedTerm{},
			}},
			LocalVars: analysis.LocalVars,
			Params:    fn.Params,
			RestParam: fn.RestParam,
		}
	}

	tc := &transformer{
		breakTargets:    map[string]int{},
		continueTargets: map[string]int{},
	}

	start := tc.newState()
	tc.currentID = start
	end := tc.newState()

	tc.stmts(fn.Body, end)

	switch tc.states[tc.currentID].Term.(type) {
	case *ReturnTerm, *ThrowTerm:
	default:
		tc.joinTo(end)
	}
	tc.states[end].Term = &CompletedTerm{}

	return &StateMachine{
		States:    tc.states,
		LocalVars: analysis.LocalVars,
		Params:    fn.Params,
		RestParam: fn.RestParam,
		NumYields: len(analysis.YieldPoints),
		TempVars:  tc.tempVars,
	}
}

func (tc *transformer) newState() int {
	id := len(tc.states)
	tc.states = append(tc.states, &State{ID: id, Term: &CompletedTerm{}})
	return id
}

func (tc *transformer) newTemp(prefix string) string {
	name := fmt.Sprintf("$%s_%d", prefix, tc.tempCount)
	tc.tempCount++
	tc.tempVars = append(tc.tempVars, name)
	return name
}

// finalize seals the current state with its accumulated statements, the
// terminator, and a snapshot of the active break/continue targets so the
// executor can resolve completions escaping the statement run.
func (tc *transformer) finalize(term Terminator) {
	s := tc.states[tc.currentID]
	s.Stmts = tc.cur
	tc.cur = nil
	s.Term = term
	s.BreakTargets = snapshotTargets(tc.breakTargets)
	s.ContinueTargets = snapshotTargets(tc.continueTargets)
}

// joinTo seals the current state with a goto to target. When a nested
// lowering already ended on the target itself (its continuation was the
// target), sealing again would overwrite the target's own terminator,
// so the join is a no-op.
func (tc *transformer) joinTo(target int) {
	if tc.currentID == target && len(tc.cur) == 0 {
		return
	}
	tc.finalize(&GotoTerm{Target: target})
}

func snapshotTargets(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (tc *transformer) emit(stmt ast.Stmt) {
	tc.cur = append(tc.cur, stmt)
}

// ensure materializes an after-state when the caller did not supply one.
func (tc *transformer) ensure(after int) int {
	if after == None {
		return tc.newState()
	}
	return after
}

func (tc *transformer) setTarget(m map[string]int, label string, state int) (string, int, bool) {
	prev, had := m[label]
	m[label] = state
	return label, prev, had
}

func (tc *transformer) restoreTarget(m map[string]int, label string, prev int, had bool) {
	if had {
		m[label] = prev
	} else {
		delete(m, label)
	}
}

func (tc *transformer) stmts(body []ast.Stmt, after int) {
	for i, stmt := range body {
		next := None
		if i == len(body)-1 {
			next = after
		}
		if ContainsYield(stmt) {
			tc.stmt(stmt, next)
		} else {
			tc.emit(stmt)
		}
	}
}

func (tc *transformer) stmt(stmt ast.Stmt, after int) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		tc.expr(s.X, nil)
	case *ast.Block:
		tc.stmts(s.Body, after)
	case *ast.VarDecl:
		tc.varDecl(s)
	case *ast.If:
		tc.ifStmt(s, after)
	case *ast.While:
		tc.whileStmt(s, after)
	case *ast.DoWhile:
		tc.doWhileStmt(s, after)
	case *ast.For:
		tc.forStmt(s, after)
	case *ast.ForIn:
		tc.forInStmt(s, after)
	case *ast.ForOf:
		tc.forOfStmt(s, after)
	case *ast.Return:
		if s.Value != nil && ExprContainsYield(s.Value) {
			tmp := tc.newTemp("return")
			tc.expr(s.Value, &SentBinding{Name: tmp})
			tc.finalize(&ReturnTerm{Value: &ast.Ident{Name: tmp}})
		} else {
			tc.finalize(&ReturnTerm{Value: s.Value})
		}
	case *ast.Throw:
		if ExprContainsYield(s.Value) {
			tmp := tc.newTemp("throw")
			tc.expr(s.Value, &SentBinding{Name: tmp})
			tc.finalize(&ThrowTerm{Value: &ast.Ident{Name: tmp}})
		} else {
			tc.finalize(&ThrowTerm{Value: s.Value})
		}
	case *ast.Try:
		tc.tryStmt(s, after)
	case *ast.Switch:
		tc.switchStmt(s, after)
	case *ast.Labeled:
		tc.labeledStmt(s, after)
	default:
		tc.emit(stmt)
	}
}

func (tc *transformer) varDecl(decl *ast.VarDecl) {
	for _, d := range decl.Decls {
		if d.Init != nil && ExprContainsYield(d.Init) {
			var bind *SentBinding
			if id, ok := d.Target.(*ast.Ident); ok {
				bind = &SentBinding{Name: id.Name}
			} else {
				bind = &SentBinding{Target: d.Target}
			}
			tc.expr(d.Init, bind)
		} else {
			tc.emit(&ast.VarDecl{Kind: decl.Kind, Decls: []*ast.Declarator{d}})
		}
	}
}

func (tc *transformer) ifStmt(s *ast.If, after int) {
	afterIf := tc.ensure(after)

	cond := s.Test
	if ExprContainsYield(s.Test) {
		tmp := tc.newTemp("if_test")
		tc.expr(s.Test, &SentBinding{Name: tmp})
		cond = &ast.Ident{Name: tmp}
	}

	trueState := tc.newState()
	falseState := afterIf
	if s.Alt != nil {
		falseState = tc.newState()
	}

	tc.finalize(&CondGotoTerm{Cond: cond, True: trueState, False: falseState})

	tc.currentID = trueState
	if ContainsYield(s.Cons) {
		tc.stmt(s.Cons, afterIf)
	} else {
		tc.emit(s.Cons)
	}
	tc.joinTo(afterIf)

	if s.Alt != nil {
		tc.currentID = falseState
		if ContainsYield(s.Alt) {
			tc.stmt(s.Alt, afterIf)
		} else {
			tc.emit(s.Alt)
		}
		tc.joinTo(afterIf)
	}

	tc.currentID = afterIf
}

func (tc *transformer) whileStmt(s *ast.While, after int) {
	afterLoop := tc.ensure(after)
	testState := tc.newState()
	bodyState := tc.newState()

	tc.joinTo(testState)

	restore := tc.enterLoopTargets(afterLoop, testState)
	defer restore()

	tc.currentID = testState
	cond := s.Test
	if ExprContainsYield(s.Test) {
		tmp := tc.newTemp("while_test")
		tc.expr(s.Test, &SentBinding{Name: tmp})
		cond = &ast.Ident{Name: tmp}
	}
	tc.finalize(&CondGotoTerm{Cond: cond, True: bodyState, False: afterLoop})

	tc.currentID = bodyState
	if ContainsYield(s.Body) {
		tc.stmt(s.Body, testState)
	} else {
		tc.emit(s.Body)
	}
	tc.joinTo(testState)

	tc.currentID = afterLoop
}

func (tc *transformer) doWhileStmt(s *ast.DoWhile, after int) {
	afterLoop := tc.ensure(after)
	bodyState := tc.newState()
	testState := tc.newState()

	tc.joinTo(bodyState)

	restore := tc.enterLoopTargets(afterLoop, testState)
	defer restore()

	tc.currentID = bodyState
	if ContainsYield(s.Body) {
		tc.stmt(s.Body, testState)
	} else {
		tc.emit(s.Body)
	}
	tc.joinTo(testState)

	tc.currentID = testState
	cond := s.Test
	if ExprContainsYield(s.Test) {
		tmp := tc.newTemp("dowhile_test")
		tc.expr(s.Test, &SentBinding{Name: tmp})
		cond = &ast.Ident{Name: tmp}
	}
	tc.finalize(&CondGotoTerm{Cond: cond, True: bodyState, False: afterLoop})

	tc.currentID = afterLoop
}

func (tc *transformer) forStmt(s *ast.For, after int) {
	afterLoop := tc.ensure(after)

	if s.Init != nil {
		if ContainsYield(s.Init) {
			tc.stmt(s.Init, None)
		} else {
			tc.emit(s.Init)
		}
	}

	testState := tc.newState()
	bodyState := tc.newState()
	updateState := tc.newState()

	tc.joinTo(testState)

	restore := tc.enterLoopTargets(afterLoop, updateState)
	defer restore()

	tc.currentID = testState
	if s.Test != nil {
		cond := s.Test
		if ExprContainsYield(s.Test) {
			tmp := tc.newTemp("for_test")
			tc.expr(s.Test, &SentBinding{Name: tmp})
			cond = &ast.Ident{Name: tmp}
		}
		tc.finalize(&CondGotoTerm{Cond: cond, True: bodyState, False: afterLoop})
	} else {
		tc.joinTo(bodyState)
	}

	tc.currentID = bodyState
	if ContainsYield(s.Body) {
		tc.stmt(s.Body, updateState)
	} else {
		tc.emit(s.Body)
	}
	tc.joinTo(updateState)

	tc.currentID = updateState
	if s.Update != nil {
		if ExprContainsYield(s.Update) {
			tc.expr(s.Update, nil)
		} else {
			tc.emit(&ast.ExprStmt{X: s.Update})
		}
	}
	tc.joinTo(testState)

	tc.currentID = afterLoop
}

// forOfStmt lowers a for-of by expanding the iterator protocol inline,
// so the machine can suspend between iterator steps. IterIntrinsic
// resolves the iterable to an iterator object at runtime.
func (tc *transformer) forOfStmt(s *ast.ForOf, after int) {
	right := s.Right
	if ExprContainsYield(right) {
		tmp := tc.newTemp("forof_src")
		tc.expr(right, &SentBinding{Name: tmp})
		right = &ast.Ident{Name: tmp}
	}
	iterTmp := tc.newTemp("forof_iter")
	resTmp := tc.newTemp("forof_res")
	tc.emit(tempAssign(iterTmp, &ast.Call{
		Callee: &ast.Ident{Name: IterIntrinsic},
		Args:   []ast.Expr{right},
	}))

	afterLoop := tc.ensure(after)
	testState := tc.newState()
	bodyState := tc.newState()

	tc.joinTo(testState)

	restore := tc.enterLoopTargets(afterLoop, testState)
	defer restore()

	tc.currentID = testState
	tc.emit(tempAssign(resTmp, &ast.Call{
		Callee: &ast.Member{Object: &ast.Ident{Name: iterTmp}, Property: "next"},
	}))
	tc.finalize(&CondGotoTerm{
		Cond:  &ast.Member{Object: &ast.Ident{Name: resTmp}, Property: "done"},
		True:  afterLoop,
		False: bodyState,
	})

	tc.currentID = bodyState
	tc.emitLeftBinding(s.Decl, s.Left, &ast.Member{Object: &ast.Ident{Name: resTmp}, Property: "value"})
	if ContainsYield(s.Body) {
		tc.stmt(s.Body, testState)
	} else {
		tc.emit(s.Body)
	}
	tc.joinTo(testState)

	tc.currentID = afterLoop
}

// forInStmt lowers a for-in over a key snapshot taken by KeysIntrinsic,
// skipping keys deleted while the loop is suspended.
func (tc *transformer) forInStmt(s *ast.ForIn, after int) {
	right := s.Right
	if ExprContainsYield(right) {
		tmp := tc.newTemp("forin_src")
		tc.expr(right, &SentBinding{Name: tmp})
		right = &ast.Ident{Name: tmp}
	}
	objTmp := tc.newTemp("forin_obj")
	keysTmp := tc.newTemp("forin_keys")
	idxTmp := tc.newTemp("forin_idx")
	tc.emit(tempAssign(objTmp, right))
	tc.emit(tempAssign(keysTmp, &ast.Call{
		Callee: &ast.Ident{Name: KeysIntrinsic},
		Args:   []ast.Expr{&ast.Ident{Name: objTmp}},
	}))
	tc.emit(tempAssign(idxTmp, &ast.NumberLit{Value: 0}))

	afterLoop := tc.ensure(after)
	testState := tc.newState()
	bodyState := tc.newState()
	updateState := tc.newState()

	tc.joinTo(testState)

	restore := tc.enterLoopTargets(afterLoop, updateState)
	defer restore()

	tc.currentID = testState
	tc.finalize(&CondGotoTerm{
		Cond: &ast.Binary{
			Op: ast.OpLT,
			L:  &ast.Ident{Name: idxTmp},
			R:  &ast.Member{Object: &ast.Ident{Name: keysTmp}, Property: "length"},
		},
		True:  bodyState,
		False: afterLoop,
	})

	tc.currentID = bodyState
	key := &ast.Index{Object: &ast.Ident{Name: keysTmp}, Key: &ast.Ident{Name: idxTmp}}
	tc.emit(&ast.If{
		Test: &ast.Unary{
			Op:      ast.OpNot,
			Operand: &ast.Binary{Op: ast.OpIn, L: key, R: &ast.Ident{Name: objTmp}},
		},
		Cons: &ast.Continue{},
	})
	tc.emitLeftBinding(s.Decl, s.Left, key)
	if ContainsYield(s.Body) {
		tc.stmt(s.Body, updateState)
	} else {
		tc.emit(s.Body)
	}
	tc.joinTo(updateState)

	tc.currentID = updateState
	tc.emit(&ast.ExprStmt{X: &ast.Update{
		Op:      ast.OpIncrement,
		Prefix:  true,
		Operand: &ast.Ident{Name: idxTmp},
	}})
	tc.joinTo(testState)

	tc.currentID = afterLoop
}

// emitLeftBinding emits one iteration's binding of a loop's left side.
func (tc *transformer) emitLeftBinding(decl ast.VarKind, left ast.Pattern, value ast.Expr) {
	if decl != "" {
		tc.emit(&ast.VarDecl{Kind: decl, Decls: []*ast.Declarator{{Target: left, Init: value}}})
		return
	}
	tc.emit(&ast.ExprStmt{X: &ast.Assign{Op: ast.OpAssign, Target: left, Value: value}})
}

func tempAssign(name string, value ast.Expr) ast.Stmt {
	return &ast.ExprStmt{X: &ast.Assign{
		Op:     ast.OpAssign,
		Target: &ast.Ident{Name: name},
		Value:  value,
	}}
}

// enterLoopTargets registers the unlabeled break/continue targets for a
// lowered loop, returning a closure that restores the enclosing loop's
// targets.
func (tc *transformer) enterLoopTargets(breakTo, continueTo int) func() {
	bl, bp, bh := tc.setTarget(tc.breakTargets, "", breakTo)
	cl, cp, ch := tc.setTarget(tc.continueTargets, "", continueTo)
	return func() {
		tc.restoreTarget(tc.breakTargets, bl, bp, bh)
		tc.restoreTarget(tc.continueTargets, cl, cp, ch)
	}
}

func (tc *transformer) tryStmt(s *ast.Try, after int) {
	afterTry := tc.ensure(after)
	tryBody := tc.newState()

	var catchInfo *CatchInfo
	if s.Catch != nil {
		catchInfo = &CatchInfo{State: tc.newState(), Param: s.CatchParam}
	}
	finallyEntry := None
	if s.Finally != nil {
		finallyEntry = tc.newState()
	}

	tc.finalize(&TryEnterTerm{
		Try:     tryBody,
		Catch:   catchInfo,
		Finally: finallyEntry,
		After:   afterTry,
	})

	// Every normal exit funnels through the TryExit state so the
	// executor pops the region: via the finally when there is one,
	// directly otherwise.
	exitState := tc.newState()
	exitTo := finallyEntry
	if exitTo == None {
		exitTo = exitState
	}

	tc.currentID = tryBody
	tc.stmts(s.Block.Body, exitTo)
	tc.joinTo(exitTo)

	if catchInfo != nil {
		catchBody := tc.newState()
		tc.currentID = catchInfo.State
		tc.finalize(&EnterCatchTerm{Body: catchBody, Param: catchInfo.Param})

		tc.currentID = catchBody
		tc.stmts(s.Catch.Body, exitTo)
		tc.joinTo(exitTo)
	}

	if finallyEntry != None {
		finallyBody := tc.newState()
		tc.currentID = finallyEntry
		tc.finalize(&EnterFinallyTerm{Body: finallyBody})

		tc.currentID = finallyBody
		tc.stmts(s.Finally.Body, exitState)
		tc.joinTo(exitState)
	}

	tc.currentID = exitState
	tc.finalize(&TryExitTerm{After: afterTry})

	tc.currentID = afterTry
}

func (tc *transformer) switchStmt(s *ast.Switch, after int) {
	afterSwitch := tc.ensure(after)

	bl, bp, bh := tc.setTarget(tc.breakTargets, "", afterSwitch)
	defer tc.restoreTarget(tc.breakTargets, bl, bp, bh)

	disc := s.Disc
	if ExprContainsYield(s.Disc) {
		tmp := tc.newTemp("switch_disc")
		tc.expr(s.Disc, &SentBinding{Name: tmp})
		disc = &ast.Ident{Name: tmp}
	}

	caseStates := make([]int, len(s.Cases))
	var targets []SwitchTarget
	defaultState := None
	for i, c := range s.Cases {
		caseStates[i] = tc.newState()
		if c.Test != nil {
			targets = append(targets, SwitchTarget{Test: c.Test, State: caseStates[i]})
		} else {
			defaultState = caseStates[i]
		}
	}

	tc.finalize(&SwitchTerm{
		Disc:    disc,
		Cases:   targets,
		Default: defaultState,
		After:   afterSwitch,
	})

	for i, c := range s.Cases {
		tc.currentID = caseStates[i]
		next := afterSwitch
		if i+1 < len(caseStates) {
			next = caseStates[i+1]
		}
		if anyContainsYield(c.Body) {
			tc.stmts(c.Body, next)
		} else {
			for _, stmt := range c.Body {
				tc.emit(stmt)
			}
		}
		// Fall through to the next case body unless the case broke out.
		tc.joinTo(next)
	}

	tc.currentID = afterSwitch
}

func (tc *transformer) labeledStmt(s *ast.Labeled, after int) {
	afterLabeled := tc.ensure(after)

	bl, bp, bh := tc.setTarget(tc.breakTargets, s.Label, afterLabeled)

	if ContainsYield(s.Stmt) {
		if isLoop(s.Stmt) {
			// A labeled lowered loop also answers labeled continue; the
			// loop registers its unlabeled continue target in the states
			// it creates, so mirror it under the label afterwards.
			before := len(tc.states)
			tc.stmt(s.Stmt, afterLabeled)
			for _, st := range tc.states[before:] {
				if target, ok := st.ContinueTargets[""]; ok {
					st.ContinueTargets[s.Label] = target
				}
			}
		} else {
			tc.stmt(s.Stmt, afterLabeled)
		}
	} else {
		tc.emit(s)
	}

	tc.restoreTarget(tc.breakTargets, bl, bp, bh)
	tc.joinTo(afterLabeled)
	tc.currentID = afterLabeled
}

func isLoop(stmt ast.Stmt) bool {
	switch stmt.(type) {
	case *ast.While, *ast.DoWhile, *ast.For, *ast.ForIn, *ast.ForOf:
		return true
	}
	return false
}

func (tc *transformer) expr(expr ast.Expr, bind *SentBinding) {
	switch e := expr.(type) {
	case *ast.Yield:
		var value ast.Expr
		if e.Value != nil {
			if ExprContainsYield(e.Value) {
				tmp := tc.newTemp("yield_val")
				tc.expr(e.Value, &SentBinding{Name: tmp})
				value = &ast.Ident{Name: tmp}
			} else {
				value = e.Value
			}
		}
		resume := tc.newState()
		tc.finalize(&YieldTerm{
			Value:    value,
			Delegate: e.Delegate,
			Resume:   resume,
			Bind:     bind,
		})
		tc.currentID = resume

	case *ast.Conditional:
		cond := e.Test
		if ExprContainsYield(e.Test) {
			tmp := tc.newTemp("cond_test")
			tc.expr(e.Test, &SentBinding{Name: tmp})
			cond = &ast.Ident{Name: tmp}
		}
		afterCond := tc.newState()
		trueState := tc.newState()
		falseState := tc.newState()

		tc.finalize(&CondGotoTerm{Cond: cond, True: trueState, False: falseState})

		tc.currentID = trueState
		if ExprContainsYield(e.Cons) {
			tc.expr(e.Cons, bind)
		} else {
			tc.emitWithBinding(e.Cons, bind)
		}
		tc.finalize(&GotoTerm{Target: afterCond})

		tc.currentID = falseState
		if ExprContainsYield(e.Alt) {
			tc.expr(e.Alt, bind)
		} else {
			tc.emitWithBinding(e.Alt, bind)
		}
		tc.finalize(&GotoTerm{Target: afterCond})

		tc.currentID = afterCond

	case *ast.Logical:
		tc.logicalExpr(e, bind)

	case *ast.Binary:
		left := e.L
		if ExprContainsYield(e.L) {
			tmp := tc.newTemp("binary_left")
			tc.expr(e.L, &SentBinding{Name: tmp})
			left = &ast.Ident{Name: tmp}
		} else if ExprContainsYield(e.R) {
			// The right operand suspends, so the left lands in a temp
			// first to keep left-to-right evaluation order across the
			// suspension.
			tmp := tc.newTemp("binary_left")
			tc.emitWithBinding(e.L, &SentBinding{Name: tmp})
			left = &ast.Ident{Name: tmp}
		}
		right := e.R
		if ExprContainsYield(e.R) {
			tmp := tc.newTemp("binary_right")
			tc.expr(e.R, &SentBinding{Name: tmp})
			right = &ast.Ident{Name: tmp}
		}
		tc.emitWithBinding(&ast.Binary{Op: e.Op, L: left, R: right}, bind)

	case *ast.Call:
		callee := e.Callee
		if ExprContainsYield(e.Callee) {
			tmp := tc.newTemp("call_callee")
			tc.expr(e.Callee, &SentBinding{Name: tmp})
			callee = &ast.Ident{Name: tmp}
		}
		args := tc.loweredArgs(e.Args, "call_arg")
		tc.emitWithBinding(&ast.Call{Callee: callee, Args: args}, bind)

	case *ast.New:
		callee := e.Callee
		if ExprContainsYield(e.Callee) {
			tmp := tc.newTemp("new_callee")
			tc.expr(e.Callee, &SentBinding{Name: tmp})
			callee = &ast.Ident{Name: tmp}
		}
		args := tc.loweredArgs(e.Args, "new_arg")
		tc.emitWithBinding(&ast.New{Callee: callee, Args: args}, bind)

	case *ast.Assign:
		if ExprContainsYield(e.Value) {
			tmp := tc.newTemp("assign")
			tc.expr(e.Value, &SentBinding{Name: tmp})
			tc.emitWithBinding(&ast.Assign{
				Op:     e.Op,
				Target: e.Target,
				Value:  &ast.Ident{Name: tmp},
			}, bind)
		} else {
			tc.emitWithBinding(e, bind)
		}

	case *ast.Sequence:
		for i, x := range e.Exprs {
			last := i == len(e.Exprs)-1
			switch {
			case ExprContainsYield(x) && last:
				tc.expr(x, bind)
			case ExprContainsYield(x):
				tc.expr(x, nil)
			case last:
				tc.emitWithBinding(x, bind)
			default:
				tc.emit(&ast.ExprStmt{X: x})
			}
		}

	case *ast.ArrayLit:
		lastYield := -1
		for i, el := range e.Elems {
			if el != nil && ExprContainsYield(el) {
				lastYield = i
			}
		}
		elems := make([]ast.Expr, len(e.Elems))
		for i, el := range e.Elems {
			if el == nil || i > lastYield {
				elems[i] = el
				continue
			}
			tmp := tc.newTemp(fmt.Sprintf("arr_elem_%d", i))
			if ExprContainsYield(el) {
				tc.expr(el, &SentBinding{Name: tmp})
			} else {
				tc.emitWithBinding(el, &SentBinding{Name: tmp})
			}
			elems[i] = &ast.Ident{Name: tmp}
		}
		tc.emitWithBinding(&ast.ArrayLit{Elems: elems}, bind)

	case *ast.ObjectLit:
		lastYield := -1
		for i, p := range e.Props {
			if p.Computed && p.KeyExpr != nil && ExprContainsYield(p.KeyExpr) {
				lastYield = i
			}
			if ExprContainsYield(p.Value) {
				lastYield = i
			}
		}
		props := make([]*ast.ObjectProp, len(e.Props))
		for i, p := range e.Props {
			np := *p
			early := i <= lastYield
			if p.Computed && p.KeyExpr != nil && (early || ExprContainsYield(p.KeyExpr)) {
				tmp := tc.newTemp(fmt.Sprintf("obj_key_%d", i))
				if ExprContainsYield(p.KeyExpr) {
					tc.expr(p.KeyExpr, &SentBinding{Name: tmp})
				} else {
					tc.emitWithBinding(p.KeyExpr, &SentBinding{Name: tmp})
				}
				np.KeyExpr = &ast.Ident{Name: tmp}
			}
			// Accessor values stay as function literals; only plain
			// values are captured for ordering.
			if np.Kind == ast.PropInit && (early || ExprContainsYield(p.Value)) {
				tmp := tc.newTemp(fmt.Sprintf("obj_val_%d", i))
				if ExprContainsYield(p.Value) {
					tc.expr(p.Value, &SentBinding{Name: tmp})
				} else {
					tc.emitWithBinding(p.Value, &SentBinding{Name: tmp})
				}
				np.Value = &ast.Ident{Name: tmp}
			}
			props[i] = &np
		}
		tc.emitWithBinding(&ast.ObjectLit{Props: props}, bind)

	default:
		tc.emitWithBinding(expr, bind)
	}
}

func (tc *transformer) logicalExpr(e *ast.Logical, bind *SentBinding) {
	if !ExprContainsYield(e.R) {
		// Only the left operand yields; once it lands in a temp the
		// remaining short-circuit evaluates in one state.
		tmp := tc.newTemp("logical")
		tc.expr(e.L, &SentBinding{Name: tmp})
		tc.emitWithBinding(&ast.Logical{
			Op: e.Op,
			L:  &ast.Ident{Name: tmp},
			R:  e.R,
		}, bind)
		return
	}

	// The right operand yields, so the short circuit becomes a branch.
	// The left value is evaluated exactly once into a temp and stands as
	// the result unless the right path runs and overwrites it.
	leftTmp := tc.newTemp("logical")
	if ExprContainsYield(e.L) {
		tc.expr(e.L, &SentBinding{Name: leftTmp})
	} else {
		tc.emitWithBinding(e.L, &SentBinding{Name: leftTmp})
	}
	leftVal := &ast.Ident{Name: leftTmp}

	inner, finish := tc.viaTemp(bind, "logical_res")
	if inner != nil {
		tc.emitWithBinding(leftVal, inner)
	}

	afterLogical := tc.newState()
	evalRight := tc.newState()

	tc.finalize(&CondGotoTerm{
		Cond:  shortCircuitCond(e.Op, leftVal),
		True:  evalRight,
		False: afterLogical,
	})

	tc.currentID = evalRight
	tc.expr(e.R, inner)
	tc.finalize(&GotoTerm{Target: afterLogical})

	tc.currentID = afterLogical
	finish()
}

// viaTemp routes a pattern binding through a named temp so that both
// arms of a branch can assign the result and the pattern is destructured
// exactly once at the join point.
func (tc *transformer) viaTemp(bind *SentBinding, prefix string) (*SentBinding, func()) {
	if bind == nil || bind.Name != "" {
		return bind, func() {}
	}
	tmp := tc.newTemp(prefix)
	return &SentBinding{Name: tmp}, func() {
		tc.emit(&ast.VarDecl{
			Kind: ast.VarKindLet,
			Decls: []*ast.Declarator{{
				Target: bind.Target,
				Init:   &ast.Ident{Name: tmp},
			}},
		})
	}
}

// shortCircuitCond builds the condition under which the right operand
// of a logical operator must be evaluated.
func shortCircuitCond(op ast.LogicalOp, left ast.Expr) ast.Expr {
	switch op {
	case ast.OpAnd:
		return left
	case ast.OpOr:
		return &ast.Unary{Op: ast.OpNot, Operand: left}
	default: // ??
		return &ast.Binary{Op: ast.OpEq, L: left, R: &ast.NullLit{}}
	}
}

func (tc *transformer) loweredArgs(args []ast.Expr, prefix string) []ast.Expr {
	lastYield := -1
	for i, arg := range args {
		if ExprContainsYield(arg) {
			lastYield = i
		}
	}
	out := make([]ast.Expr, len(args))
	for i, arg := range args {
		if i > lastYield {
			out[i] = arg
			continue
		}
		// Everything up to the last suspending argument is captured in
		// source order, so earlier arguments evaluate exactly once and
		// before the suspension.
		inner := arg
		spread := false
		if sp, ok := arg.(*ast.Spread); ok {
			inner = sp.X
			spread = true
		}
		tmp := tc.newTemp(fmt.Sprintf("%s_%d", prefix, i))
		if ExprContainsYield(inner) {
			tc.expr(inner, &SentBinding{Name: tmp})
		} else {
			tc.emitWithBinding(inner, &SentBinding{Name: tmp})
		}
		if spread {
			out[i] = &ast.Spread{X: &ast.Ident{Name: tmp}}
		} else {
			out[i] = &ast.Ident{Name: tmp}
		}
	}
	return out
}

// emitWithBinding emits an expression, routing its value into the sent
// binding when one is present.
func (tc *transformer) emitWithBinding(expr ast.Expr, bind *SentBinding) {
	for _, stmt := range bindingStmts(expr, bind) {
		tc.emit(stmt)
	}
}

func bindingStmts(expr ast.Expr, bind *SentBinding) []ast.Stmt {
	switch {
	case bind == nil:
		return []ast.Stmt{&ast.ExprStmt{X: expr}}
	case bind.Name != "":
		return []ast.Stmt{&ast.ExprStmt{X: &ast.Assign{
			Op:     ast.OpAssign,
			Target: &ast.Ident{Name: bind.Name},
			Value:  expr,
		}}}
	default:
		return []ast.Stmt{&ast.VarDecl{
			Kind: ast.VarKindLet,
			Decls: []*ast.Declarator{{
				Target: bind.Target,
				Init:   expr,
			}},
		}}
	}
}
