package interp

import (
	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/object"
)

// execStmts runs a statement list, tracking the completion value the way
// eval does: the value of the last value-producing statement.
func (i *Interpreter) execStmts(body []ast.Stmt, env *Environment) Completion {
	var last object.Value
	for _, s := range body {
		if halt := i.checkInterrupt(s); halt != nil {
			return *halt
		}
		c := i.execStmt(s, env)
		if c.Value != nil {
			last = c.Value
		}
		if c.IsAbrupt() {
			if c.Value == nil {
				c.Value = last
			}
			return c
		}
	}
	return Completion{Kind: NormalCompletion, Value: last}
}

func (i *Interpreter) execStmt(s ast.Stmt, env *Environment) Completion {
	switch s := s.(type) {
	case *ast.Empty:
		return Empty()

	case *ast.ExprStmt:
		return i.evalExpr(s.X, env)

	case *ast.VarDecl:
		return i.execVarDecl(s, env)

	case *ast.FuncDecl:
		// Bound during declaration instantiation.
		return Empty()

	case *ast.Block:
		blockEnv := NewEnvironment(env)
		if c := i.enterBlockScope(s.Body, blockEnv, i.currentRealm()); c.IsAbrupt() {
			return c
		}
		return i.execStmts(s.Body, blockEnv)

	case *ast.If:
		tc := i.evalExpr(s.Test, env)
		if tc.IsAbrupt() {
			return tc
		}
		if object.Truthy(tc.Value) {
			return i.execStmt(s.Cons, env)
		}
		if s.Alt != nil {
			return i.execStmt(s.Alt, env)
		}
		return Empty()

	case *ast.While:
		return i.execWhile(s, env, nil)
	case *ast.DoWhile:
		return i.execDoWhile(s, env, nil)
	case *ast.For:
		return i.execFor(s, env, nil)
	case *ast.ForIn:
		return i.execForIn(s, env, nil)
	case *ast.ForOf:
		return i.execForOf(s, env, nil)
	case *ast.Switch:
		return i.execSwitch(s, env, nil)
	case *ast.Labeled:
		return i.execLabeled(s, env)
	case *ast.Try:
		return i.execTry(s, env)

	case *ast.Return:
		if s.Value == nil {
			return ReturnOf(object.Undefined)
		}
		vc := i.evalExpr(s.Value, env)
		if vc.IsAbrupt() {
			return vc
		}
		return ReturnOf(vc.Value)

	case *ast.Throw:
		vc := i.evalExpr(s.Value, env)
		if vc.IsAbrupt() {
			return vc
		}
		return Throw(vc.Value)

	case *ast.Break:
		return BreakOf(s.Label)
	case *ast.Continue:
		return ContinueOf(s.Label)
	}
	return i.syntaxError("unsupported statement")
}

func (i *Interpreter) execVarDecl(s *ast.VarDecl, env *Environment) Completion {
	for _, d := range s.Decls {
		if s.Kind == ast.VarKindVar {
			// The bindings already exist from hoisting; a declarator
			// without an initializer leaves them untouched.
			if d.Init == nil {
				continue
			}
			vc := i.evalExpr(d.Init, env)
			if vc.IsAbrupt() {
				return vc
			}
			if c := i.assignVarPattern(d.Target, vc.Value, env, i.strict()); c.IsAbrupt() {
				return c
			}
			continue
		}
		var v object.Value = object.Undefined
		if d.Init != nil {
			vc := i.evalExpr(d.Init, env)
			if vc.IsAbrupt() {
				return vc
			}
			v = vc.Value
		}
		// Ends the dead zone of the binding declared at scope entry.
		if c := i.bindPatternInitialize(env, d.Target, v); c.IsAbrupt() {
			return c
		}
	}
	return Empty()
}

// execLabeled peels nested labels off a statement and dispatches loops
// and switches with the accumulated label set, so that labeled break and
// continue resolve against them.
func (i *Interpreter) execLabeled(s *ast.Labeled, env *Environment) Completion {
	var labels []string
	var inner ast.Stmt = s
	for {
		l, ok := inner.(*ast.Labeled)
		if !ok {
			break
		}
		labels = append(labels, l.Label)
		inner = l.Stmt
	}

	var c Completion
	switch body := inner.(type) {
	case *ast.While:
		c = i.execWhile(body, env, labels)
	case *ast.DoWhile:
		c = i.execDoWhile(body, env, labels)
	case *ast.For:
		c = i.execFor(body, env, labels)
	case *ast.ForIn:
		c = i.execForIn(body, env, labels)
	case *ast.ForOf:
		c = i.execForOf(body, env, labels)
	case *ast.Switch:
		c = i.execSwitch(body, env, labels)
	default:
		c = i.execStmt(inner, env)
	}

	// A break naming one of our labels completes the labeled statement.
	if c.Kind == BreakCompletion && hasLabel(labels, c.Label) {
		return Completion{Kind: NormalCompletion, Value: c.Value}
	}
	return c
}

func hasLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// loopResume decides what a loop does with its body's completion:
// carry on, finish normally, or propagate.
type loopVerdict uint8

const (
	loopContinue loopVerdict = iota
	loopBreak
	loopPropagate
)

func loopBodyVerdict(c Completion, labels []string) loopVerdict {
	switch c.Kind {
	case NormalCompletion:
		return loopContinue
	case ContinueCompletion:
		if c.Label == "" || hasLabel(labels, c.Label) {
			return loopContinue
		}
		return loopPropagate
	case BreakCompletion:
		if c.Label == "" || hasLabel(labels, c.Label) {
			return loopBreak
		}
		return loopPropagate
	default:
		return loopPropagate
	}
}

func (i *Interpreter) execWhile(s *ast.While, env *Environment, labels []string) Completion {
	var last object.Value
	for {
		if halt := i.checkInterrupt(s); halt != nil {
			return *halt
		}
		tc := i.evalExpr(s.Test, env)
		if tc.IsAbrupt() {
			return tc
		}
		if !object.Truthy(tc.Value) {
			break
		}
		c := i.execStmt(s.Body, env)
		if c.Value != nil {
			last = c.Value
		}
		switch loopBodyVerdict(c, labels) {
		case loopBreak:
			return Completion{Kind: NormalCompletion, Value: last}
		case loopPropagate:
			return c
		}
	}
	return Completion{Kind: NormalCompletion, Value: last}
}

func (i *Interpreter) execDoWhile(s *ast.DoWhile, env *Environment, labels []string) Completion {
	var last object.Value
	for {
		if halt := i.checkInterrupt(s); halt != nil {
			return *halt
		}
		c := i.execStmt(s.Body, env)
		if c.Value != nil {
			last = c.Value
		}
		switch loopBodyVerdict(c, labels) {
		case loopBreak:
			return Completion{Kind: NormalCompletion, Value: last}
		case loopPropagate:
			return c
		}
		tc := i.evalExpr(s.Test, env)
		if tc.IsAbrupt() {
			return tc
		}
		if !object.Truthy(tc.Value) {
			break
		}
	}
	return Completion{Kind: NormalCompletion, Value: last}
}

func (i *Interpreter) execFor(s *ast.For, env *Environment, labels []string) Completion {
	loopEnv := env
	var perIter []string
	var perIterKind BindingKind

	if s.Init != nil {
		if vd, ok := s.Init.(*ast.VarDecl); ok && vd.Kind != ast.VarKindVar {
			// Lexical loop heads get a fresh copy of their bindings each
			// iteration, so closures created in the body see per-iteration
			// values.
			loopEnv = NewEnvironment(env)
			if c := i.declareLexical([]ast.Stmt{vd}, loopEnv); c.IsAbrupt() {
				return c
			}
			perIterKind = BindLet
			if vd.Kind == ast.VarKindConst {
				perIterKind = BindConst
			}
			for _, d := range vd.Decls {
				perIter = append(perIter, patternNames(d.Target)...)
			}
			if c := i.execVarDecl(vd, loopEnv); c.IsAbrupt() {
				return c
			}
		} else if c := i.execStmt(s.Init, loopEnv); c.IsAbrupt() {
			return c
		}
	}

	var last object.Value
	for {
		if halt := i.checkInterrupt(s); halt != nil {
			return *halt
		}
		if s.Test != nil {
			tc := i.evalExpr(s.Test, loopEnv)
			if tc.IsAbrupt() {
				return tc
			}
			if !object.Truthy(tc.Value) {
				break
			}
		}
		c := i.execStmt(s.Body, loopEnv)
		if c.Value != nil {
			last = c.Value
		}
		switch loopBodyVerdict(c, labels) {
		case loopBreak:
			return Completion{Kind: NormalCompletion, Value: last}
		case loopPropagate:
			return c
		}
		if len(perIter) > 0 {
			loopEnv = copyLoopBindings(loopEnv, env, perIter, perIterKind)
		}
		if s.Update != nil {
			uc := i.evalExpr(s.Update, loopEnv)
			if uc.IsAbrupt() {
				return uc
			}
		}
	}
	return Completion{Kind: NormalCompletion, Value: last}
}

// copyLoopBindings snapshots the loop head bindings into a fresh
// environment for the next iteration.
func copyLoopBindings(from, outer *Environment, names []string, kind BindingKind) *Environment {
	next := NewEnvironment(outer)
	for _, name := range names {
		v, status := from.Get(name)
		next.Declare(name, kind)
		if status == BindOK {
			next.Initialize(name, v)
		}
	}
	return next
}

// bindIterationValue binds one iteration's value to the loop's left-hand
// side: a fresh lexical binding, a hoisted var write, or a plain
// assignment target. It returns the environment the body should run in.
func (i *Interpreter) bindIterationValue(decl ast.VarKind, left ast.Pattern, v object.Value, env *Environment) (*Environment, Completion) {
	switch decl {
	case ast.VarKindLet, ast.VarKindConst:
		iterEnv := NewEnvironment(env)
		kind := BindLet
		if decl == ast.VarKindConst {
			kind = BindConst
		}
		if c := i.bindPatternDeclare(iterEnv, left, v, kind); c.IsAbrupt() {
			return nil, c
		}
		return iterEnv, Empty()
	case ast.VarKindVar:
		if c := i.assignVarPattern(left, v, env, i.strict()); c.IsAbrupt() {
			return nil, c
		}
		return env, Empty()
	default:
		if c := i.assignPattern(left, v, env, i.strict()); c.IsAbrupt() {
			return nil, c
		}
		return env, Empty()
	}
}

func (i *Interpreter) execForIn(s *ast.ForIn, env *Environment, labels []string) Completion {
	rc := i.evalExpr(s.Right, env)
	if rc.IsAbrupt() {
		return rc
	}
	if isNullish(rc.Value) {
		return Empty()
	}
	o, c := i.toObject(rc.Value)
	if c.IsAbrupt() {
		return c
	}
	keys := i.enumerateKeys(o)

	var last object.Value
	for _, key := range keys {
		if halt := i.checkInterrupt(s); halt != nil {
			return *halt
		}
		// A key deleted mid-loop is skipped.
		if !o.HasProperty(key) {
			continue
		}
		iterEnv, bc := i.bindIterationValue(s.Decl, s.Left, object.NewString(key), env)
		if bc.IsAbrupt() {
			return bc
		}
		c := i.execStmt(s.Body, iterEnv)
		if c.Value != nil {
			last = c.Value
		}
		switch loopBodyVerdict(c, labels) {
		case loopBreak:
			return Completion{Kind: NormalCompletion, Value: last}
		case loopPropagate:
			return c
		}
	}
	return Completion{Kind: NormalCompletion, Value: last}
}

// enumerateKeys lists the enumerable string keys of an object and its
// prototype chain, with shadowed names reported once.
func (i *Interpreter) enumerateKeys(o *object.Object) []string {
	var keys []string
	seen := map[string]bool{}
	for cursor := o; cursor != nil; cursor = cursor.Prototype() {
		for _, key := range cursor.EnumerableKeys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

func (i *Interpreter) execForOf(s *ast.ForOf, env *Environment, labels []string) Completion {
	rc := i.evalExpr(s.Right, env)
	if rc.IsAbrupt() {
		return rc
	}
	it, c := i.getIteratorObject(rc.Value)
	if c.IsAbrupt() {
		return c
	}

	var last object.Value
	for {
		if halt := i.checkInterrupt(s); halt != nil {
			return *halt
		}
		v, done, step := i.iteratorStep(it, nil)
		if step.IsAbrupt() {
			return step
		}
		if done {
			return Completion{Kind: NormalCompletion, Value: last}
		}
		iterEnv, bc := i.bindIterationValue(s.Decl, s.Left, v, env)
		if bc.IsAbrupt() {
			i.iteratorClose(it)
			return bc
		}
		c := i.execStmt(s.Body, iterEnv)
		if c.Value != nil {
			last = c.Value
		}
		switch loopBodyVerdict(c, labels) {
		case loopBreak:
			i.iteratorClose(it)
			return Completion{Kind: NormalCompletion, Value: last}
		case loopPropagate:
			// Abrupt exits other than a matching break also close the
			// iterator, except observer or context halts which unwind raw.
			if i.haltErr == nil {
				i.iteratorClose(it)
			}
			return c
		}
	}
}

func (i *Interpreter) execSwitch(s *ast.Switch, env *Environment, labels []string) Completion {
	dc := i.evalExpr(s.Disc, env)
	if dc.IsAbrupt() {
		return dc
	}

	// Cases share one block scope for their lexical declarations.
	switchEnv := NewEnvironment(env)
	var caseBodies []ast.Stmt
	for _, cs := range s.Cases {
		caseBodies = append(caseBodies, cs.Body...)
	}
	if c := i.enterBlockScope(caseBodies, switchEnv, i.currentRealm()); c.IsAbrupt() {
		return c
	}

	matched := -1
	defaultIdx := -1
	for idx, cs := range s.Cases {
		if cs.Test == nil {
			defaultIdx = idx
			continue
		}
		tc := i.evalExpr(cs.Test, switchEnv)
		if tc.IsAbrupt() {
			return tc
		}
		if object.StrictEquals(dc.Value, tc.Value) {
			matched = idx
			break
		}
	}
	if matched < 0 {
		matched = defaultIdx
	}
	if matched < 0 {
		return Empty()
	}

	var last object.Value
	for idx := matched; idx < len(s.Cases); idx++ {
		c := i.execStmts(s.Cases[idx].Body, switchEnv)
		if c.Value != nil {
			last = c.Value
		}
		if c.Kind == BreakCompletion && (c.Label == "" || hasLabel(labels, c.Label)) {
			return Completion{Kind: NormalCompletion, Value: last}
		}
		if c.IsAbrupt() {
			return c
		}
	}
	return Completion{Kind: NormalCompletion, Value: last}
}

func (i *Interpreter) execTry(s *ast.Try, env *Environment) Completion {
	result := i.execStmt(s.Block, env)

	// Halts are not catchable: they unwind to the host.
	if i.haltErr != nil {
		return result
	}

	if result.Kind == ThrowCompletion && s.Catch != nil {
		catchEnv := NewEnvironment(env)
		if s.CatchParam != nil {
			if c := i.bindPatternDeclare(catchEnv, s.CatchParam, result.ValueOr(object.Undefined), BindLet); c.IsAbrupt() {
				result = c
			} else {
				result = i.execCatchBody(s.Catch, catchEnv)
			}
		} else {
			result = i.execCatchBody(s.Catch, catchEnv)
		}
	}

	if s.Finally != nil && i.haltErr == nil {
		fc := i.execStmt(s.Finally, env)
		// An abrupt finally overrides the try and catch outcome.
		if fc.IsAbrupt() {
			return fc
		}
	}
	return result
}

// execCatchBody runs a catch block inside the environment holding the
// catch parameter.
func (i *Interpreter) execCatchBody(body *ast.Block, catchEnv *Environment) Completion {
	if c := i.enterBlockScope(body.Body, catchEnv, i.currentRealm()); c.IsAbrupt() {
		return c
	}
	return i.execStmts(body.Body, catchEnv)
}
