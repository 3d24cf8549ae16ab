package interp

import (
	"github.com/cloudcmds/marmoset/generator"
	"github.com/cloudcmds/marmoset/object"
)

// GeneratorState tracks where a generator instance is in its lifecycle.
type GeneratorState uint8

const (
	GenSuspendedStart GeneratorState = iota
	GenSuspendedYield
	GenExecuting
	GenCompleted
)

func (s GeneratorState) String() string {
	switch s {
	case GenSuspendedStart:
		return "suspended-start"
	case GenSuspendedYield:
		return "suspended-yield"
	case GenExecuting:
		return "executing"
	case GenCompleted:
		return "completed"
	}
	return "unknown"
}

type pendingKind uint8

const (
	pendingGoto pendingKind = iota
	pendingReturn
	pendingThrow
)

// pendingAction is a completion parked while a finally body runs,
// re-dispatched at TryExit.
type pendingAction struct {
	kind       pendingKind
	target     int
	label      string
	isContinue bool
	value      object.Value
}

// tryRegion is one active try on the generator's region stack. state is
// the id of the state whose terminator entered the region; its
// break/continue snapshots decide whether a jump leaves the region.
type tryRegion struct {
	term           *generator.TryEnterTerm
	state          int
	enteredCatch   bool
	enteredFinally bool
	exception      object.Value
	pending        *pendingAction
}

// delegation is an active yield* forwarding to an inner iterator.
type delegation struct {
	iter   *object.Object
	resume int
	bind   *generator.SentBinding
}

type resumeMode uint8

const (
	resumeNext resumeMode = iota
	resumeThrow
	resumeReturn
)

// GeneratorInstance executes a lowered generator body. The machine is
// advanced state by state against a persistent locals environment;
// suspension stores nothing but the current state id, so resuming never
// re-runs code that already ran.
type GeneratorInstance struct {
	fn         *scriptFunction
	object     *object.Object
	machine    *generator.StateMachine
	locals     *Environment
	state      GeneratorState
	current    int
	resumeBind *generator.SentBinding
	tryStack   []*tryRegion
	delegate   *delegation
}

// Object returns the generator object this instance backs.
func (g *GeneratorInstance) Object() *object.Object { return g.object }

// State returns the instance's lifecycle state.
func (g *GeneratorInstance) State() GeneratorState { return g.state }

// instantiateGenerator builds a generator object for a call to a
// generator function. The body does not run; the machine starts on the
// first next().
func (i *Interpreter) instantiateGenerator(sf *scriptFunction, fnObj *object.Object, this object.Value, args []object.Value) Completion {
	if sf.machine == nil {
		sf.machine = generator.Transform(sf.fn)
	}
	m := sf.machine

	locals, c := i.prepareCallEnv(sf, fnObj, this, args, false)
	if c.IsAbrupt() {
		return c
	}
	for _, lv := range m.LocalVars {
		if !locals.HasLocal(lv.Name) {
			locals.Declare(lv.Name, BindVar)
		}
	}
	for _, name := range m.TempVars {
		locals.Declare(name, BindVar)
	}
	i.bindMachineIntrinsics(sf.realm, locals)

	proto := sf.realm.GeneratorProto
	if p := fnObj.GetOwn("prototype"); p != nil && p.IsData() {
		if po, ok := p.Value.(*object.Object); ok {
			proto = po
		}
	}
	genObj := i.store.NewNamed("Generator", proto)

	g := &GeneratorInstance{
		fn:      sf,
		object:  genObj,
		machine: m,
		locals:  locals,
		state:   GenSuspendedStart,
	}
	genObj.SetInternal("generator", g)
	i.generators = append(i.generators, g)

	i.log.Debug().Str("function", sf.name).Int("states", len(m.States)).Msg("generator instantiated")
	return NormalOf(genObj)
}

// bindMachineIntrinsics provides the runtime support lowered for-of and
// for-in loops call into.
func (i *Interpreter) bindMachineIntrinsics(r *Realm, locals *Environment) {
	iter := i.newNative(r, generator.IterIntrinsic, func(i *Interpreter, this object.Value, args []object.Value) Completion {
		it, c := i.getIteratorObject(argAt(args, 0))
		if c.IsAbrupt() {
			return c
		}
		return NormalOf(it)
	})
	locals.Declare(generator.IterIntrinsic, BindVar)
	locals.Initialize(generator.IterIntrinsic, iter)

	keys := i.newNative(r, generator.KeysIntrinsic, func(i *Interpreter, this object.Value, args []object.Value) Completion {
		v := argAt(args, 0)
		if isNullish(v) {
			return NormalOf(i.newArrayOf(i.currentRealm(), nil))
		}
		o, c := i.toObject(v)
		if c.IsAbrupt() {
			return c
		}
		var out []object.Value
		for _, key := range i.enumerateKeys(o) {
			out = append(out, object.NewString(key))
		}
		return NormalOf(i.newArrayOf(i.currentRealm(), out))
	})
	locals.Declare(generator.KeysIntrinsic, BindVar)
	locals.Initialize(generator.KeysIntrinsic, keys)
}

// Next resumes the generator with a sent value.
func (g *GeneratorInstance) Next(i *Interpreter, v object.Value) Completion {
	return g.resume(i, resumeNext, v)
}

// Throw injects an exception at the suspended yield.
func (g *GeneratorInstance) Throw(i *Interpreter, v object.Value) Completion {
	return g.resume(i, resumeThrow, v)
}

// Return injects a return at the suspended yield, running any finally
// blocks between the yield and the function exit.
func (g *GeneratorInstance) Return(i *Interpreter, v object.Value) Completion {
	return g.resume(i, resumeReturn, v)
}

func (g *GeneratorInstance) realm() *Realm { return g.fn.realm }

func (g *GeneratorInstance) resume(i *Interpreter, mode resumeMode, sent object.Value) Completion {
	switch g.state {
	case GenExecuting:
		return i.typeError("Generator is already running")

	case GenCompleted:
		switch mode {
		case resumeThrow:
			return Throw(sent)
		case resumeReturn:
			return NormalOf(i.iterResultObject(g.realm(), sent, true))
		default:
			return NormalOf(i.iterResultObject(g.realm(), object.Undefined, true))
		}

	case GenSuspendedStart:
		switch mode {
		case resumeThrow:
			// The body never ran; nothing protects the throw.
			g.state = GenCompleted
			return Throw(sent)
		case resumeReturn:
			g.state = GenCompleted
			return NormalOf(i.iterResultObject(g.realm(), sent, true))
		default:
			g.current = 0
			return g.run(i, nil)
		}
	}

	// Suspended at a yield.
	if g.delegate != nil {
		return g.resumeDelegate(i, mode, sent)
	}
	switch mode {
	case resumeThrow:
		inject := Throw(sent)
		return g.run(i, &inject)
	case resumeReturn:
		inject := ReturnOf(sent)
		return g.run(i, &inject)
	default:
		if c := g.bindSent(i, sent); c != nil {
			return g.run(i, c)
		}
		return g.run(i, nil)
	}
}

// bindSent delivers the value sent into next() to the binding recorded
// at the yield. A failing destructure is reported as a throw to inject.
func (g *GeneratorInstance) bindSent(i *Interpreter, v object.Value) *Completion {
	bind := g.resumeBind
	g.resumeBind = nil
	if bind == nil {
		return nil
	}
	if bind.Name != "" {
		g.locals.Initialize(bind.Name, v)
		return nil
	}
	if c := i.bindPatternInitialize(g.locals, bind.Target, v); c.IsAbrupt() {
		return &c
	}
	return nil
}

// resumeDelegate forwards a resumption to the inner iterator of an
// active yield*.
func (g *GeneratorInstance) resumeDelegate(i *Interpreter, mode resumeMode, sent object.Value) Completion {
	d := g.delegate

	method := "next"
	switch mode {
	case resumeThrow:
		method = "throw"
	case resumeReturn:
		method = "return"
	}
	mc := i.getProperty(d.iter, method, d.iter)
	if mc.IsAbrupt() {
		g.delegate = nil
		return g.run(i, &mc)
	}
	fn, callable := mc.Value.(*object.Object)
	if !callable || !fn.IsCallable() {
		switch mode {
		case resumeThrow:
			// Close the inner iterator, then surface the protocol error
			// inside the generator body.
			i.iteratorClose(d.iter)
			g.delegate = nil
			tc := i.typeError("The iterator does not provide a 'throw' method")
			return g.run(i, &tc)
		case resumeReturn:
			g.delegate = nil
			inject := ReturnOf(sent)
			return g.run(i, &inject)
		default:
			g.delegate = nil
			tc := i.typeError("The iterator does not provide a 'next' method")
			return g.run(i, &tc)
		}
	}

	g.state = GenExecuting
	res := i.callValue(fn, d.iter, []object.Value{sent})
	if res.IsAbrupt() {
		g.delegate = nil
		return g.run(i, &res)
	}
	value, done, pc := i.parseIterResult(res.Value)
	if pc.IsAbrupt() {
		g.delegate = nil
		return g.run(i, &pc)
	}
	if !done {
		// Still delegating; the inner result is the outer result.
		g.state = GenSuspendedYield
		return NormalOf(res.Value)
	}

	g.delegate = nil
	if mode == resumeReturn {
		inject := ReturnOf(value)
		return g.run(i, &inject)
	}
	g.current = d.resume
	g.resumeBind = d.bind
	if c := g.bindSent(i, value); c != nil {
		return g.run(i, c)
	}
	return g.run(i, nil)
}

// run drives the state machine until it suspends or completes. inject,
// when non-nil, is an abrupt completion delivered at the suspension
// point before any state executes.
func (g *GeneratorInstance) run(i *Interpreter, inject *Completion) Completion {
	g.state = GenExecuting
	i.pushContext(&ExecutionContext{
		LexicalEnv:   g.locals,
		VariableEnv:  g.locals,
		Realm:        g.fn.realm,
		Function:     g.fn,
		FunctionName: g.fn.name,
		Strict:       g.fn.fn.Strict,
		Generator:    g,
	})
	defer i.popContext()

	if inject != nil {
		var fin *Completion
		switch inject.Kind {
		case ThrowCompletion:
			fin = g.dispatchThrow(inject.Value)
		case ReturnCompletion:
			fin = g.dispatchReturn(i, inject.ValueOr(object.Undefined))
		default:
			fin = inject
		}
		if fin != nil {
			return *fin
		}
	}

	for {
		st := g.machine.States[g.current]
		c := i.execStmts(st.Stmts, g.locals)
		if i.haltErr != nil {
			g.state = GenCompleted
			return c
		}

		switch c.Kind {
		case ThrowCompletion:
			if fin := g.dispatchThrow(c.Value); fin != nil {
				return *fin
			}
			continue
		case ReturnCompletion:
			if fin := g.dispatchReturn(i, c.ValueOr(object.Undefined)); fin != nil {
				return *fin
			}
			continue
		case BreakCompletion:
			if fin := g.dispatchJump(i, st, c.Label, false); fin != nil {
				return *fin
			}
			continue
		case ContinueCompletion:
			if fin := g.dispatchJump(i, st, c.Label, true); fin != nil {
				return *fin
			}
			continue
		}

		if fin := g.step(i, st); fin != nil {
			return *fin
		}
	}
}

// step executes a state's terminator. It returns a non-nil completion
// when the generator suspends or finishes.
func (g *GeneratorInstance) step(i *Interpreter, st *generator.State) *Completion {
	switch term := st.Term.(type) {
	case *generator.GotoTerm:
		g.current = term.Target
		return nil

	case *generator.CondGotoTerm:
		tc := i.evalExpr(term.Cond, g.locals)
		if tc.IsAbrupt() {
			return g.dispatchThrow(tc.Value)
		}
		if object.Truthy(tc.Value) {
			g.current = term.True
		} else {
			g.current = term.False
		}
		return nil

	case *generator.YieldTerm:
		var value object.Value = object.Undefined
		if term.Value != nil {
			vc := i.evalExpr(term.Value, g.locals)
			if vc.IsAbrupt() {
				return g.dispatchThrow(vc.Value)
			}
			value = vc.Value
		}
		if term.Delegate {
			return g.beginDelegation(i, term, value)
		}
		g.resumeBind = term.Bind
		g.current = term.Resume
		g.state = GenSuspendedYield
		i.log.Debug().Str("function", g.fn.name).Int("resume", term.Resume).Msg("generator suspended")
		done := NormalOf(i.iterResultObject(g.realm(), value, false))
		return &done

	case *generator.ReturnTerm:
		var value object.Value = object.Undefined
		if term.Value != nil {
			vc := i.evalExpr(term.Value, g.locals)
			if vc.IsAbrupt() {
				return g.dispatchThrow(vc.Value)
			}
			value = vc.Value
		}
		return g.dispatchReturn(i, value)

	case *generator.ThrowTerm:
		vc := i.evalExpr(term.Value, g.locals)
		if vc.IsAbrupt() {
			return g.dispatchThrow(vc.Value)
		}
		return g.dispatchThrow(vc.Value)

	case *generator.TryEnterTerm:
		g.tryStack = append(g.tryStack, &tryRegion{term: term, state: st.ID})
		g.current = term.Try
		return nil

	case *generator.TryExitTerm:
		region := g.tryStack[len(g.tryStack)-1]
		g.tryStack = g.tryStack[:len(g.tryStack)-1]
		if region.pending == nil {
			g.current = term.After
			return nil
		}
		switch region.pending.kind {
		case pendingReturn:
			return g.dispatchReturn(i, region.pending.value)
		case pendingThrow:
			return g.dispatchThrow(region.pending.value)
		default:
			return g.resumeJump(region.pending.target, region.pending.label, region.pending.isContinue)
		}

	case *generator.EnterCatchTerm:
		region := g.tryStack[len(g.tryStack)-1]
		exc := region.exception
		region.exception = nil
		if term.Param != nil {
			if c := i.bindPatternInitialize(g.locals, term.Param, exc); c.IsAbrupt() {
				return g.dispatchThrow(c.Value)
			}
		}
		g.current = term.Body
		return nil

	case *generator.EnterFinallyTerm:
		// Mark the region even on the normal fall-through path, so an
		// exception raised inside the finally unwinds past this region
		// instead of landing in its own catch.
		if len(g.tryStack) > 0 {
			g.tryStack[len(g.tryStack)-1].enteredFinally = true
		}
		g.current = term.Body
		return nil

	case *generator.SwitchTerm:
		dc := i.evalExpr(term.Disc, g.locals)
		if dc.IsAbrupt() {
			return g.dispatchThrow(dc.Value)
		}
		for _, target := range term.Cases {
			tc := i.evalExpr(target.Test, g.locals)
			if tc.IsAbrupt() {
				return g.dispatchThrow(tc.Value)
			}
			if object.StrictEquals(dc.Value, tc.Value) {
				g.current = target.State
				return nil
			}
		}
		if term.Default != generator.None {
			g.current = term.Default
		} else {
			g.current = term.After
		}
		return nil

	case *generator.CompletedTerm:
		g.state = GenCompleted
		i.log.Debug().Str("function", g.fn.name).Msg("generator completed")
		done := NormalOf(i.iterResultObject(g.realm(), object.Undefined, true))
		return &done
	}
	c := i.typeError("unsupported generator state terminator")
	g.state = GenCompleted
	return &c
}

// beginDelegation starts a yield*: the first inner step is an implicit
// next(undefined). A done first result continues execution without
// suspending.
func (g *GeneratorInstance) beginDelegation(i *Interpreter, term *generator.YieldTerm, src object.Value) *Completion {
	it, c := i.getIteratorObject(src)
	if c.IsAbrupt() {
		return g.dispatchThrow(c.Value)
	}
	nc := i.getProperty(it, "next", it)
	if nc.IsAbrupt() {
		return g.dispatchThrow(nc.Value)
	}
	res := i.callValue(nc.Value, it, []object.Value{object.Undefined})
	if res.IsAbrupt() {
		return g.dispatchThrow(res.Value)
	}
	value, done, pc := i.parseIterResult(res.Value)
	if pc.IsAbrupt() {
		return g.dispatchThrow(pc.Value)
	}
	if done {
		g.resumeBind = term.Bind
		g.current = term.Resume
		if bc := g.bindSent(i, value); bc != nil {
			return g.dispatchThrow(bc.Value)
		}
		return nil
	}
	g.delegate = &delegation{iter: it, resume: term.Resume, bind: term.Bind}
	g.state = GenSuspendedYield
	out := NormalOf(res.Value)
	return &out
}

// dispatchThrow unwinds the region stack with an exception. It returns
// the generator's final completion when the exception escapes, or nil
// when a catch or finally takes over at g.current.
func (g *GeneratorInstance) dispatchThrow(v object.Value) *Completion {
	for len(g.tryStack) > 0 {
		top := g.tryStack[len(g.tryStack)-1]
		if top.enteredFinally {
			// The region's finally is already running; it no longer
			// protects anything.
			g.tryStack = g.tryStack[:len(g.tryStack)-1]
			continue
		}
		if top.term.Catch != nil && !top.enteredCatch {
			top.enteredCatch = true
			top.exception = v
			g.current = top.term.Catch.State
			return nil
		}
		if top.term.Finally != generator.None {
			top.enteredFinally = true
			top.pending = &pendingAction{kind: pendingThrow, value: v}
			g.current = top.term.Finally
			return nil
		}
		g.tryStack = g.tryStack[:len(g.tryStack)-1]
	}
	g.state = GenCompleted
	c := Throw(v)
	return &c
}

// dispatchReturn unwinds the region stack with a return value, running
// every pending finally on the way out.
func (g *GeneratorInstance) dispatchReturn(i *Interpreter, v object.Value) *Completion {
	for len(g.tryStack) > 0 {
		top := g.tryStack[len(g.tryStack)-1]
		if !top.enteredFinally && top.term.Finally != generator.None {
			top.enteredFinally = true
			top.pending = &pendingAction{kind: pendingReturn, value: v}
			g.current = top.term.Finally
			return nil
		}
		g.tryStack = g.tryStack[:len(g.tryStack)-1]
	}
	g.state = GenCompleted
	c := NormalOf(i.iterResultObject(g.realm(), v, true))
	return &c
}

// dispatchJump routes a break or continue completion that escaped a
// state's statements. The target comes from the originating state's
// snapshot; each region's own snapshot decides whether the jump leaves
// it, in which case its finally runs first.
func (g *GeneratorInstance) dispatchJump(i *Interpreter, origin *generator.State, label string, isContinue bool) *Completion {
	targets := origin.BreakTargets
	if isContinue {
		targets = origin.ContinueTargets
	}
	target, ok := targets[label]
	if !ok {
		c := i.syntaxError("Undefined label '%s'", label)
		g.state = GenCompleted
		return &c
	}
	return g.resumeJump(target, label, isContinue)
}

// resumeJump continues a break/continue jump over the remaining region
// stack. A region whose entry snapshot maps the label to the same target
// is being exited by the jump; one that maps it elsewhere contains the
// whole construct and the jump is internal to it.
func (g *GeneratorInstance) resumeJump(target int, label string, isContinue bool) *Completion {
	for len(g.tryStack) > 0 {
		top := g.tryStack[len(g.tryStack)-1]
		if top.enteredFinally {
			g.tryStack = g.tryStack[:len(g.tryStack)-1]
			continue
		}
		entry := g.machine.States[top.state]
		snapshot := entry.BreakTargets
		if isContinue {
			snapshot = entry.ContinueTargets
		}
		if t, ok := snapshot[label]; !ok || t != target {
			break
		}
		if top.term.Finally != generator.None {
			top.enteredFinally = true
			top.pending = &pendingAction{kind: pendingGoto, target: target, label: label, isContinue: isContinue}
			g.current = top.term.Finally
			return nil
		}
		g.tryStack = g.tryStack[:len(g.tryStack)-1]
	}
	g.current = target
	return nil
}
