package interp

import (
	"github.com/cloudcmds/marmoset/ast"
	"github.com/cloudcmds/marmoset/object"
)

// hoistDeclarations performs declaration instantiation for a function
// body or script: var names are created in the variable environment
// before any statement runs, top-level function declarations are bound
// in source order, and top-level lexical declarations are created
// uninitialized so reads before the declaration throw.
func (i *Interpreter) hoistDeclarations(body []ast.Stmt, lexEnv, varEnv *Environment, r *Realm) Completion {
	for _, name := range collectVarNames(body) {
		// Script-level vars live directly on the global object so that
		// name resolution and globalThis stay in sync.
		if varEnv.global != nil {
			if !varEnv.global.HasOwn(name) {
				varEnv.global.InsertValue(name, object.Undefined)
			}
			continue
		}
		if !varEnv.HasLocal(name) {
			varEnv.Declare(name, BindVar)
		}
	}
	if c := i.declareLexical(body, lexEnv); c.IsAbrupt() {
		return c
	}
	for _, s := range body {
		if fd, ok := s.(*ast.FuncDecl); ok && fd.Fn.Name != "" {
			fn := i.makeFunction(fd.Fn, lexEnv, r)
			if varEnv.global != nil {
				varEnv.global.InsertValue(fd.Fn.Name, fn)
				continue
			}
			varEnv.Declare(fd.Fn.Name, BindVar)
			varEnv.Initialize(fd.Fn.Name, fn)
		}
	}
	return Empty()
}

// declareLexical creates uninitialized let and const bindings for the
// statement list, establishing their temporal dead zone. A name already
// lexically bound in the same scope throws.
func (i *Interpreter) declareLexical(body []ast.Stmt, env *Environment) Completion {
	for _, s := range body {
		decl, ok := s.(*ast.VarDecl)
		if !ok || decl.Kind == ast.VarKindVar {
			continue
		}
		kind := BindLet
		if decl.Kind == ast.VarKindConst {
			kind = BindConst
		}
		for _, d := range decl.Decls {
			for _, name := range patternNames(d.Target) {
				if k, exists := env.LocalKind(name); exists && k != BindVar {
					return i.syntaxError("Identifier '%s' has already been declared", name)
				}
				env.Declare(name, kind)
			}
		}
	}
	return Empty()
}

// enterBlockScope prepares a block's fresh environment: lexical bindings
// go into their dead zone and block-level function declarations bind
// immediately. Each function declaration also attempts the legacy
// var-scope aliasing, re-checked here at execution time per declaration.
func (i *Interpreter) enterBlockScope(body []ast.Stmt, blockEnv *Environment, r *Realm) Completion {
	if c := i.declareLexical(body, blockEnv); c.IsAbrupt() {
		return c
	}
	for _, s := range body {
		if fd, ok := s.(*ast.FuncDecl); ok && fd.Fn.Name != "" {
			fn := i.makeFunction(fd.Fn, blockEnv, r)
			blockEnv.Declare(fd.Fn.Name, BindLet)
			blockEnv.Initialize(fd.Fn.Name, fn)
			i.legacyFunctionAlias(blockEnv, fd.Fn.Name, fn)
		}
	}
	return Empty()
}

// legacyFunctionAlias promotes a block-level function declaration to a
// var binding in the enclosing function scope, unless a lexical binding
// of the same name exists anywhere between the block and that scope.
// The walk runs fresh for every declaration; nothing is cached.
func (i *Interpreter) legacyFunctionAlias(blockEnv *Environment, name string, fn *object.Object) {
	for env := blockEnv.Outer(); env != nil; env = env.Outer() {
		if k, ok := env.LocalKind(name); ok && k != BindVar {
			return // an intermediate lexical binding blocks the alias
		}
		if env.function {
			if env.global != nil {
				env.global.InsertValue(name, fn)
			} else {
				env.Declare(name, BindVar)
				env.Initialize(name, fn)
			}
			return
		}
	}
}

// collectVarNames gathers every var-declared name in the statement list,
// descending into nested statements but never into function bodies.
func collectVarNames(body []ast.Stmt) []string {
	var names []string
	seen := map[string]bool{}
	add := func(pat ast.Pattern) {
		for _, n := range patternNames(pat) {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	var walk func(s ast.Stmt)
	walk = func(s ast.Stmt) {
		switch s := s.(type) {
		case *ast.VarDecl:
			if s.Kind == ast.VarKindVar {
				for _, d := range s.Decls {
					add(d.Target)
				}
			}
		case *ast.Block:
			for _, inner := range s.Body {
				walk(inner)
			}
		case *ast.If:
			walk(s.Cons)
			if s.Alt != nil {
				walk(s.Alt)
			}
		case *ast.While:
			walk(s.Body)
		case *ast.DoWhile:
			walk(s.Body)
		case *ast.For:
			if s.Init != nil {
				walk(s.Init)
			}
			walk(s.Body)
		case *ast.ForIn:
			if s.Decl == ast.VarKindVar {
				add(s.Left)
			}
			walk(s.Body)
		case *ast.ForOf:
			if s.Decl == ast.VarKindVar {
				add(s.Left)
			}
			walk(s.Body)
		case *ast.Try:
			for _, inner := range s.Block.Body {
				walk(inner)
			}
			if s.Catch != nil {
				for _, inner := range s.Catch.Body {
					walk(inner)
				}
			}
			if s.Finally != nil {
				for _, inner := range s.Finally.Body {
					walk(inner)
				}
			}
		case *ast.Switch:
			for _, c := range s.Cases {
				for _, inner := range c.Body {
					walk(inner)
				}
			}
		case *ast.Labeled:
			walk(s.Stmt)
		}
	}
	for _, s := range body {
		walk(s)
	}
	return names
}

// patternNames lists the identifiers a binding pattern introduces.
func patternNames(pat ast.Pattern) []string {
	var names []string
	var walk func(p ast.Pattern)
	walk = func(p ast.Pattern) {
		switch p := p.(type) {
		case *ast.Ident:
			names = append(names, p.Name)
		case *ast.ArrayPattern:
			for _, el := range p.Elems {
				if el != nil {
					walk(el.Target)
				}
			}
			if p.Rest != nil {
				walk(p.Rest)
			}
		case *ast.ObjectPattern:
			for _, pp := range p.Props {
				walk(pp.Target)
			}
			if p.Rest != nil {
				walk(p.Rest)
			}
		}
	}
	walk(pat)
	return names
}
