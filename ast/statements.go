package ast

import (
	"bytes"
	"strings"
)

// VarKind distinguishes the three declaration forms.
type VarKind string

const (
	VarKindVar   VarKind = "var"
	VarKindLet   VarKind = "let"
	VarKindConst VarKind = "const"
)

// Declarator is a single binding within a variable declaration.
type Declarator struct {
	Target Pattern
	Init   Expr // nil when the declarator has no initializer
}

func (d *Declarator) String() string {
	if d.Init == nil {
		return d.Target.String()
	}
	return d.Target.String() + " = " + d.Init.String()
}

// VarDecl is a var, let, or const declaration statement.
type VarDecl struct {
	Kind  VarKind
	Decls []*Declarator
}

func (s *VarDecl) stmtNode() {}

func (s *VarDecl) String() string {
	var parts []string
	for _, d := range s.Decls {
		parts = append(parts, d.String())
	}
	return string(s.Kind) + " " + strings.Join(parts, ", ")
}

// ExprStmt is an expression evaluated in statement position.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) stmtNode() {}

func (s *ExprStmt) String() string { return s.X.String() }

// Block is a braced statement list with its own lexical scope.
type Block struct {
	Body []Stmt
}

func (s *Block) stmtNode() {}

func (s *Block) String() string {
	return "{ " + stmtsString(s.Body) + " }"
}

// Empty is the empty statement.
type Empty struct{}

func (s *Empty) stmtNode() {}

func (s *Empty) String() string { return ";" }

// If is an if statement with an optional else branch.
type If struct {
	Test Expr
	Cons Stmt
	Alt  Stmt // nil when there is no else branch
}

func (s *If) stmtNode() {}

func (s *If) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(s.Test.String())
	out.WriteString(") ")
	out.WriteString(s.Cons.String())
	if s.Alt != nil {
		out.WriteString(" else ")
		out.WriteString(s.Alt.String())
	}
	return out.String()
}

// While is a while loop.
type While struct {
	Test Expr
	Body Stmt
}

func (s *While) stmtNode() {}

func (s *While) String() string {
	return "while (" + s.Test.String() + ") " + s.Body.String()
}

// DoWhile is a do-while loop.
type DoWhile struct {
	Body Stmt
	Test Expr
}

func (s *DoWhile) stmtNode() {}

func (s *DoWhile) String() string {
	return "do " + s.Body.String() + " while (" + s.Test.String() + ")"
}

// For is a C-style for loop. Init is nil, a *VarDecl, or an *ExprStmt.
// Test and Update may be nil.
type For struct {
	Init   Stmt
	Test   Expr
	Update Expr
	Body   Stmt
}

func (s *For) stmtNode() {}

func (s *For) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if s.Init != nil {
		out.WriteString(s.Init.String())
	}
	out.WriteString("; ")
	if s.Test != nil {
		out.WriteString(s.Test.String())
	}
	out.WriteString("; ")
	if s.Update != nil {
		out.WriteString(s.Update.String())
	}
	out.WriteString(") ")
	out.WriteString(s.Body.String())
	return out.String()
}

// ForIn enumerates the property keys of an object. When Decl is non-empty
// the left-hand side declares a fresh binding per iteration; otherwise
// Left is assigned as a pattern.
type ForIn struct {
	Decl  VarKind // empty string when the left side is not a declaration
	Left  Pattern
	Right Expr
	Body  Stmt
}

func (s *ForIn) stmtNode() {}

func (s *ForIn) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if s.Decl != "" {
		out.WriteString(string(s.Decl) + " ")
	}
	out.WriteString(s.Left.String())
	out.WriteString(" in ")
	out.WriteString(s.Right.String())
	out.WriteString(") ")
	out.WriteString(s.Body.String())
	return out.String()
}

// ForOf iterates a value using the iteration protocol.
type ForOf struct {
	Decl  VarKind
	Left  Pattern
	Right Expr
	Body  Stmt
}

func (s *ForOf) stmtNode() {}

func (s *ForOf) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if s.Decl != "" {
		out.WriteString(string(s.Decl) + " ")
	}
	out.WriteString(s.Left.String())
	out.WriteString(" of ")
	out.WriteString(s.Right.String())
	out.WriteString(") ")
	out.WriteString(s.Body.String())
	return out.String()
}

// Return is a return statement. Value may be nil.
type Return struct {
	Value Expr
}

func (s *Return) stmtNode() {}

func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// Break is a break statement with an optional label.
type Break struct {
	Label string
}

func (s *Break) stmtNode() {}

func (s *Break) String() string {
	if s.Label == "" {
		return "break"
	}
	return "break " + s.Label
}

// Continue is a continue statement with an optional label.
type Continue struct {
	Label string
}

func (s *Continue) stmtNode() {}

func (s *Continue) String() string {
	if s.Label == "" {
		return "continue"
	}
	return "continue " + s.Label
}

// Throw is a throw statement.
type Throw struct {
	Value Expr
}

func (s *Throw) stmtNode() {}

func (s *Throw) String() string { return "throw " + s.Value.String() }

// Try is a try statement. At least one of Catch and Finally is present.
// CatchParam may be nil for a parameterless catch clause.
type Try struct {
	Block      *Block
	CatchParam Pattern
	Catch      *Block
	Finally    *Block
}

func (s *Try) stmtNode() {}

func (s *Try) String() string {
	var out bytes.Buffer
	out.WriteString("try ")
	out.WriteString(s.Block.String())
	if s.Catch != nil {
		out.WriteString(" catch ")
		if s.CatchParam != nil {
			out.WriteString("(" + s.CatchParam.String() + ") ")
		}
		out.WriteString(s.Catch.String())
	}
	if s.Finally != nil {
		out.WriteString(" finally ")
		out.WriteString(s.Finally.String())
	}
	return out.String()
}

// SwitchCase is one case clause. Test is nil for the default clause.
type SwitchCase struct {
	Test Expr
	Body []Stmt
}

func (c *SwitchCase) String() string {
	if c.Test == nil {
		return "default: " + stmtsString(c.Body)
	}
	return "case " + c.Test.String() + ": " + stmtsString(c.Body)
}

// Switch is a switch statement.
type Switch struct {
	Disc  Expr
	Cases []*SwitchCase
}

func (s *Switch) stmtNode() {}

func (s *Switch) String() string {
	var out bytes.Buffer
	out.WriteString("switch (")
	out.WriteString(s.Disc.String())
	out.WriteString(") { ")
	for _, c := range s.Cases {
		out.WriteString(c.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// Labeled attaches a label to a statement for targeted break/continue.
type Labeled struct {
	Label string
	Stmt  Stmt
}

func (s *Labeled) stmtNode() {}

func (s *Labeled) String() string { return s.Label + ": " + s.Stmt.String() }

// FuncDecl is a function declaration statement. The function itself is
// represented by the embedded literal.
type FuncDecl struct {
	Fn *FuncLit
}

func (s *FuncDecl) stmtNode() {}

func (s *FuncDecl) String() string { return s.Fn.String() }
