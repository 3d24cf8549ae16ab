package ast

import (
	"bytes"
	"strings"
)

// Ident is a name reference. It doubles as the simplest binding pattern.
type Ident struct {
	Name string
}

func (e *Ident) exprNode()    {}
func (e *Ident) patternNode() {}

func (e *Ident) String() string { return e.Name }

// This is the this expression.
type This struct{}

func (e *This) exprNode() {}

func (e *This) String() string { return "this" }

// BinaryOp identifies a binary arithmetic, comparison, or bitwise operator.
type BinaryOp string

const (
	OpAdd        BinaryOp = "+"
	OpSub        BinaryOp = "-"
	OpMul        BinaryOp = "*"
	OpDiv        BinaryOp = "/"
	OpMod        BinaryOp = "%"
	OpLT         BinaryOp = "<"
	OpGT         BinaryOp = ">"
	OpLTE        BinaryOp = "<="
	OpGTE        BinaryOp = ">="
	OpEq         BinaryOp = "=="
	OpNotEq      BinaryOp = "!="
	OpStrictEq   BinaryOp = "==="
	OpStrictNeq  BinaryOp = "!=="
	OpIn         BinaryOp = "in"
	OpInstanceof BinaryOp = "instanceof"
)

// Binary is a binary operator expression.
type Binary struct {
	Op BinaryOp
	L  Expr
	R  Expr
}

func (e *Binary) exprNode() {}

func (e *Binary) String() string {
	return "(" + e.L.String() + " " + string(e.Op) + " " + e.R.String() + ")"
}

// LogicalOp identifies a short-circuiting operator.
type LogicalOp string

const (
	OpAnd      LogicalOp = "&&"
	OpOr       LogicalOp = "||"
	OpNullish  LogicalOp = "??"
)

// Logical is a short-circuiting binary expression.
type Logical struct {
	Op LogicalOp
	L  Expr
	R  Expr
}

func (e *Logical) exprNode() {}

func (e *Logical) String() string {
	return "(" + e.L.String() + " " + string(e.Op) + " " + e.R.String() + ")"
}

// UnaryOp identifies a prefix unary operator.
type UnaryOp string

const (
	OpNeg    UnaryOp = "-"
	OpPlus   UnaryOp = "+"
	OpNot    UnaryOp = "!"
	OpBitNot UnaryOp = "~"
	OpTypeof UnaryOp = "typeof"
	OpVoid   UnaryOp = "void"
	OpDelete UnaryOp = "delete"
)

// Unary is a prefix unary operator expression.
type Unary struct {
	Op      UnaryOp
	Operand Expr
}

func (e *Unary) exprNode() {}

func (e *Unary) String() string {
	if e.Op == OpTypeof || e.Op == OpVoid || e.Op == OpDelete {
		return string(e.Op) + " " + e.Operand.String()
	}
	return string(e.Op) + e.Operand.String()
}

// UpdateOp identifies ++ or --.
type UpdateOp string

const (
	OpIncrement UpdateOp = "++"
	OpDecrement UpdateOp = "--"
)

// Update is an increment or decrement expression.
type Update struct {
	Op      UpdateOp
	Prefix  bool
	Operand Expr
}

func (e *Update) exprNode() {}

func (e *Update) String() string {
	if e.Prefix {
		return string(e.Op) + e.Operand.String()
	}
	return e.Operand.String() + string(e.Op)
}

// AssignOp identifies an assignment operator. "=" is plain assignment;
// the rest are compound forms.
type AssignOp string

const (
	OpAssign    AssignOp = "="
	OpAddAssign AssignOp = "+="
	OpSubAssign AssignOp = "-="
	OpMulAssign AssignOp = "*="
	OpDivAssign AssignOp = "/="
	OpModAssign AssignOp = "%="
)

// Assign is an assignment expression. Target is an *Ident, *Member,
// *Index, or (for plain assignment only) a destructuring pattern.
type Assign struct {
	Op     AssignOp
	Target Node
	Value  Expr
}

func (e *Assign) exprNode() {}

func (e *Assign) String() string {
	return e.Target.String() + " " + string(e.Op) + " " + e.Value.String()
}

// Conditional is the ternary operator.
type Conditional struct {
	Test Expr
	Cons Expr
	Alt  Expr
}

func (e *Conditional) exprNode() {}

func (e *Conditional) String() string {
	return "(" + e.Test.String() + " ? " + e.Cons.String() + " : " + e.Alt.String() + ")"
}

// Sequence is the comma operator.
type Sequence struct {
	Exprs []Expr
}

func (e *Sequence) exprNode() {}

func (e *Sequence) String() string {
	var parts []string
	for _, x := range e.Exprs {
		parts = append(parts, x.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Member is a non-computed property access: obj.name.
type Member struct {
	Object   Expr
	Property string
}

func (e *Member) exprNode() {}

func (e *Member) String() string { return e.Object.String() + "." + e.Property }

// Index is a computed property access: obj[expr].
type Index struct {
	Object Expr
	Key    Expr
}

func (e *Index) exprNode() {}

func (e *Index) String() string { return e.Object.String() + "[" + e.Key.String() + "]" }

// Call is a function call. A *Spread argument expands in place.
type Call struct {
	Callee Expr
	Args   []Expr
}

func (e *Call) exprNode() {}

func (e *Call) String() string {
	return e.Callee.String() + "(" + argsString(e.Args) + ")"
}

// New is a constructor invocation.
type New struct {
	Callee Expr
	Args   []Expr
}

func (e *New) exprNode() {}

func (e *New) String() string {
	return "new " + e.Callee.String() + "(" + argsString(e.Args) + ")"
}

// Spread expands an iterable in a call or array literal.
type Spread struct {
	X Expr
}

func (e *Spread) exprNode() {}

func (e *Spread) String() string { return "..." + e.X.String() }

// Param is a single function parameter with an optional default.
type Param struct {
	Target  Pattern
	Default Expr
}

func (p *Param) String() string {
	if p.Default == nil {
		return p.Target.String()
	}
	return p.Target.String() + " = " + p.Default.String()
}

// FuncLit is a function expression or the function underlying a
// declaration. Arrow functions have IsArrow set and do not bind this or
// arguments.
type FuncLit struct {
	Name        string
	Params      []*Param
	RestParam   Pattern
	Body        []Stmt
	IsArrow     bool
	IsGenerator bool
	Strict      bool
}

func (e *FuncLit) exprNode() {}

func (e *FuncLit) String() string {
	var out bytes.Buffer
	if e.IsGenerator {
		out.WriteString("function* ")
	} else if !e.IsArrow {
		out.WriteString("function ")
	}
	out.WriteString(e.Name)
	out.WriteString("(")
	var parts []string
	for _, p := range e.Params {
		parts = append(parts, p.String())
	}
	if e.RestParam != nil {
		parts = append(parts, "..."+e.RestParam.String())
	}
	out.WriteString(strings.Join(parts, ", "))
	out.WriteString(")")
	if e.IsArrow {
		out.WriteString(" =>")
	}
	out.WriteString(" { ")
	out.WriteString(stmtsString(e.Body))
	out.WriteString(" }")
	return out.String()
}

// Yield suspends a generator. Delegate marks the yield* form.
type Yield struct {
	Value    Expr // nil for a bare yield
	Delegate bool
}

func (e *Yield) exprNode() {}

func (e *Yield) String() string {
	out := "yield"
	if e.Delegate {
		out += "*"
	}
	if e.Value != nil {
		out += " " + e.Value.String()
	}
	return out
}

func argsString(args []Expr) string {
	var parts []string
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}
