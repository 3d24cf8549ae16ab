// Package ast defines the abstract syntax tree consumed by the marmoset
// engine. The tree is produced externally and is immutable: the engine
// never modifies or re-parses nodes. The set of node kinds is closed.
package ast

// Node is implemented by every element of the syntax tree.
type Node interface {
	// String returns a human friendly representation of the node. This
	// should be similar to the original source code, but not necessarily
	// identical.
	String() string
}

// Stmt represents a statement node. Statements are evaluated for their
// completion, not their value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value and
// may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Pattern represents a binding target: a plain identifier or an array or
// object destructuring pattern.
type Pattern interface {
	Node
	patternNode()
}

// Program is the root node of a parsed script.
type Program struct {
	Body []Stmt

	// Strict indicates the program begins with a "use strict" directive.
	Strict bool
}

func (p *Program) String() string {
	return stmtsString(p.Body)
}

func stmtsString(stmts []Stmt) string {
	out := ""
	for i, s := range stmts {
		if i > 0 {
			out += "; "
		}
		out += s.String()
	}
	return out
}
