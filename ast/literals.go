package ast

import (
	"strconv"
	"strings"
)

// NumberLit is a numeric literal. All numbers are IEEE-754 doubles.
type NumberLit struct {
	Value float64
}

func (e *NumberLit) exprNode() {}

func (e *NumberLit) String() string {
	return strconv.FormatFloat(e.Value, 'g', -1, 64)
}

// StringLit is a string literal.
type StringLit struct {
	Value string
}

func (e *StringLit) exprNode() {}

func (e *StringLit) String() string { return strconv.Quote(e.Value) }

// BoolLit is true or false.
type BoolLit struct {
	Value bool
}

func (e *BoolLit) exprNode() {}

func (e *BoolLit) String() string { return strconv.FormatBool(e.Value) }

// NullLit is the null literal.
type NullLit struct{}

func (e *NullLit) exprNode() {}

func (e *NullLit) String() string { return "null" }

// ArrayLit is an array literal. A nil element is an elision (hole).
type ArrayLit struct {
	Elems []Expr
}

func (e *ArrayLit) exprNode() {}

func (e *ArrayLit) String() string {
	var parts []string
	for _, el := range e.Elems {
		if el == nil {
			parts = append(parts, "")
		} else {
			parts = append(parts, el.String())
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PropKind distinguishes plain properties from accessor definitions in an
// object literal.
type PropKind string

const (
	PropInit   PropKind = "init"
	PropGetter PropKind = "get"
	PropSetter PropKind = "set"
)

// ObjectProp is one property in an object literal. When Computed is set
// the key is the KeyExpr result; otherwise Key is used directly.
type ObjectProp struct {
	Key      string
	KeyExpr  Expr
	Computed bool
	Kind     PropKind
	Value    Expr
}

func (p *ObjectProp) String() string {
	key := p.Key
	if p.Computed {
		key = "[" + p.KeyExpr.String() + "]"
	}
	switch p.Kind {
	case PropGetter:
		return "get " + key + "() {...}"
	case PropSetter:
		return "set " + key + "(v) {...}"
	}
	return key + ": " + p.Value.String()
}

// ObjectLit is an object literal.
type ObjectLit struct {
	Props []*ObjectProp
}

func (e *ObjectLit) exprNode() {}

func (e *ObjectLit) String() string {
	var parts []string
	for _, p := range e.Props {
		parts = append(parts, p.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
