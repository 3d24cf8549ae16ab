package ast

import "strings"

// PatternElem is one element of an array pattern. Target may be a nested
// pattern and Default, when present, applies if the element value is
// undefined.
type PatternElem struct {
	Target  Pattern
	Default Expr
}

func (p *PatternElem) String() string {
	if p.Default == nil {
		return p.Target.String()
	}
	return p.Target.String() + " = " + p.Default.String()
}

// ArrayPattern destructures an iterable: [a, b = 1, ...rest].
// A nil element is an elision.
type ArrayPattern struct {
	Elems []*PatternElem
	Rest  Pattern
}

func (p *ArrayPattern) patternNode() {}

func (p *ArrayPattern) String() string {
	var parts []string
	for _, el := range p.Elems {
		if el == nil {
			parts = append(parts, "")
		} else {
			parts = append(parts, el.String())
		}
	}
	if p.Rest != nil {
		parts = append(parts, "..."+p.Rest.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PropPattern is one binding in an object pattern: {key: target = default}.
type PropPattern struct {
	Key     string
	Target  Pattern
	Default Expr
}

func (p *PropPattern) String() string {
	out := p.Key
	if id, ok := p.Target.(*Ident); !ok || id.Name != p.Key {
		out += ": " + p.Target.String()
	}
	if p.Default != nil {
		out += " = " + p.Default.String()
	}
	return out
}

// ObjectPattern destructures an object: {a, b: c = 1, ...rest}.
type ObjectPattern struct {
	Props []*PropPattern
	Rest  Pattern
}

func (p *ObjectPattern) patternNode() {}

func (p *ObjectPattern) String() string {
	var parts []string
	for _, pp := range p.Props {
		parts = append(parts, pp.String())
	}
	if p.Rest != nil {
		parts = append(parts, "..."+p.Rest.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
