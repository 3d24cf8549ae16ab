package interp

import "github.com/cloudcmds/marmoset/object"

// CompletionKind tags a completion record.
type CompletionKind uint8

const (
	NormalCompletion CompletionKind = iota
	ReturnCompletion
	ThrowCompletion
	BreakCompletion
	ContinueCompletion
)

func (k CompletionKind) String() string {
	switch k {
	case NormalCompletion:
		return "normal"
	case ReturnCompletion:
		return "return"
	case ThrowCompletion:
		return "throw"
	case BreakCompletion:
		return "break"
	case ContinueCompletion:
		return "continue"
	}
	return "unknown"
}

// Completion is the result of evaluating a statement or expression.
// Control flow is modeled entirely with completion records: the engine
// never panics to unwind. A nil Value is the empty completion value.
// Label is meaningful only for break and continue.
type Completion struct {
	Kind  CompletionKind
	Value object.Value
	Label string
}

// NormalOf builds a normal completion carrying a value.
func NormalOf(v object.Value) Completion {
	return Completion{Kind: NormalCompletion, Value: v}
}

// Empty is the normal completion with no value.
func Empty() Completion {
	return Completion{Kind: NormalCompletion}
}

// ReturnOf builds a return completion.
func ReturnOf(v object.Value) Completion {
	return Completion{Kind: ReturnCompletion, Value: v}
}

// Throw builds a throw completion carrying the exception value.
func Throw(v object.Value) Completion {
	return Completion{Kind: ThrowCompletion, Value: v}
}

// BreakOf builds a break completion. An empty label targets the nearest
// enclosing loop or switch.
func BreakOf(label string) Completion {
	return Completion{Kind: BreakCompletion, Label: label}
}

// ContinueOf builds a continue completion.
func ContinueOf(label string) Completion {
	return Completion{Kind: ContinueCompletion, Label: label}
}

// IsAbrupt reports whether the completion interrupts sequential control
// flow.
func (c Completion) IsAbrupt() bool {
	return c.Kind != NormalCompletion
}

// ValueOr returns the completion value, or def when the value is empty.
func (c Completion) ValueOr(def object.Value) object.Value {
	if c.Value == nil {
		return def
	}
	return c.Value
}

// UpdateEmpty fills an empty completion value with v.
func (c Completion) UpdateEmpty(v object.Value) Completion {
	if c.Value == nil {
		c.Value = v
	}
	return c
}
