package object

// Property is a fully-populated own property. A property is exactly one
// of two shapes: a data property (Value, Writable) or an accessor
// property (Get, Set). For a data property Get and Set are nil; for an
// accessor property Value is nil and Writable is meaningless. Get or Set
// holding the Undefined singleton means "accessor with no getter/setter",
// which is distinct from nil.
type Property struct {
	Value        Value
	Writable     bool
	Get          Value
	Set          Value
	Enumerable   bool
	Configurable bool
}

// IsAccessor reports whether the property is an accessor property.
func (p *Property) IsAccessor() bool {
	return p.Get != nil || p.Set != nil
}

// IsData reports whether the property is a data property.
func (p *Property) IsData() bool {
	return !p.IsAccessor()
}

func (p *Property) clone() *Property {
	c := *p
	return &c
}

// Descriptor is a partial property descriptor as supplied to
// [[DefineOwnProperty]]. A nil field is absent, which is different from
// a field holding the Undefined singleton.
type Descriptor struct {
	Value        Value
	Writable     *bool
	Get          Value
	Set          Value
	Enumerable   *bool
	Configurable *bool
}

// IsData reports whether the descriptor mentions data fields.
func (d *Descriptor) IsData() bool {
	return d.Value != nil || d.Writable != nil
}

// IsAccessor reports whether the descriptor mentions accessor fields.
func (d *Descriptor) IsAccessor() bool {
	return d.Get != nil || d.Set != nil
}

// IsGeneric reports whether the descriptor mentions neither data nor
// accessor fields.
func (d *Descriptor) IsGeneric() bool {
	return !d.IsData() && !d.IsAccessor()
}

// IsEmpty reports whether every field of the descriptor is absent.
func (d *Descriptor) IsEmpty() bool {
	return d.Value == nil && d.Writable == nil && d.Get == nil &&
		d.Set == nil && d.Enumerable == nil && d.Configurable == nil
}

// DataDescriptor builds a complete data descriptor.
func DataDescriptor(value Value, writable, enumerable, configurable bool) *Descriptor {
	return &Descriptor{
		Value:        value,
		Writable:     boolPtr(writable),
		Enumerable:   boolPtr(enumerable),
		Configurable: boolPtr(configurable),
	}
}

// AccessorDescriptor builds a complete accessor descriptor. Pass the
// Undefined singleton for a missing getter or setter.
func AccessorDescriptor(get, set Value, enumerable, configurable bool) *Descriptor {
	return &Descriptor{
		Get:          get,
		Set:          set,
		Enumerable:   boolPtr(enumerable),
		Configurable: boolPtr(configurable),
	}
}

// ValueDescriptor builds a descriptor carrying only a value.
func ValueDescriptor(value Value) *Descriptor {
	return &Descriptor{Value: value}
}

// FromProperty converts a full property back into a complete descriptor.
func FromProperty(p *Property) *Descriptor {
	if p == nil {
		return nil
	}
	if p.IsAccessor() {
		return AccessorDescriptor(orUndefined(p.Get), orUndefined(p.Set), p.Enumerable, p.Configurable)
	}
	return DataDescriptor(p.Value, p.Writable, p.Enumerable, p.Configurable)
}

func boolPtr(b bool) *bool { return &b }

func orUndefined(v Value) Value {
	if v == nil {
		return Undefined
	}
	return v
}
