package object

import "unicode/utf16"

// codeUnits returns the UTF-16 code units of a String exotic object's
// primitive value. Index and length properties are defined over code
// units, not bytes or runes.
func (o *Object) codeUnits() []uint16 {
	s, ok := o.primitive.(*String)
	if !ok {
		return nil
	}
	return utf16.Encode([]rune(s.value))
}

// stringGetOwn synthesizes the virtual index and length properties of a
// String exotic object. These are never stored in the property table.
func (o *Object) stringGetOwn(key string) *Property {
	units := o.codeUnits()
	if key == "length" {
		return &Property{
			Value:        NewNumber(float64(len(units))),
			Writable:     false,
			Enumerable:   false,
			Configurable: false,
		}
	}
	if idx, ok := ArrayIndex(key); ok && int(idx) < len(units) {
		return &Property{
			Value:        NewString(string(utf16.Decode(units[idx : idx+1]))),
			Writable:     false,
			Enumerable:   true,
			Configurable: false,
		}
	}
	return nil
}

func (o *Object) stringSynthesizedKeys() []string {
	units := o.codeUnits()
	keys := make([]string, 0, len(units)+1)
	for i := range units {
		keys = append(keys, FormatNumber(float64(i)))
	}
	return append(keys, "length")
}

// stringDefineOwn validates a definition against a synthesized property
// without ever storing it: the virtual properties are non-configurable
// and non-writable, so only a no-op redefinition succeeds.
func (o *Object) stringDefineOwn(key string, desc *Descriptor) bool {
	if _, stored := o.props[key]; !stored {
		if current := o.stringGetOwn(key); current != nil {
			return compatibleWithFrozen(current, desc)
		}
	}
	return o.ordinaryDefineOwn(key, desc)
}

// compatibleWithFrozen checks a descriptor against a non-configurable,
// non-writable data property, the validation half of ValidateAndApply.
func compatibleWithFrozen(current *Property, desc *Descriptor) bool {
	if desc.IsEmpty() {
		return true
	}
	if desc.Configurable != nil && *desc.Configurable {
		return false
	}
	if desc.Enumerable != nil && *desc.Enumerable != current.Enumerable {
		return false
	}
	if desc.IsAccessor() {
		return false
	}
	if desc.Writable != nil && *desc.Writable {
		return false
	}
	if desc.Value != nil && !SameValue(desc.Value, current.Value) {
		return false
	}
	return true
}
