package object

// ArrayLength returns the current value of an Array's length property.
func (o *Object) ArrayLength() uint32 {
	p, ok := o.props["length"]
	if !ok || p.Value == nil {
		return 0
	}
	n, ok := p.Value.(*Number)
	if !ok {
		return 0
	}
	return uint32(n.value)
}

// arrayDefineOwn implements the Array [[DefineOwnProperty]] override:
// the length/index coupling of ArraySetLength plus the two-phase
// "delegate, then patch length" ordering for index keys. The ordering is
// load-bearing: length must not change until the index definition has
// succeeded, or length-observing getters invoked during the definition
// would see the wrong value.
func (o *Object) arrayDefineOwn(key string, desc *Descriptor) (bool, error) {
	if key == "length" {
		return o.arraySetLength(desc)
	}
	if idx, ok := ArrayIndex(key); ok {
		lengthProp := o.props["length"]
		oldLen := o.ArrayLength()
		if idx >= oldLen && !lengthProp.Writable {
			return false, nil
		}
		if !o.ordinaryDefineOwn(key, desc) {
			return false, nil
		}
		if idx >= oldLen {
			lengthProp.Value = NewNumber(float64(idx) + 1)
		}
		return true, nil
	}
	return o.ordinaryDefineOwn(key, desc), nil
}

// arraySetLength implements ArraySetLength. Shrinking deletes index
// properties from the top down and stops at the first non-configurable
// index, leaving length at blocking index + 1 and reporting failure.
func (o *Object) arraySetLength(desc *Descriptor) (bool, error) {
	if desc.Value == nil {
		return o.ordinaryDefineOwn("length", desc), nil
	}
	number := ToNumber(desc.Value)
	newLen := ToUint32(number)
	if float64(newLen) != number {
		return false, ErrInvalidArrayLength
	}
	newLenDesc := *desc
	newLenDesc.Value = NewNumber(float64(newLen))
	oldLen := o.ArrayLength()
	if newLen >= oldLen {
		return o.ordinaryDefineOwn("length", &newLenDesc), nil
	}
	current := o.props["length"]
	if !current.Writable {
		return false, nil
	}
	newWritable := true
	if newLenDesc.Writable != nil && !*newLenDesc.Writable {
		// Defer clearing writable until the deletions are done; the
		// length updates during the shrink need a writable entry.
		newWritable = false
		newLenDesc.Writable = boolPtr(true)
	}
	if !o.ordinaryDefineOwn("length", &newLenDesc) {
		return false, nil
	}
	// The define stored a fresh property record; re-fetch it so the
	// fixups below land on the live entry.
	current = o.props["length"]
	// Delete from oldLen-1 downward, stopping at the first
	// non-configurable index.
	indices := o.sortedIndicesAtOrAbove(newLen)
	for i := len(indices) - 1; i >= 0; i-- {
		idx := indices[i]
		key := FormatNumber(float64(idx))
		if !o.Delete(key) {
			current.Value = NewNumber(float64(idx) + 1)
			if !newWritable {
				current.Writable = false
			}
			return false, nil
		}
		current.Value = NewNumber(float64(idx))
	}
	current.Value = NewNumber(float64(newLen))
	if !newWritable {
		current.Writable = false
	}
	return true, nil
}

func (o *Object) sortedIndicesAtOrAbove(bound uint32) []uint32 {
	var indices []uint32
	for key := range o.props {
		if idx, ok := ArrayIndex(key); ok && idx >= bound {
			indices = append(indices, idx)
		}
	}
	sortUint32(indices)
	return indices
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
