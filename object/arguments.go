package object

// argumentsDefineOwn implements the mapped arguments [[DefineOwnProperty]]
// override. The parameter map aliases integer-indexed properties to the
// function environment's parameter bindings; redefining a mapped property
// as an accessor or as non-writable severs the alias.
func (o *Object) argumentsDefineOwn(key string, desc *Descriptor) bool {
	pb, mapped := o.paramMap[key]
	applied := desc
	if mapped && desc.IsData() && desc.Value == nil && desc.Writable != nil && !*desc.Writable {
		// Snapshot the live binding value into the property before the
		// alias is severed below.
		if v, ok := pb.env.GetBound(pb.name); ok {
			c := *desc
			c.Value = v
			applied = &c
		}
	}
	if !o.ordinaryDefineOwn(key, applied) {
		return false
	}
	if mapped {
		if desc.IsAccessor() {
			delete(o.paramMap, key)
		} else {
			if desc.Value != nil {
				pb.env.SetBound(pb.name, desc.Value)
			}
			if desc.Writable != nil && !*desc.Writable {
				delete(o.paramMap, key)
			}
		}
	}
	return true
}

// IsMapped reports whether the given arguments property is still aliased
// to a parameter binding.
func (o *Object) IsMapped(key string) bool {
	_, ok := o.paramMap[key]
	return ok
}

// SetMappedValue writes through the parameter alias for key, if any,
// returning false when the key is not mapped.
func (o *Object) SetMappedValue(key string, v Value) bool {
	pb, ok := o.paramMap[key]
	if !ok {
		return false
	}
	return pb.env.SetBound(pb.name, v)
}
