package object

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Check sweeps the store and reports every invariant violation it finds,
// aggregated into one error. It verifies descriptor completeness (a
// property is exactly one of data or accessor), the Array length
// invariant, prototype chain acyclicity, and property table consistency.
func (s *Store) Check() error {
	var result *multierror.Error
	for _, o := range s.objects {
		if err := o.check(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (o *Object) check() error {
	var result *multierror.Error
	for key, p := range o.props {
		if p.IsAccessor() && p.Value != nil {
			result = multierror.Append(result, fmt.Errorf(
				"object %d: property %q has both value and accessor fields", o.handle, key))
		}
		found := false
		for _, k := range o.keys {
			if k == key {
				found = true
				break
			}
		}
		if !found {
			result = multierror.Append(result, fmt.Errorf(
				"object %d: property %q missing from key order", o.handle, key))
		}
	}
	if len(o.keys) != len(o.props) {
		result = multierror.Append(result, fmt.Errorf(
			"object %d: key order has %d entries for %d properties",
			o.handle, len(o.keys), len(o.props)))
	}
	if o.kind == ArrayKind {
		if err := o.checkArray(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	slow, fast := o.proto, o.proto
	for fast != nil {
		fast = fast.proto
		if fast == nil {
			break
		}
		fast = fast.proto
		slow = slow.proto
		if slow != nil && slow == fast {
			result = multierror.Append(result, fmt.Errorf(
				"object %d: prototype chain contains a cycle", o.handle))
			break
		}
	}
	return result.ErrorOrNil()
}

func (o *Object) checkArray() error {
	lengthProp, ok := o.props["length"]
	if !ok {
		return fmt.Errorf("array %d: missing length property", o.handle)
	}
	n, ok := lengthProp.Value.(*Number)
	if !ok {
		return fmt.Errorf("array %d: length is not a number", o.handle)
	}
	length := n.Value()
	if length < 0 || length != float64(uint32(length)) {
		return fmt.Errorf("array %d: length %v is not a uint32", o.handle, length)
	}
	var result *multierror.Error
	for key := range o.props {
		if idx, isIndex := ArrayIndex(key); isIndex && float64(idx) >= length {
			result = multierror.Append(result, fmt.Errorf(
				"array %d: index %d at or beyond length %v", o.handle, idx, length))
		}
	}
	return result.ErrorOrNil()
}
