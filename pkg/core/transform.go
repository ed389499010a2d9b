package core

// Transform is a field-level atomic operation marker. It is not resolved
// client-side: the write-serialization step emits the store's native
// transform instruction so the delta is applied against the current stored
// value. Transforms are only valid inside field-subset updates; a full
// overwrite has no existing value to transform.
type Transform interface {
	isTransform()
}

// IncrementOp adds a numeric delta to the stored value.
type IncrementOp struct {
	By any
}

// ArrayUnionOp appends the given values to a stored array, skipping values
// already present.
type ArrayUnionOp struct {
	Values []any
}

// ArrayRemoveOp removes all occurrences of the given values from a stored
// array.
type ArrayRemoveOp struct {
	Values []any
}

func (IncrementOp) isTransform()   {}
func (ArrayUnionOp) isTransform()  {}
func (ArrayRemoveOp) isTransform() {}

// Increment builds an increment transform. By must be an integer or float.
func Increment(by any) IncrementOp {
	return IncrementOp{By: by}
}

// ArrayUnion builds an array-union transform.
func ArrayUnion(values ...any) ArrayUnionOp {
	return ArrayUnionOp{Values: values}
}

// ArrayRemove builds an array-remove transform.
func ArrayRemove(values ...any) ArrayRemoveOp {
	return ArrayRemoveOp{Values: values}
}

// IsTransform reports whether v is a transform marker.
func IsTransform(v any) bool {
	_, ok := v.(Transform)
	return ok
}

// ContainsTransform reports whether any value in data is a transform marker.
// Used to reject transforms inside full-overwrite saves.
func ContainsTransform(data Data) bool {
	for _, v := range data {
		if IsTransform(v) {
			return true
		}
	}
	return false
}

// Update is one field-subset write instruction: set the field at FieldPath
// to Value, or apply it as a transform if Value is a Transform marker.
type Update struct {
	FieldPath string
	Value     any
}

// Updates is the named-field form accepted by the typed layer, converted to
// ordered Update instructions at serialization time.
type Updates map[string]any
