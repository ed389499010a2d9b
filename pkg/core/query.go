package core

// Filter is one predicate of a query: field path, operator, comparison value.
type Filter struct {
	FieldPath string
	Op        Operator
	Value     any
}

// Order is one ordering key of a query.
type Order struct {
	FieldPath  string
	Descending bool
}

// QuerySpec is the store-agnostic description of a collection query. It is a
// value type: builder layers clone it on every change so that partially
// configured queries can be shared without aliasing.
type QuerySpec struct {
	// Collection is the slash-separated collection path, including any
	// parent document segments for subcollections.
	Collection string

	Filters []Filter
	Orders  []Order

	// Limit of 0 means no limit.
	Limit int

	// Cursor values are positional, aligned with Orders. A non-nil slice
	// (even empty) marks the cursor as set.
	StartAt    []any
	StartAfter []any

	// Projection restricts returned fields. Empty means all fields.
	Projection []string
}

// Clone returns a copy whose slices are independent of the receiver.
func (q QuerySpec) Clone() QuerySpec {
	out := q
	out.Filters = append([]Filter(nil), q.Filters...)
	out.Orders = append([]Order(nil), q.Orders...)
	if q.StartAt != nil {
		out.StartAt = append([]any(nil), q.StartAt...)
	}
	if q.StartAfter != nil {
		out.StartAfter = append([]any(nil), q.StartAfter...)
	}
	out.Projection = append([]string(nil), q.Projection...)
	return out
}

// CheckCursor enforces the positional-cursor precondition: start-at and
// start-after are only well defined relative to an explicit ordering.
func (q QuerySpec) CheckCursor() error {
	if (q.StartAt != nil || q.StartAfter != nil) && len(q.Orders) == 0 {
		return &ValidationError{Reason: "a cursor requires at least one order-by clause"}
	}
	return nil
}
