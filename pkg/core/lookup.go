package core

import "strings"

// Operator is the typed form of a filter lookup suffix.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreater
	OpGreaterEq
	OpLess
	OpLessEq
	OpIn
	OpNotIn
	OpContains
	OpContainsAny
	OpStartsWith
)

func (op Operator) String() string {
	switch op {
	case OpEqual:
		return "=="
	case OpNotEqual:
		return "!="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpIn:
		return "in"
	case OpNotIn:
		return "not-in"
	case OpContains:
		return "array-contains"
	case OpContainsAny:
		return "array-contains-any"
	case OpStartsWith:
		return "starts-with"
	default:
		return "?"
	}
}

// lookupSeparator splits the field path from the operator suffix, and nested
// field path segments from each other.
const lookupSeparator = "__"

var lookupOperators = map[string]Operator{
	"eq":           OpEqual,
	"ne":           OpNotEqual,
	"gt":           OpGreater,
	"gte":          OpGreaterEq,
	"lt":           OpLess,
	"lte":          OpLessEq,
	"in":           OpIn,
	"not_in":       OpNotIn,
	"contains":     OpContains,
	"contains_any": OpContainsAny,
	"startswith":   OpStartsWith,
}

// ParseLookup decomposes a filter lookup such as "price__gt" into a dotted
// field path and an operator. A lookup without a recognized suffix means
// equality; intermediate segments address into embedded documents
// ("specs__weight__gt" -> "specs.weight" >).
func ParseLookup(lookup string) (fieldPath string, op Operator, err error) {
	if lookup == "" {
		return "", OpEqual, &InvalidLookupError{Lookup: lookup, Reason: "empty lookup"}
	}
	parts := strings.Split(lookup, lookupSeparator)
	op = OpEqual
	if len(parts) > 1 {
		if known, ok := lookupOperators[parts[len(parts)-1]]; ok {
			op = known
			parts = parts[:len(parts)-1]
		}
	}
	for _, p := range parts {
		if p == "" {
			return "", OpEqual, &InvalidLookupError{Lookup: lookup, Reason: "empty field segment"}
		}
	}
	return strings.Join(parts, "."), op, nil
}

// CheckLookupField verifies the root segment of a parsed field path against
// a schema: the field must be declared, and addressing into it is only
// allowed for map-shaped fields. This is what turns a typo'd operator suffix
// ("price__banana") into an InvalidLookupError at build time instead of a
// silent nested-path equality filter.
func CheckLookupField(s *Schema, lookup, fieldPath string) error {
	if s == nil {
		return nil
	}
	root, rest, nested := strings.Cut(fieldPath, ".")
	spec, ok := s.Spec(root)
	if !ok {
		return &InvalidLookupError{Lookup: lookup, Reason: "field " + root + " is not declared in schema " + s.Collection()}
	}
	if nested && rest != "" && spec.Kind != KindMap && spec.Kind != KindAny {
		return &InvalidLookupError{
			Lookup: lookup,
			Reason: "cannot address into non-map field " + root + " (unknown operator suffix?)",
		}
	}
	return nil
}
