package typed

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/emberhq/ember/pkg/core"
)

// encode converts a typed value to raw field data by a JSON round trip, so
// the struct's json tags decide field names and omission.
func encode[T any](value T) (core.Data, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", value, err)
	}
	var data core.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("convert %T to field data: %w", value, err)
	}
	return data, nil
}

// decode converts raw field data back to the typed value. A declared field
// that cannot deserialize to its target type fails here rather than being
// silently coerced.
func decode[T any](data core.Data) (T, error) {
	var value T
	raw, err := json.Marshal(data)
	if err != nil {
		return value, fmt.Errorf("field data marshal: %w", err)
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("unmarshal into %T: %w", value, err)
	}
	return value, nil
}

// DefaultCollection derives a collection name from the type name, lower
// cased. A Schema built with an explicit name always takes precedence; this
// exists for the common case where the two coincide.
func DefaultCollection[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return ""
	}
	return strings.ToLower(t.Name())
}

// parseFieldName turns an update key into a dotted field path, using the
// same double-underscore separator as filter lookups ("specs__weight" ->
// "specs.weight"). Dotted input passes through unchanged.
func parseFieldName(name string) (string, error) {
	if name == "" {
		return "", &core.ValidationError{Reason: "empty update field name"}
	}
	path := strings.ReplaceAll(name, "__", ".")
	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return "", &core.ValidationError{Reason: fmt.Sprintf("malformed update field name %q", name)}
		}
	}
	return path, nil
}
