package core

import (
	"fmt"
	"math"
	"time"
)

// Kind classifies the value a field may hold.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindTime
	KindBytes
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	case KindBytes:
		return "bytes"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "any"
	}
}

// FieldSpec describes one declared field: its name, kind, optional default
// factory, and whether the store should skip indexing it.
type FieldSpec struct {
	Name    string
	Kind    Kind
	Default func() any
	NoIndex bool
}

// FieldOption customizes a field declaration.
type FieldOption func(*FieldSpec)

// WithDefault sets a default factory, evaluated at construction time for
// each document so that mutable defaults are never shared.
func WithDefault(factory func() any) FieldOption {
	return func(f *FieldSpec) { f.Default = factory }
}

// NoIndex excludes the field from the store's automatic indexing.
func NoIndex() FieldOption {
	return func(f *FieldSpec) { f.NoIndex = true }
}

// Schema is the immutable field descriptor of one collection. It is built
// once per document type via NewSchema and inspected by the manager and
// query layers.
type Schema struct {
	collection string
	fields     map[string]FieldSpec
	order      []string
}

// SchemaBuilder accumulates field declarations. Build freezes them into a
// Schema.
type SchemaBuilder struct {
	collection string
	fields     []FieldSpec
	err        error
}

// NewSchema starts a schema declaration for the named collection.
func NewSchema(collection string) *SchemaBuilder {
	return &SchemaBuilder{collection: collection}
}

// Field declares a persisted field.
func (b *SchemaBuilder) Field(name string, kind Kind, opts ...FieldOption) *SchemaBuilder {
	spec := FieldSpec{Name: name, Kind: kind}
	for _, opt := range opts {
		opt(&spec)
	}
	b.fields = append(b.fields, spec)
	return b
}

// Build validates the declaration and returns the frozen schema.
func (b *SchemaBuilder) Build() (*Schema, error) {
	if b.collection == "" {
		return nil, &SchemaError{Reason: "collection name is required"}
	}
	s := &Schema{
		collection: b.collection,
		fields:     make(map[string]FieldSpec, len(b.fields)),
	}
	for _, f := range b.fields {
		if f.Name == "" {
			return nil, &SchemaError{Collection: b.collection, Reason: "field name is required"}
		}
		if f.Name == "id" {
			return nil, &SchemaError{Collection: b.collection, Field: f.Name, Reason: "the primary key is implicit and must not be declared"}
		}
		if _, dup := s.fields[f.Name]; dup {
			return nil, &SchemaError{Collection: b.collection, Field: f.Name, Reason: "declared twice"}
		}
		s.fields[f.Name] = f
		s.order = append(s.order, f.Name)
	}
	return s, nil
}

// MustBuild is Build for package-level schema variables.
func (b *SchemaBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Collection returns the collection name the schema binds to.
func (s *Schema) Collection() string { return s.collection }

// FieldNames returns the declared field names in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Spec returns the declaration of one field.
func (s *Schema) Spec(name string) (FieldSpec, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// NoIndexFields returns the names of fields excluded from indexing, as hints
// for the store layer.
func (s *Schema) NoIndexFields() []string {
	var out []string
	for _, name := range s.order {
		if s.fields[name].NoIndex {
			out = append(out, name)
		}
	}
	return out
}

// Validate checks raw field data against the schema. Undeclared fields and
// kind mismatches are rejected with a SchemaError. Transform markers are
// accepted for any declared field; the store applies them server-side.
func (s *Schema) Validate(data Data) error {
	for name, value := range data {
		spec, ok := s.fields[name]
		if !ok {
			return &SchemaError{Collection: s.collection, Field: name, Reason: "not declared in schema"}
		}
		if IsTransform(value) {
			continue
		}
		if value == nil {
			continue
		}
		if !kindMatches(spec.Kind, value) {
			return &SchemaError{
				Collection: s.collection,
				Field:      name,
				Reason:     fmt.Sprintf("value of type %T does not match declared kind %s", value, spec.Kind),
			}
		}
	}
	return nil
}

// ApplyDefaults returns a copy of data with default factories evaluated for
// every declared field that is absent.
func (s *Schema) ApplyDefaults(data Data) Data {
	out := make(Data, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, name := range s.order {
		spec := s.fields[name]
		if spec.Default == nil {
			continue
		}
		if _, present := out[name]; !present {
			out[name] = spec.Default()
		}
	}
	return out
}

// kindMatches is deliberately permissive about numeric representations:
// JSON decoding yields float64 for every number and RFC 3339 strings for
// timestamps, both of which must round-trip cleanly.
func kindMatches(kind Kind, value any) bool {
	switch kind {
	case KindAny:
		return true
	case KindString:
		_, ok := value.(string)
		return ok
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindInt:
		switch n := value.(type) {
		case int, int32, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case KindFloat:
		switch value.(type) {
		case float32, float64, int, int32, int64:
			return true
		}
		return false
	case KindTime:
		switch v := value.(type) {
		case time.Time:
			return true
		case string:
			_, err := time.Parse(time.RFC3339, v)
			return err == nil
		}
		return false
	case KindBytes:
		_, ok := value.([]byte)
		return ok
	case KindMap:
		switch value.(type) {
		case map[string]any, Data:
			return true
		}
		return false
	case KindList:
		switch value.(type) {
		case []any, []string, []int, []float64:
			return true
		}
		return false
	}
	return false
}
