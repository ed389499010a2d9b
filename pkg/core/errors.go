package core

import (
	"errors"
	"fmt"
)

// DoesNotExist reports that a point lookup or a single-result query matched
// no document. Callers are expected to catch it as normal control flow for
// existence checks.
type DoesNotExist struct {
	Collection string
	ID         string
	Filters    map[string]any
}

func (e *DoesNotExist) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: document %q does not exist", e.Collection, e.ID)
	}
	return fmt.Sprintf("%s: no document matches %v", e.Collection, e.Filters)
}

// MultipleObjectsFound reports that a single-result query matched more than
// one document. It indicates a non-unique filter.
type MultipleObjectsFound struct {
	Collection string
	Filters    map[string]any
}

func (e *MultipleObjectsFound) Error() string {
	return fmt.Sprintf("%s: multiple documents match %v", e.Collection, e.Filters)
}

// InvalidLookupError reports a malformed filter lookup. It is raised when the
// query is built, before any network access.
type InvalidLookupError struct {
	Lookup string
	Reason string
}

func (e *InvalidLookupError) Error() string {
	return fmt.Sprintf("invalid lookup %q: %s", e.Lookup, e.Reason)
}

// SchemaError reports a document that violates its declared schema, or an
// invalid schema declaration. Detected at construction time.
type SchemaError struct {
	Collection string
	Field      string
	Reason     string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema %s: field %q: %s", e.Collection, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema %s: %s", e.Collection, e.Reason)
}

// ValidationError reports a violated usage precondition, such as a cursor
// without an ordering or a subcollection accessed on an unsaved parent.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsDoesNotExist reports whether err is (or wraps) a DoesNotExist.
func IsDoesNotExist(err error) bool {
	var target *DoesNotExist
	return errors.As(err, &target)
}
