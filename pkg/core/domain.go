// Package core defines the storage-agnostic domain: documents, schemas,
// filter lookups, query specifications, transforms and the Store contract
// the adapters implement. It has no dependency on any concrete backend.
package core

import "strings"

// Data represents the raw field values of a document as stored.
type Data map[string]any

// Document is the central entity of the domain.
// It represents one persisted record identified by an ID within a collection.
// The collection it belongs to is carried alongside, as a slash-separated
// path ("products", or "products/123/reviews" for a subcollection).
type Document struct {
	Collection string
	ID         string
	Data       Data
}

// Clone returns a shallow copy of the document with its own Data map.
func (d Document) Clone() Document {
	data := make(Data, len(d.Data))
	for k, v := range d.Data {
		data[k] = v
	}
	return Document{Collection: d.Collection, ID: d.ID, Data: data}
}

// Resolve walks a dotted field path through nested maps and reports whether
// the full path exists.
func Resolve(data Data, fieldPath string) (any, bool) {
	var current any = map[string]any(data)
	for segment := range strings.SplitSeq(fieldPath, ".") {
		var m map[string]any
		switch v := current.(type) {
		case map[string]any:
			m = v
		case Data:
			m = v
		default:
			return nil, false
		}
		next, ok := m[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// EventType represents the type of change observed on a collection.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a document matched by a watched query.
type Event struct {
	Type EventType
	Doc  Document
}
