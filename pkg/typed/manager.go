package typed

import (
	"context"

	"github.com/emberhq/ember/pkg/core"
)

// Manager is the stateless entry point bound to one document type. It has no
// mutable state of its own: every call hands back a fresh query or model, so
// a manager can be shared freely across goroutines.
type Manager[T any] struct {
	store  core.Store
	schema *core.Schema
	parent string // parent document path for subcollections, "" at the root
}

// NewManager binds a document type to its schema and a store.
func NewManager[T any](store core.Store, schema *core.Schema) *Manager[T] {
	return &Manager[T]{store: store, schema: schema}
}

// Schema returns the schema the manager is bound to.
func (m *Manager[T]) Schema() *core.Schema { return m.schema }

// Store returns the underlying store.
func (m *Manager[T]) Store() core.Store { return m.store }

// CollectionPath returns the full slash-separated collection path, including
// the parent document path for subcollection managers.
func (m *Manager[T]) CollectionPath() string {
	if m.parent == "" {
		return m.schema.Collection()
	}
	return m.parent + "/" + m.schema.Collection()
}

// New returns an unsaved model bound to this manager. The ID stays empty
// until Save assigns one.
func (m *Manager[T]) New(data T) *Model[T] {
	return &Model[T]{Data: data, mgr: m}
}

// Get performs a point lookup by primary key.
func (m *Manager[T]) Get(ctx context.Context, id string) (*Model[T], error) {
	if id == "" {
		return nil, &core.ValidationError{Reason: "get requires a primary key"}
	}
	doc, err := m.store.Get(ctx, m.CollectionPath(), id)
	if err != nil {
		return nil, err
	}
	return m.toModel(doc)
}

// Create constructs a model from data and saves it immediately, letting the
// store assign the primary key.
func (m *Manager[T]) Create(ctx context.Context, data T) (*Model[T], error) {
	model := m.New(data)
	if err := model.Save(ctx); err != nil {
		return nil, err
	}
	return model, nil
}

// Delete removes a document by primary key without fetching it first.
// Inside an atomic scope the delete is enqueued instead.
func (m *Manager[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &core.ValidationError{Reason: "delete requires a primary key"}
	}
	if batch, active := core.BatchFrom(ctx); active {
		batch.Delete(m.CollectionPath(), id)
		return nil
	}
	return m.store.Delete(ctx, m.CollectionPath(), id)
}

// All returns the unfiltered collection query.
func (m *Manager[T]) All() *Query[T] {
	return newQuery(m)
}

// Filter returns a query with one predicate appended. The lookup carries the
// operator as a suffix ("price__gt"); no suffix means equality.
func (m *Manager[T]) Filter(lookup string, value any) *Query[T] {
	return newQuery(m).Filter(lookup, value)
}

// OrderBy returns a query ordered by the given fields; a leading "-" means
// descending.
func (m *Manager[T]) OrderBy(fields ...string) *Query[T] {
	return newQuery(m).OrderBy(fields...)
}

// Limit returns a query limited to n results.
func (m *Manager[T]) Limit(n int) *Query[T] {
	return newQuery(m).Limit(n)
}

// Count counts the whole collection without materializing documents.
func (m *Manager[T]) Count(ctx context.Context) (int64, error) {
	return m.All().Count(ctx)
}

// toModel maps a raw store document onto a typed model attached to this
// manager.
func (m *Manager[T]) toModel(doc core.Document) (*Model[T], error) {
	data, err := decode[T](doc.Data)
	if err != nil {
		return nil, err
	}
	return &Model[T]{ID: doc.ID, Data: data, mgr: m}, nil
}
