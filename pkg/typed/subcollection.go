package typed

import "github.com/emberhq/ember/pkg/core"

// Parent is anything that resolves to a concrete document path a
// subcollection can live under. *Model[T] implements it.
type Parent interface {
	DocumentPath() (string, error)
}

// Under scopes the manager beneath a parent document: every query, create
// and write on the returned manager is transparently prefixed with the
// parent's path. The parent must already be saved; a subcollection path
// needs a concrete parent segment, so an unsaved parent fails fast.
func (m *Manager[T]) Under(parent Parent) (*Manager[T], error) {
	path, err := parent.DocumentPath()
	if err != nil {
		return nil, err
	}
	return &Manager[T]{store: m.store, schema: m.schema, parent: path}, nil
}

// Subcollection builds a child manager scoped beneath a parent document,
// for the common case where child and parent are different types:
//
//	reviews, err := typed.Subcollection[Review](product, reviewSchema)
func Subcollection[C any](parent Parent, store core.Store, schema *core.Schema) (*Manager[C], error) {
	path, err := parent.DocumentPath()
	if err != nil {
		return nil, err
	}
	return &Manager[C]{store: store, schema: schema, parent: path}, nil
}
