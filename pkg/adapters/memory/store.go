// Package memory implements core.Store entirely in process memory.
//
// It exists for tests and local development: the same manager, query and
// atomic-batch semantics as the Firestore adapter, with no project, no
// credentials and no network. Consistency of aggregations is whatever a
// single mutex buys; it is not a faithful emulator of Firestore's index
// behavior.
package memory

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/emberhq/ember/pkg/core"
)

// Store is an in-memory core.Store. The zero value is not usable; call New.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]core.Data
	logger      *slog.Logger

	watchMu  sync.Mutex
	watchers []*watcher
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]core.Data),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID allocates a random document ID.
func (s *Store) NewID(collection string) string {
	return uuid.NewString()
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.collections[collection][id]
	if !ok {
		return core.Document{}, &core.DoesNotExist{Collection: collection, ID: id}
	}
	return core.Document{Collection: collection, ID: id, Data: cloneData(data)}, nil
}

// Set implements core.Store (upsert).
func (s *Store) Set(ctx context.Context, collection, id string, data core.Data) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	eventType := s.setLocked(collection, id, data)
	doc := core.Document{Collection: collection, ID: id, Data: cloneData(s.collections[collection][id])}
	s.mu.Unlock()

	s.notify(core.Event{Type: eventType, Doc: doc})
	s.logger.Debug("memory: set", "collection", collection, "id", id)
	return nil
}

// Update implements core.Store (field-subset write, target must exist).
func (s *Store) Update(ctx context.Context, collection, id string, updates []core.Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.updateLocked(collection, id, updates)
	var doc core.Document
	if err == nil {
		doc = core.Document{Collection: collection, ID: id, Data: cloneData(s.collections[collection][id])}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(core.Event{Type: core.EventModify, Doc: doc})
	s.logger.Debug("memory: update", "collection", collection, "id", id, "fields", len(updates))
	return nil
}

// Delete implements core.Store (target must exist).
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.deleteLocked(collection, id)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(core.Event{Type: core.EventDelete, Doc: core.Document{Collection: collection, ID: id}})
	s.logger.Debug("memory: delete", "collection", collection, "id", id)
	return nil
}

// Run implements core.Store. The returned sequence re-evaluates the query
// against current store state every time it is ranged over.
func (s *Store) Run(ctx context.Context, spec core.QuerySpec) iter.Seq2[core.Document, error] {
	return func(yield func(core.Document, error) bool) {
		if err := spec.CheckCursor(); err != nil {
			yield(core.Document{}, err)
			return
		}
		docs, err := s.evaluate(spec)
		if err != nil {
			yield(core.Document{}, err)
			return
		}
		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				yield(core.Document{}, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Count implements core.Store.
func (s *Store) Count(ctx context.Context, spec core.QuerySpec) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	docs, err := s.evaluate(spec)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Sum implements core.Store.
func (s *Store) Sum(ctx context.Context, spec core.QuerySpec, fieldPath string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	docs, err := s.evaluate(spec)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, doc := range docs {
		v, ok := core.Resolve(doc.Data, fieldPath)
		if !ok {
			continue
		}
		n, ok := asFloat(v)
		if !ok {
			return 0, fmt.Errorf("memory: field %q is not numeric", fieldPath)
		}
		total += n
	}
	return total, nil
}

// Avg implements core.Store.
func (s *Store) Avg(ctx context.Context, spec core.QuerySpec, fieldPath string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	docs, err := s.evaluate(spec)
	if err != nil {
		return 0, err
	}
	var total float64
	var n int
	for _, doc := range docs {
		v, ok := core.Resolve(doc.Data, fieldPath)
		if !ok {
			continue
		}
		f, ok := asFloat(v)
		if !ok {
			return 0, fmt.Errorf("memory: field %q is not numeric", fieldPath)
		}
		total += f
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return total / float64(n), nil
}

// Close implements core.Store.
func (s *Store) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, w := range s.watchers {
		w.close()
	}
	s.watchers = nil
	return nil
}

// setLocked upserts and reports whether the write was a create or a modify.
func (s *Store) setLocked(collection, id string, data core.Data) core.EventType {
	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]core.Data)
		s.collections[collection] = col
	}
	eventType := core.EventCreate
	if _, exists := col[id]; exists {
		eventType = core.EventModify
	}
	col[id] = cloneData(data)
	return eventType
}

func (s *Store) updateLocked(collection, id string, updates []core.Update) error {
	data, ok := s.collections[collection][id]
	if !ok {
		return &core.DoesNotExist{Collection: collection, ID: id}
	}
	for _, u := range updates {
		if err := applyUpdate(data, u); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) deleteLocked(collection, id string) error {
	col := s.collections[collection]
	if _, ok := col[id]; !ok {
		return &core.DoesNotExist{Collection: collection, ID: id}
	}
	delete(col, id)
	return nil
}

// cloneData deep-copies field data. Clones must not alias stored maps at any
// depth: staged batch mutations and returned documents both rely on it.
func cloneData(data core.Data) core.Data {
	out := make(core.Data, len(data))
	for k, v := range data {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case core.Data:
		return map[string]any(cloneData(vv))
	case map[string]any:
		nested := make(map[string]any, len(vv))
		for k, nv := range vv {
			nested[k] = cloneValue(nv)
		}
		return nested
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
