package typed

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/emberhq/ember/pkg/core"
)

// Model is one schema-typed document: the typed field values plus the
// primary key and a reference back to the manager that produced it. A model
// with an empty ID is unsaved; once Save assigns the key it never changes.
type Model[T any] struct {
	ID   string
	Data T

	mgr *Manager[T]
}

// Manager returns the manager the model is attached to, or nil for a model
// built by hand rather than through a manager.
func (m *Model[T]) Manager() *Manager[T] { return m.mgr }

// DocumentPath returns the full path of the persisted document. An unsaved
// model has no path.
func (m *Model[T]) DocumentPath() (string, error) {
	if m.mgr == nil {
		return "", &core.ValidationError{Reason: "model is detached (no manager)"}
	}
	if m.ID == "" {
		return "", &core.ValidationError{Reason: "document has no primary key yet; save it first"}
	}
	return m.mgr.CollectionPath() + "/" + m.ID, nil
}

// Save writes the full field set, overwriting any existing document at this
// primary key (upsert). If the key is unset a new one is allocated and
// populated onto the model before the write, so saves can participate in
// atomic batches. Exactly one round trip, or one enqueued batch operation.
func (m *Model[T]) Save(ctx context.Context) error {
	if m.mgr == nil {
		return &core.ValidationError{Reason: "model is detached (no manager)"}
	}
	data, err := encode(m.Data)
	if err != nil {
		return err
	}
	data = m.mgr.schema.ApplyDefaults(data)
	if core.ContainsTransform(data) {
		return &core.ValidationError{Reason: "transforms are not allowed in a full save; use Update"}
	}
	if err := m.mgr.schema.Validate(data); err != nil {
		return err
	}

	if m.ID == "" {
		m.ID = m.mgr.store.NewID(m.mgr.CollectionPath())
	}
	if batch, active := core.BatchFrom(ctx); active {
		batch.Set(m.mgr.CollectionPath(), m.ID, data)
		return nil
	}
	return m.mgr.store.Set(ctx, m.mgr.CollectionPath(), m.ID, data)
}

// Update writes only the named fields, leaving the rest untouched. Values
// may be transform markers (core.Increment, core.ArrayUnion,
// core.ArrayRemove), which the store applies server-side. The local struct
// is NOT repopulated; call Refresh to observe the stored result. Fails with
// DoesNotExist if the document is gone.
func (m *Model[T]) Update(ctx context.Context, updates core.Updates) error {
	if m.mgr == nil {
		return &core.ValidationError{Reason: "model is detached (no manager)"}
	}
	if m.ID == "" {
		return &core.ValidationError{Reason: "cannot update a document without a primary key"}
	}
	instructions, err := m.mgr.buildUpdates(updates)
	if err != nil {
		return err
	}
	if batch, active := core.BatchFrom(ctx); active {
		batch.Update(m.mgr.CollectionPath(), m.ID, instructions)
		return nil
	}
	return m.mgr.store.Update(ctx, m.mgr.CollectionPath(), m.ID, instructions)
}

// Refresh re-reads the document by primary key and repopulates the typed
// fields in place. Fails with DoesNotExist if it has since been deleted.
func (m *Model[T]) Refresh(ctx context.Context) error {
	if m.mgr == nil {
		return &core.ValidationError{Reason: "model is detached (no manager)"}
	}
	if m.ID == "" {
		return &core.ValidationError{Reason: "cannot refresh a document without a primary key"}
	}
	doc, err := m.mgr.store.Get(ctx, m.mgr.CollectionPath(), m.ID)
	if err != nil {
		return err
	}
	data, err := decode[T](doc.Data)
	if err != nil {
		return err
	}
	m.Data = data
	return nil
}

// Delete removes the document by primary key. The in-memory model remains
// but is stale; a second Delete fails with DoesNotExist.
func (m *Model[T]) Delete(ctx context.Context) error {
	if m.mgr == nil {
		return &core.ValidationError{Reason: "model is detached (no manager)"}
	}
	if m.ID == "" {
		return &core.ValidationError{Reason: "cannot delete a document without a primary key"}
	}
	return m.mgr.Delete(ctx, m.ID)
}

// buildUpdates converts named updates into ordered store instructions,
// validating field names against the schema. Field names are sorted so the
// serialized form is deterministic.
func (m *Manager[T]) buildUpdates(updates core.Updates) ([]core.Update, error) {
	if len(updates) == 0 {
		return nil, &core.ValidationError{Reason: "update requires at least one field"}
	}
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]core.Update, 0, len(names))
	for _, name := range names {
		path, err := parseFieldName(name)
		if err != nil {
			return nil, err
		}
		root, _, _ := strings.Cut(path, ".")
		if _, declared := m.schema.Spec(root); !declared {
			return nil, &core.SchemaError{Collection: m.schema.Collection(), Field: root, Reason: "not declared in schema"}
		}
		value := updates[name]
		if inc, ok := value.(core.IncrementOp); ok {
			// Caught here so a bad delta never reaches a batch commit.
			switch inc.By.(type) {
			case int, int32, int64, float32, float64:
			default:
				return nil, &core.ValidationError{Reason: fmt.Sprintf("increment delta for %q must be numeric, not %T", name, inc.By)}
			}
		}
		if !strings.Contains(path, ".") && !core.IsTransform(value) {
			if err := m.schema.Validate(core.Data{path: value}); err != nil {
				return nil, err
			}
		}
		out = append(out, core.Update{FieldPath: path, Value: value})
	}
	return out, nil
}
