package typed

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/emberhq/ember/pkg/core"
)

// Query is an immutable-by-construction builder: every builder method clones
// the receiver and returns the clone, so partially configured queries can be
// shared and branched without aliasing. Nothing touches the network until
// the query is iterated or aggregated, and re-iterating re-issues the
// request against current store state.
type Query[T any] struct {
	mgr         *Manager[T]
	spec        core.QuerySpec
	cursorAt    any
	cursorAfter any
	filtersRepr map[string]any
	err         error
}

func newQuery[T any](m *Manager[T]) *Query[T] {
	return &Query[T]{
		mgr:  m,
		spec: core.QuerySpec{Collection: m.CollectionPath()},
	}
}

func (q *Query[T]) clone() *Query[T] {
	out := &Query[T]{
		mgr:         q.mgr,
		spec:        q.spec.Clone(),
		cursorAt:    q.cursorAt,
		cursorAfter: q.cursorAfter,
		err:         q.err,
	}
	if q.filtersRepr != nil {
		out.filtersRepr = make(map[string]any, len(q.filtersRepr))
		for k, v := range q.filtersRepr {
			out.filtersRepr[k] = v
		}
	}
	return out
}

// fail records the first construction error; later builder calls keep it.
func (q *Query[T]) fail(err error) *Query[T] {
	c := q.clone()
	if c.err == nil {
		c.err = err
	}
	return c
}

// Err reports the first error recorded while building the query, so
// construction mistakes can be caught before execution.
func (q *Query[T]) Err() error { return q.err }

// Filter appends one predicate. The lookup suffix selects the operator
// ("price__gt", "tags__contains", ...); no suffix means equality, and
// intermediate segments address into embedded documents.
func (q *Query[T]) Filter(lookup string, value any) *Query[T] {
	fieldPath, op, err := core.ParseLookup(lookup)
	if err != nil {
		return q.fail(err)
	}
	if err := core.CheckLookupField(q.mgr.schema, lookup, fieldPath); err != nil {
		return q.fail(err)
	}
	c := q.clone()
	c.spec.Filters = append(c.spec.Filters, core.Filter{FieldPath: fieldPath, Op: op, Value: value})
	if c.filtersRepr == nil {
		c.filtersRepr = make(map[string]any, 1)
	}
	c.filtersRepr[lookup] = value
	return c
}

// OrderBy appends ordering keys; a leading "-" means descending. Multiple
// calls compose into secondary sort keys.
func (q *Query[T]) OrderBy(fields ...string) *Query[T] {
	c := q.clone()
	for _, field := range fields {
		desc := false
		name := strings.TrimPrefix(field, "+")
		if after, ok := strings.CutPrefix(field, "-"); ok {
			desc = true
			name = after
		}
		path := strings.ReplaceAll(name, "__", ".")
		if err := core.CheckLookupField(q.mgr.schema, field, path); err != nil {
			return q.fail(err)
		}
		c.spec.Orders = append(c.spec.Orders, core.Order{FieldPath: path, Descending: desc})
	}
	return c
}

// Limit caps the number of results.
func (q *Query[T]) Limit(n int) *Query[T] {
	c := q.clone()
	c.spec.Limit = n
	return c
}

// Select restricts the fields returned by the store. Undeclared fields in
// the projection are rejected like filter fields.
func (q *Query[T]) Select(fields ...string) *Query[T] {
	c := q.clone()
	for _, field := range fields {
		path := strings.ReplaceAll(field, "__", ".")
		if err := core.CheckLookupField(q.mgr.schema, field, path); err != nil {
			return q.fail(err)
		}
		c.spec.Projection = append(c.spec.Projection, path)
	}
	return c
}

// StartAt resumes the query at the cursor position, inclusive. The cursor is
// either a saved model (its ordering-key field values are extracted) or a
// field-to-value map. Cursor positions are only defined relative to an
// ordering, so calling this before OrderBy is a usage error.
func (q *Query[T]) StartAt(cursor any) *Query[T] {
	if len(q.spec.Orders) == 0 {
		return q.fail(&core.ValidationError{Reason: "StartAt requires a prior OrderBy"})
	}
	c := q.clone()
	c.cursorAt = cursor
	return c
}

// StartAfter resumes the query just past the cursor position, exclusive.
// Same cursor and ordering rules as StartAt.
func (q *Query[T]) StartAfter(cursor any) *Query[T] {
	if len(q.spec.Orders) == 0 {
		return q.fail(&core.ValidationError{Reason: "StartAfter requires a prior OrderBy"})
	}
	c := q.clone()
	c.cursorAfter = cursor
	return c
}

// resolveSpec finalizes the spec for execution: cursors become positional
// value tuples aligned with the ordering keys.
func (q *Query[T]) resolveSpec() (core.QuerySpec, error) {
	if q.err != nil {
		return core.QuerySpec{}, q.err
	}
	spec := q.spec.Clone()
	if q.cursorAt != nil {
		values, err := q.cursorValues(q.cursorAt)
		if err != nil {
			return core.QuerySpec{}, err
		}
		spec.StartAt = values
	}
	if q.cursorAfter != nil {
		values, err := q.cursorValues(q.cursorAfter)
		if err != nil {
			return core.QuerySpec{}, err
		}
		spec.StartAfter = values
	}
	if err := spec.CheckCursor(); err != nil {
		return core.QuerySpec{}, err
	}
	return spec, nil
}

// cursorValues extracts the ordering-key tuple from a cursor.
func (q *Query[T]) cursorValues(cursor any) ([]any, error) {
	var data core.Data
	switch c := cursor.(type) {
	case *Model[T]:
		encoded, err := encode(c.Data)
		if err != nil {
			return nil, err
		}
		data = encoded
	case Model[T]:
		encoded, err := encode(c.Data)
		if err != nil {
			return nil, err
		}
		data = encoded
	case map[string]any:
		data = core.Data(c)
	case core.Data:
		data = c
	default:
		return nil, &core.ValidationError{Reason: fmt.Sprintf("cursor must be a model or a field map, not %T", cursor)}
	}

	values := make([]any, 0, len(q.spec.Orders))
	for _, o := range q.spec.Orders {
		v, ok := core.Resolve(data, o.FieldPath)
		if !ok {
			return nil, &core.ValidationError{Reason: fmt.Sprintf("cursor is missing ordering field %q", o.FieldPath)}
		}
		values = append(values, v)
	}
	return values, nil
}

// Stream executes the query lazily. Every range over the returned sequence
// re-issues the request, so results always reflect current store state; it
// never replays a cached page.
func (q *Query[T]) Stream(ctx context.Context) iter.Seq2[*Model[T], error] {
	return func(yield func(*Model[T], error) bool) {
		spec, err := q.resolveSpec()
		if err != nil {
			yield(nil, err)
			return
		}
		for doc, err := range q.mgr.store.Run(ctx, spec) {
			if err != nil {
				yield(nil, err)
				return
			}
			model, err := q.mgr.toModel(doc)
			if !yield(model, err) {
				return
			}
		}
	}
}

// All materializes every result.
func (q *Query[T]) All(ctx context.Context) ([]*Model[T], error) {
	var out []*Model[T]
	for model, err := range q.Stream(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, model)
	}
	return out, nil
}

// First returns the first result in query order, or DoesNotExist.
func (q *Query[T]) First(ctx context.Context) (*Model[T], error) {
	results, err := q.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, &core.DoesNotExist{Collection: q.mgr.CollectionPath(), Filters: q.filtersRepr}
	}
	return results[0], nil
}

// Get expects the query to match exactly one document. It fetches at most
// two results to distinguish none from many cheaply: zero results is
// DoesNotExist, more than one is MultipleObjectsFound.
func (q *Query[T]) Get(ctx context.Context) (*Model[T], error) {
	results, err := q.Limit(2).All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(results) {
	case 0:
		return nil, &core.DoesNotExist{Collection: q.mgr.CollectionPath(), Filters: q.filtersRepr}
	case 1:
		return results[0], nil
	default:
		return nil, &core.MultipleObjectsFound{Collection: q.mgr.CollectionPath(), Filters: q.filtersRepr}
	}
}

// Count runs an aggregation count without materializing documents.
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	spec, err := q.resolveSpec()
	if err != nil {
		return 0, err
	}
	return q.mgr.store.Count(ctx, spec)
}

// Sum aggregates a numeric field over the matched documents.
func (q *Query[T]) Sum(ctx context.Context, field string) (float64, error) {
	spec, err := q.resolveSpec()
	if err != nil {
		return 0, err
	}
	return q.mgr.store.Sum(ctx, spec, strings.ReplaceAll(field, "__", "."))
}

// Avg aggregates the mean of a numeric field over the matched documents.
func (q *Query[T]) Avg(ctx context.Context, field string) (float64, error) {
	spec, err := q.resolveSpec()
	if err != nil {
		return 0, err
	}
	return q.mgr.store.Avg(ctx, spec, strings.ReplaceAll(field, "__", "."))
}

// Paginate slices the query into fixed-size pages.
func (q *Query[T]) Paginate(perPage int) *Paginator[T] {
	return &Paginator[T]{query: q, perPage: perPage}
}

// Event is a typed change notification from Watch. Delete events carry only
// the ID. A document that cannot decode into T is delivered with Err set and
// a nil Model rather than being dropped.
type Event[T any] struct {
	Type  core.EventType
	Model *Model[T]
	Err   error
}

// Watch streams change events for the query until ctx is cancelled. The
// store must support watching.
func (q *Query[T]) Watch(ctx context.Context) (<-chan Event[T], error) {
	watchable, ok := q.mgr.store.(core.Watchable)
	if !ok {
		return nil, &core.ValidationError{Reason: "store does not support watching"}
	}
	spec, err := q.resolveSpec()
	if err != nil {
		return nil, err
	}
	raw, err := watchable.Watch(ctx, spec)
	if err != nil {
		return nil, err
	}

	events := make(chan Event[T])
	go func() {
		defer close(events)
		for ev := range raw {
			typedEv := Event[T]{Type: ev.Type}
			if ev.Type == core.EventDelete {
				typedEv.Model = &Model[T]{ID: ev.Doc.ID, mgr: q.mgr}
			} else {
				model, err := q.mgr.toModel(ev.Doc)
				if err != nil {
					typedEv.Err = err
				} else {
					typedEv.Model = model
				}
			}
			select {
			case events <- typedEv:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
