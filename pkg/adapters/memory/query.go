package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emberhq/ember/pkg/core"
)

// evaluate materializes the matching documents under the read lock, fully
// ordered, cursor-advanced, limited and projected.
func (s *Store) evaluate(spec core.QuerySpec) ([]core.Document, error) {
	s.mu.RLock()
	var matched []core.Document
	for id, data := range s.collections[spec.Collection] {
		ok, err := matchesAll(data, spec.Filters)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		if ok {
			matched = append(matched, core.Document{Collection: spec.Collection, ID: id, Data: cloneData(data)})
		}
	}
	s.mu.RUnlock()

	sortDocs(matched, spec.Orders)

	if spec.StartAt != nil {
		matched = advanceCursor(matched, spec.Orders, spec.StartAt, true)
	}
	if spec.StartAfter != nil {
		matched = advanceCursor(matched, spec.Orders, spec.StartAfter, false)
	}

	if spec.Limit > 0 && len(matched) > spec.Limit {
		matched = matched[:spec.Limit]
	}

	if len(spec.Projection) > 0 {
		for i, doc := range matched {
			projected := make(core.Data, len(spec.Projection))
			for _, field := range spec.Projection {
				if v, ok := core.Resolve(doc.Data, field); ok {
					projected[field] = v
				}
			}
			matched[i].Data = projected
		}
	}
	return matched, nil
}

func matchesAll(data core.Data, filters []core.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matches(data, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matches(data core.Data, f core.Filter) (bool, error) {
	value, present := core.Resolve(data, f.FieldPath)

	switch f.Op {
	case core.OpEqual:
		return present && compare(value, f.Value) == 0, nil
	case core.OpNotEqual:
		// Missing fields never match inequality filters, mirroring
		// Firestore's treatment of absent properties.
		return present && compare(value, f.Value) != 0, nil
	case core.OpGreater:
		return present && comparable2(value, f.Value) && compare(value, f.Value) > 0, nil
	case core.OpGreaterEq:
		return present && comparable2(value, f.Value) && compare(value, f.Value) >= 0, nil
	case core.OpLess:
		return present && comparable2(value, f.Value) && compare(value, f.Value) < 0, nil
	case core.OpLessEq:
		return present && comparable2(value, f.Value) && compare(value, f.Value) <= 0, nil
	case core.OpIn:
		if !present {
			return false, nil
		}
		for _, candidate := range toSlice(f.Value) {
			if compare(value, candidate) == 0 {
				return true, nil
			}
		}
		return false, nil
	case core.OpNotIn:
		if !present {
			return false, nil
		}
		for _, candidate := range toSlice(f.Value) {
			if compare(value, candidate) == 0 {
				return false, nil
			}
		}
		return true, nil
	case core.OpContains:
		for _, member := range toSlice(value) {
			if compare(member, f.Value) == 0 {
				return true, nil
			}
		}
		return false, nil
	case core.OpContainsAny:
		for _, member := range toSlice(value) {
			for _, candidate := range toSlice(f.Value) {
				if compare(member, candidate) == 0 {
					return true, nil
				}
			}
		}
		return false, nil
	case core.OpStartsWith:
		str, okV := value.(string)
		prefix, okP := f.Value.(string)
		return present && okV && okP && strings.HasPrefix(str, prefix), nil
	default:
		return false, fmt.Errorf("memory: unsupported operator %s", f.Op)
	}
}

func sortDocs(docs []core.Document, orders []core.Order) {
	if len(orders) == 0 {
		// Deterministic default: key order, like Firestore's implicit
		// __name__ ordering.
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range orders {
			vi, _ := core.Resolve(docs[i].Data, o.FieldPath)
			vj, _ := core.Resolve(docs[j].Data, o.FieldPath)
			c := compare(vi, vj)
			if c == 0 {
				continue
			}
			if o.Descending {
				return c > 0
			}
			return c < 0
		}
		return docs[i].ID < docs[j].ID
	})
}

// advanceCursor drops documents positioned before the cursor, where position
// is the tuple of ordering-key values. inclusive keeps the document equal to
// the cursor (start-at), exclusive skips past it (start-after).
func advanceCursor(docs []core.Document, orders []core.Order, cursor []any, inclusive bool) []core.Document {
	for i, doc := range docs {
		c := compareCursor(doc, orders, cursor)
		if c > 0 || (inclusive && c == 0) {
			return docs[i:]
		}
	}
	return nil
}

func compareCursor(doc core.Document, orders []core.Order, cursor []any) int {
	for i, o := range orders {
		if i >= len(cursor) {
			break
		}
		v, _ := core.Resolve(doc.Data, o.FieldPath)
		c := compare(v, cursor[i])
		if o.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// compare orders two stored values. Mixed incomparable types order by type
// name so sorting stays total and deterministic.
func compare(a, b any) int {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, ok := asTime(a); ok {
		if bt, ok := asTime(b); ok {
			return at.Compare(bt)
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case bv:
				return -1
			default:
				return 1
			}
		}
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	if b == nil {
		return 1
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func comparable2(a, b any) bool {
	if _, ok := asFloat(a); ok {
		_, ok2 := asFloat(b)
		return ok2
	}
	if _, ok := asTime(a); ok {
		_, ok2 := asTime(b)
		return ok2
	}
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case []int:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case []float64:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	case nil:
		return nil
	default:
		return []any{v}
	}
}
