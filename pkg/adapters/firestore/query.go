package firestore

import (
	"context"
	"fmt"
	"iter"
	"unicode/utf8"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"

	"github.com/emberhq/ember/pkg/core"
)

// prefixSuccessor returns the smallest string ordered after every string
// carrying the given prefix, for use as the exclusive upper bound of a
// starts-with range scan. Firestore orders strings by code point, so the
// last incrementable rune is bumped (skipping the surrogate gap) and the
// tail dropped. Empty result means unbounded: every rune was already the
// maximum.
func prefixSuccessor(prefix string) string {
	runes := []rune(prefix)
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] >= utf8.MaxRune {
			continue
		}
		next := runes[i] + 1
		if next >= 0xD800 && next <= 0xDFFF {
			next = 0xE000
		}
		return string(append(runes[:i], next))
	}
	return ""
}

// buildQuery lowers a QuerySpec onto the native query builder.
func (s *Store) buildQuery(spec core.QuerySpec) (firestore.Query, error) {
	if err := spec.CheckCursor(); err != nil {
		return firestore.Query{}, err
	}
	q := s.client.Collection(spec.Collection).Query

	for _, f := range spec.Filters {
		if f.Op == core.OpStartsWith {
			// Lowered to a range pair; Firestore has no native prefix
			// operator.
			prefix, ok := f.Value.(string)
			if !ok {
				return firestore.Query{}, &core.InvalidLookupError{
					Lookup: f.FieldPath,
					Reason: "startswith requires a string value",
				}
			}
			q = q.Where(f.FieldPath, ">=", prefix)
			if upper := prefixSuccessor(prefix); upper != "" {
				q = q.Where(f.FieldPath, "<", upper)
			}
			continue
		}
		op, err := nativeOperator(f.Op)
		if err != nil {
			return firestore.Query{}, err
		}
		q = q.Where(f.FieldPath, op, f.Value)
	}

	for _, o := range spec.Orders {
		dir := firestore.Asc
		if o.Descending {
			dir = firestore.Desc
		}
		q = q.OrderBy(o.FieldPath, dir)
	}

	if spec.StartAt != nil {
		q = q.StartAt(spec.StartAt...)
	}
	if spec.StartAfter != nil {
		q = q.StartAfter(spec.StartAfter...)
	}
	if spec.Limit > 0 {
		q = q.Limit(spec.Limit)
	}
	if len(spec.Projection) > 0 {
		q = q.Select(spec.Projection...)
	}
	return q, nil
}

func nativeOperator(op core.Operator) (string, error) {
	switch op {
	case core.OpEqual:
		return "==", nil
	case core.OpNotEqual:
		return "!=", nil
	case core.OpGreater:
		return ">", nil
	case core.OpGreaterEq:
		return ">=", nil
	case core.OpLess:
		return "<", nil
	case core.OpLessEq:
		return "<=", nil
	case core.OpIn:
		return "in", nil
	case core.OpNotIn:
		return "not-in", nil
	case core.OpContains:
		return "array-contains", nil
	case core.OpContainsAny:
		return "array-contains-any", nil
	default:
		return "", fmt.Errorf("firestore: unsupported operator %s", op)
	}
}

// Run implements core.Store. Each range over the sequence re-issues the
// query, so results always reflect current store state.
func (s *Store) Run(ctx context.Context, spec core.QuerySpec) iter.Seq2[core.Document, error] {
	return func(yield func(core.Document, error) bool) {
		q, err := s.buildQuery(spec)
		if err != nil {
			yield(core.Document{}, err)
			return
		}
		s.logger.Debug("firestore: query", "collection", spec.Collection, "filters", len(spec.Filters), "limit", spec.Limit)

		docs := q.Documents(ctx)
		defer docs.Stop()
		for {
			snap, err := docs.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				yield(core.Document{}, mapError(err, spec.Collection, ""))
				return
			}
			doc := core.Document{Collection: spec.Collection, ID: snap.Ref.ID, Data: snap.Data()}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Count implements core.Store via a native aggregation query, so no
// documents are materialized.
func (s *Store) Count(ctx context.Context, spec core.QuerySpec) (int64, error) {
	q, err := s.buildQuery(spec)
	if err != nil {
		return 0, err
	}
	results, err := q.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, mapError(err, spec.Collection, "")
	}
	return aggregationInt(results, "count")
}

// Sum implements core.Store via a native aggregation query.
func (s *Store) Sum(ctx context.Context, spec core.QuerySpec, fieldPath string) (float64, error) {
	q, err := s.buildQuery(spec)
	if err != nil {
		return 0, err
	}
	results, err := q.NewAggregationQuery().WithSum(fieldPath, "sum").Get(ctx)
	if err != nil {
		return 0, mapError(err, spec.Collection, "")
	}
	return aggregationFloat(results, "sum")
}

// Avg implements core.Store via a native aggregation query.
func (s *Store) Avg(ctx context.Context, spec core.QuerySpec, fieldPath string) (float64, error) {
	q, err := s.buildQuery(spec)
	if err != nil {
		return 0, err
	}
	results, err := q.NewAggregationQuery().WithAvg(fieldPath, "avg").Get(ctx)
	if err != nil {
		return 0, mapError(err, spec.Collection, "")
	}
	return aggregationFloat(results, "avg")
}

func aggregationInt(results firestore.AggregationResult, alias string) (int64, error) {
	value, ok := results[alias].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("firestore: aggregation %q missing from result", alias)
	}
	return value.GetIntegerValue(), nil
}

func aggregationFloat(results firestore.AggregationResult, alias string) (float64, error) {
	value, ok := results[alias].(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("firestore: aggregation %q missing from result", alias)
	}
	if _, isInt := value.ValueType.(*firestorepb.Value_IntegerValue); isInt {
		return float64(value.GetIntegerValue()), nil
	}
	return value.GetDoubleValue(), nil
}
