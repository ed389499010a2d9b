package core

import "context"

type batchContextKey struct{}

// WithBatch returns a context carrying an active write batch. Document
// write operations that observe it enqueue instead of executing.
func WithBatch(ctx context.Context, b Batch) context.Context {
	return context.WithValue(ctx, batchContextKey{}, b)
}

// BatchFrom reports the active batch installed on the context, if any.
// The batch travels on the context rather than in a package variable so it
// stays confined to the call tree that opened the atomic scope.
func BatchFrom(ctx context.Context) (Batch, bool) {
	b, ok := ctx.Value(batchContextKey{}).(Batch)
	return b, ok
}

// Atomic runs fn with a write batch installed on its context and commits the
// batch when fn returns nil. Every save/update/delete issued through the
// manager layer inside fn enqueues onto the batch; the whole set is applied
// as one all-or-nothing commit. If fn returns an error nothing is committed.
//
// Nested atomic scopes are rejected with a ValidationError.
func Atomic(ctx context.Context, store Store, fn func(ctx context.Context) error) error {
	if _, active := BatchFrom(ctx); active {
		return &ValidationError{Reason: "cannot start an atomic scope within an existing one"}
	}
	b := store.Batch()
	if err := fn(WithBatch(ctx, b)); err != nil {
		return err
	}
	return b.Commit(ctx)
}
