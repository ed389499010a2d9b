package core

import (
	"context"
	"iter"
)

// Store defines the contract with the native document store. Adhering to
// this interface keeps the manager and query layers independent of the
// backend (Firestore, in-memory, ...).
//
// Every method that touches the network takes a context; the store's own
// timeout and retry configuration applies. Errors are passed through
// unmodified except that a missing target maps to DoesNotExist.
type Store interface {
	// NewID allocates a new document ID for the collection without a
	// round trip, so that creates can participate in batches.
	NewID(collection string) string

	// Get performs a point lookup by ID. Absent -> DoesNotExist.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Set writes the full field set at the given ID, overwriting any
	// existing document (upsert; no error if the target does not exist).
	Set(ctx context.Context, collection, id string, data Data) error

	// Update writes only the named fields, applying transform markers
	// server-side. Absent target -> DoesNotExist.
	Update(ctx context.Context, collection, id string, updates []Update) error

	// Delete removes the document. Absent target -> DoesNotExist.
	Delete(ctx context.Context, collection, id string) error

	// Run executes the query as a lazy, finite, restartable sequence:
	// every range over the returned iterator re-issues the query against
	// current store state.
	Run(ctx context.Context, spec QuerySpec) iter.Seq2[Document, error]

	// Count executes an aggregation count without materializing documents.
	Count(ctx context.Context, spec QuerySpec) (int64, error)

	// Sum and Avg aggregate a numeric field over the matched documents.
	Sum(ctx context.Context, spec QuerySpec, fieldPath string) (float64, error)
	Avg(ctx context.Context, spec QuerySpec, fieldPath string) (float64, error)

	// Batch starts an empty atomic write batch.
	Batch() Batch

	// Close releases the underlying client.
	Close() error
}

// Batch is an ordered sequence of pending writes committed as a single
// all-or-nothing unit. Enqueue order is preserved in the commit payload.
type Batch interface {
	Set(collection, id string, data Data)
	Update(collection, id string, updates []Update)
	Delete(collection, id string)

	// Len reports the number of pending operations.
	Len() int

	// Commit applies all pending operations atomically. If the store
	// rejects any operation, none take effect and a single error covering
	// the batch is returned.
	Commit(ctx context.Context) error
}

// Watchable is implemented by stores that can stream change events for a
// query.
type Watchable interface {
	// Watch emits an event per document change matched by spec until ctx
	// is cancelled. The channel is closed on cancellation or stream error.
	Watch(ctx context.Context, spec QuerySpec) (<-chan Event, error)
}
