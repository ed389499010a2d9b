package ember

import (
	"context"
	"log/slog"

	"google.golang.org/api/option"

	fsadapter "github.com/emberhq/ember/pkg/adapters/firestore"
	"github.com/emberhq/ember/pkg/adapters/memory"
	"github.com/emberhq/ember/pkg/core"
	"github.com/emberhq/ember/pkg/typed"
)

// --- Types ---

// Data is a public alias for raw document field data.
type Data = core.Data

// Schema is a public alias for the frozen field descriptor of a collection.
type Schema = core.Schema

// Updates is the named-field form accepted by Model.Update.
type Updates = core.Updates

// Store is the contract adapters implement.
type Store = core.Store

// Manager is a public alias for the typed manager.
type Manager[T any] = typed.Manager[T]

// Model is a public alias for the typed active-record document.
type Model[T any] = typed.Model[T]

// Query is a public alias for the typed query builder.
type Query[T any] = typed.Query[T]

// Field kinds for schema declarations.
const (
	KindAny    = core.KindAny
	KindString = core.KindString
	KindBool   = core.KindBool
	KindInt    = core.KindInt
	KindFloat  = core.KindFloat
	KindTime   = core.KindTime
	KindBytes  = core.KindBytes
	KindMap    = core.KindMap
	KindList   = core.KindList
)

// --- Schema declaration ---

// NewSchema starts a schema declaration for the named collection.
func NewSchema(collection string) *core.SchemaBuilder {
	return core.NewSchema(collection)
}

// WithDefault sets a default factory for a field, evaluated per document at
// construction time.
func WithDefault(factory func() any) core.FieldOption {
	return core.WithDefault(factory)
}

// NoIndex excludes a field from the store's automatic indexing.
func NoIndex() core.FieldOption {
	return core.NoIndex()
}

// DefaultCollection derives a collection name from a type name, lower cased.
func DefaultCollection[T any]() string {
	return typed.DefaultCollection[T]()
}

// --- Configuration ---

// Option defines a functional option for configuring the Firestore store.
type Option = fsadapter.Option

// WithDatabase selects a named Firestore database instead of "(default)".
func WithDatabase(database string) Option {
	return fsadapter.WithDatabase(database)
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return fsadapter.WithLogger(logger)
}

// WithClientOptions forwards credentials/endpoint options to the underlying
// client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return fsadapter.WithClientOptions(opts...)
}

// --- Factories ---

// Open connects to Firestore for the given project and returns a Store.
func Open(ctx context.Context, projectID string, opts ...Option) (Store, error) {
	return fsadapter.New(ctx, projectID, opts...)
}

// OpenMemory returns an empty in-memory Store, useful for tests and local
// development.
func OpenMemory(opts ...memory.Option) Store {
	return memory.New(opts...)
}

// NewManager binds a document type to its schema and a store.
func NewManager[T any](store Store, schema *Schema) *Manager[T] {
	return typed.NewManager[T](store, schema)
}

// Subcollection builds a child manager scoped beneath a saved parent
// document.
func Subcollection[C any](parent typed.Parent, store Store, schema *Schema) (*Manager[C], error) {
	return typed.Subcollection[C](parent, store, schema)
}

// --- Atomic scopes ---

// Atomic runs fn with a write batch on its context: every manager write
// inside fn enqueues onto the batch and the whole set commits as one
// all-or-nothing unit when fn returns nil.
func Atomic(ctx context.Context, store Store, fn func(ctx context.Context) error) error {
	return core.Atomic(ctx, store, fn)
}

// --- Field transforms ---

// Increment builds a server-side increment transform for Model.Update.
func Increment(by any) core.IncrementOp {
	return core.Increment(by)
}

// ArrayUnion builds a server-side array-union transform for Model.Update.
func ArrayUnion(values ...any) core.ArrayUnionOp {
	return core.ArrayUnion(values...)
}

// ArrayRemove builds a server-side array-remove transform for Model.Update.
func ArrayRemove(values ...any) core.ArrayRemoveOp {
	return core.ArrayRemove(values...)
}

// --- Errors ---

// IsDoesNotExist reports whether err is (or wraps) a missing-document error.
func IsDoesNotExist(err error) bool {
	return core.IsDoesNotExist(err)
}
