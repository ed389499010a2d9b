// Package ember is the Composition Root for the Ember library.
//
// It connects the typed document layer (Domain) with the store adapters
// (Persistence) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Ember is a small Object-Document-Mapper for Google Cloud Firestore. It
// treats a Firestore collection as a typed table: declarative filters,
// ordering and pagination translate into native queries, and schema-typed
// structs map to and from documents, including embedded documents,
// subcollections and atomic batches. The core is store-agnostic behind
// core.Store, so the same managers run against Firestore in production and
// an in-memory store in tests.
//
// Features:
//
//   - **Typed managers**: Generic Manager[T]/Model[T] with active-record
//     Save/Update/Refresh/Delete.
//   - **Query builder**: Chainable Filter/OrderBy/Limit/StartAfter returning
//     immutable queries; lazy, restartable streaming.
//   - **Atomic scopes**: Writes inside ember.Atomic commit as one
//     all-or-nothing batch.
//   - **Server-side transforms**: Increment/ArrayUnion/ArrayRemove applied
//     by the store, never computed client-side.
//   - **Default adapter (Firestore)**: Thin translation onto the official
//     client; credential handling stays with the client.
//   - **Extensible**: Other backends plug in via core.Store; a full
//     in-memory adapter ships for tests.
//
// Usage:
//
//	store, err := ember.Open(ctx, "my-project")
//	products := ember.NewManager[Product](store, productSchema)
//
//	p, err := products.Create(ctx, Product{Name: "Mouse", Price: 10})
//	n, err := products.Filter("price__gt", 5).Count(ctx)
package ember
