package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/emberhq/ember/pkg/core"
)

// batch wraps the native write batch. Operations are sent in enqueue order
// and the server applies them atomically.
type batch struct {
	store *Store
	wb    *firestore.WriteBatch
	size  int
	err   error
}

// Batch implements core.Store.
func (s *Store) Batch() core.Batch {
	return &batch{store: s, wb: s.client.Batch()}
}

func (b *batch) Set(collection, id string, data core.Data) {
	b.wb.Set(b.store.client.Collection(collection).Doc(id), map[string]any(data))
	b.size++
}

func (b *batch) Update(collection, id string, updates []core.Update) {
	native, err := nativeUpdates(updates)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	b.wb.Update(b.store.client.Collection(collection).Doc(id), native)
	b.size++
}

func (b *batch) Delete(collection, id string) {
	// Exists precondition keeps batch deletes consistent with direct
	// deletes: an absent target fails the whole commit.
	b.wb.Delete(b.store.client.Collection(collection).Doc(id), firestore.Exists)
	b.size++
}

func (b *batch) Len() int { return b.size }

func (b *batch) Commit(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if b.size == 0 {
		return nil
	}
	if _, err := b.wb.Commit(ctx); err != nil {
		return fmt.Errorf("firestore: batch of %d operations failed: %w", b.size, mapError(err, "", ""))
	}
	b.store.logger.Debug("firestore: batch committed", "operations", b.size)
	return nil
}
