package memory

import (
	"context"

	"github.com/emberhq/ember/pkg/core"
)

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)

type pendingOp struct {
	kind       opKind
	collection string
	id         string
	data       core.Data
	updates    []core.Update
}

// batch queues writes and applies them under a single lock acquisition.
// Commit stages every operation against document copies first and only
// writes back once the whole batch has applied cleanly, so any failing
// operation leaves the store untouched.
type batch struct {
	store *Store
	ops   []pendingOp
}

// Batch implements core.Store.
func (s *Store) Batch() core.Batch {
	return &batch{store: s}
}

func (b *batch) Set(collection, id string, data core.Data) {
	b.ops = append(b.ops, pendingOp{kind: opSet, collection: collection, id: id, data: cloneData(data)})
}

func (b *batch) Update(collection, id string, updates []core.Update) {
	b.ops = append(b.ops, pendingOp{kind: opUpdate, collection: collection, id: id, updates: updates})
}

func (b *batch) Delete(collection, id string) {
	b.ops = append(b.ops, pendingOp{kind: opDelete, collection: collection, id: id})
}

func (b *batch) Len() int { return len(b.ops) }

type stagedDoc struct {
	data   core.Data
	exists bool
}

func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.store.mu.Lock()

	// Stage every operation on copies of the affected documents, so later
	// operations see earlier ones and any failure (absent target, malformed
	// transform) aborts before the store is touched.
	staged := make(map[[2]string]*stagedDoc, len(b.ops))
	lookup := func(collection, id string) *stagedDoc {
		k := [2]string{collection, id}
		if doc, ok := staged[k]; ok {
			return doc
		}
		doc := &stagedDoc{}
		if data, ok := b.store.collections[collection][id]; ok {
			doc.data = cloneData(data)
			doc.exists = true
		}
		staged[k] = doc
		return doc
	}

	events := make([]core.Event, 0, len(b.ops))
	for _, op := range b.ops {
		doc := lookup(op.collection, op.id)
		switch op.kind {
		case opSet:
			eventType := core.EventCreate
			if doc.exists {
				eventType = core.EventModify
			}
			doc.data = cloneData(op.data)
			doc.exists = true
			events = append(events, core.Event{Type: eventType, Doc: core.Document{
				Collection: op.collection, ID: op.id, Data: cloneData(doc.data),
			}})
		case opUpdate:
			if !doc.exists {
				b.store.mu.Unlock()
				return &core.DoesNotExist{Collection: op.collection, ID: op.id}
			}
			for _, u := range op.updates {
				if err := applyUpdate(doc.data, u); err != nil {
					b.store.mu.Unlock()
					return err
				}
			}
			events = append(events, core.Event{Type: core.EventModify, Doc: core.Document{
				Collection: op.collection, ID: op.id, Data: cloneData(doc.data),
			}})
		case opDelete:
			if !doc.exists {
				b.store.mu.Unlock()
				return &core.DoesNotExist{Collection: op.collection, ID: op.id}
			}
			doc.data = nil
			doc.exists = false
			events = append(events, core.Event{Type: core.EventDelete, Doc: core.Document{
				Collection: op.collection, ID: op.id,
			}})
		}
	}

	// All operations staged cleanly; write the results back.
	for k, doc := range staged {
		collection, id := k[0], k[1]
		if doc.exists {
			col, ok := b.store.collections[collection]
			if !ok {
				col = make(map[string]core.Data)
				b.store.collections[collection] = col
			}
			col[id] = doc.data
		} else {
			delete(b.store.collections[collection], id)
		}
	}
	b.store.mu.Unlock()

	for _, ev := range events {
		b.store.notify(ev)
	}
	b.ops = nil
	return nil
}
