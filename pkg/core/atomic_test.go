package core_test

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/emberhq/ember/pkg/core"
)

// stubStore implements core.Store just enough to observe batch lifecycles.
type stubStore struct {
	batches []*stubBatch
}

type stubBatch struct {
	ops       int
	committed bool
	commitErr error
}

func (s *stubStore) NewID(string) string { return "id" }
func (s *stubStore) Get(context.Context, string, string) (core.Document, error) {
	return core.Document{}, nil
}
func (s *stubStore) Set(context.Context, string, string, core.Data) error     { return nil }
func (s *stubStore) Update(context.Context, string, string, []core.Update) error { return nil }
func (s *stubStore) Delete(context.Context, string, string) error             { return nil }
func (s *stubStore) Run(context.Context, core.QuerySpec) iter.Seq2[core.Document, error] {
	return func(func(core.Document, error) bool) {}
}
func (s *stubStore) Count(context.Context, core.QuerySpec) (int64, error)         { return 0, nil }
func (s *stubStore) Sum(context.Context, core.QuerySpec, string) (float64, error) { return 0, nil }
func (s *stubStore) Avg(context.Context, core.QuerySpec, string) (float64, error) { return 0, nil }
func (s *stubStore) Close() error                                                 { return nil }

func (s *stubStore) Batch() core.Batch {
	b := &stubBatch{}
	s.batches = append(s.batches, b)
	return b
}

func (b *stubBatch) Set(string, string, core.Data)        { b.ops++ }
func (b *stubBatch) Update(string, string, []core.Update) { b.ops++ }
func (b *stubBatch) Delete(string, string)                { b.ops++ }
func (b *stubBatch) Len() int                             { return b.ops }
func (b *stubBatch) Commit(context.Context) error {
	if b.commitErr != nil {
		return b.commitErr
	}
	b.committed = true
	return nil
}

func TestAtomicCommitsOnSuccess(t *testing.T) {
	store := &stubStore{}
	err := core.Atomic(context.Background(), store, func(ctx context.Context) error {
		batch, active := core.BatchFrom(ctx)
		if !active {
			t.Fatal("no batch installed inside atomic scope")
		}
		batch.Set("products", "1", core.Data{})
		batch.Set("products", "2", core.Data{})
		return nil
	})
	if err != nil {
		t.Fatalf("Atomic failed: %v", err)
	}
	if !store.batches[0].committed {
		t.Error("batch was not committed")
	}
	if store.batches[0].Len() != 2 {
		t.Errorf("Len = %d, want 2", store.batches[0].Len())
	}
}

func TestAtomicDoesNotCommitOnError(t *testing.T) {
	store := &stubStore{}
	boom := errors.New("boom")
	err := core.Atomic(context.Background(), store, func(ctx context.Context) error {
		batch, _ := core.BatchFrom(ctx)
		batch.Set("products", "1", core.Data{})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want the callback error", err)
	}
	if store.batches[0].committed {
		t.Error("batch committed despite callback error")
	}
}

func TestAtomicRejectsNesting(t *testing.T) {
	store := &stubStore{}
	err := core.Atomic(context.Background(), store, func(ctx context.Context) error {
		return core.Atomic(ctx, store, func(context.Context) error { return nil })
	})
	var validationErr *core.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("got %v, want ValidationError for nested scope", err)
	}
}

func TestBatchFromIsScopedToContext(t *testing.T) {
	if _, active := core.BatchFrom(context.Background()); active {
		t.Error("fresh context must not carry a batch")
	}
}
