package typed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/emberhq/ember/pkg/adapters/memory"
	"github.com/emberhq/ember/pkg/core"
	"github.com/emberhq/ember/pkg/typed"
)

type Review struct {
	Author string  `json:"author"`
	Rating float64 `json:"rating"`
}

func reviewSchema(t *testing.T) *core.Schema {
	t.Helper()
	s, err := core.NewSchema("reviews").
		Field("author", core.KindString).
		Field("rating", core.KindFloat).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSubcollectionScoping(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	products := typed.NewManager[Product](store, productSchema(t))
	mouse, err := products.Create(ctx, Product{Name: "Mouse", Price: 10})
	if err != nil {
		t.Fatal(err)
	}
	keyboard, err := products.Create(ctx, Product{Name: "Keyboard", Price: 25})
	if err != nil {
		t.Fatal(err)
	}

	mouseReviews, err := typed.Subcollection[Review](mouse, store, reviewSchema(t))
	if err != nil {
		t.Fatal(err)
	}
	keyboardReviews, err := typed.Subcollection[Review](keyboard, store, reviewSchema(t))
	if err != nil {
		t.Fatal(err)
	}

	wantPath := "products/" + mouse.ID + "/reviews"
	if got := mouseReviews.CollectionPath(); got != wantPath {
		t.Errorf("CollectionPath = %q, want %q", got, wantPath)
	}

	if _, err := mouseReviews.Create(ctx, Review{Author: "ana", Rating: 5}); err != nil {
		t.Fatal(err)
	}
	if _, err := mouseReviews.Create(ctx, Review{Author: "bo", Rating: 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := keyboardReviews.Create(ctx, Review{Author: "cy", Rating: 3}); err != nil {
		t.Fatal(err)
	}

	// Each parent sees only its own children.
	mine, err := mouseReviews.Count(ctx)
	if err != nil || mine != 2 {
		t.Errorf("mouse reviews = %d (%v), want 2", mine, err)
	}
	theirs, err := keyboardReviews.Count(ctx)
	if err != nil || theirs != 1 {
		t.Errorf("keyboard reviews = %d (%v), want 1", theirs, err)
	}
}

func TestSubcollectionUnderSameType(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	products := typed.NewManager[Product](store, productSchema(t))
	parent, err := products.Create(ctx, Product{Name: "Bundle", Price: 99})
	if err != nil {
		t.Fatal(err)
	}

	parts, err := products.Under(parent)
	if err != nil {
		t.Fatal(err)
	}
	want := "products/" + parent.ID + "/products"
	if got := parts.CollectionPath(); got != want {
		t.Errorf("CollectionPath = %q, want %q", got, want)
	}
}

func TestSubcollectionRequiresSavedParent(t *testing.T) {
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	products := typed.NewManager[Product](store, productSchema(t))
	unsaved := products.New(Product{Name: "Mouse"})

	var validationErr *core.ValidationError
	if _, err := typed.Subcollection[Review](unsaved, store, reviewSchema(t)); !errors.As(err, &validationErr) {
		t.Errorf("got %v, want ValidationError", err)
	}
	if _, err := products.Under(unsaved); !errors.As(err, &validationErr) {
		t.Errorf("Under: got %v, want ValidationError", err)
	}
}

func TestNestedSubcollections(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	t.Cleanup(func() { store.Close() })

	products := typed.NewManager[Product](store, productSchema(t))
	mouse, err := products.Create(ctx, Product{Name: "Mouse", Price: 10})
	if err != nil {
		t.Fatal(err)
	}

	reviews, err := typed.Subcollection[Review](mouse, store, reviewSchema(t))
	if err != nil {
		t.Fatal(err)
	}
	review, err := reviews.Create(ctx, Review{Author: "ana", Rating: 5})
	if err != nil {
		t.Fatal(err)
	}

	// A subcollection document is itself a valid parent.
	replies, err := typed.Subcollection[Review](review, store, reviewSchema(t))
	if err != nil {
		t.Fatal(err)
	}
	want := "products/" + mouse.ID + "/reviews/" + review.ID + "/reviews"
	if got := replies.CollectionPath(); got != want {
		t.Errorf("CollectionPath = %q, want %q", got, want)
	}
}
