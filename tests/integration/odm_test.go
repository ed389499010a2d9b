package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhq/ember"
	"github.com/emberhq/ember/pkg/core"
)

type Product struct {
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Stock  int      `json:"stock"`
	Tags   []string `json:"tags,omitempty"`
	Status string   `json:"status,omitempty"`
}

func productSchema(t *testing.T) *ember.Schema {
	t.Helper()
	s, err := ember.NewSchema("products").
		Field("name", ember.KindString).
		Field("price", ember.KindFloat).
		Field("stock", ember.KindInt).
		Field("tags", ember.KindList).
		Field("status", ember.KindString, ember.WithDefault(func() any { return "draft" })).
		Build()
	require.NoError(t, err)
	return s
}

// TestODMLifecycle walks the full surface through the public facade: schema
// declaration, create, point reads, filtered queries, partial updates with
// transforms, cursors and deletion.
func TestODMLifecycle(t *testing.T) {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	products := ember.NewManager[Product](store, productSchema(t))

	// Create a small catalog.
	catalog := []Product{
		{Name: "Mouse", Price: 10, Stock: 3, Tags: []string{"input", "usb"}},
		{Name: "Keyboard", Price: 25, Stock: 7, Tags: []string{"input"}},
		{Name: "Monitor", Price: 180, Stock: 2, Tags: []string{"display"}},
		{Name: "Mousepad", Price: 5, Stock: 40, Tags: []string{"accessory"}},
	}
	for _, p := range catalog {
		_, err := products.Create(ctx, p)
		require.NoError(t, err)
	}

	// Defaults fill fields the caller omitted.
	mouse, err := products.Filter("name", "Mouse").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "draft", mouse.Data.Status)

	// Filtered query with operator suffix.
	expensive, err := products.Filter("price__gt", 20.0).OrderBy("price").All(ctx)
	require.NoError(t, err)
	require.Len(t, expensive, 2)
	assert.Equal(t, "Keyboard", expensive[0].Data.Name)
	assert.Equal(t, "Monitor", expensive[1].Data.Name)

	// Cursor pagination: only documents past the cursor, ascending, capped.
	page, err := products.OrderBy("price").Limit(2).
		StartAfter(ember.Data{"price": 10.0}).All(ctx)
	require.NoError(t, err)
	require.Len(t, page, 2)
	for _, m := range page {
		assert.Greater(t, m.Data.Price, 10.0)
	}

	// Partial update with a server-side transform.
	require.NoError(t, mouse.Update(ctx, ember.Updates{
		"price": 12.0,
		"stock": ember.Increment(-1),
	}))
	require.NoError(t, mouse.Refresh(ctx))
	assert.Equal(t, 12.0, mouse.Data.Price)
	assert.Equal(t, 2, mouse.Data.Stock)

	// Aggregations without materializing documents.
	total, err := products.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	sum, err := products.Filter("tags__contains", "input").Sum(ctx, "price")
	require.NoError(t, err)
	assert.Equal(t, 37.0, sum)

	// Deletion is final; the second attempt reports the absence.
	require.NoError(t, mouse.Delete(ctx))
	assert.True(t, ember.IsDoesNotExist(mouse.Delete(ctx)))
}

// TestSubcollections verifies parent scoping end to end: children live under
// their parent's document path and are invisible to the root collection and
// to sibling parents.
func TestSubcollections(t *testing.T) {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	type Review struct {
		Author string  `json:"author"`
		Rating float64 `json:"rating"`
	}
	reviewSchema, err := ember.NewSchema("reviews").
		Field("author", ember.KindString).
		Field("rating", ember.KindFloat).
		Build()
	require.NoError(t, err)

	products := ember.NewManager[Product](store, productSchema(t))
	mouse, err := products.Create(ctx, Product{Name: "Mouse", Price: 10})
	require.NoError(t, err)
	keyboard, err := products.Create(ctx, Product{Name: "Keyboard", Price: 25})
	require.NoError(t, err)

	mouseReviews, err := ember.Subcollection[Review](mouse, store, reviewSchema)
	require.NoError(t, err)
	keyboardReviews, err := ember.Subcollection[Review](keyboard, store, reviewSchema)
	require.NoError(t, err)

	_, err = mouseReviews.Create(ctx, Review{Author: "ana", Rating: 5})
	require.NoError(t, err)
	_, err = keyboardReviews.Create(ctx, Review{Author: "bo", Rating: 3})
	require.NoError(t, err)

	mine, err := mouseReviews.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mine)

	avg, err := mouseReviews.All().Avg(ctx, "rating")
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)

	// An unsaved parent has no document path to scope under.
	unsaved := products.New(Product{Name: "Ghost"})
	_, err = ember.Subcollection[Review](unsaved, store, reviewSchema)
	var validationErr *core.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

// TestQueryBuilderErrors verifies that construction mistakes surface before
// any request is issued.
func TestQueryBuilderErrors(t *testing.T) {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	products := ember.NewManager[Product](store, productSchema(t))

	// Typo'd operator suffix.
	var lookupErr *core.InvalidLookupError
	_, err := products.Filter("price__banana", 5).All(ctx)
	require.ErrorAs(t, err, &lookupErr)

	// Undeclared field.
	_, err = products.Filter("color", "red").All(ctx)
	require.ErrorAs(t, err, &lookupErr)

	// Cursor with no ordering to anchor it.
	var validationErr *core.ValidationError
	err = products.All().StartAfter(ember.Data{"price": 1.0}).Err()
	require.ErrorAs(t, err, &validationErr)
}
