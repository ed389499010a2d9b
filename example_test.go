package ember_test

import (
	"context"
	"fmt"
	"log"

	"github.com/emberhq/ember"
)

// Example_basic demonstrates declaring a schema, saving a document, and
// querying it back.
func Example_basic() {
	ctx := context.Background()

	// The in-memory store keeps the example self-contained; ember.Open
	// connects to Firestore with the same surface.
	store := ember.OpenMemory()
	defer store.Close()

	type Product struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	schema, err := ember.NewSchema("products").
		Field("name", ember.KindString).
		Field("price", ember.KindFloat).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	products := ember.NewManager[Product](store, schema)

	// 1. Save a document
	if _, err := products.Create(ctx, Product{Name: "Mouse", Price: 10}); err != nil {
		log.Fatal(err)
	}

	// 2. Query it back
	n, err := products.Filter("price__gt", 5).Count(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("products over 5: %d\n", n)
	// Output:
	// products over 5: 1
}

// ExampleAtomic demonstrates grouping writes into one all-or-nothing commit.
func ExampleAtomic() {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	type Account struct {
		Owner   string  `json:"owner"`
		Balance float64 `json:"balance"`
	}

	schema, err := ember.NewSchema("accounts").
		Field("owner", ember.KindString).
		Field("balance", ember.KindFloat).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	accounts := ember.NewManager[Account](store, schema)

	alice, err := accounts.Create(ctx, Account{Owner: "alice", Balance: 100})
	if err != nil {
		log.Fatal(err)
	}
	bob, err := accounts.Create(ctx, Account{Owner: "bob", Balance: 0})
	if err != nil {
		log.Fatal(err)
	}

	// Both updates land together, or not at all.
	err = ember.Atomic(ctx, store, func(ctx context.Context) error {
		if err := alice.Update(ctx, ember.Updates{"balance": ember.Increment(-25)}); err != nil {
			return err
		}
		return bob.Update(ctx, ember.Updates{"balance": ember.Increment(25)})
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := bob.Refresh(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("bob: %.0f\n", bob.Data.Balance)
	// Output:
	// bob: 25
}
