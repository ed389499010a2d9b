package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhq/ember"
	"github.com/emberhq/ember/pkg/core"
)

type Account struct {
	Owner   string `json:"owner"`
	Balance int    `json:"balance"`
}

func accountSchema(t *testing.T) *ember.Schema {
	t.Helper()
	s, err := ember.NewSchema("accounts").
		Field("owner", ember.KindString).
		Field("balance", ember.KindInt).
		Build()
	require.NoError(t, err)
	return s
}

// TestAtomicTransfer moves balance between two documents in one atomic
// scope: both increments land or neither does.
func TestAtomicTransfer(t *testing.T) {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	accounts := ember.NewManager[Account](store, accountSchema(t))
	alice, err := accounts.Create(ctx, Account{Owner: "alice", Balance: 100})
	require.NoError(t, err)
	bob, err := accounts.Create(ctx, Account{Owner: "bob", Balance: 0})
	require.NoError(t, err)

	err = ember.Atomic(ctx, store, func(ctx context.Context) error {
		if err := alice.Update(ctx, ember.Updates{"balance": ember.Increment(-25)}); err != nil {
			return err
		}
		return bob.Update(ctx, ember.Updates{"balance": ember.Increment(25)})
	})
	require.NoError(t, err)

	require.NoError(t, alice.Refresh(ctx))
	require.NoError(t, bob.Refresh(ctx))
	assert.Equal(t, 75, alice.Data.Balance)
	assert.Equal(t, 25, bob.Data.Balance)
}

// TestAtomicRollsBackOnError queues writes and then fails the callback; no
// queued write may be visible afterwards.
func TestAtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	accounts := ember.NewManager[Account](store, accountSchema(t))
	alice, err := accounts.Create(ctx, Account{Owner: "alice", Balance: 100})
	require.NoError(t, err)

	boom := errors.New("insufficient funds")
	err = ember.Atomic(ctx, store, func(ctx context.Context) error {
		if err := alice.Update(ctx, ember.Updates{"balance": ember.Increment(-200)}); err != nil {
			return err
		}
		if _, err := accounts.Create(ctx, Account{Owner: "carol", Balance: 200}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	require.NoError(t, alice.Refresh(ctx))
	assert.Equal(t, 100, alice.Data.Balance, "queued update leaked out of the failed scope")

	total, err := accounts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "queued create leaked out of the failed scope")
}

// TestAtomicFailsWholeBatchOnBadTarget targets a missing document in the
// middle of the scope; the commit must reject everything.
func TestAtomicFailsWholeBatchOnBadTarget(t *testing.T) {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	accounts := ember.NewManager[Account](store, accountSchema(t))
	alice, err := accounts.Create(ctx, Account{Owner: "alice", Balance: 100})
	require.NoError(t, err)

	err = ember.Atomic(ctx, store, func(ctx context.Context) error {
		if err := alice.Update(ctx, ember.Updates{"balance": ember.Increment(-10)}); err != nil {
			return err
		}
		return accounts.Delete(ctx, "no-such-account")
	})
	assert.True(t, ember.IsDoesNotExist(err), "commit accepted a write against a missing target: %v", err)

	require.NoError(t, alice.Refresh(ctx))
	assert.Equal(t, 100, alice.Data.Balance)
}

// TestAtomicNestingIsRejected starts a scope inside a scope.
func TestAtomicNestingIsRejected(t *testing.T) {
	ctx := context.Background()
	store := ember.OpenMemory()
	defer store.Close()

	err := ember.Atomic(ctx, store, func(ctx context.Context) error {
		return ember.Atomic(ctx, store, func(context.Context) error { return nil })
	})
	var validationErr *core.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
