package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memstore"
)

// Concurrent transfers from one account must serialize: every
// deduction applies exactly once, none is skipped or doubled.
func TestConcurrentTransfers_SameSource(t *testing.T) {
	const workers = 25

	// Generous retry budget: all workers contend on one account.
	store := memstore.New(256)
	l := New(store)
	sourceID := seedAccount(t, store, "Pool", "1000")
	targetID := seedAccount(t, store, "Sink", "0")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = l.Transfer.Transfer(context.Background(), sourceID, targetID, decimal.RequireFromString("10"), "drain")
		}(i)
	}
	wg.Wait()

	for n, err := range errs {
		require.NoError(t, err, "worker %d", n)
	}

	source, err := store.GetAccount(context.Background(), sourceID)
	require.NoError(t, err)
	target, err := store.GetAccount(context.Background(), targetID)
	require.NoError(t, err)

	if !assert.True(t, source.Balance.Equal(decimal.RequireFromString("750"))) ||
		!assert.True(t, target.Balance.Equal(decimal.RequireFromString("250"))) {
		t.Logf("final accounts:\n%s", spew.Sdump(source, target))
	}

	records, err := store.TransactionsByAccount(context.Background(), &storage.TransactionFilter{AccountID: &sourceID})
	require.NoError(t, err)
	assert.Len(t, records, workers)
}

// Transfers over disjoint account pairs do not disturb each other.
func TestConcurrentTransfers_DisjointPairs(t *testing.T) {
	const pairs = 10

	store := memstore.New(0)
	l := New(store)

	sources := make([]uuid.UUID, pairs)
	targets := make([]uuid.UUID, pairs)
	for i := 0; i < pairs; i++ {
		sources[i] = seedAccount(t, store, "S", "100")
		targets[i] = seedAccount(t, store, "T", "0")
	}

	var wg sync.WaitGroup
	errs := make([]error, pairs)
	for i := 0; i < pairs; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = l.Transfer.Transfer(context.Background(), sources[n], targets[n], decimal.RequireFromString("40"), "shuffle")
		}(i)
	}
	wg.Wait()

	for n, err := range errs {
		require.NoError(t, err, "pair %d", n)
	}
	for i := 0; i < pairs; i++ {
		assert.True(t, accountBalance(t, store, sources[i]).Equal(decimal.RequireFromString("60")))
		assert.True(t, accountBalance(t, store, targets[i]).Equal(decimal.RequireFromString("40")))
	}
}

// A transfer racing a reversal of an earlier transfer on the same
// accounts must leave the books consistent with both operations.
func TestConcurrentTransferAndReverse(t *testing.T) {
	store := memstore.New(256)
	l := New(store)
	sourceID := seedAccount(t, store, "A", "100")
	targetID := seedAccount(t, store, "B", "0")

	first, err := l.Transfer.Transfer(context.Background(), sourceID, targetID, decimal.RequireFromString("10"), "first")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	var transferErr, reverseErr error
	go func() {
		defer wg.Done()
		_, transferErr = l.Transfer.Transfer(context.Background(), sourceID, targetID, decimal.RequireFromString("5"), "second")
	}()
	go func() {
		defer wg.Done()
		reverseErr = l.Reversal.Reverse(context.Background(), first.DebitID)
	}()
	wg.Wait()

	require.NoError(t, transferErr)
	require.NoError(t, reverseErr)

	assert.True(t, accountBalance(t, store, sourceID).Equal(decimal.RequireFromString("95")))
	assert.True(t, accountBalance(t, store, targetID).Equal(decimal.RequireFromString("5")))

	linked, err := store.TransactionsByLink(context.Background(), first.DebitID)
	require.NoError(t, err)
	assert.Empty(t, linked)
}
