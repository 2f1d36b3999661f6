package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/rpc"
)

func TestCacheGetPutInvalidate(t *testing.T) {
	c := rpc.NewCache()
	account, token := rpc.Address("acct-1"), rpc.Address("USD")

	_, ok := c.Get(account, token)
	assert.False(t, ok)

	record := &rpc.BalanceRecord{
		EncryptionKey:  []byte{1, 2, 3},
		Pending:        []byte{4, 5, 6},
		Available:      []byte{7, 8, 9},
		IsNormalized:   true,
		SequenceNumber: 42,
	}
	c.Put(account, token, record)

	got, ok := c.Get(account, token)
	require.True(t, ok)
	assert.Equal(t, record, got)

	// A mutation on the returned copy must not affect the cache.
	got.SequenceNumber = 999
	got2, _ := c.Get(account, token)
	assert.Equal(t, uint64(42), got2.SequenceNumber)

	c.Invalidate(account, token)
	_, ok = c.Get(account, token)
	assert.False(t, ok)
}

func TestCacheSnapshotRestore(t *testing.T) {
	c := rpc.NewCache()
	c.Put(rpc.Address("acct-1"), rpc.Address("USD"), &rpc.BalanceRecord{
		EncryptionKey: []byte{1, 2, 3}, SequenceNumber: 7,
	})
	c.Put(rpc.Address("acct-2"), rpc.Address("EUR"), &rpc.BalanceRecord{
		EncryptionKey: []byte{4, 5, 6}, IsFrozen: true, SequenceNumber: 8,
	})

	data, err := c.Snapshot()
	require.NoError(t, err)

	restored := rpc.NewCache()
	require.NoError(t, restored.Restore(data))

	got1, ok := restored.Get(rpc.Address("acct-1"), rpc.Address("USD"))
	require.True(t, ok)
	assert.Equal(t, uint64(7), got1.SequenceNumber)

	got2, ok := restored.Get(rpc.Address("acct-2"), rpc.Address("EUR"))
	require.True(t, ok)
	assert.True(t, got2.IsFrozen)
}
