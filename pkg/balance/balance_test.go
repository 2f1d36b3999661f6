package balance_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/balance"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
)

func TestRegisterStartsNormalizedIdle(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	r, err := balance.Register(dk.EncryptionKey(), elgamal.EmptyChunked(g))
	require.NoError(t, err)
	assert.Equal(t, balance.NormalizedIdle, r.State())
	assert.NoError(t, r.RequireSpendable())
}

func TestDepositThenRolloverStaysSpendableWhenStillNormalized(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	r, err := balance.Register(dk.EncryptionKey(), elgamal.EmptyChunked(g))
	require.NoError(t, err)

	deposit, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), elgamal.AmountFromUint64(1_000_000_000), rand.Reader)
	require.NoError(t, r.Deposit(deposit))
	assert.Equal(t, balance.NormalizedIdle, r.State(), "a deposit alone must not change isNormalized")

	require.NoError(t, r.Rollover(elgamal.EmptyChunked(g), true))
	assert.Equal(t, balance.NormalizedIdle, r.State())
	assert.NoError(t, r.RequireSpendable())
}

func TestRolloverCanLeaveUnnormalized(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	r, err := balance.Register(dk.EncryptionKey(), elgamal.EmptyChunked(g))
	require.NoError(t, err)

	deposit, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), elgamal.AmountFromUint64(1<<40), rand.Reader)
	require.NoError(t, r.Deposit(deposit))
	require.NoError(t, r.Rollover(elgamal.EmptyChunked(g), false))

	assert.Equal(t, balance.Unnormalized, r.State())
	assert.ErrorIs(t, r.RequireSpendable(), balance.ErrUnnormalized)

	normalized, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), elgamal.AmountFromUint64(1<<40), rand.Reader)
	require.NoError(t, r.ApplyNormalization(normalized))
	assert.Equal(t, balance.NormalizedIdle, r.State())
}

func TestRotationLifecycle(t *testing.T) {
	g := group.Ristretto255
	oldKey := key.Generate(g, rand.Reader)
	newKey := key.Generate(g, rand.Reader)
	r, err := balance.Register(oldKey.EncryptionKey(), elgamal.EmptyChunked(g))
	require.NoError(t, err)

	require.NoError(t, r.BeginRotation(true))
	assert.Equal(t, balance.Frozen, r.State())
	assert.ErrorIs(t, r.RequireSpendable(), balance.ErrFrozen)

	newAvailable := elgamal.EmptyChunked(g)
	require.NoError(t, r.CompleteRotation(newKey.EncryptionKey(), newAvailable))
	assert.Equal(t, balance.NormalizedIdle, r.State())

	wantBytes, err := newKey.EncryptionKey().MarshalBinary()
	require.NoError(t, err)
	gotBytes, err := r.EncryptionKey.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, wantBytes, gotBytes)
}

func TestBeginRotationRejectsNonemptyPending(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	r, err := balance.Register(dk.EncryptionKey(), elgamal.EmptyChunked(g))
	require.NoError(t, err)

	assert.ErrorIs(t, r.BeginRotation(false), balance.ErrRotationNeedsEmptyPending)
}

func TestOperationsOnUnregisteredRecordFail(t *testing.T) {
	r := &balance.Record{}
	assert.Equal(t, balance.Unregistered, r.State())
	assert.ErrorIs(t, r.RequireSpendable(), balance.ErrNotRegistered)
}
