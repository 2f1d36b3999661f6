package elgamal_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
)

func TestChunkedRoundTrip(t *testing.T) {
	g := group.Ristretto255
	d, pub := randomKeypair(t)

	amount := elgamal.AmountFromUint64(1_000_000_000)
	cc, _ := elgamal.EncryptChunked(g, pub, amount, rand.Reader)

	got, err := cc.Decrypt(g, d)
	require.NoError(t, err)
	v, ok := got.Uint64()
	require.True(t, ok)
	assert.EqualValues(t, 1_000_000_000, v)
}

func TestChunkedHomomorphicAdd(t *testing.T) {
	g := group.Ristretto255
	d, pub := randomKeypair(t)

	a := elgamal.AmountFromUint64(0xFFFF)
	cc1, _ := elgamal.EncryptChunked(g, pub, a, rand.Reader)
	cc2, _ := elgamal.EncryptChunked(g, pub, a, rand.Reader)
	cc3, _ := elgamal.EncryptChunked(g, pub, a, rand.Reader)

	sum := cc1.Add(cc2).Add(cc3)
	// Each chunk now holds up to 3x a 16-bit value, i.e. unnormalized.
	_, err := sum.Decrypt(g, d)
	require.Error(t, err, "unnormalized ciphertext should fail the per-chunk 16-bit DL search")
}

func TestChunkZeroDecryptsToZero(t *testing.T) {
	g := group.Ristretto255
	d, pub := randomKeypair(t)
	_ = pub

	cc := elgamal.EmptyChunked(g)
	got, err := cc.Decrypt(g, d)
	require.NoError(t, err)
	v, ok := got.Uint64()
	require.True(t, ok)
	assert.Zero(t, v)
}
