package normalize_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/pool"
	"github.com/confidential-assets/ca-core/pkg/zk/normalize"
)

func TestNewProofVerifyRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	pub := dk.EncryptionKey()

	// Simulate an unnormalized ciphertext: three deposits of 2^40 summed
	// homomorphically, pushing individual chunks past 16 bits.
	deposit := elgamal.AmountFromUint64(1 << 40)
	oldChunked, _ := elgamal.EncryptChunked(g, pub, deposit, rand.Reader)
	for i := 0; i < 2; i++ {
		c, _ := elgamal.EncryptChunked(g, pub, deposit, rand.Reader)
		oldChunked = oldChunked.Add(c)
	}
	total := deposit.Add(deposit).Add(deposit)

	public := normalize.Public{
		Account:    []byte("acct"),
		Token:      []byte("USD"),
		Pub:        pub,
		OldChunked: oldChunked,
	}
	private := normalize.Private{DecryptionKey: dk, OldValue: total}

	pl := pool.NewPool(0)
	defer pl.TearDown()

	proof, newChunked, err := normalize.NewProof(g, public, private, rand.Reader, pl)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(g, public, newChunked))
}
