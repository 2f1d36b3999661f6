package withdraw_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/pool"
	"github.com/confidential-assets/ca-core/pkg/zk/withdraw"
)

func TestNewProofVerifyRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	pub := dk.EncryptionKey()

	oldValue := elgamal.AmountFromUint64(10_000)
	oldChunked, _ := elgamal.EncryptChunked(g, pub, oldValue, rand.Reader)

	public := withdraw.Public{
		Account:    []byte("acct-1"),
		Token:      []byte("USD"),
		Pub:        pub,
		OldChunked: oldChunked,
		Amount:     3_000,
	}
	private := withdraw.Private{DecryptionKey: dk, OldValue: oldValue}

	pl := pool.NewPool(0)
	defer pl.TearDown()

	proof, newChunked, err := withdraw.NewProof(g, public, private, rand.Reader, pl)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(g, public, newChunked))
}

func TestNewProofRejectsInsufficientBalance(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	pub := dk.EncryptionKey()

	oldValue := elgamal.AmountFromUint64(100)
	oldChunked, _ := elgamal.EncryptChunked(g, pub, oldValue, rand.Reader)

	public := withdraw.Public{
		Account:    []byte("acct-1"),
		Token:      []byte("USD"),
		Pub:        pub,
		OldChunked: oldChunked,
		Amount:     200,
	}
	private := withdraw.Private{DecryptionKey: dk, OldValue: oldValue}

	_, _, err := withdraw.NewProof(g, public, private, rand.Reader, nil)
	assert.ErrorIs(t, err, withdraw.ErrInsufficientBalance)
}

func TestVerifyRejectsTamperedAmount(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	pub := dk.EncryptionKey()

	oldValue := elgamal.AmountFromUint64(10_000)
	oldChunked, _ := elgamal.EncryptChunked(g, pub, oldValue, rand.Reader)

	public := withdraw.Public{
		Account:    []byte("acct-1"),
		Token:      []byte("USD"),
		Pub:        pub,
		OldChunked: oldChunked,
		Amount:     3_000,
	}
	private := withdraw.Private{DecryptionKey: dk, OldValue: oldValue}

	proof, newChunked, err := withdraw.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	tampered := public
	tampered.Amount = 3_001
	assert.Error(t, proof.Verify(g, tampered, newChunked))
}
