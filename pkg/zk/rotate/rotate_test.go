package rotate_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/pool"
	"github.com/confidential-assets/ca-core/pkg/zk/rotate"
)

func TestNewProofVerifyRoundTrip(t *testing.T) {
	g := group.Ristretto255
	oldKey := key.Generate(g, rand.Reader)
	newKey := key.Generate(g, rand.Reader)

	value := elgamal.AmountFromUint64(1_000_000_000)
	oldChunked, _ := elgamal.EncryptChunked(g, oldKey.EncryptionKey(), value, rand.Reader)

	public := rotate.Public{
		Account:    []byte("acct"),
		Token:      []byte("USD"),
		OldPub:     oldKey.EncryptionKey(),
		NewPub:     newKey.EncryptionKey(),
		OldChunked: oldChunked,
	}
	private := rotate.Private{
		OldDecryptionKey: oldKey,
		NewDecryptionKey: newKey,
		OldValue:         value,
	}

	pl := pool.NewPool(0)
	defer pl.TearDown()

	proof, newChunked, err := rotate.NewProof(g, public, private, rand.Reader, pl)
	require.NoError(t, err)
	require.NoError(t, proof.Verify(g, public, newChunked))
}

func TestVerifyRejectsWithoutNewKeyKnowledge(t *testing.T) {
	g := group.Ristretto255
	oldKey := key.Generate(g, rand.Reader)
	newKey := key.Generate(g, rand.Reader)
	unrelatedKey := key.Generate(g, rand.Reader)

	value := elgamal.AmountFromUint64(500)
	oldChunked, _ := elgamal.EncryptChunked(g, oldKey.EncryptionKey(), value, rand.Reader)

	public := rotate.Public{
		Account:    []byte("acct"),
		Token:      []byte("USD"),
		OldPub:     oldKey.EncryptionKey(),
		NewPub:     newKey.EncryptionKey(),
		OldChunked: oldChunked,
	}
	private := rotate.Private{
		OldDecryptionKey: oldKey,
		NewDecryptionKey: unrelatedKey,
		OldValue:         value,
	}

	proof, newChunked, err := rotate.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	assert.Error(t, proof.Verify(g, public, newChunked))
}
