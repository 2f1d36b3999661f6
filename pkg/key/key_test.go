package key_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
)

func TestGenerateProducesDistinctKeys(t *testing.T) {
	g := group.Ristretto255
	a := key.Generate(g, rand.Reader)
	b := key.Generate(g, rand.Reader)
	assert.False(t, a.EncryptionKey().Equal(b.EncryptionKey()))
}

func TestFromSignatureDeterministic(t *testing.T) {
	g := group.Ristretto255
	sig := []byte("a fixed signature over the decryption key claim domain")

	a := key.FromSignature(g, sig)
	b := key.FromSignature(g, sig)
	assert.True(t, a.EncryptionKey().Equal(b.EncryptionKey()))

	other := key.FromSignature(g, []byte("a different signature"))
	assert.False(t, a.EncryptionKey().Equal(other.EncryptionKey()))
}

func TestEncryptionKeyIsInverseRelation(t *testing.T) {
	g := group.Ristretto255
	k := key.Generate(g, rand.Reader)

	// P = d^-1 * H, so d * P should equal H.
	recovered := k.Scalar().Act(k.EncryptionKey())
	assert.True(t, recovered.Equal(g.H()))
}

func TestZeroizeClearsScalar(t *testing.T) {
	g := group.Ristretto255
	k := key.Generate(g, rand.Reader)
	require.False(t, k.Scalar().IsZero())

	k.Zeroize()
	assert.True(t, k.Scalar().IsZero())
}
