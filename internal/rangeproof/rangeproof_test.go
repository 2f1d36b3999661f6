package rangeproof_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/internal/rangeproof"
	"github.com/confidential-assets/ca-core/pkg/group"
)

func commit(g group.Group, value uint64, blinding group.Scalar) group.Point {
	var buf [32]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(value >> (8 * i))
	}
	v := g.NewScalar()
	if err := v.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf[:]); err != nil {
		panic(err)
	}
	return v.ActOnBase().Add(blinding.Act(g.H()))
}

func TestProveVerifyRoundTrip(t *testing.T) {
	g := group.Ristretto255
	for _, v := range []uint64{0, 1, 2, 65535, 12345, 32768} {
		blinding := group.RandomScalar(rand.Reader, g)
		C := commit(g, v, blinding)

		proof, err := rangeproof.Prove(g, v, blinding, 16, rand.Reader)
		require.NoError(t, err)
		require.NoError(t, rangeproof.Verify(g, C, proof))
	}
}

func TestProveRejectsOutOfRange(t *testing.T) {
	g := group.Ristretto255
	blinding := group.RandomScalar(rand.Reader, g)
	_, err := rangeproof.Prove(g, 1<<16, blinding, 16, rand.Reader)
	assert.ErrorIs(t, err, rangeproof.ErrValueOutOfRange)
}

func TestVerifyRejectsWrongCommitment(t *testing.T) {
	g := group.Ristretto255
	blinding := group.RandomScalar(rand.Reader, g)
	C := commit(g, 42, blinding)

	proof, err := rangeproof.Prove(g, 42, blinding, 16, rand.Reader)
	require.NoError(t, err)

	wrongC := commit(g, 43, blinding)
	err = rangeproof.Verify(g, wrongC, proof)
	assert.ErrorIs(t, err, rangeproof.ErrDigitSumMismatch)
	_ = C
}

func TestVerifyRejectsTamperedResponse(t *testing.T) {
	g := group.Ristretto255
	blinding := group.RandomScalar(rand.Reader, g)
	C := commit(g, 1000, blinding)

	proof, err := rangeproof.Prove(g, 1000, blinding, 16, rand.Reader)
	require.NoError(t, err)

	tampered := *proof
	tampered.S = append([][2]group.Scalar{}, proof.S...)
	tampered.S[0] = [2]group.Scalar{group.RandomScalar(rand.Reader, g), proof.S[0][1]}

	err = rangeproof.Verify(g, C, &tampered)
	assert.ErrorIs(t, err, rangeproof.ErrRingMismatch)
}

func TestVerifyBatch(t *testing.T) {
	g := group.Ristretto255
	const n = 8
	commitments := make([]group.Point, n)
	proofs := make([]*rangeproof.Proof, n)
	for i := 0; i < n; i++ {
		blinding := group.RandomScalar(rand.Reader, g)
		v := uint64(i * 1000)
		commitments[i] = commit(g, v, blinding)
		p, err := rangeproof.Prove(g, v, blinding, 16, rand.Reader)
		require.NoError(t, err)
		proofs[i] = p
	}
	assert.NoError(t, rangeproof.VerifyBatch(g, commitments, proofs))

	// Corrupt one entry; the batch call should surface its failure.
	commitments[3] = commit(g, 999999, group.RandomScalar(rand.Reader, g))
	assert.Error(t, rangeproof.VerifyBatch(g, commitments, proofs))
}
