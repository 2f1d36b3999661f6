package elgamal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountChunkRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 65535, 65536, 1_000_000_000, 3 * (uint64(1) << 40), (uint64(1) << 63)} {
		a := AmountFromUint64(v)
		chunks := a.chunks()
		back := amountFromChunks(chunks)
		got, ok := back.Uint64()
		require.True(t, ok)
		assert.Equal(t, v, got, "value %d round-tripped incorrectly", v)
	}
}

func TestAmountSubUnderflow(t *testing.T) {
	a := AmountFromUint64(100)
	b := AmountFromUint64(200)
	_, ok := a.Sub(b)
	assert.False(t, ok)

	diff, ok := b.Sub(a)
	require.True(t, ok)
	v, _ := diff.Uint64()
	assert.EqualValues(t, 100, v)
}

func TestAmountAdd(t *testing.T) {
	a := AmountFromUint64(500_000_000)
	b := AmountFromUint64(500_000_000)
	sum := a.Add(b)
	v, ok := sum.Uint64()
	require.True(t, ok)
	assert.EqualValues(t, 1_000_000_000, v)
}
