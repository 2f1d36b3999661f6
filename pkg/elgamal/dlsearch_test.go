package elgamal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
)

func TestDLSearchAllSixteenBitValuesSample(t *testing.T) {
	g := group.Ristretto255
	d, pub := randomKeypair(t)

	// Exhaustively checking all 2^16 values is unnecessary for a unit test;
	// sample boundary and representative values.
	for _, m := range []uint16{0, 1, 2, 65534, 65535, 32768, 12345} {
		var buf [32]byte
		buf[0], buf[1] = byte(m), byte(m>>8)
		ms := g.NewScalar()
		require.NoError(t, ms.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf[:]))

		ct, _ := elgamal.Encrypt(g, pub, ms, nil)
		got, err := ct.DecryptValue(g, d, 16)
		require.NoError(t, err)
		assert.EqualValues(t, m, got)
	}
}
