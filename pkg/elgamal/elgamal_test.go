package elgamal_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
)

func randomKeypair(t *testing.T) (group.Scalar, elgamal.PublicKey) {
	t.Helper()
	g := group.Ristretto255
	d := group.RandomScalar(rand.Reader, g)
	pub := d.Invert().Act(g.H())
	return d, pub
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	g := group.Ristretto255
	d, pub := randomKeypair(t)

	m := uint16(12345)
	var buf [32]byte
	buf[0], buf[1] = byte(m), byte(m>>8)
	ms := g.NewScalar()
	require.NoError(t, ms.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf[:]))

	ct, _ := elgamal.Encrypt(g, pub, ms, rand.Reader)
	got, err := ct.DecryptValue(g, d, 16)
	require.NoError(t, err)
	assert.EqualValues(t, m, got)
}

func TestHomomorphicAdd(t *testing.T) {
	g := group.Ristretto255
	d, pub := randomKeypair(t)

	scalarOf := func(v uint16) group.Scalar {
		var buf [32]byte
		buf[0], buf[1] = byte(v), byte(v>>8)
		s := g.NewScalar()
		require.NoError(t, s.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf[:]))
		return s
	}

	c1, _ := elgamal.Encrypt(g, pub, scalarOf(100), rand.Reader)
	c2, _ := elgamal.Encrypt(g, pub, scalarOf(250), rand.Reader)
	sum := c1.Add(c2)

	got, err := sum.DecryptValue(g, d, 16)
	require.NoError(t, err)
	assert.EqualValues(t, 350, got)
}

func TestAmountOutOfRangeFails(t *testing.T) {
	g := group.Ristretto255
	d, pub := randomKeypair(t)

	var buf [32]byte
	buf[0], buf[1], buf[2] = 0, 0, 1 // 65536, one past 16-bit range
	ms := g.NewScalar()
	require.NoError(t, ms.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf[:]))

	ct, _ := elgamal.Encrypt(g, pub, ms, rand.Reader)
	_, err := ct.DecryptValue(g, d, 16)
	require.Error(t, err)
	var rangeErr *elgamal.AmountOutOfRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestCiphertextWriteToLength(t *testing.T) {
	g := group.Ristretto255
	_, pub := randomKeypair(t)
	ms := g.NewScalar()

	ct, _ := elgamal.Encrypt(g, pub, ms, rand.Reader)
	var buf bytes.Buffer
	n, err := ct.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 64, n)
	assert.Len(t, buf.Bytes(), 64)
}
