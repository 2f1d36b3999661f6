package sigma_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/internal/sigma"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/pool"
)

func TestDecryptEqualityWithdrawRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	pub := dk.EncryptionKey()

	oldValue := elgamal.AmountFromUint64(5_000)
	oldChunked, _ := elgamal.EncryptChunked(g, pub, oldValue, rand.Reader)

	const withdrawn = 1_234
	newValue := elgamal.AmountFromUint64(5_000 - withdrawn)

	context := [][]byte{[]byte("account-1"), []byte("token-USD")}

	pl := pool.NewPool(0)
	defer pl.TearDown()

	proof, newChunked, err := sigma.ProveDecryptEquality(
		g, params.DomainWithdraw, "ctx", context,
		dk.Scalar(), pub, oldChunked, withdrawn, pub, newValue, rand.Reader, pl,
	)
	require.NoError(t, err)

	err = sigma.VerifyDecryptEquality(g, params.DomainWithdraw, "ctx", context,
		pub, oldChunked, withdrawn, pub, newChunked, proof)
	require.NoError(t, err)
}

func TestDecryptEqualityRejectsWrongSubtrahend(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	pub := dk.EncryptionKey()

	oldValue := elgamal.AmountFromUint64(5_000)
	oldChunked, _ := elgamal.EncryptChunked(g, pub, oldValue, rand.Reader)
	newValue := elgamal.AmountFromUint64(5_000 - 1_234)
	context := [][]byte{[]byte("account-1"), []byte("token-USD")}

	proof, newChunked, err := sigma.ProveDecryptEquality(
		g, params.DomainWithdraw, "ctx", context,
		dk.Scalar(), pub, oldChunked, 1_234, pub, newValue, rand.Reader, nil,
	)
	require.NoError(t, err)

	err = sigma.VerifyDecryptEquality(g, params.DomainWithdraw, "ctx", context,
		pub, oldChunked, 1_235, pub, newChunked, proof)
	require.Error(t, err)
}

func TestDecryptEqualityRotateRoundTrip(t *testing.T) {
	g := group.Ristretto255
	oldKey := key.Generate(g, rand.Reader)
	newKey := key.Generate(g, rand.Reader)
	oldPub := oldKey.EncryptionKey()
	newPub := newKey.EncryptionKey()

	value := elgamal.AmountFromUint64(42_000)
	oldChunked, _ := elgamal.EncryptChunked(g, oldPub, value, rand.Reader)

	context := [][]byte{[]byte("account-7"), []byte("token-EUR")}

	proof, newChunked, err := sigma.ProveDecryptEquality(
		g, params.DomainRotate, "ctx", context,
		oldKey.Scalar(), oldPub, oldChunked, 0, newPub, value, rand.Reader, nil,
	)
	require.NoError(t, err)

	err = sigma.VerifyDecryptEquality(g, params.DomainRotate, "ctx", context,
		oldPub, oldChunked, 0, newPub, newChunked, proof)
	require.NoError(t, err)
}

func TestDecryptEqualityRejectsForgedKey(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	pub := dk.EncryptionKey()
	wrongKey := key.Generate(g, rand.Reader)

	value := elgamal.AmountFromUint64(100)
	oldChunked, _ := elgamal.EncryptChunked(g, pub, value, rand.Reader)
	context := [][]byte{[]byte("account"), []byte("token")}

	proof, newChunked, err := sigma.ProveDecryptEquality(
		g, params.DomainNormalize, "ctx", context,
		wrongKey.Scalar(), pub, oldChunked, 0, pub, value, rand.Reader, nil,
	)
	require.NoError(t, err)

	err = sigma.VerifyDecryptEquality(g, params.DomainNormalize, "ctx", context,
		pub, oldChunked, 0, pub, newChunked, proof)
	require.Error(t, err)
}
