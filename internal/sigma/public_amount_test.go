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

func TestPublicAmountRoundTrip(t *testing.T) {
	g := group.Ristretto255
	recipient := key.Generate(g, rand.Reader)
	pub := recipient.EncryptionKey()

	value := elgamal.AmountFromUint64(9_999)
	context := [][]byte{[]byte("sender"), []byte("recipient"), []byte("token")}

	pl := pool.NewPool(0)
	defer pl.TearDown()

	proof, chunked, err := sigma.ProvePublicAmount(g, params.DomainTransfer, "ctx", context, pub, value, rand.Reader, pl)
	require.NoError(t, err)

	err = sigma.VerifyPublicAmount(g, params.DomainTransfer, "ctx", context, pub, value, chunked, proof)
	require.NoError(t, err)
}

func TestPublicAmountRejectsWrongPublicValue(t *testing.T) {
	g := group.Ristretto255
	auditor := key.Generate(g, rand.Reader)
	pub := auditor.EncryptionKey()

	value := elgamal.AmountFromUint64(500)
	context := [][]byte{[]byte("sender"), []byte("auditor-0"), []byte("token")}

	proof, chunked, err := sigma.ProvePublicAmount(g, params.DomainTransfer, "ctx", context, pub, value, rand.Reader, nil)
	require.NoError(t, err)

	wrongValue := elgamal.AmountFromUint64(501)
	err = sigma.VerifyPublicAmount(g, params.DomainTransfer, "ctx", context, pub, wrongValue, chunked, proof)
	require.Error(t, err)
}

func TestPublicAmountMultipleLegsShareValue(t *testing.T) {
	g := group.Ristretto255
	recipient := key.Generate(g, rand.Reader)
	auditor := key.Generate(g, rand.Reader)

	value := elgamal.AmountFromUint64(7_500)
	context := [][]byte{[]byte("sender"), []byte("token")}

	recipientProof, recipientChunked, err := sigma.ProvePublicAmount(
		g, params.DomainTransfer, "ctx", context, recipient.EncryptionKey(), value, rand.Reader, nil)
	require.NoError(t, err)

	auditorProof, auditorChunked, err := sigma.ProvePublicAmount(
		g, params.DomainTransfer, "ctx", context, auditor.EncryptionKey(), value, rand.Reader, nil)
	require.NoError(t, err)

	require.NoError(t, sigma.VerifyPublicAmount(g, params.DomainTransfer, "ctx", context,
		recipient.EncryptionKey(), value, recipientChunked, recipientProof))
	require.NoError(t, sigma.VerifyPublicAmount(g, params.DomainTransfer, "ctx", context,
		auditor.EncryptionKey(), value, auditorChunked, auditorProof))
}
