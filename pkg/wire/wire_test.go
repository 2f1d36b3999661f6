package wire_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/pool"
	"github.com/confidential-assets/ca-core/pkg/wire"
	"github.com/confidential-assets/ca-core/pkg/zk/normalize"
	"github.com/confidential-assets/ca-core/pkg/zk/rotate"
	"github.com/confidential-assets/ca-core/pkg/zk/transfer"
	"github.com/confidential-assets/ca-core/pkg/zk/withdraw"
)

func TestCiphertextRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	ct, _ := elgamal.Encrypt(g, dk.EncryptionKey(), group.RandomScalar(rand.Reader, g), rand.Reader)

	enc, err := wire.EncodeCiphertext(ct)
	require.NoError(t, err)
	assert.Len(t, enc, 64)

	dec, err := wire.DecodeCiphertext(g, enc)
	require.NoError(t, err)
	assert.True(t, ct.C.Equal(dec.C))
	assert.True(t, ct.D.Equal(dec.D))
}

func TestChunkedCiphertextRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	cc, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), elgamal.AmountFromUint64(1_234_567), rand.Reader)

	enc, err := wire.EncodeChunkedCiphertext(cc)
	require.NoError(t, err)
	assert.Len(t, enc, 512)

	dec, err := wire.DecodeChunkedCiphertext(g, enc)
	require.NoError(t, err)
	for i := range cc.Chunks {
		assert.True(t, cc.Chunks[i].C.Equal(dec.Chunks[i].C))
		assert.True(t, cc.Chunks[i].D.Equal(dec.Chunks[i].D))
	}
}

func TestChunkedCiphertextRejectsWrongLength(t *testing.T) {
	g := group.Ristretto255
	_, err := wire.DecodeChunkedCiphertext(g, make([]byte, 511))
	assert.ErrorIs(t, err, wire.ErrInvalidEncoding)
}

func TestEncryptionKeyRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)

	enc, err := wire.EncodeEncryptionKey(dk.EncryptionKey())
	require.NoError(t, err)
	assert.Len(t, enc, 32)

	dec, err := wire.DecodeEncryptionKey(g, enc)
	require.NoError(t, err)
	assert.True(t, dk.EncryptionKey().Equal(dec))
}

func TestWithdrawalProofRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)

	value := elgamal.AmountFromUint64(5_000_000)
	oldChunked, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), value, rand.Reader)

	public := withdraw.Public{
		Account:    []byte("acct"),
		Token:      []byte("USD"),
		Pub:        dk.EncryptionKey(),
		OldChunked: oldChunked,
		Amount:     1_000_000,
	}
	private := withdraw.Private{DecryptionKey: dk, OldValue: value}

	pl := pool.NewPool(0)
	defer pl.TearDown()

	proof, newChunked, err := withdraw.NewProof(g, public, private, rand.Reader, pl)
	require.NoError(t, err)

	enc, err := wire.EncodeWithdrawalProof(proof)
	require.NoError(t, err)

	decoded, err := wire.DecodeWithdrawalProof(g, enc)
	require.NoError(t, err)
	require.NoError(t, decoded.Verify(g, public, newChunked))
}

func TestWithdrawalProofRejectsUnsupportedVersion(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	value := elgamal.AmountFromUint64(10)
	oldChunked, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), value, rand.Reader)

	public := withdraw.Public{Account: []byte("a"), Token: []byte("t"), Pub: dk.EncryptionKey(), OldChunked: oldChunked, Amount: 1}
	private := withdraw.Private{DecryptionKey: dk, OldValue: value}
	proof, _, err := withdraw.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	enc, err := wire.EncodeWithdrawalProof(proof)
	require.NoError(t, err)
	enc[0] = 0xff
	enc[1] = 0xff

	_, err = wire.DecodeWithdrawalProof(g, enc)
	assert.ErrorIs(t, err, wire.ErrUnsupportedVersion)
}

func TestWithdrawalProofRejectsTruncation(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)
	value := elgamal.AmountFromUint64(10)
	oldChunked, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), value, rand.Reader)

	public := withdraw.Public{Account: []byte("a"), Token: []byte("t"), Pub: dk.EncryptionKey(), OldChunked: oldChunked, Amount: 1}
	private := withdraw.Private{DecryptionKey: dk, OldValue: value}
	proof, _, err := withdraw.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	enc, err := wire.EncodeWithdrawalProof(proof)
	require.NoError(t, err)

	_, err = wire.DecodeWithdrawalProof(g, enc[:len(enc)-1])
	assert.ErrorIs(t, err, wire.ErrInvalidEncoding)
}

func TestNormalizationProofRoundTrip(t *testing.T) {
	g := group.Ristretto255
	dk := key.Generate(g, rand.Reader)

	value := elgamal.AmountFromUint64(1 << 40)
	deposit1, _ := elgamal.EncryptChunked(g, dk.EncryptionKey(), value, rand.Reader)
	unnormalized := elgamal.EmptyChunked(g).Add(deposit1)

	public := normalize.Public{Account: []byte("acct"), Token: []byte("USD"), Pub: dk.EncryptionKey(), OldChunked: unnormalized}
	private := normalize.Private{DecryptionKey: dk, OldValue: value}

	proof, newChunked, err := normalize.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	enc, err := wire.EncodeNormalizationProof(proof)
	require.NoError(t, err)

	decoded, err := wire.DecodeNormalizationProof(g, enc)
	require.NoError(t, err)
	require.NoError(t, decoded.Verify(g, public, newChunked))
}

func TestRotationProofRoundTrip(t *testing.T) {
	g := group.Ristretto255
	oldKey := key.Generate(g, rand.Reader)
	newKey := key.Generate(g, rand.Reader)

	value := elgamal.AmountFromUint64(777)
	oldChunked, _ := elgamal.EncryptChunked(g, oldKey.EncryptionKey(), value, rand.Reader)

	public := rotate.Public{
		Account:    []byte("acct"),
		Token:      []byte("USD"),
		OldPub:     oldKey.EncryptionKey(),
		NewPub:     newKey.EncryptionKey(),
		OldChunked: oldChunked,
	}
	private := rotate.Private{OldDecryptionKey: oldKey, NewDecryptionKey: newKey, OldValue: value}

	proof, newChunked, err := rotate.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	enc, err := wire.EncodeRotationProof(proof)
	require.NoError(t, err)

	decoded, err := wire.DecodeRotationProof(g, enc)
	require.NoError(t, err)
	require.NoError(t, decoded.Verify(g, public, newChunked))
}

func TestTransferEnvelopeRoundTrip(t *testing.T) {
	g := group.Ristretto255
	sender := key.Generate(g, rand.Reader)
	recipient := key.Generate(g, rand.Reader)
	auditor := key.Generate(g, rand.Reader)

	senderValue := elgamal.AmountFromUint64(2_000_000_000)
	senderOldChunked, _ := elgamal.EncryptChunked(g, sender.EncryptionKey(), senderValue, rand.Reader)

	public := transfer.Public{
		Account:          []byte("acct-sender"),
		Token:            []byte("USD"),
		SenderPub:        sender.EncryptionKey(),
		RecipientPub:     recipient.EncryptionKey(),
		AuditorPubs:      []key.EncryptionKey{auditor.EncryptionKey()},
		SenderOldChunked: senderOldChunked,
		Amount:           500_000_000,
	}
	private := transfer.Private{SenderDecryptionKey: sender, SenderOldValue: senderValue}

	proof, out, err := transfer.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	enc, err := wire.EncodeTransferEnvelope(proof, out, public.AuditorPubs)
	require.NoError(t, err)

	decodedProof, decodedOut, decodedAuditors, err := wire.DecodeTransferEnvelope(g, enc)
	require.NoError(t, err)
	require.Len(t, decodedAuditors, 1)
	assert.True(t, decodedAuditors[0].Equal(auditor.EncryptionKey()))
	require.NoError(t, decodedProof.Verify(g, public, decodedOut))
}

func TestTransferEnvelopeNoAuditorsRoundTrip(t *testing.T) {
	g := group.Ristretto255
	sender := key.Generate(g, rand.Reader)
	recipient := key.Generate(g, rand.Reader)

	senderValue := elgamal.AmountFromUint64(1_000)
	senderOldChunked, _ := elgamal.EncryptChunked(g, sender.EncryptionKey(), senderValue, rand.Reader)

	public := transfer.Public{
		Account:          []byte("acct"),
		Token:            []byte("USD"),
		SenderPub:        sender.EncryptionKey(),
		RecipientPub:     recipient.EncryptionKey(),
		SenderOldChunked: senderOldChunked,
		Amount:           100,
	}
	private := transfer.Private{SenderDecryptionKey: sender, SenderOldValue: senderValue}

	proof, out, err := transfer.NewProof(g, public, private, rand.Reader, nil)
	require.NoError(t, err)

	enc, err := wire.EncodeTransferEnvelope(proof, out, nil)
	require.NoError(t, err)

	decodedProof, decodedOut, decodedAuditors, err := wire.DecodeTransferEnvelope(g, enc)
	require.NoError(t, err)
	assert.Len(t, decodedAuditors, 0)
	require.NoError(t, decodedProof.Verify(g, public, decodedOut))
}
