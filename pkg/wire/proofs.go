package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/internal/sigma"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/zk/normalize"
	"github.com/confidential-assets/ca-core/pkg/zk/rotate"
	"github.com/confidential-assets/ca-core/pkg/zk/transfer"
	"github.com/confidential-assets/ca-core/pkg/zk/withdraw"
)

func versionPrefix() []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], params.WireVersionV1)
	return buf[:]
}

func (c *cursor) requireVersion() error {
	v, err := c.uint16()
	if err != nil {
		return err
	}
	if v != params.WireVersionV1 {
		return ErrUnsupportedVersion
	}
	return nil
}

// EncodeWithdrawalProof encodes a withdrawal proof: a version tag
// followed by its decrypt-equality Sigma block and 8 framed range
// proofs (§6.1).
func EncodeWithdrawalProof(p *withdraw.Proof) ([]byte, error) {
	buf := append([]byte{}, versionPrefix()...)
	buf, err := appendDecryptEquality(buf, p.Inner)
	if err != nil {
		return nil, fmt.Errorf("wire: withdrawal proof: %w", err)
	}
	return buf, nil
}

// DecodeWithdrawalProof parses a withdrawal proof encoded by
// EncodeWithdrawalProof.
func DecodeWithdrawalProof(g group.Group, data []byte) (*withdraw.Proof, error) {
	c := newCursor(data)
	if err := c.requireVersion(); err != nil {
		return nil, err
	}
	inner, err := c.decryptEquality(g)
	if err != nil {
		return nil, fmt.Errorf("wire: withdrawal proof: %w", err)
	}
	if len(c.remaining()) != 0 {
		return nil, ErrInvalidEncoding
	}
	return &withdraw.Proof{Inner: inner}, nil
}

// EncodeNormalizationProof encodes a normalization proof: the same
// wrapped-decrypt-equality shape as a withdrawal proof.
func EncodeNormalizationProof(p *normalize.Proof) ([]byte, error) {
	buf := append([]byte{}, versionPrefix()...)
	buf, err := appendDecryptEquality(buf, p.Inner)
	if err != nil {
		return nil, fmt.Errorf("wire: normalization proof: %w", err)
	}
	return buf, nil
}

// DecodeNormalizationProof parses a normalization proof encoded by
// EncodeNormalizationProof.
func DecodeNormalizationProof(g group.Group, data []byte) (*normalize.Proof, error) {
	c := newCursor(data)
	if err := c.requireVersion(); err != nil {
		return nil, err
	}
	inner, err := c.decryptEquality(g)
	if err != nil {
		return nil, fmt.Errorf("wire: normalization proof: %w", err)
	}
	if len(c.remaining()) != 0 {
		return nil, ErrInvalidEncoding
	}
	return &normalize.Proof{Inner: inner}, nil
}

// EncodeRotationProof encodes a rotation proof: the shared-amount
// decrypt-equality block followed by the independent new-key knowledge
// proof (Comm, Z).
func EncodeRotationProof(p *rotate.Proof) ([]byte, error) {
	buf := append([]byte{}, versionPrefix()...)
	buf, err := appendDecryptEquality(buf, p.Inner)
	if err != nil {
		return nil, fmt.Errorf("wire: rotation proof: %w", err)
	}
	buf, err = appendPoint(buf, p.NewKeyKP.Comm)
	if err != nil {
		return nil, fmt.Errorf("wire: rotation proof: new-key comm: %w", err)
	}
	buf, err = appendScalar(buf, p.NewKeyKP.Z)
	if err != nil {
		return nil, fmt.Errorf("wire: rotation proof: new-key response: %w", err)
	}
	return buf, nil
}

// DecodeRotationProof parses a rotation proof encoded by
// EncodeRotationProof.
func DecodeRotationProof(g group.Group, data []byte) (*rotate.Proof, error) {
	c := newCursor(data)
	if err := c.requireVersion(); err != nil {
		return nil, err
	}
	inner, err := c.decryptEquality(g)
	if err != nil {
		return nil, fmt.Errorf("wire: rotation proof: %w", err)
	}
	comm, err := c.point(g)
	if err != nil {
		return nil, fmt.Errorf("wire: rotation proof: new-key comm: %w", err)
	}
	z, err := c.scalar(g)
	if err != nil {
		return nil, fmt.Errorf("wire: rotation proof: new-key response: %w", err)
	}
	if len(c.remaining()) != 0 {
		return nil, ErrInvalidEncoding
	}
	return &rotate.Proof{Inner: inner, NewKeyKP: &sigma.KnowledgeProof{Comm: comm, Z: z}}, nil
}

// EncodeTransferEnvelope encodes the full payload a transfer submission
// needs on the wire: a version tag, the auditor count and public keys
// (chosen per-transfer, unlike the sender/recipient keys which come from
// chain state), the output ciphertexts (sender's new available balance,
// the recipient's incoming ciphertext, one per auditor), and finally the
// sender/recipient/auditor Sigma legs in that order (§6.1).
func EncodeTransferEnvelope(p *transfer.Proof, out *transfer.Ciphertexts, auditorPubs []key.EncryptionKey) ([]byte, error) {
	if len(p.AuditorLegs) != len(auditorPubs) || len(out.Auditors) != len(auditorPubs) {
		return nil, fmt.Errorf("wire: transfer envelope: auditor count mismatch")
	}
	if len(auditorPubs) > 255 {
		return nil, fmt.Errorf("wire: transfer envelope: too many auditors for a 1-byte count")
	}

	buf := append([]byte{}, versionPrefix()...)
	buf = append(buf, byte(len(auditorPubs)))

	var err error
	for i, pub := range auditorPubs {
		buf, err = appendPoint(buf, pub)
		if err != nil {
			return nil, fmt.Errorf("wire: transfer envelope: auditor %d key: %w", i, err)
		}
	}

	buf, err = appendChunked(buf, out.SenderNew)
	if err != nil {
		return nil, fmt.Errorf("wire: transfer envelope: sender ciphertext: %w", err)
	}
	buf, err = appendChunked(buf, out.Recipient)
	if err != nil {
		return nil, fmt.Errorf("wire: transfer envelope: recipient ciphertext: %w", err)
	}
	for i, ct := range out.Auditors {
		buf, err = appendChunked(buf, ct)
		if err != nil {
			return nil, fmt.Errorf("wire: transfer envelope: auditor %d ciphertext: %w", i, err)
		}
	}

	buf, err = appendDecryptEquality(buf, p.SenderLeg)
	if err != nil {
		return nil, fmt.Errorf("wire: transfer envelope: sender leg: %w", err)
	}
	buf, err = appendPublicAmount(buf, p.RecipientLeg)
	if err != nil {
		return nil, fmt.Errorf("wire: transfer envelope: recipient leg: %w", err)
	}
	for i, leg := range p.AuditorLegs {
		buf, err = appendPublicAmount(buf, leg)
		if err != nil {
			return nil, fmt.Errorf("wire: transfer envelope: auditor %d leg: %w", i, err)
		}
	}
	return buf, nil
}

// DecodeTransferEnvelope parses a payload encoded by
// EncodeTransferEnvelope, returning the proof bundle, the output
// ciphertexts, and the auditor public key list in submission order.
func DecodeTransferEnvelope(g group.Group, data []byte) (*transfer.Proof, *transfer.Ciphertexts, []key.EncryptionKey, error) {
	c := newCursor(data)
	if err := c.requireVersion(); err != nil {
		return nil, nil, nil, err
	}
	countByte, err := c.byte()
	if err != nil {
		return nil, nil, nil, err
	}
	count := int(countByte)

	auditorPubs := make([]key.EncryptionKey, count)
	for i := range auditorPubs {
		p, err := c.point(g)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("wire: transfer envelope: auditor %d key: %w", i, err)
		}
		auditorPubs[i] = p
	}

	senderNew, err := c.chunked(g)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("wire: transfer envelope: sender ciphertext: %w", err)
	}
	recipient, err := c.chunked(g)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("wire: transfer envelope: recipient ciphertext: %w", err)
	}
	auditorCts := make([]*elgamal.ChunkedCiphertext, count)
	for i := range auditorCts {
		ct, err := c.chunked(g)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("wire: transfer envelope: auditor %d ciphertext: %w", i, err)
		}
		auditorCts[i] = ct
	}

	senderLeg, err := c.decryptEquality(g)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("wire: transfer envelope: sender leg: %w", err)
	}
	recipientLeg, err := c.publicAmount(g)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("wire: transfer envelope: recipient leg: %w", err)
	}
	auditorLegs := make([]*sigma.PublicAmountProof, count)
	for i := range auditorLegs {
		leg, err := c.publicAmount(g)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("wire: transfer envelope: auditor %d leg: %w", i, err)
		}
		auditorLegs[i] = leg
	}

	if len(c.remaining()) != 0 {
		return nil, nil, nil, ErrInvalidEncoding
	}

	proof := &transfer.Proof{SenderLeg: senderLeg, RecipientLeg: recipientLeg, AuditorLegs: auditorLegs}
	out := &transfer.Ciphertexts{SenderNew: senderNew, Recipient: recipient, Auditors: auditorCts}
	return proof, out, auditorPubs, nil
}
