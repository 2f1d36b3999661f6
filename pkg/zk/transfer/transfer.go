// Package transfer implements the confidential-to-confidential transfer
// Sigma proof of §4.4.2: a sender moves a publicly-sized-but-privately-
// valued amount v to a recipient, optionally disclosed to a list of
// auditors, in one proof bundle.
//
// Grounded on the teacher's pkg/zk/elog package shape, composed from two
// internal/sigma engines: the sender leg is a decrypt-equality proof
// (amount subtracted from the sender's decrypted balance), and the
// recipient leg plus each auditor leg is a public-amount proof (a fresh
// ciphertext under that party's key proven to encode the same publicly
// agreed amount v). Every leg's transcript absorbs the full ordered
// (sender, recipient, auditor...) public key list per §4.4.5's tie-break
// rule, so permuting the auditor list changes every leg's proof even
// though each leg's core statement only needs its own key.
package transfer

import (
	"fmt"
	"io"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/internal/sigma"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/pool"
)

// Error is an exhaustive transfer-proof error kind.
type Error string

func (e Error) Error() string { return "zk/transfer: " + string(e) }

// ErrInsufficientBalance is returned by NewProof when the transfer amount
// exceeds the sender's decrypted available balance.
const ErrInsufficientBalance Error = "transfer amount exceeds available balance"

// Public is the statement a transfer proof attests to.
type Public struct {
	Account []byte
	Token   []byte

	SenderPub    key.EncryptionKey
	RecipientPub key.EncryptionKey
	// AuditorPubs is ordered; the transcript absorbs it in this order, so
	// a permuted auditor list is a different statement (§4.4.2 tie-break).
	AuditorPubs []key.EncryptionKey

	SenderOldChunked *elgamal.ChunkedCiphertext
	Amount           uint64
}

// Private is the prover's witness.
type Private struct {
	SenderDecryptionKey *key.DecryptionKey
	// SenderOldValue is SenderOldChunked's plaintext total.
	SenderOldValue *elgamal.Amount
}

// Proof bundles the sender leg, the recipient leg, and one leg per
// auditor, each with its own 8 embedded range proofs.
type Proof struct {
	SenderLeg     *sigma.DecryptEqualityProof
	RecipientLeg  *sigma.PublicAmountProof
	AuditorLegs   []*sigma.PublicAmountProof
}

// Ciphertexts holds the output ciphertexts a Proof is checked against:
// the sender's new available ciphertext, the recipient's incoming
// ciphertext, and one per auditor, in AuditorPubs order.
type Ciphertexts struct {
	SenderNew *elgamal.ChunkedCiphertext
	Recipient *elgamal.ChunkedCiphertext
	Auditors  []*elgamal.ChunkedCiphertext
}

// NewProof builds the proof bundle and the output ciphertexts.
func NewProof(g group.Group, public Public, private Private, rng io.Reader, pl *pool.Pool) (*Proof, *Ciphertexts, error) {
	newSenderValue, ok := private.SenderOldValue.Sub(elgamal.AmountFromUint64(public.Amount))
	if !ok {
		return nil, nil, ErrInsufficientBalance
	}

	context, err := transferContext(public)
	if err != nil {
		return nil, nil, fmt.Errorf("zk/transfer: %w", err)
	}

	senderLeg, senderNew, err := sigma.ProveDecryptEquality(
		g, params.DomainTransfer, "ctx", context,
		private.SenderDecryptionKey.Scalar(), public.SenderPub, public.SenderOldChunked,
		public.Amount, public.SenderPub, newSenderValue, rng, pl,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("zk/transfer: sender leg: %w", err)
	}

	transferValue := elgamal.AmountFromUint64(public.Amount)

	recipientLeg, recipientChunked, err := sigma.ProvePublicAmount(
		g, params.DomainTransfer, "ctx", context, public.RecipientPub, transferValue, rng, pl,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("zk/transfer: recipient leg: %w", err)
	}

	auditorLegs := make([]*sigma.PublicAmountProof, len(public.AuditorPubs))
	auditorChunked := make([]*elgamal.ChunkedCiphertext, len(public.AuditorPubs))
	for i, aPub := range public.AuditorPubs {
		leg, chunked, err := sigma.ProvePublicAmount(g, params.DomainTransfer, "ctx", context, aPub, transferValue, rng, pl)
		if err != nil {
			return nil, nil, fmt.Errorf("zk/transfer: auditor %d leg: %w", i, err)
		}
		auditorLegs[i] = leg
		auditorChunked[i] = chunked
	}

	return &Proof{
			SenderLeg:    senderLeg,
			RecipientLeg: recipientLeg,
			AuditorLegs:  auditorLegs,
		}, &Ciphertexts{
			SenderNew: senderNew,
			Recipient: recipientChunked,
			Auditors:  auditorChunked,
		}, nil
}

// Verify checks every leg of the proof against the claimed output
// ciphertexts.
func (p *Proof) Verify(g group.Group, public Public, out *Ciphertexts) error {
	if len(p.AuditorLegs) != len(public.AuditorPubs) || len(out.Auditors) != len(public.AuditorPubs) {
		return fmt.Errorf("zk/transfer: auditor count mismatch")
	}

	context, err := transferContext(public)
	if err != nil {
		return fmt.Errorf("zk/transfer: %w", err)
	}

	if err := sigma.VerifyDecryptEquality(
		g, params.DomainTransfer, "ctx", context,
		public.SenderPub, public.SenderOldChunked, public.Amount, public.SenderPub, out.SenderNew, p.SenderLeg,
	); err != nil {
		return fmt.Errorf("zk/transfer: sender leg: %w", err)
	}

	transferValue := elgamal.AmountFromUint64(public.Amount)

	if err := sigma.VerifyPublicAmount(
		g, params.DomainTransfer, "ctx", context, public.RecipientPub, transferValue, out.Recipient, p.RecipientLeg,
	); err != nil {
		return fmt.Errorf("zk/transfer: recipient leg: %w", err)
	}

	for i, aPub := range public.AuditorPubs {
		if err := sigma.VerifyPublicAmount(
			g, params.DomainTransfer, "ctx", context, aPub, transferValue, out.Auditors[i], p.AuditorLegs[i],
		); err != nil {
			return fmt.Errorf("zk/transfer: auditor %d leg: %w", i, err)
		}
	}
	return nil
}

// transferContext builds the ordered context byte list absorbed by every
// leg's transcript: account, token, sender key, recipient key, then each
// auditor key in list order.
func transferContext(public Public) ([][]byte, error) {
	context := make([][]byte, 0, 4+len(public.AuditorPubs))
	context = append(context, public.Account, public.Token)

	senderBytes, err := public.SenderPub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding sender key: %w", err)
	}
	recipientBytes, err := public.RecipientPub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding recipient key: %w", err)
	}
	context = append(context, senderBytes, recipientBytes)

	for i, aPub := range public.AuditorPubs {
		b, err := aPub.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("encoding auditor %d key: %w", i, err)
		}
		context = append(context, b)
	}
	return context, nil
}
