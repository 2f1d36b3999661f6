// Package rotate implements the key-rotation Sigma proof of §4.4.4: the
// prover swaps their account's encryption key, proving both that they
// hold the old and new decryption keys and that the new ciphertext
// decrypts to the same total as the old one.
//
// Grounded on the teacher's pkg/zk/elog package shape; the shared-amount
// half of the statement reuses internal/sigma's decrypt-equality engine
// (zero public subtrahend, new public key on the output side); the
// "prover also holds d_new" half is an independent Schnorr proof of
// knowledge (internal/sigma.KnowledgeProof) run against its own
// transcript domain, since it is not otherwise implied by the
// decrypt-equality statement.
package rotate

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

// Public is the statement a rotation proof attests to.
type Public struct {
	Account []byte
	Token   []byte

	OldPub     key.EncryptionKey
	NewPub     key.EncryptionKey
	OldChunked *elgamal.ChunkedCiphertext
}

// Private is the prover's witness: both decryption keys and the
// plaintext total the old ciphertext decrypts to.
type Private struct {
	OldDecryptionKey *key.DecryptionKey
	NewDecryptionKey *key.DecryptionKey
	OldValue         *elgamal.Amount
}

// Proof is a rotation Sigma proof: the shared-amount decrypt-equality
// proof plus the independent new-key knowledge proof.
type Proof struct {
	Inner    *sigma.DecryptEqualityProof
	NewKeyKP *sigma.KnowledgeProof
}

// NewProof builds the proof and the new ciphertext under NewPub.
func NewProof(g group.Group, public Public, private Private, rng io.Reader, pl *pool.Pool) (*Proof, *elgamal.ChunkedCiphertext, error) {
	context := [][]byte{public.Account, public.Token}

	inner, newChunked, err := sigma.ProveDecryptEquality(
		g, params.DomainRotate, "addr", context,
		private.OldDecryptionKey.Scalar(), public.OldPub, public.OldChunked,
		0, public.NewPub, private.OldValue, rng, pl,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("zk/rotate: %w", err)
	}

	newKeyKP := sigma.ProveKnowledge(
		g, params.DomainRotateNewKey, "addr", context,
		private.NewDecryptionKey.Scalar(), public.NewPub, g.H(), rng,
	)

	return &Proof{Inner: inner, NewKeyKP: newKeyKP}, newChunked, nil
}

// Verify checks both halves of the proof against the claimed new
// ciphertext.
func (p *Proof) Verify(g group.Group, public Public, newChunked *elgamal.ChunkedCiphertext) error {
	context := [][]byte{public.Account, public.Token}

	if err := sigma.VerifyDecryptEquality(
		g, params.DomainRotate, "addr", context,
		public.OldPub, public.OldChunked, 0, public.NewPub, newChunked, p.Inner,
	); err != nil {
		return fmt.Errorf("zk/rotate: %w", err)
	}

	if !sigma.VerifyKnowledge(g, params.DomainRotateNewKey, "addr", context, public.NewPub, g.H(), p.NewKeyKP) {
		return fmt.Errorf("zk/rotate: new-key knowledge check failed")
	}
	return nil
}
