// Package normalize implements the normalization Sigma proof of §4.4.3:
// an unnormalized ciphertext (chunks that may exceed 16 bits after
// repeated homomorphic adds) is replaced by one with the same plaintext
// total but every chunk back in range.
//
// Grounded on the teacher's pkg/zk/elog package shape; the proof itself
// is internal/sigma's decrypt-equality engine with a zero public
// subtrahend and the same encryption key on both sides.
package normalize

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

// Public is the statement a normalization proof attests to.
type Public struct {
	Account []byte
	Token   []byte

	Pub        key.EncryptionKey
	OldChunked *elgamal.ChunkedCiphertext
}

// Private is the prover's witness.
type Private struct {
	DecryptionKey *key.DecryptionKey

	// OldValue is OldChunked's plaintext total, which may require
	// summing chunk values wider than 16 bits to recover.
	OldValue *elgamal.Amount
}

// Proof is a normalization Sigma proof plus its 8 embedded range proofs.
type Proof struct {
	Inner *sigma.DecryptEqualityProof
}

// NewProof builds the proof and the new, normalized ciphertext.
func NewProof(g group.Group, public Public, private Private, rng io.Reader, pl *pool.Pool) (*Proof, *elgamal.ChunkedCiphertext, error) {
	inner, newChunked, err := sigma.ProveDecryptEquality(
		g, params.DomainNormalize, "addr", [][]byte{public.Account, public.Token},
		private.DecryptionKey.Scalar(), public.Pub, public.OldChunked,
		0, public.Pub, private.OldValue, rng, pl,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("zk/normalize: %w", err)
	}
	return &Proof{Inner: inner}, newChunked, nil
}

// Verify checks the proof against the claimed new ciphertext.
func (p *Proof) Verify(g group.Group, public Public, newChunked *elgamal.ChunkedCiphertext) error {
	if err := sigma.VerifyDecryptEquality(
		g, params.DomainNormalize, "addr", [][]byte{public.Account, public.Token},
		public.Pub, public.OldChunked, 0, public.Pub, newChunked, p.Inner,
	); err != nil {
		return fmt.Errorf("zk/normalize: %w", err)
	}
	return nil
}
