// Package withdraw implements the withdrawal Sigma proof of §4.4.1:
// confidential balance decreases by a publicly revealed amount w, proven
// without revealing the remaining balance.
//
// Grounded on the teacher's pkg/zk/elog (Public/Private/Proof, NewProof/
// Verify, _ref_elog.go.bak) for the package shape; the proof itself is
// internal/sigma's decrypt-equality engine with the public subtrahend set
// to the withdrawn amount and the same encryption key on both sides.
package withdraw

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

// Error is an exhaustive withdrawal-proof error kind.
type Error string

func (e Error) Error() string { return "zk/withdraw: " + string(e) }

// ErrInsufficientBalance is returned by NewProof when the requested
// amount exceeds the decrypted available balance.
const ErrInsufficientBalance Error = "withdrawal amount exceeds available balance"

// Public is the statement a withdrawal proof attests to.
type Public struct {
	// Account and Token are the address bytes absorbed into the
	// transcript so a proof cannot be replayed against a different
	// account or token (§4.4.5).
	Account []byte
	Token   []byte

	// Pub is the account's encryption key, unchanged by a withdrawal.
	Pub key.EncryptionKey

	// OldChunked is the current available ciphertext.
	OldChunked *elgamal.ChunkedCiphertext

	// Amount is the amount being withdrawn to the public ledger.
	Amount uint64
}

// Private is the prover's witness.
type Private struct {
	// DecryptionKey is the account's secret scalar d.
	DecryptionKey *key.DecryptionKey

	// OldValue is OldChunked's plaintext total, already recovered
	// client-side via pkg/elgamal's bounded discrete-log search.
	OldValue *elgamal.Amount
}

// Proof is a withdrawal Sigma proof plus its 8 embedded range proofs.
type Proof struct {
	Inner *sigma.DecryptEqualityProof
}

// NewProof builds the proof and the new available ciphertext to submit
// alongside it.
func NewProof(g group.Group, public Public, private Private, rng io.Reader, pl *pool.Pool) (*Proof, *elgamal.ChunkedCiphertext, error) {
	newValue, ok := private.OldValue.Sub(elgamal.AmountFromUint64(public.Amount))
	if !ok {
		return nil, nil, ErrInsufficientBalance
	}

	inner, newChunked, err := sigma.ProveDecryptEquality(
		g, params.DomainWithdraw, "addr", [][]byte{public.Account, public.Token},
		private.DecryptionKey.Scalar(), public.Pub, public.OldChunked,
		public.Amount, public.Pub, newValue, rng, pl,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("zk/withdraw: %w", err)
	}
	return &Proof{Inner: inner}, newChunked, nil
}

// Verify checks the proof against the claimed new available ciphertext.
func (p *Proof) Verify(g group.Group, public Public, newChunked *elgamal.ChunkedCiphertext) error {
	if err := sigma.VerifyDecryptEquality(
		g, params.DomainWithdraw, "addr", [][]byte{public.Account, public.Token},
		public.Pub, public.OldChunked, public.Amount, public.Pub, newChunked, p.Inner,
	); err != nil {
		return fmt.Errorf("zk/withdraw: %w", err)
	}
	return nil
}
