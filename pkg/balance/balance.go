// Package balance mirrors the on-chain BalanceRecord of §3/§4.6: a
// pending/available ciphertext pair per (account, token), the
// isFrozen/isNormalized bits the chain tracks, and the derived client-side
// state label (§4.6's Unregistered/Registered/Normalized/Unnormalized/
// Frozen table) used to decide which operations are currently legal.
//
// Grounded in the teacher's pkg/pedersen (string-based exhaustive Error
// type) for error handling; the state machine itself has no direct
// teacher analogue (the teacher's pkg/state.State tracks round-message
// receipt for the MPC protocol, a different kind of state machine), so
// its transitions are built directly from spec §4.6's table and
// invariants rather than adapted from a specific teacher file.
package balance

import (
	"fmt"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/key"
)

// Error is an exhaustive balance-state error kind.
type Error string

func (e Error) Error() string { return "balance: " + string(e) }

const (
	// ErrNotRegistered is returned by any operation on a (account, token)
	// pair that has never been registered.
	ErrNotRegistered Error = "account/token pair is not registered"

	// ErrFrozen is returned by any spendable operation attempted while a
	// key rotation is in flight.
	ErrFrozen Error = "balance is frozen pending key rotation"

	// ErrUnnormalized is returned by any spendable operation attempted
	// before the available ciphertext has been normalized.
	ErrUnnormalized Error = "balance must be normalized before a spendable operation"

	// ErrRotationNeedsEmptyPending is returned by BeginRotation when
	// pending is nonzero: the caller must roll over (and normalize)
	// first (§4.4.4).
	ErrRotationNeedsEmptyPending Error = "rotation requires pending to be rolled over first"

	// ErrAlreadyRegistered is returned (wrapped) by pkg/client's Register
	// on a pair that is already registered; this package's Register does
	// not return it.
	ErrAlreadyRegistered Error = "account/token pair is already registered"
)

// State is the derived client-side label of §4.6's state table. It is
// never itself serialized; it is computed from the record's Registered/
// IsFrozen/IsNormalized fields every time State() is called, so it can
// never drift out of sync with the fields that back it. State() does not
// look at Pending and never returns RegisteredZero: a freshly registered
// record reports NormalizedIdle.
type State int

const (
	Unregistered State = iota
	RegisteredZero
	NormalizedIdle
	Unnormalized
	Frozen
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "Unregistered"
	case RegisteredZero:
		return "RegisteredZero"
	case NormalizedIdle:
		return "NormalizedIdle"
	case Unnormalized:
		return "Unnormalized"
	case Frozen:
		return "Frozen"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Record is the client's mirror of one (account, token) pair's on-chain
// BalanceRecord.
type Record struct {
	Registered    bool
	EncryptionKey key.EncryptionKey
	Pending       *elgamal.ChunkedCiphertext
	Available     *elgamal.ChunkedCiphertext
	IsFrozen      bool
	IsNormalized  bool
}

// State computes the derived §4.6 state label.
func (r *Record) State() State {
	switch {
	case !r.Registered:
		return Unregistered
	case r.IsFrozen:
		return Frozen
	case !r.IsNormalized:
		return Unnormalized
	default:
		return NormalizedIdle
	}
}

// RequireSpendable returns nil iff a withdraw/transfer/rotate may
// currently be attempted against this record (§4.6 invariant: spendable
// ops require isNormalized && !isFrozen).
func (r *Record) RequireSpendable() error {
	if !r.Registered {
		return ErrNotRegistered
	}
	if r.IsFrozen {
		return ErrFrozen
	}
	if !r.IsNormalized {
		return ErrUnnormalized
	}
	return nil
}

// Deposit adds a public→confidential deposit's ciphertext into pending.
// Deposits never set isFrozen and never by themselves change
// isNormalized (§4.6: "deposits and incoming transfers add into pending
// and never set isFrozen").
func (r *Record) Deposit(ct *elgamal.ChunkedCiphertext) error {
	if !r.Registered {
		return ErrNotRegistered
	}
	r.Pending = r.Pending.Add(ct)
	return nil
}

// IncomingTransfer records a confidential-to-confidential transfer's
// recipient ciphertext into pending, the same ingestion path as Deposit.
func (r *Record) IncomingTransfer(ct *elgamal.ChunkedCiphertext) error {
	return r.Deposit(ct)
}

// Rollover moves pending into available by ciphertext addition, per
// §4.6/§4.4.3. The caller supplies the fresh empty pending ciphertext for
// the group in use and whether the resulting available ciphertext is
// still normalized (decided client-side, since only the party holding
// the decryption key can check the post-rollover chunk widths) -- a
// rollover that pushes any chunk past 16 bits must pass
// stillNormalized = false.
func (r *Record) Rollover(emptyPending *elgamal.ChunkedCiphertext, stillNormalized bool) error {
	if !r.Registered {
		return ErrNotRegistered
	}
	if r.IsFrozen {
		return ErrFrozen
	}
	r.Available = r.Available.Add(r.Pending)
	r.Pending = emptyPending
	r.IsNormalized = stillNormalized
	return nil
}

// ApplyNormalization installs a verified NormalizationProof's output
// ciphertext and marks the balance normalized again.
func (r *Record) ApplyNormalization(newAvailable *elgamal.ChunkedCiphertext) error {
	if err := r.requireUnnormalizedSpend(); err != nil {
		return err
	}
	r.Available = newAvailable
	r.IsNormalized = true
	return nil
}

// requireUnnormalizedSpend is the precondition shared by normalize (which
// runs specifically to fix an Unnormalized record) -- unlike
// RequireSpendable, it permits IsNormalized == false; it checks only
// Registered and IsFrozen.
func (r *Record) requireUnnormalizedSpend() error {
	if !r.Registered {
		return ErrNotRegistered
	}
	if r.IsFrozen {
		return ErrFrozen
	}
	return nil
}

// ApplyWithdraw installs a verified WithdrawalProof's output ciphertext.
// The caller is responsible for having already checked RequireSpendable
// and for having built the proof against the matching amount.
func (r *Record) ApplyWithdraw(newAvailable *elgamal.ChunkedCiphertext) error {
	if err := r.RequireSpendable(); err != nil {
		return err
	}
	r.Available = newAvailable
	return nil
}

// ApplyTransferOut installs a verified TransferProof's sender-side output
// ciphertext, mirroring ApplyWithdraw's precondition.
func (r *Record) ApplyTransferOut(newAvailable *elgamal.ChunkedCiphertext) error {
	return r.ApplyWithdraw(newAvailable)
}

// BeginRotation marks the record Frozen, per §4.4.4's requirement that
// the on-chain record freezes for the duration of a rotation. Requires
// pending to already be empty (rolled over) and the balance normalized;
// the Pending ciphertext is never inspected here, so callers report
// whether it is empty through isPendingEmpty.
func (r *Record) BeginRotation(isPendingEmpty bool) error {
	if err := r.RequireSpendable(); err != nil {
		return err
	}
	if !isPendingEmpty {
		return ErrRotationNeedsEmptyPending
	}
	r.IsFrozen = true
	return nil
}

// CompleteRotation installs the new encryption key and ciphertext and
// clears the freeze flag, per §4.4.4's "after the proof verifies, the
// module swaps encryptionKey, installs C_new, and clears the freeze
// flag".
func (r *Record) CompleteRotation(newPub key.EncryptionKey, newAvailable *elgamal.ChunkedCiphertext) error {
	if !r.Registered {
		return ErrNotRegistered
	}
	if !r.IsFrozen {
		return fmt.Errorf("balance: CompleteRotation called on a record that was not frozen")
	}
	r.EncryptionKey = newPub
	r.Available = newAvailable
	r.IsFrozen = false
	return nil
}

// Register transitions an Unregistered record into RegisteredZero.
func Register(pub key.EncryptionKey, empty *elgamal.ChunkedCiphertext) (*Record, error) {
	return &Record{
		Registered:    true,
		EncryptionKey: pub,
		Pending:       empty,
		Available:     empty,
		IsNormalized:  true,
	}, nil
}
