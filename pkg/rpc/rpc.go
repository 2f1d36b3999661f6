// Package rpc defines the external collaborators named in §6: the
// chain-facing read surface the orchestrator consumes state from, and
// the Submitter capability it hands signed transactions to. Both are
// interfaces only -- this package carries no network code of its own,
// mirroring §9's "dynamic dispatch for transaction submitters" redesign
// guidance, which replaces a user-pluggable submitter hierarchy with one
// narrow function-shaped capability.
//
// Grounded on the teacher's pkg/protocol (Handler consumes a Network-
// shaped collaborator purely through an interface, never a concrete
// transport) for the shape of "core talks to the world only through a
// capability interface, tested against a fake".
package rpc

import (
	"context"
	"fmt"
)

// Error is an exhaustive RPC-collaborator error kind, distinct from
// pkg/client's broader operation error taxonomy (§7): this package only
// ever returns ErrNotRegistered or wraps a transport failure.
type Error string

func (e Error) Error() string { return "rpc: " + string(e) }

// ErrNotRegistered is returned by Client methods when the (account,
// token) pair has never been registered on-chain (§6.3: "BalanceRecord |
// NotRegistered"). A token with no auditor key is reported by
// GetAssetAuditorEncryptionKey as (nil, nil), not as this error.
const ErrNotRegistered Error = "account/token pair is not registered"

// Address is an opaque chain account or token identifier. The core never
// interprets its bytes beyond passing them through to the RPC
// collaborator and absorbing them into Sigma-proof transcripts.
type Address []byte

// BalanceRecord is the wire-encoded form of the on-chain record returned
// by GetBalanceRecord: the same encodings pkg/wire produces/consumes, so
// the orchestrator can decode it with no second wire dialect. Field
// names are exported (and the type is a plain struct, not an interface)
// so it round-trips through cbor for client-side caching (§4.6 last
// paragraph).
type BalanceRecord struct {
	EncryptionKey []byte // 32 bytes, pkg/wire.EncodeEncryptionKey output
	Pending       []byte // 512 bytes, pkg/wire.EncodeChunkedCiphertext output
	Available     []byte // 512 bytes
	IsFrozen      bool
	IsNormalized  bool

	// SequenceNumber is the chain's per-account sequence/version counter.
	// pkg/client does not compare it itself: a sequence conflict reaches
	// it only as a *SequenceError from Submit, which it reports as a
	// DuplicateSubmission.
	SequenceNumber uint64
}

// Client is the chain-facing read surface of §6.3.
type Client interface {
	// GetBalanceRecord returns the current record, or ErrNotRegistered.
	GetBalanceRecord(ctx context.Context, account, token Address) (*BalanceRecord, error)
	// GetEncryptionKey returns a (account, token) pair's encryption key
	// in the same 32-byte wire encoding as BalanceRecord.EncryptionKey,
	// used by the transfer orchestrator to look up the recipient's key.
	GetEncryptionKey(ctx context.Context, account, token Address) ([]byte, error)
	// GetAssetAuditorEncryptionKey returns a token's standing auditor
	// key, or (nil, nil) if the token has none configured.
	GetAssetAuditorEncryptionKey(ctx context.Context, token Address) ([]byte, error)
}

// Function names one of the chain-facing entry functions of §6.2.
type Function string

const (
	FunctionRegister                Function = "register"
	FunctionDeposit                 Function = "deposit"
	FunctionRolloverPendingBalance  Function = "rollover_pending_balance"
	FunctionNormalize               Function = "normalize"
	FunctionWithdraw                Function = "withdraw"
	FunctionConfidentialTransfer    Function = "confidential_transfer"
	FunctionRotateEncryptionKey     Function = "rotate_encryption_key"
)

// Call is one invocation of a chain-facing entry function: the function
// name, the acting account, and its argument list already packed into
// the chain's native byte-vector/address encoding, in the order §6.2
// lists them for that function. pkg/client's per-operation files are
// responsible for building the argument list in the right order; this
// package never inspects Args beyond handing them to a Submitter.
type Call struct {
	Function Function
	Account  Address
	Args     [][]byte
}

// Receipt is what a successful Submit returns: the sequence number the
// submission advanced the account to (pkg/client only logs it) and the
// transaction hash.
type Receipt struct {
	SequenceNumber uint64
	TxHash         []byte
}

// SequenceError is returned by Submit when the chain rejects a call
// because the account's sequence number had already advanced past the
// one implied by the orchestrator's last fetch -- the orchestrator maps
// this directly onto client.KindDuplicateSubmission (§4.8, §7).
type SequenceError struct {
	Expected uint64
	Actual   uint64
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("rpc: sequence number conflict: expected %d, chain is at %d", e.Expected, e.Actual)
}

// Submitter is the single capability the orchestrator uses to hand a
// built call to the chain (§9's "dynamic dispatch... replace with a
// single Submitter capability"). Implementations own transaction
// construction, signing, and broadcast; everything this package's
// caller needs back is a Receipt or an error.
type Submitter interface {
	Submit(ctx context.Context, call Call) (*Receipt, error)
}
