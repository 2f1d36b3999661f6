package client

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind is one of the exhaustive error kinds of §7.
type Kind string

const (
	KindInvalidEncoding     Kind = "InvalidEncoding"
	KindUnsupportedVersion  Kind = "UnsupportedVersion"
	KindAmountOutOfRange    Kind = "AmountOutOfRange"
	KindChunkDecryptFailed  Kind = "ChunkDecryptFailed"
	KindInsufficientBalance Kind = "InsufficientBalance"
	KindStaleState          Kind = "StaleState"
	KindFrozenAccount       Kind = "FrozenAccount"
	KindUnnormalized        Kind = "Unnormalized"
	KindProofFailed         Kind = "ProofFailed"
	KindRpcError            Kind = "RpcError"
	KindDuplicateSubmission Kind = "DuplicateSubmission"
	KindCancelled           Kind = "Cancelled"
)

// Error is the operation error every orchestrator entrypoint returns on
// failure: its Kind tag, the operation and step it failed in (§7:
// "every error surfaces to the caller with its kind tag and a context
// string naming the operation and the step"), and the underlying cause
// where there is one.
//
// Grounded on pkg/balance.Error/pkg/zk/withdraw.Error's string-based
// exhaustive Error type, extended with Op/Step/Err fields the way
// pkg/elgamal/dlsearch.go's ChunkDecryptFailedError wraps an inner
// cause and exposes it through Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client: %s: %s/%s: %v", e.Kind, e.Op, e.Step, e.Err)
	}
	return fmt.Sprintf("client: %s: %s/%s", e.Kind, e.Op, e.Step)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether §7's auto-retry policy applies: only
// RpcError (transient transport failure) and StaleState (chain state
// moved between fetch and submit) are retried automatically.
func (e *Error) Retryable() bool {
	return e.Kind == KindRpcError || e.Kind == KindStaleState
}

func newError(kind Kind, op, step string, err error) *Error {
	return &Error{Kind: kind, Op: op, Step: step, Err: err}
}

// retryBackoffs is the fixed exponential-backoff schedule: after the
// first try, up to 3 retries, waiting 100ms, 400ms, 1.6s before each.
// withRetry reruns the same attempt function on every retry; it does not
// refetch chain state or rebuild the call between tries.
var retryBackoffs = []time.Duration{100 * time.Millisecond, 400 * time.Millisecond, 1600 * time.Millisecond}

// withRetry runs attempt, retrying per retryBackoffs whenever attempt
// returns a *Error whose Retryable() is true. Any other error (in
// particular every cryptographic/local-validation error) is fatal on
// the first try, per §7 ("all cryptographic errors are fatal to the
// current call").
func withRetry(ctx context.Context, op, step string, attempt func() error) error {
	for i := 0; ; i++ {
		err := attempt()
		if err == nil {
			return nil
		}
		var cerr *Error
		if !errors.As(err, &cerr) || !cerr.Retryable() || i >= len(retryBackoffs) {
			return err
		}
		select {
		case <-ctx.Done():
			return newError(KindCancelled, op, step, ctx.Err())
		case <-time.After(retryBackoffs[i]):
		}
	}
}
