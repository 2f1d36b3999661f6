package client

import (
	"context"

	"github.com/confidential-assets/ca-core/pkg/balance"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/rpc"
	"github.com/confidential-assets/ca-core/pkg/wire"
	"github.com/confidential-assets/ca-core/pkg/zk/rotate"
)

// Rotate requires pending to be rolled over (empty) and the balance
// normalized, builds a RotationProof, and submits
// rotate_encryption_key(token, newPub, C_new, proof) (§4.4.4, §4.8).
//
// oldDK and newDK stay caller-owned; Rotate never zeroizes them itself so
// a failed attempt can be retried against the same keys.
func (c *Client) Rotate(ctx context.Context, account, token rpc.Address, oldDK, newDK *key.DecryptionKey) error {
	const op = "rotate"
	return c.withPairLock(ctx, op, account, token, func(ctx context.Context) error {
		rec, _, err := c.fetchFresh(ctx, op, account, token)
		if err != nil {
			return err
		}
		if err := rec.RequireSpendable(); err != nil {
			return mapBalanceErr(op, "precheck", err)
		}

		pendingValue, err := rec.Pending.Decrypt(c.g, oldDK.Scalar())
		if err != nil {
			return mapDecryptErr(op, "decrypt-pending", err)
		}
		if v, ok := pendingValue.Uint64(); !ok || v != 0 {
			return newError(KindUnnormalized, op, "precheck", balance.ErrRotationNeedsEmptyPending)
		}

		oldValue, err := rec.Available.Decrypt(c.g, oldDK.Scalar())
		if err != nil {
			return mapDecryptErr(op, "decrypt-available", err)
		}

		public := rotate.Public{
			Account:    account,
			Token:      token,
			OldPub:     rec.EncryptionKey,
			NewPub:     newDK.EncryptionKey(),
			OldChunked: rec.Available,
		}
		private := rotate.Private{
			OldDecryptionKey: oldDK,
			NewDecryptionKey: newDK,
			OldValue:         oldValue,
		}

		proof, newChunked, err := rotate.NewProof(c.g, public, private, c.rng, c.pl)
		if err != nil {
			return newError(KindProofFailed, op, "build", err)
		}
		if err := proof.Verify(c.g, public, newChunked); err != nil {
			return newError(KindProofFailed, op, "selfcheck", err)
		}

		newPubBytes, err := wire.EncodeEncryptionKey(public.NewPub)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-key", err)
		}
		proofBytes, err := wire.EncodeRotationProof(proof)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-proof", err)
		}
		newAvailBytes, err := wire.EncodeChunkedCiphertext(newChunked)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-ciphertext", err)
		}

		_, err = c.submit(ctx, op, "submit", account, token, rpc.Call{
			Function: rpc.FunctionRotateEncryptionKey,
			Account:  account,
			Args:     [][]byte{token, newPubBytes, newAvailBytes, proofBytes},
		})
		return err
	})
}
