package client

import (
	"context"
	"errors"

	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/rpc"
	"github.com/confidential-assets/ca-core/pkg/wire"
	"github.com/confidential-assets/ca-core/pkg/zk/withdraw"
)

// Withdraw fetches the current state, rolls over and/or normalizes if
// needed to cover amount, builds a WithdrawalProof, and submits
// withdraw(token, amount, C_new, proof) (§4.8).
func (c *Client) Withdraw(ctx context.Context, account, token rpc.Address, dk *key.DecryptionKey, amount uint64) error {
	const op = "withdraw"
	return c.withPairLock(ctx, op, account, token, func(ctx context.Context) error {
		rec, _, err := c.fetchFresh(ctx, op, account, token)
		if err != nil {
			return err
		}
		if rec.IsFrozen {
			return newError(KindFrozenAccount, op, "precheck", nil)
		}

		if !rec.IsNormalized {
			if err := c.doNormalize(ctx, op, account, token, dk, rec); err != nil {
				return err
			}
			if rec, _, err = c.fetchFresh(ctx, op, account, token); err != nil {
				return err
			}
		}

		availValue, err := rec.Available.Decrypt(c.g, dk.Scalar())
		if err != nil {
			return mapDecryptErr(op, "decrypt-available", err)
		}

		if _, ok := availValue.Sub(elgamal.AmountFromUint64(amount)); !ok {
			pendingValue, perr := rec.Pending.Decrypt(c.g, dk.Scalar())
			if perr != nil {
				return mapDecryptErr(op, "decrypt-pending", perr)
			}
			if _, ok := availValue.Add(pendingValue).Sub(elgamal.AmountFromUint64(amount)); !ok {
				return newError(KindInsufficientBalance, op, "precheck", nil)
			}

			if err := c.doRollover(ctx, op, account, token); err != nil {
				return err
			}
			if rec, _, err = c.fetchFresh(ctx, op, account, token); err != nil {
				return err
			}
			if !rec.IsNormalized {
				if err := c.doNormalize(ctx, op, account, token, dk, rec); err != nil {
					return err
				}
				if rec, _, err = c.fetchFresh(ctx, op, account, token); err != nil {
					return err
				}
			}
			if availValue, err = rec.Available.Decrypt(c.g, dk.Scalar()); err != nil {
				return mapDecryptErr(op, "decrypt-available", err)
			}
		}

		public := withdraw.Public{
			Account:    account,
			Token:      token,
			Pub:        rec.EncryptionKey,
			OldChunked: rec.Available,
			Amount:     amount,
		}
		private := withdraw.Private{DecryptionKey: dk, OldValue: availValue}

		proof, newChunked, err := withdraw.NewProof(c.g, public, private, c.rng, c.pl)
		if err != nil {
			if errors.Is(err, withdraw.ErrInsufficientBalance) {
				return newError(KindInsufficientBalance, op, "build", err)
			}
			return newError(KindProofFailed, op, "build", err)
		}
		if err := proof.Verify(c.g, public, newChunked); err != nil {
			return newError(KindProofFailed, op, "selfcheck", err)
		}

		proofBytes, err := wire.EncodeWithdrawalProof(proof)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-proof", err)
		}
		newAvailBytes, err := wire.EncodeChunkedCiphertext(newChunked)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode-ciphertext", err)
		}

		_, err = c.submit(ctx, op, "submit", account, token, rpc.Call{
			Function: rpc.FunctionWithdraw,
			Account:  account,
			Args:     [][]byte{token, encodeU64(amount), newAvailBytes, proofBytes},
		})
		return err
	})
}
