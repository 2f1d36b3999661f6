package client

import (
	"context"

	"github.com/confidential-assets/ca-core/pkg/balance"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/rpc"
	"github.com/confidential-assets/ca-core/pkg/wire"
	"github.com/confidential-assets/ca-core/pkg/zk/normalize"
)

// Normalize fetches the current available ciphertext, builds a
// NormalizationProof, and submits normalize(token, C_new, proof) (§4.8,
// §4.5).
func (c *Client) Normalize(ctx context.Context, account, token rpc.Address, dk *key.DecryptionKey) error {
	const op = "normalize"
	return c.withPairLock(ctx, op, account, token, func(ctx context.Context) error {
		rec, _, err := c.fetchFresh(ctx, op, account, token)
		if err != nil {
			return err
		}
		return c.doNormalize(ctx, op, account, token, dk, rec)
	})
}

// doNormalize is Normalize's body without the pair lock or the initial
// fetch, so Withdraw can run it as a pipeline step against a record it
// already fetched (§4.8: "maybe normalize").
func (c *Client) doNormalize(ctx context.Context, op string, account, token rpc.Address, dk *key.DecryptionKey, rec *balance.Record) error {
	if rec.IsFrozen {
		return newError(KindFrozenAccount, op, "precheck", nil)
	}

	oldValue, err := rec.Available.Decrypt(c.g, dk.Scalar())
	if err != nil {
		return mapDecryptErr(op, "decrypt", err)
	}

	public := normalize.Public{
		Account:    account,
		Token:      token,
		Pub:        rec.EncryptionKey,
		OldChunked: rec.Available,
	}
	private := normalize.Private{DecryptionKey: dk, OldValue: oldValue}

	proof, newChunked, err := normalize.NewProof(c.g, public, private, c.rng, c.pl)
	if err != nil {
		return newError(KindProofFailed, op, "build", err)
	}
	if err := proof.Verify(c.g, public, newChunked); err != nil {
		return newError(KindProofFailed, op, "selfcheck", err)
	}

	proofBytes, err := wire.EncodeNormalizationProof(proof)
	if err != nil {
		return newError(KindInvalidEncoding, op, "encode-proof", err)
	}
	newAvailBytes, err := wire.EncodeChunkedCiphertext(newChunked)
	if err != nil {
		return newError(KindInvalidEncoding, op, "encode-ciphertext", err)
	}

	_, err = c.submit(ctx, op, "normalize", account, token, rpc.Call{
		Function: rpc.FunctionNormalize,
		Account:  account,
		Args:     [][]byte{token, newAvailBytes, proofBytes},
	})
	return err
}
