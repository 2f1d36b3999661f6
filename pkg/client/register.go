package client

import (
	"context"
	"errors"

	"github.com/confidential-assets/ca-core/pkg/balance"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/rpc"
	"github.com/confidential-assets/ca-core/pkg/wire"
)

// Register submits register(token, encryptionKey): the single call with
// (token, P) and no proof that moves a pair from Unregistered to
// Registered-zero (§4.6, §4.8).
func (c *Client) Register(ctx context.Context, account, token rpc.Address, pub key.EncryptionKey) error {
	const op = "register"
	return c.withPairLock(ctx, op, account, token, func(ctx context.Context) error {
		_, err := c.rpc.GetBalanceRecord(ctx, account, token)
		switch {
		case errors.Is(err, rpc.ErrNotRegistered):
			// expected: nothing registered yet.
		case err != nil:
			return newError(KindRpcError, op, "check", err)
		default:
			return newError(KindDuplicateSubmission, op, "check", balance.ErrAlreadyRegistered)
		}

		pubBytes, err := wire.EncodeEncryptionKey(pub)
		if err != nil {
			return newError(KindInvalidEncoding, op, "encode", err)
		}

		_, err = c.submit(ctx, op, "submit", account, token, rpc.Call{
			Function: rpc.FunctionRegister,
			Account:  account,
			Args:     [][]byte{token, pubBytes},
		})
		return err
	})
}
