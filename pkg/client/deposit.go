package client

import (
	"context"

	"github.com/confidential-assets/ca-core/pkg/rpc"
)

// Deposit submits deposit(token, amount): a single call moving a publicly
// visible amount into the account's pending ciphertext, no proof required
// since the amount is public at this boundary (§4.8).
func (c *Client) Deposit(ctx context.Context, account, token rpc.Address, amount uint64) error {
	const op = "deposit"
	return c.withPairLock(ctx, op, account, token, func(ctx context.Context) error {
		_, err := c.submit(ctx, op, "submit", account, token, rpc.Call{
			Function: rpc.FunctionDeposit,
			Account:  account,
			Args:     [][]byte{token, encodeU64(amount)},
		})
		return err
	})
}
