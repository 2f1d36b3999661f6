package client

import (
	"context"

	"github.com/confidential-assets/ca-core/pkg/rpc"
)

// Rollover submits rollover_pending_balance(token): a single call, no
// proof, after which on-chain code adds pending into available (§4.8).
func (c *Client) Rollover(ctx context.Context, account, token rpc.Address) error {
	const op = "rollover"
	return c.withPairLock(ctx, op, account, token, func(ctx context.Context) error {
		return c.doRollover(ctx, op, account, token)
	})
}

// doRollover is Rollover's body without the pair lock, so Withdraw can
// run it as one step of its own locked pipeline (§4.8:
// "withdraw(token, amount) -- fetch + maybe rollover + maybe normalize").
// The client does not predict the resulting isNormalized bit locally --
// only the chain knows the post-rollover chunk widths without a decrypt
// -- it invalidates its cache entry and lets the next fetch observe the
// authoritative result.
func (c *Client) doRollover(ctx context.Context, op string, account, token rpc.Address) error {
	_, err := c.submit(ctx, op, "rollover", account, token, rpc.Call{
		Function: rpc.FunctionRolloverPendingBalance,
		Account:  account,
		Args:     [][]byte{token},
	})
	return err
}
