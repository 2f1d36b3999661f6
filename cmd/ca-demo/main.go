// Command ca-demo wires a Client to an in-memory chain stand-in and
// walks through register, deposit, rollover, and transfer, printing the
// balances it observes along the way. It exists to give a human a way
// to watch §4.8's operation pipeline run end to end without a real
// chain behind it, the same role the teacher's example/main.go plays
// for a two-party CMP session.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	caclient "github.com/confidential-assets/ca-core/pkg/client"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
	"github.com/confidential-assets/ca-core/pkg/pool"
	"github.com/confidential-assets/ca-core/pkg/rpc"
	"github.com/confidential-assets/ca-core/pkg/wire"
	"github.com/confidential-assets/ca-core/pkg/zk/normalize"
	"github.com/confidential-assets/ca-core/pkg/zk/rotate"
	"github.com/confidential-assets/ca-core/pkg/zk/transfer"
	"github.com/confidential-assets/ca-core/pkg/zk/withdraw"
)

// demoChain is a minimal, single-process stand-in for the chain-facing
// rpc.Client/rpc.Submitter pair, verifying every submitted proof the
// way a real validator would. It is deliberately smaller than
// pkg/client's own test fake: no auditor support, no sequence-conflict
// simulation, just enough to drive the walkthrough below.
type demoChain struct {
	g group.Group

	mu      sync.Mutex
	records map[string]map[string]*demoRecord
}

type demoRecord struct {
	pub         key.EncryptionKey
	available   *elgamal.ChunkedCiphertext
	pending     *elgamal.ChunkedCiphertext
	normalized  bool
	pendingAdds int
	seq         uint64
}

func newDemoChain(g group.Group) *demoChain {
	return &demoChain{g: g, records: make(map[string]map[string]*demoRecord)}
}

func (d *demoChain) rec(account, token rpc.Address) *demoRecord {
	byToken, ok := d.records[string(account)]
	if !ok {
		return nil
	}
	return byToken[string(token)]
}

func (d *demoChain) GetBalanceRecord(ctx context.Context, account, token rpc.Address) (*rpc.BalanceRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.rec(account, token)
	if r == nil {
		return nil, rpc.ErrNotRegistered
	}
	pubBytes, err := wire.EncodeEncryptionKey(r.pub)
	if err != nil {
		return nil, err
	}
	pendingBytes, err := wire.EncodeChunkedCiphertext(r.pending)
	if err != nil {
		return nil, err
	}
	availBytes, err := wire.EncodeChunkedCiphertext(r.available)
	if err != nil {
		return nil, err
	}
	return &rpc.BalanceRecord{
		EncryptionKey:  pubBytes,
		Pending:        pendingBytes,
		Available:      availBytes,
		IsNormalized:   r.normalized,
		SequenceNumber: r.seq,
	}, nil
}

func (d *demoChain) GetEncryptionKey(ctx context.Context, account, token rpc.Address) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.rec(account, token)
	if r == nil {
		return nil, rpc.ErrNotRegistered
	}
	return wire.EncodeEncryptionKey(r.pub)
}

func (d *demoChain) GetAssetAuditorEncryptionKey(ctx context.Context, token rpc.Address) ([]byte, error) {
	return nil, nil
}

func (d *demoChain) Submit(ctx context.Context, call rpc.Call) (*rpc.Receipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch call.Function {
	case rpc.FunctionRegister:
		return d.submitRegister(call)
	case rpc.FunctionDeposit:
		return d.submitDeposit(call)
	case rpc.FunctionRolloverPendingBalance:
		return d.submitRollover(call)
	case rpc.FunctionNormalize:
		return d.submitNormalize(call)
	case rpc.FunctionWithdraw:
		return d.submitWithdraw(call)
	case rpc.FunctionConfidentialTransfer:
		return d.submitTransfer(call)
	case rpc.FunctionRotateEncryptionKey:
		return d.submitRotate(call)
	default:
		return nil, fmt.Errorf("demo chain: unknown function %q", call.Function)
	}
}

func (d *demoChain) submitRegister(call rpc.Call) (*rpc.Receipt, error) {
	token, pubBytes := call.Args[0], call.Args[1]
	pub, err := wire.DecodeEncryptionKey(d.g, pubBytes)
	if err != nil {
		return nil, err
	}
	byToken, ok := d.records[string(call.Account)]
	if !ok {
		byToken = make(map[string]*demoRecord)
		d.records[string(call.Account)] = byToken
	}
	byToken[string(token)] = &demoRecord{
		pub:        pub,
		available:  elgamal.EmptyChunked(d.g),
		pending:    elgamal.EmptyChunked(d.g),
		normalized: true,
		seq:        1,
	}
	return &rpc.Receipt{SequenceNumber: 1}, nil
}

func decodeU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func (d *demoChain) submitDeposit(call rpc.Call) (*rpc.Receipt, error) {
	token, amtBytes := call.Args[0], call.Args[1]
	r := d.rec(call.Account, token)
	ct, _ := elgamal.EncryptChunked(d.g, r.pub, elgamal.AmountFromUint64(decodeU64(amtBytes)), rand.Reader)
	r.pending = r.pending.Add(ct)
	r.pendingAdds++
	r.seq++
	return &rpc.Receipt{SequenceNumber: r.seq}, nil
}

func (d *demoChain) submitRollover(call rpc.Call) (*rpc.Receipt, error) {
	token := call.Args[0]
	r := d.rec(call.Account, token)
	r.available = r.available.Add(r.pending)
	r.pending = elgamal.EmptyChunked(d.g)
	r.normalized = r.normalized && r.pendingAdds <= 1
	r.pendingAdds = 0
	r.seq++
	return &rpc.Receipt{SequenceNumber: r.seq}, nil
}

func (d *demoChain) submitNormalize(call rpc.Call) (*rpc.Receipt, error) {
	token, newAvailBytes, proofBytes := call.Args[0], call.Args[1], call.Args[2]
	r := d.rec(call.Account, token)
	newChunked, err := wire.DecodeChunkedCiphertext(d.g, newAvailBytes)
	if err != nil {
		return nil, err
	}
	proof, err := wire.DecodeNormalizationProof(d.g, proofBytes)
	if err != nil {
		return nil, err
	}
	public := normalize.Public{Account: call.Account, Token: token, Pub: r.pub, OldChunked: r.available}
	if err := proof.Verify(d.g, public, newChunked); err != nil {
		return nil, err
	}
	r.available = newChunked
	r.normalized = true
	r.seq++
	return &rpc.Receipt{SequenceNumber: r.seq}, nil
}

func (d *demoChain) submitWithdraw(call rpc.Call) (*rpc.Receipt, error) {
	token, amtBytes, newAvailBytes, proofBytes := call.Args[0], call.Args[1], call.Args[2], call.Args[3]
	r := d.rec(call.Account, token)
	newChunked, err := wire.DecodeChunkedCiphertext(d.g, newAvailBytes)
	if err != nil {
		return nil, err
	}
	proof, err := wire.DecodeWithdrawalProof(d.g, proofBytes)
	if err != nil {
		return nil, err
	}
	public := withdraw.Public{Account: call.Account, Token: token, Pub: r.pub, OldChunked: r.available, Amount: decodeU64(amtBytes)}
	if err := proof.Verify(d.g, public, newChunked); err != nil {
		return nil, err
	}
	r.available = newChunked
	r.seq++
	return &rpc.Receipt{SequenceNumber: r.seq}, nil
}

func (d *demoChain) submitTransfer(call rpc.Call) (*rpc.Receipt, error) {
	token, recipient := call.Args[0], call.Args[1]
	envelopeBytes := call.Args[5]
	sender := d.rec(call.Account, token)
	recipientRec := d.rec(recipient, token)

	proof, out, auditorPubs, err := wire.DecodeTransferEnvelope(d.g, envelopeBytes)
	if err != nil {
		return nil, err
	}
	public := transfer.Public{
		Account:          call.Account,
		Token:            token,
		SenderPub:        sender.pub,
		RecipientPub:     recipientRec.pub,
		AuditorPubs:      auditorPubs,
		SenderOldChunked: sender.available,
	}
	if err := proof.Verify(d.g, public, out); err != nil {
		return nil, err
	}
	sender.available = out.SenderNew
	recipientRec.pending = recipientRec.pending.Add(out.Recipient)
	recipientRec.pendingAdds++
	sender.seq++
	return &rpc.Receipt{SequenceNumber: sender.seq}, nil
}

func (d *demoChain) submitRotate(call rpc.Call) (*rpc.Receipt, error) {
	token, newPubBytes, newAvailBytes, proofBytes := call.Args[0], call.Args[1], call.Args[2], call.Args[3]
	r := d.rec(call.Account, token)
	newPub, err := wire.DecodeEncryptionKey(d.g, newPubBytes)
	if err != nil {
		return nil, err
	}
	newChunked, err := wire.DecodeChunkedCiphertext(d.g, newAvailBytes)
	if err != nil {
		return nil, err
	}
	proof, err := wire.DecodeRotationProof(d.g, proofBytes)
	if err != nil {
		return nil, err
	}
	public := rotate.Public{Account: call.Account, Token: token, OldPub: r.pub, NewPub: newPub, OldChunked: r.available}
	if err := proof.Verify(d.g, public, newChunked); err != nil {
		return nil, err
	}
	r.pub = newPub
	r.available = newChunked
	r.seq++
	return &rpc.Receipt{SequenceNumber: r.seq}, nil
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "ca-demo:", err)
		os.Exit(1)
	}
}

func main() {
	ctx := context.Background()
	g := group.Ristretto255
	chain := newDemoChain(g)

	log := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	c := caclient.New(caclient.Config{
		Group:     g,
		RPC:       chain,
		Submitter: chain,
		Pool:      pool.NewPool(0),
		Logger:    &log,
	})

	alice, bob, usd := rpc.Address("alice"), rpc.Address("bob"), rpc.Address("USD")
	aliceKey := key.Generate(g, rand.Reader)
	bobKey := key.Generate(g, rand.Reader)

	must(c.Register(ctx, alice, usd, aliceKey.EncryptionKey()))
	must(c.Register(ctx, bob, usd, bobKey.EncryptionKey()))
	must(c.Deposit(ctx, alice, usd, 1_000_000_000))
	must(c.Rollover(ctx, alice, usd))

	available, pending, err := c.DecryptBalance(ctx, alice, usd, aliceKey)
	must(err)
	aliceAvail, _ := available.Uint64()
	alicePending, _ := pending.Uint64()
	fmt.Printf("alice after deposit+rollover: available=%d pending=%d\n", aliceAvail, alicePending)

	must(c.Transfer(ctx, alice, usd, bob, aliceKey, 250_000_000, nil))
	must(c.Rollover(ctx, bob, usd))

	available, _, err = c.DecryptBalance(ctx, alice, usd, aliceKey)
	must(err)
	aliceAvail, _ = available.Uint64()
	bobAvail, bobPending, err := c.DecryptBalance(ctx, bob, usd, bobKey)
	must(err)
	bobAvailU, _ := bobAvail.Uint64()
	bobPendingU, _ := bobPending.Uint64()
	fmt.Printf("after transfer: alice available=%d, bob available=%d pending=%d\n", aliceAvail, bobAvailU, bobPendingU)
}
