package elgamal

import (
	"fmt"

	"github.com/cronokirby/saferith"

	"github.com/confidential-assets/ca-core/internal/params"
)

// Amount is a plaintext confidential-balance value, up to 2^128 - 1
// (params.ChunkCount * params.ChunkBits bits). It wraps a saferith.Nat so
// that chunk decomposition/recomposition and the m_old - w subtraction in
// the withdrawal and transfer proofs happen over arbitrary-precision,
// side-channel-resistant arithmetic rather than hand-rolled uint64 pairs.
type Amount struct {
	nat *saferith.Nat
}

// AmountFromUint64 builds an Amount from a plain uint64.
func AmountFromUint64(v uint64) *Amount {
	return &Amount{nat: new(saferith.Nat).SetUint64(v)}
}

// Zero is the additive identity amount.
func Zero() *Amount { return AmountFromUint64(0) }

// Add returns a + b.
func (a *Amount) Add(b *Amount) *Amount {
	return &Amount{nat: new(saferith.Nat).Add(a.nat, b.nat, -1)}
}

// Sub returns a - b and true, or (nil, false) if b > a (InsufficientBalance
// territory -- callers translate the false case into that error kind).
func (a *Amount) Sub(b *Amount) (*Amount, bool) {
	_, _, lt := a.nat.Cmp(b.nat)
	if lt == 1 {
		return nil, false
	}
	return &Amount{nat: new(saferith.Nat).Sub(a.nat, b.nat, -1)}, true
}

// Cmp reports whether a < b, a == b, a > b as saferith.Choice values (each
// either 0 or 1), matching the teacher's Pedersen-parameter validation
// idiom (pkg/pedersen.ValidateParameters).
func (a *Amount) Cmp(b *Amount) (lt, eq, gt int) {
	g, e, l := a.nat.Cmp(b.nat)
	return int(l), int(e), int(g)
}

// Uint64 returns the amount as a uint64 and true if it fits in 64 bits.
func (a *Amount) Uint64() (uint64, bool) {
	bits := a.nat.TrueLen()
	if bits > 64 {
		return 0, false
	}
	return a.nat.Uint64(), true
}

// Chunks splits the amount into params.ChunkCount little-endian windows of
// params.ChunkBits bits each (chunk 0 is the least-significant window), for
// callers outside this package that need to build per-chunk Sigma-proof
// witnesses (pkg/zk/*) from the same decomposition Encrypt uses.
func (a *Amount) Chunks() [params.ChunkCount]uint16 { return a.chunks() }

// chunks splits the amount into params.ChunkCount little-endian windows of
// params.ChunkBits bits each: chunk 0 is the least-significant window.
func (a *Amount) chunks() [params.ChunkCount]uint16 {
	totalBytes := (params.ChunkCount*params.ChunkBits + 7) / 8
	buf := make([]byte, totalBytes)
	// Nat.Bytes returns a big-endian minimal-length encoding; FillBytes-style
	// right-alignment into a fixed buffer keeps the chunk math simple.
	be := a.nat.Bytes()
	copy(buf[totalBytes-len(be):], be)

	var out [params.ChunkCount]uint16
	for i := 0; i < params.ChunkCount; i++ {
		// Chunk i covers bits [16i, 16i+16), little-endian over buf (which
		// is big-endian), so index from the back.
		hi := buf[totalBytes-1-2*i-1]
		lo := buf[totalBytes-1-2*i]
		out[i] = uint16(hi)<<8 | uint16(lo)
	}
	return out
}

// amountFromChunks recomposes Σ chunks[i] * 2^(16i) into an Amount.
func amountFromChunks(chunks [params.ChunkCount]uint16) *Amount {
	acc := new(saferith.Nat).SetUint64(0)
	shift := new(saferith.Nat).SetUint64(1)
	base := new(saferith.Nat).SetUint64(1 << params.ChunkBits)
	for i := 0; i < params.ChunkCount; i++ {
		term := new(saferith.Nat).SetUint64(uint64(chunks[i]))
		term.Mul(term, shift, -1)
		acc.Add(acc, term, -1)
		if i != params.ChunkCount-1 {
			shift.Mul(shift, base, -1)
		}
	}
	return &Amount{nat: acc}
}

func (a *Amount) String() string {
	v, ok := a.Uint64()
	if ok {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("0x%x", a.nat.Bytes())
}
