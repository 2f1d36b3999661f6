package elgamal

import (
	"fmt"
	"io"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/pkg/group"
)

// ChunkedCiphertext represents a confidential balance up to 2^128 as
// params.ChunkCount independently-randomized 16-bit-window ciphertexts
// (§3). Chunk 0 holds the least-significant 16 bits.
type ChunkedCiphertext struct {
	Chunks [params.ChunkCount]*Ciphertext
}

// EmptyChunked returns a ChunkedCiphertext encoding 0 in every chunk.
func EmptyChunked(g group.Group) *ChunkedCiphertext {
	var cc ChunkedCiphertext
	for i := range cc.Chunks {
		cc.Chunks[i] = Empty(g)
	}
	return &cc
}

// EncryptChunked splits amount into 16-bit windows and encrypts each
// independently under pub, drawing fresh randomness per chunk from rng.
// It returns the ciphertext and the per-chunk randomness (needed as
// witnesses by the Sigma proofs that build on top of this).
func EncryptChunked(g group.Group, pub PublicKey, amount *Amount, rng io.Reader) (*ChunkedCiphertext, [params.ChunkCount]group.Scalar) {
	chunkValues := amount.chunks()
	var cc ChunkedCiphertext
	var rs [params.ChunkCount]group.Scalar
	for i, v := range chunkValues {
		scalarVal := scalarFromUint16(g, v)
		ct, r := Encrypt(g, pub, scalarVal, rng)
		cc.Chunks[i] = ct
		rs[i] = r
	}
	return &cc, rs
}

// scalarFromUint16 builds a group scalar for a single 16-bit chunk value.
func scalarFromUint16(g group.Group, v uint16) group.Scalar {
	// A chunk's plaintext fits trivially within the scalar field: encode it
	// as the little-endian 32-byte scalar with only the low 2 bytes set.
	var buf [32]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	s := g.NewScalar()
	if err := s.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf[:]); err != nil {
		panic(fmt.Sprintf("elgamal: scalarFromUint16: %v", err))
	}
	return s
}

// Add returns the pointwise sum of two chunked ciphertexts. The result may
// be "unnormalized" (a chunk's plaintext sum may exceed 16 bits) -- that
// is expected after a rollover or an incoming transfer, per §3.
func (cc *ChunkedCiphertext) Add(other *ChunkedCiphertext) *ChunkedCiphertext {
	var out ChunkedCiphertext
	for i := range cc.Chunks {
		out.Chunks[i] = cc.Chunks[i].Add(other.Chunks[i])
	}
	return &out
}

// Sub returns the pointwise difference.
func (cc *ChunkedCiphertext) Sub(other *ChunkedCiphertext) *ChunkedCiphertext {
	var out ChunkedCiphertext
	for i := range cc.Chunks {
		out.Chunks[i] = cc.Chunks[i].Sub(other.Chunks[i])
	}
	return &out
}

// WriteTo writes the 512-byte canonical encoding: 8 concatenated 64-byte
// ciphertexts, chunk 0 first.
func (cc *ChunkedCiphertext) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, c := range cc.Chunks {
		n, err := c.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (ChunkedCiphertext) Domain() string { return "CA Chunked Twisted-ElGamal Ciphertext" }
