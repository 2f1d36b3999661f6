package elgamal

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/pkg/group"
)

// AmountOutOfRangeError is returned by DecryptValue when no plaintext in
// [0, 2^maxBits) decrypts to the given point (§4.2, §7 AmountOutOfRange).
type AmountOutOfRangeError struct {
	MaxBits uint8
}

func (e *AmountOutOfRangeError) Error() string {
	return fmt.Sprintf("elgamal: no plaintext in [0, 2^%d) matches this ciphertext", e.MaxBits)
}

// ChunkDecryptFailedError wraps an AmountOutOfRangeError with the failing
// chunk index (§7 ChunkDecryptFailed).
type ChunkDecryptFailedError struct {
	Index int
	Err   error
}

func (e *ChunkDecryptFailedError) Error() string {
	return fmt.Sprintf("elgamal: chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkDecryptFailedError) Unwrap() error { return e.Err }

// dlTable is a baby-step lookup table mapping the canonical encoding of
// i·G0 to i, for i in [0, 2^(maxBits/2)). It is built once per maxBits
// value (the cache is not keyed by group) and shared read-only
// thereafter (§5 "Shared-resource
// policy"): construction is not on any hot path, only the final per-call
// giant-step scan is.
type dlTable struct {
	maxBits uint8
	babyLen uint32
	index   map[[32]byte]uint32
}

var (
	tableCacheMu sync.Mutex
	tableCache   = map[uint8]*dlTable{}
)

func getTable(g group.Group, maxBits uint8) *dlTable {
	tableCacheMu.Lock()
	defer tableCacheMu.Unlock()
	if t, ok := tableCache[maxBits]; ok {
		return t
	}
	t := buildTable(g, maxBits)
	tableCache[maxBits] = t
	return t
}

func buildTable(g group.Group, maxBits uint8) *dlTable {
	babyLen := uint32(1) << (maxBits / 2)
	t := &dlTable{
		maxBits: maxBits,
		babyLen: babyLen,
		index:   make(map[[32]byte]uint32, babyLen),
	}
	acc := g.NewPoint() // 0 * G0 = identity
	step := g.NewBasePoint()
	for i := uint32(0); i < babyLen; i++ {
		var key [32]byte
		enc, err := acc.(interface{ MarshalBinary() ([]byte, error) }).MarshalBinary()
		if err != nil {
			panic(fmt.Sprintf("elgamal: dlTable: encode failed: %v", err))
		}
		copy(key[:], enc)
		t.index[key] = i
		acc = acc.Add(step)
	}
	return t
}

// decryptValueWithTable solves the discrete log of target = m·G0 for m in
// [0, 2^maxBits), via baby-step/giant-step: for j in [0, 2^(maxBits/2)),
// evaluate target - j*2^(maxBits/2)*G0 and look it up in the baby-step
// table; a hit at baby index i means m = j*2^(maxBits/2) + i.
func decryptValueWithTable(g group.Group, target group.Point, maxBits uint8) (uint64, error) {
	t := getTable(g, maxBits)

	if target.IsIdentity() {
		return 0, nil
	}

	giantStepBase := t.babyLen
	giantStep := indexToScalar(g, giantStepBase).Negate().ActOnBase()

	cursor := target
	for j := uint32(0); j < t.babyLen; j++ {
		var key [32]byte
		enc, err := cursor.(interface{ MarshalBinary() ([]byte, error) }).MarshalBinary()
		if err != nil {
			return 0, fmt.Errorf("elgamal: dlsearch: encode failed: %w", err)
		}
		copy(key[:], enc)
		if i, ok := t.index[key]; ok {
			m := uint64(j)*uint64(t.babyLen) + uint64(i)
			if m>>maxBits != 0 {
				// Above the injective range despite the coincidental match;
				// cannot happen for maxBits <= 32 in practice, but guard it.
				break
			}
			return m, nil
		}
		cursor = cursor.Add(giantStep)
	}
	return 0, &AmountOutOfRangeError{MaxBits: maxBits}
}

func indexToScalar(g group.Group, i uint32) group.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint32(buf[:4], i)
	s := g.NewScalar()
	if err := s.(interface{ UnmarshalBinary([]byte) error }).UnmarshalBinary(buf[:]); err != nil {
		panic(fmt.Sprintf("elgamal: indexToScalar: %v", err))
	}
	return s
}

// DecryptValue decrypts c under d and solves the discrete log within
// [0, 2^maxBits). maxBits is typically 16 for a single chunk, or a larger
// debug value for ad-hoc inspection.
func (c *Ciphertext) DecryptValue(g group.Group, d group.Scalar, maxBits uint8) (uint64, error) {
	point := c.DecryptPoint(g, d)
	return decryptValueWithTable(g, point, maxBits)
}

// Decrypt recovers the full up-to-128-bit amount by running the 16-bit
// DL-search on each of the 8 chunks and recomposing
// m = Σ m_i · 2^(16i). Any chunk failure is reported with its index.
func (cc *ChunkedCiphertext) Decrypt(g group.Group, d group.Scalar) (*Amount, error) {
	var chunkValues [params.ChunkCount]uint16
	for i, c := range cc.Chunks {
		v, err := c.DecryptValue(g, d, params.ChunkBits)
		if err != nil {
			return nil, &ChunkDecryptFailedError{Index: i, Err: err}
		}
		chunkValues[i] = uint16(v)
	}
	return amountFromChunks(chunkValues), nil
}
