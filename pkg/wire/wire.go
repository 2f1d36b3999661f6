// Package wire implements the canonical binary encoding of §6.1: fixed-
// width point/scalar/ciphertext encodings, a length-prefixed range-proof
// framing, and the four versioned proof envelopes submitted on-chain
// (WithdrawalProof, NormalizationProof, RotationProof, TransferProof).
//
// Grounded in the teacher's pkg/messages (manual byte-slice header
// parsing with a leading type/version tag) and pkg/paillier/pkg/ecdsa's
// MarshalBinary/UnmarshalBinary convention (fixed-size fields, no
// self-describing length except where a component's size is genuinely
// variable). The cursor type below generalizes the teacher's repeated
// "slice off N bytes, bounds-check, advance" pattern into one helper
// instead of re-deriving the bookkeeping in every decoder.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/key"
)

// Error is an exhaustive wire-decoding error kind.
type Error string

func (e Error) Error() string { return "wire: " + string(e) }

const (
	// ErrInvalidEncoding is returned when bytes are truncated, have
	// trailing garbage, or fail a component's own canonical-decode check.
	ErrInvalidEncoding Error = "malformed or non-canonical bytes"

	// ErrUnsupportedVersion is returned when a proof envelope's leading
	// version tag is not one this build knows how to decode.
	ErrUnsupportedVersion Error = "unsupported wire version"
)

// cursor walks a byte slice left to right, bounds-checking every read.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor { return &cursor{buf: buf} }

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, ErrInvalidEncoding
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) remaining() []byte { return c.buf[c.pos:] }

func (c *cursor) byte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) point(g group.Group) (group.Point, error) {
	b, err := c.take(g.PointBytes())
	if err != nil {
		return nil, err
	}
	p := g.NewPoint()
	if err := p.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: point: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}

func (c *cursor) scalar(g group.Group) (group.Scalar, error) {
	b, err := c.take(g.ScalarBytes())
	if err != nil {
		return nil, err
	}
	s := g.NewScalar()
	if err := s.UnmarshalBinary(b); err != nil {
		return nil, fmt.Errorf("%w: scalar: %v", ErrInvalidEncoding, err)
	}
	return s, nil
}

func (c *cursor) ciphertext(g group.Group) (*elgamal.Ciphertext, error) {
	C, err := c.point(g)
	if err != nil {
		return nil, err
	}
	D, err := c.point(g)
	if err != nil {
		return nil, err
	}
	return &elgamal.Ciphertext{C: C, D: D}, nil
}

func (c *cursor) chunked(g group.Group) (*elgamal.ChunkedCiphertext, error) {
	var cc elgamal.ChunkedCiphertext
	for i := range cc.Chunks {
		ct, err := c.ciphertext(g)
		if err != nil {
			return nil, err
		}
		cc.Chunks[i] = ct
	}
	return &cc, nil
}

func appendPoint(buf []byte, p group.Point) ([]byte, error) {
	b, err := p.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: point: %w", err)
	}
	return append(buf, b...), nil
}

func appendScalar(buf []byte, s group.Scalar) ([]byte, error) {
	b, err := s.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wire: scalar: %w", err)
	}
	return append(buf, b...), nil
}

func appendCiphertext(buf []byte, ct *elgamal.Ciphertext) ([]byte, error) {
	buf, err := appendPoint(buf, ct.C)
	if err != nil {
		return nil, err
	}
	return appendPoint(buf, ct.D)
}

func appendChunked(buf []byte, cc *elgamal.ChunkedCiphertext) ([]byte, error) {
	var err error
	for _, ct := range cc.Chunks {
		buf, err = appendCiphertext(buf, ct)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// EncodeCiphertext returns the 64-byte canonical encoding C‖D.
func EncodeCiphertext(ct *elgamal.Ciphertext) ([]byte, error) {
	return appendCiphertext(make([]byte, 0, 64), ct)
}

// DecodeCiphertext parses the 64-byte canonical encoding.
func DecodeCiphertext(g group.Group, data []byte) (*elgamal.Ciphertext, error) {
	if len(data) != 2*g.PointBytes() {
		return nil, ErrInvalidEncoding
	}
	return newCursor(data).ciphertext(g)
}

// EncodeChunkedCiphertext returns the 512-byte canonical encoding: 8
// concatenated 64-byte ciphertexts, chunk 0 first.
func EncodeChunkedCiphertext(cc *elgamal.ChunkedCiphertext) ([]byte, error) {
	return appendChunked(make([]byte, 0, 2*params.ChunkCount*32), cc)
}

// DecodeChunkedCiphertext parses the 512-byte canonical encoding.
func DecodeChunkedCiphertext(g group.Group, data []byte) (*elgamal.ChunkedCiphertext, error) {
	if len(data) != params.ChunkCount*2*g.PointBytes() {
		return nil, ErrInvalidEncoding
	}
	return newCursor(data).chunked(g)
}

// EncodeEncryptionKey returns the 32-byte canonical point encoding.
func EncodeEncryptionKey(pub key.EncryptionKey) ([]byte, error) {
	return pub.MarshalBinary()
}

// DecodeEncryptionKey parses a 32-byte canonical point encoding.
func DecodeEncryptionKey(g group.Group, data []byte) (key.EncryptionKey, error) {
	if len(data) != g.PointBytes() {
		return nil, ErrInvalidEncoding
	}
	p := g.NewPoint()
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}
