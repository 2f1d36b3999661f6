package group

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
)

// ristrettoGroup is the concrete Group backed by github.com/gtank/ristretto255,
// a pure-Go implementation of the Ristretto255 prime-order group over
// edwards25519. The group has no cofactor, so every canonically-encoded
// 32-byte string decodes to exactly one group element or is rejected;
// there is no separate small-subgroup check to perform (§4.1).
type ristrettoGroup struct{}

// Ristretto255 is the group adapter used throughout this repository.
var Ristretto255 Group = ristrettoGroup{}

func (ristrettoGroup) Name() string       { return "ristretto255" }
func (ristrettoGroup) ScalarBytes() int   { return 32 }
func (ristrettoGroup) PointBytes() int    { return 32 }
func (ristrettoGroup) NewScalar() Scalar  { return &ristrettoScalar{s: ristretto255.NewScalar()} }
func (ristrettoGroup) NewPoint() Point    { return &ristrettoPoint{p: ristretto255.NewElement()} }
func (ristrettoGroup) NewBasePoint() Point {
	return &ristrettoPoint{p: ristretto255.NewElement().Base()}
}
func (g ristrettoGroup) H() Point { return hGenerator(g) }

type ristrettoScalar struct {
	s *ristretto255.Scalar
}

func (s *ristrettoScalar) clone() *ristrettoScalar {
	out := ristretto255.NewScalar()
	out.Add(out, s.s) // out (0) + s.s
	return &ristrettoScalar{s: out}
}

func (s *ristrettoScalar) MarshalBinary() ([]byte, error) {
	return s.s.Encode(nil), nil
}

func (s *ristrettoScalar) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("group: scalar: wrong length %d", len(data))
	}
	fresh := ristretto255.NewScalar()
	if err := fresh.Decode(data); err != nil {
		return fmt.Errorf("group: scalar: non-canonical encoding: %w", err)
	}
	s.s = fresh
	return nil
}

func (s *ristrettoScalar) Add(other Scalar) Scalar {
	o := other.(*ristrettoScalar)
	out := ristretto255.NewScalar()
	out.Add(s.s, o.s)
	return &ristrettoScalar{s: out}
}

func (s *ristrettoScalar) Sub(other Scalar) Scalar {
	o := other.(*ristrettoScalar)
	out := ristretto255.NewScalar()
	out.Subtract(s.s, o.s)
	return &ristrettoScalar{s: out}
}

func (s *ristrettoScalar) Negate() Scalar {
	out := ristretto255.NewScalar()
	out.Negate(s.s)
	return &ristrettoScalar{s: out}
}

func (s *ristrettoScalar) Mul(other Scalar) Scalar {
	o := other.(*ristrettoScalar)
	out := ristretto255.NewScalar()
	out.Multiply(s.s, o.s)
	return &ristrettoScalar{s: out}
}

func (s *ristrettoScalar) Invert() Scalar {
	out := ristretto255.NewScalar()
	out.Invert(s.s)
	return &ristrettoScalar{s: out}
}

func (s *ristrettoScalar) Equal(other Scalar) bool {
	o, ok := other.(*ristrettoScalar)
	if !ok {
		return false
	}
	return s.s.Equal(o.s) == 1
}

func (s *ristrettoScalar) IsZero() bool {
	return s.Equal(&ristrettoScalar{s: ristretto255.NewScalar()})
}

func (s *ristrettoScalar) Set(other Scalar) Scalar {
	o := other.(*ristrettoScalar)
	*s.s = *o.s
	return s
}

func (s *ristrettoScalar) Act(p Point) Point {
	pp := p.(*ristrettoPoint)
	out := ristretto255.NewElement()
	out.ScalarMult(s.s, pp.p)
	return &ristrettoPoint{p: out}
}

func (s *ristrettoScalar) ActOnBase() Point {
	out := ristretto255.NewElement()
	out.ScalarBaseMult(s.s)
	return &ristrettoPoint{p: out}
}

type ristrettoPoint struct {
	p *ristretto255.Element
}

func (p *ristrettoPoint) MarshalBinary() ([]byte, error) {
	return p.p.Encode(nil), nil
}

func (p *ristrettoPoint) UnmarshalBinary(data []byte) error {
	if len(data) != 32 {
		return fmt.Errorf("group: point: wrong length %d", len(data))
	}
	fresh := ristretto255.NewElement()
	if err := fresh.Decode(data); err != nil {
		return fmt.Errorf("group: point: non-canonical encoding: %w", err)
	}
	p.p = fresh
	return nil
}

func (p *ristrettoPoint) Add(other Point) Point {
	o := other.(*ristrettoPoint)
	out := ristretto255.NewElement()
	out.Add(p.p, o.p)
	return &ristrettoPoint{p: out}
}

func (p *ristrettoPoint) Sub(other Point) Point {
	o := other.(*ristrettoPoint)
	out := ristretto255.NewElement()
	out.Subtract(p.p, o.p)
	return &ristrettoPoint{p: out}
}

func (p *ristrettoPoint) Negate() Point {
	out := ristretto255.NewElement()
	out.Negate(p.p)
	return &ristrettoPoint{p: out}
}

func (p *ristrettoPoint) Set(other Point) Point {
	o := other.(*ristrettoPoint)
	fresh := ristretto255.NewElement()
	fresh.Add(fresh, o.p)
	p.p = fresh
	return p
}

func (p *ristrettoPoint) Equal(other Point) bool {
	o, ok := other.(*ristrettoPoint)
	if !ok {
		return false
	}
	return p.p.Equal(o.p) == 1
}

func (p *ristrettoPoint) IsIdentity() bool {
	return p.Equal(&ristrettoPoint{p: ristretto255.NewElement()})
}

// ScalarFromUniformBytes reduces 64 bytes of uniform randomness (such as an
// extendable-output hash digest) into a scalar. Used by the Fiat-Shamir
// transcript to turn the accumulated transcript state into a challenge.
func ScalarFromUniformBytes(g Group, wide []byte) Scalar {
	return g.NewScalar().(*ristrettoScalar).fromUniform(wide)
}

func (s *ristrettoScalar) fromUniform(wide []byte) *ristrettoScalar {
	out := ristretto255.NewScalar().FromUniformBytes(wide)
	return &ristrettoScalar{s: out}
}

func (p *ristrettoPoint) fromUniform(wide []byte) *ristrettoPoint {
	out := ristretto255.NewElement().FromUniformBytes(wide)
	return &ristrettoPoint{p: out}
}

// RandomScalar draws a uniformly random, nonzero scalar from rnd.
func RandomScalar(rnd io.Reader, g Group) Scalar {
	if rnd == nil {
		rnd = rand.Reader
	}
	var wide [64]byte
	for {
		if _, err := io.ReadFull(rnd, wide[:]); err != nil {
			panic(fmt.Sprintf("group: RandomScalar: entropy source failed: %v", err))
		}
		s := ristretto255.NewScalar().FromUniformBytes(wide[:])
		out := &ristrettoScalar{s: s}
		if !out.IsZero() {
			return out
		}
	}
}
