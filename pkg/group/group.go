// Package group wraps the Ristretto255 prime-order group behind a small
// Scalar/Point interface, generalized from the curve abstraction used
// throughout the Sigma-proof packages in this repository.
package group

import "encoding"

// Scalar is an element of the Ristretto255 scalar field ℓ.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler

	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Negate() Scalar
	Mul(Scalar) Scalar
	Invert() Scalar
	Equal(Scalar) bool
	IsZero() bool
	Set(Scalar) Scalar

	// Act returns s * p.
	Act(p Point) Point
	// ActOnBase returns s * G0.
	ActOnBase() Point
}

// Point is an element of the Ristretto255 group.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler

	Add(Point) Point
	Sub(Point) Point
	Negate() Point
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
}

// Group exposes the generators and constructors for the Ristretto255
// adapter. Two independent generators are available: NewBasePoint (G0,
// the canonical Ristretto255 base point) and H (the second, independent
// generator derived by hashToPoint, see generators.go).
type Group interface {
	NewScalar() Scalar
	NewPoint() Point
	NewBasePoint() Point
	H() Point
	Name() string
	// ScalarBytes is the canonical encoded length of a Scalar (32).
	ScalarBytes() int
	// PointBytes is the canonical encoded length of a Point (32).
	PointBytes() int
}

// MultiScalarMult computes Σ scalars[i]·points[i]. Implementations may
// batch this more efficiently than repeated Act+Add; the ristretto255
// adapter here does the straightforward thing since amounts of public
// points involved in a single proof are small (at most a few dozen).
func MultiScalarMult(scalars []Scalar, points []Point) Point {
	if len(scalars) != len(points) {
		panic("group: MultiScalarMult: length mismatch")
	}
	if len(scalars) == 0 {
		panic("group: MultiScalarMult: empty input")
	}
	acc := scalars[0].Act(points[0])
	for i := 1; i < len(scalars); i++ {
		acc = acc.Add(scalars[i].Act(points[i]))
	}
	return acc
}
