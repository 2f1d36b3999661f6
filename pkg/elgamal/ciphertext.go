// Package elgamal implements the twisted-ElGamal ciphertext engine of §4.2:
// encryption, homomorphic add/sub, decryption to a group element, and
// (via dlsearch.go) decryption all the way to a plaintext value through a
// bounded discrete-log search.
//
// Grounded in the teacher's internal/elgamal package (same Ciphertext
// shape: two points, an Encrypt that samples fresh randomness, a
// WriteTo-based canonical encoding) but reworked for the *twisted* variant
// the spec requires: the public key is P = d⁻¹·H rather than x·G, and a
// ciphertext is (C = m·G0 + r·H, D = r·P) rather than (L = r·G, M = m·G +
// r·X).
package elgamal

import (
	"fmt"
	"io"

	"github.com/confidential-assets/ca-core/pkg/group"
)

// PublicKey is an encryption key P = d⁻¹·H (see pkg/key).
type PublicKey = group.Point

// Ciphertext is a twisted-ElGamal encryption of a scalar amount m under
// randomness r and public key P: C = m·G0 + r·H, D = r·P.
type Ciphertext struct {
	C group.Point
	D group.Point
}

// Empty returns the additive identity ciphertext (encrypting 0 with r=0),
// suitable as a decode target or as the starting accumulator for Add.
func Empty(g group.Group) *Ciphertext {
	return &Ciphertext{C: g.NewPoint(), D: g.NewPoint()}
}

// Encrypt encrypts m under public key pub with fresh randomness drawn from
// rng, returning the ciphertext and the randomness used (callers building
// Sigma proofs need the randomness as a witness).
func Encrypt(g group.Group, pub PublicKey, m group.Scalar, rng io.Reader) (*Ciphertext, group.Scalar) {
	r := group.RandomScalar(rng, g)
	return EncryptDeterministic(g, pub, m, r), r
}

// EncryptDeterministic encrypts m under public key pub using the
// caller-supplied randomness r. Re-using r across two ciphertexts for the
// same key breaks semantic security; every call site in pkg/zk and
// pkg/client draws r fresh, per §4.4.5.
func EncryptDeterministic(g group.Group, pub PublicKey, m, r group.Scalar) *Ciphertext {
	h := g.H()
	c := m.ActOnBase().Add(r.Act(h))
	d := r.Act(pub)
	return &Ciphertext{C: c, D: d}
}

// Add returns the pointwise sum a+b, which decrypts to the sum of a's and
// b's plaintexts (homomorphism, §8 invariant 2).
func (c *Ciphertext) Add(other *Ciphertext) *Ciphertext {
	return &Ciphertext{C: c.C.Add(other.C), D: c.D.Add(other.D)}
}

// Sub returns the pointwise difference a-b.
func (c *Ciphertext) Sub(other *Ciphertext) *Ciphertext {
	return &Ciphertext{C: c.C.Sub(other.C), D: c.D.Sub(other.D)}
}

// DecryptPoint returns m·G0 given the decryption key d: C - d·D.
func (c *Ciphertext) DecryptPoint(g group.Group, d group.Scalar) group.Point {
	return c.C.Sub(d.Act(c.D))
}

// WriteTo writes the 64-byte canonical encoding C‖D.
func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, p := range []group.Point{c.C, c.D} {
		buf, err := p.(interface{ MarshalBinary() ([]byte, error) }).MarshalBinary()
		if err != nil {
			return total, err
		}
		n, err := w.Write(buf)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (Ciphertext) Domain() string { return "CA Twisted-ElGamal Ciphertext" }

// Valid reports whether c's points are both non-nil; identity points are
// legal here (a zero-amount, zero-randomness ciphertext used at
// registration time is C=D=identity), unlike the teacher's ElGamal where
// an identity L or M signals a malformed ciphertext.
func (c *Ciphertext) Valid() bool {
	return c != nil && c.C != nil && c.D != nil
}

func (c *Ciphertext) String() string {
	cb, _ := c.C.(interface{ MarshalBinary() ([]byte, error) }).MarshalBinary()
	db, _ := c.D.(interface{ MarshalBinary() ([]byte, error) }).MarshalBinary()
	return fmt.Sprintf("Ciphertext{C:%x,D:%x}", cb, db)
}
