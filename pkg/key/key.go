// Package key implements the confidential-asset key material of §4.3: a
// DecryptionKey scalar, generated either from a CSPRNG or derived
// deterministically from an externally supplied signature, and its
// corresponding EncryptionKey point P = d⁻¹·H.
package key

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
)

// DecryptionKey is the account's secret scalar d. It is never serialized
// onto the chain; the wire codec (pkg/wire) has no encoder for it.
type DecryptionKey struct {
	g group.Group
	d group.Scalar
}

// EncryptionKey is the public point P = d⁻¹·H.
type EncryptionKey = elgamal.PublicKey

// Generate draws a fresh DecryptionKey from rng (crypto/rand.Reader if
// rng is nil).
func Generate(g group.Group, rng io.Reader) *DecryptionKey {
	if rng == nil {
		rng = rand.Reader
	}
	return &DecryptionKey{g: g, d: group.RandomScalar(rng, g)}
}

// FromSignature deterministically derives a DecryptionKey from an
// externally supplied signature over params.DecryptionKeyClaimDomain, via
// hashToScalar(params.DecryptionKeyDerivationLabel, sigBytes). Two calls
// with the same sigBytes produce byte-identical keys (§8 invariant 3).
func FromSignature(g group.Group, sigBytes []byte) *DecryptionKey {
	s := group.HashToScalar(g, params.DecryptionKeyDerivationLabel, sigBytes)
	return &DecryptionKey{g: g, d: s}
}

// Scalar exposes the raw secret scalar, for use by the Sigma-proof
// packages (pkg/zk/*) that need d as a witness. Callers must not retain
// this beyond the call that needs it; see Zeroize.
func (k *DecryptionKey) Scalar() group.Scalar { return k.d }

// EncryptionKey computes P = d⁻¹·H.
func (k *DecryptionKey) EncryptionKey() EncryptionKey {
	return k.d.Invert().Act(k.g.H())
}

// Zeroize overwrites the in-memory scalar encoding so the secret does not
// linger in the process's heap after the key goes out of scope (§5
// "Secret-material discipline"). Go cannot guarantee the compiler won't
// have copied the backing bytes elsewhere, but this follows the same
// best-effort convention the teacher's round/session state uses when
// discarding ECDSA secret shares.
func (k *DecryptionKey) Zeroize() {
	if k == nil || k.d == nil {
		return
	}
	zero := k.g.NewScalar()
	k.d.Set(zero)
}

func (k *DecryptionKey) String() string {
	return fmt.Sprintf("DecryptionKey{%s}", k.g.Name())
}
