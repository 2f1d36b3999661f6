package transcript_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/confidential-assets/ca-core/internal/transcript"
	"github.com/confidential-assets/ca-core/pkg/group"
)

func TestChallengeDeterministic(t *testing.T) {
	g := group.Ristretto255
	p := group.RandomScalar(rand.Reader, g).ActOnBase()

	build := func() group.Scalar {
		tr := transcript.New("CA-SIGMA-TEST-v1")
		tr.AppendMessage("account", []byte("0xabc"))
		tr.AppendPoint("P", p)
		tr.AppendUint64("amount", 42)
		return tr.Challenge(g)
	}

	e1 := build()
	e2 := build()
	assert.True(t, e1.Equal(e2))
}

func TestChallengeSensitiveToOrder(t *testing.T) {
	g := group.Ristretto255
	p := group.RandomScalar(rand.Reader, g).ActOnBase()
	q := group.RandomScalar(rand.Reader, g).ActOnBase()

	tr1 := transcript.New("CA-SIGMA-TEST-v1")
	tr1.AppendPoints("auditors", []group.Point{p, q})
	e1 := tr1.Challenge(g)

	tr2 := transcript.New("CA-SIGMA-TEST-v1")
	tr2.AppendPoints("auditors", []group.Point{q, p})
	e2 := tr2.Challenge(g)

	assert.False(t, e1.Equal(e2))
}

func TestChallengeSensitiveToDomainTag(t *testing.T) {
	g := group.Ristretto255

	tr1 := transcript.New("CA-SIGMA-WITHDRAW-v1")
	tr1.AppendMessage("x", []byte("same"))
	e1 := tr1.Challenge(g)

	tr2 := transcript.New("CA-SIGMA-TRANSFER-v1")
	tr2.AppendMessage("x", []byte("same"))
	e2 := tr2.Challenge(g)

	assert.False(t, e1.Equal(e2))
}
