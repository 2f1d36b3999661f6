package sigma

import (
	"fmt"
	"io"

	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/internal/rangeproof"
	"github.com/confidential-assets/ca-core/pkg/elgamal"
	"github.com/confidential-assets/ca-core/pkg/group"
	"github.com/confidential-assets/ca-core/pkg/pool"
)

// PublicAmountProof proves that a freshly built chunked ciphertext under a
// given public key encrypts a value that is PUBLICLY KNOWN to the
// verifier (the transfer amount v), with every chunk in
// [0, 2^params.ChunkBits). There is no decryption key witness here at all:
// this is the engine behind a transfer's recipient leg and every auditor
// leg, where the value is identical across all of them (by the
// uniqueness of a bounded base-2^16 positional decomposition of a fixed
// public total) but each leg's ciphertext is independently randomized
// under its own public key.
type PublicAmountProof struct {
	AggComm group.Point
	Chunks  [params.ChunkCount]chunkProofWire
	ZR      group.Scalar

	RangeProofs [params.ChunkCount]*rangeproof.Proof
}

// ProvePublicAmount builds a fresh chunked ciphertext for value under pub
// and proves it encodes value, returning the proof and ciphertext.
func ProvePublicAmount(
	g group.Group,
	domainTag string,
	contextLabel string,
	context [][]byte,
	pub group.Point,
	value *elgamal.Amount,
	rng io.Reader,
	pl *pool.Pool,
) (*PublicAmountProof, *elgamal.ChunkedCiphertext, error) {
	chunked, rs := elgamal.EncryptChunked(g, pub, value, rng)
	chunkValues := value.Chunks()

	weights := chunkWeights(g)

	var chunkNonces [params.ChunkCount]chunkNonce
	alphaRAgg := g.NewScalar()
	for i := 0; i < params.ChunkCount; i++ {
		chunkNonces[i] = newChunkNonce(g, rng)
		alphaRAgg = alphaRAgg.Add(weights[i].Mul(chunkNonces[i].alphaR))
	}
	aggComm := alphaRAgg.Act(g.H())

	var cComms, dComms [params.ChunkCount]group.Point
	for i := 0; i < params.ChunkCount; i++ {
		cComms[i], dComms[i] = chunkNonces[i].commit(g, pub)
	}

	publicValueBytes, err := amountBytes(value)
	if err != nil {
		return nil, nil, fmt.Errorf("sigma: ProvePublicAmount: %w", err)
	}

	c := publicAmountChallenge(g, domainTag, contextLabel, context, pub, publicValueBytes,
		chunked, aggComm, cComms[:], dComms[:])

	var chunks [params.ChunkCount]chunkProof
	rangeValues := make([]uint64, params.ChunkCount)
	rangeBlindings := make([]group.Scalar, params.ChunkCount)
	zR := g.NewScalar()
	for i := 0; i < params.ChunkCount; i++ {
		m := scalarFromChunk(g, chunkValues[i])
		zm, zr := chunkNonces[i].close(c, m, rs[i])
		chunks[i] = chunkProof{CComm: cComms[i], DComm: dComms[i], Zm: zm, Zr: zr}
		zR = zR.Add(weights[i].Mul(zr))

		rangeValues[i] = uint64(chunkValues[i])
		rangeBlindings[i] = rs[i]
	}

	rangeProofsSlice, err := rangeproof.ProveBatch(g, pl, rangeValues, rangeBlindings, params.ChunkBits, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("sigma: ProvePublicAmount: %w", err)
	}
	var proofs [params.ChunkCount]*rangeproof.Proof
	copy(proofs[:], rangeProofsSlice)

	return &PublicAmountProof{
		AggComm:     aggComm,
		Chunks:      chunks,
		ZR:          zR,
		RangeProofs: proofs,
	}, chunked, nil
}

// VerifyPublicAmount recomputes the challenge and checks every response
// equation, including that the weighted chunk sum matches the claimed
// public value, plus the per-chunk range proofs.
func VerifyPublicAmount(
	g group.Group,
	domainTag string,
	contextLabel string,
	context [][]byte,
	pub group.Point,
	value *elgamal.Amount,
	chunked *elgamal.ChunkedCiphertext,
	proof *PublicAmountProof,
) error {
	weights := chunkWeights(g)

	var cComms, dComms [params.ChunkCount]group.Point
	for i := 0; i < params.ChunkCount; i++ {
		cComms[i] = proof.Chunks[i].CComm
		dComms[i] = proof.Chunks[i].DComm
	}

	publicValueBytes, err := amountBytes(value)
	if err != nil {
		return fmt.Errorf("sigma: VerifyPublicAmount: %w", err)
	}

	c := publicAmountChallenge(g, domainTag, contextLabel, context, pub, publicValueBytes,
		chunked, proof.AggComm, cComms[:], dComms[:])

	rangeCommitments := make([]group.Point, params.ChunkCount)
	rangeProofs := make([]*rangeproof.Proof, params.ChunkCount)
	for i := 0; i < params.ChunkCount; i++ {
		if !verifyChunk(g, c, chunked.Chunks[i].C, chunked.Chunks[i].D, pub, proof.Chunks[i]) {
			return fmt.Errorf("sigma: PublicAmount: chunk %d knowledge check failed", i)
		}
		rangeCommitments[i] = chunked.Chunks[i].C
		rangeProofs[i] = proof.RangeProofs[i]
	}
	if err := rangeproof.VerifyBatch(g, rangeCommitments, rangeProofs); err != nil {
		return fmt.Errorf("sigma: PublicAmount: range proof batch: %w", err)
	}

	aC := aggregatePoint(weights, func(i int) group.Point { return chunked.Chunks[i].C })
	vScalar, err := amountToScalar(g, value)
	if err != nil {
		return fmt.Errorf("sigma: VerifyPublicAmount: %w", err)
	}
	target := aC.Sub(vScalar.ActOnBase())

	zRAgg := g.NewScalar()
	for i := 0; i < params.ChunkCount; i++ {
		zRAgg = zRAgg.Add(weights[i].Mul(proof.Chunks[i].Zr))
	}
	if !zRAgg.Equal(proof.ZR) {
		return fmt.Errorf("sigma: PublicAmount: aggregate randomness response mismatch")
	}

	lhs := proof.ZR.Act(g.H())
	rhs := proof.AggComm.Add(c.Act(target))
	if !lhs.Equal(rhs) {
		return fmt.Errorf("sigma: PublicAmount: aggregate value equation failed")
	}
	return nil
}

func publicAmountChallenge(
	g group.Group,
	domainTag, contextLabel string,
	context [][]byte,
	pub group.Point,
	publicValueBytes []byte,
	chunked *elgamal.ChunkedCiphertext,
	aggComm group.Point,
	cComms, dComms []group.Point,
) group.Scalar {
	t := newTranscript(domainTag, contextLabel, context)
	t.AppendPoint("pub", pub)
	t.AppendMessage("publicValue", publicValueBytes)
	for i, c := range chunked.Chunks {
		t.AppendPoint(fmt.Sprintf("C[%d]", i), c.C)
		t.AppendPoint(fmt.Sprintf("D[%d]", i), c.D)
	}
	t.AppendPoint("aggComm", aggComm)
	t.AppendPoints("cComms", cComms)
	t.AppendPoints("dComms", dComms)
	return t.Challenge(g)
}

// amountBytes returns a canonical byte encoding of an Amount for
// transcript absorption, independent of the group's scalar field.
func amountBytes(a *elgamal.Amount) ([]byte, error) {
	v, ok := a.Uint64()
	if !ok {
		return nil, fmt.Errorf("sigma: amount exceeds 64 bits, transfer/auditor amounts must fit in a public uint64")
	}
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return buf[:], nil
}

// amountToScalar converts a public Amount into a group scalar for use as
// v in the aggregate value equation.
func amountToScalar(g group.Group, a *elgamal.Amount) (group.Scalar, error) {
	v, ok := a.Uint64()
	if !ok {
		return nil, fmt.Errorf("sigma: amount exceeds 64 bits")
	}
	return scalarFromUint64(g, v), nil
}
