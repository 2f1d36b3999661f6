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

// DecryptEqualityProof proves: the prover holds the decryption key d_old
// matching oldPub, the chunks of oldChunked decrypt (under d_old) to a
// total m_old, and a freshly built chunked ciphertext under newPub
// encrypts m_old - subtractPublic, with every new chunk in
// [0, 2^params.ChunkBits). This is the shared engine behind the withdrawal
// proof (subtractPublic = the withdrawn amount), the normalization proof
// (subtractPublic = 0, newPub == oldPub), and the sender side of the
// rotation proof (subtractPublic = 0, newPub == the new encryption key).
//
// Grounded on pkg/zk/elog's (announcement, challenge, response) shape,
// extended with the weighted-aggregation trick in chunkWeights so a
// single linear equation ties the shared witness d_old and the
// newly-chosen chunk randomness to the public subtracted amount without
// re-deriving per-chunk plaintexts as separate top-level witnesses.
type DecryptEqualityProof struct {
	DLComm  group.Point
	AggComm group.Point
	Chunks  [params.ChunkCount]chunkProofWire
	Z       group.Scalar

	RangeProofs [params.ChunkCount]*rangeproof.Proof
}

// chunkProofWire is the exported shape of chunkProof, used so callers in
// pkg/wire can serialize a DecryptEqualityProof without this package
// exposing its internal nonce types.
type chunkProofWire = chunkProof

// ProveDecryptEquality builds the proof and the new chunked ciphertext in
// one call: the caller supplies the old decryption key/ciphertext, the
// public amount to subtract (0 for normalize/rotate), the key the new
// ciphertext should be encrypted under, and the plaintext total the new
// ciphertext should hold (m_old - subtractPublic, already computed
// client-side by the caller via dlsearch-based decryption).
func ProveDecryptEquality(
	g group.Group,
	domainTag string,
	contextLabel string,
	context [][]byte,
	oldDecKey group.Scalar,
	oldPub group.Point,
	oldChunked *elgamal.ChunkedCiphertext,
	subtractPublic uint64,
	newPub group.Point,
	newValue *elgamal.Amount,
	rng io.Reader,
	pl *pool.Pool,
) (*DecryptEqualityProof, *elgamal.ChunkedCiphertext, error) {
	newChunked, rs := elgamal.EncryptChunked(g, newPub, newValue, rng)
	newChunkValues := newValue.Chunks()

	weights := chunkWeights(g)

	alphaD := group.RandomScalar(rng, g)
	var chunkNonces [params.ChunkCount]chunkNonce
	alphaRAgg := g.NewScalar()
	for i := 0; i < params.ChunkCount; i++ {
		chunkNonces[i] = newChunkNonce(g, rng)
		alphaRAgg = alphaRAgg.Add(weights[i].Mul(chunkNonces[i].alphaR))
	}

	aDOld := aggregatePoint(weights, func(i int) group.Point { return oldChunked.Chunks[i].D })

	dlComm := alphaD.Act(oldPub)
	aggComm := alphaD.Act(aDOld).Sub(alphaRAgg.Act(g.H()))

	var cComms, dComms [params.ChunkCount]group.Point
	for i := 0; i < params.ChunkCount; i++ {
		cComms[i], dComms[i] = chunkNonces[i].commit(g, newPub)
	}

	c := challenge(g, domainTag, contextLabel, context, oldPub, newPub, oldChunked, newChunked,
		subtractPublic, dlComm, aggComm, cComms[:], dComms[:])

	z := alphaD.Add(c.Mul(oldDecKey))

	var chunks [params.ChunkCount]chunkProof
	rangeValues := make([]uint64, params.ChunkCount)
	rangeBlindings := make([]group.Scalar, params.ChunkCount)
	for i := 0; i < params.ChunkCount; i++ {
		m := scalarFromChunk(g, newChunkValues[i])
		zm, zr := chunkNonces[i].close(c, m, rs[i])
		chunks[i] = chunkProof{CComm: cComms[i], DComm: dComms[i], Zm: zm, Zr: zr}

		rangeValues[i] = uint64(newChunkValues[i])
		rangeBlindings[i] = rs[i]
	}

	rangeProofs, err := rangeproof.ProveBatch(g, pl, rangeValues, rangeBlindings, params.ChunkBits, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("sigma: ProveDecryptEquality: %w", err)
	}
	var proofs [params.ChunkCount]*rangeproof.Proof
	copy(proofs[:], rangeProofs)

	return &DecryptEqualityProof{
		DLComm:      dlComm,
		AggComm:     aggComm,
		Chunks:      chunks,
		Z:           z,
		RangeProofs: proofs,
	}, newChunked, nil
}

// VerifyDecryptEquality recomputes the challenge and checks every response
// equation plus the per-chunk range proofs.
func VerifyDecryptEquality(
	g group.Group,
	domainTag string,
	contextLabel string,
	context [][]byte,
	oldPub group.Point,
	oldChunked *elgamal.ChunkedCiphertext,
	subtractPublic uint64,
	newPub group.Point,
	newChunked *elgamal.ChunkedCiphertext,
	proof *DecryptEqualityProof,
) error {
	weights := chunkWeights(g)

	var cComms, dComms [params.ChunkCount]group.Point
	for i := 0; i < params.ChunkCount; i++ {
		cComms[i] = proof.Chunks[i].CComm
		dComms[i] = proof.Chunks[i].DComm
	}

	c := challenge(g, domainTag, contextLabel, context, oldPub, newPub, oldChunked, newChunked,
		subtractPublic, proof.DLComm, proof.AggComm, cComms[:], dComms[:])

	if !verifyDL(c, oldPub, g.H(), dlProof{Comm: proof.DLComm, Z: proof.Z}) {
		return fmt.Errorf("sigma: DecryptEquality: decryption key check failed")
	}

	rangeCommitments := make([]group.Point, params.ChunkCount)
	rangeProofs := make([]*rangeproof.Proof, params.ChunkCount)
	for i := 0; i < params.ChunkCount; i++ {
		if !verifyChunk(g, c, newChunked.Chunks[i].C, newChunked.Chunks[i].D, newPub, proof.Chunks[i]) {
			return fmt.Errorf("sigma: DecryptEquality: chunk %d knowledge check failed", i)
		}
		rangeCommitments[i] = newChunked.Chunks[i].C
		rangeProofs[i] = proof.RangeProofs[i]
	}
	if err := rangeproof.VerifyBatch(g, rangeCommitments, rangeProofs); err != nil {
		return fmt.Errorf("sigma: DecryptEquality: range proof batch: %w", err)
	}

	aCOld := aggregatePoint(weights, func(i int) group.Point { return oldChunked.Chunks[i].C })
	aDOld := aggregatePoint(weights, func(i int) group.Point { return oldChunked.Chunks[i].D })
	aCNew := aggregatePoint(weights, func(i int) group.Point { return newChunked.Chunks[i].C })

	wScalar := scalarFromUint64(g, subtractPublic)
	target := aCOld.Sub(wScalar.ActOnBase()).Sub(aCNew)

	zRAgg := g.NewScalar()
	for i := 0; i < params.ChunkCount; i++ {
		zRAgg = zRAgg.Add(weights[i].Mul(proof.Chunks[i].Zr))
	}

	lhs := proof.Z.Act(aDOld).Sub(zRAgg.Act(g.H()))
	rhs := proof.AggComm.Add(c.Act(target))
	if !lhs.Equal(rhs) {
		return fmt.Errorf("sigma: DecryptEquality: aggregate decryption equation failed")
	}
	return nil
}

func aggregatePoint(weights [params.ChunkCount]group.Scalar, at func(i int) group.Point) group.Point {
	acc := weights[0].Act(at(0))
	for i := 1; i < params.ChunkCount; i++ {
		acc = acc.Add(weights[i].Act(at(i)))
	}
	return acc
}

// challenge builds the Fiat-Shamir transcript in the fixed order required
// by §4.4.5: domain tag, then context (account/token address bytes and
// any relevant public keys, in the order the caller supplies them), then
// every input and output ciphertext, then every prover commitment.
func challenge(
	g group.Group,
	domainTag, contextLabel string,
	context [][]byte,
	oldPub, newPub group.Point,
	oldChunked, newChunked *elgamal.ChunkedCiphertext,
	subtractPublic uint64,
	dlComm, aggComm group.Point,
	cComms, dComms []group.Point,
) group.Scalar {
	t := newTranscript(domainTag, contextLabel, context)
	t.AppendPoint("oldPub", oldPub)
	t.AppendPoint("newPub", newPub)
	t.AppendUint64("subtractPublic", subtractPublic)
	for i, c := range oldChunked.Chunks {
		t.AppendPoint(fmt.Sprintf("oldC[%d]", i), c.C)
		t.AppendPoint(fmt.Sprintf("oldD[%d]", i), c.D)
	}
	for i, c := range newChunked.Chunks {
		t.AppendPoint(fmt.Sprintf("newC[%d]", i), c.C)
		t.AppendPoint(fmt.Sprintf("newD[%d]", i), c.D)
	}
	t.AppendPoint("dlComm", dlComm)
	t.AppendPoint("aggComm", aggComm)
	t.AppendPoints("cComms", cComms)
	t.AppendPoints("dComms", dComms)
	return t.Challenge(g)
}
