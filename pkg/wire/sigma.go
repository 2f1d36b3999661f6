package wire

import (
	"github.com/confidential-assets/ca-core/internal/params"
	"github.com/confidential-assets/ca-core/internal/sigma"
	"github.com/confidential-assets/ca-core/pkg/group"
)

// appendDecryptEquality and its cursor counterpart below read and write
// sigma.DecryptEqualityProof's exported fields directly; they never name
// the package's unexported chunkProofWire element type, only select its
// exported CComm/DComm/Zm/Zr fields through proof.Chunks[i], which Go
// permits across package boundaries even though the element type itself
// is unexported (see internal/sigma.KnowledgeProof's doc comment).
func appendDecryptEquality(buf []byte, p *sigma.DecryptEqualityProof) ([]byte, error) {
	var err error
	buf, err = appendPoint(buf, p.DLComm)
	if err != nil {
		return nil, err
	}
	buf, err = appendPoint(buf, p.AggComm)
	if err != nil {
		return nil, err
	}
	for i := 0; i < params.ChunkCount; i++ {
		ch := p.Chunks[i]
		buf, err = appendPoint(buf, ch.CComm)
		if err != nil {
			return nil, err
		}
		buf, err = appendPoint(buf, ch.DComm)
		if err != nil {
			return nil, err
		}
		buf, err = appendScalar(buf, ch.Zm)
		if err != nil {
			return nil, err
		}
		buf, err = appendScalar(buf, ch.Zr)
		if err != nil {
			return nil, err
		}
	}
	buf, err = appendScalar(buf, p.Z)
	if err != nil {
		return nil, err
	}
	for i := 0; i < params.ChunkCount; i++ {
		buf, err = appendFramedRangeProof(buf, p.RangeProofs[i])
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (c *cursor) decryptEquality(g group.Group) (*sigma.DecryptEqualityProof, error) {
	proof := &sigma.DecryptEqualityProof{}

	dlComm, err := c.point(g)
	if err != nil {
		return nil, err
	}
	proof.DLComm = dlComm

	aggComm, err := c.point(g)
	if err != nil {
		return nil, err
	}
	proof.AggComm = aggComm

	for i := 0; i < params.ChunkCount; i++ {
		cComm, err := c.point(g)
		if err != nil {
			return nil, err
		}
		dComm, err := c.point(g)
		if err != nil {
			return nil, err
		}
		zm, err := c.scalar(g)
		if err != nil {
			return nil, err
		}
		zr, err := c.scalar(g)
		if err != nil {
			return nil, err
		}
		proof.Chunks[i].CComm = cComm
		proof.Chunks[i].DComm = dComm
		proof.Chunks[i].Zm = zm
		proof.Chunks[i].Zr = zr
	}

	z, err := c.scalar(g)
	if err != nil {
		return nil, err
	}
	proof.Z = z

	for i := 0; i < params.ChunkCount; i++ {
		rp, err := c.framedRangeProof(g)
		if err != nil {
			return nil, err
		}
		proof.RangeProofs[i] = rp
	}
	return proof, nil
}

func appendPublicAmount(buf []byte, p *sigma.PublicAmountProof) ([]byte, error) {
	var err error
	buf, err = appendPoint(buf, p.AggComm)
	if err != nil {
		return nil, err
	}
	for i := 0; i < params.ChunkCount; i++ {
		ch := p.Chunks[i]
		buf, err = appendPoint(buf, ch.CComm)
		if err != nil {
			return nil, err
		}
		buf, err = appendPoint(buf, ch.DComm)
		if err != nil {
			return nil, err
		}
		buf, err = appendScalar(buf, ch.Zm)
		if err != nil {
			return nil, err
		}
		buf, err = appendScalar(buf, ch.Zr)
		if err != nil {
			return nil, err
		}
	}
	buf, err = appendScalar(buf, p.ZR)
	if err != nil {
		return nil, err
	}
	for i := 0; i < params.ChunkCount; i++ {
		buf, err = appendFramedRangeProof(buf, p.RangeProofs[i])
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func (c *cursor) publicAmount(g group.Group) (*sigma.PublicAmountProof, error) {
	proof := &sigma.PublicAmountProof{}

	aggComm, err := c.point(g)
	if err != nil {
		return nil, err
	}
	proof.AggComm = aggComm

	for i := 0; i < params.ChunkCount; i++ {
		cComm, err := c.point(g)
		if err != nil {
			return nil, err
		}
		dComm, err := c.point(g)
		if err != nil {
			return nil, err
		}
		zm, err := c.scalar(g)
		if err != nil {
			return nil, err
		}
		zr, err := c.scalar(g)
		if err != nil {
			return nil, err
		}
		proof.Chunks[i].CComm = cComm
		proof.Chunks[i].DComm = dComm
		proof.Chunks[i].Zm = zm
		proof.Chunks[i].Zr = zr
	}

	zR, err := c.scalar(g)
	if err != nil {
		return nil, err
	}
	proof.ZR = zR

	for i := 0; i < params.ChunkCount; i++ {
		rp, err := c.framedRangeProof(g)
		if err != nil {
			return nil, err
		}
		proof.RangeProofs[i] = rp
	}
	return proof, nil
}
