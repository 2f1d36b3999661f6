package group

import "sync"

// hGeneratorLabel is the domain-separation tag fixed by §3's "Supplemental
// detail" note in SPEC_FULL.md: H = hashToPoint("TwistedElGamalH", G0_bytes).
const hGeneratorLabel = "TwistedElGamalH"

var (
	hOnce  sync.Once
	hPoint Point
)

// hGenerator returns the process-wide, idempotently-constructed second
// generator H, computed once on first use (§5 "Shared-resource policy").
func hGenerator(g Group) Point {
	hOnce.Do(func() {
		base := g.NewBasePoint()
		baseBytes, err := base.MarshalBinary()
		if err != nil {
			panic("group: failed to encode base point: " + err.Error())
		}
		hPoint = HashToPoint(g, hGeneratorLabel, baseBytes)
	})
	return hPoint
}
