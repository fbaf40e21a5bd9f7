package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// stateDigest hashes the full simulation state in a fixed order. Two worlds
// driven by the same inputs must produce identical digests every tick; the
// replay tool relies on this.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		h.Write(tmp[:])
	}
	putI := func(v int) { putU64(uint64(int64(v))) }
	putF := func(v float64) { putU64(math.Float64bits(v)) }

	putU64(nowTick)
	putU64(uint64(w.cfg.Seed))
	putI(w.funds)
	putF(w.cfg.SpeedMultiplier)
	h.Write([]byte(w.catalog.Digest))

	for _, a := range w.sortedAgents() {
		h.Write([]byte(a.ID))
		putF(a.Pos.X)
		putF(a.Pos.Y)
		putI(a.Cell.X)
		putI(a.Cell.Y)
		h.Write([]byte(a.Claim))
		putI(a.BuildPriority)
	}

	for _, s := range w.sortedStructures() {
		h.Write([]byte(s.StructureID))
		h.Write([]byte(s.Kind))
		h.Write([]byte(s.Status))
		h.Write([]byte(s.ClaimedBy))
		putI(s.Anchor.X)
		putI(s.Anchor.Y)
		putF(s.Labor)
		putF(s.RequiredLabor)
		putU64(s.CompletedTick)
		for _, c := range s.Cells {
			putI(c.X)
			putI(c.Y)
		}
	}

	for _, id := range w.occ.occupants() {
		h.Write([]byte(id))
		for _, c := range w.occ.CellsOf(id) {
			putI(c.X)
			putI(c.Y)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
