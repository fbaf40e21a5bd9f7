package world

import "tileyard/internal/protocol"

// Rendering glyphs. Finished buildings draw their catalog glyph; anything
// still accumulating labor draws the under-construction marker regardless of
// kind.
const (
	GlyphAgent             = "@"
	GlyphUnderConstruction = "▒"
)

// BuildSnapshot assembles the read-only post-tick view handed to rendering
// and observer layers. Slices are fresh copies in deterministic (ID) order;
// the caller may retain them across ticks.
func (w *World) BuildSnapshot(nowTick uint64) protocol.SnapshotMsg {
	snap := protocol.SnapshotMsg{
		Type:            protocol.TypeSnapshot,
		ProtocolVersion: protocol.Version,
		Tick:            nowTick,
		Funds:           w.funds,
		Agents:          make([]protocol.AgentView, 0, len(w.agents)),
		Structures:      make([]protocol.StructureView, 0, len(w.structures)),
	}
	tol := w.arrivalTolerance()
	for _, a := range w.sortedAgents() {
		working := false
		if a.Claim != "" {
			if s := w.structures[a.Claim]; s != nil {
				working = a.Pos.Sub(w.workTarget(s)).Len() <= tol
			}
		}
		snap.Agents = append(snap.Agents, protocol.AgentView{
			AgentID: a.ID,
			X:       a.Pos.X,
			Y:       a.Pos.Y,
			Cell:    protocol.CellRef{X: a.Cell.X, Y: a.Cell.Y},
			Glyph:   GlyphAgent,
			Working: working,
		})
	}
	for _, s := range w.sortedStructures() {
		glyph := GlyphUnderConstruction
		if s.Status == StatusCompleted {
			if def, ok := w.catalog.ByID[s.Kind]; ok {
				glyph = def.Glyph
			}
		}
		cells := make([]protocol.CellRef, len(s.Cells))
		for i, c := range s.Cells {
			cells[i] = protocol.CellRef{X: c.X, Y: c.Y}
		}
		snap.Structures = append(snap.Structures, protocol.StructureView{
			StructureID: s.StructureID,
			Kind:        s.Kind,
			Status:      string(s.Status),
			Anchor:      protocol.CellRef{X: s.Anchor.X, Y: s.Anchor.Y},
			Cells:       cells,
			Progress:    s.Progress(),
			Glyph:       glyph,
		})
	}
	snap.Events = append(snap.Events, w.completedThisTick...)
	return snap
}
