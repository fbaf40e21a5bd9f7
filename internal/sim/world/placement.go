package world

import (
	"tileyard/internal/protocol"
	"tileyard/internal/sim/grid"
)

// TryPlaceStructure validates a placement and, on success, atomically
// reserves the footprint and creates a PENDING structure. Loop-goroutine
// only; transports go through the place channel.
//
// Failure modes, in check order: unknown kind, out-of-bounds footprint,
// insufficient funds, occupancy conflict. Nothing is mutated on failure.
func (w *World) TryPlaceStructure(kind string, anchor grid.Cell, rotated bool) (string, error) {
	def, ok := w.catalog.ByID[kind]
	if !ok {
		return "", codedErr(protocol.ErrInvalidKind, "unknown building kind %q", kind)
	}
	fp, _ := w.catalog.FootprintOf(kind)
	if rotated {
		if !def.Rotatable {
			return "", codedErr(protocol.ErrInvalidKind, "building kind %q is not rotatable", kind)
		}
		fp = fp.Rotated()
	}

	cells := fp.At(anchor)
	for _, c := range cells {
		if c.X < 0 || c.X >= w.cfg.GridWidth || c.Y < 0 || c.Y >= w.cfg.GridHeight {
			return "", codedErr(protocol.ErrOutOfBounds, "cell (%d,%d) outside %dx%d grid", c.X, c.Y, w.cfg.GridWidth, w.cfg.GridHeight)
		}
	}
	if w.funds < def.Cost {
		return "", codedErr(protocol.ErrNoFunds, "kind %q costs %d, have %d", kind, def.Cost, w.funds)
	}

	id := w.newStructureID()
	if err := w.occ.TryReserve(cells, id); err != nil {
		// The id counter advanced for a structure that never existed; ids
		// only need to be unique and ascending, not dense.
		return "", err
	}
	w.funds -= def.Cost
	w.structures[id] = &Structure{
		StructureID:   id,
		Kind:          kind,
		Anchor:        anchor,
		Cells:         cells,
		Rotated:       rotated,
		Status:        StatusPending,
		RequiredLabor: def.RequiredLabor,
		PlacedTick:    w.tick.Load(),
	}
	return id, nil
}

// CancelStructure drops a structure that has accumulated no labor: occupancy
// released, claim released, cost refunded. Once labor has been applied the
// structure can no longer be cancelled.
func (w *World) CancelStructure(structureID string) error {
	s, ok := w.structures[structureID]
	if !ok {
		return codedErr(protocol.ErrNotFound, "structure %s not found", structureID)
	}
	if s.Labor > 0 || s.Status == StatusCompleted {
		return codedErr(protocol.ErrHasLabor, "structure %s already has labor applied", structureID)
	}
	if s.ClaimedBy != "" {
		w.releaseJob(s.ClaimedBy)
	}
	w.occ.Release(structureID)
	delete(w.structures, structureID)
	if def, ok := w.catalog.ByID[s.Kind]; ok {
		w.funds += def.Cost
	}
	return nil
}
