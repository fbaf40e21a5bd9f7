package world

import "tileyard/internal/sim/grid"

func (w *World) arrivalTolerance() float64 {
	return w.cfg.ArrivalToleranceTiles * w.cfg.TileSize
}

// workTarget is the world position an agent travels to for a structure: the
// center of its anchor cell.
func (w *World) workTarget(s *Structure) grid.Vec2 {
	return grid.GridToWorld(s.Anchor, w.cfg.TileSize, w.cfg.GridWidth, w.cfg.GridHeight)
}

// systemMovement advances every claimed agent that is still outside arrival
// tolerance: a straight-line step at MoveSpeed, clamped at the target so an
// overshoot never oscillates. An agent moves or works in a tick, never both.
func (w *World) systemMovement(dt float64) {
	if dt <= 0 {
		return
	}
	for _, a := range w.sortedAgents() {
		a.moved = false
		if a.Claim == "" {
			continue
		}
		s := w.structures[a.Claim]
		if s == nil {
			// Healed by claimsMaintenance next tick.
			continue
		}
		target := w.workTarget(s)
		delta := target.Sub(a.Pos)
		dist := delta.Len()
		if dist <= w.arrivalTolerance() {
			continue
		}
		step := a.MoveSpeed * dt
		if step >= dist {
			a.Pos = target
		} else {
			a.Pos = a.Pos.Add(delta.Scale(step / dist))
		}
		a.moved = true
		a.syncCell(w.cfg.TileSize, w.cfg.GridWidth, w.cfg.GridHeight)
	}
}
