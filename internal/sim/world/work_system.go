package world

import "tileyard/internal/protocol"

// systemWork applies labor for every claimed agent that is within arrival
// tolerance of its structure and did not travel this tick. Completion fires
// on the same evaluation that reaches the labor requirement.
func (w *World) systemWork(dt float64, nowTick uint64) {
	if dt <= 0 {
		return
	}
	for _, a := range w.sortedAgents() {
		if a.Claim == "" || a.moved {
			continue
		}
		s := w.structures[a.Claim]
		if s == nil || s.Status != StatusInProgress {
			continue
		}
		if a.Pos.Sub(w.workTarget(s)).Len() > w.arrivalTolerance() {
			continue
		}
		if s.AddLabor(a.WorkSpeed * dt) {
			w.completeStructure(s, nowTick)
		}
	}
}

// completeStructure finishes construction: the claim is cleared (the agent
// goes idle), the structure becomes a finished building, and its occupancy
// stays exactly as reserved at placement.
func (w *World) completeStructure(s *Structure, nowTick uint64) {
	builder := s.ClaimedBy
	if builder != "" {
		w.releaseJob(builder)
	}
	s.Status = StatusCompleted
	s.CompletedTick = nowTick

	ev := protocol.CompletedEvent{
		Tick:        nowTick,
		StructureID: s.StructureID,
		Kind:        s.Kind,
		Anchor:      protocol.CellRef{X: s.Anchor.X, Y: s.Anchor.Y},
		BuilderID:   builder,
	}
	w.completedThisTick = append(w.completedThisTick, ev)
	if w.completedSink != nil {
		select {
		case w.completedSink <- ev:
		default:
			w.logf("ledger: completion sink full, dropping %s", s.StructureID)
		}
	}
}
