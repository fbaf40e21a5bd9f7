package world

import (
	"sort"

	"tileyard/internal/sim/grid"
)

// The job board is a view over the live structure set: a "job" is any
// structure that is still accumulating labor and has no claimant. Claims are
// held in two maps so the agent<->structure matching stays a symmetric
// partial bijection that can be checked and repaired centrally.

// findJobFor picks the unclaimed job nearest to the agent (Euclidean distance
// from the agent's cell to the structure anchor, ties broken by lowest
// structure id) and installs the mutual claim. Returns the structure id, or
// "" when no job is available.
func (w *World) findJobFor(a *Agent) string {
	var best *Structure
	var bestDist float64
	for _, s := range w.sortedStructures() {
		if !s.Claimable() {
			continue
		}
		d := grid.Distance(a.Cell, s.Anchor)
		if best == nil || d < bestDist {
			best = s
			bestDist = d
		}
	}
	if best == nil {
		return ""
	}
	w.claimByAgent[a.ID] = best.StructureID
	w.claimByStructure[best.StructureID] = a.ID
	a.Claim = best.StructureID
	best.ClaimedBy = a.ID
	if best.Status == StatusPending {
		best.Status = StatusInProgress
	}
	return best.StructureID
}

// releaseJob clears the mutual claim for an agent. The structure keeps any
// labor already applied and reverts to PENDING so it can be re-claimed.
func (w *World) releaseJob(agentID string) {
	sid, ok := w.claimByAgent[agentID]
	if !ok {
		return
	}
	delete(w.claimByAgent, agentID)
	delete(w.claimByStructure, sid)
	if a := w.agents[agentID]; a != nil {
		a.Claim = ""
	}
	if s := w.structures[sid]; s != nil {
		s.ClaimedBy = ""
		if s.Status == StatusInProgress {
			s.Status = StatusPending
		}
	}
}

// claimsMaintenance runs at the tick boundary before assignment. A one-sided
// or dangling claim is a programming error; rather than diverge we clear the
// inconsistent entry and log it.
func (w *World) claimsMaintenance() {
	agentIDs := make([]string, 0, len(w.claimByAgent))
	for id := range w.claimByAgent {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)
	for _, aid := range agentIDs {
		sid := w.claimByAgent[aid]
		a := w.agents[aid]
		s := w.structures[sid]
		if a == nil || s == nil || w.claimByStructure[sid] != aid || a.Claim != sid || s.ClaimedBy != aid {
			w.logf("claims: self-heal inconsistent claim agent=%s structure=%s", aid, sid)
			delete(w.claimByAgent, aid)
			if w.claimByStructure[sid] == aid {
				delete(w.claimByStructure, sid)
			}
			if a != nil && a.Claim == sid {
				a.Claim = ""
			}
			if s != nil && s.ClaimedBy == aid {
				s.ClaimedBy = ""
				if s.Status == StatusInProgress {
					s.Status = StatusPending
				}
			}
		}
	}
	sids := make([]string, 0, len(w.claimByStructure))
	for id := range w.claimByStructure {
		sids = append(sids, id)
	}
	sort.Strings(sids)
	for _, sid := range sids {
		aid := w.claimByStructure[sid]
		if w.claimByAgent[aid] != sid {
			w.logf("claims: self-heal orphan structure claim agent=%s structure=%s", aid, sid)
			delete(w.claimByStructure, sid)
			if s := w.structures[sid]; s != nil && s.ClaimedBy == aid {
				s.ClaimedBy = ""
				if s.Status == StatusInProgress {
					s.Status = StatusPending
				}
			}
		}
	}
}

// systemAssignment gives every idle agent at most one job per tick. A single
// sequential pass serializes matching, so two agents can never claim the same
// structure within a tick.
func (w *World) systemAssignment() {
	for _, a := range w.sortedAgents() {
		if !a.Idle() {
			continue
		}
		w.findJobFor(a)
	}
}
