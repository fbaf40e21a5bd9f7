package world

import "encoding/json"

// stepInternal is the single place the world mutates. Order per tick:
// speed change, then spawns, removals, placements, cancellations in arrival
// order, then claim maintenance, assignment, movement, work. Observers and
// the tick log see the post-tick state.
func (w *World) stepInternal(baseDT float64, places []PlacementRequest, cancels []CancelRequest, spawns []SpawnRequest, removes []RemoveRequest, speed *float64) {
	nowTick := w.tick.Load()
	w.completedThisTick = w.completedThisTick[:0]

	if speed != nil && *speed > 0 {
		w.cfg.SpeedMultiplier = *speed
	}
	dt := baseDT * w.cfg.SpeedMultiplier

	entry := TickLogEntry{Tick: nowTick, Speed: speed}

	for _, req := range spawns {
		a := w.SpawnAgent(req.Name, req.Pos)
		entry.Spawned = append(entry.Spawned, RecordedSpawn{Name: req.Name, X: req.Pos.X, Y: req.Pos.Y})
		if req.Resp != nil {
			req.Resp <- a.ID
		}
	}
	for _, req := range removes {
		err := w.RemoveAgent(req.AgentID)
		entry.Removed = append(entry.Removed, req.AgentID)
		if req.Resp != nil {
			req.Resp <- err
		}
	}
	for _, req := range places {
		id, err := w.TryPlaceStructure(req.Kind, req.Anchor, req.Rotated)
		entry.Placed = append(entry.Placed, RecordedPlace{Kind: req.Kind, X: req.Anchor.X, Y: req.Anchor.Y, Rotated: req.Rotated})
		if req.Resp != nil {
			req.Resp <- PlacementResponse{StructureID: id, Err: err}
		}
	}
	for _, req := range cancels {
		err := w.CancelStructure(req.StructureID)
		entry.Cancelled = append(entry.Cancelled, req.StructureID)
		if req.Resp != nil {
			req.Resp <- err
		}
	}

	w.claimsMaintenance()
	w.systemAssignment()
	w.systemMovement(dt)
	w.systemWork(dt, nowTick)

	entry.Completed = append(entry.Completed, w.completedThisTick...)
	entry.Digest = w.stateDigest(nowTick)
	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(entry); err != nil {
			w.logf("ticklog: write tick %d: %v", nowTick, err)
		}
	}

	if len(w.observers) > 0 {
		snap := w.BuildSnapshot(nowTick)
		if b, err := json.Marshal(snap); err == nil {
			for _, out := range w.observers {
				sendLatest(out, b)
			}
		}
	}

	w.tick.Add(1)
}
