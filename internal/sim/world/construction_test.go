package world

import (
	"testing"

	"tileyard/internal/sim/catalogs"
	"tileyard/internal/sim/grid"
)

func testCatalog(t *testing.T) *catalogs.BuildingCatalog {
	t.Helper()
	cat, err := catalogs.New([]catalogs.BuildingDef{
		{ID: "WALL", Glyph: "#", RequiredLabor: 10, Cost: 10},
		{ID: "DOOR", Glyph: "+", RequiredLabor: 15, Cost: 25, Rotatable: true,
			Footprint: []catalogs.Offset{{X: 0, Y: 0}, {X: 0, Y: 1}}},
		{ID: "WINDOW", Glyph: "=", RequiredLabor: 12, Cost: 15},
	})
	if err != nil {
		t.Fatalf("test catalog: %v", err)
	}
	return cat
}

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(WorldConfig{
		ID:             "test",
		TickRateHz:     1,
		TileSize:       16,
		GridWidth:      100,
		GridHeight:     100,
		InitialAgents:  0,
		AgentWorkSpeed: 2,
		Seed:           42,
	}, testCatalog(t))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

func cellPos(w *World, c grid.Cell) grid.Vec2 {
	cfg := w.Config()
	return grid.GridToWorld(c, cfg.TileSize, cfg.GridWidth, cfg.GridHeight)
}

// Scenario: one worker beside one pending wall (requiredLabor 10, workSpeed
// 2) finishes it in exactly five one-second ticks.
func TestConstruction_AdjacentWallFiveTicks(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	sid, err := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	s := w.Structure(sid)
	if s.Status != StatusPending {
		t.Fatalf("status after place = %s", s.Status)
	}

	for i := 0; i < 4; i++ {
		w.Step(1)
	}
	if s.Status != StatusInProgress {
		t.Fatalf("status after 4 ticks = %s", s.Status)
	}
	if s.Labor != 8 {
		t.Fatalf("labor after 4 ticks = %v, want 8", s.Labor)
	}
	if s.ClaimedBy != a.ID || a.Claim != sid {
		t.Fatalf("claim not mutual: structure=%q agent=%q", s.ClaimedBy, a.Claim)
	}

	w.Step(1)
	if s.Status != StatusCompleted {
		t.Fatalf("status after 5 ticks = %s", s.Status)
	}
	if s.Labor != 10 {
		t.Fatalf("labor = %v, want exactly 10", s.Labor)
	}
	if a.Claim != "" || s.ClaimedBy != "" {
		t.Fatal("claim not cleared on completion")
	}
	if id, _ := w.Occupancy().OccupantAt(grid.Cell{X: 5, Y: 6}); id != sid {
		t.Fatal("completed structure lost its occupancy")
	}
}

// Scenario: two idle workers, one unclaimed job; exactly one gets the claim.
func TestAssignment_SingleJobSingleClaim(t *testing.T) {
	w := newTestWorld(t)
	a1 := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	a2 := w.SpawnAgent("w2", cellPos(w, grid.Cell{X: 20, Y: 20}))
	sid, err := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	if err != nil {
		t.Fatal(err)
	}

	w.systemAssignment()

	claims := 0
	for _, a := range []*Agent{a1, a2} {
		if a.Claim != "" {
			claims++
			if a.Claim != sid {
				t.Fatalf("agent %s claims %s", a.ID, a.Claim)
			}
		}
	}
	if claims != 1 {
		t.Fatalf("claims = %d, want exactly 1", claims)
	}
	if w.Structure(sid).ClaimedBy != a1.ID {
		t.Fatalf("nearest agent %s should hold the claim, got %s", a1.ID, w.Structure(sid).ClaimedBy)
	}
}

func TestAssignment_EquidistantTieBreaksOnLowestID(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	s1, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	s2, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 4}, false)
	if s2 < s1 {
		t.Fatalf("structure ids not ascending: %s then %s", s1, s2)
	}

	w.systemAssignment()
	if a.Claim != s1 {
		t.Fatalf("agent claimed %s, want the lower id %s", a.Claim, s1)
	}
}

// Scenario: the claiming worker is removed at 4/10 labor. The structure
// reverts to PENDING keeping its labor, and a second worker resumes from 4.
func TestConstruction_AgentRemovalRetainsLabor(t *testing.T) {
	w := newTestWorld(t)
	a1 := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	sid, err := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	if err != nil {
		t.Fatal(err)
	}
	s := w.Structure(sid)

	w.Step(1)
	w.Step(1)
	if s.Labor != 4 {
		t.Fatalf("labor = %v, want 4", s.Labor)
	}

	if err := w.RemoveAgent(a1.ID); err != nil {
		t.Fatalf("remove agent: %v", err)
	}
	if s.Status != StatusPending {
		t.Fatalf("status after removal = %s, want PENDING", s.Status)
	}
	if s.ClaimedBy != "" {
		t.Fatal("dangling claim after agent removal")
	}
	if s.Labor != 4 {
		t.Fatalf("labor after removal = %v, want 4 retained", s.Labor)
	}

	a2 := w.SpawnAgent("w2", cellPos(w, grid.Cell{X: 5, Y: 5}))
	w.Step(1)
	if s.ClaimedBy != a2.ID || s.Status != StatusInProgress {
		t.Fatalf("structure not re-claimed: claimedBy=%q status=%s", s.ClaimedBy, s.Status)
	}
	w.Step(1)
	w.Step(1)
	if s.Status != StatusCompleted || s.Labor != 10 {
		t.Fatalf("after resume: status=%s labor=%v", s.Status, s.Labor)
	}
}

func TestConstruction_LaborClampedAndMonotonic(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	a.WorkSpeed = 3
	sid, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	s := w.Structure(sid)

	prev := 0.0
	for i := 0; i < 10; i++ {
		w.Step(1)
		if s.Labor < prev {
			t.Fatalf("tick %d: labor regressed %v -> %v", i, prev, s.Labor)
		}
		if s.Labor > s.RequiredLabor {
			t.Fatalf("tick %d: labor %v exceeds required %v", i, s.Labor, s.RequiredLabor)
		}
		prev = s.Labor
	}
	if s.Status != StatusCompleted {
		t.Fatalf("status = %s", s.Status)
	}
	// Completion is terminal.
	w.Step(1)
	if s.Status != StatusCompleted || s.Labor != s.RequiredLabor {
		t.Fatalf("completed structure changed: status=%s labor=%v", s.Status, s.Labor)
	}
}

func TestConstruction_ZeroDeltaTickIsNoOp(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	sid, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	s := w.Structure(sid)

	w.Step(1)
	labor := s.Labor
	w.Step(0)
	if s.Labor != labor {
		t.Fatalf("zero-dt tick changed labor %v -> %v", labor, s.Labor)
	}
}

func TestMovement_TravelThenWork(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 50, Y: 50}))
	sid, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 60, Y: 50}, false)
	s := w.Structure(sid)

	// 10 tiles = 160 world units away, speed 100/s, tolerance 16: needs two
	// ticks of travel before labor can start.
	w.Step(1)
	if s.Labor != 0 {
		t.Fatalf("labor applied while travelling: %v", s.Labor)
	}
	w.Step(1)
	if s.Labor != 0 {
		t.Fatal("move and work in the same tick")
	}
	w.Step(1)
	if s.Labor != 2 {
		t.Fatalf("labor after arrival = %v, want 2", s.Labor)
	}
	target := w.workTarget(s)
	if a.Pos.Sub(target).Len() > w.arrivalTolerance() {
		t.Fatal("agent worked outside arrival tolerance")
	}
}

func TestAssignment_DisabledPriorityNeverClaims(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	a.BuildPriority = PriorityDisabled
	w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)

	w.Step(1)
	if a.Claim != "" {
		t.Fatalf("disabled agent claimed %s", a.Claim)
	}
}

func TestClaims_MaintenanceSelfHeals(t *testing.T) {
	w := newTestWorld(t)
	a := w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	sid, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	w.systemAssignment()
	s := w.Structure(sid)

	// Break one side of the claim behind the board's back.
	delete(w.claimByStructure, sid)
	w.claimsMaintenance()

	if a.Claim != "" || s.ClaimedBy != "" {
		t.Fatalf("inconsistent claim survived: agent=%q structure=%q", a.Claim, s.ClaimedBy)
	}
	if s.Status != StatusPending {
		t.Fatalf("status = %s, want PENDING after heal", s.Status)
	}
	if len(w.claimByAgent) != 0 || len(w.claimByStructure) != 0 {
		t.Fatal("claim maps not cleared")
	}
}

func TestSpeedMultiplier_ScalesLabor(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	sid, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)
	s := w.Structure(sid)

	double := 2.0
	w.stepInternal(1, nil, nil, nil, nil, &double)
	if s.Labor != 4 {
		t.Fatalf("labor at 2x = %v, want 4", s.Labor)
	}
}

func TestSnapshot_GlyphsAndProgress(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnAgent("w1", cellPos(w, grid.Cell{X: 5, Y: 5}))
	sid, _ := w.TryPlaceStructure("WALL", grid.Cell{X: 5, Y: 6}, false)

	w.Step(1)
	snap := w.BuildSnapshot(w.CurrentTick())
	if len(snap.Agents) != 1 || snap.Agents[0].Glyph != GlyphAgent {
		t.Fatalf("agent view = %+v", snap.Agents)
	}
	if len(snap.Structures) != 1 {
		t.Fatalf("structures = %d", len(snap.Structures))
	}
	sv := snap.Structures[0]
	if sv.Glyph != GlyphUnderConstruction {
		t.Fatalf("in-progress glyph = %q", sv.Glyph)
	}
	if sv.Progress != 0.2 {
		t.Fatalf("progress = %v, want 0.2", sv.Progress)
	}

	for i := 0; i < 4; i++ {
		w.Step(1)
	}
	snap = w.BuildSnapshot(w.CurrentTick())
	if got := snap.Structures[0].Glyph; got != "#" {
		t.Fatalf("completed wall glyph = %q, want #", got)
	}
	_ = sid
}
