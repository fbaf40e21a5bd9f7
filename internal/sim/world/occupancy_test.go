package world

import (
	"errors"
	"testing"

	"tileyard/internal/sim/grid"
)

func TestOccupancy_TryReserveAllOrNothing(t *testing.T) {
	occ := NewOccupancyIndex()
	if err := occ.TryReserve([]grid.Cell{{X: 10, Y: 11}}, "S1"); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	// Door footprint spanning (10,10)+(10,11); the second cell is taken.
	err := occ.TryReserve([]grid.Cell{{X: 10, Y: 10}, {X: 10, Y: 11}}, "S2")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(conflict.Cells) != 1 || conflict.Cells[0] != (grid.Cell{X: 10, Y: 11}) {
		t.Fatalf("conflict cells = %v, want [(10,11)]", conflict.Cells)
	}

	// All-or-nothing: the free cell must not have been taken.
	if occ.Len() != 1 {
		t.Fatalf("occupied cells = %d, want 1", occ.Len())
	}
	if !occ.IsFree(grid.Cell{X: 10, Y: 10}) {
		t.Fatal("cell (10,10) reserved by a failed call")
	}
	if got := occ.CellsOf("S2"); len(got) != 0 {
		t.Fatalf("failed occupant holds cells: %v", got)
	}
}

func TestOccupancy_NoDoubleOccupancy(t *testing.T) {
	occ := NewOccupancyIndex()
	steps := []struct {
		cells    []grid.Cell
		occupant string
		wantErr  bool
	}{
		{[]grid.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}}, "S1", false},
		{[]grid.Cell{{X: 1, Y: 0}}, "S2", true},
		{[]grid.Cell{{X: 2, Y: 0}}, "S2", false},
		{[]grid.Cell{{X: 0, Y: 0}, {X: 2, Y: 0}}, "S3", true},
	}
	for i, st := range steps {
		err := occ.TryReserve(st.cells, st.occupant)
		if (err != nil) != st.wantErr {
			t.Fatalf("step %d: err = %v, wantErr = %v", i, err, st.wantErr)
		}
		seen := map[grid.Cell]string{}
		for _, id := range occ.occupants() {
			for _, c := range occ.CellsOf(id) {
				if prev, dup := seen[c]; dup {
					t.Fatalf("step %d: cell %v held by %s and %s", i, c, prev, id)
				}
				seen[c] = id
			}
		}
	}
}

func TestOccupancy_ReleaseIdempotent(t *testing.T) {
	occ := NewOccupancyIndex()
	cells := []grid.Cell{{X: 4, Y: 4}, {X: 5, Y: 4}}
	if err := occ.TryReserve(cells, "S1"); err != nil {
		t.Fatal(err)
	}
	occ.Release("S1")
	occ.Release("S1")
	occ.Release("never-existed")
	if occ.Len() != 0 {
		t.Fatalf("occupied cells after release = %d", occ.Len())
	}
	for _, c := range cells {
		if !occ.IsFree(c) {
			t.Fatalf("cell %v still occupied", c)
		}
	}
	if err := occ.TryReserve(cells, "S2"); err != nil {
		t.Fatalf("re-reserve after release: %v", err)
	}
	if id, _ := occ.OccupantAt(cells[0]); id != "S2" {
		t.Fatalf("occupant = %s, want S2", id)
	}
}
