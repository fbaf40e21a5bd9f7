package ws

import (
	"errors"
	"testing"

	"tileyard/internal/protocol"
	"tileyard/internal/sim/grid"
	"tileyard/internal/sim/world"
)

func TestResultFromErr(t *testing.T) {
	res := resultFromErr("r1", "S000001", nil)
	if !res.OK || res.StructureID != "S000001" || res.Code != "" {
		t.Fatalf("success result = %+v", res)
	}

	conflict := &world.ConflictError{Cells: []grid.Cell{{X: 10, Y: 11}}}
	res = resultFromErr("r2", "", conflict)
	if res.OK || res.Code != protocol.ErrConflict {
		t.Fatalf("conflict result = %+v", res)
	}
	if len(res.ConflictCells) != 1 || res.ConflictCells[0] != (protocol.CellRef{X: 10, Y: 11}) {
		t.Fatalf("conflict cells = %v", res.ConflictCells)
	}

	res = resultFromErr("r3", "", errors.New("queue full"))
	if res.OK || res.Code != protocol.ErrInternal {
		t.Fatalf("uncoded error result = %+v", res)
	}
	if res.StructureID != "" {
		t.Fatal("failed result kept a structure id")
	}
}
