package world

import (
	"fmt"
	"sort"
	"strings"

	"tileyard/internal/protocol"
	"tileyard/internal/sim/grid"
)

// ConflictError reports every requested cell that was already taken. A failed
// reservation leaves the index untouched.
type ConflictError struct {
	Cells []grid.Cell
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Cells))
	for i, c := range e.Cells {
		parts[i] = fmt.Sprintf("(%d,%d)", c.X, c.Y)
	}
	return "occupancy conflict at " + strings.Join(parts, ",")
}

func (e *ConflictError) Code() string { return protocol.ErrConflict }

// OccupancyIndex is the single source of truth for which cells are taken and
// by what. All mutation goes through TryReserve/Release so the one-occupant-
// per-cell invariant stays auditable.
type OccupancyIndex struct {
	byCell     map[grid.Cell]string
	byOccupant map[string][]grid.Cell
}

func NewOccupancyIndex() *OccupancyIndex {
	return &OccupancyIndex{
		byCell:     map[grid.Cell]string{},
		byOccupant: map[string][]grid.Cell{},
	}
}

// TryReserve marks every cell as held by occupantID, or none of them. On
// overlap it returns a ConflictError listing all occupied cells, sorted
// row-major.
func (o *OccupancyIndex) TryReserve(cells []grid.Cell, occupantID string) error {
	var conflicts []grid.Cell
	for _, c := range cells {
		if _, taken := o.byCell[c]; taken {
			conflicts = append(conflicts, c)
		}
	}
	if len(conflicts) > 0 {
		sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Less(conflicts[j]) })
		return &ConflictError{Cells: conflicts}
	}
	for _, c := range cells {
		o.byCell[c] = occupantID
	}
	o.byOccupant[occupantID] = append(o.byOccupant[occupantID], cells...)
	return nil
}

// Release frees every cell attributed to occupantID. Idempotent.
func (o *OccupancyIndex) Release(occupantID string) {
	for _, c := range o.byOccupant[occupantID] {
		if o.byCell[c] == occupantID {
			delete(o.byCell, c)
		}
	}
	delete(o.byOccupant, occupantID)
}

func (o *OccupancyIndex) IsFree(c grid.Cell) bool {
	_, taken := o.byCell[c]
	return !taken
}

func (o *OccupancyIndex) OccupantAt(c grid.Cell) (string, bool) {
	id, ok := o.byCell[c]
	return id, ok
}

// CellsOf returns the cells held by an occupant, sorted row-major.
func (o *OccupancyIndex) CellsOf(occupantID string) []grid.Cell {
	held := o.byOccupant[occupantID]
	out := make([]grid.Cell, len(held))
	copy(out, held)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Len is the number of occupied cells.
func (o *OccupancyIndex) Len() int { return len(o.byCell) }

// occupants returns occupant ids sorted, for digesting.
func (o *OccupancyIndex) occupants() []string {
	ids := make([]string, 0, len(o.byOccupant))
	for id := range o.byOccupant {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
