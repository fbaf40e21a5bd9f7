package grid

import (
	"fmt"
	"sort"
)

// Footprint is the set of cell offsets, relative to an anchor, that a placed
// object occupies. Offsets are kept sorted row-major so expansion order is
// deterministic.
type Footprint []Cell

// Single is the one-cell footprint shared by most structures.
var Single = Footprint{{X: 0, Y: 0}}

// Block returns a w*h rectangle of offsets with (0,0) as the anchor corner.
// Agents occupy Block(2, 2).
func Block(w, h int) Footprint {
	fp := make(Footprint, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fp = append(fp, Cell{X: x, Y: y})
		}
	}
	return fp
}

// Validate rejects empty footprints and duplicate offsets.
func (fp Footprint) Validate() error {
	if len(fp) == 0 {
		return fmt.Errorf("footprint: empty")
	}
	seen := make(map[Cell]bool, len(fp))
	for _, off := range fp {
		if seen[off] {
			return fmt.Errorf("footprint: duplicate offset (%d,%d)", off.X, off.Y)
		}
		seen[off] = true
	}
	return nil
}

// At expands the footprint around an anchor into absolute cells, sorted
// row-major.
func (fp Footprint) At(anchor Cell) []Cell {
	cells := make([]Cell, len(fp))
	for i, off := range fp {
		cells[i] = Cell{X: anchor.X + off.X, Y: anchor.Y + off.Y}
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].Less(cells[j]) })
	return cells
}

// Rotated swaps X/Y of every offset. Used for vertical door placement.
func (fp Footprint) Rotated() Footprint {
	out := make(Footprint, len(fp))
	for i, off := range fp {
		out[i] = Cell{X: off.Y, Y: off.X}
	}
	return out
}
