// Package grid holds the pure tile-coordinate math shared by the simulation:
// discrete cells, continuous positions, and the conversions between them.
package grid

import "math"

// Cell is a discrete tile index on the build grid.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec2 is a continuous world-space position in pixels.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Y) }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Less orders cells row-major. Used wherever cell lists must be deterministic.
func (c Cell) Less(o Cell) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// Distance is the Euclidean distance between two cell indices.
func Distance(a, b Cell) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Hypot(dx, dy)
}

// WorldToGrid maps a continuous position onto the grid. The world origin sits
// at the grid center; cell boundaries belong to the higher-index cell. The
// second return is false when the position falls outside the grid.
func WorldToGrid(pos Vec2, tileSize float64, width, height int) (Cell, bool) {
	w := float64(width) * tileSize
	h := float64(height) * tileSize

	gx := int(math.Floor((pos.X + w/2) / tileSize))
	gy := int(math.Floor((pos.Y + h/2) / tileSize))

	if gx < 0 || gx >= width || gy < 0 || gy >= height {
		return Cell{}, false
	}
	return Cell{X: gx, Y: gy}, true
}

// GridToWorld returns the world-space center of a cell. Total over all integer
// cells; callers that need bounds checking validate before converting.
func GridToWorld(c Cell, tileSize float64, width, height int) Vec2 {
	w := float64(width) * tileSize
	h := float64(height) * tileSize
	return Vec2{
		X: float64(c.X)*tileSize - w/2 + tileSize/2,
		Y: float64(c.Y)*tileSize - h/2 + tileSize/2,
	}
}
