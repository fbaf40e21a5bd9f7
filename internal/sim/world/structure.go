package world

import "tileyard/internal/sim/grid"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Structure is one buildable object, from confirmed placement through
// completion. Its cells stay registered in the occupancy index for its whole
// life; completion only reclassifies it.
type Structure struct {
	StructureID string
	Kind        string
	Anchor      grid.Cell
	Cells       []grid.Cell // absolute, sorted row-major
	Rotated     bool

	Status        Status
	Labor         float64
	RequiredLabor float64

	// ClaimedBy mirrors the job board's claim maps. The board is the only
	// writer.
	ClaimedBy string

	PlacedTick    uint64
	CompletedTick uint64
}

// AddLabor accumulates work, clamped at RequiredLabor, and reports whether
// the requirement is now met. It never mutates Status; the work system owns
// the transition.
func (s *Structure) AddLabor(amount float64) bool {
	if amount <= 0 {
		return s.Labor >= s.RequiredLabor
	}
	s.Labor += amount
	if s.Labor > s.RequiredLabor {
		s.Labor = s.RequiredLabor
	}
	return s.Labor >= s.RequiredLabor
}

// Progress is the completed fraction in [0,1].
func (s *Structure) Progress() float64 {
	if s.RequiredLabor <= 0 {
		return 1
	}
	p := s.Labor / s.RequiredLabor
	if p > 1 {
		p = 1
	}
	return p
}

// Claimable reports whether the job board may offer this structure.
func (s *Structure) Claimable() bool {
	return s.ClaimedBy == "" && (s.Status == StatusPending || s.Status == StatusInProgress)
}
