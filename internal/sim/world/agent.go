package world

import "tileyard/internal/sim/grid"

// Build-priority levels, highest first. Zero disables construction work for
// the agent entirely.
const (
	PriorityDisabled = 0
	PriorityHighest  = 1
	PriorityNormal   = 3
	PriorityLowest   = 4
)

// Agent is one worker. Position and cell are owned by the movement system;
// Claim is owned by the job board.
type Agent struct {
	ID   string
	Name string

	Pos  grid.Vec2
	Cell grid.Cell // cached from Pos after every move

	// Claim is the structure id this agent is assigned to, or empty.
	Claim string

	MoveSpeed float64
	WorkSpeed float64

	// BuildPriority gates whether the agent requests construction jobs at
	// all. Ordering between agents is by ID, not priority; priority is a
	// per-agent opt-out inherited from the crew assignment table.
	BuildPriority int

	// moved marks that the agent travelled this tick and therefore may not
	// also apply labor. Reset by the movement system every tick.
	moved bool
}

// Idle reports whether the agent should ask the job board for work.
func (a *Agent) Idle() bool {
	return a.Claim == "" && a.BuildPriority != PriorityDisabled
}

func (a *Agent) syncCell(tileSize float64, width, height int) {
	if c, ok := grid.WorldToGrid(a.Pos, tileSize, width, height); ok {
		a.Cell = c
	}
}
