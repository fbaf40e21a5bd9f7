package world

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64

	// Grid geometry.
	TileSize   float64
	GridWidth  int
	GridHeight int

	// Agents.
	InitialAgents  int
	AgentMoveSpeed float64 // world units per second
	AgentWorkSpeed float64 // labor units per second

	// Distance from a structure anchor, in tiles, at which an agent stops
	// travelling and starts applying labor.
	ArrivalToleranceTiles float64

	// Simulation speed multiplier applied to every tick's delta time.
	SpeedMultiplier float64

	// Economy-facing balance used to gate placement.
	StartingFunds int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "site_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 10
	}
	if c.TileSize <= 0 {
		c.TileSize = 16
	}
	if c.GridWidth <= 0 {
		c.GridWidth = 100
	}
	if c.GridHeight <= 0 {
		c.GridHeight = 100
	}
	if c.InitialAgents < 0 {
		c.InitialAgents = 0
	}
	if c.AgentMoveSpeed <= 0 {
		c.AgentMoveSpeed = 100
	}
	if c.AgentWorkSpeed <= 0 {
		c.AgentWorkSpeed = 10
	}
	if c.ArrivalToleranceTiles <= 0 {
		c.ArrivalToleranceTiles = 1
	}
	if c.SpeedMultiplier <= 0 {
		c.SpeedMultiplier = 1
	}
	if c.StartingFunds == 0 {
		c.StartingFunds = 10000
	}
}
