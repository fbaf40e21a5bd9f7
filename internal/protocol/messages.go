package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldParams     WorldParams `json:"world_params"`
	CatalogDigest   string      `json:"catalog_digest"`
}

type WorldParams struct {
	TickRateHz int     `json:"tick_rate_hz"`
	TileSize   float64 `json:"tile_size"`
	GridWidth  int     `json:"grid_width"`
	GridHeight int     `json:"grid_height"`
	Seed       int64   `json:"seed"`
}

// PLACE (client -> server): request a structure at an anchor cell.
type PlaceMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	RequestID       string  `json:"request_id,omitempty"`
	Kind            string  `json:"kind"`
	Anchor          CellRef `json:"anchor"`
	Rotated         bool    `json:"rotated,omitempty"`
}

// CANCEL (client -> server): drop a structure before labor is applied.
type CancelMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	RequestID       string `json:"request_id,omitempty"`
	StructureID     string `json:"structure_id"`
}

// SET_SPEED (client -> server): simulation speed multiplier.
type SetSpeedMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Multiplier      float64 `json:"multiplier"`
}

// RESULT (server -> client): outcome of a PLACE or CANCEL.
type ResultMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	RequestID       string    `json:"request_id,omitempty"`
	OK              bool      `json:"ok"`
	Code            string    `json:"code,omitempty"`
	Message         string    `json:"message,omitempty"`
	StructureID     string    `json:"structure_id,omitempty"`
	ConflictCells   []CellRef `json:"conflict_cells,omitempty"`
}

// SNAPSHOT (server -> client): consistent post-tick view for rendering.
type SnapshotMsg struct {
	Type            string           `json:"type"`
	ProtocolVersion string           `json:"protocol_version"`
	Tick            uint64           `json:"tick"`
	Funds           int              `json:"funds"`
	Agents          []AgentView      `json:"agents"`
	Structures      []StructureView  `json:"structures"`
	Events          []CompletedEvent `json:"events,omitempty"`
}

type CellRef struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type AgentView struct {
	AgentID string  `json:"agent_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cell    CellRef `json:"cell"`
	Glyph   string  `json:"glyph"`
	Working bool    `json:"working,omitempty"`
}

type StructureView struct {
	StructureID string    `json:"structure_id"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	Anchor      CellRef   `json:"anchor"`
	Cells       []CellRef `json:"cells"`
	Progress    float64   `json:"progress"`
	Glyph       string    `json:"glyph"`
}

type CompletedEvent struct {
	Tick        uint64  `json:"tick"`
	StructureID string  `json:"structure_id"`
	Kind        string  `json:"kind"`
	Anchor      CellRef `json:"anchor"`
	BuilderID   string  `json:"builder_id,omitempty"`
}
