package world

import (
	"fmt"
	"log"
	"sort"
	"sync/atomic"

	"tileyard/internal/protocol"
	"tileyard/internal/sim/catalogs"
	"tileyard/internal/sim/grid"
)

// World is a single-threaded authoritative construction simulation. All state
// must be accessed only from the world loop goroutine; transports talk to it
// through the request channels.
type World struct {
	cfg     WorldConfig
	catalog *catalogs.BuildingCatalog

	tick atomic.Uint64

	agents     map[string]*Agent
	structures map[string]*Structure
	occ        *OccupancyIndex

	// Mutual claim index, maintained transactionally by the job board.
	claimByAgent     map[string]string // agent id -> structure id
	claimByStructure map[string]string // structure id -> agent id

	funds int

	// Completion events of the current tick, drained into the snapshot and
	// the ledger sink.
	completedThisTick []protocol.CompletedEvent

	place       chan PlacementRequest
	cancel      chan CancelRequest
	spawn       chan SpawnRequest
	remove      chan RemoveRequest
	setSpeed    chan float64
	observerAdd chan observerReq
	observerDel chan string
	stop        chan struct{}

	observers map[string]chan []byte

	nextAgentNum     atomic.Uint64
	nextStructureNum atomic.Uint64
	nextObserverNum  atomic.Uint64

	// Optional collaborators (may be nil).
	logger        *log.Logger
	tickLogger    TickLogger
	completedSink chan<- protocol.CompletedEvent
}

// TickLogger persists one entry per tick; implemented in
// internal/persistence/log.
type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

// TickLogEntry records everything needed to re-drive a tick deterministically.
type TickLogEntry struct {
	Tick      uint64                    `json:"tick"`
	Placed    []RecordedPlace           `json:"placed,omitempty"`
	Cancelled []string                  `json:"cancelled,omitempty"`
	Spawned   []RecordedSpawn           `json:"spawned,omitempty"`
	Removed   []string                  `json:"removed,omitempty"`
	Speed     *float64                  `json:"speed,omitempty"`
	Completed []protocol.CompletedEvent `json:"completed,omitempty"`
	Digest    string                    `json:"digest"`
}

type RecordedPlace struct {
	Kind    string `json:"kind"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Rotated bool   `json:"rotated,omitempty"`
}

type RecordedSpawn struct {
	Name string  `json:"name,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PlacementRequest asks the world to place a structure at the next tick
// boundary. Resp (optional) receives exactly one result.
type PlacementRequest struct {
	Kind    string
	Anchor  grid.Cell
	Rotated bool
	Resp    chan PlacementResponse
}

type PlacementResponse struct {
	StructureID string
	Err         error
}

type CancelRequest struct {
	StructureID string
	Resp        chan error
}

type SpawnRequest struct {
	Name string
	Pos  grid.Vec2
	Resp chan string // agent id
}

type RemoveRequest struct {
	AgentID string
	Resp    chan error
}

type observerReq struct {
	id  string
	out chan []byte
}

// CodedError pairs a protocol error code with a human-readable message.
type CodedError struct {
	ErrCode string
	Message string
}

func (e *CodedError) Error() string { return e.Message }
func (e *CodedError) Code() string  { return e.ErrCode }

func codedErr(code, format string, args ...any) *CodedError {
	return &CodedError{ErrCode: code, Message: fmt.Sprintf(format, args...)}
}

func New(cfg WorldConfig, cat *catalogs.BuildingCatalog) (*World, error) {
	cfg.applyDefaults()
	if cat == nil {
		return nil, fmt.Errorf("world: nil building catalog")
	}
	w := &World{
		cfg:              cfg,
		catalog:          cat,
		agents:           map[string]*Agent{},
		structures:       map[string]*Structure{},
		occ:              NewOccupancyIndex(),
		claimByAgent:     map[string]string{},
		claimByStructure: map[string]string{},
		funds:            cfg.StartingFunds,
		place:            make(chan PlacementRequest, 64),
		cancel:           make(chan CancelRequest, 64),
		spawn:            make(chan SpawnRequest, 16),
		remove:           make(chan RemoveRequest, 16),
		setSpeed:         make(chan float64, 4),
		observerAdd:      make(chan observerReq, 8),
		observerDel:      make(chan string, 8),
		stop:             make(chan struct{}),
		observers:        map[string]chan []byte{},
	}

	// Initial crew spawns in a row around the grid center, like the original
	// site setup.
	center := grid.Cell{X: cfg.GridWidth / 2, Y: cfg.GridHeight / 2}
	for i := 0; i < cfg.InitialAgents; i++ {
		pos := grid.GridToWorld(center, cfg.TileSize, cfg.GridWidth, cfg.GridHeight)
		pos.X += float64(i-1) * cfg.TileSize * 3
		w.SpawnAgent(fmt.Sprintf("Worker %d", i+1), pos)
	}
	return w, nil
}

// SetLogger installs a diagnostics logger. Call before Run.
func (w *World) SetLogger(l *log.Logger) { w.logger = l }

// SetTickLogger installs the per-tick persistence writer. Call before Run.
func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

// SetCompletedSink installs a channel receiving completion events. Sends are
// non-blocking; a backed-up sink drops events rather than stalling the tick.
func (w *World) SetCompletedSink(ch chan<- protocol.CompletedEvent) { w.completedSink = ch }

func (w *World) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}

func (w *World) Config() WorldConfig { return w.cfg }

// CatalogDigest identifies the building-kind content this world runs with.
func (w *World) CatalogDigest() string { return w.catalog.Digest }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// AgentCount is the query surface for the spawn layer.
func (w *World) AgentCount() int { return len(w.agents) }

// Funds is the query surface for the economy layer.
func (w *World) Funds() int { return w.funds }

// SpawnAgent creates a worker at a world position. Loop-goroutine only;
// transports go through the spawn channel.
func (w *World) SpawnAgent(name string, pos grid.Vec2) *Agent {
	a := &Agent{
		ID:            w.newAgentID(),
		Name:          name,
		Pos:           pos,
		MoveSpeed:     w.cfg.AgentMoveSpeed,
		WorkSpeed:     w.cfg.AgentWorkSpeed,
		BuildPriority: PriorityNormal,
	}
	a.syncCell(w.cfg.TileSize, w.cfg.GridWidth, w.cfg.GridHeight)
	w.agents[a.ID] = a
	return a
}

// RemoveAgent destroys a worker. Its claim is released first so the claimed
// structure reverts to PENDING with labor retained; no dangling claim
// survives the call.
func (w *World) RemoveAgent(agentID string) error {
	if _, ok := w.agents[agentID]; !ok {
		return codedErr(protocol.ErrNotFound, "agent %s not found", agentID)
	}
	w.releaseJob(agentID)
	delete(w.agents, agentID)
	return nil
}

func (w *World) Agent(id string) *Agent          { return w.agents[id] }
func (w *World) Structure(id string) *Structure  { return w.structures[id] }
func (w *World) Occupancy() *OccupancyIndex      { return w.occ }

func (w *World) newAgentID() string {
	return fmt.Sprintf("A%06d", w.nextAgentNum.Add(1))
}

func (w *World) newStructureID() string {
	return fmt.Sprintf("S%06d", w.nextStructureNum.Add(1))
}

func (w *World) sortedAgents() []*Agent {
	out := make([]*Agent, 0, len(w.agents))
	for _, a := range w.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) sortedStructures() []*Structure {
	out := make([]*Structure, 0, len(w.structures))
	for _, s := range w.structures {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StructureID < out[j].StructureID })
	return out
}
