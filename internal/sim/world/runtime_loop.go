package world

import (
	"context"
	"fmt"
	"time"
)

// Run drives the simulation until the context is cancelled or Stop is
// called. External requests are buffered as they arrive and applied in
// arrival order at the next tick boundary, so the tick remains the unit of
// atomicity for every observable state change.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingPlace []PlacementRequest
	var pendingCancel []CancelRequest
	var pendingSpawn []SpawnRequest
	var pendingRemove []RemoveRequest
	var pendingSpeed *float64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.place:
			pendingPlace = append(pendingPlace, req)
		case req := <-w.cancel:
			pendingCancel = append(pendingCancel, req)
		case req := <-w.spawn:
			pendingSpawn = append(pendingSpawn, req)
		case req := <-w.remove:
			pendingRemove = append(pendingRemove, req)
		case m := <-w.setSpeed:
			pendingSpeed = &m
		case req := <-w.observerAdd:
			w.observers[req.id] = req.out
		case id := <-w.observerDel:
			delete(w.observers, id)
		case <-ticker.C:
			w.stepInternal(interval.Seconds(), pendingPlace, pendingCancel, pendingSpawn, pendingRemove, pendingSpeed)
			pendingPlace = pendingPlace[:0]
			pendingCancel = pendingCancel[:0]
			pendingSpawn = pendingSpawn[:0]
			pendingRemove = pendingRemove[:0]
			pendingSpeed = nil
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Step advances one tick with no external inputs. Loop-goroutine only; meant
// for tests and replay.
func (w *World) Step(dt float64) {
	w.stepInternal(dt, nil, nil, nil, nil, nil)
}

// StepInputs is one tick's worth of external requests, in the order the loop
// would have received them.
type StepInputs struct {
	Places  []PlacementRequest
	Cancels []CancelRequest
	Spawns  []SpawnRequest
	Removes []RemoveRequest
	Speed   *float64
}

// StepOnce advances one tick and returns the tick index that was evaluated
// and its post-state digest, using the same ordering semantics as Run. It is
// primarily intended for deterministic replays/tests.
func (w *World) StepOnce(dt float64, in StepInputs) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.stepInternal(dt, in.Places, in.Cancels, in.Spawns, in.Removes, in.Speed)
	return tick, w.stateDigest(tick)
}

// EnqueuePlace hands a placement to the world loop. Safe from any goroutine.
func (w *World) EnqueuePlace(req PlacementRequest) error {
	select {
	case w.place <- req:
		return nil
	default:
		return fmt.Errorf("world %s: placement queue full", w.cfg.ID)
	}
}

// EnqueueCancel hands a cancellation to the world loop. Safe from any
// goroutine.
func (w *World) EnqueueCancel(req CancelRequest) error {
	select {
	case w.cancel <- req:
		return nil
	default:
		return fmt.Errorf("world %s: cancel queue full", w.cfg.ID)
	}
}

// EnqueueSetSpeed asks for a new speed multiplier at the next tick boundary.
func (w *World) EnqueueSetSpeed(multiplier float64) {
	select {
	case w.setSpeed <- multiplier:
	default:
	}
}

// AddObserver registers a snapshot consumer and returns its id. The channel
// receives at most the latest marshalled snapshot; slow readers see frames
// dropped, never a stalled tick.
func (w *World) AddObserver(out chan []byte) string {
	id := fmt.Sprintf("O%06d", w.nextObserverNum.Add(1))
	w.observerAdd <- observerReq{id: id, out: out}
	return id
}

func (w *World) RemoveObserver(id string) {
	select {
	case w.observerDel <- id:
	default:
	}
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
