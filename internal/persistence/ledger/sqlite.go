// Package ledger persists structure-completion events to SQLite. It is the
// query surface offered to the economy/spawn layer: writes happen on a
// dedicated goroutine fed by a channel, so the simulation tick never touches
// the database.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"tileyard/internal/protocol"
)

const schema = `
CREATE TABLE IF NOT EXISTS completions (
	structure_id TEXT PRIMARY KEY,
	tick         INTEGER NOT NULL,
	kind         TEXT NOT NULL,
	anchor_x     INTEGER NOT NULL,
	anchor_y     INTEGER NOT NULL,
	builder_id   TEXT NOT NULL DEFAULT '',
	recorded_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS completions_kind ON completions(kind);
`

type Ledger struct {
	db *sql.DB

	ch     chan protocol.CompletedEvent
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
}

// Open creates (or reopens) the ledger database and starts the writer
// goroutine.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: init schema: %w", err)
	}
	l := &Ledger{
		db: db,
		ch: make(chan protocol.CompletedEvent, 256),
	}
	l.wg.Add(1)
	go l.writer()
	return l, nil
}

// Events is the sink channel handed to the world. Sends after Close are the
// caller's responsibility to avoid; the world's non-blocking send drops on a
// full channel either way.
func (l *Ledger) Events() chan protocol.CompletedEvent { return l.ch }

func (l *Ledger) writer() {
	defer l.wg.Done()
	for ev := range l.ch {
		_, err := l.db.Exec(
			`INSERT OR REPLACE INTO completions
			 (structure_id, tick, kind, anchor_x, anchor_y, builder_id, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.StructureID, int64(ev.Tick), ev.Kind, ev.Anchor.X, ev.Anchor.Y, ev.BuilderID,
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			// Keep draining; a persistence hiccup must not wedge the sim.
			continue
		}
	}
}

// Close drains pending events and closes the database.
func (l *Ledger) Close() error {
	var err error
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.ch)
		l.wg.Wait()
		err = l.db.Close()
	})
	return err
}

// Completions returns the most recent completion events, newest first.
func (l *Ledger) Completions(limit int) ([]protocol.CompletedEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := l.db.Query(
		`SELECT structure_id, tick, kind, anchor_x, anchor_y, builder_id
		 FROM completions ORDER BY tick DESC, structure_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []protocol.CompletedEvent
	for rows.Next() {
		var ev protocol.CompletedEvent
		var tick int64
		if err := rows.Scan(&ev.StructureID, &tick, &ev.Kind, &ev.Anchor.X, &ev.Anchor.Y, &ev.BuilderID); err != nil {
			return nil, err
		}
		ev.Tick = uint64(tick)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// CountByKind reports how many structures of each kind have been completed.
func (l *Ledger) CountByKind() (map[string]int, error) {
	rows, err := l.db.Query(`SELECT kind, COUNT(*) FROM completions GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}
