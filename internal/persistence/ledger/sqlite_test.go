package ledger

import (
	"path/filepath"
	"testing"

	"tileyard/internal/protocol"
)

func TestLedger_WriteAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	events := []protocol.CompletedEvent{
		{Tick: 5, StructureID: "S000001", Kind: "WALL", Anchor: protocol.CellRef{X: 5, Y: 6}, BuilderID: "A000001"},
		{Tick: 9, StructureID: "S000002", Kind: "DOOR", Anchor: protocol.CellRef{X: 10, Y: 10}, BuilderID: "A000002"},
		{Tick: 12, StructureID: "S000003", Kind: "WALL", Anchor: protocol.CellRef{X: 7, Y: 6}, BuilderID: "A000001"},
	}
	for _, ev := range events {
		l.Events() <- ev
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen read side.
	l, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()

	got, err := l.Completions(10)
	if err != nil {
		t.Fatalf("completions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("completions = %d, want 3", len(got))
	}
	if got[0].StructureID != "S000003" || got[0].Tick != 12 {
		t.Fatalf("newest first, got %+v", got[0])
	}

	byKind, err := l.CountByKind()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if byKind["WALL"] != 2 || byKind["DOOR"] != 1 {
		t.Fatalf("counts = %v", byKind)
	}
}
