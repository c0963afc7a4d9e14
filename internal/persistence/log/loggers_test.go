package log

import (
	"path/filepath"
	"testing"
	"time"

	"vacuumsim.ai/internal/sim/world"
)

func TestTickLogger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir)
	for i := uint64(0); i < 3; i++ {
		e := world.TickLogEntry{Tick: i, Digest: "d"}
		if i == 1 {
			e.Drives = []world.DriveCommand{{SessionID: "D1", VX: 0.1}}
			e.Events = []world.Event{{Tick: 1, Kind: world.EventDebrisCollected, Zone: "north", DebrisID: "D-north-1"}}
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := TickLogFiles(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("files=%v err=%v", files, err)
	}
	var got []world.TickLogEntry
	if err := ReadTicks(files, func(e world.TickLogEntry) error {
		got = append(got, e)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 3 || got[1].Drives[0].VX != 0.1 || got[1].Events[0].DebrisID != "D-north-1" {
		t.Fatalf("unexpected entries: %+v", got)
	}
}

func TestJSONLZstdWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "zone_events")
	at := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return at }
	if err := w.Write(world.Event{Tick: 1, Kind: world.EventArrived}); err != nil {
		t.Fatalf("write: %v", err)
	}
	at = at.Add(2 * time.Minute)
	if err := w.Write(world.Event{Tick: 2, Kind: world.EventZoneCleaned}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "zone_events-*.jsonl.zst"))
	if len(files) != 2 {
		t.Fatalf("got %d files want 2: %v", len(files), files)
	}
	n := 0
	if err := ReadJSONL(files[0], func([]byte) error { n++; return nil }); err != nil || n != 1 {
		t.Fatalf("first hour lines=%d err=%v", n, err)
	}
}
