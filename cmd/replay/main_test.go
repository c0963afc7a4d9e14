package main

import (
	"strings"
	"testing"

	persistlog "vacuumsim.ai/internal/persistence/log"
	"vacuumsim.ai/internal/sim/tuning"
	"vacuumsim.ai/internal/sim/world"
)

// record runs a manual-mode world with a scripted driver and writes its tick log.
func record(t *testing.T, dir string, ticks int, tamperAt uint64) {
	t.Helper()
	cfg := world.DefaultConfig("replay", 5)
	cfg.Mode = tuning.ModeManual
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	l := persistlog.NewTickLogger(dir)
	w.SetTickLogger(tamper{l: l, at: tamperAt})
	for i := 0; i < ticks; i++ {
		var drives []world.DriveCommand
		if i%10 < 5 {
			drives = []world.DriveCommand{{SessionID: "D1", VX: 0.05, VZ: -0.02}}
		}
		w.StepOnce(drives)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type tamper struct {
	l  *persistlog.TickLogger
	at uint64
}

func (x tamper) WriteTick(e world.TickLogEntry) error {
	if x.at != 0 && e.Tick == x.at {
		e.Digest = "bad"
	}
	return x.l.WriteTick(e)
}

func freshWorld(t *testing.T) *world.World {
	t.Helper()
	cfg := world.DefaultConfig("replay", 5)
	cfg.Mode = tuning.ModeManual
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func TestReplay_VerifiesDigests(t *testing.T) {
	dir := t.TempDir()
	record(t, dir, 200, 0)
	files, err := persistlog.TickLogFiles(dir)
	if err != nil || len(files) == 0 {
		t.Fatalf("files=%v err=%v", files, err)
	}

	checked, err := replay(freshWorld(t), files, 0, 0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if checked != 200 {
		t.Fatalf("checked=%d want 200", checked)
	}

	checked, err = replay(freshWorld(t), files, 50, 99)
	if err != nil || checked != 50 {
		t.Fatalf("windowed replay checked=%d err=%v", checked, err)
	}
}

func TestReplay_DetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	record(t, dir, 60, 42)
	files, _ := persistlog.TickLogFiles(dir)

	_, err := replay(freshWorld(t), files, 0, 0)
	if err == nil || !strings.Contains(err.Error(), "tick 42") {
		t.Fatalf("expected mismatch at tick 42, got %v", err)
	}
}
