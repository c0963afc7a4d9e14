package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "vacuumsim.ai/internal/persistence/log"
	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/sim/tuning"
	"vacuumsim.ai/internal/sim/world"
)

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst (optional; default rebuilds from -seed)")
		worldDir   = flag.String("world_dir", "", "world data dir containing events/events-*.jsonl.zst")
		worldID    = flag.String("world", "world_1", "world id (when rebuilding from seed)")
		seed       = flag.Int64("seed", 0, "world seed (when rebuilding from seed)")
		mode       = flag.String("mode", "", "override tuning mode (when rebuilding from seed)")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "tuning.yaml the run was started with")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fatal("load tuning:", err)
		}
		tune = tuning.Defaults()
	}

	var w *world.World
	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fatal("read snapshot:", err)
		}
		fmt.Printf("snapshot v%d world=%s tick=%d seed=%d mode=%s phase=%s cleaned=%v\n",
			snap.Header.Version, snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.Mode,
			snap.Controller.Phase, snap.Controller.Cleaned)
		w, err = worldFromSnapshot(snap, tune)
		if err != nil {
			fatal("world:", err)
		}
	} else {
		if m := strings.TrimSpace(*mode); m != "" {
			tune.Mode = m
		}
		w, err = world.New(world.ConfigFromTuning(*worldID, *seed, tune))
		if err != nil {
			fatal("world:", err)
		}
	}

	if *worldDir == "" {
		return
	}
	files, err := persistlog.TickLogFiles(*worldDir)
	if err != nil {
		fatal("list events:", err)
	}
	if len(files) == 0 {
		fatal("no events files found in", filepath.Join(*worldDir, "events"))
	}

	startTick := w.CurrentTick()
	checked, err := replay(w, files, *fromTick, *toTick)
	if err != nil {
		fatal("replay:", err)
	}
	fmt.Printf("replay ok: checked=%d ticks (from tick=%d)\n", checked, startTick)
}

func worldFromSnapshot(snap snapshot.SnapshotV1, tune tuning.Tuning) (*world.World, error) {
	tune.TickRateHz = snap.TickRate
	tune.Mode = snap.Mode
	cfg := world.ConfigFromTuning(snap.Header.WorldID, snap.Seed, tune)
	cfg.SnapshotEveryTicks = snap.SnapshotEveryTicks
	w, err := world.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := w.ImportSnapshot(snap); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	return w, nil
}

var errStop = errors.New("stop")

// replay re-steps recorded drives from the tick log and compares digests. Entries before the
// world's current tick are skipped.
func replay(w *world.World, files []string, verifyFrom, toTick uint64) (uint64, error) {
	if verifyFrom == 0 {
		verifyFrom = w.CurrentTick()
	}
	var checked uint64
	err := persistlog.ReadTicks(files, func(entry world.TickLogEntry) error {
		if entry.Tick < w.CurrentTick() {
			return nil
		}
		if toTick != 0 && entry.Tick > toTick {
			return errStop
		}
		if entry.Tick != w.CurrentTick() {
			return fmt.Errorf("tick gap: want=%d got=%d", w.CurrentTick(), entry.Tick)
		}

		tick, got := w.StepOnce(entry.Drives)
		if tick != entry.Tick {
			return fmt.Errorf("internal tick mismatch: stepped=%d entry=%d", tick, entry.Tick)
		}
		if tick >= verifyFrom {
			checked++
			if got != entry.Digest {
				return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", tick, got, entry.Digest)
			}
		}
		return nil
	})
	if errors.Is(err, errStop) {
		err = nil
	}
	return checked, err
}

func fatal(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}
