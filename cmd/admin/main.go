package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	persistlog "vacuumsim.ai/internal/persistence/log"
	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "events":
			eventsCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

// snapshotSummary is the compact view printed by inspect.
type snapshotSummary struct {
	Path            string     `json:"path"`
	Version         int        `json:"version"`
	WorldID         string     `json:"world_id"`
	Tick            uint64     `json:"tick"`
	Seed            int64      `json:"seed"`
	Mode            string     `json:"mode"`
	Phase           string     `json:"phase"`
	Pass            string     `json:"pass"`
	Occupied        []string   `json:"occupied,omitempty"`
	Pending         []string   `json:"pending,omitempty"`
	Cleaned         []string   `json:"cleaned,omitempty"`
	DebrisTotal     int        `json:"debris_total"`
	DebrisRemaining int        `json:"debris_remaining"`
	Battery         float64    `json:"battery"`
	AllCleaned      bool       `json:"all_cleaned"`
	RobotPos        [3]float64 `json:"robot_pos"`
}

func summarize(path string, snap snapshot.SnapshotV1) snapshotSummary {
	s := snapshotSummary{
		Path:        path,
		Version:     snap.Header.Version,
		WorldID:     snap.Header.WorldID,
		Tick:        snap.Header.Tick,
		Seed:        snap.Seed,
		Mode:        snap.Mode,
		Phase:       snap.Controller.Phase,
		Pass:        snap.Controller.Pass,
		Pending:     snap.Controller.Pending,
		Cleaned:     snap.Controller.Cleaned,
		DebrisTotal: len(snap.Debris),
		Battery:     snap.Controller.Battery,
		AllCleaned:  snap.Controller.AllCleaned,
		RobotPos:    snap.Robot.Pos,
	}
	for _, z := range snap.Zones {
		if z.Occupied {
			s.Occupied = append(s.Occupied, z.ID)
		}
	}
	for _, d := range snap.Debris {
		if d.Visible {
			s.DebrisRemaining++
		}
	}
	return s
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (used to find the latest snapshot when no path is given)")
	headerOnly := fs.Bool("header", false, "print only the snapshot header")
	_ = fs.Parse(args)

	path := strings.TrimSpace(fs.Arg(0))
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "usage: admin inspect [-world WORLD] [PATH]")
			os.Exit(2)
		}
		path = latestSnapshot(filepath.Join(*dataDir, "worlds", *worldID))
		if path == "" {
			fmt.Fprintln(os.Stderr, "no snapshot found")
			os.Exit(2)
		}
	}

	if *headerOnly {
		h, err := snapshot.ReadHeader(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read header:", err)
			os.Exit(1)
		}
		printJSON(h)
		return
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	printJSON(summarize(path, snap))
}

type eventFilter struct {
	Kind      string
	Zone      string
	SinceTick uint64
	ToTick    uint64
}

func (f eventFilter) match(e world.Event) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Zone != "" && e.Zone != f.Zone {
		return false
	}
	if e.Tick < f.SinceTick {
		return false
	}
	return f.ToTick == 0 || e.Tick <= f.ToTick
}

// readEvents scans the hourly zone event logs of a world in order.
func readEvents(worldDir string, f eventFilter, limit int) ([]world.Event, error) {
	files, err := filepath.Glob(filepath.Join(worldDir, "events", "zone_events-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	out := make([]world.Event, 0, 64)
	for _, path := range files {
		err := persistlog.ReadJSONL(path, func(line []byte) error {
			var e world.Event
			if err := json.Unmarshal(line, &e); err != nil {
				return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
			}
			if !f.match(e) {
				return nil
			}
			out = append(out, e)
			if limit > 0 && len(out) >= limit {
				return errLimit
			}
			return nil
		})
		if errors.Is(err, errLimit) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

var errLimit = errors.New("limit")

func eventsCmd(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	kind := fs.String("kind", "", "event kind filter (e.g. ZONE_CLEANED)")
	zone := fs.String("zone", "", "zone filter")
	sinceTick := fs.Uint64("since_tick", 0, "first tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "last tick (inclusive, optional)")
	limit := fs.Int("limit", 0, "stop after N events (0 = all)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*worldID) == "" {
		fmt.Fprintln(os.Stderr, "missing -world")
		os.Exit(2)
	}
	evs, err := readEvents(filepath.Join(*dataDir, "worlds", *worldID), eventFilter{
		Kind:      strings.TrimSpace(*kind),
		Zone:      strings.TrimSpace(*zone),
		SinceTick: *sinceTick,
		ToTick:    *toTick,
	}, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read events:", err)
		os.Exit(1)
	}
	for _, e := range evs {
		printJSON(e)
	}
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
