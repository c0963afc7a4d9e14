package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int    `yaml:"tick_rate_hz"`
	Mode       string `yaml:"mode"`

	Room   Room   `yaml:"room"`
	Robot  Robot  `yaml:"robot"`
	Debris Debris `yaml:"debris"`

	OccupancyProb     float64 `yaml:"occupancy_prob"`
	Restitution       float64 `yaml:"restitution"`
	BoundaryTolerance float64 `yaml:"boundary_tolerance"`

	MoveStep        float64 `yaml:"move_step"`
	ArriveThreshold float64 `yaml:"arrive_threshold"`
	SweepStep       float64 `yaml:"sweep_step"`

	ScanDwellTicks  int `yaml:"scan_dwell_ticks"`
	VacateWaitTicks int `yaml:"vacate_wait_ticks"`
	CellDwellTicks  int `yaml:"cell_dwell_ticks"`
	ExitDwellTicks  int `yaml:"exit_dwell_ticks"`

	Charge Charge `yaml:"charge"`

	SnapshotEveryTicks int `yaml:"snapshot_every_ticks"`
}

const (
	ModeAuto   = "auto"
	ModeManual = "manual"
)

type Room struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
	Offset float64 `yaml:"offset"`
	FloorY float64 `yaml:"floor_y"`
}

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type Robot struct {
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Depth            float64 `yaml:"depth"`
	Start            Vec     `yaml:"start"`
	InitialVelocityY float64 `yaml:"initial_velocity_y"`
	Gravity          float64 `yaml:"gravity"`
}

type Debris struct {
	SpawnProb float64 `yaml:"spawn_prob"`
	MinCount  int     `yaml:"min_count"`
	MaxCount  int     `yaml:"max_count"`
	Inset     float64 `yaml:"inset"`
	Y         float64 `yaml:"y"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Depth     float64 `yaml:"depth"`
}

type Station struct {
	X float64 `yaml:"x"`
	Z float64 `yaml:"z"`
}

type Charge struct {
	Enabled        bool    `yaml:"enabled"`
	EveryHalfZones int     `yaml:"every_half_zones"`
	Station        Station `yaml:"station"`
	DwellTicks     int     `yaml:"dwell_ticks"`
	BatteryPerCell float64 `yaml:"battery_per_cell"`
}

// Defaults are the values of the reference simulation at 60 Hz.
func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		TickRateHz:      60,
		Mode:            ModeAuto,
		Room:            Room{Width: 8, Height: 0.4, Depth: 8, Offset: 8, FloorY: -2},
		Robot: Robot{
			Width: 1, Height: 1, Depth: 1,
			InitialVelocityY: -0.01,
			Gravity:          -0.005,
		},
		Debris: Debris{
			SpawnProb: 0.8, MinCount: 1, MaxCount: 4, Inset: 1, Y: -1.5,
			Width: 0.3, Height: 0.5, Depth: 0.3,
		},
		OccupancyProb:     0.5,
		Restitution:       0.6,
		BoundaryTolerance: 0.2,
		MoveStep:          0.08,
		ArriveThreshold:   0.1,
		SweepStep:         1,
		ScanDwellTicks:    120,
		VacateWaitTicks:   120,
		CellDwellTicks:    3,
		ExitDwellTicks:    60,
		Charge: Charge{
			EveryHalfZones: 5,
			Station:        Station{X: 0, Z: -2},
			DwellTicks:     300,
			BatteryPerCell: 0.25,
		},
		SnapshotEveryTicks: 3600,
	}
}

// Load overlays the YAML file at path onto Defaults and validates the result.
// A missing file is reported with an error satisfying os.IsNotExist.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(t.TickRateHz > 0 && t.TickRateHz <= 1000, "tick_rate_hz out of range: %d", t.TickRateHz)
	check(t.Mode == ModeAuto || t.Mode == ModeManual, "mode must be %q or %q, got %q", ModeAuto, ModeManual, t.Mode)
	check(t.Room.Width > 0 && t.Room.Depth > 0 && t.Room.Height > 0, "room dimensions must be positive")
	check(t.Room.Offset >= t.Room.Width && t.Room.Offset >= t.Room.Depth, "room offset %.3f leaves gaps between rooms", t.Room.Offset)
	check(t.Robot.Width > 0 && t.Robot.Depth > 0 && t.Robot.Height > 0, "robot dimensions must be positive")
	check(t.Debris.SpawnProb >= 0 && t.Debris.SpawnProb <= 1, "debris.spawn_prob must be in [0,1]")
	check(t.Debris.MinCount >= 0 && t.Debris.MinCount <= t.Debris.MaxCount, "debris count range invalid: %d..%d", t.Debris.MinCount, t.Debris.MaxCount)
	check(t.Debris.Inset >= 0 && 2*t.Debris.Inset < t.Room.Width && 2*t.Debris.Inset < t.Room.Depth, "debris.inset too large for the room")
	check(t.OccupancyProb >= 0 && t.OccupancyProb <= 1, "occupancy_prob must be in [0,1]")
	check(t.Restitution >= 0 && t.Restitution <= 1, "restitution must be in [0,1]")
	check(t.BoundaryTolerance >= 0, "boundary_tolerance must be >= 0")
	check(t.MoveStep > 0, "move_step must be > 0")
	check(t.ArriveThreshold >= t.MoveStep/2, "arrive_threshold must be at least half of move_step")
	check(t.SweepStep > 0, "sweep_step must be > 0")
	check(t.ScanDwellTicks >= 0 && t.VacateWaitTicks >= 0 && t.CellDwellTicks >= 0 && t.ExitDwellTicks >= 0, "dwell ticks must be >= 0")
	check(t.Charge.EveryHalfZones >= 0, "charge.every_half_zones must be >= 0")
	check(t.Charge.DwellTicks >= 0, "charge.dwell_ticks must be >= 0")
	check(t.Charge.BatteryPerCell >= 0, "charge.battery_per_cell must be >= 0")
	check(t.SnapshotEveryTicks >= 0, "snapshot_every_ticks must be >= 0")
	return errors.Join(errs...)
}
