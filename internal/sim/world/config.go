package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"vacuumsim.ai/internal/sim/geom"
	"vacuumsim.ai/internal/sim/layout"
	"vacuumsim.ai/internal/sim/physics"
	"vacuumsim.ai/internal/sim/tasks"
	"vacuumsim.ai/internal/sim/tuning"
)

type RobotConfig struct {
	Dims             geom.Dims
	Start            mgl64.Vec3
	InitialVelocityY float64
	Gravity          float64
}

// ConfigFromTuning maps tuning.yaml values onto a world config.
func ConfigFromTuning(id string, seed int64, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:         id,
		TickRateHz: t.TickRateHz,
		Seed:       seed,
		Mode:       t.Mode,
		Layout: layout.Config{
			Room:          geom.Dims{Width: t.Room.Width, Height: t.Room.Height, Depth: t.Room.Depth},
			Offset:        t.Room.Offset,
			FloorY:        t.Room.FloorY,
			OccupancyProb: t.OccupancyProb,
			Station:       layout.DefaultConfig().Station,
		},
		Debris: layout.DebrisConfig{
			SpawnProb: t.Debris.SpawnProb,
			MinCount:  t.Debris.MinCount,
			MaxCount:  t.Debris.MaxCount,
			Inset:     t.Debris.Inset,
			Y:         t.Debris.Y,
			Dims:      geom.Dims{Width: t.Debris.Width, Height: t.Debris.Height, Depth: t.Debris.Depth},
		},
		Robot: RobotConfig{
			Dims:             geom.Dims{Width: t.Robot.Width, Height: t.Robot.Height, Depth: t.Robot.Depth},
			Start:            mgl64.Vec3{t.Robot.Start.X, t.Robot.Start.Y, t.Robot.Start.Z},
			InitialVelocityY: t.Robot.InitialVelocityY,
			Gravity:          t.Robot.Gravity,
		},
		Physics: physics.Params{
			Restitution: t.Restitution,
			Tolerance:   t.BoundaryTolerance,
		},
		Tasks: tasks.Params{
			MoveStep:             t.MoveStep,
			ArriveThreshold:      t.ArriveThreshold,
			SweepStep:            t.SweepStep,
			ScanDwellTicks:       t.ScanDwellTicks,
			VacateWaitTicks:      t.VacateWaitTicks,
			CellDwellTicks:       t.CellDwellTicks,
			ExitDwellTicks:       t.ExitDwellTicks,
			ChargeEveryHalfZones: t.Charge.EveryHalfZones,
			Charge: tasks.ChargeParams{
				Enabled:        t.Charge.Enabled,
				StationX:       t.Charge.Station.X,
				StationZ:       t.Charge.Station.Z,
				DwellTicks:     t.Charge.DwellTicks,
				BatteryPerCell: t.Charge.BatteryPerCell,
			},
		},
		SnapshotEveryTicks: t.SnapshotEveryTicks,
	}
}

// DefaultConfig is ConfigFromTuning over tuning.Defaults().
func DefaultConfig(id string, seed int64) WorldConfig {
	return ConfigFromTuning(id, seed, tuning.Defaults())
}
