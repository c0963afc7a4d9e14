package layout

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"vacuumsim.ai/internal/sim/geom"
	"vacuumsim.ai/internal/sim/physics"
)

type ZoneID string

const (
	Center ZoneID = "center"
	North  ZoneID = "north"
	East   ZoneID = "east"
	West   ZoneID = "west"
	South  ZoneID = "south"
)

// Order is the fixed visiting order of the cleaning pass.
var Order = []ZoneID{North, East, West, South}

// EntryPoint is a doorway position on the floor plane.
type EntryPoint struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Zone is a static room. Only the task controller mutates Occupied after setup.
type Zone struct {
	ID ZoneID
	geom.Footprint

	Occupied bool
	Entry    EntryPoint
}

type Config struct {
	Room geom.Dims
	// Offset is the distance from the hub center to each room center.
	Offset float64
	FloorY float64
	// OccupancyProb is the chance each cardinal room starts occupied.
	OccupancyProb float64

	Station geom.Dims
}

func DefaultConfig() Config {
	return Config{
		Room:          geom.Dims{Width: 8, Height: 0.4, Depth: 8},
		Offset:        8,
		FloorY:        -2,
		OccupancyProb: 0.5,
		Station:       geom.Dims{Width: 1, Height: 0.5, Depth: 1},
	}
}

// Registry holds the hub, the four cardinal rooms and the charging station.
type Registry struct {
	cfg     Config
	zones   map[ZoneID]*Zone
	station geom.Footprint
}

func NewRegistry(cfg Config, rng *rand.Rand) *Registry {
	r := &Registry{
		cfg:     cfg,
		zones:   make(map[ZoneID]*Zone, 5),
		station: geom.NewFootprint(geom.V3(0, cfg.FloorY, 0), cfg.Station),
	}
	r.zones[Center] = &Zone{
		ID:        Center,
		Footprint: geom.NewFootprint(geom.V3(0, cfg.FloorY, 0), cfg.Room),
	}
	for _, id := range Order {
		dx, dz := direction(id)
		center := geom.V3(dx*cfg.Offset, cfg.FloorY, dz*cfg.Offset)
		// The doorway sits on the room's edge facing the hub.
		inner := cfg.Offset - doorDepth(id, cfg.Room)/2
		r.zones[id] = &Zone{
			ID:        id,
			Footprint: geom.NewFootprint(center, cfg.Room),
			Occupied:  rng.Float64() < cfg.OccupancyProb,
			Entry:     EntryPoint{X: dx * inner, Z: dz * inner},
		}
	}
	return r
}

func direction(id ZoneID) (dx, dz float64) {
	switch id {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

func doorDepth(id ZoneID, room geom.Dims) float64 {
	if id == East || id == West {
		return room.Width
	}
	return room.Depth
}

func (r *Registry) Config() Config { return r.cfg }

func (r *Registry) Zone(id ZoneID) *Zone { return r.zones[id] }

// Rooms returns the cardinal rooms in visiting order.
func (r *Registry) Rooms() []*Zone {
	out := make([]*Zone, 0, len(Order))
	for _, id := range Order {
		out = append(out, r.zones[id])
	}
	return out
}

// All returns the hub followed by the rooms in visiting order.
func (r *Registry) All() []*Zone {
	return append([]*Zone{r.zones[Center]}, r.Rooms()...)
}

func (r *Registry) Station() geom.Footprint { return r.station }

// Map is the collision view of the five zones.
func (r *Registry) Map() physics.Zones {
	return physics.Zones{
		Center: r.zones[Center].Bounds,
		North:  r.zones[North].Bounds,
		East:   r.zones[East].Bounds,
		West:   r.zones[West].Bounds,
		South:  r.zones[South].Bounds,
	}
}

// Interior is the horizontal rectangle of the zone shrunk by inset on every side.
func (z *Zone) Interior(inset float64) (minX, maxX, minZ, maxZ float64) {
	b := z.Bounds
	return b.Left + inset, b.Right - inset, b.Back + inset, b.Front - inset
}

func (e EntryPoint) Vec(y float64) mgl64.Vec3 { return mgl64.Vec3{e.X, y, e.Z} }
