package layout

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"vacuumsim.ai/internal/sim/geom"
	"vacuumsim.ai/internal/sim/physics"
)

type DebrisConfig struct {
	// SpawnProb is the chance a room gets any debris at all.
	SpawnProb float64
	MinCount  int
	MaxCount  int
	// Inset keeps spawn points away from the room walls.
	Inset float64
	Y     float64
	Dims  geom.Dims
}

func DefaultDebrisConfig() DebrisConfig {
	return DebrisConfig{
		SpawnProb: 0.8,
		MinCount:  1,
		MaxCount:  4,
		Inset:     1,
		Y:         -1.5,
		Dims:      geom.Dims{Width: 0.3, Height: 0.5, Depth: 0.3},
	}
}

// Debris is a pickup target. It is treated as a point at Body.Center by suction.
type Debris struct {
	ID      string
	Zone    ZoneID
	Body    *physics.Body
	Visible bool
}

func (d *Debris) Pos() mgl64.Vec3 { return d.Body.Center }

// DebrisSet groups debris by owning zone and keeps a flattened view for suction.
type DebrisSet struct {
	byZone map[ZoneID][]*Debris
	all    []*Debris
}

func NewDebrisSet(items []*Debris) *DebrisSet {
	s := &DebrisSet{byZone: map[ZoneID][]*Debris{}}
	for _, d := range items {
		if d == nil || !d.Visible {
			continue
		}
		s.byZone[d.Zone] = append(s.byZone[d.Zone], d)
		s.all = append(s.all, d)
	}
	return s
}

// GenerateDebris scatters debris over the rooms in visiting order. It runs once at setup.
func GenerateDebris(reg *Registry, cfg DebrisConfig, rng *rand.Rand) *DebrisSet {
	var items []*Debris
	for _, z := range reg.Rooms() {
		if rng.Float64() >= cfg.SpawnProb {
			continue
		}
		n := randInt(rng, cfg.MinCount, cfg.MaxCount)
		minX, maxX, minZ, maxZ := z.Interior(cfg.Inset)
		for i := 0; i < n; i++ {
			x := randInt(rng, int(math.Ceil(minX)), int(math.Floor(maxX)))
			zc := randInt(rng, int(math.Ceil(minZ)), int(math.Floor(maxZ)))
			items = append(items, &Debris{
				ID:      fmt.Sprintf("D-%s-%d", z.ID, i+1),
				Zone:    z.ID,
				Body:    physics.NewBody(geom.V3(float64(x), cfg.Y, float64(zc)), cfg.Dims, mgl64.Vec3{}, 0),
				Visible: true,
			})
		}
	}
	return NewDebrisSet(items)
}

func randInt(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// InZone returns the debris still present in the zone.
func (s *DebrisSet) InZone(id ZoneID) []*Debris { return s.byZone[id] }

// All returns every debris item still present.
func (s *DebrisSet) All() []*Debris { return s.all }

func (s *DebrisSet) Remaining() int { return len(s.all) }

// Remove hides the item and drops it from both views. Removing twice is a no-op.
func (s *DebrisSet) Remove(d *Debris) bool {
	if d == nil || !d.Visible {
		return false
	}
	d.Visible = false
	s.all = without(s.all, d)
	s.byZone[d.Zone] = without(s.byZone[d.Zone], d)
	return true
}

// Suction removes every item whose (x,z) point lies inside the rectangle and returns them.
func (s *DebrisSet) Suction(area geom.Bounds) []*Debris {
	var got []*Debris
	for _, d := range append([]*Debris(nil), s.all...) {
		p := d.Pos()
		if area.ContainsXZ(p.X(), p.Z()) && s.Remove(d) {
			got = append(got, d)
		}
	}
	return got
}

func without(list []*Debris, d *Debris) []*Debris {
	for i, v := range list {
		if v == d {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
