package geom

import "github.com/go-gl/mathgl/mgl64"

// Footprint is the spatial state shared by static zones and mobile bodies.
// Dimensions are fixed at construction; Bounds is a cache that Refresh
// recomputes from the current Center.
type Footprint struct {
	Center mgl64.Vec3
	Bounds Bounds

	dims Dims
}

func NewFootprint(center mgl64.Vec3, dims Dims) Footprint {
	f := Footprint{Center: center, dims: dims}
	f.Refresh()
	return f
}

func (f *Footprint) Dims() Dims { return f.dims }

func (f *Footprint) Refresh() { f.Bounds = BoundsOf(f.Center, f.dims) }

// MoveTo sets the center and refreshes the bounds.
func (f *Footprint) MoveTo(c mgl64.Vec3) {
	f.Center = c
	f.Refresh()
}
