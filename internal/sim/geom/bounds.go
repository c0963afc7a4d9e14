package geom

import "github.com/go-gl/mathgl/mgl64"

// Dims are the full extents of a box along each axis.
type Dims struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Bounds are the axis-aligned extents of a box.
// Front/Back run along +Z/-Z, Right/Left along +X/-X, Top/Bottom along +Y/-Y.
type Bounds struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Front  float64 `json:"front"`
	Back   float64 `json:"back"`
}

func BoundsOf(center mgl64.Vec3, d Dims) Bounds {
	return Bounds{
		Top:    center.Y() + d.Height/2,
		Bottom: center.Y() - d.Height/2,
		Right:  center.X() + d.Width/2,
		Left:   center.X() - d.Width/2,
		Front:  center.Z() + d.Depth/2,
		Back:   center.Z() - d.Depth/2,
	}
}

// ContainsXZ reports whether the point lies inside the horizontal rectangle (edges inclusive).
func (b Bounds) ContainsXZ(x, z float64) bool {
	return x >= b.Left && x <= b.Right && z >= b.Back && z <= b.Front
}

func V3(x, y, z float64) mgl64.Vec3 { return mgl64.Vec3{x, y, z} }
