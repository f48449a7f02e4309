package warp

import (
	"math"

	"github.com/ptrick/PlanetariumWarper/spheroid"
	"github.com/ptrick/PlanetariumWarper/vectors"
)

// Result is the remap for one screen position: where in the dome master
// to sample, and how much of the sample survives. U and V are normalized
// to [0,1] for positions inside the optical path; Intensity is 0 for rays
// that miss the mirror or the dome and 1 otherwise.
type Result struct {
	U, V      float64
	Intensity float64
}

// bisection tolerance, relative to the solved surface's scale
const tol = 1e-8

// Compute traces the projector ray for screen position (sx, sy), both in
// [0,1], off the mirror onto the dome and returns the dome-master remap.
// Rejected rays run the full pipeline with Intensity forced to 0, so a
// frame's worth of calls does uniform work. Safe for concurrent use.
func (c Config) Compute(sx, sy float64) Result {
	res, _, _ := c.trace(sx, sy)
	return res
}

// trace runs the pipeline and returns, alongside the remap, the solved
// mirror hit and dome boundary points the remap alone does not determine.
func (c Config) trace(sx, sy float64) (Result, vectors.Vec3, vectors.Vec3) {
	intensity := 1.0

	a1 := c.Beam * (sx - 0.5)
	a2 := c.Gamma*sy + c.Elevation
	s1 := math.Sin(a1)
	s2 := math.Sin(a2)

	// point on the projector ray at distance t from the exit pupil
	rayPoint := func(t float64) vectors.Vec3 {
		return vectors.Vec3{X: c.Throw - t, Y: t * s1, Z: t * s2}
	}
	// shell index of the ray point; collapses to 0 inside the focal region
	shellAt := func(t float64) float64 {
		coord, ok := spheroid.FromCartesian(c.Focal, rayPoint(t))
		if !ok {
			return 0
		}
		return coord.Mu
	}

	// reject rays still outside the mirror shell at full throw
	if shellAt(c.Throw) > c.Mu {
		intensity = 0
	}

	// first crossing of the mirror shell along the ray
	left, right := c.Throw-c.MirrorRadius, c.Throw
	steps := iterations(c.MirrorRadius, c.MirrorRadius)
	for i := 0; i < steps; i++ {
		mid := 0.5 * (left + right)
		if shellAt(mid) < c.Mu {
			right = mid
		} else {
			left = mid
		}
	}
	hit := rayPoint(0.5 * (left + right))

	coord, _ := spheroid.FromCartesian(c.Focal, hit)
	normal := spheroid.Normal(coord)

	svec := vectors.Vec3{X: hit.X, Y: -hit.Y, Z: -hit.Z}.Normalize()
	d := normal.Dot(svec)
	reflected := normal.Sub(svec).Scale(2 * d)
	if reflected.Norm() < 1e-12 {
		// exact retroreflection at the optical center; use the limit
		// direction of neighbouring rays
		reflected = vectors.Vec3{Z: 1}
	}

	// into the dome frame: tilt the mirror, move the origin to dome center;
	// the reflection reduces to a unit direction, since its raw magnitude
	// shrinks toward zero near retroreflection while the dome bracket below
	// is a world distance
	location := hit.RotY(c.sinTilt, c.cosTilt).Sub(vectors.Vec3{X: c.DomeX, Z: c.DomeZ})
	dir := reflected.RotY(c.sinTilt, c.cosTilt).Normalize()

	// distance to the dome's equatorial plane; rays that never rise to it
	// cannot reach the dome surface
	var rzz float64
	if dir.Z <= 0 {
		intensity = 0
	} else {
		rzz = -location.Z / dir.Z
	}
	if location.Add(dir.Scale(rzz)).Norm() > c.DomeRadius {
		intensity = 0
	}

	// dome hit between the equatorial plane and the far bracket end; the
	// reach check in NewConfig keeps every surviving exit inside it
	left, right = rzz, 3*c.DomeRadius
	steps = iterations(right-left, c.DomeRadius)
	for i := 0; i < steps; i++ {
		mid := 0.5 * (left + right)
		if location.Add(dir.Scale(mid)).Norm() < c.DomeRadius {
			left = mid
		} else {
			right = mid
		}
	}
	p := location.Add(dir.Scale(0.5 * (left + right)))

	// equidistant azimuthal remap into the dome master
	polar := math.Acos(clip(p.Z/c.DomeRadius, -1, 1))
	az := math.Atan2(p.Y, p.X)
	return Result{
		U:         0.5*(polar*math.Cos(az+c.Phase))/(math.Pi/2) + 0.5,
		V:         0.5*(polar*math.Sin(az+c.Phase))/(math.Pi/2) + 0.5,
		Intensity: intensity,
	}, hit, p
}

// iterations returns the bisection step count that shrinks a bracket of
// the given width below tol, relative to the solved surface's scale.
// Capped at 64 steps regardless of the bracket.
func iterations(width, scale float64) int {
	if width <= tol*scale {
		return 1
	}
	n := int(math.Ceil(math.Log2(width / (tol * scale))))
	if n > 64 {
		return 64
	}
	return n
}

// clip clamps x into the inclusive range [lo, hi].
func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
