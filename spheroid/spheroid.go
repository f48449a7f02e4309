package spheroid

import (
	"math"

	"github.com/ptrick/PlanetariumWarper/vectors"
)

// Coord holds oblate spheroidal coordinates: μ ≥ 0 selects the confocal
// shell, ν ∈ [-π/2, π/2] is the latitude-like angle, φ ∈ (-π, π] the
// azimuth about the symmetry (z) axis.
type Coord struct {
	Mu, Nu, Phi float64
}

// Cartesian maps c to Cartesian space for the spheroid family with focal
// ring radius a (a > 0).
func Cartesian(a float64, c Coord) vectors.Vec3 {
	coshMu := math.Cosh(c.Mu)
	sinhMu := math.Sinh(c.Mu)
	cosNu := math.Cos(c.Nu)
	return vectors.Vec3{
		X: a * coshMu * cosNu * math.Cos(c.Phi),
		Y: a * coshMu * cosNu * math.Sin(c.Phi),
		Z: a * sinhMu * math.Sin(c.Nu),
	}
}

// FromCartesian inverts Cartesian via the distances to the focal ring's
// near and far rim. The sum of those distances is ≥ 2a for every point in
// space; it can dip below only through rounding, in which case the second
// return is false and the coordinates are clamped onto μ = 0. ν carries
// the sign of p.Z so the inverse lands in Coord's canonical ranges.
func FromCartesian(a float64, p vectors.Vec3) (Coord, bool) {
	rho := math.Hypot(p.X, p.Y)
	phi := math.Atan2(p.Y, p.X)

	d1 := math.Hypot(rho+a, p.Z)
	d2 := math.Hypot(rho-a, p.Z)

	sum := (d1 + d2) / (2 * a)
	ok := sum >= 1
	if sum < 1 {
		sum = 1
	}
	diff := (d1 - d2) / (2 * a)
	if diff > 1 {
		diff = 1
	} else if diff < -1 {
		diff = -1
	}

	return Coord{
		Mu:  math.Acosh(sum),
		Nu:  math.Copysign(math.Acos(diff), p.Z),
		Phi: phi,
	}, ok
}

// Normal returns the unit outward normal of the μ = const shell at c.
// The direction does not depend on the focal radius. Singular on the
// focal ring itself (μ = 0, ν = 0), where the shell has no normal.
func Normal(c Coord) vectors.Vec3 {
	sinhMu := math.Sinh(c.Mu)
	coshMu := math.Cosh(c.Mu)
	sinNu := math.Sin(c.Nu)
	cosNu := math.Cos(c.Nu)

	scale := 1 / math.Sqrt(sinhMu*sinhMu+sinNu*sinNu)
	return vectors.Vec3{
		X: scale * sinhMu * cosNu * math.Cos(c.Phi),
		Y: scale * sinhMu * cosNu * math.Sin(c.Phi),
		Z: scale * coshMu * sinNu,
	}
}
