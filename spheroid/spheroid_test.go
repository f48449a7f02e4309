package spheroid

import (
	"math"
	"testing"

	"github.com/ptrick/PlanetariumWarper/vectors"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	mus := []float64{0.05, 0.3, 0.972955, 2.1}
	nus := []float64{-math.Pi / 2, -1.2, -0.4, 0, 0.4, 1.2, math.Pi / 2}
	phis := []float64{-3.0, -math.Pi / 2, 0, 0.7, 2.9}

	for _, a := range []float64{0.13, 0.198431, 1.0} {
		for _, mu := range mus {
			for _, nu := range nus {
				for _, phi := range phis {
					in := Coord{Mu: mu, Nu: nu, Phi: phi}
					p := Cartesian(a, in)
					out, ok := FromCartesian(a, p)

					require.True(t, ok, "a=%v c=%+v", a, in)
					q := Cartesian(a, out)
					require.InDelta(t, 0, p.Sub(q).Norm(), 1e-6*a,
						"a=%v c=%+v got=%+v", a, in, out)
				}
			}
		}
	}
}

func TestRoundTripOnAxis(t *testing.T) {
	const a = 0.25
	p := vectors.Vec3{X: 0, Y: 0, Z: 0.8}
	c, ok := FromCartesian(a, p)
	require.True(t, ok)
	require.InDelta(t, math.Pi/2, c.Nu, 1e-12)

	q := Cartesian(a, c)
	require.InDelta(t, 0, p.Sub(q).Norm(), 1e-9)
}

func TestFromCartesianFocalRegion(t *testing.T) {
	const a = 0.5

	// exactly on the focal ring
	c, ok := FromCartesian(a, vectors.Vec3{X: a, Y: 0, Z: 0})
	require.True(t, ok)
	require.InDelta(t, 0, c.Mu, 1e-12)
	require.InDelta(t, 0, c.Nu, 1e-12)

	// inside the focal disk the shell index collapses to zero
	c, _ = FromCartesian(a, vectors.Vec3{X: 0.2 * a, Y: 0, Z: 0})
	require.InDelta(t, 0, c.Mu, 1e-7)
	require.False(t, math.IsNaN(c.Nu))
}

func TestNuCarriesSign(t *testing.T) {
	const a = 0.198431
	up, ok := FromCartesian(a, vectors.Vec3{X: 0.3, Y: 0.1, Z: 0.2})
	require.True(t, ok)
	down, ok := FromCartesian(a, vectors.Vec3{X: 0.3, Y: 0.1, Z: -0.2})
	require.True(t, ok)

	require.Greater(t, up.Nu, 0.0)
	require.Less(t, down.Nu, 0.0)
	require.InDelta(t, up.Nu, -down.Nu, 1e-12)
	require.InDelta(t, up.Mu, down.Mu, 1e-12)
}

func TestNormalUnitLength(t *testing.T) {
	for _, mu := range []float64{0.1, 0.972955, 1.8} {
		for _, nu := range []float64{-1.5, -0.3, 0, 0.3, 1.5} {
			for _, phi := range []float64{-2.0, 0, 1.3} {
				n := Normal(Coord{Mu: mu, Nu: nu, Phi: phi})
				require.InDelta(t, 1.0, n.Norm(), 1e-12,
					"mu=%v nu=%v phi=%v", mu, nu, phi)
			}
		}
	}
}

func TestNormalPointsOutward(t *testing.T) {
	const a = 0.198431
	const h = 1e-7

	for _, mu := range []float64{0.4, 0.972955} {
		for _, nu := range []float64{-1.1, -0.2, 0.5, 1.3} {
			c := Coord{Mu: mu, Nu: nu, Phi: 0.9}
			p := Cartesian(a, c)
			n := Normal(c)

			// stepping along the normal must land on a larger shell
			stepped, ok := FromCartesian(a, p.Add(n.Scale(h)))
			require.True(t, ok)
			require.Greater(t, stepped.Mu, mu)

			// and the normal is orthogonal to the shell's tangent plane
			dNu := Cartesian(a, Coord{Mu: mu, Nu: nu + h, Phi: 0.9}).Sub(p).Scale(1 / h)
			dPhi := Cartesian(a, Coord{Mu: mu, Nu: nu, Phi: 0.9 + h}).Sub(p).Scale(1 / h)
			require.InDelta(t, 0, n.Dot(dNu), 1e-5)
			require.InDelta(t, 0, n.Dot(dPhi), 1e-5)

			// equivalently, parallel to the tangent cross product
			cross := dNu.Cross(dPhi).Normalize()
			require.InDelta(t, 1, math.Abs(cross.Dot(n)), 1e-5)
		}
	}
}
