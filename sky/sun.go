// Package sky locates the Sun for a site and time, so alignment patterns
// can carry a marker at the real solar position.
package sky

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/ptrick/PlanetariumWarper/vectors"
)

// SunDirectionECEF returns the unit vector toward the Sun in Earth-centered
// Earth-fixed coordinates at time t.
func SunDirectionECEF(t time.Time) vectors.Vec3 {
	t = t.UTC()
	jd := julian.TimeToJD(t)

	// Step 1: Apparent RA/Dec of the Sun (in radians)
	ra, dec := solar.ApparentEquatorial(jd)

	// Step 2: Unit vector in ECI (Earth-centered inertial)
	x := dec.Cos() * ra.Cos()
	y := dec.Cos() * ra.Sin()
	z := dec.Sin()

	// Step 3: Rotate ECI → ECEF using apparent sidereal time
	gast := sidereal.Apparent0UT(jd)
	cosG := gast.Angle().Cos()
	sinG := gast.Angle().Sin()

	return vectors.Vec3{
		X: x*cosG + y*sinG,
		Y: -x*sinG + y*cosG,
		Z: z,
	}
}

// SunAltAz returns the Sun's topocentric altitude and azimuth in radians
// for a site at latDeg, lonDeg (degrees, longitude east positive) at time
// t. Azimuth is measured from north through east and lies in [0, 2π);
// altitude is negative when the Sun is below the horizon. Parallax is
// ignored, which costs at most 9 arcseconds.
func SunAltAz(t time.Time, latDeg, lonDeg float64) (alt, az float64) {
	sun := SunDirectionECEF(t)

	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinLon, cosLon := math.Sin(lon), math.Cos(lon)

	east := vectors.Vec3{X: -sinLon, Y: cosLon}
	north := vectors.Vec3{X: -sinLat * cosLon, Y: -sinLat * sinLon, Z: cosLat}
	up := vectors.Vec3{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat}

	u := sun.Dot(up)
	if u > 1 {
		u = 1
	} else if u < -1 {
		u = -1
	}
	alt = math.Asin(u)
	az = math.Atan2(sun.Dot(east), sun.Dot(north))
	if az < 0 {
		az += 2 * math.Pi
	}
	return alt, az
}
