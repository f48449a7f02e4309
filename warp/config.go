package warp

import (
	"fmt"
	"math"
)

// Params holds the measured installation geometry. Angles are radians,
// distances share one unit (meters in a typical setup).
type Params struct {
	MirrorRadius float64 // equatorial radius of the mirror
	AxialRatio   float64 // polar-to-equatorial ratio b/a, in (0,1)
	Throw        float64 // projector exit pupil to mirror center
	Beam         float64 // horizontal beam opening angle
	Aspect       float64 // projector aspect ratio, width over height
	Tilt         float64 // mirror tilt about the y axis
	Elevation    float64 // vertical aim offset added to every beam row
	DomeX        float64 // mirror center to dome center, horizontal
	DomeZ        float64 // mirror center to dome center, vertical
	DomeRadius   float64 // radius of the hemispherical dome
	Phase        float64 // azimuthal rotation applied in the remap
	FlipH        bool    // reserved orientation switch, not applied
	FlipV        bool    // reserved orientation switch, not applied
}

// Config is a validated Params plus the values derived from it. Build one
// with NewConfig; a zero Config is not usable.
type Config struct {
	Params
	Focal float64 // focal ring radius of the mirror's confocal family
	Mu    float64 // shell index of the mirror surface
	Gamma float64 // vertical beam opening angle

	sinTilt, cosTilt float64
}

// NewConfig checks the geometric invariants once and precomputes the
// derived constants. Compute never re-validates.
func NewConfig(p Params) (Config, error) {
	if p.MirrorRadius <= 0 {
		return Config{}, fmt.Errorf("mirror radius must be positive, got %v", p.MirrorRadius)
	}
	if p.AxialRatio <= 0 || p.AxialRatio >= 1 {
		return Config{}, fmt.Errorf("axial ratio must be in (0,1), got %v", p.AxialRatio)
	}
	if p.Throw <= p.MirrorRadius {
		return Config{}, fmt.Errorf("throw %v must exceed mirror radius %v", p.Throw, p.MirrorRadius)
	}
	if p.Beam <= 0 || p.Beam >= math.Pi {
		return Config{}, fmt.Errorf("beam angle must be in (0,π), got %v", p.Beam)
	}
	if p.Aspect <= 0 {
		return Config{}, fmt.Errorf("aspect ratio must be positive, got %v", p.Aspect)
	}
	if p.DomeRadius <= 0 {
		return Config{}, fmt.Errorf("dome radius must be positive, got %v", p.DomeRadius)
	}
	// the dome solver brackets hits within 3 dome radii of the mirror
	if math.Hypot(p.DomeX, p.DomeZ)+p.MirrorRadius >= 2*p.DomeRadius {
		return Config{}, fmt.Errorf("dome center offset (%v, %v) puts the dome out of solver reach", p.DomeX, p.DomeZ)
	}

	a := p.MirrorRadius * math.Sqrt(1-p.AxialRatio*p.AxialRatio)
	return Config{
		Params:  p,
		Focal:   a,
		Mu:      math.Acosh(p.MirrorRadius / a),
		Gamma:   p.Beam / p.Aspect,
		sinTilt: math.Sin(p.Tilt),
		cosTilt: math.Cos(p.Tilt),
	}, nil
}
