// Package pattern generates dome-master alignment images: a polar grid of
// altitude rings and azimuth spokes used to check mirror and dome geometry
// after warping, plus a sun marker for site orientation.
package pattern

import (
	"image"
	"math"

	"github.com/ptrick/PlanetariumWarper/colors"
)

const (
	ringStep  = 15 * math.Pi / 180 // altitude between grid rings
	spokeStep = 30 * math.Pi / 180 // azimuth between grid spokes
)

// Grid renders a size × size alignment pattern. The image is a dome
// master: the center is the zenith, the inscribed circle the horizon.
// Altitude rings are green, azimuth spokes green with the zero-azimuth
// spoke white, the horizon and zenith dot red. Everything outside the
// horizon stays black.
func Grid(size int) *image.NRGBA {
	if size <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	// line half-width in dome radii; floor keeps the grid visible on
	// small previews
	halfW := math.Max(1.5, float64(size)/600) * 2 / float64(size)
	rings := int(math.Round(math.Pi / 2 / ringStep)) // horizon ring drawn separately

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u := (float64(x) + 0.5) / float64(size)
			v := 1 - (float64(y)+0.5)/float64(size)
			dx := 2 * (u - 0.5)
			dy := 2 * (v - 0.5)
			r := math.Hypot(dx, dy)

			c := colors.Black()
			switch {
			case r <= 2*halfW:
				c = colors.Red()
			case math.Abs(r-1) <= 2*halfW:
				c = colors.Red()
			case r > 1:
				// outside the dome
			case onRing(r, rings, halfW):
				c = colors.Green()
			default:
				if on, front := onSpoke(math.Atan2(dy, dx), r, halfW); on {
					if front {
						c = colors.White()
					} else {
						c = colors.Green()
					}
				}
			}
			img.SetNRGBA(x, y, c.ToNRGBA())
		}
	}
	return img
}

// onRing reports whether radius r lies on one of the interior altitude
// rings. Ring k sits at polar angle k*ringStep, i.e. radius k/rings.
func onRing(r float64, rings int, halfW float64) bool {
	for k := 1; k < rings; k++ {
		if math.Abs(r-float64(k)/float64(rings)) <= halfW {
			return true
		}
	}
	return false
}

// onSpoke reports whether the point at (az, r) lies on an azimuth spoke,
// and whether that spoke is the zero-azimuth one. The test compares arc
// distance, so spokes keep constant pixel width out to the horizon.
func onSpoke(az, r, halfW float64) (on, front bool) {
	k := math.Round(az / spokeStep)
	delta := math.Abs(az - k*spokeStep)
	if delta*r > halfW {
		return false, false
	}
	return true, k == 0
}

// WithSunMarker draws a filled disc at the dome direction given by
// altitude alt and azimuth az (radians, altitude up from the horizon,
// azimuth counterclockwise from the +U axis) and returns img. Suns below
// the horizon are not drawn.
func WithSunMarker(img *image.NRGBA, alt, az float64) *image.NRGBA {
	if alt < 0 {
		return img
	}

	size := img.Bounds().Dx()
	polar := math.Pi/2 - alt
	r := polar / (math.Pi / 2)
	u := 0.5 + 0.5*r*math.Cos(az)
	v := 0.5 + 0.5*r*math.Sin(az)

	cx := u * float64(size)
	cy := (1 - v) * float64(img.Bounds().Dy())
	radius := math.Max(3, float64(size)/80)
	fillDisc(img, cx, cy, radius, colors.New(1, 0.85, 0, 1))
	return img
}

func fillDisc(img *image.NRGBA, cx, cy, radius float64, c colors.Color4) {
	b := img.Bounds()
	nrgba := c.ToNRGBA()
	for y := int(cy - radius); y <= int(cy+radius)+1; y++ {
		for x := int(cx - radius); x <= int(cx+radius)+1; x++ {
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			if math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) <= radius {
				img.SetNRGBA(x, y, nrgba)
			}
		}
	}
}
