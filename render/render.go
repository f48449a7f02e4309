package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ptrick/PlanetariumWarper/colors"
	"github.com/ptrick/PlanetariumWarper/texture"
	"github.com/ptrick/PlanetariumWarper/warp"
)

// Options control the frame applier.
type Options struct {
	Size        int  // output frame is Size x Size pixels
	Supersample int  // n x n samples per pixel, values below 1 mean 1
	Workers     int  // concurrent row renderers, 0 means GOMAXPROCS
	Bilinear    bool // interpolate texture lookups
}

// Frame warps src into a Size x Size projector frame: every output pixel
// is remapped through cfg and filled with the dome-master sample at the
// remap coordinate, scaled by the remap intensity. Pixels outside the
// optical path come out black. Rows render concurrently.
func Frame(cfg warp.Config, src texture.Texture, opts Options) (*image.NRGBA, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", opts.Size)
	}
	ss := opts.Supersample
	if ss < 1 {
		ss = 1
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	offsets := GenerateSupersamplingOffsets(ss)
	invN := 1.0 / float64(len(offsets))
	size := float64(opts.Size)

	sample := src.Sample
	if opts.Bilinear {
		sample = src.SampleBilinear
	}

	img := image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(workers)
	for y := 0; y < opts.Size; y++ {
		g.Go(func() error {
			for x := 0; x < opts.Size; x++ {
				accum := colors.Color4{}
				for _, off := range offsets {
					sx := (float64(x) + 0.5 + off[0]) / size
					sy := 1 - (float64(y)+0.5+off[1])/size
					res := cfg.Compute(sx, sy)

					c := colors.Black()
					if res.Intensity > 0 {
						c = sample(res.U, res.V).Scale(res.Intensity)
					}
					accum = accum.Add(c)
				}
				out := accum.Scale(invN).CompositeOverBlack()
				img.SetNRGBA(x, y, out.ToNRGBA())
			}
			reportProgress(done.Add(1), int64(opts.Size))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

// reportProgress prints a marker whenever a tenth of the rows completes.
func reportProgress(done, total int64) {
	if (10*done)/total != (10*(done-1))/total {
		fmt.Printf(" %3d%% ", 100*done/total)
	}
}

// GenerateSupersamplingOffsets returns n×n offsets in [-0.5, +0.5] for
// supersampling, as pairs (dx, dy) with pixel-center spacing.
func GenerateSupersamplingOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}

// WritePNG writes img to path, favoring encode speed over file size.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
