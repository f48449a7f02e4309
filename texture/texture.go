package texture

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"os"

	ectiff "github.com/echoflaresat/tiff"
	"github.com/ptrick/PlanetariumWarper/colors"
	"github.com/ptrick/PlanetariumWarper/texture/tiff"

	_ "image/jpeg" // register JPEG format with image.Decode
	_ "image/png"  // register PNG format with image.Decode

	_ "golang.org/x/image/webp" // register WebP format with image.Decode
)

// Texture is a dome-master image sampled by normalized (u,v) coordinates.
type Texture struct {
	Width  int
	Height int
	img    image.Image
}

// Load reads the image at path. Uncompressed striped and tiled TIFFs are
// memory-mapped and sampled lazily; everything else goes through the
// registered image codecs.
func Load(path string) (Texture, error) {
	img, err := loadImage(path)
	if err != nil {
		return Texture{}, err
	}
	return FromImage(img), nil
}

// FromImage wraps an already decoded image.
func FromImage(img image.Image) Texture {
	return Texture{
		Width:  img.Bounds().Max.X,
		Height: img.Bounds().Max.Y,
		img:    img,
	}
}

func loadImage(path string) (image.Image, error) {
	img, err := tiff.LoadStriped(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidHeader) {
		slog.Warn("failed to load striped TIFF", "path", path, "error", err)
	}

	img, err = tiff.LoadTiled(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidHeader) {
		slog.Warn("failed to load tiled TIFF", "path", path, "error", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// compressed TIFF variants the memory-mapped readers reject
	if img, err := ectiff.Decode(f); err == nil {
		return img, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	img, _, err = image.Decode(f)
	return img, err
}

// Sample returns the texel at normalized (u,v) without interpolation.
// u grows rightward and v grows upward, so v=1 is the top image row.
// Coordinates outside [0,1] clamp to the nearest edge.
func (t Texture) Sample(u, v float64) colors.Color4 {
	x := int(u * float64(t.Width-1))
	y := int((1 - v) * float64(t.Height-1))
	return t.getColorAtXY(x, y)
}

// SampleBilinear interpolates the four texels around (u,v), with the same
// orientation and edge clamping as Sample.
func (t Texture) SampleBilinear(u, v float64) colors.Color4 {
	fx := u * float64(t.Width-1)
	fy := (1 - v) * float64(t.Height-1)

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	wx := fx - float64(x0)
	wy := fy - float64(y0)

	c00 := t.getColorAtXY(x0, y0)
	c10 := t.getColorAtXY(x0+1, y0)
	c01 := t.getColorAtXY(x0, y0+1)
	c11 := t.getColorAtXY(x0+1, y0+1)

	return c00.Mix(c10, wx).Mix(c01.Mix(c11, wx), wy)
}

func (t Texture) getColorAtXY(x, y int) colors.Color4 {
	if x < 0 {
		x = 0
	} else if x >= t.Width {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.Height {
		y = t.Height - 1
	}

	c := t.img.At(x, y)
	return colors.FromStandardColor(c)
}
