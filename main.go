package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/ptrick/PlanetariumWarper/mesh"
	"github.com/ptrick/PlanetariumWarper/pattern"
	"github.com/ptrick/PlanetariumWarper/render"
	"github.com/ptrick/PlanetariumWarper/sky"
	"github.com/ptrick/PlanetariumWarper/texture"
	"github.com/ptrick/PlanetariumWarper/warp"
)

const degree = math.Pi / 180

type config struct {
	radius, ratio       *float64
	throw, beam, aspect *float64
	tilt, elevation     *float64
	flipH, flipV        *bool

	domeX, domeZ      *float64
	domeRadius, phase *float64

	size, supersample, workers *int
	bilinear                   *bool

	in, out *string
	meshOut *string
	nodes   *int

	sun      *bool
	timeStr  *string
	lat, lon *float64

	showHelp *bool
}

func defineFlags() config {
	return config{
		radius: flag.Float64("radius", 0.30, "Mirror equatorial radius in meters"),
		ratio:  flag.Float64("ratio", 0.75, "Mirror polar-to-equatorial axial ratio"),

		throw:     flag.Float64("throw", 0.95, "Projector to mirror center distance in meters"),
		beam:      flag.Float64("beam", 20.0, "Projector horizontal beam angle in degrees"),
		aspect:    flag.Float64("aspect", 16.0/9.0, "Projector aspect ratio (width over height)"),
		tilt:      flag.Float64("tilt", 8.0, "Mirror tilt in degrees"),
		elevation: flag.Float64("elevation", 0.0, "Beam elevation offset in degrees"),
		flipH:     flag.Bool("fliph", false, "Record a horizontal screen flip in the geometry"),
		flipV:     flag.Bool("flipv", false, "Record a vertical screen flip in the geometry"),

		domeX:      flag.Float64("domex", 2.5, "Dome center offset from the mirror along X in meters"),
		domeZ:      flag.Float64("domez", 1.0, "Dome center offset from the mirror along Z in meters"),
		domeRadius: flag.Float64("domeradius", 3.658, "Dome radius in meters"),
		phase:      flag.Float64("phase", -90.0, "Dome master azimuth phase in degrees"),

		size:        flag.Int("size", 1024, "Output image size (width/height in pixels)"),
		supersample: flag.Int("supersample", 3, "Supersampling factor (higher is slower but smoother)"),
		workers:     flag.Int("workers", 0, "Concurrent row renderers; 0 uses all CPUs"),
		bilinear:    flag.Bool("bilinear", false, "Sample the dome master with bilinear filtering"),

		in:      flag.String("in", "", "Dome master image path; empty warps the alignment pattern"),
		out:     flag.String("out", "warped.png", "Output PNG file path"),
		meshOut: flag.String("mesh", "", "Also write a warp mesh data file to this path"),
		nodes:   flag.Int("nodes", 33, "Warp mesh nodes per side"),

		sun:     flag.Bool("sun", false, "Mark the sun on the generated pattern"),
		timeStr: flag.String("time", "", "Time in RFC3339 format (e.g., 2025-08-02T15:04:05Z); defaults to now"),
		lat:     flag.Float64("lat", 0.0, "Site latitude in degrees"),
		lon:     flag.Float64("lon", 0.0, "Site longitude in degrees"),

		showHelp: flag.Bool("h", false, "Show this help message"),
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Planetarium Warper - Spherical Mirror Projection Mapper

Usage:
  %[1]s [options]

`, os.Args[0])

	printGroup("Mirror Options", []string{"radius", "ratio"})
	printGroup("Projector Options", []string{"throw", "beam", "aspect", "tilt", "elevation", "fliph", "flipv"})
	printGroup("Dome Options", []string{"domex", "domez", "domeradius", "phase"})
	printGroup("Rendering Options", []string{"size", "supersample", "workers", "bilinear"})
	printGroup("Input", []string{"in", "sun", "time", "lat", "lon"})
	printGroup("Output", []string{"out", "mesh", "nodes"})
	printGroup("Misc", []string{"h"})
}

func printGroup(title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := flag.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-8s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func main() {

	cfg := defineFlags()
	flag.Usage = printHelp
	flag.Parse()

	if *cfg.showHelp {
		printHelp()
		return
	}

	wcfg, err := warp.NewConfig(buildParams(cfg))
	if err != nil {
		log.Fatalf("Invalid geometry: %v", err)
	}

	tex, err := loadSource(cfg)
	if err != nil {
		log.Fatalf("Could not load %q: %v", *cfg.in, err)
	}

	if *cfg.meshOut != "" {
		m, err := mesh.Compute(wcfg, *cfg.nodes, *cfg.nodes)
		if err != nil {
			log.Fatalf("Mesh computation failed: %v", err)
		}
		if err := m.WriteFile(*cfg.meshOut); err != nil {
			log.Fatalf("Failed to write mesh: %v", err)
		}
		fmt.Printf("-> wrote %s\n", *cfg.meshOut)
	}

	print("Generating " + *cfg.out + " ")
	img, err := render.Frame(wcfg, tex, render.Options{
		Size:        *cfg.size,
		Supersample: *cfg.supersample,
		Workers:     *cfg.workers,
		Bilinear:    *cfg.bilinear,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := render.WritePNG(*cfg.out, img); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}
}

func buildParams(cfg config) warp.Params {
	return warp.Params{
		MirrorRadius: *cfg.radius,
		AxialRatio:   *cfg.ratio,
		Throw:        *cfg.throw,
		Beam:         *cfg.beam * degree,
		Aspect:       *cfg.aspect,
		Tilt:         *cfg.tilt * degree,
		Elevation:    *cfg.elevation * degree,
		DomeX:        *cfg.domeX,
		DomeZ:        *cfg.domeZ,
		DomeRadius:   *cfg.domeRadius,
		Phase:        *cfg.phase * degree,
		FlipH:        *cfg.flipH,
		FlipV:        *cfg.flipV,
	}
}

// loadSource returns the dome master to warp: the image named by -in, or
// a generated alignment pattern, optionally with the sun marked for the
// configured site and time.
func loadSource(cfg config) (texture.Texture, error) {
	if *cfg.in != "" {
		return texture.Load(*cfg.in)
	}

	img := pattern.Grid(*cfg.size)
	if *cfg.sun {
		at := parseTimeOrExit(*cfg.timeStr)
		alt, az := sky.SunAltAz(at, *cfg.lat, *cfg.lon)
		// compass azimuth to image angle, north at the top of the master
		pattern.WithSunMarker(img, alt, math.Pi/2-az)
	}
	return texture.FromImage(img), nil
}

func parseTimeOrExit(timeStr string) time.Time {
	if timeStr == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, timeStr)
	if err != nil {
		log.Fatalf("Invalid time format: %v", err)
	}
	return t
}
