// Command domegrid writes the raw alignment pattern as an image file, for
// inspecting the dome master before it goes through the warp.
package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ptrick/PlanetariumWarper/pattern"
	"github.com/ptrick/PlanetariumWarper/sky"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <size> <output.png|jpg> [lat lon [rfc3339-time]]\n", os.Args[0])
		os.Exit(1)
	}

	size, err := strconv.Atoi(os.Args[1])
	if err != nil || size <= 0 {
		log.Fatalf("Invalid size: %s", os.Args[1])
	}
	output := os.Args[2]

	img := pattern.Grid(size)

	if len(os.Args) >= 5 {
		lat, err := strconv.ParseFloat(os.Args[3], 64)
		if err != nil {
			log.Fatalf("Invalid latitude: %v", err)
		}
		lon, err := strconv.ParseFloat(os.Args[4], 64)
		if err != nil {
			log.Fatalf("Invalid longitude: %v", err)
		}
		at := time.Now()
		if len(os.Args) >= 6 {
			at, err = time.Parse(time.RFC3339, os.Args[5])
			if err != nil {
				log.Fatalf("Invalid time: %v", err)
			}
		}
		alt, az := sky.SunAltAz(at, lat, lon)
		pattern.WithSunMarker(img, alt, math.Pi/2-az)
	}

	save(output, img)
}

func save(output string, canvas *image.NRGBA) {
	fmt.Printf("-> creating %s\n", output)
	outFile, err := os.Create(output)
	if err != nil {
		log.Fatalf("Could not create %s: %v", output, err)
	}
	defer outFile.Close()

	ext := strings.ToLower(filepath.Ext(output))
	switch ext {
	case ".png":
		if err := png.Encode(outFile, canvas); err != nil {
			log.Fatalf("Failed to encode PNG: %v", err)
		}
	case ".jpg", ".jpeg":
		opts := jpeg.Options{Quality: 95}
		if err := jpeg.Encode(outFile, canvas, &opts); err != nil {
			log.Fatalf("Failed to encode JPEG: %v", err)
		}
	default:
		log.Fatalf("Unsupported output format: %s", ext)
	}
}
