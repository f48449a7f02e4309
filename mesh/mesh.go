package mesh

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/ptrick/PlanetariumWarper/warp"
)

// Node is one warp-mesh grid point: the projector screen position, the
// dome-master coordinate to sample there, and the sample's intensity.
// X and Y span [-1,1] across the screen.
type Node struct {
	X, Y      float64
	U, V      float64
	Intensity float64
}

// Mesh is a rectangular warp grid in the text interchange layout dome
// players read. Nodes holds Ny rows of Nx columns, bottom row first.
type Mesh struct {
	Nx, Ny int
	Nodes  []Node
}

// rectangular screen meshes carry format tag 2 in the interchange format
const formatRectangular = 2

// ErrUnsupportedFormat marks mesh files whose format tag is not the
// rectangular one.
var ErrUnsupportedFormat = errors.New("unsupported warp mesh format")

// Compute samples cfg over an nx × ny grid spanning the full screen.
// Nodes of rejected rays keep intensity 0; their sample coordinates are
// zeroed if the pipeline left them non-finite, so the mesh always
// serializes cleanly.
func Compute(cfg warp.Config, nx, ny int) (*Mesh, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("mesh needs at least 2x2 nodes, got %dx%d", nx, ny)
	}

	m := &Mesh{Nx: nx, Ny: ny, Nodes: make([]Node, 0, nx*ny)}
	for j := 0; j < ny; j++ {
		sy := float64(j) / float64(ny-1)
		for i := 0; i < nx; i++ {
			sx := float64(i) / float64(nx-1)
			r := cfg.Compute(sx, sy)

			u, v := r.U, r.V
			if r.Intensity == 0 && (!isFinite(u) || !isFinite(v)) {
				slog.Warn("zeroing non-finite remap on rejected node", "i", i, "j", j)
				u, v = 0, 0
			}
			m.Nodes = append(m.Nodes, Node{
				X:         2*sx - 1,
				Y:         2*sy - 1,
				U:         u,
				V:         v,
				Intensity: r.Intensity,
			})
		}
	}
	return m, nil
}

// At returns the node in column i of row j.
func (m *Mesh) At(i, j int) Node {
	return m.Nodes[j*m.Nx+i]
}

// Write emits the mesh in the interchange format: the format tag, the
// grid dimensions, then one "x y u v intensity" line per node.
func (m *Mesh) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", formatRectangular)
	fmt.Fprintf(bw, "%d %d\n", m.Nx, m.Ny)
	for _, n := range m.Nodes {
		fmt.Fprintf(bw, "%g %g %g %g %g\n", n.X, n.Y, n.U, n.V, n.Intensity)
	}
	return bw.Flush()
}

// WriteFile writes the mesh to path.
func (m *Mesh) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.Write(f)
}

// Read parses a mesh in the interchange format.
func Read(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)

	var format int
	if _, err := fmt.Fscan(br, &format); err != nil {
		return nil, fmt.Errorf("reading mesh format: %w", err)
	}
	if format != formatRectangular {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}

	var nx, ny int
	if _, err := fmt.Fscan(br, &nx, &ny); err != nil {
		return nil, fmt.Errorf("reading mesh dimensions: %w", err)
	}
	if nx < 2 || ny < 2 || nx > 1<<14 || ny > 1<<14 {
		return nil, fmt.Errorf("implausible mesh dimensions %dx%d", nx, ny)
	}

	m := &Mesh{Nx: nx, Ny: ny, Nodes: make([]Node, nx*ny)}
	for k := range m.Nodes {
		n := &m.Nodes[k]
		if _, err := fmt.Fscan(br, &n.X, &n.Y, &n.U, &n.V, &n.Intensity); err != nil {
			return nil, fmt.Errorf("reading mesh node %d: %w", k, err)
		}
	}
	return m, nil
}

// ReadFile reads a mesh from path.
func ReadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
