package mesh

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ptrick/PlanetariumWarper/warp"
)

func domeConfig(t *testing.T) warp.Config {
	t.Helper()
	cfg, err := warp.NewConfig(warp.Params{
		MirrorRadius: 0.30,
		AxialRatio:   0.75,
		Throw:        0.95,
		Beam:         20 * math.Pi / 180,
		Aspect:       16.0 / 9.0,
		Tilt:         8 * math.Pi / 180,
		DomeX:        2.5,
		DomeZ:        1.0,
		DomeRadius:   3.658,
		Phase:        -90 * math.Pi / 180,
	})
	require.NoError(t, err)
	return cfg
}

func TestComputeGridLayout(t *testing.T) {
	m, err := Compute(domeConfig(t), 9, 9)
	require.NoError(t, err)
	require.Equal(t, 9, m.Nx)
	require.Equal(t, 9, m.Ny)
	require.Len(t, m.Nodes, 81)

	bottomLeft := m.At(0, 0)
	require.InDelta(t, -1.0, bottomLeft.X, 1e-12)
	require.InDelta(t, -1.0, bottomLeft.Y, 1e-12)

	topRight := m.At(8, 8)
	require.InDelta(t, 1.0, topRight.X, 1e-12)
	require.InDelta(t, 1.0, topRight.Y, 1e-12)

	center := m.At(4, 4)
	require.Equal(t, 1.0, center.Intensity)
	require.InDelta(t, 0.5, center.U, 1e-6)
	require.InDelta(t, 0.793816340619, center.V, 1e-6)
}

func TestComputeMasksOffMirrorNodes(t *testing.T) {
	cfg, err := warp.NewConfig(warp.Params{
		MirrorRadius: 0.30,
		AxialRatio:   0.75,
		Throw:        0.95,
		Beam:         100 * math.Pi / 180,
		Aspect:       1,
		DomeX:        2.5,
		DomeZ:        1.0,
		DomeRadius:   3.658,
		Phase:        -90 * math.Pi / 180,
	})
	require.NoError(t, err)

	m, err := Compute(cfg, 9, 9)
	require.NoError(t, err)
	for j := 0; j < m.Ny; j++ {
		require.Equal(t, 0.0, m.At(0, j).Intensity, "row %d left edge", j)
		require.Equal(t, 0.0, m.At(m.Nx-1, j).Intensity, "row %d right edge", j)
	}
	for _, n := range m.Nodes {
		require.False(t, math.IsNaN(n.U) || math.IsInf(n.U, 0), "non-finite U")
		require.False(t, math.IsNaN(n.V) || math.IsInf(n.V, 0), "non-finite V")
	}
}

func TestComputeRejectsDegenerateGrid(t *testing.T) {
	_, err := Compute(domeConfig(t), 1, 9)
	require.Error(t, err)
	_, err = Compute(domeConfig(t), 9, 0)
	require.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	m, err := Compute(domeConfig(t), 5, 7)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestWriteFormat(t *testing.T) {
	m := &Mesh{Nx: 2, Ny: 2, Nodes: []Node{
		{X: -1, Y: -1, U: 0.25, V: 0.5, Intensity: 1},
		{X: 1, Y: -1},
		{X: -1, Y: 1, U: 0.125, V: 0.75, Intensity: 1},
		{X: 1, Y: 1},
	}}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, "2", lines[0])
	require.Equal(t, "2 2", lines[1])
	require.Equal(t, "-1 -1 0.25 0.5 1", lines[2])
	require.Equal(t, "1 -1 0 0 0", lines[3])
}

func TestReadRejectsUnknownFormat(t *testing.T) {
	_, err := Read(strings.NewReader("3\n2 2\n"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadRejectsTruncated(t *testing.T) {
	m, err := Compute(domeConfig(t), 3, 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf))
	text := buf.String()

	_, err = Read(strings.NewReader(text[:len(text)/2]))
	require.Error(t, err)
}

func TestReadRejectsImplausibleDimensions(t *testing.T) {
	_, err := Read(strings.NewReader("2\n1 4\n"))
	require.Error(t, err)
	_, err = Read(strings.NewReader("2\n70000 70000\n"))
	require.Error(t, err)
}

func TestReadWriteFile(t *testing.T) {
	m, err := Compute(domeConfig(t), 4, 4)
	require.NoError(t, err)

	path := t.TempDir() + "/warp.data"
	require.NoError(t, m.WriteFile(path))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, m, got)
}
