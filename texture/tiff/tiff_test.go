package tiff

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	typeShort = 3
	typeLong  = 4
)

type tiffBuilder struct {
	buf bytes.Buffer
}

func (b *tiffBuilder) u16(v uint16) { binary.Write(&b.buf, binary.LittleEndian, v) }
func (b *tiffBuilder) u32(v uint32) { binary.Write(&b.buf, binary.LittleEndian, v) }

func (b *tiffBuilder) entry(tag, typ uint16, count, value uint32) {
	b.u16(tag)
	b.u16(typ)
	b.u32(count)
	b.u32(value)
}

// writeStripedTiff writes a 2x2 RGB uncompressed strip-layout TIFF:
// red green / blue white.
func writeStripedTiff(t *testing.T, path string) {
	t.Helper()

	var b tiffBuilder
	b.buf.WriteString("II")
	b.u16(42)
	b.u32(8)

	// 10 entries, then the BitsPerSample array and one strip of pixels
	const bitsOffset = 8 + 2 + 10*12 + 4
	const pixelOffset = bitsOffset + 6

	b.u16(10)
	b.entry(TagImageWidth, typeShort, 1, 2)
	b.entry(TagImageLength, typeShort, 1, 2)
	b.entry(TagBitsPerSample, typeShort, 3, bitsOffset)
	b.entry(TagCompression, typeShort, 1, 1)
	b.entry(TagPhotometricInterpretation, typeShort, 1, 2)
	b.entry(TagStripOffsets, typeLong, 1, pixelOffset)
	b.entry(TagSamplesPerPixel, typeShort, 1, 3)
	b.entry(TagRowsPerStrip, typeShort, 1, 2)
	b.entry(TagStripByteCounts, typeLong, 1, 12)
	b.entry(TagPlanarConfiguration, typeShort, 1, 1)
	b.u32(0)

	b.u16(8)
	b.u16(8)
	b.u16(8)

	b.buf.Write([]byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	})

	require.NoError(t, os.WriteFile(path, b.buf.Bytes(), 0o644))
}

// writeTiledTiff writes the same 2x2 image as a single deflate-compressed
// 16x16 tile.
func writeTiledTiff(t *testing.T, path string) {
	t.Helper()

	tile := make([]byte, 16*16*3)
	copy(tile[0:], []byte{255, 0, 0, 0, 255, 0})
	copy(tile[16*3:], []byte{0, 0, 255, 255, 255, 255})

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(tile)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var b tiffBuilder
	b.buf.WriteString("II")
	b.u16(42)
	b.u32(8)

	const bitsOffset = 8 + 2 + 11*12 + 4
	const tileOffset = bitsOffset + 6

	b.u16(11)
	b.entry(TagImageWidth, typeShort, 1, 2)
	b.entry(TagImageLength, typeShort, 1, 2)
	b.entry(TagBitsPerSample, typeShort, 3, bitsOffset)
	b.entry(TagCompression, typeShort, 1, 8)
	b.entry(TagPhotometricInterpretation, typeShort, 1, 2)
	b.entry(TagSamplesPerPixel, typeShort, 1, 3)
	b.entry(TagPlanarConfiguration, typeShort, 1, 1)
	b.entry(TagTileWidth, typeShort, 1, 16)
	b.entry(TagTileLength, typeShort, 1, 16)
	b.entry(TagTileOffsets, typeLong, 1, tileOffset)
	b.entry(TagTileByteCounts, typeLong, 1, uint32(compressed.Len()))
	b.u32(0)

	b.u16(8)
	b.u16(8)
	b.u16(8)

	b.buf.Write(compressed.Bytes())

	require.NoError(t, os.WriteFile(path, b.buf.Bytes(), 0o644))
}

func requireRGBA(t *testing.T, c color.Color, r, g, b uint32) {
	t.Helper()
	cr, cg, cb, ca := c.RGBA()
	require.Equal(t, r, cr)
	require.Equal(t, g, cg)
	require.Equal(t, b, cb)
	require.Equal(t, uint32(65535), ca)
}

func TestLoadStriped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.tif")
	writeStripedTiff(t, path)

	img, err := LoadStriped(path)
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())

	requireRGBA(t, img.At(0, 0), 65535, 0, 0)
	requireRGBA(t, img.At(1, 0), 0, 65535, 0)
	requireRGBA(t, img.At(0, 1), 0, 0, 65535)
	requireRGBA(t, img.At(1, 1), 65535, 65535, 65535)
}

func TestLoadTiled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiled.tif")
	writeTiledTiff(t, path)

	img, err := LoadTiled(path)
	require.NoError(t, err)
	require.Equal(t, 2, img.Bounds().Dx())

	requireRGBA(t, img.At(0, 0), 65535, 0, 0)
	requireRGBA(t, img.At(1, 1), 65535, 65535, 65535)

	// second read of the same tile comes from the cache
	requireRGBA(t, img.At(1, 0), 0, 65535, 0)
}

func TestLoadRejectsWrongLayout(t *testing.T) {
	dir := t.TempDir()

	striped := filepath.Join(dir, "flat.tif")
	writeStripedTiff(t, striped)
	_, err := LoadTiled(striped)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInvalidHeader))

	tiled := filepath.Join(dir, "tiled.tif")
	writeTiledTiff(t, tiled)
	_, err = LoadStriped(tiled)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrInvalidHeader))
}

func TestLoadRejectsNonTiff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not.tif")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nnot really"), 0o644))

	_, err := LoadStriped(path)
	require.ErrorIs(t, err, ErrInvalidHeader)

	_, err = LoadTiled(path)
	require.ErrorIs(t, err, ErrInvalidHeader)
}
