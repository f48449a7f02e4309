// Package compression names the TIFF compression scheme identifiers
// (tag 259) the readers care about.
package compression

const (
	None     = 1
	LZW      = 5
	JPEG     = 7
	Deflate  = 8
	PackBits = 32773
)
