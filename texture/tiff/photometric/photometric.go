// Package photometric names the TIFF photometric interpretation
// identifiers (tag 262) the readers care about.
package photometric

const (
	WhiteIsZero = 0
	BlackIsZero = 1
	RGB         = 2
	Palette     = 3
)
