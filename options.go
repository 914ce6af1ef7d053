package colorsafe

import (
	"fmt"
	"time"

	"github.com/colorsafe/colorsafe/internal/csconst"
)

// Default geometry and encoding parameters, matching the reference
// implementation's defaults.
const (
	DefaultColorDepth    = 1
	DefaultECCRate       = 0.2
	DefaultSectorHeight  = 64
	DefaultSectorWidth   = 64
	DefaultBorderSize    = 1
	DefaultGapSize       = 1
	DefaultDotFillPixels = 1
	DefaultPixelsPerDot  = 2
	DefaultFilename      = "out"
	DefaultFileExtension = "txt"
)

// EncodeOptions configures Encode. Zero-valued fields are replaced
// with their Default* constant; ColorDepth is also replaced with
// DefaultColorDepth when it is negative or above ColorDepthMax.
type EncodeOptions struct {
	RegionWidthPx, RegionHeightPx int
	PixelsPerDot                  int
	DotFillPixels                 int
	ColorDepth                    int
	ECCRate                       float64
	SectorHeight, SectorWidth     int
	BorderSize, GapSize           int
	Filename, FileExtension       string
}

// withDefaults returns a copy of o with zero-valued fields replaced by
// their defaults and a ColorDepth outside [1, ColorDepthMax] replaced
// by DefaultColorDepth.
func (o EncodeOptions) withDefaults() EncodeOptions {
	if o.ColorDepth <= 0 || o.ColorDepth > csconst.ColorDepthMax {
		o.ColorDepth = DefaultColorDepth
	}
	if o.ECCRate <= 0 {
		o.ECCRate = DefaultECCRate
	}
	if o.SectorHeight <= 0 {
		o.SectorHeight = DefaultSectorHeight
	}
	if o.SectorWidth <= 0 {
		o.SectorWidth = DefaultSectorWidth
	}
	if o.BorderSize <= 0 {
		o.BorderSize = DefaultBorderSize
	}
	if o.GapSize <= 0 {
		o.GapSize = DefaultGapSize
	}
	if o.DotFillPixels <= 0 {
		o.DotFillPixels = DefaultDotFillPixels
	}
	if o.PixelsPerDot <= 0 {
		o.PixelsPerDot = DefaultPixelsPerDot
	}
	if o.Filename == "" {
		o.Filename = DefaultFilename
	}
	if o.FileExtension == "" {
		o.FileExtension = DefaultFileExtension
	}
	return o
}

// validate checks the dimension invariants Encode requires before any
// work begins: region sizes must be positive, sector sizes must be
// multiples of 8 dots wide, and pixelsPerDot must be able to fit the
// requested dot fill.
func (o EncodeOptions) validate() error {
	if o.RegionWidthPx <= 0 || o.RegionHeightPx <= 0 {
		return fmt.Errorf("%w: region size %dx%d must be positive", ErrInvalidDimensions, o.RegionWidthPx, o.RegionHeightPx)
	}
	if o.SectorWidth%csconst.ByteSize != 0 {
		return fmt.Errorf("%w: sectorWidth %d must be a multiple of %d", ErrInvalidDimensions, o.SectorWidth, csconst.ByteSize)
	}
	if o.SectorHeight <= 1 {
		return fmt.Errorf("%w: sectorHeight %d must exceed the magic row", ErrInvalidDimensions, o.SectorHeight)
	}
	if o.DotFillPixels > o.PixelsPerDot {
		return fmt.Errorf("%w: dotFillPixels %d exceeds pixelsPerDot %d", ErrInvalidDimensions, o.DotFillPixels, o.PixelsPerDot)
	}
	return nil
}

func (o EncodeOptions) creationTime() int64 {
	return time.Now().Unix()
}

// DecodeOptions configures Decode: the colorDepth and sector geometry
// the scanned pages were produced with. Decode does not read these
// back from the pages' metadata sectors; they must match the values
// Encode used.
type DecodeOptions struct {
	ColorDepth                int
	SectorHeight, SectorWidth int
	GapSize                   int
	ECCRate                   float64
}

func (o DecodeOptions) withDefaults() DecodeOptions {
	if o.ColorDepth <= 0 || o.ColorDepth > csconst.ColorDepthMax {
		o.ColorDepth = DefaultColorDepth
	}
	if o.SectorHeight <= 0 {
		o.SectorHeight = DefaultSectorHeight
	}
	if o.SectorWidth <= 0 {
		o.SectorWidth = DefaultSectorWidth
	}
	if o.GapSize <= 0 {
		o.GapSize = DefaultGapSize
	}
	if o.ECCRate <= 0 {
		o.ECCRate = DefaultECCRate
	}
	return o
}

func (o DecodeOptions) validate() error {
	if o.SectorWidth%csconst.ByteSize != 0 {
		return fmt.Errorf("%w: sectorWidth %d must be a multiple of %d", ErrInvalidDimensions, o.SectorWidth, csconst.ByteSize)
	}
	return nil
}
