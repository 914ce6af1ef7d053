// Package segment recovers a dot grid from a scanned page image:
// locating sector boundaries from brightness profiles, sampling each
// dot's pixel window with background rejection, and handing the
// resulting per-sector channel grids to internal/sector for decode.
// Grounded on ColorSafeImageFiles.decode/findBounds in the reference
// implementation.
package segment

import (
	"errors"
	"fmt"
	"image"

	"github.com/colorsafe/colorsafe/internal/dotgrid"
)

// ErrNoEnd and ErrNoBeginning mirror the reference findBounds
// failures: the brightness profile never dips (or never rises) enough
// to locate a sector edge.
var (
	ErrNoEnd       = errors.New("segment: no ending boundary found")
	ErrNoBeginning = errors.New("segment: no beginning boundary found")
)

const (
	lowThreshold    = 0.15
	highThreshold   = 0.85
	minLengthSector = 10
)

// ToChannels converts an image.Image to a row-major grid of
// ColorChannels in [0, 1].
func ToChannels(img image.Image) [][]dotgrid.ColorChannels {
	b := img.Bounds()
	out := make([][]dotgrid.ColorChannels, b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := make([]dotgrid.ColorChannels, b.Dx())
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			row[x] = dotgrid.ColorChannels{
				R: float64(r) / 65535,
				G: float64(g) / 65535,
				B: float64(bl) / 65535,
			}
		}
		out[y] = row
	}
	return out
}

// Bound is an inclusive [Begin, End] pixel range along one axis.
type Bound struct{ Begin, End int }

// FindBounds locates alternating (begin, end) sector boundaries in a
// 1-D brightness signal, following the reference findBounds: samples
// are min-max normalized, a sector edge is a crossing of lowThreshold
// (dark border) or highThreshold (the bright gap ring inside a border),
// and a found sector must span at least minLengthSector samples. A flat
// signal has no edges and yields ErrNoEnd.
func FindBounds(signal []float64) ([]Bound, error) {
	if len(signal) == 0 {
		return nil, ErrNoEnd
	}
	minVal, maxVal := signal[0], signal[0]
	for _, v := range signal {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		return nil, ErrNoEnd
	}
	norm := func(v float64) float64 {
		if maxVal == minVal {
			return 0
		}
		return (v - minVal) / (maxVal - minVal)
	}

	ending := -1
	for y := len(signal) - 1; y >= 0; y-- {
		if norm(signal[y]) < lowThreshold {
			ending = y
			break
		}
	}
	if ending == -1 {
		return nil, ErrNoEnd
	}

	beginning := -1
	var begins, ends []int
	for y := 0; y < ending; y++ {
		val := norm(signal[y])
		prevVal := norm(signal[wrap(y-1, len(signal))])
		prev2Val := norm(signal[wrap(y-2, len(signal))])

		if beginning == -1 {
			if val < lowThreshold {
				beginning = y
				continue
			}
		}

		if len(begins) == len(ends) {
			if val > highThreshold && (prevVal < lowThreshold || prev2Val < lowThreshold) {
				begins = append(begins, y)
				continue
			}
		}

		if len(ends) < len(begins) {
			if (prevVal > highThreshold || prev2Val > highThreshold) &&
				val < lowThreshold &&
				y >= begins[len(begins)-1]+minLengthSector {
				ends = append(ends, y-1)
				continue
			}
		}
	}
	if beginning == -1 {
		return nil, ErrNoBeginning
	}

	if len(begins) != len(ends) {
		if len(begins) < len(ends) {
			ends = ends[:len(begins)]
		} else {
			begins = begins[:len(ends)]
		}
	}

	bounds := make([]Bound, len(begins))
	for i := range begins {
		bounds[i] = Bound{Begin: begins[i], End: ends[i]}
	}
	return bounds, nil
}

func wrap(i, n int) int {
	for i < 0 {
		i += n
	}
	return i % n
}

// VerticalProfile and HorizontalProfile reduce a channel grid to a
// 1-D average-shade signal along each axis, the input FindBounds
// expects.
func VerticalProfile(pixels [][]dotgrid.ColorChannels) []float64 {
	out := make([]float64, len(pixels))
	for y, row := range pixels {
		var sum float64
		for _, c := range row {
			sum += c.AverageShade()
		}
		out[y] = sum / float64(len(row))
	}
	return out
}

func HorizontalProfile(pixels [][]dotgrid.ColorChannels) []float64 {
	if len(pixels) == 0 {
		return nil
	}
	width := len(pixels[0])
	out := make([]float64, width)
	for x := 0; x < width; x++ {
		var sum float64
		for _, row := range pixels {
			sum += row[x].AverageShade()
		}
		out[x] = sum / float64(len(pixels))
	}
	return out
}

// SampleSector reads one sector's sectorHeight x sectorWidth dots out
// of the pixel grid within the rectangle [top,bottom] x [left,right]
// (inclusive, gap ring included), sampling a small pixel window per
// dot and rejecting samples bright enough to be background paper.
func SampleSector(pixels [][]dotgrid.ColorChannels, top, bottom, left, right, sectorHeight, sectorWidth, gapSize, colorDepth int) ([]dotgrid.ColorChannels, error) {
	heightPerDot := float64(bottom-top+1) / float64(sectorHeight+2*gapSize)
	widthPerDot := float64(right-left+1) / float64(sectorWidth+2*gapSize)
	high := dotgrid.HighThreshold(colorDepth)

	out := make([]dotgrid.ColorChannels, 0, sectorHeight*sectorWidth)
	for y := 0; y < sectorHeight; y++ {
		for x := 0; x < sectorWidth; x++ {
			yEff := float64(y + gapSize)
			xEff := float64(x + gapSize)

			pixelsTop := round(yEff*heightPerDot) + top
			pixelsBottom := round(yEff*heightPerDot+1) + top
			pixelsLeft := round(xEff*widthPerDot) + left
			pixelsRight := round(xEff*widthPerDot+1) + left

			var sample *dotgrid.ColorChannels
			for ya := pixelsTop; ya <= pixelsBottom; ya++ {
				if ya < 0 || ya >= len(pixels) {
					continue
				}
				for xa := pixelsLeft; xa <= pixelsRight; xa++ {
					if xa < 0 || xa >= len(pixels[ya]) {
						continue
					}
					p := pixels[ya][xa]
					if p.AverageShade() < high {
						sample = &p
						break
					}
				}
				if sample != nil {
					break
				}
			}
			if sample == nil {
				out = append(out, dotgrid.White)
			} else {
				out = append(out, *sample)
			}
		}
	}
	if len(out) != sectorHeight*sectorWidth {
		return nil, fmt.Errorf("segment: sampled %d dots, want %d", len(out), sectorHeight*sectorWidth)
	}
	return out, nil
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
