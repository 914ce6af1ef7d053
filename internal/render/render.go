// Package render rasterizes an assembled Page into a printable image:
// each dot becomes a pixelsPerDot x pixelsPerDot cell (with
// dotFillPixels of ink centered in it), sectors are separated by gaps
// and borders. Grounded on ColorSafeImageFiles.colorSafeFileToImages
// in the reference implementation, rebuilt over golang.org/x/image/draw
// for the actual pixel compositing.
package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/colorsafe/colorsafe/internal/dotgrid"
	"github.com/colorsafe/colorsafe/internal/layout"
)

// Options controls the physical layout of the rendered page, all in
// dots unless noted.
type Options struct {
	PixelsPerDot  int // side length, in pixels, of one dot's cell
	DotFillPixels int // side length, in pixels, of the inked portion of a cell
	BorderSize    int // sector border thickness
	GapSize       int // gap between a sector's border and its dots
	SectorHeight  int
	SectorWidth   int
}

var borderColor = color.Gray16{0}

// WorkingDimensions returns the pixel size of the rendered working
// region (excluding any outer page margin) for a sectorsVertical x
// sectorsHorizontal grid.
func WorkingDimensions(opts Options, sectorsVertical, sectorsHorizontal int) (width, height int) {
	sectorHeightTotal := opts.SectorHeight + opts.BorderSize + 2*opts.GapSize
	sectorWidthTotal := opts.SectorWidth + opts.BorderSize + 2*opts.GapSize
	height = (sectorsVertical*sectorHeightTotal + opts.BorderSize) * opts.PixelsPerDot
	width = (sectorsHorizontal*sectorWidthTotal + opts.BorderSize) * opts.PixelsPerDot
	return width, height
}

// Page rasterizes one assembled page into an RGBA image. Each
// sector's own ColorDepth (not a page-wide setting) governs how its
// dots are rendered.
func Page(page *layout.Page, opts Options) (*image.RGBA, error) {
	width, height := WorkingDimensions(opts, page.SectorsVertical, page.SectorsHorizontal)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	scale := opts.PixelsPerDot
	dotWhitespace := opts.PixelsPerDot - opts.DotFillPixels
	wsLeft := dotWhitespace / 2
	wsTop := dotWhitespace / 2
	fillSide := opts.DotFillPixels

	sectorHeightTotal := opts.SectorHeight + opts.BorderSize + 2*opts.GapSize
	sectorWidthTotal := opts.SectorWidth + opts.BorderSize + 2*opts.GapSize

	for si, s := range page.Sectors {
		sx := si % page.SectorsHorizontal
		sy := si / page.SectorsHorizontal

		gapHor := opts.GapSize * (2*sx + 1)
		borderHor := opts.BorderSize * (sx + 1)
		gapVer := opts.GapSize * (2*sy + 1)
		borderVer := opts.BorderSize * (sy + 1)

		startHor := sx*opts.SectorWidth + gapHor + borderHor
		startVer := sy*opts.SectorHeight + gapVer + borderVer

		channels, err := s.Rows()
		if err != nil {
			return nil, fmt.Errorf("render: sector %d: %w", si, err)
		}
		for row := 0; row < s.Height; row++ {
			for col := 0; col < s.Width; col++ {
				c := channels[row*s.Width+col]
				x := (startHor + col) * scale
				y := (startVer + row) * scale
				rect := image.Rect(x+wsLeft, y+wsTop, x+wsLeft+fillSide, y+wsTop+fillSide)
				draw.Draw(img, rect, image.NewUniform(channelsToColor(c)), image.Point{}, draw.Src)
			}
		}

		borderStartHor := (startHor - opts.GapSize - opts.BorderSize) * scale
		borderStartVer := (startVer - opts.GapSize - opts.BorderSize) * scale
		borderEndHor := borderStartHor + sectorWidthTotal*scale
		borderEndVer := borderStartVer + sectorHeightTotal*scale

		borderPixels := opts.BorderSize * scale
		drawVerticalBorders(img, borderStartHor, borderEndHor, borderStartVer, borderEndVer, borderPixels)
		drawHorizontalBorders(img, borderStartHor, borderEndHor, borderStartVer, borderEndVer, borderPixels)
	}

	return img, nil
}

func drawVerticalBorders(img *image.RGBA, startHor, endHor, startVer, endVer, thickness int) {
	for xs := 0; xs < thickness; xs++ {
		for _, bx := range []int{startHor + xs, endHor + xs} {
			rect := image.Rect(bx, startVer, bx+1, endVer)
			draw.Draw(img, rect, image.NewUniform(borderColor), image.Point{}, draw.Src)
		}
	}
}

func drawHorizontalBorders(img *image.RGBA, startHor, endHor, startVer, endVer, thickness int) {
	for ys := 0; ys < thickness; ys++ {
		for _, by := range []int{startVer + ys, endVer + ys} {
			rect := image.Rect(startHor, by, endHor, by+1)
			draw.Draw(img, rect, image.NewUniform(borderColor), image.Point{}, draw.Src)
		}
	}
}

func channelsToColor(c dotgrid.ColorChannels) color.RGBA64 {
	return color.RGBA64{
		R: uint16(clamp01(c.R) * 65535),
		G: uint16(clamp01(c.G) * 65535),
		B: uint16(clamp01(c.B) * 65535),
		A: 65535,
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
