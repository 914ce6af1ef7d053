package colorsafe

import (
	"fmt"
	"image"

	"github.com/pkg/errors"

	"github.com/colorsafe/colorsafe/internal/layout"
	"github.com/colorsafe/colorsafe/internal/render"
	"github.com/colorsafe/colorsafe/internal/segment"
)

// Encode renders data as a sequence of page images. Each returned
// image is the full working region (dots, gaps, and sector borders,
// no outer page margin) at opts.PixelsPerDot resolution.
func Encode(data []byte, opts EncodeOptions) ([]image.Image, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	renderOpts := render.Options{
		PixelsPerDot:  opts.PixelsPerDot,
		DotFillPixels: opts.DotFillPixels,
		BorderSize:    opts.BorderSize,
		GapSize:       opts.GapSize,
		SectorHeight:  opts.SectorHeight,
		SectorWidth:   opts.SectorWidth,
	}

	sectorsVertical, sectorsHorizontal := fitSectorGrid(opts)
	if sectorsVertical < 1 || sectorsHorizontal < 1 {
		return nil, errors.WithStack(fmt.Errorf("%w: region %dx%dpx too small for one sector at pixelsPerDot=%d",
			ErrInvalidDimensions, opts.RegionWidthPx, opts.RegionHeightPx, opts.PixelsPerDot))
	}

	file, err := layout.Encode(data, layout.Options{
		SectorsVertical:   sectorsVertical,
		SectorsHorizontal: sectorsHorizontal,
		ColorDepth:        opts.ColorDepth,
		ECCRate:           opts.ECCRate,
		SectorHeight:      opts.SectorHeight,
		SectorWidth:       opts.SectorWidth,
		Filename:          opts.Filename,
		FileExtension:     opts.FileExtension,
		CreationTimeUnix:  opts.creationTime(),
	})
	if err != nil {
		if errors.Is(err, layout.ErrCapacityExceeded) {
			return nil, errors.WithStack(fmt.Errorf("%w: %d bytes at %dx%d sectors per page", ErrCapacityExceeded, len(data), sectorsVertical, sectorsHorizontal))
		}
		return nil, errors.WithStack(err)
	}

	images := make([]image.Image, len(file.Pages))
	for i, page := range file.Pages {
		img, err := render.Page(page, renderOpts)
		if err != nil {
			return nil, errors.WithStack(fmt.Errorf("colorsafe: rendering page %d: %w", i, err))
		}
		images[i] = img
	}
	return images, nil
}

// fitSectorGrid computes how many sectors fit vertically and
// horizontally in the requested working region at the given dot
// geometry, following ColorSafeImageFiles.encode's sizing math: a
// single extra, non-overlapping border is reserved at the bottom and
// right edges.
func fitSectorGrid(opts EncodeOptions) (vertical, horizontal int) {
	scale := opts.PixelsPerDot
	sectorHeightTotal := opts.SectorHeight + opts.BorderSize + 2*opts.GapSize
	sectorWidthTotal := opts.SectorWidth + opts.BorderSize + 2*opts.GapSize

	v := float64(opts.RegionHeightPx-scale*opts.BorderSize) / float64(scale*sectorHeightTotal)
	h := float64(opts.RegionWidthPx-scale*opts.BorderSize) / float64(scale*sectorWidthTotal)

	return int(v), int(h)
}

// DecodeResult carries recovered payload bytes alongside diagnostics:
// whether every Reed-Solomon block across every page decoded cleanly,
// and the metadata recovered from each page's metadata sectors.
type DecodeResult struct {
	Data         []byte
	AllBlocksOK  bool
	PageMetadata []map[string]string
	FailedPages  []int
}

// Decode recovers the original payload from a sequence of scanned
// page images. Pages that fail segmentation are skipped and recorded
// in FailedPages rather than aborting the whole decode; if every page
// fails, Decode returns ErrSegmentationFailed.
func Decode(pages []image.Image, opts DecodeOptions) (*DecodeResult, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	geo := segment.Geometry{
		SectorHeight: opts.SectorHeight,
		SectorWidth:  opts.SectorWidth,
		GapSize:      opts.GapSize,
		ECCRate:      opts.ECCRate,
		ColorDepth:   opts.ColorDepth,
	}

	result := &DecodeResult{AllBlocksOK: true}
	for i, page := range pages {
		pixels := segment.ToChannels(page)
		pr, err := segment.DecodePage(pixels, geo)
		if err != nil {
			result.FailedPages = append(result.FailedPages, i)
			continue
		}
		result.Data = append(result.Data, pr.Data...)
		result.PageMetadata = append(result.PageMetadata, pr.Metadata...)
		if !pr.AllBlockOK {
			result.AllBlocksOK = false
		}
	}

	if len(result.FailedPages) == len(pages) && len(pages) > 0 {
		return nil, errors.WithStack(ErrSegmentationFailed)
	}
	if !hasRequiredMetadata(result.PageMetadata) {
		return result, errors.WithStack(ErrMetadataMissing)
	}
	if !result.AllBlocksOK {
		return result, errors.WithStack(ErrRSUncorrectable)
	}
	return result, nil
}

func hasRequiredMetadata(pages []map[string]string) bool {
	if len(pages) == 0 {
		return false
	}
	required := []string{"ECC", "DAT", "PAG", "MET"}
	for _, md := range pages {
		ok := true
		for _, k := range required {
			if _, found := md[k]; !found {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
