package segment

import (
	"fmt"

	"github.com/colorsafe/colorsafe/internal/dotgrid"
	"github.com/colorsafe/colorsafe/internal/sector"
)

// Geometry is the sector sizing a scanned page is segmented with; it
// must match what Encode used to produce the page.
type Geometry struct {
	SectorHeight, SectorWidth int
	GapSize                   int
	ECCRate                   float64
	ColorDepth                int
}

// PageResult is one page's segmentation outcome: the concatenated data
// sector bytes (trailing zero bytes trimmed) and any metadata sectors
// found, plus whether every RS block across the page decoded cleanly.
type PageResult struct {
	Data       []byte
	Metadata   []map[string]string
	AllBlockOK bool
}

// DecodePage locates sector boundaries in a scanned page's pixel
// grid, decodes each sector, and splits data sectors from metadata
// sectors (identified by their magic-row prefix).
func DecodePage(pixels [][]dotgrid.ColorChannels, geo Geometry) (*PageResult, error) {
	vBounds, err := FindBounds(VerticalProfile(pixels))
	if err != nil {
		return nil, fmt.Errorf("segment: vertical bounds: %w", err)
	}
	hBounds, err := FindBounds(HorizontalProfile(pixels))
	if err != nil {
		return nil, fmt.Errorf("segment: horizontal bounds: %w", err)
	}

	result := &PageResult{AllBlockOK: true}
	for _, vb := range vBounds {
		for _, hb := range hBounds {
			channels, err := SampleSector(pixels, vb.Begin, vb.End, hb.Begin, hb.End, geo.SectorHeight, geo.SectorWidth, geo.GapSize, geo.ColorDepth)
			if err != nil {
				return nil, err
			}

			s, err := sector.Decode(channels, geo.ColorDepth, geo.SectorHeight, geo.SectorWidth, geo.ECCRate)
			if err != nil {
				return nil, fmt.Errorf("segment: decoding sector: %w", err)
			}
			if !s.AllBlocksOK() {
				result.AllBlockOK = false
			}

			if s.IsMagicRow() {
				md, err := sector.DecodeMetadata(s)
				if err != nil {
					return nil, fmt.Errorf("segment: decoding metadata sector: %w", err)
				}
				result.Metadata = append(result.Metadata, md)
				continue
			}
			result.Data = append(result.Data, s.DataRows...)
		}
	}

	result.Data = trimTrailingZeros(result.Data)
	return result, nil
}

func trimTrailingZeros(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
