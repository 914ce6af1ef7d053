// Package layout assembles Sectors into Pages and Pages into a
// complete ColorSafeFile: the placement of metadata sectors among
// data sectors (Page), and data partitioning plus cross-page metadata
// distribution (File). Grounded on the Page/ColorSafeFile classes of
// the reference implementation, reworked onto internal/prng for
// reproducible placement instead of a process-global PRNG.
package layout

import (
	"fmt"

	"github.com/colorsafe/colorsafe/internal/prng"
	"github.com/colorsafe/colorsafe/internal/sector"
)

// Page is a sectorsVertical x sectorsHorizontal grid of sectors,
// stored row-major, with metadata sectors interleaved among the data
// sectors at positions chosen by a PRNG seeded with the page number
// (spec.md 9: per-page seed for intra-page metadata placement).
type Page struct {
	Number                             int
	SectorsVertical, SectorsHorizontal int
	Sectors                            []*sector.Sector
	MetadataPositions                  []int
}

// BuildPage places metadataSectors at reproducible-random positions
// within a sectorsVertical*sectorsHorizontal grid, filling the
// remaining positions with dataSectors in order. len(dataSectors) must
// equal sectorsVertical*sectorsHorizontal - len(metadataSectors).
func BuildPage(dataSectors []*sector.Sector, metadataSectors []*sector.MetadataSector, pageNumber, sectorsVertical, sectorsHorizontal int) (*Page, error) {
	total := sectorsVertical * sectorsHorizontal
	want := total - len(metadataSectors)
	if len(dataSectors) != want {
		return nil, fmt.Errorf("layout: page %d: got %d data sectors, want %d", pageNumber, len(dataSectors), want)
	}

	perm := prng.Permute(int64(pageNumber), total)
	positions := append([]int(nil), perm[:len(metadataSectors)]...)

	sectors := make([]*sector.Sector, total)
	occupied := make([]bool, total)
	for i, pos := range positions {
		sectors[pos] = metadataSectors[i].Sector
		occupied[pos] = true
	}

	di := 0
	for i := range sectors {
		if occupied[i] {
			continue
		}
		sectors[i] = dataSectors[di]
		di++
	}

	return &Page{
		Number: pageNumber, SectorsVertical: sectorsVertical, SectorsHorizontal: sectorsHorizontal,
		Sectors: sectors, MetadataPositions: positions,
	}, nil
}
