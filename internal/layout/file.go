package layout

import (
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"sort"
	"strconv"

	"github.com/colorsafe/colorsafe/internal/prng"
	"github.com/colorsafe/colorsafe/internal/sector"
)

// MaxTotalPages bounds a file to what the fixed 8-byte PAG/TOT fields
// can number.
const MaxTotalPages = 99999999

// ErrCapacityExceeded means the payload needs more pages than the
// format can address.
var ErrCapacityExceeded = errors.New("layout: payload exceeds available page capacity")

// Options bundles the parameters ColorSafeFile needs beyond the
// payload itself.
type Options struct {
	SectorsVertical, SectorsHorizontal int
	ColorDepth                         int
	ECCRate                            float64
	SectorHeight, SectorWidth          int
	Filename, FileExtension            string
	CreationTimeUnix                   int64
}

// File is a fully assembled ColorSafe document: the payload's data
// sectors, the metadata sectors describing it, and the pages they are
// tiled into.
type File struct {
	DataSectors     []*sector.Sector
	MetadataSectors []*sector.MetadataSector
	Pages           []*Page
	TotalPages      int
}

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Encode partitions data into data sectors, synthesizes the metadata
// sectors describing it (dropping low-priority fields that don't fit,
// per spec.md 9's overflow policy), and tiles both into pages.
func Encode(data []byte, opts Options) (*File, error) {
	dataRowCount := sector.DataRowCount(opts.SectorHeight, opts.ECCRate)
	dataPerSector := opts.SectorWidth * opts.ColorDepth * dataRowCount / 8
	if dataPerSector <= 0 {
		return nil, fmt.Errorf("layout: sector geometry yields zero data capacity per sector")
	}

	var dataSectors []*sector.Sector
	for start := 0; start < len(data); start += dataPerSector {
		end := start + dataPerSector
		if end > len(data) {
			end = len(data)
		}
		s, err := sector.Encode(data[start:end], opts.ColorDepth, opts.SectorHeight, opts.SectorWidth, opts.ECCRate)
		if err != nil {
			return nil, fmt.Errorf("layout: encoding data sector at offset %d: %w", start, err)
		}
		dataSectors = append(dataSectors, s)
	}
	if len(dataSectors) == 0 {
		s, err := sector.Encode(nil, opts.ColorDepth, opts.SectorHeight, opts.SectorWidth, opts.ECCRate)
		if err != nil {
			return nil, fmt.Errorf("layout: encoding empty payload sector: %w", err)
		}
		dataSectors = append(dataSectors, s)
	}

	ambiguous := false
	for _, s := range dataSectors {
		if s.IsMagicRow() {
			ambiguous = true
			break
		}
	}

	metadataSectors, err := buildMetadataSectors(data, opts, ambiguous)
	if err != nil {
		return nil, err
	}

	sectorsPerPage := opts.SectorsVertical * opts.SectorsHorizontal
	totalSectors := len(dataSectors) + len(metadataSectors)
	totalPages := 1
	if totalSectors > 1 {
		totalPages = int(math.Ceil(float64(totalSectors-1) / float64(sectorsPerPage-1)))
	}

	// Pad the metadata-sector count so the full sector count tiles
	// whole rows: totalSectors must divide evenly by sectorsHorizontal.
	// Padding replicates existing metadata sectors rather than minting
	// new content.
	totalMetadataSectors := len(metadataSectors)
	if rem := totalSectors % opts.SectorsHorizontal; rem != 0 {
		totalMetadataSectors += opts.SectorsHorizontal - rem
	}

	// Replicated metadata steals data slots; grow the page count until
	// the data sectors all fit.
	var pageAssignment []int
	for {
		if totalPages > MaxTotalPages {
			return nil, fmt.Errorf("%w: %d-byte payload needs more than %d pages", ErrCapacityExceeded, len(data), MaxTotalPages)
		}
		pageAssignment = assignMetadataToPages(totalMetadataSectors-1, totalPages)
		slots := 0
		for _, c := range pageAssignment {
			if c < sectorsPerPage {
				slots += sectorsPerPage - c
			}
		}
		if slots >= len(dataSectors) {
			break
		}
		totalPages++
	}

	var pages []*Page
	dataOffset := 0
	addIter := 0
	for p := 0; p < totalPages; p++ {
		count := pageAssignment[p]
		pageMetadata := make([]*sector.MetadataSector, count)
		for i := range pageMetadata {
			src := metadataSectors[0]
			if i > 0 && len(metadataSectors) > 1 {
				src = metadataSectors[1+addIter%(len(metadataSectors)-1)]
				addIter++
			}
			clone, err := pageMetadataSector(src, p, totalPages, count)
			if err != nil {
				return nil, err
			}
			pageMetadata[i] = clone
		}

		dataCount := sectorsPerPage - count
		end := dataOffset + dataCount
		if end > len(dataSectors) {
			end = len(dataSectors)
		}
		pageData := append([]*sector.Sector(nil), dataSectors[dataOffset:end]...)
		dataOffset = end
		for len(pageData) < dataCount {
			empty, err := sector.Encode(nil, opts.ColorDepth, opts.SectorHeight, opts.SectorWidth, opts.ECCRate)
			if err != nil {
				return nil, fmt.Errorf("layout: padding page %d: %w", p, err)
			}
			pageData = append(pageData, empty)
		}

		page, err := BuildPage(pageData, pageMetadata, p, opts.SectorsVertical, opts.SectorsHorizontal)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	return &File{DataSectors: dataSectors, MetadataSectors: metadataSectors, Pages: pages, TotalPages: totalPages}, nil
}

// assignMetadataToPages returns how many metadata sectors each page
// carries: one (the primary, which every page repeats at its head)
// plus a share of the additionalCount remaining sectors, visiting
// pages in the order given by the fixed global seed (spec.md 9) so the
// distribution is reproducible.
func assignMetadataToPages(additionalCount, pageCount int) []int {
	counts := make([]int, pageCount)
	for i := range counts {
		counts[i] = 1
	}
	if additionalCount <= 0 || pageCount == 0 {
		return counts
	}

	order := prng.Permute(0, pageCount)
	for i := 0; i < additionalCount; i++ {
		counts[order[i%pageCount]]++
	}
	return counts
}

// pageMetadataSector clones src with the page-specific fields set.
// Shared metadata sectors cannot be updated in place: every page
// carries its own copy of the primary sector, each with its own PAG.
func pageMetadataSector(src *sector.MetadataSector, pageNumber, totalPages, metadataCount int) (*sector.MetadataSector, error) {
	updated := make(map[string]string, len(src.Metadata)+3)
	for k, v := range src.Metadata {
		updated[k] = v
	}
	updated[sector.TagPageNumber] = fixedPageField(pageNumber)
	updated[sector.TagTotalPages] = fixedPageField(totalPages)
	updated[sector.TagMetadataCount] = strconv.Itoa(metadataCount)

	order := append(append([]string{}, sector.RequiredInOrder...), orderedOptionalKeys(updated)...)
	ms, err := sector.EncodeMetadata(order, updated, src.ColorDepth, src.Height, src.Width, src.ECCRate)
	if err != nil {
		return nil, fmt.Errorf("layout: cloning metadata sector for page %d: %w", pageNumber, err)
	}
	return ms, nil
}

// fixedPageField renders a page number as the fixed 8-byte decimal
// field the PAG and TOT tags occupy.
func fixedPageField(n int) string {
	return fmt.Sprintf("%08d", n)
}

// ambiguousFlag renders whether any data sector's leading bytes
// happened to collide with the magic-row pattern (spec.md 6 AMB tag):
// a decoder relies on that pattern alone to tell a metadata sector
// from a data sector, so this flag is a detection-only signal with no
// remediation, matching the original's own unfinished handling.
func ambiguousFlag(ambiguous bool) string {
	if ambiguous {
		return "1"
	}
	return "0"
}

func baseMetadata(data []byte, opts Options, ambiguous bool) map[string]string {
	return map[string]string{
		sector.TagECCMode:  "1",
		sector.TagDataMode: "1",
		// PAG/TOT are placeholders reserving their fixed 8-byte width;
		// MET reserves the widest possible count. All three are
		// replaced with real values when pages are assembled.
		sector.TagPageNumber:    fixedPageField(0),
		sector.TagTotalPages:    fixedPageField(0),
		sector.TagMetadataCount: strconv.Itoa(opts.SectorsVertical * opts.SectorsHorizontal),
		sector.TagAmbiguous:     ambiguousFlag(ambiguous),
		sector.TagCRC32C:        strconv.FormatUint(uint64(crc32.Checksum(data, crc32cTable)), 10),
		sector.TagCreationTime:  strconv.FormatInt(opts.CreationTimeUnix, 10),
		sector.TagECCRate:       strconv.FormatFloat(opts.ECCRate, 'f', -1, 64),
		sector.TagFileExtension: opts.FileExtension,
		sector.TagFileSize:      strconv.Itoa(len(data)),
		sector.TagFilename:      opts.Filename,
		sector.TagMajorVersion:  "1",
		sector.TagMinorVersion:  "0",
		sector.TagRevision:      "0",
	}
}

// orderedOptionalKeys returns every key of m not in RequiredInOrder,
// sorted longest key+value first: the reference implementation packs
// longer, more valuable fields before shorter ones so the "drop the
// largest remaining key" overflow policy always discards the least
// space-efficient field first.
func orderedOptionalKeys(m map[string]string) []string {
	required := make(map[string]bool, len(sector.RequiredInOrder))
	for _, k := range sector.RequiredInOrder {
		required[k] = true
	}

	var keys []string
	for k := range m {
		if !required[k] {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return len(keys[i])+len(m[keys[i]]) > len(keys[j])+len(m[keys[j]])
	})
	return keys
}

// buildMetadataSectors packs the full metadata map into as many
// MetadataSectors as needed: each sector greedily accepts as much of
// the remaining ordered key list as fits; if a sector accepts nothing
// beyond the required keys, the largest remaining optional key is
// dropped (it can never fit alone either) and packing retries.
func buildMetadataSectors(data []byte, opts Options, ambiguous bool) ([]*sector.MetadataSector, error) {
	metadata := baseMetadata(data, opts, ambiguous)
	remaining := append(append([]string{}, sector.RequiredInOrder...), orderedOptionalKeys(metadata)...)

	requiredSet := make(map[string]bool, len(sector.RequiredInOrder))
	for _, k := range sector.RequiredInOrder {
		requiredSet[k] = true
	}
	isRequiredOnly := func(keys []string) bool {
		if len(keys) != len(sector.RequiredInOrder) {
			return false
		}
		for _, k := range keys {
			if !requiredSet[k] {
				return false
			}
		}
		return true
	}
	equalsRequired := func(keys []string) bool {
		if len(keys) != len(sector.RequiredInOrder) {
			return false
		}
		for i, k := range sector.RequiredInOrder {
			if keys[i] != k {
				return false
			}
		}
		return true
	}

	var sectors []*sector.MetadataSector
	for !equalsRequired(remaining) {
		ms, err := sector.EncodeMetadata(remaining, metadata, opts.ColorDepth, opts.SectorHeight, opts.SectorWidth, opts.ECCRate)
		if err != nil {
			return nil, fmt.Errorf("layout: building metadata sector: %w", err)
		}

		acceptedOrder := make([]string, 0, len(ms.Metadata))
		for _, k := range remaining {
			if _, ok := ms.Metadata[k]; ok {
				acceptedOrder = append(acceptedOrder, k)
			}
		}

		for _, k := range sector.RequiredInOrder {
			if _, ok := ms.Metadata[k]; !ok {
				return nil, fmt.Errorf("layout: sector geometry too small to carry required metadata %s", k)
			}
		}

		if isRequiredOnly(acceptedOrder) {
			// Nothing beyond the required fields fit; the next
			// optional key (the largest remaining) will never fit
			// either, so drop it and retry.
			dropped := false
			next := remaining[:0:0]
			skip := true
			for _, k := range remaining {
				if skip && !requiredSet[k] {
					skip = false
					dropped = true
					continue
				}
				next = append(next, k)
			}
			remaining = next
			if !dropped {
				break
			}
			continue
		}

		sectors = append(sectors, ms)

		acceptedSet := make(map[string]bool, len(acceptedOrder))
		for _, k := range acceptedOrder {
			acceptedSet[k] = true
		}
		var next []string
		for _, k := range remaining {
			if !acceptedSet[k] || requiredSet[k] {
				next = append(next, k)
			}
		}
		remaining = next
	}

	if len(sectors) == 0 {
		ms, err := sector.EncodeMetadata(sector.RequiredInOrder, metadata, opts.ColorDepth, opts.SectorHeight, opts.SectorWidth, opts.ECCRate)
		if err != nil {
			return nil, fmt.Errorf("layout: building minimal metadata sector: %w", err)
		}
		sectors = append(sectors, ms)
	}
	return sectors, nil
}
