package layout

import (
	"testing"

	"github.com/colorsafe/colorsafe/internal/sector"
)

func makeDataSectors(t *testing.T, n int) []*sector.Sector {
	t.Helper()
	out := make([]*sector.Sector, n)
	for i := range out {
		s, err := sector.Encode([]byte{byte(i)}, 1, 16, 16, 0.2)
		if err != nil {
			t.Fatalf("sector.Encode: %v", err)
		}
		out[i] = s
	}
	return out
}

func makeMetadataSectors(t *testing.T, n int) []*sector.MetadataSector {
	t.Helper()
	out := make([]*sector.MetadataSector, n)
	metadata := map[string]string{
		sector.TagECCMode: "1", sector.TagDataMode: "1",
		sector.TagPageNumber: "0", sector.TagMetadataCount: "1",
	}
	for i := range out {
		ms, err := sector.EncodeMetadata(sector.RequiredInOrder, metadata, 1, 16, 16, 0.2)
		if err != nil {
			t.Fatalf("sector.EncodeMetadata: %v", err)
		}
		out[i] = ms
	}
	return out
}

// TestBuildPage_PlacementReproducible exercises spec.md 8's placement
// reproducibility property: identical (pageNumber, sectorsV, sectorsH,
// metadataCount) must yield bit-identical metadata positions.
func TestBuildPage_PlacementReproducible(t *testing.T) {
	data := makeDataSectors(t, 14)
	md := makeMetadataSectors(t, 2)

	p1, err := BuildPage(data, md, 5, 4, 4)
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	p2, err := BuildPage(data, md, 5, 4, 4)
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}

	if len(p1.MetadataPositions) != len(p2.MetadataPositions) {
		t.Fatalf("metadata position count differs: %d vs %d", len(p1.MetadataPositions), len(p2.MetadataPositions))
	}
	for i := range p1.MetadataPositions {
		if p1.MetadataPositions[i] != p2.MetadataPositions[i] {
			t.Errorf("position %d differs: %d vs %d", i, p1.MetadataPositions[i], p2.MetadataPositions[i])
		}
	}
}

func TestBuildPage_DifferentPageNumberDiverges(t *testing.T) {
	data := makeDataSectors(t, 14)
	md := makeMetadataSectors(t, 2)

	p1, err := BuildPage(data, md, 1, 4, 4)
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	p2, err := BuildPage(data, md, 2, 4, 4)
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}

	same := len(p1.MetadataPositions) == len(p2.MetadataPositions)
	if same {
		for i := range p1.MetadataPositions {
			if p1.MetadataPositions[i] != p2.MetadataPositions[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different page numbers produced identical metadata placement")
	}
}

func TestBuildPage_FillsAllSlots(t *testing.T) {
	data := makeDataSectors(t, 14)
	md := makeMetadataSectors(t, 2)

	page, err := BuildPage(data, md, 9, 4, 4)
	if err != nil {
		t.Fatalf("BuildPage: %v", err)
	}
	if len(page.Sectors) != 16 {
		t.Fatalf("len(page.Sectors) = %d, want 16", len(page.Sectors))
	}
	for i, s := range page.Sectors {
		if s == nil {
			t.Errorf("slot %d left empty", i)
		}
	}
}

func TestBuildPage_WrongSectorCount(t *testing.T) {
	data := makeDataSectors(t, 10)
	md := makeMetadataSectors(t, 2)

	if _, err := BuildPage(data, md, 0, 4, 4); err == nil {
		t.Error("BuildPage with mismatched data sector count: want error, got nil")
	}
}
