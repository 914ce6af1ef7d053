package sector

import "testing"

func TestMetadataRoundTrip(t *testing.T) {
	const height, width, colorDepth = 64, 64, 1
	const eccRate = 0.2

	metadata := map[string]string{
		TagECCMode:       "1",
		TagDataMode:      "1",
		TagPageNumber:    "0",
		TagMetadataCount: "1",
		TagFilename:      "report",
		TagFileExtension: "pdf",
	}
	order := append(append([]string{}, RequiredInOrder...), TagFilename, TagFileExtension)

	ms, err := EncodeMetadata(order, metadata, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	for _, k := range RequiredInOrder {
		if _, ok := ms.Metadata[k]; !ok {
			t.Fatalf("required key %q missing from accepted metadata", k)
		}
	}

	channels, err := ms.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	decoded, err := Decode(channels, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.IsMagicRow() {
		t.Fatal("decoded metadata sector does not report IsMagicRow")
	}

	got, err := DecodeMetadata(decoded)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	for k, v := range ms.Metadata {
		if got[k] != v {
			t.Errorf("key %q: got %q, want %q", k, got[k], v)
		}
	}
}

func TestUpdateMetadata(t *testing.T) {
	const height, width, colorDepth = 64, 64, 1
	const eccRate = 0.2

	metadata := map[string]string{
		TagECCMode:       "1",
		TagDataMode:      "1",
		TagPageNumber:    "0",
		TagMetadataCount: "1",
	}
	ms, err := EncodeMetadata(RequiredInOrder, metadata, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}

	if err := ms.UpdateMetadata(RequiredInOrder, TagPageNumber, "3"); err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	if ms.Metadata[TagPageNumber] != "3" {
		t.Errorf("TagPageNumber = %q, want 3", ms.Metadata[TagPageNumber])
	}
}

func TestEncodeMetadata_OverflowDropsLowPriorityKeys(t *testing.T) {
	const height, width, colorDepth = 16, 32, 1
	const eccRate = 0.2

	metadata := map[string]string{
		TagECCMode:       "1",
		TagDataMode:      "1",
		TagPageNumber:    "0",
		TagMetadataCount: "1",
		TagFilename:      "a-very-long-filename-that-will-not-fit-in-a-tiny-sector.bin",
	}
	order := append(append([]string{}, RequiredInOrder...), TagFilename)

	ms, err := EncodeMetadata(order, metadata, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	for _, k := range RequiredInOrder {
		if _, ok := ms.Metadata[k]; !ok {
			t.Errorf("required key %q dropped from a too-small sector", k)
		}
	}
	if _, ok := ms.Metadata[TagFilename]; ok {
		t.Error("expected the oversized filename to be dropped, but it was accepted")
	}
}
