package sector

import (
	"bytes"
	"testing"

	"github.com/colorsafe/colorsafe/internal/dotgrid"
)

func TestDataRowCount(t *testing.T) {
	if got := DataRowCount(64, 0.2); got != 52 {
		t.Errorf("DataRowCount(64, 0.2) = %d, want 52", got)
	}
}

// TestEncodeDecode_RoundTrip covers the mandatory property: a clean
// (unperturbed) sector decodes back to its original payload.
func TestEncodeDecode_RoundTrip(t *testing.T) {
	const height, width, colorDepth = 32, 32, 1
	const eccRate = 0.2

	bpr := dotgrid.RowByteCount(colorDepth, width)
	dataRowCount := DataRowCount(height, eccRate)
	payload := make([]byte, dataRowCount*bpr)
	for i := range payload {
		payload[i] = byte(i * 31)
	}

	s, err := Encode(payload, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	channels, err := s.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(channels) != height*width {
		t.Fatalf("len(channels) = %d, want %d", len(channels), height*width)
	}

	decoded, err := Decode(channels, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.AllBlocksOK() {
		t.Fatalf("decoded.BlockOK = %v, want all true", decoded.BlockOK)
	}
	if !bytes.Equal(decoded.DataRows, payload) {
		t.Errorf("decoded payload mismatch")
	}
}

func TestIsMagicRow(t *testing.T) {
	const height, width, colorDepth = 16, 16, 1
	const eccRate = 0.2

	magic := dotgrid.MagicRowBytes(colorDepth, width)
	s, err := Encode(magic, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !s.IsMagicRow() {
		t.Error("IsMagicRow() = false for a sector whose payload starts with the magic bytes")
	}

	s2, err := Encode([]byte{1, 2, 3}, colorDepth, height, width, eccRate)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if s2.IsMagicRow() {
		t.Error("IsMagicRow() = true for ordinary payload data")
	}
}

func TestEncode_RejectsBadWidth(t *testing.T) {
	if _, err := Encode(nil, 1, 16, 10, 0.2); err == nil {
		t.Error("Encode with width not a multiple of 8: want error, got nil")
	}
}
