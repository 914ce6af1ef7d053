package dotgrid

import (
	"reflect"
	"testing"
)

func TestRowByteCount(t *testing.T) {
	if got := RowByteCount(2, 16); got != 4 {
		t.Errorf("RowByteCount(2, 16) = %d, want 4", got)
	}
	if got := RowByteCount(1, 64); got != 8 {
		t.Errorf("RowByteCount(1, 64) = %d, want 8", got)
	}
}

func TestEncodeRow_RejectsBadWidth(t *testing.T) {
	if _, err := EncodeRow(nil, 1, 10, 0); err == nil {
		t.Error("EncodeRow with width not a multiple of 8: want error, got nil")
	}
	if _, err := DecodeRow(nil, 1, 10, 0); err == nil {
		t.Error("DecodeRow with width not a multiple of 8: want error, got nil")
	}
}

func TestRowRoundTrip(t *testing.T) {
	for _, colorDepth := range []int{1, 2, 3, 4, 6} {
		const width = 32
		in := make([]byte, RowByteCount(colorDepth, width))
		for i := range in {
			in[i] = byte(7*i + 3)
		}
		channels, err := EncodeRow(in, colorDepth, width, 0)
		if err != nil {
			t.Fatalf("colorDepth=%d: EncodeRow: %v", colorDepth, err)
		}
		if len(channels) != width {
			t.Fatalf("colorDepth=%d: got %d dots, want %d", colorDepth, len(channels), width)
		}
		out, err := DecodeRow(channels, colorDepth, width, 0)
		if err != nil {
			t.Fatalf("colorDepth=%d: DecodeRow: %v", colorDepth, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("colorDepth=%d: round trip mismatch: got %v, want %v", colorDepth, out, in)
		}
	}
}

func TestMagicRowBytes(t *testing.T) {
	got := MagicRowBytes(2, 16)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for _, b := range got {
		if b != 0x99 {
			t.Errorf("got byte 0x%02x, want 0x99", b)
		}
	}
}

func TestMagicRowRoundTrip(t *testing.T) {
	const colorDepth, width = 1, 64
	magic := MagicRowBytes(colorDepth, width)
	channels, err := EncodeRow(magic, colorDepth, width, 0)
	if err != nil {
		t.Fatalf("EncodeRow: %v", err)
	}
	out, err := DecodeRow(channels, colorDepth, width, 0)
	if err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if !reflect.DeepEqual(magic, out) {
		t.Errorf("got %v, want %v", out, magic)
	}
}

// TestDecodeRowMasked_LiteralScenario reproduces the worked example:
// 16 magenta dots at colorDepth=2 decode, under the row's XOR mask, to
// [170, 85, 170, 85]. Row 1 is odd, so RowXORMask picks ByteAA (0xAA);
// XORing the unmasked decode ([0, 255, 0, 255]) against 0xAA yields
// the expected bytes.
func TestDecodeRowMasked_LiteralScenario(t *testing.T) {
	const colorDepth, width, row = 2, 16, 1
	magenta := ColorChannels{R: 1.0, G: 0.0, B: 1.0}
	channels := make([]ColorChannels, width)
	for i := range channels {
		channels[i] = magenta
	}

	unmasked, err := DecodeRow(channels, colorDepth, width, row)
	if err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	want := []byte{0, 255, 0, 255}
	if !reflect.DeepEqual(unmasked, want) {
		t.Fatalf("unmasked decode = %v, want %v", unmasked, want)
	}

	masked, err := DecodeRowMasked(channels, colorDepth, width, row)
	if err != nil {
		t.Fatalf("DecodeRowMasked: %v", err)
	}
	wantMasked := []byte{170, 85, 170, 85}
	if !reflect.DeepEqual(masked, wantMasked) {
		t.Errorf("masked decode = %v, want %v", masked, wantMasked)
	}
}

func TestRowXORMask(t *testing.T) {
	if got := RowXORMask(0); got != 0x55 {
		t.Errorf("RowXORMask(0) = 0x%02x, want 0x55", got)
	}
	if got := RowXORMask(1); got != 0xAA {
		t.Errorf("RowXORMask(1) = 0x%02x, want 0xAA", got)
	}
	if got := RowXORMask(2); got != 0x55 {
		t.Errorf("RowXORMask(2) = 0x%02x, want 0x55", got)
	}
}

func TestEncodeDecodeRowMasked_RoundTrip(t *testing.T) {
	const colorDepth, width = 1, 16
	in := []byte{0x3C, 0x81}
	for row := 0; row < 3; row++ {
		channels, err := EncodeRowMasked(in, colorDepth, width, row)
		if err != nil {
			t.Fatalf("row=%d: EncodeRowMasked: %v", row, err)
		}
		out, err := DecodeRowMasked(channels, colorDepth, width, row)
		if err != nil {
			t.Fatalf("row=%d: DecodeRowMasked: %v", row, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Errorf("row=%d: got %v, want %v", row, out, in)
		}
	}
}
