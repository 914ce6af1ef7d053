package dotgrid

import (
	"fmt"

	"github.com/colorsafe/colorsafe/internal/csconst"
)

// RowByteCount returns the number of source bytes a row of the given
// width carries at colorDepth: width/ByteSize DotBytes, each carrying
// colorDepth bytes.
func RowByteCount(colorDepth, width int) int {
	return (width / ByteSize) * colorDepth
}

// MagicRowBytes returns the fixed byte pattern for a sector's magic
// row: csconst.MagicByte repeated to fill the row.
func MagicRowBytes(colorDepth, width int) []byte {
	out := make([]byte, RowByteCount(colorDepth, width))
	for i := range out {
		out[i] = csconst.MagicByte
	}
	return out
}

// RowXORMask returns the per-row XOR mask byte: Byte55 on even row
// numbers, ByteAA on odd. The reference decoder computes this value
// but never applies it (spec.md 9); EncodeRow/DecodeRow therefore
// ignore it, and it is exposed only so callers that need to reproduce
// the masked behavior (EncodeRowMasked/DecodeRowMasked) can do so.
func RowXORMask(rowNumber int) byte {
	if rowNumber%2 == 0 {
		return csconst.Byte55
	}
	return csconst.ByteAA
}

func validateWidth(width int) error {
	if width <= 0 || width%ByteSize != 0 {
		return fmt.Errorf("dotgrid: row width %d must be a positive multiple of %d", width, ByteSize)
	}
	return nil
}

// EncodeRow packs bytesList into width Dots at colorDepth, one DotByte
// per ByteSize-wide span. bytesList is padded with zero bytes if
// shorter than RowByteCount(colorDepth, width), and truncated if
// longer. rowNumber is accepted for signature symmetry with
// EncodeRowMasked but does not affect the result.
func EncodeRow(bytesList []byte, colorDepth, width, rowNumber int) ([]ColorChannels, error) {
	if err := validateWidth(width); err != nil {
		return nil, err
	}
	need := RowByteCount(colorDepth, width)
	padded := make([]byte, need)
	copy(padded, bytesList)

	dotBytes := width / ByteSize
	out := make([]ColorChannels, 0, width)
	for db := 0; db < dotBytes; db++ {
		chunk := padded[db*colorDepth : (db+1)*colorDepth]
		out = append(out, EncodeByte(chunk, colorDepth)...)
	}
	return out, nil
}

// DecodeRow is the inverse of EncodeRow: it recovers
// RowByteCount(colorDepth, width) bytes from exactly width dot colors.
func DecodeRow(channels []ColorChannels, colorDepth, width, rowNumber int) ([]byte, error) {
	if err := validateWidth(width); err != nil {
		return nil, err
	}
	if len(channels) != width {
		return nil, fmt.Errorf("dotgrid: DecodeRow: got %d dots, want %d", len(channels), width)
	}

	dotBytes := width / ByteSize
	out := make([]byte, 0, RowByteCount(colorDepth, width))
	for db := 0; db < dotBytes; db++ {
		chunk := channels[db*ByteSize : (db+1)*ByteSize]
		out = append(out, DecodeByte(chunk, colorDepth)...)
	}
	return out, nil
}

// EncodeRowMasked and DecodeRowMasked apply RowXORMask around the
// ordinary codec path. Nothing in the production encode/decode paths
// calls these; they exist to exercise the masking arithmetic the
// reference implementation computes but discards.
func EncodeRowMasked(bytesList []byte, colorDepth, width, rowNumber int) ([]ColorChannels, error) {
	mask := RowXORMask(rowNumber)
	masked := make([]byte, len(bytesList))
	for i, b := range bytesList {
		masked[i] = b ^ mask
	}
	return EncodeRow(masked, colorDepth, width, rowNumber)
}

func DecodeRowMasked(channels []ColorChannels, colorDepth, width, rowNumber int) ([]byte, error) {
	out, err := DecodeRow(channels, colorDepth, width, rowNumber)
	if err != nil {
		return nil, err
	}
	mask := RowXORMask(rowNumber)
	for i, b := range out {
		out[i] = b ^ mask
	}
	return out, nil
}
