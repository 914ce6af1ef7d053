package sector

import (
	"bytes"
	"fmt"

	"github.com/colorsafe/colorsafe/internal/csconst"
	"github.com/colorsafe/colorsafe/internal/dotgrid"
)

// Metadata tag keys: 3-byte ASCII identifiers for the typed key/value
// pairs a MetadataSector carries.
const (
	TagECCMode       = "ECC"
	TagDataMode      = "DAT"
	TagPageNumber    = "PAG"
	TagMetadataCount = "MET"
	TagAmbiguous     = "AMB"
	TagCRC32C        = "CRC"
	TagCreationTime  = "TIM"
	TagECCRate       = "ECR"
	TagFileExtension = "EXT"
	TagFileSize      = "SIZ"
	TagFilename      = "NAM"
	TagMajorVersion  = "MAJ"
	TagMinorVersion  = "MIN"
	TagRevision      = "REV"
	TagTotalPages    = "TOT"
)

// RequiredInOrder lists the tags that must appear, in this order, in
// every MetadataSector for a decode to consider it complete.
var RequiredInOrder = []string{TagECCMode, TagDataMode, TagPageNumber, TagMetadataCount}

const (
	metadataInitPaddingBytes = 1
	colorDepthFieldBytes     = 1
	metadataSchemeBytes      = 3
	metadataEndPaddingBytes  = 1
	metadataDefaultScheme    = 1
)

// MetadataSector is a Sector whose data begins with a magic row,
// followed by a small typed header (scheme + colorDepth, both XORed
// against Byte55 the way the reference header does), followed by
// packed "key\x00value\x00" pairs.
type MetadataSector struct {
	*Sector
	Metadata map[string]string
}

func headerColorDepthBytes(colorDepth int) []byte {
	out := make([]byte, colorDepth)
	for i := range out {
		out[i] = byte(colorDepth) ^ csconst.Byte55
	}
	return out
}

func headerSchemeBytes(colorDepth int) []byte {
	out := make([]byte, 0, colorDepth*metadataSchemeBytes)
	for i := 0; i < colorDepth; i++ {
		out = append(out, byte(metadataDefaultScheme)^csconst.Byte55)
	}
	for i := 0; i < colorDepth*(metadataSchemeBytes-1); i++ {
		out = append(out, csconst.Byte55)
	}
	return out
}

func headerBytes(colorDepth, width int) []byte {
	out := append([]byte{}, dotgrid.MagicRowBytes(colorDepth, width)...)
	for i := 0; i < metadataInitPaddingBytes*colorDepth; i++ {
		out = append(out, csconst.ByteAA)
	}
	out = append(out, headerColorDepthBytes(colorDepth)...)
	out = append(out, headerSchemeBytes(colorDepth)...)
	for i := 0; i < metadataEndPaddingBytes*colorDepth; i++ {
		out = append(out, csconst.ByteAA)
	}
	return out
}

// packOrdered packs metadata, in the exact key order given, into the
// header-prefixed data stream, accepting a key/value pair only if it
// still fits the sector's data row capacity. It returns the bytes to
// place in the sector and the subset of keys that were actually
// accepted (in encounter order).
func packOrdered(height, width, colorDepth int, eccRate float64, order []string, metadata map[string]string) ([]byte, []string) {
	data := headerBytes(colorDepth, width)
	maxDataPerSector := DataRowCount(height, eccRate) * width * colorDepth / csconst.ByteSize

	var accepted []string
	for _, key := range order {
		value := metadata[key]
		kv := append([]byte(key), 0)
		kv = append(kv, []byte(value)...)
		kv = append(kv, 0)

		if len(data)+len(kv) < maxDataPerSector {
			data = append(data, kv...)
			accepted = append(accepted, key)
		}
	}
	return data, accepted
}

// EncodeMetadata builds a MetadataSector carrying as much of metadata
// (visited in the given key order) as fits the sector's capacity.
// Keys that didn't fit are simply omitted from the returned
// MetadataSector.Metadata; callers drive the "drop the largest
// remaining key and retry" policy (spec.md 9) by inspecting which
// keys were accepted.
func EncodeMetadata(order []string, metadata map[string]string, colorDepth, height, width int, eccRate float64) (*MetadataSector, error) {
	data, accepted := packOrdered(height, width, colorDepth, eccRate, order, metadata)

	s, err := Encode(data, colorDepth, height, width, eccRate)
	if err != nil {
		return nil, fmt.Errorf("sector: encoding metadata sector: %w", err)
	}

	out := make(map[string]string, len(accepted))
	for _, k := range accepted {
		out[k] = metadata[k]
	}
	return &MetadataSector{Sector: s, Metadata: out}, nil
}

// UpdateMetadata rewrites a MetadataSector's key "key" to "value" and
// re-packs the whole header+payload. Used for fields only known after
// all other sectors are built (page number, total pages, metadata
// count per page). The new value must not be longer than the
// original or accepted metadata could be evicted.
func (m *MetadataSector) UpdateMetadata(order []string, key, value string) error {
	updated := make(map[string]string, len(m.Metadata)+1)
	for k, v := range m.Metadata {
		updated[k] = v
	}
	updated[key] = value

	data, accepted := packOrdered(m.Height, m.Width, m.ColorDepth, m.ECCRate, order, updated)
	s, err := Encode(data, m.ColorDepth, m.Height, m.Width, m.ECCRate)
	if err != nil {
		return fmt.Errorf("sector: updating metadata: %w", err)
	}
	m.Sector = s

	out := make(map[string]string, len(accepted))
	for _, k := range accepted {
		out[k] = updated[k]
	}
	m.Metadata = out
	return nil
}

// DecodeMetadata parses a decoded Sector's data rows as a metadata
// header followed by packed "key\x00value\x00" pairs, returning the
// recovered key/value map. It returns an error if the header's magic
// row prefix is missing (the caller should only invoke this after
// Sector.IsMagicRow reports true).
func DecodeMetadata(s *Sector) (map[string]string, error) {
	header := headerBytes(s.ColorDepth, s.Width)
	if len(s.DataRows) < len(header) {
		return nil, fmt.Errorf("sector: metadata payload shorter than header")
	}
	magic := dotgrid.MagicRowBytes(s.ColorDepth, s.Width)
	if !bytes.Equal(s.DataRows[:len(magic)], magic) {
		return nil, fmt.Errorf("sector: missing magic row prefix")
	}

	rest := s.DataRows[len(header):]
	rest = bytes.TrimRight(rest, "\x00")

	out := make(map[string]string)
	for len(rest) > 0 {
		keyEnd := bytes.IndexByte(rest, 0)
		if keyEnd < 0 {
			break
		}
		key := string(rest[:keyEnd])
		rest = rest[keyEnd+1:]

		valEnd := bytes.IndexByte(rest, 0)
		if valEnd < 0 {
			out[key] = string(rest)
			break
		}
		out[key] = string(rest[:valEnd])
		rest = rest[valEnd+1:]
	}
	return out, nil
}
