// Package sector implements the Sector, the rectangular unit a Page
// tiles: a vertical run of data rows, one magic row, and a run of
// Reed-Solomon parity rows. Grounded on the Sector/MetadataSector
// classes of the reference implementation (see original_source in
// the teacher's retrieval pack), rebuilt over internal/dotgrid and
// internal/rs.
package sector

import (
	"errors"
	"fmt"
	"math"

	"github.com/colorsafe/colorsafe/internal/csconst"
	"github.com/colorsafe/colorsafe/internal/dotgrid"
	"github.com/colorsafe/colorsafe/internal/pool"
	"github.com/colorsafe/colorsafe/internal/rs"
)

// ErrUncorrectable means one or more of a sector's RS blocks could not
// be corrected; Decode still returns the best-effort data with
// Sector.BlockOK reporting which blocks failed.
var ErrUncorrectable = errors.New("sector: one or more RS blocks uncorrectable")

// Sector is a fully-decoded or fully-built rectangular block of dots:
// DataRows carry payload bytes, EccRows carry Reed-Solomon parity for
// each RS block spanning the sector, and they are separated by a
// single magic row.
type Sector struct {
	Height, Width int
	ColorDepth    int
	ECCRate       float64

	DataRows []byte // raw data bytes, row-major, RowByteCount(ColorDepth,Width) bytes per row
	ECCRows  []byte // raw ECC bytes, same row layout, magic row excluded

	// BlockOK[i] reports whether the i'th RS block decoded cleanly.
	// Populated only by Decode.
	BlockOK []bool
}

// DataRowCount returns the number of rows of a height-row, eccRate
// sector given to data (as opposed to the magic row or ECC rows).
func DataRowCount(height int, eccRate float64) int {
	return int(math.Floor(float64(height-csconst.MagicRowHeight) / (1 + eccRate)))
}

// blockPlan describes the Reed-Solomon block partition of one
// sector: parallel slices of total block size, data portion, and
// parity portion, summing to totalDataBytes and totalECCBytes
// respectively.
type blockPlan struct {
	rsBlockSizes   []int
	dataBlockSizes []int
	eccBlockSizes  []int
}

// planBlocks splits the sector's (height-1)*width*colorDepth/8 bytes
// of data+ECC capacity into RS blocks no larger than RSBlockSizeMax,
// following getBlockSizes: when the capacity doesn't divide evenly,
// the last full block and the short tail block are replaced by the
// ceiling and floor of their average. Each block's data/ECC split follows the
// sector's overall data/ECC row ratio.
func planBlocks(height, width, colorDepth int, eccRate float64) blockPlan {
	dataRowCount := DataRowCount(height, eccRate)
	eccRowCount := height - csconst.MagicRowHeight - dataRowCount

	totalBytes := (height - 1) * width * colorDepth / csconst.ByteSize

	var sizes []int
	if totalBytes <= csconst.RSBlockSizeMax {
		sizes = []int{totalBytes}
	} else {
		n := totalBytes / csconst.RSBlockSizeMax
		sizes = make([]int, n)
		for i := range sizes {
			sizes[i] = csconst.RSBlockSizeMax
		}
		if rem := totalBytes % csconst.RSBlockSizeMax; rem != 0 {
			sizes = append(sizes, rem)
			last := sizes[len(sizes)-1]
			secondLast := sizes[len(sizes)-2]
			lastVal := int(math.Floor(float64(last+secondLast) / 2.0))
			secondLastVal := int(math.Ceil(float64(last+secondLast) / 2.0))
			sizes[len(sizes)-1] = lastVal
			sizes[len(sizes)-2] = secondLastVal
		}
	}

	plan := blockPlan{rsBlockSizes: sizes}
	dataRowPct := float64(dataRowCount) / float64(height-csconst.MagicRowHeight)
	eccRowPct := float64(eccRowCount) / float64(height-csconst.MagicRowHeight)
	for _, size := range sizes {
		plan.dataBlockSizes = append(plan.dataBlockSizes, int(math.Floor(float64(size)*dataRowPct)))
		plan.eccBlockSizes = append(plan.eccBlockSizes, int(math.Ceil(float64(size)*eccRowPct)))
	}
	return plan
}

func bytesPerRow(width, colorDepth int) int {
	return dotgrid.RowByteCount(colorDepth, width)
}

// Encode builds a Sector carrying data (zero-padded to fill the
// sector's data capacity) plus its Reed-Solomon parity rows.
func Encode(data []byte, colorDepth, height, width int, eccRate float64) (*Sector, error) {
	if width <= 0 || width%csconst.ByteSize != 0 {
		return nil, fmt.Errorf("sector: width %d must be a positive multiple of %d", width, csconst.ByteSize)
	}

	dataRowCount := DataRowCount(height, eccRate)
	bpr := bytesPerRow(width, colorDepth)
	dataCap := dataRowCount * bpr

	dataRows := make([]byte, dataCap)
	copy(dataRows, data)

	plan := planBlocks(height, width, colorDepth, eccRate)

	eccData := make([]byte, 0, sum(plan.eccBlockSizes))
	offset := 0
	for i, rsSize := range plan.rsBlockSizes {
		msgLen := plan.dataBlockSizes[i]
		parityLen := plan.eccBlockSizes[i]
		if rsSize != msgLen+parityLen {
			// Rounding in planBlocks may leave a one-byte mismatch; the
			// parity length is authoritative for the RS codec.
			msgLen = rsSize - parityLen
		}
		if parityLen <= 0 {
			offset += msgLen
			continue
		}

		block := pool.Get(msgLen)
		end := offset + msgLen
		if end > len(dataRows) {
			end = len(dataRows)
		}
		for i := range block {
			block[i] = 0
		}
		if offset < len(dataRows) {
			copy(block, dataRows[offset:end])
		}
		offset += msgLen

		codec := rs.NewCodec(parityLen)
		codeword := codec.Encode(block)
		eccData = append(eccData, codeword[msgLen:]...)
		pool.Put(block)
	}

	eccRowCount := height - csconst.MagicRowHeight - dataRowCount
	eccRows := make([]byte, eccRowCount*bpr)
	copy(eccRows, eccData)

	return &Sector{
		Height: height, Width: width, ColorDepth: colorDepth, ECCRate: eccRate,
		DataRows: dataRows, ECCRows: eccRows,
	}, nil
}

// Decode splits the sector's dot grid into data/ECC rows around the
// magic row, then corrects each RS block in place. A block that fails
// correction leaves its data bytes unchanged and is flagged in
// BlockOK; Decode never returns an error solely for that reason —
// callers inspect BlockOK for partial-recovery reporting.
func Decode(channels []dotgrid.ColorChannels, colorDepth, height, width int, eccRate float64) (*Sector, error) {
	if width <= 0 || width%csconst.ByteSize != 0 {
		return nil, fmt.Errorf("sector: width %d must be a positive multiple of %d", width, csconst.ByteSize)
	}
	if len(channels) != height*width {
		return nil, fmt.Errorf("sector: got %d channels, want %d (height*width)", len(channels), height*width)
	}

	dataRowCount := DataRowCount(height, eccRate)

	var dataRows, eccRows []byte
	for row := 0; row < height; row++ {
		rowChannels := channels[row*width : (row+1)*width]
		bytesOut, err := dotgrid.DecodeRow(rowChannels, colorDepth, width, row)
		if err != nil {
			return nil, fmt.Errorf("sector: decoding row %d: %w", row, err)
		}
		switch {
		case row < dataRowCount:
			dataRows = append(dataRows, bytesOut...)
		case row > dataRowCount:
			eccRows = append(eccRows, bytesOut...)
		}
	}

	plan := planBlocks(height, width, colorDepth, eccRate)
	ok := make([]bool, len(plan.rsBlockSizes))

	dOffset, eOffset := 0, 0
	for i, rsSize := range plan.rsBlockSizes {
		msgLen := plan.dataBlockSizes[i]
		parityLen := plan.eccBlockSizes[i]
		if rsSize != msgLen+parityLen {
			msgLen = rsSize - parityLen
		}
		if parityLen <= 0 {
			ok[i] = true
			dOffset += msgLen
			continue
		}

		codeword := pool.Get(msgLen + parityLen)
		for i := range codeword {
			codeword[i] = 0
		}
		dEnd := dOffset + msgLen
		if dEnd > len(dataRows) {
			dEnd = len(dataRows)
		}
		if dOffset < len(dataRows) {
			copy(codeword, dataRows[dOffset:dEnd])
		}
		eEnd := eOffset + parityLen
		if eEnd > len(eccRows) {
			eEnd = len(eccRows)
		}
		if eOffset < len(eccRows) {
			copy(codeword[msgLen:], eccRows[eOffset:eEnd])
		}

		codec := rs.NewCodec(parityLen)
		corrected, err := codec.Decode(codeword)
		if err == nil {
			copy(dataRows[dOffset:dEnd], corrected)
			ok[i] = true
		}
		pool.Put(codeword)

		dOffset += msgLen
		eOffset += parityLen
	}

	return &Sector{
		Height: height, Width: width, ColorDepth: colorDepth, ECCRate: eccRate,
		DataRows: dataRows, ECCRows: eccRows, BlockOK: ok,
	}, nil
}

// AllBlocksOK reports whether every RS block in the sector decoded
// cleanly (or whether Encode built it, in which case BlockOK is nil).
func (s *Sector) AllBlocksOK() bool {
	for _, ok := range s.BlockOK {
		if !ok {
			return false
		}
	}
	return true
}

// IsMagicRow reports whether the sector's first bytes match a magic
// row, the signal that this sector carries metadata rather than
// payload data.
func (s *Sector) IsMagicRow() bool {
	magic := dotgrid.MagicRowBytes(s.ColorDepth, s.Width)
	if len(s.DataRows) < len(magic) {
		return false
	}
	for i, b := range magic {
		if s.DataRows[i] != b {
			return false
		}
	}
	return true
}

// Rows renders the sector back into a flat dot grid: data rows, the
// magic row, then ECC rows, each encoded via dotgrid.EncodeRow.
func (s *Sector) Rows() ([]dotgrid.ColorChannels, error) {
	dataRowCount := DataRowCount(s.Height, s.ECCRate)
	bpr := bytesPerRow(s.Width, s.ColorDepth)

	out := make([]dotgrid.ColorChannels, 0, s.Height*s.Width)
	for row := 0; row < dataRowCount; row++ {
		start := row * bpr
		end := start + bpr
		var chunk []byte
		if start < len(s.DataRows) {
			if end > len(s.DataRows) {
				end = len(s.DataRows)
			}
			chunk = s.DataRows[start:end]
		}
		enc, err := dotgrid.EncodeRow(chunk, s.ColorDepth, s.Width, row)
		if err != nil {
			return nil, fmt.Errorf("sector: encoding data row %d: %w", row, err)
		}
		out = append(out, enc...)
	}

	magic, err := dotgrid.EncodeRow(dotgrid.MagicRowBytes(s.ColorDepth, s.Width), s.ColorDepth, s.Width, dataRowCount)
	if err != nil {
		return nil, fmt.Errorf("sector: encoding magic row: %w", err)
	}
	out = append(out, magic...)

	eccRowCount := s.Height - csconst.MagicRowHeight - dataRowCount
	for row := 0; row < eccRowCount; row++ {
		start := row * bpr
		end := start + bpr
		var chunk []byte
		if start < len(s.ECCRows) {
			if end > len(s.ECCRows) {
				end = len(s.ECCRows)
			}
			chunk = s.ECCRows[start:end]
		}
		enc, err := dotgrid.EncodeRow(chunk, s.ColorDepth, s.Width, row)
		if err != nil {
			return nil, fmt.Errorf("sector: encoding ECC row %d: %w", row, err)
		}
		out = append(out, enc...)
	}
	return out, nil
}

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}
