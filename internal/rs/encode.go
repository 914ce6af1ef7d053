package rs

import "github.com/colorsafe/colorsafe/internal/pool"

// Codec is a Reed-Solomon encoder/decoder for a fixed number of parity
// bytes. A Codec has no mutable state past construction and is safe
// for concurrent use by independent sectors (spec's no-shared-state
// concurrency model).
type Codec struct {
	parity    int
	generator []byte // degree `parity`, coefficients highest-to-lowest, leading 1 implicit and omitted
}

// NewCodec builds a Codec that appends parity bytes of Reed-Solomon
// error correction to each encoded block. parity must be in [1, 254].
func NewCodec(parity int) *Codec {
	if parity < 1 || parity > 254 {
		panic("rs: parity out of range")
	}
	return &Codec{parity: parity, generator: computeGenerator(parity)}
}

// ParityLen returns the number of parity bytes this Codec appends.
func (c *Codec) ParityLen() int { return c.parity }

// MaxMessageLen returns the largest message length this Codec can
// encode into a single RSBlockSizeMax-bounded block.
func (c *Codec) MaxMessageLen(blockSizeMax int) int {
	n := blockSizeMax - c.parity
	if n < 0 {
		return 0
	}
	return n
}

// computeGenerator builds the degree-`degree` generator polynomial
// product(x - root^i) for i in [0, degree), following
// reedSolomonComputeDivisor's construction over this same field.
func computeGenerator(degree int) []byte {
	result := make([]byte, degree)
	result[degree-1] = 1

	root := byte(1)
	for i := 0; i < degree; i++ {
		for j := 0; j < degree; j++ {
			result[j] = gfMul(result[j], root)
			if j+1 < degree {
				result[j] ^= result[j+1]
			}
		}
		root = gfMul(root, generatorRoot)
	}
	return result
}

// Encode appends c.ParityLen() parity bytes to message and returns the
// full codeword. message must not exceed MaxMessageLen for the
// intended block size. The returned slice is freshly allocated; the
// scratch buffer used during polynomial division comes from the
// shared pool and is returned before Encode returns.
func (c *Codec) Encode(message []byte) []byte {
	remainder := c.remainder(message)
	out := make([]byte, len(message)+c.parity)
	copy(out, message)
	copy(out[len(message):], remainder)
	return out
}

// remainder performs polynomial long division of message*x^parity by
// the generator polynomial, mirroring reedSolomonComputeRemainder.
func (c *Codec) remainder(message []byte) []byte {
	result := pool.Get(c.parity)
	defer pool.Put(result)
	for i := range result {
		result[i] = 0
	}

	for _, b := range message {
		factor := b ^ result[0]
		copy(result, result[1:])
		result[len(result)-1] = 0

		n := len(result)
		if len(c.generator) < n {
			n = len(c.generator)
		}
		for i := 0; i < n; i++ {
			result[i] ^= gfMul(c.generator[i], factor)
		}
	}

	out := make([]byte, c.parity)
	copy(out, result)
	return out
}
