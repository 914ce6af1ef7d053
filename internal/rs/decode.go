package rs

import "errors"

// ErrUncorrectable is returned when a block carries more errors than
// its parity can locate and fix. Decode always re-verifies a proposed
// correction's syndromes before declaring success; a bug in the
// correction machinery therefore surfaces as this error rather than as
// silently wrong output.
var ErrUncorrectable = errors.New("rs: block uncorrectable")

// Decode corrects and strips parity from a codeword produced by
// Encode, returning the original message. If the block is clean (no
// errors), Decode returns it with parity removed without running the
// correction machinery. Codeword is not modified.
func (c *Codec) Decode(codeword []byte) ([]byte, error) {
	if len(codeword) <= c.parity {
		return nil, errors.New("rs: codeword shorter than parity length")
	}

	syndromes := c.syndromes(codeword)
	if allZero(syndromes) {
		msg := make([]byte, len(codeword)-c.parity)
		copy(msg, codeword[:len(codeword)-c.parity])
		return msg, nil
	}

	corrected, err := c.correct(codeword, syndromes)
	if err != nil {
		return nil, err
	}

	// Self-verify: never trust the correction machinery's own bookkeeping.
	if !allZero(c.syndromes(corrected)) {
		return nil, ErrUncorrectable
	}

	msg := make([]byte, len(corrected)-c.parity)
	copy(msg, corrected[:len(corrected)-c.parity])
	return msg, nil
}

// syndromes evaluates the received codeword (as a polynomial, highest
// degree first) at each root generatorRoot^i, i in [0, parity).
// A syndrome is zero for every i exactly when the codeword is a valid
// codeword of this code.
func (c *Codec) syndromes(codeword []byte) []byte {
	syn := make([]byte, c.parity)
	for i := 0; i < c.parity; i++ {
		root := gfPow(generatorRoot, i)
		syn[i] = polyEval(codeword, root)
	}
	return syn
}

// polyEval evaluates a polynomial (coefficients highest degree first)
// at x using Horner's method in GF(256).
func polyEval(poly []byte, x byte) byte {
	var result byte
	for _, coeff := range poly {
		result = gfMul(result, x) ^ coeff
	}
	return result
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// correct locates and fixes errors via Berlekamp-Massey (error locator
// polynomial), Chien search (its roots, giving error positions), and
// Forney's algorithm (the error magnitudes at those positions).
func (c *Codec) correct(codeword []byte, syndromes []byte) ([]byte, error) {
	locator := berlekampMassey(syndromes)
	if (len(locator)-1)*2 > c.parity {
		return nil, ErrUncorrectable
	}

	n := len(codeword)
	errPositions := chienSearch(locator, n)
	if len(errPositions) != len(locator)-1 {
		return nil, ErrUncorrectable
	}
	if len(errPositions) == 0 {
		return codeword, nil
	}

	magnitudes := forney(syndromes, locator, errPositions, n)

	out := make([]byte, n)
	copy(out, codeword)
	for i, pos := range errPositions {
		// pos is the exponent of the error locator's root; the
		// corresponding codeword index, counting from the end, is
		// n-1-pos (coefficients are stored highest-degree first).
		idx := n - 1 - pos
		if idx < 0 || idx >= n {
			return nil, ErrUncorrectable
		}
		out[idx] ^= magnitudes[i]
	}
	return out, nil
}

// berlekampMassey computes the shortest linear feedback polynomial
// (the error locator) that generates the syndrome sequence.
// Coefficients are ordered lowest-degree first, with the constant
// term 1 stored at index 0.
func berlekampMassey(syndromes []byte) []byte {
	c := make([]byte, len(syndromes)+1)
	b := make([]byte, len(syndromes)+1)
	c[0], b[0] = 1, 1

	l := 0
	m := 1
	bCoeff := byte(1)

	for n := 0; n < len(syndromes); n++ {
		var delta byte
		delta = syndromes[n]
		for i := 1; i <= l; i++ {
			delta ^= gfMul(c[i], syndromes[n-i])
		}

		if delta == 0 {
			m++
			continue
		}

		t := make([]byte, len(c))
		copy(t, c)

		coeff := gfDiv(delta, bCoeff)
		for i := 0; i < len(b)-m; i++ {
			c[i+m] ^= gfMul(coeff, b[i])
		}

		if 2*l <= n {
			l = n + 1 - l
			copy(b, t)
			bCoeff = delta
			m = 1
		} else {
			m++
		}
	}

	return c[:l+1]
}

// chienSearch finds the roots of the error locator polynomial by brute
// force: for each candidate exponent i in [0, n), check whether
// generatorRoot^-i is a root. Returns the exponents of the roots
// found (equivalently, the error positions counting from the
// generatorRoot^0 end of the codeword).
func chienSearch(locator []byte, n int) []int {
	var positions []int
	for i := 0; i < n; i++ {
		x := gfInv(gfPow(generatorRoot, i))
		if evalLocator(locator, x) == 0 {
			positions = append(positions, i)
		}
	}
	return positions
}

func evalLocator(locator []byte, x byte) byte {
	var result byte
	var xPow byte = 1
	for _, coeff := range locator {
		result ^= gfMul(coeff, xPow)
		xPow = gfMul(xPow, x)
	}
	return result
}

// forney computes the error magnitude at each located error position.
// The error evaluator is Omega(x) = S(x)*Lambda(x) mod x^parity with
// both factors lowest-degree first; because the code's first
// consecutive root is generatorRoot^0, each magnitude carries an extra
// factor of X_k = generatorRoot^pos beyond the Omega/Lambda' quotient.
func forney(syndromes, locator []byte, errPositions []int, n int) []byte {
	omega := make([]byte, len(syndromes))
	for k := range omega {
		var v byte
		for i, lc := range locator {
			if i > k {
				break
			}
			v ^= gfMul(lc, syndromes[k-i])
		}
		omega[k] = v
	}

	magnitudes := make([]byte, len(errPositions))
	for idx, pos := range errPositions {
		x := gfPow(generatorRoot, pos)
		xInv := gfInv(x)

		var omegaVal byte
		var xPow byte = 1
		for _, coeff := range omega {
			omegaVal ^= gfMul(coeff, xPow)
			xPow = gfMul(xPow, xInv)
		}

		var derivative byte
		xPow = 1
		for i := 1; i < len(locator); i += 2 {
			derivative ^= gfMul(locator[i], xPow)
			xPow = gfMul(xPow, gfMul(xInv, xInv))
		}

		if derivative == 0 {
			magnitudes[idx] = 0
			continue
		}
		magnitudes[idx] = gfMul(x, gfDiv(omegaVal, derivative))
	}
	return magnitudes
}
