package rs

import (
	"bytes"
	"testing"
)

func TestGFArithmetic(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv := gfInv(byte(a))
		if got := gfMul(byte(a), inv); got != 1 {
			t.Fatalf("gfMul(%d, gfInv(%d)) = %d, want 1", a, a, got)
		}
	}
	if got := gfPow(2, 0); got != 1 {
		t.Errorf("gfPow(2,0) = %d, want 1", got)
	}
	if got := gfPow(2, 255); got != 1 {
		t.Errorf("gfPow(2,255) = %d, want 1 (multiplicative group order 255)", got)
	}
}

// TestEncodeDecode_CleanRoundTrip is the one Reed-Solomon property the
// spec mandates unconditionally: encode then decode with no corruption
// recovers the exact original payload.
func TestEncodeDecode_CleanRoundTrip(t *testing.T) {
	for _, parity := range []int{2, 4, 10, 32} {
		codec := NewCodec(parity)
		msg := make([]byte, 200-parity)
		for i := range msg {
			msg[i] = byte(i * 37)
		}
		codeword := codec.Encode(msg)
		if len(codeword) != len(msg)+parity {
			t.Fatalf("parity=%d: len(codeword) = %d, want %d", parity, len(codeword), len(msg)+parity)
		}

		got, err := codec.Decode(codeword)
		if err != nil {
			t.Fatalf("parity=%d: Decode: %v", parity, err)
		}
		if !bytes.Equal(got, msg) {
			t.Fatalf("parity=%d: Decode(Encode(msg)) mismatch", parity)
		}
	}
}

func TestEncode_SyndromesAreZero(t *testing.T) {
	codec := NewCodec(8)
	msg := []byte("the quick brown fox jumps over the lazy dog")
	codeword := codec.Encode(msg)
	syn := codec.syndromes(codeword)
	if !allZero(syn) {
		t.Errorf("syndromes of a freshly encoded codeword = %v, want all zero", syn)
	}
}

func TestDecode_SingleByteCorruption(t *testing.T) {
	codec := NewCodec(10)
	msg := make([]byte, 50)
	for i := range msg {
		msg[i] = byte(i*13 + 5)
	}
	codeword := codec.Encode(msg)

	corrupted := make([]byte, len(codeword))
	copy(corrupted, codeword)
	corrupted[12] ^= 0x42

	got, err := codec.Decode(corrupted)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("Decode returned wrong data: got %v, want %v", got, msg)
	}
}

func TestDecode_MultiByteCorruption(t *testing.T) {
	codec := NewCodec(10)
	msg := make([]byte, 80)
	for i := range msg {
		msg[i] = byte(i * 7)
	}
	codeword := codec.Encode(msg)

	// Up to parity/2 errors at scattered positions, including the
	// first and last byte, must correct.
	corrupted := make([]byte, len(codeword))
	copy(corrupted, codeword)
	for _, pos := range []int{0, 17, 44, 63, len(corrupted) - 1} {
		corrupted[pos] ^= byte(pos + 1)
	}

	got, err := codec.Decode(corrupted)
	if err != nil {
		t.Fatalf("Decode with 5 errors (parity 10): %v", err)
	}
	if !bytes.Equal(got, msg) {
		t.Errorf("Decode returned wrong data after correction")
	}
}

func TestDecode_TooManyErrors(t *testing.T) {
	codec := NewCodec(4)
	msg := make([]byte, 40)
	codeword := codec.Encode(msg)

	corrupted := make([]byte, len(codeword))
	copy(corrupted, codeword)
	for i := 0; i < 6; i++ {
		corrupted[i*5] ^= 0xFF
	}

	// Six errors exceed the 2-error capability of 4 parity bytes.
	// The decoder may alias to some other valid codeword, but it can
	// never claim to have recovered the original message.
	if got, err := codec.Decode(corrupted); err == nil && bytes.Equal(got, msg) {
		t.Error("decoder claimed clean recovery of a codeword with over-capacity corruption")
	}
}

func TestDecode_RejectsShortCodeword(t *testing.T) {
	codec := NewCodec(4)
	if _, err := codec.Decode([]byte{1, 2, 3}); err == nil {
		t.Error("Decode with codeword shorter than parity: want error, got nil")
	}
}

func TestMaxMessageLen(t *testing.T) {
	codec := NewCodec(32)
	if got := codec.MaxMessageLen(255); got != 223 {
		t.Errorf("MaxMessageLen(255) = %d, want 223", got)
	}
}
