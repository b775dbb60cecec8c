package pbm

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func aRandomBitmap() *PixelBitmap {
	width, height := 1+rand.Intn(200), 1+rand.Intn(200)
	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte(rand.Intn(2))
	}

	b, _ := FromBits(data, width, height)
	return b
}

func assertBitmapsIdentical(t *testing.T, b1 Bitmap, b2 Bitmap) {
	t.Helper()
	if b1.Width() != b2.Width() {
		t.Fatalf("Bitmaps not of equal width: %v vs %v", b1.Width(), b2.Width())
	}
	if b1.Height() != b2.Height() {
		t.Fatalf("Bitmaps not of equal height: %v vs %v", b1.Height(), b2.Height())
	}
	width, height := b1.Width(), b1.Height()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			bit1, bit2 := b1.GetBit(x, y), b2.GetBit(x, y)
			if bit1 != bit2 {
				t.Errorf("Bit at (%v, %v) doesn't match: %v vs %v", x, y, bit1, bit2)
			}
		}
	}
}

func TestEncodeDecodeRoundTripMany(t *testing.T) {
	const testCaseCount = 30

	for i := 0; i < testCaseCount; i++ {
		testBitmap := aRandomBitmap()
		for _, mode := range []Mode{ASCII, Binary} {
			t.Run(fmt.Sprintf("test %v: %s %s", i, testBitmap, mode), func(t *testing.T) {
				encoded, err := Encode(testBitmap, mode, "")
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				decoded, decodedMode, err := Decode(encoded)
				if err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if decodedMode != mode {
					t.Errorf("Expected mode %v, got %v", mode, decodedMode)
				}
				assertBitmapsIdentical(t, testBitmap, decoded)
			})
		}
	}
}

func TestEncodeAscii(t *testing.T) {
	b, err := FromBits([]byte{1, 0, 1, 0, 1, 0}, 3, 2)
	if err != nil {
		t.Fatalf("FromBits failed: %v", err)
	}

	encoded, err := Encode(b, ASCII, "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(encoded) != "P1\n3 2\n101\n010\n" {
		t.Errorf("Unexpected ASCII encoding: %q", string(encoded))
	}
}

func TestEncodeBinary(t *testing.T) {
	b, err := FromBits([]byte{1, 0, 1, 0, 1, 0}, 3, 2)
	if err != nil {
		t.Fatalf("FromBits failed: %v", err)
	}

	encoded, err := Encode(b, Binary, "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	// each 3-pixel row pads to one byte: 101 -> 0xA0, 010 -> 0x40
	if !bytes.Equal(encoded, append([]byte("P4\n3 2\n"), 0xA0, 0x40)) {
		t.Errorf("Unexpected binary encoding: % X", encoded)
	}
}

func TestEncodeComment(t *testing.T) {
	b, _ := FromBits([]byte{1}, 1, 1)
	encoded, err := Encode(b, ASCII, "Created by svg2pbm converter")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(encoded) != "P1\n# Created by svg2pbm converter\n1 1\n1\n" {
		t.Errorf("Unexpected encoding: %q", string(encoded))
	}
}

func TestEncodeAsciiLineLength(t *testing.T) {
	width, height := 150, 3
	b, _ := FromBits(make([]byte, width*height), width, height)
	encoded, err := Encode(b, ASCII, "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	lines := strings.Split(string(encoded), "\n")
	for _, line := range lines[2:] {
		if len(line) > 70 {
			t.Errorf("Body line of %v characters exceeds 70", len(line))
		}
	}
}

func TestDecodeSkipsComments(t *testing.T) {
	data := "P1\n# one comment\n# another comment\n2 2\n10\n01\n"
	b, mode, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if mode != ASCII {
		t.Errorf("Expected ASCII mode, got %v", mode)
	}
	if b.Width() != 2 || b.Height() != 2 {
		t.Errorf("Expected 2x2 bitmap, got %s", b)
	}
	if b.GetBit(0, 0) != 1 || b.GetBit(1, 0) != 0 || b.GetBit(0, 1) != 0 || b.GetBit(1, 1) != 1 {
		t.Errorf("Decoded pixels don't match input")
	}
}

func TestDecodeIgnoresAsciiLineBreaks(t *testing.T) {
	// row boundaries must come from the dimensions, not line breaks
	data := "P1\n3 2\n1 0 1 0\n1 0\n"
	b, _, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if BitString(b) != "101010" {
		t.Errorf("Expected bits 101010, got %v", BitString(b))
	}
}

func TestDecodeRejectsUnknownMagic(t *testing.T) {
	_, _, err := Decode([]byte("P7\n2 2\n1010\n"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	cases := []string{
		"P1\n",
		"P1\n10\n",
		"P1\n10 x\n",
		"P1\n10 0\n",
		"P1\n-3 2\n101010\n",
		"P1\n3 2 1\n101010\n",
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%q", c), func(t *testing.T) {
			if _, _, err := Decode([]byte(c)); !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("Expected ErrMalformedHeader, got %v", err)
			}
		})
	}
}

func TestDecodeRejectsShortAsciiBody(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 99; i++ {
		body.WriteByte('1')
	}
	data := fmt.Sprintf("P1\n10 10\n%s\n", body.String())

	if _, _, err := Decode([]byte(data)); !errors.Is(err, ErrMalformedBody) {
		t.Errorf("Expected ErrMalformedBody, got %v", err)
	}
}

func TestDecodeRejectsBadAsciiCharacter(t *testing.T) {
	if _, _, err := Decode([]byte("P1\n2 2\n1012\n")); !errors.Is(err, ErrMalformedBody) {
		t.Errorf("Expected ErrMalformedBody, got %v", err)
	}
}

func TestDecodeRejectsShortBinaryBody(t *testing.T) {
	// 12x2 needs 2 rows of 2 bytes
	data := append([]byte("P4\n12 2\n"), 0xFF, 0xFF, 0xFF)
	if _, _, err := Decode(data); !errors.Is(err, ErrMalformedBody) {
		t.Errorf("Expected ErrMalformedBody, got %v", err)
	}
}

func TestFromBitsRejectsMismatchedLength(t *testing.T) {
	if _, err := FromBits(make([]byte, 5), 2, 3); err == nil {
		t.Errorf("Expected error for 5 pixels declared as 2x3")
	}
}
