// This file implements the row repacking between the ASCII bit-string
// and the padded binary body of a PBM file. Each binary row is padded
// to a whole byte with zero bits and packed most-significant-bit first.

package pbm

import "fmt"

const bitsPerWord = 8

// PackRows splits bits into rows of width characters, pads each row to
// a byte boundary with zero bits and packs it MSB-first. A '1' sets a
// bit; any other character packs as zero (the decoder validates the
// charset before repacking). The bit-string length must be a multiple
// of width.
func PackRows(bits string, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: row width must be positive (got %v)", ErrInvalidLength, width)
	}
	if len(bits)%width != 0 {
		return nil, fmt.Errorf("%w: bit-string length %v is not a multiple of width %v", ErrInvalidLength, len(bits), width)
	}

	height := len(bits) / width
	stride := (width + bitsPerWord - 1) / bitsPerWord
	data := make([]byte, stride*height)

	for y := 0; y < height; y++ {
		row := bits[y*width : (y+1)*width]
		for x := 0; x < width; x++ {
			if row[x] == '1' {
				data[y*stride+x/bitsPerWord] |= 1 << (bitsPerWord - 1 - x%bitsPerWord)
			}
		}
	}

	return data, nil
}

// UnpackRows is the inverse of PackRows: it slices data into rows of
// ceil(width/8) bytes, unpacks each MSB-first and drops the padding
// bits beyond width. The data length must be a multiple of the row
// stride.
func UnpackRows(data []byte, width int) (string, error) {
	if width <= 0 {
		return "", fmt.Errorf("%w: row width must be positive (got %v)", ErrInvalidLength, width)
	}
	stride := (width + bitsPerWord - 1) / bitsPerWord
	if len(data)%stride != 0 {
		return "", fmt.Errorf("%w: %v bytes is not a multiple of the %v-byte row stride", ErrInvalidLength, len(data), stride)
	}

	height := len(data) / stride
	bits := make([]byte, 0, width*height)

	for y := 0; y < height; y++ {
		row := data[y*stride : (y+1)*stride]
		for x := 0; x < width; x++ {
			bit := (row[x/bitsPerWord] >> (bitsPerWord - 1 - x%bitsPerWord)) & 1
			bits = append(bits, '0'+bit)
		}
	}

	return string(bits), nil
}
