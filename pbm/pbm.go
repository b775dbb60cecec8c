// Package pbm reads and writes Portable Bitmap files in both the
// ASCII (P1) and packed binary (P4) sub-formats.
package pbm

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedFormat means the magic number was not P1 or P4.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedHeader means the dimensions line was missing or invalid.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrMalformedBody means the body didn't match the declared dimensions.
	ErrMalformedBody = errors.New("malformed body")
	// ErrInvalidLength means a row repacking input had the wrong length.
	ErrInvalidLength = errors.New("invalid length")
)

// Mode selects a PBM sub-format.
type Mode int

const (
	ASCII  Mode = iota // P1
	Binary             // P4
)

func (m Mode) String() string {
	if m == Binary {
		return "bin"
	}
	return "ascii"
}

func (m Mode) magic() string {
	if m == Binary {
		return "P4"
	}
	return "P1"
}

// ParseMode accepts the mode names used on the command line.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "ascii":
		return ASCII, nil
	case "bin", "binary":
		return Binary, nil
	}
	return ASCII, fmt.Errorf("unknown mode %q (want ascii or bin)", s)
}

// Decode parses PBM file bytes into a bitmap and reports which
// sub-format was read. Zero or more comment lines are accepted between
// the magic number and the dimensions line. Line breaks in an ASCII
// body are cosmetic and carry no row information.
func Decode(data []byte) (*PixelBitmap, Mode, error) {
	line, rest, ok := cutLine(data)
	if !ok {
		return nil, ASCII, fmt.Errorf("%w: missing magic number line", ErrUnsupportedFormat)
	}

	var mode Mode
	switch string(line) {
	case "P1":
		mode = ASCII
	case "P4":
		mode = Binary
	default:
		return nil, ASCII, fmt.Errorf("%w: unknown magic number %q", ErrUnsupportedFormat, string(line))
	}

	// skip comment lines
	for {
		line, rest, ok = cutLine(rest)
		if !ok {
			return nil, mode, fmt.Errorf("%w: missing dimensions line", ErrMalformedHeader)
		}
		if len(line) == 0 || line[0] != '#' {
			break
		}
	}

	width, height, err := parseDimensions(line)
	if err != nil {
		return nil, mode, err
	}

	var bits string
	if mode == ASCII {
		if bits, err = asciiBody(rest, width, height); err != nil {
			return nil, mode, err
		}
	} else {
		stride := (width + bitsPerWord - 1) / bitsPerWord
		if len(rest) != stride*height {
			return nil, mode, fmt.Errorf("%w: got %v body bytes, expecting %v rows of %v bytes",
				ErrMalformedBody, len(rest), height, stride)
		}
		if bits, err = UnpackRows(rest, width); err != nil {
			return nil, mode, err
		}
	}

	b, err := FromBits(bitsToPixels(bits), width, height)
	if err != nil {
		return nil, mode, err
	}
	return b, mode, nil
}

// Encode serializes a bitmap as PBM bytes in the requested sub-format.
// A non-empty comment is written as a single header comment line.
func Encode(b Bitmap, mode Mode, comment string) ([]byte, error) {
	width, height := b.Width(), b.Height()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Bitmap dimensions must be positive (got %vx%v)", width, height)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", mode.magic())
	if comment != "" {
		fmt.Fprintf(&buf, "# %s\n", comment)
	}
	fmt.Fprintf(&buf, "%d %d\n", width, height)

	bits := BitString(b)
	if mode == Binary {
		packed, err := PackRows(bits, width)
		if err != nil {
			return nil, err
		}
		buf.Write(packed)
	} else {
		// A line should not exceed 70 characters.
		lineLength := width
		if lineLength > 70 {
			lineLength = 70
		}
		for col := 0; col < len(bits); col += lineLength {
			end := col + lineLength
			if end > len(bits) {
				end = len(bits)
			}
			buf.WriteString(bits[col:end])
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes(), nil
}

// cutLine splits data at the first newline, trimming a trailing CR.
func cutLine(data []byte) (line []byte, rest []byte, ok bool) {
	if len(data) == 0 {
		return nil, nil, false
	}
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return bytes.TrimSuffix(data, []byte("\r")), nil, true
	}
	return bytes.TrimSuffix(data[:i], []byte("\r")), data[i+1:], true
}

func parseDimensions(line []byte) (int, int, error) {
	fields := strings.Fields(string(line))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: expecting two dimensions, got %q", ErrMalformedHeader, string(line))
	}

	dims := [2]int{}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: dimension %q is not an integer", ErrMalformedHeader, f)
		}
		if n <= 0 {
			return 0, 0, fmt.Errorf("%w: dimension %v is not positive", ErrMalformedHeader, n)
		}
		dims[i] = n
	}

	return dims[0], dims[1], nil
}

func asciiBody(data []byte, width int, height int) (string, error) {
	bits := make([]byte, 0, width*height)
	for _, c := range data {
		switch c {
		case '0', '1':
			bits = append(bits, c)
		case ' ', '\t', '\r', '\n':
			// separators carry no pixel data
		default:
			return "", fmt.Errorf("%w: unexpected character %q in ASCII body", ErrMalformedBody, c)
		}
	}
	if len(bits) != width*height {
		return "", fmt.Errorf("%w: got %v pixels, expecting %v*%v=%v",
			ErrMalformedBody, len(bits), width, height, width*height)
	}
	return string(bits), nil
}

func bitsToPixels(bits string) []byte {
	pixels := make([]byte, len(bits))
	for i := 0; i < len(bits); i++ {
		pixels[i] = bits[i] - '0'
	}
	return pixels
}
