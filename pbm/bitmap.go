package pbm

import (
	"fmt"
	"image"
	"image/color"
)

// Bitmap is a monochrome raster: one bit per pixel, row-major,
// where 1 is a set (black) pixel.
type Bitmap interface {
	Width() int
	Height() int
	GetBit(x int, y int) byte
}

// PixelBitmap stores one byte per pixel, each 0 or 1.
type PixelBitmap struct {
	pixels        [][]byte
	width, height int
}

func (b *PixelBitmap) Width() int {
	return b.width
}

func (b *PixelBitmap) Height() int {
	return b.height
}

func (b *PixelBitmap) GetBit(x int, y int) byte {
	return b.pixels[y][x]
}

func (b *PixelBitmap) String() string {
	return fmt.Sprintf("PixelBitmap(%d,%d)", b.width, b.height)
}

// FromBits builds a bitmap from flat row-major pixel data, one byte per
// pixel. The data length must be exactly width*height.
func FromBits(data []byte, width int, height int) (*PixelBitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Bitmap dimensions must be positive (got %vx%v)", width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("Bitmap pixels not consistent with provided width and height (got %v, expecting %v*%v=%v)",
			len(data),
			width,
			height,
			width*height,
		)
	}

	pixels := make([][]byte, height)
	for y := 0; y < height; y++ {
		pixels[y] = data[y*width : (y+1)*width]
	}

	return &PixelBitmap{
		pixels: pixels,
		width:  width,
		height: height,
	}, nil
}

// FromPaletted maps a two-colour paletted image to a bitmap. Whichever
// palette entry is closest to white becomes the unset bit.
func FromPaletted(i *image.Paletted) (*PixelBitmap, error) {
	if len(i.Palette) != 2 {
		return nil, fmt.Errorf("Image passed to FromPaletted must have only 2 colours in palette")
	}

	var colorMap [2]byte
	if i.Palette.Index(color.White) == 0 {
		colorMap = [2]byte{0, 1}
	} else {
		colorMap = [2]byte{1, 0}
	}

	width, height := i.Bounds().Dx(), i.Bounds().Dy()
	pixels := make([][]byte, height)
	for y := 0; y < height; y++ {
		row := make([]byte, width)
		for x := 0; x < width; x++ {
			row[x] = colorMap[i.ColorIndexAt(x, y)]
		}
		pixels[y] = row
	}

	return &PixelBitmap{pixels, width, height}, nil
}

// BitString flattens a bitmap into a row-major string of '0'/'1'
// characters, the form the row repacking primitives work on.
func BitString(b Bitmap) string {
	width, height := b.Width(), b.Height()
	buf := make([]byte, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			buf = append(buf, '0'+(b.GetBit(x, y)&1))
		}
	}
	return string(buf)
}
