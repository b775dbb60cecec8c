package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
	"golang.org/x/image/draw"
)

// Policy decides how a grayscale value becomes a single bit.
type Policy int

const (
	// Threshold maps gray levels below 128 to black.
	Threshold Policy = iota
	// FloydSteinberg dithers with error diffusion, better for photos.
	FloydSteinberg
)

// Monochrome scales an image to width x height and reduces it to a
// two-colour paletted image using the given policy.
func Monochrome(i image.Image, width int, height int, policy Policy) *image.Paletted {
	scaledBounds := image.Rect(0, 0, width, height)
	scaledImage := image.NewRGBA(scaledBounds)
	// transparent pixels count as white
	draw.Draw(scaledImage, scaledBounds, image.White, image.Point{}, draw.Src)
	// resize image using Catmull Rom scaling
	draw.CatmullRom.Scale(scaledImage, scaledBounds, i, i.Bounds(), draw.Over, nil)

	if policy == FloydSteinberg {
		return ditherToMono(scaledImage)
	}
	return thresholdToMono(scaledImage)
}

func thresholdToMono(i *image.RGBA) *image.Paletted {
	palette := []color.Color{color.White, color.Black}
	mono := image.NewPaletted(i.Bounds(), palette)

	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			gray := color.GrayModel.Convert(i.At(x, y)).(color.Gray)
			if gray.Y < 128 {
				mono.SetColorIndex(x, y, 1)
			}
		}
	}

	return mono
}

func ditherToMono(i *image.RGBA) *image.Paletted {
	bounds := i.Bounds()

	// turn full colour image into monochrome pixel by pixel
	monochromeImage := image.NewGray16(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			grayColor := color.Gray16Model.Convert(i.At(x, y)).(color.Gray16)
			grayValue := float64(grayColor.Y) / float64(0xFFFF)

			// gamma correction of 0.5, otherwise fine strokes thin out
			scaledGrayValue := math.Pow(grayValue, 0.5)
			monochromeImage.Set(x, y, color.Gray16{Y: uint16(scaledGrayValue * float64(0xFFFF))})
		}
	}

	palette := []color.Color{color.Black, color.White}
	ditherer := dither.NewDitherer(palette)
	ditherer.Matrix = dither.FloydSteinberg
	ditherer.Serpentine = true

	return ditherer.DitherPaletted(monochromeImage)
}
