// Package raster turns SVG documents into the monochrome bitmaps the
// PBM codec consumes. Rendering happens entirely in memory.
package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Render rasterizes an SVG document into an RGBA image of the given
// pixel size.
func Render(svg io.Reader, width int, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Target dimensions must be positive (got %vx%v)", width, height)
	}

	icon, err := oksvg.ReadIconStream(svg, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("Couldn't parse SVG:\n%w", err)
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	return img, nil
}
