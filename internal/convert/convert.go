// Package convert drives single-file and directory conversions,
// feeding SVG input through the rasterizer and PBM input straight
// through the codec.
package convert

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/heli2src/svg2pbm/internal/journal"
	"github.com/heli2src/svg2pbm/internal/raster"
	"github.com/heli2src/svg2pbm/pbm"
)

// Comment is written into the header of every encoded file.
const Comment = "Created by svg2pbm converter"

type Converter struct {
	Policy raster.Policy
	// Journal may be nil, in which case conversions are not recorded.
	Journal *journal.Repository
}

// Bytes converts one document held in memory. SVG input is rasterized
// at width x height; PBM input is decoded and re-encoded, so the
// requested dimensions are ignored in favour of the file's own.
func (c *Converter) Bytes(data []byte, svg bool, width int, height int, mode pbm.Mode) ([]byte, error) {
	encoded, _, err := c.convertData(data, svg, width, height, mode)
	return encoded, err
}

func (c *Converter) convertData(data []byte, svg bool, width int, height int, mode pbm.Mode) ([]byte, *pbm.PixelBitmap, error) {
	var bitmap *pbm.PixelBitmap

	if svg {
		img, err := raster.Render(bytes.NewReader(data), width, height)
		if err != nil {
			return nil, nil, err
		}
		if bitmap, err = pbm.FromPaletted(raster.Monochrome(img, width, height, c.Policy)); err != nil {
			return nil, nil, err
		}
	} else {
		var err error
		if bitmap, _, err = pbm.Decode(data); err != nil {
			return nil, nil, err
		}
	}

	encoded, err := pbm.Encode(bitmap, mode, Comment)
	if err != nil {
		return nil, nil, err
	}
	return encoded, bitmap, nil
}

// File converts path into outDir, returning the output path.
// Recognised inputs are .svg and .pbm files.
func (c *Converter) File(path string, outDir string, width int, height int, mode pbm.Mode) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".svg" && ext != ".pbm" {
		return "", fmt.Errorf("don't know how to convert %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("Couldn't read input:\n%w", err)
	}

	encoded, bitmap, err := c.convertData(data, ext == ".svg", width, height, mode)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("Couldn't create output directory:\n%w", err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+".pbm")
	if err := os.WriteFile(outPath, encoded, 0644); err != nil {
		return "", fmt.Errorf("Couldn't write output:\n%w", err)
	}

	c.record(path, outPath, bitmap, mode)
	return outPath, nil
}

// Directory converts every .svg and .pbm file directly inside inDir.
// A file that fails to convert is logged and skipped; only failing to
// read the directory itself aborts the run.
func (c *Converter) Directory(inDir string, outDir string, width int, height int, mode pbm.Mode) error {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return fmt.Errorf("Couldn't read input directory:\n%w", err)
	}

	converted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".svg" && ext != ".pbm" {
			continue
		}

		path := filepath.Join(inDir, entry.Name())
		if out, err := c.File(path, outDir, width, height, mode); err != nil {
			slog.Warn("Skipping file", "path", path, "err", err)
		} else {
			fmt.Printf("%s -> %s\n", path, out)
			converted++
		}
	}

	fmt.Printf("Converted %d file(s)\n", converted)
	return nil
}

func (c *Converter) record(source string, output string, bitmap *pbm.PixelBitmap, mode pbm.Mode) {
	if c.Journal == nil {
		return
	}

	// record the bitmap's own dimensions, which for pbm inputs can
	// differ from the requested ones
	e := journal.Entry{
		Source: source,
		Output: output,
		Width:  bitmap.Width(),
		Height: bitmap.Height(),
		Mode:   mode.String(),
	}
	if err := c.Journal.Record(&e); err != nil {
		slog.Warn("Couldn't record conversion", "source", source, "err", err)
	}
}
