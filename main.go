package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/heli2src/svg2pbm/internal/config"
	"github.com/heli2src/svg2pbm/internal/convert"
	"github.com/heli2src/svg2pbm/internal/journal"
	"github.com/heli2src/svg2pbm/internal/raster"
	"github.com/heli2src/svg2pbm/internal/server"
	"github.com/heli2src/svg2pbm/pbm"
)

func main() {
	configPath := flag.String("config", "svg2pbm.yaml", "configuration file")
	inDir := flag.String("in", "", "input directory")
	outDir := flag.String("out", "", "output directory")
	width := flag.Int("width", 0, "target width in pixels")
	height := flag.Int("height", 0, "target height in pixels")
	modeName := flag.String("mode", "", "output sub-format: ascii or bin")
	dither := flag.Bool("dither", false, "use Floyd-Steinberg dithering instead of a plain threshold")
	database := flag.String("db", "", "journal database path (empty disables the journal)")
	serve := flag.String("serve", "", "run the HTTP service on this address instead of converting")
	history := flag.Int("history", 0, "print the last n journal entries and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Couldn't load configuration", "err", err)
		os.Exit(1)
	}
	applyFlags(&cfg, *inDir, *outDir, *width, *height, *modeName, *dither, *database, *serve)

	mode, err := pbm.ParseMode(cfg.Mode)
	if err != nil {
		slog.Error("Couldn't parse mode", "err", err)
		os.Exit(1)
	}

	var j *journal.Repository
	if cfg.Database != "" {
		if j, err = journal.Open(cfg.Database); err != nil {
			slog.Error("Couldn't open journal", "err", err)
			os.Exit(1)
		}
		defer j.Close()
	}

	if *history > 0 {
		printHistory(j, *history)
		return
	}

	policy := raster.Threshold
	if cfg.Dither {
		policy = raster.FloydSteinberg
	}
	converter := &convert.Converter{Policy: policy, Journal: j}

	if *serve != "" {
		s := &server.Server{
			Converter: converter,
			Journal:   j,
			Width:     cfg.Width,
			Height:    cfg.Height,
			Mode:      mode,
		}
		fmt.Printf("Starting server on %s...\n", cfg.Listen)
		if err := http.ListenAndServe(cfg.Listen, s.Mux()); err != nil {
			fmt.Printf("Error starting server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() > 0 {
		for _, path := range flag.Args() {
			out, err := converter.File(path, cfg.OutputDir, cfg.Width, cfg.Height, mode)
			if err != nil {
				slog.Error("Couldn't convert file", "path", path, "err", err)
				os.Exit(1)
			}
			fmt.Printf("%s -> %s\n", path, out)
		}
		return
	}

	if err := converter.Directory(cfg.InputDir, cfg.OutputDir, cfg.Width, cfg.Height, mode); err != nil {
		slog.Error("Couldn't convert directory", "dir", cfg.InputDir, "err", err)
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, inDir, outDir string, width, height int, mode string, dither bool, database, serve string) {
	if inDir != "" {
		cfg.InputDir = inDir
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if width > 0 {
		cfg.Width = width
	}
	if height > 0 {
		cfg.Height = height
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if dither {
		cfg.Dither = true
	}
	if database != "" {
		cfg.Database = database
	}
	if serve != "" {
		cfg.Listen = serve
	}
}

func printHistory(j *journal.Repository, limit int) {
	if j == nil {
		fmt.Println("No journal configured; pass -db or set database in the config")
		os.Exit(1)
	}

	entries, err := j.Recent(limit)
	if err != nil {
		slog.Error("Couldn't read journal", "err", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Printf("%s  %s -> %s  %dx%d %s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Source, e.Output, e.Width, e.Height, e.Mode)
	}
}
