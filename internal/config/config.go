// Package config loads the converter settings from a YAML file,
// falling back to defaults when no file exists.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Mode      string `yaml:"mode"`
	Dither    bool   `yaml:"dither"`
	Database  string `yaml:"database"`
	Listen    string `yaml:"listen"`
}

func Defaults() Config {
	return Config{
		InputDir:  ".",
		OutputDir: "pbm",
		Width:     100,
		Height:    100,
		Mode:      "bin",
		Listen:    ":8080",
	}
}

// Load reads the configuration at path. A missing file is not an
// error; it just returns the defaults.
func Load(path string) (Config, error) {
	c := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return c, fmt.Errorf("configured dimensions must be positive (got %vx%v)", c.Width, c.Height)
	}

	return c, nil
}
