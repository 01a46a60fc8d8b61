package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Curve is a linear ramp between two normalized-depth thresholds.
type Curve struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type FadeSettings struct {
	FadeIn  Curve `yaml:"fadeIn"`
	FadeOut Curve `yaml:"fadeOut"`
}

type BlurSettings struct {
	BlurIn  Curve   `yaml:"blurIn"`
	BlurOut Curve   `yaml:"blurOut"`
	MaxBlur float64 `yaml:"maxBlur"`
}

// Config holds the gallery options. Fields missing from a YAML file keep
// the values from Default.
type Config struct {
	Speed        float64      `yaml:"speed"`
	VisibleCount int          `yaml:"visibleCount"`
	FadeSettings FadeSettings `yaml:"fadeSettings"`
	BlurSettings BlurSettings `yaml:"blurSettings"`

	DepthRange  float64 `yaml:"depthRange"`
	FrameDelta  float64 `yaml:"frameDelta"`
	MaxVelocity float64 `yaml:"maxVelocity"` // 0 = без ограничения
}

func Default() Config {
	return Config{
		Speed:        1,
		VisibleCount: 12,
		FadeSettings: FadeSettings{
			FadeIn:  Curve{Start: 0.05, End: 0.25},
			FadeOut: Curve{Start: 0.4, End: 0.43},
		},
		BlurSettings: BlurSettings{
			BlurIn:  Curve{Start: 0.0, End: 0.1},
			BlurOut: Curve{Start: 0.4, End: 0.43},
			MaxBlur: 8.0,
		},
		DepthRange: 50,
		FrameDelta: 0.016,
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// Write stores the config as YAML.
func Write(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize clamps the visible slot count to the number of images and
// repairs values that would stall or break the frame loop.
func (c Config) Normalize(totalImages int) Config {
	if c.Speed == 0 {
		c.Speed = 1
	}
	if c.VisibleCount < 0 {
		c.VisibleCount = 0
	}
	if totalImages < 0 {
		totalImages = 0
	}
	if c.VisibleCount > totalImages {
		c.VisibleCount = totalImages
	}
	if c.DepthRange <= 0 {
		c.DepthRange = Default().DepthRange
	}
	if c.FrameDelta <= 0 {
		c.FrameDelta = Default().FrameDelta
	}
	if c.BlurSettings.MaxBlur < 0 {
		c.BlurSettings.MaxBlur = 0
	}
	if c.MaxVelocity < 0 {
		c.MaxVelocity = 0
	}
	return c
}
