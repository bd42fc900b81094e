package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DemoConfig drives the random series generator behind the demo page.
type DemoConfig struct {
	// Tick is the interval between series updates, e.g. "500ms".
	Tick string `yaml:"tick"`
	// Labels names the samples; one bar and one list item each.
	Labels []string `yaml:"labels"`
	// MaxValue caps the random walk.
	MaxValue float64 `yaml:"max_value"`
	// Deadline optionally bounds the whole run, e.g. "2m". Empty runs forever.
	Deadline string `yaml:"deadline"`
}

type outerConfig struct {
	Demo map[string]any `mapstructure:"demo"`
}

// TickInterval parses the tick, defaulting to one second.
func (cfg *DemoConfig) TickInterval() (time.Duration, error) {
	if cfg.Tick == "" {
		return time.Second, nil
	}
	return time.ParseDuration(cfg.Tick)
}

// WithDeadline returns ctx extended by the run deadline, if one is set.
func (cfg *DemoConfig) WithDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if cfg.Deadline != "" {
		duration, err := time.ParseDuration(cfg.Deadline)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}

// fromYaml loads the demo config: viper reads the file, then the demo
// section round-trips through yaml into the typed config.
func fromYaml(path string) (*DemoConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(filepath.Base(path))
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &outerConfig{}
	if err = vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	var spec []byte
	if spec, err = yaml.Marshal(outer.Demo); err != nil {
		return nil, err
	}

	cfg := &DemoConfig{}
	if err = yaml.Unmarshal(spec, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
