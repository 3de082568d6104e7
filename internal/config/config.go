//  Copyright 2019 Marius Ackerman
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package config loads taptempo settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultFrameRate     = 60
	DefaultLogLevel      = "info"
	DefaultSessionFormat = "pb"

	DefaultSampleRate  = 44100
	DefaultClickMs     = 30
	DefaultFrequencyHz = 1000
	DefaultBeats       = 16

	// LogLevelEnv overrides log_level when set.
	LogLevelEnv = "TAPTEMPO_LOG_LEVEL"
)

// Config is the complete taptempo configuration
type Config struct {
	FrameRate     int         `yaml:"frame_rate"`     // animation frames per second
	InitialBpm    int         `yaml:"initial_bpm"`    // 0 = no tempo until tapped
	LogLevel      string      `yaml:"log_level"`      // debug, info, warn, error
	SessionFormat string      `yaml:"session_format"` // pb, json
	Click         ClickConfig `yaml:"click"`
}

// ClickConfig contains click track rendering settings
type ClickConfig struct {
	SampleRate  int     `yaml:"sample_rate"`
	ClickMs     int     `yaml:"click_ms"`
	FrequencyHz float64 `yaml:"frequency_hz"`
	Beats       int     `yaml:"beats"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		FrameRate:     DefaultFrameRate,
		LogLevel:      DefaultLogLevel,
		SessionFormat: DefaultSessionFormat,
		Click: ClickConfig{
			SampleRate:  DefaultSampleRate,
			ClickMs:     DefaultClickMs,
			FrequencyHz: DefaultFrequencyHz,
			Beats:       DefaultBeats,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if lvl := os.Getenv(LogLevelEnv); lvl != "" {
		cfg.LogLevel = lvl
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for values the estimator or the click
// renderer cannot use.
func Validate(cfg *Config) error {
	var errs []error
	if cfg.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate must be positive, got %d", cfg.FrameRate))
	}
	if cfg.InitialBpm < 0 {
		errs = append(errs, fmt.Errorf("initial_bpm must not be negative, got %d", cfg.InitialBpm))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", cfg.LogLevel))
	}
	switch cfg.SessionFormat {
	case "pb", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown session_format %q", cfg.SessionFormat))
	}
	if cfg.Click.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("click.sample_rate must be positive, got %d", cfg.Click.SampleRate))
	}
	if cfg.Click.ClickMs <= 0 {
		errs = append(errs, fmt.Errorf("click.click_ms must be positive, got %d", cfg.Click.ClickMs))
	}
	if cfg.Click.FrequencyHz <= 0 {
		errs = append(errs, fmt.Errorf("click.frequency_hz must be positive, got %g", cfg.Click.FrequencyHz))
	}
	if cfg.Click.Beats <= 0 {
		errs = append(errs, fmt.Errorf("click.beats must be positive, got %d", cfg.Click.Beats))
	}
	return errors.Join(errs...)
}
