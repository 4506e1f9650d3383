// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dmaconfig loads the static description of a dma ring: its
// word-count capacity, word width, and the latency hint a caller should
// use when picking a ReadExact/WriteExact chunk size (spec.md §4.2's
// half-buffer wake note, expressed as data instead of documentation).
package dmaconfig

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"
)

// Config describes one ring's static shape.
type Config struct {
	// Cap is the fixed word capacity of the underlying buffer.
	Cap int `yaml:"cap"`
	// WordBits is the width of one word: 8, 16, or 32.
	WordBits int `yaml:"word_bits"`
	// WakeHint is the number of words between peripheral wake-ups
	// (typically Cap/2, per the hardware's half-buffer/full-buffer
	// notification granularity). Callers size ReadExact/WriteExact
	// requests as a divisor of this to get minimum latency.
	WakeHint int `yaml:"wake_hint"`
}

// DefaultConfig returns the configuration of a modest general-purpose
// ring: a 512-word, 32-bit buffer waking every 256 words.
func DefaultConfig() *Config {
	return &Config{
		Cap:      512,
		WordBits: 32,
		WakeHint: 256,
	}
}

// LoadConfig reads and parses a YAML ring profile at path, starting from
// DefaultConfig and overlaying whatever fields the file sets.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dmaconfig: read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("dmaconfig: parse yaml configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration describes a buildable ring.
func (c *Config) Validate() error {
	if c.Cap < 2 {
		return fmt.Errorf("dmaconfig: cap must be at least 2, got %d", c.Cap)
	}
	switch c.WordBits {
	case 8, 16, 32:
	default:
		return fmt.Errorf("dmaconfig: word_bits must be 8, 16, or 32, got %d", c.WordBits)
	}
	if c.WakeHint <= 0 || c.WakeHint > c.Cap {
		return fmt.Errorf("dmaconfig: wake_hint must be in (0, cap], got %d", c.WakeHint)
	}
	return nil
}

// ByteSize returns the buffer's footprint for logging, e.g. "2KB".
func (c *Config) ByteSize() datasize.ByteSize {
	return datasize.ByteSize(c.Cap * (c.WordBits / 8))
}

// String implements fmt.Stringer.
func (c *Config) String() string {
	return fmt.Sprintf("cap=%d word_bits=%d wake_hint=%d size=%s", c.Cap, c.WordBits, c.WakeHint, c.ByteSize())
}
