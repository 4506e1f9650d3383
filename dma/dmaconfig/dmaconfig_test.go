// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dmaconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ring.yaml")
	require.NoError(t, writeFile(path, "cap: 1024\nwake_hint: 512\n"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 1024, cfg.Cap)
	require.Equal(t, 512, cfg.WakeHint)
	require.Equal(t, DefaultConfig().WordBits, cfg.WordBits)
}

func TestValidateRejectsBadShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cap = 1
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WordBits = 24
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WakeHint = cfg.Cap + 1
	require.Error(t, cfg.Validate())
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
