// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package resync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"

	"github.com/periph-dma/ringdma/dma"
	"github.com/periph-dma/ringdma/dma/dmatest"
)

func fastBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Millisecond
	b.MaxInterval = 5 * time.Millisecond
	return b
}

func TestClearRetrySucceedsAfterTransientProbeFailures(t *testing.T) {
	sim := dmatest.NewSim(8)
	r := dma.NewReadable(make([]byte, 8))

	attempts := 0
	probe := func() (dma.Ctrl, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("bus not ready")
		}
		return sim, nil
	}

	err := ClearRetry(context.Background(), r.Clear, 5, fastBackOff(), probe)
	require.NoError(t, err)
	require.Equal(t, 3, attempts)

	n, err := r.Len(sim)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestClearRetryGivesUpAfterMaxAttempts(t *testing.T) {
	r := dma.NewReadable(make([]byte, 8))
	probe := func() (dma.Ctrl, error) {
		return nil, errors.New("bus permanently down")
	}

	err := ClearRetry(context.Background(), r.Clear, 3, fastBackOff(), probe)
	require.Error(t, err)
}

func TestClearRetryAllAggregatesFailures(t *testing.T) {
	readable := dma.NewReadable(make([]byte, 8))
	writable := dma.NewWritable(make([]byte, 8))
	sim := dmatest.NewSim(8)

	targets := []Target{
		{
			Name:  "readable",
			Clear: readable.Clear,
			Probe: func() (dma.Ctrl, error) { return sim, nil },
		},
		{
			Name:  "writable",
			Clear: writable.Clear,
			Probe: func() (dma.Ctrl, error) { return nil, errors.New("probe down") },
		},
	}

	err := ClearRetryAll(context.Background(), 2, fastBackOff(), targets)
	require.Error(t, err)
	require.Contains(t, err.Error(), "writable")
}
