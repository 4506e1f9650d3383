// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/periph-dma/ringdma/dma/dmatest"
)

func newReadableFixture(t *testing.T, cap int) (*Readable[byte], []byte, *dmatest.Sim) {
	buf := make([]byte, cap)
	for i := range buf {
		buf[i] = byte(i)
	}
	sim := dmatest.NewSim(cap)
	return NewReadable(buf), buf, sim
}

// Reading all available words copies them in stream order.
func TestReadableBasicRead(t *testing.T) {
	r, _, sim := newReadableFixture(t, 8)
	sim.Advance(4)

	n, err := r.Len(sim)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	out := make([]byte, 4)
	read, remaining, err := r.Read(sim, out)
	require.NoError(t, err)
	require.Equal(t, 4, read)
	require.Zero(t, remaining)
	require.Equal(t, []byte{0, 1, 2, 3}, out)
}

// Reading across a buffer wrap advances completionCount correctly.
func TestReadableReadAcrossWrap(t *testing.T) {
	r, _, sim := newReadableFixture(t, 8)
	sim.Advance(6)

	drain := make([]byte, 6)
	read, remaining, err := r.Read(sim, drain)
	require.NoError(t, err)
	require.Equal(t, 6, read)
	require.Zero(t, remaining)
	require.Equal(t, []byte{0, 1, 2, 3, 4, 5}, drain)
	require.Equal(t, 6, r.readIndex.pos)

	sim.Advance(2) // hardware position wraps from 8 to 0, completion_count 0->1
	n, err := r.Len(sim)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	out := make([]byte, 2)
	read, _, err = r.Read(sim, out)
	require.NoError(t, err)
	require.Equal(t, 2, read)
	require.Equal(t, []byte{6, 7}, out)
	require.Equal(t, 0, r.readIndex.pos)
	require.Equal(t, 1, r.readIndex.completionCount)

	sim.Advance(2) // hardware at (completion=1, pos=2)
	n, err = r.Len(sim)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	read, _, err = r.Read(sim, out)
	require.NoError(t, err)
	require.Equal(t, 2, read)
	require.Equal(t, []byte{0, 1}, out)
}

// An overrun on the readable side auto-clears and recovers to empty.
func TestReadableOverrunAutoClears(t *testing.T) {
	r, _, sim := newReadableFixture(t, 8)
	sim.Advance(8 + 8) // two full laps without a read: lapped by 9+ words

	_, err := r.Len(sim)
	require.ErrorIs(t, err, ErrOverrun)

	out := make([]byte, 1)
	_, _, err = r.Read(sim, out)
	require.ErrorIs(t, err, ErrOverrun)

	n, err := r.Len(sim)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReadableOverrunTriggersExactlyAtCapPlusOne(t *testing.T) {
	r, _, sim := newReadableFixture(t, 8)
	sim.Advance(8)
	n, err := r.Len(sim)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	sim.Advance(1)
	_, err = r.Len(sim)
	require.ErrorIs(t, err, ErrOverrun)
}

// ReadExact suspends on a partial read and resumes once woken.
func TestReadableReadExactAsync(t *testing.T) {
	r, _, sim := newReadableFixture(t, 8)
	sim.Advance(3)

	out := make([]byte, 6)
	done := make(chan struct {
		remaining int
		err       error
	}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		remaining, err := r.ReadExact(ctx, sim, out)
		done <- struct {
			remaining int
			err       error
		}{remaining, err}
	}()

	// Give ReadExact a chance to register its waker and block on the
	// first partial read before the rest of the data arrives.
	time.Sleep(20 * time.Millisecond)
	sim.Advance(3)

	select {
	case result := <-done:
		require.NoError(t, result.err)
		require.Zero(t, result.remaining)
		require.Equal(t, []byte{0, 1, 2, 3, 4, 5}, out)
	case <-ctx.Done():
		t.Fatal("ReadExact did not complete before deadline")
	}
}

func TestReadableReadExactCancellation(t *testing.T) {
	r, _, sim := newReadableFixture(t, 8)
	out := make([]byte, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ReadExact(ctx, sim, out)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestReadableReadExactRejectsConcurrentCallers(t *testing.T) {
	r, _, sim := newReadableFixture(t, 8)
	out := make([]byte, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = r.ReadExact(ctx, sim, out)
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	_, err := r.ReadExact(context.Background(), sim, make([]byte, 1))
	require.Error(t, err)
}
