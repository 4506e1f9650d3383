// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Readable is a ring buffer whose writer index is driven by hardware
// (the DMA engine writing into the buffer) and whose reader index is
// driven by the CPU consuming from it.
//
// A Readable is not safe for concurrent use: all of its methods, and in
// particular a single in-flight ReadExact, must be called from one
// goroutine at a time.
type Readable[W Word] struct {
	buf []W

	writeIndex index
	readIndex  index

	opts options
	pend *semaphore.Weighted
}

// NewReadable constructs a ring around buf, both indices at (0, 0). buf
// is borrowed for the ring's lifetime: the caller must not move, resize,
// or alias it, and must have registered it with the DMA peripheral.
func NewReadable[W Word](buf []W, opts ...Option) *Readable[W] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Readable[W]{
		buf:  buf,
		opts: o,
		pend: semaphore.NewWeighted(1),
	}
}

// Cap returns the buffer's fixed word capacity.
func (r *Readable[W]) Cap() int {
	return len(r.buf)
}

// Clear resynchronizes with the hardware and empties the ring,
// regardless of prior state including overrun. It is the only recovery
// path from Overrun.
func (r *Readable[W]) Clear(ctrl Ctrl) {
	ctrl.ResetCompleteCount()
	r.writeIndex.reset()
	r.writeIndex.dmaSync(r.Cap(), ctrl)
	r.readIndex = r.writeIndex
	r.opts.log.Infow("dma: readable ring cleared", "cap", r.Cap(), "pos", r.writeIndex.pos)
}

// Len syncs the writer index from hardware and returns the number of
// words currently available to read, or ErrOverrun if the hardware has
// lapped the reader by more than Cap words.
func (r *Readable[W]) Len(ctrl Ctrl) (int, error) {
	r.writeIndex.dmaSync(r.Cap(), ctrl)
	normalize(&r.writeIndex, &r.readIndex)

	diff := r.writeIndex.diff(r.Cap(), r.readIndex)
	r.opts.log.Debugw("dma: readable dma-sync", "diff", diff, "cap", r.Cap())

	if diff > r.Cap() {
		r.opts.log.Warnw("dma: readable overrun", "diff", diff, "cap", r.Cap())
		return 0, fmt.Errorf("%w: diff %d exceeds cap %d", ErrOverrun, diff, r.Cap())
	}
	return diff, nil
}

// ReadRaw copies up to min(len(out), readable) words into out starting
// at the reader's frontier, advances the reader index by the number of
// words copied, and returns (copied, remaining). remaining reflects
// availability re-sampled after the copy, so it may exceed what was
// available before the call if the DMA made progress during the copy.
//
// Unlike Read, ReadRaw does not auto-clear on ErrOverrun.
func (r *Readable[W]) ReadRaw(ctrl Ctrl, out []W) (read, remaining int, err error) {
	available, err := r.Len(ctrl)
	if err != nil {
		return 0, 0, err
	}

	n := available
	if len(out) < n {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = loadWord(r.buf, r.readIndex.asPhysicalOffset(r.Cap(), i))
	}

	after, err := r.Len(ctrl)
	if err != nil {
		return 0, 0, err
	}
	r.readIndex.advance(r.Cap(), n)
	return n, after - n, nil
}

// Read behaves like ReadRaw but auto-clears the ring on ErrOverrun
// before returning the error, restoring it to a usable state.
func (r *Readable[W]) Read(ctrl Ctrl, out []W) (read, remaining int, err error) {
	read, remaining, err = r.ReadRaw(ctrl, out)
	if err != nil {
		r.Clear(ctrl)
	}
	return read, remaining, err
}

// ReadExact blocks until out is fully populated, ctx is canceled, or an
// Overrun occurs. On success it returns the residual count of words
// still available beyond what was copied. Dropping ctx cancels the wait
// with no hardware side effect; partial progress already written into
// out up to that point is not reported back.
//
// The underlying DMA peripheral typically only wakes callers at the
// half-buffer and full-buffer marks, so ReadExact(out) where len(out)
// does not divide Cap()/2 evenly may have to wait for up to Cap()/2
// extra words before the next wake; this is a property of the hardware
// contract, not of this algorithm.
func (r *Readable[W]) ReadExact(ctx context.Context, ctrl Ctrl, out []W) (remaining int, err error) {
	if !r.pend.TryAcquire(1) {
		return 0, fmt.Errorf("dma: readable: ReadExact already in progress")
	}
	defer r.pend.Release(1)

	wake := make(chan struct{}, 1)
	read := 0
	for {
		ctrl.SetWaker(wake)

		n, rem, err := r.Read(ctrl, out[read:])
		if err != nil {
			return 0, err
		}
		read += n
		if read == len(out) {
			return rem, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-wake:
		}
	}
}
