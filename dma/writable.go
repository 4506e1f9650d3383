// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Writable is the dual of Readable: the CPU owns the writer index and
// the DMA engine, reading out of the buffer, drives the reader index.
//
// A Writable is not safe for concurrent use: all of its methods, and in
// particular a single in-flight WriteExact, must be called from one
// goroutine at a time.
type Writable[W Word] struct {
	buf []W

	readIndex  index
	writeIndex index

	opts options
	pend *semaphore.Weighted
}

// NewWritable constructs a ring around buf with readIndex at (0, 0) and
// writeIndex logically cap words ahead, i.e. the buffer starts out
// marked as already full of producer data, ready to hand to DMA. buf is
// borrowed for the ring's lifetime under the same rules as Readable.
func NewWritable[W Word](buf []W, opts ...Option) *Writable[W] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	w := &Writable[W]{
		buf:  buf,
		opts: o,
		pend: semaphore.NewWeighted(1),
	}
	w.writeIndex.advance(w.Cap(), w.Cap())
	return w
}

// Cap returns the buffer's fixed word capacity.
func (w *Writable[W]) Cap() int {
	return len(w.buf)
}

// Clear resynchronizes with the hardware and marks the ring logically
// full again, regardless of prior state including overrun. It is the
// only recovery path from Overrun.
func (w *Writable[W]) Clear(ctrl Ctrl) {
	ctrl.ResetCompleteCount()
	w.readIndex.reset()
	w.readIndex.dmaSync(w.Cap(), ctrl)
	w.writeIndex = w.readIndex
	w.writeIndex.advance(w.Cap(), w.Cap())
	w.opts.log.Infow("dma: writable ring cleared", "cap", w.Cap(), "pos", w.readIndex.pos)
}

// Len syncs the reader index from hardware and returns the number of
// words of writable space, or ErrOverrun if the hardware reader has
// overtaken the writer.
func (w *Writable[W]) Len(ctrl Ctrl) (int, error) {
	w.readIndex.dmaSync(w.Cap(), ctrl)
	normalize(&w.readIndex, &w.writeIndex)

	diff := w.writeIndex.diff(w.Cap(), w.readIndex)
	w.opts.log.Debugw("dma: writable dma-sync", "diff", diff, "cap", w.Cap())

	if diff < 0 {
		w.opts.log.Warnw("dma: writable overrun", "diff", diff, "cap", w.Cap())
		return 0, fmt.Errorf("%w: diff %d is negative", ErrOverrun, diff)
	}
	writable := w.Cap() - diff
	if writable < 0 {
		writable = 0
	}
	return writable, nil
}

// WriteRaw copies up to min(len(in), writable) words from in into the
// buffer starting at the writer's frontier, advances the writer index
// by the number of words copied, and returns (written, remaining).
// remaining reflects availability re-sampled after the copy.
//
// Unlike Write, WriteRaw does not auto-clear on ErrOverrun.
func (w *Writable[W]) WriteRaw(ctrl Ctrl, in []W) (written, remaining int, err error) {
	writable, err := w.Len(ctrl)
	if err != nil {
		return 0, 0, err
	}

	n := writable
	if len(in) < n {
		n = len(in)
	}
	for i := 0; i < n; i++ {
		storeWord(w.buf, w.writeIndex.asPhysicalOffset(w.Cap(), i), in[i])
	}

	after, err := w.Len(ctrl)
	if err != nil {
		return 0, 0, err
	}
	w.writeIndex.advance(w.Cap(), n)
	return n, after - n, nil
}

// Write behaves like WriteRaw but auto-clears the ring on ErrOverrun
// before returning the error.
func (w *Writable[W]) Write(ctrl Ctrl, in []W) (written, remaining int, err error) {
	written, remaining, err = w.WriteRaw(ctrl, in)
	if err != nil {
		w.Clear(ctrl)
	}
	return written, remaining, err
}

// WriteImmediate writes in directly to the buffer at the logical
// position named by writeIndex without consulting the hardware at all,
// and without advancing writeIndex. It is intended for the initial fill
// at startup, before the peripheral has been started. Positions beyond
// Cap() wrap and overwrite earlier bytes of the same call; the reported
// count saturates at min(len(in), Cap()).
func (w *Writable[W]) WriteImmediate(in []W) (written, remaining int) {
	for i, v := range in {
		storeWord(w.buf, w.writeIndex.asPhysicalOffset(w.Cap(), i), v)
	}
	written = len(in)
	if written > w.Cap() {
		written = w.Cap()
	}
	return written, w.Cap() - written
}

// WriteExact blocks until all of in has been written, ctx is canceled,
// or an Overrun occurs. On success it returns the residual writable
// count beyond what was written. Dropping ctx cancels the wait with no
// hardware side effect.
//
// Subject to the same half-buffer/full-buffer wake granularity noted on
// Readable.ReadExact.
func (w *Writable[W]) WriteExact(ctx context.Context, ctrl Ctrl, in []W) (remaining int, err error) {
	if !w.pend.TryAcquire(1) {
		return 0, fmt.Errorf("dma: writable: WriteExact already in progress")
	}
	defer w.pend.Release(1)

	wake := make(chan struct{}, 1)
	written := 0
	for {
		ctrl.SetWaker(wake)

		n, rem, err := w.Write(ctrl, in[written:])
		if err != nil {
			return 0, err
		}
		written += n
		if written == len(in) {
			return rem, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-wake:
		}
	}
}
