// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

// Ctrl is the abstract interface a ring uses to sample hardware position,
// reset/read the wrap counter, and register a wake-up channel. A
// peripheral driver implements Ctrl; this package never talks to
// registers directly.
//
// Implementations are used from a single goroutine at a time per ring;
// Ctrl itself need not be safe for concurrent use.
type Ctrl interface {
	// RemainingTransfers returns the number of words the DMA will still
	// write (Readable) or read (Writable) before wrapping to the start of
	// the buffer. Monotonically non-increasing until wrap, then jumps back
	// to cap. Must be cheap: a single register read.
	RemainingTransfers() int

	// ResetCompleteCount atomically reads the wrap-event counter and
	// clears it, returning the number of wraps observed since the last
	// call.
	ResetCompleteCount() int

	// SetWaker registers ch to be notified (by send or close) when the
	// DMA reaches its next milestone, typically the half-buffer or
	// full-buffer boundary. Replaces any prior registration. Must be
	// idempotent under repeated calls with the same channel.
	SetWaker(ch chan<- struct{})
}
