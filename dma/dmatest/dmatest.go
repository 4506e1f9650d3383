// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dmatest implements fakes for package dma, in the spirit of
// periph's conntest and gpiotest: a programmable stand-in for hardware
// that tests drive directly rather than through real registers.
package dmatest

import "sync"

// Sim simulates the DMA engine's register pair that dma.Ctrl exposes: a
// transfers-remaining countdown and a wrap-event counter. Tests drive it
// with Advance to simulate the peripheral making progress, and it
// answers RemainingTransfers/ResetCompleteCount the way real hardware
// would, including the torn-read races dma.Ctrl.SetWaker and the
// dma-sync procedure in package dma are built to tolerate.
type Sim struct {
	mu sync.Mutex

	cap       int
	remaining int
	wrapCount int
	waker     chan<- struct{}

	// midSync, when non-zero, is consumed by the next
	// ResetCompleteCount call: it advances the simulated hardware by
	// that many words before returning, modeling the DMA engine ticking
	// between the two RemainingTransfers samples that dma-sync takes
	// around the counter reset.
	midSync int

	// Calls records every RemainingTransfers/ResetCompleteCount
	// invocation, in order, for tests that want to assert exactly how
	// many register reads a ring operation performed.
	Calls []string
}

// NewSim constructs a simulated control port for a buffer of the given
// capacity, with the DMA position parked at the start of the buffer
// (RemainingTransfers() == cap).
func NewSim(cap int) *Sim {
	return &Sim{cap: cap, remaining: cap}
}

// Advance moves the simulated DMA position forward by n words, wrapping
// (and incrementing the wrap counter) as many times as necessary, then
// notifies any registered waker. n may exceed cap; it wraps as many
// times as needed.
func (s *Sim) Advance(n int) {
	s.mu.Lock()
	s.advanceLocked(n)
	waker := s.waker
	s.mu.Unlock()

	if waker != nil {
		select {
		case waker <- struct{}{}:
		default:
		}
	}
}

func (s *Sim) advanceLocked(n int) {
	for n > 0 {
		step := n
		if step > s.remaining {
			step = s.remaining
		}
		s.remaining -= step
		n -= step
		if s.remaining == 0 {
			s.remaining = s.cap
			s.wrapCount++
		}
	}
}

// ScheduleMidSyncAdvance arranges for the simulated hardware to advance
// by n words during the next ResetCompleteCount call, i.e. strictly
// between the two RemainingTransfers samples a single dma-sync takes.
// When that advance crosses a wrap, it deterministically drives dma-sync
// into its second-counter-read branch (spec property: "sync across a
// wrap"). The advance is applied before the counter is read and cleared,
// so its wraps are reported by that same call and the branch's second
// read returns 0.
func (s *Sim) ScheduleMidSyncAdvance(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.midSync = n
}

// RemainingTransfers implements dma.Ctrl.
func (s *Sim) RemainingTransfers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "remaining")
	return s.remaining
}

// ResetCompleteCount implements dma.Ctrl.
func (s *Sim) ResetCompleteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, "reset_complete_count")
	if s.midSync != 0 {
		s.advanceLocked(s.midSync)
		s.midSync = 0
	}
	n := s.wrapCount
	s.wrapCount = 0
	return n
}

// SetWaker implements dma.Ctrl.
func (s *Sim) SetWaker(ch chan<- struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waker = ch
}
