// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

// index names a point in the logical infinite stream as the pair
// (completionCount, pos): logical position is completionCount*cap + pos,
// with 0 <= pos < cap. completionCount is monotonically non-decreasing
// for the lifetime of a ring except where normalize subtracts the same
// value from two cooperating indices at once.
type index struct {
	completionCount int
	pos             int
}

// reset sets both fields to zero.
func (i *index) reset() {
	i.completionCount = 0
	i.pos = 0
}

// asPhysicalOffset returns the word offset into the fixed buffer for the
// k-th element from this cursor.
func (i index) asPhysicalOffset(cap, k int) int {
	return (i.pos + k) % cap
}

// advance increases the logical position by steps, folding the overflow
// out of pos into completionCount.
func (i *index) advance(cap, steps int) {
	next := i.pos + steps
	i.completionCount += next / cap
	i.pos = next % cap
}

// diff returns the signed logical distance self-other, in words.
func (i index) diff(cap int, other index) int {
	return (i.completionCount*cap + i.pos) - (other.completionCount*cap + other.pos)
}

// normalize subtracts min(a.completionCount, b.completionCount) from
// both indices. This preserves diff(a, b) while keeping the counters
// bounded over long runs.
func normalize(a, b *index) {
	min := a.completionCount
	if b.completionCount < min {
		min = b.completionCount
	}
	a.completionCount -= min
	b.completionCount -= min
}

// dmaSync reconstructs the hardware-driven index from two samples of
// Ctrl.RemainingTransfers sandwiching a read-and-clear of the wrap
// counter. Reading position twice around the counter reset is what lets
// the procedure tell whether the wraps counted in c1 happened before or
// after the second position sample (a naive single-sample-plus-counter
// read miscounts by up to cap on every wrap that straddles the two
// register reads).
func (i *index) dmaSync(cap int, ctrl Ctrl) {
	p1 := cap - ctrl.RemainingTransfers()
	c1 := ctrl.ResetCompleteCount()
	p2 := cap - ctrl.RemainingTransfers()

	var totalWraps int
	if p2 >= p1 {
		totalWraps = c1
	} else {
		totalWraps = c1 + ctrl.ResetCompleteCount()
	}

	i.pos = p2
	i.completionCount += totalWraps
}
