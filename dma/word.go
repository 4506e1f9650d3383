// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

// Word is a primitive integer addressable with a single load/store, the
// unit the DMA engine moves one of per transfer. The buffer's alignment
// to satisfy the hardware's requirements is the caller's responsibility.
type Word interface {
	~uint8 | ~uint16 | ~uint32
}
