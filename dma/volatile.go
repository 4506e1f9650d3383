// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import (
	"sync/atomic"
	"unsafe"
)

// loadWord and storeWord perform the buffer accesses the DMA engine
// races against. sync/atomic is the un-elidable-access primitive for
// 32-bit words; narrower words use a plain access, since a naturally
// aligned 8 or 16 bit load or store cannot tear.
func loadWord[W Word](buf []W, i int) W {
	var zero W
	if unsafe.Sizeof(zero) == 4 {
		p := (*uint32)(unsafe.Pointer(&buf[i]))
		return W(atomic.LoadUint32(p))
	}
	return buf[i]
}

func storeWord[W Word](buf []W, i int, v W) {
	var zero W
	if unsafe.Sizeof(zero) == 4 {
		p := (*uint32)(unsafe.Pointer(&buf[i]))
		atomic.StoreUint32(p, uint32(v))
		return
	}
	buf[i] = v
}
