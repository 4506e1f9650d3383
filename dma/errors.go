// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import "errors"

// ErrOverrun is returned when the hardware-driven index and the
// CPU-driven index have diverged by more than cap words, meaning data
// loss has occurred and no unambiguous reading of the stream is
// possible. Readable and Writable both auto-recover from it in their
// Read/Write wrappers by calling Clear; the Raw variants surface it
// verbatim.
var ErrOverrun = errors.New("dma: overrun: hardware has lapped software")
