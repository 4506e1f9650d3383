// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dma implements the coordination layer between a peripheral DMA
// engine streaming words into, or out of, a fixed circular buffer and a
// CPU-side consumer or producer reading or writing at its own pace.
//
// The package does not talk to any hardware itself. It consumes an
// abstract Ctrl, implemented by a concrete peripheral driver, and
// reconstructs a monotonic logical position from the two pieces of
// hardware state that Ctrl exposes: a transfers-remaining register and a
// wrap-event counter. See Readable and Writable for the public surface.
package dma
