// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package dma

import "go.uber.org/zap"

// Option configures a Readable or Writable ring at construction time.
type Option func(*options)

type options struct {
	log *zap.SugaredLogger
}

func defaultOptions() options {
	return options{log: zap.NewNop().Sugar()}
}

// WithLogger attaches a structured logger used for Debug-level dma-sync
// traces, Warn-level overrun reports, and Info-level clear/recovery
// events. When omitted, a no-op logger is used.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}
