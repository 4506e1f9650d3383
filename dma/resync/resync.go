// Copyright 2024 The Ringdma Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package resync layers optional, additive convenience helpers over
// package dma's synchronous Clear: retrying Clear against a control
// port whose construction can itself transiently fail, and aggregating
// the Clear errors of several independently-owned rings (for example one
// Readable and one Writable ring backing a full-duplex peripheral) into
// a single reported error.
//
// Nothing here changes dma's core semantics. A ring's Clear remains a
// synchronous, non-blocking call; resync only decides when to call it
// again and how to report failures across more than one ring.
package resync

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/go-multierror"

	"github.com/periph-dma/ringdma/dma"
)

// ClearRetry repeatedly calls probe to obtain a live dma.Ctrl and, once
// one is returned, calls clear(ctrl) (typically a ring's Clear method
// value, e.g. ring.Clear) and returns. Probe failures are retried with
// backOff (nil uses backoff.NewExponentialBackOff's defaults) up to
// maxAttempts times, or until ctx is canceled, whichever comes first.
// Clear itself never fails, so once probe succeeds ClearRetry always
// succeeds.
func ClearRetry(ctx context.Context, clear func(dma.Ctrl), maxAttempts int, backOff backoff.BackOff, probe func() (dma.Ctrl, error)) error {
	if backOff == nil {
		backOff = backoff.NewExponentialBackOff()
	}
	op := func() (dma.Ctrl, error) {
		return probe()
	}
	ctrl, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backOff),
		backoff.WithMaxTries(uint(maxAttempts)),
	)
	if err != nil {
		return fmt.Errorf("resync: control port unavailable after retries: %w", err)
	}
	clear(ctrl)
	return nil
}

// Target pairs a ring's Clear method value with the probe that obtains
// its control port, for use with ClearRetryAll.
type Target struct {
	Name  string
	Clear func(dma.Ctrl)
	Probe func() (dma.Ctrl, error)
}

// ClearRetryAll runs ClearRetry for every Target, collecting every
// failure with github.com/hashicorp/go-multierror instead of stopping
// at the first one, so a caller managing a full-duplex peripheral's
// Readable and Writable rings as a unit sees every control port that
// failed to come back, not just the first.
func ClearRetryAll(ctx context.Context, maxAttempts int, backOff backoff.BackOff, targets []Target) error {
	var result *multierror.Error
	for _, tgt := range targets {
		if err := ClearRetry(ctx, tgt.Clear, maxAttempts, backOff, tgt.Probe); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", tgt.Name, err))
		}
	}
	return result.ErrorOrNil()
}
