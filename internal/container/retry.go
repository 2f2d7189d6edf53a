// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"time"
)

// RetryPull runs pull up to attempts times, doubling the delay before each
// rerun. Only failures IsTransientError classifies as transient are retried;
// success and permanent failures return immediately, and the last transient
// error is returned once the attempt budget is spent. The base-image pull is
// the one step of a bake that touches the network, so it is the only step
// that goes through here - everything after it fails fast.
//
// The context is checked before each backoff sleep so a canceled build stops
// waiting instead of burning through the remaining attempts.
func RetryPull(
	ctx context.Context,
	attempts int,
	baseBackoff time.Duration,
	pull func(attempt int) error,
) error {
	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("pull retry aborted: %w", err)
			}
			time.Sleep(baseBackoff * time.Duration(1<<(attempt-1)))
		}

		err := pull(attempt)
		if err == nil {
			return nil
		}
		if !IsTransientError(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
