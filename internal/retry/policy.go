// Package retry provides the backoff schedule used for transient publish
// failures, such as sending a dump while the broker reconnects.
package retry

import "time"

// Policy holds linear backoff settings. It is immutable after construction.
type Policy struct {
	Initial    time.Duration // delay after the first failure
	Max        time.Duration // cap for growth
	MaxRetries int           // retry attempts after the first failure
}

// DefaultPolicy returns the schedule the publisher runs with: 1s initial,
// 30s cap, 2 retries.
func DefaultPolicy() Policy {
	return Policy{Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// Delay returns the backoff delay for the given retry attempt number
// (1-based: first retry => 1). The delay grows linearly up to the cap.
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	d := time.Duration(retryCount) * p.Initial
	if d > p.Max {
		return p.Max
	}
	return d
}
