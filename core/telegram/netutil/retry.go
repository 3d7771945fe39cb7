package netutil

import "time"

// ShouldRetry reports whether repeating the call may succeed. Cancellation and
// client errors are final; transport hiccups, 5xx and flood waits are not.
func ShouldRetry(err error) bool {
	switch Classify(err) {
	case KindTimeout, KindDNS, KindDial, KindReset, KindFlood, KindHTTP5xx:
		return true
	default:
		return false
	}
}

// Backoff returns the delay before the next attempt: the server-requested
// wait for flood errors, otherwise base grown linearly with attempt.
func Backoff(err error, base time.Duration, attempt int) time.Duration {
	if wait := RetryAfter(err); wait > 0 {
		return wait
	}
	return base * time.Duration(max(attempt, 1))
}
