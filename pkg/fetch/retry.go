package fetch

import (
	"errors"
	"math"
	"time"

	"github.com/Sumatoshi-tech/pulith/pkg/pulitherr"
)

// RetryDelay computes the backoff before retry attempt k (1-indexed, the
// first retry after the initial attempt): base * 2^(k-1), saturating
// (spec.md §4.J).
func RetryDelay(k int, base time.Duration) time.Duration {
	if k < 1 || base <= 0 {
		return base
	}

	const maxShift = 62 // guards against overflowing int64 nanoseconds

	shift := k - 1
	if shift > maxShift {
		shift = maxShift
	}

	multiplier := uint64(1) << uint(shift)

	delay, overflow := mulSaturating(uint64(base), multiplier)
	if overflow {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(delay)
}

func mulSaturating(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}

	product := a * b
	if product/a != b || product > math.MaxInt64 {
		return math.MaxInt64, true
	}

	return product, false
}

// Retryable reports whether err is eligible for another attempt (spec.md
// §4.J): transient network errors and 5xx responses, but never checksum
// mismatches or path-sanitization failures.
func Retryable(err error) bool {
	var netErr *pulitherr.Network
	if errors.As(err, &netErr) {
		return true
	}

	var timeoutErr *pulitherr.Timeout
	if errors.As(err, &timeoutErr) {
		return true
	}

	var httpErr *pulitherr.HTTP
	if errors.As(err, &httpErr) {
		return httpErr.Retriable()
	}

	return false
}

// Attempts returns the total number of attempts for a given retry budget:
// the initial attempt plus maxRetries.
func Attempts(maxRetries int) int {
	return 1 + maxRetries
}
