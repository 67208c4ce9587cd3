package fetch

import (
	"context"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// Throttle wraps a byte stream in a token-bucket limiter: capacity and
// refill rate both equal bytesPerSecond (spec.md §4.I).
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle builds a Throttle. A bytesPerSecond of 0 disables limiting.
func NewThrottle(bytesPerSecond int) *Throttle {
	if bytesPerSecond <= 0 {
		return &Throttle{}
	}

	return &Throttle{limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond)}
}

// TryAcquire attempts to reserve n bytes without blocking.
func (t *Throttle) TryAcquire(n int) bool {
	if t.limiter == nil {
		return true
	}

	return t.limiter.AllowN(time.Now(), n)
}

// Acquire blocks until n bytes are available or ctx is done.
func (t *Throttle) Acquire(ctx context.Context, n int) error {
	if t.limiter == nil {
		return nil
	}

	return t.limiter.WaitN(ctx, n)
}

// ThrottledReader wraps r, acquiring n tokens from the throttle before
// releasing each chunk of n bytes read.
type ThrottledReader struct {
	r     io.Reader
	t     *Throttle
	ctx   context.Context
}

// NewThrottledReader wraps r with t. A nil t (or one built with
// bytesPerSecond<=0) makes this a transparent passthrough.
func NewThrottledReader(ctx context.Context, r io.Reader, t *Throttle) *ThrottledReader {
	return &ThrottledReader{r: r, t: t, ctx: ctx}
}

func (tr *ThrottledReader) Read(buf []byte) (int, error) {
	n, err := tr.r.Read(buf)
	if n > 0 && tr.t != nil {
		if waitErr := tr.t.Acquire(tr.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}

	return n, err
}
