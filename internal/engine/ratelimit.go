package engine

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a rate.Limiter that caps aggregate throughput to
// bytesPerSec. The burst matches the copy buffer so a full read never has
// to be split.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := copyBufferSize
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// rateLimitedReader wraps an io.Reader and enforces a shared rate limit.
type rateLimitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

// limitReader throttles r by limiter; a nil limiter returns r as is.
func limitReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &rateLimitedReader{ctx: ctx, r: r, limiter: limiter}
}

// Read never asks for more than one burst, so WaitN cannot fail on size.
func (rl *rateLimitedReader) Read(p []byte) (int, error) {
	if burst := rl.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := rl.r.Read(p)
	if n > 0 {
		if waitErr := rl.limiter.WaitN(rl.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}
