package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// minBucket keeps small limits from degenerating into tiny reads
const minBucket = 64 * 1024

// Limiter is a token bucket shared by every reader of one run
type Limiter struct {
	bytesPerSecond int64
	bucketSize     int64

	mu         sync.Mutex
	tokens     int64
	lastUpdate time.Time
}

// NewLimiter creates a limiter for bytesPerSecond. It returns nil, meaning
// unlimited, when bytesPerSecond is not positive.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucketSize := max(bytesPerSecond, minBucket)

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		bucketSize:     bucketSize,
		tokens:         bucketSize,
		lastUpdate:     time.Now(),
	}
}

// BytesPerSecond returns the configured rate
func (l *Limiter) BytesPerSecond() int64 {
	return l.bytesPerSecond
}

// Wait blocks until n tokens are available and takes them. Requests larger
// than the bucket are capped to the bucket size.
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	n = min(n, l.bucketSize)
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= n {
			l.tokens -= n
			l.mu.Unlock()
			return nil
		}
		deficit := n - l.tokens
		wait := max(time.Duration(float64(deficit)/float64(l.bytesPerSecond)*float64(time.Second)), time.Millisecond)
		l.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refill must be called with mu held
func (l *Limiter) refill() {
	now := time.Now()
	add := int64(now.Sub(l.lastUpdate).Seconds() * float64(l.bytesPerSecond))
	if add > 0 {
		l.tokens = min(l.tokens+add, l.bucketSize)
		l.lastUpdate = now
	}
}

// refund returns reserved tokens that were not used
func (l *Limiter) refund(n int64) {
	if n <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = min(l.tokens+n, l.bucketSize)
}

// Reader throttles an io.Reader through a Limiter
type Reader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *Limiter
}

// NewReader wraps reader; a nil limiter returns reader unchanged
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{ctx: ctx, reader: reader, limiter: limiter}
}

func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	if int64(len(p)) > r.limiter.bucketSize {
		p = p[:r.limiter.bucketSize]
	}
	reserved := int64(len(p))
	if err := r.limiter.Wait(r.ctx, reserved); err != nil {
		return 0, err
	}

	n, err := r.reader.Read(p)
	r.limiter.refund(reserved - int64(n))
	return n, err
}

// ReadCloser is a Reader that keeps the underlying Close
type ReadCloser struct {
	Reader
	closer io.Closer
}

// NewReadCloser wraps rc; a nil limiter returns rc unchanged
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{
		Reader: Reader{ctx: ctx, reader: rc, limiter: limiter},
		closer: rc,
	}
}

// Close closes the underlying reader
func (rc *ReadCloser) Close() error {
	return rc.closer.Close()
}
