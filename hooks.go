package linkage

import (
	"context"
	"sync"

	"github.com/agentstation/linkage/pkg/bucketizer"
)

// Event callback types.
type (
	// BucketHook is called for every bucket. A returned error aborts the
	// run.
	BucketHook func(ctx context.Context, b *bucketizer.Bucket) error

	// CompleteHook is called once after a run completes.
	CompleteHook func(ctx context.Context, r *bucketizer.Result) error
)

// hooks manages event callbacks.
type hooks struct {
	mu       sync.RWMutex
	bucket   []BucketHook
	complete []CompleteHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnBucket registers a callback for every bucket.
func (h *hooks) OnBucket(fn BucketHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bucket = append(h.bucket, fn)
}

// OnComplete registers a callback for completed runs.
func (h *hooks) OnComplete(fn CompleteHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.complete = append(h.complete, fn)
}

// handler returns a bucket handler invoking the bucket hooks in
// registration order.
func (h *hooks) handler() bucketizer.Handler {
	return bucketizer.HandlerFunc(func(ctx context.Context, b *bucketizer.Bucket) error {
		h.mu.RLock()
		fns := h.bucket
		h.mu.RUnlock()
		for _, fn := range fns {
			if err := fn(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *hooks) onComplete(ctx context.Context, r *bucketizer.Result) error {
	h.mu.RLock()
	fns := h.complete
	h.mu.RUnlock()
	for _, fn := range fns {
		if err := fn(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
