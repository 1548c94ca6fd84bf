package bucketizer

import (
	"context"
)

// Handler receives every bucket of one or more cardinalities.
// With parallel dispatch a handler may be called concurrently.
type Handler interface {
	Handle(ctx context.Context, b *Bucket) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, b *Bucket) error

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, b *Bucket) error {
	return f(ctx, b)
}

// Discard is the default handler for every cardinality.
var Discard Handler = HandlerFunc(func(context.Context, *Bucket) error { return nil })

// PostProcess runs once after every bucket was dispatched.
type PostProcess func(ctx context.Context, r *Result) error

// Multi fans a bucket out to several handlers in order, stopping at the
// first error.
func Multi(handlers ...Handler) Handler {
	hs := make([]Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return HandlerFunc(func(ctx context.Context, b *Bucket) error {
		for _, h := range hs {
			if err := h.Handle(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
}

// Only wraps h so that it sees only buckets of the listed cardinalities.
func Only(h Handler, cards ...Cardinality) Handler {
	return HandlerFunc(func(ctx context.Context, b *Bucket) error {
		for _, c := range cards {
			if b.Cardinality() == c {
				return h.Handle(ctx, b)
			}
		}
		return nil
	})
}
