package sinks

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/linkage/pkg/bucketizer"
)

// Collector keeps a snapshot of every bucket it handles.
type Collector struct {
	mu      sync.Mutex
	buckets []BucketRecord
	limit   int
}

// NewCollector creates a collector. A positive limit keeps only the
// snapshots with the lowest bucket ids, whatever order they arrive in.
func NewCollector(limit int) *Collector {
	return &Collector{limit: limit}
}

// Handle implements bucketizer.Handler.
func (c *Collector) Handle(_ context.Context, b *bucketizer.Bucket) error {
	rec := Snapshot(b)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.limit <= 0 || len(c.buckets) < c.limit {
		c.buckets = append(c.buckets, rec)
		return nil
	}
	highest := 0
	for i, kept := range c.buckets {
		if kept.ID > c.buckets[highest].ID {
			highest = i
		}
	}
	if rec.ID < c.buckets[highest].ID {
		c.buckets[highest] = rec
	}
	return nil
}

// Buckets returns the snapshots ordered by bucket id.
func (c *Collector) Buckets() []BucketRecord {
	c.mu.Lock()
	out := slices.Clone(c.buckets)
	c.mu.Unlock()
	slices.SortFunc(out, func(a, b BucketRecord) int { return a.ID - b.ID })
	return out
}

// Filter returns the snapshots of the given cardinality ordered by id.
func (c *Collector) Filter(card bucketizer.Cardinality) []BucketRecord {
	var out []BucketRecord
	for _, b := range c.Buckets() {
		if b.Cardinality == card {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of snapshots kept.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// Reset discards every snapshot.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets = nil
}
