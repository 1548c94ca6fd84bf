// Package index implements the attribute index: for every declared
// attribute name, a mapping from value to the set of records holding it.
//
// The index is append-only while a run loads its records and read-only
// afterwards. Add is safe for concurrent use so that both providers can be
// loaded in parallel.
package index

import (
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/agentstation/linkage/pkg/records"
)

// Index maps (attribute name, value) to records.
type Index struct {
	mu      sync.RWMutex
	names   []string
	buckets map[string]map[string]map[records.Key]records.Matchable
}

// New creates an index over the declared attribute names.
func New(names ...string) *Index {
	ix := &Index{buckets: make(map[string]map[string]map[records.Key]records.Matchable, len(names))}
	for _, n := range names {
		if _, ok := ix.buckets[n]; ok {
			continue
		}
		ix.names = append(ix.names, n)
		ix.buckets[n] = make(map[string]map[records.Key]records.Matchable)
	}
	slices.Sort(ix.names)
	return ix
}

// Add inserts r under every (name, value) it holds for the declared names.
// Repeated inserts of the same record are idempotent. Names the record
// carries but the index does not declare are ignored.
func (ix *Index) Add(r records.Matchable) {
	attrs := r.Attributes()
	if attrs == nil {
		return
	}
	key := records.KeyOf(r)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, name := range ix.names {
		values, ok := attrs.Values(name)
		if !ok {
			continue
		}
		byValue := ix.buckets[name]
		for _, v := range values {
			bucket, ok := byValue[v]
			if !ok {
				bucket = make(map[records.Key]records.Matchable, 1)
				byValue[v] = bucket
			}
			bucket[key] = r
		}
	}
}

// Lookup returns the records sharing value under name, ordered by key.
// An undeclared name or unseen value yields an empty result.
func (ix *Index) Lookup(name, value string) []records.Matchable {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return sortedBucket(ix.buckets[name][value])
}

// Size returns the number of records sharing value under name.
func (ix *Index) Size(name, value string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.buckets[name][value])
}

// Keys returns the distinct values observed under name, sorted.
func (ix *Index) Keys(name string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return slices.Sorted(maps.Keys(ix.buckets[name]))
}

// Names returns the declared attribute names, sorted.
func (ix *Index) Names() []string {
	return slices.Clone(ix.names)
}

// Len returns the number of distinct values observed under name.
func (ix *Index) Len(name string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.buckets[name])
}

// Buckets yields every (value, records) pair under name in value order.
func (ix *Index) Buckets(name string) iter.Seq2[string, []records.Matchable] {
	return func(yield func(string, []records.Matchable) bool) {
		for _, v := range ix.Keys(name) {
			if !yield(v, ix.Lookup(name, v)) {
				return
			}
		}
	}
}

func sortedBucket(bucket map[records.Key]records.Matchable) []records.Matchable {
	out := make([]records.Matchable, 0, len(bucket))
	for _, k := range slices.Sorted(maps.Keys(bucket)) {
		out = append(out, bucket[k])
	}
	return out
}
