// Package sources produces the record sequences a linkage run consumes.
// A Source yields the records of one provider from memory, a delimited
// file, or a SQLite query.
//
// Example usage:
//
//	hr := sources.NewDelimited("hr", "employees.csv.gz", "emp_id",
//	    map[string]string{"ssn": "ssn", "mail": "email"},
//	    sources.WithNormalizer(sources.Chain(sources.Trim, sources.Fold)))
//
//	for rec, err := range hr.Records(ctx) {
//	    ...
//	}
package sources

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/agentstation/linkage/pkg/records"
)

// Type identifies the kind of a source.
type Type string

// Source types.
const (
	MemoryType Type = "memory"
	CSVType    Type = "csv"
	TSVType    Type = "tsv"
	SQLiteType Type = "sqlite"
)

// String returns the string representation of a source type.
func (t Type) String() string {
	return string(t)
}

// Types returns all available source types.
func Types() []Type {
	return []Type{MemoryType, CSVType, TSVType, SQLiteType}
}

// IsValid returns true if the type is one of the defined constants.
func (t Type) IsValid() bool {
	return slices.Contains(Types(), t)
}

// Source yields the records of one provider.
type Source interface {
	// Provider names the provider the records belong to.
	Provider() string

	// Type returns the kind of this source.
	Type() Type

	// Records yields every record. The sequence stops after the first error.
	Records(ctx context.Context) iter.Seq2[records.Matchable, error]
}

// Sources is a thread-safe registry of sources keyed by provider.
type Sources struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewSources creates a registry holding srcs.
func NewSources(srcs ...Source) *Sources {
	s := &Sources{sources: make(map[string]Source, len(srcs))}
	for _, src := range srcs {
		s.sources[src.Provider()] = src
	}
	return s
}

// Get returns the source of provider.
func (s *Sources) Get(provider string) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[provider]
	return src, found
}

// Set registers src under its provider, replacing any previous source.
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[src.Provider()] = src
}

// Delete removes the source of provider.
func (s *Sources) Delete(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, provider)
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// Providers returns the registered provider names, sorted.
func (s *Sources) Providers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sources))
	for p := range s.sources {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
