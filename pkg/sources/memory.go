package sources

import (
	"context"
	"iter"

	"github.com/agentstation/linkage/pkg/records"
)

// Memory is a slice-backed source.
type Memory struct {
	provider string
	recs     []records.Matchable
}

// NewMemory creates a source over recs.
func NewMemory(provider string, recs ...records.Matchable) *Memory {
	return &Memory{provider: provider, recs: recs}
}

// Provider implements Source.
func (m *Memory) Provider() string { return m.provider }

// Type implements Source.
func (m *Memory) Type() Type { return MemoryType }

// Add appends records.
func (m *Memory) Add(recs ...records.Matchable) {
	m.recs = append(m.recs, recs...)
}

// Len returns the number of records.
func (m *Memory) Len() int { return len(m.recs) }

// Records implements Source.
func (m *Memory) Records(ctx context.Context) iter.Seq2[records.Matchable, error] {
	return func(yield func(records.Matchable, error) bool) {
		for _, r := range m.recs {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}
