// Package records defines the matchable record model shared by every stage
// of a linkage run: records, their multi-valued attribute sets, record keys,
// and the evidence accumulated between two records.
package records

import (
	"iter"
	"strconv"
)

// Matchable is a record that can take part in matching.
// Implementations must be immutable once handed to the engine.
type Matchable interface {
	// Provider names the dataset the record originates from.
	Provider() string
	// ID identifies the record within its provider.
	ID() string
	// Attributes returns the record's attribute set.
	Attributes() *AttributeSet
}

// Record is the stock Matchable implementation.
type Record struct {
	provider string
	id       string
	attrs    *AttributeSet
}

// New creates a record. A nil attribute set is replaced by an empty one.
func New(provider, id string, attrs *AttributeSet) *Record {
	if attrs == nil {
		attrs = NewAttributeSet()
	}
	return &Record{provider: provider, id: id, attrs: attrs}
}

// Provider implements Matchable. A nil record has no provider.
func (r *Record) Provider() string {
	if r == nil {
		return ""
	}
	return r.provider
}

// ID implements Matchable.
func (r *Record) ID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// Attributes implements Matchable.
func (r *Record) Attributes() *AttributeSet {
	if r == nil {
		return nil
	}
	return r.attrs
}

// String returns the record key.
func (r *Record) String() string { return string(KeyOf(r)) }

// Key is the identity of a record within a run.
type Key string

// KeyOf returns the key of r. The provider is length-prefixed so that
// ("ab", "c") and ("a", "bc") never collide.
func KeyOf(r Matchable) Key {
	p := r.Provider()
	return Key(strconv.Itoa(len(p)) + ":" + p + "/" + r.ID())
}

// Seq adapts records to the sequence form consumed by the engine.
func Seq(rs ...Matchable) iter.Seq2[Matchable, error] {
	return func(yield func(Matchable, error) bool) {
		for _, r := range rs {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// FromSlice adapts a slice of any Matchable implementation.
func FromSlice[T Matchable](rs []T) iter.Seq2[Matchable, error] {
	return func(yield func(Matchable, error) bool) {
		for _, r := range rs {
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Collect drains seq, stopping at the first error.
func Collect(seq iter.Seq2[Matchable, error]) ([]Matchable, error) {
	var out []Matchable
	for r, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}
