package bucketizer

import (
	"github.com/agentstation/linkage/pkg/records"
)

// Association is an accepted correspondence between two members of a
// bucket.
type Association struct {
	A        records.Matchable
	B        records.Matchable
	Evidence records.Evidence
	// Label is the string form of Evidence.
	Label string
}

// Bucket is a read-only view over one connected cluster of records.
type Bucket struct {
	id          int
	runID       string
	cardinality Cardinality
	provider1   string
	provider2   string
	members     []records.Matchable
	first       []records.Matchable
	second      []records.Matchable
	others      []records.Matchable
	links       []Association
}

func newBucket(id int, runID, provider1, provider2 string, members []records.Matchable, links []Association) *Bucket {
	b := &Bucket{
		id:        id,
		runID:     runID,
		provider1: provider1,
		provider2: provider2,
		members:   members,
		links:     links,
	}
	for _, m := range members {
		switch m.Provider() {
		case provider1:
			b.first = append(b.first, m)
		case provider2:
			b.second = append(b.second, m)
		default:
			b.others = append(b.others, m)
		}
	}
	b.cardinality = Classify(len(b.first), len(b.second))
	return b
}

// ID returns the bucket's sequence number within its run, starting at 1.
func (b *Bucket) ID() int { return b.id }

// RunID returns the id of the run that produced the bucket.
func (b *Bucket) RunID() string { return b.runID }

// Cardinality returns the bucket's classification.
func (b *Bucket) Cardinality() Cardinality { return b.cardinality }

// Size returns the number of member records.
func (b *Bucket) Size() int { return len(b.members) }

// Members returns every member record.
func (b *Bucket) Members() []records.Matchable { return clone(b.members) }

// Provider1Members returns the members from provider1.
func (b *Bucket) Provider1Members() []records.Matchable { return clone(b.first) }

// Provider2Members returns the members from provider2.
func (b *Bucket) Provider2Members() []records.Matchable { return clone(b.second) }

// Others returns members whose provider is neither provider1 nor provider2.
func (b *Bucket) Others() []records.Matchable { return clone(b.others) }

// ProviderMembers returns the members from the named provider.
func (b *Bucket) ProviderMembers(provider string) []records.Matchable {
	switch provider {
	case b.provider1:
		return clone(b.first)
	case b.provider2:
		return clone(b.second)
	}
	var out []records.Matchable
	for _, m := range b.others {
		if m.Provider() == provider {
			out = append(out, m)
		}
	}
	return out
}

// Associations returns the accepted pairs inside the bucket. Each call
// returns its own copy of the evidence.
func (b *Bucket) Associations() []Association {
	out := make([]Association, len(b.links))
	for i, l := range b.links {
		l.Evidence = l.Evidence.Clone()
		out[i] = l
	}
	return out
}

// Contains reports whether the record with key k is a member.
func (b *Bucket) Contains(k records.Key) bool {
	for _, m := range b.members {
		if records.KeyOf(m) == k {
			return true
		}
	}
	return false
}

func clone(in []records.Matchable) []records.Matchable {
	out := make([]records.Matchable, len(in))
	copy(out, in)
	return out
}
