package bucketizer

import (
	"maps"
	"slices"

	"github.com/agentstation/linkage/pkg/constants"
	"github.com/agentstation/linkage/pkg/index"
	"github.com/agentstation/linkage/pkg/records"
)

// PairSeparator joins the two record keys of a candidate pair key.
const PairSeparator = "~"

// Candidate is a pair of records from different providers that share at
// least one attribute value, together with every value they share.
type Candidate struct {
	// Key is order independent: the two record keys, sorted and joined.
	Key string
	// A holds the record with the smaller key.
	A records.Matchable
	B records.Matchable
	// Evidence maps attribute name to the shared values.
	Evidence records.Evidence
}

// PairKey returns the canonical key for a and b.
func PairKey(a, b records.Matchable) string {
	ka, kb := records.KeyOf(a), records.KeyOf(b)
	if kb < ka {
		ka, kb = kb, ka
	}
	return string(ka) + PairSeparator + string(kb)
}

// derivation is the outcome of scanning the index for candidates.
type derivation struct {
	candidates []*Candidate
	// nonDiscriminating counts (name, value) buckets shared by three or
	// more records.
	nonDiscriminating int
	// sameProvider counts two-record buckets whose records come from the
	// same provider.
	sameProvider int
}

// Derive scans every (name, value) bucket of ix and returns the candidate
// pairs in key order. Only buckets of exactly two records from different
// providers contribute evidence.
func Derive(ix *index.Index) []*Candidate {
	return derive(ix).candidates
}

func derive(ix *index.Index) derivation {
	var d derivation
	pairs := make(map[string]*Candidate)

	for _, name := range ix.Names() {
		for value, bucket := range ix.Buckets(name) {
			switch {
			case len(bucket) > constants.DiscriminatingBucketSize:
				d.nonDiscriminating++
				continue
			case len(bucket) < constants.DiscriminatingBucketSize:
				continue
			}

			a, b := bucket[0], bucket[1]
			if a.Provider() == b.Provider() {
				d.sameProvider++
				continue
			}

			key := PairKey(a, b)
			c, ok := pairs[key]
			if !ok {
				if records.KeyOf(b) < records.KeyOf(a) {
					a, b = b, a
				}
				c = &Candidate{Key: key, A: a, B: b, Evidence: records.Evidence{}}
				pairs[key] = c
			}
			c.Evidence.Add(name, value)
		}
	}

	d.candidates = make([]*Candidate, 0, len(pairs))
	for _, key := range slices.Sorted(maps.Keys(pairs)) {
		d.candidates = append(d.candidates, pairs[key])
	}
	return d
}
