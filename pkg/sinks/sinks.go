// Package sinks provides bucket handlers that keep, report, or persist the
// buckets of a linkage run: an in-memory collector, a structured log, a
// SQLite database, and a Neo4j graph.
//
// Every sink implements bucketizer.Handler and is safe for concurrent use,
// so it can be registered for any cardinality and used with parallel
// dispatch.
package sinks

import (
	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/records"
)

// Member identifies a bucket member.
type Member struct {
	Provider string `json:"provider" yaml:"provider"`
	ID       string `json:"id" yaml:"id"`
}

// Link is an accepted association between two members.
type Link struct {
	A        Member              `json:"a" yaml:"a"`
	B        Member              `json:"b" yaml:"b"`
	Evidence map[string][]string `json:"evidence" yaml:"evidence"`
}

// BucketRecord is a serializable copy of a bucket.
type BucketRecord struct {
	RunID       string                 `json:"run_id" yaml:"run_id"`
	ID          int                    `json:"id" yaml:"id"`
	Cardinality bucketizer.Cardinality `json:"cardinality" yaml:"cardinality"`
	Members     []Member               `json:"members" yaml:"members"`
	Links       []Link                 `json:"links,omitempty" yaml:"links,omitempty"`
}

// Snapshot copies b into a BucketRecord.
func Snapshot(b *bucketizer.Bucket) BucketRecord {
	rec := BucketRecord{
		RunID:       b.RunID(),
		ID:          b.ID(),
		Cardinality: b.Cardinality(),
		Members:     make([]Member, 0, b.Size()),
	}
	for _, m := range b.Members() {
		rec.Members = append(rec.Members, memberOf(m))
	}
	for _, a := range b.Associations() {
		rec.Links = append(rec.Links, Link{
			A:        memberOf(a.A),
			B:        memberOf(a.B),
			Evidence: a.Evidence.Map(),
		})
	}
	return rec
}

func memberOf(r records.Matchable) Member {
	return Member{Provider: r.Provider(), ID: r.ID()}
}
