package bucketizer

import (
	"fmt"
	"strings"
	"time"
)

// Result represents the outcome of a run.
type Result struct {
	// RunID identifies the run; buckets carry the same id.
	RunID string `json:"run_id" yaml:"run_id"`

	Provider1  string   `json:"provider1" yaml:"provider1"`
	Provider2  string   `json:"provider2" yaml:"provider2"`
	Attributes []string `json:"attributes" yaml:"attributes"`

	// Metadata
	Metadata ResultMetadata `json:"metadata" yaml:"metadata"`

	// Statistics about the run
	Stats Statistics `json:"stats" yaml:"stats"`
}

// ResultMetadata contains timing information about a run.
type ResultMetadata struct {
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Decider   string        `json:"decider,omitempty" yaml:"decider,omitempty"`
	// Parallelism used for loading and dispatch
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// Statistics counts what each phase of a run produced.
type Statistics struct {
	// Records per provider, including providers other than provider1/2.
	Records map[string]int `json:"records" yaml:"records"`

	// Candidates is the number of candidate pairs derived from the index.
	Candidates int `json:"candidates" yaml:"candidates"`
	Accepted   int `json:"accepted" yaml:"accepted"`
	Rejected   int `json:"rejected" yaml:"rejected"`

	// NonDiscriminating counts attribute values shared by three or more
	// records, which contribute no evidence.
	NonDiscriminating int `json:"non_discriminating" yaml:"non_discriminating"`

	// SameProvider counts attribute values shared by exactly two records of
	// the same provider.
	SameProvider int `json:"same_provider" yaml:"same_provider"`

	Buckets       int                 `json:"buckets" yaml:"buckets"`
	LargestBucket int                 `json:"largest_bucket" yaml:"largest_bucket"`
	Cardinalities map[Cardinality]int `json:"cardinalities" yaml:"cardinalities"`

	TotalTimeMs int64 `json:"total_time_ms" yaml:"total_time_ms"`
}

// NewResult creates a result with defaults.
func NewResult(runID, provider1, provider2 string, attributes []string) *Result {
	return &Result{
		RunID:      runID,
		Provider1:  provider1,
		Provider2:  provider2,
		Attributes: attributes,
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
		Stats: Statistics{
			Records:       make(map[string]int),
			Cardinalities: make(map[Cardinality]int),
		},
	}
}

// Count returns the number of buckets classified as c.
func (r *Result) Count(c Cardinality) int {
	return r.Stats.Cardinalities[c]
}

// TotalRecords returns the number of records loaded.
func (r *Result) TotalRecords() int {
	n := 0
	for _, c := range r.Stats.Records {
		n += c
	}
	return n
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	var parts []string
	for _, c := range Cardinalities() {
		if n := r.Count(c); n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", c, n))
		}
	}
	return fmt.Sprintf("Linked %d records into %d buckets (%d of %d candidate pairs accepted): %s",
		r.TotalRecords(), r.Stats.Buckets, r.Stats.Accepted, r.Stats.Candidates, strings.Join(parts, " "))
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
