// Package table converts run results and buckets into rows for CLI output.
package table

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/sinks"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// CardinalitiesToTableData lists the bucket count of every cardinality that
// occurred, in the canonical order.
func CardinalitiesToTableData(r *bucketizer.Result) Data {
	rows := [][]string{}
	for _, c := range bucketizer.Cardinalities() {
		n := r.Count(c)
		if n == 0 {
			continue
		}
		rows = append(rows, []string{c.String(), strconv.Itoa(n)})
	}
	rows = append(rows, []string{"TOTAL", strconv.Itoa(r.Stats.Buckets)})
	return Data{
		Headers:         []string{"Cardinality", "Buckets"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// StatsToTableData renders the run statistics as property/value rows.
func StatsToTableData(r *bucketizer.Result, wide bool) Data {
	rows := [][]string{
		{"Run", r.RunID},
		{"Providers", r.Provider1 + ", " + r.Provider2},
		{"Attributes", strings.Join(r.Attributes, ", ")},
		{"Records", FormatRecords(r.Stats.Records)},
		{"Candidates", strconv.Itoa(r.Stats.Candidates)},
		{"Accepted", strconv.Itoa(r.Stats.Accepted)},
		{"Rejected", strconv.Itoa(r.Stats.Rejected)},
		{"Buckets", strconv.Itoa(r.Stats.Buckets)},
		{"Duration", FormatDuration(r.Metadata.Duration)},
	}
	if wide {
		rows = append(rows,
			[]string{"Decider", r.Metadata.Decider},
			[]string{"Parallelism", strconv.Itoa(r.Metadata.Parallelism)},
			[]string{"Largest Bucket", strconv.Itoa(r.Stats.LargestBucket)},
			[]string{"Non-Discriminating", strconv.Itoa(r.Stats.NonDiscriminating)},
			[]string{"Same Provider", strconv.Itoa(r.Stats.SameProvider)},
		)
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows:    rows,
	}
}

// BucketsToTableData lists buckets. The wide form adds the accepted links
// and their evidence.
func BucketsToTableData(buckets []sinks.BucketRecord, wide bool) Data {
	headers := []string{"ID", "Cardinality", "Size", "Members"}
	if wide {
		headers = append(headers, "Links")
	}

	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		members := make([]string, len(b.Members))
		for i, m := range b.Members {
			members[i] = m.Provider + "/" + m.ID
		}
		row := []string{
			strconv.Itoa(b.ID),
			b.Cardinality.String(),
			strconv.Itoa(len(b.Members)),
			strings.Join(members, " "),
		}
		if wide {
			row = append(row, FormatLinks(b.Links))
		}
		rows = append(rows, row)
	}

	return Data{
		Headers:         headers,
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignRight, AlignLeft, AlignLeft},
	}
}

// FormatRecords formats per-provider record counts, sorted by provider.
func FormatRecords(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(counts))
	for _, p := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s=%d", p, counts[p]))
	}
	return strings.Join(parts, " ")
}

// FormatLinks formats links as "a~b(attr=v)" separated by "; ".
func FormatLinks(links []sinks.Link) string {
	if len(links) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(links))
	for _, l := range links {
		var ev []string
		for _, name := range slices.Sorted(maps.Keys(l.Evidence)) {
			ev = append(ev, name+"="+strings.Join(l.Evidence[name], ","))
		}
		parts = append(parts, fmt.Sprintf("%s/%s~%s/%s(%s)",
			l.A.Provider, l.A.ID, l.B.Provider, l.B.ID, strings.Join(ev, " ")))
	}
	return strings.Join(parts, "; ")
}

// FormatDuration rounds d for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
