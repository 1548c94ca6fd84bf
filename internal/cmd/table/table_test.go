package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/sinks"
)

func result() *bucketizer.Result {
	r := bucketizer.NewResult("run-1", "crm", "hr", []string{"email", "ssn"})
	r.Stats.Records["hr"] = 4
	r.Stats.Records["crm"] = 2
	r.Stats.Buckets = 3
	r.Stats.Cardinalities[bucketizer.OneToMany] = 1
	r.Stats.Cardinalities[bucketizer.ZeroToOne] = 2
	return r
}

func TestCardinalitiesToTableData(t *testing.T) {
	data := CardinalitiesToTableData(result())
	assert.Equal(t, []string{"Cardinality", "Buckets"}, data.Headers)
	assert.Equal(t, [][]string{
		{"ONE_TO_MANY", "1"},
		{"ZERO_TO_ONE", "2"},
		{"TOTAL", "3"},
	}, data.Rows)
}

func TestStatsToTableData(t *testing.T) {
	narrow := StatsToTableData(result(), false)
	wide := StatsToTableData(result(), true)
	assert.Greater(t, len(wide.Rows), len(narrow.Rows))
	assert.Contains(t, narrow.Rows, []string{"Records", "crm=2 hr=4"})
}

func TestBucketsToTableData(t *testing.T) {
	buckets := []sinks.BucketRecord{{
		ID:          0,
		Cardinality: bucketizer.OneToOne,
		Members:     []sinks.Member{{Provider: "crm", ID: "1"}, {Provider: "hr", ID: "9"}},
		Links: []sinks.Link{{
			A:        sinks.Member{Provider: "crm", ID: "1"},
			B:        sinks.Member{Provider: "hr", ID: "9"},
			Evidence: map[string][]string{"ssn": {"111"}, "email": {"a@x"}},
		}},
	}}

	data := BucketsToTableData(buckets, true)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, []string{"0", "ONE_TO_ONE", "2", "crm/1 hr/9", "crm/1~hr/9(email=a@x ssn=111)"}, data.Rows[0])

	assert.Len(t, BucketsToTableData(buckets, false).Rows[0], 4)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "-", FormatDuration(0))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "12ms", FormatDuration(12*time.Millisecond+300*time.Microsecond))
}
