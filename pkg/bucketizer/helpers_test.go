package bucketizer_test

import (
	"context"
	"iter"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/logging"
	"github.com/agentstation/linkage/pkg/records"
)

// quiet keeps engine runs from writing to the default logger.
var quiet = bucketizer.WithLogger(logging.NewNopLogger())

const (
	hr  = "hr"
	crm = "crm"
)

var attrs = []string{"ssn", "code"}

// rec builds a record from name/value pairs.
func rec(provider, id string, kv ...string) records.Matchable {
	set := records.NewAttributeSet(attrs...)
	for i := 0; i+1 < len(kv); i += 2 {
		set.Add(kv[i], kv[i+1])
	}
	return records.New(provider, id, set)
}

// recorder collects dispatched buckets.
type recorder struct {
	mu      sync.Mutex
	buckets []*bucketizer.Bucket
}

func (r *recorder) Handle(_ context.Context, b *bucketizer.Bucket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buckets = append(r.buckets, b)
	return nil
}

// clusters returns bucket memberships as sorted id lists, sorted.
func (r *recorder) clusters() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, 0, len(r.buckets))
	for _, b := range r.buckets {
		out = append(out, ids(b.Members()))
	}
	slices.SortFunc(out, func(a, b []string) int { return slices.Compare(a, b) })
	return out
}

func (r *recorder) byCardinality() map[bucketizer.Cardinality][][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[bucketizer.Cardinality][][]string)
	for _, b := range r.buckets {
		out[b.Cardinality()] = append(out[b.Cardinality()], ids(b.Members()))
	}
	for _, v := range out {
		slices.SortFunc(v, func(a, b []string) int { return slices.Compare(a, b) })
	}
	return out
}

func ids(rs []records.Matchable) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID())
	}
	slices.Sort(out)
	return out
}

// run links first and second with a recorder as the default handler.
func run(t *testing.T, first, second []records.Matchable, opts ...bucketizer.Option) (*bucketizer.Result, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]bucketizer.Option{quiet, bucketizer.WithDefaultHandler(rec)}, opts...)
	e, err := bucketizer.New(hr, crm, attrs, opts...)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), records.Seq(first...), records.Seq(second...))
	require.NoError(t, err)
	return res, rec
}

func failingSeq(after []records.Matchable, err error) iter.Seq2[records.Matchable, error] {
	return func(yield func(records.Matchable, error) bool) {
		for _, r := range after {
			if !yield(r, nil) {
				return
			}
		}
		yield(nil, err)
	}
}
