package bucketizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/index"
	"github.com/agentstation/linkage/pkg/records"
)

func TestPairKeyOrderIndependent(t *testing.T) {
	a, b := rec(hr, "A1"), rec(crm, "B1")
	assert.Equal(t, bucketizer.PairKey(a, b), bucketizer.PairKey(b, a))
	assert.Contains(t, bucketizer.PairKey(a, b), bucketizer.PairSeparator)
}

func TestDerive(t *testing.T) {
	ix := index.New(attrs...)
	for _, r := range []records.Matchable{
		rec(hr, "A1", "ssn", "1", "code", "X", "code", "Z"),
		rec(crm, "B1", "ssn", "1", "code", "X", "code", "Z"),
		rec(hr, "A2", "ssn", "2"),
		rec(crm, "B2", "ssn", "2"),
		rec(crm, "B3", "ssn", "2"),
		rec(hr, "A3", "ssn", "3"),
	} {
		ix.Add(r)
	}

	got := bucketizer.Derive(ix)
	require.Len(t, got, 1, "a value shared by three records yields no pair")

	c := got[0]
	assert.Equal(t, bucketizer.PairKey(c.A, c.B), c.Key)
	assert.Less(t, string(records.KeyOf(c.A)), string(records.KeyOf(c.B)))
	assert.Equal(t, map[string][]string{"code": {"X", "Z"}, "ssn": {"1"}}, c.Evidence.Map())
}
