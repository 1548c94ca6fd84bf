package bucketizer_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/pkg/bucketizer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		n1, n2 int
		want   bucketizer.Cardinality
	}{
		{1, 1, bucketizer.OneToOne},
		{1, 3, bucketizer.OneToMany},
		{2, 1, bucketizer.ManyToOne},
		{2, 5, bucketizer.ManyToMany},
		{1, 0, bucketizer.OneToZero},
		{0, 1, bucketizer.ZeroToOne},
		{0, 0, bucketizer.ZeroToZero},
		{0, 2, bucketizer.ZeroToMany},
		{4, 0, bucketizer.ManyToZero},
		{-1, 1, bucketizer.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, bucketizer.Classify(tt.n1, tt.n2))
		})
	}
}

func TestCardinalityNames(t *testing.T) {
	assert.Len(t, bucketizer.Cardinalities(), 10)
	for _, c := range bucketizer.Cardinalities() {
		parsed, err := bucketizer.ParseCardinality(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	c, err := bucketizer.ParseCardinality("one-to-many")
	require.NoError(t, err)
	assert.Equal(t, bucketizer.OneToMany, c)

	_, err = bucketizer.ParseCardinality("SOME_TO_SOME")
	assert.Error(t, err)
	assert.Equal(t, "UNKNOWN", bucketizer.Cardinality(99).String())
}

func TestCardinalityMirror(t *testing.T) {
	for _, c := range bucketizer.Cardinalities() {
		assert.Equal(t, c, c.Mirror().Mirror())
	}
	assert.Equal(t, bucketizer.ManyToOne, bucketizer.OneToMany.Mirror())
	assert.Equal(t, bucketizer.OneToOne, bucketizer.OneToOne.Mirror())
}

func TestCardinalityJSONKeys(t *testing.T) {
	data, err := json.Marshal(map[bucketizer.Cardinality]int{bucketizer.OneToOne: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ONE_TO_ONE":2}`, string(data))

	var back map[bucketizer.Cardinality]int
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 2, back[bucketizer.OneToOne])
}
