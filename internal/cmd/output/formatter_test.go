package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/internal/cmd/table"
)

var sample = table.Data{
	Headers: []string{"Cardinality", "Buckets"},
	Rows:    [][]string{{"ONE_TO_ONE", "2"}, {"ZERO_TO_ONE", "1"}},
}

type versionInfo struct {
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	hidden    string
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "WIDE", "json", "yaml", "markdown", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, sample))
	out := buf.String()
	assert.Contains(t, out, "ONE_TO_ONE")
	assert.Contains(t, out, "ZERO_TO_ONE")
}

func TestTableFormatterMultiple(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatWide).Format(&buf, []table.Data{sample, sample}))
	assert.Equal(t, 2, strings.Count(buf.String(), "ZERO_TO_ONE"))
}

func TestTableFormatterStruct(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, versionInfo{Version: "1.2.3", GoVersion: "go1.24", hidden: "x"}))
	out := buf.String()
	assert.Contains(t, out, "1.2.3")
	assert.NotContains(t, out, "hidden")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, versionInfo{Version: "1.2.3"}))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "1.2.3", got["version"])
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, map[string]int{"buckets": 3}))
	assert.Equal(t, "buckets: 3\n", buf.String())
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, sample))
	out := buf.String()
	assert.Contains(t, out, "| Cardinality")
	assert.Contains(t, out, "ONE_TO_ONE")
}

func TestMarkdownFormatterFallback(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, map[string]int{"buckets": 3}))
	assert.Contains(t, buf.String(), "```json")
	assert.Contains(t, buf.String(), `"buckets": 3`)
}

func TestIsTabular(t *testing.T) {
	assert.True(t, FormatTable.IsTabular())
	assert.True(t, FormatMarkdown.IsTabular())
	assert.False(t, FormatJSON.IsTabular())
}
