package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/linkage/internal/appcontext"
)

const validJob = `name = "people"
attributes = ["ssn"]

[provider1]
name = "crm"
path = "crm.csv"
id = "id"
columns = { ssn = "ssn" }

[provider2]
name = "hr"
path = "hr.db"
query = "SELECT id, attribute, value FROM attrs ORDER BY id"

[output]
sqlite = "out.db"
`

func run(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "linkage"}
	root.AddGroup(&cobra.Group{ID: "management", Title: "Management Commands:"})
	root.AddCommand(NewCommand(&appcontext.Mock{Format: format}))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{"validate"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.toml")
	require.NoError(t, os.WriteFile(path, []byte(validJob), 0o644))

	out, err := run(t, "table", path)
	require.NoError(t, err)
	assert.Contains(t, out, "people")
	assert.Contains(t, out, "sqlite:out.db")
	assert.Contains(t, out, "valid")

	out, err = run(t, "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "name: people")
}

func TestValidateInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: bad\nattributes: []\n"), 0o644))

	_, err := run(t, "table", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attributes")
}
