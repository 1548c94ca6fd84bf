// Package job describes a linkage run declaratively: the two providers and
// where their records come from, the attributes to match on, the decider
// policy, and where results go. Jobs are read from YAML or TOML files.
package job

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/agentstation/linkage/pkg/errors"
)

// Job is a complete run description.
type Job struct {
	Name        string   `yaml:"name" toml:"name" json:"name"`
	Attributes  []string `yaml:"attributes" toml:"attributes" json:"attributes"`
	Provider1   Provider `yaml:"provider1" toml:"provider1" json:"provider1"`
	Provider2   Provider `yaml:"provider2" toml:"provider2" json:"provider2"`
	Decider     Decider  `yaml:"decider,omitempty" toml:"decider,omitempty" json:"decider,omitempty"`
	Normalize   []string `yaml:"normalize,omitempty" toml:"normalize,omitempty" json:"normalize,omitempty"`
	Parallelism int      `yaml:"parallelism,omitempty" toml:"parallelism,omitempty" json:"parallelism,omitempty"`
	Output      Output   `yaml:"output,omitempty" toml:"output,omitempty" json:"output,omitempty"`

	// dir is the directory of the job file; relative paths resolve
	// against it.
	dir string
}

// Provider describes where one provider's records come from.
type Provider struct {
	Name string `yaml:"name" toml:"name" json:"name"`
	// Type is csv, tsv or sqlite. Empty infers csv/tsv from Path.
	Type string `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	Path string `yaml:"path" toml:"path" json:"path"`

	// Delimited files
	ID        string            `yaml:"id,omitempty" toml:"id,omitempty" json:"id,omitempty"`
	Columns   map[string]string `yaml:"columns,omitempty" toml:"columns,omitempty" json:"columns,omitempty"`
	Delimiter string            `yaml:"delimiter,omitempty" toml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Separator *string           `yaml:"separator,omitempty" toml:"separator,omitempty" json:"separator,omitempty"`

	// SQLite
	Query string `yaml:"query,omitempty" toml:"query,omitempty" json:"query,omitempty"`
}

// Decider configures the stock deciders. Every configured rule must accept
// a pair.
type Decider struct {
	MinSharedAttributes int      `yaml:"min_shared_attributes,omitempty" toml:"min_shared_attributes,omitempty" json:"min_shared_attributes,omitempty"`
	NotSolely           []string `yaml:"not_solely,omitempty" toml:"not_solely,omitempty" json:"not_solely,omitempty"`
	RejectAll           bool     `yaml:"reject_all,omitempty" toml:"reject_all,omitempty" json:"reject_all,omitempty"`
}

// Output selects the sinks buckets are written to.
type Output struct {
	SQLite string `yaml:"sqlite,omitempty" toml:"sqlite,omitempty" json:"sqlite,omitempty"`
	Neo4j  *Neo4j `yaml:"neo4j,omitempty" toml:"neo4j,omitempty" json:"neo4j,omitempty"`
	// Log writes one log line per bucket.
	Log bool `yaml:"log,omitempty" toml:"log,omitempty" json:"log,omitempty"`
	// Only restricts persisted buckets to the listed cardinalities.
	Only []string `yaml:"only,omitempty" toml:"only,omitempty" json:"only,omitempty"`
}

// Neo4j configures the graph sink.
type Neo4j struct {
	URI      string `yaml:"uri" toml:"uri" json:"uri"`
	User     string `yaml:"user" toml:"user" json:"user"`
	Database string `yaml:"database,omitempty" toml:"database,omitempty" json:"database,omitempty"`
	// PasswordEnv names the environment variable holding the password.
	PasswordEnv string `yaml:"password_env,omitempty" toml:"password_env,omitempty" json:"password_env,omitempty"`
}

// Password reads the password from the configured environment variable.
func (n *Neo4j) Password() string {
	if n.PasswordEnv == "" {
		return os.Getenv("NEO4J_PASSWORD")
	}
	return os.Getenv(n.PasswordEnv)
}

// Load reads and validates a job file. The format follows the extension:
// .yaml, .yml or .toml.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	j, err := Parse(data, Format(path))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	j.dir = filepath.Dir(path)

	if err := j.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

// Format returns "toml" for .toml files and "yaml" otherwise.
func Format(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// Parse decodes a job without validating it.
func Parse(data []byte, format string) (*Job, error) {
	j := &Job{}
	var err error
	switch format {
	case "toml":
		err = toml.Unmarshal(data, j)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, j)
	default:
		return nil, &errors.ValidationError{Field: "format", Value: format, Message: "must be yaml or toml"}
	}
	if err != nil {
		return nil, errors.NewParseError(format, "", err.Error(), err)
	}
	return j, nil
}

// Resolve returns path relative to the job file's directory unless it is
// absolute.
func (j *Job) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || j.dir == "" {
		return path
	}
	return filepath.Join(j.dir, path)
}

// SetDir sets the directory relative paths resolve against.
func (j *Job) SetDir(dir string) {
	j.dir = dir
}
