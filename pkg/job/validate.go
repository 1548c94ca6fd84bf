package job

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/constants"
	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/sources"
)

// Validate checks the job for completeness and consistency. It returns the
// first problem found as a ValidationError.
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Name) == "" {
		return &errors.ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if len(j.Attributes) == 0 {
		return &errors.ValidationError{Field: "attributes", Message: "at least one attribute is required"}
	}
	for _, a := range j.Attributes {
		if strings.TrimSpace(a) == "" {
			return &errors.ValidationError{Field: "attributes", Message: "attribute names cannot be empty"}
		}
	}

	if err := j.Provider1.validate("provider1", j.Attributes); err != nil {
		return err
	}
	if err := j.Provider2.validate("provider2", j.Attributes); err != nil {
		return err
	}
	if j.Provider1.Name == j.Provider2.Name {
		return &errors.ValidationError{Field: "provider2.name", Value: j.Provider2.Name, Message: "must differ from provider1.name"}
	}

	if j.Decider.MinSharedAttributes < 0 || j.Decider.MinSharedAttributes > len(j.Attributes) {
		return &errors.ValidationError{
			Field:   "decider.min_shared_attributes",
			Value:   j.Decider.MinSharedAttributes,
			Message: fmt.Sprintf("must be between 0 and %d", len(j.Attributes)),
		}
	}
	for _, name := range j.Decider.NotSolely {
		if !slices.Contains(j.Attributes, name) {
			return &errors.ValidationError{Field: "decider.not_solely", Value: name, Message: "is not a declared attribute"}
		}
	}

	if _, err := sources.ParseNormalizers(j.Normalize...); err != nil {
		return errors.WrapValidation("normalize", err)
	}
	if j.Parallelism < 0 || j.Parallelism > constants.MaxParallelism {
		return &errors.ValidationError{
			Field:   "parallelism",
			Value:   j.Parallelism,
			Message: fmt.Sprintf("must be between 1 and %d", constants.MaxParallelism),
		}
	}

	return j.Output.validate()
}

// SourceType returns the configured or inferred source type.
func (p *Provider) SourceType() sources.Type {
	if p.Type != "" {
		return sources.Type(strings.ToLower(p.Type))
	}
	base := strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(p.Path), ".gz"), ".zst")
	switch filepath.Ext(base) {
	case ".tsv", ".tab":
		return sources.TSVType
	case ".db", ".sqlite", ".sqlite3":
		return sources.SQLiteType
	}
	return sources.CSVType
}

func (p *Provider) validate(field string, attributes []string) error {
	if strings.TrimSpace(p.Name) == "" {
		return &errors.ValidationError{Field: field + ".name", Message: "cannot be empty"}
	}
	if p.Path == "" {
		return &errors.ValidationError{Field: field + ".path", Message: "cannot be empty"}
	}

	switch t := p.SourceType(); t {
	case sources.CSVType, sources.TSVType:
		if p.ID == "" {
			return &errors.ValidationError{Field: field + ".id", Message: "id column is required"}
		}
		if len(p.Columns) == 0 {
			return &errors.ValidationError{Field: field + ".columns", Message: "at least one column is required"}
		}
		for col, attr := range p.Columns {
			if !slices.Contains(attributes, attr) {
				return &errors.ValidationError{
					Field:   field + ".columns." + col,
					Value:   attr,
					Message: "maps to an undeclared attribute",
				}
			}
		}
		if len([]rune(p.Delimiter)) > 1 {
			return &errors.ValidationError{Field: field + ".delimiter", Value: p.Delimiter, Message: "must be a single character"}
		}
	case sources.SQLiteType:
		if strings.TrimSpace(p.Query) == "" {
			return &errors.ValidationError{Field: field + ".query", Message: "query is required for sqlite sources"}
		}
	default:
		return &errors.ValidationError{Field: field + ".type", Value: p.Type, Message: "must be csv, tsv or sqlite"}
	}
	return nil
}

func (o *Output) validate() error {
	if o.Neo4j != nil {
		if o.Neo4j.URI == "" {
			return &errors.ValidationError{Field: "output.neo4j.uri", Message: "cannot be empty"}
		}
		if o.Neo4j.User == "" {
			return &errors.ValidationError{Field: "output.neo4j.user", Message: "cannot be empty"}
		}
	}
	for _, c := range o.Only {
		if _, err := bucketizer.ParseCardinality(c); err != nil {
			return errors.WrapValidation("output.only", err)
		}
	}
	return nil
}

// Cardinalities returns the parsed output.only list.
func (o *Output) Cardinalities() []bucketizer.Cardinality {
	out := make([]bucketizer.Cardinality, 0, len(o.Only))
	for _, c := range o.Only {
		if parsed, err := bucketizer.ParseCardinality(c); err == nil {
			out = append(out, parsed)
		}
	}
	return out
}
