package linkage

import (
	"github.com/agentstation/linkage/pkg/decider"
	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/job"
	"github.com/agentstation/linkage/pkg/sources"
)

// buildSource creates the source a job provider describes.
func buildSource(j *job.Job, p *job.Provider) (sources.Source, error) {
	normalizer, err := sources.ParseNormalizers(j.Normalize...)
	if err != nil {
		return nil, errors.WrapValidation("normalize", err)
	}
	opts := []sources.Option{
		sources.WithNormalizer(normalizer),
		sources.WithAttributes(j.Attributes...),
	}

	switch p.SourceType() {
	case sources.CSVType, sources.TSVType:
		if p.Separator != nil {
			opts = append(opts, sources.WithSeparator(*p.Separator))
		}
		if p.Delimiter != "" {
			opts = append(opts, sources.WithDelimiter([]rune(p.Delimiter)[0]))
		} else if p.SourceType() == sources.TSVType {
			opts = append(opts, sources.WithDelimiter('\t'))
		}
		return sources.NewDelimited(p.Name, j.Resolve(p.Path), p.ID, p.Columns, opts...), nil
	case sources.SQLiteType:
		return sources.NewSQLite(p.Name, j.Resolve(p.Path), p.Query, j.Attributes, opts...), nil
	default:
		return nil, &errors.ValidationError{Field: "type", Value: p.Type, Message: "unsupported source type"}
	}
}

// buildDecider combines the job's decider rules. A job without rules
// accepts every candidate pair.
func buildDecider(d *job.Decider) decider.Decider {
	if d.RejectAll {
		return decider.RejectAll
	}
	var rules []decider.Decider
	if d.MinSharedAttributes > 1 {
		rules = append(rules, decider.MinSharedAttributes(d.MinSharedAttributes))
	}
	if len(d.NotSolely) > 0 {
		rules = append(rules, decider.NotSolely(d.NotSolely...))
	}
	switch len(rules) {
	case 0:
		return decider.AcceptAll
	case 1:
		return rules[0]
	}
	return decider.All(rules...)
}
