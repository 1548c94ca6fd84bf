// Package validate provides the validate command.
package validate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/linkage/internal/appcontext"
	"github.com/agentstation/linkage/internal/cmd/output"
	"github.com/agentstation/linkage/internal/cmd/table"
	"github.com/agentstation/linkage/pkg/job"
)

// Summary describes one valid job.
type Summary struct {
	Path       string   `json:"path" yaml:"path"`
	Name       string   `json:"name" yaml:"name"`
	Providers  []string `json:"providers" yaml:"providers"`
	Attributes []string `json:"attributes" yaml:"attributes"`
	Outputs    []string `json:"outputs" yaml:"outputs"`
}

// NewCommand creates the validate command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "validate <job>...",
		GroupID: "management",
		Short:   "Validate job files without running them",
		Long: `Validate parses each job file and checks it for completeness and
consistency: provider names and sources, column mappings, decider rules,
and outputs. No records are read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
			if err != nil {
				return err
			}

			summaries := make([]Summary, 0, len(args))
			for _, path := range args {
				j, err := job.Load(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				summaries = append(summaries, summarize(path, j))
				app.Logger().Debug().Str("path", path).Msg("Job is valid")
			}

			formatter := output.NewFormatter(format)
			if !format.IsTabular() {
				return formatter.Format(cmd.OutOrStdout(), summaries)
			}
			return formatter.Format(cmd.OutOrStdout(), toTableData(summaries))
		},
	}
}

func summarize(path string, j *job.Job) Summary {
	s := Summary{
		Path:       path,
		Name:       j.Name,
		Providers:  []string{j.Provider1.Name, j.Provider2.Name},
		Attributes: j.Attributes,
	}
	if j.Output.SQLite != "" {
		s.Outputs = append(s.Outputs, "sqlite:"+j.Output.SQLite)
	}
	if j.Output.Neo4j != nil {
		s.Outputs = append(s.Outputs, "neo4j:"+j.Output.Neo4j.URI)
	}
	if j.Output.Log {
		s.Outputs = append(s.Outputs, "log")
	}
	return s
}

func toTableData(summaries []Summary) table.Data {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		outputs := strings.Join(s.Outputs, ", ")
		if outputs == "" {
			outputs = "-"
		}
		rows = append(rows, []string{
			s.Path,
			s.Name,
			strings.Join(s.Providers, ", "),
			strings.Join(s.Attributes, ", "),
			outputs,
			"valid",
		})
	}
	return table.Data{
		Headers: []string{"Path", "Name", "Providers", "Attributes", "Outputs", "Status"},
		Rows:    rows,
	}
}
