// Package run provides the run command.
package run

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/linkage"
	"github.com/agentstation/linkage/internal/appcontext"
	"github.com/agentstation/linkage/internal/cmd/output"
	"github.com/agentstation/linkage/internal/cmd/table"
	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/job"
	"github.com/agentstation/linkage/pkg/sinks"
)

// Flags holds the run command flags.
type Flags struct {
	Buckets     bool
	Limit       int
	Parallelism int
	RunID       string
	SQLite      string
	Only        []string
}

// Report is the machine-readable output of a run.
type Report struct {
	Result  *bucketizer.Result   `json:"result" yaml:"result"`
	Buckets []sinks.BucketRecord `json:"buckets,omitempty" yaml:"buckets,omitempty"`
}

// NewCommand creates the run command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "run <job>",
		GroupID: "core",
		Short:   "Link the records of a job's two providers",
		Long: `Run loads a job file (YAML or TOML), links the records of its two
providers into buckets, and writes the buckets to the configured outputs.

A summary of the run and the number of buckets per cardinality is printed.
Use --buckets to list the buckets themselves.`,
		Example: `  linkage run people.yaml
  linkage run people.yaml --buckets --limit 20
  linkage run people.toml --sqlite out/links.db --only one-to-many,many-to-many
  linkage run people.yaml -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Buckets, "buckets", false, "list buckets in the output")
	cmd.Flags().IntVar(&flags.Limit, "limit", 0, "maximum number of buckets to list (0 lists all)")
	cmd.Flags().IntVarP(&flags.Parallelism, "parallelism", "p", 0, "override the job's parallelism")
	cmd.Flags().StringVar(&flags.RunID, "run-id", "", "use a fixed run id instead of a generated one")
	cmd.Flags().StringVar(&flags.SQLite, "sqlite", "", "override the job's SQLite output path")
	cmd.Flags().StringSliceVar(&flags.Only, "only", nil, "persist only these cardinalities")

	return cmd
}

// Execute runs the job at path and prints the report.
func Execute(cmd *cobra.Command, app appcontext.Interface, path string, flags *Flags) error {
	format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
	if err != nil {
		return err
	}

	j, err := job.Load(path)
	if err != nil {
		return err
	}
	if flags.SQLite != "" {
		j.Output.SQLite = flags.SQLite
	}
	if len(flags.Only) > 0 {
		j.Output.Only = flags.Only
	}

	var opts []linkage.Option
	var collector *sinks.Collector
	if flags.Buckets {
		collector = sinks.NewCollector(flags.Limit)
		opts = append(opts, linkage.WithCollector(collector))
	}
	if flags.Parallelism > 0 {
		opts = append(opts, linkage.WithParallelism(flags.Parallelism))
	}
	if flags.RunID != "" {
		opts = append(opts, linkage.WithRunID(flags.RunID))
	}

	client, err := app.ClientWithOptions(opts...)
	if err != nil {
		return err
	}

	app.Logger().Info().Str("job", j.Name).Str("path", path).Msg("Running job")
	result, err := client.Run(cmd.Context(), j)
	if err != nil {
		return err
	}

	var buckets []sinks.BucketRecord
	if collector != nil {
		buckets = collector.Buckets()
	}
	return render(cmd, format, result, buckets)
}

func render(cmd *cobra.Command, format output.Format, result *bucketizer.Result, buckets []sinks.BucketRecord) error {
	formatter := output.NewFormatter(format)
	if !format.IsTabular() {
		return formatter.Format(cmd.OutOrStdout(), Report{Result: result, Buckets: buckets})
	}

	wide := format == output.FormatWide
	data := []table.Data{
		table.StatsToTableData(result, wide),
		table.CardinalitiesToTableData(result),
	}
	if len(buckets) > 0 {
		data = append(data, table.BucketsToTableData(buckets, wide))
	}
	return formatter.Format(cmd.OutOrStdout(), data)
}
