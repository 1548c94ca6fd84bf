// Package linkage provides the main entry point for running record linkage
// jobs. It reads the two providers' records, links them into buckets of
// mutual correspondence, and writes the buckets to the configured sinks.
//
// Example usage:
//
//	// Create a client with default settings
//	lk, err := linkage.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register event hooks
//	lk.OnBucket(func(ctx context.Context, b *bucketizer.Bucket) error {
//	    fmt.Printf("bucket %d: %s\n", b.ID(), b.Cardinality())
//	    return nil
//	})
//
//	// Run a job file
//	j, err := job.Load("people.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := lk.Run(ctx, j)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Summary())
package linkage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/job"
	"github.com/agentstation/linkage/pkg/logging"
	"github.com/agentstation/linkage/pkg/sinks"
	"github.com/agentstation/linkage/pkg/sources"
)

// Client runs linkage jobs with event hooks.
type Client interface {
	// Run executes a job: sources, decider and sinks are built from it.
	Run(ctx context.Context, j *job.Job) (*bucketizer.Result, error)

	// Link runs two sources directly over attributes. Only sinks and hooks
	// registered on the client are used.
	Link(ctx context.Context, first, second sources.Source, attributes []string) (*bucketizer.Result, error)

	// OnBucket registers a callback invoked for every bucket.
	OnBucket(BucketHook)

	// OnComplete registers a callback invoked after a successful run.
	OnComplete(CompleteHook)
}

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// client is the default implementation of Client.
type client struct {
	config *config
	hooks  *hooks
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	c := &client{config: cfg, hooks: newHooks()}
	for _, fn := range cfg.bucketHooks {
		c.hooks.OnBucket(fn)
	}
	for _, fn := range cfg.completeHooks {
		c.hooks.OnComplete(fn)
	}
	return c, nil
}

// OnBucket implements Client.
func (c *client) OnBucket(fn BucketHook) {
	c.hooks.OnBucket(fn)
}

// OnComplete implements Client.
func (c *client) OnComplete(fn CompleteHook) {
	c.hooks.OnComplete(fn)
}

// Run implements Client.
func (c *client) Run(ctx context.Context, j *job.Job) (*bucketizer.Result, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	ctx = c.context(ctx)
	logger := logging.FromContext(ctx).With().Str("job", j.Name).Logger()
	ctx = logging.WithLogger(ctx, &logger)

	first, err := buildSource(j, &j.Provider1)
	if err != nil {
		return nil, err
	}
	second, err := buildSource(j, &j.Provider2)
	if err != nil {
		return nil, err
	}

	d := c.config.decider
	if d == nil {
		d = buildDecider(&j.Decider)
	}

	outputs, err := c.openSinks(ctx, j)
	if err != nil {
		return nil, err
	}
	defer outputs.close(ctx)

	opts := []bucketizer.Option{bucketizer.WithDecider(d)}
	if j.Parallelism > 0 {
		opts = append(opts, bucketizer.WithParallelism(j.Parallelism))
	}
	return c.link(ctx, first, second, j.Attributes, outputs, opts...)
}

// Link implements Client.
func (c *client) Link(ctx context.Context, first, second sources.Source, attributes []string) (*bucketizer.Result, error) {
	ctx = c.context(ctx)
	opts := []bucketizer.Option{}
	if c.config.decider != nil {
		opts = append(opts, bucketizer.WithDecider(c.config.decider))
	}
	out := &outputs{}
	if c.config.collector != nil {
		out.handlers = append(out.handlers, c.config.collector)
	}
	return c.link(ctx, first, second, attributes, out, opts...)
}

func (c *client) context(ctx context.Context) context.Context {
	if c.config.logger != nil {
		return logging.WithLogger(ctx, c.config.logger)
	}
	return ctx
}

func (c *client) link(ctx context.Context, first, second sources.Source, attributes []string, out *outputs, opts ...bucketizer.Option) (*bucketizer.Result, error) {
	if c.config.parallelism > 0 {
		opts = append(opts, bucketizer.WithParallelism(c.config.parallelism))
	}
	if c.config.runID != "" {
		opts = append(opts, bucketizer.WithRunID(c.config.runID))
	}

	persist := out.handler()
	hookHandler := c.hooks.handler()
	for _, card := range bucketizer.Cardinalities() {
		opts = append(opts, bucketizer.WithHandler(card, bucketizer.Multi(
			persist,
			hookHandler,
			c.config.handlers[card],
		)))
	}
	opts = append(opts, bucketizer.WithPostProcess(func(ctx context.Context, r *bucketizer.Result) error {
		if err := out.finish(ctx, r); err != nil {
			return err
		}
		return c.hooks.onComplete(ctx, r)
	}))

	e, err := bucketizer.New(first.Provider(), second.Provider(), attributes, opts...)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, first.Records(ctx), second.Records(ctx))
}

// openSinks opens every sink the job's output section configures.
func (c *client) openSinks(ctx context.Context, j *job.Job) (*outputs, error) {
	out := &outputs{only: j.Output.Cardinalities()}

	if j.Output.Log {
		out.handlers = append(out.handlers, sinks.NewLog(zerolog.InfoLevel))
	}
	if c.config.collector != nil {
		out.handlers = append(out.handlers, c.config.collector)
	}

	if j.Output.SQLite != "" {
		db, err := sinks.OpenSQLite(ctx, j.Resolve(j.Output.SQLite))
		if err != nil {
			return nil, err
		}
		out.handlers = append(out.handlers, db)
		out.closers = append(out.closers, func(context.Context) error { return db.Close() })
		out.finishers = append(out.finishers, db.Finish)
	}

	if n := j.Output.Neo4j; n != nil {
		driver := c.config.graphDriver
		if driver == nil {
			d, err := sinks.NewDriver(ctx, n.URI, n.User, n.Password(), n.Database)
			if err != nil {
				out.close(ctx)
				return nil, err
			}
			driver = d
		}
		sink := sinks.NewNeo4j(driver)
		sink.EnsureIndexes(ctx)
		out.handlers = append(out.handlers, sink)
		out.closers = append(out.closers, sink.Close)
	}
	return out, nil
}

// outputs is the set of sinks opened for one run.
type outputs struct {
	handlers  []bucketizer.Handler
	finishers []bucketizer.PostProcess
	closers   []func(context.Context) error
	only      []bucketizer.Cardinality
}

func (o *outputs) handler() bucketizer.Handler {
	if len(o.handlers) == 0 {
		return nil
	}
	h := bucketizer.Multi(o.handlers...)
	if len(o.only) > 0 {
		h = bucketizer.Only(h, o.only...)
	}
	return h
}

func (o *outputs) finish(ctx context.Context, r *bucketizer.Result) error {
	for _, fn := range o.finishers {
		if err := fn(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (o *outputs) close(ctx context.Context) {
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](ctx); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Failed to close sink")
		}
	}
	o.closers = nil
}
