package linkage

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/linkage/pkg/bucketizer"
	"github.com/agentstation/linkage/pkg/constants"
	"github.com/agentstation/linkage/pkg/decider"
	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/sinks"
)

// config holds the client options.
type config struct {
	logger      *zerolog.Logger
	decider     decider.Decider
	handlers    map[bucketizer.Cardinality]bucketizer.Handler
	collector   *sinks.Collector
	graphDriver sinks.GraphDriver
	parallelism int
	runID       string

	bucketHooks   []BucketHook
	completeHooks []CompleteHook
}

func defaultConfig() *config {
	return &config{
		handlers: make(map[bucketizer.Cardinality]bucketizer.Handler),
	}
}

// Option is a function that configures a Client.
type Option func(*config) error

// WithLogger sets the logger used during runs.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithDecider overrides the decider a job configures.
func WithDecider(d decider.Decider) Option {
	return func(c *config) error {
		if d == nil {
			return &errors.ValidationError{Field: "decider", Message: "cannot be nil"}
		}
		c.decider = d
		return nil
	}
}

// WithHandler adds a handler for one cardinality, after the job's sinks.
func WithHandler(card bucketizer.Cardinality, h bucketizer.Handler) Option {
	return func(c *config) error {
		if h == nil {
			return &errors.ValidationError{Field: "handler", Value: card.String(), Message: "cannot be nil"}
		}
		if existing, ok := c.handlers[card]; ok {
			h = bucketizer.Multi(existing, h)
		}
		c.handlers[card] = h
		return nil
	}
}

// WithCollector snapshots every persisted bucket into col. It honours the
// job's output.only filter.
func WithCollector(col *sinks.Collector) Option {
	return func(c *config) error {
		c.collector = col
		return nil
	}
}

// WithGraphDriver injects the Neo4j driver instead of dialing the job's URI.
func WithGraphDriver(d sinks.GraphDriver) Option {
	return func(c *config) error {
		c.graphDriver = d
		return nil
	}
}

// WithParallelism overrides the job's parallelism.
func WithParallelism(n int) Option {
	return func(c *config) error {
		if n < 1 || n > constants.MaxParallelism {
			return &errors.ValidationError{Field: "parallelism", Value: n, Message: "out of range"}
		}
		c.parallelism = n
		return nil
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(c *config) error {
		c.runID = id
		return nil
	}
}

// WithBucketHook registers a bucket hook at construction time.
func WithBucketHook(fn BucketHook) Option {
	return func(c *config) error {
		if fn == nil {
			return &errors.ValidationError{Field: "hook", Message: "cannot be nil"}
		}
		c.bucketHooks = append(c.bucketHooks, fn)
		return nil
	}
}

// WithCompleteHook registers a completion hook at construction time.
func WithCompleteHook(fn CompleteHook) Option {
	return func(c *config) error {
		if fn == nil {
			return &errors.ValidationError{Field: "hook", Message: "cannot be nil"}
		}
		c.completeHooks = append(c.completeHooks, fn)
		return nil
	}
}
