package bucketizer

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/linkage/pkg/constants"
	"github.com/agentstation/linkage/pkg/decider"
	"github.com/agentstation/linkage/pkg/errors"
)

// options configures an Engine.
type options struct {
	decider        decider.Decider
	handlers       map[Cardinality]Handler
	defaultHandler Handler
	postProcess    PostProcess
	parallelism    int
	logger         *zerolog.Logger
	runID          string
}

func defaultOptions() *options {
	return &options{
		decider:        decider.AcceptAll,
		handlers:       make(map[Cardinality]Handler),
		defaultHandler: Discard,
		parallelism:    constants.DefaultParallelism,
	}
}

// Option is a function that configures an Engine.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *options) handler(c Cardinality) Handler {
	if h, ok := o.handlers[c]; ok {
		return h
	}
	return o.defaultHandler
}

// WithDecider sets the decider evaluated on every candidate pair.
func WithDecider(d decider.Decider) Option {
	return func(o *options) error {
		if d == nil {
			return &errors.ValidationError{
				Field:   "decider",
				Message: "cannot be nil",
			}
		}
		o.decider = d
		return nil
	}
}

// WithHandler registers the handler for one cardinality, replacing any
// earlier registration. Compose several with Multi.
func WithHandler(c Cardinality, h Handler) Option {
	return func(o *options) error {
		if h == nil {
			return &errors.ValidationError{
				Field:   "handler",
				Value:   c.String(),
				Message: "cannot be nil",
			}
		}
		o.handlers[c] = h
		return nil
	}
}

// WithDefaultHandler sets the handler used for every cardinality without
// its own registration.
func WithDefaultHandler(h Handler) Option {
	return func(o *options) error {
		if h == nil {
			return &errors.ValidationError{
				Field:   "default_handler",
				Message: "cannot be nil",
			}
		}
		o.defaultHandler = h
		return nil
	}
}

// WithPostProcess sets a hook that runs once after dispatch completes.
func WithPostProcess(fn PostProcess) Option {
	return func(o *options) error {
		o.postProcess = fn
		return nil
	}
}

// WithParallelism bounds the goroutines used to load the two record
// sequences and dispatch buckets. 1 keeps everything on the calling
// goroutine and dispatches buckets in order.
func WithParallelism(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxParallelism {
			return &errors.ValidationError{
				Field:   "parallelism",
				Value:   n,
				Message: fmt.Sprintf("must be between 1 and %d", constants.MaxParallelism),
			}
		}
		o.parallelism = n
		return nil
	}
}

// WithLogger sets the logger. By default the logger carried by the run
// context is used.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithRunID fixes the run id instead of generating a random one.
func WithRunID(id string) Option {
	return func(o *options) error {
		o.runID = id
		return nil
	}
}
