package sources

import (
	"github.com/agentstation/linkage/pkg/constants"
)

// options configures file and database sources.
type options struct {
	normalizer Normalizer
	separator  string
	delimiter  rune
	attributes []string
	args       []any
}

func defaultOptions() *options {
	return &options{
		normalizer: Identity,
		separator:  constants.DefaultValueSeparator,
	}
}

// Option is a function that configures a source.
type Option func(*options)

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithNormalizer applies n to every attribute value before it is stored.
// Values that normalize to the empty string are dropped.
func WithNormalizer(n Normalizer) Option {
	return func(o *options) {
		if n != nil {
			o.normalizer = n
		}
	}
}

// WithSeparator splits multi-valued cells of delimited files on sep.
// An empty separator keeps each cell as a single value.
func WithSeparator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// WithDelimiter overrides the field delimiter inferred from the file name.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		o.delimiter = r
	}
}

// WithAttributes declares the attribute names of the produced records.
// By default a source declares exactly the names it reads.
func WithAttributes(names ...string) Option {
	return func(o *options) {
		o.attributes = names
	}
}

// WithQueryArgs binds args to the placeholders of a SQL query.
func WithQueryArgs(args ...any) Option {
	return func(o *options) {
		o.args = args
	}
}
