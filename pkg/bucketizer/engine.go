// Package bucketizer links the records of two providers into buckets of
// mutual correspondence and routes each bucket to cardinality-specific
// handlers.
//
// A run is a single ordered pass:
//
//  1. load both record sequences into the attribute index and the graph
//  2. derive candidate pairs from attribute values shared by exactly two
//     records of different providers
//  3. ask the decider about each pair; accepted pairs become edges
//  4. partition the graph into connected components
//  5. classify each component and dispatch it to its handler
//  6. run the post-process hook
//
// Any error aborts the run. There are no retries and no partial results.
package bucketizer

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/linkage/pkg/components"
	"github.com/agentstation/linkage/pkg/errors"
	"github.com/agentstation/linkage/pkg/graph"
	"github.com/agentstation/linkage/pkg/index"
	"github.com/agentstation/linkage/pkg/logging"
	"github.com/agentstation/linkage/pkg/records"
)

// Engine runs linkage between two providers over a fixed attribute list.
// An Engine holds no per-run state and may run several times.
type Engine struct {
	provider1  string
	provider2  string
	attributes []string
	opts       *options
}

// New creates an Engine. provider1 and provider2 name the two sides for
// cardinality purposes; attributes declares the names that take part in
// matching.
func New(provider1, provider2 string, attributes []string, opts ...Option) (*Engine, error) {
	switch {
	case provider1 == "":
		return nil, &errors.ValidationError{Field: "provider1", Message: "cannot be empty"}
	case provider2 == "":
		return nil, &errors.ValidationError{Field: "provider2", Message: "cannot be empty"}
	case provider1 == provider2:
		return nil, &errors.ValidationError{Field: "provider2", Value: provider2, Message: "must differ from provider1"}
	case len(attributes) == 0:
		return nil, &errors.ValidationError{Field: "attributes", Message: "at least one attribute is required"}
	}

	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}

	attrs := slices.Clone(attributes)
	slices.Sort(attrs)
	return &Engine{
		provider1:  provider1,
		provider2:  provider2,
		attributes: slices.Compact(attrs),
		opts:       o,
	}, nil
}

// Provider1 returns the provider named first.
func (e *Engine) Provider1() string { return e.provider1 }

// Provider2 returns the provider named second.
func (e *Engine) Provider2() string { return e.provider2 }

// Attributes returns the declared attribute names, sorted.
func (e *Engine) Attributes() []string { return slices.Clone(e.attributes) }

// run holds the state of one run.
type run struct {
	*Engine
	ctx    context.Context
	logger *zerolog.Logger
	result *Result
	index  *index.Index
	graph  *graph.Graph[records.Matchable, records.Evidence]
	nodes  map[records.Key]graph.NodeID
}

// Run links the records of first and second. Both sequences are consumed
// fully before matching begins; which provider a record belongs to is
// decided by its Provider, not by the sequence it came from.
func (e *Engine) Run(ctx context.Context, first, second iter.Seq2[records.Matchable, error]) (*Result, error) {
	// Step 1: Initialize run state
	r := e.initialize(ctx)
	r.logger.Info().
		Str("provider1", e.provider1).
		Str("provider2", e.provider2).
		Strs("attributes", e.attributes).
		Int("parallelism", e.opts.parallelism).
		Msg("Starting linkage run")

	// Step 2: Load both sequences
	r.enter("load")
	if err := r.load(first, second); err != nil {
		return nil, err
	}

	// Step 3: Derive candidate pairs
	r.enter("derive")
	d := derive(r.index)
	r.result.Stats.Candidates = len(d.candidates)
	r.result.Stats.NonDiscriminating = d.nonDiscriminating
	r.result.Stats.SameProvider = d.sameProvider
	r.logger.Debug().
		Int("candidates", len(d.candidates)).
		Int("non_discriminating", d.nonDiscriminating).
		Msg("Derived candidate pairs")

	// Step 4: Decide and link
	r.enter("link")
	if err := r.link(d.candidates); err != nil {
		return nil, err
	}

	// Step 5: Partition, classify and dispatch
	r.enter("dispatch")
	if err := r.dispatch(); err != nil {
		return nil, err
	}

	// Step 6: Finish
	r.enter("finish")
	r.result.Finalize()
	if e.opts.postProcess != nil {
		if err := e.opts.postProcess(r.ctx, r.result); err != nil {
			return nil, fmt.Errorf("post-process: %w", err)
		}
	}

	r.logger.Info().
		Int("buckets", r.result.Stats.Buckets).
		Int("accepted", r.result.Stats.Accepted).
		Dur("duration", r.result.Metadata.Duration).
		Msg("Linkage run complete")
	return r.result, nil
}

func (e *Engine) initialize(ctx context.Context) *run {
	runID := e.opts.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	logger := e.opts.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	ctx = logging.WithRun(logging.WithLogger(ctx, logger), runID)

	result := NewResult(runID, e.provider1, e.provider2, slices.Clone(e.attributes))
	result.Metadata.Parallelism = e.opts.parallelism
	result.Metadata.Decider = describe(e.opts.decider)

	return &run{
		Engine: e,
		ctx:    ctx,
		logger: logging.FromContext(ctx),
		result: result,
		index:  index.New(e.attributes...),
		graph:  graph.New[records.Matchable, records.Evidence](),
		nodes:  make(map[records.Key]graph.NodeID),
	}
}

// enter points the run logger at the given phase.
func (r *run) enter(phase string) {
	r.logger = logging.FromContext(logging.WithPhase(r.ctx, phase))
}

// load reads both sequences, indexing records as they arrive, then adds
// every record to the graph in sequence order.
func (r *run) load(first, second iter.Seq2[records.Matchable, error]) error {
	var loaded [2][]records.Matchable
	seqs := [2]iter.Seq2[records.Matchable, error]{first, second}
	labels := [2]string{r.provider1, r.provider2}

	if r.opts.parallelism > 1 {
		p := pool.New().WithErrors().WithFirstError().WithMaxGoroutines(2)
		for i := range seqs {
			p.Go(func() error {
				var err error
				loaded[i], err = r.read(labels[i], seqs[i])
				return err
			})
		}
		if err := p.Wait(); err != nil {
			return err
		}
	} else {
		for i := range seqs {
			var err error
			if loaded[i], err = r.read(labels[i], seqs[i]); err != nil {
				return err
			}
		}
	}

	for _, batch := range loaded {
		for _, rec := range batch {
			key := records.KeyOf(rec)
			if _, dup := r.nodes[key]; dup {
				return errors.NewRecordError(rec.Provider(), rec.ID(), "appears more than once", errors.ErrDuplicateRecord)
			}
			r.nodes[key] = r.graph.AddNode(rec)
			r.result.Stats.Records[rec.Provider()]++
		}
	}

	r.logger.Debug().
		Int("records", len(r.nodes)).
		Msg("Loaded records")
	return nil
}

// read drains one sequence, validating and indexing every record.
func (r *run) read(label string, seq iter.Seq2[records.Matchable, error]) ([]records.Matchable, error) {
	var out []records.Matchable
	if seq == nil {
		return out, nil
	}
	for rec, err := range seq {
		if err != nil {
			return nil, errors.NewRecordError(label, "", "reading records", err)
		}
		if err := validate(label, rec); err != nil {
			return nil, err
		}
		r.index.Add(rec)
		out = append(out, rec)
	}
	logging.FromContext(logging.WithProvider(logging.WithLogger(r.ctx, r.logger), label)).Debug().
		Int("records", len(out)).
		Msg("Read sequence")
	return out, nil
}

func validate(label string, rec records.Matchable) error {
	switch {
	case rec == nil:
		return errors.NewRecordError(label, "", "nil record", nil)
	case rec.Provider() == "":
		return errors.NewRecordError(label, rec.ID(), "missing provider", nil)
	case rec.ID() == "":
		return errors.NewRecordError(rec.Provider(), "", "missing id", nil)
	case rec.Attributes() == nil:
		return errors.NewRecordError(rec.Provider(), rec.ID(), "missing attribute set", nil)
	}
	return nil
}

// link evaluates every candidate and adds an edge for each accepted pair.
func (r *run) link(candidates []*Candidate) error {
	for _, c := range candidates {
		ok, err := r.opts.decider.Decide(c.A, c.B, c.Evidence)
		if err != nil {
			return errors.WrapDecision(c.Key, err)
		}
		if !ok {
			r.result.Stats.Rejected++
			continue
		}
		if err := r.graph.AddEdge(r.nodes[records.KeyOf(c.A)], r.nodes[records.KeyOf(c.B)], c.Evidence); err != nil {
			return err
		}
		r.result.Stats.Accepted++
	}
	r.logger.Debug().
		Int("accepted", r.result.Stats.Accepted).
		Int("rejected", r.result.Stats.Rejected).
		Msg("Linked candidate pairs")
	return nil
}

// dispatch walks the components, wrapping each as a bucket and handing it
// to its handler. With parallelism above one, buckets are handled on a
// bounded pool and the first handler error is returned.
func (r *run) dispatch() error {
	var p *pool.ErrorPool
	if r.opts.parallelism > 1 {
		p = pool.New().WithErrors().WithFirstError().WithMaxGoroutines(r.opts.parallelism)
	}

	var (
		mu     sync.Mutex
		failed error
	)
	id := 0
	for comp := range components.New(r.graph).All() {
		id++
		b := r.bucket(id, comp)
		r.result.Stats.Buckets++
		r.result.Stats.Cardinalities[b.Cardinality()]++
		r.result.Stats.LargestBucket = max(r.result.Stats.LargestBucket, b.Size())

		if p == nil {
			if err := r.handle(b); err != nil {
				return err
			}
			continue
		}

		mu.Lock()
		stop := failed != nil
		mu.Unlock()
		if stop {
			break
		}
		p.Go(func() error {
			err := r.handle(b)
			if err != nil {
				mu.Lock()
				failed = err
				mu.Unlock()
			}
			return err
		})
	}

	if p != nil {
		return p.Wait()
	}
	return nil
}

func (r *run) handle(b *Bucket) error {
	ctx := logging.WithBucket(r.ctx, b.ID(), b.Cardinality().String())
	if err := r.opts.handler(b.Cardinality()).Handle(ctx, b); err != nil {
		logging.FromContext(logging.WithError(ctx, err)).Debug().Msg("Bucket handler failed")
		return errors.WrapHandler(b.Cardinality().String(), b.ID(), err)
	}
	return nil
}

func (r *run) bucket(id int, comp *components.Component[records.Evidence]) *Bucket {
	members := make([]records.Matchable, 0, comp.Len())
	for _, n := range comp.Nodes {
		rec, _ := r.graph.Node(n)
		members = append(members, rec)
	}
	links := make([]Association, 0, len(comp.Edges))
	for _, edge := range comp.Edges {
		a, _ := r.graph.Node(edge.From)
		b, _ := r.graph.Node(edge.To)
		links = append(links, Association{A: a, B: b, Evidence: edge.Label, Label: edge.Label.String()})
	}
	return newBucket(id, r.result.RunID, r.provider1, r.provider2, members, links)
}

func describe(d any) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", d)
}
