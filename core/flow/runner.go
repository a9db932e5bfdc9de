package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"project-aggregator/core/documents"
	"project-aggregator/core/fanin"
	"project-aggregator/core/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one unit of work scheduled with structured arguments.
type Job interface {
	Run(ctx context.Context, args documents.Args) (any, error)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context, args documents.Args) (any, error)

// Run implements Job.
func (f JobFunc) Run(ctx context.Context, args documents.Args) (any, error) {
	return f(ctx, args)
}

// ResultStore persists sibling outputs.
type ResultStore interface {
	fanin.Getter
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// sink records the output of a sibling at its index.
type sink interface {
	put(ctx context.Context, group string, index int, raw []byte) error
	results() fanin.Results
}

type storeSink struct {
	store  ResultStore
	prefix string
}

func (s *storeSink) put(ctx context.Context, group string, index int, raw []byte) error {
	_, err := s.store.Put(ctx, fanin.SiblingKey(s.prefix, group, index), raw)
	return err
}

func (s *storeSink) results() fanin.Results {
	return fanin.NewStoreResults(s.store, s.prefix)
}

type memorySink struct {
	mem *fanin.MemoryResults
}

func (s *memorySink) put(_ context.Context, group string, index int, raw []byte) error {
	s.mem.Set(group, index, raw)
	return nil
}

func (s *memorySink) results() fanin.Results {
	return s.mem
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds how many siblings run at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunID pins the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// Runner executes jobs and fan-out groups in process, standing in for an
// external scheduler. Sibling outputs of one run live in their own namespace
// so a group is never extended by siblings left over from an earlier run.
type Runner struct {
	sink        sink
	prefix      string
	runID       string
	concurrency int
	logger      *zap.Logger
}

// NewRunner creates a runner persisting sibling outputs in store under
// {prefix}{run-id}/.
func NewRunner(store ResultStore, prefix string, opts ...Option) *Runner {
	r := newRunner(opts...)
	r.prefix = prefix + r.runID + "/"
	r.sink = &storeSink{store: store, prefix: r.prefix}
	return r
}

// NewLocalRunner creates a runner keeping sibling outputs in memory.
func NewLocalRunner(opts ...Option) *Runner {
	r := newRunner(opts...)
	r.sink = &memorySink{mem: fanin.NewMemoryResults()}
	return r
}

func newRunner(opts ...Option) *Runner {
	r := &Runner{
		runID:       uuid.NewString(),
		concurrency: 8,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID returns the id namespacing this run's sibling outputs.
func (r *Runner) RunID() string { return r.runID }

// Prefix returns the key prefix of persisted sibling outputs, or "" for a
// local runner.
func (r *Runner) Prefix() string { return r.prefix }

// Results returns the view reducers read sibling outputs through.
func (r *Runner) Results() fanin.Results { return r.sink.results() }

// Run executes a single job and records its outcome.
func (r *Runner) Run(ctx context.Context, name string, job Job, args documents.Args) (any, error) {
	started := time.Now()
	out, err := job.Run(ctx, args)
	metrics.ObserveJob(name, started, err)

	l := r.logger.With(
		zap.String("job", name),
		zap.String("entity", args.Entity),
		zap.Duration("duration", time.Since(started)))
	if err != nil {
		l.Error("Job failed", zap.Error(err))
		return nil, fmt.Errorf("%s %q: %w", name, args.Entity, err)
	}
	l.Debug("Job finished")
	return out, nil
}

// FanOut runs job once per item, storing the output of item i as sibling i
// of group. Any sibling failure fails the whole group. The returned Results
// exposes the completed group to a reducer.
func (r *Runner) FanOut(ctx context.Context, group string, items []documents.Args, job Job) (fanin.Results, error) {
	r.logger.Info("Fan-out started", zap.String("group", group), zap.Int("siblings", len(items)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, args := range items {
		g.Go(func() error {
			out, err := r.Run(gctx, group, job, args)
			if err != nil {
				return fmt.Errorf("sibling %d of %q: %w", i, group, err)
			}
			raw, err := json.Marshal(out)
			if err != nil {
				return fmt.Errorf("encode sibling %d of %q: %w", i, group, err)
			}
			if err := r.sink.put(gctx, group, i, raw); err != nil {
				return fmt.Errorf("store sibling %d of %q: %w", i, group, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.logger.Info("Fan-out completed", zap.String("group", group), zap.Int("siblings", len(items)))
	return r.sink.results(), nil
}

// Tolerate returns a job that reports errors matched by skip as an empty
// (null) output instead of failing. Reducers see the sibling, without a value.
func Tolerate(job Job, skip func(error) bool) Job {
	return JobFunc(func(ctx context.Context, args documents.Args) (any, error) {
		out, err := job.Run(ctx, args)
		if err != nil && skip(err) {
			return nil, nil
		}
		return out, err
	})
}

// Entities builds one Args per entity name, copying flow, task and extra
// arguments from base.
func Entities(base documents.Args, names []string) []documents.Args {
	items := make([]documents.Args, len(names))
	for i, name := range names {
		args := base
		args.Entity = name
		items[i] = args
	}
	return items
}
