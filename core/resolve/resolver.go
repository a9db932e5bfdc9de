package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"project-aggregator/core/metrics"

	"go.uber.org/zap"
)

// ErrMiss is returned by a probe when the candidate affirmatively does not
// exist. Probes may wrap it.
var ErrMiss = errors.New("candidate not found")

// ErrUnresolved matches every ResolutionError through errors.Is.
var ErrUnresolved = errors.New("no candidate resolved")

// Candidate is one concrete address to try.
type Candidate struct {
	// Label names the candidate in logs and errors (e.g. "Markdown" or "fl_").
	Label string
	// Address is what the probe fetches.
	Address string
}

func (c Candidate) String() string {
	if c.Label == "" {
		return c.Address
	}
	return c.Label + " (" + c.Address + ")"
}

// ResolutionError reports that every candidate missed.
type ResolutionError struct {
	Entity string
	Tried  []Candidate
	Misses []error
}

func (e *ResolutionError) Error() string {
	tried := make([]string, len(e.Tried))
	for i, c := range e.Tried {
		tried[i] = c.String()
	}
	if len(tried) == 0 {
		return fmt.Sprintf("no candidate resolved for %q: no candidates", e.Entity)
	}
	return fmt.Sprintf("no candidate resolved for %q, tried: %s", e.Entity, strings.Join(tried, ", "))
}

// Is makes errors.Is(err, ErrUnresolved) hold for any ResolutionError.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

// Probe fetches one candidate. It returns ErrMiss (possibly wrapped) when the
// candidate does not exist; any other error aborts the resolution.
type Probe[T any] func(ctx context.Context, c Candidate) (T, error)

// Resolver tries candidates strictly in the given order and returns the
// first hit.
type Resolver[T any] struct {
	name   string
	probe  Probe[T]
	logger *zap.Logger
}

// New creates a resolver. name labels its metrics and log lines.
func New[T any](name string, probe Probe[T], logger *zap.Logger) *Resolver[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver[T]{name: name, probe: probe, logger: logger}
}

// Resolve probes candidates in order. Later candidates are never probed once
// an earlier one hits. A probe error other than ErrMiss is returned
// immediately; exhausting the list yields a *ResolutionError.
func (r *Resolver[T]) Resolve(ctx context.Context, entity string, candidates []Candidate) (T, Candidate, error) {
	var zero T
	rerr := &ResolutionError{Entity: entity}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, Candidate{}, err
		}

		v, err := r.probe(ctx, c)
		switch {
		case err == nil:
			metrics.ObserveProbe(r.name, metrics.OutcomeOK)
			r.logger.Debug("Candidate resolved",
				zap.String("entity", entity),
				zap.String("candidate", c.Label),
				zap.String("address", c.Address))
			return v, c, nil
		case errors.Is(err, ErrMiss):
			metrics.ObserveProbe(r.name, metrics.OutcomeMiss)
			r.logger.Debug("Candidate missed",
				zap.String("entity", entity),
				zap.String("candidate", c.Label),
				zap.String("address", c.Address),
				zap.Error(err))
			rerr.Tried = append(rerr.Tried, c)
			rerr.Misses = append(rerr.Misses, err)
		default:
			metrics.ObserveProbe(r.name, metrics.OutcomeError)
			return zero, c, fmt.Errorf("resolve %q via %s: %w", entity, c, err)
		}
	}

	return zero, Candidate{}, rerr
}
