package qhamming

import (
	"context"
	"fmt"
	"math"

	"github.com/theapemachine/errnie"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("qhamming.runner")

/*
Estimate is the Monte-Carlo success rate at one error probability. It is a
running average, so an estimate cut short by cancellation is still valid
for the trials it covers.
*/
type Estimate struct {
	P         float64
	Trials    int
	Successes int
	Rate      float64
	StdErr    float64
}

func (est *Estimate) add(res BatchResult) {
	est.Trials += res.Trials
	est.Successes += res.Successes
	if est.Trials > 0 {
		est.Rate = float64(est.Successes) / float64(est.Trials)
		est.StdErr = math.Sqrt(est.Rate * (1 - est.Rate) / float64(est.Trials))
	}
}

/*
Runner splits trials into batches and runs them on a Pool. The code and its
codeword set are built once and shared read-only by every batch.
*/
type Runner struct {
	code      *Code
	codewords *CodewordSet
	pool      *Pool
	config    *Config
}

func NewRunner(ctx context.Context, code *Code, config *Config) (*Runner, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	_, codewords, err := BuildEncoder(code)
	if err != nil {
		return nil, err
	}

	return &Runner{
		code:      code,
		codewords: codewords,
		pool:      NewPool(ctx, config),
		config:    config,
	}, nil
}

// NewRunnerWithCodewords skips encoder construction when the set is already known, e.g. from a CodeCache.
func NewRunnerWithCodewords(ctx context.Context, code *Code, codewords *CodewordSet, config *Config) (*Runner, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if codewords == nil || codewords.n != code.N {
		return nil, fmt.Errorf("codeword set does not match %s: %w", code, ErrInvalidCode)
	}

	return &Runner{
		code:      code,
		codewords: codewords,
		pool:      NewPool(ctx, config),
		config:    config,
	}, nil
}

func (r *Runner) Metrics() *Metrics {
	return r.pool.Metrics()
}

func (r *Runner) Close() {
	r.pool.Close()
}

/*
Run estimates the success rate at p over trials trials. Batch i is seeded
with config.Seed + i, so a run is reproducible regardless of which worker
picks up which batch. Cancelling ctx stops scheduling and cuts running
batches short; the estimate over the batches that did finish is returned
together with the context error. The same holds when the pool itself is
closed underneath the run.
*/
func (r *Runner) Run(ctx context.Context, p float64, trials int) (est Estimate, err error) {
	ctx, span := tracer.Start(ctx, "Runner.Run", trace.WithAttributes(
		attribute.Float64("p", p),
		attribute.Int("trials", trials),
	))
	defer func() {
		span.SetAttributes(
			attribute.Int("trials_done", est.Trials),
			attribute.Int("successes", est.Successes),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	est = Estimate{P: p}

	if err := ValidateProbability(p); err != nil {
		return est, err
	}
	if trials < 1 {
		return est, fmt.Errorf("trial count %d: %w", trials, ErrInvalidParameter)
	}

	pending := make([]chan Outcome, 0, trials/r.config.BatchSize+1)
	for i, remaining := 0, trials; remaining > 0; i++ {
		if ctx.Err() != nil {
			break
		}

		size := min(remaining, r.config.BatchSize)
		remaining -= size

		job := NewJob(r.code, r.codewords, Batch{
			P:       p,
			Trials:  size,
			Seed:    r.config.Seed + uint64(i),
			Sampler: r.config.Sampler,
		}, WithDone(ctx.Done()))
		pending = append(pending, r.pool.Schedule(job))
	}

	for _, ch := range pending {
		select {
		case <-ctx.Done():
			return est, ctx.Err()
		case <-r.pool.Done():
			return est, fmt.Errorf("pool closed: %w", r.pool.Err())
		case out := <-ch:
			if out.Error != nil {
				return est, out.Error
			}
			est.add(out.Value)
		}
	}

	return est, ctx.Err()
}

// Sweep runs config.Trials trials for each p, several p values at a time.
func (r *Runner) Sweep(ctx context.Context, ps []float64) ([]Estimate, error) {
	for _, p := range ps {
		if err := ValidateProbability(p); err != nil {
			return nil, err
		}
	}

	ctx, span := tracer.Start(ctx, "Runner.Sweep", trace.WithAttributes(
		attribute.Int("points", len(ps)),
		attribute.Int("trials_per_point", r.config.Trials),
	))
	defer span.End()

	results := make([]Estimate, len(ps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.SweepParallelism)

	for i, p := range ps {
		g.Go(func() error {
			est, err := r.Run(gctx, p, r.config.Trials)
			results[i] = est
			if err != nil {
				return fmt.Errorf("p=%v: %w", p, err)
			}

			errnie.Info("Sweep - p %v, %d/%d succeeded (rate %.4f)", p, est.Successes, est.Trials, est.Rate)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		errnie.Warn("Sweep - stopped early: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return results, err
	}

	return results, nil
}
