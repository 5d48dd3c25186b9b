package qhamming

import (
	"context"
	"fmt"
	"time"
)

// Worker processes batches
type Worker struct {
	pool *Pool
	jobs chan Job
}

func newWorker(pool *Pool) *Worker {
	return &Worker{
		pool: pool,
		jobs: make(chan Job, 1),
	}
}

/*
run offers the worker's job channel to the dispatcher, waits for a job,
processes it and offers itself again, until the pool context ends.
*/
func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		select {
		case <-ctx.Done():
			w.abandon(ctx)
			return
		case job := <-w.jobs:
			w.processJob(ctx, job)
		}
	}
}

// abandon fails a job that was handed over just as the pool shut down.
func (w *Worker) abandon(ctx context.Context) {
	select {
	case job := <-w.jobs:
		w.pool.space.Store(job.ID, BatchResult{P: job.Batch.P, Seed: job.Batch.Seed}, fmt.Errorf("pool closed: %w", ctx.Err()), job.TTL)
	default:
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) {
	start := time.Now()
	if job.StartTime.IsZero() {
		job.StartTime = start
	}

	result, err := job.Execute(ctx.Done())
	if err == nil {
		w.pool.metrics.recordBatch(time.Since(start), result)
	}

	w.pool.space.Store(job.ID, result, err, job.TTL)
}
