package qhamming

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Pool is a fixed set of workers fed by a single dispatcher. Workers announce
themselves by sending their job channel on workers; the dispatcher pairs
each queued job with the next idle worker. Results travel back through the
ResultSpace, keyed by job ID.
*/
type Pool struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workers    chan chan Job
	jobs       chan Job
	space      *ResultSpace
	metrics    *Metrics
	config     *Config
	workerMu   sync.Mutex
	workerList []*Worker
	closeOnce  sync.Once
}

// NewPool starts config.Workers workers bound to ctx.
func NewPool(ctx context.Context, config *Config) *Pool {
	if config == nil {
		config = NewConfig()
	}

	workerCount := max(config.Workers, 1)

	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:        ctx,
		cancel:     cancel,
		workers:    make(chan chan Job, workerCount),
		jobs:       make(chan Job, workerCount*10),
		space:      NewResultSpace(),
		metrics:    NewMetrics(),
		config:     config,
		workerList: make([]*Worker, 0, workerCount),
	}

	for i := 0; i < workerCount; i++ {
		p.startWorker()
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.manage()
	}()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.collectMetrics()
	}()

	errnie.Info("NewPool - started %d workers", workerCount)
	return p
}

func (p *Pool) manage() {
	for {
		select {
		case <-p.ctx.Done():
			p.drain()
			return
		case job := <-p.jobs:
			select {
			case <-p.ctx.Done():
				p.space.Store(job.ID, BatchResult{P: job.Batch.P, Seed: job.Batch.Seed}, fmt.Errorf("pool closed: %w", p.ctx.Err()), job.TTL)
				p.drain()
				return
			case workerChan := <-p.workers:
				if err := p.ctx.Err(); err != nil {
					p.space.Store(job.ID, BatchResult{P: job.Batch.P, Seed: job.Batch.Seed}, fmt.Errorf("pool closed: %w", err), job.TTL)
					p.drain()
					return
				}
				workerChan <- job
			case <-time.After(p.config.schedulingTimeout()):
				errnie.Warn("Pool - no available workers for job %s, timeout occurred", job.ID)
				p.metrics.recordSchedulingFailure()
				p.space.Store(job.ID, BatchResult{P: job.Batch.P, Seed: job.Batch.Seed}, fmt.Errorf("no available workers"), job.TTL)
			}
		}
	}
}

// drain fails every job still queued when the pool shuts down.
func (p *Pool) drain() {
	for {
		select {
		case job := <-p.jobs:
			p.space.Store(job.ID, BatchResult{P: job.Batch.P, Seed: job.Batch.Seed}, fmt.Errorf("pool closed: %w", p.ctx.Err()), job.TTL)
		default:
			return
		}
	}
}

func (p *Pool) collectMetrics() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.metrics.mu.Lock()
			p.metrics.JobQueueSize = len(p.jobs)
			p.metrics.mu.Unlock()
		}
	}
}

/*
Schedule queues a job and returns the channel its outcome arrives on. When
the queue stays full for longer than the scheduling timeout, or the pool is
closed, the channel carries the error instead.
*/
func (p *Pool) Schedule(job Job) chan Outcome {
	if err := p.ctx.Err(); err != nil {
		return failedOutcome(job, fmt.Errorf("pool closed: %w", err))
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.config.schedulingTimeout())
	defer cancel()

	select {
	case p.jobs <- job:
		return p.space.Await(job.ID)
	case <-ctx.Done():
		p.metrics.recordSchedulingFailure()
		return failedOutcome(job, fmt.Errorf("job scheduling timeout: %w", ctx.Err()))
	}
}

func failedOutcome(job Job, err error) chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- Outcome{
		Value:     BatchResult{P: job.Batch.P, Seed: job.Batch.Seed},
		Error:     err,
		CreatedAt: time.Now(),
	}
	close(ch)
	return ch
}

// Done is closed once the pool has been closed or its context has ended.
func (p *Pool) Done() <-chan struct{} {
	return p.ctx.Done()
}

func (p *Pool) Err() error {
	return p.ctx.Err()
}

// Metrics returns the live metrics of the pool.
func (p *Pool) Metrics() *Metrics {
	return p.metrics
}

func (p *Pool) startWorker() {
	worker := newWorker(p)

	p.workerMu.Lock()
	p.workerList = append(p.workerList, worker)
	p.workerMu.Unlock()

	p.metrics.mu.Lock()
	p.metrics.WorkerCount++
	p.metrics.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		worker.run(p.ctx)
	}()
}

// Close stops every worker and waits for in-flight batches to finish.
func (p *Pool) Close() {
	if p == nil {
		return
	}

	p.closeOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.space.Close()

		p.workerMu.Lock()
		p.workerList = nil
		p.workerMu.Unlock()

		errnie.Info("Pool - closed")
	})
}
