package qhamming

import (
	"time"

	"github.com/google/uuid"
)

/*
Batch is a run of trials at one error probability. Every batch owns its own
random stream derived from Seed, so batches never share generator state and
a fixed seed reproduces the same batch on any worker.
*/
type Batch struct {
	P       float64
	Trials  int
	Seed    uint64
	Sampler SamplerKind
}

// BatchResult is what a worker reports back for one batch.
type BatchResult struct {
	P         float64
	Seed      uint64
	Trials    int
	Successes int
}

// Job represents a batch scheduled on the pool.
type Job struct {
	ID        string
	Batch     Batch
	Code      *Code
	Codewords *CodewordSet
	TTL       time.Duration
	StartTime time.Time
	done      <-chan struct{}
}

// JobOption is a function type for configuring jobs
type JobOption func(*Job)

func NewJob(code *Code, codewords *CodewordSet, batch Batch, opts ...JobOption) Job {
	job := Job{
		ID:        uuid.NewString(),
		Batch:     batch,
		Code:      code,
		Codewords: codewords,
		TTL:       time.Minute,
	}

	for _, opt := range opts {
		opt(&job)
	}

	return job
}

// WithTTL configures how long the result is kept for late awaiters.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}

// WithDone ties the job to the caller's lifetime, next to the pool's own.
func WithDone(done <-chan struct{}) JobOption {
	return func(j *Job) {
		j.done = done
	}
}

// WithID replaces the generated job ID.
func WithID(id string) JobOption {
	return func(j *Job) {
		j.ID = id
	}
}

/*
Execute runs the batch, checking done and the job's own done channel
between trials so a closed pool or a cancelled run stops it early.
*/
func (job Job) Execute(done <-chan struct{}) (BatchResult, error) {
	res := BatchResult{P: job.Batch.P, Seed: job.Batch.Seed}

	sampler, err := NewSampler(job.Batch.Sampler, job.Batch.P, NewRandomSource(job.Batch.Seed))
	if err != nil {
		return res, err
	}

	trial := NewTrial(job.Code, job.Codewords, sampler, job.Batch.P, job.Batch.Seed)
	for i := 0; i < job.Batch.Trials; i++ {
		select {
		case <-done:
			return res, nil
		case <-job.done:
			return res, nil
		default:
		}

		out, err := trial.Run()
		if err != nil {
			return res, err
		}

		res.Trials++
		if out.Success {
			res.Successes++
		}
	}

	return res, nil
}
