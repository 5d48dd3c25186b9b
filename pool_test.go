package qhamming

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const timeoutMsg = "Test timed out waiting for a batch outcome"

func testJob(p float64, trials int, seed uint64) Job {
	code := Reference()
	_, codewords, _ := BuildEncoder(code)
	return NewJob(code, codewords, Batch{P: p, Trials: trials, Seed: seed, Sampler: SamplerPerDraw})
}

func TestWorker(t *testing.T) {
	Convey("Given a worker attached to a bare pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		pool := &Pool{
			ctx:     ctx,
			workers: make(chan chan Job, 1),
			space:   NewResultSpace(),
			metrics: NewMetrics(),
		}
		worker := newWorker(pool)
		go worker.run(ctx)

		Reset(func() {
			cancel()
			pool.space.Close()
		})

		Convey("It should offer itself and process the job it is handed", func() {
			job := testJob(0, 50, 3)
			result := pool.space.Await(job.ID)

			select {
			case <-time.After(2 * time.Second):
				t.Fatal(timeoutMsg)
			case ch := <-pool.workers:
				ch <- job
			}

			select {
			case <-time.After(5 * time.Second):
				t.Fatal(timeoutMsg)
			case out := <-result:
				So(out.Error, ShouldBeNil)
				So(out.Value.Trials, ShouldEqual, 50)
				So(out.Value.Successes, ShouldEqual, 50)
				So(out.Value.Seed, ShouldEqual, uint64(3))
			}

			pool.metrics.mu.RLock()
			defer pool.metrics.mu.RUnlock()
			So(pool.metrics.BatchCount, ShouldEqual, int64(1))
			So(pool.metrics.TrialCount, ShouldEqual, int64(50))
		})
	})
}

func TestJob(t *testing.T) {
	Convey("Given a batch job", t, func() {
		job := testJob(0.05, 200, 9)

		Convey("It should get a generated ID and the default TTL", func() {
			So(job.ID, ShouldNotBeEmpty)
			So(job.TTL, ShouldEqual, time.Minute)
			So(testJob(0.05, 200, 9).ID, ShouldNotEqual, job.ID)
		})

		Convey("Options should override the defaults", func() {
			code := Reference()
			custom := NewJob(code, job.Codewords, job.Batch, WithID("batch-1"), WithTTL(time.Second))
			So(custom.ID, ShouldEqual, "batch-1")
			So(custom.TTL, ShouldEqual, time.Second)
		})

		Convey("The same seed should reproduce the same result", func() {
			a, err := job.Execute(nil)
			So(err, ShouldBeNil)
			b, err := job.Execute(nil)
			So(err, ShouldBeNil)
			So(a, ShouldResemble, b)
			So(a.Trials, ShouldEqual, 200)
		})

		Convey("A closed done channel should stop it before any trial", func() {
			done := make(chan struct{})
			close(done)

			res, err := job.Execute(done)
			So(err, ShouldBeNil)
			So(res.Trials, ShouldEqual, 0)
			So(res.P, ShouldEqual, 0.05)
		})

		Convey("A closed caller channel should stop it too", func() {
			done := make(chan struct{})
			close(done)

			code := Reference()
			bound := NewJob(code, job.Codewords, job.Batch, WithDone(done))
			res, err := bound.Execute(nil)
			So(err, ShouldBeNil)
			So(res.Trials, ShouldEqual, 0)
		})

		Convey("An unknown sampler should be reported", func() {
			job.Batch.Sampler = SamplerKind("quantum")
			_, err := job.Execute(nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a running pool", t, func() {
		cfg := NewConfig()
		cfg.Workers = 3
		cfg.SchedulingTimeout = time.Second
		pool := NewPool(context.Background(), cfg)

		Reset(func() {
			pool.Close()
		})

		Convey("It should report its workers", func() {
			m := pool.Metrics()
			m.mu.RLock()
			defer m.mu.RUnlock()
			So(m.WorkerCount, ShouldEqual, 3)
		})

		Convey("Scheduled jobs should all come back", func() {
			var pending []chan Outcome
			for i := 0; i < 10; i++ {
				pending = append(pending, pool.Schedule(testJob(0.02, 20, uint64(i))))
			}

			for _, ch := range pending {
				select {
				case <-time.After(5 * time.Second):
					t.Fatal(timeoutMsg)
				case out := <-ch:
					So(out.Error, ShouldBeNil)
					So(out.Value.Trials, ShouldEqual, 20)
				}
			}
		})

		Convey("Close should be idempotent and refuse new jobs", func() {
			pool.Close()
			pool.Close()

			out := <-pool.Schedule(testJob(0.02, 20, 1))
			So(out.Error, ShouldNotBeNil)
			So(out.Error.Error(), ShouldContainSubstring, "pool closed")
			So(out.Value.P, ShouldEqual, 0.02)
		})
	})

	Convey("Given a pool closed with jobs still queued", t, func() {
		cfg := NewConfig()
		cfg.Workers = 1
		pool := NewPool(context.Background(), cfg)

		queued := testJob(0.02, 20, 5)
		pool.jobs <- queued
		result := pool.space.Await(queued.ID)

		pool.cancel()
		pool.wg.Wait()
		defer pool.Close()

		Convey("Each queued job should get an outcome", func() {
			select {
			case <-time.After(2 * time.Second):
				t.Fatal(timeoutMsg)
			case out := <-result:
				if out.Error != nil {
					So(out.Error.Error(), ShouldContainSubstring, "pool closed")
				} else {
					So(out.Value.Seed, ShouldEqual, uint64(5))
				}
			}
		})
	})

	Convey("Given a nil pool", t, func() {
		var pool *Pool
		So(func() { pool.Close() }, ShouldNotPanic)
	})
}
