package qhamming

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// Outcome wraps a batch result with its metadata
type Outcome struct {
	Value     BatchResult
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

// ResultSpace holds finished batch results until they are awaited
type ResultSpace struct {
	mu      sync.Mutex
	values  map[string]Outcome
	waiting map[string][]chan Outcome
	wg      sync.WaitGroup
	done    chan struct{}
	once    sync.Once
}

func NewResultSpace() *ResultSpace {
	rs := &ResultSpace{
		values:  make(map[string]Outcome),
		waiting: make(map[string][]chan Outcome),
		done:    make(chan struct{}),
	}

	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		rs.cleanup(time.Minute)
	}()

	return rs
}

// Store records an outcome and hands it to anyone already waiting
func (rs *ResultSpace) Store(id string, value BatchResult, err error, ttl time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	out := Outcome{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}

	if channels, ok := rs.waiting[id]; ok {
		for _, ch := range channels {
			ch <- out
			close(ch)
		}
		delete(rs.waiting, id)
		return
	}

	rs.values[id] = out
}

/*
Await returns a channel that receives the outcome for id exactly once. A
stored outcome is consumed by the first Await.
*/
func (rs *ResultSpace) Await(id string) chan Outcome {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ch := make(chan Outcome, 1)

	if out, ok := rs.values[id]; ok {
		delete(rs.values, id)
		ch <- out
		close(ch)
		return ch
	}

	rs.waiting[id] = append(rs.waiting[id], ch)
	return ch
}

func (rs *ResultSpace) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.done:
			return
		case <-ticker.C:
			rs.mu.Lock()
			rs.cleanupExpired(time.Now())
			rs.mu.Unlock()
		}
	}
}

func (rs *ResultSpace) cleanupExpired(now time.Time) {
	for id, out := range rs.values {
		if out.TTL > 0 && now.Sub(out.CreatedAt) > out.TTL {
			errnie.Warn("ResultSpace - dropping unclaimed result %s", id)
			delete(rs.values, id)
		}
	}
}

func (rs *ResultSpace) Close() {
	rs.once.Do(func() {
		close(rs.done)
		rs.wg.Wait()
	})
}
