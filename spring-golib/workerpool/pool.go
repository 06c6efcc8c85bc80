// Package workerpool runs queued jobs on a fixed number of goroutines.
// The dataset builder uses it to tokenize corpus files in parallel.
package workerpool

import (
	"sync"

	"github.com/spring-nlp/spring/spring-golib/errors"
)

// Job is a unit of work submitted to a Pool
type Job func() error

// Pool runs jobs on a fixed number of worker goroutines
type Pool struct {
	jobs    chan Job
	pending sync.WaitGroup
	quit    chan struct{}
	once    sync.Once

	mu   sync.Mutex
	errs errors.Errors
}

// New creates a Pool with n workers, ready to accept jobs
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		jobs: make(chan Job),
		quit: make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for {
		select {
		case <-p.quit:
			return
		case job := <-p.jobs:
			err := job()
			if err != nil {
				p.mu.Lock()
				p.errs = errors.Append(p.errs, err)
				p.mu.Unlock()
			}
			p.pending.Done()
		}
	}
}

// Add queues jobs without blocking the caller
func (p *Pool) Add(jobs []Job) {
	p.pending.Add(len(jobs))
	go p.feed(jobs)
}

// AddBlocking queues jobs, blocking until every job has been handed to a worker
func (p *Pool) AddBlocking(jobs []Job) {
	p.pending.Add(len(jobs))
	p.feed(jobs)
}

func (p *Pool) feed(jobs []Job) {
	for _, job := range jobs {
		select {
		case <-p.quit:
			// jobs abandoned on Stop still need their pending slot released
			p.pending.Done()
		case p.jobs <- job:
		}
	}
}

// Stop shuts the workers down; queued jobs that have not started are dropped.
// Jobs already running complete normally.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.quit)
	})
}

// Wait blocks until every added job has completed (or was dropped by Stop)
// and returns the combined errors of all failed jobs, if any.
func (p *Pool) Wait() error {
	p.pending.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.errs == nil {
		return nil
	}
	return p.errs
}
