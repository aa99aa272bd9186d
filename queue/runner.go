package queue

import (
	"errors"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Runner executes pipeline jobs on a bounded worker pool and remembers
// their failures until shutdown.
type Runner struct {
	wp   *workerpool.WorkerPool
	mu   sync.Mutex
	errs []error
}

// NewRunner creates a runner with the given number of workers.
func NewRunner(workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{wp: workerpool.New(workers)}
}

// Submit queues job for execution and returns its ID. A failed job is
// logged immediately and reported again by Shutdown.
func (r *Runner) Submit(name string, job func() error) string {
	id := uuid.NewString()
	r.wp.Submit(func() {
		if err := job(); err != nil {
			log.WithFields(log.Fields{"job": name, "id": id}).Errorf("Job failed: %v", err)
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		}
	})
	return id
}

// Shutdown waits for all submitted jobs to finish and returns their
// aggregated errors.
func (r *Runner) Shutdown() error {
	r.wp.StopWait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.errs...)
}
