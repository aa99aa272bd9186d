package queue

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// Shutdowner is one ordered step of the pipeline teardown.
type Shutdowner interface {
	Shutdown() error
}

// ShutdownFunc adapts a plain function to the Shutdowner interface.
type ShutdownFunc func() error

func (f ShutdownFunc) Shutdown() error { return f() }

// SafeShutdown runs every step in order, never stopping early, and returns
// the aggregated errors. The conventional order is: terminate the queues,
// stop the workers, flush the log queue, close the manager.
func SafeShutdown(steps ...Shutdowner) error {
	log.Debug("Safely shutting down")
	var errs []error
	for _, step := range steps {
		if step == nil {
			continue
		}
		if err := step.Shutdown(); err != nil {
			log.Warnf("Shutdown step failed: %v", err)
			errs = append(errs, err)
		}
	}
	log.Debug("Cleanup complete")
	return errors.Join(errs...)
}

// ShutdownPipeline tears down a manager/runner pair in the conventional
// order. Terminate runs first and discards pending queue items, so on a
// normal completion path callers should Finish their queues and stop the
// runner before invoking it.
func ShutdownPipeline(m *Manager, r *Runner) error {
	return SafeShutdown(
		ShutdownFunc(m.Terminate),
		r,
		ShutdownFunc(m.FlushLog),
		ShutdownFunc(m.Close),
	)
}
