// Package queue coordinates the pipeline's work queues and workers, and
// owns the ordered shutdown sequence that tears them down.
package queue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	log "github.com/sirupsen/logrus"

	"facekit/config"
)

// ErrManagerClosed is returned when a manager is used after Close.
var ErrManagerClosed = errors.New("queue manager is closed")

// ErrFlushTimeout is returned when the log queue fails to drain in time.
var ErrFlushTimeout = errors.New("log queue flush timed out")

// pipe is a named queue whose channel is closed at most once, either by
// its producer (Finish) or by the manager (Terminate).
type pipe struct {
	ch   chan any
	once *sync.Once
}

// Manager is a registry of named buffered queues plus a dedicated log
// queue. Producers must stop writing to a queue before it is closed;
// writes after that point panic on the closed channel.
type Manager struct {
	queues   cmap.ConcurrentMap[string, *pipe]
	size     int
	logQueue chan any
	flushed  chan struct{}
	closed   chan struct{}
}

// NewManager creates a manager whose queues buffer up to size items.
func NewManager(size int) *Manager {
	m := &Manager{
		queues:   cmap.New[*pipe](),
		size:     size,
		logQueue: make(chan any, size),
		flushed:  make(chan struct{}),
		closed:   make(chan struct{}),
	}
	go m.pumpLog()
	return m
}

// Add returns the queue registered under name, creating it on first use.
func (m *Manager) Add(name string) chan any {
	queue := &pipe{ch: make(chan any, m.size), once: &sync.Once{}}
	if !m.queues.SetIfAbsent(name, queue) {
		queue, _ = m.queues.Get(name)
	}
	return queue.ch
}

// Get returns the queue registered under name, if any.
func (m *Manager) Get(name string) (chan any, bool) {
	queue, ok := m.queues.Get(name)
	if !ok {
		return nil, false
	}
	return queue.ch, true
}

// Finish closes the named queue on behalf of its producer, signalling
// consumers that no more items are coming. Pending items stay readable.
func (m *Manager) Finish(name string) {
	if queue, ok := m.queues.Get(name); ok {
		queue.once.Do(func() { close(queue.ch) })
	}
}

// LogQueue is the sink for deferred log records. Records are drained to the
// logger by a background goroutine and flushed on shutdown.
func (m *Manager) LogQueue() chan<- any {
	return m.logQueue
}

// Terminate drains and closes every named queue. Pending items are
// discarded with a warning.
func (m *Manager) Terminate() error {
	var names []string
	for item := range m.queues.IterBuffered() {
		names = append(names, item.Key)
		dropped := 0
		for {
			select {
			case _, ok := <-item.Val.ch:
				if ok {
					dropped++
					continue
				}
			default:
			}
			break
		}
		if dropped > 0 {
			log.Warnf("Queue %s terminated with %d unprocessed items", item.Key, dropped)
		}
		item.Val.once.Do(func() { close(item.Val.ch) })
	}
	for _, name := range names {
		m.queues.Remove(name)
	}
	log.Debugf("Terminated %d queues", len(names))
	return nil
}

// FlushLog pushes a sentinel through the log queue and waits until the
// pump has consumed everything queued before it.
func (m *Manager) FlushLog() error {
	select {
	case <-m.closed:
		return ErrManagerClosed
	default:
	}
	m.logQueue <- nil
	select {
	case <-m.flushed:
		return nil
	case <-time.After(time.Duration(config.LOG_FLUSH_SECS) * time.Second):
		return ErrFlushTimeout
	}
}

// Close shuts the manager down: the log queue is closed and the pump
// exits. The manager cannot be reused afterwards.
func (m *Manager) Close() error {
	select {
	case <-m.closed:
		return ErrManagerClosed
	default:
	}
	close(m.closed)
	close(m.logQueue)
	return nil
}

func (m *Manager) pumpLog() {
	for record := range m.logQueue {
		if record == nil {
			// Flush sentinel.
			select {
			case m.flushed <- struct{}{}:
			case <-m.closed:
			}
			continue
		}
		log.WithField("source", "queue").Info(fmt.Sprint(record))
	}
}
