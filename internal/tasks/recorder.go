package tasks

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodplay/internal/shared"
)

const defaultQueueSize = 64

type job struct {
	name string
	fn   func() error
}

// Recorder runs best-effort persistence on a single background worker.
//
// Failures are logged and never reach the caller. When the queue is full the job is dropped.
type Recorder struct {
	jobs   chan job
	logger *log.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewRecorder starts a worker with a queue of size jobs.
func NewRecorder(size int, logger *log.Logger) *Recorder {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	r := &Recorder{
		jobs:   make(chan job, size),
		logger: logger,
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer close(r.done)
	for j := range r.jobs {
		if err := j.fn(); err != nil {
			r.logger.Warn("failed to record", "job", j.name, "error", err)
		}
	}
}

// Record enqueues fn. It never blocks and reports whether the job was accepted.
func (r *Recorder) Record(name string, fn func() error) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return false
	}

	select {
	case r.jobs <- job{name: name, fn: fn}:
		return true
	default:
		r.logger.Warn("recorder queue full, dropping job", "job", name)
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()
	<-r.done
}
