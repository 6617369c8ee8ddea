// Package worker provides an asynchronous worker pool for persisting
// transcript records with the provided storage.Driver and announcing them
// through the provided eventstream.Publisher.
//
// The pool decouples storage from the /agent streaming path so that a slow
// database never holds up a client.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/papercomputeco/agentui/pkg/eventstream"
	"github.com/papercomputeco/agentui/pkg/logger"
	"github.com/papercomputeco/agentui/pkg/storage"
	"github.com/papercomputeco/agentui/pkg/transcript"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 10 * time.Second
)

// Reporter receives the outcome of every job. Implementations must be safe
// for concurrent use.
type Reporter interface {
	TranscriptStored()
	TranscriptDropped()
	TranscriptFailed()
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting records.
	Driver storage.Driver

	// Publisher announces stored records. Optional.
	Publisher eventstream.Publisher

	// Reporter observes job outcomes. Optional.
	Reporter Reporter

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds the storage and publish calls of one job.
	JobTimeout time.Duration

	Logger *slog.Logger
}

// Pool processes transcript records asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan *transcript.Record
	wg     sync.WaitGroup
	logger *slog.Logger

	// mu guards closed so late Enqueue calls never send on a closed queue.
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout == 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *transcript.Record, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a record for persistence.
// Returns true if enqueued, false if the queue is full, resulting in the record being dropped
func (p *Pool) Enqueue(rec *transcript.Record) bool {
	if rec == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("transcript not queued, pool closed", "id", rec.ID)
		if p.config.Reporter != nil {
			p.config.Reporter.TranscriptDropped()
		}
		return false
	}

	select {
	case p.queue <- rec:
		p.logger.Debug("transcript queued", "id", rec.ID, "events", len(rec.Events))
		return true
	default:
		p.logger.Error("transcript not queued, queue full, record dropped", "id", rec.ID)
		if p.config.Reporter != nil {
			p.config.Reporter.TranscriptDropped()
		}
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls records off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for rec := range p.queue {
		p.processJob(rec)
	}

	p.logger.Debug("storage worker stopped", "worker_id", id)
}

// processJob stores the record and, when it is new, publishes its summary.
// Publish failures are logged but do not count as a failed job.
func (p *Pool) processJob(rec *transcript.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	isNew, err := p.config.Driver.Put(ctx, rec)
	if err != nil {
		p.logger.Error("async transcript storage failed", "id", rec.ID, "error", err)
		if p.config.Reporter != nil {
			p.config.Reporter.TranscriptFailed()
		}
		return
	}

	p.logger.Info("transcript stored",
		"id", rec.ID,
		"backend", rec.Backend,
		"events", len(rec.Events),
		"is_new", isNew,
	)
	if p.config.Reporter != nil {
		p.config.Reporter.TranscriptStored()
	}

	if !isNew || p.config.Publisher == nil {
		return
	}

	ev := eventstream.NewTranscriptRecordedEvent(rec, time.Now())
	if err := p.config.Publisher.PublishTranscript(ctx, ev); err != nil {
		p.logger.Warn("failed to publish transcript event", "id", rec.ID, "error", err)
	}
}
