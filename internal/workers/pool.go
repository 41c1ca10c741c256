package workers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// ProcessFunc handles one scheduled unit of work: a stored event ID.
// Delivery is at least once, so handlers must be idempotent.
type ProcessFunc func(ctx context.Context, eventID uint) error

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 64
)

// Pool is a bounded worker pool for fire-and-forget pipeline runs. The
// ingestion endpoint enqueues an event ID after persisting the event and
// acknowledging the hub; workers pick runs up in arrival order with no
// cross-event ordering guarantee.
type Pool struct {
	queue   chan uint
	size    int
	process ProcessFunc
	log     *logrus.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewPool(size, queueSize int, process ProcessFunc, log *logrus.Logger) *Pool {
	if size <= 0 {
		size = DefaultWorkers
	}

	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:   make(chan uint, queueSize),
		size:    size,
		process: process,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.log.WithField("workers", p.size).Info("Worker pool started")
}

// Stop cancels in-flight runs and waits for workers to exit. Queued runs
// that have not started are dropped; the materializer's idempotency makes
// re-triggering them after restart safe.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.log.Info("Worker pool stopped")
}

// Enqueue schedules a pipeline run for the event. It blocks while the
// queue is full and reports false once the pool is shutting down.
func (p *Pool) Enqueue(eventID uint) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.queue <- eventID:
		return true
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case eventID := <-p.queue:
			if err := p.process(p.ctx, eventID); err != nil {
				p.log.WithField("event_id", eventID).WithError(err).Error("Event processing failed")
			}
		}
	}
}

// Global pool instance
var globalPool *Pool

// Initialize creates and starts the global worker pool.
func Initialize(size, queueSize int, process ProcessFunc, log *logrus.Logger) {
	globalPool = NewPool(size, queueSize, process, log)
	globalPool.Start()
}

// Shutdown stops the global worker pool.
func Shutdown() {
	if globalPool != nil {
		globalPool.Stop()
	}
}

// Enqueue schedules a run on the global pool.
func Enqueue(eventID uint) bool {
	if globalPool == nil {
		return false
	}
	return globalPool.Enqueue(eventID)
}
