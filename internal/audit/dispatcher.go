package audit

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Queue identifiers used for drop accounting.
const (
	QueueAPI   = "api"
	QueueAudit = "audit"
)

// Defaults match the pipeline contract: request handling is never blocked and
// the newest event is sacrificed when a queue is full.
const (
	defaultAPICapacity   = 5000
	defaultAuditCapacity = 2000
	defaultBatchSize     = 10
	defaultFlushInterval = 2 * time.Second
	deliverTimeout       = 10 * time.Second
)

// Sink delivers a batch of events to the external endpoint. Failures are
// logged and swallowed by the dispatcher; they are never retried.
type Sink interface {
	Deliver(ctx context.Context, events []Event) error
}

// Config tunes the dispatcher. Zero values fall back to the defaults above.
type Config struct {
	APICapacity   int
	AuditCapacity int
	BatchSize     int
	FlushInterval time.Duration
	// OnDrop is called with the queue name whenever an event is dropped. Optional.
	OnDrop func(queue string)
}

// Dispatcher owns the two bounded queues and their delivery workers for the
// lifetime of the process. Enqueue never blocks; a full queue drops the event.
type Dispatcher struct {
	cfg  Config
	sink Sink

	apiCh   chan Event
	auditCh chan Event

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	droppedAPI   atomic.Uint64
	droppedAudit atomic.Uint64
}

// NewDispatcher starts one background worker per queue and returns the
// dispatcher. sink must not be nil.
func NewDispatcher(sink Sink, cfg Config) *Dispatcher {
	if cfg.APICapacity <= 0 {
		cfg.APICapacity = defaultAPICapacity
	}
	if cfg.AuditCapacity <= 0 {
		cfg.AuditCapacity = defaultAuditCapacity
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}

	d := &Dispatcher{
		cfg:     cfg,
		sink:    sink,
		apiCh:   make(chan Event, cfg.APICapacity),
		auditCh: make(chan Event, cfg.AuditCapacity),
		done:    make(chan struct{}),
	}

	d.wg.Add(2)
	go d.run(d.apiCh, QueueAPI)
	go d.run(d.auditCh, QueueAudit)

	return d
}

// EnqueueAPI offers an operational event to the api queue without blocking.
// Safe on a nil dispatcher.
func (d *Dispatcher) EnqueueAPI(e Event) {
	if d == nil {
		return
	}
	d.enqueue(d.apiCh, e, QueueAPI, &d.droppedAPI)
}

// EnqueueAudit offers a security event to the audit queue without blocking.
// Safe on a nil dispatcher.
func (d *Dispatcher) EnqueueAudit(e Event) {
	if d == nil {
		return
	}
	d.enqueue(d.auditCh, e, QueueAudit, &d.droppedAudit)
}

func (d *Dispatcher) enqueue(ch chan Event, e Event, queue string, dropped *atomic.Uint64) {
	select {
	case ch <- e:
	default:
		dropped.Add(1)
		if d.cfg.OnDrop != nil {
			d.cfg.OnDrop(queue)
		}
	}
}

// Dropped returns how many events have been dropped from the named queue.
func (d *Dispatcher) Dropped(queue string) uint64 {
	if queue == QueueAudit {
		return d.droppedAudit.Load()
	}
	return d.droppedAPI.Load()
}

// run is the worker loop: wait up to the flush interval for the first event,
// drain whatever else is already queued up to the batch cap, deliver, repeat.
// Delivery failures never stop the loop.
func (d *Dispatcher) run(ch chan Event, queue string) {
	defer d.wg.Done()

	timer := time.NewTimer(d.cfg.FlushInterval)
	defer timer.Stop()

	for {
		batch := make([]Event, 0, d.cfg.BatchSize)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(d.cfg.FlushInterval)

		select {
		case e := <-ch:
			batch = append(batch, e)
		case <-timer.C:
		case <-d.done:
			d.flushRemaining(ch, queue)
			return
		}

		batch = d.drain(ch, batch)
		if len(batch) == 0 {
			continue
		}
		d.deliver(batch, queue)
	}
}

// drain collects already-queued events without blocking, up to the batch cap.
func (d *Dispatcher) drain(ch chan Event, batch []Event) []Event {
	for len(batch) < d.cfg.BatchSize {
		select {
		case e := <-ch:
			batch = append(batch, e)
		default:
			return batch
		}
	}
	return batch
}

func (d *Dispatcher) deliver(batch []Event, queue string) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	if err := d.sink.Deliver(ctx, batch); err != nil {
		log.Printf("audit: %s delivery failed (%d events): %v", queue, len(batch), err)
	}
}

// flushRemaining is the best-effort shutdown drain; anything still queued when
// the process exits is acceptable loss.
func (d *Dispatcher) flushRemaining(ch chan Event, queue string) {
	for {
		batch := make([]Event, 0, d.cfg.BatchSize)
		batch = d.drain(ch, batch)
		if len(batch) == 0 {
			return
		}
		d.deliver(batch, queue)
	}
}

// Close stops both workers after a best-effort drain. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
	})
}
