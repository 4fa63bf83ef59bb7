package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelforge/storefront/internal/api/metrics"
	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/internal/core/ports"
)

const (
	defaultWorkers        = 4
	defaultBuffer         = 256
	defaultPublishTimeout = 10 * time.Second
)

// Deduper claims an event before delivery. Claim returns false if the event
// was already claimed.
type Deduper interface {
	Claim(ctx context.Context, e domain.Event) (bool, error)
}

// Options tunes the Dispatcher. Zero values select defaults.
type Options struct {
	Workers        int
	Buffer         int
	PublishTimeout time.Duration
}

// Dispatcher implements ports.Notifier. Events are routed to a fixed set of
// workers by hashing kind and subject, so events about the same entity are
// delivered in order. Delivery is attempted once; failures are logged and
// counted, never retried.
type Dispatcher struct {
	workers []chan domain.Event
	sink    ports.EventSink
	dedup   Deduper
	timeout time.Duration
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. dedup may be nil.
func NewDispatcher(sink ports.EventSink, dedup Deduper, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	d := &Dispatcher{
		workers: make([]chan domain.Event, opts.Workers),
		sink:    sink,
		dedup:   dedup,
		timeout: opts.PublishTimeout,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Event, opts.Buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// events still queued at that point are discarded.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Notify enqueues e without blocking. When the worker's buffer is full the
// event is dropped.
func (d *Dispatcher) Notify(e domain.Event) {
	idx := d.shardIndex(e)
	select {
	case d.workers[idx] <- e:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues(string(e.Kind), "dropped").Inc()
		d.log.Warn().
			Str("kind", string(e.Kind)).
			Str("subject", e.Subject).
			Int("worker_id", idx).
			Msg("notification queue full, event dropped")
	}
}

// shardIndex maps an event deterministically to a worker index.
func (d *Dispatcher) shardIndex(e domain.Event) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(e.Kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(e.Subject))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Event) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, e domain.Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	kind := string(e.Kind)
	if d.dedup != nil {
		first, err := d.dedup.Claim(ctx, e)
		switch {
		case err != nil:
			d.log.Warn().Err(err).Str("kind", kind).Str("subject", e.Subject).Msg("dedup unavailable, delivering anyway")
		case !first:
			metrics.NotificationsTotal.WithLabelValues(kind, "duplicate").Inc()
			d.log.Debug().Str("kind", kind).Str("subject", e.Subject).Msg("duplicate notification skipped")
			return
		}
	}

	start := time.Now()
	err := d.sink.Publish(ctx, e)
	metrics.NotificationDeliveryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(kind, "failed").Inc()
		d.log.Error().Err(err).
			Str("kind", kind).
			Str("subject", e.Subject).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(kind, "delivered").Inc()
}
