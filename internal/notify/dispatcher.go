package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/greenvvay/Parking/internal/domain"
)

// Sink receives facility notifications. Deliver runs on the dispatcher
// goroutine, one notification at a time, so it may block on I/O.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n domain.FacilityEventNotification) error
}

// Dispatcher decouples gate operations from notification I/O: Publish only
// enqueues, a single worker delivers to every sink in order.
type Dispatcher struct {
	log     *zap.Logger
	sinks   []Sink
	queue   chan domain.FacilityEventNotification
	timeout time.Duration
	onDrop  func()

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(log *zap.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		log:     log,
		sinks:   sinks,
		queue:   make(chan domain.FacilityEventNotification, buffer),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
}

// AddSink must be called before Run.
func (d *Dispatcher) AddSink(s Sink) {
	if s != nil {
		d.sinks = append(d.sinks, s)
	}
}

// OnDrop is called whenever Publish finds the queue full.
func (d *Dispatcher) OnDrop(fn func()) {
	d.onDrop = fn
}

// Publish never blocks; it reports false when the notification was dropped.
func (d *Dispatcher) Publish(n domain.FacilityEventNotification) bool {
	select {
	case d.queue <- n:
		return true
	default:
		d.log.Warn("notification queue is full, dropping", zap.String("event_id", n.EventID))
		if d.onDrop != nil {
			d.onDrop()
		}
		return false
	}
}

// Run delivers until ctx is cancelled, then drains what is already queued.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case n := <-d.queue:
			d.deliver(n)
		case <-ctx.Done():
			for {
				select {
				case n := <-d.queue:
					d.deliver(n)
				default:
					d.log.Info("dispatcher stopped")
					return
				}
			}
		}
	}
}

// Done is closed when Run returns.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) deliver(n domain.FacilityEventNotification) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := s.Deliver(ctx, n)
		cancel()
		if err != nil {
			d.log.Error("sink delivery failed",
				zap.String("sink", s.Name()),
				zap.String("event_id", n.EventID),
				zap.Error(err))
		}
	}
}
