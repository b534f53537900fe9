package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Deliverer sends the notification for one stored contact request.
type Deliverer interface {
	Deliver(ctx context.Context, req *domain.ContactRequest) error
}

// Dispatcher routes contact requests to a fixed set of workers using
// consistent hashing on the client id, so one client's notifications go out
// in submission order.
type Dispatcher struct {
	workers   []chan *domain.ContactRequest
	deliverer Deliverer
	log       zerolog.Logger
	wg        sync.WaitGroup
	done      chan struct{}
	onDone    func(err error)
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, deliverer Deliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan *domain.ContactRequest, numWorkers),
		deliverer: deliverer,
		log:       log,
		done:      make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan *domain.ContactRequest, channelBuffer)
	}
	return d
}

// OnDelivered registers fn to observe every delivery outcome.
func (d *Dispatcher) OnDelivered(fn func(err error)) { d.onDone = fn }

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		close(d.done)
	}()
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue hands req to the worker responsible for its client. Once the
// dispatcher has stopped, requests are dropped; they stay stored and are
// only missing their notification.
func (d *Dispatcher) Enqueue(req *domain.ContactRequest) {
	select {
	case d.workers[d.shardIndex(req.ClientID)] <- req:
	case <-d.done:
		d.log.Warn().Str("request_id", req.ID).Msg("dispatcher stopped, notification dropped")
	}
}

// shardIndex maps a client id deterministically to a worker index.
func (d *Dispatcher) shardIndex(clientID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan *domain.ContactRequest) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-ch:
			if !ok {
				return
			}
			err := d.deliverer.Deliver(ctx, req)
			if err != nil {
				d.log.Error().Err(err).
					Str("request_id", req.ID).
					Str("client_id", req.ClientID).
					Int("worker_id", id).
					Msg("contact notification failed")
			}
			if d.onDone != nil {
				d.onDone(err)
			}
		}
	}
}
