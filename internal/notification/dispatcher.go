package notification

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"munjiz/internal/logging"
	"munjiz/internal/models"
)

// Dispatcher delivers appended notifications to the realtime hub and the
// event publisher on a worker pool.
type Dispatcher struct {
	queue    chan models.Notification
	workers  int
	handlers []func(context.Context, models.Notification)
	log      *logrus.Entry
	wg       sync.WaitGroup
}

func NewDispatcher(logger *logging.Logger, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		queue:   make(chan models.Notification, queueSize),
		workers: workers,
		log:     logger.Component("dispatcher"),
	}
}

// Handle registers h. Call before Start.
func (d *Dispatcher) Handle(h func(context.Context, models.Notification)) {
	d.handlers = append(d.handlers, h)
}

// Enqueue drops the notification when the queue is full.
func (d *Dispatcher) Enqueue(n models.Notification) {
	select {
	case d.queue <- n:
		d.log.Debugf("Queued notification: id=%s", n.ID)
	default:
		d.log.Errorf("Queue full, dropping notification: id=%s", n.ID)
	}
}

// Start launches the workers. They exit when ctx is cancelled; Wait
// blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.log.Infof("Worker %d stopped", id)
			return
		case n := <-d.queue:
			for _, h := range d.handlers {
				h(ctx, n)
			}
		}
	}
}
