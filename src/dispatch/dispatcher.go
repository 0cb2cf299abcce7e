package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/alexsandroveiga/paygate/src/ledger"
	"github.com/gofiber/fiber/v3/log"
)

// ErrBufferFull is returned by Accept when the hand-off buffer cannot take
// another request right now.
var ErrBufferFull = errors.New("payment buffer is full")

// Submitter is the processing side of the pipeline, satisfied by
// processor.Client.
type Submitter interface {
	Process(ctx context.Context, req domain.PaymentRequest) (domain.ProcessedPayment, error)
}

// Dispatcher decouples request acceptance from processor calls. Accepted
// requests land in an in-memory hand-off buffer; a mirroring loop moves
// them onto the work queue, and a pool of workers pulls from that queue,
// submits each payment and records the result in the ledger. A request
// whose processing attempt fails goes back onto the queue, so it is
// retried until it eventually succeeds.
type Dispatcher struct {
	buffer    chan domain.PaymentRequest
	queue     Queue
	submitter Submitter
	ledger    ledger.Repository
	workers   int

	started atomic.Bool
	wg      sync.WaitGroup
}

func New(queue Queue, submitter Submitter, ledgerRepo ledger.Repository, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		buffer:    make(chan domain.PaymentRequest, 10000),
		queue:     queue,
		submitter: submitter,
		ledger:    ledgerRepo,
		workers:   workers,
	}
}

// Start launches the mirroring loop and the worker pool once; later calls
// are no-ops.
func (d *Dispatcher) Start(ctx context.Context) {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	go d.mirror(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work(ctx)
	}
	log.Infof("started %d payment workers", d.workers)
}

// Accept enqueues a request and returns immediately; processing outcome is
// observable only through the ledger.
func (d *Dispatcher) Accept(req domain.PaymentRequest) error {
	select {
	case d.buffer <- req:
		return nil
	default:
		return ErrBufferFull
	}
}

// Shutdown waits up to grace for the workers to finish their current
// attempt after their context was cancelled.
func (d *Dispatcher) Shutdown(grace time.Duration) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		log.Warn("workers still blocked after grace period, terminating anyway")
	}
}

func (d *Dispatcher) mirror(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.buffer:
			if err := d.queue.Enqueue(ctx, req); err != nil {
				log.Errorf("failed to move payment %s onto the work queue: %v", req.CorrelationID, err)
			}
		}
	}
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for {
		req, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Errorf("failed to take a payment from the queue: %v", err)
			continue
		}

		payment, err := d.submitter.Process(ctx, req)
		if err != nil {
			log.Warnf("processing payment %s failed, re-queueing: %v", req.CorrelationID, err)
			if err := d.queue.Enqueue(ctx, req); err != nil {
				log.Errorf("failed to re-queue payment %s: %v", req.CorrelationID, err)
			}
			continue
		}

		if err := d.ledger.Save(ctx, payment); err != nil {
			log.Errorf("failed to record processed payment %s: %v", payment.CorrelationID, err)
		}
	}
}
