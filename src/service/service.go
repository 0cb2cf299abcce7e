package service

import (
	"context"
	"time"

	"github.com/alexsandroveiga/paygate/src/dispatch"
	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/alexsandroveiga/paygate/src/ledger"
)

// Payments is the facade the inbound boundary talks to: accept a payment,
// purge the ledger, answer a time-ranged summary.
type Payments struct {
	dispatcher *dispatch.Dispatcher
	ledger     ledger.Repository
}

func NewPayments(dispatcher *dispatch.Dispatcher, ledgerRepo ledger.Repository) *Payments {
	return &Payments{
		dispatcher: dispatcher,
		ledger:     ledgerRepo,
	}
}

// Accept enqueues the request for asynchronous processing. It never waits
// for, nor reports, the processing outcome.
func (p *Payments) Accept(req domain.PaymentRequest) error {
	return p.dispatcher.Accept(req)
}

func (p *Payments) Purge(ctx context.Context) error {
	return p.ledger.Purge(ctx)
}

func (p *Payments) Summary(ctx context.Context, from, to *time.Time) (domain.PaymentsSummary, error) {
	return p.ledger.Summary(ctx, from, to)
}
