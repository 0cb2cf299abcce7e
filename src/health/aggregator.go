package health

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/alexsandroveiga/paygate/src/leader"
	"github.com/gofiber/fiber/v3/log"
)

// Resolver yields the processor route dispatch should use right now.
type Resolver interface {
	Resolve() domain.HealthRecord
}

// Options configure the aggregator loop.
type Options struct {
	DefaultURL   string
	FallbackURL  string
	Interval     time.Duration
	InstanceName string
}

// Aggregator runs the periodic health-decision loop. On each tick the
// instance holding the leader lease probes both processors concurrently,
// compares the records and publishes the winner; every other instance
// reads the last published verdict instead. Either way the result lands in
// a process-local atomic slot that Resolve serves from.
type Aggregator struct {
	prober  Prober
	elector leader.Elector
	repo    Repository
	opts    Options

	active  atomic.Pointer[domain.HealthRecord]
	started atomic.Bool
}

func NewAggregator(prober Prober, elector leader.Elector, repo Repository, opts Options) *Aggregator {
	if opts.Interval <= 0 {
		opts.Interval = 4 * time.Second
	}
	return &Aggregator{
		prober:  prober,
		elector: elector,
		repo:    repo,
		opts:    opts,
	}
}

// Start launches the polling loop once; later calls are no-ops. The loop
// ends when ctx is cancelled.
func (a *Aggregator) Start(ctx context.Context) {
	if !a.started.CompareAndSwap(false, true) {
		return
	}
	go a.run(ctx)
}

// Resolve returns the current best route, starting the polling loop if
// nothing did so yet. It never fails: before the first published verdict
// it serves the default route assumed healthy.
func (a *Aggregator) Resolve() domain.HealthRecord {
	a.Start(context.Background())
	if record := a.active.Load(); record != nil {
		return *record
	}
	return domain.DefaultSeed(a.opts.DefaultURL)
}

func (a *Aggregator) run(ctx context.Context) {
	ticker := time.NewTicker(a.opts.Interval)
	defer ticker.Stop()
	for {
		a.tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tick performs one cycle. Every failure path logs and returns; the loop
// itself never dies on an error.
func (a *Aggregator) tick(ctx context.Context) {
	isLeader, err := a.elector.AmILeader(ctx, a.opts.InstanceName, a.opts.Interval)
	if err != nil {
		log.Warnf("leader election attempt failed: %v", err)
		return
	}

	if !isLeader {
		actual, err := a.repo.Actual(ctx)
		if err != nil {
			log.Warnf("failed to read published route: %v", err)
			return
		}
		if actual != nil {
			a.active.Store(actual)
		}
		return
	}

	// Both probes run in parallel and the tick blocks until both resolve;
	// probing sequentially would double the health-check latency.
	var defaultRecord, fallbackRecord *domain.HealthRecord
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defaultRecord = a.prober.Probe(ctx, domain.DefaultProcessor, a.opts.DefaultURL)
	}()
	go func() {
		defer wg.Done()
		fallbackRecord = a.prober.Probe(ctx, domain.FallbackProcessor, a.opts.FallbackURL)
	}()
	wg.Wait()

	winner := domain.Compare(defaultRecord, fallbackRecord, domain.PreferDefault)
	if winner == nil {
		// neither endpoint answered; the previous verdict stands
		return
	}

	a.active.Store(winner)
	if err := a.repo.Update(ctx, winner); err != nil {
		log.Warnf("failed to publish active route: %v", err)
	}
	log.Infof("active route: %s (failing=%t, minResponseTime=%dms)",
		winner.Name, winner.Failing, winner.MinResponseTime)
}
