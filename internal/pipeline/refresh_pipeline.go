package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quakeview/internal/dashboard"
	"quakeview/internal/input/usgs"
	"quakeview/internal/logger"
	"quakeview/internal/observability"
	"quakeview/pkg/models"
)

// DefaultInterval is the periodic refetch interval.
const DefaultInterval = 300000 * time.Millisecond

// ErrSuperseded is returned by RefreshNow when a newer refresh replaced it.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// Fetcher loads the current feed.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.Feed, error)
}

// RefreshPipeline fetches the feed on start, on a ticker and on manual
// triggers, and applies results to the dashboard. Starting a refresh cancels
// the one in flight; only the newest refresh may change the display.
type RefreshPipeline struct {
	fetcher  Fetcher
	dash     *dashboard.Dashboard
	writers  []SnapshotWriter
	metrics  *observability.Collector
	interval time.Duration
	trigger  chan struct{}

	mu        sync.Mutex
	gen       uint64 // latest started
	applied   uint64 // latest applied to the dashboard
	cancel    context.CancelFunc
	listeners []func(*models.Snapshot)
	wg        sync.WaitGroup

	// Deliveries run outside mu and are serialized so that an older
	// generation never reaches a listener or sink after a newer one.
	deliverMu sync.Mutex
	writeMu   sync.Mutex
}

// NewRefreshPipeline creates a refresh pipeline. metrics may be nil.
func NewRefreshPipeline(fetcher Fetcher, dash *dashboard.Dashboard, writers []SnapshotWriter, metrics *observability.Collector, interval time.Duration) *RefreshPipeline {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &RefreshPipeline{
		fetcher:  fetcher,
		dash:     dash,
		writers:  writers,
		metrics:  metrics,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// AddListener registers a callback invoked after every display change made by a refresh.
func (p *RefreshPipeline) AddListener(fn func(*models.Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Trigger requests a refresh without waiting for it.
func (p *RefreshPipeline) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes immediately, then on every tick and trigger, until ctx is done.
func (p *RefreshPipeline) Run(ctx context.Context) error {
	logger.Infof("Refresh pipeline started (interval=%s)", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.start(ctx)
	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.cancel != nil {
				p.cancel()
			}
			p.mu.Unlock()
			p.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			p.start(ctx)
		case <-p.trigger:
			logger.Debugf("Manual refresh requested")
			p.start(ctx)
		}
	}
}

// RefreshNow runs one refresh and waits for it.
func (p *RefreshPipeline) RefreshNow(ctx context.Context) (*models.Snapshot, error) {
	cctx, gen := p.begin(ctx)
	return p.cycle(cctx, gen)
}

// Close releases every snapshot writer.
func (p *RefreshPipeline) Close() error {
	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			logger.Errorf("Failed to close snapshot writer: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *RefreshPipeline) begin(ctx context.Context) (context.Context, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	p.gen++
	cctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	return cctx, p.gen
}

func (p *RefreshPipeline) start(ctx context.Context) {
	cctx, gen := p.begin(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.cycle(cctx, gen)
	}()
}

func (p *RefreshPipeline) cycle(ctx context.Context, gen uint64) (*models.Snapshot, error) {
	ctx, span := observability.Tracer().Start(ctx, "refresh",
		trace.WithAttributes(attribute.Int64("quakeview.generation", int64(gen))))
	defer span.End()

	started := time.Now()
	feed, err := p.fetcher.Fetch(ctx)
	elapsed := time.Since(started)

	if err != nil && ctx.Err() != nil {
		// Cancelled by a newer refresh or by shutdown; the display stays as it is.
		p.metrics.ObserveFetch(observability.OutcomeSuperseded, elapsed)
		logger.Debugf("Refresh %d cancelled: %v", gen, err)
		return nil, ctx.Err()
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.metrics.ObserveFetch(observability.OutcomeSuperseded, elapsed)
		span.SetAttributes(attribute.Bool("quakeview.superseded", true))
		logger.Debugf("Dropping superseded refresh %d", gen)
		return nil, ErrSuperseded
	}

	var snap *models.Snapshot
	if err != nil {
		snap = p.dash.Fail()
	} else {
		snap = p.dash.Apply(feed, gen)
	}
	p.applied = gen
	listeners := append([]func(*models.Snapshot){}, p.listeners...)
	p.mu.Unlock()

	if err != nil {
		p.metrics.ObserveFetch(outcomeOf(err), elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		logger.Errorf("Failed to load earthquake data: %v", err)
	} else {
		p.metrics.ObserveFetch(observability.OutcomeOK, elapsed)
		p.metrics.ObserveSnapshot(snap)
		span.SetAttributes(attribute.Int("quakeview.events", snap.Total))
		logger.Infof("Rendered %d earthquakes in %d buckets (generation=%d, fetch=%s)", snap.Total, len(snap.Bars), gen, elapsed.Round(time.Millisecond))
	}

	p.notify(gen, snap, listeners)
	if err == nil {
		p.write(gen, snap)
	}
	return snap, err
}

func (p *RefreshPipeline) isApplied(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.applied
}

// notify hands snap to listeners unless a newer generation was applied meanwhile.
func (p *RefreshPipeline) notify(gen uint64, snap *models.Snapshot, listeners []func(*models.Snapshot)) {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()
	for _, fn := range listeners {
		if !p.isApplied(gen) {
			logger.Debugf("Skipping listeners for stale generation %d", gen)
			return
		}
		fn(snap)
	}
}

// write hands snap to every sink in order. A sink may be slow, so the
// generation is checked again before each one.
func (p *RefreshPipeline) write(gen uint64, snap *models.Snapshot) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	for _, w := range p.writers {
		if !p.isApplied(gen) {
			logger.Debugf("Skipping sinks for stale generation %d", gen)
			return
		}
		if err := w.WriteSnapshot(snap); err != nil {
			logger.Errorf("Failed to write snapshot: %v", err)
		}
	}
}

func outcomeOf(err error) string {
	var fe *usgs.FetchError
	if errors.As(err, &fe) {
		if fe.StatusCode != 0 && fe.Err == nil {
			return observability.OutcomeHTTPError
		}
		return observability.OutcomeTransport
	}
	var de *usgs.DecodeError
	if errors.As(err, &de) {
		return observability.OutcomeDecode
	}
	return observability.OutcomeTransport
}
