package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quakeview/pkg/models"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeOK         = "ok"
	OutcomeHTTPError  = "http_error"
	OutcomeTransport  = "transport_error"
	OutcomeDecode     = "decode_error"
	OutcomeSuperseded = "superseded"
)

// Collector bundles the Prometheus metrics for refresh cycles and interactions.
type Collector struct {
	gatherer prometheus.Gatherer

	Fetches        *prometheus.CounterVec
	FetchDurations prometheus.Histogram
	Events         prometheus.Gauge
	Markers        prometheus.Gauge
	BucketCounts   *prometheus.GaugeVec
	Highlights     *prometheus.CounterVec
	LastSuccess    prometheus.Gauge
}

// NewCollector registers metrics against reg, defaulting to the global registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quakeview_fetches_total",
		Help: "Feed fetches, labeled by outcome.",
	}, []string{"outcome"}), "quakeview_fetches_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quakeview_fetch_duration_seconds",
		Help:    "Feed fetch latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}), "quakeview_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}
	events, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quakeview_events",
		Help: "Events in the last applied feed.",
	}), "quakeview_events")
	if err != nil {
		return nil, err
	}
	markers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quakeview_markers",
		Help: "Markers currently on the map layer.",
	}), "quakeview_markers")
	if err != nil {
		return nil, err
	}
	buckets, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quakeview_bucket_events",
		Help: "Events per integer magnitude bucket.",
	}, []string{"lower"}), "quakeview_bucket_events")
	if err != nil {
		return nil, err
	}
	highlights, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quakeview_chart_interactions_total",
		Help: "Chart interactions, labeled by kind.",
	}, []string{"kind"}), "quakeview_chart_interactions_total")
	if err != nil {
		return nil, err
	}
	lastSuccess, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quakeview_last_success_timestamp_seconds",
		Help: "Unix time of the last applied refresh.",
	}), "quakeview_last_success_timestamp_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Fetches:        fetches,
		FetchDurations: durations,
		Events:         events,
		Markers:        markers,
		BucketCounts:   buckets,
		Highlights:     highlights,
		LastSuccess:    lastSuccess,
	}, nil
}

// ObserveFetch records one fetch attempt.
func (c *Collector) ObserveFetch(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Fetches.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSuperseded {
		c.FetchDurations.Observe(elapsed.Seconds())
	}
}

// ObserveSnapshot updates gauges from an applied snapshot.
func (c *Collector) ObserveSnapshot(snap *models.Snapshot) {
	if c == nil || snap == nil {
		return
	}
	c.Events.Set(float64(snap.Total))
	c.Markers.Set(float64(len(snap.Markers)))
	c.BucketCounts.Reset()
	for _, b := range snap.Bars {
		c.BucketCounts.WithLabelValues(strconv.Itoa(b.Lower)).Set(float64(b.Count))
	}
	c.LastSuccess.Set(float64(snap.RenderedAt.Unix()))
}

// ObserveInteraction counts hover/click events from the chart.
func (c *Collector) ObserveInteraction(kind string) {
	if c == nil {
		return
	}
	c.Highlights.WithLabelValues(kind).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
