// Package metrics collects and exposes Prometheus metrics for the feed.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector is the Prometheus implementation of feed.Recorder.
type Collector struct {
	fetchTotal     *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	staleResponses prometheus.Counter
	mutationTotal  *prometheus.CounterVec
	unreadCount    prometheus.Gauge
	pendingWrites  prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifeed_feed_fetch_total",
			Help: "Feed page fetches by outcome.",
		}, []string{"outcome"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notifeed_feed_fetch_latency_seconds",
			Help:    "Latency of feed page fetches in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		staleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifeed_stale_responses_total",
			Help: "Responses discarded because a newer request was issued.",
		}),
		mutationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifeed_mutation_total",
			Help: "Server writes by kind and outcome.",
		}, []string{"kind", "outcome"}),
		unreadCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifeed_unread_count",
			Help: "Last global unread count reported by the server.",
		}),
		pendingWrites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifeed_pending_writes",
			Help: "Failed writes waiting to be replayed.",
		}),
	}

	reg.MustRegister(
		c.fetchTotal,
		c.fetchLatency,
		c.staleResponses,
		c.mutationTotal,
		c.unreadCount,
		c.pendingWrites,
	)

	return c
}

// RecordFetch records one settled feed fetch.
func (c *Collector) RecordFetch(outcome string, latency time.Duration) {
	c.fetchTotal.WithLabelValues(outcome).Inc()
	c.fetchLatency.Observe(latency.Seconds())
}

// RecordStaleResponse records a discarded out-of-order response.
func (c *Collector) RecordStaleResponse() {
	c.staleResponses.Inc()
}

// RecordMutation records one server write.
func (c *Collector) RecordMutation(kind, outcome string) {
	c.mutationTotal.WithLabelValues(kind, outcome).Inc()
}

// SetUnreadCount sets the global unread gauge.
func (c *Collector) SetUnreadCount(n int) {
	c.unreadCount.Set(float64(n))
}

// SetPendingWrites sets the pending write gauge.
func (c *Collector) SetPendingWrites(n int) {
	c.pendingWrites.Set(float64(n))
}

// Handler returns the Prometheus scrape handler mounted on /metrics.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Serve exposes gatherer on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
