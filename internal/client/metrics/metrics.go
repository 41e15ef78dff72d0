// Package metrics exposes Prometheus counters for the session transport.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshNoToken = "no_token"
	RefreshSkipped = "already_rotated"
)

// Recorder is what the transport reports to.
type Recorder interface {
	RecordResponse(method string, statusCode int, latency time.Duration)
	RecordNetworkError(method string)
	RecordRefresh(outcome string)
	RecordRetry()
	RecordSessionEnded()
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	responses     *prometheus.CounterVec
	networkErrors *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	refreshes     *prometheus.CounterVec
	retries       prometheus.Counter
	sessionEnded  prometheus.Counter
}

// NewCollector registers the transport metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medisync_http_responses_total",
			Help: "API responses by method and status code.",
		}, []string{"method", "status_code"}),
		networkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medisync_http_network_errors_total",
			Help: "API calls that failed before a response arrived.",
		}, []string{"method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medisync_http_latency_seconds",
			Help:    "API round-trip latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medisync_token_refresh_total",
			Help: "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medisync_http_retries_total",
			Help: "Calls resubmitted after an authorization failure.",
		}),
		sessionEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medisync_session_ended_total",
			Help: "Sessions ended by an unrecoverable authorization failure.",
		}),
	}

	reg.MustRegister(c.responses, c.networkErrors, c.latency, c.refreshes, c.retries, c.sessionEnded)
	return c
}

func (c *Collector) RecordResponse(method string, statusCode int, latency time.Duration) {
	c.responses.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.latency.WithLabelValues(method).Observe(latency.Seconds())
}

func (c *Collector) RecordNetworkError(method string) {
	c.networkErrors.WithLabelValues(method).Inc()
}

func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRetry() {
	c.retries.Inc()
}

func (c *Collector) RecordSessionEnded() {
	c.sessionEnded.Inc()
}

// Handler serves the registry for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordResponse(string, int, time.Duration) {}
func (Nop) RecordNetworkError(string) {}
func (Nop) RecordRefresh(string) {}
func (Nop) RecordRetry() {}
func (Nop) RecordSessionEnded() {}
