package transport

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/medisync/internal/client/metrics"
	"github.com/dmitrijs2005/medisync/internal/logging"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	DefaultRefreshPath = "token/refresh/"
	tracerName         = "github.com/dmitrijs2005/medisync/internal/client/transport"
)

type Option func(*Transport)

func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.httpClient = c }
}

// WithRefreshPath overrides the refresh endpoint, relative to the base URL.
func WithRefreshPath(p string) Option {
	return func(t *Transport) { t.refreshPath = p }
}

// WithSingleFlightRefresh toggles the refresh guard. When on (the default)
// concurrent 401s share one refresh call. When off, every 401 triggers its
// own refresh, as the web client did.
func WithSingleFlightRefresh(on bool) Option {
	return func(t *Transport) { t.singleFlight = on }
}

// WithSessionEndedHandler is called once per unrecoverable authorization
// failure, after the credential pair has been cleared.
func WithSessionEndedHandler(fn func(ctx context.Context)) Option {
	return func(t *Transport) { t.onSessionEnded = fn }
}

// WithRateLimit caps outgoing calls. A limit of 0 disables limiting.
func WithRateLimit(limit float64, burst int) Option {
	return func(t *Transport) {
		if limit <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

func WithLogger(l logging.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(t *Transport) { t.metrics = r }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *Transport) { t.tracer = tp.Tracer(tracerName) }
}
