// Package transport is the single authenticated channel to the medication
// API. It attaches the bearer token, refreshes it once on a 401 and resubmits
// the failed call, and ends the session when the refresh is not possible.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/medisync/internal/client/metrics"
	"github.com/dmitrijs2005/medisync/internal/client/session"
	"github.com/dmitrijs2005/medisync/internal/common"
	"github.com/dmitrijs2005/medisync/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Request describes one API call. Path is relative to the base URL and keeps
// its trailing slash. Body, when non-nil, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type Transport struct {
	base         *url.URL
	refreshPath  string
	httpClient   *http.Client
	creds        session.CredentialStore
	singleFlight bool
	flight       singleflight.Group

	onSessionEnded func(ctx context.Context)

	limiter    *rate.Limiter
	logger     logging.Logger
	metrics    metrics.Recorder
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

func New(baseURL string, creds session.CredentialStore, opts ...Option) (*Transport, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	t := &Transport{
		base:         base,
		refreshPath:  DefaultRefreshPath,
		httpClient:   http.DefaultClient,
		creds:        creds,
		singleFlight: true,
		logger:       logging.Discard(),
		metrics:      metrics.Nop{},
		tracer:       otel.GetTracerProvider().Tracer(tracerName),
		propagator:   propagation.TraceContext{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Call runs Do and decodes a non-empty response body into out.
func (t *Transport) Call(ctx context.Context, req *Request, out any) error {
	resp, err := t.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method(), req.Path, err)
	}
	return nil
}

// Do sends req. A 2xx response is returned as is; any other status is a
// *StatusError and network failures come back unmodified from net/http.
//
// A 401 is retried at most once, after the access token has been refreshed.
// When the refresh is impossible the credential pair is cleared, the session
// ended handler fires and the original 401 is returned.
func (t *Transport) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Header.Get(common.AuthorizationHeader) != "" {
		return nil, ErrAuthorizationPreset
	}

	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method(), req.Path, err)
		}
		body = b
	}

	requestID := uuid.NewString()
	ctx, span := t.tracer.Start(ctx, "medisync "+req.method()+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.method()),
			attribute.String("url.path", req.Path),
			attribute.String("medisync.request_id", requestID),
		))
	defer span.End()

	pair, err := t.creds.Load(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "load credentials")
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	resp, err := t.send(ctx, req, body, pair.Access, requestID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return t.finish(span, req, resp)
	}

	// First 401 for this call: the only retry it gets.
	original := newStatusError(req, resp)
	access, err := t.recover(ctx, pair.Access)
	if err != nil {
		t.logger.Warn(ctx, "session not recovered", "request_id", requestID, "error", err)
		span.RecordError(original)
		span.SetStatus(codes.Error, "unauthorized")
		return nil, original
	}

	t.metrics.RecordRetry()
	span.AddEvent("retry after refresh")
	resp, err = t.send(ctx, req, body, access, requestID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return nil, err
	}
	return t.finish(span, req, resp)
}

func (t *Transport) finish(span trace.Span, req *Request, resp *Response) (*Response, error) {
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	se := newStatusError(req, resp)
	span.RecordError(se)
	span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	return nil, se
}

func (t *Transport) send(ctx context.Context, req *Request, body []byte, access, requestID string) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u := t.resolve(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	hreq, err := http.NewRequestWithContext(ctx, req.method(), u.String(), rdr)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	hreq.Header.Set("Accept", "application/json")
	if body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set(common.RequestIDHeader, requestID)
	if access != "" {
		hreq.Header.Set(common.AuthorizationHeader, common.BearerPrefix+access)
	}
	t.propagator.Inject(ctx, propagation.HeaderCarrier(hreq.Header))

	start := time.Now()
	hresp, err := t.httpClient.Do(hreq)
	if err != nil {
		t.metrics.RecordNetworkError(req.method())
		t.logger.Debug(ctx, "request failed", "request_id", requestID, "method", req.method(), "path", req.Path, "error", err)
		return nil, err
	}
	defer hresp.Body.Close()

	data, err := io.ReadAll(hresp.Body)
	if err != nil {
		t.metrics.RecordNetworkError(req.method())
		return nil, fmt.Errorf("read %s %s: %w", req.method(), req.Path, err)
	}

	elapsed := time.Since(start)
	t.metrics.RecordResponse(req.method(), hresp.StatusCode, elapsed)
	t.logger.Debug(ctx, "response",
		"request_id", requestID,
		"method", req.method(),
		"path", req.Path,
		"status", hresp.StatusCode,
		"duration", elapsed,
	)

	return &Response{StatusCode: hresp.StatusCode, Header: hresp.Header, Body: data}, nil
}

func (t *Transport) resolve(path string) *url.URL {
	return t.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
}

func (r *Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

func newStatusError(req *Request, resp *Response) *StatusError {
	return &StatusError{
		Method:     req.method(),
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
}
