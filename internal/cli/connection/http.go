package connection

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
	"github.com/yndnr/fitplan-go/internal/telemetry/metric"
)

// DefaultTimeout bounds a single gateway request.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// HTTPClient performs requests against the fitplan service.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	metrics   *metric.Registry
	log       logger.Logger
	userAgent string

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMetrics records request counts and latency in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(c *HTTPClient) { c.metrics = reg }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

// WithTLSConfig sets the TLS settings used for https servers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *HTTPClient) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = cfg
		c.client = &http.Client{Transport: transport}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.client = hc }
}

// NewHTTPClient creates a client for server. A missing scheme means http.
func NewHTTPClient(server string, opts ...Option) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &HTTPClient{
		baseURL:   baseURL,
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		log:       logger.Nop(),
		userAgent: "fitplan-cli",
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Request describes one gateway call.
type Request struct {
	// Op names the operation in logs and metrics.
	Op     string
	Method string
	Path   string
	// Token is sent as a bearer credential when set.
	Token domain.Token
	// At most one of JSON and Form is set.
	JSON any
	Form url.Values
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

// Response is a fully read reply.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the body into target.
func (r *Response) Decode(target any) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return domain.ErrMalformedResponse.Wrap(err)
	}
	return nil
}

// Detail extracts the error message the service puts in "detail". Request
// validation failures carry a list of objects instead of a string; their
// messages are joined.
func (r *Response) Detail() string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(r.Body, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if n := len(it.Loc); n > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[n-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// Do sends req and reads the whole response. Transport problems and bodies
// over maxBodySize are returned as errors; any HTTP status is a Response.
func (c *HTTPClient) Do(ctx context.Context, req Request) (*Response, error) {
	requestID := c.newRequestID()
	ctx = logger.WithRequestID(ctx, requestID)
	log := logger.L(logger.WithLogger(ctx, c.log)).With("op", req.Op)

	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrTransportFailure.WithDetails("rate limited").WithCause(err)
		}
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.Op, "error", time.Since(start))
		log.Debug("gateway request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(req.Op, "error", elapsed)
		return nil, transportError(err)
	}
	if len(body) > maxBodySize {
		c.metrics.ObserveRequest(req.Op, "error", elapsed)
		log.Warn("gateway response too large", "status", resp.StatusCode, "limit", maxBodySize)
		return nil, domain.ErrServiceFailure.WithDetails(fmt.Sprintf("response too large: over %d bytes", maxBodySize))
	}

	c.metrics.ObserveRequest(req.Op, statusClass(resp.StatusCode), elapsed)
	log.Debug("gateway request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"elapsed", elapsed)

	return &Response{StatusCode: resp.StatusCode, Body: body, RequestID: requestID}, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if !req.Token.IsZero() {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token.Reveal())
	}
	return httpReq, nil
}

func (c *HTTPClient) newRequestID() string {
	c.entropyMu.Lock()
	defer c.entropyMu.Unlock()
	id, err := ulid.New(ulid.Now(), c.entropy)
	if err != nil {
		return ulid.Make().String()
	}
	return id.String()
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTransportFailure.WithDetails("request timed out").WithCause(err)
	}
	return domain.ErrTransportFailure.Wrap(err)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
