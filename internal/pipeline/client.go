package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/common"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 16 << 20

// Caller is the interface the workflow uses to reach a stage endpoint.
// Tests can substitute a fake.
type Caller interface {
	Call(ctx context.Context, stage Stage, payload any) (json.RawMessage, error)
}

// Options configures a Client.
type Options struct {
	Endpoints  map[Stage]string
	Timeouts   map[Stage]time.Duration // missing stages use DefaultTimeout
	Headers    map[string]string
	HTTPClient *http.Client
	Breaker    BreakerSettings
	Metrics    *Metrics
	Logger     *zap.Logger
}

// Client posts JSON payloads to the stage endpoints.
type Client struct {
	endpoints map[Stage]string
	timeouts  map[Stage]time.Duration
	headers   map[string]string
	http      *http.Client
	breakers  map[Stage]*gobreaker.CircuitBreaker
	metrics   *Metrics
	logger    *zap.Logger
}

var _ Caller = (*Client)(nil)

// NewClient creates a Client. The HTTP client has no timeout of its own;
// every call is bounded by its stage deadline instead.
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		endpoints: make(map[Stage]string, len(opts.Endpoints)),
		timeouts:  make(map[Stage]time.Duration, len(Stages)),
		headers:   opts.Headers,
		http:      httpClient,
		breakers:  make(map[Stage]*gobreaker.CircuitBreaker, len(Stages)),
		metrics:   opts.Metrics,
		logger:    logger,
	}
	for k, v := range opts.Endpoints {
		c.endpoints[k] = v
	}
	for _, st := range Stages {
		c.timeouts[st] = DefaultTimeout(st)
		if d, ok := opts.Timeouts[st]; ok && d > 0 {
			c.timeouts[st] = d
		}
		if b := newBreaker(st, opts.Breaker, logger); b != nil {
			c.breakers[st] = b
		}
	}
	return c
}

// Timeout returns the request bound for stage.
func (c *Client) Timeout(stage Stage) time.Duration {
	return c.timeouts[stage]
}

// Call posts payload to the stage endpoint and returns the normalized record.
// The call is aborted at the stage deadline (KindTimeout) or when ctx is
// cancelled (KindCancelled). Non-2xx responses are KindServer and
// undecodable bodies KindMalformed.
func (c *Client) Call(ctx context.Context, stage Stage, payload any) (json.RawMessage, error) {
	url, ok := c.endpoints[stage]
	if !ok || url == "" {
		return nil, common.Validation("no endpoint configured for stage %s", stage)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, common.Validation("encoding %s payload: %v", stage, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeouts[stage])
	defer cancel()

	c.metrics.start()
	start := time.Now()

	var rec json.RawMessage
	if b := c.breakers[stage]; b != nil {
		var out any
		out, err = b.Execute(func() (any, error) {
			r, err := c.post(ctx, callCtx, stage, url, body)
			return r, err
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = common.ServerError(string(stage), http.StatusServiceUnavailable, err)
		}
		if r, ok := out.(json.RawMessage); ok {
			rec = r
		}
	} else {
		rec, err = c.post(ctx, callCtx, stage, url, body)
	}

	elapsed := time.Since(start)
	outcome := "ok"
	if err != nil {
		outcome = string(common.KindOf(err))
	}
	c.metrics.done(stage, outcome, elapsed)

	if err != nil {
		c.logger.Warn("stage call failed",
			zap.String("stage", string(stage)),
			zap.String("kind", outcome),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}
	c.logger.Debug("stage call complete",
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", len(rec)))
	return rec, nil
}

func (c *Client) post(parent, ctx context.Context, stage Stage, url string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, common.Validation("building %s request: %v", stage, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(parent, ctx, stage, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(parent, ctx, stage, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, common.ServerError(string(stage), resp.StatusCode,
			fmt.Errorf("unexpected status %s: %s", resp.Status, snippet(data)))
	}

	return Normalize(stage, data)
}

// classify maps a transport error to a kind: the caller's own cancellation
// wins over the stage deadline, anything else is a server error with no
// status.
func classify(parent, ctx context.Context, stage Stage, err error) error {
	switch {
	case parent.Err() != nil:
		return common.Cancelled(string(stage), parent.Err())
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return common.Timeout(string(stage), ctx.Err())
	}
	return common.ServerError(string(stage), 0, err)
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:197] + "..."
	}
	return s
}
