package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/prom"
	"github.com/valyala/fasthttp"
)

var (
	ErrNoAvailableRelays = errors.New("no available mail relays")
	ErrRejected          = errors.New("mail relay rejected the message")
)

const (
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

const sendPath = "/api/v1/mail/send"

type MailRequest struct {
	EventID string `json:"event_id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type MailResponse struct {
	MessageID  string    `json:"message_id"`
	Status     string    `json:"status"`
	AcceptedAt time.Time `json:"accepted_at"`
	Relay      string    `json:"-"`
}

type RelayMetrics struct {
	TotalRequests    atomic.Int64
	SuccessfulReqs   atomic.Int64
	FailedReqs       atomic.Int64
	TotalLatencyMs   atomic.Int64
	ConsecutiveFails atomic.Int32
}

func (m *RelayMetrics) RecordSuccess(latencyMs int64) {
	m.TotalRequests.Add(1)
	m.SuccessfulReqs.Add(1)
	m.TotalLatencyMs.Add(latencyMs)
	m.ConsecutiveFails.Store(0)
}

func (m *RelayMetrics) RecordFailure() {
	m.TotalRequests.Add(1)
	m.FailedReqs.Add(1)
	m.ConsecutiveFails.Add(1)
}

func (m *RelayMetrics) SuccessRate() float64 {
	total := m.TotalRequests.Load()
	if total == 0 {
		return 1.0
	}
	return float64(m.SuccessfulReqs.Load()) / float64(total)
}

func (m *RelayMetrics) AvgLatencyMs() int64 {
	ok := m.SuccessfulReqs.Load()
	if ok == 0 {
		return 0
	}
	return m.TotalLatencyMs.Load() / ok
}

// Relay is one mail relay endpoint guarded by a circuit breaker.
type Relay struct {
	name             string
	url              string
	client           *fasthttp.Client
	metrics          *RelayMetrics
	circuitOpenUntil atomic.Int64
}

func NewRelay(name, url string, client *fasthttp.Client) *Relay {
	return &Relay{
		name:    name,
		url:     url,
		client:  client,
		metrics: &RelayMetrics{},
	}
}

// IsAvailable reports whether the circuit is closed or its open window
// has passed.
func (r *Relay) IsAvailable(now time.Time) bool {
	return now.UnixNano() >= r.circuitOpenUntil.Load()
}

type RelayConfig struct {
	Name string
	URL  string
}

type Config struct {
	// Relays are tried in order; the first is the primary.
	Relays                  []RelayConfig
	Timeout                 time.Duration
	MaxRetries              int
	RetryDelay              time.Duration
	MaxConns                int
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	// Dial overrides the transport, mostly for tests.
	Dial fasthttp.DialFunc
}

type Client struct {
	config *Config
	relays []*Relay
	now    func() time.Time
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if len(config.Relays) == 0 {
		return nil, errors.New("at least one relay is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.CircuitBreakerThreshold <= 0 {
		config.CircuitBreakerThreshold = 5
	}
	if config.CircuitBreakerTimeout <= 0 {
		config.CircuitBreakerTimeout = 30 * time.Second
	}

	client := &Client{
		config: config,
		relays: make([]*Relay, 0, len(config.Relays)),
		now:    time.Now,
	}
	for _, rc := range config.Relays {
		httpClient := &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
			Dial:                config.Dial,
		}
		client.relays = append(client.relays, NewRelay(rc.Name, rc.URL, httpClient))
		logger.Info("mail relay initialized", "name", rc.Name, "url", rc.URL)
	}
	return client, nil
}

// Send delivers a mail through the first relay that accepts it. Each
// attempt walks the relays in order; attempts are separated by RetryDelay.
func (c *Client) Send(ctx context.Context, req *MailRequest) (*MailResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error = ErrNoAvailableRelays
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		for _, relay := range c.relays {
			if !relay.IsAvailable(c.now()) {
				continue
			}

			resp, err := c.sendVia(ctx, relay, body)
			if err != nil {
				lastErr = err
				logger.Warn("mail relay failed", "relay", relay.name, "event_id", req.EventID, "attempt", attempt+1, "error", err)
				continue
			}
			return resp, nil
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) sendVia(ctx context.Context, relay *Relay, body []byte) (*MailResponse, error) {
	start := time.Now()
	raw, err := c.doRequest(ctx, relay, fasthttp.MethodPost, sendPath, body)
	elapsed := time.Since(start)
	prom.RecordDeliveryDuration(relay.name, elapsed.Seconds())

	if err != nil {
		relay.metrics.RecordFailure()
		c.checkCircuitBreaker(relay)
		return nil, err
	}

	var resp MailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		relay.metrics.RecordFailure()
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	relay.metrics.RecordSuccess(elapsed.Milliseconds())

	if resp.Status != StatusAccepted {
		return nil, fmt.Errorf("%w: status %s", ErrRejected, resp.Status)
	}
	resp.Relay = relay.name
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, relay *Relay, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(relay.url + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}
	if err := relay.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())
	return result, nil
}

func (c *Client) checkCircuitBreaker(relay *Relay) {
	fails := relay.metrics.ConsecutiveFails.Load()
	if fails < int32(c.config.CircuitBreakerThreshold) {
		return
	}
	relay.circuitOpenUntil.Store(c.now().Add(c.config.CircuitBreakerTimeout).UnixNano())
	relay.metrics.ConsecutiveFails.Store(0)
	logger.Warn("mail relay circuit opened", "relay", relay.name, "consecutive_fails", fails, "timeout", c.config.CircuitBreakerTimeout)
}

// Ping checks the health endpoint of every relay.
func (c *Client) Ping(ctx context.Context) map[string]bool {
	out := make(map[string]bool, len(c.relays))
	for _, relay := range c.relays {
		raw, err := c.doRequest(ctx, relay, fasthttp.MethodGet, "/health", nil)
		if err != nil {
			out[relay.name] = false
			continue
		}
		var health struct {
			Status string `json:"status"`
		}
		out[relay.name] = json.Unmarshal(raw, &health) == nil && health.Status == "healthy"
	}
	return out
}

type RelayStats struct {
	Name           string
	URL            string
	Available      bool
	TotalRequests  int64
	SuccessfulReqs int64
	FailedReqs     int64
	SuccessRate    float64
	AvgLatencyMs   int64
}

func (c *Client) Stats() []RelayStats {
	now := c.now()
	stats := make([]RelayStats, 0, len(c.relays))
	for _, r := range c.relays {
		stats = append(stats, RelayStats{
			Name:           r.name,
			URL:            r.url,
			Available:      r.IsAvailable(now),
			TotalRequests:  r.metrics.TotalRequests.Load(),
			SuccessfulReqs: r.metrics.SuccessfulReqs.Load(),
			FailedReqs:     r.metrics.FailedReqs.Load(),
			SuccessRate:    r.metrics.SuccessRate(),
			AvgLatencyMs:   r.metrics.AvgLatencyMs(),
		})
	}
	return stats
}
