package hit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hitqueue/internal/config"
	"hitqueue/internal/logging"
	"hitqueue/internal/queue"
)

const userAgent = "hitqueue/0.1"

// Header names attached to every delivery so receivers can deduplicate.
const (
	HeaderHitID        = "X-Hit-Id"
	HeaderHitTimestamp = "X-Hit-Timestamp"
)

// ErrEndpointRequired is returned when no delivery endpoint is configured.
var ErrEndpointRequired = errors.New("delivery endpoint is required")

// Outcome classifies one HTTP delivery attempt.
type Outcome int

const (
	// Delivered means the endpoint accepted the hit.
	Delivered Outcome = iota
	// Retry means the attempt failed in a way worth repeating.
	Retry
	// Dropped means the endpoint rejected the hit permanently.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Retry:
		return "retry"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// HTTPOptions configures an HTTPProcessor.
type HTTPOptions struct {
	Endpoint    string
	ContentType string
	Timeout     time.Duration
	Backoff     *Backoff
	Client      *http.Client
	Logger      *slog.Logger
}

// HTTPProcessor POSTs each payload to a fixed endpoint.
//
// 2xx responses succeed. 408, 429 and 5xx gateway/availability statuses, and
// transport errors, fail so the head is retried. Any other status drops the
// hit by reporting success, after logging it. A Retry-After header on a
// retryable response sets the next interval for that record.
type HTTPProcessor struct {
	endpoint    string
	contentType string
	timeout     time.Duration
	client      *http.Client
	backoff     *Backoff
	logger      *slog.Logger

	mu         sync.Mutex
	retryAfter map[string]time.Duration
}

// NewHTTPProcessor validates opts and builds a processor.
func NewHTTPProcessor(opts HTTPOptions) (*HTTPProcessor, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	contentType := strings.TrimSpace(opts.ContentType)
	if contentType == "" {
		contentType = "application/json"
	}
	backoff := opts.Backoff
	if backoff == nil {
		backoff = NewBackoff(DefaultRetryInterval, DefaultRetryInterval)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HTTPProcessor{
		endpoint:    endpoint,
		contentType: contentType,
		timeout:     timeout,
		client:      client,
		backoff:     backoff,
		logger:      logging.NewComponentLogger(logger, "delivery"),
		retryAfter:  make(map[string]time.Duration),
	}, nil
}

// NewHTTPProcessorFromConfig builds a processor from the [delivery] section.
func NewHTTPProcessorFromConfig(cfg *config.Config, logger *slog.Logger) (*HTTPProcessor, error) {
	if cfg == nil {
		return nil, errors.New("http processor requires config")
	}
	base, max := cfg.RetryBounds()
	return NewHTTPProcessor(HTTPOptions{
		Endpoint:    cfg.Delivery.Endpoint,
		ContentType: cfg.Delivery.ContentType,
		Timeout:     cfg.DeliveryTimeout(),
		Backoff:     NewBackoff(base, max),
		Logger:      logger,
	})
}

// Endpoint returns the delivery URL.
func (p *HTTPProcessor) Endpoint() string {
	return p.endpoint
}

// ProcessHit delivers rec on its own goroutine and reports through done.
func (p *HTTPProcessor) ProcessHit(ctx context.Context, rec queue.Record, done Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		outcome := p.Deliver(ctx, rec)
		done(outcome != Retry)
	}()
}

// RetryInterval returns a pending Retry-After override for rec, or the
// backoff interval.
func (p *HTTPProcessor) RetryInterval(rec queue.Record) time.Duration {
	p.mu.Lock()
	override, ok := p.retryAfter[rec.ID]
	delete(p.retryAfter, rec.ID)
	p.mu.Unlock()
	if ok {
		return override
	}
	return p.backoff.Interval(rec.ID)
}

// keepOnly drops retry state for every record but id. The scheduler only ever
// sends the head, so state for any other id belongs to a hit that is gone.
func (p *HTTPProcessor) keepOnly(id string) {
	p.backoff.Keep(id)
	p.mu.Lock()
	for other := range p.retryAfter {
		if other != id {
			delete(p.retryAfter, other)
		}
	}
	p.mu.Unlock()
}

// Forget drops all per-record retry state.
func (p *HTTPProcessor) Forget() {
	p.backoff.ResetAll()
	p.mu.Lock()
	clear(p.retryAfter)
	p.mu.Unlock()
}

// Tracked reports how many records hold retry state.
func (p *HTTPProcessor) Tracked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return max(p.backoff.Tracked(), len(p.retryAfter))
}

// Deliver performs one synchronous delivery attempt.
func (p *HTTPProcessor) Deliver(ctx context.Context, rec queue.Record) Outcome {
	logger := logging.WithContext(logging.WithHitID(ctx, rec.ID), p.logger)

	p.keepOnly(rec.ID)

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, retryAfter, err := p.post(reqCtx, rec)
	outcome := classify(status, err)
	switch outcome {
	case Delivered:
		p.backoff.Reset(rec.ID)
		logger.Debug("hit delivered", logging.Int("status", status))
	case Retry:
		p.backoff.Failure(rec.ID)
		if retryAfter > 0 {
			p.mu.Lock()
			p.retryAfter[rec.ID] = retryAfter
			p.mu.Unlock()
		}
		attrs := []logging.Attr{
			logging.Int("status", status),
			logging.Int("attempt", p.backoff.Attempts(rec.ID)),
			logging.String(logging.FieldEventType, "hit_delivery_retry"),
		}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		if retryAfter > 0 {
			attrs = append(attrs, logging.Duration("retry_after", retryAfter))
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "hit delivery failed; will retry", attrs...)
	case Dropped:
		p.backoff.Reset(rec.ID)
		logging.WarnWithContext(logger, "endpoint rejected hit; dropping", "hit_dropped",
			logging.Int("status", status),
			logging.String(logging.FieldImpact, "this hit will not be delivered"),
			logging.String(logging.FieldErrorHint, "check the payload format expected by "+p.endpoint),
		)
	}
	return outcome
}

func (p *HTTPProcessor) post(ctx context.Context, rec queue.Record) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(rec.Payload))
	if err != nil {
		return 0, 0, fmt.Errorf("build delivery request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", p.contentType)
	req.Header.Set(HeaderHitID, rec.ID)
	if !rec.Timestamp.IsZero() {
		req.Header.Set(HeaderHitTimestamp, rec.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("send hit: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	return resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()), nil
}

func classify(status int, err error) Outcome {
	if err != nil {
		return Retry
	}
	if status >= 200 && status < 300 {
		return Delivered
	}
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return Retry
	default:
		return Dropped
	}
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
