package sourcepage

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/platform/resilience"
	"github.com/cagewatch/live-tracker/internal/usecase"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "live-tracker/1.0 (+https://github.com/cagewatch/live-tracker)"
	maxBodyBytes     = 4 << 20
)

var errSourceTransient = crerr.New("source page transient failure")

type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches event pages over HTTP. It is the only component that talks
// to promotion sites, so politeness and failure isolation live here: one
// breaker guards all pages, and a failed fetch surfaces as a skipped tick
// rather than an error that could stop a tracker.
type Client struct {
	client         *fasthttp.Client
	timeout        time.Duration
	maxRetries     int
	userAgent      string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		client: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxBodyBytes,
		},
		timeout:        timeout,
		maxRetries:     cfg.MaxRetries,
		userAgent:      userAgent,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchPage retrieves the markup behind url. Transient transport and 5xx
// failures are retried with linear backoff; non-retryable statuses fail
// immediately. Concurrent fetches of the same url share one request, so a
// backfill run racing a live tracker does not hit the source twice.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", crerr.New("page url is required")
	}

	value, err, shared := c.flight.Do(url, func() (any, error) {
		return c.fetchGuarded(ctx, url)
	})
	if shared {
		c.logger.DebugContext(ctx, "source page fetch deduplicated", "url", url)
	}
	markup, _ := value.(string)
	return markup, err
}

func (c *Client) fetchGuarded(ctx context.Context, url string) (string, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "source page circuit breaker rejected request", "state", c.breaker.State())
			return "", fmt.Errorf("%w: source site is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	markup, err := c.executeRequest(ctx, url)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errSourceTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return markup, err
}

func (c *Client) executeRequest(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.SetUserAgent(c.userAgent)
		req.Header.Set(fasthttp.HeaderAccept, "text/html")

		err := c.client.DoTimeout(req, resp, c.timeout)
		if err != nil {
			lastErr = fmt.Errorf("%w: fetch %s: %v", errSourceTransient, url, err)
		} else {
			status := resp.StatusCode()
			body := string(resp.Body())
			switch {
			case status >= 200 && status < 300:
				fasthttp.ReleaseRequest(req)
				fasthttp.ReleaseResponse(resp)
				return body, nil
			case isRetryableStatus(status):
				lastErr = fmt.Errorf("%w: fetch %s status=%d", errSourceTransient, url, status)
			default:
				fasthttp.ReleaseRequest(req)
				fasthttp.ReleaseResponse(resp)
				return "", fmt.Errorf("fetch %s status=%d", url, status)
			}
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fetch %s failed", url)
	}
	c.logger.WarnContext(ctx, "source page request failed", "url", url, "error", lastErr)
	return "", lastErr
}

func isRetryableStatus(code int) bool {
	switch code {
	case fasthttp.StatusTooManyRequests,
		fasthttp.StatusInternalServerError,
		fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable,
		fasthttp.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
