package pushgate

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/platform/resilience"
)

var errPushTransient = crerr.New("push gateway transient failure")

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client delivers fight alerts to the push gateway. Delivery is best-effort:
// the caller logs failures and relies on the notified flag staying unset for
// a later retry.
type Client struct {
	client         *http.Client
	baseURL        string
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		client:         &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type fightAlertPayload struct {
	Kind    string `json:"kind"`
	FightID string `json:"fight_id"`
	SideA   string `json:"side_a"`
	SideB   string `json:"side_b"`
}

// NotifyFightStarting publishes a "get ready" alert for the next fight up.
func (c *Client) NotifyFightStarting(ctx context.Context, fightID, sideAName, sideBName string) error {
	if c.baseURL == "" {
		return crerr.New("push gateway base url is not configured")
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "push gateway circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("push gateway is temporarily unavailable: %w", err)
		}
	}

	payload := fightAlertPayload{
		Kind:    "fight_starting",
		FightID: fightID,
		SideA:   sideAName,
		SideB:   sideBName,
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrap(err, "encode fight alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/alerts", bytes.NewReader(buf.B))
	if err != nil {
		return crerr.Wrap(err, "create push gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: deliver fight alert fight=%s: %v", errPushTransient, fightID, err)
		c.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		callErr := fmt.Errorf("%w: deliver fight alert fight=%s status=%d body=%s",
			errPushTransient, fightID, resp.StatusCode, strings.TrimSpace(string(raw)))
		if !isRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("deliver fight alert fight=%s status=%d body=%s",
				fightID, resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		c.recordCircuitResult(callErr)
		return callErr
	}

	c.recordCircuitResult(nil)
	c.logger.InfoContext(ctx, "fight alert delivered", "fight_id", fightID)
	return nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && stderrors.Is(err, errPushTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
