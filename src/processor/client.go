package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexsandroveiga/paygate/src/domain"
	"github.com/alexsandroveiga/paygate/src/health"
	"github.com/gofiber/fiber/v3/log"
	"github.com/shopspring/decimal"
)

const paymentsPath = "/payments"

// Client submits payments to the external processors. It tracks consecutive
// failures per correlation id on the default route and, once the configured
// threshold is reached, escalates that request to the fallback route for a
// single attempt. After every failed attempt the calling worker sleeps a
// linear backoff of failures*100ms, throttling only the lane handling that
// request.
type Client struct {
	httpClient            *http.Client
	resolver              health.Resolver
	defaultURL            string
	fallbackURL           string
	retriesBeforeFallback int64

	defaultErrors  sync.Map // correlationId -> *atomic.Int64
	fallbackErrors sync.Map

	sleep func(time.Duration)
}

func New(resolver health.Resolver, defaultURL, fallbackURL string, retriesBeforeFallback int64) *Client {
	if retriesBeforeFallback <= 0 {
		retriesBeforeFallback = 16
	}
	return &Client{
		httpClient:            &http.Client{Timeout: 5 * time.Second},
		resolver:              resolver,
		defaultURL:            defaultURL,
		fallbackURL:           fallbackURL,
		retriesBeforeFallback: retriesBeforeFallback,
		sleep:                 time.Sleep,
	}
}

// Process sends the request to the currently-preferred route. On success
// the correlation id's failure count is cleared and the processed payment
// returned. On failure the count is incremented and an error returned so
// the caller re-queues; when the failing route is the default and the count
// has reached the threshold, one fallback attempt is made instead.
func (c *Client) Process(ctx context.Context, req domain.PaymentRequest) (domain.ProcessedPayment, error) {
	route := c.resolver.Resolve()
	payment := domain.NewProcessedPayment(route.Name, req)
	defer c.backoff(req.CorrelationID)

	if err := c.post(ctx, c.urlFor(route.Name), payment); err != nil {
		if route.Name != domain.DefaultProcessor {
			return domain.ProcessedPayment{}, err
		}
		failures := c.recordFailure(req.CorrelationID)
		if failures >= c.retriesBeforeFallback {
			escalated, fbErr := c.processFallback(ctx, req)
			if fbErr != nil {
				return domain.ProcessedPayment{}, fbErr
			}
			c.clearFailures(req.CorrelationID)
			return escalated, nil
		}
		return domain.ProcessedPayment{}, err
	}

	c.clearFailures(req.CorrelationID)
	return payment, nil
}

func (c *Client) processFallback(ctx context.Context, req domain.PaymentRequest) (domain.ProcessedPayment, error) {
	payment := domain.NewProcessedPayment(domain.FallbackProcessor, req)
	log.Infof("escalating payment %s to the fallback processor", req.CorrelationID)
	if err := c.post(ctx, c.fallbackURL, payment); err != nil {
		attempts := c.bump(&c.fallbackErrors, req.CorrelationID)
		return domain.ProcessedPayment{}, fmt.Errorf(
			"fallback processing failed for %s (attempt %d): %w", req.CorrelationID, attempts, err)
	}
	return payment, nil
}

func (c *Client) post(ctx context.Context, url string, payment domain.ProcessedPayment) error {
	payload := struct {
		CorrelationID string          `json:"correlationId"`
		Amount        decimal.Decimal `json:"amount"`
		RequestedAt   time.Time       `json:"requestedAt"`
	}{payment.CorrelationID, payment.Amount, payment.RequestedAt}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url+paymentsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("processor at %s rejected payment %s with status %d",
			url, payment.CorrelationID, resp.StatusCode)
	}
	return nil
}

func (c *Client) urlFor(route string) string {
	if route == domain.FallbackProcessor {
		return c.fallbackURL
	}
	return c.defaultURL
}

func (c *Client) recordFailure(correlationID string) int64 {
	return c.bump(&c.defaultErrors, correlationID)
}

func (c *Client) bump(counters *sync.Map, correlationID string) int64 {
	counter, _ := counters.LoadOrStore(correlationID, &atomic.Int64{})
	return counter.(*atomic.Int64).Add(1)
}

func (c *Client) clearFailures(correlationID string) {
	c.defaultErrors.Delete(correlationID)
	c.fallbackErrors.Delete(correlationID)
}

func (c *Client) failures(correlationID string) int64 {
	if counter, ok := c.defaultErrors.Load(correlationID); ok {
		return counter.(*atomic.Int64).Load()
	}
	return 0
}

// backoff sleeps failures*100ms on the worker goroutine handling this
// request. A cleared count means no sleep.
func (c *Client) backoff(correlationID string) {
	delay := time.Duration(c.failures(correlationID)) * 100 * time.Millisecond
	if delay > 0 {
		c.sleep(delay)
	}
}
