// internal/adapters/payments/client.go
package payments

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"grand_hotel/internal/adapters/observability"
	"grand_hotel/internal/domain"
)

// Client talks to the hosted payment gateway. Charges are idempotent on the
// booking reference, so retries after transient failures are safe.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var (
	// ErrDeclined aliases the domain sentinel so callers branch on one error.
	ErrDeclined     = domain.ErrPaymentDeclined
	ErrNotFound     = errors.New("payments: not found")
	ErrUnauthorized = errors.New("payments: unauthorized")
)

type chargeResponse struct {
	Status        string `json:"status"` // settled | deferred | declined
	TransactionID string `json:"transaction_id"`
}

// Charge submits a charge for the booking amount. A "settled" response means
// the booking can be confirmed immediately; "deferred" leaves it pending.
func (c *Client) Charge(ctx context.Context, req domain.ChargeRequest) (domain.ChargeResult, error) {
	body := map[string]any{
		"reference":       req.Reference,
		"user_id":         req.UserID,
		"amount":          req.Amount,
		"currency":        req.Currency,
		"idempotency_key": req.Reference,
	}
	var resp chargeResponse
	if err := c.post(ctx, c.base+"/charges", body, &resp); err != nil {
		return domain.ChargeResult{}, err
	}
	switch resp.Status {
	case "settled":
		return domain.ChargeResult{Settled: true, TransactionID: resp.TransactionID}, nil
	case "deferred":
		return domain.ChargeResult{Settled: false, TransactionID: resp.TransactionID}, nil
	case "declined":
		return domain.ChargeResult{}, ErrDeclined
	default:
		return domain.ChargeResult{}, fmt.Errorf("payments: unknown charge status %q", resp.Status)
	}
}

// Refund reverses a settled charge after a cancellation.
func (c *Client) Refund(ctx context.Context, reference string, amount float64) error {
	body := map[string]any{
		"reference":       reference,
		"amount":          amount,
		"idempotency_key": reference + ":refund",
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.post(ctx, c.base+"/refunds", body, &resp); err != nil {
		return err
	}
	if resp.Status != "refunded" && resp.Status != "accepted" {
		return fmt.Errorf("payments: unknown refund status %q", resp.Status)
	}
	return nil
}

// post performs a POST with client-side rate limiting, retries, and JSON
// decode into out. Retries on 429 and transient 5xx, honoring Retry-After.
// The gateway's idempotency keys make replays safe.
func (c *Client) post(ctx context.Context, url string, payload any, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	start := time.Now()
	status := 0
	defer func() { observability.ObserveExternal("payments", endpointLabel(url), status, time.Since(start)) }()

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
		if err != nil {
			return err
		}
		req.Header.Set("X-API-Key", c.key)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "grand-hotel/1.0")

		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		status = resp.StatusCode

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
			resp.Body.Close()
			return ErrDeclined

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

func endpointLabel(url string) string {
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
