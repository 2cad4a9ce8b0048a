// Package metals fetches precious-metal spot quotes and turns them into a
// price per gram at a requested purity, with a fixed fallback when the
// quote source is unreachable.
package metals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gemgem/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the metal price quote API
// (metalpriceapi.com-style: a rate keyed by metal/currency pair).
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new quote API client
func NewClient(apiKey, baseURL string) *Client {
	// Free-tier quote APIs allow on the order of 100 requests/month; the
	// TTL cache in Provider does the real work, the limiter is a backstop
	limiter := rate.NewLimiter(rate.Limit(1), 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// quoteResponse is the latest-rates payload; rates are keyed by pair,
// e.g. "USDXAU" = USD per troy ounce of gold
type quoteResponse struct {
	Success bool               `json:"success"`
	Rates   map[string]float64 `json:"rates"`
}

// FetchUSDPerOunce fetches the current USD price of one troy ounce of pure
// gold. Retries transient failures up to 3 times.
func (c *Client) FetchUSDPerOunce(ctx context.Context) (float64, error) {
	endpoint := fmt.Sprintf("%s/v1/latest", c.baseURL)
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	params.Add("base", "USD")
	params.Add("currencies", "XAU")

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[METALS] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
			if ctx.Err() != nil {
				return 0, lastErr
			}
			time.Sleep(time.Duration(attempt*200) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[METALS] API error (attempt %d) - status: %d, body: %s", attempt, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrQuoteUnavailable, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return 0, lastErr
			}
			time.Sleep(time.Duration(attempt*200) * time.Millisecond)
			continue
		}

		var quote quoteResponse
		if err := json.Unmarshal(body, &quote); err != nil {
			return 0, fmt.Errorf("%w: failed to decode response: %v", domain.ErrQuoteUnavailable, err)
		}

		usdPerOunce, ok := quote.Rates["USDXAU"]
		if !ok || usdPerOunce <= 0 {
			return 0, fmt.Errorf("%w: USDXAU rate missing from response", domain.ErrQuoteUnavailable)
		}

		return usdPerOunce, nil
	}

	return 0, lastErr
}
