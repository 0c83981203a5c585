package cowin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/donaldgifford/vaccine-alert/internal/metrics"
	domain "github.com/donaldgifford/vaccine-alert/pkg/types"
)

const (
	// DefaultBaseURL is the public CoWIN API root.
	DefaultBaseURL = "https://cdn-api.co-vin.in/api"
	// DefaultUserAgent is sent on every request; the CDN rejects requests
	// without a browser-like User-Agent.
	DefaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4430.93 Safari/537.36"
	defaultAcceptLanguage = "hi_IN"
	defaultTimeout        = 15 * time.Second

	sessionsPath = "/v2/appointment/sessions/public/"

	// maxErrorBody bounds how much of a non-2xx body ends up in an error.
	maxErrorBody = 256
)

// HTTPClient implements AvailabilityClient against the CoWIN public API.
type HTTPClient struct {
	baseURL        string
	userAgent      string
	acceptLanguage string
	mode           Mode
	client         *http.Client
	rateLimiter    *RateLimiter
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *HTTPClient) {
		c.baseURL = u
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		c.userAgent = ua
	}
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(lang string) Option {
	return func(c *HTTPClient) {
		c.acceptLanguage = lang
	}
}

// WithMode selects the calendar or single-day view.
func WithMode(m Mode) Option {
	return func(c *HTTPClient) {
		c.mode = m
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithRateLimiter injects the call budget. When set, every Fetch goes
// through Wait first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// NewHTTPClient creates a CoWIN client using the calendar view by default.
func NewHTTPClient(opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:        DefaultBaseURL,
		userAgent:      DefaultUserAgent,
		acceptLanguage: defaultAcceptLanguage,
		mode:           ModeCalendar,
		client:         &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the configured lookup mode.
func (c *HTTPClient) Mode() Mode {
	return c.mode
}

// Fetch implements AvailabilityClient. Exactly one HTTP request is made
// per call.
func (c *HTTPClient) Fetch(
	ctx context.Context,
	q domain.LocationQuery,
) (*domain.Document, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrBudgetExhausted) {
				metrics.CowinBudgetExhaustedTotal.Inc()
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		metrics.CowinBudgetRemaining.Set(float64(c.rateLimiter.Remaining()))
	}

	u, err := c.buildURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.acceptLanguage)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.CowinAPICallsTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("%w: executing request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CowinAPICallsTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("%w: reading response body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.CowinAPICallsTotal.WithLabelValues("http_error").Inc()
		return nil, fmt.Errorf("%w: CoWIN API error (status %d): %s",
			ErrTransport, resp.StatusCode, truncate(body, maxErrorBody))
	}

	doc, err := c.decode(body)
	if err != nil {
		metrics.CowinAPICallsTotal.WithLabelValues("format_error").Inc()
		return nil, err
	}

	metrics.CowinAPICallsTotal.WithLabelValues("ok").Inc()
	return doc, nil
}

func (c *HTTPClient) decode(body []byte) (*domain.Document, error) {
	if c.mode == ModeDay {
		var resp dayResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: parsing sessions response: %w", ErrFormat, err)
		}
		if resp.Sessions == nil {
			return nil, fmt.Errorf("%w: response has no \"sessions\" key", ErrFormat)
		}
		doc, err := groupDaySessions(*resp.Sessions)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		return doc, nil
	}

	var resp calendarResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parsing calendar response: %w", ErrFormat, err)
	}
	if resp.Centers == nil {
		return nil, fmt.Errorf("%w: response has no \"centers\" key", ErrFormat)
	}
	doc, err := toDocument(*resp.Centers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return doc, nil
}

func (c *HTTPClient) buildURL(q domain.LocationQuery) (string, error) {
	var endpoint, param string
	switch q.Kind {
	case domain.LocationPincode:
		param = "pincode"
		endpoint = "calendarByPin"
		if c.mode == ModeDay {
			endpoint = "findByPin"
		}
	case domain.LocationDistrict:
		param = "district_id"
		endpoint = "calendarByDistrict"
		if c.mode == ModeDay {
			endpoint = "findByDistrict"
		}
	default:
		return "", fmt.Errorf("unsupported location kind %q", q.Kind)
	}

	params := url.Values{}
	params.Set(param, q.Code)
	params.Set("date", q.DateParam())

	return c.baseURL + sessionsPath + endpoint + "?" + params.Encode(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
