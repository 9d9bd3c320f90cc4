// Package fundapi provides a client for the market-data proxy API
package fundapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/interfaces"
	"github.com/wyli/fundwatch/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:8090/api/market-data"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 4 // requests per second
)

// flexFloat64 handles JSON values that may be either a number or a string.
// Fund vendors publish NAVs as strings more often than not.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "--" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the FundDataClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new market-data client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an upstream API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fund API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Fund API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// navPointResponse represents one NAV observation from the API
type navPointResponse struct {
	Date  string      `json:"date"`
	Price flexFloat64 `json:"price"`
}

// GetFundHistory retrieves published NAV history, normalized to ascending
// order with duplicate dates collapsed to the last observation.
func (c *Client) GetFundHistory(ctx context.Context, fundCode string, days int) ([]models.PricePoint, error) {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}

	var points []navPointResponse
	if err := c.get(ctx, fmt.Sprintf("/fund/%s/history", fundCode), params, &points); err != nil {
		return nil, err
	}

	byDate := make(map[string]float64, len(points))
	for _, p := range points {
		if p.Date == "" || p.Price <= 0 {
			continue
		}
		byDate[p.Date] = float64(p.Price)
	}

	history := make([]models.PricePoint, 0, len(byDate))
	for date, price := range byDate {
		history = append(history, models.PricePoint{Date: date, Price: price})
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Date < history[j].Date })

	if days > 0 && len(history) > days {
		history = history[len(history)-days:]
	}

	c.logger.Debug().Str("fund", fundCode).Int("points", len(history)).Msg("Fund history retrieved")
	return history, nil
}

// estimateResponse represents the live valuation from the API
type estimateResponse struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	NAV         flexFloat64 `json:"nav"`
	NAVDate     string      `json:"nav_date"`
	Estimate    flexFloat64 `json:"estimate"`
	EstimatePct flexFloat64 `json:"estimate_pct"`
	Time        string      `json:"time"`
}

// GetFundEstimate retrieves a fund's live intraday valuation
func (c *Client) GetFundEstimate(ctx context.Context, fundCode string) (*models.FundEstimate, error) {
	var resp estimateResponse
	if err := c.get(ctx, fmt.Sprintf("/fund/%s/estimate", fundCode), nil, &resp); err != nil {
		return nil, err
	}

	estimate := &models.FundEstimate{
		Code:        resp.Code,
		Name:        resp.Name,
		NAV:         float64(resp.NAV),
		NAVDate:     resp.NAVDate,
		Estimate:    float64(resp.Estimate),
		EstimatePct: float64(resp.EstimatePct),
	}
	if resp.Time != "" {
		if t, err := time.Parse(time.RFC3339, resp.Time); err == nil {
			estimate.EstimateTime = t
		}
	}
	return estimate, nil
}

// indexBarResponse represents one day of index history from the API
type indexBarResponse struct {
	Date   string      `json:"date"`
	Open   flexFloat64 `json:"open"`
	Close  flexFloat64 `json:"close"`
	High   flexFloat64 `json:"high"`
	Low    flexFloat64 `json:"low"`
	Volume flexFloat64 `json:"volume"`
}

// GetIndexHistory retrieves daily benchmark index bars, ascending
func (c *Client) GetIndexHistory(ctx context.Context, indexCode string, days int) ([]models.IndexBar, error) {
	params := url.Values{}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}

	var bars []indexBarResponse
	if err := c.get(ctx, fmt.Sprintf("/index/%s/history", indexCode), params, &bars); err != nil {
		return nil, err
	}

	result := make([]models.IndexBar, 0, len(bars))
	for _, bar := range bars {
		if bar.Date == "" {
			continue
		}
		result = append(result, models.IndexBar{
			Date:   bar.Date,
			Open:   float64(bar.Open),
			Close:  float64(bar.Close),
			High:   float64(bar.High),
			Low:    float64(bar.Low),
			Volume: float64(bar.Volume),
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

// indexQuoteResponse represents a live index quote from the API
type indexQuoteResponse struct {
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Price     flexFloat64 `json:"price"`
	ChangePct flexFloat64 `json:"change_pct"`
	Volume    flexFloat64 `json:"volume"`
}

// GetIndexQuote retrieves a benchmark index's live quote
func (c *Client) GetIndexQuote(ctx context.Context, indexCode string) (*models.IndexQuote, error) {
	var resp indexQuoteResponse
	if err := c.get(ctx, fmt.Sprintf("/index/%s/quote", indexCode), nil, &resp); err != nil {
		return nil, err
	}
	return &models.IndexQuote{
		Code:      resp.Code,
		Name:      resp.Name,
		Price:     float64(resp.Price),
		ChangePct: float64(resp.ChangePct),
		Volume:    float64(resp.Volume),
	}, nil
}

// GetMarketStats retrieves market-wide advance/decline counts
func (c *Client) GetMarketStats(ctx context.Context) (*models.MarketStats, error) {
	var stats models.MarketStats
	if err := c.get(ctx, "/market/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Compile-time check
var _ interfaces.FundDataClient = (*Client)(nil)
