package images

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/malaysia-ai/concierge-server/internal/metrics"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

const unsplashSearchEndpoint = "https://api.unsplash.com/search/photos"

// ImageResult is one destination photo returned to the frontend, with the
// attribution fields Unsplash requires.
type ImageResult struct {
	URL              string `json:"url"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Source           string `json:"source"`
	PhotographerName string `json:"photographer_name,omitempty"`
	PhotographerURL  string `json:"photographer_url,omitempty"`
	DownloadURL      string `json:"download_url,omitempty"`
}

// Config captures the knobs exposed to operators for the image client.
type Config struct {
	AccessKey string        `envconfig:"UNSPLASH_ACCESS_KEY"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"10s"`

	// Retry settings
	RetryMaxAttempts   int           `envconfig:"RETRY_MAX_ATTEMPTS"`
	RetryInitialDelay  time.Duration `envconfig:"RETRY_INITIAL_DELAY"`
	RetryMaxDelay      time.Duration `envconfig:"RETRY_MAX_DELAY"`
	RetryBackoffFactor float64       `envconfig:"RETRY_BACKOFF_FACTOR"`

	// Circuit breaker settings
	CBEnabled          bool          `envconfig:"CB_ENABLED" default:"true"`
	CBFailureThreshold int           `envconfig:"CB_FAILURE_THRESHOLD"`
	CBSuccessThreshold int           `envconfig:"CB_SUCCESS_THRESHOLD"`
	CBTimeout          time.Duration `envconfig:"CB_TIMEOUT"`
	CBMaxHalfOpen      int           `envconfig:"CB_MAX_HALF_OPEN"`
}

// Client searches destination photos on Unsplash, degrading to curated
// images when the provider is unavailable or unconfigured.
type Client struct {
	cfg         Config
	http        *resty.Client
	endpoint    string
	retryConfig RetryConfig
	breaker     *CircuitBreaker
}

// NewClient wires the HTTP client, retry policy, and circuit breaker.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetHeader("User-Agent", "Concierge-Server/1.0").
		SetTimeout(timeout).
		SetRetryCount(0)

	retryConfig := DefaultRetryConfig()
	if cfg.RetryMaxAttempts > 0 {
		retryConfig.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryInitialDelay > 0 {
		retryConfig.InitialDelay = cfg.RetryInitialDelay
	}
	if cfg.RetryMaxDelay > 0 {
		retryConfig.MaxDelay = cfg.RetryMaxDelay
	}
	if cfg.RetryBackoffFactor > 0 {
		retryConfig.BackoffFactor = cfg.RetryBackoffFactor
	}

	cbConfig := DefaultCircuitBreakerConfig()
	cbConfig.Enabled = cfg.CBEnabled
	if cfg.CBFailureThreshold > 0 {
		cbConfig.FailureThreshold = cfg.CBFailureThreshold
	}
	if cfg.CBSuccessThreshold > 0 {
		cbConfig.SuccessThreshold = cfg.CBSuccessThreshold
	}
	if cfg.CBTimeout > 0 {
		cbConfig.Timeout = cfg.CBTimeout
	}
	if cfg.CBMaxHalfOpen > 0 {
		cbConfig.MaxHalfOpenCalls = cfg.CBMaxHalfOpen
	}

	return &Client{
		cfg:         cfg,
		http:        httpClient,
		endpoint:    unsplashSearchEndpoint,
		retryConfig: retryConfig,
		breaker:     NewCircuitBreaker("unsplash", cbConfig),
	}
}

// Search returns destination photos for the query. The curated fallback set
// is used when no access key is configured, the breaker is open, or the
// provider keeps failing; Search itself never returns an empty, error-only
// result for a well-formed query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) []ImageResult {
	if maxResults <= 0 {
		maxResults = 3
	}

	if strings.TrimSpace(c.cfg.AccessKey) == "" {
		logx.Warn().Msg("no Unsplash access key configured, using curated fallback")
		return FallbackImages(query)
	}

	if c.breaker.GetState() == StateOpen {
		logx.Warn().Str("query", query).Msg("image provider circuit breaker is open, using curated fallback")
		metrics.RecordImageSearch("unsplash", "breaker_open")
		return FallbackImages(query)
	}

	enhanced := EnhanceQuery(query)

	startTime := time.Now()
	resultPtr, err := WithRetry(ctx, c.retryConfig, "unsplash_search", func() (*unsplashSearchResponse, error) {
		var res unsplashSearchResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Client-ID "+c.cfg.AccessKey).
			SetQueryParams(map[string]string{
				"query":          enhanced,
				"per_page":       fmt.Sprintf("%d", maxResults),
				"orientation":    "landscape",
				"content_filter": "high",
			}).
			SetResult(&res).
			Get(c.endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to query Unsplash search API: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("Unsplash search API error (status %d): %s", resp.StatusCode(), resp.String())
		}
		return &res, nil
	})
	metrics.RecordExternalProviderLatency("unsplash", time.Since(startTime).Seconds())

	c.breaker.recordResult("unsplash_search", err)

	if err != nil {
		metrics.RecordImageSearch("unsplash", "error")
		logx.Error().Err(err).Str("query", query).Msg("Unsplash search failed, using curated fallback")
		return FallbackImages(query)
	}

	metrics.RecordImageSearch("unsplash", "success")

	results := make([]ImageResult, 0, len(resultPtr.Results))
	for _, item := range resultPtr.Results {
		photographerName := item.User.Name
		if photographerName == "" {
			photographerName = "Unknown Photographer"
		}
		photographerURL := "https://unsplash.com"
		if item.User.Username != "" {
			photographerURL = "https://unsplash.com/@" + item.User.Username
		}

		title := item.AltDescription
		if title == "" {
			title = "Malaysia Tourism"
		}

		results = append(results, ImageResult{
			URL:              item.URLs.Regular,
			Title:            title,
			Description:      item.Description,
			Source:           "Unsplash",
			PhotographerName: photographerName,
			PhotographerURL:  photographerURL,
			DownloadURL:      item.Links.DownloadLocation,
		})
	}

	logx.Info().
		Int("count", len(results)).
		Str("query", query).
		Msg("retrieved images from Unsplash")
	return results
}

// TrackDownload pings the Unsplash download endpoint, which the API terms
// require whenever a returned photo is actually displayed.
func (c *Client) TrackDownload(ctx context.Context, downloadURL string) error {
	if strings.TrimSpace(c.cfg.AccessKey) == "" {
		return fmt.Errorf("unsplash access key not configured")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Client-ID "+c.cfg.AccessKey).
		Get(downloadURL)
	if err != nil {
		return fmt.Errorf("download tracking request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("download tracking failed (status %d)", resp.StatusCode())
	}

	logx.Info().Msg("image download tracked")
	return nil
}

// BreakerMetrics exposes the circuit breaker state for diagnostics.
func (c *Client) BreakerMetrics() map[string]any {
	return c.breaker.GetMetrics()
}

// EnhanceQuery biases a raw model query towards Malaysia tourism results.
func EnhanceQuery(query string) string {
	query = strings.ToLower(query)

	if !strings.Contains(query, "malaysia") &&
		!strings.Contains(query, "kuala lumpur") &&
		!strings.Contains(query, "penang") {
		query = query + " Malaysia"
	}

	hasTourismContext := false
	for _, keyword := range []string{"tourism", "travel", "destination", "attraction"} {
		if strings.Contains(query, keyword) {
			hasTourismContext = true
			break
		}
	}
	if !hasTourismContext {
		query = query + " tourism"
	}

	return query
}

// --- Unsplash response types ---

type unsplashSearchResponse struct {
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
	Results    []unsplashPhoto `json:"results"`
}

type unsplashPhoto struct {
	Description    string        `json:"description"`
	AltDescription string        `json:"alt_description"`
	URLs           unsplashURLs  `json:"urls"`
	Links          unsplashLinks `json:"links"`
	User           unsplashUser  `json:"user"`
}

type unsplashURLs struct {
	Raw     string `json:"raw"`
	Full    string `json:"full"`
	Regular string `json:"regular"`
	Small   string `json:"small"`
}

type unsplashLinks struct {
	DownloadLocation string `json:"download_location"`
}

type unsplashUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}
