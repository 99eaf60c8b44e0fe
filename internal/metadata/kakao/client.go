package kakao

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://dapi.kakao.com/v3/search/book"

	// DefaultPageSize is used when the caller does not specify a size.
	DefaultPageSize = 10

	// HTTP client settings.
	defaultTimeout = 30 * time.Second

	// Kakao allows generous quotas; 10 rps with a small burst keeps us
	// well clear of them while letting scroll bursts through.
	defaultRPS   = 10
	defaultBurst = 5
)

// Client is a rate-limited Kakao book-search API client.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	logger      *slog.Logger

	warnMissingKey sync.Once
}

// NewClient creates a new Kakao client. An empty apiKey is tolerated:
// the misconfiguration is logged on first use and requests proceed to
// fail upstream instead of failing fast here.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		logger:      logger,
	}
}

// Close releases resources. Currently a no-op but included for interface consistency.
func (c *Client) Close() {
	// No persistent resources to close
}
