package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/airdash/airdash/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Requests per window
	RequestLimit int
	// Window duration
	WindowLength time.Duration
	// OnLimit writes the response for rejected requests. When nil a 429
	// problem with Retry-After is written.
	OnLimit http.HandlerFunc
}

// RateLimitExceeded is the problem detail for rejected requests.
const RateLimitExceeded = "Rate limit exceeded. Please try again later."

// Default rate limit configurations.
var (
	// StandardRateLimit applies to pages and the JSON API (100 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 100,
		WindowLength: time.Minute,
	}

	// ChartRateLimit applies to the chart document, which is rendered on
	// every dashboard view (60 req/min).
	ChartRateLimit = RateLimitConfig{
		RequestLimit: 60,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP creates a rate limiter middleware using client IP address.
// Uses X-Forwarded-For header if present (extracted by chi's RealIP middleware).
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	onLimit := cfg.OnLimit
	if onLimit == nil {
		onLimit = defaultLimitHandler(cfg.WindowLength)
	}
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(onLimit),
	)
}

func defaultLimitHandler(window time.Duration) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return func(w http.ResponseWriter, r *http.Request) {
		// httprate does not expose the exact reset time; the window
		// length is an upper bound.
		w.Header().Set("Retry-After", retryAfter)
		models.NewTooManyRequests(GetRequestID(r.Context()), RateLimitExceeded).
			WithInstance(r.URL.Path).
			Write(w)
	}
}
