// Package ratelimit throttles search traffic per authenticated user.
// Live previews issue a count on every edit, so counts get their own budget.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	platformconfig "github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/platform/config"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
)

// CodeRateLimitExceeded is the error code of a throttled response
const CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"

// EndpointType selects which budget applies
type EndpointType int

const (
	EndpointSearch EndpointType = iota
	EndpointCount
)

func (t EndpointType) String() string {
	switch t {
	case EndpointSearch:
		return "search"
	case EndpointCount:
		return "count"
	default:
		return "unknown"
	}
}

// Limits holds the per-user request budgets. A zero Max disables that limit.
type Limits struct {
	SearchMax int
	CountMax  int
	Window    time.Duration
}

// LimitsFromConfig reads the budgets from the search settings
func LimitsFromConfig(cfg platformconfig.SearchConfig) Limits {
	return Limits{SearchMax: cfg.SearchRateLimit, CountMax: cfg.CountRateLimit, Window: cfg.RateLimitWindow}
}

// Max returns the budget for the endpoint type
func (l Limits) Max(t EndpointType) int {
	if t == EndpointCount {
		return l.CountMax
	}
	return l.SearchMax
}

// Config holds the configuration for rate limiting middleware
type Config struct {
	EndpointType EndpointType
	Limits       Limits

	// Next defines a function to skip this middleware when returned true
	Next func(c *fiber.Ctx) bool

	// KeyGenerator defaults to the authenticated user, falling back to the client IP
	KeyGenerator func(c *fiber.Ctx) string

	// LimitReached defines the response when rate limit is exceeded
	LimitReached func(c *fiber.Ctx) error
}

func configDefault(config Config) Config {
	if config.Limits.Window <= 0 {
		config.Limits.Window = time.Minute
	}
	if config.KeyGenerator == nil {
		endpoint := config.EndpointType.String()
		config.KeyGenerator = func(c *fiber.Ctx) string {
			return endpoint + ":" + UserKey(c)
		}
	}
	if config.LimitReached == nil {
		endpoint := config.EndpointType.String()
		window := config.Limits.Window
		config.LimitReached = func(c *fiber.Ctx) error {
			log.Warn("[RateLimit] %s budget exhausted for %s", endpoint, UserKey(c))
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"code":    CodeRateLimitExceeded,
				"error":   fmt.Sprintf("Too many %s requests. Please try again later.", endpoint),
			})
		}
	}
	return config
}

// UserKey identifies the caller: the user id set by the auth middleware, or the IP
func UserKey(c *fiber.Ctx) string {
	if user, ok := c.Locals(types.UserCtxName).(types.UserContext); ok {
		return "user:" + user.UserID.String()
	}
	return "ip:" + c.IP()
}

// New creates a new rate limiting middleware handler. A disabled budget
// yields a pass-through handler.
func New(config Config) fiber.Handler {
	cfg := configDefault(config)

	budget := cfg.Limits.Max(cfg.EndpointType)
	if budget <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:          budget,
		Expiration:   cfg.Limits.Window,
		KeyGenerator: cfg.KeyGenerator,
		LimitReached: cfg.LimitReached,
		Next:         cfg.Next,
	})
}

// NewSearchLimiter throttles full searches
func NewSearchLimiter(limits Limits) fiber.Handler {
	return New(Config{EndpointType: EndpointSearch, Limits: limits})
}

// NewCountLimiter throttles preview counts
func NewCountLimiter(limits Limits) fiber.Handler {
	return New(Config{EndpointType: EndpointCount, Limits: limits})
}
