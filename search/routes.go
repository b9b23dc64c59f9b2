package search

import (
	"github.com/gofiber/fiber/v2"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/middleware/authjwt"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/middleware/ratelimit"
	platformconfig "github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/platform/config"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/handlers"
)

// SearchHandlers holds all the handlers this router needs.
type SearchHandlers struct {
	SearchHandler *handlers.SearchHandler
}

// RegisterRoutes is the single entry point for setting up search routes.
// Every search route requires a verified JWT.
func RegisterRoutes(router fiber.Router, h *SearchHandlers, cfg *platformconfig.Config) {
	auth := authjwt.New(authjwt.Config{
		PublicKey: cfg.JWT.PublicKey,
		ClaimKey:  cfg.JWT.ClaimKey,
		Disabled:  cfg.JWT.Disabled,
	})
	RegisterRoutesWithAuth(router, h, auth, ratelimit.LimitsFromConfig(cfg.Search))
}

// RegisterRoutesWithAuth mounts the routes behind an explicit auth middleware.
// Limiters run after auth so budgets are keyed by user.
func RegisterRoutesWithAuth(router fiber.Router, h *SearchHandlers, auth fiber.Handler, limits ratelimit.Limits) {
	group := router.Group("/documents/search", auth)

	group.Post("/", ratelimit.NewSearchLimiter(limits), h.SearchHandler.Search)
	group.Post("/count", ratelimit.NewCountLimiter(limits), h.SearchHandler.Count)
	group.Get("/fields", h.SearchHandler.Fields)
}
