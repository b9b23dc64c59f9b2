package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/services"
)

// SearchHandler handles the document search endpoints
type SearchHandler struct {
	searchService services.SearchService
}

// NewSearchHandler creates a new SearchHandler with injected dependencies
func NewSearchHandler(searchService services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search executes an advanced search and returns one page of results
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	req, user, err := h.parse(c)
	if err != nil {
		return searchErrors.HandleServiceError(c, err)
	}

	result, err := h.searchService.Search(c.UserContext(), req, user)
	if err != nil {
		return searchErrors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// Count returns only the number of matching documents, for live previews
func (h *SearchHandler) Count(c *fiber.Ctx) error {
	req, user, err := h.parse(c)
	if err != nil {
		return searchErrors.HandleServiceError(c, err)
	}

	result, err := h.searchService.Count(c.UserContext(), req, user)
	if err != nil {
		return searchErrors.HandleServiceError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// Fields lists the field catalog
func (h *SearchHandler) Fields(c *fiber.Ctx) error {
	if _, ok := c.Locals(types.UserCtxName).(types.UserContext); !ok {
		return searchErrors.HandleServiceError(c, searchErrors.ErrUnauthorized)
	}
	return c.Status(http.StatusOK).JSON(h.searchService.Fields())
}

// Health reports liveness and store reachability
func (h *SearchHandler) Health(c *fiber.Ctx) error {
	if err := h.searchService.Ping(c.UserContext()); err != nil {
		log.WarnWithContext(c.UserContext(), "health check failed: %v", err)
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// parse resolves the caller before reading the body, so an unauthenticated
// request never gets as far as the compiler.
func (h *SearchHandler) parse(c *fiber.Ctx) (*models.SearchRequest, *types.UserContext, error) {
	user, ok := c.Locals(types.UserCtxName).(types.UserContext)
	if !ok {
		return nil, nil, searchErrors.ErrUnauthorized
	}

	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		log.Debug("search body rejected: %v", err)
		return nil, nil, searchErrors.ErrInvalidRequestBody
	}
	return &req, &user, nil
}
