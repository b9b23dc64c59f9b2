package services

import (
	"context"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
)

// SearchService defines the document search operations exposed over HTTP
type SearchService interface {
	// Search validates and compiles the request tree, then returns one shaped page
	Search(ctx context.Context, req *models.SearchRequest, user *types.UserContext) (*models.SearchResponse, error)

	// Count runs the compile + count path only, as used by live previews
	Count(ctx context.Context, req *models.SearchRequest, user *types.UserContext) (*models.CountResponse, error)

	// Fields lists the searchable fields and their operators
	Fields() *models.FieldsResponse

	// Ping checks the document store
	Ping(ctx context.Context) error
}
