package client

import (
	"context"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/services"
)

// Local serves the editor ports from an in-process SearchService as a fixed user
type Local struct {
	service services.SearchService
	user    types.UserContext
}

// NewLocal creates in-process ports
func NewLocal(service services.SearchService, user types.UserContext) *Local {
	return &Local{service: service, user: user}
}

// Search runs the search in process
func (l *Local) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	return l.service.Search(ctx, &req, &l.user)
}

// Count runs the preview count in process
func (l *Local) Count(ctx context.Context, req models.SearchRequest) (int64, error) {
	resp, err := l.service.Count(ctx, &req, &l.user)
	if err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// Fields returns the catalog
func (l *Local) Fields(ctx context.Context) (*models.FieldsResponse, error) {
	return l.service.Fields(), nil
}
