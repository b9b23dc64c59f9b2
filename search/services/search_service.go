// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"time"

	uuid "github.com/gofrs/uuid"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/cache"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/metrics"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/pkg/log"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/catalog"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/compiler"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/repository"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/validation"
)

// Options wires the optional collaborators of the search service
type Options struct {
	Executor ExecutorOptions
	// Cache stores preview counts; nil disables caching
	Cache *cache.GenericCacheService
	// CountTTL is the lifetime of a cached preview count
	CountTTL time.Duration
	// Metrics may be nil
	Metrics *metrics.Collection
}

// searchService implements the SearchService interface
type searchService struct {
	repo     repository.DocumentRepository
	executor *Executor
	cache    *cache.GenericCacheService
	countTTL time.Duration
	metrics  *metrics.Collection
}

var _ SearchService = (*searchService)(nil)

// NewSearchService creates a new instance of the search service
func NewSearchService(repo repository.DocumentRepository, opts Options) SearchService {
	return &searchService{
		repo:     repo,
		executor: NewExecutor(repo, opts.Executor),
		cache:    opts.Cache,
		countTTL: opts.CountTTL,
		metrics:  opts.Metrics,
	}
}

// compile authenticates, validates and lowers the request tree
func (s *searchService) compile(req *models.SearchRequest, user *types.UserContext) (predicate.Predicate, error) {
	if user == nil || user.UserID == uuid.Nil {
		return predicate.Predicate{}, searchErrors.ErrUnauthorized
	}
	if err := validation.ValidateSearchRequest(req); err != nil {
		return predicate.Predicate{}, err
	}
	return compiler.CompileRequest(*req, user.UserID), nil
}

func (s *searchService) Search(ctx context.Context, req *models.SearchRequest, user *types.UserContext) (*models.SearchResponse, error) {
	started := time.Now()

	pred, err := s.compile(req, user)
	if err != nil {
		s.metrics.Observe(metrics.KindSearch, outcomeOf(err), started)
		return nil, err
	}
	log.Debug("search user=%s predicate=%s", user.UserID, pred)

	resp, err := s.executor.Execute(ctx, pred, PageOf(req))
	if err != nil {
		s.metrics.Observe(metrics.KindSearch, metrics.OutcomeError, started)
		return nil, err
	}

	s.metrics.Observe(metrics.KindSearch, metrics.OutcomeOK, started)
	return resp, nil
}

func (s *searchService) Count(ctx context.Context, req *models.SearchRequest, user *types.UserContext) (*models.CountResponse, error) {
	started := time.Now()

	pred, err := s.compile(req, user)
	if err != nil {
		s.metrics.Observe(metrics.KindPreview, outcomeOf(err), started)
		return nil, err
	}

	var key string
	if s.cache.IsEnabled() {
		key = s.cache.GenerateHashKey("count", map[string]interface{}{
			"user":      user.UserID.String(),
			"predicate": pred.Key(),
		})
		var cached int64
		if err := s.cache.GetCached(ctx, key, &cached); err == nil {
			s.metrics.CacheHit()
			s.metrics.Observe(metrics.KindPreview, metrics.OutcomeCacheHit, started)
			return &models.CountResponse{Success: true, Total: cached}, nil
		}
	}

	total, err := s.executor.Count(ctx, pred)
	if err != nil {
		s.metrics.Observe(metrics.KindPreview, metrics.OutcomeError, started)
		return nil, err
	}

	if key != "" {
		if err := s.cache.CacheData(ctx, key, total, s.countTTL); err != nil {
			log.WarnWithContext(ctx, "failed to cache preview count: %v", err)
		}
	}

	s.metrics.Observe(metrics.KindPreview, metrics.OutcomeOK, started)
	return &models.CountResponse{Success: true, Total: total}, nil
}

func (s *searchService) Fields() *models.FieldsResponse {
	return &models.FieldsResponse{Success: true, Version: catalog.Version, Fields: catalog.Fields()}
}

func (s *searchService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func outcomeOf(err error) string {
	if errors.Is(err, searchErrors.ErrValidationFailed) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
