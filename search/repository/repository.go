// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
)

// Sort keys understood by every DocumentRepository
const (
	SortTitle     = "title"
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortCategory  = "category"
	SortStatus    = "status"
)

// FindOptions selects one ordered page. SortBy must be one of the Sort* keys;
// ties are broken by document id in the same direction.
type FindOptions struct {
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}

// DocumentRepository evaluates compiled predicates against the document store.
// The predicate is expected to carry its own scoping.
type DocumentRepository interface {
	// Count returns the number of documents matching pred
	Count(ctx context.Context, pred predicate.Predicate) (int64, error)

	// Find returns one page of documents matching pred, with author and tags loaded
	Find(ctx context.Context, pred predicate.Predicate, opts FindOptions) ([]models.Document, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}
