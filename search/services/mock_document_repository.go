// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/predicate"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/repository"
)

// MockDocumentRepository is a mock implementation of DocumentRepository for testing
type MockDocumentRepository struct {
	mock.Mock
}

var _ repository.DocumentRepository = (*MockDocumentRepository)(nil)

// Count mocks the Count method
func (m *MockDocumentRepository) Count(ctx context.Context, pred predicate.Predicate) (int64, error) {
	args := m.Called(ctx, pred)
	return args.Get(0).(int64), args.Error(1)
}

// Find mocks the Find method
func (m *MockDocumentRepository) Find(ctx context.Context, pred predicate.Predicate, opts repository.FindOptions) ([]models.Document, error) {
	args := m.Called(ctx, pred, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Document), args.Error(1)
}

// Ping mocks the Ping method
func (m *MockDocumentRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
