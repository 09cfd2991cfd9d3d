// Package clienttest provides a testify mock of client.ItemService.
package clienttest

import (
	"context"

	"tokodash/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockItemService is a mock implementation of client.ItemService.
type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) ListItems(ctx context.Context, token string) ([]models.Item, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockItemService) CreateItem(ctx context.Context, token string, fields models.ItemFields) (models.Item, error) {
	args := m.Called(ctx, token, fields)
	return args.Get(0).(models.Item), args.Error(1)
}

func (m *MockItemService) UpdateItem(ctx context.Context, token string, id int64, fields models.ItemFields) (models.Item, error) {
	args := m.Called(ctx, token, id, fields)
	return args.Get(0).(models.Item), args.Error(1)
}

func (m *MockItemService) DeleteItem(ctx context.Context, token string, id int64) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

func (m *MockItemService) UploadImage(ctx context.Context, token string, file models.ImageFile) (models.UploadResult, error) {
	args := m.Called(ctx, token, file)
	return args.Get(0).(models.UploadResult), args.Error(1)
}

// StaticToken is a token source that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }
