package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"inventory-media-service/internal/core/domain"
)

// MockItemRepo is a mock of ItemRepository.
type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemRepo) GetByQRCode(ctx context.Context, code string) (*domain.Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemRepo) SetImageFilename(ctx context.Context, id int64, filename *string) error {
	args := m.Called(ctx, id, filename)
	return args.Error(0)
}

func (m *MockItemRepo) SetQRCode(ctx context.Context, id int64, code *string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

func (m *MockItemRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockItemImageRepo is a mock of ItemImageRepository.
type MockItemImageRepo struct {
	mock.Mock
}

func (m *MockItemImageRepo) Create(ctx context.Context, image *domain.ItemImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockItemImageRepo) GetByID(ctx context.Context, id int64) (*domain.ItemImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemImage), args.Error(1)
}

func (m *MockItemImageRepo) ListByItem(ctx context.Context, itemID int64) ([]*domain.ItemImage, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ItemImage), args.Error(1)
}

func (m *MockItemImageRepo) Update(ctx context.Context, image *domain.ItemImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockItemImageRepo) SetPrimary(ctx context.Context, itemID int64, imageID int64) error {
	args := m.Called(ctx, itemID, imageID)
	return args.Error(0)
}

func (m *MockItemImageRepo) Reorder(ctx context.Context, itemID int64, imageIDs []int64) error {
	args := m.Called(ctx, itemID, imageIDs)
	return args.Error(0)
}

func (m *MockItemImageRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDocumentRepo is a mock of DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListByItem(ctx context.Context, itemID int64) ([]*domain.Document, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) UpdateMetadata(ctx context.Context, id int64, documentType, description string) error {
	args := m.Called(ctx, id, documentType, description)
	return args.Error(0)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
