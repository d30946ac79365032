package ports

import (
	"context"

	"inventory-media-service/internal/core/domain"
)

type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	GetByQRCode(ctx context.Context, code string) (*domain.Item, error)
	SetImageFilename(ctx context.Context, id int64, filename *string) error
	SetQRCode(ctx context.Context, id int64, code *string) error
	Delete(ctx context.Context, id int64) error
}

// ItemImageRepository persists gallery rows. Create assigns the next sort
// position for the item. SetPrimary also updates the item's image reference,
// atomically with the primary flag.
type ItemImageRepository interface {
	Create(ctx context.Context, image *domain.ItemImage) error
	GetByID(ctx context.Context, id int64) (*domain.ItemImage, error)
	ListByItem(ctx context.Context, itemID int64) ([]*domain.ItemImage, error)
	Update(ctx context.Context, image *domain.ItemImage) error
	SetPrimary(ctx context.Context, itemID int64, imageID int64) error
	Reorder(ctx context.Context, itemID int64, imageIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	ListByItem(ctx context.Context, itemID int64) ([]*domain.Document, error)
	UpdateMetadata(ctx context.Context, id int64, documentType, description string) error
	Delete(ctx context.Context, id int64) error
}
