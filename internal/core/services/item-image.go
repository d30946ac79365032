package services

import (
	"context"
	"errors"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
	"inventory-media-service/internal/core/worker"
)

type ImageUploadOptions struct {
	IsPrimary bool
	Rotation  int
}

type ItemImageService struct {
	items      ports.ItemRepository
	images     ports.ItemImageRepository
	validator  *UploadValidator
	allocator  *FilenameAllocator
	normalizer *ImageNormalizer
	storage    *StorageManager
	store      ports.ArtifactStore
	pool       *worker.Pool
}

func NewItemImageService(
	items ports.ItemRepository,
	images ports.ItemImageRepository,
	validator *UploadValidator,
	allocator *FilenameAllocator,
	normalizer *ImageNormalizer,
	storage *StorageManager,
	store ports.ArtifactStore,
	pool *worker.Pool,
) *ItemImageService {
	return &ItemImageService{
		items:      items,
		images:     images,
		validator:  validator,
		allocator:  allocator,
		normalizer: normalizer,
		storage:    storage,
		store:      store,
		pool:       pool,
	}
}

func (s *ItemImageService) List(ctx context.Context, itemID int64) ([]*domain.ItemImage, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.images.ListByItem(ctx, itemID)
}

// Upload validates, normalizes on the worker pool and records the image. The
// first image of an item becomes its primary reference.
func (s *ItemImageService) Upload(ctx context.Context, itemID int64, upload domain.Upload, opts ImageUploadOptions) (*domain.ItemImage, *domain.StoredImage, error) {
	if !domain.ValidRotation(opts.Rotation) {
		return nil, nil, domain.ErrInvalidRotation
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	admitted, err := s.validator.ValidateImage(upload)
	if err != nil {
		return nil, nil, err
	}

	// Writes start here; a client disconnect must not abort them halfway.
	ctx = context.WithoutCancel(ctx)
	filename := s.allocator.Allocate(admitted.OriginalFilename)
	stored, err := worker.Run(ctx, s.pool, func() (*domain.StoredImage, error) {
		return s.normalizer.Normalize(admitted, filename)
	})
	if err != nil {
		return nil, nil, err
	}

	img := &domain.ItemImage{
		ItemID:           itemID,
		Filename:         stored.Filename,
		OriginalFilename: stored.OriginalFilename,
		FileSize:         stored.Size,
		Width:            stored.Width,
		Height:           stored.Height,
		Orientation:      stored.Orientation,
		Optimized:        stored.Optimized(),
		Rotation:         opts.Rotation,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.images.Create(ctx, img); err != nil {
		if rmErr := s.storage.RemoveImageFiles(stored.Filename); rmErr != nil {
			log.WithError(rmErr).WithField("filename", stored.Filename).Error("failed to clean up image after insert failure")
		}
		return nil, nil, err
	}
	if err := s.storage.AttachImage(ctx, item, img, opts.IsPrimary); err != nil {
		return nil, nil, err
	}
	return img, stored, nil
}

// Rotate records the requested quarter turn. Pixels are not touched.
func (s *ItemImageService) Rotate(ctx context.Context, itemID, imageID int64, rotation int) (*domain.ItemImage, error) {
	if !domain.ValidRotation(rotation) {
		return nil, domain.ErrInvalidRotation
	}
	img, err := s.owned(ctx, itemID, imageID)
	if err != nil {
		return nil, err
	}
	img.Rotation = rotation
	if err := s.images.Update(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *ItemImageService) SetPrimary(ctx context.Context, itemID, imageID int64) (*domain.ItemImage, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	img, err := s.owned(ctx, itemID, imageID)
	if err != nil {
		return nil, err
	}
	if err := s.storage.AttachImage(ctx, item, img, true); err != nil {
		return nil, err
	}
	return img, nil
}

// Reorder expects every image of the item exactly once.
func (s *ItemImageService) Reorder(ctx context.Context, itemID int64, imageIDs []int64) ([]*domain.ItemImage, error) {
	current, err := s.List(ctx, itemID)
	if err != nil {
		return nil, err
	}
	known := make(map[int64]bool, len(current))
	for _, img := range current {
		known[img.ID] = true
	}
	seen := make(map[int64]bool, len(imageIDs))
	for _, id := range imageIDs {
		if !known[id] {
			return nil, domain.ErrIdentityMismatch
		}
		if seen[id] {
			return nil, domain.ErrInvalidReorder
		}
		seen[id] = true
	}
	if len(seen) != len(current) {
		return nil, domain.ErrInvalidReorder
	}

	if err := s.images.Reorder(ctx, itemID, imageIDs); err != nil {
		return nil, err
	}
	return s.images.ListByItem(ctx, itemID)
}

func (s *ItemImageService) Delete(ctx context.Context, itemID, imageID int64) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	img, err := s.owned(ctx, itemID, imageID)
	if err != nil {
		return err
	}
	return s.storage.DetachImage(context.WithoutCancel(ctx), item, img)
}

// Open serves a main artifact or its thumbnail by stored name.
func (s *ItemImageService) Open(filename string, thumbnail bool) (ports.ReadSeekCloser, time.Time, error) {
	path := s.store.ImagePath(filename)
	if thumbnail {
		path = s.store.ThumbnailPath(filename)
	}
	f, modTime, err := s.store.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, time.Time{}, domain.ErrImageNotFound
	}
	return f, modTime, err
}

func (s *ItemImageService) owned(ctx context.Context, itemID, imageID int64) (*domain.ItemImage, error) {
	img, err := s.images.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.ItemID != itemID {
		return nil, domain.ErrIdentityMismatch
	}
	return img, nil
}
