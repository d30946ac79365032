package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"inventory-media-service/internal/core/domain"
)

type itemRepo struct {
	db *gorm.DB
}

func (r *itemRepo) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	var m itemModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("get item by id: %w", err)
	}
	return m.toDomain(), nil
}

func (r *itemRepo) GetByQRCode(ctx context.Context, code string) (*domain.Item, error) {
	var m itemModel
	if err := r.db.WithContext(ctx).Where("qr_code = ?", code).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQRCodeNotFound
		}
		return nil, fmt.Errorf("get item by qr code: %w", err)
	}
	return m.toDomain(), nil
}

func (r *itemRepo) SetImageFilename(ctx context.Context, id int64, filename *string) error {
	res := r.db.WithContext(ctx).Model(&itemModel{}).Where("id = ?", id).Update("image_filename", filename)
	if res.Error != nil {
		return fmt.Errorf("set item image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *itemRepo) SetQRCode(ctx context.Context, id int64, code *string) error {
	res := r.db.WithContext(ctx).Model(&itemModel{}).Where("id = ?", id).Update("qr_code", code)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.ErrQRCodeConflict
		}
		return fmt.Errorf("set item qr code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Delete removes the item with its image and document rows in one
// transaction, independent of the foreign_keys pragma.
func (r *itemRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&itemImageModel{}).Error; err != nil {
			return fmt.Errorf("delete item images: %w", err)
		}
		if err := tx.Where("item_id = ?", id).Delete(&documentModel{}).Error; err != nil {
			return fmt.Errorf("delete item documents: %w", err)
		}
		res := tx.Delete(&itemModel{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrItemNotFound
		}
		return nil
	})
}

// isUniqueViolation also matches the raw driver message in case the dialector
// does not translate constraint errors.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type itemImageRepo struct {
	db *gorm.DB
}

// Create appends img after the item's current images. The store runs on a
// single connection, so the transaction also serializes concurrent appends.
func (r *itemImageRepo) Create(ctx context.Context, img *domain.ItemImage) error {
	m := imageFromDomain(img)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&itemImageModel{}).Where("item_id = ?", img.ItemID).
			Select("COALESCE(MAX(sort_order) + 1, 0)").Scan(&next).Error
		if err != nil {
			return fmt.Errorf("next sort order: %w", err)
		}
		m.SortOrder = next
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("create item image: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	img.ID = m.ID
	img.SortOrder = m.SortOrder
	img.CreatedAt = m.CreatedAt
	return nil
}

func (r *itemImageRepo) GetByID(ctx context.Context, id int64) (*domain.ItemImage, error) {
	var m itemImageModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("get item image: %w", err)
	}
	return m.toDomain(), nil
}

func (r *itemImageRepo) ListByItem(ctx context.Context, itemID int64) ([]*domain.ItemImage, error) {
	var rows []itemImageModel
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("sort_order, id").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list item images: %w", err)
	}
	images := make([]*domain.ItemImage, 0, len(rows))
	for i := range rows {
		images = append(images, rows[i].toDomain())
	}
	return images, nil
}

func (r *itemImageRepo) Update(ctx context.Context, img *domain.ItemImage) error {
	res := r.db.WithContext(ctx).Model(&itemImageModel{}).Where("id = ?", img.ID).Updates(map[string]any{
		"rotation":   img.Rotation,
		"is_primary": img.IsPrimary,
		"sort_order": img.SortOrder,
	})
	if res.Error != nil {
		return fmt.Errorf("update item image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

// SetPrimary flags imageID as the only primary image and points the item's
// image reference at it in one transaction.
func (r *itemImageRepo) SetPrimary(ctx context.Context, itemID int64, imageID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var img itemImageModel
		if err := tx.Where("id = ? AND item_id = ?", imageID, itemID).First(&img).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrImageNotFound
			}
			return fmt.Errorf("get primary candidate: %w", err)
		}

		err := tx.Model(&itemImageModel{}).Where("item_id = ?", itemID).
			Update("is_primary", gorm.Expr("id = ?", imageID)).Error
		if err != nil {
			return fmt.Errorf("set primary image: %w", err)
		}

		res := tx.Model(&itemModel{}).Where("id = ?", itemID).Update("image_filename", img.Filename)
		if res.Error != nil {
			return fmt.Errorf("set item image: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrItemNotFound
		}
		return nil
	})
}

func (r *itemImageRepo) Reorder(ctx context.Context, itemID int64, imageIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range imageIDs {
			res := tx.Model(&itemImageModel{}).Where("id = ? AND item_id = ?", id, itemID).Update("sort_order", i)
			if res.Error != nil {
				return fmt.Errorf("reorder item image %d: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				return domain.ErrIdentityMismatch
			}
		}
		return nil
	})
}

func (r *itemImageRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&itemImageModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete item image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrImageNotFound
	}
	return nil
}

type documentRepo struct {
	db *gorm.DB
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	m := documentFromDomain(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	doc.ID = m.ID
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	var m documentModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return m.toDomain(), nil
}

func (r *documentRepo) ListByItem(ctx context.Context, itemID int64) ([]*domain.Document, error) {
	var rows []documentModel
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("uploaded_at DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs := make([]*domain.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i].toDomain())
	}
	return docs, nil
}

func (r *documentRepo) UpdateMetadata(ctx context.Context, id int64, documentType, description string) error {
	res := r.db.WithContext(ctx).Model(&documentModel{}).Where("id = ?", id).Updates(map[string]any{
		"document_type": documentType,
		"description":   description,
	})
	if res.Error != nil {
		return fmt.Errorf("update document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&documentModel{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
