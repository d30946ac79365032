package sqlite

import (
	"time"

	"inventory-media-service/internal/core/domain"
)

type itemModel struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	Name          string  `gorm:"type:text;not null"`
	ImageFilename *string `gorm:"type:text"`
	QRCode        *string `gorm:"column:qr_code;type:text;uniqueIndex"`
}

func (itemModel) TableName() string { return "items" }

func (m *itemModel) toDomain() *domain.Item {
	return &domain.Item{ID: m.ID, Name: m.Name, ImageFilename: m.ImageFilename, QRCode: m.QRCode}
}

type itemImageModel struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	ItemID           int64  `gorm:"not null;index:idx_item_images_item,priority:1"`
	Filename         string `gorm:"type:text;not null"`
	OriginalFilename string `gorm:"type:text;not null"`
	FileSize         int64
	Width            int
	Height           int
	Orientation      string `gorm:"type:text"`
	Optimized        bool
	Rotation         int
	IsPrimary        bool
	SortOrder        int `gorm:"index:idx_item_images_item,priority:2"`
	CreatedAt        time.Time
}

func (itemImageModel) TableName() string { return "item_images" }

func imageFromDomain(img *domain.ItemImage) *itemImageModel {
	return &itemImageModel{
		ID:               img.ID,
		ItemID:           img.ItemID,
		Filename:         img.Filename,
		OriginalFilename: img.OriginalFilename,
		FileSize:         img.FileSize,
		Width:            img.Width,
		Height:           img.Height,
		Orientation:      string(img.Orientation),
		Optimized:        img.Optimized,
		Rotation:         img.Rotation,
		IsPrimary:        img.IsPrimary,
		SortOrder:        img.SortOrder,
		CreatedAt:        img.CreatedAt,
	}
}

func (m *itemImageModel) toDomain() *domain.ItemImage {
	return &domain.ItemImage{
		ID:               m.ID,
		ItemID:           m.ItemID,
		Filename:         m.Filename,
		OriginalFilename: m.OriginalFilename,
		FileSize:         m.FileSize,
		Width:            m.Width,
		Height:           m.Height,
		Orientation:      domain.Orientation(m.Orientation),
		Optimized:        m.Optimized,
		Rotation:         m.Rotation,
		IsPrimary:        m.IsPrimary,
		SortOrder:        m.SortOrder,
		CreatedAt:        m.CreatedAt,
	}
}

type documentModel struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	ItemID           int64  `gorm:"not null;index"`
	Filename         string `gorm:"type:text;not null"`
	OriginalFilename string `gorm:"type:text;not null"`
	DocumentType     string `gorm:"type:varchar(50)"`
	Description      string `gorm:"type:text"`
	FileSize         int64
	MimeType         string `gorm:"type:text"`
	UploadedAt       time.Time
}

func (documentModel) TableName() string { return "documents" }

func documentFromDomain(d *domain.Document) *documentModel {
	return &documentModel{
		ID:               d.ID,
		ItemID:           d.ItemID,
		Filename:         d.Filename,
		OriginalFilename: d.OriginalFilename,
		DocumentType:     d.DocumentType,
		Description:      d.Description,
		FileSize:         d.FileSize,
		MimeType:         d.MimeType,
		UploadedAt:       d.UploadedAt,
	}
}

func (m *documentModel) toDomain() *domain.Document {
	return &domain.Document{
		ID:               m.ID,
		ItemID:           m.ItemID,
		Filename:         m.Filename,
		OriginalFilename: m.OriginalFilename,
		DocumentType:     m.DocumentType,
		Description:      m.Description,
		FileSize:         m.FileSize,
		MimeType:         m.MimeType,
		UploadedAt:       m.UploadedAt,
	}
}
