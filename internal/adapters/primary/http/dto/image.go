package dto

import (
	"fmt"
	"time"

	"inventory-media-service/internal/core/domain"
)

type ItemImageResponse struct {
	ID               int64  `json:"id"`
	ItemID           int64  `json:"item_id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	FileSize         int64  `json:"file_size"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	Orientation      string `json:"orientation,omitempty"`
	Optimized        bool   `json:"optimized"`
	Rotation         int    `json:"rotation"`
	IsPrimary        bool   `json:"is_primary"`
	SortOrder        int    `json:"sort_order"`
	CreatedAt        string `json:"created_at"`
	URL              string `json:"url"`
	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
}

type ImageUploadResponse struct {
	ItemImageResponse
	Size           int64  `json:"size"`
	ContentType    string `json:"content_type"`
	Outcome        string `json:"outcome"`
	OriginalWidth  int    `json:"original_width,omitempty"`
	OriginalHeight int    `json:"original_height,omitempty"`
}

type ListItemImagesResponse struct {
	Items []ItemImageResponse `json:"items"`
	Total int                 `json:"total"`
}

type ReorderImagesRequest struct {
	ImageIDs []int64 `json:"image_ids" binding:"required"`
}

func ToItemImageResponse(img *domain.ItemImage) ItemImageResponse {
	resp := ItemImageResponse{
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
		CreatedAt:        img.CreatedAt.Format(time.RFC3339),
		URL:              ImageURL(img.Filename, false),
	}
	if img.Optimized {
		resp.ThumbnailURL = ImageURL(img.Filename, true)
	}
	return resp
}

func ToImageUploadResponse(img *domain.ItemImage, stored *domain.StoredImage) ImageUploadResponse {
	return ImageUploadResponse{
		ItemImageResponse: ToItemImageResponse(img),
		Size:              stored.Size,
		ContentType:       stored.ContentType,
		Outcome:           string(stored.Outcome),
		OriginalWidth:     stored.OriginalWidth,
		OriginalHeight:    stored.OriginalHeight,
	}
}

func ToListItemImagesResponse(images []*domain.ItemImage) ListItemImagesResponse {
	items := make([]ItemImageResponse, 0, len(images))
	for _, img := range images {
		items = append(items, ToItemImageResponse(img))
	}
	return ListItemImagesResponse{Items: items, Total: len(items)}
}

func ImageURL(filename string, thumbnail bool) string {
	if thumbnail {
		return fmt.Sprintf("/api/images/%s?thumbnail=true", filename)
	}
	return "/api/images/" + filename
}
