package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"inventory-media-service/internal/core/domain"
)

func TestToItemImageResponse_ThumbnailOnlyWhenOptimized(t *testing.T) {
	img := &domain.ItemImage{ID: 1, ItemID: 2, Filename: "abc.png", Optimized: true, CreatedAt: time.Unix(0, 0).UTC()}

	resp := ToItemImageResponse(img)
	assert.Equal(t, "/api/images/abc.png", resp.URL)
	assert.Equal(t, "/api/images/abc.png?thumbnail=true", resp.ThumbnailURL)
	assert.Equal(t, "1970-01-01T00:00:00Z", resp.CreatedAt)

	img.Optimized = false
	assert.Empty(t, ToItemImageResponse(img).ThumbnailURL)
}

func TestToDocumentResponse(t *testing.T) {
	doc := &domain.Document{ID: 9, Filename: "abc.xlsx", FileSize: 1536, MimeType: "application/vnd.ms-excel"}

	resp := ToDocumentResponse(doc)
	assert.Equal(t, "Excel", resp.Kind)
	assert.Equal(t, "1.5 KB", resp.FileSizeDisplay)
	assert.Equal(t, "/api/documents/9/download", resp.DownloadURL)
}

func TestToQRLabelResponse(t *testing.T) {
	resp := ToQRLabelResponse(&domain.QRLabel{ItemID: 7, QRCode: "ITM-ABCD1234", Size: domain.SizeLarge, Payload: "ITEM-7-ITM-ABCD1234"})
	assert.Equal(t, "/api/qr/download/7/large", resp.DownloadURL)
	assert.Equal(t, "large", resp.Size)
}
