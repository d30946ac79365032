package dto

import (
	"fmt"
	"time"

	"inventory-media-service/internal/core/domain"
)

type UpdateDocumentRequest struct {
	DocumentType *string `json:"document_type" binding:"omitempty,max=50"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
}

type DocumentResponse struct {
	ID               int64  `json:"id"`
	ItemID           int64  `json:"item_id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	DocumentType     string `json:"document_type,omitempty"`
	Description      string `json:"description,omitempty"`
	FileSize         int64  `json:"file_size"`
	FileSizeDisplay  string `json:"file_size_display"`
	MimeType         string `json:"mime_type"`
	Kind             string `json:"kind"`
	UploadedAt       string `json:"uploaded_at"`
	DownloadURL      string `json:"download_url"`
}

type ListDocumentsResponse struct {
	Items []DocumentResponse `json:"items"`
	Total int                `json:"total"`
}

func ToDocumentResponse(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:               d.ID,
		ItemID:           d.ItemID,
		Filename:         d.Filename,
		OriginalFilename: d.OriginalFilename,
		DocumentType:     d.DocumentType,
		Description:      d.Description,
		FileSize:         d.FileSize,
		FileSizeDisplay:  domain.FormatSize(d.FileSize),
		MimeType:         d.MimeType,
		Kind:             d.Kind(),
		UploadedAt:       d.UploadedAt.Format(time.RFC3339),
		DownloadURL:      fmt.Sprintf("/api/documents/%d/download", d.ID),
	}
}

func ToListDocumentsResponse(docs []*domain.Document) ListDocumentsResponse {
	items := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, ToDocumentResponse(d))
	}
	return ListDocumentsResponse{Items: items, Total: len(items)}
}
