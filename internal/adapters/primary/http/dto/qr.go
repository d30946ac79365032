package dto

import (
	"fmt"

	"inventory-media-service/internal/core/domain"
)

type QRLabelResponse struct {
	ItemID      int64  `json:"item_id"`
	QRCode      string `json:"qr_code"`
	Size        string `json:"size"`
	Payload     string `json:"payload"`
	Filename    string `json:"filename"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	DownloadURL string `json:"download_url"`
}

type QRCodeResponse struct {
	ItemID int64  `json:"item_id"`
	QRCode string `json:"qr_code"`
}

type ScanResponse struct {
	ItemID        int64   `json:"item_id"`
	Name          string  `json:"name"`
	QRCode        string  `json:"qr_code"`
	ImageFilename *string `json:"image_filename"`
}

func ToQRLabelResponse(l *domain.QRLabel) QRLabelResponse {
	return QRLabelResponse{
		ItemID:      l.ItemID,
		QRCode:      l.QRCode,
		Size:        string(l.Size),
		Payload:     l.Payload,
		Filename:    l.Filename,
		Width:       l.Width,
		Height:      l.Height,
		DownloadURL: fmt.Sprintf("/api/qr/download/%d/%s", l.ItemID, l.Size),
	}
}

func ToScanResponse(item *domain.Item) ScanResponse {
	resp := ScanResponse{ItemID: item.ID, Name: item.Name, ImageFilename: item.ImageFilename}
	if item.QRCode != nil {
		resp.QRCode = *item.QRCode
	}
	return resp
}
