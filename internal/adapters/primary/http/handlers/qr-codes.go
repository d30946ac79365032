package handlers

import (
	"net/http"

	"inventory-media-service/internal/adapters/primary/http/dto"
	"inventory-media-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GenerateQRCode(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	size, err := domain.ParseSizeClass(c.DefaultQuery("size", string(domain.SizeMedium)))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	label, err := h.qrSvc.Generate(c.Request.Context(), itemID, size)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQRLabelResponse(label))
}

// DownloadQRLabel renders the label first when its file is missing.
func (h *Handler) DownloadQRLabel(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	size, err := domain.ParseSizeClass(c.Param("size"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	label, f, modTime, err := h.qrSvc.Download(c.Request.Context(), itemID, size)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	serveFile(c, f, label.Filename, "image/png", modTime, true)
}

func (h *Handler) ScanQRCode(c *gin.Context) {
	item, err := h.qrSvc.Scan(c.Request.Context(), c.Param("qr_code"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToScanResponse(item))
}

func (h *Handler) ResetQRCode(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	item, err := h.qrSvc.Reset(c.Request.Context(), itemID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QRCodeResponse{ItemID: item.ID, QRCode: *item.QRCode})
}

func (h *Handler) DeleteQRCode(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	if err := h.qrSvc.Delete(c.Request.Context(), itemID); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
