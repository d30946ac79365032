package handlers

import (
	"inventory-media-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	imageSvc    *services.ItemImageService
	documentSvc *services.DocumentService
	qrSvc       *services.QRCodeService
	storage     *services.StorageManager
	validator   *services.UploadValidator
}

func New(
	imageSvc *services.ItemImageService,
	documentSvc *services.DocumentService,
	qrSvc *services.QRCodeService,
	storage *services.StorageManager,
	validator *services.UploadValidator,
) *Handler {
	return &Handler{
		imageSvc:    imageSvc,
		documentSvc: documentSvc,
		qrSvc:       qrSvc,
		storage:     storage,
		validator:   validator,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Item images
	r.GET("/items/:item_id/images", h.ListImages)
	r.POST("/items/:item_id/images", h.UploadImage)
	r.PUT("/items/:item_id/images/reorder", h.ReorderImages)
	r.PUT("/items/:item_id/images/:image_id/rotate", h.RotateImage)
	r.PUT("/items/:item_id/images/:image_id/primary", h.SetPrimaryImage)
	r.DELETE("/items/:item_id/images/:image_id", h.DeleteImage)
	r.GET("/images/:filename", h.ServeImage)

	// Documents
	r.GET("/items/:item_id/documents", h.ListDocuments)
	r.POST("/items/:item_id/documents", h.UploadDocument)
	r.GET("/documents/:document_id", h.GetDocument)
	r.GET("/documents/:document_id/download", h.DownloadDocument)
	r.PUT("/documents/:document_id", h.UpdateDocument)
	r.DELETE("/documents/:document_id", h.DeleteDocument)

	// QR codes
	r.POST("/qr/generate/:item_id", h.GenerateQRCode)
	r.GET("/qr/download/:item_id/:size", h.DownloadQRLabel)
	r.GET("/qr/scan/:qr_code", h.ScanQRCode)
	r.POST("/qr/:item_id/reset", h.ResetQRCode)
	r.DELETE("/qr/:item_id", h.DeleteQRCode)

	// Item media lifecycle
	r.DELETE("/items/:item_id/media", h.PurgeItem)
}
