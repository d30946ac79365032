package handlers

import (
	"net/http"

	"inventory-media-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListDocuments(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	docs, err := h.documentSvc.List(c.Request.Context(), itemID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListDocumentsResponse(docs))
}

func (h *Handler) UploadDocument(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	upload, ok := formUpload(c, h.validator.MaxDocumentBytes())
	if !ok {
		return
	}

	doc, err := h.documentSvc.Upload(c.Request.Context(), itemID, upload, c.PostForm("document_type"), c.PostForm("description"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

func (h *Handler) GetDocument(c *gin.Context) {
	id, ok := parseID(c, "document_id")
	if !ok {
		return
	}

	doc, err := h.documentSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// DownloadDocument returns the stored bytes under the original filename.
func (h *Handler) DownloadDocument(c *gin.Context) {
	id, ok := parseID(c, "document_id")
	if !ok {
		return
	}

	doc, f, modTime, err := h.documentSvc.Open(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	serveFile(c, f, doc.OriginalFilename, doc.MimeType, modTime, true)
}

func (h *Handler) UpdateDocument(c *gin.Context) {
	id, ok := parseID(c, "document_id")
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.documentSvc.UpdateMetadata(c.Request.Context(), id, req.DocumentType, req.Description)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id, ok := parseID(c, "document_id")
	if !ok {
		return
	}

	if err := h.documentSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
