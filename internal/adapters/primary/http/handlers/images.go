package handlers

import (
	"net/http"
	"strconv"

	"inventory-media-service/internal/adapters/primary/http/dto"
	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListImages(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	images, err := h.imageSvc.List(c.Request.Context(), itemID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListItemImagesResponse(images))
}

func (h *Handler) UploadImage(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	upload, ok := formUpload(c, h.validator.MaxImageBytes())
	if !ok {
		return
	}

	var opts services.ImageUploadOptions
	if v := c.PostForm("is_primary"); v != "" {
		isPrimary, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_primary"})
			return
		}
		opts.IsPrimary = isPrimary
	}
	if v := c.PostForm("rotation"); v != "" {
		rotation, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRotation.Error()})
			return
		}
		opts.Rotation = rotation
	}

	img, stored, err := h.imageSvc.Upload(c.Request.Context(), itemID, upload, opts)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToImageUploadResponse(img, stored))
}

func (h *Handler) RotateImage(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "image_id")
	if !ok {
		return
	}
	rotation, err := strconv.Atoi(c.Query("rotation"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRotation.Error()})
		return
	}

	img, err := h.imageSvc.Rotate(c.Request.Context(), itemID, imageID, rotation)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemImageResponse(img))
}

func (h *Handler) SetPrimaryImage(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "image_id")
	if !ok {
		return
	}

	img, err := h.imageSvc.SetPrimary(c.Request.Context(), itemID, imageID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToItemImageResponse(img))
}

func (h *Handler) ReorderImages(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	var req dto.ReorderImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images, err := h.imageSvc.Reorder(c.Request.Context(), itemID, req.ImageIDs)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListItemImagesResponse(images))
}

func (h *Handler) DeleteImage(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	imageID, ok := parseID(c, "image_id")
	if !ok {
		return
	}

	if err := h.imageSvc.Delete(c.Request.Context(), itemID, imageID); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ServeImage streams a main artifact, or its thumbnail with ?thumbnail=true.
func (h *Handler) ServeImage(c *gin.Context) {
	filename := c.Param("filename")
	thumbnail := c.Query("thumbnail") == "true"

	f, modTime, err := h.imageSvc.Open(filename, thumbnail)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	serveFile(c, f, filename, "", modTime, false)
}
