package handlers

import (
	"errors"
	"net/http"

	"inventory-media-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func mapDomainError(c *gin.Context, err error) {
	var ve *domain.ValidationError

	switch {
	// Validation errors carry the violated constraint
	case errors.As(err, &ve):
		status := http.StatusBadRequest
		if ve.Limit > 0 {
			status = http.StatusRequestEntityTooLarge
		}
		body := gin.H{"error": ve.Error()}
		if ve.Limit > 0 {
			body["limit"] = ve.Limit
			body["limit_display"] = domain.FormatSize(ve.Limit)
		}
		if ve.MaxLength > 0 {
			body["max_length"] = ve.MaxLength
		}
		if len(ve.Allowed) > 0 {
			body["allowed"] = ve.Allowed
		}
		c.JSON(status, body)

	// Not found errors
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrImageNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrQRCodeNotAssigned),
		errors.Is(err, domain.ErrQRCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrQRCodeConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request errors
	case errors.Is(err, domain.ErrIdentityMismatch),
		errors.Is(err, domain.ErrInvalidRotation),
		errors.Is(err, domain.ErrInvalidReorder),
		errors.Is(err, domain.ErrInvalidSizeClass):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Storage failures never leak paths to clients
	case errors.Is(err, domain.ErrStorage):
		log.WithError(err).Error("storage failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})

	default:
		log.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
