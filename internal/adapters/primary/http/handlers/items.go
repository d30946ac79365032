package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PurgeItem deletes the item row and every artifact that belongs to it. Files
// that could not be removed are reported as a storage failure after the row is
// already gone.
func (h *Handler) PurgeItem(c *gin.Context) {
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	if err := h.storage.PurgeItem(c.Request.Context(), itemID); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
