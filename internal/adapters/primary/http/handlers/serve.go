package handlers

import (
	"io"
	"mime"
	"net/http"
	"time"

	"inventory-media-service/internal/core/ports/output"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// serveFile streams f with Range and conditional request support. An empty
// contentType is detected from the leading bytes, since stored image names
// keep the uploaded extension even after JPEG conversion.
func serveFile(c *gin.Context, f ports.ReadSeekCloser, name, contentType string, modTime time.Time, attachment bool) {
	defer f.Close()

	if contentType == "" {
		detected, err := mimetype.DetectReader(f)
		if err == nil {
			contentType = detected.String()
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			log.WithError(err).WithField("name", name).Error("rewind file for serving")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
			return
		}
	}
	if contentType != "" {
		c.Header("Content-Type", contentType)
	}
	if attachment {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	http.ServeContent(c.Writer, c.Request, name, modTime, f)
}
