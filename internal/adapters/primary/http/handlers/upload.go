package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// multipartUpload adapts a multipart file part to domain.Upload. Reading stops
// one byte past limit so oversized bodies are still detected as such.
type multipartUpload struct {
	header *multipart.FileHeader
	limit  int64
}

func (u *multipartUpload) Name() string { return u.header.Filename }

func (u *multipartUpload) DeclaredType() string { return u.header.Header.Get("Content-Type") }

func (u *multipartUpload) Bytes() ([]byte, error) {
	f, err := u.header.Open()
	if err != nil {
		return nil, fmt.Errorf("open multipart file: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, u.limit+1))
}

// formUpload reads the "file" part. limit is the ceiling of the artifact kind
// being uploaded.
func formUpload(c *gin.Context, limit int64) (*multipartUpload, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return nil, false
	}
	return &multipartUpload{header: header, limit: limit}, true
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}
