package services

import (
	"strings"

	"github.com/google/uuid"
)

// FilenameAllocator produces storage names of the form <12 hex><ext>.
// Uniqueness is probabilistic; existing files are not checked.
type FilenameAllocator struct {
	newID func() string
}

func NewFilenameAllocator() *FilenameAllocator {
	return &FilenameAllocator{newID: func() string { return uuid.NewString() }}
}

// Allocate keeps the lower-cased extension of the original name so the stored
// kind matches what the user uploaded.
func (a *FilenameAllocator) Allocate(originalFilename string) string {
	hex := strings.ReplaceAll(a.newID(), "-", "")
	return hex[:12] + NormalizeExt(originalFilename)
}

// NewQRCodeID returns an identity like ITM-1A2B3C4D.
func (a *FilenameAllocator) NewQRCodeID() string {
	hex := strings.ReplaceAll(a.newID(), "-", "")
	return "ITM-" + strings.ToUpper(hex[:8])
}
