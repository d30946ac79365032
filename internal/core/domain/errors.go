package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// Item Errors
// ============================================================================

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrIdentityMismatch = errors.New("artifact does not belong to this item")
)

// ============================================================================
// Image Errors
// ============================================================================

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrInvalidRotation = errors.New("rotation must be one of 0, 90, 180, 270")
	ErrInvalidReorder  = errors.New("reorder list must contain every image of the item exactly once")
)

// ============================================================================
// Document Errors
// ============================================================================

var (
	ErrDocumentNotFound = errors.New("document not found")
)

// ============================================================================
// QR Code Errors
// ============================================================================

var (
	ErrQRCodeNotAssigned = errors.New("item has no QR code")
	ErrQRCodeNotFound    = errors.New("no item with this QR code")
	ErrInvalidSizeClass  = errors.New("size must be one of small, medium, large")
	ErrQRCodeConflict    = errors.New("QR code already assigned to another item")
)

// ============================================================================
// Upload / Storage Errors
// ============================================================================

var (
	ErrValidation = errors.New("upload rejected")
	ErrStorage    = errors.New("storage failure")
	ErrTooLarge   = errors.New("payload too large")
)

// ValidationError is returned when an upload is refused before anything is
// written. Limit (bytes), MaxLength (characters) and Allowed carry the
// violated constraint for client display.
type ValidationError struct {
	Kind      ArtifactKind
	Reason    string
	Limit     int64
	MaxLength int
	Allowed   []string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Limit > 0:
		return fmt.Sprintf("%s: %s (limit %s)", e.Kind, e.Reason, FormatSize(e.Limit))
	case e.MaxLength > 0:
		return fmt.Sprintf("%s: %s (max %d characters)", e.Kind, e.Reason, e.MaxLength)
	case len(e.Allowed) > 0:
		return fmt.Sprintf("%s: %s (allowed: %s)", e.Kind, e.Reason, strings.Join(e.Allowed, ", "))
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return target == ErrTooLarge && e.Limit > 0
}

// StorageError wraps a filesystem failure during a required write or remove.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError returns nil when err is nil.
func NewStorageError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Path: path, Err: err}
}

// FormatSize renders a byte count the way the upload forms display it.
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}
