package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type SizeClass string

const (
	SizeSmall  SizeClass = "small"
	SizeMedium SizeClass = "medium"
	SizeLarge  SizeClass = "large"
)

// AllSizeClasses lists every label preset; cleanup iterates over all of them.
var AllSizeClasses = []SizeClass{SizeSmall, SizeMedium, SizeLarge}

// ParseSizeClass accepts the exact lower-case preset names.
func ParseSizeClass(s string) (SizeClass, error) {
	switch SizeClass(s) {
	case SizeSmall, SizeMedium, SizeLarge:
		return SizeClass(s), nil
	}
	return "", ErrInvalidSizeClass
}

// QRPayload is the string encoded inside every label of an item.
func QRPayload(itemID int64, qrCode string) string {
	return fmt.Sprintf("ITEM-%d-%s", itemID, qrCode)
}

// ParseQRPayload splits a scanned payload back into item id and QR identity.
func ParseQRPayload(payload string) (int64, string, bool) {
	rest, ok := strings.CutPrefix(payload, "ITEM-")
	if !ok {
		return 0, "", false
	}
	idPart, code, ok := strings.Cut(rest, "-")
	if !ok || code == "" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, code, true
}

// LabelFilename is derivable from the QR identity alone.
func LabelFilename(size SizeClass, qrCode string) string {
	return fmt.Sprintf("label_%s_%s.png", size, qrCode)
}

// QRLabel describes a rendered label file.
type QRLabel struct {
	ItemID   int64
	QRCode   string
	Size     SizeClass
	Payload  string
	Filename string
	Width    int
	Height   int
	Rendered bool
}
