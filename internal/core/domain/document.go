package domain

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	MaxDocumentTypeLength    = 50
	MaxDocumentDescripLength = 2000
)

// Document is a verbatim attachment such as a warranty or an invoice.
type Document struct {
	ID               int64
	ItemID           int64
	Filename         string
	OriginalFilename string
	DocumentType     string
	Description      string
	FileSize         int64
	MimeType         string
	UploadedAt       time.Time
}

var documentKinds = map[string]string{
	".pdf":  "PDF",
	".doc":  "Word",
	".docx": "Word",
	".txt":  "Text",
	".xls":  "Excel",
	".xlsx": "Excel",
	".csv":  "CSV",
	".odt":  "OpenDocument",
	".ods":  "OpenDocument",
	".rtf":  "RTF",
	".jpg":  "Image",
	".jpeg": "Image",
	".png":  "Image",
}

// Kind returns a human label derived from the stored extension.
func (d *Document) Kind() string {
	ext := strings.ToLower(filepath.Ext(d.Filename))
	if kind, ok := documentKinds[ext]; ok {
		return kind
	}
	if ext == "" {
		return "unknown"
	}
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}
