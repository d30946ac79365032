package services

import (
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	log "github.com/sirupsen/logrus"

	"inventory-media-service/internal/core/domain"
)

const (
	DefaultMaxImageBytes    int64 = 10 * 1024 * 1024
	DefaultMaxDocumentBytes int64 = 20 * 1024 * 1024
)

var imageExtensions = []string{".gif", ".jpeg", ".jpg", ".png", ".webp"}

// documentTypes maps every admitted document MIME type to the extensions it may
// arrive with. Scanned receipts are accepted as JPEG or PNG.
var documentTypes = map[string][]string{
	"application/pdf":    {".pdf"},
	"application/msword": {".doc"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
	"application/vnd.ms-excel": {".xls", ".csv"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {".xlsx"},
	"application/vnd.oasis.opendocument.text":                           {".odt"},
	"application/vnd.oasis.opendocument.spreadsheet":                    {".ods"},
	"application/rtf": {".rtf"},
	"text/rtf":        {".rtf"},
	"text/plain":      {".txt", ".csv"},
	"text/csv":        {".csv"},
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
}

// Admitted is an upload that passed validation.
type Admitted struct {
	Data             []byte
	OriginalFilename string
	Extension        string
	ContentType      string
}

// UploadValidator decides admit/reject before any persistent write.
type UploadValidator struct {
	maxImageBytes    int64
	maxDocumentBytes int64
}

func NewUploadValidator(maxImageBytes, maxDocumentBytes int64) *UploadValidator {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	if maxDocumentBytes <= 0 {
		maxDocumentBytes = DefaultMaxDocumentBytes
	}
	return &UploadValidator{maxImageBytes: maxImageBytes, maxDocumentBytes: maxDocumentBytes}
}

func (v *UploadValidator) MaxImageBytes() int64    { return v.maxImageBytes }
func (v *UploadValidator) MaxDocumentBytes() int64 { return v.maxDocumentBytes }

// ValidateImage admits anything declared as image/* with an allow-listed
// extension and a body no larger than the image ceiling.
func (v *UploadValidator) ValidateImage(u domain.Upload) (*Admitted, error) {
	declared := baseMediaType(u.DeclaredType())
	if !strings.HasPrefix(declared, "image/") {
		return nil, reject(domain.ArtifactKindImage, "unsupported content type "+quoteOrEmpty(u.DeclaredType()), 0, []string{"image/*"})
	}

	ext := NormalizeExt(u.Name())
	if !contains(imageExtensions, ext) {
		return nil, reject(domain.ArtifactKindImage, "unsupported file extension "+quoteOrEmpty(ext), 0, imageExtensions)
	}

	data, err := u.Bytes()
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > v.maxImageBytes {
		return nil, reject(domain.ArtifactKindImage, "file is too large: "+domain.FormatSize(int64(len(data))), v.maxImageBytes, nil)
	}

	return &Admitted{Data: data, OriginalFilename: u.Name(), Extension: ext, ContentType: declared}, nil
}

// ValidateDocument checks the declared type against the MIME table and the
// extension against the entries of that type. An empty or generic declared
// type is resolved by sniffing the body once the size check has passed.
func (v *UploadValidator) ValidateDocument(u domain.Upload) (*Admitted, error) {
	declared := baseMediaType(u.DeclaredType())
	needsSniff := declared == "" || declared == "application/octet-stream"

	if !needsSniff {
		if _, ok := documentTypes[declared]; !ok {
			return nil, reject(domain.ArtifactKindDocument, "unsupported content type "+quoteOrEmpty(declared), 0, documentTypeNames())
		}
	}

	ext := NormalizeExt(u.Name())
	if !contains(documentExtensions(), ext) {
		return nil, reject(domain.ArtifactKindDocument, "unsupported file extension "+quoteOrEmpty(ext), 0, documentExtensions())
	}

	data, err := u.Bytes()
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > v.maxDocumentBytes {
		return nil, reject(domain.ArtifactKindDocument, "file is too large: "+domain.FormatSize(int64(len(data))), v.maxDocumentBytes, nil)
	}

	contentType := declared
	if needsSniff {
		contentType = sniffDocumentType(data, ext)
		log.WithFields(log.Fields{
			"filename": u.Name(),
			"declared": u.DeclaredType(),
			"detected": contentType,
		}).Debug("resolved generic document content type")
		if _, ok := documentTypes[contentType]; !ok {
			return nil, reject(domain.ArtifactKindDocument, "unsupported content type "+quoteOrEmpty(contentType), 0, documentTypeNames())
		}
	}

	if !contains(documentTypes[contentType], ext) {
		return nil, reject(domain.ArtifactKindDocument, "extension "+quoteOrEmpty(ext)+" does not match content type "+contentType, 0, documentTypes[contentType])
	}

	return &Admitted{Data: data, OriginalFilename: u.Name(), Extension: ext, ContentType: contentType}, nil
}

// sniffDocumentType walks the detected type's parents until one is in the
// table. Plain text cannot be told apart from CSV by content, so the
// extension decides in that case.
func sniffDocumentType(data []byte, ext string) string {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		base := baseMediaType(m.String())
		if _, ok := documentTypes[base]; ok {
			if base == "text/plain" && ext == ".csv" {
				return "text/csv"
			}
			return base
		}
	}
	return "application/octet-stream"
}

// NormalizeExt lower-cases the extension of filename, keeping the dot.
func NormalizeExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func baseMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mt
}

func reject(kind domain.ArtifactKind, reason string, limit int64, allowed []string) error {
	log.WithFields(log.Fields{"kind": kind, "reason": reason}).Warn("upload rejected")
	return &domain.ValidationError{Kind: kind, Reason: reason, Limit: limit, Allowed: allowed}
}

func documentExtensions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, exts := range documentTypes {
		for _, e := range exts {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Strings(out)
	return out
}

func documentTypeNames() []string {
	out := make([]string, 0, len(documentTypes))
	for t := range documentTypes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + s + `"`
}
