package domain

// Upload is the transient payload of one request. Any transport (multipart
// form, local file, test fixture) can provide it.
type Upload interface {
	Name() string
	DeclaredType() string
	Bytes() ([]byte, error)
}

type ArtifactKind string

const (
	ArtifactKindImage    ArtifactKind = "image"
	ArtifactKindDocument ArtifactKind = "document"
	ArtifactKindQRLabel  ArtifactKind = "qr_label"
)

// MemoryUpload is an Upload backed by an in-memory buffer.
type MemoryUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u MemoryUpload) Name() string           { return u.Filename }
func (u MemoryUpload) DeclaredType() string   { return u.ContentType }
func (u MemoryUpload) Bytes() ([]byte, error) { return u.Data, nil }
