package services

import (
	"bytes"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
)

// DocumentStore writes admitted documents byte for byte. The owning item must
// have been checked by the caller.
type DocumentStore struct {
	store    ports.ArtifactStore
	observer ports.MediaObserver
}

func NewDocumentStore(store ports.ArtifactStore, observer ports.MediaObserver) *DocumentStore {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &DocumentStore{store: store, observer: observer}
}

func (d *DocumentStore) Save(itemID int64, admitted *Admitted, filename, documentType, description string) (*domain.Document, error) {
	start := time.Now()
	path := d.store.DocumentPath(filename)
	size, err := d.store.WriteAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(admitted.Data))
		return err
	})
	d.observer.RecordDocument(time.Since(start), size, err)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"item_id":  itemID,
		"filename": filename,
		"original": admitted.OriginalFilename,
		"size":     size,
		"mime":     admitted.ContentType,
	}).Info("document stored")

	return &domain.Document{
		ItemID:           itemID,
		Filename:         filename,
		OriginalFilename: admitted.OriginalFilename,
		DocumentType:     documentType,
		Description:      description,
		FileSize:         size,
		MimeType:         admitted.ContentType,
	}, nil
}

// Remove tolerates an already missing file.
func (d *DocumentStore) Remove(filename string) error {
	start := time.Now()
	removed, err := d.store.Remove(d.store.DocumentPath(filename))
	d.observer.RecordDelete(string(domain.ArtifactKindDocument), time.Since(start), err)
	if err == nil && !removed {
		log.WithField("filename", filename).Debug("document file already absent")
	}
	return err
}
