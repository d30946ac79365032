package services

import (
	"context"
	"errors"
	"os"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
)

type DocumentService struct {
	items     ports.ItemRepository
	documents ports.DocumentRepository
	validator *UploadValidator
	allocator *FilenameAllocator
	docStore  *DocumentStore
	store     ports.ArtifactStore
}

func NewDocumentService(
	items ports.ItemRepository,
	documents ports.DocumentRepository,
	validator *UploadValidator,
	allocator *FilenameAllocator,
	docStore *DocumentStore,
	store ports.ArtifactStore,
) *DocumentService {
	return &DocumentService{
		items:     items,
		documents: documents,
		validator: validator,
		allocator: allocator,
		docStore:  docStore,
		store:     store,
	}
}

func (s *DocumentService) Upload(ctx context.Context, itemID int64, upload domain.Upload, documentType, description string) (*domain.Document, error) {
	if err := validateDocumentMetadata(documentType, description); err != nil {
		return nil, err
	}
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	admitted, err := s.validator.ValidateDocument(upload)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	filename := s.allocator.Allocate(admitted.OriginalFilename)
	doc, err := s.docStore.Save(itemID, admitted, filename, documentType, description)
	if err != nil {
		return nil, err
	}
	doc.UploadedAt = time.Now().UTC()

	if err := s.documents.Create(ctx, doc); err != nil {
		if rmErr := s.docStore.Remove(filename); rmErr != nil {
			log.WithError(rmErr).WithField("filename", filename).Error("failed to clean up document after insert failure")
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, itemID int64) ([]*domain.Document, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.documents.ListByItem(ctx, itemID)
}

func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	return s.documents.GetByID(ctx, id)
}

// UpdateMetadata changes only the fields that are non-nil.
func (s *DocumentService) UpdateMetadata(ctx context.Context, id int64, documentType, description *string) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if documentType != nil {
		doc.DocumentType = *documentType
	}
	if description != nil {
		doc.Description = *description
	}
	if err := validateDocumentMetadata(doc.DocumentType, doc.Description); err != nil {
		return nil, err
	}
	if err := s.documents.UpdateMetadata(ctx, id, doc.DocumentType, doc.Description); err != nil {
		return nil, err
	}
	return doc, nil
}

// Open returns the stored bytes with the row needed to rebuild the original
// Content-Disposition.
func (s *DocumentService) Open(ctx context.Context, id int64) (*domain.Document, ports.ReadSeekCloser, time.Time, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	f, modTime, err := s.store.Open(s.store.DocumentPath(doc.Filename))
	if errors.Is(err, os.ErrNotExist) {
		log.WithFields(log.Fields{"document_id": id, "filename": doc.Filename}).Warn("document row without file")
		return nil, nil, time.Time{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return doc, f, modTime, nil
}

func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.documents.Delete(ctx, id); err != nil {
		return err
	}
	return s.docStore.Remove(doc.Filename)
}

func validateDocumentMetadata(documentType, description string) error {
	if utf8.RuneCountInString(documentType) > domain.MaxDocumentTypeLength {
		return &domain.ValidationError{
			Kind:      domain.ArtifactKindDocument,
			Reason:    "document type too long",
			MaxLength: domain.MaxDocumentTypeLength,
		}
	}
	if utf8.RuneCountInString(description) > domain.MaxDocumentDescripLength {
		return &domain.ValidationError{
			Kind:      domain.ArtifactKindDocument,
			Reason:    "description too long",
			MaxLength: domain.MaxDocumentDescripLength,
		}
	}
	return nil
}
