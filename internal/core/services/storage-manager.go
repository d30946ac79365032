package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
)

// StorageManager keeps the files on disk and the references recorded on the
// item (primary image, QR identity, document rows) in step.
type StorageManager struct {
	items     ports.ItemRepository
	images    ports.ItemImageRepository
	documents ports.DocumentRepository
	store     ports.ArtifactStore
	labels    *QRLabelRenderer
	observer  ports.MediaObserver
}

func NewStorageManager(
	items ports.ItemRepository,
	images ports.ItemImageRepository,
	documents ports.DocumentRepository,
	store ports.ArtifactStore,
	labels *QRLabelRenderer,
	observer ports.MediaObserver,
) *StorageManager {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &StorageManager{
		items:     items,
		images:    images,
		documents: documents,
		store:     store,
		labels:    labels,
		observer:  observer,
	}
}

// AttachImage makes img the primary reference when asked to, or when the item
// has none yet. The repository moves the primary flag and the item's
// reference together.
func (m *StorageManager) AttachImage(ctx context.Context, item *domain.Item, img *domain.ItemImage, makePrimary bool) error {
	if !makePrimary && item.HasImage() {
		return nil
	}
	if err := m.images.SetPrimary(ctx, item.ID, img.ID); err != nil {
		return err
	}
	filename := img.Filename
	img.IsPrimary = true
	item.ImageFilename = &filename
	return nil
}

// DetachImage deletes the gallery row and both files, then reassigns the
// primary reference to the first remaining image or clears it.
func (m *StorageManager) DetachImage(ctx context.Context, item *domain.Item, img *domain.ItemImage) error {
	if err := m.images.Delete(ctx, img.ID); err != nil {
		return err
	}
	fileErr := m.RemoveImageFiles(img.Filename)

	referenced := item.HasImage() && *item.ImageFilename == img.Filename
	if !img.IsPrimary && !referenced {
		return fileErr
	}

	remaining, err := m.images.ListByItem(ctx, item.ID)
	if err != nil {
		return errors.Join(fileErr, err)
	}
	if len(remaining) == 0 {
		item.ImageFilename = nil
		return errors.Join(fileErr, m.items.SetImageFilename(ctx, item.ID, nil))
	}

	next := remaining[0]
	log.WithFields(log.Fields{
		"item_id":  item.ID,
		"image_id": next.ID,
		"filename": next.Filename,
	}).Info("primary image reassigned")
	return errors.Join(fileErr, m.AttachImage(ctx, item, next, true))
}

// RemoveImageFiles deletes the main artifact and its thumbnail. Files that are
// already gone are not an error.
func (m *StorageManager) RemoveImageFiles(filename string) error {
	start := time.Now()
	var errs []error
	for _, path := range []string{m.store.ImagePath(filename), m.store.ThumbnailPath(filename)} {
		removed, err := m.store.Remove(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !removed {
			log.WithField("path", path).Debug("image file already absent")
		}
	}
	err := errors.Join(errs...)
	m.observer.RecordDelete(string(domain.ArtifactKindImage), time.Since(start), err)
	return err
}

// PurgeItem deletes the item row, whose image and document rows cascade, and
// then every file the item owned.
func (m *StorageManager) PurgeItem(ctx context.Context, itemID int64) error {
	item, err := m.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	images, err := m.images.ListByItem(ctx, itemID)
	if err != nil {
		return err
	}
	docs, err := m.documents.ListByItem(ctx, itemID)
	if err != nil {
		return err
	}

	if err := m.items.Delete(ctx, itemID); err != nil {
		return err
	}

	var errs []error
	seen := make(map[string]bool, len(images)+1)
	for _, img := range images {
		seen[img.Filename] = true
		errs = append(errs, m.RemoveImageFiles(img.Filename))
	}
	if item.HasImage() && !seen[*item.ImageFilename] {
		errs = append(errs, m.RemoveImageFiles(*item.ImageFilename))
	}
	for _, doc := range docs {
		start := time.Now()
		_, err := m.store.Remove(m.store.DocumentPath(doc.Filename))
		m.observer.RecordDelete(string(domain.ArtifactKindDocument), time.Since(start), err)
		errs = append(errs, err)
	}
	if item.HasQRCode() {
		_, err := m.labels.RemoveLabels(*item.QRCode)
		errs = append(errs, err)
	}

	err = errors.Join(errs...)
	entry := log.WithFields(log.Fields{
		"item_id":   itemID,
		"images":    len(images),
		"documents": len(docs),
	})
	if err != nil {
		entry.WithError(err).Error("item purged with leftover files")
	} else {
		entry.Info("item purged")
	}
	return err
}
