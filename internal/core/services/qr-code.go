package services

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
	"inventory-media-service/internal/core/worker"
)

type QRCodeService struct {
	items     ports.ItemRepository
	renderer  *QRLabelRenderer
	allocator *FilenameAllocator
	pool      *worker.Pool
	inflight  singleflight.Group
}

func NewQRCodeService(items ports.ItemRepository, renderer *QRLabelRenderer, allocator *FilenameAllocator, pool *worker.Pool) *QRCodeService {
	return &QRCodeService{items: items, renderer: renderer, allocator: allocator, pool: pool}
}

// Generate assigns an identity when the item has none and renders the label,
// overwriting an existing file.
func (s *QRCodeService) Generate(ctx context.Context, itemID int64, size domain.SizeClass) (*domain.QRLabel, error) {
	if _, err := domain.ParseSizeClass(string(size)); err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	if !item.HasQRCode() {
		if err := s.assign(ctx, item); err != nil {
			return nil, err
		}
	}
	return s.render(ctx, item, size)
}

// Label returns the label of the item, rendering it only when the file is
// missing. Concurrent requests for the same label share one render.
func (s *QRCodeService) Label(ctx context.Context, itemID int64, size domain.SizeClass) (*domain.QRLabel, string, error) {
	if _, err := domain.ParseSizeClass(string(size)); err != nil {
		return nil, "", err
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, "", err
	}
	if !item.HasQRCode() {
		return nil, "", domain.ErrQRCodeNotAssigned
	}
	code := *item.QRCode
	path := s.renderer.LabelPath(code, size)

	exists, err := s.renderer.LabelExists(code, size)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return &domain.QRLabel{
			ItemID:   item.ID,
			QRCode:   code,
			Size:     size,
			Payload:  domain.QRPayload(item.ID, code),
			Filename: domain.LabelFilename(size, code),
		}, path, nil
	}

	ctx = context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(domain.LabelFilename(size, code), func() (any, error) {
		return s.render(ctx, item, size)
	})
	if err != nil {
		return nil, "", err
	}
	log.WithFields(log.Fields{"item_id": item.ID, "size": size, "shared": shared}).Debug("missing QR label regenerated")
	return v.(*domain.QRLabel), path, nil
}

// Download resolves the label lazily and opens it.
func (s *QRCodeService) Download(ctx context.Context, itemID int64, size domain.SizeClass) (*domain.QRLabel, ports.ReadSeekCloser, time.Time, error) {
	label, _, err := s.Label(ctx, itemID, size)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	f, modTime, err := s.renderer.OpenLabel(label.QRCode, size)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return label, f, modTime, nil
}

// Reset drops every label of the current identity and assigns a new one.
func (s *QRCodeService) Reset(ctx context.Context, itemID int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)
	if item.HasQRCode() {
		if _, err := s.renderer.RemoveLabels(*item.QRCode); err != nil {
			return nil, err
		}
	}
	if err := s.assign(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes all size classes and clears the identity.
func (s *QRCodeService) Delete(ctx context.Context, itemID int64) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if !item.HasQRCode() {
		return domain.ErrQRCodeNotAssigned
	}
	ctx = context.WithoutCancel(ctx)
	removed, err := s.renderer.RemoveLabels(*item.QRCode)
	if err != nil {
		return err
	}
	if err := s.items.SetQRCode(ctx, itemID, nil); err != nil {
		return err
	}
	log.WithFields(log.Fields{"item_id": itemID, "qr_code": *item.QRCode, "files_removed": removed}).Info("QR code deleted")
	return nil
}

// Scan resolves an item from either a bare identity or a full label payload.
func (s *QRCodeService) Scan(ctx context.Context, scanned string) (*domain.Item, error) {
	code := scanned
	wantID, parsedCode, isPayload := domain.ParseQRPayload(scanned)
	if isPayload {
		code = parsedCode
	}
	item, err := s.items.GetByQRCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if isPayload && item.ID != wantID {
		return nil, domain.ErrQRCodeNotFound
	}
	return item, nil
}

func (s *QRCodeService) assign(ctx context.Context, item *domain.Item) error {
	code := s.allocator.NewQRCodeID()
	if err := s.items.SetQRCode(ctx, item.ID, &code); err != nil {
		return fmt.Errorf("assign QR code: %w", err)
	}
	item.QRCode = &code
	log.WithFields(log.Fields{"item_id": item.ID, "qr_code": code}).Info("QR code assigned")
	return nil
}

func (s *QRCodeService) render(ctx context.Context, item *domain.Item, size domain.SizeClass) (*domain.QRLabel, error) {
	return worker.Run(ctx, s.pool, func() (*domain.QRLabel, error) {
		return s.renderer.Render(item, size)
	})
}
