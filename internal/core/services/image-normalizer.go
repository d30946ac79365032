package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	log "github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
)

type NormalizerOptions struct {
	MaxDimension     int
	ThumbnailSize    int
	JPEGQuality      int
	ThumbnailQuality int
	AutoOrient       bool

	// MaxPixels caps width*height before full decode. Larger images are
	// kept as raw copies.
	MaxPixels int64
}

// DefaultMaxPixels matches the usual decompression bomb threshold.
const DefaultMaxPixels = 178956970

func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{
		MaxDimension:     1920,
		ThumbnailSize:    300,
		JPEGQuality:      85,
		ThumbnailQuality: 80,
		AutoOrient:       true,
		MaxPixels:        DefaultMaxPixels,
	}
}

// ImageNormalizer turns an admitted image into a canonical JPEG main artifact
// plus thumbnail. It is CPU bound and meant to run on the worker pool.
type ImageNormalizer struct {
	store    ports.ArtifactStore
	opts     NormalizerOptions
	observer ports.MediaObserver
}

func NewImageNormalizer(store ports.ArtifactStore, opts NormalizerOptions, observer ports.MediaObserver) *ImageNormalizer {
	def := DefaultNormalizerOptions()
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = def.MaxDimension
	}
	if opts.ThumbnailSize <= 0 {
		opts.ThumbnailSize = def.ThumbnailSize
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = def.JPEGQuality
	}
	if opts.ThumbnailQuality <= 0 {
		opts.ThumbnailQuality = def.ThumbnailQuality
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = def.MaxPixels
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &ImageNormalizer{store: store, opts: opts, observer: observer}
}

// Normalize stores admitted under filename. Undecodable input is kept as a raw
// copy without thumbnail; only storage failures are returned as errors.
func (n *ImageNormalizer) Normalize(admitted *Admitted, filename string) (_ *domain.StoredImage, err error) {
	start := time.Now()
	var result *domain.StoredImage
	defer func() {
		var size int64
		fallback := false
		if result != nil {
			size = result.Size
			fallback = !result.Optimized()
		}
		n.observer.RecordNormalize(time.Since(start), size, fallback, err)
	}()

	mainPath := n.store.ImagePath(filename)
	tmp, err := n.store.WriteTemp(mainPath, admitted.Data)
	if err != nil {
		return nil, err
	}

	if limitErr := n.checkPixels(admitted.Data); limitErr != nil {
		result, err = n.keepRaw(admitted, filename, tmp, limitErr)
		return result, err
	}

	src, decodeErr := imaging.Decode(bytes.NewReader(admitted.Data), imaging.AutoOrientation(n.opts.AutoOrient))
	if decodeErr != nil {
		result, err = n.keepRaw(admitted, filename, tmp, decodeErr)
		return result, err
	}

	result, err = n.derive(src, admitted, filename)
	if _, rmErr := n.store.Remove(tmp); rmErr != nil {
		log.WithError(rmErr).WithField("path", tmp).Warn("failed to remove temporary upload")
	}
	return result, err
}

// checkPixels reads only the header. Headers that fail to parse are left for
// the full decode to reject.
func (n *ImageNormalizer) checkPixels(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > n.opts.MaxPixels {
		return fmt.Errorf("image %dx%d exceeds pixel limit %d", cfg.Width, cfg.Height, n.opts.MaxPixels)
	}
	return nil
}

func (n *ImageNormalizer) derive(src image.Image, admitted *Admitted, filename string) (*domain.StoredImage, error) {
	bounds := src.Bounds()
	result := &domain.StoredImage{
		Outcome:          domain.OutcomeNormalized,
		Filename:         filename,
		ThumbnailName:    domain.ThumbnailFilename(filename),
		OriginalFilename: admitted.OriginalFilename,
		ContentType:      domain.CanonicalImageType,
		Orientation:      domain.ClassifyOrientation(bounds.Dx(), bounds.Dy()),
		OriginalWidth:    bounds.Dx(),
		OriginalHeight:   bounds.Dy(),
	}

	if needsFlatten(src) {
		src = imaging.Overlay(imaging.New(bounds.Dx(), bounds.Dy(), color.White), src, image.Pt(0, 0), 1.0)
	}

	// Fit never upscales.
	main := imaging.Fit(src, n.opts.MaxDimension, n.opts.MaxDimension, imaging.Lanczos)
	result.Width = main.Bounds().Dx()
	result.Height = main.Bounds().Dy()

	mainPath := n.store.ImagePath(filename)
	size, err := n.store.WriteAtomic(mainPath, jpegEncoder(main, n.opts.JPEGQuality))
	if err != nil {
		return nil, err
	}
	result.Size = size

	thumb := imaging.Fit(main, n.opts.ThumbnailSize, n.opts.ThumbnailSize, imaging.Lanczos)
	thumbPath := n.store.ThumbnailPath(filename)
	if _, err := n.store.WriteAtomic(thumbPath, jpegEncoder(thumb, n.opts.ThumbnailQuality)); err != nil {
		if _, rmErr := n.store.Remove(mainPath); rmErr != nil {
			log.WithError(rmErr).WithField("path", mainPath).Error("failed to remove main artifact after thumbnail failure")
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"filename":    filename,
		"original":    admitted.OriginalFilename,
		"size":        size,
		"width":       result.Width,
		"height":      result.Height,
		"orientation": result.Orientation,
	}).Info("image normalized")
	return result, nil
}

// keepRaw promotes the temporary raw write to the main artifact path.
func (n *ImageNormalizer) keepRaw(admitted *Admitted, filename, tmp string, reason error) (*domain.StoredImage, error) {
	mainPath := n.store.ImagePath(filename)
	if err := n.store.Rename(tmp, mainPath); err != nil {
		_, _ = n.store.Remove(tmp)
		return nil, err
	}

	detected := mimetype.Detect(admitted.Data).String()
	log.WithError(reason).WithFields(log.Fields{
		"filename": filename,
		"original": admitted.OriginalFilename,
		"declared": admitted.ContentType,
		"detected": detected,
	}).Warn("image not normalized, stored raw copy without thumbnail")

	return &domain.StoredImage{
		Outcome:          domain.OutcomeRawCopy,
		Filename:         filename,
		OriginalFilename: admitted.OriginalFilename,
		Size:             int64(len(admitted.Data)),
		ContentType:      admitted.ContentType,
	}, nil
}

// needsFlatten is true for palette images and anything that may carry alpha.
func needsFlatten(img image.Image) bool {
	if _, ok := img.(*image.Paletted); ok {
		return true
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

func jpegEncoder(img image.Image, quality int) func(io.Writer) error {
	return func(w io.Writer) error {
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
}
