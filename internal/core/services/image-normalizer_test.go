package services

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-media-service/internal/adapters/secondary/filesystem"
	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/testutil"
)

func normalize(t *testing.T, n *ImageNormalizer, upload domain.MemoryUpload) *domain.StoredImage {
	t.Helper()
	admitted, err := NewUploadValidator(0, 0).ValidateImage(upload)
	require.NoError(t, err)
	stored, err := n.Normalize(admitted, NewFilenameAllocator().Allocate(upload.Filename))
	require.NoError(t, err)
	return stored
}

func decodeJPEG(t *testing.T, fs afero.Fs, path string) image.Image {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestImageNormalizer_OpaquePNG(t *testing.T) {
	store, fs, layout := testutil.NewMemStore(t)
	n := NewImageNormalizer(store, DefaultNormalizerOptions(), nil)

	stored := normalize(t, n, domain.MemoryUpload{
		Filename:    "test.png",
		ContentType: "image/png",
		Data:        testutil.PNG(t, 640, 480, color.RGBA{R: 10, G: 120, B: 200, A: 255}),
	})

	assert.Equal(t, domain.OutcomeNormalized, stored.Outcome)
	assert.True(t, stored.Optimized())
	assert.Equal(t, "image/jpeg", stored.ContentType)
	assert.Equal(t, "test.png", stored.OriginalFilename)
	assert.Equal(t, domain.OrientationLandscape, stored.Orientation)
	assert.Equal(t, 640, stored.Width)
	assert.Equal(t, 480, stored.Height)
	assert.Equal(t, "thumb_"+stored.Filename, stored.ThumbnailName)
	assert.Equal(t, ".png", path.Ext(stored.Filename))

	main := decodeJPEG(t, fs, store.ImagePath(stored.Filename))
	assert.Equal(t, image.Rect(0, 0, 640, 480), main.Bounds())

	thumb := decodeJPEG(t, fs, store.ThumbnailPath(stored.Filename))
	assert.LessOrEqual(t, max(thumb.Bounds().Dx(), thumb.Bounds().Dy()), 300)
	assert.Equal(t, 300, thumb.Bounds().Dx())

	size, err := store.Size(store.ImagePath(stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, size, stored.Size)

	// Only the main artifact and the thumbnail directory remain; no temp file.
	assert.Equal(t, []string{stored.Filename}, testutil.ListFiles(t, fs, layout.UploadDir))
	assert.Len(t, testutil.ListFiles(t, fs, layout.ThumbnailDir()), 1)
}

func TestImageNormalizer_DownscalesLargeImages(t *testing.T) {
	store, fs, _ := testutil.NewMemStore(t)
	n := NewImageNormalizer(store, DefaultNormalizerOptions(), nil)

	stored := normalize(t, n, domain.MemoryUpload{
		Filename:    "tall.png",
		ContentType: "image/png",
		Data:        testutil.PNG(t, 1000, 2400, color.Black),
	})

	assert.Equal(t, domain.OrientationPortrait, stored.Orientation)
	assert.Equal(t, 1000, stored.OriginalWidth)
	assert.Equal(t, 2400, stored.OriginalHeight)
	assert.Equal(t, 1920, stored.Height)
	assert.Equal(t, 800, stored.Width)

	main := decodeJPEG(t, fs, store.ImagePath(stored.Filename))
	assert.Equal(t, 1920, main.Bounds().Dy())
	thumb := decodeJPEG(t, fs, store.ThumbnailPath(stored.Filename))
	assert.Equal(t, 300, thumb.Bounds().Dy())
}

func TestImageNormalizer_NeverUpscales(t *testing.T) {
	store, _, _ := testutil.NewMemStore(t)
	n := NewImageNormalizer(store, DefaultNormalizerOptions(), nil)

	stored := normalize(t, n, domain.MemoryUpload{
		Filename:    "tiny.png",
		ContentType: "image/png",
		Data:        testutil.PNG(t, 50, 50, color.White),
	})
	assert.Equal(t, domain.OrientationSquare, stored.Orientation)
	assert.Equal(t, 50, stored.Width)
	assert.Equal(t, 50, stored.Height)
}

func TestImageNormalizer_FlattensTransparency(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"alpha", func(t *testing.T) []byte { return testutil.PNG(t, 64, 32, color.NRGBA{R: 255, A: 0}) }},
		{"palette", func(t *testing.T) []byte { return testutil.PalettedPNG(t, 64, 32) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, fs, _ := testutil.NewMemStore(t)
			n := NewImageNormalizer(store, DefaultNormalizerOptions(), nil)

			stored := normalize(t, n, domain.MemoryUpload{Filename: "t.png", ContentType: "image/png", Data: tt.data(t)})
			require.True(t, stored.Optimized())

			main := decodeJPEG(t, fs, store.ImagePath(stored.Filename))
			// Transparent pixels land on white.
			r, g, b, a := main.At(main.Bounds().Max.X-1, 0).RGBA()
			assert.Equal(t, uint32(0xffff), a)
			assert.Greater(t, r, uint32(0xf000))
			assert.Greater(t, g, uint32(0xf000))
			assert.Greater(t, b, uint32(0xf000))
		})
	}
}

func TestImageNormalizer_UndecodableFallsBackToRawCopy(t *testing.T) {
	store, fs, layout := testutil.NewMemStore(t)
	n := NewImageNormalizer(store, DefaultNormalizerOptions(), nil)
	raw := []byte("definitely not a png")

	stored := normalize(t, n, domain.MemoryUpload{Filename: "broken.png", ContentType: "image/png", Data: raw})

	assert.Equal(t, domain.OutcomeRawCopy, stored.Outcome)
	assert.False(t, stored.Optimized())
	assert.Empty(t, stored.ThumbnailName)
	assert.Equal(t, int64(len(raw)), stored.Size)

	data, err := afero.ReadFile(fs, store.ImagePath(stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, raw, data)

	assert.Equal(t, []string{stored.Filename}, testutil.ListFiles(t, fs, layout.UploadDir))
	assert.Empty(t, testutil.ListFiles(t, fs, layout.ThumbnailDir()))
}

func TestImageNormalizer_OversizedDimensionsKeptRaw(t *testing.T) {
	store, fs, layout := testutil.NewMemStore(t)
	opts := DefaultNormalizerOptions()
	opts.MaxPixels = 100 * 100
	n := NewImageNormalizer(store, opts, nil)
	raw := testutil.PNG(t, 200, 200, color.White)

	stored := normalize(t, n, domain.MemoryUpload{Filename: "huge.png", ContentType: "image/png", Data: raw})

	assert.Equal(t, domain.OutcomeRawCopy, stored.Outcome)
	assert.Empty(t, stored.ThumbnailName)
	assert.Equal(t, "image/png", stored.ContentType)
	assert.Zero(t, stored.Width)

	data, err := afero.ReadFile(fs, store.ImagePath(stored.Filename))
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.Empty(t, testutil.ListFiles(t, fs, layout.ThumbnailDir()))

	// Exactly at the limit is still normalized.
	stored = normalize(t, n, domain.MemoryUpload{
		Filename: "edge.png", ContentType: "image/png", Data: testutil.PNG(t, 100, 100, color.White),
	})
	assert.Equal(t, domain.OutcomeNormalized, stored.Outcome)
}

func TestImageNormalizer_StorageFailureIsFatal(t *testing.T) {
	_, fs, layout := testutil.NewMemStore(t)
	ro := NewImageNormalizer(filesystem.NewStore(afero.NewReadOnlyFs(fs), layout), DefaultNormalizerOptions(), nil)

	admitted := &Admitted{Data: testutil.PNG(t, 8, 8, color.White), OriginalFilename: "a.png", Extension: ".png", ContentType: "image/png"}
	_, err := ro.Normalize(admitted, "aaaaaaaaaaaa.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)
}
