package services

import (
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
	"inventory-media-service/internal/testutil"
)

func decodeLabel(t *testing.T, fs afero.Fs, path string) (string, image.Image) {
	t.Helper()
	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	hints := map[gozxing.DecodeHintType]interface{}{gozxing.DecodeHintType_TRY_HARDER: true}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	require.NoError(t, err)
	return result.GetText(), img
}

func newRenderer(t *testing.T) (*QRLabelRenderer, ports.ArtifactStore, afero.Fs) {
	t.Helper()
	store, fs, _ := testutil.NewMemStore(t)
	r, err := NewQRLabelRenderer(store, nil)
	require.NoError(t, err)
	return r, store, fs
}

func itemWithCode(id int64, name, code string) *domain.Item {
	return &domain.Item{ID: id, Name: name, QRCode: &code}
}

func TestQRLabelRenderer_PayloadIsStableAcrossSizes(t *testing.T) {
	r, store, fs := newRenderer(t)
	item := itemWithCode(7, "Cordless drill", "ITM-ABCD1234")

	for _, size := range domain.AllSizeClasses {
		t.Run(string(size), func(t *testing.T) {
			label, err := r.Render(item, size)
			require.NoError(t, err)
			assert.Equal(t, "ITEM-7-ITM-ABCD1234", label.Payload)
			assert.Equal(t, "label_"+string(size)+"_ITM-ABCD1234.png", label.Filename)
			assert.True(t, label.Rendered)

			text, img := decodeLabel(t, fs, store.LabelPath(label.Filename))
			assert.Equal(t, "ITEM-7-ITM-ABCD1234", text)
			assert.Equal(t, labelPresets[size].Width, img.Bounds().Dx())
			assert.Equal(t, label.Height, img.Bounds().Dy())
		})
	}
}

func TestQRLabelRenderer_RegenerateSmallTwice(t *testing.T) {
	r, store, fs := newRenderer(t)
	item := itemWithCode(7, "Drill", "ITM-ABCD1234")

	first, err := r.Render(item, domain.SizeSmall)
	require.NoError(t, err)
	text1, _ := decodeLabel(t, fs, store.LabelPath(first.Filename))

	second, err := r.Render(item, domain.SizeSmall)
	require.NoError(t, err)
	text2, _ := decodeLabel(t, fs, store.LabelPath(second.Filename))

	assert.Equal(t, text1, text2)
	assert.Equal(t, first.Filename, second.Filename)
}

func TestQRLabelRenderer_LongPayloadStillFits(t *testing.T) {
	r, store, fs := newRenderer(t)
	item := itemWithCode(9876543210, strings.Repeat("very long name ", 5), "ITM-FFFFFFFF")

	label, err := r.Render(item, domain.SizeSmall)
	require.NoError(t, err)

	text, img := decodeLabel(t, fs, store.LabelPath(label.Filename))
	assert.Equal(t, "ITEM-9876543210-ITM-FFFFFFFF", text)
	assert.GreaterOrEqual(t, img.Bounds().Dx(), labelPresets[domain.SizeSmall].Width)
}

func TestQRLabelRenderer_FrameIsDrawn(t *testing.T) {
	r, _, _ := newRenderer(t)

	img, err := r.Compose("ITEM-1-ITM-00000001", "Box", "ITM-00000001", domain.SizeMedium)
	require.NoError(t, err)

	b := img.Bounds()
	for _, p := range []image.Point{{0, 0}, {b.Max.X - 1, b.Max.Y - 1}, {b.Max.X / 2, 0}, {0, b.Max.Y / 2}} {
		r, g, bl, _ := img.At(p.X, p.Y).RGBA()
		assert.Zero(t, r+g+bl, "frame pixel %v", p)
	}
}

func TestQRLabelRenderer_Errors(t *testing.T) {
	r, _, _ := newRenderer(t)

	_, err := r.Render(&domain.Item{ID: 1, Name: "x"}, domain.SizeSmall)
	assert.ErrorIs(t, err, domain.ErrQRCodeNotAssigned)

	_, err = r.Compose("ITEM-1-X", "x", "X", domain.SizeClass("huge"))
	assert.ErrorIs(t, err, domain.ErrInvalidSizeClass)
}

func TestQRLabelRenderer_RemoveLabels(t *testing.T) {
	r, store, fs := newRenderer(t)
	item := itemWithCode(3, "Lamp", "ITM-12345678")

	_, err := r.Render(item, domain.SizeMedium)
	require.NoError(t, err)

	removed, err := r.RemoveLabels("ITM-12345678")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	for _, size := range domain.AllSizeClasses {
		ok, err := afero.Exists(fs, store.LabelPath(domain.LabelFilename(size, "ITM-12345678")))
		require.NoError(t, err)
		assert.False(t, ok)
	}

	removed, err = r.RemoveLabels("ITM-12345678")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestTruncateLabelName(t *testing.T) {
	assert.Equal(t, "Short", TruncateLabelName("Short"))
	assert.Equal(t, strings.Repeat("a", 25), TruncateLabelName(strings.Repeat("a", 25)))
	assert.Equal(t, strings.Repeat("a", 25)+"...", TruncateLabelName(strings.Repeat("a", 30)))
	assert.Equal(t, strings.Repeat("é", 25)+"...", TruncateLabelName(strings.Repeat("é", 26)))
}
