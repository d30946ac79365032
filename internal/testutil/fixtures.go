package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"inventory-media-service/internal/adapters/secondary/filesystem"
	"inventory-media-service/internal/core/ports/output"
)

// NewMemStore returns an artifact store on an in-memory filesystem with all
// directories created.
func NewMemStore(t *testing.T) (ports.ArtifactStore, afero.Fs, filesystem.Layout) {
	t.Helper()
	fs := afero.NewMemMapFs()
	layout := filesystem.Layout{UploadDir: "/data/uploads", DocumentDir: "/data/documents", QRDir: "/data/qr_codes"}
	store := filesystem.NewStore(fs, layout)
	require.NoError(t, store.EnsureDirs())
	return store, fs, layout
}

// PNG encodes a w x h image filled with c.
func PNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// PalettedPNG encodes a w x h palette image.
func PalettedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	palette := color.Palette{color.Transparent, color.RGBA{R: 200, A: 255}}
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetColorIndex(x, y, 1)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// ListFiles returns regular file paths under dir, excluding subdirectories.
func ListFiles(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}
