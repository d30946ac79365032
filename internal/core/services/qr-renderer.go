package services

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/ports/output"
)

const labelNameBudget = 25

// labelPreset is a physical label size rendered at 300 DPI.
type labelPreset struct {
	Width, Height int
	ModuleSize    int
	Border        int
	Margin        int
	TitlePx       float64
	CodePx        float64
	Gap           int
	Frame         int
}

var labelPresets = map[domain.SizeClass]labelPreset{
	// ~3 cm
	domain.SizeSmall: {Width: 354, Height: 425, ModuleSize: 8, Border: 2, Margin: 20, TitlePx: 28, CodePx: 20, Gap: 10, Frame: 2},
	// ~5 cm
	domain.SizeMedium: {Width: 591, Height: 709, ModuleSize: 14, Border: 3, Margin: 32, TitlePx: 44, CodePx: 32, Gap: 16, Frame: 3},
	// ~8 cm
	domain.SizeLarge: {Width: 945, Height: 1134, ModuleSize: 22, Border: 4, Margin: 50, TitlePx: 68, CodePx: 48, Gap: 24, Frame: 5},
}

var codeGray = color.Gray{Y: 0x80}

// QRLabelRenderer draws printable labels. Parsed fonts are shared; faces are
// created per render because they hold glyph caches.
type QRLabelRenderer struct {
	store    ports.ArtifactStore
	observer ports.MediaObserver
	title    *opentype.Font
	code     *opentype.Font
}

func NewQRLabelRenderer(store ports.ArtifactStore, observer ports.MediaObserver) (*QRLabelRenderer, error) {
	title, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse title font: %w", err)
	}
	code, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse code font: %w", err)
	}
	if observer == nil {
		observer = ports.NopObserver{}
	}
	return &QRLabelRenderer{store: store, observer: observer, title: title, code: code}, nil
}

// Render writes the label of item at size, replacing any existing file.
func (r *QRLabelRenderer) Render(item *domain.Item, size domain.SizeClass) (*domain.QRLabel, error) {
	start := time.Now()
	label, err := r.render(item, size)
	r.observer.RecordLabel(time.Since(start), string(size), err)
	return label, err
}

func (r *QRLabelRenderer) render(item *domain.Item, size domain.SizeClass) (*domain.QRLabel, error) {
	if !item.HasQRCode() {
		return nil, domain.ErrQRCodeNotAssigned
	}
	code := *item.QRCode
	payload := domain.QRPayload(item.ID, code)

	img, err := r.Compose(payload, item.Name, code, size)
	if err != nil {
		return nil, err
	}

	filename := domain.LabelFilename(size, code)
	_, err = r.store.WriteAtomic(r.store.LabelPath(filename), func(w io.Writer) error {
		return imaging.Encode(w, img, imaging.PNG)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"item_id":  item.ID,
		"qr_code":  code,
		"size":     size,
		"filename": filename,
	}).Info("QR label rendered")

	return &domain.QRLabel{
		ItemID:   item.ID,
		QRCode:   code,
		Size:     size,
		Payload:  payload,
		Filename: filename,
		Width:    img.Bounds().Dx(),
		Height:   img.Bounds().Dy(),
		Rendered: true,
	}, nil
}

// Compose lays out symbol, name and code on a white framed canvas.
func (r *QRLabelRenderer) Compose(payload, name, code string, size domain.SizeClass) (image.Image, error) {
	preset, ok := labelPresets[size]
	if !ok {
		return nil, domain.ErrInvalidSizeClass
	}

	q, err := qrcode.New(payload, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("encode QR payload: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()
	symbolPx := (len(bitmap) + 2*preset.Border) * preset.ModuleSize

	titleFace, err := opentype.NewFace(r.title, &opentype.FaceOptions{Size: preset.TitlePx, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("title face: %w", err)
	}
	defer titleFace.Close()
	codeFace, err := opentype.NewFace(r.code, &opentype.FaceOptions{Size: preset.CodePx, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("code face: %w", err)
	}
	defer codeFace.Close()

	title := TruncateLabelName(name)
	titleH := lineHeight(titleFace)
	codeH := lineHeight(codeFace)

	titleW := font.MeasureString(titleFace, title).Ceil()
	width := max(preset.Width, symbolPx+2*preset.Margin, titleW+2*preset.Margin)
	height := max(preset.Height, preset.Margin+symbolPx+preset.Gap+titleH+preset.Gap+codeH+preset.Margin)
	canvas := imaging.New(width, height, color.White)

	symbolX := (width - symbolPx) / 2
	symbolY := preset.Margin
	drawSymbol(canvas, bitmap, symbolX+preset.Border*preset.ModuleSize, symbolY+preset.Border*preset.ModuleSize, preset.ModuleSize)

	titleY := symbolY + symbolPx + preset.Gap
	drawCentered(canvas, titleFace, title, color.Black, titleY)
	drawCentered(canvas, codeFace, code, codeGray, titleY+titleH+preset.Gap)

	drawFrame(canvas, preset.Frame)
	return canvas, nil
}

// TruncateLabelName keeps the first 25 characters and marks the cut.
func TruncateLabelName(name string) string {
	if utf8.RuneCountInString(name) <= labelNameBudget {
		return name
	}
	return string([]rune(name)[:labelNameBudget]) + "..."
}

func drawSymbol(dst draw.Image, bitmap [][]bool, x0, y0, module int) {
	black := image.NewUniform(color.Black)
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			rect := image.Rect(x0+x*module, y0+y*module, x0+(x+1)*module, y0+(y+1)*module)
			draw.Draw(dst, rect, black, image.Point{}, draw.Src)
		}
	}
}

func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

func drawCentered(dst draw.Image, face font.Face, text string, c color.Color, top int) {
	if text == "" {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	w := d.MeasureString(text).Ceil()
	x := (dst.Bounds().Dx() - w) / 2
	d.Dot = fixed.P(x, top+face.Metrics().Ascent.Ceil())
	d.DrawString(text)
}

func drawFrame(dst draw.Image, thickness int) {
	b := dst.Bounds()
	black := image.NewUniform(color.Black)
	edges := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+thickness),
		image.Rect(b.Min.X, b.Max.Y-thickness, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+thickness, b.Max.Y),
		image.Rect(b.Max.X-thickness, b.Min.Y, b.Max.X, b.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e, black, image.Point{}, draw.Src)
	}
}

// RemoveLabels deletes every size class of code. Missing files are skipped.
func (r *QRLabelRenderer) RemoveLabels(code string) (int, error) {
	start := time.Now()
	removed := 0
	var firstErr error
	for _, size := range domain.AllSizeClasses {
		ok, err := r.store.Remove(r.store.LabelPath(domain.LabelFilename(size, code)))
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			removed++
		}
	}
	r.observer.RecordDelete(string(domain.ArtifactKindQRLabel), time.Since(start), firstErr)
	log.WithFields(log.Fields{"qr_code": code, "removed": removed}).Debug("QR labels removed")
	return removed, firstErr
}

// LabelExists reports whether the file for (code, size) is on disk.
func (r *QRLabelRenderer) LabelExists(code string, size domain.SizeClass) (bool, error) {
	return r.store.Exists(r.store.LabelPath(domain.LabelFilename(size, code)))
}

// OpenLabel opens the stored label file for serving.
func (r *QRLabelRenderer) OpenLabel(code string, size domain.SizeClass) (ports.ReadSeekCloser, time.Time, error) {
	f, modTime, err := r.store.Open(r.LabelPath(code, size))
	if errors.Is(err, os.ErrNotExist) {
		return nil, time.Time{}, domain.ErrQRCodeNotFound
	}
	return f, modTime, err
}

func (r *QRLabelRenderer) LabelPath(code string, size domain.SizeClass) string {
	return r.store.LabelPath(domain.LabelFilename(size, code))
}
