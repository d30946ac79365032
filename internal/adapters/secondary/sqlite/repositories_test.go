package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-media-service/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{Path: filepath.Join(t.TempDir(), "media.db")})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedItem(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	m := &itemModel{Name: name}
	require.NoError(t, s.DB().Create(m).Error)
	return m.ID
}

func newImage(itemID int64, filename string) *domain.ItemImage {
	return &domain.ItemImage{
		ItemID:           itemID,
		Filename:         filename,
		OriginalFilename: "photo.png",
		FileSize:         1234,
		Width:            640,
		Height:           480,
		Orientation:      domain.OrientationLandscape,
		Optimized:        true,
		CreatedAt:        time.Now().UTC(),
	}
}

func TestItemRepo_GetAndReferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	items := s.Items()
	id := seedItem(t, s, "Drill")

	item, err := items.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Drill", item.Name)
	assert.False(t, item.HasImage())
	assert.False(t, item.HasQRCode())

	name := "abc123def456.png"
	code := "ITM-ABCD1234"
	require.NoError(t, items.SetImageFilename(ctx, id, &name))
	require.NoError(t, items.SetQRCode(ctx, id, &code))

	item, err = items.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, name, *item.ImageFilename)

	byCode, err := items.GetByQRCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, id, byCode.ID)

	require.NoError(t, items.SetImageFilename(ctx, id, nil))
	item, err = items.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, item.ImageFilename)
}

func TestItemRepo_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Items().GetByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = s.Items().GetByQRCode(ctx, "ITM-00000000")
	assert.ErrorIs(t, err, domain.ErrQRCodeNotFound)

	assert.ErrorIs(t, s.Items().SetQRCode(ctx, 42, nil), domain.ErrItemNotFound)
}

func TestItemRepo_QRCodeConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := seedItem(t, s, "A")
	b := seedItem(t, s, "B")
	code := "ITM-ABCD1234"

	require.NoError(t, s.Items().SetQRCode(ctx, a, &code))
	assert.ErrorIs(t, s.Items().SetQRCode(ctx, b, &code), domain.ErrQRCodeConflict)
}

func TestItemRepo_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := seedItem(t, s, "Lamp")

	require.NoError(t, s.Images().Create(ctx, newImage(id, "aaaaaaaaaaaa.jpg")))
	require.NoError(t, s.Documents().Create(ctx, &domain.Document{ItemID: id, Filename: "bbbbbbbbbbbb.pdf", OriginalFilename: "w.pdf"}))

	require.NoError(t, s.Items().Delete(ctx, id))

	images, err := s.Images().ListByItem(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, images)
	docs, err := s.Documents().ListByItem(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.ErrorIs(t, s.Items().Delete(ctx, id), domain.ErrItemNotFound)
}

func TestItemImageRepo_PrimaryAndReorder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Images()
	itemID := seedItem(t, s, "Chair")

	first := newImage(itemID, "111111111111.jpg")
	second := newImage(itemID, "222222222222.jpg")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.NotZero(t, first.ID)

	require.NoError(t, repo.SetPrimary(ctx, itemID, first.ID))
	require.NoError(t, repo.SetPrimary(ctx, itemID, second.ID))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPrimary)
	got, err = repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPrimary)

	require.NoError(t, repo.Reorder(ctx, itemID, []int64{second.ID, first.ID}))
	list, err := repo.ListByItem(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	other := seedItem(t, s, "Table")
	assert.ErrorIs(t, repo.Reorder(ctx, other, []int64{first.ID}), domain.ErrIdentityMismatch)
	assert.ErrorIs(t, repo.SetPrimary(ctx, other, first.ID), domain.ErrImageNotFound)
}

func TestItemImageRepo_CreateAppendsSortOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Images()
	itemID := seedItem(t, s, "Lamp")

	first := newImage(itemID, "555555555555.jpg")
	first.SortOrder = 7
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, 0, first.SortOrder)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, newImage(itemID, fmt.Sprintf("concurrent%02d.jpg", i)))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	list, err := repo.ListByItem(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, list, n+1)
	seen := make(map[int]bool)
	for _, img := range list {
		assert.False(t, seen[img.SortOrder], "duplicate sort order %d", img.SortOrder)
		seen[img.SortOrder] = true
	}
	for i := 0; i <= n; i++ {
		assert.True(t, seen[i], "missing sort order %d", i)
	}
}

func TestItemImageRepo_SetPrimaryUpdatesItemReference(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Images()
	itemID := seedItem(t, s, "Bench")

	a := newImage(itemID, "aaaaaaaaaaaa.jpg")
	b := newImage(itemID, "bbbbbbbbbbbb.jpg")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	var wg sync.WaitGroup
	for _, img := range []*domain.ItemImage{a, b, a, b} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, repo.SetPrimary(ctx, itemID, id))
		}(img.ID)
	}
	wg.Wait()

	item, err := s.Items().GetByID(ctx, itemID)
	require.NoError(t, err)
	require.True(t, item.HasImage())

	list, err := repo.ListByItem(ctx, itemID)
	require.NoError(t, err)
	var primaries []string
	for _, img := range list {
		if img.IsPrimary {
			primaries = append(primaries, img.Filename)
		}
	}
	require.Len(t, primaries, 1)
	assert.Equal(t, primaries[0], *item.ImageFilename)

	require.NoError(t, repo.SetPrimary(ctx, itemID, a.ID))
	item, err = s.Items().GetByID(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaaaaaa.jpg", *item.ImageFilename)
}

func TestItemImageRepo_UpdateAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Images()
	itemID := seedItem(t, s, "Shelf")

	img := newImage(itemID, "333333333333.jpg")
	require.NoError(t, repo.Create(ctx, img))

	img.Rotation = 90
	require.NoError(t, repo.Update(ctx, img))
	got, err := repo.GetByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Rotation)
	assert.Equal(t, domain.OrientationLandscape, got.Orientation)

	require.NoError(t, repo.Delete(ctx, img.ID))
	assert.ErrorIs(t, repo.Delete(ctx, img.ID), domain.ErrImageNotFound)
	_, err = repo.GetByID(ctx, img.ID)
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}

func TestDocumentRepo_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	repo := s.Documents()
	itemID := seedItem(t, s, "Fridge")

	doc := &domain.Document{
		ItemID:           itemID,
		Filename:         "444444444444.pdf",
		OriginalFilename: "warranty.pdf",
		DocumentType:     "warranty",
		FileSize:         2048,
		MimeType:         "application/pdf",
		UploadedAt:       time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, doc))
	require.NotZero(t, doc.ID)

	require.NoError(t, repo.UpdateMetadata(ctx, doc.ID, "invoice", "bought in 2024"))
	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice", got.DocumentType)
	assert.Equal(t, "bought in 2024", got.Description)
	assert.Equal(t, "warranty.pdf", got.OriginalFilename)

	list, err := repo.ListByItem(ctx, itemID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, doc.ID))
	_, err = repo.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.ErrorIs(t, repo.UpdateMetadata(ctx, doc.ID, "", ""), domain.ErrDocumentNotFound)
}
