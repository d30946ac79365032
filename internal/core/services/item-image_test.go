package services

import (
	"context"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inventory-media-service/internal/core/domain"
	"inventory-media-service/internal/core/worker"
	"inventory-media-service/internal/testutil"
)

type imageFixture struct {
	*managerFixture
	pool *worker.Pool
	svc  *ItemImageService
}

func newImageFixture(t *testing.T) *imageFixture {
	t.Helper()
	m := newManagerFixture(t)
	pool := worker.NewPool(worker.WithWorkers(2))
	t.Cleanup(func() { pool.Shutdown(context.Background()) })
	svc := NewItemImageService(
		m.items, m.images,
		NewUploadValidator(0, 0),
		NewFilenameAllocator(),
		NewImageNormalizer(m.store, DefaultNormalizerOptions(), nil),
		m.manager, m.store, pool,
	)
	return &imageFixture{managerFixture: m, pool: pool, svc: svc}
}

func pngUpload(t *testing.T) domain.MemoryUpload {
	return domain.MemoryUpload{Filename: "test.png", ContentType: "image/png", Data: testutil.PNG(t, 640, 480, color.White)}
}

func TestItemImageService_Upload_FirstImageBecomesPrimary(t *testing.T) {
	f := newImageFixture(t)
	item := &domain.Item{ID: 1, Name: "Drill"}

	f.items.On("GetByID", mock.Anything, int64(1)).Return(item, nil)
	f.images.On("Create", mock.Anything, mock.AnythingOfType("*domain.ItemImage")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.ItemImage).ID = 100
	}).Return(nil)
	f.images.On("SetPrimary", mock.Anything, int64(1), int64(100)).Return(nil)

	img, stored, err := f.svc.Upload(context.Background(), 1, pngUpload(t), ImageUploadOptions{Rotation: 90})
	require.NoError(t, err)
	assert.Equal(t, int64(100), img.ID)
	assert.True(t, img.IsPrimary)
	assert.True(t, img.Optimized)
	assert.Equal(t, 90, img.Rotation)
	assert.Equal(t, 0, img.SortOrder)
	assert.Equal(t, "image/jpeg", stored.ContentType)
	assert.Equal(t, "test.png", stored.OriginalFilename)
	assert.Equal(t, *item.ImageFilename, img.Filename)

	assert.True(t, f.exists(t, f.store.ImagePath(img.Filename)))
	assert.True(t, f.exists(t, f.store.ThumbnailPath(img.Filename)))
	f.images.AssertExpectations(t)
	f.items.AssertNotCalled(t, "SetImageFilename", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemImageService_Upload_AppendsWithoutChangingPrimary(t *testing.T) {
	f := newImageFixture(t)
	item := &domain.Item{ID: 1, ImageFilename: strPtr("existing.jpg")}

	f.items.On("GetByID", mock.Anything, int64(1)).Return(item, nil)
	f.images.On("Create", mock.Anything, mock.AnythingOfType("*domain.ItemImage")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.ItemImage).SortOrder = 1
	}).Return(nil)

	img, _, err := f.svc.Upload(context.Background(), 1, pngUpload(t), ImageUploadOptions{})
	require.NoError(t, err)
	assert.False(t, img.IsPrimary)
	assert.Equal(t, 1, img.SortOrder)
	assert.Equal(t, "existing.jpg", *item.ImageFilename)
	f.images.AssertNotCalled(t, "SetPrimary", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemImageService_Upload_RejectsBeforeWriting(t *testing.T) {
	f := newImageFixture(t)
	f.items.On("GetByID", mock.Anything, int64(1)).Return(&domain.Item{ID: 1}, nil)

	big := domain.MemoryUpload{Filename: "big.png", ContentType: "image/png", Data: make([]byte, 25*1024*1024)}
	_, _, err := f.svc.Upload(context.Background(), 1, big, ImageUploadOptions{})
	assert.ErrorIs(t, err, domain.ErrTooLarge)

	assert.Empty(t, testutil.ListFiles(t, f.fs, "/data/uploads"))
	f.images.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestItemImageService_Upload_InvalidRotationAndMissingItem(t *testing.T) {
	f := newImageFixture(t)

	_, _, err := f.svc.Upload(context.Background(), 1, pngUpload(t), ImageUploadOptions{Rotation: 45})
	assert.ErrorIs(t, err, domain.ErrInvalidRotation)

	f.items.On("GetByID", mock.Anything, int64(2)).Return(nil, domain.ErrItemNotFound)
	_, _, err = f.svc.Upload(context.Background(), 2, pngUpload(t), ImageUploadOptions{})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestItemImageService_Upload_InsertFailureRemovesFiles(t *testing.T) {
	f := newImageFixture(t)
	f.items.On("GetByID", mock.Anything, int64(1)).Return(&domain.Item{ID: 1}, nil)
	f.images.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, _, err := f.svc.Upload(context.Background(), 1, pngUpload(t), ImageUploadOptions{})
	assert.EqualError(t, err, "insert failed")
	assert.Empty(t, testutil.ListFiles(t, f.fs, "/data/uploads"))
	assert.Empty(t, testutil.ListFiles(t, f.fs, "/data/uploads/thumbnails"))
}

func TestItemImageService_Upload_CancelledRequestStillCompletes(t *testing.T) {
	f := newImageFixture(t)
	f.items.On("GetByID", mock.Anything, int64(1)).Return(&domain.Item{ID: 1, ImageFilename: strPtr("x.jpg")}, nil)
	f.images.On("Create", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	upload := pngUpload(t)
	cancel()

	img, _, err := f.svc.Upload(ctx, 1, upload, ImageUploadOptions{})
	require.NoError(t, err)
	assert.True(t, f.exists(t, f.store.ImagePath(img.Filename)))
}

func TestItemImageService_IdentityMismatch(t *testing.T) {
	f := newImageFixture(t)
	foreign := &domain.ItemImage{ID: 7, ItemID: 2, Filename: "foreign.jpg"}
	f.items.On("GetByID", mock.Anything, int64(1)).Return(&domain.Item{ID: 1}, nil)
	f.images.On("GetByID", mock.Anything, int64(7)).Return(foreign, nil)

	_, err := f.svc.Rotate(context.Background(), 1, 7, 180)
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
	_, err = f.svc.SetPrimary(context.Background(), 1, 7)
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
	assert.ErrorIs(t, f.svc.Delete(context.Background(), 1, 7), domain.ErrIdentityMismatch)

	f.images.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.images.AssertNotCalled(t, "SetPrimary", mock.Anything, mock.Anything, mock.Anything)
}

func TestItemImageService_Rotate(t *testing.T) {
	f := newImageFixture(t)
	img := &domain.ItemImage{ID: 7, ItemID: 1}
	f.images.On("GetByID", mock.Anything, int64(7)).Return(img, nil)
	f.images.On("Update", mock.Anything, img).Return(nil)

	got, err := f.svc.Rotate(context.Background(), 1, 7, 270)
	require.NoError(t, err)
	assert.Equal(t, 270, got.Rotation)

	_, err = f.svc.Rotate(context.Background(), 1, 7, 30)
	assert.ErrorIs(t, err, domain.ErrInvalidRotation)
}

func TestItemImageService_Reorder(t *testing.T) {
	f := newImageFixture(t)
	current := []*domain.ItemImage{{ID: 1, ItemID: 1}, {ID: 2, ItemID: 1}}
	f.items.On("GetByID", mock.Anything, int64(1)).Return(&domain.Item{ID: 1}, nil)
	f.images.On("ListByItem", mock.Anything, int64(1)).Return(current, nil)
	f.images.On("Reorder", mock.Anything, int64(1), []int64{2, 1}).Return(nil)

	_, err := f.svc.Reorder(context.Background(), 1, []int64{2, 1})
	require.NoError(t, err)

	_, err = f.svc.Reorder(context.Background(), 1, []int64{2})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)
	_, err = f.svc.Reorder(context.Background(), 1, []int64{2, 2})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)
	_, err = f.svc.Reorder(context.Background(), 1, []int64{1, 99})
	assert.ErrorIs(t, err, domain.ErrIdentityMismatch)
	f.images.AssertNumberOfCalls(t, "Reorder", 1)
}

func TestItemImageService_DeleteRemovesBothFiles(t *testing.T) {
	f := newImageFixture(t)
	item := &domain.Item{ID: 1, ImageFilename: strPtr("other.jpg")}
	img := &domain.ItemImage{ID: 7, ItemID: 1, Filename: "gone.jpg"}
	f.touch(t, f.store.ImagePath("gone.jpg"), f.store.ThumbnailPath("gone.jpg"))

	f.items.On("GetByID", mock.Anything, int64(1)).Return(item, nil)
	f.images.On("GetByID", mock.Anything, int64(7)).Return(img, nil)
	f.images.On("Delete", mock.Anything, int64(7)).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), 1, 7))
	assert.False(t, f.exists(t, f.store.ImagePath("gone.jpg")))
	assert.False(t, f.exists(t, f.store.ThumbnailPath("gone.jpg")))
}

func TestItemImageService_Open(t *testing.T) {
	f := newImageFixture(t)
	f.touch(t, f.store.ThumbnailPath("a.jpg"))

	r, _, err := f.svc.Open("a.jpg", true)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	require.NoError(t, r.Close())

	_, _, err = f.svc.Open("a.jpg", false)
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}
