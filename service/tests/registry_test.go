package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ruralsv/retreat/codec"
	"github.com/ruralsv/retreat/models"
)

func TestHydrate_PopulatesRegistry(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetAllSlots", ctx).Return([]models.ImageSlot{{ID: "hero", Data: "data:image/jpeg;base64,aaa"}}, nil)
	mockStore.On("GetGalleryItems", ctx).Return([]models.GalleryItem{{ID: "g1", Data: "d1"}}, nil)
	mockStore.On("GetMoments", ctx).Return([]models.GuestMoment{}, nil)

	err := svc.Hydrate(ctx)
	assert.NoError(t, err)

	assert.Equal(t, "data:image/jpeg;base64,aaa", svc.Resolve("hero", "fallback.jpg"))
	assert.Len(t, svc.GalleryItems(), 1)
}

func TestResolve_FallbackWhenUnset(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	got := svc.Resolve("venue-barn", "/static/venue-barn.jpg")
	assert.Equal(t, "/static/venue-barn.jpg", got)
}

func TestUploadSlot_OverrideWinsOverFallback(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("PutSlot", mock.Anything, mock.AnythingOfType("models.ImageSlot")).Return(nil)

	slot, err := svc.UploadSlot(ctx, "hero", "hero.png", makePNG(t, 64, 64))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(slot.Data, "data:image/jpeg;base64,"))

	assert.Equal(t, slot.Data, svc.Resolve("hero", "/static/hero.jpg"))
}

func TestUploadSlot_InvalidID(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)

	_, err := svc.UploadSlot(context.Background(), "Hero Image!", "x.png", makePNG(t, 8, 8))
	assert.Error(t, err)
	mockStore.AssertNotCalled(t, "PutSlot", mock.Anything, mock.Anything)
}

func TestUploadSlot_InvalidImage(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)

	_, err := svc.UploadSlot(context.Background(), "hero", "x.bin", []byte("not an image"))
	assert.ErrorIs(t, err, codec.ErrInvalidImage)
	mockStore.AssertNotCalled(t, "PutSlot", mock.Anything, mock.Anything)
}

func TestUploadSlot_SideChannelURL(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	uploader := &stubUploader{enabled: true, url: "https://cdn.example.com/uploads/hero.jpg"}
	svc.Uploader = uploader

	mockStore.On("PutSlot", mock.Anything, mock.AnythingOfType("models.ImageSlot")).Return(nil)

	slot, err := svc.UploadSlot(context.Background(), "hero", "hero.png", makePNG(t, 16, 16))
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/uploads/hero.jpg", slot.Data)
	assert.Equal(t, "hero", uploader.gotID)
}

func TestUploadSlot_SideChannelFailureFallsBackInline(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	svc.Uploader = &stubUploader{enabled: true, fail: true}

	mockStore.On("PutSlot", mock.Anything, mock.AnythingOfType("models.ImageSlot")).Return(nil)

	slot, err := svc.UploadSlot(context.Background(), "hero", "hero.png", makePNG(t, 16, 16))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(slot.Data, "data:image/jpeg;base64,"))
}
