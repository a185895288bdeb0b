package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ruralsv/retreat/service"
)

func TestUploadGalleryBatch_PerItemIsolation(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)

	mockStore.On("PutGalleryItem", mock.Anything, mock.AnythingOfType("models.GalleryItem")).Return(nil)

	files := []service.UploadFile{
		{Filename: "a.png", Raw: makePNG(t, 32, 32)},
		{Filename: "broken.bin", Raw: []byte("garbage")},
		{Filename: "b.png", Raw: makePNG(t, 32, 32)},
	}

	stored, failed := svc.UploadGalleryBatch(context.Background(), files)

	assert.Len(t, stored, 2)
	assert.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.Equal(t, "broken.bin", failed[0].Filename)
	mockStore.AssertNumberOfCalls(t, "PutGalleryItem", 2)
}

func TestGalleryItems_DefaultSetWhenEmpty(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	items := svc.GalleryItems()
	assert.NotEmpty(t, items)
	for _, item := range items {
		assert.Contains(t, item.ID, "default-")
	}
}

func TestGalleryItems_NewestFirst(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)

	mockStore.On("PutGalleryItem", mock.Anything, mock.AnythingOfType("models.GalleryItem")).Return(nil)

	first, _ := svc.UploadGalleryBatch(context.Background(), []service.UploadFile{{Filename: "a.png", Raw: makePNG(t, 8, 8)}})
	time.Sleep(2 * time.Millisecond)
	second, _ := svc.UploadGalleryBatch(context.Background(), []service.UploadFile{{Filename: "b.png", Raw: makePNG(t, 8, 8)}})

	items := svc.GalleryItems()
	assert.Len(t, items, 2)
	assert.Equal(t, second[0].ID, items[0].ID)
	assert.Equal(t, first[0].ID, items[1].ID)
	assert.GreaterOrEqual(t, items[0].CreatedAt, items[1].CreatedAt)
}

func TestClearGallery_EmptiesViewAndEnqueuesSweep(t *testing.T) {
	svc, mockStore, _, mockMQ, _ := setupService(t)

	mockStore.On("PutGalleryItem", mock.Anything, mock.AnythingOfType("models.GalleryItem")).Return(nil)
	mockMQ.On("Send", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	svc.UploadGalleryBatch(context.Background(), []service.UploadFile{{Filename: "a.png", Raw: makePNG(t, 8, 8)}})

	err := svc.ClearGallery(context.Background())
	assert.NoError(t, err)

	// The live view falls back to the bundled default set immediately
	items := svc.GalleryItems()
	assert.NotEmpty(t, items)
	assert.Contains(t, items[0].ID, "default-")

	mockMQ.AssertCalled(t, "Send", mock.Anything, mock.AnythingOfType("string"))
	// The durable delete belongs to the sweeper, not the request path
	mockStore.AssertNotCalled(t, "ClearGallery", mock.Anything)
}

func TestAddMoment_StoresMetadata(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)

	mockStore.On("PutMoment", mock.Anything, mock.AnythingOfType("models.GuestMoment")).Return(nil)

	moment, err := svc.AddMoment(context.Background(), "Sunset over the orchard", "Ana", "West field", makePNG(t, 16, 16))
	assert.NoError(t, err)
	assert.Equal(t, "Sunset over the orchard", moment.Caption)
	assert.Equal(t, "Ana", moment.Author)
	assert.NotEmpty(t, moment.ID)

	moments := svc.Moments()
	assert.Len(t, moments, 1)
	assert.Equal(t, moment.ID, moments[0].ID)
}

func TestAddMoment_RejectsOversizedCaption(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)

	longCaption := make([]byte, 0, 300)
	for i := 0; i < 300; i++ {
		longCaption = append(longCaption, 'x')
	}

	_, err := svc.AddMoment(context.Background(), string(longCaption), "Ana", "", makePNG(t, 8, 8))
	assert.Error(t, err)
	mockStore.AssertNotCalled(t, "PutMoment", mock.Anything, mock.Anything)
}
