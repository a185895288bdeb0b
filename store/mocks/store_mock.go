package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ruralsv/retreat/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) PutSlot(ctx context.Context, slot models.ImageSlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *MockStore) GetAllSlots(ctx context.Context) ([]models.ImageSlot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ImageSlot), args.Error(1)
}

func (m *MockStore) PutGalleryItem(ctx context.Context, item models.GalleryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore) GetGalleryItems(ctx context.Context) ([]models.GalleryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}

func (m *MockStore) ClearGallery(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) PutMoment(ctx context.Context, moment models.GuestMoment) error {
	args := m.Called(ctx, moment)
	return args.Error(0)
}

func (m *MockStore) GetMoments(ctx context.Context) ([]models.GuestMoment, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.GuestMoment), args.Error(1)
}

func (m *MockStore) CreatePass(ctx context.Context, pass models.Pass) (models.Pass, error) {
	args := m.Called(ctx, pass)
	return args.Get(0).(models.Pass), args.Error(1)
}

func (m *MockStore) GetPass(ctx context.Context, passID string) (models.Pass, error) {
	args := m.Called(ctx, passID)
	return args.Get(0).(models.Pass), args.Error(1)
}

func (m *MockStore) GetPassByEmail(ctx context.Context, email string) (models.Pass, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.Pass), args.Error(1)
}

func (m *MockStore) UpdatePassSecret(ctx context.Context, passID string, newSecret string) error {
	args := m.Called(ctx, passID, newSecret)
	return args.Error(0)
}

func (m *MockStore) IncrementUploadCount(ctx context.Context, kind string, delta int) error {
	args := m.Called(ctx, kind, delta)
	return args.Error(0)
}

func (m *MockStore) GetUploadCounts(ctx context.Context) (models.UploadCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.UploadCounts), args.Error(1)
}
