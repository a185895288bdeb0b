package store

import (
	"context"
	"errors"

	"github.com/ruralsv/retreat/models"
)

// AssetStore is one storage tier. The durable DynamoDB tier and the Redis
// mirror tier both implement it, so tiers compose into an ordered fallback
// chain (see store/tiered).
type AssetStore interface {
	PutSlot(ctx context.Context, slot models.ImageSlot) error
	GetAllSlots(ctx context.Context) ([]models.ImageSlot, error)

	PutGalleryItem(ctx context.Context, item models.GalleryItem) error
	GetGalleryItems(ctx context.Context) ([]models.GalleryItem, error)
	ClearGallery(ctx context.Context) error

	PutMoment(ctx context.Context, moment models.GuestMoment) error
	GetMoments(ctx context.Context) ([]models.GuestMoment, error)

	CreatePass(ctx context.Context, pass models.Pass) (models.Pass, error)
	GetPass(ctx context.Context, passID string) (models.Pass, error)
	GetPassByEmail(ctx context.Context, email string) (models.Pass, error)
	UpdatePassSecret(ctx context.Context, passID string, newSecret string) error

	IncrementUploadCount(ctx context.Context, kind string, delta int) error
	GetUploadCounts(ctx context.Context) (models.UploadCounts, error)
}

// Upload counter kinds.
const (
	CountSlots   = "slots"
	CountGallery = "gallery"
	CountMoments = "moments"
)

// Custom error types for clarity
var (
	ErrItemNotFound    = errors.New("item does not exist")
	ErrConditionFailed = errors.New("condition not met")
)
