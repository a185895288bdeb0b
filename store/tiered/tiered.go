// Package tiered composes storage tiers into one AssetStore. Tiers are an
// explicit ordered list rather than nested error handling: reads walk the
// list until a tier answers, writes fan out to every tier and count as
// successful when at least one tier accepted them. With the durable tier
// first and the mirror second, every successful durable write also refreshes
// the mirror snapshot, and a durable outage degrades to mirror-only operation
// instead of failing requests.
package tiered

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/store"
)

type TieredAssetStore struct {
	tiers []store.AssetStore
}

func NewTieredAssetStore(tiers ...store.AssetStore) (*TieredAssetStore, error) {
	if len(tiers) == 0 {
		return nil, errors.New("at least one storage tier is required")
	}
	return &TieredAssetStore{tiers: tiers}, nil
}

// writeAll attempts the write on every tier. The operation succeeds if any
// tier accepted it; tier failures are logged, not propagated.
func (t *TieredAssetStore) writeAll(op string, write func(store.AssetStore) error) error {
	var firstErr error
	accepted := 0

	for i, tier := range t.tiers {
		if err := write(tier); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Warn().Err(err).Int("tier", i).Str("op", op).Msg("storage tier rejected write")
			continue
		}
		accepted++
	}

	if accepted == 0 {
		return fmt.Errorf("%s failed on all %d tiers: %w", op, len(t.tiers), firstErr)
	}
	return nil
}

// readFirst returns the first tier's answer, falling through on errors.
// store.ErrItemNotFound is an answer, not a tier failure: a healthy tier
// saying "no such record" must not be second-guessed by a staler tier.
func readFirst[T any](t *TieredAssetStore, op string, read func(store.AssetStore) (T, error)) (T, error) {
	var zero T
	var firstErr error

	for i, tier := range t.tiers {
		result, err := read(tier)
		if err == nil || errors.Is(err, store.ErrItemNotFound) || errors.Is(err, store.ErrConditionFailed) {
			if i > 0 && err == nil {
				log.Warn().Int("tier", i).Str("op", op).Msg("serving read from degraded tier")
			}
			return result, err
		}
		if firstErr == nil {
			firstErr = err
		}
		log.Warn().Err(err).Int("tier", i).Str("op", op).Msg("storage tier read failed")
	}

	return zero, fmt.Errorf("%s failed on all %d tiers: %w", op, len(t.tiers), firstErr)
}

func (t *TieredAssetStore) PutSlot(ctx context.Context, slot models.ImageSlot) error {
	return t.writeAll("put slot", func(s store.AssetStore) error { return s.PutSlot(ctx, slot) })
}

func (t *TieredAssetStore) GetAllSlots(ctx context.Context) ([]models.ImageSlot, error) {
	return readFirst(t, "get slots", func(s store.AssetStore) ([]models.ImageSlot, error) {
		return s.GetAllSlots(ctx)
	})
}

func (t *TieredAssetStore) PutGalleryItem(ctx context.Context, item models.GalleryItem) error {
	return t.writeAll("put gallery item", func(s store.AssetStore) error { return s.PutGalleryItem(ctx, item) })
}

func (t *TieredAssetStore) GetGalleryItems(ctx context.Context) ([]models.GalleryItem, error) {
	return readFirst(t, "get gallery", func(s store.AssetStore) ([]models.GalleryItem, error) {
		return s.GetGalleryItems(ctx)
	})
}

func (t *TieredAssetStore) ClearGallery(ctx context.Context) error {
	return t.writeAll("clear gallery", func(s store.AssetStore) error { return s.ClearGallery(ctx) })
}

func (t *TieredAssetStore) PutMoment(ctx context.Context, moment models.GuestMoment) error {
	return t.writeAll("put moment", func(s store.AssetStore) error { return s.PutMoment(ctx, moment) })
}

func (t *TieredAssetStore) GetMoments(ctx context.Context) ([]models.GuestMoment, error) {
	return readFirst(t, "get moments", func(s store.AssetStore) ([]models.GuestMoment, error) {
		return s.GetMoments(ctx)
	})
}

func (t *TieredAssetStore) CreatePass(ctx context.Context, pass models.Pass) (models.Pass, error) {
	// Creation is conditional on the pass id, so it cannot blindly fan out:
	// a tier that already holds the id must veto the whole create.
	var created models.Pass
	var firstErr error
	accepted := 0

	for i, tier := range t.tiers {
		result, err := tier.CreatePass(ctx, pass)
		if errors.Is(err, store.ErrConditionFailed) {
			return models.Pass{}, err
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			log.Warn().Err(err).Int("tier", i).Msg("storage tier rejected pass create")
			continue
		}
		if accepted == 0 {
			created = result
		}
		accepted++
	}

	if accepted == 0 {
		return models.Pass{}, fmt.Errorf("create pass failed on all %d tiers: %w", len(t.tiers), firstErr)
	}
	return created, nil
}

func (t *TieredAssetStore) GetPass(ctx context.Context, passID string) (models.Pass, error) {
	return readFirst(t, "get pass", func(s store.AssetStore) (models.Pass, error) {
		return s.GetPass(ctx, passID)
	})
}

func (t *TieredAssetStore) GetPassByEmail(ctx context.Context, email string) (models.Pass, error) {
	return readFirst(t, "get pass by email", func(s store.AssetStore) (models.Pass, error) {
		return s.GetPassByEmail(ctx, email)
	})
}

func (t *TieredAssetStore) UpdatePassSecret(ctx context.Context, passID string, newSecret string) error {
	return t.writeAll("update pass secret", func(s store.AssetStore) error {
		return s.UpdatePassSecret(ctx, passID, newSecret)
	})
}

func (t *TieredAssetStore) IncrementUploadCount(ctx context.Context, kind string, delta int) error {
	return t.writeAll("increment counter", func(s store.AssetStore) error {
		return s.IncrementUploadCount(ctx, kind, delta)
	})
}

func (t *TieredAssetStore) GetUploadCounts(ctx context.Context) (models.UploadCounts, error) {
	return readFirst(t, "get counts", func(s store.AssetStore) (models.UploadCounts, error) {
		return s.GetUploadCounts(ctx)
	})
}
