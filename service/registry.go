package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/codec"
	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/pubsub"
	"github.com/ruralsv/retreat/store"
)

type SlotUpdatedMessage struct {
	Type string           `json:"type"`
	Data models.ImageSlot `json:"data"`
}

// Hydrate loads all persisted assets into the in-memory registry. It is
// awaited before the HTTP listener starts so Resolve never races a cold cache.
// Tier fallbacks inside the store are not errors here; only a total read
// failure is.
func (s *Service) Hydrate(ctx context.Context) error {
	slots, err := s.Store.GetAllSlots(ctx)
	if err != nil {
		return fmt.Errorf("hydrate slots: %w", err)
	}
	gallery, err := s.Store.GetGalleryItems(ctx)
	if err != nil {
		return fmt.Errorf("hydrate gallery: %w", err)
	}
	moments, err := s.Store.GetMoments(ctx)
	if err != nil {
		return fmt.Errorf("hydrate moments: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = make(map[string]string, len(slots))
	for _, slot := range slots {
		s.slots[slot.ID] = slot.Data
	}
	s.gallery = gallery
	s.moments = moments
	s.hydrated = true

	log.Info().Int("slots", len(slots)).Int("gallery", len(gallery)).Int("moments", len(moments)).Msg("registry hydrated")
	return nil
}

// Resolve returns the stored override for a slot, or the caller's fallback
// when no upload has replaced it. Synchronous by contract: render paths call
// this per asset reference.
func (s *Service) Resolve(id string, fallback string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.slots[id]; ok && data != "" {
		return data
	}
	return fallback
}

// Slots returns a snapshot of every overridden slot.
func (s *Service) Slots() []models.ImageSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]models.ImageSlot, 0, len(s.slots))
	for id, data := range s.slots {
		slots = append(slots, models.ImageSlot{ID: id, Data: data})
	}
	return slots
}

// UploadSlot replaces a named slot with a new image. The registry is updated
// optimistically before the store write resolves, so the UI reflects the
// change immediately even if the durable tier is degraded. When the upload
// side channel is configured, its URL is preferred over the inline data URI;
// any side-channel failure falls back to inline, never to an error.
func (s *Service) UploadSlot(ctx context.Context, id string, filename string, raw []byte) (models.ImageSlot, error) {
	if err := ValidateSlotID(id); err != nil {
		return models.ImageSlot{}, err
	}

	encoded, err := codec.EncodeWithPreset(raw, codec.PhotoPreset)
	if err != nil {
		return models.ImageSlot{}, err
	}

	data := encoded
	if s.Uploader != nil && s.Uploader.Enabled() {
		if url, upErr := s.Uploader.Upload(ctx, id, filename, raw); upErr == nil {
			data = url
		} else {
			log.Warn().Err(upErr).Str("slot", id).Msg("upload side channel failed, storing inline")
		}
	}

	slot := models.ImageSlot{ID: id, Data: data}

	s.mu.Lock()
	s.slots[id] = data
	s.mu.Unlock()

	if err := s.Store.PutSlot(ctx, slot); err != nil {
		return models.ImageSlot{}, err
	}

	// Async side-effects, return to caller as soon as the store accepts
	go func() {
		s.countUpload(store.CountSlots)
		msg := SlotUpdatedMessage{Type: "slot_updated", Data: slot}
		if msgBytes, err := json.Marshal(msg); err == nil {
			s.Broker.Publish(context.Background(), pubsub.AssetEvents, msgBytes)
		}
	}()

	return slot, nil
}
