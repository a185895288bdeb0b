package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/codec"
	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/pubsub"
	"github.com/ruralsv/retreat/store"
	"github.com/ruralsv/retreat/worker"
)

type GalleryAddedMessage struct {
	Type string               `json:"type"`
	Data []models.GalleryItem `json:"data"`
}

type GalleryClearedMessage struct {
	Type string `json:"type"`
}

type MomentAddedMessage struct {
	Type string             `json:"type"`
	Data models.GuestMoment `json:"data"`
}

// UploadFile is one member of an incoming gallery batch.
type UploadFile struct {
	Filename string
	Raw      []byte
}

// UploadError reports a single failed batch member by position.
type UploadError struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// UploadGalleryBatch stores each file of a batch independently. One bad file
// fails alone; its siblings still land. Returns the stored items plus
// per-file errors, both possibly non-empty.
func (s *Service) UploadGalleryBatch(ctx context.Context, files []UploadFile) ([]models.GalleryItem, []UploadError) {
	stored := make([]models.GalleryItem, 0, len(files))
	var failed []UploadError

	for i, file := range files {
		item, err := s.addGalleryItem(ctx, file.Raw)
		if err != nil {
			failed = append(failed, UploadError{Index: i, Filename: file.Filename, Reason: err.Error()})
			continue
		}
		stored = append(stored, item)
	}

	if len(stored) > 0 {
		// Async side-effects, return as soon as every item is persisted
		go func() {
			for range stored {
				s.countUpload(store.CountGallery)
			}
			msg := GalleryAddedMessage{Type: "gallery_added", Data: stored}
			if msgBytes, err := json.Marshal(msg); err == nil {
				s.Broker.Publish(context.Background(), pubsub.AssetEvents, msgBytes)
			}
		}()
	}

	return stored, failed
}

func (s *Service) addGalleryItem(ctx context.Context, raw []byte) (models.GalleryItem, error) {
	encoded, err := codec.EncodeWithPreset(raw, codec.ThumbPreset)
	if err != nil {
		return models.GalleryItem{}, err
	}

	itemUUID, err := uuid.NewV7()
	if err != nil {
		return models.GalleryItem{}, err
	}

	item := models.GalleryItem{
		ID:        itemUUID.String(),
		Data:      encoded,
		CreatedAt: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	s.gallery = append([]models.GalleryItem{item}, s.gallery...)
	s.mu.Unlock()

	if err := s.Store.PutGalleryItem(ctx, item); err != nil {
		return models.GalleryItem{}, err
	}

	return item, nil
}

// GalleryItems returns the community gallery newest-first. An empty gallery
// presents the bundled demo set so the section never renders blank.
func (s *Service) GalleryItems() []models.GalleryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.gallery) == 0 {
		return defaultGalleryItems()
	}
	items := make([]models.GalleryItem, len(s.gallery))
	copy(items, s.gallery)
	return items
}

// ClearGallery empties the live view immediately and hands the durable delete
// to the sweeper via the clear queue. Guest moments are untouched; there is
// no bulk clear for them.
func (s *Service) ClearGallery(ctx context.Context) error {
	s.mu.Lock()
	s.gallery = nil
	s.mu.Unlock()

	msg := worker.ClearGalleryMessage{RequestedAt: time.Now().UnixMilli()}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := s.ClearQueue.Send(ctx, string(msgBytes)); err != nil {
		return fmt.Errorf("enqueue gallery clear: %w", err)
	}

	// Async side-effects: the mirror empties right away so a degraded read
	// cannot resurrect cleared items while the sweeper works through the
	// durable tier.
	go func() {
		if s.Mirror != nil {
			mirrorCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Mirror.ClearGallery(mirrorCtx); err != nil {
				log.Error().Err(err).Msg("mirror gallery clear failed")
			}
		}
		cleared := GalleryClearedMessage{Type: "gallery_cleared"}
		if clearedBytes, err := json.Marshal(cleared); err == nil {
			s.Broker.Publish(context.Background(), pubsub.AssetEvents, clearedBytes)
		}
	}()

	return nil
}

// AddMoment stores a guest photo with its caption metadata.
func (s *Service) AddMoment(ctx context.Context, caption, author, location string, raw []byte) (models.GuestMoment, error) {
	if err := ValidateMomentMeta(caption, author, location); err != nil {
		return models.GuestMoment{}, err
	}

	encoded, err := codec.EncodeWithPreset(raw, codec.ThumbPreset)
	if err != nil {
		return models.GuestMoment{}, err
	}

	momentUUID, err := uuid.NewV7()
	if err != nil {
		return models.GuestMoment{}, err
	}

	moment := models.GuestMoment{
		ID:        momentUUID.String(),
		Data:      encoded,
		Caption:   caption,
		Author:    author,
		Location:  location,
		CreatedAt: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	s.moments = append([]models.GuestMoment{moment}, s.moments...)
	s.mu.Unlock()

	if err := s.Store.PutMoment(ctx, moment); err != nil {
		return models.GuestMoment{}, err
	}

	go func() {
		s.countUpload(store.CountMoments)
		msg := MomentAddedMessage{Type: "moment_added", Data: moment}
		if msgBytes, err := json.Marshal(msg); err == nil {
			s.Broker.Publish(context.Background(), pubsub.AssetEvents, msgBytes)
		}
	}()

	return moment, nil
}

// Moments returns guest moments newest-first.
func (s *Service) Moments() []models.GuestMoment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	moments := make([]models.GuestMoment, len(s.moments))
	copy(moments, s.moments)
	return moments
}
