package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/store"
)

// Bundled placeholders shown while the community gallery is empty. They are
// never persisted; the first real upload displaces them entirely.
var defaultGallerySeeds = []string{
	"https://picsum.photos/seed/rsv-orchard/800/600",
	"https://picsum.photos/seed/rsv-bonfire/800/600",
	"https://picsum.photos/seed/rsv-workshop/800/600",
	"https://picsum.photos/seed/rsv-hillside/800/600",
	"https://picsum.photos/seed/rsv-longtable/800/600",
	"https://picsum.photos/seed/rsv-stargazing/800/600",
}

func defaultGalleryItems() []models.GalleryItem {
	items := make([]models.GalleryItem, len(defaultGallerySeeds))
	for i, url := range defaultGallerySeeds {
		items[i] = models.GalleryItem{
			ID:   fmt.Sprintf("default-%d", i+1),
			Data: url,
		}
	}
	return items
}

// Demo credentials printed in the site footer.
const (
	demoPassID    = "SVP-2024-DEMO-0000"
	demoPassEmail = "demo@ruralsiliconvalley.org"
	demoSecret    = "welcome"
)

// SeedDemoPass inserts the demo pass once, so a fresh deployment can be
// logged into immediately. An existing record, demo or otherwise, wins.
func (s *Service) SeedDemoPass(ctx context.Context) error {
	_, err := s.Store.GetPass(ctx, demoPassID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrItemNotFound) {
		return err
	}

	pass := models.Pass{
		ID:        demoPassID,
		Name:      "Demo Guest",
		Email:     demoPassEmail,
		Secret:    demoSecret,
		CreatedAt: time.Now().UnixMilli(),
		Avatar:    avatarURL("Demo Guest"),
	}

	if _, err := s.Store.CreatePass(ctx, pass); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			// Lost a boot race to another instance, same outcome.
			return nil
		}
		return err
	}

	log.Info().Str("passId", demoPassID).Msg("seeded demo pass")
	return nil
}
