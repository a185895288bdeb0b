package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/store"
)

type CounterUpdate struct {
	Kind  string // store.CountSlots, store.CountGallery, store.CountMoments
	Delta int
}

// CounterBatcher coalesces upload-count increments and flushes them to the
// stats items on a ticker, so a burst of gallery uploads costs one counter
// write per kind instead of one per file.
type CounterBatcher struct {
	UpdateCh           chan CounterUpdate
	assetStore         store.AssetStore
	tickerMilliseconds int
}

func NewCounterBatcher(assetStore store.AssetStore, tickerMilliseconds int) *CounterBatcher {
	return &CounterBatcher{
		UpdateCh:           make(chan CounterUpdate, 1024),
		assetStore:         assetStore,
		tickerMilliseconds: tickerMilliseconds,
	}
}

func (b *CounterBatcher) Run(shutdownCtx context.Context) {
	ticker := time.NewTicker(time.Duration(b.tickerMilliseconds) * time.Millisecond)
	defer ticker.Stop()

	counts := make(map[string]int)

	flush := func() {
		for kind, count := range counts {
			if count == 0 {
				continue
			}
			go func(kind string, delta int) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := b.assetStore.IncrementUploadCount(ctx, kind, delta); err != nil {
					log.Error().Err(err).Str("kind", kind).Int("delta", delta).Msg("failed to flush upload counter")
				}
			}(kind, count)
		}
		counts = make(map[string]int)
	}

	for {
		select {
		case update := <-b.UpdateCh:
			if update.Kind == "" {
				continue
			}
			counts[update.Kind] += update.Delta

			if len(counts) >= 16 {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-shutdownCtx.Done():
			flush()
			return
		}
	}
}
