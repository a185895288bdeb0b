package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/mq"
	"github.com/ruralsv/retreat/pubsub"
	"github.com/ruralsv/retreat/store"
)

// ClearGalleryMessage is the job body enqueued when a gallery clear is
// requested. The API empties the in-memory view immediately; the durable
// delete runs here, throttled, so a large gallery cannot stall a request.
type ClearGalleryMessage struct {
	RequestedAt int64 `json:"requestedAt"`
}

type GallerySweeper struct {
	clearQueue mq.MessageQueue
	assetStore store.AssetStore
	broker     pubsub.Broker
}

func NewGallerySweeper(clearQueue mq.MessageQueue, assetStore store.AssetStore, broker pubsub.Broker) *GallerySweeper {
	return &GallerySweeper{
		clearQueue: clearQueue,
		assetStore: assetStore,
		broker:     broker,
	}
}

// Allow up to 5 minutes for the throttled batch deletion of the gallery
const visibilityTimeout = 300

func (sweeper GallerySweeper) Run(shutdownCtx context.Context) {
	for {
		msg, err := sweeper.clearQueue.Receive(shutdownCtx, visibilityTimeout)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Error().Err(err).Msg("gallery sweeper receive error")
			continue
		}

		if msg == nil {
			continue
		}

		var clearMsg ClearGalleryMessage
		if err := json.Unmarshal([]byte(msg.Body), &clearMsg); err != nil {
			continue
		}

		// timeout should be a little less than queue visibility timeout
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(visibilityTimeout-1)*time.Second)

		err = sweeper.assetStore.ClearGallery(ctx)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("gallery sweeper clear error")
			continue
		}

		eventBytes, _ := json.Marshal(map[string]any{"type": "gallery_cleared"})
		if err := sweeper.broker.Publish(context.Background(), pubsub.AssetEvents, eventBytes); err != nil {
			log.Error().Err(err).Msg("gallery sweeper publish error")
		}

		if err := sweeper.clearQueue.Delete(context.Background(), msg); err != nil {
			log.Error().Err(err).Msg("gallery sweeper ack error")
			continue
		}

		log.Info().Int64("requestedAt", clearMsg.RequestedAt).Msg("gallery cleared")
	}
}
