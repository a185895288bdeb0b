package service

import (
	"context"
	"sync"

	"github.com/ruralsv/retreat/clients/gemini"
	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/mq"
	"github.com/ruralsv/retreat/pubsub"
	"github.com/ruralsv/retreat/store"
	"github.com/ruralsv/retreat/worker"
)

// ChatClient answers concierge chat turns. It never errors; degraded
// backends answer with a canned string.
type ChatClient interface {
	SendMessage(ctx context.Context, message string, history []gemini.Turn) string
}

// SideUploader is the optional static upload side channel. When disabled or
// failing, slot uploads fall back to inline data URIs.
type SideUploader interface {
	Enabled() bool
	Upload(ctx context.Context, id string, filename string, raw []byte) (string, error)
}

type Service struct {
	Store          store.AssetStore
	Mirror         store.AssetStore // direct handle on the mirror tier, may be nil
	Broker         pubsub.Broker
	ClearQueue     mq.MessageQueue
	CounterBatcher *worker.CounterBatcher
	Chat           ChatClient
	Uploader       SideUploader
	JWTSecret      []byte

	// In-memory registry, hydrated before the listener starts.
	mu       sync.RWMutex
	slots    map[string]string
	gallery  []models.GalleryItem
	moments  []models.GuestMoment
	hydrated bool
}

func NewService(
	assetStore store.AssetStore,
	mirror store.AssetStore,
	broker pubsub.Broker,
	clearQueue mq.MessageQueue,
	counterBatcher *worker.CounterBatcher,
	chat ChatClient,
	uploader SideUploader,
	jwtSecret []byte,
) *Service {
	return &Service{
		Store:          assetStore,
		Mirror:         mirror,
		Broker:         broker,
		ClearQueue:     clearQueue,
		CounterBatcher: counterBatcher,
		Chat:           chat,
		Uploader:       uploader,
		JWTSecret:      jwtSecret,
		slots:          make(map[string]string),
	}
}

func (s *Service) UploadStats(ctx context.Context) (models.UploadCounts, error) {
	return s.Store.GetUploadCounts(ctx)
}

// countUpload feeds the batcher without ever blocking a request path.
func (s *Service) countUpload(kind string) {
	if s.CounterBatcher == nil {
		return
	}
	select {
	case s.CounterBatcher.UpdateCh <- worker.CounterUpdate{Kind: kind, Delta: 1}:
	default:
	}
}
