package api

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/api/rest"
	"github.com/ruralsv/retreat/api/ws"
	"github.com/ruralsv/retreat/mq"
	"github.com/ruralsv/retreat/pubsub"
	"github.com/ruralsv/retreat/service"
	"github.com/ruralsv/retreat/store"
	"github.com/ruralsv/retreat/worker"
)

type RetreatAPI struct {
	service     *service.Service
	restHandler *rest.Handler
	wsHandler   *ws.Handler
	wsUpgrader  websocket.Upgrader
	shutdownCtx context.Context
}

func NewRetreatAPI(
	assetStore store.AssetStore,
	mirror store.AssetStore,
	broker pubsub.Broker,
	clearQueue mq.MessageQueue,
	chat service.ChatClient,
	uploader service.SideUploader,
	jwtSecret []byte,
	uploadDir string,
	shutdownCtx context.Context,
) (*RetreatAPI, error) {
	wsHub := ws.NewHub(broker)
	if err := wsHub.InitSubscriptions(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to start ws hub subscriptions")
		return nil, err
	}
	go wsHub.Run()

	counterBatcher := worker.NewCounterBatcher(assetStore, 60000)
	go counterBatcher.Run(shutdownCtx)

	gallerySweeper := worker.NewGallerySweeper(clearQueue, assetStore, broker)
	go gallerySweeper.Run(shutdownCtx)

	svc := service.NewService(
		assetStore,
		mirror,
		broker,
		clearQueue,
		counterBatcher,
		chat,
		uploader,
		jwtSecret,
	)

	restHandler := rest.NewHandler(svc, uploadDir)
	wsHandler := ws.NewHandler(svc, wsHub)

	return &RetreatAPI{
		service:     svc,
		restHandler: restHandler,
		wsHandler:   wsHandler,
		shutdownCtx: shutdownCtx,
	}, nil
}

// Service exposes the wired service for boot tasks (hydration, demo seed).
func (retreatAPI *RetreatAPI) Service() *service.Service {
	return retreatAPI.service
}

func (retreatAPI *RetreatAPI) RegisterRoutes(mux *http.ServeMux, requiredOrigin string) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/assets", retreatAPI.restHandler.HandleAssets)
	mux.HandleFunc("/assets/", retreatAPI.restHandler.HandleAssetUpload)

	mux.HandleFunc("/gallery", retreatAPI.restHandler.HandleGallery)
	mux.HandleFunc("/gallery/orbit", retreatAPI.restHandler.HandleGalleryOrbit)
	mux.HandleFunc("/moments", retreatAPI.restHandler.HandleMoments)

	mux.HandleFunc("/passes", retreatAPI.restHandler.HandlePasses)
	mux.HandleFunc("/passes/verify", retreatAPI.restHandler.HandlePassVerify)
	mux.HandleFunc("/passes/reset", retreatAPI.restHandler.HandlePassReset)
	mux.HandleFunc("/me", retreatAPI.restHandler.HandleMe)

	mux.HandleFunc("/chat", retreatAPI.restHandler.HandleChat)
	mux.HandleFunc("/stats", retreatAPI.restHandler.HandleStats)
	mux.HandleFunc("/upload", retreatAPI.restHandler.HandleUpload)

	wsUpgrader := retreatAPI.wsHandler.NewWsUpgrader(requiredOrigin)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		retreatAPI.wsHandler.ServeWS(wsUpgrader, w, r, retreatAPI.shutdownCtx)
	})
}
