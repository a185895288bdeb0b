package ws

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/pubsub"
)

// Hub maintains the set of connected clients and fans asset events out to
// them. Events arrive over the pubsub broker, so every instance behind a load
// balancer broadcasts the same stream.
type Hub struct {
	broker      pubsub.Broker
	OpenCh      chan *Client
	CloseCh     chan *Client
	BroadcastCh chan []byte
	clients     map[*Client]struct{}
}

func NewHub(broker pubsub.Broker) *Hub {
	return &Hub{
		broker:      broker,
		OpenCh:      make(chan *Client, 256),
		CloseCh:     make(chan *Client, 256),
		BroadcastCh: make(chan []byte, 1024),
		clients:     make(map[*Client]struct{}),
	}
}

const maxConnections = 512

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.OpenCh:
			if len(h.clients) >= maxConnections {
				log.Warn().Int("max", maxConnections).Msg("ws hub at connection limit, rejecting client")
				close(client.Send)
				continue
			}
			h.clients[client] = struct{}{}

		case client := <-h.CloseCh:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}

		case message := <-h.BroadcastCh:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer, drop it rather than stall the hub
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}

// InitSubscriptions wires the hub to the asset event channel. Called once
// before Run; the subscription lives until shutdown.
func (h *Hub) InitSubscriptions(shutdownCtx context.Context) error {
	err := h.broker.Subscribe(shutdownCtx, pubsub.AssetEvents, func(message []byte) {
		h.BroadcastCh <- message
	})
	if err != nil {
		log.Error().Err(err).Msg("ws hub failed to subscribe to asset events")
		return err
	}
	return nil
}
