package pubsub

import "context"

// Broker fans asset events out to interested listeners (the websocket hub,
// other instances). Subscribe handlers run until ctx is cancelled.
type Broker interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Subscribe(ctx context.Context, channel string, handler func(message []byte)) error
}

// Channel carrying all asset events.
const AssetEvents = "asset-events"
