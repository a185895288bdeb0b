package redis

import (
	"context"
	"crypto/tls"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type RedisBroker struct {
	client redis.UniversalClient
}

func NewRedisBroker(ctx context.Context, devMode bool, redisEndpoint string) (*RedisBroker, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisBroker{client: client}, nil
}

// NewWithClient shares an existing connection pool with the mirror store.
func NewWithClient(client redis.UniversalClient) *RedisBroker {
	return &RedisBroker{client: client}
}

// Client exposes the underlying connection for sharing with the mirror store.
func (broker *RedisBroker) Client() redis.UniversalClient {
	return broker.client
}

func (broker *RedisBroker) Publish(ctx context.Context, channel string, message []byte) error {
	return broker.client.Publish(ctx, channel, message).Err()
}

func (broker *RedisBroker) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	pubsub := broker.client.Subscribe(ctx, channel)
	// Ensure subscription is established
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		log.Error().Err(err).Str("channel", channel).Msg("pubsub subscribe failed")
		return err
	}

	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()

	return nil
}
