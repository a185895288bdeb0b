// Package redismirror is the degraded storage tier: a Redis copy of the
// durable data, refreshed on every write that reaches it. It holds the
// last-known-good snapshot for reads when DynamoDB is unavailable and absorbs
// writes that the durable tier rejected; data written only here lives as long
// as the Redis node does.
package redismirror

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/store"
)

type RedisMirrorStore struct {
	client redis.UniversalClient
}

func NewRedisMirrorStore(ctx context.Context, devMode bool, redisEndpoint string) (*RedisMirrorStore, error) {
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

	return &RedisMirrorStore{client: client}, nil
}

// NewWithClient wires an existing client, so the mirror and the pubsub broker
// can share one connection pool.
func NewWithClient(client redis.UniversalClient) *RedisMirrorStore {
	return &RedisMirrorStore{client: client}
}

// Key layout. Slots are a flat hash. Ordered collections use the split
// index/data pattern: a ZSET of ids scored by creation time next to a HASH of
// id -> JSON, so ordered reads are one ZRevRange plus one HMGet.
const (
	keySlots        = "mirror:slots"
	keyGalleryIndex = "mirror:gallery"
	keyGalleryData  = "mirror:gallery:data"
	keyMomentsIndex = "mirror:moments"
	keyMomentsData  = "mirror:moments:data"
	keyPasses       = "mirror:passes"
	keyStats        = "mirror:stats"
)

func (mirror *RedisMirrorStore) PutSlot(ctx context.Context, slot models.ImageSlot) error {
	return mirror.client.HSet(ctx, keySlots, slot.ID, slot.Data).Err()
}

func (mirror *RedisMirrorStore) GetAllSlots(ctx context.Context) ([]models.ImageSlot, error) {
	raw, err := mirror.client.HGetAll(ctx, keySlots).Result()
	if err != nil {
		return nil, err
	}

	slots := make([]models.ImageSlot, 0, len(raw))
	for id, data := range raw {
		slots = append(slots, models.ImageSlot{ID: id, Data: data})
	}
	return slots, nil
}

func (mirror *RedisMirrorStore) PutGalleryItem(ctx context.Context, item models.GalleryItem) error {
	return mirror.putOrdered(ctx, keyGalleryIndex, keyGalleryData, item.ID, item.CreatedAt, item)
}

func (mirror *RedisMirrorStore) GetGalleryItems(ctx context.Context) ([]models.GalleryItem, error) {
	return getOrdered[models.GalleryItem](mirror, ctx, keyGalleryIndex, keyGalleryData)
}

func (mirror *RedisMirrorStore) ClearGallery(ctx context.Context) error {
	return mirror.client.Del(ctx, keyGalleryIndex, keyGalleryData).Err()
}

func (mirror *RedisMirrorStore) PutMoment(ctx context.Context, moment models.GuestMoment) error {
	return mirror.putOrdered(ctx, keyMomentsIndex, keyMomentsData, moment.ID, moment.CreatedAt, moment)
}

func (mirror *RedisMirrorStore) GetMoments(ctx context.Context) ([]models.GuestMoment, error) {
	return getOrdered[models.GuestMoment](mirror, ctx, keyMomentsIndex, keyMomentsData)
}

func (mirror *RedisMirrorStore) CreatePass(ctx context.Context, pass models.Pass) (models.Pass, error) {
	passBytes, err := json.Marshal(mirrorPass(pass))
	if err != nil {
		return models.Pass{}, err
	}

	created, err := mirror.client.HSetNX(ctx, keyPasses, pass.ID, passBytes).Result()
	if err != nil {
		return models.Pass{}, err
	}
	if !created {
		return models.Pass{}, store.ErrConditionFailed
	}
	return pass, nil
}

func (mirror *RedisMirrorStore) GetPass(ctx context.Context, passID string) (models.Pass, error) {
	raw, err := mirror.client.HGet(ctx, keyPasses, passID).Result()
	if errors.Is(err, redis.Nil) {
		return models.Pass{}, store.ErrItemNotFound
	}
	if err != nil {
		return models.Pass{}, err
	}

	var mp passRecord
	if err := json.Unmarshal([]byte(raw), &mp); err != nil {
		return models.Pass{}, fmt.Errorf("corrupt mirrored pass %s: %w", passID, err)
	}
	return mp.toModel(), nil
}

func (mirror *RedisMirrorStore) GetPassByEmail(ctx context.Context, email string) (models.Pass, error) {
	// Linear scan over the pass hash; the mirror never holds more than the
	// demo-scale pass set, so a secondary index is not worth keeping in sync
	raw, err := mirror.client.HGetAll(ctx, keyPasses).Result()
	if err != nil {
		return models.Pass{}, err
	}

	for _, v := range raw {
		var mp passRecord
		if err := json.Unmarshal([]byte(v), &mp); err != nil {
			continue
		}
		if mp.Email == email {
			return mp.toModel(), nil
		}
	}
	return models.Pass{}, store.ErrItemNotFound
}

func (mirror *RedisMirrorStore) UpdatePassSecret(ctx context.Context, passID string, newSecret string) error {
	pass, err := mirror.GetPass(ctx, passID)
	if err != nil {
		return err
	}

	pass.Secret = newSecret
	passBytes, err := json.Marshal(mirrorPass(pass))
	if err != nil {
		return err
	}
	return mirror.client.HSet(ctx, keyPasses, passID, passBytes).Err()
}

func (mirror *RedisMirrorStore) IncrementUploadCount(ctx context.Context, kind string, delta int) error {
	return mirror.client.HIncrBy(ctx, keyStats, kind, int64(delta)).Err()
}

func (mirror *RedisMirrorStore) GetUploadCounts(ctx context.Context) (models.UploadCounts, error) {
	raw, err := mirror.client.HGetAll(ctx, keyStats).Result()
	if err != nil {
		return models.UploadCounts{}, err
	}

	var counts models.UploadCounts
	for kind, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		switch kind {
		case store.CountSlots:
			counts.Slots = n
		case store.CountGallery:
			counts.Gallery = n
		case store.CountMoments:
			counts.Moments = n
		}
	}
	return counts, nil
}

func (mirror *RedisMirrorStore) putOrdered(ctx context.Context, indexKey, dataKey, id string, createdAt int64, record any) error {
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return err
	}

	pipe := mirror.client.Pipeline()
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(createdAt), Member: id})
	pipe.HSet(ctx, dataKey, id, recordBytes)
	_, err = pipe.Exec(ctx)
	return err
}

// getOrdered reads an ordered collection newest first.
func getOrdered[T any](mirror *RedisMirrorStore, ctx context.Context, indexKey, dataKey string) ([]T, error) {
	ids, err := mirror.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []T{}, nil
	}

	raw, err := mirror.client.HMGet(ctx, dataKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(s), &record); err == nil {
			out = append(out, record)
		}
	}
	return out, nil
}

// passRecord keeps the secret in the mirrored JSON; models.Pass hides it from
// API responses with `json:"-"`, which would otherwise drop it here too.
type passRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Secret    string `json:"secret"`
	CreatedAt int64  `json:"createdAt"`
	Avatar    string `json:"avatar"`
}

func mirrorPass(p models.Pass) passRecord {
	return passRecord{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Secret:    p.Secret,
		CreatedAt: p.CreatedAt,
		Avatar:    p.Avatar,
	}
}

func (r passRecord) toModel() models.Pass {
	return models.Pass{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Secret:    r.Secret,
		CreatedAt: r.CreatedAt,
		Avatar:    r.Avatar,
	}
}
