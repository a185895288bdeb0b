package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/store"
)

// EmailIndex is the GSI used for the unique-email lookup at pass minting.
const EmailIndex = "GSI_PassEmail"

type DynamoAssetStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoAssetStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoAssetStore, error) {
	client, err := newDynamoDBClient(context.Background(), devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoAssetStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoAssetStore) PutSlot(ctx context.Context, slot models.ImageSlot) error {
	// Upsert, last write wins; slots carry no history
	return putItem(dynamoStore, ctx, slotToDynamo(slot))
}

func (dynamoStore *DynamoAssetStore) GetAllSlots(ctx context.Context) ([]models.ImageSlot, error) {
	dynamoSlots, err := queryAllByPK[dynamoSlot](dynamoStore, ctx, pkSlots, true, 0)
	if err != nil {
		return nil, err
	}

	slots := make([]models.ImageSlot, 0, len(dynamoSlots))
	for _, ds := range dynamoSlots {
		slots = append(slots, slotFromDynamo(ds))
	}
	return slots, nil
}

func (dynamoStore *DynamoAssetStore) PutGalleryItem(ctx context.Context, item models.GalleryItem) error {
	return putItem(dynamoStore, ctx, galleryItemToDynamo(item))
}

func (dynamoStore *DynamoAssetStore) GetGalleryItems(ctx context.Context) ([]models.GalleryItem, error) {
	// UUIDv7 SKs sort chronologically; fetch newest first
	dynamoItems, err := queryAllByPK[dynamoGalleryItem](dynamoStore, ctx, pkGallery, false, 0)
	if err != nil {
		return nil, err
	}

	items := make([]models.GalleryItem, 0, len(dynamoItems))
	for _, di := range dynamoItems {
		items = append(items, galleryItemFromDynamo(di))
	}
	return items, nil
}

func (dynamoStore *DynamoAssetStore) ClearGallery(ctx context.Context) error {
	return batchDeleteByPKThrottled(dynamoStore, ctx, pkGallery, 50*time.Millisecond)
}

func (dynamoStore *DynamoAssetStore) PutMoment(ctx context.Context, moment models.GuestMoment) error {
	return putItem(dynamoStore, ctx, momentToDynamo(moment))
}

func (dynamoStore *DynamoAssetStore) GetMoments(ctx context.Context) ([]models.GuestMoment, error) {
	dynamoMoments, err := queryAllByPK[dynamoMoment](dynamoStore, ctx, pkMoments, false, 0)
	if err != nil {
		return nil, err
	}

	moments := make([]models.GuestMoment, 0, len(dynamoMoments))
	for _, dm := range dynamoMoments {
		moments = append(moments, momentFromDynamo(dm))
	}
	return moments, nil
}

func (dynamoStore *DynamoAssetStore) CreatePass(ctx context.Context, pass models.Pass) (models.Pass, error) {
	dp := passToDynamo(pass)
	dp.CreatedAt = time.Now().UnixMilli()

	dp, inserted, err := ensureItem(dynamoStore, ctx, dp)
	if err != nil {
		return models.Pass{}, err
	}
	if !inserted {
		// Generated pass ids are not re-checked for collisions upstream;
		// surface the clash instead of overwriting the existing holder.
		return models.Pass{}, store.ErrConditionFailed
	}

	return passFromDynamo(dp), nil
}

func (dynamoStore *DynamoAssetStore) GetPass(ctx context.Context, passID string) (models.Pass, error) {
	dp, err := getItem[dynamoPass](dynamoStore, ctx, pkPasses, passID, false)
	if err != nil {
		return models.Pass{}, err
	}
	return passFromDynamo(dp), nil
}

func (dynamoStore *DynamoAssetStore) GetPassByEmail(ctx context.Context, email string) (models.Pass, error) {
	dp, err := queryOneByGSI[dynamoPass](dynamoStore, ctx, EmailIndex, "Email", email)
	if err != nil {
		return models.Pass{}, err
	}
	return passFromDynamo(dp), nil
}

func (dynamoStore *DynamoAssetStore) UpdatePassSecret(ctx context.Context, passID string, newSecret string) error {
	dp := dynamoPass{PK: pkPasses, SK: passID, Secret: newSecret}
	_, err := updateItem(dynamoStore, ctx, dp, []string{"Secret"})
	return err
}

func (dynamoStore *DynamoAssetStore) IncrementUploadCount(ctx context.Context, kind string, delta int) error {
	// Stats items are created on first increment
	return incrementCounter(dynamoStore, ctx, pkStats, kind, "Count", delta, true)
}

func (dynamoStore *DynamoAssetStore) GetUploadCounts(ctx context.Context) (models.UploadCounts, error) {
	counters, err := queryAllByPK[dynamoCounter](dynamoStore, ctx, pkStats, true, 0)
	if err != nil {
		return models.UploadCounts{}, err
	}

	var counts models.UploadCounts
	for _, c := range counters {
		switch c.SK {
		case store.CountSlots:
			counts.Slots = c.Count
		case store.CountGallery:
			counts.Gallery = c.Count
		case store.CountMoments:
			counts.Moments = c.Count
		}
	}
	return counts, nil
}
