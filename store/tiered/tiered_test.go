package tiered_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/store"
	storemocks "github.com/ruralsv/retreat/store/mocks"
	"github.com/ruralsv/retreat/store/tiered"
)

var errDown = errors.New("storage unavailable")

func setupTiers(t *testing.T) (*tiered.TieredAssetStore, *storemocks.MockStore, *storemocks.MockStore) {
	durable := new(storemocks.MockStore)
	mirror := new(storemocks.MockStore)

	ts, err := tiered.NewTieredAssetStore(durable, mirror)
	assert.NoError(t, err)
	return ts, durable, mirror
}

func TestNewTieredAssetStore_RequiresTiers(t *testing.T) {
	_, err := tiered.NewTieredAssetStore()
	assert.Error(t, err)
}

func TestWrite_FansOutToAllTiers(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()
	slot := models.ImageSlot{ID: "hero-bg-main", Data: "data:image/jpeg;base64,xxx"}

	durable.On("PutSlot", ctx, slot).Return(nil)
	mirror.On("PutSlot", ctx, slot).Return(nil)

	assert.NoError(t, ts.PutSlot(ctx, slot))
	durable.AssertExpectations(t)
	mirror.AssertExpectations(t)
}

func TestWrite_DurableFailureDegradesToMirror(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()
	slot := models.ImageSlot{ID: "hero-bg-main", Data: "x"}

	durable.On("PutSlot", ctx, slot).Return(errDown)
	mirror.On("PutSlot", ctx, slot).Return(nil)

	// Logical success as long as one tier accepted the write
	assert.NoError(t, ts.PutSlot(ctx, slot))
}

func TestWrite_AllTiersFailing(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()
	slot := models.ImageSlot{ID: "x", Data: "y"}

	durable.On("PutSlot", ctx, slot).Return(errDown)
	mirror.On("PutSlot", ctx, slot).Return(errDown)

	assert.ErrorIs(t, ts.PutSlot(ctx, slot), errDown)
}

func TestRead_PrefersDurableTier(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()
	slots := []models.ImageSlot{{ID: "a", Data: "1"}}

	durable.On("GetAllSlots", ctx).Return(slots, nil)

	got, err := ts.GetAllSlots(ctx)
	assert.NoError(t, err)
	assert.Equal(t, slots, got)
	mirror.AssertNotCalled(t, "GetAllSlots", mock.Anything)
}

func TestRead_FallsThroughToMirror(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()
	mirrored := []models.ImageSlot{{ID: "a", Data: "stale-but-good"}}

	durable.On("GetAllSlots", ctx).Return([]models.ImageSlot{}, errDown)
	mirror.On("GetAllSlots", ctx).Return(mirrored, nil)

	got, err := ts.GetAllSlots(ctx)
	assert.NoError(t, err)
	assert.Equal(t, mirrored, got)
}

func TestRead_NotFoundIsAnAnswerNotAFailure(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()

	durable.On("GetPass", ctx, "SVP-2026-AAAA-BBBB").Return(models.Pass{}, store.ErrItemNotFound)

	_, err := ts.GetPass(ctx, "SVP-2026-AAAA-BBBB")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
	mirror.AssertNotCalled(t, "GetPass", mock.Anything, mock.Anything)
}

func TestCreatePass_ConditionFailureVetoes(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()
	pass := models.Pass{ID: "SVP-2026-AAAA-BBBB"}

	durable.On("CreatePass", ctx, pass).Return(models.Pass{}, store.ErrConditionFailed)

	_, err := ts.CreatePass(ctx, pass)
	assert.ErrorIs(t, err, store.ErrConditionFailed)
	mirror.AssertNotCalled(t, "CreatePass", mock.Anything, mock.Anything)
}

func TestCreatePass_MirrorAloneStillSucceeds(t *testing.T) {
	ts, durable, mirror := setupTiers(t)
	ctx := context.Background()
	pass := models.Pass{ID: "SVP-2026-AAAA-BBBB", Email: "a@x.com"}

	durable.On("CreatePass", ctx, pass).Return(models.Pass{}, errDown)
	mirror.On("CreatePass", ctx, pass).Return(pass, nil)

	created, err := ts.CreatePass(ctx, pass)
	assert.NoError(t, err)
	assert.Equal(t, pass.ID, created.ID)
}
