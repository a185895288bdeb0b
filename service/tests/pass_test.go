package service_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/service"
	"github.com/ruralsv/retreat/store"
)

var passIDPattern = regexp.MustCompile(`^SVP-\d{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

func TestMintPass_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetPassByEmail", ctx, "ana@example.com").Return(models.Pass{}, store.ErrItemNotFound)
	call := mockStore.On("CreatePass", ctx, mock.AnythingOfType("models.Pass"))
	call.Run(func(args mock.Arguments) {
		call.ReturnArguments = mock.Arguments{args.Get(1).(models.Pass), nil}
	})

	pass, err := svc.MintPass(ctx, "Ana", "ana@example.com", "hunter2")
	assert.NoError(t, err)
	assert.Regexp(t, passIDPattern, pass.ID)
	assert.Equal(t, "hunter2", pass.Secret)
	assert.Contains(t, pass.Avatar, "dicebear")
	assert.NotZero(t, pass.CreatedAt)
}

func TestMintPass_DuplicateEmail(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetPassByEmail", ctx, "ana@example.com").Return(models.Pass{ID: "SVP-2025-AAAA-BBBB"}, nil)

	_, err := svc.MintPass(ctx, "Ana", "ana@example.com", "hunter2")
	assert.ErrorIs(t, err, service.ErrEmailTaken)
	mockStore.AssertNotCalled(t, "CreatePass", mock.Anything, mock.Anything)
}

func TestMintPass_InvalidFields(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)

	_, err := svc.MintPass(context.Background(), "", "ana@example.com", "hunter2")
	assert.Error(t, err)

	_, err = svc.MintPass(context.Background(), "Ana", "not-an-email", "hunter2")
	assert.Error(t, err)

	_, err = svc.MintPass(context.Background(), "Ana", "ana@example.com", "ab")
	assert.Error(t, err)

	mockStore.AssertNotCalled(t, "GetPassByEmail", mock.Anything, mock.Anything)
}

func TestVerifyPass_RoundTrip(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	stored := models.Pass{ID: "SVP-2025-AAAA-BBBB", Name: "Ana", Email: "ana@example.com", Secret: "hunter2"}
	mockStore.On("GetPass", ctx, stored.ID).Return(stored, nil)

	pass, token, err := svc.VerifyPass(ctx, stored.ID, "hunter2")
	assert.NoError(t, err)
	assert.Equal(t, stored.ID, pass.ID)
	assert.NotEmpty(t, token)

	resolved, err := svc.PassFromToken(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, stored.ID, resolved.ID)
}

func TestVerifyPass_WrongSecret(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetPass", ctx, "SVP-2025-AAAA-BBBB").Return(models.Pass{ID: "SVP-2025-AAAA-BBBB", Secret: "hunter2"}, nil)

	_, _, err := svc.VerifyPass(ctx, "SVP-2025-AAAA-BBBB", "wrong")
	assert.ErrorIs(t, err, service.ErrPassMismatch)
}

func TestVerifyPass_UnknownID(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetPass", ctx, "SVP-2025-ZZZZ-ZZZZ").Return(models.Pass{}, store.ErrItemNotFound)

	// Unknown id and wrong secret are indistinguishable to the caller
	_, _, err := svc.VerifyPass(ctx, "SVP-2025-ZZZZ-ZZZZ", "hunter2")
	assert.ErrorIs(t, err, service.ErrPassMismatch)
}

func TestResetSecret_Success(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	stored := models.Pass{ID: "SVP-2025-AAAA-BBBB", Email: "ana@example.com", Secret: "old"}
	mockStore.On("GetPass", ctx, stored.ID).Return(stored, nil)
	mockStore.On("UpdatePassSecret", ctx, stored.ID, "newsecret").Return(nil)

	ok, err := svc.ResetSecret(ctx, stored.ID, "ana@example.com", "newsecret")
	assert.NoError(t, err)
	assert.True(t, ok)
	mockStore.AssertCalled(t, "UpdatePassSecret", ctx, stored.ID, "newsecret")
}

func TestResetSecret_PairMismatch(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	stored := models.Pass{ID: "SVP-2025-AAAA-BBBB", Email: "ana@example.com", Secret: "old"}
	mockStore.On("GetPass", ctx, stored.ID).Return(stored, nil)

	ok, err := svc.ResetSecret(ctx, stored.ID, "other@example.com", "newsecret")
	assert.NoError(t, err)
	assert.False(t, ok)
	mockStore.AssertNotCalled(t, "UpdatePassSecret", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetSecret_UnknownID(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetPass", ctx, "SVP-2025-ZZZZ-ZZZZ").Return(models.Pass{}, store.ErrItemNotFound)

	ok, err := svc.ResetSecret(ctx, "SVP-2025-ZZZZ-ZZZZ", "ana@example.com", "newsecret")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateAndVerifyJWT(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	token, err := svc.CreateJWT("SVP-2025-AAAA-BBBB")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	passID, err := svc.VerifyJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, "SVP-2025-AAAA-BBBB", passID)
}

func TestVerifyJWT_Invalid(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	_, err := svc.VerifyJWT("invalid.token.string")
	assert.Error(t, err)
}

func TestSeedDemoPass_SkipsWhenPresent(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetPass", ctx, mock.AnythingOfType("string")).Return(models.Pass{ID: "SVP-2024-DEMO-0000"}, nil)

	err := svc.SeedDemoPass(ctx)
	assert.NoError(t, err)
	mockStore.AssertNotCalled(t, "CreatePass", mock.Anything, mock.Anything)
}

func TestSeedDemoPass_CreatesWhenMissing(t *testing.T) {
	svc, mockStore, _, _, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetPass", ctx, mock.AnythingOfType("string")).Return(models.Pass{}, store.ErrItemNotFound)
	call := mockStore.On("CreatePass", ctx, mock.AnythingOfType("models.Pass"))
	call.Run(func(args mock.Arguments) {
		call.ReturnArguments = mock.Arguments{args.Get(1).(models.Pass), nil}
	})

	err := svc.SeedDemoPass(ctx)
	assert.NoError(t, err)
	mockStore.AssertCalled(t, "CreatePass", ctx, mock.AnythingOfType("models.Pass"))
}
