package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	mqmocks "github.com/ruralsv/retreat/mq/mocks"
	pubsubmocks "github.com/ruralsv/retreat/pubsub/mocks"
	"github.com/ruralsv/retreat/service"
	storemocks "github.com/ruralsv/retreat/store/mocks"
	"github.com/ruralsv/retreat/worker"
)

func setupService(t *testing.T) (*service.Service, *storemocks.MockStore, *pubsubmocks.MockBroker, *mqmocks.MockMQ, *worker.CounterBatcher) {
	mockStore := new(storemocks.MockStore)
	mockBroker := new(pubsubmocks.MockBroker)
	mockMQ := new(mqmocks.MockMQ)

	// Real batcher; tests verify items are pushed to its channel
	counterBatcher := worker.NewCounterBatcher(mockStore, 1000)

	// Event broadcasts run on goroutines after the call returns, so they
	// may or may not land before a test finishes
	mockBroker.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	svc := service.NewService(
		mockStore,
		nil,
		mockBroker,
		mockMQ,
		counterBatcher,
		nil,
		nil,
		[]byte("secret"),
	)

	return svc, mockStore, mockBroker, mockMQ, counterBatcher
}

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// stubUploader stands in for the upload side channel.
type stubUploader struct {
	enabled bool
	url     string
	fail    bool
	gotID   string
}

func (u *stubUploader) Enabled() bool { return u.enabled }

func (u *stubUploader) Upload(ctx context.Context, id string, filename string, raw []byte) (string, error) {
	u.gotID = id
	if u.fail {
		return "", errors.New("side channel down")
	}
	return u.url, nil
}
