package codec

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURI(t *testing.T, uri string) image.Image {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	assert.True(t, strings.HasPrefix(uri, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	assert.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
	return img
}

func TestEncode_DownscalesLongerEdge(t *testing.T) {
	raw := makePNG(t, 3200, 1600)

	out, err := Encode(raw, 0.8, 1600)
	assert.NoError(t, err)

	img := decodeDataURI(t, out)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 800, img.Bounds().Dy())
}

func TestEncode_NeverUpscales(t *testing.T) {
	raw := makePNG(t, 200, 100)

	out, err := Encode(raw, 0.7, 1024)
	assert.NoError(t, err)

	img := decodeDataURI(t, out)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestEncode_PortraitAspectPreserved(t *testing.T) {
	raw := makePNG(t, 1000, 2000)

	out, err := Encode(raw, 0.8, 1000)
	assert.NoError(t, err)

	img := decodeDataURI(t, out)
	assert.Equal(t, 500, img.Bounds().Dx())
	assert.Equal(t, 1000, img.Bounds().Dy())
}

func TestEncode_RejectsGarbage(t *testing.T) {
	_, err := Encode([]byte("definitely not an image"), 0.8, 1600)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestEncode_RejectsBadQuality(t *testing.T) {
	raw := makePNG(t, 10, 10)

	_, err := Encode(raw, 0, 1600)
	assert.Error(t, err)

	_, err = Encode(raw, 1.5, 1600)
	assert.Error(t, err)
}

func TestEncodeWithPreset(t *testing.T) {
	raw := makePNG(t, 4000, 1000)

	out, err := EncodeWithPreset(raw, ThumbPreset)
	assert.NoError(t, err)

	img := decodeDataURI(t, out)
	assert.Equal(t, 1024, img.Bounds().Dx())
}
