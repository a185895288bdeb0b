package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ErrInvalidImage marks input that could not be decoded as an image.
// Callers abort the single operation that produced it; batch siblings proceed.
var ErrInvalidImage = errors.New("input is not a decodable image")

// Preset bundles the quality/dimension pair used at a call site.
type Preset struct {
	Quality float64 // JPEG quality factor in (0, 1]
	MaxDim  int     // upper bound for the longer edge, pixels
}

var (
	// PhotoPreset is used for named slots (hero, section backgrounds).
	PhotoPreset = Preset{Quality: 0.8, MaxDim: 1600}
	// ThumbPreset is used for gallery batches and guest moments,
	// lower fidelity for higher volume.
	ThumbPreset = Preset{Quality: 0.7, MaxDim: 1024}
)

// Encode decodes raw image bytes, scales them down (never up) so the longer
// edge fits maxDim while preserving aspect ratio, and re-encodes the result
// as a JPEG data URI at the given quality factor.
func Encode(raw []byte, quality float64, maxDim int) (string, error) {
	if quality <= 0 || quality > 1 {
		return "", fmt.Errorf("quality factor %v out of range (0,1]", quality)
	}
	if maxDim <= 0 {
		return "", fmt.Errorf("max dimension %d must be positive", maxDim)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	scaled := scaleDown(src, maxDim)

	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: int(quality * 100)}
	if err := jpeg.Encode(&buf, scaled, opts); err != nil {
		return "", fmt.Errorf("jpeg encode: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeWithPreset applies a call-site preset.
func EncodeWithPreset(raw []byte, p Preset) (string, error) {
	return Encode(raw, p.Quality, p.MaxDim)
}

func scaleDown(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	longer := w
	if h > w {
		longer = h
	}
	if longer <= maxDim {
		return src
	}

	scale := float64(maxDim) / float64(longer)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
