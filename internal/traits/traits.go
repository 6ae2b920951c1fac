// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

// Package traits infers rough user traits from an uploaded photo.
//
// Extraction is a placeholder heuristic: only skin depth is estimated, from
// the mean brightness of the center of the image. All other traits are fixed
// defaults until a real model replaces this package.
package traits

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	_ "golang.org/x/image/webp" // register WebP decoder

	"golang.org/x/image/draw"

	"github.com/tomtom215/fitlens/internal/models"
)

var (
	// ErrUnsupportedType is returned for content types other than JPEG, PNG and WebP.
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrInvalidImage is returned when the bytes cannot be decoded as an image.
	ErrInvalidImage = errors.New("invalid image file")
)

// sampleSize is the edge of the square the crop is resized to before averaging.
const sampleSize = 32

// Brightness thresholds on the 0-255 luminance scale.
const (
	lightThreshold  = 180
	mediumThreshold = 110
)

var supportedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Supported reports whether contentType is an accepted upload type.
func Supported(contentType string) bool {
	_, ok := supportedTypes[contentType]
	return ok
}

// Decode validates the declared content type and decodes the image.
func Decode(contentType string, r io.Reader) (image.Image, error) {
	if !Supported(contentType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Extract estimates traits from img.
//
// The central 30%-70% region is converted to luminance, resized to 32x32 with
// Catmull-Rom and averaged. A mean above 180 is light skin, above 110 medium,
// otherwise deep.
func Extract(img image.Image) models.Traits {
	t := models.DefaultTraits()
	t.SkinDepth = SkinDepthFor(MeanBrightness(img))
	return t
}

// SkinDepthFor maps a mean luminance to a skin depth bucket.
func SkinDepthFor(mean float64) string {
	switch {
	case mean > lightThreshold:
		return "light"
	case mean > mediumThreshold:
		return "medium"
	default:
		return "deep"
	}
}

// MeanBrightness returns the mean luminance of the resized center crop.
func MeanBrightness(img image.Image) float64 {
	gray := centerLuminance(img)

	dst := image.NewGray(image.Rect(0, 0, sampleSize, sampleSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	var sum int
	for _, v := range dst.Pix {
		sum += int(v)
	}
	return float64(sum) / float64(sampleSize*sampleSize)
}

// centerLuminance crops the central region and converts it to 8-bit
// luminance using ITU-R 601-2 weights.
func centerLuminance(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	crop := image.Rect(
		b.Min.X+int(float64(w)*0.3), b.Min.Y+int(float64(h)*0.3),
		b.Min.X+int(float64(w)*0.7), b.Min.Y+int(float64(h)*0.7),
	)
	if crop.Empty() {
		crop = b
	}

	gray := image.NewGray(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		for x := crop.Min.X; x < crop.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			l := (int(r>>8)*299 + int(g>>8)*587 + int(bl>>8)*114) / 1000
			gray.Pix[(y-crop.Min.Y)*gray.Stride+(x-crop.Min.X)] = uint8(l)
		}
	}
	return gray
}
