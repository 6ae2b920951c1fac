// FitLens - Trait-Aware Clothing Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fitlens

package traits

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtractSkinDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		color color.Color
		want  string
	}{
		{"white", color.RGBA{255, 255, 255, 255}, "light"},
		{"mid gray", color.RGBA{150, 150, 150, 255}, "medium"},
		{"dark", color.RGBA{40, 30, 20, 255}, "deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(solid(100, 80, tt.color))
			if got.SkinDepth != tt.want {
				t.Errorf("SkinDepth = %q, want %q", got.SkinDepth, tt.want)
			}
			if got.SkinTemperature != "neutral" || got.Frame != "regular" ||
				got.HeightBucket != "avg" || got.Shoulders != "average" ||
				got.HairType != "unknown" || got.HairColor != "unknown" {
				t.Errorf("Unexpected default traits: %+v", got)
			}
		})
	}
}

func TestExtractUsesCenterOnly(t *testing.T) {
	t.Parallel()

	// Dark border, bright center covering exactly the 30-70% window.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= 30 && x < 70 && y >= 30 && y < 70 {
				c = color.RGBA{250, 250, 250, 255}
			}
			img.Set(x, y, c)
		}
	}
	if got := Extract(img).SkinDepth; got != "light" {
		t.Errorf("SkinDepth = %q, want light", got)
	}
}

func TestExtractTinyImage(t *testing.T) {
	t.Parallel()

	if got := Extract(solid(1, 1, color.White)).SkinDepth; got != "light" {
		t.Errorf("SkinDepth = %q, want light", got)
	}
}

func TestSkinDepthForBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mean float64
		want string
	}{
		{180.5, "light"},
		{180, "medium"},
		{110.1, "medium"},
		{110, "deep"},
		{0, "deep"},
	}
	for _, tt := range tests {
		if got := SkinDepthFor(tt.mean); got != tt.want {
			t.Errorf("SkinDepthFor(%v) = %q, want %q", tt.mean, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	var pngBuf, jpgBuf bytes.Buffer
	if err := png.Encode(&pngBuf, solid(8, 8, color.White)); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	if err := jpeg.Encode(&jpgBuf, solid(8, 8, color.White), nil); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}

	t.Run("png", func(t *testing.T) {
		if _, err := Decode("image/png", bytes.NewReader(pngBuf.Bytes())); err != nil {
			t.Errorf("Decode(png) error = %v", err)
		}
	})

	t.Run("jpeg", func(t *testing.T) {
		if _, err := Decode("image/jpeg", bytes.NewReader(jpgBuf.Bytes())); err != nil {
			t.Errorf("Decode(jpeg) error = %v", err)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := Decode("image/gif", bytes.NewReader(pngBuf.Bytes()))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Expected ErrUnsupportedType, got %v", err)
		}
	})

	t.Run("garbage bytes", func(t *testing.T) {
		_, err := Decode("image/webp", strings.NewReader("not an image"))
		if !errors.Is(err, ErrInvalidImage) {
			t.Errorf("Expected ErrInvalidImage, got %v", err)
		}
	})
}
