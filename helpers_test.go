package main

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

var (
	opaqueRed  = color.NRGBA{R: 220, G: 30, B: 40, A: 255}
	opaqueBlue = color.NRGBA{R: 20, G: 40, B: 210, A: 255}
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradientNRGBA varies red along x and green along y.
func gradientNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 90, A: 255})
		}
	}
	return img
}

func loadedPair(t *testing.T, img image.Image) *BufferPair {
	t.Helper()
	var b BufferPair
	if err := b.LoadResult(img); err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	return &b
}

func alphaAt(b *BufferPair, x, y int) uint8 {
	return b.Working().NRGBAAt(x, y).A
}

func sameRaster(a, b *image.NRGBA) bool {
	return a.Rect == b.Rect && bytes.Equal(a.Pix, b.Pix)
}

func snapshotOf(b *BufferPair) *image.NRGBA {
	return cloneNRGBA(b.Working())
}
