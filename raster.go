package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// ErrNotLoaded is returned by operations that need a loaded result.
var ErrNotLoaded = errors.New("no result loaded")

// BufferPair holds the immutable original cutout and the working raster
// every edit tool writes to. Both always share the same dimensions.
type BufferPair struct {
	original *image.NRGBA
	working  *image.NRGBA
}

// LoadResult replaces both rasters with copies of img.
func (b *BufferPair) LoadResult(img image.Image) error {
	if img == nil {
		return fmt.Errorf("load result: %w", ErrDecode)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("load result: empty image %dx%d: %w", bounds.Dx(), bounds.Dy(), ErrDecode)
	}
	original := toNRGBA(img)
	b.original = original
	b.working = cloneNRGBA(original)
	return nil
}

func (b *BufferPair) Loaded() bool {
	return b.original != nil && b.working != nil
}

func (b *BufferPair) Size() (int, int) {
	if b.working == nil {
		return 0, 0
	}
	r := b.working.Rect
	return r.Dx(), r.Dy()
}

// Original returns the original raster. Callers must not modify it.
func (b *BufferPair) Original() *image.NRGBA { return b.original }

// Working returns the live working raster.
func (b *BufferPair) Working() *image.NRGBA { return b.working }

// Pixel returns the working pixel at (x, y). ok is false outside the raster.
func (b *BufferPair) Pixel(x, y int) (color.NRGBA, bool) {
	if !b.inBounds(x, y) {
		return color.NRGBA{}, false
	}
	return b.working.NRGBAAt(x, y), true
}

// OriginalPixel returns the original pixel at (x, y).
func (b *BufferPair) OriginalPixel(x, y int) (color.NRGBA, bool) {
	if !b.inBounds(x, y) {
		return color.NRGBA{}, false
	}
	return b.original.NRGBAAt(x, y), true
}

// SetPixel writes a working pixel. Out of bounds writes are ignored, pointer
// coordinates routinely run past the canvas during fast drags.
func (b *BufferPair) SetPixel(x, y int, c color.NRGBA) {
	if !b.inBounds(x, y) {
		return
	}
	b.working.SetNRGBA(x, y, c)
}

// resetWorking overwrites the working raster with the original pixels.
func (b *BufferPair) resetWorking() {
	if !b.Loaded() {
		return
	}
	copy(b.working.Pix, b.original.Pix)
}

// replaceWorking installs a raster taken from history.
func (b *BufferPair) replaceWorking(r *image.NRGBA) {
	b.working = r
}

func (b *BufferPair) inBounds(x, y int) bool {
	if !b.Loaded() {
		return false
	}
	return image.Pt(x, y).In(b.working.Rect)
}

// toNRGBA converts img into a fresh NRGBA raster anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	// Row copy keeps colour channels of fully transparent pixels, which a
	// premultiplied round trip through draw would zero.
	if src, ok := img.(*image.NRGBA); ok {
		rowLen := bounds.Dx() * 4
		for y := 0; y < bounds.Dy(); y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], src.Pix[si:si+rowLen])
		}
		return dst
	}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return dst
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}
