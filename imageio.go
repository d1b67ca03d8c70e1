package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode covers every malformed or unsupported image payload.
	ErrDecode = errors.New("unable to load image")

	ErrEmptyFile     = errors.New("file is empty")
	ErrImageTooLarge = errors.New("image too large")
)

// DecodeImage decodes a complete image from r. Nothing is returned on
// failure so callers never apply partial state.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty %s image", ErrDecode, format)
	}
	return img, nil
}

// DecodeImageBytes decodes an in-memory blob such as a job download.
func DecodeImageBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrEmptyFile)
	}
	return DecodeImage(bytes.NewReader(data))
}

// LoadImageFile opens, decodes and closes path.
func LoadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	return DecodeImage(f)
}

// ValidateImageFile checks an upload candidate the way the job service
// does: non-empty, decodable header, positive dimensions, bounded pixel
// count. maxPixels <= 0 disables the size check.
func ValidateImageFile(path string, maxPixels int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("validate image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("validate image: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("validate image %s: %w", info.Name(), ErrEmptyFile)
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("validate image %s: %w", info.Name(), ErrDecode)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("validate image %s: invalid dimensions: %w", info.Name(), ErrDecode)
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return fmt.Errorf("validate image %s: %dx%d exceeds %d pixels: %w",
			info.Name(), cfg.Width, cfg.Height, maxPixels, ErrImageTooLarge)
	}
	return nil
}
