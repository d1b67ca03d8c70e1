package main

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// halfErased is an opaque red raster whose left half is transparent.
func halfErased(w, h int) *image.NRGBA {
	img := solidNRGBA(w, h, opaqueRed)
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.Pix[img.PixOffset(x, y)+3] = 0
		}
	}
	return img
}

func TestComposeKeepsWorkingSize(t *testing.T) {
	working := halfErased(120, 80)
	tests := []struct {
		name string
		bg   image.Image
	}{
		{"wider background", solidNRGBA(500, 50, opaqueBlue)},
		{"taller background", solidNRGBA(30, 400, opaqueBlue)},
		{"same aspect", solidNRGBA(60, 40, opaqueBlue)},
		{"tiny background", solidNRGBA(1, 1, opaqueBlue)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Compose(working, Background{Mode: BackgroundImage, Image: tt.bg}, FormatPNG)
			if out.Rect.Dx() != 120 || out.Rect.Dy() != 80 {
				t.Fatalf("size = %v, want 120x80", out.Rect)
			}
			// Cover fit leaves no uncovered pixel under the transparent half.
			for _, pt := range []image.Point{{0, 0}, {59, 0}, {0, 79}, {59, 79}, {30, 40}} {
				if c := out.RGBAAt(pt.X, pt.Y); c.A != 255 || c.B < 150 {
					t.Fatalf("pixel %v = %v, background not covering", pt, c)
				}
			}
		})
	}
}

func TestComposeBackgroundModes(t *testing.T) {
	working := halfErased(40, 20)
	settings := defaultSettings()

	t.Run("none keeps transparency", func(t *testing.T) {
		out := Compose(working, settings.Background(nil), FormatPNG)
		if a := out.RGBAAt(5, 5).A; a != 0 {
			t.Fatalf("alpha = %d", a)
		}
		if c := out.RGBAAt(30, 5); c != (color.RGBA{R: opaqueRed.R, G: opaqueRed.G, B: opaqueRed.B, A: 255}) {
			t.Fatalf("foreground = %v", c)
		}
	})

	t.Run("jpeg without background is white", func(t *testing.T) {
		out := Compose(working, settings.Background(nil), FormatJPEG)
		if c := out.RGBAAt(5, 5); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
			t.Fatalf("pixel = %v", c)
		}
	})

	t.Run("solid colour", func(t *testing.T) {
		s := settings
		s.BgMode = "color"
		s.BgColor = "#00ff00"
		out := Compose(working, s.Background(nil), FormatPNG)
		if c := out.RGBAAt(5, 5); c != (color.RGBA{G: 255, A: 255}) {
			t.Fatalf("pixel = %v", c)
		}
	})

	t.Run("gradient runs corner to corner", func(t *testing.T) {
		s := settings
		s.BgMode = "gradient"
		s.GradientA = "#000000"
		s.GradientB = "#ffffff"
		out := Compose(halfErased(40, 40), s.Background(nil), FormatPNG)
		near, far := out.RGBAAt(0, 0), out.RGBAAt(19, 39)
		if near.A != 255 || far.A != 255 {
			t.Fatal("gradient left transparent pixels")
		}
		if near.R >= far.R {
			t.Fatalf("gradient not increasing: %v then %v", near, far)
		}
	})

	t.Run("image mode without an image", func(t *testing.T) {
		s := settings
		s.BgMode = "image"
		out := Compose(working, s.Background(nil), FormatPNG)
		if a := out.RGBAAt(5, 5).A; a != 0 {
			t.Fatalf("alpha = %d", a)
		}
	})
}

func TestComposeDoesNotTouchWorking(t *testing.T) {
	working := halfErased(10, 10)
	before := cloneNRGBA(working)
	Compose(working, Background{Mode: BackgroundColor, Color: color.Black}, FormatJPEG)
	if !sameRaster(before, working) {
		t.Fatal("compose modified the working raster")
	}
}

func TestExportFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	img := Compose(halfErased(16, 8), Background{}, FormatPNG)

	for _, format := range []ExportFormat{FormatPNG, FormatJPEG} {
		path, size, err := ExportFile(dir, format.FileName(), img, format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if int64(len(data)) != size {
			t.Fatalf("%s: size %d, file has %d bytes", format, size, len(data))
		}

		var decoded image.Image
		if format == FormatPNG {
			decoded, err = png.Decode(bytes.NewReader(data))
		} else {
			decoded, err = jpeg.Decode(bytes.NewReader(data))
		}
		if err != nil {
			t.Fatalf("%s: decode: %v", format, err)
		}
		if decoded.Bounds().Dx() != 16 || decoded.Bounds().Dy() != 8 {
			t.Fatalf("%s: bounds %v", format, decoded.Bounds())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "result.png")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "result.jpg")); err != nil {
		t.Fatal(err)
	}
}

func TestComposeCompare(t *testing.T) {
	original := solidNRGBA(200, 100, opaqueBlue)
	working := halfErased(200, 100)

	tests := []struct {
		percent    float64
		probeX     int
		wantOrigin bool
	}{
		{0, 20, false},
		{50, 20, true},
		{50, 180, false},
		{100, 180, true},
		{250, 180, true},
		{-10, 20, false},
	}
	for _, tt := range tests {
		out, err := ComposeCompare(original, working, tt.percent)
		if err != nil {
			t.Fatal(err)
		}
		if out.Rect.Dx() != 200 || out.Rect.Dy() != 100 {
			t.Fatalf("size = %v", out.Rect)
		}
		c := out.RGBAAt(tt.probeX, 90)
		fromOriginal := c.B == opaqueBlue.B && c.A == 255
		if fromOriginal != tt.wantOrigin {
			t.Errorf("percent %v: pixel x=%d = %v, from original %v, want %v",
				tt.percent, tt.probeX, c, fromOriginal, tt.wantOrigin)
		}
	}
}

func TestBackgroundModeCycle(t *testing.T) {
	mode := BackgroundNone
	var seen []string
	for i := 0; i < 5; i++ {
		seen = append(seen, mode.String())
		mode = mode.next()
	}
	want := []string{"none", "color", "gradient", "image", "none"}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", seen, want)
		}
	}
	if _, ok := parseBackgroundMode("sepia"); ok {
		t.Fatal("unknown mode parsed")
	}
}
