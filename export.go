package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

type BackgroundMode int

const (
	BackgroundNone BackgroundMode = iota
	BackgroundColor
	BackgroundGradient
	BackgroundImage
)

var backgroundModeNames = [...]string{
	BackgroundNone:     "none",
	BackgroundColor:    "color",
	BackgroundGradient: "gradient",
	BackgroundImage:    "image",
}

func (m BackgroundMode) String() string {
	if m < 0 || int(m) >= len(backgroundModeNames) {
		return "none"
	}
	return backgroundModeNames[m]
}

func parseBackgroundMode(s string) (BackgroundMode, bool) {
	for i, name := range backgroundModeNames {
		if name == s {
			return BackgroundMode(i), true
		}
	}
	return BackgroundNone, false
}

// next cycles none → color → gradient → image → none.
func (m BackgroundMode) next() BackgroundMode {
	return (m + 1) % BackgroundMode(len(backgroundModeNames))
}

// Background is what the cutout is composed over at export time. It is
// never stored in the raster.
type Background struct {
	Mode      BackgroundMode
	Color     color.Color
	GradientA color.Color
	GradientB color.Color
	// Image is nil until the background file has been decoded.
	Image image.Image
}

type ExportFormat int

const (
	FormatPNG ExportFormat = iota
	FormatJPEG
)

func (f ExportFormat) String() string {
	if f == FormatJPEG {
		return "jpeg"
	}
	return "png"
}

// Opaque reports whether the format cannot carry transparency.
func (f ExportFormat) Opaque() bool { return f == FormatJPEG }

func (f ExportFormat) FileName() string {
	if f == FormatJPEG {
		return jpegResultName
	}
	return pngResultName
}

// Compose flattens working over bg. The result always has working's size.
func Compose(working *image.NRGBA, bg Background, format ExportFormat) *image.RGBA {
	w, h := working.Rect.Dx(), working.Rect.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(dst)

	switch {
	case bg.Mode == BackgroundColor && bg.Color != nil:
		dc.SetColor(bg.Color)
		dc.Clear()
	case bg.Mode == BackgroundGradient && bg.GradientA != nil && bg.GradientB != nil:
		grad := gg.NewLinearGradient(0, 0, float64(w), float64(h))
		grad.AddColorStop(0, bg.GradientA)
		grad.AddColorStop(1, bg.GradientB)
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, float64(w), float64(h))
		dc.Fill()
	case bg.Mode == BackgroundImage && bg.Image != nil:
		drawCover(dst, bg.Image)
	case format.Opaque():
		dc.SetColor(color.White)
		dc.Clear()
	}

	draw.Draw(dst, dst.Rect, working, working.Rect.Min, draw.Over)
	return dst
}

// drawCover scales src to fill dst keeping its aspect ratio and centres it,
// cropping whatever overflows.
func drawCover(dst *image.RGBA, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 {
		return
	}
	w, h := float64(dst.Rect.Dx()), float64(dst.Rect.Dy())
	scale := math.Max(w/float64(sb.Dx()), h/float64(sb.Dy()))
	drawW := float64(sb.Dx()) * scale
	drawH := float64(sb.Dy()) * scale
	offX := (w - drawW) / 2
	offY := (h - drawH) / 2
	dr := image.Rect(
		int(math.Floor(offX)), int(math.Floor(offY)),
		int(math.Ceil(offX+drawW)), int(math.Ceil(offY+drawH)),
	)
	draw.CatmullRom.Scale(dst, dr, src, sb, draw.Over, nil)
}

// EncodeImage writes img in the given format.
func EncodeImage(w io.Writer, img image.Image, format ExportFormat) error {
	if format == FormatJPEG {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	}
	return png.Encode(w, img)
}

// ExportFile writes img into dir under name and returns the path and size.
func ExportFile(dir, name string, img image.Image, format ExportFormat) (string, int64, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", 0, fmt.Errorf("export: %w", err)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	if err := EncodeImage(f, img, format); err != nil {
		return "", 0, fmt.Errorf("export %s: %w", format, err)
	}
	info, err := f.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("export: %w", err)
	}
	logger().Info("exported", "path", path, "format", format.String(), "bytes", info.Size())
	return path, info.Size(), nil
}

// ComposeCompare renders a before/after snapshot: the original left of the
// split, the edited raster right of it, each side labelled.
func ComposeCompare(original, working *image.NRGBA, percent float64) (*image.RGBA, error) {
	w, h := working.Rect.Dx(), working.Rect.Dy()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	split := int(math.Round(percent / 100 * float64(w)))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, image.Rect(split, 0, w, h), working, image.Pt(split, 0), draw.Src)
	draw.Draw(dst, image.Rect(0, 0, split, h), original, image.Point{}, draw.Src)

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	size := math.Max(12, float64(h)/30)
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(face)
	dc.SetLineWidth(1)
	if split > 0 && split < w {
		dc.SetRGBA(1, 1, 1, 0.9)
		dc.DrawLine(float64(split)+0.5, 0, float64(split)+0.5, float64(h))
		dc.Stroke()
	}
	pad := size / 2
	drawLabel(dc, "Original", pad, pad, 0)
	drawLabel(dc, "Edited", float64(w)-pad, pad, 1)
	return dst, nil
}

// drawLabel draws text on a dark plate; ax is the horizontal anchor.
func drawLabel(dc *gg.Context, text string, x, y, ax float64) {
	tw, th := dc.MeasureString(text)
	left := x - ax*tw
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(left-4, y-2, tw+8, th+6)
	dc.Fill()
	dc.SetRGBA(1, 1, 1, 1)
	dc.DrawStringAnchored(text, x, y, ax, 1)
}
