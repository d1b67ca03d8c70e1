package main

import (
	"math"
	"testing"
)

func TestZoomClamp(t *testing.T) {
	v := NewViewport()
	for i := 0; i < 5; i++ {
		v.ZoomBy(1.2)
	}
	if math.Abs(v.Scale-math.Pow(1.2, 5)) > 1e-9 {
		t.Fatalf("scale after 5 zooms = %v, want %v", v.Scale, math.Pow(1.2, 5))
	}

	for i := 0; i < 5; i++ {
		v.ZoomBy(1.2)
	}
	if v.Scale != maxScale {
		t.Fatalf("scale after 10 zooms = %v, want %v", v.Scale, maxScale)
	}

	for i := 0; i < 40; i++ {
		v.ZoomBy(1 / 1.2)
	}
	if v.Scale != minScale {
		t.Fatalf("scale after zooming out = %v, want %v", v.Scale, minScale)
	}
}

func TestPanAndReset(t *testing.T) {
	v := NewViewport()
	v.ZoomBy(2)
	v.Pan(-1e6, 250)
	if v.PanX != -1e6 || v.PanY != 250 {
		t.Fatalf("pan = (%v,%v)", v.PanX, v.PanY)
	}
	v.Reset()
	if v != NewViewport() {
		t.Fatalf("after reset: %+v", v)
	}
}

func TestLayoutFitsAndCentres(t *testing.T) {
	area := Box{W: 200, H: 100}
	tests := []struct {
		name   string
		vp     Viewport
		rw, rh int
		want   Box
	}{
		{"wide raster", Viewport{Scale: 1}, 400, 100, Box{X: 0, Y: 25, W: 200, H: 50}},
		{"tall raster", Viewport{Scale: 1}, 100, 200, Box{X: 75, Y: 0, W: 50, H: 100}},
		{"zoomed", Viewport{Scale: 2}, 100, 100, Box{X: 0, Y: -50, W: 200, H: 200}},
		{"panned", Viewport{Scale: 1, PanX: 10, PanY: -5}, 100, 100, Box{X: 60, Y: -5, W: 100, H: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vp.Layout(area, tt.rw, tt.rh); got != tt.want {
				t.Fatalf("Layout = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMapPointer(t *testing.T) {
	box := Box{X: 50, Y: 20, W: 200, H: 100}
	tests := []struct {
		sx, sy float64
		want   Point
	}{
		{50, 20, Point{X: 0, Y: 0}},
		{250, 120, Point{X: 400, Y: 200}},
		{150, 70, Point{X: 200, Y: 100}},
		{0, 0, Point{X: -100, Y: -40}},
	}
	for _, tt := range tests {
		if got := MapPointer(tt.sx, tt.sy, box, 400, 200); got != tt.want {
			t.Errorf("MapPointer(%v,%v) = %v, want %v", tt.sx, tt.sy, got, tt.want)
		}
	}
	if got := MapPointer(10, 10, Box{}, 400, 200); got != (Point{}) {
		t.Errorf("zero box mapped to %v", got)
	}
}

func TestMapPointerInvertsScreenFromRaster(t *testing.T) {
	v := Viewport{Scale: 1.7, PanX: -13, PanY: 4.5}
	box := v.Layout(Box{W: 120, H: 80}, 640, 480)
	p := Point{X: 123.5, Y: 321.25}

	sx, sy := ScreenFromRaster(p, box, 640, 480)
	got := MapPointer(sx, sy, box, 640, 480)
	if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
		t.Fatalf("round trip = %v, want %v", got, p)
	}
}
