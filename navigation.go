package main

// Viewport is the pan/zoom presentation transform. It never touches pixel
// data or the raster coordinates tools work in.
type Viewport struct {
	Scale float64
	PanX  float64
	PanY  float64
}

func NewViewport() Viewport {
	return Viewport{Scale: 1}
}

func clampScale(s float64) float64 {
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}

func (v *Viewport) ZoomBy(factor float64) {
	v.Scale = clampScale(v.Scale * factor)
}

// Pan is deliberately unclamped so the image can be dragged fully off view.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

func (v *Viewport) Reset() {
	v.Scale = 1
	v.PanX = 0
	v.PanY = 0
}

// Box is a rectangle in screen units.
type Box struct {
	X, Y, W, H float64
}

// Layout returns the on-screen box the raster is presented in: fitted to
// area at scale 1, zoomed by Scale around the area centre, shifted by pan.
func (v Viewport) Layout(area Box, rasterW, rasterH int) Box {
	if rasterW <= 0 || rasterH <= 0 || area.W <= 0 || area.H <= 0 {
		return Box{X: area.X, Y: area.Y}
	}
	fit := minFloat(area.W/float64(rasterW), area.H/float64(rasterH))
	w := float64(rasterW) * fit * v.Scale
	h := float64(rasterH) * fit * v.Scale
	return Box{
		X: area.X + (area.W-w)/2 + v.PanX,
		Y: area.Y + (area.H-h)/2 + v.PanY,
		W: w,
		H: h,
	}
}

// MapPointer converts a screen position into raster coordinates using the
// rendered box alone, so it stays correct however the box was produced.
func MapPointer(sx, sy float64, box Box, rasterW, rasterH int) Point {
	if box.W == 0 || box.H == 0 {
		return Point{}
	}
	return Point{
		X: (sx - box.X) / box.W * float64(rasterW),
		Y: (sy - box.Y) / box.H * float64(rasterH),
	}
}

// ScreenFromRaster is the inverse of MapPointer, used to place overlays.
func ScreenFromRaster(p Point, box Box, rasterW, rasterH int) (float64, float64) {
	if rasterW == 0 || rasterH == 0 {
		return box.X, box.Y
	}
	return box.X + p.X/float64(rasterW)*box.W, box.Y + p.Y/float64(rasterH)*box.H
}
