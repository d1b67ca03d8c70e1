package main

import "image"

// Region is a set of raster pixels with per-pixel coverage. Brush discs and
// flood selections cover their pixels fully; polygon masks carry the
// anti-aliased coverage of the rasterizer.
type Region interface {
	// Bounds is a rectangle containing every covered pixel.
	Bounds() image.Rectangle
	// Coverage returns 0 (outside) to 255 (fully inside).
	Coverage(x, y int) uint8
}

// discRegion covers every integer pixel within radius of a centre, using a
// squared-distance test with an inclusive boundary.
type discRegion struct {
	cx, cy float64
	r2     float64
	bounds image.Rectangle
}

func newDisc(center Point, radius float64) discRegion {
	if radius < 0 {
		radius = 0
	}
	return discRegion{
		cx: center.X,
		cy: center.Y,
		r2: radius * radius,
		bounds: image.Rect(
			floorInt(center.X-radius), floorInt(center.Y-radius),
			floorInt(center.X+radius)+1, floorInt(center.Y+radius)+1,
		),
	}
}

func (d discRegion) Bounds() image.Rectangle { return d.bounds }

func (d discRegion) Coverage(x, y int) uint8 {
	dx := float64(x) - d.cx
	dy := float64(y) - d.cy
	if dx*dx+dy*dy <= d.r2 {
		return 255
	}
	return 0
}

// capsuleRegion is the area swept by a disc moving from a to b.
type capsuleRegion struct {
	a, b   Point
	r2     float64
	bounds image.Rectangle
}

func newCapsule(a, b Point, radius float64) capsuleRegion {
	if radius < 0 {
		radius = 0
	}
	minX, maxX := minFloat(a.X, b.X), maxFloat(a.X, b.X)
	minY, maxY := minFloat(a.Y, b.Y), maxFloat(a.Y, b.Y)
	return capsuleRegion{
		a:  a,
		b:  b,
		r2: radius * radius,
		bounds: image.Rect(
			floorInt(minX-radius), floorInt(minY-radius),
			floorInt(maxX+radius)+1, floorInt(maxY+radius)+1,
		),
	}
}

func (c capsuleRegion) Bounds() image.Rectangle { return c.bounds }

func (c capsuleRegion) Coverage(x, y int) uint8 {
	if segmentDistSq(Point{float64(x), float64(y)}, c.a, c.b) <= c.r2 {
		return 255
	}
	return 0
}

// maskRegion wraps a coverage mask produced by a rasterizer.
type maskRegion struct {
	mask *image.Alpha
}

func (m maskRegion) Bounds() image.Rectangle { return m.mask.Rect }

func (m maskRegion) Coverage(x, y int) uint8 {
	if !image.Pt(x, y).In(m.mask.Rect) {
		return 0
	}
	return m.mask.AlphaAt(x, y).A
}

// indexRegion is an explicit set of pixel indices (y*width+x), as gathered by
// the flood selector.
type indexRegion struct {
	width  int
	member []bool
	bounds image.Rectangle
}

func newIndexRegion(width, height int, indices []int) *indexRegion {
	r := &indexRegion{width: width, member: make([]bool, width*height)}
	for i, idx := range indices {
		x, y := idx%width, idx/width
		pt := image.Rect(x, y, x+1, y+1)
		if i == 0 {
			r.bounds = pt
		} else {
			r.bounds = r.bounds.Union(pt)
		}
		r.member[idx] = true
	}
	return r
}

func (r *indexRegion) Bounds() image.Rectangle { return r.bounds }

func (r *indexRegion) Coverage(x, y int) uint8 {
	if x < 0 || x >= r.width || y < 0 {
		return 0
	}
	idx := y*r.width + x
	if idx < len(r.member) && r.member[idx] {
		return 255
	}
	return 0
}

// maskedClear removes alpha from dst in proportion to region coverage.
// It returns the number of pixels touched.
func maskedClear(region Region, dst *image.NRGBA) int {
	area := region.Bounds().Intersect(dst.Rect)
	touched := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			cov := region.Coverage(x, y)
			if cov == 0 {
				continue
			}
			i := dst.PixOffset(x, y) + 3
			if cov == 255 {
				dst.Pix[i] = 0
			} else {
				dst.Pix[i] = uint8(uint32(dst.Pix[i]) * uint32(255-cov) / 255)
			}
			touched++
		}
	}
	return touched
}

// maskedCopy copies src pixels into dst under the region, blending partial
// coverage linearly. src and dst must share bounds.
func maskedCopy(region Region, src, dst *image.NRGBA) int {
	area := region.Bounds().Intersect(dst.Rect).Intersect(src.Rect)
	touched := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			cov := region.Coverage(x, y)
			if cov == 0 {
				continue
			}
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			if cov == 255 {
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
			} else {
				c := uint32(cov)
				for k := 0; k < 4; k++ {
					dst.Pix[di+k] = uint8((uint32(src.Pix[si+k])*c + uint32(dst.Pix[di+k])*(255-c)) / 255)
				}
			}
			touched++
		}
	}
	return touched
}

// applyRegion erases or restores the working raster of b under region.
func applyRegion(b *BufferPair, region Region, mode EditMode) int {
	if !b.Loaded() {
		return 0
	}
	if mode == EditRestore {
		return maskedCopy(region, b.original, b.working)
	}
	return maskedClear(region, b.working)
}
