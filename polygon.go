package main

import (
	"image"

	"github.com/fogleman/gg"
)

// minPolygonPoints is the smallest path that encloses an area.
const minPolygonPoints = 3

// PolygonPath accumulates lasso points in click order.
type PolygonPath struct {
	points []Point
}

func (p *PolygonPath) Add(pt Point) {
	p.points = append(p.points, pt)
}

func (p *PolygonPath) Len() int { return len(p.points) }

func (p *PolygonPath) Points() []Point {
	out := make([]Point, len(p.points))
	copy(out, p.points)
	return out
}

func (p *PolygonPath) CanCommit() bool { return len(p.points) >= minPolygonPoints }

func (p *PolygonPath) Clear() { p.points = p.points[:0] }

// polygonMask rasterizes the closed path through points into a coverage mask
// of the given size, using gg's default non-zero winding fill.
func polygonMask(points []Point, width, height int) *image.Alpha {
	dc := gg.NewContext(width, height)
	for i, pt := range points {
		if i == 0 {
			dc.MoveTo(pt.X, pt.Y)
		} else {
			dc.LineTo(pt.X, pt.Y)
		}
	}
	dc.ClosePath()
	dc.SetRGBA(0, 0, 0, 1)
	dc.Fill()
	return dc.AsMask()
}

// CommitPolygon erases or restores the area enclosed by path and clears the
// path. With fewer than three points it does nothing, the path included.
func CommitPolygon(b *BufferPair, path *PolygonPath, mode EditMode) int {
	if !b.Loaded() || !path.CanCommit() {
		return 0
	}
	w, h := b.Size()
	mask := polygonMask(path.points, w, h)
	n := applyRegion(b, maskRegion{mask: mask}, mode)
	logger().Debug("polygon committed", "mode", mode.String(), "points", path.Len(), "pixels", n)
	path.Clear()
	return n
}
