package main

import "math"

// minStrokeStep is the distance below which two pointer samples count as
// the same point.
const minStrokeStep = 0.1

// StampCircle erases or restores every pixel within radius of center.
func StampCircle(b *BufferPair, center Point, radius float64, mode EditMode) int {
	if !b.Loaded() {
		return 0
	}
	return applyRegion(b, newDisc(center, radius), mode)
}

// Stroke continues a brush stroke from the previous pointer sample to the
// next one. The segment is resampled at brushSpacing so fast drags leave no
// gaps; the disc is swept between consecutive samples.
func Stroke(b *BufferPair, from, to Point, radius float64, mode EditMode) int {
	if !b.Loaded() {
		return 0
	}
	if distance(from, to) < minStrokeStep {
		return StampCircle(b, to, radius, mode)
	}

	samples := interpolatePoints(from, to, brushSpacing(radius))
	touched := 0
	prev := from
	for _, p := range samples {
		touched += applyRegion(b, newCapsule(prev, p, radius), mode)
		prev = p
	}
	return touched
}

// brushSpacing is the resampling step for a brush of the given radius.
func brushSpacing(radius float64) float64 {
	return math.Max(2, radius/2)
}

// interpolatePoints returns evenly spaced points after from up to and
// including to.
func interpolatePoints(from, to Point, spacing float64) []Point {
	dx := to.X - from.X
	dy := to.Y - from.Y
	dist := math.Hypot(dx, dy)
	if dist < minStrokeStep {
		return []Point{to}
	}
	steps := int(math.Floor(dist / spacing))
	if steps < 1 {
		steps = 1
	}
	points := make([]Point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		points = append(points, Point{X: from.X + dx*t, Y: from.Y + dy*t})
	}
	return points
}
