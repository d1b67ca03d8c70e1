package main

// FloodSelect returns the pixel indices of the 4-connected region around
// seed whose colour lies within tolerance of the seed colour. Every candidate
// is compared with the seed value itself, never with its neighbour, so the
// selection does not creep along gradients.
//
// The threshold is tolerance²·4 over squared RGBA distance.
func FloodSelect(b *BufferPair, seed Point, tolerance float64) []int {
	if !b.Loaded() {
		return nil
	}
	x, y := floorInt(seed.X), floorInt(seed.Y)
	ref, ok := b.Pixel(x, y)
	if !ok {
		return nil
	}

	w, h := b.Size()
	pix := b.working.Pix
	stride := b.working.Stride
	limit := tolerance * tolerance * 4

	visited := make([]bool, w*h)
	stack := []int{y*w + x}
	var selected []int

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		cx, cy := current%w, current/w
		i := cy*stride + cx*4
		dr := float64(pix[i]) - float64(ref.R)
		dg := float64(pix[i+1]) - float64(ref.G)
		db := float64(pix[i+2]) - float64(ref.B)
		da := float64(pix[i+3]) - float64(ref.A)
		if dr*dr+dg*dg+db*db+da*da > limit {
			continue
		}
		selected = append(selected, current)

		if cx > 0 {
			stack = append(stack, current-1)
		}
		if cx < w-1 {
			stack = append(stack, current+1)
		}
		if cy > 0 {
			stack = append(stack, current-w)
		}
		if cy < h-1 {
			stack = append(stack, current+w)
		}
	}
	return selected
}

// FloodApply erases or restores the region FloodSelect picks and returns the
// number of pixels affected.
func FloodApply(b *BufferPair, seed Point, mode EditMode, tolerance float64) int {
	selected := FloodSelect(b, seed, tolerance)
	if len(selected) == 0 {
		return 0
	}
	w, h := b.Size()
	n := applyRegion(b, newIndexRegion(w, h, selected), mode)
	logger().Debug("wand applied", "mode", mode.String(), "x", seed.X, "y", seed.Y,
		"tolerance", tolerance, "pixels", n)
	return n
}
