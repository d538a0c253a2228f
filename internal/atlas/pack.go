package atlas

import "sort"

// PackedFrame is one unique frame's placement within the atlas strip.
type PackedFrame struct {
	Name          string
	X, Y          int
	Width, Height int
}

// PackResult is the outcome of packing a set of unique frame rectangles.
type PackResult struct {
	Width, Height int
	Frames        []PackedFrame
}

type packRect struct {
	name          string
	width, height int
}

type freeRect struct{ x, y, w, h int }

// Pack places rects into the smallest rectangle it can find using MaxRects
// Best-Short-Side-Fit, trying several candidate strip widths and four
// rectangle orderings and keeping whichever combination yields the least
// total area. padding is added between every pair of adjacent rectangles.
func Pack(rects []packRect, padding int, widthCap int) PackResult {
	if len(rects) == 0 {
		return PackResult{}
	}

	best := PackResult{Width: 1 << 30, Height: 1 << 30}
	bestArea := -1

	for _, width := range candidateWidths(rects, padding, widthCap) {
		for _, order := range sortOrders(rects) {
			res, ok := packAtWidth(order, width, padding)
			if !ok {
				continue
			}
			area := res.Width * res.Height
			if bestArea == -1 || area < bestArea {
				bestArea = area
				best = res
			}
		}
	}
	return best
}

// candidateWidths produces the strip widths worth trying. For a small
// input it sweeps every width from the widest single rectangle up to the
// sum of all widths; for larger inputs that sweep would be too slow, so it
// falls back to a sparse sample plus the pairwise sums of unique widths
// (a common near-optimal split point for two side-by-side rows) and the
// width implied by a square-ish packing of the total area.
func candidateWidths(rects []packRect, padding, widthCap int) []int {
	maxW, sumW, totalArea := 0, 0, 0
	uniqueW := map[int]bool{}
	for _, r := range rects {
		if r.width > maxW {
			maxW = r.width
		}
		sumW += r.width + padding
		totalArea += r.width * r.height
		uniqueW[r.width] = true
	}
	if widthCap > 0 && widthCap < maxW {
		widthCap = maxW
	}
	hi := sumW
	if widthCap > 0 && widthCap < hi {
		hi = widthCap
	}

	seen := map[int]bool{}
	var widths []int
	add := func(w int) {
		if w < maxW {
			w = maxW
		}
		if w > hi {
			w = hi
		}
		if w > 0 && !seen[w] {
			seen[w] = true
			widths = append(widths, w)
		}
	}

	const denseLimit = 40
	if len(rects) <= denseLimit && hi-maxW <= 4096 {
		for w := maxW; w <= hi; w++ {
			add(w)
		}
		add(hi)
	} else {
		sqrtW := isqrt(totalArea)
		add(sqrtW)
		add(maxW)
		add(hi)
		step := (hi - maxW) / 16
		if step < 1 {
			step = 1
		}
		for w := maxW; w <= hi; w += step {
			add(w)
		}
		var us []int
		for w := range uniqueW {
			us = append(us, w)
		}
		sort.Ints(us)
		for i := range us {
			for j := i; j < len(us); j++ {
				add(us[i] + us[j])
			}
		}
	}
	return widths
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

// sortOrders returns the rect slice under each of the four orderings worth
// trying: tallest-first, largest-area-first, widest-first, and
// largest-max-side-first. Different source material favors different
// orderings, and trying all four is cheap next to the packing itself.
func sortOrders(rects []packRect) [][]packRect {
	clone := func() []packRect {
		c := make([]packRect, len(rects))
		copy(c, rects)
		return c
	}

	height := clone()
	sort.SliceStable(height, func(i, j int) bool { return height[i].height > height[j].height })

	area := clone()
	sort.SliceStable(area, func(i, j int) bool {
		return area[i].width*area[i].height > area[j].width*area[j].height
	})

	width := clone()
	sort.SliceStable(width, func(i, j int) bool { return width[i].width > width[j].width })

	maxSide := clone()
	sort.SliceStable(maxSide, func(i, j int) bool {
		return max(maxSide[i].width, maxSide[i].height) > max(maxSide[j].width, maxSide[j].height)
	})

	return [][]packRect{height, area, width, maxSide}
}

// packAtWidth runs MaxRects Best-Short-Side-Fit against a strip of a fixed
// width and unbounded height, growing the free-rectangle list as it goes,
// and reports the tightest height that fit every rect.
func packAtWidth(rects []packRect, width, padding int) (PackResult, bool) {
	for _, r := range rects {
		if r.width+padding > width {
			return PackResult{}, false
		}
	}

	free := []freeRect{{x: 0, y: 0, w: width, h: 1 << 30}}
	placed := make([]PackedFrame, 0, len(rects))
	maxY := 0

	for _, r := range rects {
		w, h := r.width+padding, r.height+padding
		bestIdx := -1
		var bestShortSide, bestLongSide int
		bestX, bestY := 0, 0

		for i, fr := range free {
			if w <= fr.w && h <= fr.h {
				leftoverW := fr.w - w
				leftoverH := fr.h - h
				shortSide := leftoverW
				longSide := leftoverH
				if leftoverH < leftoverW {
					shortSide, longSide = leftoverH, leftoverW
				}
				if bestIdx == -1 || shortSide < bestShortSide ||
					(shortSide == bestShortSide && longSide < bestLongSide) {
					bestIdx = i
					bestShortSide = shortSide
					bestLongSide = longSide
					bestX, bestY = fr.x, fr.y
				}
			}
		}
		if bestIdx == -1 {
			return PackResult{}, false
		}

		placed = append(placed, PackedFrame{Name: r.name, X: bestX, Y: bestY, Width: r.width, Height: r.height})
		if bestY+r.height > maxY {
			maxY = bestY + r.height
		}

		free = splitFreeRects(free, freeRect{x: bestX, y: bestY, w: w, h: h})
		free = pruneFreeRects(free)
	}

	return PackResult{Width: width, Height: maxY, Frames: placed}, true
}

func splitFreeRects(free []freeRect, used freeRect) []freeRect {
	var out []freeRect
	for _, fr := range free {
		if !overlaps(fr, used) {
			out = append(out, fr)
			continue
		}
		if used.x > fr.x {
			out = append(out, freeRect{fr.x, fr.y, used.x - fr.x, fr.h})
		}
		if used.x+used.w < fr.x+fr.w {
			out = append(out, freeRect{used.x + used.w, fr.y, fr.x + fr.w - (used.x + used.w), fr.h})
		}
		if used.y > fr.y {
			out = append(out, freeRect{fr.x, fr.y, fr.w, used.y - fr.y})
		}
		if used.y+used.h < fr.y+fr.h {
			out = append(out, freeRect{fr.x, used.y + used.h, fr.w, fr.y + fr.h - (used.y + used.h)})
		}
	}
	return out
}

func overlaps(a, b freeRect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x && a.y < b.y+b.h && a.y+a.h > b.y
}

// pruneFreeRects discards any free rectangle fully contained in another,
// which MaxRects accumulates quickly without this pass.
func pruneFreeRects(free []freeRect) []freeRect {
	out := free[:0:0]
	for i, a := range free {
		contained := false
		for j, b := range free {
			if i == j {
				continue
			}
			if containsRect(b, a) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, a)
		}
	}
	return out
}

func containsRect(outer, inner freeRect) bool {
	return inner.x >= outer.x && inner.y >= outer.y &&
		inner.x+inner.w <= outer.x+outer.w && inner.y+inner.h <= outer.y+outer.h
}
