package detection

import (
	"math"
	"sort"
)

// Component is one connected region of a binary mask together with the
// geometry descriptors the detectors score on.
type Component struct {
	// Area is the number of foreground pixels in the component.
	Area int

	// Bounds is the tight bounding box around the component.
	Bounds Bounds

	// Contour holds the component's boundary pixels (foreground pixels with
	// at least one background 4-neighbor), in scan order.
	Contour []Point

	// Perimeter is the boundary pixel count, used as the digital perimeter.
	Perimeter int
}

// Circularity returns 4πA/P², the classic isoperimetric shape score:
// 1.0 for a perfect disk, approaching 0 for elongated or ragged shapes.
// Digital contours overshoot slightly, so the value is capped at 1.0.
func (c *Component) Circularity() float64 {
	if c.Perimeter == 0 {
		return 0
	}
	circ := 4 * math.Pi * float64(c.Area) / float64(c.Perimeter*c.Perimeter)
	return math.Min(circ, 1.0)
}

// Solidity returns area / convex-hull area, a measure of how filled-in the
// shape is. Solid blobs approach 1.0; shapes with concavities score lower.
func (c *Component) Solidity() float64 {
	hull := convexHull(c.Contour)
	ha := polygonArea(hull)
	if ha <= 0 {
		return 0
	}
	s := float64(c.Area) / ha
	return math.Min(s, 1.0)
}

// InertiaRatio returns the ratio of minor to major principal axis lengths of
// the component's pixel distribution, computed from central second moments.
// A disk scores ~1.0, a thin line approaches 0.
func (c *Component) InertiaRatio(pixels []Point) float64 {
	if len(pixels) == 0 {
		return 0
	}
	var mx, my float64
	for _, p := range pixels {
		mx += float64(p.X)
		my += float64(p.Y)
	}
	n := float64(len(pixels))
	mx /= n
	my /= n

	var mxx, myy, mxy float64
	for _, p := range pixels {
		dx := float64(p.X) - mx
		dy := float64(p.Y) - my
		mxx += dx * dx
		myy += dy * dy
		mxy += dx * dy
	}
	mxx /= n
	myy /= n
	mxy /= n

	// Eigenvalues of the 2x2 covariance matrix.
	tr := mxx + myy
	det := mxx*myy - mxy*mxy
	disc := math.Sqrt(math.Max(tr*tr/4-det, 0))
	major := tr/2 + disc
	minor := tr/2 - disc
	if major <= 0 {
		return 0
	}
	return math.Max(minor, 0) / major
}

// FindComponents extracts the connected components of a binary mask using
// 8-connected iterative flood fill. Components smaller than minArea pixels
// are discarded as noise. The returned component list is sorted by area,
// largest first.
//
// When keepPixels is true, the full pixel list of each component is returned
// alongside it (index-aligned); detectors that need moment-based descriptors
// ask for it, everything else skips the allocation.
func FindComponents(mask [][]bool, minArea int, keepPixels bool) ([]Component, [][]Point) {
	h := len(mask)
	if h == 0 {
		return nil, nil
	}
	w := len(mask[0])

	visited := make([][]bool, h)
	for y := range visited {
		visited[y] = make([]bool, w)
	}

	var comps []Component
	var pixelLists [][]Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y][x] || visited[y][x] {
				continue
			}
			pixels := floodFill(mask, visited, x, y, w, h)
			if len(pixels) < minArea {
				continue
			}
			comp := describeComponent(mask, pixels, w, h)
			comps = append(comps, comp)
			if keepPixels {
				pixelLists = append(pixelLists, pixels)
			}
		}
	}

	// Largest first; downstream fusion sorts by confidence anyway, but a
	// stable geometric order keeps detector output deterministic.
	idx := make([]int, len(comps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return comps[idx[a]].Area > comps[idx[b]].Area })

	sorted := make([]Component, len(comps))
	var sortedPixels [][]Point
	if keepPixels {
		sortedPixels = make([][]Point, len(comps))
	}
	for i, j := range idx {
		sorted[i] = comps[j]
		if keepPixels {
			sortedPixels[i] = pixelLists[j]
		}
	}
	return sorted, sortedPixels
}

// describeComponent computes bounds, boundary contour and perimeter for a
// pixel list.
func describeComponent(mask [][]bool, pixels []Point, w, h int) Component {
	minX, minY := w, h
	maxX, maxY := 0, 0
	for _, p := range pixels {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	var contour []Point
	for _, p := range pixels {
		if isBoundary(mask, p.X, p.Y, w, h) {
			contour = append(contour, p)
		}
	}

	return Component{
		Area:      len(pixels),
		Bounds:    Bounds{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1},
		Contour:   contour,
		Perimeter: len(contour),
	}
}

// isBoundary reports whether a foreground pixel touches background (or the
// image border) through a 4-neighbor.
func isBoundary(mask [][]bool, x, y, w, h int) bool {
	if x == 0 || y == 0 || x == w-1 || y == h-1 {
		return true
	}
	return !mask[y][x-1] || !mask[y][x+1] || !mask[y-1][x] || !mask[y+1][x]
}

// floodFill collects one 8-connected component starting at (startX, startY).
// Uses an explicit stack to avoid recursion depth limits on large regions.
func floodFill(mask, visited [][]bool, startX, startY, w, h int) []Point {
	var pixels []Point
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		if visited[p.Y][p.X] || !mask[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		pixels = append(pixels, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return pixels
}

// convexHull computes the convex hull of a point set with Andrew's monotone
// chain algorithm. Returns the hull in counter-clockwise order.
func convexHull(points []Point) []Point {
	if len(points) < 3 {
		return points
	}

	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// polygonArea returns the absolute shoelace area of a polygon.
func polygonArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	sum := 0
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(float64(sum)) / 2
}
