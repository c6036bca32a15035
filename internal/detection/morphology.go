package detection

import "image"

// Binary morphology on [][]bool masks. Kernels are square with the given
// radius (radius 1 = 3x3). These back the noise cleanup passes the detectors
// run between thresholding and contour extraction.

// Dilate expands foreground regions by the kernel radius.
func Dilate(mask [][]bool, radius int) [][]bool {
	return morph(mask, radius, true)
}

// Erode shrinks foreground regions by the kernel radius.
func Erode(mask [][]bool, radius int) [][]bool {
	return morph(mask, radius, false)
}

// Close fills gaps: dilation followed by erosion.
func Close(mask [][]bool, radius int) [][]bool {
	return Erode(Dilate(mask, radius), radius)
}

// Open removes small noise: erosion followed by dilation.
func Open(mask [][]bool, radius int) [][]bool {
	return Dilate(Erode(mask, radius), radius)
}

func morph(mask [][]bool, radius int, dilate bool) [][]bool {
	h := len(mask)
	if h == 0 || radius <= 0 {
		return mask
	}
	w := len(mask[0])

	out := make([][]bool, h)
	for y := 0; y < h; y++ {
		out[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			// Dilation takes the max over the kernel, erosion the min.
			val := !dilate
			for ky := -radius; ky <= radius && val != dilate; ky++ {
				for kx := -radius; kx <= radius; kx++ {
					ny, nx := y+ky, x+kx
					if ny < 0 || ny >= h || nx < 0 || nx >= w {
						if !dilate {
							// Out-of-bounds counts as background for erosion.
							val = false
						}
						continue
					}
					if mask[ny][nx] == dilate {
						val = dilate
						break
					}
				}
			}
			out[y][x] = val
		}
	}
	return out
}

// FillHoles fills background regions not connected to the image border,
// turning outlined shapes into solid ones. Uses a border-seeded flood fill
// over the background.
func FillHoles(mask [][]bool) [][]bool {
	h := len(mask)
	if h == 0 {
		return mask
	}
	w := len(mask[0])

	outside := make([][]bool, h)
	for y := range outside {
		outside[y] = make([]bool, w)
	}

	var stack []Point
	for x := 0; x < w; x++ {
		stack = append(stack, Point{X: x, Y: 0}, Point{X: x, Y: h - 1})
	}
	for y := 0; y < h; y++ {
		stack = append(stack, Point{X: 0, Y: y}, Point{X: w - 1, Y: y})
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		if outside[p.Y][p.X] || mask[p.Y][p.X] {
			continue
		}
		outside[p.Y][p.X] = true
		stack = append(stack,
			Point{X: p.X - 1, Y: p.Y}, Point{X: p.X + 1, Y: p.Y},
			Point{X: p.X, Y: p.Y - 1}, Point{X: p.X, Y: p.Y + 1})
	}

	out := make([][]bool, h)
	for y := 0; y < h; y++ {
		out[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			out[y][x] = mask[y][x] || !outside[y][x]
		}
	}
	return out
}

// NewMask allocates an all-background mask of the given size.
func NewMask(w, h int) [][]bool {
	mask := make([][]bool, h)
	for y := range mask {
		mask[y] = make([]bool, w)
	}
	return mask
}

// OtsuThreshold computes the Otsu between-class-variance threshold of a
// grayscale plane's intensity histogram. Returns a level in [0, 255];
// foreground/background polarity is chosen by the caller.
//
// On a clean two-tone histogram the between-class variance plateaus across
// every level separating the modes; the midpoint of that plateau is returned
// so that strict comparisons against the result still split the modes.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	total := 0
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			hist[gray.Pix[y*gray.Stride+x]]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	sum := 0
	for i := 0; i < 256; i++ {
		sum += i * hist[i]
	}

	var bestLo, bestHi, sumB, wB int
	var maxVar float64
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += t * hist[t]
		meanB := float64(sumB) / float64(wB)
		meanF := float64(sum-sumB) / float64(wF)
		v := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		switch {
		case v > maxVar:
			maxVar = v
			bestLo, bestHi = t, t
		case v == maxVar && maxVar > 0 && t == bestHi+1:
			bestHi = t
		}
	}
	return uint8((bestLo + bestHi) / 2)
}
