package detection

import (
	"image"
	"testing"
)

// squareMask creates a w×h mask with a filled square at (x, y, size).
func squareMask(w, h, x, y, size int) [][]bool {
	mask := NewMask(w, h)
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			mask[y+dy][x+dx] = true
		}
	}
	return mask
}

func countMask(mask [][]bool) int {
	n := 0
	for _, row := range mask {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

func TestDilateGrows(t *testing.T) {
	mask := squareMask(32, 32, 10, 10, 5)
	before := countMask(mask)
	after := countMask(Dilate(mask, 1))
	if after <= before {
		t.Errorf("dilation did not grow the mask: %d -> %d", before, after)
	}
}

func TestErodeShrinks(t *testing.T) {
	mask := squareMask(32, 32, 10, 10, 5)
	before := countMask(mask)
	after := countMask(Erode(mask, 1))
	if after >= before {
		t.Errorf("erosion did not shrink the mask: %d -> %d", before, after)
	}
}

func TestOpenRemovesSpecks(t *testing.T) {
	mask := squareMask(32, 32, 10, 10, 6)
	mask[2][2] = true // isolated pixel

	opened := Open(mask, 1)
	if opened[2][2] {
		t.Error("opening kept an isolated pixel")
	}
	if !opened[12][12] {
		t.Error("opening destroyed the interior of a solid square")
	}
}

func TestFillHoles(t *testing.T) {
	// Square ring with a hollow center.
	mask := squareMask(32, 32, 8, 8, 10)
	for dy := 2; dy < 8; dy++ {
		for dx := 2; dx < 8; dx++ {
			mask[8+dy][8+dx] = false
		}
	}

	filled := FillHoles(mask)
	if !filled[12][12] {
		t.Error("interior hole not filled")
	}
	if filled[0][0] {
		t.Error("exterior background was filled")
	}
}

func TestOtsuUniform(t *testing.T) {
	if got := OtsuThreshold(uniformGray(64, 64, 128)); got != 0 {
		t.Errorf("Otsu on a uniform image = %d, want 0", got)
	}
}

func TestOtsuBimodal(t *testing.T) {
	img := diskGray(64, 64, 32, 32, 15, 220, 40)
	thresh := OtsuThreshold(img)
	if thresh <= 40 || thresh >= 220 {
		t.Errorf("Otsu threshold %d not between the two modes", thresh)
	}
}

func TestOtsuTwoToneSplitsModes(t *testing.T) {
	// Half 40, half 220: the variance plateau spans [40, 219], so the
	// returned midpoint keeps strict comparisons on either side of both
	// modes. A first-maximizer answer of 40 would leave the dark mode
	// outside a `pix < thresh` mask.
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 40
		} else {
			img.Pix[i] = 220
		}
	}
	if got := OtsuThreshold(img); got != 129 {
		t.Errorf("two-tone threshold = %d, want 129", got)
	}
}

func TestFindComponentsSeparates(t *testing.T) {
	mask := squareMask(64, 64, 5, 5, 10)
	for dy := 0; dy < 8; dy++ {
		for dx := 0; dx < 8; dx++ {
			mask[40+dy][40+dx] = true
		}
	}

	comps, _ := FindComponents(mask, 1, false)
	if len(comps) != 2 {
		t.Fatalf("found %d components, want 2", len(comps))
	}
	// Sorted largest first.
	if comps[0].Area < comps[1].Area {
		t.Error("components not sorted by descending area")
	}
	if comps[0].Area != 100 {
		t.Errorf("largest component area = %d, want 100", comps[0].Area)
	}
}

func TestFindComponentsMinArea(t *testing.T) {
	mask := squareMask(32, 32, 5, 5, 3) // area 9
	comps, _ := FindComponents(mask, 10, false)
	if len(comps) != 0 {
		t.Errorf("component below min area was kept: %d", len(comps))
	}
}

func TestComponentCircularity(t *testing.T) {
	img := diskGray(64, 64, 32, 32, 20, 220, 40)
	mask := NewMask(64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if img.Pix[y*img.Stride+x] < 128 {
				mask[y][x] = true
			}
		}
	}

	comps, _ := FindComponents(mask, 1, false)
	if len(comps) != 1 {
		t.Fatalf("found %d components, want 1", len(comps))
	}
	circ := comps[0].Circularity()
	if circ < 0.5 || circ > 1.0 {
		t.Errorf("disk circularity = %v, want in [0.5, 1.0]", circ)
	}
}
