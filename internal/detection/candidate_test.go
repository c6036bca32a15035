package detection

import "testing"

func TestIoUIdentical(t *testing.T) {
	b := Bounds{X: 10, Y: 10, Width: 50, Height: 40}
	if got := b.IoU(b); got != 1.0 {
		t.Errorf("IoU of identical boxes = %v, want 1.0", got)
	}
}

func TestIoUDisjoint(t *testing.T) {
	a := Bounds{X: 0, Y: 0, Width: 10, Height: 10}
	b := Bounds{X: 100, Y: 100, Width: 10, Height: 10}
	if got := a.IoU(b); got != 0 {
		t.Errorf("IoU of disjoint boxes = %v, want 0", got)
	}
}

func TestIoUSymmetric(t *testing.T) {
	a := Bounds{X: 0, Y: 0, Width: 40, Height: 40}
	b := Bounds{X: 20, Y: 20, Width: 40, Height: 40}
	if a.IoU(b) != b.IoU(a) {
		t.Errorf("IoU not symmetric: %v vs %v", a.IoU(b), b.IoU(a))
	}
	if a.IoU(b) <= 0 || a.IoU(b) >= 1 {
		t.Errorf("partial overlap IoU = %v, want in (0, 1)", a.IoU(b))
	}
}

func TestIoUZeroUnion(t *testing.T) {
	a := Bounds{X: 5, Y: 5, Width: 0, Height: 0}
	b := Bounds{X: 5, Y: 5, Width: 0, Height: 0}
	if got := a.IoU(b); got != 0 {
		t.Errorf("IoU of degenerate boxes = %v, want 0", got)
	}
}

func TestClampInside(t *testing.T) {
	b := Bounds{X: 10, Y: 10, Width: 20, Height: 20}
	if got := b.Clamp(100, 100); got != b {
		t.Errorf("Clamp changed an in-bounds box: %+v", got)
	}
}

func TestClampPartial(t *testing.T) {
	b := Bounds{X: -5, Y: 90, Width: 20, Height: 20}
	got := b.Clamp(100, 100)
	want := Bounds{X: 0, Y: 90, Width: 15, Height: 10}
	if got != want {
		t.Errorf("Clamp = %+v, want %+v", got, want)
	}
}

func TestClampFullyOutside(t *testing.T) {
	b := Bounds{X: 200, Y: 200, Width: 20, Height: 20}
	got := b.Clamp(100, 100)
	if got.Width > 0 && got.Height > 0 {
		t.Errorf("Clamp of an out-of-bounds box produced positive extent: %+v", got)
	}
}

func TestNewCandidateSeedsProvenance(t *testing.T) {
	c := NewCandidate(SourceBlob, Bounds{X: 1, Y: 2, Width: 3, Height: 4}, 0.5)
	if len(c.Sources) != 1 || c.Sources[0] != SourceBlob {
		t.Errorf("Sources = %v, want [blob]", c.Sources)
	}
}

func TestBoundsCenter(t *testing.T) {
	b := Bounds{X: 10, Y: 20, Width: 30, Height: 40}
	got := b.Center()
	if got.X != 25 || got.Y != 40 {
		t.Errorf("Center = %+v, want (25, 40)", got)
	}
}
