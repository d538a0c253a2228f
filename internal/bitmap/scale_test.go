package bitmap

import "testing"

func TestThumbnailDownscalesLongerSideToMaxDim(t *testing.T) {
	width, height := 400, 100
	rgba := make([]byte, width*height*4)
	for i := range rgba {
		rgba[i] = 0xFF
	}

	w, h, out := Thumbnail(width, height, rgba, 100)
	if w != 100 {
		t.Fatalf("width = %d, want 100", w)
	}
	if h != 25 {
		t.Fatalf("height = %d, want 25", h)
	}
	if len(out) != w*h*4 {
		t.Fatalf("output len = %d, want %d", len(out), w*h*4)
	}
}

func TestThumbnailIsNoOpWhenAlreadyWithinMaxDim(t *testing.T) {
	rgba := make([]byte, 10*10*4)
	w, h, out := Thumbnail(10, 10, rgba, 100)
	if w != 10 || h != 10 {
		t.Fatalf("dims = (%d,%d), want (10,10)", w, h)
	}
	if len(out) != len(rgba) {
		t.Fatalf("output len = %d, want %d", len(out), len(rgba))
	}
}

func TestThumbnailZeroMaxDimDisablesScaling(t *testing.T) {
	rgba := make([]byte, 400*100*4)
	w, h, out := Thumbnail(400, 100, rgba, 0)
	if w != 400 || h != 100 {
		t.Fatalf("dims = (%d,%d), want (400,100)", w, h)
	}
	if len(out) != len(rgba) {
		t.Fatalf("output len = %d, want %d", len(out), len(rgba))
	}
}
