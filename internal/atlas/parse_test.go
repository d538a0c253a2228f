package atlas

import "testing"

func TestParseFrameExtractsViewBoxOffsetUsesAndDefs(t *testing.T) {
	src := `<svg viewBox="0 0 64 48"><g transform="translate(3,7)">` +
		`<use xlink:href="#shape1" transform="matrix(1,0,0,1,0,0)" width="10" height="20"/>` +
		`</g><defs><g id="shape1"><path fill="url(#grad1)" d="M0 0 L10 0"/></g>` +
		`<linearGradient id="grad1"><stop offset="0" stop-color="#fff"/></linearGradient></defs></svg>`

	f := ParseFrame("walk_0", src)

	if f.ViewBoxW != 64 || f.ViewBoxH != 48 {
		t.Fatalf("viewBox = %v,%v want 64,48", f.ViewBoxW, f.ViewBoxH)
	}
	if f.OffsetX != 3 || f.OffsetY != 7 {
		t.Fatalf("offset = %v,%v want 3,7", f.OffsetX, f.OffsetY)
	}
	if len(f.Uses) != 1 || f.Uses[0].ID != "shape1" {
		t.Fatalf("uses = %+v", f.Uses)
	}
	if len(f.Defs) != 2 {
		t.Fatalf("want 2 top-level defs, got %d: %+v", len(f.Defs), f.Defs)
	}

	var shape, grad Definition
	for _, d := range f.Defs {
		switch d.OriginalID {
		case "shape1":
			shape = d
		case "grad1":
			grad = d
		}
	}
	if shape.Tag != "g" || len(shape.Refs) != 1 || shape.Refs[0] != "grad1" {
		t.Fatalf("shape def = %+v", shape)
	}
	if grad.Tag != "linearGradient" || grad.Inner == "" {
		t.Fatalf("gradient def = %+v", grad)
	}
}

func TestParseFrameHandlesImageDataHref(t *testing.T) {
	src := `<svg viewBox="0 0 10 10"><g transform="translate(0,0)"></g>` +
		`<defs><image id="img1" xlink:href="data:image/png;base64,QUJD" width="10" height="10"/></defs></svg>`

	f := ParseFrame("f_0", src)
	if len(f.Defs) != 1 {
		t.Fatalf("want 1 def, got %d", len(f.Defs))
	}
	if f.Defs[0].ImageData != "QUJD" {
		t.Fatalf("ImageData = %q, want QUJD", f.Defs[0].ImageData)
	}
}
