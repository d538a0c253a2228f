package atlas

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/agg-go/vecatlas/internal/bitmap"
)

func TestExternalizeImagesIsANoOpWithoutADir(t *testing.T) {
	defs := []CanonicalDef{{ID: "d0", Tag: "image", Markup: `<image href="data:image/png;base64,QUJD"/>`, IsImage: true}}

	out, images, err := ExternalizeImages(defs, ExportOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 0 {
		t.Fatalf("want no exported images, got %d", len(images))
	}
	if out[0].Markup != defs[0].Markup {
		t.Fatalf("markup changed with no Dir set: %q", out[0].Markup)
	}
}

func TestExternalizeImagesRewritesHrefAndDedupsByContent(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("same-bytes"))
	defs := []CanonicalDef{
		{ID: "d0", Tag: "image", Markup: `<image id="d0" href="data:image/png;base64,` + payload + `"/>`, IsImage: true},
		{ID: "d1", Tag: "image", Markup: `<image id="d1" href="data:image/png;base64,` + payload + `"/>`, IsImage: true},
		{ID: "d2", Tag: "g", Markup: `<g id="d2"><path d="M0 0"/></g>`},
	}

	out, images, err := ExternalizeImages(defs, ExportOptions{Dir: "/tmp/export"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("want 1 unique image, got %d", len(images))
	}
	if images[0].MimeType != "image/png" {
		t.Fatalf("MimeType = %q, want image/png", images[0].MimeType)
	}
	if string(images[0].Bytes) != "same-bytes" {
		t.Fatalf("Bytes = %q, want same-bytes", images[0].Bytes)
	}
	if strings.Contains(out[0].Markup, "base64,") || strings.Contains(out[1].Markup, "base64,") {
		t.Fatalf("expected inline data hrefs to be rewritten, got %q / %q", out[0].Markup, out[1].Markup)
	}
	if !strings.Contains(out[0].Markup, images[0].Hash) || !strings.Contains(out[1].Markup, images[0].Hash) {
		t.Fatalf("expected both defs to reference the same hashed file, got %q / %q", out[0].Markup, out[1].Markup)
	}
	if out[2].Markup != defs[2].Markup {
		t.Fatalf("non-image def markup should be untouched, got %q", out[2].Markup)
	}
}

func TestExternalizeImagesUsesWebBasePathWhenSet(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	defs := []CanonicalDef{{ID: "d0", Tag: "image", Markup: `<image href="data:image/jpeg;base64,` + payload + `"/>`, IsImage: true}}

	out, _, err := ExternalizeImages(defs, ExportOptions{Dir: "/tmp/export", WebBasePath: "https://cdn.example.com/assets/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out[0].Markup, `href="https://cdn.example.com/assets/`) {
		t.Fatalf("expected an absolute web-base-path href, got %q", out[0].Markup)
	}
	if !strings.HasSuffix(strings.TrimSuffix(out[0].Markup, `"/>`), ".jpg") {
		t.Fatalf("expected a .jpg extension for an image/jpeg payload, got %q", out[0].Markup)
	}
}

func TestExternalizeImagesEmitsAThumbnailWhenRequested(t *testing.T) {
	rgba := make([]byte, 64*16*4)
	png := bitmap.EncodePNG(64, 16, rgba)
	payload := base64.StdEncoding.EncodeToString(png)
	defs := []CanonicalDef{{ID: "d0", Tag: "image", Markup: `<image href="data:image/png;base64,` + payload + `"/>`, IsImage: true}}

	_, images, err := ExternalizeImages(defs, ExportOptions{Dir: "/tmp/export", ThumbnailMaxDim: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("want 1 full-resolution image plus 1 thumbnail, got %d", len(images))
	}
	var thumb *ExportedImage
	for i := range images {
		if images[i].ThumbnailOf != "" {
			thumb = &images[i]
		}
	}
	if thumb == nil {
		t.Fatal("expected one of the exported images to carry ThumbnailOf")
	}
	if thumb.ThumbnailOf != images[0].Hash && thumb.ThumbnailOf != images[1].Hash {
		t.Fatalf("ThumbnailOf %q does not match either exported hash", thumb.ThumbnailOf)
	}
	w, h, _, ok := bitmap.DecodePNG(thumb.Bytes)
	if !ok {
		t.Fatal("thumbnail bytes did not decode as PNG")
	}
	if w > 8 && h > 8 {
		t.Fatalf("thumbnail dims (%d,%d) exceed ThumbnailMaxDim on both axes", w, h)
	}
}

func TestExternalizeImagesSkipsThumbnailWhenAlreadySmall(t *testing.T) {
	rgba := make([]byte, 4*4*4)
	png := bitmap.EncodePNG(4, 4, rgba)
	payload := base64.StdEncoding.EncodeToString(png)
	defs := []CanonicalDef{{ID: "d0", Tag: "image", Markup: `<image href="data:image/png;base64,` + payload + `"/>`, IsImage: true}}

	_, images, err := ExternalizeImages(defs, ExportOptions{Dir: "/tmp/export", ThumbnailMaxDim: 128})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 1 {
		t.Fatalf("want no thumbnail for an already-small image, got %d images", len(images))
	}
}

func TestExternalizeImagesPropagatesProcessErrors(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	defs := []CanonicalDef{{ID: "d0", Tag: "image", Markup: `<image href="data:image/png;base64,` + payload + `"/>`, IsImage: true}}

	wantErr := errors.New("boom")
	_, _, err := ExternalizeImages(defs, ExportOptions{
		Dir:     "/tmp/export",
		Process: func(b []byte) ([]byte, error) { return nil, wantErr },
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected the Process error to propagate, got %v", err)
	}
}
