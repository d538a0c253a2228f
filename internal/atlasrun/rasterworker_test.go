package atlasrun

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/agg-go/vecatlas/internal/rasterpool"
)

func TestInlineWorkerNormalizesToPNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}

	pool := rasterpool.New([]rasterpool.Worker{newInlineWorker()}, 0)
	defer pool.Shutdown()

	out, err := pool.Submit(context.Background(), buf.Bytes())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output was not a valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 2 || decoded.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v, want 2x2", decoded.Bounds())
	}
}

func TestInlineWorkerPassesThroughUndecodablePayloads(t *testing.T) {
	pool := rasterpool.New([]rasterpool.Worker{newInlineWorker()}, 0)
	defer pool.Shutdown()

	raw := []byte("not an image")
	out, err := pool.Submit(context.Background(), raw)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if string(out) != string(raw) {
		t.Fatalf("expected the raw payload to pass through unchanged, got %q", out)
	}
}
