package vecatlas

import (
	"testing"

	"github.com/agg-go/vecatlas/internal/config"
	"github.com/agg-go/vecatlas/internal/obs"
)

// TestDecodeZeroFrameContainerIsInvalid covers a minimal uncompressed
// container (header only, no frame rect/rate/count, a single End tag as its
// entire body): the frame count never advances past zero, so the container
// must report itself invalid even though it carries trailing tag bytes.
func TestDecodeZeroFrameContainerIsInvalid(t *testing.T) {
	data := []byte{
		'F', 'W', 'S', // signature
		0x06,                   // version
		0x0F, 0x00, 0x00, 0x00, // declared length
		0x00, 0x00, // End tag: code 0, length 0
	}

	c, err := Decode(data, config.Default(), obs.Logger())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.FrameCount != 0 {
		t.Fatalf("FrameCount = %d, want 0", c.FrameCount)
	}
	if c.Valid {
		t.Fatalf("Valid = true, want false for a zero-frame container")
	}
}
