package atlas

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/agg-go/vecatlas/internal/bitmap"
)

// ExportedImage is one content-addressed image payload pulled out of a
// canonical def's inline data: href, ready to write to its own file.
type ExportedImage struct {
	Hash     string
	MimeType string
	Bytes    []byte
	// ThumbnailOf is the Hash of the full-resolution export this is a
	// downscaled preview of, empty for a full-resolution entry.
	ThumbnailOf string
}

// ExportOptions controls externalizing inline image defs instead of leaving
// them base64-encoded inside the combined atlas SVG. A zero value (Dir =="")
// leaves every def untouched.
type ExportOptions struct {
	// Dir is the directory exported image files are addressed relative to.
	// Empty disables externalization entirely.
	Dir string
	// WebBasePath, when set, roots externalized hrefs at this URL prefix
	// instead of a bare relative filename.
	WebBasePath string
	// Process, if non-nil, runs each decoded image payload through an
	// external step (e.g. a rasterpool.Pool) before it is hashed and
	// written; a nil Process keeps the bytes as decoded.
	Process func([]byte) ([]byte, error)
	// ThumbnailMaxDim, when non-zero, asks ExternalizeImages to also emit
	// a downscaled preview alongside every full-resolution PNG export,
	// for a caller's sprite picker or loading placeholder. Images that
	// already fit within ThumbnailMaxDim, and payloads ExternalizeImages
	// cannot decode back into raw pixels (non-PNG mime types), are
	// skipped rather than treated as an error.
	ThumbnailMaxDim int
}

var reImageHref = regexp.MustCompile(`href="data:([^;"]+);base64,([^"]*)"`)

// ExternalizeImages rewrites every image def's inline data href to an
// external, content-hashed file reference, returning the defs with rewritten
// Markup and the unique payloads the caller still needs to write to disk.
// Two defs whose processed bytes hash identically collapse to one file.
func ExternalizeImages(defs []CanonicalDef, opts ExportOptions) ([]CanonicalDef, []ExportedImage, error) {
	if opts.Dir == "" {
		return defs, nil, nil
	}

	out := make([]CanonicalDef, len(defs))
	copy(out, defs)
	seen := map[string]bool{}
	var images []ExportedImage

	for i, d := range out {
		if !d.IsImage {
			continue
		}
		m := reImageHref.FindStringSubmatch(d.Markup)
		if m == nil {
			continue
		}
		mime, encoded := m[1], m[2]
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, nil, fmt.Errorf("atlas: decoding image data for %s: %w", d.ID, err)
		}
		if opts.Process != nil {
			processed, err := opts.Process(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("atlas: externalizing image for %s: %w", d.ID, err)
			}
			raw = processed
		}

		sum := sha256.Sum256(raw)
		hash := hex.EncodeToString(sum[:])[:16]
		fileName := hash + extensionFor(mime)

		if !seen[hash] {
			seen[hash] = true
			images = append(images, ExportedImage{Hash: hash, MimeType: mime, Bytes: raw})
			if opts.ThumbnailMaxDim > 0 {
				if thumb, ok := buildThumbnail(mime, raw, hash, opts.ThumbnailMaxDim); ok {
					images = append(images, thumb)
				}
			}
		}

		ref := fileName
		if opts.WebBasePath != "" {
			ref = strings.TrimRight(opts.WebBasePath, "/") + "/" + fileName
		}
		out[i].Markup = reImageHref.ReplaceAllString(d.Markup, fmt.Sprintf(`href="%s"`, ref))
	}

	return out, images, nil
}

// buildThumbnail decodes a PNG export back to raw pixels, box/bilinear-scales
// it down to maxDim on its longer side, and re-encodes it. Anything
// ExternalizeImages didn't itself encode (a JPEG passed through unchanged,
// say) isn't guaranteed to round-trip through the minimal PNG decoder, so
// non-PNG mime types are skipped rather than risked.
func buildThumbnail(mime string, pngBytes []byte, fullHash string, maxDim int) (ExportedImage, bool) {
	if mime != "image/png" {
		return ExportedImage{}, false
	}
	width, height, rgba, ok := bitmap.DecodePNG(pngBytes)
	if !ok {
		return ExportedImage{}, false
	}
	thumbW, thumbH, thumbRGBA := bitmap.Thumbnail(width, height, rgba, maxDim)
	if thumbW == width && thumbH == height {
		return ExportedImage{}, false // already within maxDim, no preview needed
	}
	encoded := bitmap.EncodePNG(thumbW, thumbH, thumbRGBA)
	sum := sha256.Sum256(encoded)
	return ExportedImage{
		Hash:        hex.EncodeToString(sum[:])[:16],
		MimeType:    "image/png",
		Bytes:       encoded,
		ThumbnailOf: fullHash,
	}, true
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		return ".bin"
	}
}
