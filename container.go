package vecatlas

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/rs/zerolog"

	"github.com/agg-go/vecatlas/internal/bitio"
	"github.com/agg-go/vecatlas/internal/bitmap"
	"github.com/agg-go/vecatlas/internal/character"
	"github.com/agg-go/vecatlas/internal/config"
	"github.com/agg-go/vecatlas/internal/decoderr"
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
	"github.com/agg-go/vecatlas/internal/shape"
	"github.com/agg-go/vecatlas/internal/tags"
	"github.com/agg-go/vecatlas/internal/timeline"
)

// Container is a fully decoded document: its structural header, the
// character cache populated from every definition tag, and the compiled
// root timeline.
type Container struct {
	Version        uint8
	DeclaredLength int
	Compressed     bool
	Valid          bool

	FrameBounds geom.Rect
	FrameRate   float64
	FrameCount  int

	Cache    *character.Cache
	Timeline *character.Timeline
	Warnings []decoderr.Warning
}

const (
	codeJPEGTables       = 8
	codeDefineBits       = 6
	codeDefineBitsJPEG2  = 21
	codeDefineBitsJPEG3  = 35
	codeDefineBitsLoss   = 20
	codeDefineBitsLoss2  = 36
	codeDefineShape      = 2
	codeDefineShape2     = 22
	codeDefineShape3     = 32
	codeDefineShape4     = 83
	codeDefineMorph      = 46
	codeDefineMorph2     = 84
	codeDefineSprite     = 39
)

// Decode parses data as a complete container, decoding every definition tag
// it finds and compiling the root timeline. Non-fatal conditions are
// recorded as Warnings; Decode itself fails only when data is shorter than
// the 8-byte fixed header or, with cfg.StrictHeaders set, when the signature
// is unrecognized or the compressed body cannot be inflated (without
// StrictHeaders those two conditions are Warnings).
func Decode(data []byte, cfg config.Config, log zerolog.Logger) (*Container, error) {
	headerFlags := cfg.DefaultErrorFlags
	if cfg.StrictHeaders {
		headerFlags = bitio.FlagStrict
	}

	if len(data) < 8 {
		return nil, fmt.Errorf("vecatlas: %w: header shorter than 8 bytes", decoderr.ErrOutOfBounds)
	}

	r := bitio.New(data, headerFlags)
	sig, err := r.Bytes(3)
	if err != nil {
		return nil, fmt.Errorf("vecatlas: reading signature: %w", err)
	}
	version, err := r.U8()
	if err != nil {
		return nil, fmt.Errorf("vecatlas: reading version: %w", err)
	}
	declaredLength, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("vecatlas: reading declared length: %w", err)
	}

	c := &Container{
		Version:        version,
		DeclaredLength: int(declaredLength),
	}

	var rest []byte
	switch {
	case bytes.Equal(sig, []byte("FWS")):
		c.Compressed = false
		rest, err = r.Bytes(r.Remaining())
	case bytes.Equal(sig, []byte("CWS")):
		c.Compressed = true
		rest, err = r.Inflate(r.End())
	default:
		err = fmt.Errorf("%w: unrecognized signature %q", decoderr.ErrMalformed, sig)
	}
	if err != nil {
		if cfg.StrictHeaders {
			return nil, fmt.Errorf("vecatlas: %w", err)
		}
		c.Warnings = append(c.Warnings, decoderr.Warning{Kind: decoderr.KindMalformed, Message: err.Error()})
		rest = nil
	}

	flags := cfg.DefaultErrorFlags
	body := bitio.New(rest, flags)

	frameBounds, err := records.ReadRect(body)
	if err == nil {
		c.FrameBounds = frameBounds
	}
	rate, err := body.U16()
	if err == nil {
		c.FrameRate = float64(rate) / 256.0
	}
	count, err := body.U16()
	if err == nil {
		c.FrameCount = int(count)
	}
	c.Valid = c.FrameCount > 0

	tagBytes, err := body.Bytes(body.Remaining())
	if err != nil {
		tagBytes = nil
	}

	cache := character.NewCache(log)
	c.Cache = cache

	dec := &definitionDecoder{cache: cache, flags: flags, log: log}
	_ = tags.New(tagBytes, flags).Iterate(func(hdr tags.Header, tr *bitio.Reader) bool {
		dec.handle(hdr, tr)
		return true
	})
	c.Warnings = append(c.Warnings, dec.warnings...)

	comp := timeline.New(cache, geom.Twip(cfg.MaxBoundsExtent), flags)
	tl, err := comp.Compile(tagBytes)
	if err != nil {
		c.Warnings = append(c.Warnings, decoderr.Warning{Kind: decoderr.KindMalformed, Message: err.Error()})
		tl = &character.Timeline{}
	}
	c.Timeline = tl

	return c, nil
}

// definitionDecoder dispatches definition tags into the character cache as
// they're encountered, single-pass. JPEGTables carries shared encoding
// tables consumed only by a following DefineBits tag in the same container.
type definitionDecoder struct {
	cache       *character.Cache
	flags       uint8
	log         zerolog.Logger
	jpegTables  []byte
	warnings    []decoderr.Warning
}

func (d *definitionDecoder) warn(kind decoderr.Kind, format string, args ...any) {
	d.warnings = append(d.warnings, decoderr.Warning{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (d *definitionDecoder) handle(hdr tags.Header, r *bitio.Reader) {
	switch hdr.Code {
	case codeJPEGTables:
		raw, err := r.Bytes(r.Remaining())
		if err == nil {
			d.jpegTables = raw
		}
	case codeDefineShape, codeDefineShape2, codeDefineShape3, codeDefineShape4:
		d.decodeShape(hdr, r)
	case codeDefineMorph, codeDefineMorph2:
		d.decodeMorph(hdr, r)
	case codeDefineSprite:
		d.decodeSprite(hdr, r)
	case codeDefineBits:
		d.decodeEmbeddedJPEG(hdr, r, true)
	case codeDefineBitsJPEG2:
		d.decodeEmbeddedJPEG(hdr, r, false)
	case codeDefineBitsJPEG3:
		d.decodeJPEGWithAlpha(hdr, r)
	case codeDefineBitsLoss:
		d.decodeLossless(hdr, r, false)
	case codeDefineBitsLoss2:
		d.decodeLossless(hdr, r, true)
	}
}

func (d *definitionDecoder) decodeShape(hdr tags.Header, r *bitio.Reader) {
	extendedLines := hdr.Code == codeDefineShape3 || hdr.Code == codeDefineShape4
	hasAlpha := extendedLines
	hasShapeFlags := hdr.Code == codeDefineShape4

	h, err := records.ReadShapeHeader(r, hasAlpha, extendedLines, hasShapeFlags)
	if err != nil {
		d.warn(decoderr.KindMalformed, "shape %d: %v", hdr.CharacterID, err)
		return
	}

	edgeReader := records.NewEdgeStreamReader(r, h.FillBits, h.LineBits, hasAlpha, extendedLines)
	comp := shape.New(h.FillStyles, h.LineStyles)
	for {
		rec, err := edgeReader.Next()
		if err != nil {
			d.warn(decoderr.KindMalformed, "shape %d edge stream: %v", hdr.CharacterID, err)
			break
		}
		comp.Feed(rec)
		if rec.Kind == records.RecordEndShape {
			break
		}
	}
	paths := comp.Finalize()

	bounds := h.Bounds
	if bounds.IsEmpty() {
		bounds = boundsFromPaths(paths)
	}
	d.cache.Define(&character.ShapeDefinition{
		CharacterID: h.CharacterID,
		Bounds:      bounds,
		Paths:       paths,
	})
}

func (d *definitionDecoder) decodeMorph(hdr tags.Header, r *bitio.Reader) {
	h, err := records.ReadMorphShapeHeader(r)
	if err != nil {
		d.warn(decoderr.KindMalformed, "morph shape %d: %v", hdr.CharacterID, err)
		return
	}

	startEnd := h.EndEdgesOffset
	allEdges, err := r.Bytes(r.Remaining())
	if err != nil {
		d.warn(decoderr.KindMalformed, "morph shape %d edge bytes: %v", hdr.CharacterID, err)
		return
	}
	if startEnd < 0 || startEnd > len(allEdges) {
		startEnd = len(allEdges)
	}

	fillBits, lineBits := morphStyleIndexBits(len(h.FillStyles), len(h.LineStyles))

	d.cache.Define(&character.MorphShapeDefinition{
		CharacterID: h.CharacterID,
		StartBounds: h.StartBounds,
		EndBounds:   h.EndBounds,
		StartEdges:  allEdges[:startEnd],
		EndEdges:    allEdges[startEnd:],
		FillBits:    fillBits,
		LineBits:    lineBits,
		FillPairs:   h.FillStyles,
		LinePairs:   h.LineStyles,
	})
}

// morphStyleIndexBits picks the narrowest style-index bit width that can
// address every entry in a morph shape's style arrays, mirroring the plain
// shape header's explicit FillBits/LineBits fields (morph headers omit them
// since both streams share one style table).
func morphStyleIndexBits(fillCount, lineCount int) (fillBits, lineBits int) {
	bitsFor := func(n int) int {
		b := 0
		for (1 << b) <= n {
			b++
		}
		return b
	}
	return bitsFor(fillCount), bitsFor(lineCount)
}

func (d *definitionDecoder) decodeSprite(hdr tags.Header, r *bitio.Reader) {
	if _, err := r.U16(); err != nil { // character id, already in hdr.CharacterID
		d.warn(decoderr.KindMalformed, "sprite %d: %v", hdr.CharacterID, err)
		return
	}
	if _, err := r.U16(); err != nil { // frame count, informational only
		d.warn(decoderr.KindMalformed, "sprite %d: %v", hdr.CharacterID, err)
		return
	}
	raw, err := r.Bytes(r.Remaining())
	if err != nil {
		d.warn(decoderr.KindMalformed, "sprite %d control tags: %v", hdr.CharacterID, err)
		return
	}
	d.cache.Define(&character.SpriteDefinition{
		CharacterID: hdr.CharacterID,
		ControlTags: append([]byte(nil), raw...),
	})
}

func (d *definitionDecoder) decodeEmbeddedJPEG(hdr tags.Header, r *bitio.Reader, mayHaveTables bool) {
	id, err := records.ReadEmbeddedBitsHeader(r)
	if err != nil {
		d.warn(decoderr.KindMalformed, "bitmap %d: %v", hdr.CharacterID, err)
		return
	}
	raw, err := r.Bytes(r.Remaining())
	if err != nil {
		d.warn(decoderr.KindMalformed, "bitmap %d payload: %v", id, err)
		return
	}

	var full []byte
	if mayHaveTables && len(d.jpegTables) > 0 {
		full = append(append([]byte(nil), d.jpegTables...), raw...)
	} else {
		full = raw
	}
	full = bitmap.SanitizeJPEG(full)

	w, h, rgb, ok := decodeJPEGRGB(full)
	def := &character.BitmapDefinition{CharacterID: id, Encoding: "jpeg", Bytes: full}
	if ok {
		def.Width, def.Height = w, h
		def.RGBA = rgbaFromRGB(rgb, w, h)
	} else {
		d.warn(decoderr.KindUnprocessable, "bitmap %d: undecodable JPEG payload", id)
	}
	d.cache.Define(def)
}

func (d *definitionDecoder) decodeJPEGWithAlpha(hdr tags.Header, r *bitio.Reader) {
	id, err := records.ReadEmbeddedBitsHeader(r)
	if err != nil {
		d.warn(decoderr.KindMalformed, "bitmap %d: %v", hdr.CharacterID, err)
		return
	}
	alphaOffset, err := r.U32()
	if err != nil {
		d.warn(decoderr.KindMalformed, "bitmap %d alpha offset: %v", id, err)
		return
	}
	jpegEnd := r.Tell() + int(alphaOffset)
	jpegBytes, err := r.BytesUntil(jpegEnd)
	if err != nil {
		d.warn(decoderr.KindMalformed, "bitmap %d jpeg payload: %v", id, err)
		return
	}
	alpha, err := bitmap.InflateAlphaPlane(r, r.End())
	if err != nil {
		d.warn(decoderr.KindMalformed, "bitmap %d alpha plane: %v", id, err)
		alpha = nil
	}

	sanitized := bitmap.SanitizeJPEG(jpegBytes)
	w, h, rgb, ok := decodeJPEGRGB(sanitized)
	def := &character.BitmapDefinition{CharacterID: id, Encoding: "jpeg", Bytes: sanitized}
	if ok {
		def.Width, def.Height = w, h
		if len(alpha) == w*h {
			def.RGBA = bitmap.DeinterleaveAlpha(rgb, alpha, w, h)
		} else {
			def.RGBA = rgbaFromRGB(rgb, w, h)
		}
	} else {
		d.warn(decoderr.KindUnprocessable, "bitmap %d: undecodable JPEG payload", id)
	}
	d.cache.Define(def)
}

func (d *definitionDecoder) decodeLossless(hdr tags.Header, r *bitio.Reader, hasAlpha bool) {
	h, err := records.ReadLosslessBitmapHeader(r, hasAlpha)
	if err != nil {
		d.warn(decoderr.KindMalformed, "lossless bitmap %d: %v", hdr.CharacterID, err)
		return
	}
	inflated, err := r.Inflate(r.End())
	if err != nil {
		d.warn(decoderr.KindMalformed, "lossless bitmap %d payload: %v", h.CharacterID, err)
		inflated = nil
	}
	rgba := bitmap.DecodeLossless(h, inflated, hasAlpha)
	d.cache.Define(&character.BitmapDefinition{
		CharacterID: h.CharacterID,
		Width:       h.Width,
		Height:      h.Height,
		Encoding:    "png",
		Bytes:       bitmap.EncodePNG(h.Width, h.Height, rgba),
		RGBA:        rgba,
	})
}

// decodeJPEGRGB decodes a standard JPEG byte stream via the standard
// library image/jpeg codec (no third-party JPEG decoder is present anywhere
// in the reference corpus) and flattens it to tightly packed RGB bytes.
func decodeJPEGRGB(data []byte) (width, height int, rgb []byte, ok bool) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, false
	}
	b := img.Bounds()
	width, height = b.Dx(), b.Dy()
	rgb = make([]byte, width*height*3)
	at := func(x, y int) (r, g, bl uint32) {
		cr, cg, cb, _ := img.At(x, y).RGBA()
		return cr, cg, cb
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, bl := at(b.Min.X+x, b.Min.Y+y)
			i := (y*width + x) * 3
			rgb[i], rgb[i+1], rgb[i+2] = byte(r>>8), byte(g>>8), byte(bl>>8)
		}
	}
	return width, height, rgb, true
}

func rgbaFromRGB(rgb []byte, width, height int) []byte {
	out := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = rgb[i*3], rgb[i*3+1], rgb[i*3+2], 255
	}
	return out
}

func boundsFromPaths(paths []shape.CompiledPath) geom.Rect {
	var out geom.Rect
	first := true
	for _, p := range paths {
		minX, minY, maxX, maxY := p.Bounds()
		r := geom.Rect{XMin: geom.Twip(minX), YMin: geom.Twip(minY), XMax: geom.Twip(maxX), YMax: geom.Twip(maxY)}
		if first {
			out = r
			first = false
			continue
		}
		out = out.Union(r)
	}
	return out
}
