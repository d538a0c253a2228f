// Package svg implements the SvgEmitter: a drawing interface consumed by
// compiled shapes, sprites, morph shapes, and bitmaps, producing a single
// SVG document with a deferred, deduplicated <defs> section.
package svg

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"

	"github.com/agg-go/vecatlas/internal/character"
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
	"github.com/agg-go/vecatlas/internal/shape"
)

// StrokeMode selects how sub-pixel stroke widths are rendered.
type StrokeMode int

const (
	// StrokeNonScaling emits vector-effect="non-scaling-stroke" and clamps
	// the width to a 1px minimum.
	StrokeNonScaling StrokeMode = iota
	// StrokeSubPixel emits the true sub-pixel width unmodified.
	StrokeSubPixel
)

// Emitter accumulates one SVG document's body and deferred defs.
type Emitter struct {
	strokeMode StrokeMode

	body strings.Builder
	defs strings.Builder

	// defKeys maps a structural dedup key to the def id already emitted
	// for it, so a second identical gradient/pattern/fill is referenced
	// rather than re-emitted.
	defKeys map[string]string
	nextDef int

	clipStack []string
}

// New constructs an empty Emitter.
func New(strokeMode StrokeMode) *Emitter {
	return &Emitter{strokeMode: strokeMode, defKeys: make(map[string]string)}
}

// Area opens a root group translated so bounds' upper-left corner maps to
// the origin.
func (e *Emitter) Area(bounds geom.Rect) {
	fmt.Fprintf(&e.body, `<g transform="translate(%s,%s)">`,
		fnum(-bounds.XMin.ToPixels()), fnum(-bounds.YMin.ToPixels()))
}

// CloseArea closes the group opened by Area.
func (e *Emitter) CloseArea() {
	e.body.WriteString("</g>")
}

// Shape emits one translated group of <path> elements, one per compiled
// path, each carrying fill-rule="evenodd" and fill/stroke attributes
// derived from its style.
func (e *Emitter) Shape(paths []shape.CompiledPath, xOffset, yOffset geom.Twip) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(&e.body, `<g transform="translate(%s,%s)">`, fnum(xOffset.ToPixels()), fnum(yOffset.ToPixels()))
	for _, p := range paths {
		e.writePath(p)
	}
	e.body.WriteString("</g>")
}

func (e *Emitter) writePath(p shape.CompiledPath) {
	d := pathData(p.Segments)
	if d == "" {
		return
	}
	fmt.Fprintf(&e.body, `<path d="%s" fill-rule="evenodd"`, d)
	e.writeFillAttr(p.FillStyle)
	e.writeStrokeAttrs(p.LineStyle)
	e.body.WriteString("/>")
}

func pathData(segs []shape.Segment) string {
	var b strings.Builder
	var cursor geom.Point
	started := false
	for _, s := range segs {
		from := geom.Point{X: geom.Twip(s.From.X), Y: geom.Twip(s.From.Y)}
		if !started || cursor != from {
			fmt.Fprintf(&b, "M%s,%s", fnum(from.X.ToPixels()), fnum(from.Y.ToPixels()))
			started = true
		}
		to := geom.Point{X: geom.Twip(s.To.X), Y: geom.Twip(s.To.Y)}
		switch s.Kind {
		case shape.SegmentLine:
			fmt.Fprintf(&b, "L%s,%s", fnum(to.X.ToPixels()), fnum(to.Y.ToPixels()))
		case shape.SegmentQuadratic:
			ctrl := geom.Point{X: geom.Twip(s.Control.X), Y: geom.Twip(s.Control.Y)}
			fmt.Fprintf(&b, "Q%s,%s %s,%s", fnum(ctrl.X.ToPixels()), fnum(ctrl.Y.ToPixels()), fnum(to.X.ToPixels()), fnum(to.Y.ToPixels()))
		}
		cursor = to
	}
	return b.String()
}

func (e *Emitter) writeFillAttr(fs *records.FillStyle) {
	if fs == nil {
		e.body.WriteString(` fill="none"`)
		return
	}
	switch fs.Kind {
	case records.FillSolid:
		fmt.Fprintf(&e.body, ` fill="%s"`, hexColor(fs.Solid))
		if fs.Solid.A != 255 {
			fmt.Fprintf(&e.body, ` fill-opacity="%s"`, fnum(float64(fs.Solid.A)/255))
		}
	case records.FillLinearGradient, records.FillRadialGradient, records.FillFocalRadialGradient:
		id := e.gradientDef(*fs)
		fmt.Fprintf(&e.body, ` fill="url(#%s)"`, id)
	default: // bitmap fills
		id := e.patternDef(*fs)
		fmt.Fprintf(&e.body, ` fill="url(#%s)"`, id)
	}
}

func (e *Emitter) writeStrokeAttrs(ls *records.LineStyle) {
	if ls == nil {
		return
	}
	widthPx := geom.Twip(ls.Width).ToPixels()
	nonScaling := false
	if widthPx < 1 {
		switch e.strokeMode {
		case StrokeNonScaling:
			widthPx = 1
			nonScaling = true
		case StrokeSubPixel:
			// emitted as-is below
		}
	}
	if ls.Fill != nil {
		id := e.gradientOrPatternDef(*ls.Fill)
		fmt.Fprintf(&e.body, ` stroke="url(#%s)"`, id)
	} else {
		fmt.Fprintf(&e.body, ` stroke="%s"`, hexColor(ls.Color))
		if ls.Color.A != 255 {
			fmt.Fprintf(&e.body, ` stroke-opacity="%s"`, fnum(float64(ls.Color.A)/255))
		}
	}
	fmt.Fprintf(&e.body, ` stroke-width="%s"`, fnum(widthPx))
	if nonScaling {
		e.body.WriteString(` vector-effect="non-scaling-stroke"`)
	}
	e.body.WriteString(` stroke-linecap="` + capName(ls.StartCap) + `"`)
	e.body.WriteString(` stroke-linejoin="` + joinName(ls.Join) + `"`)
}

func capName(c records.CapStyle) string {
	switch c {
	case records.CapNone:
		return "butt"
	case records.CapSquare:
		return "square"
	default:
		return "round"
	}
}

func joinName(j records.JoinStyle) string {
	switch j {
	case records.JoinBevel:
		return "bevel"
	case records.JoinMiter:
		return "miter"
	default:
		return "round"
	}
}

func (e *Emitter) gradientOrPatternDef(fs records.FillStyle) string {
	switch fs.Kind {
	case records.FillLinearGradient, records.FillRadialGradient, records.FillFocalRadialGradient:
		return e.gradientDef(fs)
	default:
		return e.patternDef(fs)
	}
}

// gradientDef materializes a deduplicated <linearGradient>/<radialGradient>
// node, keyed by the fill's structural hash.
func (e *Emitter) gradientDef(fs records.FillStyle) string {
	key := shape.FillHash(fs)
	if id, ok := e.defKeys[key]; ok {
		return id
	}
	id := e.allocDefID("grad")
	e.defKeys[key] = id

	tag := "linearGradient"
	var geomAttrs string
	switch fs.Kind {
	case records.FillRadialGradient, records.FillFocalRadialGradient:
		tag = "radialGradient"
		fx := 0.5 + fs.Gradient.Focus/2
		geomAttrs = fmt.Sprintf(` cx="0.5" cy="0.5" r="0.5" fx="%s" fy="0.5"`, fnum(fx))
	default:
		geomAttrs = ` x1="0" y1="0" x2="1" y2="0"`
	}
	m := fs.GradientMat
	fmt.Fprintf(&e.defs, `<%s id="%s"%s gradientUnits="objectBoundingBox" gradientTransform="matrix(%s,%s,%s,%s,%s,%s)" spreadMethod="%s">`,
		tag, id, geomAttrs,
		fnum(m.ScaleX), fnum(m.ShearY), fnum(m.ShearX), fnum(m.ScaleY), fnum(m.TranslateX.ToPixels()), fnum(m.TranslateY.ToPixels()),
		spreadName(fs.Gradient.Spread))
	for _, stop := range fs.Gradient.Stops {
		fmt.Fprintf(&e.defs, `<stop offset="%s" stop-color="%s"`, fnum(float64(stop.Ratio)/255), hexColor(stop.Color))
		if stop.Color.A != 255 {
			fmt.Fprintf(&e.defs, ` stop-opacity="%s"`, fnum(float64(stop.Color.A)/255))
		}
		e.defs.WriteString("/>")
	}
	fmt.Fprintf(&e.defs, "</%s>", tag)
	return id
}

// filterDef materializes a deduplicated <filter> node implementing the
// drop-shadow/glow/bevel/gradient-glow/gradient-bevel/blur/color-matrix
// conversion contract. Inner-shadow and inner-glow variants
// are unsupported and pass the input through unchanged.
func (e *Emitter) filterDef(filters []records.Filter) string {
	key := filterKey(filters)
	if id, ok := e.defKeys[key]; ok {
		return id
	}
	id := e.allocDefID("filt")
	e.defKeys[key] = id

	fmt.Fprintf(&e.defs, `<filter id="%s" x="-50%%" y="-50%%" width="200%%" height="200%%">`, id)
	for i, f := range filters {
		e.writeFilterPrimitive(i, f)
	}
	e.defs.WriteString("</filter>")
	return id
}

func (e *Emitter) writeFilterPrimitive(i int, f records.Filter) {
	switch f.Kind {
	case records.FilterDropShadow, records.FilterGlow, records.FilterBevel, records.FilterGradientGlow, records.FilterGradientBevel:
		if f.Inner {
			return // unsupported: pass through unchanged
		}
		blurTag, blurOut := e.blurPrimitive(i, f.BlurX, f.BlurY, "SourceAlpha")
		e.defs.WriteString(blurTag)
		dx := f.Distance * math.Cos(f.Angle*math.Pi/180)
		dy := f.Distance * math.Sin(f.Angle*math.Pi/180)
		offsetOut := fmt.Sprintf("off%d", i)
		fmt.Fprintf(&e.defs, `<feOffset in="%s" dx="%s" dy="%s" result="%s"/>`, blurOut, fnum(dx), fnum(dy), offsetOut)
		colorOut := fmt.Sprintf("color%d", i)
		color := f.DropShadowColor
		if f.Kind != records.FilterDropShadow && len(f.GradientColors) > 0 {
			color = f.GradientColors[len(f.GradientColors)-1]
		}
		fmt.Fprintf(&e.defs, `<feColorMatrix in="%s" type="matrix" values="0 0 0 0 %s  0 0 0 0 %s  0 0 0 0 %s  0 0 0 %s 0" result="%s"/>`,
			offsetOut, fnum(float64(color.R)/255), fnum(float64(color.G)/255), fnum(float64(color.B)/255), fnum(float64(color.A)/255), colorOut)
		e.defs.WriteString(`<feMerge>`)
		fmt.Fprintf(&e.defs, `<feMergeNode in="%s"/>`, colorOut)
		e.defs.WriteString(`<feMergeNode in="SourceGraphic"/>`)
		e.defs.WriteString(`</feMerge>`)
	case records.FilterBlur:
		tag, _ := e.blurPrimitive(i, f.BlurX, f.BlurY, "SourceGraphic")
		e.defs.WriteString(tag)
	case records.FilterColorMatrix:
		var vals strings.Builder
		for r := 0; r < 4; r++ {
			for c := 0; c < 5; c++ {
				v := f.ColorMatrix[r*5+c]
				if c != 4 { // the offset column (index 4 of each row) is not a /255 scaled channel weight
					v /= 255
				}
				fmt.Fprintf(&vals, "%s ", fnum(v))
			}
		}
		fmt.Fprintf(&e.defs, `<feColorMatrix type="matrix" values="%s"/>`, strings.TrimSpace(vals.String()))
	}
}

// blurPrimitive emits a single <feGaussianBlur>, returning its markup and
// result name. A legacy box-blur filter of three or fewer passes reads as
// close to Gaussian already, so small radii (<= 9) reuse the source's
// per-pass box size directly as stdDeviation (radius / 3); above that the
// source's box-to-Gaussian conversion (σ = radius / √3) takes over, since a
// fixed /3 divisor overshoots the blur at larger radii.
func (e *Emitter) blurPrimitive(i int, radiusX, radiusY float64, in string) (string, string) {
	out := fmt.Sprintf("blur%d", i)
	radius := radiusX
	if radiusY > radius {
		radius = radiusY
	}
	if radius <= 9 {
		return fmt.Sprintf(`<feGaussianBlur in="%s" stdDeviation="%s,%s" result="%s"/>`, in, fnum(radiusX/3), fnum(radiusY/3), out), out
	}
	sigma := radius / math.Sqrt(3)
	return fmt.Sprintf(`<feGaussianBlur in="%s" stdDeviation="%s" result="%s"/>`, in, fnum(sigma), out), out
}

func filterKey(filters []records.Filter) string {
	var b strings.Builder
	for _, f := range filters {
		fmt.Fprintf(&b, "%d:%v;", f.Kind, f)
	}
	return b.String()
}

func spreadName(s records.SpreadMode) string {
	switch s {
	case records.SpreadReflect:
		return "reflect"
	case records.SpreadRepeat:
		return "repeat"
	default:
		return "pad"
	}
}

// patternDef materializes a deduplicated bitmap-fill <pattern>; the actual
// bitmap content is expected to already be in defs as an <image> emitted by
// Include, referenced here by the bitmap's own def id. The pattern is left
// empty when that bitmap has not been included.
func (e *Emitter) patternDef(fs records.FillStyle) string {
	key := shape.FillHash(fs)
	if id, ok := e.defKeys[key]; ok {
		return id
	}
	id := e.allocDefID("fill")
	e.defKeys[key] = id
	m := fs.BitmapMat
	fmt.Fprintf(&e.defs, `<pattern id="%s" patternUnits="userSpaceOnUse" patternTransform="matrix(%s,%s,%s,%s,%s,%s)">`,
		id, fnum(m.ScaleX), fnum(m.ShearY), fnum(m.ShearX), fnum(m.ScaleY), fnum(m.TranslateX.ToPixels()), fnum(m.TranslateY.ToPixels()))
	if bmpID, ok := e.defKeys[fmt.Sprintf("draw:%d:%v", fs.BitmapID, (*float64)(nil))]; ok {
		fmt.Fprintf(&e.defs, `<use href="#%s"/>`, bmpID)
	}
	e.defs.WriteString("</pattern>")
	return id
}

// Image emits an <image> element carrying a data-URL and twips-to-pixels
// bounds.
func (e *Emitter) Image(b *character.BitmapDefinition, bounds geom.Rect) {
	mime := "image/png"
	if b.Encoding == "jpeg" {
		mime = "image/jpeg"
	}
	data := base64.StdEncoding.EncodeToString(b.Bytes)
	fmt.Fprintf(&e.body, `<image x="%s" y="%s" width="%s" height="%s" href="data:%s;base64,%s"/>`,
		fnum(bounds.XMin.ToPixels()), fnum(bounds.YMin.ToPixels()),
		fnum(bounds.Width().ToPixels()), fnum(bounds.Height().ToPixels()), mime, data)
}

// Include draws a drawable into the deferred defs buffer (if not already
// present) and references it at the call site via <use>, with the composed
// matrix, optional filter chain, and optional CSS blend mode.
func (e *Emitter) Include(d character.Drawable, m geom.Matrix, ratio *float64, filters []records.Filter, blend records.BlendMode, name string) {
	defID := e.defineDrawable(d, ratio)
	if defID == "" {
		return
	}
	var filterAttr, blendAttr, nameAttr string
	if len(filters) > 0 {
		filterAttr = fmt.Sprintf(` filter="url(#%s)"`, e.filterDef(filters))
	}
	if blend != records.BlendNormal {
		blendAttr = fmt.Sprintf(` style="mix-blend-mode:%s"`, blendName(blend))
	}
	if name != "" {
		nameAttr = fmt.Sprintf(` data-name="%s"`, xmlEscape(name))
	}
	fmt.Fprintf(&e.body, `<use href="#%s" transform="matrix(%s,%s,%s,%s,%s,%s)"%s%s%s/>`,
		defID, fnum(m.ScaleX), fnum(m.ShearY), fnum(m.ShearX), fnum(m.ScaleY), fnum(m.TranslateX.ToPixels()), fnum(m.TranslateY.ToPixels()),
		filterAttr, blendAttr, nameAttr)
}

func (e *Emitter) defineDrawable(d character.Drawable, ratio *float64) string {
	key := fmt.Sprintf("draw:%d:%v", d.ID(), ratio)
	if id, ok := e.defKeys[key]; ok {
		return id
	}
	id := e.allocDefID("def")
	e.defKeys[key] = id

	switch v := d.(type) {
	case *character.ShapeDefinition:
		e.defs.WriteString(`<g id="` + id + `">`)
		e.inlineShape(&e.defs, v.Paths)
		e.defs.WriteString("</g>")
	case *character.MorphShapeDefinition:
		r := 0.0
		if ratio != nil {
			r = *ratio
		}
		paths, _, ok := v.CachedRatio(roundRatio4(r))
		e.defs.WriteString(`<g id="` + id + `">`)
		if ok {
			e.inlineShape(&e.defs, paths)
		}
		e.defs.WriteString("</g>")
	case *character.BitmapDefinition:
		mime := "image/png"
		if v.Encoding == "jpeg" {
			mime = "image/jpeg"
		}
		fmt.Fprintf(&e.defs, `<image id="%s" href="data:%s;base64,%s"/>`, id, mime, base64.StdEncoding.EncodeToString(v.Bytes))
	case *character.SpriteDefinition:
		t := v.Timeline()
		saved := e.body
		e.body = strings.Builder{}
		if t != nil && len(t.Frames) > 0 {
			frame := t.Frames[0]
			for _, obj := range frame.Objects {
				e.Include(obj.Drawable, obj.Matrix, obj.Ratio, obj.Filters, obj.Blend, "")
			}
		}
		children := e.body.String()
		e.body = saved
		e.defs.WriteString(`<g id="` + id + `">` + children + "</g>")
	}
	return id
}

// inlineShape writes compiled paths directly (no surrounding translate),
// reusing the same attribute logic as Shape/writePath but targeting an
// arbitrary builder (the defs buffer, when nesting inside a def's <g>).
func (e *Emitter) inlineShape(w *strings.Builder, paths []shape.CompiledPath) {
	saved := e.body
	e.body = strings.Builder{}
	for _, p := range paths {
		e.writePath(p)
	}
	w.WriteString(e.body.String())
	e.body = saved
}

// StartClip installs a <clipPath> in defs and opens a group referencing it.
func (e *Emitter) StartClip(d character.Drawable, m geom.Matrix, ratio *float64) string {
	id := e.allocDefID("clip")
	e.defs.WriteString(`<clipPath id="` + id + `">`)
	switch v := d.(type) {
	case *character.ShapeDefinition:
		e.inlineShape(&e.defs, v.Paths)
	case *character.MorphShapeDefinition:
		r := 0.0
		if ratio != nil {
			r = *ratio
		}
		if paths, _, ok := v.CachedRatio(roundRatio4(r)); ok {
			e.inlineShape(&e.defs, paths)
		}
	}
	e.defs.WriteString("</clipPath>")
	fmt.Fprintf(&e.body, `<g clip-path="url(#%s)" transform="matrix(%s,%s,%s,%s,%s,%s)">`,
		id, fnum(m.ScaleX), fnum(m.ShearY), fnum(m.ShearX), fnum(m.ScaleY), fnum(m.TranslateX.ToPixels()), fnum(m.TranslateY.ToPixels()))
	e.clipStack = append(e.clipStack, id)
	return id
}

// EndClip closes the group opened by StartClip.
func (e *Emitter) EndClip(id string) {
	if len(e.clipStack) > 0 && e.clipStack[len(e.clipStack)-1] == id {
		e.clipStack = e.clipStack[:len(e.clipStack)-1]
	}
	e.body.WriteString("</g>")
}

// Document renders the finished SVG: viewBox sized to bounds, defs, body.
func (e *Emitter) Document(bounds geom.Rect) string {
	var out strings.Builder
	fmt.Fprintf(&out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`,
		fnum(bounds.Width().ToPixels()), fnum(bounds.Height().ToPixels()))
	if e.defs.Len() > 0 {
		out.WriteString("<defs>")
		out.WriteString(e.defs.String())
		out.WriteString("</defs>")
	}
	out.WriteString(e.body.String())
	out.WriteString("</svg>")
	return out.String()
}

func (e *Emitter) allocDefID(prefix string) string {
	id := fmt.Sprintf("%s%d", prefix, e.nextDef)
	e.nextDef++
	return id
}

func roundRatio4(r float64) float64 {
	return float64(int(r*10000+0.5)) / 10000
}

func hexColor(c records.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func blendName(b records.BlendMode) string {
	switch b {
	case 2:
		return "multiply"
	case 3:
		return "lighten"
	case 4:
		return "darken"
	case 5:
		return "difference"
	case 6:
		return "screen"
	case 8:
		return "overlay"
	case 9:
		return "hard-light"
	case 12:
		return "soft-light"
	case 13:
		return "exclusion"
	default:
		return "normal"
	}
}

func xmlEscape(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func fnum(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
