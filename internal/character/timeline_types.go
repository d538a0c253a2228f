package character

import (
	"github.com/agg-go/vecatlas/internal/geom"
	"github.com/agg-go/vecatlas/internal/records"
)

// FrameObject is one placed instance on a display list.
type FrameObject struct {
	CharacterID uint16
	Depth       uint16
	Drawable    Drawable
	Bounds      geom.Rect
	Matrix      geom.Matrix
	ColorTransform *records.ColorTransform
	Name        *string
	ClipDepth   *uint16
	Ratio       *float64
	Filters     []records.Filter
	Blend       records.BlendMode
	StartFrame  int

	// InheritedColorTransforms accumulates the chain of ColorTransforms
	// applied by enclosing sprites, outermost first; each is applied (and
	// clamped) independently at draw time rather than composed ahead of
	// time.
	InheritedColorTransforms []records.ColorTransform
}

// Frame is one snapshotted, depth-sorted display-list state.
type Frame struct {
	Index   int
	Label   string
	Bounds  geom.Rect
	Objects []FrameObject
	Actions [][]byte
}

// Timeline is the ordered sequence of frames produced by the compositor,
// plus an aggregate, extent-capped bounds.
type Timeline struct {
	Bounds geom.Rect
	Frames []Frame
}
