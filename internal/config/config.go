// Package config holds the tunable constants shared by the container decoder
// and the atlas builder: a plain struct plus package-level getter/setter
// rather than a config-file library, since the whole surface is a handful
// of numeric knobs, not worth a dependency.
package config

// Config is the process-wide set of tunables. Most callers use Default();
// tests and the CLI construct their own values and pass them explicitly
// through the decoder/builder constructors instead of mutating the package
// global, which exists only for callers that want an ambient default.
type Config struct {
	// MaxBoundsExtent is the maximum axis extent (in twips) a single placed
	// object, or the running timeline aggregate, may contribute before
	// being excluded from bounds aggregation.
	MaxBoundsExtent int

	// StrictHeaders, when true, reads the container's fixed 8-byte header and
	// inflates its body with all BitReader error flags enabled, so a bad
	// signature or a failed inflate fails Decode; tag headers and records
	// still use DefaultErrorFlags.
	StrictHeaders bool

	// DefaultErrorFlags seeds new BitReaders created for optional sections.
	DefaultErrorFlags uint8

	// AtlasPadding is the minimum pixel gap MaxRects leaves between two
	// packed rectangles.
	AtlasPadding int

	// AtlasStripWidthCap bounds the candidate strip widths the packer will
	// try; 0 means unbounded.
	AtlasStripWidthCap int

	// ShortIDs switches the atlas builder's canonical identifiers from
	// content-hash strings (def_<hash>) to compact sequential ids (d0, d1, ...).
	ShortIDs bool
}

// MaxBoundsExtentDefault is 8192px expressed in twips (1 twip = 1/20 px).
const MaxBoundsExtentDefault = 8192 * 20

// Default returns the configuration used when a caller does not supply one.
func Default() Config {
	return Config{
		MaxBoundsExtent:    MaxBoundsExtentDefault,
		StrictHeaders:      false,
		DefaultErrorFlags:  0,
		AtlasPadding:       1,
		AtlasStripWidthCap: 0,
		ShortIDs:           false,
	}
}

var global = Default()

// Set replaces the package-level ambient configuration.
func Set(cfg Config) { global = cfg }

// Get returns the package-level ambient configuration.
func Get() Config { return global }
