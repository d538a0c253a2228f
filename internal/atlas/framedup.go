package atlas

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// UniqueFrame is one structurally distinct frame after frame-level dedup:
// its own rendering plus the names of every duplicate frame that shares its
// skeleton.
type UniqueFrame struct {
	RewrittenFrame
	Aliases []string // other frame names identical to this one, in playback order
}

// DedupFrames collapses frames whose use-list (canonical target id,
// transform, width, height, in order) is identical — a common case for
// animations that hold a pose across several ticks or loop a short cycle.
// The surviving frame keeps the name of whichever copy appeared first;
// later duplicates become aliases pointing at it, and the returned order
// preserves first-appearance order so frame indices stay stable for
// whatever ordering the caller already relied on.
func DedupFrames(frames []RewrittenFrame) []UniqueFrame {
	bySkeleton := map[string]int{} // skeleton hash -> index into unique
	var unique []UniqueFrame

	for _, f := range frames {
		h := frameSkeletonHash(f)
		if idx, ok := bySkeleton[h]; ok {
			unique[idx].Aliases = append(unique[idx].Aliases, f.Name)
			continue
		}
		bySkeleton[h] = len(unique)
		unique = append(unique, UniqueFrame{RewrittenFrame: f})
	}
	return unique
}

func frameSkeletonHash(f RewrittenFrame) string {
	h := sha256.New()
	fmt.Fprintf(h, "%g|%g|", f.ViewBoxW, f.ViewBoxH)
	for i, u := range f.Uses {
		id := ""
		if i < len(f.UseIDs) {
			id = f.UseIDs[i]
		}
		fmt.Fprintf(h, "%s|%s|%g|%g|%s;", id, u.Transform, u.Width, u.Height, u.Extra)
	}
	return hex.EncodeToString(h.Sum(nil))
}
