package atlas

// Manifest is the per-animation JSON document written alongside atlas.svg.
type Manifest struct {
	Version    int               `json:"version"`
	Animation  string            `json:"animation"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	OffsetX    float64           `json:"offset_x"`
	OffsetY    float64           `json:"offset_y"`
	Frames     []ManifestFrame   `json:"frames"`
	Playback   []string          `json:"playback"`
	Duplicates map[string]string `json:"duplicates"`
	FrameRate  float64           `json:"frame_rate,omitempty"`
}

// ManifestFrame is one unique frame's entry in the manifest's frame list.
type ManifestFrame struct {
	ID            string  `json:"id"`
	AtlasX        int     `json:"atlas_x"`
	AtlasY        int     `json:"atlas_y"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	ContentOffset float64 `json:"content_offset_x"`
	ContentOffsetY float64 `json:"content_offset_y"`
}

// BuildManifest assembles the manifest document from a packing result, the
// unique frames it packed, and playback order (by original frame name,
// including duplicates) of the whole animation.
func BuildManifest(animation string, frameRate float64, packed PackResult, unique []UniqueFrame, playbackOrder []string) Manifest {
	m := Manifest{
		Version:    1,
		Animation:  animation,
		Width:      packed.Width,
		Height:     packed.Height,
		Duplicates: map[string]string{},
		FrameRate:  frameRate,
	}

	byName := make(map[string]PackedFrame, len(packed.Frames))
	for _, p := range packed.Frames {
		byName[p.Name] = p
	}

	for _, u := range unique {
		p, ok := byName[u.Name]
		if !ok {
			continue
		}
		m.Frames = append(m.Frames, ManifestFrame{
			ID:             u.Name,
			AtlasX:         p.X,
			AtlasY:         p.Y,
			Width:          p.Width,
			Height:         p.Height,
			ContentOffset:  u.OffsetX,
			ContentOffsetY: u.OffsetY,
		})
		for _, alias := range u.Aliases {
			m.Duplicates[alias] = u.Name
		}
	}

	m.Playback = playbackOrder
	return m
}
