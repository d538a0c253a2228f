package records

import "github.com/agg-go/vecatlas/internal/bitio"

// ExportedAsset names a character made addressable by a symbolic name
// (e.g. the sprite an atlas build targets).
type ExportedAsset struct {
	CharacterID uint16
	Name        string
}

// ReadExportedAssets decodes an ExportAssets-style tag: a 16-bit count
// followed by that many (id, name) pairs.
func ReadExportedAssets(r *bitio.Reader) ([]ExportedAsset, error) {
	count, err := r.U16()
	if err != nil {
		return nil, err
	}
	out := make([]ExportedAsset, 0, count)
	for i := uint16(0); i < count; i++ {
		id, err := r.U16()
		if err != nil {
			return out, err
		}
		name, err := r.String()
		if err != nil {
			return out, err
		}
		out = append(out, ExportedAsset{CharacterID: id, Name: name})
	}
	return out, nil
}
