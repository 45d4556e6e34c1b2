package domain

import "strings"

// FeatureIDPrefix marks the canonical form of a channel feature id.
const FeatureIDPrefix = "wb-"

// FeatureID is a canonical channel feature identifier, always "wb-<raw>".
type FeatureID string

// NormalizeFeatureID maps an id from either source dataset onto the canonical
// key space. It accepts any string and is idempotent.
func NormalizeFeatureID(raw string) FeatureID {
	if strings.HasPrefix(raw, FeatureIDPrefix) {
		return FeatureID(raw)
	}
	return FeatureID(FeatureIDPrefix + raw)
}

// normalizeAll normalizes ids in order, dropping repeats of an id that is
// already present. The first occurrence keeps its position.
func normalizeAll(raw []string) []FeatureID {
	out := make([]FeatureID, 0, len(raw))
	seen := make(map[FeatureID]struct{}, len(raw))
	for _, r := range raw {
		id := NormalizeFeatureID(r)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
