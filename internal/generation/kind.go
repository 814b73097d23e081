package generation

import "strings"

// Kind identifies a generation task: an output channel or a pipeline step.
type Kind string

const (
	KindX                Kind = "x"
	KindInstagramFeed    Kind = "instagram_feed"
	KindInstagramReels   Kind = "instagram_reels"
	KindNote             Kind = "note"
	KindLine             Kind = "line"
	KindAnalyzeMaterials Kind = "analyze_materials"
	KindExtractKnowledge Kind = "extract_knowledge"
	KindProofread        Kind = "proofread"
	KindGeneric          Kind = "generic"
)

var channelKinds = []Kind{KindX, KindInstagramFeed, KindInstagramReels, KindNote, KindLine}

var allKinds = []Kind{
	KindX, KindInstagramFeed, KindInstagramReels, KindNote, KindLine,
	KindAnalyzeMaterials, KindExtractKnowledge, KindProofread, KindGeneric,
}

// Channels returns the output channel kinds in display order.
func Channels() []Kind {
	out := make([]Kind, len(channelKinds))
	copy(out, channelKinds)
	return out
}

// Kinds returns every supported kind, including generic.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseKind normalizes s and reports whether it names a supported kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allKinds {
		if k == known {
			return k, true
		}
	}
	return k, false
}

// IsChannel reports whether k is an output channel (as opposed to a pipeline step).
func (k Kind) IsChannel() bool {
	for _, ch := range channelKinds {
		if k == ch {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }
