package generation

import (
	"encoding/json"
	"fmt"

	"famcontents/internal/services"
)

type fieldType int

const (
	fieldString fieldType = iota
	fieldArray
	fieldNumber
)

func (t fieldType) String() string {
	switch t {
	case fieldArray:
		return "array"
	case fieldNumber:
		return "number"
	default:
		return "string"
	}
}

type requiredField struct {
	path string
	typ  fieldType
}

type contextNeed int

const (
	needTitle contextNeed = iota
	needText
)

// taskDef binds one kind to everything the pipeline needs for it.
type taskDef struct {
	kind     Kind
	goal     string
	rules    []string
	schema   string
	required []requiredField
	needs    contextNeed
	newBody  func() Body
	fallback func(Context) Body
}

func (d *taskDef) validate(c Context) error {
	switch d.needs {
	case needText:
		if c.Text() == "" {
			return services.Wrap(services.ErrValidation, "generation", string(d.kind), "text is required", nil)
		}
	default:
		if c.Title() == "" {
			return services.Wrap(services.ErrValidation, "generation", string(d.kind), "title is required", nil)
		}
	}
	return nil
}

var registry = mustCoverAllKinds(map[Kind]*taskDef{
	KindX:                xTask,
	KindInstagramFeed:    instagramFeedTask,
	KindInstagramReels:   instagramReelsTask,
	KindNote:             noteTask,
	KindLine:             lineTask,
	KindAnalyzeMaterials: analyzeMaterialsTask,
	KindExtractKnowledge: extractKnowledgeTask,
	KindProofread:        proofreadTask,
	KindGeneric:          genericTask,
})

// mustCoverAllKinds panics unless defs holds exactly one complete definition
// per kind.
func mustCoverAllKinds(defs map[Kind]*taskDef) map[Kind]*taskDef {
	if len(defs) != len(allKinds) {
		panic(fmt.Sprintf("generation: %d task definitions for %d kinds", len(defs), len(allKinds)))
	}
	for _, k := range allKinds {
		d, ok := defs[k]
		switch {
		case !ok || d == nil:
			panic(fmt.Sprintf("generation: no task definition for %q", k))
		case d.kind != k:
			panic(fmt.Sprintf("generation: task definition for %q registered under %q", d.kind, k))
		case d.newBody == nil || d.fallback == nil || d.schema == "" || d.goal == "":
			panic(fmt.Sprintf("generation: incomplete task definition for %q", k))
		}
	}
	return defs
}

// lookup returns the definition for k. Unknown kinds resolve to generic.
func lookup(k Kind) *taskDef {
	if d, ok := registry[k]; ok {
		return d
	}
	return registry[KindGeneric]
}

// Resolve reports the kind that will actually run for k.
func Resolve(k Kind) Kind {
	return lookup(k).kind
}

// NewBody returns an empty body for k, for decoding stored results.
func NewBody(k Kind) Body {
	return lookup(k).newBody()
}

// DecodeBody decodes a stored body for k.
func DecodeBody(k Kind, raw []byte) (Body, error) {
	body := NewBody(k)
	if err := json.Unmarshal(raw, body); err != nil {
		return nil, fmt.Errorf("decode %s body: %w", Resolve(k), err)
	}
	return body, nil
}
