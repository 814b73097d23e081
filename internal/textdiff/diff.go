package textdiff

import "strings"

// Kind marks whether a segment exists in the original text.
type Kind string

const (
	KindKept  Kind = "kept"
	KindAdded Kind = "added"
)

// Segment is a maximal run of modified text with one kind.
type Segment struct {
	Text string `json:"text"`
	Kind Kind   `json:"kind"`
}

// DefaultMaxTableCells bounds the alignment table when no limit is configured.
const DefaultMaxTableCells = 4_000_000

// Engine aligns texts. The zero value uses DefaultMaxTableCells.
type Engine struct {
	maxCells int
}

// New returns an engine whose alignment table never exceeds maxCells entries.
// Larger inputs are aligned by common prefix and suffix only.
func New(maxCells int) *Engine {
	return &Engine{maxCells: maxCells}
}

// Diff runs the default engine.
func Diff(original, modified string) []Segment {
	return (&Engine{}).Diff(original, modified)
}

// Diff returns the segments of modified. The result is empty only when
// modified is empty.
func (e *Engine) Diff(original, modified string) []Segment {
	b := Split(modified)
	if len(b) == 0 {
		return []Segment{}
	}
	a := Split(original)
	if len(a) == 0 {
		return []Segment{{Text: modified, Kind: KindAdded}}
	}

	var kinds []Kind
	if e.fits(len(a), len(b)) {
		kinds = alignLCS(keys(a), keys(b))
	} else {
		kinds = alignEnds(keys(a), keys(b))
	}
	return coalesce(b, kinds)
}

// Bounded reports whether inputs of these sizes would skip the full alignment.
func (e *Engine) Bounded(original, modified string) bool {
	return !e.fits(len(Split(original)), len(Split(modified)))
}

func (e *Engine) fits(n, m int) bool {
	limit := e.maxCells
	if limit <= 0 {
		limit = DefaultMaxTableCells
	}
	return n == 0 || m <= limit/n
}

func keys(units []string) []string {
	out := make([]string, len(units))
	for i, u := range units {
		if u == "\n" {
			out[i] = u
			continue
		}
		out[i] = strings.TrimSpace(u)
	}
	return out
}

// alignLCS marks each unit of b as kept or added using a suffix LCS table
// walked with two cursors.
func alignLCS(a, b []string) []Kind {
	n, m := len(a), len(b)
	cols := m + 1
	table := make([]int32, (n+1)*cols)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				table[i*cols+j] = table[(i+1)*cols+j+1] + 1
			case table[(i+1)*cols+j] >= table[i*cols+j+1]:
				table[i*cols+j] = table[(i+1)*cols+j]
			default:
				table[i*cols+j] = table[i*cols+j+1]
			}
		}
	}

	kinds := make([]Kind, m)
	i, j := 0, 0
	for j < m {
		switch {
		case i < n && a[i] == b[j]:
			kinds[j] = KindKept
			i++
			j++
		case i < n && table[(i+1)*cols+j] >= table[i*cols+j+1]:
			i++
		default:
			kinds[j] = KindAdded
			j++
		}
	}
	return kinds
}

// alignEnds keeps the common prefix and suffix and marks the middle of b as
// added.
func alignEnds(a, b []string) []Kind {
	kinds := make([]Kind, len(b))
	for i := range kinds {
		kinds[i] = KindAdded
	}
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		kinds[prefix] = KindKept
		prefix++
	}
	for ia, ib := len(a)-1, len(b)-1; ia >= prefix && ib >= prefix && a[ia] == b[ib]; ia, ib = ia-1, ib-1 {
		kinds[ib] = KindKept
	}
	return kinds
}

func coalesce(units []string, kinds []Kind) []Segment {
	segments := make([]Segment, 0, len(units))
	var buf strings.Builder
	current := kinds[0]
	for i, u := range units {
		if kinds[i] != current {
			segments = append(segments, Segment{Text: buf.String(), Kind: current})
			buf.Reset()
			current = kinds[i]
		}
		buf.WriteString(u)
	}
	return append(segments, Segment{Text: buf.String(), Kind: current})
}
