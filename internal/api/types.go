package api

import (
	"encoding/json"

	"famcontents/internal/textdiff"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Status reports backend availability and the supported task kinds.
type Status struct {
	Backend      string   `json:"backend"`
	Configured   bool     `json:"configured"`
	Model        string   `json:"model"`
	Channels     []string `json:"channels"`
	Kinds        []string `json:"kinds"`
	DatabasePath string   `json:"databasePath"`
	Running      bool     `json:"running"`
	PID          int      `json:"pid,omitempty"`
	LockFilePath string   `json:"lockFilePath,omitempty"`
}

// FileRef names a reference file and its category.
type FileRef struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category,omitempty" yaml:"category"`
}

// FileExcerpt carries extracted text for a reference file.
type FileExcerpt struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// GenerateRequest is the raw material for a one-shot generation.
type GenerateRequest struct {
	Title        string        `json:"title"`
	Summary      string        `json:"summary"`
	Files        []FileRef     `json:"files,omitempty"`
	Excerpts     []FileExcerpt `json:"excerpts,omitempty"`
	Direction    string        `json:"direction,omitempty"`
	Tone         string        `json:"tone,omitempty"`
	Instructions string        `json:"instructions,omitempty"`
	Text         string        `json:"text,omitempty"`
}

// GenerateResponse is a normalized body plus provenance.
type GenerateResponse struct {
	Kind          string          `json:"kind"`
	Body          json.RawMessage `json:"body"`
	Source        string          `json:"source"`
	FailureReason string          `json:"failureReason,omitempty"`
}

// ContentRequest creates or replaces a content item.
type ContentRequest struct {
	ID           string        `json:"id,omitempty" yaml:"id"`
	Title        string        `json:"title" yaml:"title"`
	Summary      string        `json:"summary" yaml:"summary"`
	Channels     []string      `json:"channels" yaml:"channels"`
	Files        []FileRef     `json:"files,omitempty" yaml:"files"`
	Excerpts     []FileExcerpt `json:"excerpts,omitempty" yaml:"excerpts"`
	Direction    string        `json:"direction,omitempty" yaml:"direction"`
	Tone         string        `json:"tone,omitempty" yaml:"tone"`
	Instructions string        `json:"instructions,omitempty" yaml:"instructions"`
}

// ContentView describes a stored content item.
type ContentView struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	Channels      []string       `json:"channels"`
	Files         []FileRef      `json:"files"`
	Excerpts      []FileExcerpt  `json:"excerpts"`
	Direction     string         `json:"direction,omitempty"`
	Tone          string         `json:"tone,omitempty"`
	Instructions  string         `json:"instructions,omitempty"`
	CreatedAt     string         `json:"createdAt,omitempty"`
	UpdatedAt     string         `json:"updatedAt,omitempty"`
	VariantCounts map[string]int `json:"variantCounts,omitempty"`
}

// ContentListResponse wraps a collection of content items.
type ContentListResponse struct {
	Items []ContentView `json:"items"`
}

// VariantView describes a stored channel variant.
type VariantView struct {
	ID            string          `json:"id"`
	ContentID     string          `json:"contentId"`
	Channel       string          `json:"channel"`
	Status        string          `json:"status"`
	Source        string          `json:"source"`
	FailureReason string          `json:"failureReason,omitempty"`
	Body          json.RawMessage `json:"body"`
	Archived      bool            `json:"archived"`
	Trashed       bool            `json:"trashed"`
	ArchivedAt    string          `json:"archivedAt,omitempty"`
	TrashedAt     string          `json:"trashedAt,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// VariantListResponse wraps a collection of variants.
type VariantListResponse struct {
	Items []VariantView `json:"items"`
}

// VariantQuery filters variant listings.
type VariantQuery struct {
	ContentID      string
	Channel        string
	Statuses       []string
	IncludeTrashed bool
	Limit          int
}

// BatchResponse lists the variants produced for every target channel.
type BatchResponse struct {
	ContentID string        `json:"contentId"`
	Variants  []VariantView `json:"variants"`
}

// TransitionRequest applies a review action to a variant.
type TransitionRequest struct {
	Action string `json:"action"`
}

// TaskParams are resolved model parameters.
type TaskParams struct {
	Model           string  `json:"model"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// TaskConfigRequest stores per-kind overrides. Empty fields inherit.
type TaskConfigRequest struct {
	Model           string   `json:"model,omitempty" yaml:"model"`
	Temperature     *float64 `json:"temperature,omitempty" yaml:"temperature"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty" yaml:"max_output_tokens"`
}

// TaskConfigView shows the stored override and the effective parameters.
type TaskConfigView struct {
	Kind            string     `json:"kind"`
	Stored          bool       `json:"stored"`
	Model           string     `json:"model,omitempty"`
	Temperature     *float64   `json:"temperature,omitempty"`
	MaxOutputTokens int        `json:"maxOutputTokens,omitempty"`
	UpdatedAt       string     `json:"updatedAt,omitempty"`
	Effective       TaskParams `json:"effective"`
}

// TaskConfigListResponse wraps every task kind's configuration.
type TaskConfigListResponse struct {
	Items []TaskConfigView `json:"items"`
}

// DiffRequest compares two texts.
type DiffRequest struct {
	Original string `json:"original"`
	Modified string `json:"modified"`
}

// DiffResponse carries highlight segments and their HTML rendering.
type DiffResponse struct {
	Segments []textdiff.Segment `json:"segments"`
	HTML     string             `json:"html"`
	Exact    bool               `json:"exact"`
}

// ProofreadResponse is a proofread result plus the highlight of the
// corrected text against the input.
type ProofreadResponse struct {
	Result GenerateResponse `json:"result"`
	Diff   DiffResponse     `json:"diff"`
}

// PreviewResponse is a rendered variant body.
type PreviewResponse struct {
	VariantID string `json:"variantId"`
	Channel   string `json:"channel"`
	Markdown  string `json:"markdown"`
	HTML      string `json:"html"`
}

// PurgeResponse reports how many trashed variants were removed.
type PurgeResponse struct {
	Removed int64 `json:"removed"`
}

// SeedResponse summarizes a fixture import.
type SeedResponse struct {
	Contents    []ContentView    `json:"contents"`
	TaskConfigs []TaskConfigView `json:"taskConfigs"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
