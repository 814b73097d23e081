package generation

import (
	"path/filepath"
	"strings"
)

// Tone is the requested voice for generated copy.
type Tone string

const (
	ToneNone         Tone = ""
	ToneCasual       Tone = "casual"
	ToneFriendly     Tone = "friendly"
	ToneFormal       Tone = "formal"
	ToneProfessional Tone = "professional"
)

var toneLabels = map[Tone]string{
	ToneCasual:       "カジュアル",
	ToneFriendly:     "親しみやすい",
	ToneFormal:       "丁寧・フォーマル",
	ToneProfessional: "専門的",
}

// ParseTone returns the tone named by s, or ToneNone when s is not a known tone.
func ParseTone(s string) Tone {
	t := Tone(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := toneLabels[t]; ok {
		return t
	}
	return ToneNone
}

// FileCategory classifies a reference file.
type FileCategory string

const (
	FileImage    FileCategory = "image"
	FileVideo    FileCategory = "video"
	FileDocument FileCategory = "document"
	FileOther    FileCategory = "other"
)

var fileCategories = []FileCategory{FileImage, FileVideo, FileDocument, FileOther}

var extensionCategories = map[string]FileCategory{
	".png": FileImage, ".jpg": FileImage, ".jpeg": FileImage, ".gif": FileImage,
	".webp": FileImage, ".heic": FileImage, ".svg": FileImage,
	".mp4": FileVideo, ".mov": FileVideo, ".webm": FileVideo, ".avi": FileVideo,
	".mkv": FileVideo, ".m4v": FileVideo,
	".pdf": FileDocument, ".doc": FileDocument, ".docx": FileDocument, ".txt": FileDocument,
	".md": FileDocument, ".markdown": FileDocument, ".html": FileDocument, ".htm": FileDocument,
	".ppt": FileDocument, ".pptx": FileDocument, ".xls": FileDocument, ".xlsx": FileDocument,
	".csv": FileDocument,
}

// ParseFileCategory normalizes s, falling back to the extension of name and
// then to FileOther.
func ParseFileCategory(s, name string) FileCategory {
	c := FileCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range fileCategories {
		if c == known {
			return c
		}
	}
	if cat, ok := extensionCategories[strings.ToLower(filepath.Ext(name))]; ok {
		return cat
	}
	return FileOther
}

// FileRef describes a reference file by name and category.
type FileRef struct {
	Name     string       `json:"name" yaml:"name"`
	Category FileCategory `json:"category" yaml:"category"`
}

// FileExcerpt carries extracted text from a reference file.
type FileExcerpt struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// Input is the raw, caller-supplied material for one generation request.
type Input struct {
	Title        string        `json:"title" yaml:"title"`
	Summary      string        `json:"summary" yaml:"summary"`
	Files        []FileRef     `json:"files,omitempty" yaml:"files"`
	Excerpts     []FileExcerpt `json:"excerpts,omitempty" yaml:"excerpts"`
	Direction    string        `json:"direction,omitempty" yaml:"direction"`
	Tone         string        `json:"tone,omitempty" yaml:"tone"`
	Instructions string        `json:"instructions,omitempty" yaml:"instructions"`
	// Text is the body under review for the proofread task.
	Text string `json:"text,omitempty" yaml:"text"`
}

// Context is the normalized, immutable input to the prompt compiler and the
// fallback generators. Build one with an Assembler.
type Context struct {
	title        string
	summary      string
	files        []FileRef
	excerpts     []FileExcerpt
	direction    string
	tone         Tone
	instructions string
	text         string
}

func (c Context) Title() string        { return c.title }
func (c Context) Summary() string      { return c.summary }
func (c Context) Direction() string    { return c.direction }
func (c Context) Tone() Tone           { return c.tone }
func (c Context) Instructions() string { return c.instructions }
func (c Context) Text() string         { return c.text }

// Files returns a copy of the reference file descriptors.
func (c Context) Files() []FileRef {
	if len(c.files) == 0 {
		return nil
	}
	out := make([]FileRef, len(c.files))
	copy(out, c.files)
	return out
}

// Excerpts returns a copy of the reference file excerpts.
func (c Context) Excerpts() []FileExcerpt {
	if len(c.excerpts) == 0 {
		return nil
	}
	out := make([]FileExcerpt, len(c.excerpts))
	copy(out, c.excerpts)
	return out
}

// CategoryCounts tallies reference files per category.
func (c Context) CategoryCounts() map[FileCategory]int {
	counts := make(map[FileCategory]int, len(fileCategories))
	for _, f := range c.files {
		counts[f.Category]++
	}
	return counts
}

// Empty reports whether no field carries any content.
func (c Context) Empty() bool {
	return c.title == "" && c.summary == "" && len(c.files) == 0 && len(c.excerpts) == 0 &&
		c.direction == "" && c.tone == ToneNone && c.instructions == "" && c.text == ""
}
