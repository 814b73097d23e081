package generation

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"famcontents/internal/logging"
	"famcontents/internal/services"
)

const (
	// DefaultExcerptLimit caps each file excerpt, in runes.
	DefaultExcerptLimit = 3000
	// ExcerptTruncationMarker is appended to excerpts cut at the limit.
	ExcerptTruncationMarker = "\n…(以下省略)"

	maxReadBytes = 1 << 20
)

// Assembler normalizes caller input into a Context.
type Assembler struct {
	excerptLimit int
	logger       *slog.Logger
}

// NewAssembler constructs an assembler. A non-positive limit uses DefaultExcerptLimit.
func NewAssembler(excerptLimit int, logger *slog.Logger) *Assembler {
	if excerptLimit <= 0 {
		excerptLimit = DefaultExcerptLimit
	}
	return &Assembler{excerptLimit: excerptLimit, logger: logging.NewComponentLogger(logger, "assembler")}
}

// Assemble trims every field, drops empty entries, infers missing file
// categories, clamps the tone, and caps excerpts. It never fails; required
// field checks happen per task kind in the generator.
func (a *Assembler) Assemble(in Input) Context {
	c := Context{
		title:        collapseSpace(in.Title),
		summary:      strings.TrimSpace(in.Summary),
		direction:    strings.TrimSpace(in.Direction),
		tone:         ParseTone(in.Tone),
		instructions: strings.TrimSpace(in.Instructions),
		text:         strings.TrimSpace(in.Text),
	}
	for _, f := range in.Files {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		c.files = append(c.files, FileRef{Name: name, Category: ParseFileCategory(string(f.Category), name)})
	}
	for _, ex := range in.Excerpts {
		name := strings.TrimSpace(ex.Name)
		text := strings.TrimSpace(ex.Text)
		if name == "" || text == "" {
			continue
		}
		c.excerpts = append(c.excerpts, FileExcerpt{Name: name, Text: a.capExcerpt(text)})
	}
	return c
}

func (a *Assembler) capExcerpt(text string) string {
	if utf8.RuneCountInString(text) <= a.excerptLimit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRightFunc(string(runes[:a.excerptLimit]), isSpace) + ExcerptTruncationMarker
}

// ReadFile builds a reference descriptor for path and, for text-bearing
// formats, an excerpt. HTML is reduced to its visible text.
func (a *Assembler) ReadFile(path string) (FileRef, *FileExcerpt, error) {
	name := filepath.Base(path)
	ref := FileRef{Name: name, Category: ParseFileCategory("", name)}

	ext := strings.ToLower(filepath.Ext(name))
	var extract func(io.Reader) (string, error)
	switch ext {
	case ".html", ".htm":
		extract = htmlText
	case ".txt", ".md", ".markdown", ".csv":
		extract = plainText
	default:
		return ref, nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return FileRef{}, nil, services.Wrap(services.ErrValidation, "assembler", "read file", name, err)
	}
	defer file.Close()

	text, err := extract(io.LimitReader(file, maxReadBytes))
	if err != nil {
		return FileRef{}, nil, services.Wrap(services.ErrValidation, "assembler", "extract text", name, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.logger.Debug("reference file has no text", logging.String("file", name))
		return ref, nil, nil
	}
	return ref, &FileExcerpt{Name: name, Text: a.capExcerpt(text)}, nil
}

// ReadFiles applies ReadFile to each path in order.
func (a *Assembler) ReadFiles(paths []string) ([]FileRef, []FileExcerpt, error) {
	refs := make([]FileRef, 0, len(paths))
	var excerpts []FileExcerpt
	for _, path := range paths {
		ref, excerpt, err := a.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		refs = append(refs, ref)
		if excerpt != nil {
			excerpts = append(excerpts, *excerpt)
		}
	}
	a.logger.Info("reference files read",
		logging.Int("files", len(refs)),
		logging.Int("excerpts", len(excerpts)),
	)
	return refs, excerpts, nil
}

func plainText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid UTF-8 text")
	}
	return string(data), nil
}

func htmlText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var lines []string
	root.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, td").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		if line := collapseSpace(s.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return collapseSpace(root.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　'
}
