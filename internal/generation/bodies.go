package generation

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	xMaxPosts       = 4
	xPostRunes      = 140
	xMaxHashtags    = 3
	feedCaptionRune = 2200
	feedMaxSlides   = 10
	feedHeadingRune = 30
	feedSlideRunes  = 200
	igMaxHashtags   = 15
	reelsHookRunes  = 40
	reelsMaxScenes  = 8
	reelsSceneRunes = 200
	reelsVisualRune = 100
	noteTitleRunes  = 60
	noteLeadRunes   = 200
	noteBodyRunes   = 12000
	noteMaxTags     = 5
	lineMsgRunes    = 500
	lineCTARunes    = 20

	analysisSummaryRunes   = 400
	analysisMaxKeyPoints   = 5
	analysisKeyPointRunes  = 120
	analysisAudienceRunes  = 100
	analysisDirectionRunes = 400
	analysisMaxChannels    = 4

	knowledgeMaxItems   = 10
	knowledgeTitleRunes = 60
	knowledgeBodyRunes  = 400
	knowledgeMaxTags    = 5

	proofreadTextRunes   = 12000
	proofreadMaxChanges  = 20
	proofreadChangeRunes = 200

	genericTextRunes = 4000

	hashtagRunes = 30
	tagRunes     = 20

	sceneMinSeconds = 1
	sceneMaxSeconds = 60
)

var (
	xCategories         = []string{"tips", "howto", "news", "other"}
	feedCategories      = []string{"tips", "howto", "other"}
	noteCategories      = []string{"tips", "howto", "story", "other"}
	knowledgeCategories = []string{"tips", "howto", "other"}
)

const defaultCategory = "other"

// Body is a kind-specific result object. Every key is always present after
// normalization, with empty arrays rather than null.
type Body interface {
	normalize()
}

// Number decodes from a JSON number or numeric string and rounds to an int.
type Number int

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*n = Number(math.Round(f))
	return nil
}

// XBody is the x channel output.
type XBody struct {
	Posts    []string `json:"posts"`
	Hashtags []string `json:"hashtags"`
	Category string   `json:"category"`
}

func (b *XBody) normalize() {
	b.Posts = capPlain(b.Posts, xMaxPosts, xPostRunes)
	b.Hashtags = normalizeHashtags(b.Hashtags, xMaxHashtags)
	b.Category = clampEnum(b.Category, xCategories, defaultCategory)
}

// Slide is one carousel page of an Instagram feed post.
type Slide struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// InstagramFeedBody is the instagram_feed channel output.
type InstagramFeedBody struct {
	Caption  string   `json:"caption"`
	Slides   []Slide  `json:"slides"`
	Hashtags []string `json:"hashtags"`
	Category string   `json:"category"`
}

func (b *InstagramFeedBody) normalize() {
	b.Caption = plain(b.Caption, feedCaptionRune)
	slides := make([]Slide, 0, min(len(b.Slides), feedMaxSlides))
	for _, s := range b.Slides {
		if len(slides) >= feedMaxSlides {
			break
		}
		s.Heading = plain(s.Heading, feedHeadingRune)
		s.Body = plain(s.Body, feedSlideRunes)
		if s.Heading == "" && s.Body == "" {
			continue
		}
		slides = append(slides, s)
	}
	b.Slides = slides
	b.Hashtags = normalizeHashtags(b.Hashtags, igMaxHashtags)
	b.Category = clampEnum(b.Category, feedCategories, defaultCategory)
}

// Scene is one shot of a reels script.
type Scene struct {
	Seconds   Number `json:"seconds"`
	Visual    string `json:"visual"`
	Narration string `json:"narration"`
}

// InstagramReelsBody is the instagram_reels channel output.
type InstagramReelsBody struct {
	Hook     string   `json:"hook"`
	Scenes   []Scene  `json:"scenes"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

func (b *InstagramReelsBody) normalize() {
	b.Hook = plain(b.Hook, reelsHookRunes)
	scenes := make([]Scene, 0, min(len(b.Scenes), reelsMaxScenes))
	for _, s := range b.Scenes {
		if len(scenes) >= reelsMaxScenes {
			break
		}
		s.Seconds = Number(clampInt(int(s.Seconds), sceneMinSeconds, sceneMaxSeconds))
		s.Visual = plain(s.Visual, reelsVisualRune)
		s.Narration = plain(s.Narration, reelsSceneRunes)
		if s.Visual == "" && s.Narration == "" {
			continue
		}
		scenes = append(scenes, s)
	}
	b.Scenes = scenes
	b.Caption = plain(b.Caption, feedCaptionRune)
	b.Hashtags = normalizeHashtags(b.Hashtags, igMaxHashtags)
}

// NoteBody is the note channel output. BodyMarkdown keeps its markup.
type NoteBody struct {
	Title        string   `json:"title"`
	Lead         string   `json:"lead"`
	BodyMarkdown string   `json:"body_markdown"`
	Tags         []string `json:"tags"`
	Category     string   `json:"category"`
}

func (b *NoteBody) normalize() {
	b.Title = plain(b.Title, noteTitleRunes)
	b.Lead = plain(b.Lead, noteLeadRunes)
	b.BodyMarkdown = rich(b.BodyMarkdown, noteBodyRunes)
	b.Tags = normalizeTags(b.Tags, noteMaxTags)
	b.Category = clampEnum(b.Category, noteCategories, defaultCategory)
}

// LineBody is the line channel output.
type LineBody struct {
	Message string `json:"message"`
	CTA     string `json:"cta"`
}

func (b *LineBody) normalize() {
	b.Message = plain(b.Message, lineMsgRunes)
	b.CTA = plain(b.CTA, lineCTARunes)
}

// AnalysisBody is the analyze_materials output.
type AnalysisBody struct {
	Summary             string   `json:"summary"`
	KeyPoints           []string `json:"key_points"`
	Audience            string   `json:"audience"`
	Direction           string   `json:"direction"`
	RecommendedChannels []string `json:"recommended_channels"`
}

func (b *AnalysisBody) normalize() {
	b.Summary = plain(b.Summary, analysisSummaryRunes)
	b.KeyPoints = capPlain(b.KeyPoints, analysisMaxKeyPoints, analysisKeyPointRunes)
	b.Audience = plain(b.Audience, analysisAudienceRunes)
	b.Direction = plain(b.Direction, analysisDirectionRunes)
	channels := make([]string, 0, analysisMaxChannels)
	seen := make(map[Kind]struct{}, len(b.RecommendedChannels))
	for _, raw := range b.RecommendedChannels {
		if len(channels) >= analysisMaxChannels {
			break
		}
		k, ok := ParseKind(raw)
		if !ok || !k.IsChannel() {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		channels = append(channels, string(k))
	}
	b.RecommendedChannels = channels
}

// KnowledgeItem is one reusable fact extracted from materials.
type KnowledgeItem struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// KnowledgeBody is the extract_knowledge output.
type KnowledgeBody struct {
	Items []KnowledgeItem `json:"items"`
}

func (b *KnowledgeBody) normalize() {
	items := make([]KnowledgeItem, 0, min(len(b.Items), knowledgeMaxItems))
	for _, it := range b.Items {
		if len(items) >= knowledgeMaxItems {
			break
		}
		it.Title = plain(it.Title, knowledgeTitleRunes)
		it.Body = plain(it.Body, knowledgeBodyRunes)
		if it.Title == "" && it.Body == "" {
			continue
		}
		it.Category = clampEnum(it.Category, knowledgeCategories, defaultCategory)
		it.Tags = normalizeTags(it.Tags, knowledgeMaxTags)
		items = append(items, it)
	}
	b.Items = items
}

// Change is one edit reported by the proofread task.
type Change struct {
	Before string `json:"before"`
	After  string `json:"after"`
	Reason string `json:"reason"`
}

// ProofreadBody is the proofread output.
type ProofreadBody struct {
	CorrectedText string   `json:"corrected_text"`
	Changes       []Change `json:"changes"`
	Score         Number   `json:"score"`
}

func (b *ProofreadBody) normalize() {
	// Corrected text and excerpts are the author's own text; markup stays.
	b.CorrectedText = rich(b.CorrectedText, proofreadTextRunes)
	changes := make([]Change, 0, min(len(b.Changes), proofreadMaxChanges))
	for _, c := range b.Changes {
		if len(changes) >= proofreadMaxChanges {
			break
		}
		c.Before = rich(c.Before, proofreadChangeRunes)
		c.After = rich(c.After, proofreadChangeRunes)
		c.Reason = plain(c.Reason, proofreadChangeRunes)
		if c.Before == "" && c.After == "" {
			continue
		}
		changes = append(changes, c)
	}
	b.Changes = changes
	b.Score = Number(clampInt(int(b.Score), 0, 100))
}

// GenericBody is the fail-closed output for unknown kinds.
type GenericBody struct {
	Text string `json:"text"`
}

func (b *GenericBody) normalize() {
	b.Text = plain(b.Text, genericTextRunes)
}
