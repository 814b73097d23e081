package generation

import (
	"fmt"
	"regexp"
	"strings"
)

var analyzeMaterialsTask = &taskDef{
	kind: KindAnalyzeMaterials,
	goal: "素材を分析し、発信の方向性を提案する",
	rules: []string{
		"summary は400文字以内で素材の要点をまとめる",
		"key_points は最大5個",
		"audience には想定読者を100文字以内で書く",
		"direction には今後の投稿で軸にすべき方向性を400文字以内で書く",
		"recommended_channels は x, instagram_feed, instagram_reels, note, line から最大4つ",
	},
	schema: `{
  "summary": "素材の要約",
  "key_points": ["要点"],
  "audience": "想定読者",
  "direction": "発信の方向性",
  "recommended_channels": ["note", "x"]
}`,
	required: []requiredField{{"summary", fieldString}, {"recommended_channels", fieldArray}},
	newBody:  func() Body { return &AnalysisBody{} },
	fallback: fallbackAnalyzeMaterials,
}

var extractKnowledgeTask = &taskDef{
	kind: KindExtractKnowledge,
	goal: "素材から再利用できるナレッジを抽出する",
	rules: []string{
		"items は最大10件",
		"title は60文字以内、body は400文字以内",
		"category は tips, howto, other のいずれか",
		"tags は最大5個",
		"素材に書かれていない事実を作らない",
	},
	schema: `{
  "items": [
    {"title": "ナレッジの見出し", "body": "内容", "category": "tips", "tags": ["タグ"]}
  ]
}`,
	required: []requiredField{{"items", fieldArray}},
	newBody:  func() Body { return &KnowledgeBody{} },
	fallback: fallbackExtractKnowledge,
}

var proofreadTask = &taskDef{
	kind: KindProofread,
	goal: "本文を校正し、修正箇所と評価を返す",
	rules: []string{
		"corrected_text には校正後の全文を入れる。文意や構成は変えない",
		"changes には修正箇所を最大20件、before / after / reason で示す",
		"score は原文の品質を0〜100の整数で評価する",
		"誤字脱字、表記ゆれ、文法の誤りを優先して直す",
	},
	schema: `{
  "corrected_text": "校正後の本文",
  "changes": [{"before": "修正前", "after": "修正後", "reason": "理由"}],
  "score": 85
}`,
	required: []requiredField{{"corrected_text", fieldString}, {"score", fieldNumber}},
	needs:    needText,
	newBody:  func() Body { return &ProofreadBody{} },
	fallback: fallbackProofread,
}

var genericTask = &taskDef{
	kind: KindGeneric,
	goal: "入力情報をもとに汎用的な紹介文を作成する",
	rules: []string{
		"text は4000文字以内のプレーンテキスト",
	},
	schema: `{
  "text": "本文"
}`,
	required: []requiredField{{"text", fieldString}},
	newBody:  func() Body { return &GenericBody{} },
	fallback: fallbackGeneric,
}

func fallbackAnalyzeMaterials(c Context) Body {
	title := subjectTitle(c)
	counts := c.CategoryCounts()

	summary := title
	if s := c.Summary(); s != "" {
		summary += "：" + s
	}

	var points []string
	for _, cat := range []struct {
		category FileCategory
		label    string
	}{
		{FileImage, "画像"},
		{FileVideo, "動画"},
		{FileDocument, "資料"},
		{FileOther, "その他のファイル"},
	} {
		if n := counts[cat.category]; n > 0 {
			points = append(points, fmt.Sprintf("%sが%d件あります", cat.label, n))
		}
	}
	if len(points) == 0 {
		points = append(points, "参考素材はまだありません")
	}

	direction := c.Direction()
	if direction == "" {
		direction = title + "の魅力が伝わる具体的なエピソードを軸に発信します。"
	}

	channels := []string{string(KindX)}
	if counts[FileVideo] > 0 {
		channels = append(channels, string(KindInstagramReels))
	}
	if counts[FileImage] > 0 {
		channels = append(channels, string(KindInstagramFeed))
	}
	if counts[FileDocument] > 0 || len(c.Excerpts()) > 0 {
		channels = append(channels, string(KindNote))
	}
	if len(channels) < analysisMaxChannels {
		channels = append(channels, string(KindLine))
	}

	return &AnalysisBody{
		Summary:             summary,
		KeyPoints:           points,
		Audience:            "既存のフォロワーと新しく興味を持った人",
		Direction:           direction,
		RecommendedChannels: channels,
	}
}

func fallbackExtractKnowledge(c Context) Body {
	var items []KnowledgeItem
	for _, ex := range c.Excerpts() {
		items = append(items, KnowledgeItem{
			Title:    ex.Name,
			Body:     ex.Text,
			Category: "other",
			Tags:     titleTags(c),
		})
	}
	if len(items) == 0 {
		body := c.Summary()
		if body == "" {
			body = "詳細は素材を追加すると抽出できます。"
		}
		items = append(items, KnowledgeItem{
			Title:    subjectTitle(c),
			Body:     body,
			Category: "other",
			Tags:     titleTags(c),
		})
	}
	return &KnowledgeBody{Items: items}
}

var repeatedPunct = regexp.MustCompile(`(。。+|、、+|！！+|？？+)`)

// fallbackProofread applies only fixes it can justify locally: trailing
// whitespace, runs of blank lines, and doubled Japanese punctuation.
func fallbackProofread(c Context) Body {
	lines := strings.Split(c.Text(), "\n")
	var changes []Change
	blank := 0
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t　")
		if fixed := repeatedPunct.ReplaceAllStringFunc(trimmed, firstRune); fixed != trimmed {
			changes = append(changes, Change{Before: trimmed, After: fixed, Reason: "重複した句読点を修正"})
			trimmed = fixed
		}
		if trimmed == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, trimmed)
	}
	return &ProofreadBody{
		CorrectedText: strings.Join(out, "\n"),
		Changes:       changes,
		Score:         Number(clampInt(100-5*len(changes), 0, 100)),
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return s
}

func fallbackGeneric(c Context) Body {
	parts := []string{subjectTitle(c)}
	if s := c.Summary(); s != "" {
		parts = append(parts, s)
	}
	if d := c.Direction(); d != "" {
		parts = append(parts, d)
	}
	return &GenericBody{Text: strings.Join(parts, "\n\n")}
}

func titleTags(c Context) []string {
	if t := compactTag(c.Title()); t != "" {
		return []string{t}
	}
	return nil
}
