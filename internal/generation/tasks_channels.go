package generation

import (
	"fmt"
	"strings"
)

var xTask = &taskDef{
	kind: KindX,
	goal: "X（旧Twitter）向けの投稿文を作成する",
	rules: []string{
		"posts は最大4件。1件あたり140文字以内",
		"1件目だけで内容が伝わるようにし、2件目以降は補足にする",
		"hashtags は最大3個。# から始めて空白を含めない",
		"category は tips, howto, news, other のいずれか",
	},
	schema: `{
  "posts": ["1件目の投稿文", "2件目の投稿文"],
  "hashtags": ["#タグ"],
  "category": "tips"
}`,
	required: []requiredField{{"posts", fieldArray}},
	newBody:  func() Body { return &XBody{} },
	fallback: fallbackX,
}

var instagramFeedTask = &taskDef{
	kind: KindInstagramFeed,
	goal: "Instagramのフィード投稿（カルーセル）を作成する",
	rules: []string{
		"caption は2200文字以内",
		"slides は最大10枚。heading は30文字以内、body は200文字以内",
		"1枚目のスライドで読み進めたくなる見出しにする",
		"hashtags は最大15個",
		"category は tips, howto, other のいずれか",
	},
	schema: `{
  "caption": "キャプション本文",
  "slides": [{"heading": "見出し", "body": "スライド本文"}],
  "hashtags": ["#タグ"],
  "category": "howto"
}`,
	required: []requiredField{{"caption", fieldString}, {"slides", fieldArray}},
	newBody:  func() Body { return &InstagramFeedBody{} },
	fallback: fallbackInstagramFeed,
}

var instagramReelsTask = &taskDef{
	kind: KindInstagramReels,
	goal: "Instagramリール（縦型ショート動画）の台本を作成する",
	rules: []string{
		"hook は冒頭2秒で読める40文字以内の一文",
		"scenes は最大8つ。seconds は1〜60の整数",
		"visual には映像の指示、narration には読み上げ文を書く",
		"caption は2200文字以内、hashtags は最大15個",
	},
	schema: `{
  "hook": "冒頭のひとこと",
  "scenes": [{"seconds": 3, "visual": "映像の指示", "narration": "ナレーション"}],
  "caption": "キャプション本文",
  "hashtags": ["#タグ"]
}`,
	required: []requiredField{{"hook", fieldString}, {"scenes", fieldArray}},
	newBody:  func() Body { return &InstagramReelsBody{} },
	fallback: fallbackInstagramReels,
}

var noteTask = &taskDef{
	kind: KindNote,
	goal: "noteに掲載する記事を作成する",
	rules: []string{
		"title は60文字以内、lead は200文字以内のプレーンテキスト",
		"body_markdown はMarkdownで書き、見出しは ## から始める",
		"body_markdown は12000文字以内",
		"tags は最大5個。# は付けない",
		"category は tips, howto, story, other のいずれか",
	},
	schema: `{
  "title": "記事タイトル",
  "lead": "リード文",
  "body_markdown": "## 見出し\n\n本文",
  "tags": ["タグ"],
  "category": "story"
}`,
	required: []requiredField{{"title", fieldString}, {"body_markdown", fieldString}},
	newBody:  func() Body { return &NoteBody{} },
	fallback: fallbackNote,
}

var lineTask = &taskDef{
	kind: KindLine,
	goal: "LINE公式アカウントの配信メッセージを作成する",
	rules: []string{
		"message は500文字以内。スマートフォンで読みやすいよう短い段落にする",
		"cta はボタンに表示する20文字以内の文言",
	},
	schema: `{
  "message": "配信メッセージ",
  "cta": "詳しく見る"
}`,
	required: []requiredField{{"message", fieldString}},
	newBody:  func() Body { return &LineBody{} },
	fallback: fallbackLine,
}

func fallbackX(c Context) Body {
	title := subjectTitle(c)
	counts := c.CategoryCounts()
	posts := []string{title + "について、ポイントをまとめました。"}
	if s := c.Summary(); s != "" {
		posts[0] = title + "：" + s
	}
	switch {
	case counts[FileVideo] > 0:
		posts = append(posts, "動画でわかりやすく解説しています。")
	case counts[FileImage] > 0:
		posts = append(posts, fmt.Sprintf("写真%d枚で様子をご紹介します。", counts[FileImage]))
	}
	posts = append(posts, "詳しくはプロフィールのリンクからどうぞ。")
	return &XBody{
		Posts:    posts,
		Hashtags: titleHashtags(c),
		Category: fallbackCategory(counts),
	}
}

func fallbackInstagramFeed(c Context) Body {
	title := subjectTitle(c)
	counts := c.CategoryCounts()
	lead := c.Summary()
	if lead == "" {
		lead = title + "のポイントをまとめました。"
	}
	slides := []Slide{{Heading: title, Body: lead}}
	if n := counts[FileImage]; n > 0 {
		slides = append(slides, Slide{Heading: "写真で見る", Body: fmt.Sprintf("%d枚の写真で紹介します。", n)})
	}
	if n := counts[FileVideo]; n > 0 {
		slides = append(slides, Slide{Heading: "動画もチェック", Body: fmt.Sprintf("%d本の動画で詳しく解説しています。", n)})
	}
	if n := counts[FileDocument]; n > 0 {
		slides = append(slides, Slide{Heading: "資料から", Body: fmt.Sprintf("%d件の資料をもとにまとめました。", n)})
	}
	slides = append(slides, Slide{Heading: "まとめ", Body: "保存してあとから見返してください。"})

	return &InstagramFeedBody{
		Caption:  title + "\n\n" + lead,
		Slides:   slides,
		Hashtags: titleHashtags(c),
		Category: fallbackCategory(counts),
	}
}

func fallbackInstagramReels(c Context) Body {
	title := subjectTitle(c)
	counts := c.CategoryCounts()
	hook := title + "を30秒で"
	visual := "テキストアニメーション"
	switch {
	case counts[FileVideo] > 0:
		visual = "素材動画のハイライト"
	case counts[FileImage] > 0:
		visual = "写真のスライドショー"
	}
	narration := c.Summary()
	if narration == "" {
		narration = title + "のポイントを紹介します。"
	}
	return &InstagramReelsBody{
		Hook: hook,
		Scenes: []Scene{
			{Seconds: 3, Visual: "タイトルテロップ", Narration: hook},
			{Seconds: 20, Visual: visual, Narration: narration},
			{Seconds: 5, Visual: "締めのカット", Narration: "詳しくはキャプションをチェック"},
		},
		Caption:  title + "\n\n" + narration,
		Hashtags: titleHashtags(c),
	}
}

func fallbackNote(c Context) Body {
	title := subjectTitle(c)
	counts := c.CategoryCounts()
	lead := c.Summary()
	if lead == "" {
		lead = title + "についてまとめました。"
	}

	var md strings.Builder
	md.WriteString("## はじめに\n\n")
	md.WriteString(lead)
	md.WriteString("\n\n")
	if files := c.Files(); len(files) > 0 {
		md.WriteString("## 参考にした資料\n\n")
		for _, f := range files {
			md.WriteString("- ")
			md.WriteString(f.Name)
			md.WriteString("\n")
		}
		md.WriteString("\n")
	}
	if d := c.Direction(); d != "" {
		md.WriteString("## ポイント\n\n")
		md.WriteString(d)
		md.WriteString("\n\n")
	}
	md.WriteString("## まとめ\n\n")
	md.WriteString("最後まで読んでいただきありがとうございました。")

	category := "other"
	switch {
	case counts[FileDocument] > 0:
		category = "howto"
	case counts[FileImage] > 0 || counts[FileVideo] > 0:
		category = "story"
	}

	var tags []string
	if t := compactTag(c.Title()); t != "" {
		tags = append(tags, t)
	}
	return &NoteBody{
		Title:        title,
		Lead:         lead,
		BodyMarkdown: md.String(),
		Tags:         tags,
		Category:     category,
	}
}

func fallbackLine(c Context) Body {
	title := subjectTitle(c)
	message := "【" + title + "】"
	if s := c.Summary(); s != "" {
		message += "\n" + s
	} else {
		message += "\n新しい情報をお届けします。"
	}
	return &LineBody{Message: message, CTA: "詳しく見る"}
}

const untitled = "無題のコンテンツ"

func subjectTitle(c Context) string {
	if t := c.Title(); t != "" {
		return t
	}
	return untitled
}

func compactTag(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func titleHashtags(c Context) []string {
	if t := compactTag(c.Title()); t != "" {
		return []string{"#" + t}
	}
	return []string{"#お知らせ"}
}

// fallbackCategory maps material counts onto the shared tips/howto/other enum.
func fallbackCategory(counts map[FileCategory]int) string {
	switch {
	case counts[FileVideo] > 0:
		return "howto"
	case counts[FileDocument] > 0:
		return "tips"
	default:
		return "other"
	}
}
