package generation

import (
	"strings"
)

const preamble = "あなたは小規模チームのコンテンツ運用を支える編集アシスタントです。" +
	"与えられた入力情報だけをもとに、指定された形式のJSONを作成してください。"

var commonRules = []string{
	"出力はJSONオブジェクト1つだけにし、前後に説明文やコードブロックを付けない",
	"出力形式に示したキーはすべて含める。該当する内容がなければ空文字列または空配列にする",
	"プレーンテキストの項目ではMarkdown記法（**、__、#見出し、`）を使わない",
	"入力情報にない事実や数値を作らない",
}

// Compile renders the instruction string for kind. It is pure: the same kind
// and context always yield the same text. Context sections appear only for
// fields that are present.
func Compile(kind Kind, c Context) string {
	return compile(lookup(kind), c)
}

func compile(def *taskDef, c Context) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n目的: ")
	b.WriteString(def.goal)
	b.WriteString("\n")

	if block := contextBlock(c); block != "" {
		b.WriteString("\n## 入力情報\n")
		b.WriteString(block)
	}

	b.WriteString("\n## ルール\n")
	for _, rule := range def.rules {
		writeBullet(&b, rule)
	}
	for _, rule := range commonRules {
		writeBullet(&b, rule)
	}

	b.WriteString("\n## 出力形式\n")
	b.WriteString("次の例と同じキーと型を持つJSONを出力してください。\n")
	b.WriteString(def.schema)
	b.WriteString("\n")
	return b.String()
}

func contextBlock(c Context) string {
	var b strings.Builder
	writeSection(&b, "タイトル", c.Title())
	writeSection(&b, "概要", c.Summary())
	writeSection(&b, "方向性（事前の分析結果）", c.Direction())
	if tone := c.Tone(); tone != ToneNone {
		writeSection(&b, "トーン", toneLabels[tone])
	}

	files := c.Files()
	excerpts := c.Excerpts()
	if len(files) > 0 {
		b.WriteString("\n### 参考ファイル一覧\n")
		for _, f := range files {
			writeBullet(&b, f.Name+"（"+string(f.Category)+"）")
		}
	}
	if len(excerpts) > 0 {
		b.WriteString("\n### 参考ファイルの内容\n")
		if len(files) > 0 {
			b.WriteString("ファイル名やカテゴリから内容を推測せず、以下の実際の内容を優先してください。\n")
		}
		for _, ex := range excerpts {
			b.WriteString("\n#### ")
			b.WriteString(ex.Name)
			b.WriteString("\n")
			b.WriteString(ex.Text)
			b.WriteString("\n")
		}
	}

	writeSection(&b, "追加の指示", c.Instructions())
	writeSection(&b, "校正対象の本文", c.Text())
	return b.String()
}

func writeSection(b *strings.Builder, heading, value string) {
	if value == "" {
		return
	}
	b.WriteString("\n### ")
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(value)
	b.WriteString("\n")
}

func writeBullet(b *strings.Builder, line string) {
	b.WriteString("- ")
	b.WriteString(line)
	b.WriteString("\n")
}
