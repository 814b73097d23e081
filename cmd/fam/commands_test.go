package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"famcontents/internal/api"
	"famcontents/internal/textdiff"
)

func TestStatusCommandReportsFallback(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "not configured")
	requireContains(t, out, "instagram_reels")
}

func TestGenerateCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	var resp api.GenerateResponse
	runJSON(t, env, &resp, "generate", "x", "--title", "週末の散歩コース", "--summary", "近所の公園を巡る")
	if resp.Kind != "x" || resp.Source != "fallback" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	out, _, err := runCLI(t, []string{"generate", "note", "--title", "週末の散歩コース"}, env.configPath)
	if err != nil {
		t.Fatalf("generate note: %v", err)
	}
	requireContains(t, out, "Kind:   note")
	requireContains(t, out, "body_markdown")

	if _, _, err := runCLI(t, []string{"generate", "x"}, env.configPath); err == nil {
		t.Fatal("expected missing title to fail")
	}
}

func TestContentAndVariantCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	var created api.ContentView
	runJSON(t, env, &created, "content", "add", "--title", "週末の散歩コース", "--channel", "x", "--channel", "note")
	if diff := cmp.Diff([]string{"x", "note"}, created.Channels); diff != "" {
		t.Fatalf("channels mismatch (-want +got):\n%s", diff)
	}

	out, _, err := runCLI(t, []string{"content", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("content list: %v", err)
	}
	requireContains(t, out, created.ID)

	var batch api.BatchResponse
	runJSON(t, env, &batch, "batch", created.ID)
	if len(batch.Variants) != 2 {
		t.Fatalf("expected two variants, got %+v", batch.Variants)
	}
	xVariant := batch.Variants[0]
	if xVariant.Channel != "x" || xVariant.Status != "review" {
		t.Fatalf("unexpected first variant: %+v", xVariant)
	}

	out, _, err = runCLI(t, []string{"variant", "status", xVariant.ID, "approve"}, env.configPath)
	if err != nil {
		t.Fatalf("variant status: %v", err)
	}
	requireContains(t, out, "Approved")

	var approved api.VariantListResponse
	runJSON(t, env, &approved, "variant", "list", "--status", "approved")
	if len(approved.Items) != 1 || approved.Items[0].ID != xVariant.ID {
		t.Fatalf("unexpected approved variants: %+v", approved.Items)
	}

	out, _, err = runCLI(t, []string{"variant", "show", batch.Variants[1].ID, "--preview"}, env.configPath)
	if err != nil {
		t.Fatalf("variant show: %v", err)
	}
	requireContains(t, out, "# ")

	out, _, err = runCLI(t, []string{"content", "show", created.ID}, env.configPath)
	if err != nil {
		t.Fatalf("content show: %v", err)
	}
	requireContains(t, out, "週末の散歩コース")

	if _, _, err := runCLI(t, []string{"variant", "status", xVariant.ID, "approve"}, env.configPath); err == nil {
		t.Fatal("expected repeated approve to fail")
	}

	out, _, err = runCLI(t, []string{"content", "delete", created.ID}, env.configPath)
	if err != nil {
		t.Fatalf("content delete: %v", err)
	}
	requireContains(t, out, "Deleted content")
	out, _, err = runCLI(t, []string{"variant", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("variant list: %v", err)
	}
	requireContains(t, out, "No variants")
}

func TestTaskCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	var view api.TaskConfigView
	runJSON(t, env, &view, "task", "set", "proofread", "--temperature", "0.1", "--model", "tuned")
	if !view.Stored || view.Effective.Model != "tuned" || view.Effective.Temperature != 0.1 {
		t.Fatalf("unexpected task config: %+v", view)
	}

	out, _, err := runCLI(t, []string{"task", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("task list: %v", err)
	}
	requireContains(t, out, "tuned")
	requireContains(t, out, "knowledge")

	if _, _, err := runCLI(t, []string{"task", "set", "weather", "--model", "m"}, env.configPath); err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}

func TestDiffCommandMarksAddedSentences(t *testing.T) {
	env := setupCLITestEnv(t)
	original := env.writeFile(t, "original.txt", "今日は晴れです。")
	modified := env.writeFile(t, "modified.txt", "今日は晴れです。散歩に行きます。")

	out, _, err := runCLI(t, []string{"diff", original, modified}, env.configPath)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if strings.TrimSpace(out) != "今日は晴れです。{+散歩に行きます。+}" {
		t.Fatalf("unexpected marker output: %q", out)
	}

	out, _, err = runCLI(t, []string{"diff", "--format", "html", original, modified}, env.configPath)
	if err != nil {
		t.Fatalf("diff html: %v", err)
	}
	requireContains(t, out, "<mark>散歩に行きます。</mark>")

	if _, _, err := runCLI(t, []string{"diff", "--format", "pdf", original, modified}, env.configPath); err == nil {
		t.Fatal("expected unknown format to fail")
	}
}

func TestRenderMarkersKeepsNewlinesOutside(t *testing.T) {
	got := renderMarkers([]textdiff.Segment{
		{Text: "a。\n", Kind: textdiff.KindKept},
		{Text: "b。\nc。", Kind: textdiff.KindAdded},
	})
	if got != "a。\n{+b。+}\n{+c。+}" {
		t.Fatalf("unexpected markers: %q", got)
	}
}

func TestProofreadCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFile(t, "draft.txt", "今日は晴れです。。\n散歩に行きます。")

	var resp api.ProofreadResponse
	runJSON(t, env, &resp, "proofread", path)
	if resp.Result.Kind != "proofread" || resp.Result.Source != "fallback" {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}

	out, _, err := runCLI(t, []string{"proofread", path}, env.configPath)
	if err != nil {
		t.Fatalf("proofread: %v", err)
	}
	requireContains(t, out, "Source: fallback")
	requireContains(t, out, "corrected_text")
}

func TestSeedCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFile(t, "seed.yaml", `contents:
  - id: walk
    title: 週末の散歩コース
    channels: [x, line]
task_configs:
  proofread:
    temperature: 0.1
`)

	out, _, err := runCLI(t, []string{"seed", path}, env.configPath)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	requireContains(t, out, "Imported 1 content item(s) and 1 task override(s)")

	var view api.ContentView
	runJSON(t, env, &view, "content", "show", "walk")
	if view.Title != "週末の散歩コース" {
		t.Fatalf("unexpected seeded content: %+v", view)
	}

	bad := env.writeFile(t, "bad.yaml", "contents:\n  - headline: nope\n")
	if _, _, err := runCLI(t, []string{"seed", bad}, env.configPath); err == nil {
		t.Fatal("expected unknown key to fail")
	}
}
