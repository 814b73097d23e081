package api_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"famcontents/internal/api"
	"famcontents/internal/services"
)

const seedYAML = `
contents:
  - id: walk-1
    title: 週末の散歩コース
    summary: 近所の公園を巡る
    channels: [x, note]
    tone: casual
  - title: 春の新作レシピ
    channels: [instagram_feed]
    files:
      - name: cake.jpg
task_configs:
  proofread:
    temperature: 0.1
  note:
    model: long-form
`

func TestSeedImportsAndReplaces(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	seed, err := api.DecodeSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("DecodeSeed: %v", err)
	}
	resp, err := svc.Seed(ctx, seed)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(resp.Contents) != 2 || resp.Contents[0].ID != "walk-1" {
		t.Fatalf("unexpected seeded contents: %+v", resp.Contents)
	}
	if len(resp.TaskConfigs) != 2 || resp.TaskConfigs[0].Kind != "note" {
		t.Fatalf("expected task configs sorted by kind, got %+v", resp.TaskConfigs)
	}

	seed.Contents = seed.Contents[:1]
	seed.Contents[0].Summary = "川沿いも歩く"
	if _, err := svc.Seed(ctx, seed); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	list, err := svc.ListContents(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListContents: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected replacement, not a duplicate; got %d items", len(list.Items))
	}
	got, err := svc.GetContent(ctx, "walk-1")
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if got.Summary != "川沿いも歩く" {
		t.Fatalf("expected updated summary, got %q", got.Summary)
	}

	byChannel, err := svc.ListContents(ctx, "instagram_feed", 0)
	if err != nil {
		t.Fatalf("ListContents by channel: %v", err)
	}
	if len(byChannel.Items) != 1 || byChannel.Items[0].Title != "春の新作レシピ" {
		t.Fatalf("unexpected channel listing: %+v", byChannel.Items)
	}
}

func TestDecodeSeedRejectsUnknownKeys(t *testing.T) {
	_, err := api.DecodeSeed(strings.NewReader("contents:\n  - title: t\n    colour: red\n"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSeedRejectsUnknownTaskKind(t *testing.T) {
	svc := newTestService(t)
	seed := api.SeedFile{TaskConfigs: map[string]api.TaskConfigRequest{"weather": {Model: "m"}}}
	if _, err := svc.Seed(context.Background(), seed); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
