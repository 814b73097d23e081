package store_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"famcontents/internal/content"
	"famcontents/internal/generation"
	"famcontents/internal/services"
	"famcontents/internal/store"
	"famcontents/internal/testsupport"
	"famcontents/internal/variant"
)

func newVariant(id, contentID string, channel generation.Kind, at time.Time) *variant.Variant {
	return &variant.Variant{
		ID:        id,
		ContentID: contentID,
		Channel:   channel,
		Body:      json.RawMessage(`{"text":"本文"}`),
		Source:    generation.SourceFallback,
		Status:    variant.StatusDraft,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestOpenCreatesSchemaOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	c := testsupport.NewContent(t, first, "初回", generation.KindX)
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := testsupport.MustOpenStore(t, cfg)
	got, err := second.GetContent(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if got == nil || got.Title != "初回" {
		t.Fatalf("expected content to survive reopen, got %+v", got)
	}
	if err := second.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 7"); err != nil {
		t.Fatalf("stamp version: %v", err)
	}
	db.Close()

	if _, err := store.Open(cfg); !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestContentRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	created, err := st.CreateContent(ctx, &content.Content{
		Title:    " 春の新メニュー ",
		Summary:  "桜ドリンク",
		Channels: []generation.Kind{"x", "note"},
		Files:    []generation.FileRef{{Name: "drink.jpg"}},
		Excerpts: []generation.FileExcerpt{{Name: "menu.txt", Text: "さくらラテ"}},
		Tone:     "casual",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	if created.ID == "" || created.Title != "春の新メニュー" {
		t.Fatalf("unexpected created content %+v", created)
	}

	got, err := st.GetContent(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetContent: %v", err)
	}
	if diff := cmp.Diff(created.ToInput(), got.ToInput()); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(created.Channels, got.Channels); diff != "" {
		t.Fatalf("channels mismatch (-want +got):\n%s", diff)
	}

	got.Summary = "更新後"
	updated, err := st.UpdateContent(ctx, got)
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) || updated.Summary != "更新後" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if _, err := st.UpdateContent(ctx, &content.Content{ID: "missing", Title: "t"}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := st.CreateContent(ctx, &content.Content{Title: ""}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if missing, err := st.GetContent(ctx, "missing"); err != nil || missing != nil {
		t.Fatalf("expected nil for missing content, got %+v (err %v)", missing, err)
	}
}

func TestListContentsByChannel(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.NewContent(t, st, "A", generation.KindX)
	testsupport.NewContent(t, st, "B", generation.KindNote, generation.KindLine)
	testsupport.NewContent(t, st, "C", generation.KindX, generation.KindLine)

	all, err := st.ListContents(context.Background(), store.ContentFilter{})
	if err != nil {
		t.Fatalf("ListContents: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(all))
	}
	line, err := st.ListContents(context.Background(), store.ContentFilter{Channel: generation.KindLine})
	if err != nil {
		t.Fatalf("ListContents: %v", err)
	}
	var titles []string
	for _, c := range line {
		titles = append(titles, c.Title)
	}
	if diff := cmp.Diff([]string{"B", "C"}, titles); diff != "" {
		t.Fatalf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestVariantCreateIsConditional(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	c := testsupport.NewContent(t, st, "t", generation.KindX)
	now := time.Now().UTC()

	if err := st.Create(ctx, newVariant("v1", c.ID, generation.KindX, now)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := st.Create(ctx, newVariant("v2", c.ID, generation.KindX, now))
	if !errors.Is(err, variant.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, err := st.Find(ctx, variant.Key{ContentID: c.ID, Channel: generation.KindX})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got == nil || got.ID != "v1" {
		t.Fatalf("expected first writer to win, got %+v", got)
	}
	if missing, _ := st.Get(ctx, "v2"); missing != nil {
		t.Fatalf("losing insert must not be stored, got %+v", missing)
	}
}

func TestVariantUpdateAndCache(t *testing.T) {
	for _, size := range []int{0, 8} {
		st := testsupport.MustOpenStore(t, testsupport.NewConfig(t, testsupport.WithVariantCache(size)))
		ctx := context.Background()
		c := testsupport.NewContent(t, st, "t", generation.KindX)
		now := time.Now().UTC()
		v := newVariant("v1", c.ID, generation.KindX, now)
		if err := st.Create(ctx, v); err != nil {
			t.Fatalf("Create: %v", err)
		}

		first, _ := st.Get(ctx, "v1")
		first.Status = variant.StatusApproved
		if again, _ := st.Get(ctx, "v1"); again.Status != variant.StatusDraft {
			t.Fatalf("cache size %d: mutating a returned variant leaked into the store", size)
		}

		v.Status = variant.StatusReview
		archived := now.Add(time.Minute)
		v.ArchivedAt = &archived
		if err := st.Update(ctx, v); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, err := st.Get(ctx, "v1")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != variant.StatusReview || got.ArchivedAt == nil || !got.ArchivedAt.Equal(archived) {
			t.Fatalf("cache size %d: unexpected variant after update %+v", size, got)
		}
		if string(got.Body) != `{"text":"本文"}` {
			t.Fatalf("unexpected body %s", got.Body)
		}
		if err := st.Update(ctx, newVariant("ghost", c.ID, generation.KindNote, now)); err == nil {
			t.Fatal("expected update of unknown variant to fail")
		}
	}
}

func TestListVariantsFilters(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	c1 := testsupport.NewContent(t, st, "one", generation.KindX, generation.KindNote)
	c2 := testsupport.NewContent(t, st, "two", generation.KindX)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	fixtures := []*variant.Variant{
		newVariant("a", c1.ID, generation.KindX, base),
		newVariant("b", c1.ID, generation.KindNote, base.Add(time.Second)),
		newVariant("c", c2.ID, generation.KindX, base.Add(2*time.Second)),
	}
	fixtures[1].Status = variant.StatusReview
	trashedAt := base.Add(time.Hour)
	fixtures[2].TrashedAt = &trashedAt
	for _, v := range fixtures {
		if err := st.Create(ctx, v); err != nil {
			t.Fatalf("Create %s: %v", v.ID, err)
		}
	}

	ids := func(filter variant.Filter) []string {
		t.Helper()
		out, err := st.List(ctx, filter)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		var got []string
		for _, v := range out {
			got = append(got, v.ID)
		}
		return got
	}

	tests := []struct {
		name   string
		filter variant.Filter
		want   []string
	}{
		{"default hides trash", variant.Filter{}, []string{"a", "b"}},
		{"include trash", variant.Filter{IncludeTrashed: true}, []string{"a", "b", "c"}},
		{"by content", variant.Filter{ContentID: c1.ID}, []string{"a", "b"}},
		{"by channel", variant.Filter{Channel: generation.KindX, IncludeTrashed: true}, []string{"a", "c"}},
		{"by status", variant.Filter{Statuses: []variant.Status{variant.StatusReview, variant.StatusApproved}}, []string{"b"}},
		{"limit", variant.Filter{Limit: 1}, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(tt.filter)); diff != "" {
				t.Fatalf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}

	counts, err := st.StatusCounts(ctx, c1.ID)
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if diff := cmp.Diff(map[variant.Status]int{variant.StatusDraft: 1, variant.StatusReview: 1}, counts); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestPurgeTrashed(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	c := testsupport.NewContent(t, st, "t", generation.KindX, generation.KindLine)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	old := newVariant("old", c.ID, generation.KindX, base)
	oldTrash := base.Add(500 * time.Millisecond)
	old.TrashedAt = &oldTrash
	recent := newVariant("recent", c.ID, generation.KindLine, base)
	recentTrash := base.Add(48 * time.Hour)
	recent.TrashedAt = &recentTrash
	for _, v := range []*variant.Variant{old, recent} {
		if err := st.Create(ctx, v); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	n, err := st.PurgeTrashed(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeTrashed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one purged variant, got %d", n)
	}
	if v, _ := st.Get(ctx, "old"); v != nil {
		t.Fatal("old trashed variant still present")
	}
	if v, _ := st.Get(ctx, "recent"); v == nil {
		t.Fatal("recent trashed variant was purged")
	}
}

func TestDeleteContentCascades(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	c := testsupport.NewContent(t, st, "t", generation.KindX)
	if err := st.Create(ctx, newVariant("v1", c.ID, generation.KindX, time.Now().UTC())); err != nil {
		t.Fatalf("Create: %v", err)
	}
	removed, err := st.DeleteContent(ctx, c.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteContent = %v, %v", removed, err)
	}
	if v, _ := st.Get(ctx, "v1"); v != nil {
		t.Fatal("variant survived content deletion")
	}
}

func TestTaskConfigs(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, ok, err := st.LookupTaskConfig(ctx, "note"); err != nil || ok {
		t.Fatalf("expected no record, got ok=%v err=%v", ok, err)
	}

	temp := 0.3
	if _, err := st.PutTaskConfig(ctx, store.TaskConfig{Kind: "Note", Model: " m1 ", Temperature: &temp}); err != nil {
		t.Fatalf("PutTaskConfig: %v", err)
	}
	if _, err := st.PutTaskConfig(ctx, store.TaskConfig{Kind: "note", MaxOutputTokens: 2048, Temperature: &temp}); err != nil {
		t.Fatalf("PutTaskConfig replace: %v", err)
	}

	override, ok, err := st.LookupTaskConfig(ctx, "note")
	if err != nil || !ok {
		t.Fatalf("LookupTaskConfig: ok=%v err=%v", ok, err)
	}
	if override.Model != "" || override.MaxOutputTokens != 2048 || override.Temperature == nil || *override.Temperature != 0.3 {
		t.Fatalf("unexpected override %+v", override)
	}

	bad := 5.0
	if _, err := st.PutTaskConfig(ctx, store.TaskConfig{Kind: "note", Temperature: &bad}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := st.PutTaskConfig(ctx, store.TaskConfig{Kind: "tiktok"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown kind, got %v", err)
	}

	all, err := st.ListTaskConfigs(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListTaskConfigs = %d records, err %v", len(all), err)
	}
}
