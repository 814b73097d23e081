package variant

import (
	"context"
	"errors"
	"testing"
	"time"

	"famcontents/internal/content"
	"famcontents/internal/generation"
	"famcontents/internal/services"
)

type contentMap map[string]*content.Content

func (m contentMap) GetContent(_ context.Context, id string) (*content.Content, error) {
	return m[id].Clone(), nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStore) {
	t.Helper()
	contents := contentMap{
		"c1": {
			ID:       "c1",
			Title:    "春の新メニュー",
			Summary:  "桜を使った限定ドリンク",
			Channels: []generation.Kind{generation.KindX, generation.KindInstagramFeed, generation.KindNote, generation.KindLine},
		},
		"empty": {ID: "empty", Title: "チャンネル未設定"},
	}
	store := NewMemoryStore()
	gen := generation.NewGenerator(nil, nil, nil)
	return NewService(contents, store, gen, generation.NewAssembler(0, nil), opts...), store
}

func TestGenerateAllMovesDraftsToReview(t *testing.T) {
	svc, _ := newTestService(t, WithConcurrency(2))
	ctx := context.Background()

	got, err := svc.GenerateAll(ctx, "c1")
	if err != nil {
		t.Fatalf("GenerateAll returned error: %v", err)
	}
	want := []generation.Kind{generation.KindX, generation.KindInstagramFeed, generation.KindNote, generation.KindLine}
	if len(got) != len(want) {
		t.Fatalf("expected %d variants, got %d", len(want), len(got))
	}
	for i, v := range got {
		if v.Channel != want[i] {
			t.Fatalf("variant %d channel = %q, want %q", i, v.Channel, want[i])
		}
		if v.Status != StatusReview {
			t.Fatalf("variant %s status = %q, want review", v.Channel, v.Status)
		}
		if v.Source != generation.SourceFallback || v.FailureReason != "" {
			t.Fatalf("unexpected provenance %+v", v)
		}
	}

	// A second batch reuses the variants and leaves their status alone.
	if _, err := svc.Transition(ctx, got[0].ID, ActionApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	again, err := svc.GenerateAll(ctx, "c1")
	if err != nil {
		t.Fatalf("second GenerateAll returned error: %v", err)
	}
	for i := range again {
		if again[i].ID != got[i].ID {
			t.Fatalf("variant %d was recreated", i)
		}
	}
	if again[0].Status != StatusApproved {
		t.Fatalf("expected approved variant to keep its status, got %q", again[0].Status)
	}
}

func TestGenerateAllLeavesArchivedDraft(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	x, err := svc.Materialize(ctx, "c1", generation.KindX)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if _, err := svc.Transition(ctx, x.ID, ActionArchive); err != nil {
		t.Fatalf("archive: %v", err)
	}

	got, err := svc.GenerateAll(ctx, "c1")
	if err != nil {
		t.Fatalf("GenerateAll returned error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(got))
	}
	if got[0].ID != x.ID || got[0].Status != StatusDraft || !got[0].Archived() {
		t.Fatalf("archived draft should come back unchanged, got %+v", got[0])
	}
	for _, v := range got[1:] {
		if v.Status != StatusReview {
			t.Fatalf("variant %s status = %q, want review", v.Channel, v.Status)
		}
	}
	stored, err := store.Get(ctx, x.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != StatusDraft || !stored.Archived() {
		t.Fatalf("stored archived draft changed: %+v", stored)
	}
}

func TestGenerateAllErrors(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.GenerateAll(context.Background(), "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.GenerateAll(context.Background(), "empty"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMaterializeRejectsPipelineKinds(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Materialize(context.Background(), "c1", generation.KindProofread); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	v, err := svc.Materialize(context.Background(), "c1", generation.KindInstagramReels)
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if v.Status != StatusDraft {
		t.Fatalf("single materialize should leave a draft, got %q", v.Status)
	}
}

func TestTransitionAndPurge(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	svc, store := newTestService(t, WithServiceClock(clock.Now), WithRetention(7*24*time.Hour))
	ctx := context.Background()

	v, err := svc.Materialize(ctx, "c1", generation.KindX)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if _, err := svc.Transition(ctx, v.ID, ActionPublish); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict publishing a draft, got %v", err)
	}
	if _, err := svc.Transition(ctx, "nope", ActionReview); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	trashed, err := svc.Transition(ctx, v.ID, ActionTrash)
	if err != nil {
		t.Fatalf("trash: %v", err)
	}
	if !trashed.Trashed() {
		t.Fatal("expected trash flag")
	}
	listed, _ := svc.List(ctx, Filter{ContentID: "c1"})
	if len(listed) != 0 {
		t.Fatalf("trashed variants must be hidden by default, got %d", len(listed))
	}

	clock.now = clock.now.Add(3 * 24 * time.Hour)
	if n, err := svc.PurgeTrashed(ctx); err != nil || n != 0 {
		t.Fatalf("early purge removed %d (err %v)", n, err)
	}
	clock.now = clock.now.Add(5 * 24 * time.Hour)
	if _, err := svc.Transition(ctx, v.ID, ActionRestore); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected expired restore to conflict, got %v", err)
	}
	if n, err := svc.PurgeTrashed(ctx); err != nil || n != 1 {
		t.Fatalf("expected one purged variant, got %d (err %v)", n, err)
	}
	if got, _ := store.Get(ctx, v.ID); got != nil {
		t.Fatal("purged variant still stored")
	}
}
