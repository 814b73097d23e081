package variant

import (
	"errors"
	"testing"
	"time"

	"famcontents/internal/services"
)

func TestApplyStatusMachine(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		from   Status
		action Action
		want   Status
		ok     bool
	}{
		{StatusDraft, ActionReview, StatusReview, true},
		{StatusRevisionRequested, ActionReview, StatusReview, true},
		{StatusReview, ActionApprove, StatusApproved, true},
		{StatusReview, ActionReject, StatusRejected, true},
		{StatusReview, ActionRequestRevision, StatusRevisionRequested, true},
		{StatusApproved, ActionPublish, StatusPublished, true},
		{StatusDraft, ActionApprove, StatusDraft, false},
		{StatusDraft, ActionPublish, StatusDraft, false},
		{StatusRejected, ActionReview, StatusRejected, false},
		{StatusPublished, ActionReview, StatusPublished, false},
		{StatusApproved, ActionApprove, StatusApproved, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.action), func(t *testing.T) {
			v := &Variant{ID: "v1", Status: tt.from}
			err := Apply(v, tt.action, now, 0)
			if tt.ok && err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			if !tt.ok && !errors.Is(err, services.ErrConflict) {
				t.Fatalf("expected conflict, got %v", err)
			}
			if v.Status != tt.want {
				t.Fatalf("status = %q, want %q", v.Status, tt.want)
			}
			if tt.ok && !v.UpdatedAt.Equal(now) {
				t.Fatalf("expected UpdatedAt to advance, got %v", v.UpdatedAt)
			}
		})
	}
}

func TestApplySideFlags(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	v := &Variant{ID: "v1", Status: StatusReview}
	if err := Apply(v, ActionArchive, now, 0); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !v.Archived() || v.Status != StatusReview {
		t.Fatalf("archive must keep status, got %+v", v)
	}
	if err := Apply(v, ActionApprove, now, 0); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected archived variant to block approve, got %v", err)
	}
	if err := Apply(v, ActionArchive, now, 0); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected double archive to conflict, got %v", err)
	}
	if err := Apply(v, ActionTrash, now, 0); err != nil {
		t.Fatalf("trash from archived: %v", err)
	}
	if err := Apply(v, ActionTrash, now, 0); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected double trash to conflict, got %v", err)
	}
	if err := Apply(v, ActionRestore, now, 0); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if v.Archived() || v.Trashed() {
		t.Fatalf("restore must clear both flags, got %+v", v)
	}
	if err := Apply(v, ActionRestore, now, 0); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected restore of live variant to conflict, got %v", err)
	}

	published := &Variant{ID: "v2", Status: StatusPublished}
	for _, action := range []Action{ActionArchive, ActionTrash} {
		if err := Apply(published, action, now, 0); !errors.Is(err, services.ErrConflict) {
			t.Fatalf("expected %s of published variant to conflict, got %v", action, err)
		}
	}
}

func TestApplyRestoreRespectsRetention(t *testing.T) {
	trashedAt := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	v := &Variant{ID: "v1", Status: StatusDraft, TrashedAt: &trashedAt}
	retention := 30 * 24 * time.Hour

	if err := Apply(v, ActionRestore, trashedAt.Add(31*24*time.Hour), retention); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected expired restore to conflict, got %v", err)
	}
	if err := Apply(v, ActionRestore, trashedAt.Add(29*24*time.Hour), retention); err != nil {
		t.Fatalf("restore within retention: %v", err)
	}
}

func TestApplyUnknownAction(t *testing.T) {
	v := &Variant{ID: "v1", Status: StatusDraft}
	if err := Apply(v, Action("explode"), time.Now(), 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ParseAction("request_revision"); !ok {
		t.Fatal("expected request_revision to parse")
	}
	if _, ok := ParseStatus("archived"); ok {
		t.Fatal("archived is a flag, not a status")
	}
}
