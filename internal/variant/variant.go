package variant

import (
	"encoding/json"
	"time"

	"famcontents/internal/generation"
)

// Status is the editorial state of a variant.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusReview            Status = "review"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusRevisionRequested Status = "revision_requested"
	StatusPublished         Status = "published"
)

var allStatuses = []Status{
	StatusDraft, StatusReview, StatusApproved, StatusRejected, StatusRevisionRequested, StatusPublished,
}

// ParseStatus reports whether s names a status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return Status(s), false
}

// Variant is one generated body for a content item and channel.
type Variant struct {
	ID            string            `json:"id"`
	ContentID     string            `json:"content_id"`
	Channel       generation.Kind   `json:"channel"`
	Body          json.RawMessage   `json:"body"`
	Source        generation.Source `json:"source"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ArchivedAt    *time.Time        `json:"archived_at,omitempty"`
	TrashedAt     *time.Time        `json:"trashed_at,omitempty"`
}

// Archived reports whether the archive flag is set.
func (v *Variant) Archived() bool { return v.ArchivedAt != nil }

// Trashed reports whether the trash flag is set.
func (v *Variant) Trashed() bool { return v.TrashedAt != nil }

// DecodeBody decodes the stored body into the channel's typed body.
func (v *Variant) DecodeBody() (generation.Body, error) {
	return generation.DecodeBody(v.Channel, v.Body)
}

// Clone returns a deep copy.
func (v *Variant) Clone() *Variant {
	if v == nil {
		return nil
	}
	out := *v
	out.Body = append(json.RawMessage(nil), v.Body...)
	if v.ArchivedAt != nil {
		t := *v.ArchivedAt
		out.ArchivedAt = &t
	}
	if v.TrashedAt != nil {
		t := *v.TrashedAt
		out.TrashedAt = &t
	}
	return &out
}

// Key identifies the single variant allowed per content and channel.
type Key struct {
	ContentID string
	Channel   generation.Kind
}

func (k Key) String() string {
	return k.ContentID + "\x00" + string(k.Channel)
}
