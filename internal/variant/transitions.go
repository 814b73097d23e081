package variant

import (
	"fmt"
	"time"

	"famcontents/internal/services"
)

// Action is a requested state change.
type Action string

const (
	ActionReview          Action = "review"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionRequestRevision Action = "request_revision"
	ActionPublish         Action = "publish"
	ActionArchive         Action = "archive"
	ActionTrash           Action = "trash"
	ActionRestore         Action = "restore"
)

type statusTransition struct {
	from []Status
	to   Status
}

var statusTransitions = map[Action]statusTransition{
	ActionReview:          {from: []Status{StatusDraft, StatusRevisionRequested}, to: StatusReview},
	ActionApprove:         {from: []Status{StatusReview}, to: StatusApproved},
	ActionReject:          {from: []Status{StatusReview}, to: StatusRejected},
	ActionRequestRevision: {from: []Status{StatusReview}, to: StatusRevisionRequested},
	ActionPublish:         {from: []Status{StatusApproved}, to: StatusPublished},
}

// Actions lists every action in display order.
func Actions() []Action {
	return []Action{
		ActionReview, ActionApprove, ActionReject, ActionRequestRevision,
		ActionPublish, ActionArchive, ActionTrash, ActionRestore,
	}
}

// ParseAction reports whether s names an action.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions() {
		if string(a) == s {
			return a, true
		}
	}
	return Action(s), false
}

// Apply performs action on v in place. Restoring a variant whose trash
// timestamp is older than retention fails; a zero retention never expires.
func Apply(v *Variant, action Action, now time.Time, retention time.Duration) error {
	switch action {
	case ActionArchive, ActionTrash:
		if v.Status == StatusPublished {
			return conflict(v, action, "published variants are final")
		}
		if v.Trashed() {
			return conflict(v, action, "variant is in the trash")
		}
		if action == ActionArchive {
			if v.Archived() {
				return conflict(v, action, "variant is already archived")
			}
			v.ArchivedAt = &now
		} else {
			v.TrashedAt = &now
		}
	case ActionRestore:
		if !v.Archived() && !v.Trashed() {
			return conflict(v, action, "variant is neither archived nor trashed")
		}
		if v.Trashed() && retention > 0 && now.Sub(*v.TrashedAt) > retention {
			return conflict(v, action, "trash retention expired")
		}
		v.ArchivedAt = nil
		v.TrashedAt = nil
	default:
		t, ok := statusTransitions[action]
		if !ok {
			return services.Wrap(services.ErrValidation, "variant", "transition", fmt.Sprintf("unknown action %q", action), nil)
		}
		if v.Archived() || v.Trashed() {
			return conflict(v, action, "restore the variant first")
		}
		if !statusIn(v.Status, t.from) {
			return conflict(v, action, fmt.Sprintf("not allowed from %s", v.Status))
		}
		v.Status = t.to
	}
	v.UpdatedAt = now
	return nil
}

func statusIn(s Status, set []Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func conflict(v *Variant, action Action, reason string) error {
	return services.Wrap(services.ErrConflict, "variant", string(action), fmt.Sprintf("%s: %s", v.ID, reason), nil)
}
