package variant

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"famcontents/internal/generation"
)

// ErrExists is returned by Store.Create when a variant already exists for the key.
var ErrExists = errors.New("variant already exists")

// Filter narrows List results. Zero fields match everything; trashed variants
// are excluded unless IncludeTrashed is set.
type Filter struct {
	ContentID      string
	Channel        generation.Kind
	Statuses       []Status
	IncludeTrashed bool
	Limit          int
}

// Store persists variants. Find and Get return nil, nil when nothing matches.
type Store interface {
	Find(ctx context.Context, key Key) (*Variant, error)
	Get(ctx context.Context, id string) (*Variant, error)
	// Create inserts v unless a variant already exists for its key, in which
	// case it returns ErrExists and leaves the store unchanged.
	Create(ctx context.Context, v *Variant) error
	Update(ctx context.Context, v *Variant) error
	List(ctx context.Context, filter Filter) ([]*Variant, error)
	PurgeTrashed(ctx context.Context, olderThan time.Time) (int64, error)
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Variant
	byKey map[Key]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*Variant),
		byKey: make(map[Key]string),
	}
}

func (s *MemoryStore) Find(_ context.Context, key Key) (*Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	return s.byID[id].Clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id].Clone(), nil
}

func (s *MemoryStore) Create(_ context.Context, v *Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := Key{ContentID: v.ContentID, Channel: v.Channel}
	if _, ok := s.byKey[key]; ok {
		return ErrExists
	}
	s.byKey[key] = v.ID
	s.byID[v.ID] = v.Clone()
	return nil
}

func (s *MemoryStore) Update(_ context.Context, v *Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[v.ID]; !ok {
		return errors.New("variant not found")
	}
	s.byID[v.ID] = v.Clone()
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter) ([]*Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Variant
	for _, v := range s.byID {
		if filter.Matches(v) {
			out = append(out, v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) PurgeTrashed(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for id, v := range s.byID {
		if v.TrashedAt != nil && v.TrashedAt.Before(olderThan) {
			delete(s.byID, id)
			delete(s.byKey, Key{ContentID: v.ContentID, Channel: v.Channel})
			purged++
		}
	}
	return purged, nil
}

// Matches reports whether v passes the filter.
func (f Filter) Matches(v *Variant) bool {
	if f.ContentID != "" && v.ContentID != f.ContentID {
		return false
	}
	if f.Channel != "" && v.Channel != f.Channel {
		return false
	}
	if len(f.Statuses) > 0 && !statusIn(v.Status, f.Statuses) {
		return false
	}
	if v.Trashed() && !f.IncludeTrashed {
		return false
	}
	return true
}
