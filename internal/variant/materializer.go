package variant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"famcontents/internal/generation"
	"famcontents/internal/logging"
	"famcontents/internal/services"
)

// Thunk produces the generation result for a missing variant.
type Thunk func(ctx context.Context) (generation.Result, error)

// Materializer returns the variant for a key, generating it at most once.
type Materializer struct {
	store  Store
	group  singleflight.Group
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// MaterializerOption customizes a Materializer.
type MaterializerOption func(*Materializer)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) MaterializerOption {
	return func(m *Materializer) {
		if now != nil {
			m.now = now
		}
	}
}

// WithIDGenerator overrides variant ID generation.
func WithIDGenerator(newID func() string) MaterializerOption {
	return func(m *Materializer) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// NewMaterializer constructs a materializer over store.
func NewMaterializer(store Store, logger *slog.Logger, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		store:  store,
		logger: logging.NewComponentLogger(logger, "materializer"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize returns the existing variant for (contentID, channel) or runs
// thunk, stores the result as a draft and returns it. Concurrent callers for
// one key share a single thunk run. A thunk error persists nothing.
func (m *Materializer) Materialize(ctx context.Context, contentID string, channel generation.Kind, thunk Thunk) (*Variant, error) {
	key := Key{ContentID: contentID, Channel: channel}
	if existing, err := m.store.Find(ctx, key); err != nil {
		return nil, services.Wrap(services.ErrTransient, "materializer", "find", key.ContentID, err)
	} else if existing != nil {
		return existing, nil
	}

	value, err, shared := m.group.Do(key.String(), func() (any, error) {
		return m.materialize(ctx, key, thunk)
	})
	if err != nil {
		return nil, err
	}
	v := value.(*Variant)
	if shared {
		return v.Clone(), nil
	}
	return v, nil
}

func (m *Materializer) materialize(ctx context.Context, key Key, thunk Thunk) (*Variant, error) {
	// Re-check inside the flight: an earlier flight may have finished between
	// the caller's lookup and this one starting.
	existing, err := m.store.Find(ctx, key)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "materializer", "find", key.ContentID, err)
	}
	if existing != nil {
		return existing, nil
	}

	ctx = services.WithChannel(services.WithContentID(ctx, key.ContentID), string(key.Channel))
	logger := logging.WithContext(ctx, m.logger)

	result, err := thunk(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(result.Body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", key.Channel, err)
	}

	now := m.now()
	v := &Variant{
		ID:            m.newID(),
		ContentID:     key.ContentID,
		Channel:       key.Channel,
		Body:          body,
		Source:        result.Source,
		FailureReason: result.FailureReason,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.store.Create(ctx, v); err != nil {
		if !errors.Is(err, ErrExists) {
			return nil, services.Wrap(services.ErrTransient, "materializer", "create", key.ContentID, err)
		}
		winner, findErr := m.store.Find(ctx, key)
		if findErr != nil {
			return nil, services.Wrap(services.ErrTransient, "materializer", "find", key.ContentID, findErr)
		}
		if winner == nil {
			return nil, services.Wrap(services.ErrConflict, "materializer", "create", "variant vanished after conflicting insert", nil)
		}
		logger.Info("variant created concurrently; discarding local result",
			logging.String(logging.FieldVariantID, winner.ID),
		)
		return winner, nil
	}

	logger.Info("variant materialized",
		logging.String(logging.FieldVariantID, v.ID),
		logging.String(logging.FieldSource, string(v.Source)),
	)
	return v, nil
}
