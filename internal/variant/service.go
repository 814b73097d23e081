package variant

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"famcontents/internal/content"
	"famcontents/internal/generation"
	"famcontents/internal/logging"
	"famcontents/internal/services"
)

// ContentSource loads content items. Get returns nil, nil when id is unknown.
type ContentSource interface {
	GetContent(ctx context.Context, id string) (*content.Content, error)
}

// Service ties content, generation and variant storage together.
type Service struct {
	contents    ContentSource
	store       Store
	generator   *generation.Generator
	assembler   *generation.Assembler
	mat         *Materializer
	concurrency int
	retention   time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithConcurrency bounds batch generation fan-out.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRetention sets how long trashed variants remain restorable.
func WithRetention(d time.Duration) Option {
	return func(s *Service) { s.retention = d }
}

// WithServiceClock overrides the time source for transitions and purges.
func WithServiceClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMaterializer replaces the default materializer built over the store.
func WithMaterializer(m *Materializer) Option {
	return func(s *Service) { s.mat = m }
}

// NewService constructs a Service.
func NewService(contents ContentSource, store Store, generator *generation.Generator, assembler *generation.Assembler, opts ...Option) *Service {
	s := &Service{
		contents:    contents,
		store:       store,
		generator:   generator,
		assembler:   assembler,
		concurrency: 3,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.mat == nil {
		s.mat = NewMaterializer(store, s.logger, WithClock(s.now))
	}
	s.logger = logging.NewComponentLogger(s.logger, "variants")
	return s
}

// Materialize returns the variant for one content item and channel,
// generating it if it does not exist yet.
func (s *Service) Materialize(ctx context.Context, contentID string, channel generation.Kind) (*Variant, error) {
	if !channel.IsChannel() {
		return nil, services.Wrap(services.ErrValidation, "variants", "materialize", "unknown channel "+string(channel), nil)
	}
	c, err := s.loadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return s.materialize(ctx, c, channel)
}

func (s *Service) materialize(ctx context.Context, c *content.Content, channel generation.Kind) (*Variant, error) {
	return s.mat.Materialize(ctx, c.ID, channel, func(ctx context.Context) (generation.Result, error) {
		return s.generator.Generate(ctx, channel, s.assembler.Assemble(c.ToInput()))
	})
}

// GenerateAll materializes every target channel of a content item and moves
// live drafts into review. Archived or trashed variants are returned as
// stored. Results follow the content's channel order.
func (s *Service) GenerateAll(ctx context.Context, contentID string) ([]*Variant, error) {
	c, err := s.loadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if len(c.Channels) == 0 {
		return nil, services.Wrap(services.ErrValidation, "variants", "generate all", "content has no target channels", nil)
	}

	ctx = services.WithContentID(ctx, c.ID)
	logger := logging.WithContext(ctx, s.logger)
	start := time.Now()

	results := make([]*Variant, len(c.Channels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, channel := range c.Channels {
		g.Go(func() error {
			v, err := s.materialize(gctx, c, channel)
			if err != nil {
				return err
			}
			if v.Status == StatusDraft && !v.Archived() && !v.Trashed() {
				if v, err = s.apply(gctx, v, ActionReview); err != nil {
					return err
				}
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fallbacks := 0
	for _, v := range results {
		if v.Source == generation.SourceFallback {
			fallbacks++
		}
	}
	logger.Info("batch generation complete",
		logging.Int("channels", len(results)),
		logging.Int("fallbacks", fallbacks),
		logging.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}

// Get returns a variant by id.
func (s *Service) Get(ctx context.Context, id string) (*Variant, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "variants", "get", id, err)
	}
	if v == nil {
		return nil, services.Wrap(services.ErrNotFound, "variants", "get", id, nil)
	}
	return v, nil
}

// List returns variants matching filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Variant, error) {
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "variants", "list", "", err)
	}
	return out, nil
}

// Transition applies action to the variant with id.
func (s *Service) Transition(ctx context.Context, id string, action Action) (*Variant, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, v, action)
}

func (s *Service) apply(ctx context.Context, v *Variant, action Action) (*Variant, error) {
	next := v.Clone()
	from := next.Status
	if err := Apply(next, action, s.now(), s.retention); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, next); err != nil {
		return nil, services.Wrap(services.ErrTransient, "variants", "update", next.ID, err)
	}
	logging.WithContext(ctx, s.logger).Info("variant transitioned",
		logging.String(logging.FieldVariantID, next.ID),
		logging.String("action", string(action)),
		logging.String("from", string(from)),
		logging.String("to", string(next.Status)),
	)
	return next, nil
}

// PurgeTrashed removes variants trashed longer than the retention period.
func (s *Service) PurgeTrashed(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.retention)
	n, err := s.store.PurgeTrashed(ctx, cutoff)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "variants", "purge", "", err)
	}
	if n > 0 {
		s.logger.Info("purged trashed variants", logging.Int("count", int(n)))
	}
	return n, nil
}

func (s *Service) loadContent(ctx context.Context, id string) (*content.Content, error) {
	c, err := s.contents.GetContent(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "variants", "load content", id, err)
	}
	if c == nil {
		return nil, services.Wrap(services.ErrNotFound, "variants", "load content", id, nil)
	}
	return c, nil
}
