package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"famcontents/internal/config"
	"famcontents/internal/generation"
	"famcontents/internal/logging"
	"famcontents/internal/services"
	"famcontents/internal/store"
	"famcontents/internal/textdiff"
	"famcontents/internal/variant"
)

// Service exposes every application operation and returns API DTOs.
type Service struct {
	cfg       *config.Config
	store     *store.Store
	backend   generation.Backend
	params    *generation.ConfigParams
	generator *generation.Generator
	assembler *generation.Assembler
	variants  *variant.Service
	differ    *textdiff.Engine
	logger    *slog.Logger
}

// NewService wires the generation pipeline, variant service and diff engine
// over st. backend may be nil, in which case every task uses its fallback.
func NewService(cfg *config.Config, st *store.Store, backend generation.Backend, logger *slog.Logger) *Service {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	params := generation.NewParamsResolver(cfg, st)
	generator := generation.NewGenerator(backend, params, logger)
	assembler := generation.NewAssembler(cfg.Generation.ExcerptLimit, logger)
	variants := variant.NewService(st, st, generator, assembler,
		variant.WithConcurrency(cfg.Generation.BatchConcurrency),
		variant.WithRetention(cfg.TrashRetention()),
		variant.WithLogger(logger),
	)
	return &Service{
		cfg:       cfg,
		store:     st,
		backend:   backend,
		params:    params,
		generator: generator,
		assembler: assembler,
		variants:  variants,
		differ:    textdiff.New(cfg.Diff.MaxTableCells),
		logger:    logging.NewComponentLogger(logger, "api"),
	}
}

// Assembler exposes the context assembler so callers can read reference
// files with the configured excerpt limit.
func (s *Service) Assembler() *generation.Assembler {
	return s.assembler
}

// Status reports backend availability and the supported task kinds.
func (s *Service) Status(ctx context.Context) Status {
	status := Status{
		Backend:    "none",
		Configured: s.generator.Configured(),
		Model:      s.cfg.LLM.Model,
		Channels:   kindStrings(generation.Channels()),
		Kinds:      kindStrings(generation.Kinds()),
	}
	if s.backend != nil {
		status.Backend = s.backend.Name()
	}
	if s.store != nil {
		status.DatabasePath = s.store.Path()
	}
	return status
}

// Generate runs one task over caller-supplied material without persisting.
// Unknown kinds are served by the generic task.
func (s *Service) Generate(ctx context.Context, kind string, req GenerateRequest) (GenerateResponse, error) {
	k, ok := generation.ParseKind(kind)
	if !ok {
		k = generation.Kind(strings.TrimSpace(kind))
	}
	result, err := s.generator.Generate(ctx, k, s.assembler.Assemble(req.ToInput()))
	if err != nil {
		return GenerateResponse{}, err
	}
	return FromResult(result)
}

// CreateContent stores a new content item.
func (s *Service) CreateContent(ctx context.Context, req ContentRequest) (ContentView, error) {
	created, err := s.store.CreateContent(ctx, req.ToContent())
	if err != nil {
		return ContentView{}, err
	}
	s.logger.Info("content created",
		logging.String(logging.FieldContentID, created.ID),
		logging.Int("channels", len(created.Channels)),
	)
	return FromContent(created), nil
}

// UpdateContent replaces the editable fields of content id.
func (s *Service) UpdateContent(ctx context.Context, id string, req ContentRequest) (ContentView, error) {
	c := req.ToContent()
	c.ID = id
	updated, err := s.store.UpdateContent(ctx, c)
	if err != nil {
		return ContentView{}, err
	}
	return FromContent(updated), nil
}

// GetContent returns a content item with its variant counts by status.
func (s *Service) GetContent(ctx context.Context, id string) (ContentView, error) {
	c, err := s.store.GetContent(ctx, id)
	if err != nil {
		return ContentView{}, err
	}
	if c == nil {
		return ContentView{}, services.Wrap(services.ErrNotFound, "api", "get content", id, nil)
	}
	view := FromContent(c)
	counts, err := s.store.StatusCounts(ctx, id)
	if err != nil {
		return ContentView{}, err
	}
	if len(counts) > 0 {
		view.VariantCounts = make(map[string]int, len(counts))
		for status, n := range counts {
			view.VariantCounts[string(status)] = n
		}
	}
	return view, nil
}

// ListContents returns content items, optionally limited to one channel.
func (s *Service) ListContents(ctx context.Context, channel string, limit int) (ContentListResponse, error) {
	filter := store.ContentFilter{Limit: limit}
	if strings.TrimSpace(channel) != "" {
		k, err := parseChannel(channel)
		if err != nil {
			return ContentListResponse{}, err
		}
		filter.Channel = k
	}
	items, err := s.store.ListContents(ctx, filter)
	if err != nil {
		return ContentListResponse{}, err
	}
	return ContentListResponse{Items: FromContents(items)}, nil
}

// DeleteContent removes a content item and its variants.
func (s *Service) DeleteContent(ctx context.Context, id string) error {
	removed, err := s.store.DeleteContent(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return services.Wrap(services.ErrNotFound, "api", "delete content", id, nil)
	}
	return nil
}

// Materialize returns the variant for (contentID, channel), generating it once.
func (s *Service) Materialize(ctx context.Context, contentID, channel string) (VariantView, error) {
	k, err := parseChannel(channel)
	if err != nil {
		return VariantView{}, err
	}
	ctx = services.WithChannel(services.WithContentID(ctx, contentID), string(k))
	v, err := s.variants.Materialize(ctx, contentID, k)
	if err != nil {
		return VariantView{}, err
	}
	return FromVariant(v), nil
}

// GenerateAll materializes every target channel of contentID.
func (s *Service) GenerateAll(ctx context.Context, contentID string) (BatchResponse, error) {
	items, err := s.variants.GenerateAll(ctx, contentID)
	if err != nil {
		return BatchResponse{}, err
	}
	return BatchResponse{ContentID: contentID, Variants: FromVariants(items)}, nil
}

// ListVariants returns variants matching q.
func (s *Service) ListVariants(ctx context.Context, q VariantQuery) (VariantListResponse, error) {
	filter := variant.Filter{
		ContentID:      strings.TrimSpace(q.ContentID),
		IncludeTrashed: q.IncludeTrashed,
		Limit:          q.Limit,
	}
	if strings.TrimSpace(q.Channel) != "" {
		k, err := parseChannel(q.Channel)
		if err != nil {
			return VariantListResponse{}, err
		}
		filter.Channel = k
	}
	for _, raw := range q.Statuses {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, ok := variant.ParseStatus(raw)
		if !ok {
			return VariantListResponse{}, services.Wrap(services.ErrValidation, "api", "list variants", "unknown status "+raw, nil)
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	items, err := s.variants.List(ctx, filter)
	if err != nil {
		return VariantListResponse{}, err
	}
	return VariantListResponse{Items: FromVariants(items)}, nil
}

// GetVariant returns a variant by id.
func (s *Service) GetVariant(ctx context.Context, id string) (VariantView, error) {
	v, err := s.variants.Get(ctx, id)
	if err != nil {
		return VariantView{}, err
	}
	return FromVariant(v), nil
}

// TransitionVariant applies a review or lifecycle action.
func (s *Service) TransitionVariant(ctx context.Context, id, action string) (VariantView, error) {
	a, ok := variant.ParseAction(action)
	if !ok {
		return VariantView{}, services.Wrap(services.ErrValidation, "api", "transition", "unknown action "+action, nil)
	}
	v, err := s.variants.Transition(ctx, id, a)
	if err != nil {
		return VariantView{}, err
	}
	return FromVariant(v), nil
}

// PurgeTrashed removes variants trashed longer than the retention period.
func (s *Service) PurgeTrashed(ctx context.Context) (PurgeResponse, error) {
	n, err := s.variants.PurgeTrashed(ctx)
	if err != nil {
		return PurgeResponse{}, err
	}
	return PurgeResponse{Removed: n}, nil
}

// TaskConfig returns the stored override and effective params for kind.
func (s *Service) TaskConfig(ctx context.Context, kind string) (TaskConfigView, error) {
	k, ok := generation.ParseKind(kind)
	if !ok {
		return TaskConfigView{}, services.Wrap(services.ErrValidation, "api", "task config", "unknown kind "+kind, nil)
	}
	return s.taskConfigView(ctx, k)
}

// ListTaskConfigs returns the configuration of every task kind.
func (s *Service) ListTaskConfigs(ctx context.Context) (TaskConfigListResponse, error) {
	kinds := generation.Kinds()
	out := TaskConfigListResponse{Items: make([]TaskConfigView, 0, len(kinds))}
	for _, k := range kinds {
		view, err := s.taskConfigView(ctx, k)
		if err != nil {
			return TaskConfigListResponse{}, err
		}
		out.Items = append(out.Items, view)
	}
	return out, nil
}

// PutTaskConfig stores overrides for kind.
func (s *Service) PutTaskConfig(ctx context.Context, kind string, req TaskConfigRequest) (TaskConfigView, error) {
	_, err := s.store.PutTaskConfig(ctx, store.TaskConfig{
		Kind:            generation.Kind(strings.ToLower(strings.TrimSpace(kind))),
		Model:           req.Model,
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	})
	if err != nil {
		return TaskConfigView{}, err
	}
	return s.TaskConfig(ctx, kind)
}

func (s *Service) taskConfigView(ctx context.Context, k generation.Kind) (TaskConfigView, error) {
	stored, ok, err := s.store.GetTaskConfig(ctx, k)
	if err != nil {
		return TaskConfigView{}, err
	}
	params, err := s.params.Params(ctx, k)
	if err != nil {
		return TaskConfigView{}, err
	}
	effective := TaskParams{Model: params.Model, Temperature: params.Temperature, MaxOutputTokens: params.MaxOutputTokens}
	return FromTaskConfig(k, stored, ok, effective), nil
}

// Diff highlights what modified adds to original.
func (s *Service) Diff(req DiffRequest) DiffResponse {
	segments := s.differ.Diff(req.Original, req.Modified)
	return DiffResponse{
		Segments: segments,
		HTML:     textdiff.RenderHTML(segments),
		Exact:    !s.differ.Bounded(req.Original, req.Modified),
	}
}

// Proofread runs the proofread task and highlights the corrected text
// against the text that was reviewed.
func (s *Service) Proofread(ctx context.Context, req GenerateRequest) (ProofreadResponse, error) {
	gctx := s.assembler.Assemble(req.ToInput())
	result, err := s.generator.Generate(ctx, generation.KindProofread, gctx)
	if err != nil {
		return ProofreadResponse{}, err
	}
	body, ok := result.Body.(*generation.ProofreadBody)
	if !ok {
		return ProofreadResponse{}, fmt.Errorf("proofread returned %T", result.Body)
	}
	dto, err := FromResult(result)
	if err != nil {
		return ProofreadResponse{}, err
	}
	return ProofreadResponse{
		Result: dto,
		Diff:   s.Diff(DiffRequest{Original: gctx.Text(), Modified: body.CorrectedText}),
	}, nil
}

func parseChannel(raw string) (generation.Kind, error) {
	k, ok := generation.ParseKind(raw)
	if !ok || !k.IsChannel() {
		return "", services.Wrap(services.ErrValidation, "api", "parse channel", "unknown channel "+raw, nil)
	}
	return k, nil
}

func kindStrings(kinds []generation.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
