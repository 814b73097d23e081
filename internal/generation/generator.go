package generation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"famcontents/internal/config"
	"famcontents/internal/logging"
	"famcontents/internal/services"
	"famcontents/internal/services/llm"
)

// Source records which path produced a result body.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is a normalized body plus its provenance. FailureReason is set only
// when the fallback ran because a configured backend failed.
type Result struct {
	Kind          Kind   `json:"kind"`
	Body          Body   `json:"body"`
	Source        Source `json:"source"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// ParamsResolver supplies model parameters per kind.
type ParamsResolver interface {
	Params(ctx context.Context, kind Kind) (llm.Params, error)
}

// Generator runs the compile, invoke, fallback, normalize pipeline.
type Generator struct {
	backend Backend
	params  ParamsResolver
	logger  *slog.Logger
}

// NewGenerator constructs a generator. A nil backend behaves as unconfigured.
func NewGenerator(backend Backend, params ParamsResolver, logger *slog.Logger) *Generator {
	return &Generator{
		backend: backend,
		params:  params,
		logger:  logging.NewComponentLogger(logger, "generator"),
	}
}

// Configured reports whether generation will attempt the model path.
func (g *Generator) Configured() bool {
	return g.backend != nil && g.backend.Configured()
}

// Generate produces a result for kind. Only malformed context (a missing title,
// or missing text for proofread) and parameter lookup failures are returned as
// errors. Backend trouble always yields a fallback result.
func (g *Generator) Generate(ctx context.Context, kind Kind, c Context) (Result, error) {
	def := lookup(kind)
	ctx = services.WithTaskKind(ctx, string(def.kind))
	logger := logging.WithContext(ctx, g.logger)
	if def.kind != kind {
		logger.Warn("unknown task kind; using generic schema",
			logging.String("requested_kind", string(kind)),
			logging.String(logging.FieldEventType, "generation_unknown_kind"),
		)
	}

	if err := def.validate(c); err != nil {
		return Result{}, err
	}

	prompt := compile(def, c)
	if !g.Configured() {
		logger.Info("backend not configured; using fallback",
			logging.String(logging.FieldSource, string(SourceFallback)),
		)
		return runFallback(def, c, ""), nil
	}

	params, err := g.resolveParams(ctx, def.kind)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	body, err := invoke(ctx, g.backend, def, prompt, params)
	if err != nil {
		if errors.Is(err, llm.ErrUnconfigured) {
			return runFallback(def, c, ""), nil
		}
		logging.WarnWithContext(logger, "generation call failed; using fallback", "generation_fallback",
			logging.String("backend", g.backend.Name()),
			logging.String("model", params.Model),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the backend credentials, model name, and network"),
			logging.String(logging.FieldImpact, "deterministic fallback body returned"),
		)
		return runFallback(def, c, err.Error()), nil
	}

	body.normalize()
	logger.Info("generation complete",
		logging.String(logging.FieldSource, string(SourceModel)),
		logging.String("model", params.Model),
		logging.Duration("elapsed", time.Since(start)),
	)
	return Result{Kind: def.kind, Body: body, Source: SourceModel}, nil
}

// Fallback runs the deterministic generator for kind directly. It never
// consults the backend and never fails.
func Fallback(kind Kind, c Context) Result {
	return runFallback(lookup(kind), c, "")
}

func runFallback(def *taskDef, c Context, reason string) Result {
	body := def.fallback(c)
	body.normalize()
	return Result{Kind: def.kind, Body: body, Source: SourceFallback, FailureReason: reason}
}

func (g *Generator) resolveParams(ctx context.Context, kind Kind) (llm.Params, error) {
	if g.params == nil {
		return llm.Params{}, services.Wrap(services.ErrConfiguration, "generation", "params", "no parameter source", nil)
	}
	params, err := g.params.Params(ctx, kind)
	if err != nil {
		return llm.Params{}, services.Wrap(services.ErrTransient, "generation", "params", string(kind), err)
	}
	return params, nil
}

// TaskOverride is a stored per-kind parameter record. Zero fields inherit.
type TaskOverride struct {
	Model           string
	Temperature     *float64
	MaxOutputTokens int
}

// TaskConfigLookup reads stored task configuration records.
type TaskConfigLookup interface {
	LookupTaskConfig(ctx context.Context, kind string) (TaskOverride, bool, error)
}

// ConfigParams layers stored task records over config-file defaults.
type ConfigParams struct {
	cfg    *config.Config
	lookup TaskConfigLookup
}

// NewParamsResolver builds a resolver. lookup may be nil.
func NewParamsResolver(cfg *config.Config, lookup TaskConfigLookup) *ConfigParams {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return &ConfigParams{cfg: cfg, lookup: lookup}
}

// Params implements ParamsResolver.
func (p *ConfigParams) Params(ctx context.Context, kind Kind) (llm.Params, error) {
	d := p.cfg.TaskDefaults(string(kind))
	params := llm.Params{Model: d.Model, Temperature: d.Temperature, MaxOutputTokens: d.MaxOutputTokens}
	if p.lookup == nil {
		return params, nil
	}
	override, ok, err := p.lookup.LookupTaskConfig(ctx, string(kind))
	if err != nil {
		return llm.Params{}, err
	}
	if !ok {
		return params, nil
	}
	if override.Model != "" {
		params.Model = override.Model
	}
	if override.Temperature != nil {
		params.Temperature = *override.Temperature
	}
	if override.MaxOutputTokens > 0 {
		params.MaxOutputTokens = override.MaxOutputTokens
	}
	return params, nil
}
