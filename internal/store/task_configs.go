package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"famcontents/internal/generation"
	"famcontents/internal/services"
)

// TaskConfig is a stored per-kind model parameter record. Empty fields
// inherit from the config file.
type TaskConfig struct {
	Kind            generation.Kind `json:"kind"`
	Model           string          `json:"model,omitempty"`
	Temperature     *float64        `json:"temperature,omitempty"`
	MaxOutputTokens int             `json:"max_output_tokens,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PutTaskConfig inserts or replaces the record for cfg.Kind.
func (s *Store) PutTaskConfig(ctx context.Context, cfg TaskConfig) (TaskConfig, error) {
	kind, ok := generation.ParseKind(string(cfg.Kind))
	if !ok {
		return TaskConfig{}, services.Wrap(services.ErrValidation, "store", "put task config", "unknown kind "+string(cfg.Kind), nil)
	}
	if cfg.Temperature != nil && (*cfg.Temperature < 0 || *cfg.Temperature > 2) {
		return TaskConfig{}, services.Wrap(services.ErrValidation, "store", "put task config", "temperature must be between 0 and 2", nil)
	}
	if cfg.MaxOutputTokens < 0 {
		return TaskConfig{}, services.Wrap(services.ErrValidation, "store", "put task config", "max_output_tokens must be positive", nil)
	}
	cfg.Kind = kind
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.UpdatedAt = s.now()

	var temperature any
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO task_configs (kind, model, temperature, max_output_tokens, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(kind) DO UPDATE SET
             model = excluded.model,
             temperature = excluded.temperature,
             max_output_tokens = excluded.max_output_tokens,
             updated_at = excluded.updated_at`,
		string(cfg.Kind),
		nullableString(cfg.Model),
		temperature,
		cfg.MaxOutputTokens,
		formatTime(cfg.UpdatedAt),
	)
	if err != nil {
		return TaskConfig{}, fmt.Errorf("put task config: %w", err)
	}
	return cfg, nil
}

// GetTaskConfig returns the record for kind and whether it exists.
func (s *Store) GetTaskConfig(ctx context.Context, kind generation.Kind) (TaskConfig, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, model, temperature, max_output_tokens, updated_at FROM task_configs WHERE kind = ?`,
		string(kind),
	)
	cfg, err := scanTaskConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TaskConfig{}, false, nil
	}
	if err != nil {
		return TaskConfig{}, false, fmt.Errorf("get task config: %w", err)
	}
	return cfg, true, nil
}

// ListTaskConfigs returns every stored record ordered by kind.
func (s *Store) ListTaskConfigs(ctx context.Context) ([]TaskConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, model, temperature, max_output_tokens, updated_at FROM task_configs ORDER BY kind`,
	)
	if err != nil {
		return nil, fmt.Errorf("list task configs: %w", err)
	}
	defer rows.Close()

	var out []TaskConfig
	for rows.Next() {
		cfg, err := scanTaskConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// LookupTaskConfig adapts stored records for generation.ConfigParams.
func (s *Store) LookupTaskConfig(ctx context.Context, kind string) (generation.TaskOverride, bool, error) {
	cfg, ok, err := s.GetTaskConfig(ctx, generation.Kind(kind))
	if err != nil || !ok {
		return generation.TaskOverride{}, ok, err
	}
	return generation.TaskOverride{
		Model:           cfg.Model,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, true, nil
}

func scanTaskConfig(scanner interface{ Scan(dest ...any) error }) (TaskConfig, error) {
	var (
		kind        string
		model       sql.NullString
		temperature sql.NullFloat64
		maxTokens   int
		updatedRaw  string
	)
	if err := scanner.Scan(&kind, &model, &temperature, &maxTokens, &updatedRaw); err != nil {
		return TaskConfig{}, err
	}
	cfg := TaskConfig{
		Kind:            generation.Kind(kind),
		Model:           model.String,
		MaxOutputTokens: maxTokens,
	}
	if temperature.Valid {
		t := temperature.Float64
		cfg.Temperature = &t
	}
	if t, err := parseTimeString(updatedRaw); err == nil {
		cfg.UpdatedAt = t
	}
	return cfg, nil
}
