package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"famcontents/internal/generation"
	"famcontents/internal/logging"
	"famcontents/internal/services"
)

// SeedFile is a YAML fixture of content items and task overrides.
//
//	contents:
//	  - title: 週末の散歩コース
//	    channels: [x, note]
//	task_configs:
//	  proofread:
//	    temperature: 0.1
type SeedFile struct {
	Contents    []ContentRequest             `yaml:"contents"`
	TaskConfigs map[string]TaskConfigRequest `yaml:"task_configs"`
}

// DecodeSeed parses a seed fixture. Unknown keys are rejected.
func DecodeSeed(r io.Reader) (SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return SeedFile{}, nil
		}
		return SeedFile{}, services.Wrap(services.ErrValidation, "api", "decode seed", "invalid yaml", err)
	}
	return seed, nil
}

// Seed imports a fixture. Contents with an id that already exists are
// replaced; the rest are created.
func (s *Service) Seed(ctx context.Context, seed SeedFile) (SeedResponse, error) {
	out := SeedResponse{
		Contents:    make([]ContentView, 0, len(seed.Contents)),
		TaskConfigs: make([]TaskConfigView, 0, len(seed.TaskConfigs)),
	}
	for i, req := range seed.Contents {
		view, err := s.seedContent(ctx, req)
		if err != nil {
			return SeedResponse{}, fmt.Errorf("contents[%d]: %w", i, err)
		}
		out.Contents = append(out.Contents, view)
	}

	kinds := make([]string, 0, len(seed.TaskConfigs))
	for kind := range seed.TaskConfigs {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		if _, ok := generation.ParseKind(kind); !ok {
			return SeedResponse{}, services.Wrap(services.ErrValidation, "api", "seed", "unknown task kind "+kind, nil)
		}
		view, err := s.PutTaskConfig(ctx, kind, seed.TaskConfigs[kind])
		if err != nil {
			return SeedResponse{}, fmt.Errorf("task_configs.%s: %w", kind, err)
		}
		out.TaskConfigs = append(out.TaskConfigs, view)
	}

	s.logger.Info("seed imported",
		logging.Int("contents", len(out.Contents)),
		logging.Int("task_configs", len(out.TaskConfigs)),
	)
	return out, nil
}

func (s *Service) seedContent(ctx context.Context, req ContentRequest) (ContentView, error) {
	id := strings.TrimSpace(req.ID)
	if id != "" {
		existing, err := s.store.GetContent(ctx, id)
		if err != nil {
			return ContentView{}, err
		}
		if existing != nil {
			return s.UpdateContent(ctx, id, req)
		}
	}
	req.ID = id
	return s.CreateContent(ctx, req)
}
