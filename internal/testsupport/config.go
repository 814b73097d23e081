package testsupport

import (
	"path/filepath"
	"testing"

	"famcontents/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The generative backend is left unconfigured so generation takes the
// fallback path unless a test opts in with WithLLM.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "data", "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.LLM.APIKey = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLLM points the test config at a backend, usually an httptest server.
func WithLLM(provider, apiKey, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.Provider = provider
		b.cfg.LLM.APIKey = apiKey
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.LLM.Model = "test-model"
	}
}

// WithVariantCache sets the variant read cache size.
func WithVariantCache(size int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.VariantCacheSize = size
	}
}

// WithTrashRetentionDays overrides the trash retention window.
func WithTrashRetentionDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.TrashRetentionDays = days
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
