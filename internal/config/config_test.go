package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"famcontents/internal/config"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"FAM_LLM_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearKeyEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "fam", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if want := filepath.Join(tempHome, ".local", "share", "fam"); cfg.Paths.DataDir != want {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, want)
	}
	if cfg.DatabasePath() != filepath.Join(cfg.Paths.DataDir, "fam.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Paths.APIBind != "127.0.0.1:7580" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.LLM.Provider != config.ProviderGemini {
		t.Fatalf("expected gemini provider by default, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gemini-2.5-flash" {
		t.Fatalf("expected provider default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "" {
		t.Fatalf("expected no api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Generation.ExcerptLimit != 3000 {
		t.Fatalf("unexpected excerpt limit: %d", cfg.Generation.ExcerptLimit)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearKeyEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "fam.toml")
	data := `
[paths]
data_dir = "~/fam-data"
api_bind = "0.0.0.0:9000"

[llm]
provider = "OpenAI"
api_key = "file-key"
base_url = "http://localhost:11434/v1"

[tasks.Proofread]
temperature = 0.1
model = "  gpt-4o  "

[generation]
batch_concurrency = 5

[logging]
format = "JSON"
level = "debug"
`
	if err := os.WriteFile(configPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "fam-data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.LLM.Provider != config.ProviderOpenAI {
		t.Fatalf("expected provider lowercased, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("expected openai default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("unexpected api key: %q", cfg.LLM.APIKey)
	}
	if cfg.Generation.BatchConcurrency != 5 {
		t.Fatalf("unexpected batch concurrency: %d", cfg.Generation.BatchConcurrency)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json logging, got %q", cfg.Logging.Format)
	}

	params := cfg.TaskDefaults("proofread")
	if params.Model != "gpt-4o" {
		t.Fatalf("expected task model override, got %q", params.Model)
	}
	if params.Temperature != 0.1 {
		t.Fatalf("expected task temperature override, got %v", params.Temperature)
	}
	if params.MaxOutputTokens != cfg.LLM.MaxOutputTokens {
		t.Fatalf("expected inherited max tokens, got %d", params.MaxOutputTokens)
	}

	inherited := cfg.TaskDefaults("x")
	if inherited.Model != cfg.LLM.Model || inherited.Temperature != cfg.LLM.Temperature {
		t.Fatalf("expected x to inherit llm defaults, got %+v", inherited)
	}
}

func TestProviderEnvFallback(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "  env-anthropic  ")

	configPath := filepath.Join(t.TempDir(), "fam.toml")
	if err := os.WriteFile(configPath, []byte("[llm]\nprovider = \"anthropic\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-anthropic" {
		t.Fatalf("expected provider env key, got %q", cfg.LLM.APIKey)
	}

	t.Setenv("FAM_LLM_API_KEY", "env-generic")
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-generic" {
		t.Fatalf("expected FAM_LLM_API_KEY to win, got %q", cfg.LLM.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path, ""); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatal("sample config missing llm section")
	}

	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}

	clearKeyEnv(t)
	t.Setenv("HOME", t.TempDir())
	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if got := loaded.TaskDefaults("proofread").Temperature; got != 0.2 {
		t.Fatalf("expected sample proofread temperature 0.2, got %v", got)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "unknown provider",
			mutate: func(c *config.Config) { c.LLM.Provider = "mystery" },
			want:   "llm.provider",
		},
		{
			name:   "temperature out of range",
			mutate: func(c *config.Config) { c.LLM.Temperature = 3 },
			want:   "llm.temperature",
		},
		{
			name: "task temperature out of range",
			mutate: func(c *config.Config) {
				bad := -0.5
				c.Tasks = map[string]config.Task{"note": {Temperature: &bad}}
			},
			want: "tasks.note.temperature",
		},
		{
			name:   "bad bind",
			mutate: func(c *config.Config) { c.Paths.APIBind = "no-port" },
			want:   "paths.api_bind",
		},
		{
			name:   "missing data dir",
			mutate: func(c *config.Config) { c.Paths.DataDir = "" },
			want:   "paths.data_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "data", "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestCreateSampleWithProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path, "Anthropic"); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), `provider = "anthropic"`) {
		t.Fatalf("expected provider replaced, got:\n%s", data)
	}
	if err := config.CreateSample(path, "bedrock"); err == nil {
		t.Fatal("expected unsupported provider error")
	}
}
