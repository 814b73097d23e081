package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// LLM contains the generative backend connection settings shared by every task.
type LLM struct {
	Provider        string  `toml:"provider"`
	APIKey          string  `toml:"api_key"`
	BaseURL         string  `toml:"base_url"`
	Model           string  `toml:"model"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	Temperature     float64 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
}

// Task overrides model parameters for one task kind. Zero values inherit from [llm].
type Task struct {
	Model           string   `toml:"model"`
	Temperature     *float64 `toml:"temperature"`
	MaxOutputTokens int      `toml:"max_output_tokens"`
}

// Generation contains pipeline-level knobs.
type Generation struct {
	// ExcerptLimit caps each reference file excerpt, in runes.
	ExcerptLimit int `toml:"excerpt_limit"`
	// BatchConcurrency bounds how many channels a batch generate runs at once.
	BatchConcurrency int `toml:"batch_concurrency"`
	// RequestTimeoutSeconds bounds one HTTP request that triggers generation.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// Store contains persistence settings.
type Store struct {
	VariantCacheSize   int `toml:"variant_cache_size"`
	TrashRetentionDays int `toml:"trash_retention_days"`
}

// Diff contains limits for the highlight engine.
type Diff struct {
	MaxTableCells int `toml:"max_table_cells"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for famcontents.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and the API bind address
//   - LLM: generative backend provider, credentials, and default model params
//   - Tasks: per task kind model overrides, keyed by kind (e.g. [tasks.note])
//   - Generation: excerpt limits, batch concurrency, request timeout
//   - Store: variant read cache and trash retention
//   - Diff: highlight engine table bound
//   - Logging: log format and level
type Config struct {
	Paths      Paths           `toml:"paths"`
	LLM        LLM             `toml:"llm"`
	Tasks      map[string]Task `toml:"tasks"`
	Generation Generation      `toml:"generation"`
	Store      Store           `toml:"store"`
	Diff       Diff            `toml:"diff"`
	Logging    Logging         `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/fam/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fam.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the SQLite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "fam.db")
}

// LockPath returns the single-instance lock file used by famd.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "famd.lock")
}

// RequestTimeout returns the per-request generation timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Generation.RequestTimeoutSeconds) * time.Second
}

// TrashRetention returns how long trashed variants stay restorable.
func (c *Config) TrashRetention() time.Duration {
	return time.Duration(c.Store.TrashRetentionDays) * 24 * time.Hour
}

// TaskParams are the resolved model parameters for one task kind.
type TaskParams struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

// TaskDefaults resolves the model parameters for kind by layering [tasks.<kind>]
// over [llm].
func (c *Config) TaskDefaults(kind string) TaskParams {
	params := TaskParams{
		Model:           c.LLM.Model,
		Temperature:     c.LLM.Temperature,
		MaxOutputTokens: c.LLM.MaxOutputTokens,
	}
	override, ok := c.Tasks[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return params
	}
	if model := strings.TrimSpace(override.Model); model != "" {
		params.Model = model
	}
	if override.Temperature != nil {
		params.Temperature = *override.Temperature
	}
	if override.MaxOutputTokens > 0 {
		params.MaxOutputTokens = override.MaxOutputTokens
	}
	return params
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the sample configuration to path. A non-empty provider
// replaces the sample's gemini default.
func CreateSample(path, provider string) error {
	sample := sampleConfig
	if provider = strings.ToLower(strings.TrimSpace(provider)); provider != "" {
		if _, ok := defaultProviderModels[provider]; !ok {
			return fmt.Errorf("unsupported provider %q (want gemini, openai, or anthropic)", provider)
		}
		sample = strings.Replace(sample, `provider = "gemini"`, fmt.Sprintf("provider = %q", provider), 1)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
