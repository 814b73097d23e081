package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeTasks()
	c.normalizeGeneration()
	c.normalizeStore()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultProviderModels[c.LLM.Provider]
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = lookupFirstEnv(providerKeyEnvs(c.LLM.Provider)...)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.MaxOutputTokens <= 0 {
		c.LLM.MaxOutputTokens = defaultLLMMaxOutputTokens
	}
}

func providerKeyEnvs(provider string) []string {
	envs := []string{"FAM_LLM_API_KEY"}
	switch provider {
	case ProviderGemini:
		envs = append(envs, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	case ProviderOpenAI:
		envs = append(envs, "OPENAI_API_KEY")
	case ProviderAnthropic:
		envs = append(envs, "ANTHROPIC_API_KEY")
	}
	return envs
}

func lookupFirstEnv(names ...string) string {
	for _, name := range names {
		if value, ok := os.LookupEnv(name); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func (c *Config) normalizeTasks() {
	if len(c.Tasks) == 0 {
		return
	}
	tasks := make(map[string]Task, len(c.Tasks))
	for kind, task := range c.Tasks {
		key := strings.ToLower(strings.TrimSpace(kind))
		if key == "" {
			continue
		}
		task.Model = strings.TrimSpace(task.Model)
		tasks[key] = task
	}
	c.Tasks = tasks
}

func (c *Config) normalizeGeneration() {
	if c.Generation.ExcerptLimit <= 0 {
		c.Generation.ExcerptLimit = defaultExcerptLimit
	}
	if c.Generation.BatchConcurrency <= 0 {
		c.Generation.BatchConcurrency = defaultBatchConcurrency
	}
	if c.Generation.RequestTimeoutSeconds <= 0 {
		c.Generation.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if c.Diff.MaxTableCells <= 0 {
		c.Diff.MaxTableCells = defaultDiffMaxTableCells
	}
}

func (c *Config) normalizeStore() {
	if c.Store.VariantCacheSize < 0 {
		c.Store.VariantCacheSize = 0
	}
	if c.Store.TrashRetentionDays <= 0 {
		c.Store.TrashRetentionDays = defaultTrashRetentionDays
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
