package config

const (
	defaultDataDir               = "~/.local/share/fam"
	defaultLogDir                = "~/.local/share/fam/logs"
	defaultAPIBind               = "127.0.0.1:7580"
	defaultLLMProvider           = ProviderGemini
	defaultLLMTimeoutSeconds     = 60
	defaultLLMTemperature        = 0.7
	defaultLLMMaxOutputTokens    = 4096
	defaultExcerptLimit          = 3000
	defaultBatchConcurrency      = 3
	defaultRequestTimeoutSeconds = 90
	defaultVariantCacheSize      = 512
	defaultTrashRetentionDays    = 30
	defaultDiffMaxTableCells     = 4_000_000
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Supported generative backends.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var defaultProviderModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		LLM: LLM{
			Provider:        defaultLLMProvider,
			TimeoutSeconds:  defaultLLMTimeoutSeconds,
			Temperature:     defaultLLMTemperature,
			MaxOutputTokens: defaultLLMMaxOutputTokens,
		},
		Generation: Generation{
			ExcerptLimit:          defaultExcerptLimit,
			BatchConcurrency:      defaultBatchConcurrency,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Store: Store{
			VariantCacheSize:   defaultVariantCacheSize,
			TrashRetentionDays: defaultTrashRetentionDays,
		},
		Diff: Diff{
			MaxTableCells: defaultDiffMaxTableCells,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
