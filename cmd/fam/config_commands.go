package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"famcontents/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var provider string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveConfigTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target, provider); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set llm.api_key (or export GEMINI_API_KEY, OPENAI_API_KEY, or ANTHROPIC_API_KEY) to enable model generation.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&provider, "provider", "", "Backend to preselect: gemini, openai, anthropic")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func resolveConfigTarget(path string) (string, error) {
	if path = strings.TrimSpace(path); path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return defaultPath, nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return expanded, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and show the effective settings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			source := path
			if !exists {
				source += " (not found; defaults used)"
			}
			key := "set"
			if strings.TrimSpace(cfg.LLM.APIKey) == "" {
				key = "missing; fallback bodies only"
			}
			rows := [][]string{
				{"Config", source},
				{"Database", cfg.DatabasePath()},
				{"Logs", cfg.Paths.LogDir},
				{"API bind", cfg.Paths.APIBind},
				{"Provider", cfg.LLM.Provider},
				{"Model", cfg.LLM.Model},
				{"API key", key},
			}
			kinds := make([]string, 0, len(cfg.Tasks))
			for kind := range cfg.Tasks {
				kinds = append(kinds, kind)
			}
			slices.Sort(kinds)
			for _, kind := range kinds {
				params := cfg.TaskDefaults(kind)
				rows = append(rows, []string{
					"Task " + kind,
					fmt.Sprintf("%s, temperature %s, %d tokens", params.Model,
						strconv.FormatFloat(params.Temperature, 'f', -1, 64), params.MaxOutputTokens),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]column{{header: "Setting"}, {header: "Value", maxWidth: 70}}, rows))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
