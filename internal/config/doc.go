// Package config loads, normalizes, and validates famcontents configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// generative backend credentials (FAM_LLM_API_KEY, GEMINI_API_KEY,
// OPENAI_API_KEY, ANTHROPIC_API_KEY). The Config type centralizes every knob the
// daemon and CLI need, including per-task model overrides.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config
