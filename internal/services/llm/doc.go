// Package llm provides the generative backends used by the generation pipeline.
//
// Three providers are supported, all behind the same Client:
//   - gemini: Google Gemini via google.golang.org/genai (default)
//   - openai: any OpenAI-compatible chat completion endpoint via openai-go
//   - anthropic: Claude via anthropic-sdk-go
//
// # Configuration
//
// Credentials are resolved once when the Client is constructed. A Client built
// without an API key reports Configured() == false and Complete returns
// ErrUnconfigured without touching the network, so callers can route straight
// to their deterministic fallback.
//
// # Retry Behaviour
//
// The client never retries. SDK retries are disabled explicitly so a single
// Complete call maps to exactly one upstream request. Any failure (transport
// error, non-2xx status, timeout, empty content) is returned as *CallError
// carrying the underlying message verbatim.
//
// # Decoding
//
// DecodeJSON tolerates code-fenced payloads and leading prose around the JSON
// object, which is common with chat models even when JSON mode is requested.
package llm
