// Package providers groups the adapters that sit at the edge of the desktop.
//
// Available Providers:
//   - llm: hosted language models (Anthropic, OpenAI, DeepSeek, Groq)
//   - markdown: renders chat messages into clickable blocks
//   - settings: per-provider API keys, optionally sealed at rest
package providers
