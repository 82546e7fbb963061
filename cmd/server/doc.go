// Package main is the entry point for the AgentDesk backend.
//
// The server keeps a multi-workspace desktop of chat windows, persists it
// to a local SQLite store and talks to hosted LLM providers on behalf of
// each chat window.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Serve the desktop API (default command)
//	./agentdesk serve --port 8000 --db desktop.db
//
//	# Development mode (colored logs, debug level)
//	./agentdesk serve --dev
//
//	# Dump the saved desktop as YAML
//	./agentdesk state --db desktop.db
//
//	# Load provider keys from a TOML file
//	./agentdesk credentials import keys.toml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
