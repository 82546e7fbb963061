// Package session mirrors the desktop state into the local key/value store
// and rehydrates it at startup.
//
// State is split across well-known keys so each can be inspected on its own:
//
//	workspaces          []Workspace
//	windowsByWorkspace  {"<workspaceId>": []Window}
//	activeWorkspaceId   int64
//	counters            {nextWindowId, nextWorkspaceId}
//
// Save writes all keys in one transaction. Load never fails on bad data:
// missing state yields a fresh default (Home only), and unparsable or
// inconsistent state is discarded in favour of that default. The outcome
// reports which of the two happened.
//
// Example Usage:
//
//	bridge := session.NewBridge(kv, session.WithCompression(true))
//	state, outcome, err := bridge.Load(ctx)
//	err = bridge.Save(ctx, state)
package session
