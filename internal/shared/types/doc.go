// Package types provides shared data structures for the desktop backend.
//
// These types are the contract between the window manager, the persistence
// bridge, the branching engine and the HTTP layer. JSON field names match
// what the browser desktop stores and renders.
//
// Core Types:
//   - Workspace: Named collection of windows (Home is always present)
//   - Window: Positioned, stackable session owned by one workspace
//   - Payload: Per-type window data (chat, settings, workspace form)
//   - Message: One chat turn
//   - Block: Rendered, clickable piece of a message
//   - State: Everything the persistence bridge mirrors
//
// Request Types:
//   - ChatRequest, CreateWindowRequest, BranchRequest: HTTP payloads
//   - WSMessage: client to server WebSocket frame
package types
