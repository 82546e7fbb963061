// Package workspace owns the open windows and the workspaces they live in.
//
// The Manager is the single writer of desktop state. Every successful
// mutation is mirrored to the Persister before the call returns
// (write-through) and then announced on the event bus once the lock is
// released, so subscribers may call back into the manager.
//
// Rules enforced here:
//   - Home (id 1) always exists and cannot be deleted
//   - workspace names are unique (case-insensitive, after trimming)
//   - window ids are never reused, including across restarts
//   - new windows never open on the exact position of a sibling
//   - the focused window is the one with the highest zIndex in its
//     workspace; closing it promotes the next-highest
//
// Window edits that come from the visible desktop (payload replacement,
// geometry, focus) are limited to the active workspace. Closing and chat
// appends work on any workspace so late provider replies are never lost.
package workspace
